package budget

import (
	"context"
	"testing"
	"time"

	"github.com/example/homemade-market/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBudgetService() (*Service, *mocks.MockDocumentStore) {
	docs := mocks.NewMockDocumentStore()
	return NewService(docs), docs
}

// ============================================
// Budget Item Tests
// ============================================

func TestService_AddItem(t *testing.T) {
	service, docs := newTestBudgetService()

	item, err := service.AddItem(context.Background(), "user-1", "Groceries", "food", 40000)

	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "food", item.Category)

	doc, ok := docs.Doc(ItemsCollection, item.ID)
	require.True(t, ok)
	assert.Equal(t, int64(40000), doc.Int64("amount_cents"))
}

func TestService_AddItem_Validation(t *testing.T) {
	service, _ := newTestBudgetService()
	ctx := context.Background()

	_, err := service.AddItem(ctx, "user-1", "", "food", 100)
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = service.AddItem(ctx, "user-1", "Groceries", "food", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestService_MonthlyBudget_SumsItems(t *testing.T) {
	service, _ := newTestBudgetService()
	ctx := context.Background()

	_, err := service.AddItem(ctx, "user-1", "Rent", "housing", 120000)
	require.NoError(t, err)
	_, err = service.AddItem(ctx, "user-1", "Groceries", "food", 40000)
	require.NoError(t, err)
	_, err = service.AddItem(ctx, "user-2", "Rent", "housing", 90000)
	require.NoError(t, err)

	total, err := service.MonthlyBudget(ctx, "user-1")

	require.NoError(t, err)
	assert.Equal(t, int64(160000), total)
}

func TestService_DeleteItem(t *testing.T) {
	service, docs := newTestBudgetService()
	ctx := context.Background()
	item, err := service.AddItem(ctx, "user-1", "Rent", "housing", 120000)
	require.NoError(t, err)

	require.NoError(t, service.DeleteItem(ctx, item.ID))

	_, ok := docs.Doc(ItemsCollection, item.ID)
	assert.False(t, ok)
}

// ============================================
// Liability Tests
// ============================================

func TestService_PayDown_DecrementsBalance(t *testing.T) {
	service, docs := newTestBudgetService()
	ctx := context.Background()
	l, err := service.AddLiability(ctx, "user-1", "Car loan", 500000)
	require.NoError(t, err)

	require.NoError(t, service.PayDown(ctx, l.ID, 20000))

	require.Len(t, docs.IncrementCalls, 1)
	call := docs.IncrementCalls[0]
	assert.Equal(t, LiabilitiesCollection, call.Collection)
	assert.Equal(t, "balance_cents", call.Field)
	assert.Equal(t, int64(-20000), call.Delta)

	doc, _ := docs.Doc(LiabilitiesCollection, l.ID)
	assert.Equal(t, int64(480000), doc.Int64("balance_cents"))
}

func TestService_PayDown_RejectsNonPositive(t *testing.T) {
	service, docs := newTestBudgetService()

	err := service.PayDown(context.Background(), "liab-1", 0)

	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Empty(t, docs.IncrementCalls)
}

// ============================================
// Transaction Tests
// ============================================

func TestService_MonthSpend_FiltersByMonth(t *testing.T) {
	service, _ := newTestBudgetService()
	ctx := context.Background()

	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)

	_, err := service.AddTransaction(ctx, "user-1", "Flour", 1200, jan)
	require.NoError(t, err)
	_, err = service.AddTransaction(ctx, "user-1", "Sugar", 800, jan)
	require.NoError(t, err)
	_, err = service.AddTransaction(ctx, "user-1", "Butter", 1500, feb)
	require.NoError(t, err)
	_, err = service.AddTransaction(ctx, "user-2", "Flour", 999, jan)
	require.NoError(t, err)

	total, err := service.MonthSpend(ctx, "user-1", "2026-01")

	require.NoError(t, err)
	assert.Equal(t, int64(2000), total)
}

func TestService_AddTransaction_StampsMonth(t *testing.T) {
	service, _ := newTestBudgetService()

	tx, err := service.AddTransaction(context.Background(), "user-1", "Flour", 1200,
		time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, "2026-03", tx.Month)
}

func TestService_AddTransaction_RejectsZero(t *testing.T) {
	service, _ := newTestBudgetService()

	_, err := service.AddTransaction(context.Background(), "user-1", "Nothing", 0, time.Now())

	assert.ErrorIs(t, err, ErrInvalidAmount)
}

// ============================================
// Goal Tests
// ============================================

func TestService_SaveTowards_IncrementsProgress(t *testing.T) {
	service, docs := newTestBudgetService()
	ctx := context.Background()
	g, err := service.AddGoal(ctx, "user-1", "New oven", 80000)
	require.NoError(t, err)

	require.NoError(t, service.SaveTowards(ctx, g.ID, 5000))
	require.NoError(t, service.SaveTowards(ctx, g.ID, 2500))

	doc, _ := docs.Doc(GoalsCollection, g.ID)
	assert.Equal(t, int64(7500), doc.Int64("saved_cents"))
}

func TestService_ListGoals(t *testing.T) {
	service, _ := newTestBudgetService()
	ctx := context.Background()

	_, err := service.AddGoal(ctx, "user-1", "New oven", 80000)
	require.NoError(t, err)
	_, err = service.AddGoal(ctx, "user-2", "Stand mixer", 30000)
	require.NoError(t, err)

	goals, err := service.ListGoals(ctx, "user-1")

	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "New oven", goals[0].Title)
}
