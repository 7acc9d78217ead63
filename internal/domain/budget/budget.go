package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/homemade-market/internal/infrastructure/store"
	"github.com/google/uuid"
)

const (
	ItemsCollection        = "budget_items"
	LiabilitiesCollection  = "liabilities"
	TransactionsCollection = "transactions"
	GoalsCollection        = "goals"
)

var (
	ErrNotFound      = errors.New("budget record not found")
	ErrTitleRequired = errors.New("title is required")
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Item is a recurring monthly budget line.
type Item struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// Liability is outstanding debt tracked against a payoff goal.
type Liability struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	BalanceCents int64     `json:"balance_cents"`
	CreatedAt    time.Time `json:"created_at"`
}

// Transaction is a single dated spend or income entry.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	AmountCents int64     `json:"amount_cents"`
	Month       string    `json:"month"` // YYYY-MM
	CreatedAt   time.Time `json:"created_at"`
}

// Goal is a savings target with running progress.
type Goal struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	TargetCents int64     `json:"target_cents"`
	SavedCents  int64     `json:"saved_cents"`
	CreatedAt   time.Time `json:"created_at"`
}

type Service struct {
	docs store.DocumentStore
}

func NewService(docs store.DocumentStore) *Service {
	return &Service{docs: docs}
}

func (s *Service) AddItem(ctx context.Context, userID, title, category string, amountCents int64) (*Item, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	item := &Item{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		AmountCents: amountCents,
		Category:    category,
		CreatedAt:   time.Now(),
	}
	if err := s.create(ctx, ItemsCollection, item.ID, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) DeleteItem(ctx context.Context, id string) error {
	return s.docs.Delete(ctx, ItemsCollection, id)
}

func (s *Service) ListItems(ctx context.Context, userID string) ([]*Item, error) {
	docs, err := s.listByUser(ctx, ItemsCollection, userID)
	if err != nil {
		return nil, err
	}
	items := make([]*Item, 0, len(docs))
	for _, doc := range docs {
		var item Item
		if err := store.Decode(doc, &item); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, nil
}

// MonthlyBudget is the sum of all budget lines for the user.
func (s *Service) MonthlyBudget(ctx context.Context, userID string) (int64, error) {
	items, err := s.ListItems(ctx, userID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, item := range items {
		total += item.AmountCents
	}
	return total, nil
}

func (s *Service) AddLiability(ctx context.Context, userID, title string, balanceCents int64) (*Liability, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}
	if balanceCents <= 0 {
		return nil, ErrInvalidAmount
	}

	l := &Liability{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        title,
		BalanceCents: balanceCents,
		CreatedAt:    time.Now(),
	}
	if err := s.create(ctx, LiabilitiesCollection, l.ID, l); err != nil {
		return nil, err
	}
	return l, nil
}

// PayDown reduces a liability's balance by an atomic decrement.
func (s *Service) PayDown(ctx context.Context, liabilityID string, amountCents int64) error {
	if amountCents <= 0 {
		return ErrInvalidAmount
	}
	return s.docs.Increment(ctx, LiabilitiesCollection, liabilityID, "balance_cents", -amountCents)
}

func (s *Service) ListLiabilities(ctx context.Context, userID string) ([]*Liability, error) {
	docs, err := s.listByUser(ctx, LiabilitiesCollection, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*Liability, 0, len(docs))
	for _, doc := range docs {
		var l Liability
		if err := store.Decode(doc, &l); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, nil
}

func (s *Service) AddTransaction(ctx context.Context, userID, title string, amountCents int64, when time.Time) (*Transaction, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}
	if amountCents == 0 {
		return nil, ErrInvalidAmount
	}

	t := &Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		AmountCents: amountCents,
		Month:       when.Format("2006-01"),
		CreatedAt:   when,
	}
	if err := s.create(ctx, TransactionsCollection, t.ID, t); err != nil {
		return nil, err
	}
	return t, nil
}

// MonthSpend totals transactions for a user in one YYYY-MM month.
func (s *Service) MonthSpend(ctx context.Context, userID, month string) (int64, error) {
	docs, err := s.docs.Query(ctx, store.Query{
		Collection: TransactionsCollection,
		Filters: []store.Filter{
			{Field: "user_id", Value: userID},
			{Field: "month", Value: month},
		},
	})
	if err != nil {
		return 0, err
	}
	var total int64
	for _, doc := range docs {
		total += doc.Int64("amount_cents")
	}
	return total, nil
}

func (s *Service) AddGoal(ctx context.Context, userID, title string, targetCents int64) (*Goal, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}
	if targetCents <= 0 {
		return nil, ErrInvalidAmount
	}

	g := &Goal{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		TargetCents: targetCents,
		CreatedAt:   time.Now(),
	}
	if err := s.create(ctx, GoalsCollection, g.ID, g); err != nil {
		return nil, err
	}
	return g, nil
}

// SaveTowards adds progress to a goal with an atomic increment.
func (s *Service) SaveTowards(ctx context.Context, goalID string, amountCents int64) error {
	if amountCents <= 0 {
		return ErrInvalidAmount
	}
	return s.docs.Increment(ctx, GoalsCollection, goalID, "saved_cents", amountCents)
}

func (s *Service) ListGoals(ctx context.Context, userID string) ([]*Goal, error) {
	docs, err := s.listByUser(ctx, GoalsCollection, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*Goal, 0, len(docs))
	for _, doc := range docs {
		var g Goal
		if err := store.Decode(doc, &g); err != nil {
			return nil, err
		}
		out = append(out, &g)
	}
	return out, nil
}

func (s *Service) create(ctx context.Context, collection, id string, v any) error {
	doc, err := store.Encode(v)
	if err != nil {
		return err
	}
	if err := s.docs.Set(ctx, collection, id, doc, false); err != nil {
		return fmt.Errorf("failed to create %s record: %w", collection, err)
	}
	return nil
}

func (s *Service) listByUser(ctx context.Context, collection, userID string) ([]store.Document, error) {
	return s.docs.Query(ctx, store.Query{
		Collection: collection,
		Filters:    []store.Filter{{Field: "user_id", Value: userID}},
		OrderBy:    "created_at",
	})
}
