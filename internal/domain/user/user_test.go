package user

import (
	"context"
	"testing"

	"github.com/example/homemade-market/internal/auth"
	"github.com/example/homemade-market/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService() (*Service, *mocks.MockDocumentStore) {
	docs := mocks.NewMockDocumentStore()
	return NewService(docs), docs
}

// ============================================
// Register Tests
// ============================================

func TestService_Register(t *testing.T) {
	service, docs := newTestUserService()

	u, err := service.Register(context.Background(), "Anna@Example.com", "hunter2hunter2", "Anna")

	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "anna@example.com", u.Email)
	assert.Equal(t, RoleBuyer, u.Role)
	assert.NotEqual(t, "hunter2hunter2", u.PasswordHash)

	doc, ok := docs.Doc(Collection, u.ID)
	require.True(t, ok)
	assert.Equal(t, "anna@example.com", doc.String("email"))
}

func TestService_RegisterSeller(t *testing.T) {
	service, _ := newTestUserService()

	u, err := service.RegisterSeller(context.Background(), "bob@example.com", "hunter2hunter2", "Bob")

	require.NoError(t, err)
	assert.Equal(t, RoleSeller, u.Role)
}

func TestService_Register_EmailTaken(t *testing.T) {
	service, docs := newTestUserService()
	ctx := context.Background()
	_, err := service.Register(ctx, "anna@example.com", "hunter2hunter2", "Anna")
	require.NoError(t, err)
	docs.SetCalls = nil

	_, err = service.Register(ctx, "ANNA@example.com ", "otherpassword", "Anna Two")

	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Empty(t, docs.SetCalls)
}

func TestService_Register_Validation(t *testing.T) {
	service, _ := newTestUserService()
	ctx := context.Background()

	_, err := service.Register(ctx, "  ", "hunter2hunter2", "Anna")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = service.Register(ctx, "anna@example.com", "hunter2hunter2", "")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = service.Register(ctx, "anna@example.com", "short", "Anna")
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

// ============================================
// Authenticate Tests
// ============================================

func TestService_Authenticate(t *testing.T) {
	service, _ := newTestUserService()
	ctx := context.Background()
	registered, err := service.Register(ctx, "anna@example.com", "hunter2hunter2", "Anna")
	require.NoError(t, err)

	u, err := service.Authenticate(ctx, "Anna@Example.com", "hunter2hunter2")

	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)
}

func TestService_Authenticate_WrongPassword(t *testing.T) {
	service, _ := newTestUserService()
	ctx := context.Background()
	_, err := service.Register(ctx, "anna@example.com", "hunter2hunter2", "Anna")
	require.NoError(t, err)

	_, err = service.Authenticate(ctx, "anna@example.com", "wrongwrongwrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Authenticate_UnknownEmail(t *testing.T) {
	service, _ := newTestUserService()

	_, err := service.Authenticate(context.Background(), "ghost@example.com", "hunter2hunter2")

	// Unknown accounts and bad passwords return the same error
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// ============================================
// Lookup Tests
// ============================================

func TestService_Get_NotFound(t *testing.T) {
	service, _ := newTestUserService()

	_, err := service.Get(context.Background(), "user-missing")

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_GetByEmail(t *testing.T) {
	service, _ := newTestUserService()
	ctx := context.Background()
	registered, err := service.Register(ctx, "anna@example.com", "hunter2hunter2", "Anna")
	require.NoError(t, err)

	u, err := service.GetByEmail(ctx, "anna@example.com")

	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)
}
