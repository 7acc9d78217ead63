package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/homemade-market/internal/auth"
	"github.com/example/homemade-market/internal/infrastructure/store"
	"github.com/google/uuid"
)

const Collection = "users"

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("email is required")
	ErrInvalidName        = errors.New("name is required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User is a marketplace account. Sellers also own shops; the role only
// gates the seller-side endpoints.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Service handles account registration and credential checks
type Service struct {
	docs store.DocumentStore
}

func NewService(docs store.DocumentStore) *Service {
	return &Service{docs: docs}
}

// Register creates a new buyer account
func (s *Service) Register(ctx context.Context, email, password, name string) (*User, error) {
	return s.RegisterWithRole(ctx, email, password, name, RoleBuyer)
}

// RegisterSeller creates a new seller account
func (s *Service) RegisterSeller(ctx context.Context, email, password, name string) (*User, error) {
	return s.RegisterWithRole(ctx, email, password, name, RoleSeller)
}

// RegisterWithRole creates a new account with a specific role. The email
// uniqueness check is a query before the write, so it is best-effort like
// every other cross-document invariant on this store.
func (s *Service) RegisterWithRole(ctx context.Context, email, password, name, role string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrInvalidEmail
	}
	if name == "" {
		return nil, ErrInvalidName
	}

	if _, err := s.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		CreatedAt:    time.Now(),
	}

	doc, err := store.Encode(u)
	if err != nil {
		return nil, err
	}
	if err := s.docs.Set(ctx, Collection, u.ID, doc, false); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// Authenticate checks credentials and returns the account on success.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*User, error) {
	doc, ok, err := s.docs.Get(ctx, Collection, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	var u User
	if err := store.Decode(doc, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	docs, err := s.docs.Query(ctx, store.Query{
		Collection: Collection,
		Filters:    []store.Filter{{Field: "email", Value: email}},
		Limit:      1,
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrUserNotFound
	}
	var u User
	if err := store.Decode(docs[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}
