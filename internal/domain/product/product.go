package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/homemade-market/internal/infrastructure/store"
	"github.com/google/uuid"
)

const Collection = "products"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNameRequired    = errors.New("product name is required")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrImageRequired   = errors.New("product image is required")
)

// Product belongs to exactly one shop. An active product always has a
// positive price.
type Product struct {
	ID         string    `json:"id"`
	ShopID     string    `json:"shop_id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	ImageURL   string    `json:"image_url"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

type Service struct {
	docs store.DocumentStore
}

func NewService(docs store.DocumentStore) *Service {
	return &Service{docs: docs}
}

func (s *Service) Create(ctx context.Context, shopID, name string, priceCents int64, imageURL string) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if priceCents <= 0 {
		return nil, ErrInvalidPrice
	}
	if imageURL == "" {
		return nil, ErrImageRequired
	}

	p := &Product{
		ID:         uuid.New().String(),
		ShopID:     shopID,
		Name:       name,
		PriceCents: priceCents,
		ImageURL:   imageURL,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}

	doc, err := store.Encode(p)
	if err != nil {
		return nil, err
	}
	if err := s.docs.Set(ctx, Collection, p.ID, doc, false); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, productID string) (*Product, error) {
	doc, ok, err := s.docs.Get(ctx, Collection, productID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProductNotFound
	}
	var p Product
	if err := store.Decode(doc, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) Update(ctx context.Context, productID, name string, priceCents int64, imageURL string) (*Product, error) {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		p.Name = name
	}
	if priceCents > 0 {
		p.PriceCents = priceCents
	}
	if imageURL != "" {
		p.ImageURL = imageURL
	}
	if p.IsActive && p.PriceCents <= 0 {
		return nil, ErrInvalidPrice
	}

	doc, err := store.Encode(p)
	if err != nil {
		return nil, err
	}
	if err := s.docs.Set(ctx, Collection, p.ID, doc, true); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return p, nil
}

// SetActive toggles product visibility. Activation re-checks the price
// invariant.
func (s *Service) SetActive(ctx context.Context, productID string, active bool) error {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return err
	}
	if active && p.PriceCents <= 0 {
		return ErrInvalidPrice
	}
	return s.docs.Set(ctx, Collection, productID, store.Document{"is_active": active}, true)
}

func (s *Service) ListByShop(ctx context.Context, shopID string) ([]*Product, error) {
	docs, err := s.docs.Query(ctx, store.Query{
		Collection: Collection,
		Filters:    []store.Filter{{Field: "shop_id", Value: shopID}},
		OrderBy:    "created_at",
	})
	if err != nil {
		return nil, err
	}

	products := make([]*Product, 0, len(docs))
	for _, doc := range docs {
		var p Product
		if err := store.Decode(doc, &p); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, nil
}
