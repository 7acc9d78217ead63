package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/homemade-market/internal/infrastructure/store"
	"github.com/google/uuid"
)

const Collection = "shops"

type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
	StatusClosed Status = "closed"
)

var (
	ErrShopNotFound = errors.New("shop not found")
	ErrNameRequired = errors.New("shop name is required")
	ErrNotOwner     = errors.New("only the shop owner can modify the shop")
	ErrShopClosed   = errors.New("shop is closed")
)

// Shop is a seller's storefront. Shops are never hard-deleted; closing is
// a status change.
type Shop struct {
	ID         string    `json:"id"`
	OwnerUID   string    `json:"owner_uid"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	Status     Status    `json:"status"`
	Categories []string  `json:"categories"`
	PriceBand  string    `json:"price_band"`
	CoverURL   string    `json:"cover_url"`
	CreatedAt  time.Time `json:"created_at"`
}

type Service struct {
	docs store.DocumentStore
}

func NewService(docs store.DocumentStore) *Service {
	return &Service{docs: docs}
}

func (s *Service) Create(ctx context.Context, ownerUID, name string, categories []string, priceBand, coverURL string) (*Shop, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	sh := &Shop{
		ID:         uuid.New().String(),
		OwnerUID:   ownerUID,
		Name:       name,
		Slug:       Slugify(name),
		Status:     StatusActive,
		Categories: categories,
		PriceBand:  priceBand,
		CoverURL:   coverURL,
		CreatedAt:  time.Now(),
	}

	doc, err := store.Encode(sh)
	if err != nil {
		return nil, err
	}
	if err := s.docs.Set(ctx, Collection, sh.ID, doc, false); err != nil {
		return nil, fmt.Errorf("failed to create shop: %w", err)
	}
	return sh, nil
}

func (s *Service) Get(ctx context.Context, shopID string) (*Shop, error) {
	doc, ok, err := s.docs.Get(ctx, Collection, shopID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrShopNotFound
	}
	var sh Shop
	if err := store.Decode(doc, &sh); err != nil {
		return nil, err
	}
	return &sh, nil
}

// Update modifies the mutable fields. Only the owner may update.
func (s *Service) Update(ctx context.Context, shopID, callerUID, name string, categories []string, priceBand, coverURL string) (*Shop, error) {
	sh, err := s.Get(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if sh.OwnerUID != callerUID {
		return nil, ErrNotOwner
	}

	if name = strings.TrimSpace(name); name != "" {
		sh.Name = name
		sh.Slug = Slugify(name)
	}
	if categories != nil {
		sh.Categories = categories
	}
	if priceBand != "" {
		sh.PriceBand = priceBand
	}
	if coverURL != "" {
		sh.CoverURL = coverURL
	}

	doc, err := store.Encode(sh)
	if err != nil {
		return nil, err
	}
	if err := s.docs.Set(ctx, Collection, sh.ID, doc, true); err != nil {
		return nil, fmt.Errorf("failed to update shop: %w", err)
	}
	return sh, nil
}

// SetStatus moves the shop between active, paused and closed.
func (s *Service) SetStatus(ctx context.Context, shopID, callerUID string, status Status) error {
	sh, err := s.Get(ctx, shopID)
	if err != nil {
		return err
	}
	if sh.OwnerUID != callerUID {
		return ErrNotOwner
	}
	switch status {
	case StatusActive, StatusPaused, StatusClosed:
	default:
		return fmt.Errorf("unknown shop status %q", status)
	}

	return s.docs.Set(ctx, Collection, shopID, store.Document{"status": string(status)}, true)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUID string) ([]*Shop, error) {
	docs, err := s.docs.Query(ctx, store.Query{
		Collection: Collection,
		Filters:    []store.Filter{{Field: "owner_uid", Value: ownerUID}},
		OrderBy:    "created_at",
	})
	if err != nil {
		return nil, err
	}
	return decodeShops(docs)
}

func (s *Service) ListActive(ctx context.Context) ([]*Shop, error) {
	docs, err := s.docs.Query(ctx, store.Query{
		Collection: Collection,
		Filters:    []store.Filter{{Field: "status", Value: string(StatusActive)}},
		OrderBy:    "created_at",
	})
	if err != nil {
		return nil, err
	}
	return decodeShops(docs)
}

func decodeShops(docs []store.Document) ([]*Shop, error) {
	shops := make([]*Shop, 0, len(docs))
	for _, doc := range docs {
		var sh Shop
		if err := store.Decode(doc, &sh); err != nil {
			return nil, err
		}
		shops = append(shops, &sh)
	}
	return shops, nil
}

// Slugify lowercases the name and collapses runs of non-alphanumerics into
// single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
