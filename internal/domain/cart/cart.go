package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/homemade-market/internal/domain/product"
	"github.com/example/homemade-market/internal/infrastructure/store"
)

const (
	Collection      = "carts"
	ItemsCollection = "cart_items"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrShopConflict    = errors.New("cart already holds items from another shop")
)

// Item is one line in a buyer's cart, keyed by product.
type Item struct {
	CartID         string `json:"cart_id"`
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Qty            int64  `json:"qty"`
	ImageURL       string `json:"image_url"`
}

// Cart is a buyer's in-progress selection. Every item belongs to the one
// shop stamped on the cart document.
type Cart struct {
	UserID    string    `json:"-"`
	ShopID    string    `json:"shop_id"`
	UpdatedAt time.Time `json:"updated_at"`
	Items     []Item    `json:"-"`
}

// ItemID keys a cart item document by owner and product.
func ItemID(userID, productID string) string {
	return userID + "/" + productID
}

type Service struct {
	docs store.DocumentStore
}

func NewService(docs store.DocumentStore) *Service {
	return &Service{docs: docs}
}

// AddItem puts qty units of a product into the buyer's cart. A cart holds
// items from a single shop: an empty cart is stamped with the product's
// shop, and a product from any other shop is refused before anything is
// written. The quantity bump is a remote atomic increment so rapid
// concurrent adds cannot lose updates. The shop check and the writes are
// not one transaction; the conflict check is check-then-act.
func (s *Service) AddItem(ctx context.Context, userID string, p *product.Product, qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	doc, ok, err := s.docs.Get(ctx, Collection, userID)
	if err != nil {
		return fmt.Errorf("failed to read cart: %w", err)
	}
	if ok {
		if shopID := doc.String("shop_id"); shopID != "" && shopID != p.ShopID {
			return ErrShopConflict
		}
	}

	if err := s.docs.Set(ctx, Collection, userID, store.Document{
		"shop_id":    p.ShopID,
		"updated_at": time.Now(),
	}, true); err != nil {
		return fmt.Errorf("failed to stamp cart: %w", err)
	}

	itemID := ItemID(userID, p.ID)
	if err := s.docs.Set(ctx, ItemsCollection, itemID, store.Document{
		"cart_id":          userID,
		"product_id":       p.ID,
		"name":             p.Name,
		"unit_price_cents": p.PriceCents,
		"image_url":        p.ImageURL,
	}, true); err != nil {
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}
	return s.docs.Increment(ctx, ItemsCollection, itemID, "qty", qty)
}

// IncrementItem bumps an existing line by one.
func (s *Service) IncrementItem(ctx context.Context, userID, productID string) error {
	if err := s.docs.Increment(ctx, ItemsCollection, ItemID(userID, productID), "qty", 1); err != nil {
		return err
	}
	return s.touch(ctx, userID)
}

// DecrementItem lowers a line by one, deleting the document at quantity 1
// so a zero-quantity line never exists. A missing line is a no-op.
func (s *Service) DecrementItem(ctx context.Context, userID, productID string) error {
	itemID := ItemID(userID, productID)
	doc, ok, err := s.docs.Get(ctx, ItemsCollection, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if doc.Int64("qty") <= 1 {
		if err := s.docs.Delete(ctx, ItemsCollection, itemID); err != nil {
			return err
		}
	} else if err := s.docs.Increment(ctx, ItemsCollection, itemID, "qty", -1); err != nil {
		return err
	}
	return s.touch(ctx, userID)
}

// RemoveItem deletes a line outright regardless of quantity.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) error {
	if err := s.docs.Delete(ctx, ItemsCollection, ItemID(userID, productID)); err != nil {
		return err
	}
	return s.touch(ctx, userID)
}

// Get returns the cart and its items. A buyer with no cart document gets
// an empty cart.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	c := &Cart{UserID: userID}

	doc, ok, err := s.docs.Get(ctx, Collection, userID)
	if err != nil {
		return nil, err
	}
	if ok {
		if err := store.Decode(doc, c); err != nil {
			return nil, err
		}
	}

	items, err := s.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return c, nil
}

// Items returns the cart's lines ordered by product.
func (s *Service) Items(ctx context.Context, userID string) ([]Item, error) {
	docs, err := s.docs.Query(ctx, store.Query{
		Collection: ItemsCollection,
		Filters:    []store.Filter{{Field: "cart_id", Value: userID}},
		OrderBy:    "product_id",
	})
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(docs))
	for _, doc := range docs {
		var item Item
		if err := store.Decode(doc, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Clear deletes every line and the shop stamp in one batch.
func (s *Service) Clear(ctx context.Context, userID string) error {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return err
	}

	ops := make([]store.WriteOp, 0, len(items)+1)
	for _, item := range items {
		ops = append(ops, store.DeleteOp(ItemsCollection, ItemID(userID, item.ProductID)))
	}
	ops = append(ops, store.DeleteOp(Collection, userID))
	return s.docs.RunBatch(ctx, ops)
}

// Subtotal is the sum of qty times unit price across lines.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Qty * item.UnitPriceCents
	}
	return total
}

// touch refreshes the cart's updated_at stamp. Informational only, so it
// is a separate write rather than part of any transaction.
func (s *Service) touch(ctx context.Context, userID string) error {
	return s.docs.Set(ctx, Collection, userID, store.Document{"updated_at": time.Now()}, true)
}
