package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/homemade-market/internal/domain/cart"
	"github.com/example/homemade-market/internal/infrastructure/store"
	"github.com/google/uuid"
)

const (
	Collection      = "orders"
	ItemsCollection = "order_items"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrNotAuthenticated = errors.New("buyer must be signed in")
	ErrCartEmpty        = errors.New("cart has no items")
	ErrCartNoShop       = errors.New("cart does not reference a shop")
	ErrPaymentFailed    = errors.New("payment was not confirmed")
)

// Item mirrors one cart line at checkout time. Order items are immutable
// snapshots; later product edits do not touch them.
type Item struct {
	OrderID        string `json:"order_id"`
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Qty            int64  `json:"qty"`
	ImageURL       string `json:"image_url"`
}

type Order struct {
	ID            string    `json:"id"`
	ShopID        string    `json:"shop_id"`
	BuyerUID      string    `json:"buyer_uid"`
	Status        Status    `json:"status"`
	SubtotalCents int64     `json:"subtotal_cents"`
	FeesCents     int64     `json:"fees_cents"`
	TotalCents    int64     `json:"total_cents"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Items         []Item    `json:"-"`
}

// ItemID keys an order item document by order and product.
func ItemID(orderID, productID string) string {
	return orderID + "/" + productID
}

// IntentCreator opens a payment intent for a checkout total and returns
// the client secret the platform SDK confirms against.
type IntentCreator interface {
	CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (clientSecret string, err error)
}

// Confirmer completes a payment intent. On mobile this is the platform's
// native wallet sheet; tests inject a fake.
type Confirmer interface {
	Confirm(ctx context.Context, clientSecret string) error
}

type Service struct {
	docs  store.DocumentStore
	carts *cart.Service
}

func NewService(docs store.DocumentStore, carts *cart.Service) *Service {
	return &Service{docs: docs, carts: carts}
}

// Place snapshots the buyer's cart into a new order. Guards run before any
// write: an unauthenticated buyer, a cart without a shop, or an empty cart
// abort with zero writes. The order document is written first, then a
// single batch creates the item snapshots, deletes every cart line and
// touches the cart stamp. Only the batch is atomic; an order with no items
// can exist if the process dies between the two steps. There is no
// idempotency key, so a double submit can create two orders.
func (s *Service) Place(ctx context.Context, userID string) (*Order, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if c.ShopID == "" {
		return nil, ErrCartNoShop
	}
	if len(c.Items) == 0 {
		return nil, ErrCartEmpty
	}

	now := time.Now()
	o := &Order{
		ID:            uuid.New().String(),
		ShopID:        c.ShopID,
		BuyerUID:      userID,
		Status:        StatusPlaced,
		SubtotalCents: c.Subtotal(),
		FeesCents:     0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	o.TotalCents = o.SubtotalCents + o.FeesCents

	orderDoc, err := store.Encode(o)
	if err != nil {
		return nil, err
	}
	if err := s.docs.Set(ctx, Collection, o.ID, orderDoc, false); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	ops := make([]store.WriteOp, 0, 2*len(c.Items)+1)
	for _, line := range c.Items {
		item := Item{
			OrderID:        o.ID,
			ProductID:      line.ProductID,
			Name:           line.Name,
			UnitPriceCents: line.UnitPriceCents,
			Qty:            line.Qty,
			ImageURL:       line.ImageURL,
		}
		itemDoc, err := store.Encode(item)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
		ops = append(ops, store.SetOp(ItemsCollection, ItemID(o.ID, item.ProductID), itemDoc))
		ops = append(ops, store.DeleteOp(cart.ItemsCollection, cart.ItemID(userID, line.ProductID)))
	}
	ops = append(ops, store.MergeOp(cart.Collection, userID, store.Document{"updated_at": now}))

	if err := s.docs.RunBatch(ctx, ops); err != nil {
		return nil, fmt.Errorf("failed to snapshot order items: %w", err)
	}
	return o, nil
}

// PlacePaid is the payment-gated variant: a payment intent is created for
// the cart total and confirmed before Place runs. A failed or cancelled
// confirmation leaves the cart untouched and creates no order.
func (s *Service) PlacePaid(ctx context.Context, userID, currency string, intents IntentCreator, confirmer Confirmer) (*Order, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if c.ShopID == "" {
		return nil, ErrCartNoShop
	}
	if len(c.Items) == 0 {
		return nil, ErrCartEmpty
	}

	clientSecret, err := intents.CreatePaymentIntent(ctx, c.Subtotal(), currency, map[string]string{
		"buyer_uid": userID,
		"shop_id":   c.ShopID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if err := confirmer.Confirm(ctx, clientSecret); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	return s.Place(ctx, userID)
}

func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	doc, ok, err := s.docs.Get(ctx, Collection, orderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOrderNotFound
	}

	var o Order
	if err := store.Decode(doc, &o); err != nil {
		return nil, err
	}

	itemDocs, err := s.docs.Query(ctx, store.Query{
		Collection: ItemsCollection,
		Filters:    []store.Filter{{Field: "order_id", Value: orderID}},
		OrderBy:    "product_id",
	})
	if err != nil {
		return nil, err
	}
	for _, itemDoc := range itemDocs {
		var item Item
		if err := store.Decode(itemDoc, &item); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	return &o, nil
}

func (s *Service) ListByBuyer(ctx context.Context, userID string) ([]*Order, error) {
	return s.list(ctx, store.Filter{Field: "buyer_uid", Value: userID})
}

func (s *Service) ListByShop(ctx context.Context, shopID string) ([]*Order, error) {
	return s.list(ctx, store.Filter{Field: "shop_id", Value: shopID})
}

func (s *Service) list(ctx context.Context, filter store.Filter) ([]*Order, error) {
	docs, err := s.docs.Query(ctx, store.Query{
		Collection: Collection,
		Filters:    []store.Filter{filter},
		OrderBy:    "created_at",
		Descending: true,
	})
	if err != nil {
		return nil, err
	}

	orders := make([]*Order, 0, len(docs))
	for _, doc := range docs {
		var o Order
		if err := store.Decode(doc, &o); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}
	return orders, nil
}
