// Package projection folds the document change feed into the read models
// served by the query side. Changes for different collections arrive with
// no cross-ordering guarantee, so every handler tolerates seeing a child
// document before its parent.
package projection

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/example/homemade-market/internal/domain/order"
	"github.com/example/homemade-market/internal/infrastructure/store"
	"github.com/example/homemade-market/internal/readmodel"
)

type Projector struct {
	readStore store.ReadStoreInterface
}

func NewProjector(readStore store.ReadStoreInterface) *Projector {
	return &Projector{readStore: readStore}
}

// HandleEvent consumes one change-feed message.
func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	var change store.Change
	if err := json.Unmarshal(value, &change); err != nil {
		return err
	}

	log.Printf("[Projector] Received %s change: %s/%s", change.Kind, change.Collection, change.ID)

	switch change.Collection {
	case "shops":
		return p.handleShop(change)
	case "products":
		return p.handleProduct(change)
	case "carts":
		return p.handleCart(change)
	case "cart_items":
		return p.handleCartItem(change)
	case "orders":
		return p.handleOrder(change)
	case "order_items":
		return p.handleOrderItem(change)
	case "users":
		return p.handleUser(change)
	}
	return nil
}

func (p *Projector) handleShop(change store.Change) error {
	if change.Kind == store.ChangeDelete {
		return p.readStore.Delete("shops", change.ID)
	}

	var model readmodel.ShopReadModel
	if err := store.Decode(change.Doc, &model); err != nil {
		return err
	}
	model.ID = change.ID

	// Status-only merges carry partial documents; fold into the existing
	// model when there is one.
	updated, err := p.readStore.Update("shops", change.ID, func(current any) any {
		existing := current.(*readmodel.ShopReadModel)
		if model.Name == "" {
			model.Name = existing.Name
			model.Slug = existing.Slug
			model.OwnerUID = existing.OwnerUID
			model.CreatedAt = existing.CreatedAt
			model.Categories = existing.Categories
			model.PriceBand = existing.PriceBand
			model.CoverURL = existing.CoverURL
		}
		model.ProductCount = existing.ProductCount
		return &model
	})
	if err != nil || updated {
		return err
	}
	return p.readStore.Set("shops", change.ID, &model)
}

func (p *Projector) handleProduct(change store.Change) error {
	if change.Kind == store.ChangeDelete {
		if existing, ok, err := p.readStore.Get("products", change.ID); err != nil {
			return err
		} else if ok {
			shopID := existing.(*readmodel.ProductReadModel).ShopID
			p.bumpProductCount(shopID, -1)
		}
		return p.readStore.Delete("products", change.ID)
	}

	var model readmodel.ProductReadModel
	if err := store.Decode(change.Doc, &model); err != nil {
		return err
	}
	model.ID = change.ID

	_, existed, err := p.readStore.Get("products", change.ID)
	if err != nil {
		return err
	}
	if err := p.readStore.Set("products", change.ID, &model); err != nil {
		return err
	}
	if !existed {
		p.bumpProductCount(model.ShopID, 1)
	}
	return nil
}

func (p *Projector) bumpProductCount(shopID string, delta int) {
	if shopID == "" {
		return
	}
	if _, err := p.readStore.Update("shops", shopID, func(current any) any {
		shop := current.(*readmodel.ShopReadModel)
		shop.ProductCount += delta
		return shop
	}); err != nil {
		log.Printf("[Projector] Failed to update product count for shop %s: %v", shopID, err)
	}
}

func (p *Projector) handleCart(change store.Change) error {
	if change.Kind == store.ChangeDelete {
		return p.readStore.Delete("carts", change.ID)
	}

	shopID := change.Doc.String("shop_id")
	updated, err := p.readStore.Update("carts", change.ID, func(current any) any {
		c := current.(*readmodel.CartReadModel)
		if shopID != "" {
			c.ShopID = shopID
		}
		c.UpdatedAt = change.Timestamp
		return c
	})
	if err != nil || updated {
		return err
	}
	return p.readStore.Set("carts", change.ID, &readmodel.CartReadModel{
		UserID:    change.ID,
		ShopID:    shopID,
		Items:     []readmodel.CartItemReadModel{},
		UpdatedAt: change.Timestamp,
	})
}

func (p *Projector) handleCartItem(change store.Change) error {
	userID, productID, ok := splitItemID(change.ID)
	if !ok {
		log.Printf("[Projector] Skipping cart item with malformed id %q", change.ID)
		return nil
	}

	if change.Kind == store.ChangeDelete {
		_, err := p.readStore.Update("carts", userID, func(current any) any {
			c := current.(*readmodel.CartReadModel)
			items := c.Items[:0]
			for _, item := range c.Items {
				if item.ProductID != productID {
					items = append(items, item)
				}
			}
			c.Items = items
			c.SubtotalCents = cartSubtotal(c.Items)
			return c
		})
		return err
	}

	var line readmodel.CartItemReadModel
	if err := store.Decode(change.Doc, &line); err != nil {
		return err
	}
	line.ProductID = productID

	updated, err := p.readStore.Update("carts", userID, func(current any) any {
		c := current.(*readmodel.CartReadModel)
		replaced := false
		for i := range c.Items {
			if c.Items[i].ProductID == productID {
				c.Items[i] = line
				replaced = true
				break
			}
		}
		if !replaced {
			c.Items = append(c.Items, line)
		}
		c.SubtotalCents = cartSubtotal(c.Items)
		return c
	})
	if err != nil || updated {
		return err
	}
	// Item arrived before its cart document.
	return p.readStore.Set("carts", userID, &readmodel.CartReadModel{
		UserID:        userID,
		Items:         []readmodel.CartItemReadModel{line},
		SubtotalCents: line.Qty * line.UnitPriceCents,
		UpdatedAt:     change.Timestamp,
	})
}

func (p *Projector) handleOrder(change store.Change) error {
	if change.Kind == store.ChangeDelete {
		return p.readStore.Delete("orders", change.ID)
	}

	var model readmodel.OrderReadModel
	if err := store.Decode(change.Doc, &model); err != nil {
		return err
	}
	model.ID = change.ID

	previousStatus := ""
	updated, err := p.readStore.Update("orders", change.ID, func(current any) any {
		existing := current.(*readmodel.OrderReadModel)
		previousStatus = existing.Status
		if model.BuyerUID == "" {
			// Partial status merge: keep everything but the new status.
			existing.Status = model.Status
			existing.UpdatedAt = model.UpdatedAt
			model = *existing
			return existing
		}
		model.Items = existing.Items
		return &model
	})
	if err != nil {
		return err
	}
	if !updated {
		if model.Items == nil {
			model.Items = []readmodel.OrderItemReadModel{}
		}
		if err := p.readStore.Set("orders", change.ID, &model); err != nil {
			return err
		}
	}

	p.updateSellerStats(&model, previousStatus)
	return nil
}

// updateSellerStats counts an order into its shop's dashboard once, on
// first sight, and backs it out when the order diverges to cancelled or
// refunded.
func (p *Projector) updateSellerStats(o *readmodel.OrderReadModel, previousStatus string) {
	if o.ShopID == "" {
		return
	}

	delta := int64(0)
	switch {
	case previousStatus == "" && !finishedStatus(o.Status):
		delta = 1
	case !finishedStatus(previousStatus) && finishedStatus(o.Status):
		delta = -1
	}
	if delta == 0 {
		return
	}

	updated, err := p.readStore.Update("seller_stats", o.ShopID, func(current any) any {
		stats := current.(*readmodel.SellerStatsReadModel)
		stats.OrderCount += delta
		stats.GrossCents += delta * o.TotalCents
		return stats
	})
	if err != nil {
		log.Printf("[Projector] Failed to update stats for shop %s: %v", o.ShopID, err)
		return
	}
	if !updated && delta > 0 {
		if err := p.readStore.Set("seller_stats", o.ShopID, &readmodel.SellerStatsReadModel{
			ShopID:     o.ShopID,
			OrderCount: 1,
			GrossCents: o.TotalCents,
		}); err != nil {
			log.Printf("[Projector] Failed to create stats for shop %s: %v", o.ShopID, err)
		}
	}
}

func finishedStatus(status string) bool {
	return status == string(order.StatusCancelled) || status == string(order.StatusRefunded)
}

func (p *Projector) handleOrderItem(change store.Change) error {
	orderID, productID, ok := splitItemID(change.ID)
	if !ok {
		log.Printf("[Projector] Skipping order item with malformed id %q", change.ID)
		return nil
	}
	if change.Kind == store.ChangeDelete {
		// Order items are immutable snapshots; deletes never happen.
		return nil
	}

	var line readmodel.OrderItemReadModel
	if err := store.Decode(change.Doc, &line); err != nil {
		return err
	}
	line.ProductID = productID

	updated, err := p.readStore.Update("orders", orderID, func(current any) any {
		o := current.(*readmodel.OrderReadModel)
		for i := range o.Items {
			if o.Items[i].ProductID == productID {
				o.Items[i] = line
				return o
			}
		}
		o.Items = append(o.Items, line)
		return o
	})
	if err != nil || updated {
		return err
	}
	// Item arrived before its order document.
	return p.readStore.Set("orders", orderID, &readmodel.OrderReadModel{
		ID:    orderID,
		Items: []readmodel.OrderItemReadModel{line},
	})
}

func (p *Projector) handleUser(change store.Change) error {
	if change.Kind == store.ChangeDelete {
		return p.readStore.Delete("users", change.ID)
	}

	var model readmodel.UserReadModel
	if err := store.Decode(change.Doc, &model); err != nil {
		return err
	}
	model.ID = change.ID
	return p.readStore.Set("users", change.ID, &model)
}

func cartSubtotal(items []readmodel.CartItemReadModel) int64 {
	var total int64
	for _, item := range items {
		total += item.Qty * item.UnitPriceCents
	}
	return total
}

// splitItemID separates a composite "parent/child" document id.
func splitItemID(id string) (parent, child string, ok bool) {
	parts := strings.SplitN(id, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
