// Package notification turns order changes on the document feed into
// buyer email.
package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/homemade-market/internal/domain/order"
	"github.com/example/homemade-market/internal/email"
	"github.com/example/homemade-market/internal/infrastructure/store"
	"github.com/example/homemade-market/internal/readmodel"
)

// Handler watches order documents and mails the buyer on placement and
// on every status transition.
type Handler struct {
	emailService *email.Service
	readStore    store.ReadStoreInterface
}

func NewHandler(emailSvc *email.Service, readStore store.ReadStoreInterface) *Handler {
	return &Handler{
		emailService: emailSvc,
		readStore:    readStore,
	}
}

// HandleEvent processes one change-feed message from Kafka.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var change store.Change
	if err := json.Unmarshal(value, &change); err != nil {
		log.Printf("[Notifier] Failed to unmarshal change: %v", err)
		return err
	}

	if change.Collection != order.Collection || change.Kind != store.ChangeSet {
		return nil
	}

	status := change.Doc.String("status")
	if status == string(order.StatusPlaced) {
		return h.handleOrderPlaced(change)
	}
	return h.handleStatusChange(change, status)
}

func (h *Handler) handleOrderPlaced(change store.Change) error {
	buyerUID := change.Doc.String("buyer_uid")
	log.Printf("[Notifier] Processing placed order %s for buyer %s", change.ID, buyerUID)

	buyer, ok := h.lookupBuyer(buyerUID)
	if !ok {
		return nil
	}

	// Line items live in their own documents and may not have been
	// projected yet; falling back to an item-less confirmation beats
	// dropping the email.
	var emailItems []email.OrderItem
	if orderData, exists, _ := h.readStore.Get("orders", change.ID); exists {
		if model, ok := orderData.(*readmodel.OrderReadModel); ok {
			for _, item := range model.Items {
				emailItems = append(emailItems, email.OrderItem{
					ProductID:      item.ProductID,
					Name:           item.Name,
					Qty:            item.Qty,
					UnitPriceCents: item.UnitPriceCents,
				})
			}
		}
	}

	totalCents := change.Doc.Int64("total_cents")
	if err := h.emailService.SendOrderConfirmation(buyer.Email, change.ID, totalCents, emailItems); err != nil {
		log.Printf("[Notifier] Failed to send confirmation to %s: %v", buyer.Email, err)
		return err
	}

	log.Printf("[Notifier] Order confirmation sent to %s for order %s", buyer.Email, change.ID)
	return nil
}

func (h *Handler) handleStatusChange(change store.Change, status string) error {
	if status == "" {
		return nil
	}

	// Status merges carry only status and updated_at; the buyer comes
	// from the projected order.
	buyerUID := change.Doc.String("buyer_uid")
	if buyerUID == "" {
		orderData, exists, err := h.readStore.Get("orders", change.ID)
		if err != nil || !exists {
			log.Printf("[Notifier] No projected order for %s, skipping status email", change.ID)
			return nil
		}
		model, ok := orderData.(*readmodel.OrderReadModel)
		if !ok {
			return nil
		}
		buyerUID = model.BuyerUID
	}

	buyer, ok := h.lookupBuyer(buyerUID)
	if !ok {
		return nil
	}

	if err := h.emailService.SendOrderStatusUpdate(buyer.Email, change.ID, status); err != nil {
		log.Printf("[Notifier] Failed to send status update to %s: %v", buyer.Email, err)
		return err
	}

	log.Printf("[Notifier] Status update (%s) sent to %s for order %s", status, buyer.Email, change.ID)
	return nil
}

func (h *Handler) lookupBuyer(buyerUID string) (*readmodel.UserReadModel, bool) {
	if buyerUID == "" {
		return nil, false
	}
	userData, exists, err := h.readStore.Get("users", buyerUID)
	if err != nil {
		log.Printf("[Notifier] Error getting user %s: %v", buyerUID, err)
		return nil, false
	}
	if !exists {
		log.Printf("[Notifier] User not found: %s", buyerUID)
		return nil, false
	}
	user, ok := userData.(*readmodel.UserReadModel)
	if !ok {
		log.Printf("[Notifier] Invalid user data type for user: %s", buyerUID)
		return nil, false
	}
	return user, true
}
