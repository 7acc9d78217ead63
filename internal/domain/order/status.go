package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/homemade-market/internal/infrastructure/store"
)

type Status string

const (
	StatusPlaced         Status = "placed"
	StatusAccepted       Status = "accepted"
	StatusPreparing      Status = "preparing"
	StatusReady          Status = "ready"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusCompleted      Status = "completed"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
	StatusRefunded       Status = "refunded"
)

var (
	ErrInvalidStatus  = errors.New("invalid order status transition")
	ErrOrderFinished  = errors.New("order already reached a terminal state")
	ErrOrderCancelled = errors.New("order is cancelled")
	ErrNotRefundable  = errors.New("only cancelled or finished orders can be refunded")
)

// validTransitions is the fulfilment pipeline: each status may advance one
// step, diverge to cancelled, or (after the pipeline ends) to refunded.
var validTransitions = map[Status][]Status{
	StatusPlaced:         {StatusAccepted, StatusCancelled},
	StatusAccepted:       {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusReady, StatusCancelled},
	StatusReady:          {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusCompleted, StatusDelivered, StatusCancelled},
	StatusCompleted:      {StatusRefunded},
	StatusDelivered:      {StatusRefunded},
	StatusCancelled:      {StatusRefunded},
	StatusRefunded:       {},
}

// CanTransitionTo checks whether the order may move to the target status.
func (o *Order) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[o.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// transitionError returns an appropriate error for an invalid transition
func (o *Order) transitionError(target Status) error {
	switch {
	case o.Status == StatusRefunded:
		return ErrOrderFinished
	case o.Status == StatusCancelled && target != StatusRefunded:
		return ErrOrderCancelled
	case target == StatusRefunded:
		return ErrNotRefundable
	default:
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidStatus, o.Status, target)
	}
}

func (s *Service) Accept(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, StatusAccepted)
}

func (s *Service) MarkPreparing(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, StatusPreparing)
}

func (s *Service) MarkReady(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, StatusReady)
}

func (s *Service) MarkOutForDelivery(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, StatusOutForDelivery)
}

func (s *Service) Complete(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, StatusCompleted)
}

func (s *Service) MarkDelivered(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, StatusDelivered)
}

func (s *Service) Cancel(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, StatusCancelled)
}

func (s *Service) Refund(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, StatusRefunded)
}

func (s *Service) transition(ctx context.Context, orderID string, target Status) error {
	doc, ok, err := s.docs.Get(ctx, Collection, orderID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOrderNotFound
	}

	var o Order
	if err := store.Decode(doc, &o); err != nil {
		return err
	}
	if !o.CanTransitionTo(target) {
		return o.transitionError(target)
	}

	return s.docs.Set(ctx, Collection, orderID, store.Document{
		"status":     string(target),
		"updated_at": time.Now(),
	}, true)
}
