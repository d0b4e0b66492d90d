package orders

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sellerdesk/sellerdesk/internal/domain/order"
	"github.com/sellerdesk/sellerdesk/internal/domain/shared"
)

// PersistenceHandler writes an order's local annotations back to the
// store whenever it changes, so the overlay survives a restart even if
// the process dies right after a mutation.
type PersistenceHandler struct {
	store  order.AnnotationStore
	logger *zap.Logger
}

var _ shared.EventHandler = (*PersistenceHandler)(nil)

// NewPersistenceHandler creates the persistence subscriber
func NewPersistenceHandler(store order.AnnotationStore, logger *zap.Logger) *PersistenceHandler {
	return &PersistenceHandler{store: store, logger: logger}
}

// EventTypes implements shared.EventHandler
func (h *PersistenceHandler) EventTypes() []string {
	return []string{order.EventTypeOrderUpdated}
}

// Handle implements shared.EventHandler
func (h *PersistenceHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	updated, ok := event.(*order.UpdatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %s", event.EventType())
	}
	o := updated.Order
	if err := h.store.Save(&o); err != nil {
		h.logger.Error("persisting order annotations failed",
			zap.Int64("order_id", o.ID), zap.Error(err))
		return err
	}
	return nil
}
