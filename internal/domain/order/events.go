package order

import "github.com/sellerdesk/sellerdesk/internal/domain/shared"

// Event types emitted by the reconciliation engine
const (
	EventTypeOrderReceived    = "order.received"
	EventTypeOrderUpdated     = "order.updated"
	EventTypeRefreshCompleted = "order.refresh_completed"
	EventTypeRefreshFailed    = "order.refresh_failed"
	EventTypeMutationFailed   = "order.mutation_failed"
)

const aggregateTypeOrder = "Order"

// ReceivedEvent fires when an order shows up that was not in the cache
type ReceivedEvent struct {
	shared.BaseDomainEvent
	Order Order
}

// UpdatedEvent fires when a cached order's merged state changed
type UpdatedEvent struct {
	shared.BaseDomainEvent
	Order Order
}

// RefreshCompletedEvent fires once per successful refresh cycle,
// strictly after every per-order event of that cycle
type RefreshCompletedEvent struct {
	shared.BaseDomainEvent
	NewOrders     int
	UpdatedOrders int
}

// RefreshFailedEvent fires when a refresh cycle aborts; the cache is
// left exactly as it was before the cycle started
type RefreshFailedEvent struct {
	shared.BaseDomainEvent
	Reason string
}

// MutationFailedEvent fires when a remote mutation (mark shipped) is
// rejected; the cache is left untouched
type MutationFailedEvent struct {
	shared.BaseDomainEvent
	OrderID int64
	Reason  string
}

// NewReceivedEvent creates an order.received event
func NewReceivedEvent(o Order) *ReceivedEvent {
	return &ReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderReceived, aggregateTypeOrder, o.ID),
		Order:           o,
	}
}

// NewUpdatedEvent creates an order.updated event
func NewUpdatedEvent(o Order) *UpdatedEvent {
	return &UpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderUpdated, aggregateTypeOrder, o.ID),
		Order:           o,
	}
}

// NewRefreshCompletedEvent creates an order.refresh_completed event
func NewRefreshCompletedEvent(newOrders, updatedOrders int) *RefreshCompletedEvent {
	return &RefreshCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefreshCompleted, aggregateTypeOrder, 0),
		NewOrders:       newOrders,
		UpdatedOrders:   updatedOrders,
	}
}

// NewRefreshFailedEvent creates an order.refresh_failed event
func NewRefreshFailedEvent(reason string) *RefreshFailedEvent {
	return &RefreshFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefreshFailed, aggregateTypeOrder, 0),
		Reason:          reason,
	}
}

// NewMutationFailedEvent creates an order.mutation_failed event
func NewMutationFailedEvent(orderID int64, reason string) *MutationFailedEvent {
	return &MutationFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMutationFailed, aggregateTypeOrder, orderID),
		OrderID:         orderID,
		Reason:          reason,
	}
}
