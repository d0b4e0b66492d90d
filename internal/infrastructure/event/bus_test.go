package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/sellerdesk/sellerdesk/internal/domain/order"
	"github.com/sellerdesk/sellerdesk/internal/domain/shared"
)

type recordingHandler struct {
	types  []string
	events []shared.DomainEvent
	err    error
}

func (h *recordingHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	h.events = append(h.events, e)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func TestInMemoryEventBus_PublishDeliversInOrder(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{order.EventTypeOrderReceived, order.EventTypeRefreshCompleted}}
	bus.Subscribe(handler)

	o := order.New()
	o.ID = 1

	err := bus.Publish(context.Background(),
		order.NewReceivedEvent(o),
		order.NewRefreshCompletedEvent(1, 0),
	)
	assert.NoError(t, err)

	if assert.Len(t, handler.events, 2) {
		assert.Equal(t, order.EventTypeOrderReceived, handler.events[0].EventType())
		assert.Equal(t, order.EventTypeRefreshCompleted, handler.events[1].EventType())
	}
}

func TestInMemoryEventBus_TypeFiltering(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	updatedOnly := &recordingHandler{}
	bus.Subscribe(updatedOnly, order.EventTypeOrderUpdated)

	o := order.New()
	o.ID = 2

	_ = bus.Publish(context.Background(), order.NewReceivedEvent(o))
	assert.Empty(t, updatedOnly.events)

	_ = bus.Publish(context.Background(), order.NewUpdatedEvent(o))
	assert.Len(t, updatedOnly.events, 1)
}

func TestInMemoryEventBus_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	all := &recordingHandler{}
	bus.Subscribe(all)

	o := order.New()
	_ = bus.Publish(context.Background(),
		order.NewReceivedEvent(o),
		order.NewRefreshFailedEvent("boom"),
	)

	assert.Len(t, all.events, 2)
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopDispatch(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := &recordingHandler{err: errors.New("handler broke")}
	ok := &recordingHandler{}
	bus.Subscribe(failing, order.EventTypeOrderUpdated)
	bus.Subscribe(ok, order.EventTypeOrderUpdated)

	o := order.New()
	err := bus.Publish(context.Background(), order.NewUpdatedEvent(o))

	assert.NoError(t, err)
	assert.Len(t, ok.events, 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{}
	bus.Subscribe(handler, order.EventTypeOrderUpdated)
	bus.Unsubscribe(handler)

	o := order.New()
	_ = bus.Publish(context.Background(), order.NewUpdatedEvent(o))

	assert.Empty(t, handler.events)
}
