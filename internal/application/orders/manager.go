package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sellerdesk/sellerdesk/internal/domain/order"
	"github.com/sellerdesk/sellerdesk/internal/domain/shared"
)

// CycleState is the manager's refresh lifecycle state
type CycleState int32

const (
	// StateIdle means no refresh is running; mutations are allowed
	StateIdle CycleState = iota
	// StateFetching means remote pages are being pulled
	StateFetching
	// StateProcessing means the fetched cycle is being merged in
	StateProcessing
	// StateMutating means a remote or local mutation is in flight
	StateMutating
)

// String returns the state name
func (s CycleState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateProcessing:
		return "processing"
	case StateMutating:
		return "mutating"
	default:
		return "unknown"
	}
}

// Manager owns the in-memory order cache and reconciles it against the
// remote marketplace. One refresh cycle runs at a time; the cache is
// only touched when a cycle completes, so a failed cycle leaves the
// previous state fully intact.
type Manager struct {
	source    order.Source
	store     order.AnnotationStore
	publisher shared.EventPublisher
	logger    *zap.Logger
	pageSize  int

	mu    sync.Mutex
	state CycleState
	cache map[int64]order.Order
	ids   []int64 // insertion order
}

// NewManager creates a manager with an empty cache
func NewManager(source order.Source, store order.AnnotationStore, publisher shared.EventPublisher, pageSize int, logger *zap.Logger) *Manager {
	return &Manager{
		source:    source,
		store:     store,
		publisher: publisher,
		logger:    logger,
		pageSize:  pageSize,
		state:     StateIdle,
		cache:     make(map[int64]order.Order),
	}
}

// State returns the current cycle state
func (m *Manager) State() CycleState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// staging collects a cycle's outcome before anything is committed
type staging struct {
	orders  []order.Order
	events  []shared.DomainEvent
	created int
	updated int
}

// Refresh runs one full reconciliation cycle: fetch every page, merge
// each record with its local annotations, classify it against the
// cache, then commit and emit events. Only one cycle runs at a time;
// a second call while one is in flight returns ErrRefreshInFlight.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		return order.ErrRefreshInFlight
	}
	m.state = StateFetching
	m.mu.Unlock()

	stage, err := m.fetchCycle(ctx)
	if err != nil {
		m.failCycle(ctx, err)
		return err
	}

	m.mu.Lock()
	m.state = StateProcessing
	for _, o := range stage.orders {
		if _, ok := m.cache[o.ID]; !ok {
			m.ids = append(m.ids, o.ID)
		}
		m.cache[o.ID] = o
	}
	m.state = StateIdle
	m.mu.Unlock()

	// Per-order events first, in remote order, completion strictly last
	stage.events = append(stage.events, order.NewRefreshCompletedEvent(stage.created, stage.updated))
	if err := m.publisher.Publish(ctx, stage.events...); err != nil {
		m.logger.Warn("event delivery failed after refresh", zap.Error(err))
	}

	m.logger.Info("refresh completed",
		zap.Int("new", stage.created),
		zap.Int("updated", stage.updated),
		zap.Int("total", len(stage.orders)))
	return nil
}

func (m *Manager) fetchCycle(ctx context.Context) (*staging, error) {
	stage := &staging{}

	for offset := 0; ; {
		page, err := m.source.FetchPage(ctx, offset, m.pageSize)
		if err != nil {
			return nil, err
		}

		for i := range page.Orders {
			o := page.Orders[i]
			if err := m.store.Restore(&o); err != nil {
				// Annotation reads degrade to defaults; losing the overlay
				// for one cycle is better than failing the whole refresh.
				m.logger.Warn("annotation restore failed, using defaults",
					zap.Int64("order_id", o.ID), zap.Error(err))
			}

			m.mu.Lock()
			cached, known := m.cache[o.ID]
			m.mu.Unlock()

			switch {
			case !known:
				stage.created++
				stage.events = append(stage.events, order.NewReceivedEvent(o))
			case !cached.Equal(&o):
				stage.updated++
				stage.events = append(stage.events, order.NewUpdatedEvent(o))
			}
			stage.orders = append(stage.orders, o)
		}

		offset += len(page.Orders)
		if offset >= page.TotalCount || len(page.Orders) == 0 {
			return stage, nil
		}
	}
}

func (m *Manager) failCycle(ctx context.Context, cause error) {
	m.mu.Lock()
	m.state = StateIdle
	m.mu.Unlock()

	reason := refreshFailureReason(cause)
	m.logger.Error("refresh failed", zap.Error(cause))
	if err := m.publisher.Publish(ctx, order.NewRefreshFailedEvent(reason)); err != nil {
		m.logger.Warn("event delivery failed after refresh failure", zap.Error(err))
	}
}

func refreshFailureReason(err error) string {
	switch {
	case errors.Is(err, order.ErrAPIKeyMissing):
		return "No API key is configured. Add one under remote.api_key and try again."
	case errors.Is(err, order.ErrAuthFailed):
		return "The marketplace rejected the API key. Check that it is valid and not expired."
	case errors.Is(err, order.ErrMalformedResponse):
		return "The marketplace returned a response this build could not parse."
	default:
		return fmt.Sprintf("Fetching orders failed: %v", err)
	}
}

// MarkShipped marks the order fulfilled on the remote, re-applies the
// local annotations to the response, and replaces the cached record.
// The updated event fires unconditionally: the remote state changed
// even if the local rendering happens to be equal.
func (m *Manager) MarkShipped(ctx context.Context, id int64, trackingCode, trackingURL string) (order.Order, error) {
	if err := m.beginMutation(id); err != nil {
		return order.Order{}, err
	}
	defer m.endMutation()

	updated, err := m.source.MarkShipped(ctx, id, trackingCode, trackingURL)
	if err != nil {
		reason := "Marking the order shipped failed: " + err.Error()
		if errors.Is(err, order.ErrAuthFailed) {
			reason = "The marketplace rejected the API key while marking the order shipped."
		}
		m.logger.Error("mark shipped failed", zap.Int64("order_id", id), zap.Error(err))
		if pubErr := m.publisher.Publish(ctx, order.NewMutationFailedEvent(id, reason)); pubErr != nil {
			m.logger.Warn("event delivery failed after mutation failure", zap.Error(pubErr))
		}
		return order.Order{}, err
	}

	if err := m.store.Restore(updated); err != nil {
		m.logger.Warn("annotation restore failed, using defaults",
			zap.Int64("order_id", id), zap.Error(err))
	}

	m.mu.Lock()
	m.cache[id] = *updated
	m.mu.Unlock()

	if err := m.publisher.Publish(ctx, order.NewUpdatedEvent(*updated)); err != nil {
		m.logger.Warn("event delivery failed after mark shipped", zap.Error(err))
	}
	return cloneOrder(*updated), nil
}

// SetPackaging assigns a packaging type to the order. The store is
// written before the cache so a failed write never leaves the two
// disagreeing. Assigning a stock-tracked packaging (id >= 1)
// decrements its stock, floored at zero.
func (m *Manager) SetPackaging(ctx context.Context, id, packagingID int64) (order.Order, error) {
	if err := m.beginMutation(id); err != nil {
		return order.Order{}, err
	}
	defer m.endMutation()

	if packagingID >= 1 {
		if _, err := m.store.PackagingStock(packagingID); err != nil {
			return order.Order{}, err
		}
	}

	m.mu.Lock()
	o := m.cache[id]
	m.mu.Unlock()

	o.Packaging = packagingID
	if err := m.store.Save(&o); err != nil {
		return order.Order{}, err
	}

	m.mu.Lock()
	m.cache[id] = o
	m.mu.Unlock()

	if packagingID >= 1 {
		stock, err := m.store.PackagingStock(packagingID)
		if err == nil && stock > 0 {
			err = m.store.SetPackagingStock(packagingID, stock-1)
		}
		if err != nil {
			m.logger.Warn("packaging stock update failed",
				zap.Int64("packaging_id", packagingID), zap.Error(err))
		}
	}

	if err := m.publisher.Publish(ctx, order.NewUpdatedEvent(o)); err != nil {
		m.logger.Warn("event delivery failed after packaging change", zap.Error(err))
	}
	return cloneOrder(o), nil
}

// SetNote replaces the seller's note on the order
func (m *Manager) SetNote(ctx context.Context, id int64, note string) (order.Order, error) {
	if err := m.beginMutation(id); err != nil {
		return order.Order{}, err
	}
	defer m.endMutation()

	m.mu.Lock()
	o := m.cache[id]
	m.mu.Unlock()

	o.Note = note
	if err := m.store.Save(&o); err != nil {
		return order.Order{}, err
	}

	m.mu.Lock()
	m.cache[id] = o
	m.mu.Unlock()

	if err := m.publisher.Publish(ctx, order.NewUpdatedEvent(o)); err != nil {
		m.logger.Warn("event delivery failed after note change", zap.Error(err))
	}
	return cloneOrder(o), nil
}

// beginMutation checks that mutations are currently allowed, that the
// order is known, and claims the busy state. The guard is symmetric:
// while a mutation is suspended on the remote, refreshes and other
// mutations are rejected, so a stale fetch can never commit over the
// mutation's result. Callers must release with endMutation on every
// path.
func (m *Manager) beginMutation(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateIdle {
		return order.ErrMutationRejected
	}
	if _, ok := m.cache[id]; !ok {
		return order.ErrOrderNotFound
	}
	m.state = StateMutating
	return nil
}

func (m *Manager) endMutation() {
	m.mu.Lock()
	m.state = StateIdle
	m.mu.Unlock()
}

// Contains reports whether the order is in the cache
func (m *Manager) Contains(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.cache[id]
	return ok
}

// Order returns a copy of the cached order. Mutations go through the
// manager; callers never get a reference into the cache.
func (m *Manager) Order(id int64) (order.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.cache[id]
	if !ok {
		return order.Order{}, false
	}
	return cloneOrder(o), true
}

// OrderIDs returns the cached order IDs in insertion order
func (m *Manager) OrderIDs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, len(m.ids))
	copy(ids, m.ids)
	return ids
}

// Orders returns copies of all cached orders in insertion order
func (m *Manager) Orders() []order.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]order.Order, 0, len(m.ids))
	for _, id := range m.ids {
		out = append(out, cloneOrder(m.cache[id]))
	}
	return out
}

// Packagings lists the packaging types from the store
func (m *Manager) Packagings() ([]order.Packaging, error) {
	return m.store.Packagings()
}

// UpdatePackaging creates (ID == -1) or updates a packaging type
func (m *Manager) UpdatePackaging(p order.Packaging) (order.Packaging, error) {
	return m.store.UpdatePackaging(p)
}

// RemovePackaging deletes a packaging type unless still in use
func (m *Manager) RemovePackaging(id int64) error {
	return m.store.RemovePackaging(id)
}

// OrdersWithPackaging counts persisted assignments of the packaging
func (m *Manager) OrdersWithPackaging(id int64) (int, error) {
	return m.store.OrdersWithPackaging(id)
}

// cloneOrder deep-copies the slices so callers cannot reach back into
// the cache through shared backing arrays
func cloneOrder(o order.Order) order.Order {
	if o.Items != nil {
		items := make([]order.Item, len(o.Items))
		copy(items, o.Items)
		for i := range items {
			if items[i].Options != nil {
				opts := make([]order.ItemOption, len(items[i].Options))
				copy(opts, items[i].Options)
				items[i].Options = opts
			}
		}
		o.Items = items
	}
	if o.DiscountCodes != nil {
		codes := make([]string, len(o.DiscountCodes))
		copy(codes, o.DiscountCodes)
		o.DiscountCodes = codes
	}
	if o.FulfilledAt != nil {
		t := *o.FulfilledAt
		o.FulfilledAt = &t
	}
	if o.FulfillUntil != nil {
		t := *o.FulfillUntil
		o.FulfillUntil = &t
	}
	return o
}
