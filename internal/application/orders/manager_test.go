package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sellerdesk/sellerdesk/internal/domain/order"
	"github.com/sellerdesk/sellerdesk/internal/domain/shared"
	"github.com/sellerdesk/sellerdesk/internal/infrastructure/event"
)

// fakeSource serves a fixed remote order set in pages
type fakeSource struct {
	mu         sync.Mutex
	orders     []order.Order
	fetchCalls int
	failAtPage int // 1-based, 0 = never
	fetchGate  chan struct{}
	shipGate   chan struct{}
	shipErr    error
}

func (f *fakeSource) FetchPage(ctx context.Context, offset, limit int) (*order.Page, error) {
	f.mu.Lock()
	f.fetchCalls++
	call := f.fetchCalls
	gate := f.fetchGate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if f.failAtPage != 0 && call >= f.failAtPage {
		return nil, fmt.Errorf("boom: %w", order.ErrTransport)
	}

	end := offset + limit
	if end > len(f.orders) {
		end = len(f.orders)
	}
	page := &order.Page{Offset: offset, TotalCount: len(f.orders)}
	for _, o := range f.orders[offset:end] {
		page.Orders = append(page.Orders, o)
	}
	return page, nil
}

func (f *fakeSource) MarkShipped(ctx context.Context, id int64, trackingCode, trackingURL string) (*order.Order, error) {
	if f.shipGate != nil {
		<-f.shipGate
	}
	if f.shipErr != nil {
		return nil, f.shipErr
	}
	for _, o := range f.orders {
		if o.ID == id {
			shipped := o
			shipped.Status = "fulfilled"
			now := time.Now()
			shipped.FulfilledAt = &now
			shipped.Tracking.Code = trackingCode
			shipped.Tracking.URL = trackingURL
			return &shipped, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

type annotation struct {
	packaging int64
	note      string
	packed    map[int]bool
}

// fakeStore is an in-memory order.AnnotationStore
type fakeStore struct {
	mu          sync.Mutex
	annotations map[int64]annotation
	stocks      map[int64]int
	saves       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		annotations: make(map[int64]annotation),
		stocks:      make(map[int64]int),
	}
}

func (f *fakeStore) Restore(o *order.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.annotations[o.ID]
	if !ok {
		return nil
	}
	if a.packaging >= 0 {
		o.Packaging = a.packaging
	}
	o.Note = a.note
	for i := range o.Items {
		if packed, ok := a.packed[i]; ok {
			o.Items[i].Packaged = packed
		}
	}
	return nil
}

func (f *fakeStore) Save(o *order.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	a := annotation{packaging: order.PackagingNone, packed: make(map[int]bool)}
	if prev, ok := f.annotations[o.ID]; ok {
		a = prev
	}
	if o.Packaging >= 0 {
		a.packaging = o.Packaging
	}
	a.note = o.Note
	for i, item := range o.Items {
		a.packed[i] = item.Packaged
	}
	f.annotations[o.ID] = a
	return nil
}

func (f *fakeStore) Packagings() ([]order.Packaging, error) { return nil, nil }

func (f *fakeStore) UpdatePackaging(p order.Packaging) (order.Packaging, error) { return p, nil }

func (f *fakeStore) RemovePackaging(id int64) error { return nil }

func (f *fakeStore) OrdersWithPackaging(id int64) (int, error) { return 0, nil }

func (f *fakeStore) PackagingStock(id int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stock, ok := f.stocks[id]
	if !ok {
		return 0, order.ErrPackagingNotFound
	}
	return stock, nil
}

func (f *fakeStore) SetPackagingStock(id int64, stock int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.stocks[id]; !ok {
		return order.ErrPackagingNotFound
	}
	f.stocks[id] = stock
	return nil
}

// recorder captures event types in delivery order
type recorder struct {
	mu     sync.Mutex
	types  []string
	events []shared.DomainEvent
}

func (r *recorder) Handle(ctx context.Context, e shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, e.EventType())
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) EventTypes() []string { return nil }

func (r *recorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.types))
	copy(out, r.types)
	return out
}

func remoteOrder(id int64, total float64) order.Order {
	o := order.New()
	o.ID = id
	o.Currency = "EUR"
	o.Total = decimal.NewFromFloat(total)
	o.Status = order.StatusPaymentSuccess
	o.Items = []order.Item{{Quantity: 1, Product: order.Product{Name: "Widget"}}}
	return o
}

func remoteOrders(n int) []order.Order {
	out := make([]order.Order, n)
	for i := range out {
		out[i] = remoteOrder(int64(i+1), 10)
	}
	return out
}

type fixture struct {
	manager *Manager
	source  *fakeSource
	store   *fakeStore
	events  *recorder
}

func newFixture(t *testing.T, source *fakeSource, pageSize int) *fixture {
	t.Helper()
	store := newFakeStore()
	bus := event.NewInMemoryEventBus(zap.NewNop())
	rec := &recorder{}
	bus.Subscribe(rec)
	bus.Subscribe(NewPersistenceHandler(store, zap.NewNop()), order.EventTypeOrderUpdated)
	return &fixture{
		manager: NewManager(source, store, bus, pageSize, zap.NewNop()),
		source:  source,
		store:   store,
		events:  rec,
	}
}

func TestRefresh_ClassifiesOrders(t *testing.T) {
	source := &fakeSource{orders: []order.Order{remoteOrder(1, 10), remoteOrder(2, 20)}}
	f := newFixture(t, source, 50)

	require.NoError(t, f.manager.Refresh(context.Background()))
	assert.Equal(t, []string{
		order.EventTypeOrderReceived,
		order.EventTypeOrderReceived,
		order.EventTypeRefreshCompleted,
	}, f.events.recorded())

	completed := f.events.events[2].(*order.RefreshCompletedEvent)
	assert.Equal(t, 2, completed.NewOrders)
	assert.Equal(t, 0, completed.UpdatedOrders)

	// Second cycle: order 2 changed remotely, order 1 untouched
	source.orders[1].Total = decimal.NewFromFloat(25)
	f.events.types = nil
	f.events.events = nil

	require.NoError(t, f.manager.Refresh(context.Background()))
	assert.Equal(t, []string{
		order.EventTypeOrderUpdated,
		order.EventTypeRefreshCompleted,
	}, f.events.recorded())

	cached, ok := f.manager.Order(2)
	require.True(t, ok)
	assert.True(t, cached.Total.Equal(decimal.NewFromFloat(25)))
}

func TestRefresh_Pagination(t *testing.T) {
	source := &fakeSource{orders: remoteOrders(120)}
	f := newFixture(t, source, 50)

	require.NoError(t, f.manager.Refresh(context.Background()))

	assert.Equal(t, 3, source.fetchCalls)
	assert.Len(t, f.manager.OrderIDs(), 120)

	// IDs keep the remote order
	ids := f.manager.OrderIDs()
	assert.Equal(t, int64(1), ids[0])
	assert.Equal(t, int64(120), ids[119])

	// Completion fires exactly once, after every per-order event, with
	// counts summed across all pages
	recorded := f.events.recorded()
	require.Len(t, recorded, 121)
	completions := 0
	for _, eventType := range recorded {
		if eventType == order.EventTypeRefreshCompleted {
			completions++
		}
	}
	assert.Equal(t, 1, completions)
	assert.Equal(t, order.EventTypeRefreshCompleted, recorded[120])

	completed := f.events.events[120].(*order.RefreshCompletedEvent)
	assert.Equal(t, 120, completed.NewOrders)
	assert.Equal(t, 0, completed.UpdatedOrders)
}

func TestRefresh_SingleFlight(t *testing.T) {
	source := &fakeSource{orders: remoteOrders(1), fetchGate: make(chan struct{})}
	f := newFixture(t, source, 50)

	done := make(chan error, 1)
	go func() { done <- f.manager.Refresh(context.Background()) }()

	// Wait until the first cycle is inside FetchPage
	for f.manager.State() == StateIdle {
		time.Sleep(time.Millisecond)
	}

	assert.ErrorIs(t, f.manager.Refresh(context.Background()), order.ErrRefreshInFlight)

	_, err := f.manager.MarkShipped(context.Background(), 1, "", "")
	assert.ErrorIs(t, err, order.ErrMutationRejected)

	close(source.fetchGate)
	require.NoError(t, <-done)
	assert.Equal(t, StateIdle, f.manager.State())

	// With the cycle finished, refresh works again
	require.NoError(t, f.manager.Refresh(context.Background()))
}

func TestRefresh_FailureLeavesCacheUntouched(t *testing.T) {
	source := &fakeSource{orders: remoteOrders(100)}
	f := newFixture(t, source, 50)
	require.NoError(t, f.manager.Refresh(context.Background()))
	require.Len(t, f.manager.OrderIDs(), 100)

	// Remote changes plus a failure on the second page
	source.orders[0].Total = decimal.NewFromFloat(99)
	source.failAtPage = source.fetchCalls + 2
	f.events.types = nil
	f.events.events = nil

	err := f.manager.Refresh(context.Background())
	assert.ErrorIs(t, err, order.ErrTransport)

	// No per-order events leaked from the aborted cycle
	assert.Equal(t, []string{order.EventTypeRefreshFailed}, f.events.recorded())

	cached, ok := f.manager.Order(1)
	require.True(t, ok)
	assert.True(t, cached.Total.Equal(decimal.NewFromFloat(10)), "aborted cycle must not merge")

	assert.Equal(t, StateIdle, f.manager.State())
}

func TestRefresh_RestoresAnnotations(t *testing.T) {
	source := &fakeSource{orders: remoteOrders(1)}
	f := newFixture(t, source, 50)
	f.store.annotations[1] = annotation{packaging: 3, note: "careful", packed: map[int]bool{0: true}}

	require.NoError(t, f.manager.Refresh(context.Background()))

	cached, ok := f.manager.Order(1)
	require.True(t, ok)
	assert.Equal(t, int64(3), cached.Packaging)
	assert.Equal(t, "careful", cached.Note)
	assert.True(t, cached.Items[0].Packaged)
}

func TestMarkShipped(t *testing.T) {
	source := &fakeSource{orders: remoteOrders(2)}
	f := newFixture(t, source, 50)
	require.NoError(t, f.manager.Refresh(context.Background()))
	f.events.types = nil
	f.events.events = nil

	shipped, err := f.manager.MarkShipped(context.Background(), 1, "TRACK-9", "https://track.example/9")
	require.NoError(t, err)
	assert.Equal(t, "fulfilled", shipped.Status)
	assert.Equal(t, "TRACK-9", shipped.Tracking.Code)

	// The event fires even though only the remote side changed, and the
	// persistence subscriber saved the order
	assert.Equal(t, []string{order.EventTypeOrderUpdated}, f.events.recorded())
	assert.Positive(t, f.store.saves)

	cached, ok := f.manager.Order(1)
	require.True(t, ok)
	assert.Equal(t, "fulfilled", cached.Status)
}

func TestMarkShipped_AuthFailure(t *testing.T) {
	source := &fakeSource{orders: remoteOrders(1)}
	f := newFixture(t, source, 50)
	require.NoError(t, f.manager.Refresh(context.Background()))
	f.events.types = nil
	f.events.events = nil

	source.shipErr = fmt.Errorf("401: %w", order.ErrAuthFailed)

	_, err := f.manager.MarkShipped(context.Background(), 1, "", "")
	assert.ErrorIs(t, err, order.ErrAuthFailed)

	require.Equal(t, []string{order.EventTypeMutationFailed}, f.events.recorded())
	failed := f.events.events[0].(*order.MutationFailedEvent)
	assert.Equal(t, int64(1), failed.OrderID)
	assert.Contains(t, failed.Reason, "API key")

	cached, ok := f.manager.Order(1)
	require.True(t, ok)
	assert.Equal(t, order.StatusPaymentSuccess, cached.Status)
}

func TestMarkShipped_BlocksConcurrentRefresh(t *testing.T) {
	source := &fakeSource{orders: remoteOrders(1), shipGate: make(chan struct{})}
	f := newFixture(t, source, 50)
	require.NoError(t, f.manager.Refresh(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := f.manager.MarkShipped(context.Background(), 1, "TRACK-1", "")
		done <- err
	}()

	// Wait until the mutation is suspended on the remote PUT
	for f.manager.State() != StateMutating {
		time.Sleep(time.Millisecond)
	}

	// The guard is symmetric: neither a refresh nor a second mutation
	// may run while the PUT is in flight
	assert.ErrorIs(t, f.manager.Refresh(context.Background()), order.ErrRefreshInFlight)
	_, err := f.manager.SetNote(context.Background(), 1, "scribble")
	assert.ErrorIs(t, err, order.ErrMutationRejected)

	close(source.shipGate)
	require.NoError(t, <-done)
	assert.Equal(t, StateIdle, f.manager.State())

	// The shipped result survived: nothing overwrote it with a stale
	// pre-ship snapshot
	cached, ok := f.manager.Order(1)
	require.True(t, ok)
	require.NotNil(t, cached.FulfilledAt)
	assert.Equal(t, "TRACK-1", cached.Tracking.Code)
}

func TestMarkShipped_UnknownOrder(t *testing.T) {
	source := &fakeSource{orders: remoteOrders(1)}
	f := newFixture(t, source, 50)
	require.NoError(t, f.manager.Refresh(context.Background()))

	_, err := f.manager.MarkShipped(context.Background(), 42, "", "")
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestSetPackaging(t *testing.T) {
	source := &fakeSource{orders: remoteOrders(1)}
	f := newFixture(t, source, 50)
	require.NoError(t, f.manager.Refresh(context.Background()))
	f.store.stocks[5] = 2

	updated, err := f.manager.SetPackaging(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.Packaging)

	stock, err := f.store.PackagingStock(5)
	require.NoError(t, err)
	assert.Equal(t, 1, stock)

	// Stock floors at zero
	_, err = f.manager.SetPackaging(context.Background(), 1, 5)
	require.NoError(t, err)
	_, err = f.manager.SetPackaging(context.Background(), 1, 5)
	require.NoError(t, err)
	stock, _ = f.store.PackagingStock(5)
	assert.Equal(t, 0, stock)
}

func TestSetPackaging_UnknownPackaging(t *testing.T) {
	source := &fakeSource{orders: remoteOrders(1)}
	f := newFixture(t, source, 50)
	require.NoError(t, f.manager.Refresh(context.Background()))

	_, err := f.manager.SetPackaging(context.Background(), 1, 99)
	assert.ErrorIs(t, err, order.ErrPackagingNotFound)
}

func TestSetPackaging_DefaultNeedsNoStock(t *testing.T) {
	source := &fakeSource{orders: remoteOrders(1)}
	f := newFixture(t, source, 50)
	require.NoError(t, f.manager.Refresh(context.Background()))

	updated, err := f.manager.SetPackaging(context.Background(), 1, order.PackagingDefault)
	require.NoError(t, err)
	assert.Equal(t, order.PackagingDefault, updated.Packaging)
}

func TestSetNote(t *testing.T) {
	source := &fakeSource{orders: remoteOrders(1)}
	f := newFixture(t, source, 50)
	require.NoError(t, f.manager.Refresh(context.Background()))

	updated, err := f.manager.SetNote(context.Background(), 1, "resend sticker")
	require.NoError(t, err)
	assert.Equal(t, "resend sticker", updated.Note)

	// Survives the next cycle via the annotation overlay
	require.NoError(t, f.manager.Refresh(context.Background()))
	cached, ok := f.manager.Order(1)
	require.True(t, ok)
	assert.Equal(t, "resend sticker", cached.Note)
}

func TestOrder_ReturnsCopy(t *testing.T) {
	source := &fakeSource{orders: remoteOrders(1)}
	f := newFixture(t, source, 50)
	require.NoError(t, f.manager.Refresh(context.Background()))

	o, ok := f.manager.Order(1)
	require.True(t, ok)
	o.Items[0].Packaged = true
	o.Note = "scribble"

	cached, _ := f.manager.Order(1)
	assert.False(t, cached.Items[0].Packaged)
	assert.Empty(t, cached.Note)
}

func TestRefresh_ErrorEquality(t *testing.T) {
	source := &fakeSource{orders: remoteOrders(1), failAtPage: 1}
	f := newFixture(t, source, 50)

	err := f.manager.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, order.ErrTransport))
	assert.Empty(t, f.manager.OrderIDs())
}
