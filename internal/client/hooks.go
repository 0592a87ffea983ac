package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/heshamdawsha976/sen2/internal/order"
)

const (
	OrdersStaleTime    = 2 * time.Minute
	AnalyticsStaleTime = 5 * time.Minute
)

// Mutation names passed to the Notifier.
const (
	ActionCreate     = "create_order"
	ActionUpdate     = "update_order_status"
	ActionDelete     = "delete_order"
	ActionBulkDelete = "delete_orders"
)

const (
	msgCreated     = "تم إنشاء الطلب بنجاح"
	msgUpdated     = "تم تحديث حالة الطلب بنجاح"
	msgDeleted     = "تم حذف الطلب بنجاح"
	msgBulkDeleted = "تم حذف %d طلب بنجاح"
)

// Backend is the set of calls the hooks need. *API satisfies it.
type Backend interface {
	ListOrders(ctx context.Context, filter order.ListFilter) ([]order.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error)
	CreateOrder(ctx context.Context, input order.CreateOrderInput) (*order.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status order.OrderStatus) (*order.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	GetAnalytics(ctx context.Context) (*order.Analytics, error)
}

type listEntry struct {
	filter    order.ListFilter
	orders    []order.Order
	fetchedAt time.Time
}

type detailEntry struct {
	order     order.Order
	fetchedAt time.Time
}

type analyticsEntry struct {
	analytics order.Analytics
	fetchedAt time.Time
}

type Option func(*Hooks)

func WithNotifier(n Notifier) Option {
	return func(h *Hooks) { h.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(h *Hooks) { h.now = now }
}

// Hooks serves order lists, order details and analytics from a local cache,
// refetching once an entry is stale. Mutations go straight to the backend and
// then patch the cache in place; the analytics entry is left to expire.
type Hooks struct {
	backend  Backend
	notifier Notifier
	now      func() time.Time

	mu        sync.Mutex
	lists     map[string]*listEntry
	details   map[uuid.UUID]*detailEntry
	analytics *analyticsEntry
}

func New(backend Backend, opts ...Option) *Hooks {
	h := &Hooks{
		backend:  backend,
		notifier: LogNotifier{},
		now:      time.Now,
		lists:    make(map[string]*listEntry),
		details:  make(map[uuid.UUID]*detailEntry),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func filterKey(f order.ListFilter) string {
	return f.Status.String() + "|" + f.Search
}

func (h *Hooks) fresh(fetchedAt time.Time, staleTime time.Duration) bool {
	return h.now().Sub(fetchedAt) < staleTime
}

// Orders returns the list for filter, from cache while it is fresh.
// Search is trimmed the way the server trims it.
func (h *Hooks) Orders(ctx context.Context, filter order.ListFilter) ([]order.Order, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	key := filterKey(filter)

	h.mu.Lock()
	if e, ok := h.lists[key]; ok && h.fresh(e.fetchedAt, OrdersStaleTime) {
		orders := cloneOrders(e.orders)
		h.mu.Unlock()
		return orders, nil
	}
	h.mu.Unlock()

	orders, err := h.backend.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("client: list orders: %w", err)
	}

	h.mu.Lock()
	h.lists[key] = &listEntry{filter: filter, orders: cloneOrders(orders), fetchedAt: h.now()}
	h.mu.Unlock()

	log.Debug().Str("filter", key).Int("count", len(orders)).Msg("client: order list fetched")
	return orders, nil
}

// Order returns a single order, from cache while it is fresh.
func (h *Hooks) Order(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	h.mu.Lock()
	if e, ok := h.details[id]; ok && h.fresh(e.fetchedAt, OrdersStaleTime) {
		o := e.order
		h.mu.Unlock()
		return &o, nil
	}
	h.mu.Unlock()

	o, err := h.backend.GetOrder(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			h.mu.Lock()
			delete(h.details, id)
			h.mu.Unlock()
		}
		return nil, fmt.Errorf("client: get order %s: %w", id, err)
	}

	h.mu.Lock()
	h.details[id] = &detailEntry{order: *o, fetchedAt: h.now()}
	h.mu.Unlock()
	return o, nil
}

// Analytics returns the dashboard numbers, from cache while they are fresh.
func (h *Hooks) Analytics(ctx context.Context) (*order.Analytics, error) {
	h.mu.Lock()
	if e := h.analytics; e != nil && h.fresh(e.fetchedAt, AnalyticsStaleTime) {
		a := e.analytics
		h.mu.Unlock()
		return &a, nil
	}
	h.mu.Unlock()

	a, err := h.backend.GetAnalytics(ctx)
	if err != nil {
		return nil, fmt.Errorf("client: get analytics: %w", err)
	}

	h.mu.Lock()
	h.analytics = &analyticsEntry{analytics: *a, fetchedAt: h.now()}
	h.mu.Unlock()
	return a, nil
}

// CreateOrder places an order and prepends it to every cached list it matches.
func (h *Hooks) CreateOrder(ctx context.Context, input order.CreateOrderInput) (*order.Order, error) {
	created, err := h.backend.CreateOrder(ctx, input)
	if err != nil {
		h.notifier.Failure(ActionCreate, err)
		return nil, fmt.Errorf("client: create order: %w", err)
	}

	h.mu.Lock()
	for _, e := range h.lists {
		if e.filter.Matches(*created) {
			e.orders = append([]order.Order{*created}, e.orders...)
		}
	}
	h.details[created.ID] = &detailEntry{order: *created, fetchedAt: h.now()}
	h.mu.Unlock()

	h.notifier.Success(ActionCreate, msgCreated)
	return created, nil
}

// UpdateOrderStatus changes the status and patches every cached copy of the order.
// Lists whose filter the order no longer matches drop it.
func (h *Hooks) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status order.OrderStatus) (*order.Order, error) {
	updated, err := h.backend.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		h.notifier.Failure(ActionUpdate, err)
		return nil, fmt.Errorf("client: update order %s: %w", id, err)
	}

	h.mu.Lock()
	for _, e := range h.lists {
		kept := e.orders[:0]
		for _, o := range e.orders {
			if o.ID == id {
				if !e.filter.Matches(*updated) {
					continue
				}
				o = *updated
			}
			kept = append(kept, o)
		}
		e.orders = kept
	}
	if e, ok := h.details[id]; ok {
		e.order = *updated
	}
	h.mu.Unlock()

	h.notifier.Success(ActionUpdate, msgUpdated)
	return updated, nil
}

// DeleteOrder removes the order on the server and from every cached view.
func (h *Hooks) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if err := h.deleteOrder(ctx, id); err != nil {
		h.notifier.Failure(ActionDelete, err)
		return err
	}
	h.notifier.Success(ActionDelete, msgDeleted)
	return nil
}

// DeleteOrders deletes ids one after another. Deletes that succeeded stay
// deleted when a later one fails; the returned error joins every failure.
func (h *Hooks) DeleteOrders(ctx context.Context, ids []uuid.UUID) error {
	var errs []error
	deleted := 0
	for _, id := range ids {
		if err := h.deleteOrder(ctx, id); err != nil {
			errs = append(errs, err)
			continue
		}
		deleted++
	}

	if err := errors.Join(errs...); err != nil {
		log.Warn().Int("deleted", deleted).Int("failed", len(errs)).Msg("client: bulk delete partially failed")
		h.notifier.Failure(ActionBulkDelete, err)
		return err
	}

	h.notifier.Success(ActionBulkDelete, fmt.Sprintf(msgBulkDeleted, deleted))
	return nil
}

// Invalidate drops every cached entry.
func (h *Hooks) Invalidate() {
	h.mu.Lock()
	h.lists = make(map[string]*listEntry)
	h.details = make(map[uuid.UUID]*detailEntry)
	h.analytics = nil
	h.mu.Unlock()
}

func (h *Hooks) deleteOrder(ctx context.Context, id uuid.UUID) error {
	if err := h.backend.DeleteOrder(ctx, id); err != nil {
		return fmt.Errorf("client: delete order %s: %w", id, err)
	}

	h.mu.Lock()
	for _, e := range h.lists {
		kept := e.orders[:0]
		for _, o := range e.orders {
			if o.ID != id {
				kept = append(kept, o)
			}
		}
		e.orders = kept
	}
	delete(h.details, id)
	h.mu.Unlock()

	return nil
}

func cloneOrders(in []order.Order) []order.Order {
	out := make([]order.Order, len(in))
	copy(out, in)
	return out
}
