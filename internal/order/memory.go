package order

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid"
)

// memoryRepository keeps orders in process memory. Used for local runs
// (STORE_DRIVER=memory) and tests.
type memoryRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]Order
}

func NewMemoryRepository() Repository {
	return &memoryRepository{orders: make(map[uuid.UUID]Order)}
}

func (r *memoryRepository) Create(_ context.Context, order *Order) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return uuid.Nil, fmt.Errorf("repository: failed to generate order ID: %w", err)
		}
		order.ID = id
	}
	if _, exists := r.orders[order.ID]; exists {
		return uuid.Nil, fmt.Errorf("repository: order %s: %w", order.ID, ErrOrderExists)
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	order.UpdatedAt = order.CreatedAt

	r.orders[order.ID] = *order
	return order.ID, nil
}

func (r *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &order, nil
}

func (r *memoryRepository) UpdateStatus(_ context.Context, id uuid.UUID, status OrderStatus) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return &order, nil
}

func (r *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *memoryRepository) List(_ context.Context, filter ListFilter) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.Matches(o) {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}
