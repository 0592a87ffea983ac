package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ErrStore marks failures of the underlying order store.
var ErrStore = errors.New("order store failure")

// DefaultUnitPrice is the price of the single product, in EGP.
var DefaultUnitPrice = decimal.NewFromInt(350)

type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, newStatus OrderStatus) (*Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	ListOrders(ctx context.Context, filter ListFilter) ([]Order, error)
	GetAnalytics(ctx context.Context) (*Analytics, error)
	GetConfirmation(ctx context.Context, id uuid.UUID) (*Confirmation, error)
	ExportOrders(ctx context.Context, filter ListFilter, w io.Writer) error
}

type Option func(*service)

func WithUnitPrice(price decimal.Decimal) Option {
	return func(s *service) { s.unitPrice = price }
}

// WithLocation sets the time zone used for calendar-day analytics windows.
func WithLocation(loc *time.Location) Option {
	return func(s *service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithConfirmer(c *Confirmer) Option {
	return func(s *service) { s.confirmer = c }
}

type service struct {
	orderRepo Repository
	validate  *validator.Validate
	unitPrice decimal.Decimal
	loc       *time.Location
	now       func() time.Time
	confirmer *Confirmer
}

func NewService(orderRepo Repository, opts ...Option) Service {
	s := &service{
		orderRepo: orderRepo,
		validate:  newValidator(),
		unitPrice: DefaultUnitPrice,
		loc:       time.Local,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.confirmer == nil {
		s.confirmer = NewConfirmer("", "", s.unitPrice)
	}
	return s
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	input = normalizeInput(input)

	if err := s.validate.Struct(input); err != nil {
		log.Warn().Err(err).Msg("service: rejected order input")
		return nil, validationErrorFrom(err)
	}

	order := &Order{
		CustomerName:    input.CustomerName,
		CustomerPhone:   input.CustomerPhone,
		CustomerAddress: input.CustomerAddress,
		CustomerNotes:   input.CustomerNotes,
		Status:          StatusNew,
		CreatedAt:       s.now().UTC(),
	}

	if _, err := s.orderRepo.Create(ctx, order); err != nil {
		log.Error().Err(err).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w: %w", ErrStore, err)
	}

	log.Info().Stringer("order_id", order.ID).Msg("service: order created successfully")

	return order, nil
}

func (s *service) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", id).Msg("service: order not found by id")
			return nil, ErrOrderNotFound
		}

		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w: %w", ErrStore, err)
	}

	return order, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, id uuid.UUID, newStatus OrderStatus) (*Order, error) {
	if !newStatus.Valid() {
		log.Warn().Stringer("order_id", id).Stringer("new_status", newStatus).Msg("service: rejected unknown status")
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	order, err := s.orderRepo.UpdateStatus(ctx, id, newStatus)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", id).Stringer("new_status", newStatus).Msg("service: order not found, cannot update status")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Stringer("new_status", newStatus).Msg("service: failed to update order status in repository")
		return nil, fmt.Errorf("service: failed to update order status: %w: %w", ErrStore, err)
	}

	log.Info().Stringer("order_id", id).Stringer("new_status", newStatus).Msg("service: order status updated successfully")
	return order, nil
}

func (s *service) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	err := s.orderRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", id).Msg("service: order not found, cannot delete")
			return ErrOrderNotFound
		}

		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to delete order in repository")
		return fmt.Errorf("service: failed to delete order: %w: %w", ErrStore, err)
	}

	log.Info().Stringer("order_id", id).Msg("service: order deleted")
	return nil
}

func (s *service) ListOrders(ctx context.Context, filter ListFilter) ([]Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, filter.Status)
	}

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("search", filter.Search).Stringer("status", filter.Status).Msg("service: failed to list orders in repository")
		return nil, fmt.Errorf("service: failed to list orders: %w: %w", ErrStore, err)
	}

	return orders, nil
}

func (s *service) GetAnalytics(ctx context.Context) (*Analytics, error) {
	orders, err := s.orderRepo.List(ctx, ListFilter{})
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders for analytics")
		return nil, fmt.Errorf("service: failed to compute analytics: %w: %w", ErrStore, err)
	}

	analytics := ComputeAnalytics(orders, s.now(), s.loc, s.unitPrice)
	return &analytics, nil
}

func (s *service) GetConfirmation(ctx context.Context, id uuid.UUID) (*Confirmation, error) {
	order, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	confirmation := s.confirmer.Confirm(*order)
	return &confirmation, nil
}

func (s *service) ExportOrders(ctx context.Context, filter ListFilter, w io.Writer) error {
	orders, err := s.ListOrders(ctx, filter)
	if err != nil {
		return err
	}

	if err := WriteCSV(w, orders, s.loc); err != nil {
		log.Error().Err(err).Int("orders", len(orders)).Msg("service: failed to write orders export")
		return fmt.Errorf("service: failed to export orders: %w", err)
	}

	return nil
}
