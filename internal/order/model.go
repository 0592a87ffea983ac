package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

type OrderStatus string

const (
	StatusNew        OrderStatus = "NEW"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// Statuses lists every legal status in display order.
var Statuses = []OrderStatus{StatusNew, StatusProcessing, StatusDelivered, StatusCancelled}

var statusLabels = map[OrderStatus]string{
	StatusNew:        "جديد",
	StatusProcessing: "قيد التجهيز",
	StatusDelivered:  "تم التوصيل",
	StatusCancelled:  "ملغي",
}

func (os OrderStatus) String() string {
	return string(os)
}

// Label returns the customer-facing Arabic name of the status.
func (os OrderStatus) Label() string {
	return statusLabels[os]
}

func (os OrderStatus) Valid() bool {
	_, ok := statusLabels[os]
	return ok
}

// ParseStatus accepts the four status codes case-insensitively.
func ParseStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

type Order struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	CustomerName    string      `json:"customer_name" db:"customer_name"`
	CustomerPhone   string      `json:"customer_phone" db:"customer_phone"`
	CustomerAddress string      `json:"customer_address" db:"customer_address"`
	CustomerNotes   string      `json:"customer_notes,omitempty" db:"customer_notes"`
	Status          OrderStatus `json:"status" db:"status"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// CreateOrderInput holds the customer-supplied fields of a new order.
type CreateOrderInput struct {
	CustomerName    string `json:"customer_name" validate:"required,max=100"`
	CustomerPhone   string `json:"customer_phone" validate:"required,mobile"`
	CustomerAddress string `json:"customer_address" validate:"required,max=300"`
	CustomerNotes   string `json:"customer_notes" validate:"max=500"`
}

// ListFilter narrows ListOrders. Zero value matches everything.
type ListFilter struct {
	Search string
	Status OrderStatus
}

// Matches reports whether o would be returned for this filter.
func (f ListFilter) Matches(o Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(o.CustomerName), needle) ||
		strings.Contains(strings.ToLower(o.CustomerPhone), needle) ||
		strings.Contains(strings.ToLower(o.CustomerAddress), needle)
}
