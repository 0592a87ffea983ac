package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	orderHandler "github.com/heshamdawsha976/sen2/internal/handler/http"
	"github.com/heshamdawsha976/sen2/internal/order"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, input order.CreateOrderInput) (*order.Order, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrderByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, newStatus order.OrderStatus) (*order.Order, error) {
	args := m.Called(ctx, id, newStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderService) ListOrders(ctx context.Context, filter order.ListFilter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) GetAnalytics(ctx context.Context) (*order.Analytics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Analytics), args.Error(1)
}

func (m *MockOrderService) GetConfirmation(ctx context.Context, id uuid.UUID) (*order.Confirmation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Confirmation), args.Error(1)
}

func (m *MockOrderService) ExportOrders(ctx context.Context, filter order.ListFilter, w io.Writer) error {
	args := m.Called(ctx, filter, w)
	return args.Error(0)
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func newTestRouter(service order.Service) chi.Router {
	router := chi.NewRouter()
	orderHandler.NewOrderHandler(service).RegisterRoutes(router)
	return router
}

func serve(t *testing.T, router http.Handler, method, target string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var env envelope
	if rr.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), "body: %s", rr.Body.String())
	}
	return rr, env
}

func TestOrderHandler_handleCreateOrder_Success(t *testing.T) {
	mockService := new(MockOrderService)
	router := newTestRouter(mockService)

	requestDTO := orderHandler.CreateOrderRequest{
		CustomerName:    "سارة محمود",
		CustomerPhone:   "01012345678",
		CustomerAddress: "القاهرة، مدينة نصر",
	}
	created := &order.Order{
		ID:              uuid.Must(uuid.NewV4()),
		CustomerName:    requestDTO.CustomerName,
		CustomerPhone:   requestDTO.CustomerPhone,
		CustomerAddress: requestDTO.CustomerAddress,
		Status:          order.StatusNew,
		CreatedAt:       time.Now().UTC().Truncate(time.Second),
		UpdatedAt:       time.Now().UTC().Truncate(time.Second),
	}

	mockService.On("CreateOrder", mock.Anything, order.CreateOrderInput{
		CustomerName:    requestDTO.CustomerName,
		CustomerPhone:   requestDTO.CustomerPhone,
		CustomerAddress: requestDTO.CustomerAddress,
	}).Return(created, nil).Once()

	rr, env := serve(t, router, http.MethodPost, "/orders", requestDTO)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.True(t, env.Success)

	var got order.Order
	require.NoError(t, json.Unmarshal(env.Data, &got))
	if diff := cmp.Diff(*created, got); diff != "" {
		t.Errorf("created order mismatch (-want +got):\n%s", diff)
	}
	mockService.AssertExpectations(t)
}

func TestOrderHandler_handleCreateOrder_ValidationError(t *testing.T) {
	mockService := new(MockOrderService)
	router := newTestRouter(mockService)

	details := map[string]string{"customer_phone": "رقم الهاتف غير صحيح"}
	mockService.On("CreateOrder", mock.Anything, mock.AnythingOfType("order.CreateOrderInput")).
		Return(nil, &order.ValidationError{Details: details}).Once()

	rr, env := serve(t, router, http.MethodPost, "/orders", orderHandler.CreateOrderRequest{
		CustomerName:    "Sara",
		CustomerPhone:   "12345",
		CustomerAddress: "Cairo",
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "يرجى التحقق من البيانات المدخلة", env.Error)
	assert.Equal(t, details, env.Details)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_handleCreateOrder_BadPayload(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"customer_name":`},
		{name: "unknown field", body: `{"customer_name":"Sara","status":"DELIVERED"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			router := newTestRouter(mockService)

			req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(tc.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			mockService.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
		})
	}
}

func TestOrderHandler_handleCreateOrder_StoreError(t *testing.T) {
	mockService := new(MockOrderService)
	router := newTestRouter(mockService)

	mockService.On("CreateOrder", mock.Anything, mock.Anything).
		Return(nil, errors.Join(order.ErrStore, errors.New("connection refused"))).Once()

	rr, env := serve(t, router, http.MethodPost, "/orders", orderHandler.CreateOrderRequest{
		CustomerName:    "Sara",
		CustomerPhone:   "01012345678",
		CustomerAddress: "Cairo",
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "فشل في إنشاء الطلب", env.Error)
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestOrderHandler_handleGetOrder(t *testing.T) {
	existingID := uuid.Must(uuid.NewV4())
	existing := &order.Order{ID: existingID, CustomerName: "Sara", Status: order.StatusNew}

	testCases := []struct {
		name           string
		target         string
		setupMock      func(m *MockOrderService)
		expectedStatus int
		expectedError  string
	}{
		{
			name:   "found",
			target: "/orders/" + existingID.String(),
			setupMock: func(m *MockOrderService) {
				m.On("GetOrderByID", mock.Anything, existingID).Return(existing, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "not found",
			target: "/orders/" + existingID.String(),
			setupMock: func(m *MockOrderService) {
				m.On("GetOrderByID", mock.Anything, existingID).Return(nil, order.ErrOrderNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "الطلب غير موجود",
		},
		{
			name:           "malformed id",
			target:         "/orders/not-a-uuid",
			setupMock:      func(m *MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "رقم الطلب غير صالح",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			tc.setupMock(mockService)

			rr, env := serve(t, newTestRouter(mockService), http.MethodGet, tc.target, nil)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.Equal(t, tc.expectedError, env.Error)
			assert.Equal(t, tc.expectedError == "", env.Success)
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_handleUpdateOrderStatus(t *testing.T) {
	id := uuid.Must(uuid.NewV4())

	testCases := []struct {
		name           string
		body           any
		setupMock      func(m *MockOrderService)
		expectedStatus int
	}{
		{
			name: "success lower case",
			body: orderHandler.UpdateOrderStatusRequest{Status: "delivered"},
			setupMock: func(m *MockOrderService) {
				m.On("UpdateOrderStatus", mock.Anything, id, order.StatusDelivered).
					Return(&order.Order{ID: id, Status: order.StatusDelivered}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown status",
			body:           orderHandler.UpdateOrderStatusRequest{Status: "SHIPPED"},
			setupMock:      func(m *MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing status",
			body:           map[string]string{},
			setupMock:      func(m *MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "not found",
			body: orderHandler.UpdateOrderStatusRequest{Status: "CANCELLED"},
			setupMock: func(m *MockOrderService) {
				m.On("UpdateOrderStatus", mock.Anything, id, order.StatusCancelled).
					Return(nil, order.ErrOrderNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			tc.setupMock(mockService)

			rr, _ := serve(t, newTestRouter(mockService), http.MethodPut, "/orders/"+id.String(), tc.body)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_handleDeleteOrder(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	mockService := new(MockOrderService)
	router := newTestRouter(mockService)

	mockService.On("DeleteOrder", mock.Anything, id).Return(nil).Once()
	mockService.On("DeleteOrder", mock.Anything, id).Return(order.ErrOrderNotFound).Once()

	rr, env := serve(t, router, http.MethodDelete, "/orders/"+id.String(), nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Success)
	assert.Empty(t, env.Data)

	rr, env = serve(t, router, http.MethodDelete, "/orders/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.False(t, env.Success)

	mockService.AssertExpectations(t)
}

func TestOrderHandler_handleListOrders_Filters(t *testing.T) {
	testCases := []struct {
		name           string
		target         string
		expectedFilter *order.ListFilter
		expectedStatus int
	}{
		{
			name:           "no filter",
			target:         "/orders",
			expectedFilter: &order.ListFilter{},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "status all means no filter",
			target:         "/orders?status=all&search=%20sara%20",
			expectedFilter: &order.ListFilter{Search: "sara"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "status filter",
			target:         "/orders?status=CANCELLED",
			expectedFilter: &order.ListFilter{Status: order.StatusCancelled},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid status",
			target:         "/orders?status=LOST",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			if tc.expectedFilter != nil {
				mockService.On("ListOrders", mock.Anything, *tc.expectedFilter).Return([]order.Order{}, nil).Once()
			}

			rr, env := serve(t, newTestRouter(mockService), http.MethodGet, tc.target, nil)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedStatus == http.StatusOK {
				assert.JSONEq(t, `[]`, string(env.Data))
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_handleGetAnalytics_StoreError(t *testing.T) {
	mockService := new(MockOrderService)
	mockService.On("GetAnalytics", mock.Anything).Return(nil, order.ErrStore).Once()

	rr, env := serve(t, newTestRouter(mockService), http.MethodGet, "/analytics/orders", nil)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "فشل في جلب الإحصائيات", env.Error)
}

func TestOrderHandler_handleExportOrders(t *testing.T) {
	mockService := new(MockOrderService)
	mockService.On("ExportOrders", mock.Anything, order.ListFilter{Status: order.StatusDelivered}, mock.Anything).
		Run(func(args mock.Arguments) {
			w := args.Get(2).(io.Writer)
			_, _ = io.WriteString(w, "header\nrow\n")
		}).
		Return(nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/orders/export?status=DELIVERED", nil)
	rr := httptest.NewRecorder()
	newTestRouter(mockService).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Regexp(t, `^attachment; filename="orders_\d{4}-\d{2}-\d{2}\.csv"$`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "header\nrow\n", rr.Body.String())
	mockService.AssertExpectations(t)
}
