package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/heshamdawsha976/sen2/internal/order"
)

type CreateOrderRequest struct {
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerAddress string `json:"customer_address"`
	CustomerNotes   string `json:"customer_notes,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
	now      func() time.Time
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Get("/orders", h.handleListOrders)
	router.Post("/orders", h.handleCreateOrder)
	router.Get("/orders/export", h.handleExportOrders)
	router.Get("/orders/{id}", h.handleGetOrder)
	router.Put("/orders/{id}", h.handleUpdateOrderStatus)
	router.Delete("/orders/{id}", h.handleDeleteOrder)
	router.Get("/orders/{id}/confirmation", h.handleGetConfirmation)
	router.Get("/analytics/orders", h.handleGetAnalytics)
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		log.Warn().Err(err).Msg("Invalid list filter")
		respondWithError(w, http.StatusBadRequest, msgInvalidStatus)
		return
	}

	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, err, msgListFailed)
		return
	}

	respondWithData(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateOrderRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode create order request")
		respondWithError(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}

	created, err := h.service.CreateOrder(r.Context(), order.CreateOrderInput{
		CustomerName:    requestPayload.CustomerName,
		CustomerPhone:   requestPayload.CustomerPhone,
		CustomerAddress: requestPayload.CustomerAddress,
		CustomerNotes:   requestPayload.CustomerNotes,
	})
	if err != nil {
		respondWithServiceError(w, err, msgCreateFailed)
		return
	}

	respondWithData(w, http.StatusCreated, created)
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(w, r)
	if !ok {
		return
	}

	found, err := h.service.GetOrderByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, msgFetchFailed)
		return
	}

	respondWithData(w, http.StatusOK, found)
}

func (h *OrderHandler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(w, r)
	if !ok {
		return
	}

	var requestPayload UpdateOrderStatusRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Stringer("order_id", id).Msg("Failed to decode update status request")
		respondWithError(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, msgInvalidStatus)
		return
	}

	status, err := order.ParseStatus(requestPayload.Status)
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", id).Msg("Rejected status value")
		respondWithError(w, http.StatusBadRequest, msgInvalidStatus)
		return
	}

	updated, err := h.service.UpdateOrderStatus(r.Context(), id, status)
	if err != nil {
		respondWithServiceError(w, err, msgUpdateFailed)
		return
	}

	respondWithData(w, http.StatusOK, updated)
}

func (h *OrderHandler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteOrder(r.Context(), id); err != nil {
		respondWithServiceError(w, err, msgDeleteFailed)
		return
	}

	respondWithJSON(w, http.StatusOK, Response{Success: true})
}

func (h *OrderHandler) handleGetConfirmation(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(w, r)
	if !ok {
		return
	}

	confirmation, err := h.service.GetConfirmation(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, msgFetchFailed)
		return
	}

	respondWithData(w, http.StatusOK, confirmation)
}

func (h *OrderHandler) handleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.service.GetAnalytics(r.Context())
	if err != nil {
		respondWithServiceError(w, err, msgAnalyticsFailed)
		return
	}

	respondWithData(w, http.StatusOK, analytics)
}

func (h *OrderHandler) handleExportOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, msgInvalidStatus)
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportOrders(r.Context(), filter, &buf); err != nil {
		respondWithServiceError(w, err, msgExportFailed)
		return
	}

	filename := fmt.Sprintf("orders_%s.csv", h.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error().Err(err).Msg("Failed to write export response")
	}
}

func parseListFilter(r *http.Request) (order.ListFilter, error) {
	q := r.URL.Query()
	filter := order.ListFilter{Search: strings.TrimSpace(q.Get("search"))}

	if raw := strings.TrimSpace(q.Get("status")); raw != "" && raw != "all" {
		status, err := order.ParseStatus(raw)
		if err != nil {
			return order.ListFilter{}, err
		}
		filter.Status = status
	}

	return filter, nil
}

func orderIDFromURL(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.FromString(idParam)
	if err != nil {
		log.Warn().Err(err).Str("order_id", idParam).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, msgInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
