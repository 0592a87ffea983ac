package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/heshamdawsha976/sen2/internal/order"
)

// Client-facing messages.
const (
	msgInvalidPayload  = "بيانات الطلب غير صالحة"
	msgValidation      = "يرجى التحقق من البيانات المدخلة"
	msgInvalidID       = "رقم الطلب غير صالح"
	msgInvalidStatus   = "حالة الطلب غير صالحة"
	msgNotFound        = "الطلب غير موجود"
	msgListFailed      = "فشل في جلب الطلبات"
	msgCreateFailed    = "فشل في إنشاء الطلب"
	msgUpdateFailed    = "فشل في تحديث الطلب"
	msgDeleteFailed    = "فشل في حذف الطلب"
	msgFetchFailed     = "فشل في جلب الطلب"
	msgAnalyticsFailed = "فشل في جلب الإحصائيات"
	msgExportFailed    = "فشل في تصدير الطلبات"
	msgRateLimited     = "تم تجاوز الحد المسموح من الطلبات. يرجى المحاولة لاحقاً."
	msgOriginRejected  = "طلب غير مصرح به"
)

// Response is the envelope of every API response.
type Response struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func respondWithData(w http.ResponseWriter, code int, data any) {
	respondWithJSON(w, code, Response{Success: true, Data: data})
}

// respondWithError sends a failed envelope.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, Response{Success: false, Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError maps a service error to a status and message.
// Store failures get the generic fallback; the cause stays in the logs.
func respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	code := mapErrorToStatusCode(err)

	var ve *order.ValidationError
	switch {
	case errors.As(err, &ve):
		respondWithJSON(w, code, Response{Success: false, Error: msgValidation, Details: ve.Details})
	case errors.Is(err, order.ErrInvalidStatus):
		respondWithError(w, code, msgInvalidStatus)
	case errors.Is(err, order.ErrOrderNotFound):
		respondWithError(w, code, msgNotFound)
	default:
		log.Error().Err(err).Msg("Request failed with internal error")
		respondWithError(w, code, fallback)
	}
}
