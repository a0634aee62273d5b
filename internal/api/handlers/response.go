package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

const (
	msgInternalError = "внутренняя ошибка сервера"
	msgRetryLater    = "хранилище временно недоступно, повторите запрос позже"
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// DecodeJSON декодирует тело запроса, неизвестные поля считаются ошибкой
func DecodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// RespondJSON отправляет JSON ответ. nil тело даёт пустой ответ с кодом.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	if data == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// RespondError отправляет ошибку с кодом и сообщением
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func RespondConflict(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusConflict, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// RespondDomainError переводит ошибку движка в HTTP статус.
// Сообщение доменной ошибки уже называет ресурс, окно или статусы.
// Возвращает false, если ошибка не доменная и её нужно обработать как внутреннюю.
func RespondDomainError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, domain.ErrSlotUnavailable):
		RespondConflict(w, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrCannotDelete):
		RespondConflict(w, err.Error())
	case errors.Is(err, domain.ErrResourceInactiveOrNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrServiceNotFound):
		RespondNotFound(w, err.Error())
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidWindow),
		errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrDateInPast),
		errors.Is(err, domain.ErrDateTooFarInFuture),
		errors.Is(err, domain.ErrTooLateToBook):
		RespondBadRequest(w, err.Error())
	case errors.Is(err, domain.ErrPersistenceTimeout):
		w.Header().Set("Retry-After", "1")
		RespondError(w, http.StatusServiceUnavailable, msgRetryLater)
	default:
		return false
	}
	return true
}
