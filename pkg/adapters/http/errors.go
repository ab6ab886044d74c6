package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/form"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) (int, string) {
	var verr *form.ValidationError
	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidOrder), errors.As(err, &verr):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrProductUnavailable),
		errors.Is(err, domain.ErrDuplicateOrderNumber):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}
