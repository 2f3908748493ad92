package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/BlundaBranco/SweetCookies-Manager/internal/auth"
	"github.com/BlundaBranco/SweetCookies-Manager/internal/order"
	"github.com/BlundaBranco/SweetCookies-Manager/internal/report"
	"github.com/BlundaBranco/SweetCookies-Manager/internal/user"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type ValidationErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Success: false, Error: message})
}

// respondWithSuccess writes {"success": true, key: payload}. An empty key
// writes the bare envelope.
func respondWithSuccess(w http.ResponseWriter, code int, key string, payload any) {
	body := map[string]any{"success": true}
	if key != "" {
		body[key] = payload
	}
	respondWithJSON(w, code, body)
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
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, order.ErrInvalidOrder), errors.Is(err, report.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, auth.ErrNoSession),
		errors.Is(err, auth.ErrInvalidSession):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError maps err to a status and hides internal details
// behind fallback.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := mapErrorToStatusCode(err)

	var vErr *order.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondWithJSON(w, status, ValidationErrorResponse{
			Error:   "Validation failed",
			Details: map[string]string{vErr.Field: vErr.Reason},
		})
	case status == http.StatusInternalServerError:
		log.Error().Err(err).Str("path", r.URL.Path).Msg(fallback)
		respondWithError(w, status, fallback)
	default:
		respondWithError(w, status, err.Error())
	}
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		var reason string
		switch fe.Tag() {
		case "required":
			reason = "is required"
		case "gt":
			reason = fmt.Sprintf("must be greater than %s", fe.Param())
		case "min":
			reason = fmt.Sprintf("must be at least %s", fe.Param())
		case "max":
			reason = fmt.Sprintf("must be at most %s", fe.Param())
		default:
			reason = fmt.Sprintf("failed on %s", fe.Tag())
		}
		details[fieldPath(fe)] = reason
	}
	return details
}

// fieldPath turns "CreateOrderRequest.items[0].quantity" into
// "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

// validateStruct writes the error response itself and reports whether the
// request may proceed.
func validateStruct(w http.ResponseWriter, v *validator.Validate, payload any) bool {
	err := v.Struct(payload)
	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:   "Validation failed",
			Details: formatValidationErrors(validationErrors),
		})
	} else {
		log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
		respondWithError(w, http.StatusInternalServerError, "Internal validation error")
	}
	return false
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// newValidator reports JSON field names instead of Go field names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil || id <= 0 {
		log.Warn().Str("order_id", idParam).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return 0, false
	}
	return id, true
}
