package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/somos/attraction/backend/internal/infrastructure/observability"
	apperrors "github.com/somos/attraction/backend/pkg/errors"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// envelope is the response shape of the record management endpoints
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

func respondWithData(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	respondWithJSON(w, statusCode, envelope{Success: true, Message: message, Data: data})
}

func respondWithFailure(w http.ResponseWriter, statusCode int, details interface{}) {
	respondWithJSON(w, statusCode, map[string]interface{}{
		"success": false,
		"error":   details,
	})
}

// respondWithAppError writes the bare error shape used by the plan and stop
// endpoints.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	appErr, ok := apperrors.As(err)
	if !ok {
		logUnexpected(r, err)
		respondWithError(w, status, "internal server error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		body := map[string]string{"error": appErr.Message}
		if appErr.Field != "" {
			body["field"] = appErr.Field
		}
		respondWithJSON(w, status, body)
	case apperrors.ErrorTypeBadUpstream:
		respondWithJSON(w, status, map[string]json.RawMessage{"errors": upstreamErrors(appErr)})
	case apperrors.ErrorTypeRateLimited:
		setRetryAfter(w, appErr)
		respondWithError(w, status, appErr.Message)
	case apperrors.ErrorTypeInternal:
		logUnexpected(r, err)
		respondWithError(w, status, "internal server error")
	default:
		respondWithError(w, status, appErr.Message)
	}
}

// respondWithEnvelopeError writes failures of the record management endpoints
func respondWithEnvelopeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Type == apperrors.ErrorTypeInternal {
		logUnexpected(r, err)
		respondWithFailure(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		if appErr.Field != "" {
			respondWithFailure(w, status, map[string][]string{appErr.Field: {appErr.Message}})
			return
		}
	case apperrors.ErrorTypeBadUpstream:
		respondWithFailure(w, status, upstreamErrors(appErr))
		return
	case apperrors.ErrorTypeRateLimited:
		setRetryAfter(w, appErr)
	}
	respondWithFailure(w, status, appErr.Message)
}

func upstreamErrors(appErr *apperrors.AppError) json.RawMessage {
	if len(appErr.Details) == 0 {
		return json.RawMessage(`[]`)
	}
	return appErr.Details
}

func setRetryAfter(w http.ResponseWriter, appErr *apperrors.AppError) {
	seconds := int(appErr.RetryAfter.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
}

func logUnexpected(r *http.Request, err error) {
	observability.ComponentLogger(r.Context(), "http").Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")
}

// decodeJSON reads a JSON body into dst and validates it. The returned map is
// the per-field error list sent back to the client.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) map[string][]string {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string][]string{"non_field_errors": {"Request body is empty."}}
		}
		return map[string][]string{"non_field_errors": {"Invalid JSON payload."}}
	}

	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return map[string][]string{"non_field_errors": {err.Error()}}
		}
		out := make(map[string][]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			out[fe.Field()] = append(out[fe.Field()], fieldMessage(fe))
		}
		return out
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return "Ensure this field has no more than " + fe.Param() + " characters."
	case "gte", "lte":
		return "Value is out of range."
	case "datetime":
		return "Invalid format, expected " + fe.Param() + "."
	case "email":
		return "Enter a valid email address."
	case "uuid":
		return "Must be a valid UUID."
	default:
		return "Invalid value."
	}
}

// pageParams reads limit and offset query parameters; bad values fall back
// to zero so the service defaults apply.
func pageParams(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}
