package handlers

import (
	"context"
	"net/http"
	"net/netip"
	"strings"

	"github.com/somos/attraction/backend/internal/api/middleware"
	"github.com/somos/attraction/backend/internal/application/services"
	"github.com/somos/attraction/backend/internal/domain/entities"
)

// FeedbackSubmitter stores feedback; the bool reports an ignored duplicate.
type FeedbackSubmitter interface {
	Submit(ctx context.Context, sub services.FeedbackSubmission) (*entities.Feedback, bool, error)
}

type FeedbackHandler struct {
	service FeedbackSubmitter
}

func NewFeedbackHandler(service FeedbackSubmitter) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// Range and length limits are enforced by the service.
type feedbackPayload struct {
	Rating  int    `json:"rating" validate:"required"`
	Message string `json:"message"`
	Email   string `json:"email" validate:"omitempty,email"`
	Page    string `json:"page"`
	Search  string `json:"search" validate:"omitempty,uuid"`
}

// SubmitFeedback handles POST /api/feedback. Signed-in riders have their
// id attached; anonymous feedback is accepted too.
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var payload feedbackPayload
	if fieldErrs := decodeJSON(w, r, &payload); fieldErrs != nil {
		respondWithFailure(w, http.StatusBadRequest, fieldErrs)
		return
	}

	feedback, duplicate, err := h.service.Submit(r.Context(), services.FeedbackSubmission{
		Rating:    payload.Rating,
		Message:   payload.Message,
		Email:     payload.Email,
		Page:      payload.Page,
		SearchID:  payload.Search,
		UserAgent: r.UserAgent(),
		ClientIP:  clientIP(r),
		UserID:    middleware.CallerFromContext(r.Context()).UserID,
	})
	switch {
	case err != nil:
		respondWithEnvelopeError(w, r, err)
	case duplicate:
		respondWithJSON(w, http.StatusAccepted, map[string]interface{}{"success": true, "message": "duplicate_ignored"})
	default:
		respondWithData(w, http.StatusCreated, "Feedback submitted successfully", feedback)
	}
}

// clientIP picks the first parseable address from the proxy headers and
// falls back to the connection's peer address.
func clientIP(r *http.Request) string {
	candidates := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	candidates = append(candidates, r.Header.Get("X-Real-IP"))
	for _, candidate := range candidates {
		if addr, err := netip.ParseAddr(strings.TrimSpace(candidate)); err == nil {
			return addr.Unmap().String()
		}
	}

	if addrPort, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		return addrPort.Addr().Unmap().String()
	}
	return r.RemoteAddr
}
