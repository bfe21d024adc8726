package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somos/attraction/backend/internal/api/handlers"
	"github.com/somos/attraction/backend/internal/application/services"
	"github.com/somos/attraction/backend/internal/domain/entities"
)

type stubFeedbackRepository struct {
	created []*entities.Feedback
}

func (s *stubFeedbackRepository) Create(ctx context.Context, feedback *entities.Feedback) error {
	s.created = append(s.created, feedback)
	return nil
}

func newFeedbackHandler() (*handlers.FeedbackHandler, *stubFeedbackRepository) {
	repo := &stubFeedbackRepository{}
	return handlers.NewFeedbackHandler(services.NewFeedbackService(repo, nil)), repo
}

func TestFeedbackHandler_SubmitFeedback_Success(t *testing.T) {
	handler, repo := newFeedbackHandler()

	body := `{"rating":5,"message":"Great flow","email":"test@example.com","page":"/"}`
	req := httptest.NewRequest("POST", "/api/feedback", strings.NewReader(body))
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()

	handler.SubmitFeedback(w, withUser(req, userID))

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.created, 1)
	require.NotNil(t, repo.created[0].UserID)
	assert.Equal(t, userID, *repo.created[0].UserID)

	var response struct {
		Success bool              `json:"success"`
		Data    entities.Feedback `json:"data"`
	}
	err := json.NewDecoder(w.Body).Decode(&response)
	assert.NoError(t, err)
	assert.True(t, response.Success)
	assert.NotEmpty(t, response.Data.ID)
}

func TestFeedbackHandler_SubmitFeedback_Anonymous(t *testing.T) {
	handler, repo := newFeedbackHandler()

	req := httptest.NewRequest("POST", "/api/feedback", strings.NewReader(`{"rating":3}`))
	req.RemoteAddr = "10.0.0.3:1234"
	w := httptest.NewRecorder()
	handler.SubmitFeedback(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.created, 1)
	assert.Nil(t, repo.created[0].UserID)
}

func TestFeedbackHandler_SubmitFeedback_RateLimit(t *testing.T) {
	handler, _ := newFeedbackHandler()

	for i := 0; i < 5; i++ {
		body := `{"rating":4,"message":"ok-` + strconv.Itoa(i) + `"}`
		req := httptest.NewRequest("POST", "/api/feedback", strings.NewReader(body))
		req.RemoteAddr = "10.0.0.2:1234"
		w := httptest.NewRecorder()
		handler.SubmitFeedback(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
	}

	body := `{"rating":4,"message":"ok-dup"}`
	req := httptest.NewRequest("POST", "/api/feedback", strings.NewReader(body))
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	handler.SubmitFeedback(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestFeedbackHandler_SubmitFeedback_ForwardedFor(t *testing.T) {
	handler, _ := newFeedbackHandler()

	for i := 0; i < 6; i++ {
		body := `{"rating":2,"message":"proxy-` + strconv.Itoa(i) + `"}`
		req := httptest.NewRequest("POST", "/api/feedback", strings.NewReader(body))
		req.RemoteAddr = "10.0.0.50:1234"
		req.Header.Set("X-Forwarded-For", "203.0.113."+strconv.Itoa(i)+", 10.0.0.50")
		w := httptest.NewRecorder()
		handler.SubmitFeedback(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
	}
}

func TestFeedbackHandler_SubmitFeedback_Duplicate(t *testing.T) {
	handler, repo := newFeedbackHandler()

	body := `{"rating":5,"message":"Great flow","email":"test@example.com","page":"/"}`
	req := httptest.NewRequest("POST", "/api/feedback", strings.NewReader(body))
	req.RemoteAddr = "10.0.0.9:1234"
	w := httptest.NewRecorder()

	handler.SubmitFeedback(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	req2 := httptest.NewRequest("POST", "/api/feedback", strings.NewReader(body))
	req2.RemoteAddr = "10.0.0.9:1234"
	w2 := httptest.NewRecorder()

	handler.SubmitFeedback(w2, req2)
	assert.Equal(t, http.StatusAccepted, w2.Code)
	assert.Len(t, repo.created, 1)
}

func TestFeedbackHandler_SubmitFeedback_InvalidRating(t *testing.T) {
	handler, repo := newFeedbackHandler()

	req := httptest.NewRequest("POST", "/api/feedback", strings.NewReader(`{"rating":9}`))
	req.RemoteAddr = "10.0.0.4:1234"
	w := httptest.NewRecorder()
	handler.SubmitFeedback(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"rating":["rating must be between 1 and 5"]}}`, w.Body.String())
	assert.Empty(t, repo.created)
}

func TestFeedbackHandler_SubmitFeedback_AboutSearch(t *testing.T) {
	handler, repo := newFeedbackHandler()

	body := `{"rating":2,"message":"the walk was longer than shown","search":"6f1c2a8e-5b7d-4e3a-9c1f-2d4b6a8e0c13"}`
	req := httptest.NewRequest("POST", "/api/feedback", strings.NewReader(body))
	req.RemoteAddr = "10.0.0.5:1234"
	w := httptest.NewRecorder()
	handler.SubmitFeedback(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.created, 1)
	require.NotNil(t, repo.created[0].SearchID)
	assert.Equal(t, "6f1c2a8e-5b7d-4e3a-9c1f-2d4b6a8e0c13", *repo.created[0].SearchID)

	req = httptest.NewRequest("POST", "/api/feedback", strings.NewReader(`{"rating":2,"search":"yesterday"}`))
	req.RemoteAddr = "10.0.0.5:1234"
	w = httptest.NewRecorder()
	handler.SubmitFeedback(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"search":["Must be a valid UUID."]}}`, w.Body.String())
}

func TestFeedbackHandler_SubmitFeedback_PayloadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", ``, `{"success":false,"error":{"non_field_errors":["Request body is empty."]}}`},
		{"malformed json", `{"rating":`, `{"success":false,"error":{"non_field_errors":["Invalid JSON payload."]}}`},
		{"missing rating", `{"message":"hi"}`, `{"success":false,"error":{"rating":["This field is required."]}}`},
		{"bad email", `{"rating":4,"email":"nope"}`, `{"success":false,"error":{"email":["Enter a valid email address."]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, repo := newFeedbackHandler()

			req := httptest.NewRequest("POST", "/api/feedback", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.SubmitFeedback(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
			assert.Empty(t, repo.created)
		})
	}
}

func TestFeedbackHandler_ClientIPFallbacks(t *testing.T) {
	handler, _ := newFeedbackHandler()

	// Garbage in X-Forwarded-For falls through to X-Real-IP, so all six
	// requests share one rate limit bucket.
	for i := 0; i < 6; i++ {
		body := `{"rating":3,"message":"real-ip-` + strconv.Itoa(i) + `"}`
		req := httptest.NewRequest("POST", "/api/feedback", strings.NewReader(body))
		req.RemoteAddr = "10.0.0.60:1234"
		req.Header.Set("X-Forwarded-For", "unknown")
		req.Header.Set("X-Real-IP", "198.51.100.7")
		w := httptest.NewRecorder()
		handler.SubmitFeedback(w, req)

		if i < 5 {
			assert.Equal(t, http.StatusCreated, w.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, w.Code)
		}
	}
}
