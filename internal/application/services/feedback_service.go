package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/somos/attraction/backend/internal/domain/providers"
	"github.com/somos/attraction/backend/internal/domain/repositories"
	"github.com/somos/attraction/backend/internal/infrastructure/observability"
	apperrors "github.com/somos/attraction/backend/pkg/errors"
)

const (
	feedbackRateLimit   = 5
	feedbackRateWindow  = time.Hour
	feedbackDedupWindow = 24 * time.Hour

	maxFeedbackMessage = 1000
	maxFeedbackEmail   = 200
	maxFeedbackPage    = 300
)

// FeedbackSubmission is a feedback form as received from a client
type FeedbackSubmission struct {
	Rating    int
	Message   string
	Email     string
	Page      string
	SearchID  string
	UserAgent string
	ClientIP  string
	UserID    string
}

// FeedbackService stores feedback. Submissions are rate limited per client IP
// and identical submissions within a day are ignored. Counters live in the
// shared cache and fall back to process memory when the cache is missing or
// failing.
type FeedbackService struct {
	repo    repositories.FeedbackRepository
	cache   providers.CacheProvider
	local   *localRateLimiter
	deduper *localDeduper
}

// NewFeedbackService creates a new feedback service. cache may be nil.
func NewFeedbackService(repo repositories.FeedbackRepository, cache providers.CacheProvider) *FeedbackService {
	return &FeedbackService{
		repo:    repo,
		cache:   cache,
		local:   newLocalRateLimiter(),
		deduper: newLocalDeduper(),
	}
}

// Submit validates and stores feedback. duplicate is true when an identical
// submission was already accepted, in which case nothing is stored.
func (s *FeedbackService) Submit(ctx context.Context, sub FeedbackSubmission) (feedback *entities.Feedback, duplicate bool, err error) {
	sub.Message = strings.TrimSpace(sub.Message)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.Page = strings.TrimSpace(sub.Page)

	switch {
	case sub.Rating < 1 || sub.Rating > 5:
		return nil, false, apperrors.NewFieldValidationError("rating", "rating must be between 1 and 5")
	case len(sub.Message) > maxFeedbackMessage:
		return nil, false, apperrors.NewFieldValidationError("message", "message is too long")
	case len(sub.Email) > maxFeedbackEmail:
		return nil, false, apperrors.NewFieldValidationError("email", "email is too long")
	case len(sub.Page) > maxFeedbackPage:
		return nil, false, apperrors.NewFieldValidationError("page", "page is too long")
	}
	if sub.SearchID != "" {
		if _, err := uuid.Parse(sub.SearchID); err != nil {
			return nil, false, apperrors.NewFieldValidationError("search", "search must be a valid UUID")
		}
	}

	if allowed, retryAfter := s.allowRequest(ctx, "feedback:rate:"+sub.ClientIP); !allowed {
		return nil, false, apperrors.NewRateLimitedError("rate limit exceeded", retryAfter)
	}

	duplicate, release := s.claim(ctx, "feedback:dup:"+feedbackFingerprint(sub))
	if duplicate {
		return nil, true, nil
	}

	feedback = &entities.Feedback{
		ID:        uuid.NewString(),
		Rating:    sub.Rating,
		Message:   sub.Message,
		Email:     sub.Email,
		Page:      sub.Page,
		UserAgent: sub.UserAgent,
		IPAddress: sub.ClientIP,
		CreatedAt: time.Now().UTC(),
	}
	if sub.UserID != "" {
		userID := sub.UserID
		feedback.UserID = &userID
	}
	if sub.SearchID != "" {
		searchID := sub.SearchID
		feedback.SearchID = &searchID
	}

	if err := s.repo.Create(ctx, feedback); err != nil {
		release(ctx)
		return nil, false, err
	}
	return feedback, false, nil
}

func (s *FeedbackService) allowRequest(ctx context.Context, key string) (bool, time.Duration) {
	if s.cache == nil {
		return s.local.allow(key, feedbackRateLimit, feedbackRateWindow)
	}

	count, remaining, err := s.cache.Increment(ctx, key, feedbackRateWindow)
	if err != nil {
		observability.ComponentLogger(ctx, "feedback").Warn().Err(err).Msg("rate limit counter unavailable, using local limiter")
		return s.local.allow(key, feedbackRateLimit, feedbackRateWindow)
	}

	if count > feedbackRateLimit {
		if remaining <= 0 {
			remaining = feedbackRateWindow
		}
		return false, remaining
	}
	return true, feedbackRateWindow
}

// claim marks a submission as seen and reports whether it already was. The
// returned release undoes the mark so a failed insert can be retried.
func (s *FeedbackService) claim(ctx context.Context, key string) (bool, func(context.Context)) {
	releaseLocal := func(context.Context) { s.deduper.forget(key) }
	if s.cache == nil {
		return s.deduper.seen(key, feedbackDedupWindow), releaseLocal
	}

	stored, err := s.cache.SetIfAbsent(ctx, key, []byte("1"), feedbackDedupWindow)
	if err != nil {
		observability.ComponentLogger(ctx, "feedback").Warn().Err(err).Msg("dedup cache unavailable, using local deduper")
		return s.deduper.seen(key, feedbackDedupWindow), releaseLocal
	}
	return !stored, func(ctx context.Context) {
		if err := s.cache.Delete(ctx, key); err != nil {
			observability.ComponentLogger(ctx, "feedback").Warn().Err(err).Msg("failed to release dedup marker")
		}
	}
}

type localRateLimiter struct {
	mu     sync.Mutex
	states map[string]*localRateState
}

type localRateState struct {
	count   int
	resetAt time.Time
}

func newLocalRateLimiter() *localRateLimiter {
	return &localRateLimiter{
		states: make(map[string]*localRateState),
	}
}

func (l *localRateLimiter) allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.states[key]
	if !ok || now.After(state.resetAt) {
		state = &localRateState{count: 0, resetAt: now.Add(window)}
		l.states[key] = state
	}

	if state.count >= limit {
		retryAfter := state.resetAt.Sub(now)
		if retryAfter <= 0 {
			retryAfter = window
		}
		return false, retryAfter
	}

	state.count++
	return true, window
}

type localDeduper struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func newLocalDeduper() *localDeduper {
	return &localDeduper{
		entries: make(map[string]time.Time),
	}
}

func (d *localDeduper) seen(key string, window time.Duration) bool {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if expiresAt, ok := d.entries[key]; ok && now.Before(expiresAt) {
		return true
	}

	d.entries[key] = now.Add(window)
	return false
}

func (d *localDeduper) forget(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, key)
}

func feedbackFingerprint(sub FeedbackSubmission) string {
	normalized := []string{
		strconv.Itoa(sub.Rating),
		normalizeFeedback(sub.Message),
		strings.ToLower(sub.Email),
		strings.ToLower(sub.Page),
		sub.SearchID,
		sub.ClientIP,
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}

func normalizeFeedback(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(value)), " ")
}
