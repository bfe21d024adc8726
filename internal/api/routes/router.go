package routes

import (
	"net/http"

	"github.com/somos/attraction/backend/internal/api/handlers"
	"github.com/somos/attraction/backend/internal/api/loaders"
	"github.com/somos/attraction/backend/internal/api/middleware"
	"github.com/somos/attraction/backend/internal/domain/providers"
	"github.com/somos/attraction/backend/internal/infrastructure/observability"
)

// Handlers groups the route handlers. The SSE handler is optional.
type Handlers struct {
	Trip     *handlers.TripHandler
	Stop     *handlers.StopHandler
	Session  *handlers.SessionHandler
	Search   *handlers.SearchHandler
	Place    *handlers.PlaceHandler
	Booking  *handlers.BookingHandler
	Feedback *handlers.FeedbackHandler
	SSE      *handlers.SSEHandler
}

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	handlers       Handlers
	authenticator  *middleware.Authenticator
	planner        providers.TripPlanner
	metrics        *observability.Metrics
	allowedOrigins []string
}

// NewRouter creates a new router
func NewRouter(
	h Handlers,
	authenticator *middleware.Authenticator,
	planner providers.TripPlanner,
	metrics *observability.Metrics,
	allowedOrigins []string,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		handlers:       h,
		authenticator:  authenticator,
		planner:        planner,
		metrics:        metrics,
		allowedOrigins: allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Trip planning
	r.mux.HandleFunc("POST /api/plan-trip", r.handlers.Trip.PlanTrip)

	// Stops
	r.mux.HandleFunc("GET /api/stops", r.handlers.Stop.ListStops)
	r.mux.HandleFunc("GET /api/stops/{stop_id}/schedule", r.handlers.Stop.GetSchedule)
	r.mux.HandleFunc("GET /stops/{stop_id}/schedule", r.handlers.Stop.RenderSchedule)

	r.mux.HandleFunc("POST /api/auth/session/link", middleware.RequireUser(r.handlers.Session.LinkSession))

	// Search history
	r.mux.HandleFunc("GET /api/searches", middleware.RequireUser(r.handlers.Search.ListSearches))
	r.mux.HandleFunc("POST /api/searches", middleware.RequireUser(r.handlers.Search.CreateSearch))
	r.mux.HandleFunc("GET /api/track", middleware.RequireUser(r.handlers.Search.TrackActivity))

	// Favorite places
	r.mux.HandleFunc("GET /api/places", middleware.RequireUser(r.handlers.Place.ListPlaces))
	r.mux.HandleFunc("POST /api/places", middleware.RequireUser(r.handlers.Place.CreatePlace))
	r.mux.HandleFunc("GET /api/places/search", middleware.RequireUser(r.handlers.Place.SearchPlaces))
	r.mux.HandleFunc("GET /api/places/{id}", middleware.RequireUser(r.handlers.Place.GetPlace))
	r.mux.HandleFunc("PUT /api/places/{id}", middleware.RequireUser(r.handlers.Place.UpdatePlace))
	r.mux.HandleFunc("DELETE /api/places/{id}", middleware.RequireUser(r.handlers.Place.DeletePlace))

	// Bookings
	r.mux.HandleFunc("GET /api/bookings", middleware.RequireUser(r.handlers.Booking.ListBookings))
	r.mux.HandleFunc("POST /api/bookings", middleware.RequireUser(r.handlers.Booking.CreateBooking))

	r.mux.HandleFunc("POST /api/feedback", r.handlers.Feedback.SubmitFeedback)

	// Search activity streams
	if r.handlers.SSE != nil {
		r.mux.HandleFunc("GET /api/admin/searches/stream", middleware.RequireUser(r.handlers.SSE.StreamAllSearches))
		r.mux.HandleFunc("GET /api/searches/stream", middleware.RequireUser(r.handlers.SSE.StreamMySearches))
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// Logging and observability read the matched route from the request the
	// mux was handed, so nothing between them and the mux may copy it.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = loaders.Middleware(r.planner)(handler)
	handler = r.authenticator.Middleware(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
