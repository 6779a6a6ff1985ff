package routes

import (
	"net/http"

	"github.com/shelterbeds/matcheckin/internal/api/handlers"
	"github.com/shelterbeds/matcheckin/internal/api/middleware"
	"github.com/shelterbeds/matcheckin/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	checkinHandler *handlers.CheckinHandler
	guestHandler   *handlers.GuestHandler
	healthHandler  *handlers.HealthHandler

	authorizer     *middleware.ScopeAuthorizer
	metrics        *observability.Metrics
	allowedOrigins []string
	limiter        *middleware.RateLimiter
}

// NewRouter creates a new router
func NewRouter(
	checkinHandler *handlers.CheckinHandler,
	guestHandler *handlers.GuestHandler,
	healthHandler *handlers.HealthHandler,
	authorizer *middleware.ScopeAuthorizer,
	metrics *observability.Metrics,
	allowedOrigins []string,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		checkinHandler: checkinHandler,
		guestHandler:   guestHandler,
		healthHandler:  healthHandler,
		authorizer:     authorizer,
		metrics:        metrics,
		allowedOrigins: allowedOrigins,
	}
}

// SetRateLimiter throttles every route per client IP
func (r *Router) SetRateLimiter(limiter *middleware.RateLimiter) {
	r.limiter = limiter
}

// handle registers h with per-route tracing and access logging. These run
// after routing so that r.Pattern and path values are populated.
func (r *Router) handle(pattern string, h http.HandlerFunc) {
	var handler http.Handler = h
	handler = middleware.Logging(handler)
	handler = middleware.Observability(r.metrics)(handler)
	r.mux.Handle(pattern, handler)
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	facility := r.authorizer.RequireFacility
	admin := r.authorizer.RequireAdmin

	// Checkin lifecycle
	r.handle("POST /api/facilities/{facilityId}/checkins/generate", facility(r.checkinHandler.Generate))
	r.handle("GET /api/facilities/{facilityId}/checkins", facility(r.checkinHandler.List))
	r.handle("DELETE /api/facilities/{facilityId}/checkins", facility(r.checkinHandler.DeleteNight))
	r.handle("GET /api/facilities/{facilityId}/checkins/{id}", facility(r.checkinHandler.Get))
	r.handle("PATCH /api/facilities/{facilityId}/checkins/{id}", facility(r.checkinHandler.Update))
	r.handle("POST /api/facilities/{facilityId}/checkins/{id}/assign", facility(r.checkinHandler.Assign))
	r.handle("POST /api/facilities/{facilityId}/checkins/{id}/deassign", facility(r.checkinHandler.Deassign))
	r.handle("POST /api/facilities/{facilityId}/checkins/{id}/reassign", facility(r.checkinHandler.Reassign))

	// Guest consolidation
	r.handle("POST /api/facilities/{facilityId}/guests/{toGuestId}/merge/{fromGuestId}", admin(r.guestHandler.Merge))

	var handler http.Handler = r.mux
	if r.limiter != nil {
		handler = r.limiter.Limit(handler)
	}
	// CORS wraps everything so preflight requests never reach the mux
	return middleware.CORS(r.allowedOrigins)(handler)
}
