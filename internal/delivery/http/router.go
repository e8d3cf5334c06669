package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventboard/internal/delivery/http/controllers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/domain"
)

// Controllers bundles the main-service controllers for routing.
type Controllers struct {
	Events       *controllers.EventController
	AdminEvents  *controllers.AdminEventController
	PublicEvents *controllers.PublicEventController
	Requests     *controllers.RequestController
	Categories   *controllers.CategoryController
	Users        *controllers.UserController
	Auth         *controllers.AuthController
}

// NewRouter initializes the main-service HTTP router with all application
// routes. rateLimiter guards the public read paths; nil disables limiting.
func NewRouter(c Controllers, verifier domain.TokenVerifier, rateLimiter *middleware.RateLimiter) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier)
	admin := middleware.RequireAdmin(verifier)
	public := func(next http.HandlerFunc) http.HandlerFunc { return next }
	if rateLimiter != nil {
		public = rateLimiter.Wrap
	}

	// Private: event lifecycle and admission, scoped to the caller.
	mux.HandleFunc("GET /users/{userID}/events", auth(c.Events.ListMyEvents))
	mux.HandleFunc("POST /users/{userID}/events", auth(c.Events.CreateEvent))
	mux.HandleFunc("GET /users/{userID}/events/{eventID}", auth(c.Events.GetMyEvent))
	mux.HandleFunc("PATCH /users/{userID}/events/{eventID}", auth(c.Events.UpdateMyEvent))
	mux.HandleFunc("GET /users/{userID}/events/{eventID}/requests", auth(c.Requests.ListEventRequests))
	mux.HandleFunc("PATCH /users/{userID}/events/{eventID}/requests", auth(c.Requests.DecideRequests))
	mux.HandleFunc("GET /users/{userID}/requests", auth(c.Requests.ListMyRequests))
	mux.HandleFunc("POST /users/{userID}/requests", auth(c.Requests.CreateRequest))
	mux.HandleFunc("PATCH /users/{userID}/requests/{requestID}/cancel", auth(c.Requests.CancelRequest))

	// Admin: moderation plus user and category administration.
	mux.HandleFunc("GET /admin/events", admin(c.AdminEvents.ListEvents))
	mux.HandleFunc("PATCH /admin/events/{eventID}", admin(c.AdminEvents.ModerateEvent))
	mux.HandleFunc("POST /admin/users", admin(c.Users.Create))
	mux.HandleFunc("GET /admin/users", admin(c.Users.List))
	mux.HandleFunc("DELETE /admin/users/{userID}", admin(c.Users.Delete))
	mux.HandleFunc("POST /admin/categories", admin(c.Categories.Create))
	mux.HandleFunc("PATCH /admin/categories/{categoryID}", admin(c.Categories.Update))
	mux.HandleFunc("DELETE /admin/categories/{categoryID}", admin(c.Categories.Delete))

	// Public reads.
	mux.HandleFunc("GET /events", public(c.PublicEvents.SearchEvents))
	mux.HandleFunc("GET /events/{eventID}", public(c.PublicEvents.GetEvent))
	mux.HandleFunc("GET /categories", public(c.Categories.List))
	mux.HandleFunc("GET /categories/{categoryID}", public(c.Categories.Get))

	// Auth
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewStatsRouter initializes the stats-service HTTP router.
func NewStatsRouter(stats *controllers.StatsController) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /hit", stats.RecordHit)
	mux.HandleFunc("GET /stats", stats.ViewStats)
	return mux
}
