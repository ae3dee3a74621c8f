package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/felixgeelhaar/skillquest/internal/api/middleware"
	"github.com/felixgeelhaar/skillquest/internal/domain"
)

type contextKey string

const claimsKey contextKey = "claims"

// Router wraps the HTTP multiplexer with middleware and handlers
type Router struct {
	mux      *http.ServeMux
	app      *App
	validate *validator.Validate
}

// NewRouter creates the API handler with all routes configured
func NewRouter(app *App) http.Handler {
	r := &Router{
		mux:      http.NewServeMux(),
		app:      app,
		validate: newValidator(),
	}

	r.registerRoutes()

	return r.buildMiddlewareChain(r.mux)
}

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (r *Router) registerRoutes() {
	throttle := middleware.RateLimit(r.app.AuthRatePerMinute)

	// Health
	r.mux.HandleFunc("GET /api/ping", r.handlePing)
	r.mux.HandleFunc("GET /api/health", r.handleHealth)

	// Auth
	r.mux.Handle("POST /api/auth/signup", throttle(http.HandlerFunc(r.handleSignup)))
	r.mux.Handle("POST /api/auth/login", throttle(http.HandlerFunc(r.handleLogin)))
	r.mux.HandleFunc("GET /api/auth/me", r.requireAuth(r.handleMe))
	r.mux.HandleFunc("GET /api/me/latest", r.requireAuth(r.handleMeLatest))

	// Assessments
	r.mux.HandleFunc("POST /api/assessments/{$}", r.requireAuth(r.handleCreateAssessment))
	r.mux.HandleFunc("GET /api/assessments/{id}", r.requireAuth(r.handleGetAssessment))

	// Evaluations
	r.mux.HandleFunc("POST /api/evaluate/{$}", r.requireAuth(r.handleEvaluate))
	r.mux.HandleFunc("GET /api/evaluate/latest", r.requireAuth(r.handleLatestEvaluation))
	r.mux.HandleFunc("GET /api/evaluate/{id}", r.requireAuth(r.handleGetEvaluation))

	// Plans
	r.mux.HandleFunc("POST /api/plans/{$}", r.requireAuth(r.handleCreatePlan))
	r.mux.HandleFunc("GET /api/plans/latest", r.requireAuth(r.handleLatestPlan))
	r.mux.HandleFunc("GET /api/plans/{id}", r.requireAuth(r.handleGetPlan))
	r.mux.HandleFunc("POST /api/plans/{id}/start", r.requireAuth(r.handleStartPlan))
}

func (r *Router) buildMiddlewareChain(handler http.Handler) http.Handler {
	// Last applied runs first
	handler = middleware.CORS(r.app.AllowedOrigins)(handler)
	handler = middleware.Logger(handler)
	handler = middleware.Recovery(handler)
	handler = middleware.RequestID(handler)
	return handler
}

// requireAuth resolves the bearer token and stores the caller's claims in
// the request context.
func (r *Router) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		header := req.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			Unauthorized(w, req, "Missing Authorization")
			return
		}

		claims, err := r.app.Auth.Authenticate(strings.TrimSpace(token))
		if err != nil {
			slog.Debug("rejected bearer token",
				"error", err,
				"request_id", middleware.GetRequestID(req.Context()),
			)
			if errors.Is(err, domain.ErrTokenMissing) {
				Unauthorized(w, req, "Missing Authorization")
				return
			}
			Unauthorized(w, req, "Invalid token")
			return
		}

		ctx := context.WithValue(req.Context(), claimsKey, claims)
		next(w, req.WithContext(ctx))
	}
}

// claimsFrom returns the claims stored by requireAuth
func claimsFrom(ctx context.Context) *domain.Claims {
	claims, _ := ctx.Value(claimsKey).(*domain.Claims)
	return claims
}

func (r *Router) handlePing(w http.ResponseWriter, req *http.Request) {
	WriteJSON(w, http.StatusOK, "pong")
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	resp := map[string]any{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if r.app.Rules != nil {
		resp["rules"] = r.app.Rules.Current().Summarize()
	}
	WriteJSON(w, http.StatusOK, resp)
}
