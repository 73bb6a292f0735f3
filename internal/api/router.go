package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/mogg-backend/internal/api/apierr"
	"github.com/mcoot/mogg-backend/internal/api/handler"
	"github.com/mcoot/mogg-backend/internal/middleware"
	"github.com/mcoot/mogg-backend/internal/services/leaderboard"
	"github.com/mcoot/mogg-backend/internal/services/profile"
	"github.com/mcoot/mogg-backend/internal/services/room"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Rooms       *room.Store
	Leaderboard *leaderboard.Service
	Profiles    *profile.Service
	Storage     handler.Pinger
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	roomHandler := handler.NewRoomHandler(cfg.Rooms, cfg.Logger)
	scoreHandler := handler.NewScoreHandler(cfg.Leaderboard, cfg.Logger)
	userHandler := handler.NewUserHandler(cfg.Profiles, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.Storage, cfg.Logger)

	// Routes are registered with full paths on the root router. A PathPrefix
	// subrouter copies its prefix matcher into every route, and mux clears a
	// method mismatch whenever a later route matches that prefix, which turns
	// wrong-method requests into 404s.
	r.Use(middleware.Recovery(cfg.Logger, internalError))
	r.Use(middleware.Logging(cfg.Logger))

	// Room routes
	r.HandleFunc("/api/rooms", roomHandler.Create).Methods(http.MethodPost)
	r.HandleFunc("/api/rooms/{passcode}", roomHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/rooms/{passcode}/toggle-tries", roomHandler.ToggleTries).Methods(http.MethodPost)
	r.HandleFunc("/api/rooms/{passcode}/hasPlayed/{username}", roomHandler.HasPlayed).Methods(http.MethodGet)
	r.HandleFunc("/api/rooms/{passcode}/scores", roomHandler.SubmitScore).Methods(http.MethodPost)
	r.HandleFunc("/api/rooms/{passcode}/leaderboard", roomHandler.Leaderboard).Methods(http.MethodGet)
	r.HandleFunc("/api/rooms/{passcode}/reset", roomHandler.Reset).Methods(http.MethodPost)
	r.HandleFunc("/api/rooms/{passcode}/destroy", roomHandler.Destroy).Methods(http.MethodPost)

	// Global leaderboard routes
	r.HandleFunc("/api/scores", scoreHandler.Submit).Methods(http.MethodPost)
	r.HandleFunc("/api/leaderboard", scoreHandler.Top).Methods(http.MethodGet)
	r.HandleFunc("/api/scores/{username}/best", scoreHandler.Best).Methods(http.MethodGet)

	// Profile routes
	r.HandleFunc("/api/guest-login", userHandler.GuestLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/anonymous", userHandler.Anonymous).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{username}", userHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{username}", userHandler.Sync).Methods(http.MethodPatch)

	// Health check endpoint
	r.HandleFunc("/api/health", healthHandler.Health).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	// CORS wraps the router so preflight requests never reach route matching
	return middleware.RequestID(middleware.CORS(r))
}

// internalError answers a recovered panic with the JSON error envelope
func internalError(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewNotFoundError())
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewMethodNotAllowedError())
}
