package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/mogg-backend/internal/middleware"
	"github.com/mcoot/mogg-backend/internal/services/leaderboard"
	"github.com/mcoot/mogg-backend/internal/web/handler"
	"github.com/mcoot/mogg-backend/internal/web/templates"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger      *slog.Logger
	Leaderboard *leaderboard.Service
	StaticDir   string // Path to static files directory
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger, errorPage))
	r.Use(middleware.Logging(cfg.Logger))

	homeHandler := handler.NewHomeHandler(cfg.Leaderboard, cfg.Logger)

	// Static files
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	r.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)

	return middleware.RequestID(r)
}

// errorPage answers a recovered panic with an HTML error page
func errorPage(w http.ResponseWriter, r *http.Request, _ any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = templates.ErrorPage().Render(r.Context(), w)
}
