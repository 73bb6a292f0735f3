package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/mogg-backend/internal/services/leaderboard"
	"github.com/mcoot/mogg-backend/internal/web/templates"
)

// HomeHandler handles the landing page
type HomeHandler struct {
	leaderboard *leaderboard.Service
	logger      *slog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(leaderboard *leaderboard.Service, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{leaderboard: leaderboard, logger: logger}
}

// Home renders the landing page with the current global top scores
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := templates.LandingData{Title: "Mogg"}

	rows, err := h.leaderboard.Top(r.Context(), 0)
	if err != nil {
		h.logger.Error("failed to load leaderboard", slog.String("error", err.Error()))
		data.Unavailable = true
	}
	data.Leaders = rows

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Landing(data).Render(r.Context(), w); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
