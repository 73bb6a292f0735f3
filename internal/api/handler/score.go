package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/mogg-backend/internal/api/request"
	"github.com/mcoot/mogg-backend/internal/api/response"
	"github.com/mcoot/mogg-backend/internal/services/leaderboard"
)

// ScoreHandler handles global leaderboard endpoints
type ScoreHandler struct {
	leaderboard *leaderboard.Service
	logger      *slog.Logger
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(leaderboard *leaderboard.Service, logger *slog.Logger) *ScoreHandler {
	return &ScoreHandler{leaderboard: leaderboard, logger: logger}
}

// Submit handles POST /api/scores
func (h *ScoreHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitScoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Score == nil {
		WriteError(w, NewInvalidRequestError("Score is required"))
		return
	}

	if _, err := h.leaderboard.Submit(r.Context(), req.PlayerName, *req.Score); err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.Text(w, http.StatusOK, "Score processed!")
}

// Top handles GET /api/leaderboard
func (h *ScoreHandler) Top(w http.ResponseWriter, r *http.Request) {
	rows, err := h.leaderboard.Top(r.Context(), 0)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LeaderboardFromRows(rows))
}

// Best handles GET /api/scores/{username}/best
func (h *ScoreHandler) Best(w http.ResponseWriter, r *http.Request) {
	best, err := h.leaderboard.BestFor(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.BestScoreResponse{Best: best})
}
