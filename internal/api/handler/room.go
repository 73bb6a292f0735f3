package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/mogg-backend/internal/api/request"
	"github.com/mcoot/mogg-backend/internal/api/response"
	"github.com/mcoot/mogg-backend/internal/model"
	"github.com/mcoot/mogg-backend/internal/services/room"
)

// RoomHandler handles room endpoints
type RoomHandler struct {
	rooms  *room.Store
	logger *slog.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms *room.Store, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, logger: logger}
}

func passcode(r *http.Request) model.Passcode {
	return model.Passcode(mux.Vars(r)["passcode"])
}

// Create handles POST /api/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.UsernameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	created, err := h.rooms.Create(r.Context(), req.Username)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CreateRoomResponse{Passcode: string(created.Passcode)})
}

// Get handles GET /api/rooms/{passcode}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, err := h.rooms.Get(r.Context(), passcode(r)); err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomStatusResponse{Success: true})
}

// ToggleTries handles POST /api/rooms/{passcode}/toggle-tries
func (h *RoomHandler) ToggleTries(w http.ResponseWriter, r *http.Request) {
	var req request.UsernameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	enabled, err := h.rooms.ToggleInfiniteTries(r.Context(), passcode(r), req.Username)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ToggleTriesResponse{InfiniteTries: enabled})
}

// HasPlayed handles GET /api/rooms/{passcode}/hasPlayed/{username}
func (h *RoomHandler) HasPlayed(w http.ResponseWriter, r *http.Request) {
	played, infinite, err := h.rooms.HasPlayed(r.Context(), passcode(r), mux.Vars(r)["username"])
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.HasPlayedResponse{HasPlayed: played, InfiniteTries: infinite})
}

// SubmitScore handles POST /api/rooms/{passcode}/scores
func (h *RoomHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitScoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	code := passcode(r)
	if req.Score == nil {
		// Report a dead room before a malformed body
		if _, err := h.rooms.Get(r.Context(), code); err != nil {
			writeError(h.logger, w, r, err)
			return
		}
		WriteError(w, NewInvalidRequestError("Score is required"))
		return
	}

	outcome, err := h.rooms.Submit(r.Context(), code, req.PlayerName, *req.Score)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.Text(w, http.StatusOK, string(outcome))
}

// Leaderboard handles GET /api/rooms/{passcode}/leaderboard
func (h *RoomHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.rooms.Leaderboard(r.Context(), passcode(r), 0)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LeaderboardFromScores(entries))
}

// Reset handles POST /api/rooms/{passcode}/reset
func (h *RoomHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req request.UsernameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.rooms.ResetScores(r.Context(), passcode(r), req.Username); err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.Text(w, http.StatusOK, "Scores Reset!")
}

// Destroy handles POST /api/rooms/{passcode}/destroy
func (h *RoomHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	var req request.UsernameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.rooms.Destroy(r.Context(), passcode(r), req.Username); err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.Text(w, http.StatusOK, "Room Destroyed!")
}
