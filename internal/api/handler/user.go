package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/mogg-backend/internal/api/request"
	"github.com/mcoot/mogg-backend/internal/api/response"
	"github.com/mcoot/mogg-backend/internal/model"
	"github.com/mcoot/mogg-backend/internal/services/profile"
)

// UserHandler handles profile endpoints
type UserHandler struct {
	profiles *profile.Service
	logger   *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(profiles *profile.Service, logger *slog.Logger) *UserHandler {
	return &UserHandler{profiles: profiles, logger: logger}
}

// GuestLogin handles POST /api/guest-login
func (h *UserHandler) GuestLogin(w http.ResponseWriter, r *http.Request) {
	var req request.UsernameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	p, returning, err := h.profiles.GuestLogin(r.Context(), req.Username)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GuestLoginResponse{Username: p.Username, IsReturning: returning})
}

// Anonymous handles GET /api/anonymous
func (h *UserHandler) Anonymous(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.CreateAnonymous(r.Context())
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.AnonymousResponse{Username: p.Username})
}

// Get handles GET /api/users/{username}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ProfileFromModel(p))
}

// Sync handles PATCH /api/users/{username}
func (h *UserHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req request.SyncProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	_, err := h.profiles.Sync(r.Context(), mux.Vars(r)["username"], model.ProfileSync{
		Coins:                req.Coins,
		UnlockedHammers:      req.UnlockedHammers,
		EquippedHammer:       req.EquippedHammer,
		UnlockedAchievements: req.UnlockedAchievements,
	})
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.Text(w, http.StatusOK, "Data synced")
}
