package gamedata

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/thysis/room-designer-api/internal/httputil"
	"github.com/thysis/room-designer-api/internal/logging"
)

// Handler contains HTTP handlers for game data endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// SyncRequest represents the sync request body. LastSyncTime is a
// Timestamp because the client sends offset-less ISO 8601.
type SyncRequest struct {
	GameData     SaveData  `json:"gameData"`
	LastSyncTime Timestamp `json:"lastSyncTime"`
}

// Save handles full game save uploads
// @Summary      Save game data
// @Description  Fully replace the user's stored save with the request payload.
// @Tags         gamedata
// @Accept       json
// @Produce      json
// @Param        userId path string true "User ID"
// @Param        request body SaveData true "Full game save"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Invalid user ID or request body"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /gamedata/save/{userId} [post]
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var data SaveData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		logger.Warn("invalid save request body", "error", err.Error())
		httputil.RespondError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}

	stored, err := h.service.Save(r.Context(), userID, data)
	if err != nil {
		logger.Error("save failed", "user_id", userID, "error", err.Error())
		httputil.RespondError(w, "Error saving game data.", http.StatusInternalServerError)
		return
	}

	httputil.RespondSuccess(w, "Game data saved successfully.", stored, http.StatusOK)
}

// Load handles game save downloads
// @Summary      Load game data
// @Description  Return the user's stored save, or an empty default when none exists.
// @Tags         gamedata
// @Produce      json
// @Param        userId path string true "User ID"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Invalid user ID"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /gamedata/load/{userId} [get]
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	save, err := h.service.Load(r.Context(), userID)
	if err != nil {
		logger.Error("load failed", "user_id", userID, "error", err.Error())
		httputil.RespondError(w, "Server error.", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, httputil.Envelope{Status: true, Data: save}, http.StatusOK)
}

// Sync handles save reconciliation
// @Summary      Sync game data
// @Description  Reconcile the client save against the stored one. The side with the newer timestamp wins; ties favor the client.
// @Tags         gamedata
// @Accept       json
// @Produce      json
// @Param        userId path string true "User ID"
// @Param        request body SyncRequest true "Client save and last sync time"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Invalid user ID or request body"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /gamedata/sync/{userId} [patch]
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid sync request body", "error", err.Error())
		httputil.RespondError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}

	result, err := h.service.Sync(r.Context(), userID, req.GameData, req.LastSyncTime.Time)
	if err != nil {
		logger.Error("sync failed", "user_id", userID, "error", err.Error())
		httputil.RespondError(w, "Error syncing game data.", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, httputil.Envelope{
		Status:  true,
		Message: fmt.Sprintf("Game data %sed successfully.", result.Action),
		Action:  result.Action,
		Data:    result.Save,
	}, http.StatusOK)
}

// parseUserID extracts and validates the userId path parameter. On failure
// it writes the error response and returns ok=false.
func parseUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "userId")
	userID, err := uuid.Parse(raw)
	if err != nil {
		httputil.RespondError(w, "Invalid user ID.", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return userID, true
}
