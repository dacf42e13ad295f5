package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nmikhailov/guessnum/internal/api/apierr"
	"github.com/nmikhailov/guessnum/internal/api/request"
	"github.com/nmikhailov/guessnum/internal/api/response"
	"github.com/nmikhailov/guessnum/internal/coordinator"
	"github.com/nmikhailov/guessnum/internal/model"
)

// GameHandler handles solo game and guess endpoints
type GameHandler struct {
	coordinator *coordinator.Coordinator
}

// NewGameHandler creates a new game handler
func NewGameHandler(coord *coordinator.Coordinator) *GameHandler {
	return &GameHandler{coordinator: coord}
}

// Start handles POST /api/v1/games
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req request.StartGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.UserID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("user_id is required"))
		return
	}

	level, err := model.ParseLevel(req.Level)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	game, err := h.coordinator.StartSolo(r.Context(), model.UserID(req.UserID), req.DisplayName, level)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameFromModel(game))
}

// Guess handles POST /api/v1/guesses
func (h *GameHandler) Guess(w http.ResponseWriter, r *http.Request) {
	var req request.GuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.UserID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("user_id is required"))
		return
	}

	result, err := h.coordinator.SubmitGuess(r.Context(), model.UserID(req.UserID), req.Value)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GuessResultFromModel(result))
}
