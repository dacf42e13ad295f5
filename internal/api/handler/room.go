package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nmikhailov/guessnum/internal/api/apierr"
	"github.com/nmikhailov/guessnum/internal/api/request"
	"github.com/nmikhailov/guessnum/internal/api/response"
	"github.com/nmikhailov/guessnum/internal/coordinator"
	"github.com/nmikhailov/guessnum/internal/model"
	"github.com/nmikhailov/guessnum/internal/services/room"
)

// RoomHandler handles multiplayer room endpoints
type RoomHandler struct {
	coordinator *coordinator.Coordinator
	rooms       *room.Controller
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(coord *coordinator.Coordinator, rooms *room.Controller) *RoomHandler {
	return &RoomHandler{coordinator: coord, rooms: rooms}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
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

	created, err := h.coordinator.CreateRoom(r.Context(), model.UserID(req.UserID), req.DisplayName, level)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomFromModel(created))
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	found, err := h.rooms.GetRoom(r.Context(), code)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(found))
}

// Join handles POST /api/v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	var req request.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.UserID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("user_id is required"))
		return
	}

	joined, err := h.coordinator.JoinRoom(r.Context(), code, model.UserID(req.UserID), req.DisplayName)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(joined))
}

// Start handles POST /api/v1/rooms/{code}/start
func (h *RoomHandler) Start(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	var req request.StartRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.UserID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("user_id is required"))
		return
	}

	started, err := h.coordinator.StartRoom(r.Context(), code, model.UserID(req.UserID))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(started))
}

// Cancel handles POST /api/v1/rooms/{code}/cancel
func (h *RoomHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	var req request.CancelRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.UserID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("user_id is required"))
		return
	}

	if err := h.coordinator.CancelRoom(r.Context(), code, model.UserID(req.UserID)); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}
