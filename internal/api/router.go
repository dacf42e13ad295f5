package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nmikhailov/guessnum/internal/api/handler"
	"github.com/nmikhailov/guessnum/internal/api/middleware"
	"github.com/nmikhailov/guessnum/internal/coordinator"
	"github.com/nmikhailov/guessnum/internal/services/room"
	"github.com/nmikhailov/guessnum/internal/services/stats"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Coordinator    *coordinator.Coordinator
	RoomController *room.Controller
	StatsService   *stats.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	gameHandler := handler.NewGameHandler(cfg.Coordinator)
	roomHandler := handler.NewRoomHandler(cfg.Coordinator, cfg.RoomController)
	statsHandler := handler.NewStatsHandler(cfg.StatsService)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Solo games and guess routing
	api.HandleFunc("/games", gameHandler.Start).Methods(http.MethodPost)
	api.HandleFunc("/guesses", gameHandler.Guess).Methods(http.MethodPost)

	// Multiplayer rooms
	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/join", roomHandler.Join).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}/start", roomHandler.Start).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}/cancel", roomHandler.Cancel).Methods(http.MethodPost)

	// Stats and achievements
	api.HandleFunc("/users/{id}/stats", statsHandler.GetUserStats).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/achievements", statsHandler.GetAchievements).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", statsHandler.Leaderboard).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
