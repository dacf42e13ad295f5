package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/nmikhailov/guessnum/internal/api/apierr"
	"github.com/nmikhailov/guessnum/internal/api/response"
	"github.com/nmikhailov/guessnum/internal/model"
	"github.com/nmikhailov/guessnum/internal/services/stats"
)

// StatsHandler handles statistics, leaderboard, and achievement endpoints
type StatsHandler struct {
	stats *stats.Service
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *stats.Service) *StatsHandler {
	return &StatsHandler{stats: statsService}
}

// GetUserStats handles GET /api/v1/users/{id}/stats
func (h *StatsHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	id := model.UserID(mux.Vars(r)["id"])

	userStats, err := h.stats.GetUserStats(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UserStatsFromService(userStats))
}

// GetAchievements handles GET /api/v1/users/{id}/achievements
func (h *StatsHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	id := model.UserID(mux.Vars(r)["id"])

	overview, err := h.stats.GetAchievements(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AchievementsFromService(overview))
}

// Leaderboard handles GET /api/v1/leaderboard
func (h *StatsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			apierr.WriteError(w, apierr.NewInvalidRequestError("limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	leaders, err := h.stats.Leaderboard(r.Context(), limit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(leaders))
}
