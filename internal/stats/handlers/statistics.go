package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"clanstats-server/internal/history"
	"clanstats-server/internal/middleware"
	"clanstats-server/internal/shared/errors"
	"clanstats-server/internal/shared/response"
	"clanstats-server/internal/stats"
)

type StatisticsHandler struct {
	service *stats.Service
}

func NewStatisticsHandler(service *stats.Service) *StatisticsHandler {
	return &StatisticsHandler{service: service}
}

// List serves the computed view of the active period.
func (h *StatisticsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "list_statistics")

	rows, err := h.service.ActiveView(ctx)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if rows == nil {
		rows = []stats.Row{}
	}

	response.Success(w, http.StatusOK, rows)
}

type updateStatisticRequest struct {
	Attacks int `json:"ataques"`
	Stars   int `json:"estrellas"`
}

func (h *StatisticsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "update_statistic")

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid statistic ID format", err))
		return
	}

	var req updateStatisticRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	claims := middleware.GetUserFromContext(r)

	stat, err := h.service.UpdateStatistic(ctx, id, req.Attacks, req.Stars, claims.Name)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, stat)
}

func (h *StatisticsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "delete_statistic")

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid statistic ID format", err))
		return
	}

	if err := h.service.DeleteStatistic(ctx, id); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"message": "statistic deleted"})
}

type importRequest struct {
	PeriodName string            `json:"periodoNombre"`
	TotalWars  int               `json:"totalGuerras"`
	Players    []stats.ImportRow `json:"jugadores"`
}

func (h *StatisticsHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "import_statistics")

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	newPeriod, err := h.service.Import(ctx, req.PeriodName, req.TotalWars, req.Players)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]interface{}{
		"message":   "data imported successfully",
		"periodoId": newPeriod.ID,
	})
}

type addPlayerRequest struct {
	Name     string `json:"nombre"`
	TownHall int    `json:"th"`
	Attacks  int    `json:"ataques"`
	Stars    int    `json:"estrellas"`
}

func (h *StatisticsHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "add_player_statistic")

	var req addPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	claims := middleware.GetUserFromContext(r)

	stat, err := h.service.AddPlayer(ctx, req.Name, req.TownHall, req.Attacks, req.Stars, claims.Name)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, map[string]interface{}{
		"message": "player added",
		"stat":    stat,
	})
}

func (h *StatisticsHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "statistics_history")

	entries, err := h.service.History(ctx)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if entries == nil {
		entries = []history.Entry{}
	}

	response.Success(w, http.StatusOK, entries)
}
