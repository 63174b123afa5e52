package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"clanstats-server/internal/period"
	"clanstats-server/internal/shared/errors"
	"clanstats-server/internal/shared/response"
)

type PeriodsHandler struct {
	service *period.Service
}

func NewPeriodsHandler(service *period.Service) *PeriodsHandler {
	return &PeriodsHandler{service: service}
}

func (h *PeriodsHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_active_period")

	p, err := h.service.GetActive(ctx)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, p)
}

func (h *PeriodsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "list_periods")

	periods, err := h.service.ListPeriods(ctx)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if periods == nil {
		periods = []period.Period{}
	}

	response.Success(w, http.StatusOK, periods)
}

type createPeriodRequest struct {
	Name      string    `json:"nombre"`
	Month     string    `json:"mes"`
	Year      int       `json:"año"`
	TotalWars int       `json:"totalGuerras"`
	StartDate time.Time `json:"fechaInicio"`
}

func (h *PeriodsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "create_period")

	var req createPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	p, err := h.service.CreatePeriod(ctx, req.Name, req.Month, req.Year, req.TotalWars, req.StartDate)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, p)
}

type updateWarsRequest struct {
	TotalWars int `json:"totalGuerras"`
}

func (h *PeriodsHandler) UpdateWars(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "update_period_wars")

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid period ID format", err))
		return
	}

	var req updateWarsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	p, err := h.service.UpdateTotalWars(ctx, id, req.TotalWars)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, p)
}
