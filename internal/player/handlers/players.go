package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"clanstats-server/internal/player"
	"clanstats-server/internal/shared/errors"
	"clanstats-server/internal/shared/response"
)

type PlayersHandler struct {
	service *player.Service
}

func NewPlayersHandler(service *player.Service) *PlayersHandler {
	return &PlayersHandler{service: service}
}

type playerRequest struct {
	Name     string `json:"nombre"`
	TownHall int    `json:"th"`
}

func (h *PlayersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "list_players")

	players, err := h.service.ListPlayers(ctx)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if players == nil {
		players = []player.Player{}
	}

	response.Success(w, http.StatusOK, players)
}

func (h *PlayersHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "create_player")

	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	p, err := h.service.CreatePlayer(ctx, req.Name, req.TownHall)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, p)
}

func (h *PlayersHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "update_player")

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid player ID format", err))
		return
	}

	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	p, err := h.service.UpdatePlayer(ctx, id, req.Name, req.TownHall)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, p)
}

func (h *PlayersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "deactivate_player")

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid player ID format", err))
		return
	}

	if err := h.service.DeactivatePlayer(ctx, id); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"message": "player deactivated"})
}
