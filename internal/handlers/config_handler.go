package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/artello/backend/internal/models"
	"github.com/artello/backend/internal/services"
)

// ConfigReader resolves the currently effective algorithm configuration.
type ConfigReader interface {
	Active(ctx context.Context) (models.AlgorithmConfig, error)
}

// ConfigActivator stores a validated config as the new active version.
type ConfigActivator interface {
	Activate(ctx context.Context, cfg *models.AlgorithmConfig) error
}

// ConfigHandler serves /v1/algorithm-config.
type ConfigHandler struct {
	Provider  ConfigReader
	Repo      ConfigActivator
	Validator *services.ConfigValidator
	Logger    *slog.Logger
}

// GetConfig handles GET /v1/algorithm-config: the active config, or the
// built-in default when none is stored.
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Provider.Active(r.Context())
	if err != nil {
		h.Logger.Error("load active config", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// PutConfig handles PUT /v1/algorithm-config: validate the submitted document
// and activate it as a new version.
func (h *ConfigHandler) PutConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read body")
		return
	}

	cfg, err := h.Validator.Validate(body)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.Logger.Error("validate config", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.Repo.Activate(r.Context(), cfg); err != nil {
		h.Logger.Error("activate config", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.Logger.Info("algorithm config activated", "version", cfg.Version)
	writeJSON(w, http.StatusOK, cfg)
}
