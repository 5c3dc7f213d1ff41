package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/artello/backend/internal/models"
)

// ArtistRepoForHandler is the artist repository subset used here.
type ArtistRepoForHandler interface {
	FindAvailable(ctx context.Context) ([]*models.Artist, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Artist, error)
}

// ArtistMetricsRefresher recomputes one artist's historical figures.
type ArtistMetricsRefresher interface {
	UpdateArtistMetrics(ctx context.Context, artistID uuid.UUID) error
}

// ArtistHandler serves /v1/artists endpoints.
type ArtistHandler struct {
	ArtistRepo    ArtistRepoForHandler
	ArtistMetrics ArtistMetricsRefresher
	Logger        *slog.Logger
}

// ListAvailable handles GET /v1/artists: the current matching pool.
func (h *ArtistHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	artists, err := h.ArtistRepo.FindAvailable(r.Context())
	if err != nil {
		h.Logger.Error("list available artists", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, artists)
}

// RefreshMetrics handles POST /v1/artists/{id}/metrics/refresh: a manual
// recompute of acceptance rate, response time, on-time rate, and tier.
func (h *ArtistHandler) RefreshMetrics(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid artist id")
		return
	}
	if err := h.ArtistMetrics.UpdateArtistMetrics(r.Context(), id); err != nil {
		h.Logger.Error("refresh artist metrics", "artist_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	artist, err := h.ArtistRepo.GetByID(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "artist not found")
		return
	}
	if err != nil {
		h.Logger.Error("get artist", "artist_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, artist)
}
