package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/artello/backend/internal/metrics"
	"github.com/artello/backend/internal/models"
	"github.com/artello/backend/internal/repository"
)

// OfferRepoForHandler is the offer repository subset used here.
type OfferRepoForHandler interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.TaskOffer, error)
	Resolve(ctx context.Context, id uuid.UUID, response models.OfferResponse, respondedAt time.Time) (*models.TaskOffer, error)
	ResolvePendingForTask(ctx context.Context, taskID uuid.UUID, response models.OfferResponse, respondedAt time.Time) error
}

// OfferTaskRepo transitions and reloads tasks after a response.
type OfferTaskRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	MarkAssigned(ctx context.Context, taskID, artistID uuid.UUID) error
}

// OfferMetricsUpdater recomputes artist historicals after a response.
type OfferMetricsUpdater interface {
	UpdateArtistMetrics(ctx context.Context, artistID uuid.UUID) error
}

// OfferAssigner re-enters the assignment flow after a rejection.
type OfferAssigner interface {
	AssignTask(ctx context.Context, task *models.Task, level int) error
}

// OfferHandler serves /v1/offers endpoints.
type OfferHandler struct {
	OfferRepo     OfferRepoForHandler
	TaskRepo      OfferTaskRepo
	ArtistMetrics OfferMetricsUpdater
	Assigner      OfferAssigner
	Metrics       *metrics.Registry
	Logger        *slog.Logger
}

type offerResponseRequest struct {
	Response models.OfferResponse `json:"response"`
}

// Respond handles POST /v1/offers/{id}/response. ACCEPTED assigns the task and
// retires any pending broadcast siblings; REJECTED re-enters assignment at the
// offer's escalation level. An offer that already left PENDING yields 409.
func (h *OfferHandler) Respond(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid offer id")
		return
	}

	var req offerResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Response != models.OfferAccepted && req.Response != models.OfferRejected {
		writeError(w, http.StatusBadRequest, "response must be ACCEPTED or REJECTED")
		return
	}

	offer, err := h.OfferRepo.Resolve(r.Context(), id, req.Response, time.Now())
	if errors.Is(err, repository.ErrOfferResolved) {
		writeError(w, http.StatusConflict, "offer already resolved")
		return
	}
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "offer not found")
		return
	}
	if err != nil {
		h.Logger.Error("resolve offer", "offer_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.ArtistMetrics.UpdateArtistMetrics(r.Context(), offer.ArtistID); err != nil {
		h.Logger.Error("update artist metrics", "artist_id", offer.ArtistID, "error", err)
	}

	switch req.Response {
	case models.OfferAccepted:
		h.Metrics.OffersAccepted.Inc()
		if err := h.TaskRepo.MarkAssigned(r.Context(), offer.TaskID, offer.ArtistID); err != nil {
			h.Logger.Error("mark task assigned", "task_id", offer.TaskID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		// Broadcast siblings still pending lose the race.
		if err := h.OfferRepo.ResolvePendingForTask(r.Context(), offer.TaskID, models.OfferExpired, time.Now()); err != nil {
			h.Logger.Error("retire sibling offers", "task_id", offer.TaskID, "error", err)
		}
	case models.OfferRejected:
		h.Metrics.OffersRejected.Inc()
		task, err := h.TaskRepo.GetByID(r.Context(), offer.TaskID)
		if err != nil {
			h.Logger.Error("load task after rejection", "task_id", offer.TaskID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if task.Status == models.TaskStatusOffered || task.Status == models.TaskStatusQueued {
			if err := h.Assigner.AssignTask(r.Context(), task, offer.EscalationLevel); err != nil {
				h.Logger.Error("reassign after rejection", "task_id", task.ID, "error", err)
				writeError(w, http.StatusInternalServerError, "reassignment failed")
				return
			}
		}
	}

	writeJSON(w, http.StatusOK, offer)
}

// GetOffer handles GET /v1/offers/{id}.
func (h *OfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid offer id")
		return
	}
	offer, err := h.OfferRepo.GetByID(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "offer not found")
		return
	}
	if err != nil {
		h.Logger.Error("get offer", "offer_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, offer)
}
