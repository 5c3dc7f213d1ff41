package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/artello/backend/internal/metrics"
	"github.com/artello/backend/internal/models"
	"github.com/artello/backend/internal/repository"
)

// OfferExpiryJobArgs fires when an offer's acceptance window closes.
type OfferExpiryJobArgs struct {
	OfferID uuid.UUID `json:"offer_id"`
	TaskID  uuid.UUID `json:"task_id"`
}

func (OfferExpiryJobArgs) Kind() string { return "offer_expiry" }

// ExpiryOfferRepo is the offer repository subset used by the expiry worker.
type ExpiryOfferRepo interface {
	Resolve(ctx context.Context, id uuid.UUID, response models.OfferResponse, respondedAt time.Time) (*models.TaskOffer, error)
}

// ExpiryTaskRepo loads the task to decide whether escalation should continue.
type ExpiryTaskRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
}

// ArtistMetricsUpdater recomputes an artist's historicals after an outcome.
type ArtistMetricsUpdater interface {
	UpdateArtistMetrics(ctx context.Context, artistID uuid.UUID) error
}

// OfferExpiryWorker transitions PENDING offers to EXPIRED when their window
// closes and re-enters assignment at the offer's escalation level.
type OfferExpiryWorker struct {
	river.WorkerDefaults[OfferExpiryJobArgs]
	Offers        ExpiryOfferRepo
	Tasks         ExpiryTaskRepo
	Assigner      *Assigner
	ArtistMetrics ArtistMetricsUpdater
	Metrics       *metrics.Registry
	Logger        *slog.Logger
}

// NewOfferExpiryWorker returns an OfferExpiryWorker.
func NewOfferExpiryWorker(
	offers ExpiryOfferRepo,
	tasks ExpiryTaskRepo,
	assigner *Assigner,
	artistMetrics ArtistMetricsUpdater,
	reg *metrics.Registry,
	logger *slog.Logger,
) *OfferExpiryWorker {
	return &OfferExpiryWorker{
		Offers:        offers,
		Tasks:         tasks,
		Assigner:      assigner,
		ArtistMetrics: artistMetrics,
		Metrics:       reg,
		Logger:        logger,
	}
}

func (w *OfferExpiryWorker) Work(ctx context.Context, job *river.Job[OfferExpiryJobArgs]) error {
	args := job.Args

	offer, err := w.Offers.Resolve(ctx, args.OfferID, models.OfferExpired, time.Now())
	if errors.Is(err, repository.ErrOfferResolved) {
		// The artist answered before the window closed. Nothing to do.
		return nil
	}
	if err != nil {
		return fmt.Errorf("expire offer: %w", err)
	}
	w.Metrics.OffersExpired.Inc()
	w.Logger.Info("offer expired", "offer_id", offer.ID, "task_id", offer.TaskID, "artist_id", offer.ArtistID)

	if err := w.ArtistMetrics.UpdateArtistMetrics(ctx, offer.ArtistID); err != nil {
		w.Logger.Error("update artist metrics after expiry", "artist_id", offer.ArtistID, "error", err)
	}

	task, err := w.Tasks.GetByID(ctx, args.TaskID)
	if err != nil {
		return fmt.Errorf("load task for reassignment: %w", err)
	}
	switch task.Status {
	case models.TaskStatusAssigned, models.TaskStatusInProgress, models.TaskStatusCompleted, models.TaskStatusCancelled:
		// Someone else took it (broadcast sibling) or the task left the
		// assignment flow. No reassignment.
		return nil
	}

	if err := w.Assigner.AssignTask(ctx, task, offer.EscalationLevel); err != nil {
		return fmt.Errorf("reassign after expiry: %w", err)
	}
	return nil
}
