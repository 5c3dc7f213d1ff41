package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/artello/backend/internal/metrics"
	"github.com/artello/backend/internal/models"
)

const maxEscalationLevel = 3

// Ranking is the ranking service contract the assigner needs.
type Ranking interface {
	RankArtists(ctx context.Context, task *models.Task, level int) ([]models.ArtistScore, error)
	FindNextBestArtist(ctx context.Context, task *models.Task, level int) (*models.ArtistScore, error)
}

// OfferCreator creates time-boxed offers.
type OfferCreator interface {
	CreateOffer(ctx context.Context, task *models.Task, score *models.ArtistScore, level int) (*models.TaskOffer, error)
}

// OfferLookup reports artists already offered a task.
type OfferLookup interface {
	OfferedArtistIDs(ctx context.Context, taskID uuid.UUID) (map[uuid.UUID]bool, error)
}

// AssignerTaskRepo is the task repository subset used by the assigner.
type AssignerTaskRepo interface {
	MarkUnassigned(ctx context.Context, taskID uuid.UUID) error
}

// ScheduleExpiryFunc enqueues an offer-expiry job to run at runAt. Provided by
// main as a closure over river.Client.Insert.
type ScheduleExpiryFunc func(ctx context.Context, args OfferExpiryJobArgs, runAt time.Time) error

// Assigner walks a task through escalation levels: sequential offers at levels
// 1-2, broadcast at level 3, unassigned when even the broadcast finds nobody.
type Assigner struct {
	Ranker         Ranking
	Offers         OfferCreator
	OfferHistory   OfferLookup
	TaskRepo       AssignerTaskRepo
	ScheduleExpiry ScheduleExpiryFunc
	Metrics        *metrics.Registry
	Logger         *slog.Logger
}

// NewAssigner returns an Assigner.
func NewAssigner(
	ranker Ranking,
	offers OfferCreator,
	history OfferLookup,
	taskRepo AssignerTaskRepo,
	schedule ScheduleExpiryFunc,
	reg *metrics.Registry,
	logger *slog.Logger,
) *Assigner {
	return &Assigner{
		Ranker:         ranker,
		Offers:         offers,
		OfferHistory:   history,
		TaskRepo:       taskRepo,
		ScheduleExpiry: schedule,
		Metrics:        reg,
		Logger:         logger,
	}
}

// AssignTask offers the task to the best available artist at the given
// escalation level. An exhausted pool escalates to the next level; past the
// broadcast level the task is parked as unassigned. Pool exhaustion is a normal
// outcome, never an error.
func (a *Assigner) AssignTask(ctx context.Context, task *models.Task, level int) error {
	if level < 1 {
		level = 1
	}
	if level > maxEscalationLevel {
		return a.parkUnassigned(ctx, task)
	}
	if level == maxEscalationLevel {
		return a.broadcast(ctx, task)
	}

	score, err := a.Ranker.FindNextBestArtist(ctx, task, level)
	if err != nil {
		return fmt.Errorf("find next best artist: %w", err)
	}
	if score == nil {
		a.Logger.Info("candidate pool exhausted, escalating",
			"task_id", task.ID, "level", level)
		a.Metrics.Escalations.Inc()
		return a.AssignTask(ctx, task, level+1)
	}
	return a.offerAndSchedule(ctx, task, score, level)
}

// broadcast offers the task to every eligible, not-previously-offered artist
// simultaneously.
func (a *Assigner) broadcast(ctx context.Context, task *models.Task) error {
	offered, err := a.OfferHistory.OfferedArtistIDs(ctx, task.ID)
	if err != nil {
		return fmt.Errorf("load offered artists: %w", err)
	}
	ranked, err := a.Ranker.RankArtists(ctx, task, maxEscalationLevel)
	if err != nil {
		return fmt.Errorf("rank artists for broadcast: %w", err)
	}

	created := 0
	for i := range ranked {
		if offered[ranked[i].Artist.ID] {
			continue
		}
		if err := a.offerAndSchedule(ctx, task, &ranked[i], maxEscalationLevel); err != nil {
			return err
		}
		created++
	}
	if created == 0 {
		return a.parkUnassigned(ctx, task)
	}
	a.Metrics.Broadcasts.Inc()
	a.Logger.Info("task broadcast to remaining pool", "task_id", task.ID, "offers", created)
	return nil
}

func (a *Assigner) offerAndSchedule(ctx context.Context, task *models.Task, score *models.ArtistScore, level int) error {
	offer, err := a.Offers.CreateOffer(ctx, task, score, level)
	if err != nil {
		return fmt.Errorf("create offer: %w", err)
	}
	a.Metrics.OffersCreated.Inc()

	args := OfferExpiryJobArgs{OfferID: offer.ID, TaskID: task.ID}
	if err := a.ScheduleExpiry(ctx, args, offer.ExpiresAt); err != nil {
		return fmt.Errorf("schedule offer expiry: %w", err)
	}
	return nil
}

func (a *Assigner) parkUnassigned(ctx context.Context, task *models.Task) error {
	a.Logger.Warn("no artists available after broadcast, parking task", "task_id", task.ID)
	a.Metrics.TasksUnassigned.Inc()
	if err := a.TaskRepo.MarkUnassigned(ctx, task.ID); err != nil {
		return fmt.Errorf("mark task unassigned: %w", err)
	}
	return nil
}
