package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/artello/backend/internal/models"
)

// OfferStore persists offer rows. CreateTx runs inside the caller's transaction
// so the offer insert and the task transition commit together.
type OfferStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, offer *models.TaskOffer) error
}

// OfferTaskStore transitions the task when an offer goes out.
type OfferTaskStore interface {
	MarkOfferedTx(ctx context.Context, tx pgx.Tx, taskID, artistID uuid.UUID, expiresAt time.Time, level int) error
}

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OfferService owns the offer lifecycle: time-boxed creation and the single
// task state transition this core performs (-> offered).
type OfferService struct {
	Pool   TxBeginner
	Offers OfferStore
	Tasks  OfferTaskStore
	Config ConfigSource
	Logger *slog.Logger
	Now    Clock
}

// NewOfferService returns an OfferService using the wall clock.
func NewOfferService(pool TxBeginner, offers OfferStore, tasks OfferTaskStore, config ConfigSource, logger *slog.Logger) *OfferService {
	return &OfferService{
		Pool:   pool,
		Offers: offers,
		Tasks:  tasks,
		Config: config,
		Logger: logger,
		Now:    time.Now,
	}
}

// ExpiresAt computes the offer deadline from the urgency's acceptance window.
// Broadcast offers (level >= 3) use the dedicated broadcast window instead.
func ExpiresAt(cfg *models.AlgorithmConfig, urgency models.TaskUrgency, level int, now time.Time) time.Time {
	minutes := cfg.Windows.Minutes(urgency)
	if level >= 3 {
		minutes = cfg.Escalation.Level3BroadcastMinutes
	}
	return now.Add(time.Duration(minutes) * time.Minute)
}

// CreateOffer persists a PENDING offer for the scored artist and transitions
// the task to offered in the same transaction. Duplicate prevention beyond the
// previously-offered check is left to the storage layer's (task_id, artist_id)
// uniqueness constraint.
func (s *OfferService) CreateOffer(ctx context.Context, task *models.Task, score *models.ArtistScore, level int) (*models.TaskOffer, error) {
	cfg, err := s.Config.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active config: %w", err)
	}

	now := s.Now()
	offer := &models.TaskOffer{
		ID:              uuid.New(),
		TaskID:          task.ID,
		ArtistID:        score.Artist.ID,
		EscalationLevel: level,
		MatchScore:      score.TotalScore,
		ScoreBreakdown:  score.Breakdown,
		Response:        models.OfferPending,
		ExpiresAt:       ExpiresAt(&cfg, task.Urgency, level, now),
		OfferedAt:       now,
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin offer tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.Offers.CreateTx(ctx, tx, offer); err != nil {
		return nil, fmt.Errorf("insert offer: %w", err)
	}
	if err := s.Tasks.MarkOfferedTx(ctx, tx, task.ID, offer.ArtistID, offer.ExpiresAt, level); err != nil {
		return nil, fmt.Errorf("mark task offered: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit offer tx: %w", err)
	}

	s.Logger.Info("offer created",
		"task_id", task.ID, "artist_id", offer.ArtistID,
		"level", level, "score", offer.MatchScore, "expires_at", offer.ExpiresAt)
	return offer, nil
}
