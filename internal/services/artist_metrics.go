package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/artello/backend/internal/models"
)

// ResolvedOfferSource loads an artist's non-pending historical offers.
type ResolvedOfferSource interface {
	ResolvedForArtist(ctx context.Context, artistID uuid.UUID) ([]*models.TaskOffer, error)
}

// CompletedTaskSource loads an artist's completed tasks for on-time computation.
type CompletedTaskSource interface {
	CompletedForArtist(ctx context.Context, artistID uuid.UUID) ([]*models.Task, error)
}

// PerformanceStore writes the recomputed figures back to the artist row.
type PerformanceStore interface {
	UpdatePerformance(ctx context.Context, artistID uuid.UUID, perf models.ArtistPerformance) error
}

// MetricsUpdater recomputes an artist's historical performance figures from
// offer and task outcomes. Results feed back into future performance scoring.
type MetricsUpdater struct {
	Offers  ResolvedOfferSource
	Tasks   CompletedTaskSource
	Artists PerformanceStore
	Logger  *slog.Logger
}

// NewMetricsUpdater returns a MetricsUpdater.
func NewMetricsUpdater(offers ResolvedOfferSource, tasks CompletedTaskSource, artists PerformanceStore, logger *slog.Logger) *MetricsUpdater {
	return &MetricsUpdater{Offers: offers, Tasks: tasks, Artists: artists, Logger: logger}
}

// UpdateArtistMetrics recalculates acceptance rate, average response time,
// on-time rate, and experience tier. A brand-new artist with zero resolved
// offers is left untouched so defaults aren't overwritten with zeros.
func (u *MetricsUpdater) UpdateArtistMetrics(ctx context.Context, artistID uuid.UUID) error {
	offers, err := u.Offers.ResolvedForArtist(ctx, artistID)
	if err != nil {
		return fmt.Errorf("load resolved offers: %w", err)
	}
	if len(offers) == 0 {
		return nil
	}

	accepted := 0
	var responseTotal time.Duration
	responded := 0
	for _, o := range offers {
		if o.Response == models.OfferAccepted {
			accepted++
		}
		if o.RespondedAt != nil {
			responseTotal += o.RespondedAt.Sub(o.OfferedAt)
			responded++
		}
	}

	perf := models.ArtistPerformance{
		AcceptanceRate: roundRate(float64(accepted) / float64(len(offers)) * 100),
	}
	if responded > 0 {
		avg := responseTotal.Minutes() / float64(responded)
		avg = roundRate(avg)
		perf.AvgResponseMinutes = &avg
	}

	completed, err := u.Tasks.CompletedForArtist(ctx, artistID)
	if err != nil {
		return fmt.Errorf("load completed tasks: %w", err)
	}
	onTime, deadlined := 0, 0
	for _, t := range completed {
		if t.Deadline == nil || t.CompletedAt == nil {
			continue
		}
		deadlined++
		if !t.CompletedAt.After(*t.Deadline) {
			onTime++
		}
	}
	if deadlined > 0 {
		rate := roundRate(float64(onTime) / float64(deadlined) * 100)
		perf.OnTimeRate = &rate
	}

	perf.ExperienceLevel = models.ExperienceLevelForCount(len(completed))

	if err := u.Artists.UpdatePerformance(ctx, artistID, perf); err != nil {
		return fmt.Errorf("update artist performance: %w", err)
	}
	u.Logger.Debug("artist metrics updated",
		"artist_id", artistID, "acceptance_rate", perf.AcceptanceRate,
		"experience_level", perf.ExperienceLevel)
	return nil
}

func roundRate(v float64) float64 {
	return math.Round(v*100) / 100
}
