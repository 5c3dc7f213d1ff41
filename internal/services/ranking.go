package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/artello/backend/internal/metrics"
	"github.com/artello/backend/internal/models"
)

// ArtistPool loads candidates eligible for matching: approved and available.
type ArtistPool interface {
	FindAvailable(ctx context.Context) ([]*models.Artist, error)
}

// WorkloadSource reports active (non-terminal) task counts per artist.
type WorkloadSource interface {
	ActiveTaskCounts(ctx context.Context) (map[uuid.UUID]int, error)
}

// FavoriteSource reports the artists a client has favorited.
type FavoriteSource interface {
	FavoriteArtistIDs(ctx context.Context, clientID uuid.UUID) (map[uuid.UUID]bool, error)
}

// OfferHistory reports artists already offered a task, regardless of response.
type OfferHistory interface {
	OfferedArtistIDs(ctx context.Context, taskID uuid.UUID) (map[uuid.UUID]bool, error)
}

// ConfigSource supplies the active algorithm configuration.
type ConfigSource interface {
	Active(ctx context.Context) (models.AlgorithmConfig, error)
}

// Clock lets tests pin the ranking timestamp.
type Clock func() time.Time

// Ranker scores and orders the artist pool for a task.
type Ranker struct {
	Config    ConfigSource
	Pool      ArtistPool
	Workload  WorkloadSource
	Favorites FavoriteSource
	Offers    OfferHistory
	Logger    *slog.Logger
	Metrics   *metrics.Registry // optional
	Now       Clock
}

// NewRanker returns a Ranker using the wall clock.
func NewRanker(config ConfigSource, pool ArtistPool, workload WorkloadSource, favorites FavoriteSource, offers OfferHistory, reg *metrics.Registry, logger *slog.Logger) *Ranker {
	return &Ranker{
		Config:    config,
		Pool:      pool,
		Workload:  workload,
		Favorites: favorites,
		Offers:    offers,
		Logger:    logger,
		Metrics:   reg,
		Now:       time.Now,
	}
}

// relaxForLevel widens the pool for escalation level >= 2 by lowering the
// minimum skill score and raising the workload cap. The stored config is never
// mutated; callers get an adjusted copy.
func relaxForLevel(cfg models.AlgorithmConfig, level int) models.AlgorithmConfig {
	if level < 2 {
		return cfg
	}
	cfg.Exclusion.MinSkillScore = cfg.Escalation.Level2SkillThreshold
	cfg.Workload.MaxActiveTasks += cfg.Escalation.Level2WorkloadBoost
	return cfg
}

// RankArtists scores every eligible candidate against the task and returns the
// non-excluded scores sorted descending by total. Ties keep input order.
func (r *Ranker) RankArtists(ctx context.Context, task *models.Task, level int) ([]models.ArtistScore, error) {
	cfg, err := r.Config.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active config: %w", err)
	}
	cfg = relaxForLevel(cfg, level)

	candidates, err := r.Pool.FindAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	counts, err := r.Workload.ActiveTaskCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load workload counts: %w", err)
	}
	favorites, err := r.Favorites.FavoriteArtistIDs(ctx, task.ClientID)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}

	now := r.Now()
	ranked := make([]models.ArtistScore, 0, len(candidates))
	for _, artist := range candidates {
		score := CalculateMatchScore(artist, task, &cfg, counts[artist.ID], favorites[artist.ID], now)
		if score.Excluded {
			r.Logger.Debug("candidate excluded",
				"task_id", task.ID, "artist_id", artist.ID, "reason", score.ExclusionReason)
			if r.Metrics != nil {
				r.Metrics.CandidatesExcluded.WithLabelValues(score.ExclusionRule).Inc()
			}
			continue
		}
		ranked = append(ranked, score)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})
	if r.Metrics != nil {
		r.Metrics.RankingsTotal.Inc()
		r.Metrics.RankingDuration.Observe(time.Since(now).Seconds())
	}
	return ranked, nil
}

// FindNextBestArtist returns the top-ranked candidate not previously offered
// this task, or nil when the pool at this level is exhausted. A nil result is
// the caller's signal to escalate, not an error.
func (r *Ranker) FindNextBestArtist(ctx context.Context, task *models.Task, level int) (*models.ArtistScore, error) {
	offered, err := r.Offers.OfferedArtistIDs(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("load offered artists: %w", err)
	}
	ranked, err := r.RankArtists(ctx, task, level)
	if err != nil {
		return nil, err
	}
	for i := range ranked {
		if offered[ranked[i].Artist.ID] {
			continue
		}
		return &ranked[i], nil
	}
	return nil, nil
}
