package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artello/backend/internal/models"
)

type ArtistRepo struct {
	pool *pgxpool.Pool
}

func NewArtistRepo(pool *pgxpool.Pool) *ArtistRepo {
	return &ArtistRepo{pool: pool}
}

const artistColumns = `id, display_name, status, available, timezone, experience_level, rating,
	completed_tasks, acceptance_rate, on_time_rate, avg_response_minutes,
	max_concurrent_tasks, working_hours_start, working_hours_end,
	accepts_urgent_tasks, vacation_mode, skills, specializations, preferred_categories,
	created_at, updated_at`

func scanArtist(row interface{ Scan(dest ...any) error }) (*models.Artist, error) {
	var a models.Artist
	err := row.Scan(&a.ID, &a.DisplayName, &a.Status, &a.Available, &a.Timezone, &a.ExperienceLevel, &a.Rating,
		&a.CompletedTasks, &a.AcceptanceRate, &a.OnTimeRate, &a.AvgResponseMinutes,
		&a.MaxConcurrentTasks, &a.WorkingHoursStart, &a.WorkingHoursEnd,
		&a.AcceptsUrgentTasks, &a.VacationMode, &a.Skills, &a.Specializations, &a.PreferredCategories,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ArtistRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Artist, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+artistColumns+` FROM artists WHERE id = $1`, id)
	return scanArtist(row)
}

// FindAvailable returns approved artists who are currently taking work.
// Vacation mode is deliberately not filtered here: it is an exclusion rule
// owned by the scoring engine, so its toggle stays config-driven.
func (r *ArtistRepo) FindAvailable(ctx context.Context) ([]*models.Artist, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+artistColumns+`
		FROM artists
		WHERE status = 'approved' AND available = TRUE
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Artist
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// UpdatePerformance writes the metrics updater's recomputed figures.
func (r *ArtistRepo) UpdatePerformance(ctx context.Context, artistID uuid.UUID, perf models.ArtistPerformance) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE artists
		SET acceptance_rate = $2, avg_response_minutes = $3, on_time_rate = $4,
			experience_level = $5, updated_at = now()
		WHERE id = $1
	`, artistID, perf.AcceptanceRate, perf.AvgResponseMinutes, perf.OnTimeRate, perf.ExperienceLevel)
	return err
}
