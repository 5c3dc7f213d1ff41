package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artello/backend/internal/models"
)

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

const taskColumns = `id, client_id, title, description, status, complexity, urgency, category_slug,
	required_skills, estimated_hours, deadline, offered_to, offer_expires_at,
	escalation_level, assigned_to, completed_at, created_at, updated_at`

func scanTask(row interface{ Scan(dest ...any) error }) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.ClientID, &t.Title, &t.Description, &t.Status, &t.Complexity, &t.Urgency, &t.CategorySlug,
		&t.RequiredSkills, &t.EstimatedHours, &t.Deadline, &t.OfferedTo, &t.OfferExpiresAt,
		&t.EscalationLevel, &t.AssignedTo, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepo) Create(ctx context.Context, t *models.Task) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, client_id, title, description, status, complexity, urgency, category_slug,
			required_skills, estimated_hours, deadline, escalation_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`, t.ID, t.ClientID, t.Title, t.Description, t.Status, t.Complexity, t.Urgency, t.CategorySlug,
		t.RequiredSkills, t.EstimatedHours, t.Deadline, t.EscalationLevel).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

// MarkOfferedTx transitions the task to offered within the caller's transaction.
func (r *TaskRepo) MarkOfferedTx(ctx context.Context, tx pgx.Tx, taskID, artistID uuid.UUID, expiresAt time.Time, level int) error {
	_, err := tx.Exec(ctx, `
		UPDATE tasks
		SET status = 'offered', offered_to = $2, offer_expires_at = $3, escalation_level = $4, updated_at = now()
		WHERE id = $1
	`, taskID, artistID, expiresAt, level)
	return err
}

// MarkAssigned records an accepted offer: the artist now owns the task.
func (r *TaskRepo) MarkAssigned(ctx context.Context, taskID, artistID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET status = 'assigned', assigned_to = $2, offered_to = NULL, offer_expires_at = NULL, updated_at = now()
		WHERE id = $1
	`, taskID, artistID)
	return err
}

// MarkUnassigned parks a task no assignment path could place.
func (r *TaskRepo) MarkUnassigned(ctx context.Context, taskID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET status = 'unassigned', offered_to = NULL, offer_expires_at = NULL, updated_at = now()
		WHERE id = $1
	`, taskID)
	return err
}

// ActiveTaskCounts returns non-terminal task counts grouped by assigned artist.
func (r *TaskRepo) ActiveTaskCounts(ctx context.Context) (map[uuid.UUID]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT assigned_to, COUNT(*)
		FROM tasks
		WHERE assigned_to IS NOT NULL AND status IN ('assigned', 'in_progress')
		GROUP BY assigned_to
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var artistID uuid.UUID
		var n int
		if err := rows.Scan(&artistID, &n); err != nil {
			return nil, err
		}
		counts[artistID] = n
	}
	return counts, rows.Err()
}

// CompletedForArtist returns the artist's completed tasks, newest first.
func (r *TaskRepo) CompletedForArtist(ctx context.Context, artistID uuid.UUID) ([]*models.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE assigned_to = $1 AND status = 'completed'
		ORDER BY completed_at DESC
	`, artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
