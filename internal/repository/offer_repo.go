package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artello/backend/internal/models"
)

// ErrOfferResolved is returned when a response arrives for an offer that has
// already left PENDING.
var ErrOfferResolved = errors.New("offer already resolved")

type OfferRepo struct {
	pool *pgxpool.Pool
}

func NewOfferRepo(pool *pgxpool.Pool) *OfferRepo {
	return &OfferRepo{pool: pool}
}

const offerColumns = `id, task_id, artist_id, escalation_level, match_score, score_breakdown,
	response, expires_at, offered_at, responded_at`

func scanOffer(row interface{ Scan(dest ...any) error }) (*models.TaskOffer, error) {
	var o models.TaskOffer
	var breakdown []byte
	err := row.Scan(&o.ID, &o.TaskID, &o.ArtistID, &o.EscalationLevel, &o.MatchScore, &breakdown,
		&o.Response, &o.ExpiresAt, &o.OfferedAt, &o.RespondedAt)
	if err != nil {
		return nil, err
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &o.ScoreBreakdown); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

// CreateTx inserts the offer within the caller's transaction. The partial
// unique index on (task_id, artist_id) makes concurrent duplicate offers fail
// here rather than silently double-booking an artist.
func (r *OfferRepo) CreateTx(ctx context.Context, tx pgx.Tx, o *models.TaskOffer) error {
	breakdown, err := json.Marshal(o.ScoreBreakdown)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO task_offers (id, task_id, artist_id, escalation_level, match_score, score_breakdown,
			response, expires_at, offered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, o.ID, o.TaskID, o.ArtistID, o.EscalationLevel, o.MatchScore, breakdown,
		o.Response, o.ExpiresAt, o.OfferedAt)
	return err
}

func (r *OfferRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.TaskOffer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+offerColumns+` FROM task_offers WHERE id = $1`, id)
	return scanOffer(row)
}

// Resolve moves a PENDING offer to a terminal response. The WHERE guard makes
// the transition idempotent-safe: a second response loses and gets
// ErrOfferResolved.
func (r *OfferRepo) Resolve(ctx context.Context, id uuid.UUID, response models.OfferResponse, respondedAt time.Time) (*models.TaskOffer, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE task_offers
		SET response = $2, responded_at = $3
		WHERE id = $1 AND response = 'PENDING'
		RETURNING `+offerColumns+`
	`, id, response, respondedAt)
	o, err := scanOffer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// No row updated: either the offer already left PENDING or it never
		// existed. Tell the two apart so callers can 409 vs 404.
		var exists bool
		if checkErr := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM task_offers WHERE id = $1)`, id).Scan(&exists); checkErr != nil {
			return nil, checkErr
		}
		if exists {
			return nil, ErrOfferResolved
		}
		return nil, pgx.ErrNoRows
	}
	return o, err
}

// ResolvePendingForTask marks every still-pending offer for the task with the
// given terminal response. Used to retire broadcast siblings once one artist
// accepts.
func (r *OfferRepo) ResolvePendingForTask(ctx context.Context, taskID uuid.UUID, response models.OfferResponse, respondedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE task_offers
		SET response = $2, responded_at = $3
		WHERE task_id = $1 AND response = 'PENDING'
	`, taskID, response, respondedAt)
	return err
}

// OfferedArtistIDs returns every artist with any offer row for the task,
// regardless of response status. Used to prevent re-offering during escalation.
func (r *OfferRepo) OfferedArtistIDs(ctx context.Context, taskID uuid.UUID) (map[uuid.UUID]bool, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT artist_id FROM task_offers WHERE task_id = $1`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// ResolvedForArtist returns the artist's non-pending historical offers.
func (r *OfferRepo) ResolvedForArtist(ctx context.Context, artistID uuid.UUID) ([]*models.TaskOffer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+offerColumns+`
		FROM task_offers
		WHERE artist_id = $1 AND response <> 'PENDING'
		ORDER BY offered_at DESC
	`, artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.TaskOffer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}
