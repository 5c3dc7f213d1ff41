package models

import (
	"time"

	"github.com/google/uuid"
)

// OfferResponse is the artist's answer to a task offer. PENDING is the only
// non-terminal state.
type OfferResponse string

const (
	OfferPending  OfferResponse = "PENDING"
	OfferAccepted OfferResponse = "ACCEPTED"
	OfferRejected OfferResponse = "REJECTED"
	OfferExpired  OfferResponse = "EXPIRED"
)

// Terminal reports whether the response can no longer change.
func (r OfferResponse) Terminal() bool {
	return r != OfferPending
}

// TaskOffer records one artist being offered one task at one escalation level.
// It doubles as the duplicate-offer guard and the raw material for artist
// performance metrics.
type TaskOffer struct {
	ID              uuid.UUID      `json:"id"`
	TaskID          uuid.UUID      `json:"task_id"`
	ArtistID        uuid.UUID      `json:"artist_id"`
	EscalationLevel int            `json:"escalation_level"`
	MatchScore      float64        `json:"match_score"`
	ScoreBreakdown  ScoreBreakdown `json:"score_breakdown"`
	Response        OfferResponse  `json:"response"`
	ExpiresAt       time.Time      `json:"expires_at"`
	OfferedAt       time.Time      `json:"offered_at"`
	RespondedAt     *time.Time     `json:"responded_at,omitempty"`
}
