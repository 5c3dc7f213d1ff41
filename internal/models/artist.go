package models

import (
	"time"

	"github.com/google/uuid"
)

// ExperienceLevel is an artist's seniority tier, recomputed from completed-task
// counts by the metrics updater.
type ExperienceLevel string

const (
	ExperienceJunior ExperienceLevel = "JUNIOR"
	ExperienceMid    ExperienceLevel = "MID"
	ExperienceSenior ExperienceLevel = "SENIOR"
	ExperienceExpert ExperienceLevel = "EXPERT"
)

// Index returns the experience-matrix column for the level. Unknown values map
// to JUNIOR so a malformed row degrades instead of panicking.
func (l ExperienceLevel) Index() int {
	switch l {
	case ExperienceMid:
		return 1
	case ExperienceSenior:
		return 2
	case ExperienceExpert:
		return 3
	default:
		return 0
	}
}

// ExperienceLevelForCount returns the tier earned by a completed-task count.
func ExperienceLevelForCount(completed int) ExperienceLevel {
	switch {
	case completed > 150:
		return ExperienceExpert
	case completed > 50:
		return ExperienceSenior
	case completed > 10:
		return ExperienceMid
	default:
		return ExperienceJunior
	}
}

// Artist availability enums.
const (
	ArtistStatusApproved = "approved"
	ArtistStatusPending  = "pending"
	ArtistStatusSuspended = "suspended"
)

// Artist is a snapshot of one freelancer eligible for matching. It is read-only
// within a scoring pass; only the metrics updater mutates the performance fields.
type Artist struct {
	ID                 uuid.UUID       `json:"id"`
	DisplayName        string          `json:"display_name"`
	Status             string          `json:"status"`
	Available          bool            `json:"available"`
	Timezone           *string         `json:"timezone,omitempty"` // IANA name, nil = unknown
	ExperienceLevel    ExperienceLevel `json:"experience_level"`
	Rating             float64         `json:"rating"` // 0-5
	CompletedTasks     int             `json:"completed_tasks"`
	AcceptanceRate     *float64        `json:"acceptance_rate,omitempty"` // percent, nil = unknown
	OnTimeRate         *float64        `json:"on_time_rate,omitempty"`    // percent, nil = unknown
	AvgResponseMinutes *float64        `json:"avg_response_minutes,omitempty"`
	MaxConcurrentTasks int             `json:"max_concurrent_tasks"`
	WorkingHoursStart  string          `json:"working_hours_start"`
	WorkingHoursEnd    string          `json:"working_hours_end"`
	AcceptsUrgentTasks bool            `json:"accepts_urgent_tasks"`
	VacationMode       bool            `json:"vacation_mode"`
	Skills             []string        `json:"skills"`
	Specializations    []string        `json:"specializations"`
	PreferredCategories []string       `json:"preferred_categories"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ArtistPerformance carries the recomputed historical figures written back by
// the metrics updater.
type ArtistPerformance struct {
	AcceptanceRate     float64
	AvgResponseMinutes *float64
	OnTimeRate         *float64
	ExperienceLevel    ExperienceLevel
}
