package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskComplexity classifies how demanding a task is.
type TaskComplexity string

const (
	ComplexitySimple       TaskComplexity = "SIMPLE"
	ComplexityIntermediate TaskComplexity = "INTERMEDIATE"
	ComplexityAdvanced     TaskComplexity = "ADVANCED"
	ComplexityExpert       TaskComplexity = "EXPERT"
)

// Index returns the experience-matrix row for the complexity.
func (c TaskComplexity) Index() int {
	switch c {
	case ComplexityIntermediate:
		return 1
	case ComplexityAdvanced:
		return 2
	case ComplexityExpert:
		return 3
	default:
		return 0
	}
}

// TaskUrgency drives acceptance windows and night-hours exclusion.
type TaskUrgency string

const (
	UrgencyCritical TaskUrgency = "CRITICAL"
	UrgencyUrgent   TaskUrgency = "URGENT"
	UrgencyStandard TaskUrgency = "STANDARD"
	UrgencyFlexible TaskUrgency = "FLEXIBLE"
)

// IsRush reports whether the urgency is CRITICAL or URGENT.
func (u TaskUrgency) IsRush() bool {
	return u == UrgencyCritical || u == UrgencyUrgent
}

// Task assignment lifecycle statuses.
const (
	TaskStatusQueued     = "queued"
	TaskStatusOffered    = "offered"
	TaskStatusAssigned   = "assigned"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
	TaskStatusUnassigned = "unassigned"
)

// Task is a unit of design work awaiting assignment to an artist.
type Task struct {
	ID              uuid.UUID      `json:"id"`
	ClientID        uuid.UUID      `json:"client_id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Status          string         `json:"status"`
	Complexity      TaskComplexity `json:"complexity"`
	Urgency         TaskUrgency    `json:"urgency"`
	CategorySlug    *string        `json:"category_slug,omitempty"`
	RequiredSkills  []string       `json:"required_skills"`
	EstimatedHours  float64        `json:"estimated_hours"`
	Deadline        *time.Time     `json:"deadline,omitempty"`
	OfferedTo       *uuid.UUID     `json:"offered_to,omitempty"`
	OfferExpiresAt  *time.Time     `json:"offer_expires_at,omitempty"`
	EscalationLevel int            `json:"escalation_level"`
	AssignedTo      *uuid.UUID     `json:"assigned_to,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
