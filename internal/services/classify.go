package services

import (
	"strings"
	"time"

	"github.com/artello/backend/internal/models"
)

// Keyword lists scanned case-insensitively in task descriptions.
var (
	complexityKeywords = []string{
		"complex", "advanced", "3d", "motion graphics", "animation",
		"illustration", "brand identity", "rebrand",
	}
	simplicityKeywords = []string{
		"simple", "quick", "edit", "resize", "minor", "tweak",
	}
)

// DetectComplexity auto-classifies a task from its estimated hours, required
// skill count, and description keywords. Used when the client did not set
// complexity explicitly.
func DetectComplexity(estimatedHours float64, requiredSkills []string, description string) models.TaskComplexity {
	score := 0

	switch {
	case estimatedHours <= 2:
	case estimatedHours <= 4:
		score++
	case estimatedHours <= 8:
		score += 2
	default:
		score += 3
	}

	switch n := len(requiredSkills); {
	case n <= 1:
	case n <= 2:
		score++
	case n <= 4:
		score += 2
	default:
		score += 3
	}

	desc := strings.ToLower(description)
	for _, kw := range complexityKeywords {
		if strings.Contains(desc, kw) {
			score += 2
			break
		}
	}
	for _, kw := range simplicityKeywords {
		if strings.Contains(desc, kw) {
			score--
			break
		}
	}

	switch {
	case score <= 1:
		return models.ComplexitySimple
	case score <= 3:
		return models.ComplexityIntermediate
	case score <= 5:
		return models.ComplexityAdvanced
	default:
		return models.ComplexityExpert
	}
}

// DetectUrgency derives urgency purely from hours until the deadline. Tasks
// without a deadline are FLEXIBLE.
func DetectUrgency(deadline *time.Time, now time.Time) models.TaskUrgency {
	if deadline == nil {
		return models.UrgencyFlexible
	}
	hours := deadline.Sub(now).Hours()
	switch {
	case hours <= 4:
		return models.UrgencyCritical
	case hours <= 24:
		return models.UrgencyUrgent
	case hours <= 72:
		return models.UrgencyStandard
	default:
		return models.UrgencyFlexible
	}
}
