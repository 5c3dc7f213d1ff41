package models

import (
	"time"

	"github.com/google/uuid"
)

// Weights are the five composite-score percentages. They conceptually sum to 100.
type Weights struct {
	SkillMatch         int `json:"skill_match"`
	TimezoneFit        int `json:"timezone_fit"`
	ExperienceMatch    int `json:"experience_match"`
	WorkloadBalance    int `json:"workload_balance"`
	PerformanceHistory int `json:"performance_history"`
}

// AcceptanceWindows holds offer acceptance windows in minutes per urgency tier.
type AcceptanceWindows struct {
	Critical int `json:"critical"`
	Urgent   int `json:"urgent"`
	Standard int `json:"standard"`
	Flexible int `json:"flexible"`
}

// Minutes returns the acceptance window for the given urgency.
func (w AcceptanceWindows) Minutes(u TaskUrgency) int {
	switch u {
	case UrgencyCritical:
		return w.Critical
	case UrgencyUrgent:
		return w.Urgent
	case UrgencyStandard:
		return w.Standard
	case UrgencyFlexible:
		return w.Flexible
	}
	return w.Flexible
}

// EscalationSettings controls how thresholds relax as escalation levels increase.
type EscalationSettings struct {
	// Level2SkillThreshold replaces ExclusionRules.MinSkillScore at level >= 2.
	Level2SkillThreshold int `json:"level2_skill_threshold"`
	// Level2WorkloadBoost is added to WorkloadSettings.MaxActiveTasks at level >= 2.
	Level2WorkloadBoost int `json:"level2_workload_boost"`
	// Level3BroadcastMinutes is the acceptance window used for broadcast offers.
	Level3BroadcastMinutes int `json:"level3_broadcast_minutes"`
	// MaxOffersPerLevel caps sequential offers before the level is considered exhausted.
	MaxOffersPerLevel int `json:"max_offers_per_level"`
}

// TimezoneSettings describes the time-of-day scoring curve. Peak boundaries are
// "HH:MM" strings in the artist's local time.
type TimezoneSettings struct {
	PeakStart         string `json:"peak_start"`
	PeakEnd           string `json:"peak_end"`
	PeakScore         int    `json:"peak_score"`
	EveningScore      int    `json:"evening_score"`
	EarlyMorningScore int    `json:"early_morning_score"`
	LateEveningScore  int    `json:"late_evening_score"`
	NightScore        int    `json:"night_score"`
}

// ExperienceMatrix maps task complexity (rows) x artist experience level (columns)
// to a match score 0-100. Serialized as nested arrays so config rows stay compact.
type ExperienceMatrix [4][4]int

// Score looks up the match score for a complexity/level pair.
func (m ExperienceMatrix) Score(c TaskComplexity, l ExperienceLevel) int {
	return m[c.Index()][l.Index()]
}

// WorkloadSettings caps concurrent work and penalizes busy artists.
type WorkloadSettings struct {
	MaxActiveTasks int `json:"max_active_tasks"`
	ScorePerTask   int `json:"score_per_task"`
}

// ExclusionRules are hard cutoffs applied before any weighting.
type ExclusionRules struct {
	MinSkillScore     int  `json:"min_skill_score"`
	ExcludeOverloaded bool `json:"exclude_overloaded"`
	ExcludeOnVacation bool `json:"exclude_on_vacation"`
	ExcludeNightHours bool `json:"exclude_night_hours"`
}

// BonusModifiers are flat additive bonuses applied after weighting.
type BonusModifiers struct {
	CategorySpecialization float64 `json:"category_specialization"`
	FavoriteArtist         float64 `json:"favorite_artist"`
}

// AlgorithmConfig is one versioned row of matching configuration. At most one row
// is active at a time; the engine falls back to DefaultAlgorithmConfig when none is.
type AlgorithmConfig struct {
	ID        uuid.UUID          `json:"id"`
	Version   int                `json:"version"`
	Active    bool               `json:"active"`
	Weights   Weights            `json:"weights"`
	Windows   AcceptanceWindows  `json:"acceptance_windows"`
	Escalation EscalationSettings `json:"escalation_settings"`
	Timezone  TimezoneSettings   `json:"timezone_settings"`
	Experience ExperienceMatrix  `json:"experience_matrix"`
	Workload  WorkloadSettings   `json:"workload_settings"`
	Exclusion ExclusionRules     `json:"exclusion_rules"`
	Bonuses   BonusModifiers     `json:"bonus_modifiers"`
	CreatedAt time.Time          `json:"created_at"`
}

// DefaultAlgorithmConfig returns the built-in configuration used whenever no
// stored config row is active. Callers receive a fresh value each time.
func DefaultAlgorithmConfig() AlgorithmConfig {
	return AlgorithmConfig{
		Version: 0,
		Weights: Weights{
			SkillMatch:         35,
			TimezoneFit:        20,
			ExperienceMatch:    20,
			WorkloadBalance:    15,
			PerformanceHistory: 10,
		},
		Windows: AcceptanceWindows{
			Critical: 10,
			Urgent:   30,
			Standard: 120,
			Flexible: 240,
		},
		Escalation: EscalationSettings{
			Level2SkillThreshold:   15,
			Level2WorkloadBoost:    2,
			Level3BroadcastMinutes: 60,
			MaxOffersPerLevel:      5,
		},
		Timezone: TimezoneSettings{
			PeakStart:         "09:00",
			PeakEnd:           "18:00",
			PeakScore:         100,
			EveningScore:      80,
			EarlyMorningScore: 70,
			LateEveningScore:  50,
			NightScore:        20,
		},
		// Rows: SIMPLE, INTERMEDIATE, ADVANCED, EXPERT.
		// Columns: JUNIOR, MID, SENIOR, EXPERT.
		Experience: ExperienceMatrix{
			{100, 90, 75, 60},
			{70, 100, 90, 80},
			{30, 70, 100, 95},
			{10, 40, 80, 100},
		},
		Workload: WorkloadSettings{
			MaxActiveTasks: 5,
			ScorePerTask:   20,
		},
		Exclusion: ExclusionRules{
			MinSkillScore:     30,
			ExcludeOverloaded: true,
			ExcludeOnVacation: true,
			ExcludeNightHours: true,
		},
		Bonuses: BonusModifiers{
			CategorySpecialization: 5,
			FavoriteArtist:         10,
		},
	}
}
