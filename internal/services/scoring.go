package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/artello/backend/internal/models"
)

// Scoring is pure: every function here takes an explicit config and clock value
// and never returns an error. Malformed artist data degrades to neutral scores
// so one bad record cannot abort ranking for the whole pool.

// CalculateSkillScore returns 0-100 for how well the artist's skills cover the
// task's required skills. A task with no required skills matches vacuously.
// A required skill counts as matched when any artist skill or specialization
// equals it or contains it as a substring in either direction.
func CalculateSkillScore(artist *models.Artist, required []string) int {
	if len(required) == 0 {
		return 100
	}

	offered := make([]string, 0, len(artist.Skills)+len(artist.Specializations))
	for _, s := range artist.Skills {
		offered = append(offered, normalizeSkill(s))
	}
	for _, s := range artist.Specializations {
		offered = append(offered, normalizeSkill(s))
	}

	matched := 0
	for _, req := range required {
		want := normalizeSkill(req)
		if want == "" {
			matched++
			continue
		}
		for _, have := range offered {
			if have == "" {
				continue
			}
			if have == want || strings.Contains(have, want) || strings.Contains(want, have) {
				matched++
				break
			}
		}
	}
	return int(math.Round(float64(matched) / float64(len(required)) * 100))
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CalculateTimezoneScore buckets the artist's current local time-of-day against
// the configured peak window. Unknown or unparseable timezones score a neutral 50.
func CalculateTimezoneScore(artist *models.Artist, cfg *models.AlgorithmConfig, now time.Time) int {
	minute, ok := localMinuteOfDay(artist.Timezone, now)
	if !ok {
		return 50
	}

	peakStart := parseClock(cfg.Timezone.PeakStart, 9*60)
	peakEnd := parseClock(cfg.Timezone.PeakEnd, 18*60)

	switch {
	case minute >= peakStart && minute < peakEnd:
		return cfg.Timezone.PeakScore
	case minute >= peakEnd && minute < 21*60:
		return cfg.Timezone.EveningScore
	case minute >= 7*60 && minute < peakStart:
		return cfg.Timezone.EarlyMorningScore
	case minute >= 21*60 && minute < 23*60:
		return cfg.Timezone.LateEveningScore
	default:
		return cfg.Timezone.NightScore
	}
}

// IsNightHours reports whether the artist's local hour is in [23,24) or [0,7).
// Unknown timezones are never considered night.
func IsNightHours(artist *models.Artist, now time.Time) bool {
	minute, ok := localMinuteOfDay(artist.Timezone, now)
	if !ok {
		return false
	}
	hour := minute / 60
	return hour >= 23 || hour < 7
}

// localMinuteOfDay converts now into the artist's local minute-of-day.
// Returns ok=false when the timezone is absent or invalid.
func localMinuteOfDay(tz *string, now time.Time) (int, bool) {
	if tz == nil || *tz == "" {
		return 0, false
	}
	loc, err := time.LoadLocation(*tz)
	if err != nil {
		return 0, false
	}
	local := now.In(loc)
	return local.Hour()*60 + local.Minute(), true
}

// parseClock parses "HH:MM" into a minute-of-day, falling back on bad input.
func parseClock(s string, fallback int) int {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return fallback
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return fallback
	}
	return h*60 + m
}

// CalculateExperienceScore is a direct matrix lookup by complexity and level.
func CalculateExperienceScore(cfg *models.AlgorithmConfig, complexity models.TaskComplexity, level models.ExperienceLevel) int {
	return cfg.Experience.Score(complexity, level)
}

// CalculateWorkloadScore decreases linearly with active tasks, floored at 0.
func CalculateWorkloadScore(activeTasks int, cfg *models.AlgorithmConfig) int {
	score := 100 - activeTasks*cfg.Workload.ScorePerTask
	if score < 0 {
		return 0
	}
	return score
}

// CalculatePerformanceScore blends rating (weight 0.5), on-time rate (0.3), and
// acceptance rate (0.2). Unknown rates default to 80.
func CalculatePerformanceScore(artist *models.Artist) int {
	onTime := 80.0
	if artist.OnTimeRate != nil {
		onTime = *artist.OnTimeRate
	}
	acceptance := 80.0
	if artist.AcceptanceRate != nil {
		acceptance = *artist.AcceptanceRate
	}
	ratingPct := artist.Rating / 5 * 100
	return int(math.Round(ratingPct*0.5 + onTime*0.3 + acceptance*0.2))
}

// CalculateMatchScore computes the five sub-scores, applies exclusion rules in
// priority order, and combines the survivors into the weighted composite with
// bonuses. Excluded candidates carry TotalScore = -1 and keep their breakdown
// attached for diagnostics.
func CalculateMatchScore(
	artist *models.Artist,
	task *models.Task,
	cfg *models.AlgorithmConfig,
	activeTasks int,
	isFavorite bool,
	now time.Time,
) models.ArtistScore {
	breakdown := models.ScoreBreakdown{
		Skill:       CalculateSkillScore(artist, task.RequiredSkills),
		Timezone:    CalculateTimezoneScore(artist, cfg, now),
		Experience:  CalculateExperienceScore(cfg, task.Complexity, artist.ExperienceLevel),
		Workload:    CalculateWorkloadScore(activeTasks, cfg),
		Performance: CalculatePerformanceScore(artist),
	}
	result := models.ArtistScore{Artist: artist, Breakdown: breakdown}

	if reason, rule := exclusionReason(artist, task, cfg, breakdown.Skill, activeTasks, now); rule != "" {
		result.Excluded = true
		result.ExclusionReason = reason
		result.ExclusionRule = rule
		result.TotalScore = models.ExcludedScore
		return result
	}

	w := cfg.Weights
	total := float64(breakdown.Skill)*float64(w.SkillMatch)/100 +
		float64(breakdown.Timezone)*float64(w.TimezoneFit)/100 +
		float64(breakdown.Experience)*float64(w.ExperienceMatch)/100 +
		float64(breakdown.Workload)*float64(w.WorkloadBalance)/100 +
		float64(breakdown.Performance)*float64(w.PerformanceHistory)/100

	if task.CategorySlug != nil && containsFold(artist.PreferredCategories, *task.CategorySlug) {
		total += cfg.Bonuses.CategorySpecialization
	}
	if isFavorite {
		total += cfg.Bonuses.FavoriteArtist
	}

	if total > 100 {
		total = 100
	}
	result.TotalScore = math.Round(total*100) / 100
	return result
}

// exclusionReason applies the hard cutoffs in fixed priority order and returns
// the first matching reason with its machine rule label. An empty rule means
// no cutoff fired.
func exclusionReason(
	artist *models.Artist,
	task *models.Task,
	cfg *models.AlgorithmConfig,
	skillScore int,
	activeTasks int,
	now time.Time,
) (reason, rule string) {
	if cfg.Exclusion.ExcludeOnVacation && artist.VacationMode {
		return "Artist is on vacation", "vacation"
	}
	if skillScore < cfg.Exclusion.MinSkillScore {
		return fmt.Sprintf("Skill score %d below minimum %d", skillScore, cfg.Exclusion.MinSkillScore), "skill"
	}
	if cfg.Exclusion.ExcludeOverloaded && activeTasks >= cfg.Workload.MaxActiveTasks {
		return fmt.Sprintf("Artist at max capacity (%d/%d tasks)", activeTasks, cfg.Workload.MaxActiveTasks), "workload"
	}
	if cfg.Exclusion.ExcludeNightHours && task.Urgency.IsRush() && IsNightHours(artist, now) {
		return "Artist is in night hours for an urgent task", "night_hours"
	}
	if task.Urgency.IsRush() && !artist.AcceptsUrgentTasks {
		return "Artist does not accept urgent tasks", "urgent_opt_out"
	}
	return "", ""
}

func containsFold(list []string, want string) bool {
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}
