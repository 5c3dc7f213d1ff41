package services

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/artello/backend/internal/models"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func defaultCfg() models.AlgorithmConfig { return models.DefaultAlgorithmConfig() }

// makeArtist returns a well-formed artist that passes every exclusion rule.
func makeArtist(skills ...string) *models.Artist {
	return &models.Artist{
		ID:                 uuid.New(),
		DisplayName:        "artist",
		Status:             models.ArtistStatusApproved,
		Available:          true,
		ExperienceLevel:    models.ExperienceSenior,
		Rating:             4.5,
		AcceptsUrgentTasks: true,
		MaxConcurrentTasks: 5,
		Skills:             skills,
	}
}

func makeTask(skills ...string) *models.Task {
	return &models.Task{
		ID:             uuid.New(),
		ClientID:       uuid.New(),
		Complexity:     models.ComplexityAdvanced,
		Urgency:        models.UrgencyStandard,
		RequiredSkills: skills,
	}
}

// noonUTC is a fixed clock inside the default peak window for UTC artists.
var noonUTC = time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// 1. Skill score
// ---------------------------------------------------------------------------

func TestSkillScoreNoRequiredSkills(t *testing.T) {
	artist := makeArtist() // no skills at all
	if got := CalculateSkillScore(artist, nil); got != 100 {
		t.Errorf("empty requirements: got %d, want 100", got)
	}
	if got := CalculateSkillScore(artist, []string{}); got != 100 {
		t.Errorf("empty slice requirements: got %d, want 100", got)
	}
}

func TestSkillScoreFuzzyContainment(t *testing.T) {
	artist := makeArtist("Motion Graphics", "illustration")

	// Exact (case/space-insensitive) match.
	if got := CalculateSkillScore(artist, []string{"motion graphics"}); got != 100 {
		t.Errorf("exact: got %d, want 100", got)
	}
	// Artist skill contains the requirement.
	if got := CalculateSkillScore(artist, []string{"motion"}); got != 100 {
		t.Errorf("artist-contains-required: got %d, want 100", got)
	}
	// Requirement contains the artist skill.
	if got := CalculateSkillScore(artist, []string{"digital illustration"}); got != 100 {
		t.Errorf("required-contains-artist: got %d, want 100", got)
	}
	// Half matched.
	if got := CalculateSkillScore(artist, []string{"motion graphics", "3d modeling"}); got != 50 {
		t.Errorf("half: got %d, want 50", got)
	}
	// Nothing matched.
	if got := CalculateSkillScore(artist, []string{"typography"}); got != 0 {
		t.Errorf("none: got %d, want 0", got)
	}
}

func TestSkillScoreUsesSpecializations(t *testing.T) {
	artist := makeArtist()
	artist.Specializations = []string{"brand identity"}
	if got := CalculateSkillScore(artist, []string{"brand identity"}); got != 100 {
		t.Errorf("specialization match: got %d, want 100", got)
	}
}

// ---------------------------------------------------------------------------
// 2. Timezone score and night hours
// ---------------------------------------------------------------------------

func TestTimezoneScoreBuckets(t *testing.T) {
	cfg := defaultCfg()
	artist := makeArtist()
	artist.Timezone = strPtr("UTC")

	cases := []struct {
		hour int
		want int
	}{
		{12, cfg.Timezone.PeakScore},         // inside 09:00-18:00
		{19, cfg.Timezone.EveningScore},      // 18:00-21:00
		{8, cfg.Timezone.EarlyMorningScore},  // 07:00-09:00
		{22, cfg.Timezone.LateEveningScore},  // 21:00-23:00
		{3, cfg.Timezone.NightScore},         // 23:00-07:00
		{23, cfg.Timezone.NightScore},
	}
	for _, tc := range cases {
		now := time.Date(2026, 3, 16, tc.hour, 30, 0, 0, time.UTC)
		if got := CalculateTimezoneScore(artist, &cfg, now); got != tc.want {
			t.Errorf("hour %d: got %d, want %d", tc.hour, got, tc.want)
		}
	}
}

func TestTimezoneScoreUnknownOrInvalid(t *testing.T) {
	cfg := defaultCfg()

	nilTZ := makeArtist()
	if got := CalculateTimezoneScore(nilTZ, &cfg, noonUTC); got != 50 {
		t.Errorf("nil timezone: got %d, want neutral 50", got)
	}

	badTZ := makeArtist()
	badTZ.Timezone = strPtr("Not/AZone")
	if got := CalculateTimezoneScore(badTZ, &cfg, noonUTC); got != 50 {
		t.Errorf("invalid timezone: got %d, want neutral 50", got)
	}
}

func TestIsNightHours(t *testing.T) {
	artist := makeArtist()
	artist.Timezone = strPtr("UTC")

	night := time.Date(2026, 3, 16, 3, 0, 0, 0, time.UTC)
	if !IsNightHours(artist, night) {
		t.Error("03:00 should be night hours")
	}
	lateNight := time.Date(2026, 3, 16, 23, 15, 0, 0, time.UTC)
	if !IsNightHours(artist, lateNight) {
		t.Error("23:15 should be night hours")
	}
	if IsNightHours(artist, noonUTC) {
		t.Error("noon should not be night hours")
	}

	unknown := makeArtist()
	if IsNightHours(unknown, night) {
		t.Error("unknown timezone must never count as night hours")
	}
}

// ---------------------------------------------------------------------------
// 3. Experience, workload, performance
// ---------------------------------------------------------------------------

func TestExperienceScoreDeterministicLookup(t *testing.T) {
	cfg := defaultCfg()
	if got := CalculateExperienceScore(&cfg, models.ComplexityAdvanced, models.ExperienceSenior); got != 100 {
		t.Errorf("ADVANCED x SENIOR: got %d, want 100", got)
	}
	// Same pair, same answer, every time.
	for i := 0; i < 3; i++ {
		if got := CalculateExperienceScore(&cfg, models.ComplexityExpert, models.ExperienceJunior); got != 10 {
			t.Errorf("EXPERT x JUNIOR: got %d, want 10", got)
		}
	}
}

func TestWorkloadScoreMonotonic(t *testing.T) {
	cfg := defaultCfg()
	prev := CalculateWorkloadScore(0, &cfg)
	if prev != 100 {
		t.Errorf("zero active tasks: got %d, want 100", prev)
	}
	for n := 1; n <= 10; n++ {
		got := CalculateWorkloadScore(n, &cfg)
		if got > prev {
			t.Errorf("workload score increased from %d to %d at n=%d", prev, got, n)
		}
		if got < 0 {
			t.Errorf("workload score went negative at n=%d: %d", n, got)
		}
		prev = got
	}
}

func TestPerformanceScoreBlend(t *testing.T) {
	artist := makeArtist()
	artist.Rating = 4.5
	artist.OnTimeRate = floatPtr(90)
	artist.AcceptanceRate = floatPtr(85)
	// 90*0.5 + 90*0.3 + 85*0.2 = 89
	if got := CalculatePerformanceScore(artist); got != 89 {
		t.Errorf("blend: got %d, want 89", got)
	}
}

func TestPerformanceScoreDefaultsUnknownRates(t *testing.T) {
	artist := makeArtist()
	artist.Rating = 5
	artist.OnTimeRate = nil
	artist.AcceptanceRate = nil
	// 100*0.5 + 80*0.3 + 80*0.2 = 90
	if got := CalculatePerformanceScore(artist); got != 90 {
		t.Errorf("defaults: got %d, want 90", got)
	}
}

// ---------------------------------------------------------------------------
// 4. Composite scoring and the worked example
// ---------------------------------------------------------------------------

func TestMatchScoreWorkedExample(t *testing.T) {
	cfg := defaultCfg()
	task := makeTask("motion graphics")
	artist := makeArtist("motion graphics", "after effects")
	artist.OnTimeRate = floatPtr(90)
	artist.AcceptanceRate = floatPtr(85)
	// Timezone nil -> neutral 50.

	score := CalculateMatchScore(artist, task, &cfg, 0, false, noonUTC)
	if score.Excluded {
		t.Fatalf("unexpected exclusion: %s", score.ExclusionReason)
	}
	want := models.ScoreBreakdown{Skill: 100, Timezone: 50, Experience: 100, Workload: 100, Performance: 89}
	if score.Breakdown != want {
		t.Errorf("breakdown: got %+v, want %+v", score.Breakdown, want)
	}
	// 100*0.35 + 50*0.20 + 100*0.20 + 100*0.15 + 89*0.10 = 88.9
	if score.TotalScore != 88.9 {
		t.Errorf("total: got %v, want 88.9", score.TotalScore)
	}
}

func TestMatchScoreBoundedWithBonuses(t *testing.T) {
	cfg := defaultCfg()
	task := makeTask("motion graphics")
	task.CategorySlug = strPtr("animation")

	artist := makeArtist("motion graphics")
	artist.Timezone = strPtr("UTC")
	artist.Rating = 5
	artist.OnTimeRate = floatPtr(100)
	artist.AcceptanceRate = floatPtr(100)
	artist.PreferredCategories = []string{"animation"}

	score := CalculateMatchScore(artist, task, &cfg, 0, true, noonUTC)
	if score.Excluded {
		t.Fatalf("unexpected exclusion: %s", score.ExclusionReason)
	}
	if score.TotalScore > 100 || score.TotalScore < 0 {
		t.Errorf("total %v out of [0,100] after bonuses", score.TotalScore)
	}
	if score.TotalScore != 100 {
		t.Errorf("perfect artist with both bonuses should clamp to 100, got %v", score.TotalScore)
	}
}

func TestCategoryBonusApplied(t *testing.T) {
	cfg := defaultCfg()
	task := makeTask("motion graphics")
	task.CategorySlug = strPtr("animation")

	base := makeArtist("motion graphics")
	withPref := makeArtist("motion graphics")
	withPref.PreferredCategories = []string{"Animation"}

	plain := CalculateMatchScore(base, task, &cfg, 0, false, noonUTC)
	boosted := CalculateMatchScore(withPref, task, &cfg, 0, false, noonUTC)
	if diff := boosted.TotalScore - plain.TotalScore; diff != cfg.Bonuses.CategorySpecialization {
		t.Errorf("category bonus delta: got %v, want %v", diff, cfg.Bonuses.CategorySpecialization)
	}
}

// ---------------------------------------------------------------------------
// 5. Exclusion rules and their priority
// ---------------------------------------------------------------------------

func TestVacationExclusionFiresFirst(t *testing.T) {
	cfg := defaultCfg()
	task := makeTask("motion graphics")
	// Perfect skill match AND overloaded AND on vacation: vacation must win.
	artist := makeArtist("motion graphics")
	artist.VacationMode = true

	score := CalculateMatchScore(artist, task, &cfg, 99, false, noonUTC)
	if !score.Excluded {
		t.Fatal("expected exclusion")
	}
	if score.ExclusionReason != "Artist is on vacation" {
		t.Errorf("reason: got %q, want %q", score.ExclusionReason, "Artist is on vacation")
	}
	if score.TotalScore != models.ExcludedScore {
		t.Errorf("total: got %v, want sentinel %d", score.TotalScore, models.ExcludedScore)
	}
	// The breakdown is still attached for diagnostics.
	if score.Breakdown.Skill != 100 {
		t.Errorf("breakdown skill: got %d, want 100", score.Breakdown.Skill)
	}
}

func TestSkillExclusionBelowMinimum(t *testing.T) {
	cfg := defaultCfg()
	task := makeTask("typography", "print", "logo", "web")
	artist := makeArtist("typography") // 25 < default minimum 30

	score := CalculateMatchScore(artist, task, &cfg, 0, false, noonUTC)
	if !score.Excluded {
		t.Fatal("expected skill exclusion")
	}
	if !strings.Contains(score.ExclusionReason, "below minimum") {
		t.Errorf("reason: got %q", score.ExclusionReason)
	}
}

func TestOverloadedExclusionReason(t *testing.T) {
	cfg := defaultCfg()
	task := makeTask()
	artist := makeArtist()

	score := CalculateMatchScore(artist, task, &cfg, 5, false, noonUTC)
	if !score.Excluded {
		t.Fatal("expected workload exclusion at 5/5")
	}
	if !strings.Contains(score.ExclusionReason, "max capacity (5/5 tasks)") {
		t.Errorf("reason: got %q, want it to mention max capacity (5/5 tasks)", score.ExclusionReason)
	}
}

func TestNightHoursExclusionForRushTasks(t *testing.T) {
	cfg := defaultCfg()
	task := makeTask()
	task.Urgency = models.UrgencyCritical
	artist := makeArtist()
	artist.Timezone = strPtr("UTC")

	night := time.Date(2026, 3, 16, 3, 0, 0, 0, time.UTC)
	score := CalculateMatchScore(artist, task, &cfg, 0, false, night)
	if !score.Excluded {
		t.Fatal("expected night-hours exclusion for critical task")
	}

	// Same artist, standard urgency: night hours are fine.
	task.Urgency = models.UrgencyStandard
	score = CalculateMatchScore(artist, task, &cfg, 0, false, night)
	if score.Excluded {
		t.Errorf("standard task should not exclude at night: %s", score.ExclusionReason)
	}
}

func TestUrgentOptOutExclusion(t *testing.T) {
	cfg := defaultCfg()
	task := makeTask()
	task.Urgency = models.UrgencyUrgent
	artist := makeArtist()
	artist.AcceptsUrgentTasks = false

	score := CalculateMatchScore(artist, task, &cfg, 0, false, noonUTC)
	if !score.Excluded {
		t.Fatal("expected urgent opt-out exclusion")
	}
	if score.ExclusionReason != "Artist does not accept urgent tasks" {
		t.Errorf("reason: got %q", score.ExclusionReason)
	}
}

func TestExclusionTogglesDisabled(t *testing.T) {
	cfg := defaultCfg()
	cfg.Exclusion.ExcludeOnVacation = false
	cfg.Exclusion.ExcludeOverloaded = false
	cfg.Exclusion.ExcludeNightHours = false

	task := makeTask()
	artist := makeArtist()
	artist.VacationMode = true

	score := CalculateMatchScore(artist, task, &cfg, 50, false, noonUTC)
	if score.Excluded {
		t.Errorf("disabled rules should not exclude: %s", score.ExclusionReason)
	}
}
