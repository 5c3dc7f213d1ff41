package models

// ScoreBreakdown holds the five sub-scores feeding the composite.
type ScoreBreakdown struct {
	Skill       int `json:"skill"`
	Timezone    int `json:"timezone"`
	Experience  int `json:"experience"`
	Workload    int `json:"workload"`
	Performance int `json:"performance"`
}

// ExcludedScore is the sentinel total for candidates knocked out by an
// exclusion rule.
const ExcludedScore = -1

// ArtistScore is the result of scoring one artist against one task. It is
// recomputed on every ranking pass and never persisted on its own; the winning
// score is copied onto the TaskOffer row.
type ArtistScore struct {
	Artist          *Artist        `json:"artist"`
	TotalScore      float64        `json:"total_score"`
	Breakdown       ScoreBreakdown `json:"breakdown"`
	Excluded        bool           `json:"excluded"`
	ExclusionReason string         `json:"exclusion_reason,omitempty"`
	// ExclusionRule is the machine label of the rule that fired, e.g.
	// "vacation" or "workload". Empty when not excluded.
	ExclusionRule string `json:"exclusion_rule,omitempty"`
}
