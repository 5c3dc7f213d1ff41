package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/artello/backend/internal/models"
)

// ErrValidation can be used with errors.Is to detect config validation failures.
var ErrValidation = errors.New("validation failed")

// algorithmConfigSchema is the structural contract for submitted configs. Value
// sanity beyond structure (weight sum, positive windows) is checked in code.
const algorithmConfigSchema = `{
	"type": "object",
	"required": ["weights", "acceptance_windows", "escalation_settings", "timezone_settings", "experience_matrix", "workload_settings", "exclusion_rules", "bonus_modifiers"],
	"properties": {
		"weights": {
			"type": "object",
			"required": ["skill_match", "timezone_fit", "experience_match", "workload_balance", "performance_history"],
			"additionalProperties": {"type": "integer", "minimum": 0, "maximum": 100}
		},
		"acceptance_windows": {
			"type": "object",
			"required": ["critical", "urgent", "standard", "flexible"],
			"additionalProperties": {"type": "integer", "minimum": 1}
		},
		"escalation_settings": {"type": "object"},
		"timezone_settings": {"type": "object"},
		"experience_matrix": {
			"type": "array",
			"minItems": 4,
			"maxItems": 4,
			"items": {
				"type": "array",
				"minItems": 4,
				"maxItems": 4,
				"items": {"type": "integer", "minimum": 0, "maximum": 100}
			}
		},
		"workload_settings": {"type": "object"},
		"exclusion_rules": {"type": "object"},
		"bonus_modifiers": {"type": "object"}
	}
}`

// ConfigValidator checks algorithm config documents before activation.
type ConfigValidator struct {
	schema *jsonschema.Schema
}

// NewConfigValidator compiles the embedded schema.
func NewConfigValidator() (*ConfigValidator, error) {
	schema, err := jsonschema.CompileString("https://artello.dev/schemas/algorithm-config", algorithmConfigSchema)
	if err != nil {
		return nil, fmt.Errorf("compile algorithm config schema: %w", err)
	}
	return &ConfigValidator{schema: schema}, nil
}

// Validate hard-rejects a submitted config document that is structurally
// invalid or carries nonsense values.
func (v *ConfigValidator) Validate(raw json.RawMessage) (*models.AlgorithmConfig, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrValidation, err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var cfg models.AlgorithmConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	w := cfg.Weights
	sum := w.SkillMatch + w.TimezoneFit + w.ExperienceMatch + w.WorkloadBalance + w.PerformanceHistory
	if sum != 100 {
		return nil, fmt.Errorf("%w: weights sum to %d, want 100", ErrValidation, sum)
	}
	if cfg.Workload.MaxActiveTasks <= 0 {
		return nil, fmt.Errorf("%w: max_active_tasks must be positive", ErrValidation)
	}
	if cfg.Workload.ScorePerTask < 0 {
		return nil, fmt.Errorf("%w: score_per_task must not be negative", ErrValidation)
	}
	if cfg.Escalation.Level3BroadcastMinutes <= 0 {
		return nil, fmt.Errorf("%w: level3_broadcast_minutes must be positive", ErrValidation)
	}
	return &cfg, nil
}
