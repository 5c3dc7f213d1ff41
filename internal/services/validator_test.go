package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/artello/backend/internal/models"
)

func mustValidator(t *testing.T) *ConfigValidator {
	t.Helper()
	v, err := NewConfigValidator()
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func marshalCfg(t *testing.T, cfg models.AlgorithmConfig) []byte {
	t.Helper()
	raw, err := json.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestValidateAcceptsDefaultConfig(t *testing.T) {
	v := mustValidator(t)
	cfg, err := v.Validate(marshalCfg(t, models.DefaultAlgorithmConfig()))
	if err != nil {
		t.Fatalf("default config rejected: %v", err)
	}
	if cfg.Weights.SkillMatch != 35 {
		t.Errorf("round-trip lost weights: %+v", cfg.Weights)
	}
}

func TestValidateRejectsBadWeightSum(t *testing.T) {
	v := mustValidator(t)
	cfg := models.DefaultAlgorithmConfig()
	cfg.Weights.SkillMatch = 50 // sum now 115

	_, err := v.Validate(marshalCfg(t, cfg))
	if !errors.Is(err, ErrValidation) {
		t.Errorf("want ErrValidation for weight sum 115, got %v", err)
	}
}

func TestValidateRejectsMissingSection(t *testing.T) {
	v := mustValidator(t)
	raw := marshalCfg(t, models.DefaultAlgorithmConfig())

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	delete(doc, "weights")
	trimmed, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := v.Validate(trimmed); !errors.Is(err, ErrValidation) {
		t.Errorf("want ErrValidation for missing weights, got %v", err)
	}
}

func TestValidateRejectsNonsenseValues(t *testing.T) {
	v := mustValidator(t)

	zeroCap := models.DefaultAlgorithmConfig()
	zeroCap.Workload.MaxActiveTasks = 0
	if _, err := v.Validate(marshalCfg(t, zeroCap)); !errors.Is(err, ErrValidation) {
		t.Errorf("want ErrValidation for zero max_active_tasks, got %v", err)
	}

	noBroadcast := models.DefaultAlgorithmConfig()
	noBroadcast.Escalation.Level3BroadcastMinutes = 0
	if _, err := v.Validate(marshalCfg(t, noBroadcast)); !errors.Is(err, ErrValidation) {
		t.Errorf("want ErrValidation for zero broadcast window, got %v", err)
	}
}

func TestValidateRejectsInvalidJSON(t *testing.T) {
	v := mustValidator(t)
	if _, err := v.Validate([]byte("{not json")); !errors.Is(err, ErrValidation) {
		t.Errorf("want ErrValidation for malformed JSON, got %v", err)
	}
}
