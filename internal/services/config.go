package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/artello/backend/internal/models"
)

// AlgorithmConfigRepo is the minimal store interface for the config provider.
// GetActive returns (nil, nil) when no row is active.
type AlgorithmConfigRepo interface {
	GetActive(ctx context.Context) (*models.AlgorithmConfig, error)
}

// ConfigProvider resolves the active algorithm configuration, falling back to
// the built-in default when no stored config is active. Absence is never an
// error; repository I/O failures propagate.
type ConfigProvider struct {
	Repo   AlgorithmConfigRepo
	Logger *slog.Logger
}

// NewConfigProvider returns a ConfigProvider.
func NewConfigProvider(repo AlgorithmConfigRepo, logger *slog.Logger) *ConfigProvider {
	return &ConfigProvider{Repo: repo, Logger: logger}
}

var _ ConfigSource = (*ConfigProvider)(nil)

// Active returns the active stored config or the default.
func (p *ConfigProvider) Active(ctx context.Context) (models.AlgorithmConfig, error) {
	stored, err := p.Repo.GetActive(ctx)
	if err != nil {
		return models.AlgorithmConfig{}, fmt.Errorf("get active config: %w", err)
	}
	if stored == nil {
		p.Logger.Debug("no active algorithm config, using default")
		return models.DefaultAlgorithmConfig(), nil
	}
	return *stored, nil
}
