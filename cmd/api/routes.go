package main

import (
	"log/slog"
	"net/http"

	"github.com/artello/backend/internal/assignment"
	"github.com/artello/backend/internal/handlers"
	"github.com/artello/backend/internal/metrics"
	"github.com/artello/backend/internal/repository"
	"github.com/artello/backend/internal/services"
)

// RegisterV1Routes adds the /v1/ assignment API endpoints to the given mux.
func RegisterV1Routes(
	mux *http.ServeMux,
	artistRepo *repository.ArtistRepo,
	taskRepo *repository.TaskRepo,
	offerRepo *repository.OfferRepo,
	configRepo *repository.AlgorithmConfigRepo,
	configProvider *services.ConfigProvider,
	configValidator *services.ConfigValidator,
	ranker *services.Ranker,
	assigner *assignment.Assigner,
	metricsUpdater *services.MetricsUpdater,
	reg *metrics.Registry,
	logger *slog.Logger,
) {
	th := &handlers.TaskHandler{
		TaskRepo: taskRepo,
		Ranker:   ranker,
		Assigner: assigner,
		Logger:   logger,
	}
	oh := &handlers.OfferHandler{
		OfferRepo:     offerRepo,
		TaskRepo:      taskRepo,
		ArtistMetrics: metricsUpdater,
		Assigner:      assigner,
		Metrics:       reg,
		Logger:        logger,
	}
	ah := &handlers.ArtistHandler{
		ArtistRepo:    artistRepo,
		ArtistMetrics: metricsUpdater,
		Logger:        logger,
	}
	ch := &handlers.ConfigHandler{
		Provider:  configProvider,
		Repo:      configRepo,
		Validator: configValidator,
		Logger:    logger,
	}

	mux.HandleFunc("POST /v1/tasks", th.CreateTask)
	mux.HandleFunc("GET /v1/tasks/{id}", th.GetTask)
	mux.HandleFunc("GET /v1/tasks/{id}/candidates", th.ListCandidates)
	mux.HandleFunc("POST /v1/tasks/{id}/assign", th.Assign)

	mux.HandleFunc("GET /v1/offers/{id}", oh.GetOffer)
	mux.HandleFunc("POST /v1/offers/{id}/response", oh.Respond)

	mux.HandleFunc("GET /v1/artists", ah.ListAvailable)
	mux.HandleFunc("POST /v1/artists/{id}/metrics/refresh", ah.RefreshMetrics)

	mux.HandleFunc("GET /v1/algorithm-config", ch.GetConfig)
	mux.HandleFunc("PUT /v1/algorithm-config", ch.PutConfig)
}
