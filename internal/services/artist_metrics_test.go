package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/artello/backend/internal/models"
)

// ---------------------------------------------------------------------------
// mocks
// ---------------------------------------------------------------------------

type fakeResolvedOffers struct{ offers []*models.TaskOffer }

func (f fakeResolvedOffers) ResolvedForArtist(ctx context.Context, artistID uuid.UUID) ([]*models.TaskOffer, error) {
	return f.offers, nil
}

type fakeCompletedTasks struct{ tasks []*models.Task }

func (f fakeCompletedTasks) CompletedForArtist(ctx context.Context, artistID uuid.UUID) ([]*models.Task, error) {
	return f.tasks, nil
}

type capturePerf struct {
	called bool
	perf   models.ArtistPerformance
}

func (c *capturePerf) UpdatePerformance(ctx context.Context, artistID uuid.UUID, perf models.ArtistPerformance) error {
	c.called = true
	c.perf = perf
	return nil
}

func newUpdater(offers []*models.TaskOffer, tasks []*models.Task, store *capturePerf) *MetricsUpdater {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMetricsUpdater(fakeResolvedOffers{offers}, fakeCompletedTasks{tasks}, store, logger)
}

func resolvedOffer(response models.OfferResponse, offeredAt time.Time, responseAfter time.Duration) *models.TaskOffer {
	o := &models.TaskOffer{
		ID:        uuid.New(),
		Response:  response,
		OfferedAt: offeredAt,
	}
	if responseAfter >= 0 {
		at := offeredAt.Add(responseAfter)
		o.RespondedAt = &at
	}
	return o
}

// ---------------------------------------------------------------------------
// tests
// ---------------------------------------------------------------------------

func TestUpdateArtistMetricsNoResolvedOffers(t *testing.T) {
	store := &capturePerf{}
	u := newUpdater(nil, nil, store)

	if err := u.UpdateArtistMetrics(context.Background(), uuid.New()); err != nil {
		t.Fatal(err)
	}
	if store.called {
		t.Error("zero resolved offers must not overwrite stored figures")
	}
}

func TestUpdateArtistMetricsRates(t *testing.T) {
	base := noonUTC
	offers := []*models.TaskOffer{
		resolvedOffer(models.OfferAccepted, base, 10*time.Minute),
		resolvedOffer(models.OfferAccepted, base, 20*time.Minute),
		resolvedOffer(models.OfferRejected, base, 15*time.Minute),
		// Expired offers never got a response timestamp.
		resolvedOffer(models.OfferExpired, base, -1),
	}

	deadline := base.Add(24 * time.Hour)
	early := base.Add(20 * time.Hour)
	late := base.Add(30 * time.Hour)
	tasks := []*models.Task{
		{Deadline: &deadline, CompletedAt: &early},
		{Deadline: &deadline, CompletedAt: &late},
		{CompletedAt: &early}, // no deadline, excluded from on-time rate
	}

	store := &capturePerf{}
	u := newUpdater(offers, tasks, store)
	if err := u.UpdateArtistMetrics(context.Background(), uuid.New()); err != nil {
		t.Fatal(err)
	}
	if !store.called {
		t.Fatal("expected performance write-back")
	}

	if store.perf.AcceptanceRate != 50 {
		t.Errorf("acceptance rate: got %v, want 50 (2 of 4)", store.perf.AcceptanceRate)
	}
	if store.perf.AvgResponseMinutes == nil || *store.perf.AvgResponseMinutes != 15 {
		t.Errorf("avg response: got %v, want 15", store.perf.AvgResponseMinutes)
	}
	if store.perf.OnTimeRate == nil || *store.perf.OnTimeRate != 50 {
		t.Errorf("on-time rate: got %v, want 50 (1 of 2 deadlined)", store.perf.OnTimeRate)
	}
	if store.perf.ExperienceLevel != models.ExperienceJunior {
		t.Errorf("experience: got %s, want JUNIOR for 3 completed", store.perf.ExperienceLevel)
	}
}

func TestUpdateArtistMetricsExperienceLadder(t *testing.T) {
	cases := []struct {
		completed int
		want      models.ExperienceLevel
	}{
		{0, models.ExperienceJunior},
		{10, models.ExperienceJunior},
		{11, models.ExperienceMid},
		{50, models.ExperienceMid},
		{51, models.ExperienceSenior},
		{150, models.ExperienceSenior},
		{151, models.ExperienceExpert},
	}
	for _, tc := range cases {
		tasks := make([]*models.Task, tc.completed)
		for i := range tasks {
			tasks[i] = &models.Task{}
		}
		offers := []*models.TaskOffer{resolvedOffer(models.OfferAccepted, noonUTC, 5*time.Minute)}

		store := &capturePerf{}
		u := newUpdater(offers, tasks, store)
		if err := u.UpdateArtistMetrics(context.Background(), uuid.New()); err != nil {
			t.Fatal(err)
		}
		if store.perf.ExperienceLevel != tc.want {
			t.Errorf("%d completed: got %s, want %s", tc.completed, store.perf.ExperienceLevel, tc.want)
		}
	}
}

func TestUpdateArtistMetricsNoResponsesNoDeadlines(t *testing.T) {
	offers := []*models.TaskOffer{resolvedOffer(models.OfferExpired, noonUTC, -1)}
	store := &capturePerf{}
	u := newUpdater(offers, nil, store)

	if err := u.UpdateArtistMetrics(context.Background(), uuid.New()); err != nil {
		t.Fatal(err)
	}
	if store.perf.AcceptanceRate != 0 {
		t.Errorf("acceptance rate: got %v, want 0", store.perf.AcceptanceRate)
	}
	if store.perf.AvgResponseMinutes != nil {
		t.Error("no responses: avg response must stay unknown")
	}
	if store.perf.OnTimeRate != nil {
		t.Error("no deadlined completions: on-time rate must stay unknown")
	}
}
