package main

import (
	"context"
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"footfall_service/internal/api"
	"footfall_service/internal/config"
	"footfall_service/internal/core"
	"footfall_service/internal/domain/model"
	"footfall_service/internal/domain/repository"
	"footfall_service/internal/infrastructure/artifact"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	catalog, source, recorder := buildStore(ctx, cfg)

	artifacts := artifact.NewStore(cfg.ArtifactPath)
	predictor := core.NewPredictionService(catalog, source)
	trainer := core.NewTrainer()
	trainer.TestFraction = cfg.TestFraction
	training := core.NewTrainingService(catalog, source, trainer, artifacts, predictor)

	if cfg.Synthetic {
		seedObservations(ctx, cfg, catalog, recorder)
	}

	// Restore the last trained model; a damaged artifact is logged and
	// the service starts without a model until the next /train call.
	if m, err := artifacts.Load(); err != nil {
		if errors.Is(err, model.ErrCorruptArtifact) {
			log.Printf("discarding model artifact: %v", err)
		} else if !errors.Is(err, model.ErrNoModel) {
			log.Printf("model artifact unavailable: %v", err)
		}
	} else {
		predictor.SetModel(m)
	}

	handler := api.NewHandler(catalog, recorder, predictor, training)
	router := gin.Default()
	handler.Register(router)

	log.Printf("starting server on %s", cfg.HTTPAddr)
	log.Fatal(router.Run(cfg.HTTPAddr))
}

// buildStore selects the observation backend: Postgres when a URL is
// configured, otherwise an in-memory store. The catalog is always
// served from memory; the Postgres path loads it once at startup.
func buildStore(ctx context.Context, cfg config.Config) (*repository.MemoryCatalog, repository.ObservationSource, repository.ObservationRecorder) {
	if cfg.PostgresURL == "" {
		log.Printf("using in-memory observation store")
		catalog := repository.NewMemoryCatalog(repository.DefaultCenters(), repository.DefaultHolidays())
		store := repository.NewMemoryObservationStore()
		return catalog, store, store
	}

	store := repository.NewPostgresStore(cfg.PostgresURL)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	centers, holidays, err := store.LoadCatalog(ctx)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	if len(centers) == 0 {
		centers = repository.DefaultCenters()
		holidays = repository.DefaultHolidays()
		if err := store.SaveCenters(ctx, centers); err != nil {
			log.Fatalf("seed centers: %v", err)
		}
		if err := store.SaveHolidays(ctx, holidays); err != nil {
			log.Fatalf("seed holidays: %v", err)
		}
		log.Printf("seeded catalog with %d default centers", len(centers))
	}

	catalog := repository.NewMemoryCatalog(centers, holidays)
	recorder := repository.NewPostgresObservationRecorder(store.DB)
	return catalog, store, recorder
}

// seedObservations generates the synthetic series and stores it when
// the backend has no observations yet.
func seedObservations(ctx context.Context, cfg config.Config, catalog *repository.MemoryCatalog, recorder repository.ObservationRecorder) {
	if cfg.PostgresURL != "" && !cfg.SaveObservations {
		log.Printf("synthetic seed skipped: SAVE_OBSERVATIONS is disabled for the Postgres backend")
		return
	}
	observations, err := core.NewSynthesizer(catalog, cfg.Seed).Generate(cfg.SyntheticStart, cfg.SyntheticEnd)
	if err != nil {
		log.Fatalf("synthesize observations: %v", err)
	}
	if err := recorder.SaveObservations(ctx, observations); err != nil {
		log.Fatalf("store synthetic observations: %v", err)
	}
}
