package core

import (
	"context"
	"fmt"
	"log"

	"footfall_service/internal/domain/model"
	"footfall_service/internal/domain/repository"
)

// ArtifactSaver persists a trained model. Satisfied by the artifact
// store; nil disables persistence.
type ArtifactSaver interface {
	Save(*model.TrainedModel) error
}

// TrainingService runs the full pipeline: load observations, build the
// feature table, fit and evaluate the model, persist the artifact and
// publish the model to the predictor.
type TrainingService struct {
	catalog   repository.Catalog
	source    repository.ObservationSource
	trainer   *Trainer
	artifacts ArtifactSaver
	predictor *PredictionService
}

func NewTrainingService(
	catalog repository.Catalog,
	source repository.ObservationSource,
	trainer *Trainer,
	artifacts ArtifactSaver,
	predictor *PredictionService,
) *TrainingService {
	return &TrainingService{
		catalog:   catalog,
		source:    source,
		trainer:   trainer,
		artifacts: artifacts,
		predictor: predictor,
	}
}

// Retrain fits a new model on everything in the observation store. The
// predictor keeps serving the previous model until the new one is
// fully trained and evaluated, then swaps in one step.
func (s *TrainingService) Retrain(ctx context.Context) (*model.TrainedModel, error) {
	observations, err := s.source.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	if len(observations) == 0 {
		return nil, fmt.Errorf("observation store is empty: %w", model.ErrEmptyDataset)
	}

	builder := NewFeatureBuilder(s.catalog, NewEncoder())
	rows, targets, err := builder.BuildFeatures(observations)
	if err != nil {
		return nil, fmt.Errorf("build features: %w", err)
	}

	trained, err := s.trainer.Train(rows, targets, builder.Encoder().Map())
	if err != nil {
		return nil, err
	}

	if s.artifacts != nil {
		if err := s.artifacts.Save(trained); err != nil {
			return nil, fmt.Errorf("persist model: %w", err)
		}
		log.Printf("model artifact saved")
	}

	s.predictor.SetModel(trained)
	return trained, nil
}
