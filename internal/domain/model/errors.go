package model

import "errors"

// Error taxonomy of the pipeline. Data-quality problems in batch feature
// construction are recovered locally (row dropped, count logged); schema
// and artifact errors always surface to the caller.
var (
	// ErrInvalidRange means a date range has start after end.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrInsufficientHistory means a lag or rolling feature cannot be
	// computed from the available history.
	ErrInsufficientHistory = errors.New("insufficient history for lag features")

	// ErrSchemaMismatch means a feature vector does not match the schema
	// the model was trained with. Fatal to the call, never recovered.
	ErrSchemaMismatch = errors.New("feature schema mismatch")

	// ErrCorruptArtifact means the persisted model/encoding/feature-list
	// triple is incomplete or inconsistent. No partial load.
	ErrCorruptArtifact = errors.New("corrupt model artifact")

	// ErrEmptyDataset means training was called with too few rows.
	ErrEmptyDataset = errors.New("dataset too small to train")

	// ErrCenterNotFound means the location code is not in the catalog.
	ErrCenterNotFound = errors.New("center not found")

	// ErrNoModel means prediction was requested before any model was
	// trained or loaded.
	ErrNoModel = errors.New("no trained model available")
)
