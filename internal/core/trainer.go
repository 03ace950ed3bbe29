package core

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"footfall_service/internal/domain/model"
)

// MinTrainingRows is the smallest feature table a training run accepts.
// Below this the split degenerates and the metrics are meaningless.
const MinTrainingRows = 30

// DefaultTestFraction of the most recent distinct dates is held out for
// evaluation.
const DefaultTestFraction = 0.2

// Traffic thresholds are taken from the training targets so the buckets
// track the fleet actually being modeled instead of fixed counts.
const (
	lowTrafficQuantile  = 0.35
	highTrafficQuantile = 0.75
)

// Trainer fits a model on a feature table and evaluates it on a
// chronological holdout.
type Trainer struct {
	Hyperparams  model.Hyperparams
	TestFraction float64
}

func NewTrainer() *Trainer {
	return &Trainer{
		Hyperparams:  DefaultHyperparams(),
		TestFraction: DefaultTestFraction,
	}
}

// Train splits the rows chronologically, fits the ensemble on the
// training portion, evaluates on the holdout, then returns a model
// carrying the trees, the feature schema, the encoding map, the holdout
// metrics and the traffic thresholds as one unit.
func (t *Trainer) Train(rows []model.FeatureRow, targets []float64, encodings model.EncodingMap) (*model.TrainedModel, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("training set is empty: %w", model.ErrEmptyDataset)
	}
	if len(rows) < MinTrainingRows {
		return nil, fmt.Errorf("training set has %d rows, need at least %d: %w",
			len(rows), MinTrainingRows, model.ErrEmptyDataset)
	}

	trainIdx, testIdx := chronologicalSplit(rows, t.TestFraction)

	trainRows := make([]model.FeatureRow, len(trainIdx))
	trainTargets := make([]float64, len(trainIdx))
	for i, idx := range trainIdx {
		trainRows[i] = rows[idx]
		trainTargets[i] = targets[idx]
	}

	log.Printf("training on %d rows, evaluating on %d held-out rows", len(trainIdx), len(testIdx))
	base, trees := FitEnsemble(trainRows, trainTargets, t.Hyperparams)

	trained := &model.TrainedModel{
		FeatureNames: FeatureNames(),
		Encodings:    encodings,
		BaseScore:    base,
		Trees:        trees,
		Hyperparams:  t.Hyperparams,
		Thresholds:   thresholdsFromTargets(trainTargets),
		TrainedAt:    time.Now().UTC(),
	}

	metrics, err := evaluate(trained, rows, targets, testIdx)
	if err != nil {
		return nil, fmt.Errorf("evaluate holdout: %w", err)
	}
	trained.Metrics = metrics
	trained.Segments = segmentMetrics(trained, rows, targets, testIdx)
	log.Printf("holdout metrics: mae=%.2f rmse=%.2f r2=%.3f mape=%.1f%%",
		metrics.MAE, metrics.RMSE, metrics.R2, metrics.MAPE)

	return trained, nil
}

// segmentMetrics re-evaluates the holdout sliced by center category,
// weekday and season, so a model that only works for urban weekdays
// cannot hide behind a good aggregate score.
func segmentMetrics(m *model.TrainedModel, rows []model.FeatureRow, targets []float64, testIdx []int) map[string]model.Metrics {
	groups := make(map[string][]int)
	for _, idx := range testIdx {
		for _, label := range segmentLabels(rows[idx].Values) {
			groups[label] = append(groups[label], idx)
		}
	}

	out := make(map[string]model.Metrics, len(groups))
	for label, idxs := range groups {
		metrics, err := evaluate(m, rows, targets, idxs)
		if err != nil {
			continue
		}
		out[label] = metrics
	}
	return out
}

var weekdaySegments = [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func segmentLabels(values []float64) []string {
	labels := make([]string, 0, 3)

	switch {
	case values[fIsUrban] == 1:
		labels = append(labels, "category/Urban")
	case values[fIsRural] == 1:
		labels = append(labels, "category/Rural")
	default:
		labels = append(labels, "category/Semi-Urban")
	}

	if dow := int(values[fDayOfWeek]); dow >= 0 && dow < len(weekdaySegments) {
		labels = append(labels, "weekday/"+weekdaySegments[dow])
	}

	switch {
	case values[fIsEnrollmentSeason] == 1:
		labels = append(labels, "season/enrollment")
	case values[fIsPensionMonth] == 1:
		labels = append(labels, "season/pension")
	case values[fIsFestivalSeason] == 1:
		labels = append(labels, "season/festival")
	default:
		labels = append(labels, "season/regular")
	}

	return labels
}

// chronologicalSplit holds out the most recent fraction of distinct
// dates. Splitting on dates rather than rows keeps every center's
// holdout period aligned, so no training row postdates a test row.
func chronologicalSplit(rows []model.FeatureRow, testFraction float64) (train, test []int) {
	seen := make(map[string]struct{})
	var dates []string
	for _, row := range rows {
		key := row.Date.Format("2006-01-02")
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			dates = append(dates, key)
		}
	}
	sort.Strings(dates)

	testDays := int(math.Round(float64(len(dates)) * testFraction))
	if testDays < 1 {
		testDays = 1
	}
	if testDays >= len(dates) {
		testDays = len(dates) - 1
	}
	if testDays < 1 {
		// A single distinct date cannot be split; the caller's holdout
		// check reports the empty test set.
		for i := range rows {
			train = append(train, i)
		}
		return train, nil
	}
	cutoff := dates[len(dates)-testDays]

	for i, row := range rows {
		if row.Date.Format("2006-01-02") >= cutoff {
			test = append(test, i)
		} else {
			train = append(train, i)
		}
	}
	return train, test
}

// evaluate scores the holdout rows and computes the error metrics.
// MAPE skips zero targets rather than dividing by them.
func evaluate(m *model.TrainedModel, rows []model.FeatureRow, targets []float64, testIdx []int) (model.Metrics, error) {
	n := len(testIdx)
	if n == 0 {
		return model.Metrics{}, fmt.Errorf("holdout is empty: %w", model.ErrEmptyDataset)
	}

	meanTarget := 0.0
	for _, idx := range testIdx {
		meanTarget += targets[idx]
	}
	meanTarget /= float64(n)

	var absSum, sqSum, ssTot, mapeSum float64
	mapeCount := 0
	for _, idx := range testIdx {
		pred, err := PredictRow(m, rows[idx])
		if err != nil {
			return model.Metrics{}, err
		}
		diff := pred - targets[idx]
		absSum += math.Abs(diff)
		sqSum += diff * diff
		dev := targets[idx] - meanTarget
		ssTot += dev * dev
		if targets[idx] != 0 {
			mapeSum += math.Abs(diff) / targets[idx]
			mapeCount++
		}
	}

	metrics := model.Metrics{
		MAE:  absSum / float64(n),
		RMSE: math.Sqrt(sqSum / float64(n)),
	}
	if ssTot > 0 {
		metrics.R2 = 1 - sqSum/ssTot
	}
	if mapeCount > 0 {
		metrics.MAPE = mapeSum / float64(mapeCount) * 100
	}
	return metrics, nil
}

// thresholdsFromTargets derives the Low/High bucket boundaries from the
// training target distribution.
func thresholdsFromTargets(targets []float64) model.TrafficThresholds {
	sorted := append([]float64(nil), targets...)
	sort.Float64s(sorted)
	return model.TrafficThresholds{
		Low:  quantile(sorted, lowTrafficQuantile),
		High: quantile(sorted, highTrafficQuantile),
	}
}

// quantile interpolates linearly over a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
