package model

import (
	"fmt"
	"time"
)

// CenterCategory classifies a service center by the population it serves.
type CenterCategory string

const (
	CategoryUrban     CenterCategory = "Urban"
	CategoryRural     CenterCategory = "Rural"
	CategorySemiUrban CenterCategory = "Semi-Urban"
)

// Center is a single service center from the reference catalog.
type Center struct {
	LocationCode string         `db:"location_code" json:"location_code"`
	District     string         `db:"district" json:"district"`
	State        string         `db:"state" json:"state"`
	Category     CenterCategory `db:"category" json:"center_category"`
	BaseFootfall float64        `db:"base_footfall" json:"baseline_footfall"`
}

// Observation is one day of recorded footfall for one center.
type Observation struct {
	LocationCode string    `db:"location_code" json:"location_code"`
	Date         time.Time `db:"observed_on" json:"date"`
	Footfall     int       `db:"footfall" json:"footfall"`
}

// FeatureRow is a numeric feature vector for one (center, date).
// Values follow the canonical schema order; Names is the schema the
// vector was built against, shared across rows from the same build.
type FeatureRow struct {
	LocationCode string
	Date         time.Time
	Names        []string
	Values       []float64
}

// EncodingMap holds the integer codes assigned to categorical values
// at training time, per column. It must travel with the model.
type EncodingMap map[string]map[string]int

// Hyperparams is the fixed boosting configuration recorded with a model.
type Hyperparams struct {
	Trees        int     `json:"trees"`
	MaxDepth     int     `json:"max_depth"`
	LearningRate float64 `json:"learning_rate"`
	MinLeaf      int     `json:"min_leaf"`
}

// Metrics are regression metrics computed on the held-out slice.
type Metrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
	MAPE float64 `json:"mape"`
}

// TreeNode is one node of a regression tree. Leaf nodes carry the
// value; internal nodes route on Values[Feature] <= Threshold.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Leaf      bool    `json:"leaf"`
}

// Tree is a single regression tree stored as a flat node array
// with the root at index 0.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// TrafficLevel is the coarse bucket derived from a numeric forecast.
type TrafficLevel string

const (
	TrafficLow    TrafficLevel = "Low"
	TrafficMedium TrafficLevel = "Medium"
	TrafficHigh   TrafficLevel = "High"
)

// TrafficThresholds are the train-time quantile bounds used for bucketing.
type TrafficThresholds struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Level buckets a predicted footfall value.
func (t TrafficThresholds) Level(predicted float64) TrafficLevel {
	switch {
	case predicted >= t.High:
		return TrafficHigh
	case predicted < t.Low:
		return TrafficLow
	default:
		return TrafficMedium
	}
}

// TrainedModel is the complete, immutable result of one training run.
// The ensemble, the feature-name list and the encoding map are a unit:
// loading any one without the matching others is a corrupt artifact.
type TrainedModel struct {
	FeatureNames []string           `json:"feature_names"`
	Encodings    EncodingMap        `json:"encodings"`
	BaseScore    float64            `json:"base_score"`
	Trees        []Tree             `json:"trees"`
	Hyperparams  Hyperparams        `json:"hyperparams"`
	Metrics      Metrics            `json:"metrics"`
	Segments     map[string]Metrics `json:"segment_metrics,omitempty"`
	Thresholds   TrafficThresholds  `json:"thresholds"`
	TrainedAt    time.Time          `json:"trained_at"`
}

// Forecast is a single point forecast with its explanation.
// Ephemeral: computed per request, never persisted.
type Forecast struct {
	LocationCode  string       `json:"location_code"`
	Date          time.Time    `json:"date"`
	Footfall      int          `json:"predicted_footfall"`
	Level         TrafficLevel `json:"traffic_level"`
	LowConfidence bool         `json:"low_confidence"`
	Statements    []string     `json:"statements"`
}

// CorrectionReport lists the fixes an importer applied to malformed
// input, so corrections are visible instead of silent.
type CorrectionReport struct {
	Corrections []string `json:"corrections"`
}

// Addf appends a formatted correction entry.
func (r *CorrectionReport) Addf(format string, args ...any) {
	r.Corrections = append(r.Corrections, fmt.Sprintf(format, args...))
}
