package artifact

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"footfall_service/internal/domain/model"
)

func sampleModel() *model.TrainedModel {
	return &model.TrainedModel{
		FeatureNames: []string{"day_of_week", "footfall_lag_7"},
		Encodings: model.EncodingMap{
			"center_category": {"Rural": 0, "Semi-Urban": 1, "Urban": 2},
			"district":        {"Central Delhi": 0},
			"state":           {"Delhi": 0},
		},
		BaseScore: 150,
		Trees: []model.Tree{{Nodes: []model.TreeNode{
			{Feature: 1, Threshold: 120, Left: 1, Right: 2},
			{Leaf: true, Value: -3},
			{Leaf: true, Value: 4},
		}}},
		Hyperparams: model.Hyperparams{Trees: 1, MaxDepth: 1, LearningRate: 0.1, MinLeaf: 5},
		Metrics:     model.Metrics{MAE: 10, RMSE: 14, R2: 0.8, MAPE: 7},
		Thresholds:  model.TrafficThresholds{Low: 80, High: 150},
		TrainedAt:   time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "model.json"))

	saved := sampleModel()
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestSaveCreatesDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "dir", "model.json"))
	require.NoError(t, store.Save(sampleModel()))
	_, err := store.Load()
	assert.NoError(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.json"))
	_, err := store.Load()
	assert.ErrorIs(t, err, model.ErrNoModel)
}

func TestLoadUnparseableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o644))

	_, err := NewStore(path).Load()
	assert.ErrorIs(t, err, model.ErrCorruptArtifact)
}

func TestLoadRejectsIncompleteTriple(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]func(*model.TrainedModel){
		"no feature names": func(m *model.TrainedModel) { m.FeatureNames = nil },
		"no trees":         func(m *model.TrainedModel) { m.Trees = nil },
		"no encodings":     func(m *model.TrainedModel) { m.Encodings = nil },
	}
	for name, strip := range cases {
		t.Run(name, func(t *testing.T) {
			store := NewStore(filepath.Join(dir, name+".json"))
			m := sampleModel()
			strip(m)
			require.NoError(t, store.Save(m))

			_, err := store.Load()
			assert.ErrorIs(t, err, model.ErrCorruptArtifact)
		})
	}
}

func TestLoadRejectsDamagedTree(t *testing.T) {
	dir := t.TempDir()

	outOfSchema := sampleModel()
	outOfSchema.Trees[0].Nodes[0].Feature = 99
	store := NewStore(filepath.Join(dir, "feature.json"))
	require.NoError(t, store.Save(outOfSchema))
	_, err := store.Load()
	assert.ErrorIs(t, err, model.ErrCorruptArtifact)

	badChild := sampleModel()
	badChild.Trees[0].Nodes[0].Right = 42
	store = NewStore(filepath.Join(dir, "child.json"))
	require.NoError(t, store.Save(badChild))
	_, err = store.Load()
	assert.ErrorIs(t, err, model.ErrCorruptArtifact)
}
