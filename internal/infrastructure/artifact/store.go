package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"footfall_service/internal/domain/model"
)

// Store persists the trained model as a single JSON artifact. The
// trees, the feature schema and the encoding map travel together; a
// file missing any of the three is rejected on load rather than
// producing silently wrong predictions.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Save writes the model atomically: a temp file in the same directory
// is renamed over the target, so a crash mid-write can never leave a
// truncated artifact behind.
func (s *Store) Save(m *model.TrainedModel) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model artifact: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish artifact: %w", err)
	}
	return nil
}

// Load reads and validates the artifact. Any structural damage, from
// unparseable JSON to a tree referencing a feature outside the schema,
// is reported as CorruptArtifact so the caller can fall back to
// retraining instead of serving garbage.
func (s *Store) Load() (*model.TrainedModel, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("artifact %s: %w", s.path, model.ErrNoModel)
		}
		return nil, fmt.Errorf("read artifact %s: %w", s.path, err)
	}

	var m model.TrainedModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %v: %w", s.path, err, model.ErrCorruptArtifact)
	}
	if err := validate(&m); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", s.path, err)
	}
	return &m, nil
}

func validate(m *model.TrainedModel) error {
	if len(m.FeatureNames) == 0 {
		return fmt.Errorf("missing feature schema: %w", model.ErrCorruptArtifact)
	}
	if len(m.Trees) == 0 {
		return fmt.Errorf("missing trees: %w", model.ErrCorruptArtifact)
	}
	if len(m.Encodings) == 0 {
		return fmt.Errorf("missing encoding map: %w", model.ErrCorruptArtifact)
	}

	featureCount := len(m.FeatureNames)
	for ti, tree := range m.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes: %w", ti, model.ErrCorruptArtifact)
		}
		for ni, node := range tree.Nodes {
			if node.Leaf {
				continue
			}
			if node.Feature < 0 || node.Feature >= featureCount {
				return fmt.Errorf("tree %d node %d references feature %d outside schema of %d: %w",
					ti, ni, node.Feature, featureCount, model.ErrCorruptArtifact)
			}
			if node.Left < 0 || node.Left >= len(tree.Nodes) ||
				node.Right < 0 || node.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d has out-of-range children: %w",
					ti, ni, model.ErrCorruptArtifact)
			}
		}
	}
	return nil
}
