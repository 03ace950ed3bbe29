package core

import (
	"fmt"
	"sort"

	"footfall_service/internal/domain/model"
)

// Gradient boosting over depth-limited regression trees with squared
// loss: each tree is fit to the residuals of the ensemble so far and
// its leaf values are shrunk by the learning rate.

// DefaultHyperparams is the fixed boosting configuration recorded with
// every trained model.
func DefaultHyperparams() model.Hyperparams {
	return model.Hyperparams{
		Trees:        200,
		MaxDepth:     4,
		LearningRate: 0.1,
		MinLeaf:      5,
	}
}

// FitEnsemble trains the boosted ensemble and returns the base score
// (the target mean) and the trees. Deterministic for a given input.
func FitEnsemble(rows []model.FeatureRow, targets []float64, hp model.Hyperparams) (float64, []model.Tree) {
	n := len(targets)

	base := 0.0
	for _, y := range targets {
		base += y
	}
	base /= float64(n)

	// Column-major copy so splits scan contiguous values.
	cols := make([][]float64, featureCount)
	for f := range cols {
		cols[f] = make([]float64, n)
	}
	for i, row := range rows {
		for f, v := range row.Values {
			cols[f][i] = v
		}
	}

	preds := make([]float64, n)
	for i := range preds {
		preds[i] = base
	}

	residuals := make([]float64, n)
	samples := make([]int, n)
	for i := range samples {
		samples[i] = i
	}

	trees := make([]model.Tree, 0, hp.Trees)
	for t := 0; t < hp.Trees; t++ {
		for i := range residuals {
			residuals[i] = targets[i] - preds[i]
		}

		tb := &treeBuilder{cols: cols, residuals: residuals, hp: hp}
		tb.build(append([]int(nil), samples...), 0)
		tree := model.Tree{Nodes: tb.nodes}
		trees = append(trees, tree)

		for i := range preds {
			preds[i] += evalSample(tree, cols, i)
		}
	}

	return base, trees
}

// PredictRow scores one feature row against a trained model. The row's
// schema must match the model's exactly; anything else is a
// SchemaMismatch, never a silent wrong answer.
func PredictRow(m *model.TrainedModel, row model.FeatureRow) (float64, error) {
	if len(row.Values) != len(m.FeatureNames) || len(row.Names) != len(m.FeatureNames) {
		return 0, fmt.Errorf("row has %d features, model expects %d: %w",
			len(row.Values), len(m.FeatureNames), model.ErrSchemaMismatch)
	}
	for i, name := range row.Names {
		if name != m.FeatureNames[i] {
			return 0, fmt.Errorf("feature %d is %q, model expects %q: %w",
				i, name, m.FeatureNames[i], model.ErrSchemaMismatch)
		}
	}

	score := m.BaseScore
	for _, tree := range m.Trees {
		score += evalValues(tree, row.Values)
	}
	return score, nil
}

type treeBuilder struct {
	cols      [][]float64
	residuals []float64
	hp        model.Hyperparams
	nodes     []model.TreeNode
}

// build grows one node and returns its index in the arena.
func (tb *treeBuilder) build(samples []int, depth int) int {
	if depth >= tb.hp.MaxDepth || len(samples) < 2*tb.hp.MinLeaf {
		return tb.leaf(samples)
	}

	feature, threshold, ok := tb.bestSplit(samples)
	if !ok {
		return tb.leaf(samples)
	}

	var left, right []int
	for _, s := range samples {
		if tb.cols[feature][s] <= threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}

	idx := len(tb.nodes)
	tb.nodes = append(tb.nodes, model.TreeNode{Feature: feature, Threshold: threshold})
	tb.nodes[idx].Left = tb.build(left, depth+1)
	tb.nodes[idx].Right = tb.build(right, depth+1)
	return idx
}

func (tb *treeBuilder) leaf(samples []int) int {
	sum := 0.0
	for _, s := range samples {
		sum += tb.residuals[s]
	}
	value := 0.0
	if len(samples) > 0 {
		value = tb.hp.LearningRate * sum / float64(len(samples))
	}
	idx := len(tb.nodes)
	tb.nodes = append(tb.nodes, model.TreeNode{Leaf: true, Value: value})
	return idx
}

// bestSplit scans every feature for the threshold that maximizes the
// squared-sum gain, honoring the minimum leaf size.
func (tb *treeBuilder) bestSplit(samples []int) (int, float64, bool) {
	n := len(samples)

	total := 0.0
	for _, s := range samples {
		total += tb.residuals[s]
	}
	baseScore := total * total / float64(n)

	bestGain := 1e-9
	bestFeature, bestThreshold := -1, 0.0

	order := make([]int, n)
	for f := 0; f < len(tb.cols); f++ {
		col := tb.cols[f]
		copy(order, samples)
		sort.Slice(order, func(i, j int) bool { return col[order[i]] < col[order[j]] })

		if col[order[0]] == col[order[n-1]] {
			continue // constant feature on this node
		}

		sumLeft := 0.0
		for i := 0; i < n-1; i++ {
			sumLeft += tb.residuals[order[i]]
			nLeft := i + 1
			if nLeft < tb.hp.MinLeaf || n-nLeft < tb.hp.MinLeaf {
				continue
			}
			if col[order[i]] == col[order[i+1]] {
				continue // cannot split between equal values
			}
			sumRight := total - sumLeft
			score := sumLeft*sumLeft/float64(nLeft) + sumRight*sumRight/float64(n-nLeft)
			if gain := score - baseScore; gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (col[order[i]] + col[order[i+1]]) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func evalSample(tree model.Tree, cols [][]float64, sample int) float64 {
	idx := 0
	for {
		node := tree.Nodes[idx]
		if node.Leaf {
			return node.Value
		}
		if cols[node.Feature][sample] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

func evalValues(tree model.Tree, values []float64) float64 {
	idx := 0
	for {
		node := tree.Nodes[idx]
		if node.Leaf {
			return node.Value
		}
		if values[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}
