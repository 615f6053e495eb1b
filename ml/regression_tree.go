package ml

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

type RegressionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

func (rt *RegressionTree) Train(features [][]float64, targets []float64, maxDepth, minLeaf int) error {
	if len(features) == 0 || len(targets) == 0 {
		return errors.New("features or targets empty")
	}
	if len(features) != len(targets) {
		return errors.New("features and targets size mismatch")
	}
	if maxDepth <= 0 {
		maxDepth = 6
	}
	if minLeaf <= 0 {
		minLeaf = 2
	}

	rt.Nodes = rt.buildNode(features, targets, 0, maxDepth, minLeaf)
	return nil
}

func (rt *RegressionTree) Predict(features []float64) (float64, error) {
	if len(rt.Nodes) == 0 {
		return 0, errors.New("model not trained")
	}
	idx := 0
	for {
		node := rt.Nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(rt.Nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

func (rt *RegressionTree) buildNode(features [][]float64, targets []float64, depth, maxDepth, minLeaf int) []TreeNode {
	value := mean(targets)
	leaf := []TreeNode{{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		Value:      value,
		IsLeaf:     true,
	}}
	if depth >= maxDepth || len(targets) < 2*minLeaf || sumSquares(targets, value) == 0 {
		return leaf
	}

	bestFeature, threshold, ok := findBestSplit(features, targets, minLeaf)
	if !ok {
		return leaf
	}

	leftFeatures, leftTargets, rightFeatures, rightTargets := splitData(features, targets, bestFeature, threshold)
	if len(leftTargets) < minLeaf || len(rightTargets) < minLeaf {
		return leaf
	}

	leftNodes := rt.buildNode(leftFeatures, leftTargets, depth+1, maxDepth, minLeaf)
	rightNodes := rt.buildNode(rightFeatures, rightTargets, depth+1, maxDepth, minLeaf)

	root := TreeNode{
		FeatureIdx: bestFeature,
		Threshold:  threshold,
		LeftChild:  1,
		RightChild: 1 + len(leftNodes),
		Value:      value,
		IsLeaf:     false,
	}

	nodes := make([]TreeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	nodes = append(nodes, leftNodes...)
	nodes = append(nodes, rightNodes...)
	return nodes
}

func findBestSplit(features [][]float64, targets []float64, minLeaf int) (int, float64, bool) {
	featureCount := len(features[0])
	bestFeature := -1
	bestThreshold := 0.0
	bestSSE := math.MaxFloat64

	for featureIdx := 0; featureIdx < featureCount; featureIdx++ {
		values := make([]float64, len(features))
		for i := range features {
			values[i] = features[i][featureIdx]
		}
		threshold := median(values)
		leftTargets, rightTargets := splitTargets(features, targets, featureIdx, threshold)
		if len(leftTargets) < minLeaf || len(rightTargets) < minLeaf {
			continue
		}
		sse := sumSquares(leftTargets, mean(leftTargets)) + sumSquares(rightTargets, mean(rightTargets))
		if sse < bestSSE {
			bestSSE = sse
			bestFeature = featureIdx
			bestThreshold = threshold
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func splitData(features [][]float64, targets []float64, featureIdx int, threshold float64) ([][]float64, []float64, [][]float64, []float64) {
	leftFeatures := make([][]float64, 0)
	leftTargets := make([]float64, 0)
	rightFeatures := make([][]float64, 0)
	rightTargets := make([]float64, 0)
	for i, feature := range features {
		if feature[featureIdx] <= threshold {
			leftFeatures = append(leftFeatures, feature)
			leftTargets = append(leftTargets, targets[i])
		} else {
			rightFeatures = append(rightFeatures, feature)
			rightTargets = append(rightTargets, targets[i])
		}
	}
	return leftFeatures, leftTargets, rightFeatures, rightTargets
}

func splitTargets(features [][]float64, targets []float64, featureIdx int, threshold float64) ([]float64, []float64) {
	leftTargets := make([]float64, 0)
	rightTargets := make([]float64, 0)
	for i, feature := range features {
		if feature[featureIdx] <= threshold {
			leftTargets = append(leftTargets, targets[i])
		} else {
			rightTargets = append(rightTargets, targets[i])
		}
	}
	return leftTargets, rightTargets
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func sumSquares(values []float64, center float64) float64 {
	total := 0.0
	for _, v := range values {
		diff := v - center
		total += diff * diff
	}
	return total
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func bootstrapSample(features [][]float64, targets []float64, rnd *rand.Rand) ([][]float64, []float64) {
	n := len(features)
	sampleFeatures := make([][]float64, n)
	sampleTargets := make([]float64, n)
	for i := 0; i < n; i++ {
		idx := rnd.Intn(n)
		sampleFeatures[i] = features[idx]
		sampleTargets[i] = targets[idx]
	}
	return sampleFeatures, sampleTargets
}
