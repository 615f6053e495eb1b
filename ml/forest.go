package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

// ArtifactSchemaVersion is the schema the serving code was built against.
// Artifacts with the same major version load; a minor skew is tolerated
// and reported through MinorSkew. A major mismatch is rejected.
const ArtifactSchemaVersion = "1.1"

// RegressionForest is a bagged ensemble of regression trees. The trained
// artifact is immutable after load and safe for concurrent Predict calls.
type RegressionForest struct {
	SchemaVersion  string           `json:"schema_version"`
	EncoderVersion string           `json:"encoder_version"`
	FeatureCount   int              `json:"feature_count"`
	Trees          []RegressionTree `json:"trees"`

	minorSkew bool
}

type ForestConfig struct {
	Trees    int
	MaxDepth int
	MinLeaf  int
	Seed     int64
}

func DefaultForestConfig() ForestConfig {
	return ForestConfig{Trees: 25, MaxDepth: 8, MinLeaf: 2, Seed: 42}
}

func (f *RegressionForest) Train(features [][]float64, targets []float64, config ForestConfig) error {
	if len(features) == 0 || len(targets) == 0 {
		return errors.New("features or targets empty")
	}
	if len(features) != len(targets) {
		return errors.New("features and targets size mismatch")
	}
	if config.Trees <= 0 {
		config.Trees = DefaultForestConfig().Trees
	}

	rnd := rand.New(rand.NewSource(config.Seed))
	trees := make([]RegressionTree, 0, config.Trees)
	for i := 0; i < config.Trees; i++ {
		sampleFeatures, sampleTargets := bootstrapSample(features, targets, rnd)
		tree := RegressionTree{}
		if err := tree.Train(sampleFeatures, sampleTargets, config.MaxDepth, config.MinLeaf); err != nil {
			return err
		}
		trees = append(trees, tree)
	}

	f.SchemaVersion = ArtifactSchemaVersion
	f.EncoderVersion = EncoderVersion
	f.FeatureCount = len(features[0])
	f.Trees = trees
	return nil
}

// Predict averages the tree estimates. Read-only against the shared
// artifact, no locking required.
func (f *RegressionForest) Predict(features []float64) (float64, error) {
	if len(f.Trees) == 0 {
		return 0, errors.New("model not trained")
	}
	if len(features) != f.FeatureCount {
		return 0, fmt.Errorf("%w: got %d features, artifact expects %d", ErrEncodingMismatch, len(features), f.FeatureCount)
	}
	total := 0.0
	for i := range f.Trees {
		value, err := f.Trees[i].Predict(features)
		if err != nil {
			return 0, err
		}
		total += value
	}
	return total / float64(len(f.Trees)), nil
}

func (f *RegressionForest) Save(path string) error {
	if len(f.Trees) == 0 {
		return errors.New("model not trained")
	}
	payload, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (f *RegressionForest) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded RegressionForest
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	if len(loaded.Trees) == 0 {
		return errors.New("artifact contains no trees")
	}
	skew, err := checkSchemaVersion(loaded.SchemaVersion)
	if err != nil {
		return err
	}
	if loaded.EncoderVersion != "" && loaded.EncoderVersion != EncoderVersion {
		return fmt.Errorf("%w: artifact encoder %s, serving encoder %s", ErrIncompatibleArtifact, loaded.EncoderVersion, EncoderVersion)
	}

	*f = loaded
	f.minorSkew = skew
	return nil
}

// MinorSkew reports whether the loaded artifact was written by a
// different minor schema revision than the serving code. Worth a log
// line at startup, not an error.
func (f *RegressionForest) MinorSkew() bool {
	return f.minorSkew
}

func checkSchemaVersion(version string) (skew bool, err error) {
	if version == "" {
		return false, fmt.Errorf("%w: artifact missing schema version", ErrIncompatibleArtifact)
	}
	artifactMajor, artifactMinor, err := parseVersion(version)
	if err != nil {
		return false, fmt.Errorf("%w: bad schema version %q", ErrIncompatibleArtifact, version)
	}
	servingMajor, servingMinor, _ := parseVersion(ArtifactSchemaVersion)
	if artifactMajor != servingMajor {
		return false, fmt.Errorf("%w: artifact schema %s, serving schema %s", ErrIncompatibleArtifact, version, ArtifactSchemaVersion)
	}
	return artifactMinor != servingMinor, nil
}

func parseVersion(version string) (major, minor int, err error) {
	parts := strings.SplitN(version, ".", 2)
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	if len(parts) == 2 {
		minor, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, err
		}
	}
	return major, minor, nil
}
