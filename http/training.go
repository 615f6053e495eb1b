package http

import (
	"errors"
	"math"
	"os"
	"path/filepath"

	"rumahcerdas/db"
	"rumahcerdas/ml"
)

type TrainingConfig struct {
	ModelPath string
	Trees     int
	MaxDepth  int
	MinLeaf   int
	TestRatio float64
	Limits    ml.EncoderLimits
}

var trainingConfig TrainingConfig

func SetTrainingConfig(config TrainingConfig) {
	trainingConfig = config
}

type TrainingResult struct {
	MAE        float64 `json:"mae"`
	R2         float64 `json:"r2"`
	DataPoints int     `json:"data_points"`
	ModelPath  string  `json:"model_path"`
}

// trainModel fits a fresh forest on the current catalogue and writes
// the artifact. Evaluation uses a held-out tail split.
func trainModel(config TrainingConfig) (TrainingResult, error) {
	if config.ModelPath == "" {
		return TrainingResult{}, errors.New("model path is required")
	}

	listings, err := queryListings(db.ListingFilter{})
	if err != nil {
		return TrainingResult{}, err
	}
	features, prices, err := ml.BuildTrainingSet(listings, config.Limits)
	if err != nil {
		return TrainingResult{}, err
	}

	trainX, trainY, testX, testY, err := ml.SplitTrainingSet(features, prices, config.TestRatio)
	if err != nil {
		return TrainingResult{}, err
	}

	forest := &ml.RegressionForest{}
	forestConfig := ml.DefaultForestConfig()
	if config.Trees > 0 {
		forestConfig.Trees = config.Trees
	}
	if config.MaxDepth > 0 {
		forestConfig.MaxDepth = config.MaxDepth
	}
	if config.MinLeaf > 0 {
		forestConfig.MinLeaf = config.MinLeaf
	}
	if err := forest.Train(trainX, trainY, forestConfig); err != nil {
		return TrainingResult{}, err
	}

	mae, r2 := evaluateModel(forest, testX, testY)

	if err := os.MkdirAll(filepath.Dir(config.ModelPath), 0o755); err != nil {
		return TrainingResult{}, err
	}
	if err := forest.Save(config.ModelPath); err != nil {
		return TrainingResult{}, err
	}

	return TrainingResult{
		MAE:        mae,
		R2:         r2,
		DataPoints: len(features),
		ModelPath:  config.ModelPath,
	}, nil
}

func evaluateModel(forest *ml.RegressionForest, testX [][]float64, testY []float64) (mae, r2 float64) {
	if len(testX) == 0 {
		return 0, 0
	}

	meanActual := 0.0
	for _, y := range testY {
		meanActual += y
	}
	meanActual /= float64(len(testY))

	var absErr, ssRes, ssTot float64
	count := 0
	for i, features := range testX {
		predicted, err := forest.Predict(features)
		if err != nil {
			continue
		}
		diff := predicted - testY[i]
		absErr += math.Abs(diff)
		ssRes += diff * diff
		ssTot += (testY[i] - meanActual) * (testY[i] - meanActual)
		count++
	}
	if count == 0 {
		return 0, 0
	}

	mae = absErr / float64(count)
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}
	return mae, r2
}
