package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"rumahcerdas/db"
	"rumahcerdas/ml"
)

func main() {
	dbPath := flag.String("db_path", "./data/rumahcerdas.db", "listing catalogue path")
	modelPath := flag.String("model_path", "./models/price_forest.json", "model output path")
	trees := flag.Int("trees", 25, "number of trees")
	maxDepth := flag.Int("max_depth", 8, "max tree depth")
	minLeaf := flag.Int("min_leaf", 2, "min samples per leaf")
	testRatio := flag.Float64("test_ratio", 0.2, "held-out ratio")
	seed := flag.Int64("seed", 42, "bootstrap seed")
	flag.Parse()

	if err := db.InitDB(*dbPath); err != nil {
		log.Fatalf("failed to open catalogue: %v", err)
	}

	listings, err := db.QueryListings(db.ListingFilter{})
	if err != nil {
		log.Fatalf("failed to load listings: %v", err)
	}

	features, prices, err := ml.BuildTrainingSet(listings, ml.DefaultEncoderLimits())
	if err != nil {
		log.Fatalf("failed to build training data: %v", err)
	}

	trainX, trainY, testX, testY, err := ml.SplitTrainingSet(features, prices, *testRatio)
	if err != nil {
		log.Fatalf("failed to split training data: %v", err)
	}

	forest := &ml.RegressionForest{}
	config := ml.ForestConfig{Trees: *trees, MaxDepth: *maxDepth, MinLeaf: *minLeaf, Seed: *seed}
	if err := forest.Train(trainX, trainY, config); err != nil {
		log.Fatalf("failed to train model: %v", err)
	}

	mae, r2 := evaluate(forest, testX, testY)
	log.Printf("trained on %d listings: mae=%.0f r2=%.3f", len(trainX), mae, r2)

	if err := os.MkdirAll(filepath.Dir(*modelPath), 0o755); err != nil {
		log.Fatalf("failed to create model dir: %v", err)
	}
	if err := forest.Save(*modelPath); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}

	if err := db.SaveTrainingLog(db.TrainingLog{
		ModelPath:  *modelPath,
		MAE:        mae,
		R2:         r2,
		DataPoints: len(features),
		TrainedAt:  time.Now().UTC(),
	}); err != nil {
		log.Printf("failed to record training log: %v", err)
	}

	fmt.Printf("model saved to %s\n", *modelPath)
}

func evaluate(forest *ml.RegressionForest, testX [][]float64, testY []float64) (mae, r2 float64) {
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
		if diff < 0 {
			absErr -= diff
		} else {
			absErr += diff
		}
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
