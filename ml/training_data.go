package ml

import (
	"errors"
	"fmt"

	"rumahcerdas/property"
)

// MinTrainingListings is the smallest catalogue that yields a usable model.
const MinTrainingListings = 5

// BuildTrainingSet turns priced catalogue listings into a training matrix.
// Listings that fail encoding are skipped rather than aborting the build.
func BuildTrainingSet(listings []property.Listing, limits EncoderLimits) (features [][]float64, prices []float64, err error) {
	for _, listing := range listings {
		if listing.Price <= 0 {
			continue
		}
		vector, err := EncodeFeatures(listing.Attributes, limits)
		if err != nil {
			continue
		}
		features = append(features, vector)
		prices = append(prices, listing.Price)
	}
	if len(features) < MinTrainingListings {
		return nil, nil, fmt.Errorf("need at least %d priced listings, have %d", MinTrainingListings, len(features))
	}
	return features, prices, nil
}

// SplitTrainingSet holds out the tail of the dataset for evaluation.
func SplitTrainingSet(features [][]float64, prices []float64, testRatio float64) (trainX [][]float64, trainY []float64, testX [][]float64, testY []float64, err error) {
	if len(features) != len(prices) {
		return nil, nil, nil, nil, errors.New("features and prices size mismatch")
	}
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	split := int(float64(len(features)) * (1 - testRatio))
	if split <= 0 || split >= len(features) {
		return features, prices, nil, nil, nil
	}
	return features[:split], prices[:split], features[split:], prices[split:], nil
}
