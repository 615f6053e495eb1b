package ml

// PriceModel is the narrow capability the prediction service depends on.
// Implementations must be safe for concurrent use after construction.
type PriceModel interface {
	Predict(features []float64) (float64, error)
}
