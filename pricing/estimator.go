package pricing

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"rumahcerdas/ml"
	"rumahcerdas/property"
)

// Confidence tags which path produced an estimate.
type Confidence string

const (
	ConfidenceModel    Confidence = "model"
	ConfidenceFallback Confidence = "fallback"
)

// Result is the outcome of a single prediction request.
type Result struct {
	Price      float64    `json:"predicted_price"`
	MinPrice   float64    `json:"min_price"`
	MaxPrice   float64    `json:"max_price"`
	Confidence Confidence `json:"confidence"`
	Basis      string     `json:"basis"`
	Clamped    bool       `json:"clamped,omitempty"`
	Formatted  string     `json:"formatted"`
}

// Bounds are the absolute plausibility limits for any estimate.
type Bounds struct {
	MinPlausible float64
	MaxPlausible float64
}

func DefaultBounds() Bounds {
	return Bounds{MinPlausible: 50000000, MaxPlausible: 20000000000}
}

const (
	rangeVariation = 0.2
	cacheSize      = 256
)

// Estimator orchestrates encoder, model and fallback table. The model
// handle is injected at construction and never swapped; a nil model
// means the process runs permanently on the fallback path.
type Estimator struct {
	model  ml.PriceModel
	tables *TableStore
	bounds Bounds
	limits ml.EncoderLimits
	logger *zap.Logger
	cache  *lru.Cache[string, Result]
}

func NewEstimator(model ml.PriceModel, tables *TableStore, bounds Bounds, limits ml.EncoderLimits, logger *zap.Logger) *Estimator {
	cache, _ := lru.New[string, Result](cacheSize)
	return &Estimator{
		model:  model,
		tables: tables,
		bounds: bounds,
		limits: limits,
		logger: logger,
		cache:  cache,
	}
}

// Estimate returns a price estimate for the given attributes. Invalid
// input is the caller's error and propagates; model trouble never does,
// it degrades to the fallback table.
func (e *Estimator) Estimate(attrs property.Attributes) (Result, error) {
	vector, err := ml.EncodeFeatures(attrs, e.limits)
	if err != nil {
		return Result{}, err
	}

	if e.model == nil {
		return e.fallbackResult(attrs, "model unavailable"), nil
	}

	key := cacheKey(vector)
	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}

	raw, err := e.model.Predict(vector)
	if err != nil {
		e.logger.Warn("model predict failed, using base-price fallback", zap.Error(err))
		return e.fallbackResult(attrs, "model error"), nil
	}

	price, clamped := clampPrice(raw, e.bounds)
	basis := "regression model estimate"
	if clamped {
		basis = fmt.Sprintf("regression model estimate (raw %.0f clamped into plausible range)", raw)
	}
	result := buildResult(price, ConfidenceModel, basis, clamped)
	e.cache.Add(key, result)
	return result, nil
}

// ModelAvailable reports whether estimates are served by the trained model.
func (e *Estimator) ModelAvailable() bool {
	return e.model != nil
}

func (e *Estimator) fallbackResult(attrs property.Attributes, reason string) Result {
	raw := e.tables.Table().Estimate(attrs)
	price, clamped := clampPrice(raw, e.bounds)
	basis := fmt.Sprintf("base-price fallback (%s)", reason)
	return buildResult(price, ConfidenceFallback, basis, clamped)
}

func buildResult(price float64, confidence Confidence, basis string, clamped bool) Result {
	minPrice := price * (1 - rangeVariation)
	if minPrice < 0 {
		minPrice = 0
	}
	return Result{
		Price:      price,
		MinPrice:   minPrice,
		MaxPrice:   price * (1 + rangeVariation),
		Confidence: confidence,
		Basis:      basis,
		Clamped:    clamped,
		Formatted:  FormatRupiah(price),
	}
}

func clampPrice(raw float64, bounds Bounds) (float64, bool) {
	if bounds.MinPlausible > 0 && raw < bounds.MinPlausible {
		return bounds.MinPlausible, true
	}
	if bounds.MaxPlausible > 0 && raw > bounds.MaxPlausible {
		return bounds.MaxPlausible, true
	}
	return raw, false
}

func cacheKey(vector []float64) string {
	var b strings.Builder
	for _, v := range vector {
		fmt.Fprintf(&b, "%.4f|", v)
	}
	return b.String()
}
