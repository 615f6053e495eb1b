package pricing

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"rumahcerdas/ml"
	"rumahcerdas/property"
)

type fakeModel struct {
	price float64
	err   error
}

func (f *fakeModel) Predict(features []float64) (float64, error) {
	return f.price, f.err
}

func newTestTableStore(t *testing.T) *TableStore {
	t.Helper()
	store, err := NewTableStore(filepath.Join(t.TempDir(), "base_prices.json"), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestEstimator(t *testing.T, model ml.PriceModel) *Estimator {
	t.Helper()
	return NewEstimator(model, newTestTableStore(t), DefaultBounds(), ml.DefaultEncoderLimits(), zap.NewNop())
}

func exampleAttributes() property.Attributes {
	return property.Attributes{
		LandArea:     120,
		BuildingArea: 90,
		Bedrooms:     3,
		Bathrooms:    2,
		YearBuilt:    2022,
		Condition:    property.ConditionGood,
		Certificate:  property.CertificateSHM,
		Zone:         property.ZoneCityCenter,
	}
}

func TestEstimateWithModel(t *testing.T) {
	estimator := newTestEstimator(t, &fakeModel{price: 650000000})

	result, err := estimator.Estimate(exampleAttributes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Confidence != ConfidenceModel {
		t.Fatalf("expected model confidence, got %s", result.Confidence)
	}
	if result.Price != 650000000 {
		t.Fatalf("unexpected price: %f", result.Price)
	}
	if result.Clamped {
		t.Fatal("in-bounds estimate should not be clamped")
	}
	if result.MinPrice >= result.Price || result.MaxPrice <= result.Price {
		t.Fatalf("range does not bracket estimate: [%f, %f] around %f", result.MinPrice, result.MaxPrice, result.Price)
	}
	if result.Formatted == "" {
		t.Fatal("expected formatted price")
	}
}

func TestEstimateClampsAbsurdModelOutput(t *testing.T) {
	bounds := DefaultBounds()

	estimator := newTestEstimator(t, &fakeModel{price: bounds.MaxPlausible * 1000})
	result, err := estimator.Estimate(exampleAttributes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Confidence != ConfidenceModel {
		t.Fatalf("clamping keeps model confidence, got %s", result.Confidence)
	}
	if result.Price != bounds.MaxPlausible {
		t.Fatalf("expected clamp to %f, got %f", bounds.MaxPlausible, result.Price)
	}
	if !result.Clamped || !strings.Contains(result.Basis, "clamped") {
		t.Fatalf("expected clamp noted in basis, got %q", result.Basis)
	}

	estimator = newTestEstimator(t, &fakeModel{price: -5})
	result, err = estimator.Estimate(exampleAttributes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Price != bounds.MinPlausible {
		t.Fatalf("expected negative output clamped to %f, got %f", bounds.MinPlausible, result.Price)
	}
}

func TestEstimateFallbackWhenModelUnavailable(t *testing.T) {
	estimator := newTestEstimator(t, nil)

	attrs := exampleAttributes()
	result, err := estimator.Estimate(attrs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Confidence != ConfidenceFallback {
		t.Fatalf("expected fallback confidence, got %s", result.Confidence)
	}
	if result.Price <= 0 {
		t.Fatalf("expected finite positive fallback estimate, got %f", result.Price)
	}

	// The fallback path is the base-price table, reproducibly.
	want := DefaultBasePrices().Estimate(attrs)
	if result.Price != want {
		t.Fatalf("expected table estimate %f, got %f", want, result.Price)
	}
	if estimator.ModelAvailable() {
		t.Fatal("expected ModelAvailable to report false")
	}
}

func TestEstimateFallbackOnModelError(t *testing.T) {
	estimator := newTestEstimator(t, &fakeModel{err: ml.ErrEncodingMismatch})

	result, err := estimator.Estimate(exampleAttributes())
	if err != nil {
		t.Fatalf("model trouble must not surface to the caller: %v", err)
	}
	if result.Confidence != ConfidenceFallback {
		t.Fatalf("expected fallback confidence, got %s", result.Confidence)
	}
	if result.Price <= 0 {
		t.Fatalf("expected positive fallback estimate, got %f", result.Price)
	}
}

func TestEstimateRejectsInvalidInput(t *testing.T) {
	estimator := newTestEstimator(t, &fakeModel{price: 500000000})

	attrs := exampleAttributes()
	attrs.LandArea = 0
	if _, err := estimator.Estimate(attrs); !errors.Is(err, ml.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	attrs.LandArea = -40
	if _, err := estimator.Estimate(attrs); !errors.Is(err, ml.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEstimateCachesModelResults(t *testing.T) {
	model := &fakeModel{price: 700000000}
	estimator := newTestEstimator(t, model)

	first, err := estimator.Estimate(exampleAttributes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Identical attributes hit the cache, not the (changed) model.
	model.price = 100
	second, err := estimator.Estimate(exampleAttributes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Price != first.Price {
		t.Fatalf("expected cached result %f, got %f", first.Price, second.Price)
	}
}

func TestFormatRupiah(t *testing.T) {
	formatted := FormatRupiah(1250000000)
	if !strings.HasPrefix(formatted, "Rp ") {
		t.Fatalf("expected rupiah prefix, got %q", formatted)
	}
	if !strings.Contains(formatted, "1.250.000.000") {
		t.Fatalf("expected indonesian digit grouping, got %q", formatted)
	}
}
