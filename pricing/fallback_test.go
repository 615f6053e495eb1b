package pricing

import (
	"testing"

	"rumahcerdas/property"
)

func fallbackAttributes() property.Attributes {
	return property.Attributes{
		LandArea:     120,
		BuildingArea: 90,
		Bedrooms:     3,
		Bathrooms:    2,
		YearBuilt:    2022,
		Floors:       1,
		RoadType:     property.RoadMedium,
		Condition:    property.ConditionGood,
		Certificate:  property.CertificateSHM,
		Zone:         property.ZoneRambutan,
	}
}

func TestFallbackEstimateDeterministic(t *testing.T) {
	table := DefaultBasePrices()
	attrs := fallbackAttributes()

	first := table.Estimate(attrs)
	second := table.Estimate(attrs)
	if first != second {
		t.Fatalf("expected deterministic estimate, got %f and %f", first, second)
	}
	if first <= 0 {
		t.Fatalf("expected positive estimate, got %f", first)
	}
}

func TestFallbackEstimateMonotonicInLandArea(t *testing.T) {
	table := DefaultBasePrices()
	attrs := fallbackAttributes()

	previous := 0.0
	for _, area := range []float64{60, 90, 120, 200, 400, 1000} {
		attrs.LandArea = area
		estimate := table.Estimate(attrs)
		if estimate < previous {
			t.Fatalf("estimate decreased when land area grew to %f: %f < %f", area, estimate, previous)
		}
		previous = estimate
	}
}

func TestFallbackEstimateKnownValue(t *testing.T) {
	table := DefaultBasePrices()
	attrs := fallbackAttributes()

	// 120*500k + 90*2M + 3*50M + 2*25M + 1*10M = 450M; age <= 5 years,
	// good condition, medium road and Rambutan zone are all 1.0, SHM 1.1.
	want := 450000000.0 * 1.1
	got := table.Estimate(attrs)
	if got != want {
		t.Fatalf("expected %f, got %f", want, got)
	}
}

func TestFallbackZoneOrdering(t *testing.T) {
	table := DefaultBasePrices()
	attrs := fallbackAttributes()

	attrs.Zone = property.ZoneCityCenter
	center := table.Estimate(attrs)
	attrs.Zone = property.ZoneCambai
	edge := table.Estimate(attrs)
	if center <= edge {
		t.Fatalf("expected city center to price above cambai: %f <= %f", center, edge)
	}

	attrs.Zone = property.ZoneUnknown
	unknown := table.Estimate(attrs)
	attrs.Zone = property.ZoneRambutan
	neutral := table.Estimate(attrs)
	if unknown != neutral {
		t.Fatalf("expected unknown zone to use the neutral multiplier: %f != %f", unknown, neutral)
	}
}

func TestFallbackAgeMultiplierTiers(t *testing.T) {
	table := DefaultBasePrices()
	attrs := fallbackAttributes()

	attrs.YearBuilt = 2024
	newer := table.Estimate(attrs)
	attrs.YearBuilt = 1995
	older := table.Estimate(attrs)
	if older >= newer {
		t.Fatalf("expected older building to price lower: %f >= %f", older, newer)
	}
	if older != newer*0.8 {
		t.Fatalf("expected 30-year-old building at 80%% of new value, got %f vs %f", older, newer)
	}
}
