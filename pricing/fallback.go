package pricing

import (
	"rumahcerdas/property"
)

// Age multipliers are tiered against a fixed reference year so fallback
// estimates stay reproducible across runs.
const fallbackReferenceYear = 2025

// BasePriceTable drives the rule-based estimate used when the trained
// model cannot be used. Admin-editable, persisted as JSON.
type BasePriceTable struct {
	LandRate     float64 `json:"base_price_per_sqm_land"`
	BuildingRate float64 `json:"base_price_per_sqm_building"`
	RoomBonus    float64 `json:"room_multiplier"`
	BathBonus    float64 `json:"bathroom_multiplier"`
	FloorBonus   float64 `json:"floor_multiplier"`
	CarportBonus float64 `json:"carport_multiplier"`

	ConditionMultipliers   map[property.Condition]float64   `json:"condition_multipliers"`
	RoadMultipliers        map[property.RoadType]float64    `json:"road_multipliers"`
	CertificateMultipliers map[property.Certificate]float64 `json:"certificate_multipliers"`
	ZoneMultipliers        map[property.Zone]float64        `json:"zone_multipliers"`
}

// DefaultBasePrices returns the stock Prabumulih price configuration,
// amounts in rupiah.
func DefaultBasePrices() BasePriceTable {
	return BasePriceTable{
		LandRate:     500000,
		BuildingRate: 2000000,
		RoomBonus:    50000000,
		BathBonus:    25000000,
		FloorBonus:   10000000,
		CarportBonus: 15000000,
		ConditionMultipliers: map[property.Condition]float64{
			property.ConditionNew:             1.3,
			property.ConditionGood:            1.0,
			property.ConditionLightRenovation: 0.8,
			property.ConditionNeedsRenovation: 0.6,
		},
		RoadMultipliers: map[property.RoadType]float64{
			property.RoadMain:   1.2,
			property.RoadMedium: 1.0,
			property.RoadAlley:  0.8,
		},
		CertificateMultipliers: map[property.Certificate]float64{
			property.CertificateSHM:   1.1,
			property.CertificateHGB:   1.0,
			property.CertificateGirik: 0.9,
		},
		ZoneMultipliers: map[property.Zone]float64{
			property.ZoneCityCenter: 1.3,
			property.ZoneKarangRaja: 1.15,
			property.ZoneGunungIbul: 1.15,
			property.ZoneRambutan:   1.0,
			property.ZoneTanjungApi: 1.0,
			property.ZoneCambai:     0.9,
		},
	}
}

// Estimate computes the rule-based price. Linear and monotonic in both
// land and building area; deterministic for a given table.
func (t BasePriceTable) Estimate(attrs property.Attributes) float64 {
	floors := attrs.Floors
	if floors == 0 {
		floors = 1
	}

	base := attrs.LandArea*t.LandRate +
		attrs.BuildingArea*t.BuildingRate +
		float64(attrs.Bedrooms)*t.RoomBonus +
		float64(attrs.Bathrooms)*t.BathBonus +
		float64(floors)*t.FloorBonus +
		float64(attrs.Carports)*t.CarportBonus

	base *= ageMultiplier(attrs.YearBuilt)
	base *= multiplierOrOne(t.ConditionMultipliers, attrs.Condition)
	base *= multiplierOrOne(t.RoadMultipliers, attrs.RoadType)
	base *= multiplierOrOne(t.CertificateMultipliers, attrs.Certificate)
	base *= multiplierOrOne(t.ZoneMultipliers, attrs.Zone)

	if base < 0 {
		return 0
	}
	return base
}

func ageMultiplier(yearBuilt int) float64 {
	if yearBuilt <= 0 {
		yearBuilt = 2020
	}
	age := fallbackReferenceYear - yearBuilt
	switch {
	case age <= 5:
		return 1.0
	case age <= 10:
		return 0.95
	case age <= 15:
		return 0.90
	case age <= 20:
		return 0.85
	default:
		return 0.80
	}
}

func multiplierOrOne[K comparable](multipliers map[K]float64, key K) float64 {
	if m, ok := multipliers[key]; ok && m > 0 {
		return m
	}
	return 1.0
}
