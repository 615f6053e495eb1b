package ml

import (
	"errors"
	"fmt"

	"rumahcerdas/property"
)

// EncoderVersion identifies the feature encoding scheme. Artifacts record
// the version they were trained against.
const EncoderVersion = "v1"

// FeatureCount is the fixed vector length produced by EncoderVersion.
const FeatureCount = 13

var (
	ErrInvalidInput         = errors.New("invalid property input")
	ErrEncodingMismatch     = errors.New("feature vector incompatible with model")
	ErrIncompatibleArtifact = errors.New("model artifact schema incompatible")
)

// EncoderLimits are the sanity ceilings applied before encoding. Values
// beyond a ceiling are clamped, not rejected, to keep inputs inside the
// model's training distribution.
type EncoderLimits struct {
	MaxLandArea     float64
	MaxBuildingArea float64
	MaxDistance     float64
}

func DefaultEncoderLimits() EncoderLimits {
	return EncoderLimits{
		MaxLandArea:     10000,
		MaxBuildingArea: 5000,
		MaxDistance:     50000,
	}
}

const (
	minYearBuilt = 1900
	maxYearBuilt = 2100
)

// EncodeFeatures maps raw attributes to the fixed-length feature vector.
// Pure function of its input and the category code tables.
func EncodeFeatures(attrs property.Attributes, limits EncoderLimits) ([]float64, error) {
	if attrs.LandArea <= 0 {
		return nil, fmt.Errorf("%w: land area must be positive, got %.2f", ErrInvalidInput, attrs.LandArea)
	}
	if attrs.BuildingArea <= 0 {
		return nil, fmt.Errorf("%w: building area must be positive, got %.2f", ErrInvalidInput, attrs.BuildingArea)
	}
	if attrs.Bedrooms < 0 || attrs.Bathrooms < 0 || attrs.Carports < 0 {
		return nil, fmt.Errorf("%w: room counts must be non-negative", ErrInvalidInput)
	}
	if attrs.Floors < 0 {
		return nil, fmt.Errorf("%w: floor count must be non-negative", ErrInvalidInput)
	}
	if attrs.SchoolDistance < 0 || attrs.HospitalDistance < 0 || attrs.MarketDistance < 0 {
		return nil, fmt.Errorf("%w: distances must be non-negative", ErrInvalidInput)
	}

	floors := attrs.Floors
	if floors == 0 {
		floors = 1
	}
	year := attrs.YearBuilt
	if year == 0 {
		year = 2020
	}

	vector := []float64{
		clampCeiling(attrs.LandArea, limits.MaxLandArea),
		clampCeiling(attrs.BuildingArea, limits.MaxBuildingArea),
		float64(attrs.Bedrooms),
		float64(attrs.Bathrooms),
		float64(attrs.Carports),
		clampRange(float64(year), minYearBuilt, maxYearBuilt),
		float64(floors),
		clampCeiling(attrs.SchoolDistance, limits.MaxDistance),
		clampCeiling(attrs.HospitalDistance, limits.MaxDistance),
		clampCeiling(attrs.MarketDistance, limits.MaxDistance),
		attrs.RoadType.Code(),
		attrs.Condition.Code(),
		attrs.Certificate.Code(),
	}
	return vector, nil
}

func FeatureNames() []string {
	return []string{
		"luas_tanah",
		"luas_bangunan",
		"kamar_tidur",
		"kamar_mandi",
		"carport",
		"tahun_dibangun",
		"lantai",
		"jarak_sekolah",
		"jarak_rs",
		"jarak_pasar",
		"jenis_jalan_encoded",
		"kondisi_encoded",
		"sertifikat_encoded",
	}
}

func clampCeiling(value, ceiling float64) float64 {
	if ceiling > 0 && value > ceiling {
		return ceiling
	}
	return value
}

func clampRange(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
