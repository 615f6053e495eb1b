package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"rumahcerdas/db"
	"rumahcerdas/ml"
	"rumahcerdas/monitoring"
	"rumahcerdas/pricing"
	"rumahcerdas/property"
)

// PriceEstimator is the prediction core as the web layer sees it.
type PriceEstimator interface {
	Estimate(attrs property.Attributes) (pricing.Result, error)
}

var (
	estimator      PriceEstimator
	savePrediction = db.SavePrediction
)

func SetEstimator(e PriceEstimator) {
	estimator = e
}

func RegisterPredictHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/predict", handlePredict)
}

type predictResponse struct {
	Success    bool               `json:"success"`
	Prediction *pricing.Result    `json:"prediction,omitempty"`
	Similar    []property.Listing `json:"similar_properties,omitempty"`
	Error      string             `json:"error,omitempty"`
}

func handlePredict(w http.ResponseWriter, r *http.Request) {
	if estimator == nil {
		writeJSON(w, http.StatusServiceUnavailable, predictResponse{Success: false, Error: "prediction service not available"})
		return
	}

	var attrs property.Attributes
	if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil {
		writeJSON(w, http.StatusBadRequest, predictResponse{Success: false, Error: "invalid request body"})
		return
	}
	attrs.RoadType = property.ParseRoadType(string(attrs.RoadType))
	attrs.Condition = property.ParseCondition(string(attrs.Condition))
	attrs.Certificate = property.ParseCertificate(string(attrs.Certificate))
	attrs.Zone = property.ParseZone(string(attrs.Zone))

	result, err := estimator.Estimate(attrs)
	if errors.Is(err, ml.ErrInvalidInput) {
		counters.RecordInvalidInput()
		writeJSON(w, http.StatusBadRequest, predictResponse{Success: false, Error: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, predictResponse{Success: false, Error: "prediction failed"})
		logger.Error("estimate failed", zap.Error(err))
		return
	}

	counters.RecordPrediction(result.Confidence == pricing.ConfidenceFallback, result.Clamped)
	if hub != nil {
		hub.Broadcast(monitoring.EventPrediction, result)
	}
	if err := savePrediction(attrs, result); err != nil {
		logger.Warn("prediction log write failed", zap.Error(err))
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	writeJSON(w, http.StatusOK, predictResponse{
		Success:    true,
		Prediction: &result,
		Similar:    similarByPrice(result.Price, "", 6),
	})
}
