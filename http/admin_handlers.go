package http

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"rumahcerdas/db"
	"rumahcerdas/monitoring"
	"rumahcerdas/pricing"
	"rumahcerdas/property"
)

var (
	saveListing     = db.SaveListing
	deleteListing   = db.DeleteListing
	saveTrainingLog = db.SaveTrainingLog
	loadTrainingLog = db.LoadTrainingLog

	tableStore *pricing.TableStore
)

func SetTableStore(s *pricing.TableStore) {
	tableStore = s
}

func RegisterAdminHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/admin/properties", handleAddListing)
	mux.HandleFunc("PUT /api/admin/properties/{id}", handleUpdateListing)
	mux.HandleFunc("DELETE /api/admin/properties/{id}", handleDeleteListing)
	mux.HandleFunc("GET /api/admin/base_prices", handleGetBasePrices)
	mux.HandleFunc("PUT /api/admin/base_prices", handleUpdateBasePrices)
	mux.HandleFunc("POST /api/admin/train", handleTrain)
	mux.HandleFunc("GET /api/admin/training_log", handleTrainingLog)
}

func handleAddListing(w http.ResponseWriter, r *http.Request) {
	var listing property.Listing
	if err := json.NewDecoder(r.Body).Decode(&listing); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if listing.Title == "" {
		writeError(w, http.StatusBadRequest, "judul_properti is required")
		return
	}

	listing.ID = newListingID()
	listing.CreatedAt = time.Now().UTC()
	if listing.Status == "" {
		listing.Status = property.StatusAvailable
	}
	normalizeListing(&listing)

	if err := saveListing(listing); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save property")
		logger.Error("listing save failed", zap.Error(err))
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

func handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := getListing(id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "property not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load property")
		return
	}

	var listing property.Listing
	if err := json.NewDecoder(r.Body).Decode(&listing); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// ID and creation time survive edits.
	listing.ID = existing.ID
	listing.CreatedAt = existing.CreatedAt
	if listing.Status == "" {
		listing.Status = existing.Status
	}
	normalizeListing(&listing)

	if err := saveListing(listing); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save property")
		logger.Error("listing update failed", zap.String("id", id), zap.Error(err))
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	deleted, err := deleteListing(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete property")
		logger.Error("listing delete failed", zap.String("id", id), zap.Error(err))
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "property not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func handleGetBasePrices(w http.ResponseWriter, r *http.Request) {
	if tableStore == nil {
		writeError(w, http.StatusServiceUnavailable, "base prices not available")
		return
	}
	writeJSON(w, http.StatusOK, tableStore.Table())
}

func handleUpdateBasePrices(w http.ResponseWriter, r *http.Request) {
	if tableStore == nil {
		writeError(w, http.StatusServiceUnavailable, "base prices not available")
		return
	}
	var table pricing.BasePriceTable
	if err := json.NewDecoder(r.Body).Decode(&table); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := tableStore.Update(table); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save base prices")
		logger.Error("base price update failed", zap.Error(err))
		return
	}
	writeJSON(w, http.StatusOK, tableStore.Table())
}

// Training writes the artifact file and the training log; one run at a
// time.
var trainMu sync.Mutex

func handleTrain(w http.ResponseWriter, r *http.Request) {
	if !trainMu.TryLock() {
		writeError(w, http.StatusConflict, "training already in progress")
		return
	}
	defer trainMu.Unlock()

	result, err := trainModel(trainingConfig)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		logger.Warn("training failed", zap.Error(err))
		return
	}

	if err := saveTrainingLog(db.TrainingLog{
		ModelPath:  trainingConfig.ModelPath,
		MAE:        result.MAE,
		R2:         result.R2,
		DataPoints: result.DataPoints,
		TrainedAt:  time.Now().UTC(),
	}); err != nil {
		logger.Warn("training log write failed", zap.Error(err))
	}
	if hub != nil {
		hub.Broadcast(monitoring.EventTraining, result)
	}

	// The serving model is loaded once at startup; the new artifact is
	// picked up on the next restart.
	writeJSON(w, http.StatusOK, result)
}

func handleTrainingLog(w http.ResponseWriter, r *http.Request) {
	logs, err := loadTrainingLog()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load training log")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func normalizeListing(l *property.Listing) {
	l.RoadType = property.ParseRoadType(string(l.RoadType))
	l.Condition = property.ParseCondition(string(l.Condition))
	l.Certificate = property.ParseCertificate(string(l.Certificate))
	l.Zone = property.ParseZone(string(l.Zone))
	l.SellerPhone = property.NormalizePhone(l.SellerPhone)
}

func newListingID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:32]
	}
	return hex.EncodeToString(buf)
}
