package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"rumahcerdas/db"
	"rumahcerdas/monitoring"
	"rumahcerdas/property"
)

// Data access indirection for handler tests.
var (
	queryListings = db.QueryListings
	getListing    = db.GetListing
)

var (
	logger   = zap.NewNop()
	counters = monitoring.NewCounters()
	hub      *monitoring.Hub
)

func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

func SetCounters(c *monitoring.Counters) {
	if c != nil {
		counters = c
	}
}

func SetDashboardHub(h *monitoring.Hub) {
	hub = h
}

func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/properties", handleListings)
	mux.HandleFunc("GET /api/properties/{id}", handleListingDetail)
	mux.HandleFunc("GET /api/metrics", handleMetrics)
	mux.HandleFunc("GET /api/ws/dashboard", handleDashboardWS)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleListings(w http.ResponseWriter, r *http.Request) {
	filter := db.ListingFilter{OnlyAvailable: true}
	if v := r.URL.Query().Get("budget_min"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = parsed
		}
	}
	if v := r.URL.Query().Get("budget_max"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = parsed
		}
	}
	filter.SubDistrict = r.URL.Query().Get("kecamatan")
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filter.Limit = parsed
		}
	}

	listings, err := queryListings(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load properties")
		logger.Error("listing query failed", zap.Error(err))
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func handleListingDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "property id is required")
		return
	}

	listing, err := getListing(id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "property not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load property")
		logger.Error("listing fetch failed", zap.String("id", id), zap.Error(err))
		return
	}

	similar := similarByPrice(listing.Price, listing.ID, 3)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"property":           listing,
		"similar_properties": similar,
		"contact_link":       listing.ContactLink(),
	})
}

func handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, counters.Snapshot())
}

func handleDashboardWS(w http.ResponseWriter, r *http.Request) {
	if hub == nil {
		writeError(w, http.StatusServiceUnavailable, "dashboard feed not available")
		return
	}
	hub.ServeHTTP(w, r)
}

// similarByPrice returns available listings priced within the given
// tolerance of target, closest first.
func similarByPrice(target float64, excludeID string, limit int) []property.Listing {
	if target <= 0 {
		return []property.Listing{}
	}
	tolerance := target * 0.3
	listings, err := queryListings(db.ListingFilter{
		MinPrice:      target - tolerance,
		MaxPrice:      target + tolerance,
		OnlyAvailable: true,
	})
	if err != nil {
		logger.Warn("similar listing query failed", zap.Error(err))
		return []property.Listing{}
	}

	filtered := make([]property.Listing, 0, len(listings))
	for _, l := range listings {
		if l.ID != excludeID {
			filtered = append(filtered, l)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return math.Abs(filtered[i].Price-target) < math.Abs(filtered[j].Price-target)
	})
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
