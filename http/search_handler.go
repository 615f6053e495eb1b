package http

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"rumahcerdas/monitoring"
	"rumahcerdas/search"
)

// PropertySearcher answers natural-language catalogue queries.
type PropertySearcher interface {
	Search(ctx context.Context, query string) (search.Response, error)
}

var searcher PropertySearcher

func SetSearcher(s PropertySearcher) {
	searcher = s
}

func RegisterSearchHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/search", handleSearch)
}

func handleSearch(w http.ResponseWriter, r *http.Request) {
	if searcher == nil {
		writeError(w, http.StatusServiceUnavailable, "search not available")
		return
	}

	var request struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	counters.RecordSearch()
	response, err := searcher.Search(r.Context(), request.Query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "search failed")
		logger.Error("search failed", zap.String("query", request.Query), zap.Error(err))
		return
	}
	if hub != nil {
		hub.Broadcast(monitoring.EventSearch, map[string]interface{}{
			"query":   request.Query,
			"matches": len(response.Listings),
		})
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	writeJSON(w, http.StatusOK, response)
}
