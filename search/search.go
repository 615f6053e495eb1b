// Package search answers natural-language property queries: an LLM (or
// the regex extractor when no LLM is configured) turns the query into
// structured criteria, filtering itself stays deterministic over
// catalogue rows.
package search

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"rumahcerdas/llm"
	"rumahcerdas/property"
)

const maxResults = 6

// budget matches within ±20%, same tolerance the listing site always used
const budgetTolerance = 0.2

// CriteriaExtractor is implemented by llm.GeminiExtractor.
type CriteriaExtractor interface {
	ExtractCriteria(ctx context.Context, query string) (*llm.SearchCriteria, error)
}

// ListingSource supplies candidate listings, typically db.QueryListings.
type ListingSource func() ([]property.Listing, error)

type Response struct {
	Listings    []property.Listing `json:"properties"`
	Explanation string             `json:"explanation"`
	AIPowered   bool               `json:"ai_powered"`
}

type Service struct {
	extractor CriteriaExtractor
	listings  ListingSource
	logger    *zap.Logger
}

// NewService builds the search service. extractor may be nil; the regex
// extractor then handles every query.
func NewService(extractor CriteriaExtractor, listings ListingSource, logger *zap.Logger) *Service {
	return &Service{extractor: extractor, listings: listings, logger: logger}
}

// Search never fails a request over LLM trouble: it degrades to regex
// criteria, then to the latest listings.
func (s *Service) Search(ctx context.Context, query string) (Response, error) {
	available, err := s.availableListings()
	if err != nil {
		return Response{}, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return Response{
			Listings:    limit(available, maxResults),
			Explanation: "Menampilkan beberapa properti terbaru.",
		}, nil
	}
	if len(available) == 0 {
		return Response{
			Listings:    []property.Listing{},
			Explanation: "Tidak ada properti yang tersedia saat ini.",
		}, nil
	}

	criteria, aiPowered := s.extract(ctx, query)
	matched := FilterListings(available, criteria)
	if len(matched) == 0 {
		return Response{
			Listings:    []property.Listing{},
			Explanation: "Tidak ada properti yang sesuai dengan kriteria Anda. Coba ubah kriteria pencarian.",
			AIPowered:   aiPowered,
		}, nil
	}
	return Response{
		Listings:    limit(matched, maxResults),
		Explanation: explain(criteria, len(matched)),
		AIPowered:   aiPowered,
	}, nil
}

func (s *Service) extract(ctx context.Context, query string) (llm.SearchCriteria, bool) {
	if s.extractor != nil {
		criteria, err := s.extractor.ExtractCriteria(ctx, query)
		if err == nil {
			return *criteria, true
		}
		s.logger.Warn("llm criteria extraction failed, using pattern extractor", zap.Error(err))
	}
	return ExtractCriteria(query), false
}

func (s *Service) availableListings() ([]property.Listing, error) {
	listings, err := s.listings()
	if err != nil {
		return nil, err
	}
	available := make([]property.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Available() {
			available = append(available, l)
		}
	}
	return available, nil
}

// FilterListings applies criteria deterministically. Budget-constrained
// results are sorted by distance to the budget.
func FilterListings(listings []property.Listing, criteria llm.SearchCriteria) []property.Listing {
	matched := make([]property.Listing, 0, len(listings))
	for _, l := range listings {
		if criteria.Budget > 0 {
			if l.Price < criteria.Budget*(1-budgetTolerance) || l.Price > criteria.Budget*(1+budgetTolerance) {
				continue
			}
		}
		if criteria.Bedrooms > 0 && l.Bedrooms < criteria.Bedrooms {
			continue
		}
		if criteria.Bathrooms > 0 && l.Bathrooms < criteria.Bathrooms {
			continue
		}
		if criteria.MinLandArea > 0 && l.LandArea < criteria.MinLandArea {
			continue
		}
		if criteria.SubDistrict != "" && !strings.EqualFold(strings.TrimSpace(l.SubDistrict), strings.TrimSpace(criteria.SubDistrict)) {
			continue
		}
		if criteria.Condition != "" && l.Condition != property.ParseCondition(criteria.Condition) {
			continue
		}
		matched = append(matched, l)
	}
	if criteria.Budget > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			return math.Abs(matched[i].Price-criteria.Budget) < math.Abs(matched[j].Price-criteria.Budget)
		})
	}
	return matched
}

func explain(criteria llm.SearchCriteria, count int) string {
	parts := make([]string, 0, 4)
	if criteria.Budget > 0 {
		parts = append(parts, "sesuai budget Anda")
	}
	if criteria.Bedrooms > 0 {
		parts = append(parts, "dengan jumlah kamar tidur yang diminta")
	}
	if criteria.SubDistrict != "" {
		parts = append(parts, "di "+criteria.SubDistrict)
	}
	if len(parts) == 0 {
		return "Menampilkan properti yang paling sesuai dengan pencarian Anda."
	}
	return "Ditemukan " + strconv.Itoa(count) + " properti " + strings.Join(parts, ", ") + "."
}

func limit(listings []property.Listing, n int) []property.Listing {
	if len(listings) <= n {
		return listings
	}
	return listings[:n]
}
