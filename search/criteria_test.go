package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"rumahcerdas/llm"
	"rumahcerdas/property"
)

func TestExtractCriteriaBudget(t *testing.T) {
	cases := []struct {
		query string
		want  float64
	}{
		{"rumah 500 juta", 500000000},
		{"budget 350", 350000000},
		{"rumah 2 milyar di prabumulih timur", 2000000000},
		{"ada ga rumah harga 400", 400000000},
	}
	for _, tc := range cases {
		criteria := ExtractCriteria(tc.query)
		if criteria.Budget != tc.want {
			t.Fatalf("query %q: expected budget %f, got %f", tc.query, tc.want, criteria.Budget)
		}
	}
}

func TestExtractCriteriaRooms(t *testing.T) {
	criteria := ExtractCriteria("rumah 3 kamar tidur 2 kamar mandi")
	if criteria.Bedrooms != 3 {
		t.Fatalf("expected 3 bedrooms, got %d", criteria.Bedrooms)
	}
	if criteria.Bathrooms != 2 {
		t.Fatalf("expected 2 bathrooms, got %d", criteria.Bathrooms)
	}

	// Bathrooms must not be re-counted as bedrooms.
	criteria = ExtractCriteria("rumah 2 kamar mandi")
	if criteria.Bedrooms != 0 {
		t.Fatalf("expected no bedroom criterion, got %d", criteria.Bedrooms)
	}
	if criteria.Bathrooms != 2 {
		t.Fatalf("expected 2 bathrooms, got %d", criteria.Bathrooms)
	}
}

func TestExtractCriteriaDistrictAndCondition(t *testing.T) {
	criteria := ExtractCriteria("rumah baru di Prabumulih Timur tanah 200 m2")
	if criteria.SubDistrict != "prabumulih timur" {
		t.Fatalf("unexpected sub-district: %q", criteria.SubDistrict)
	}
	if criteria.Condition != "baru" {
		t.Fatalf("unexpected condition: %q", criteria.Condition)
	}
	if criteria.MinLandArea != 200 {
		t.Fatalf("expected land area 200, got %f", criteria.MinLandArea)
	}
}

func TestExtractCriteriaEmptyQuery(t *testing.T) {
	criteria := ExtractCriteria("rumah murah yang bagus")
	if criteria.Budget != 0 || criteria.Bedrooms != 0 || criteria.SubDistrict != "" {
		t.Fatalf("expected empty criteria, got %+v", criteria)
	}
}

func testListings() []property.Listing {
	mk := func(id string, price float64, bedrooms int, district string) property.Listing {
		l := property.Listing{
			ID:          id,
			Title:       "Rumah " + id,
			SubDistrict: district,
			Price:       price,
			Status:      property.StatusAvailable,
		}
		l.Bedrooms = bedrooms
		l.Bathrooms = 1
		l.LandArea = 150
		l.BuildingArea = 90
		return l
	}
	return []property.Listing{
		mk("a", 480000000, 3, "prabumulih timur"),
		mk("b", 510000000, 2, "prabumulih timur"),
		mk("c", 900000000, 4, "prabumulih barat"),
		mk("d", 300000000, 2, "cambai"),
	}
}

func TestFilterListingsBudget(t *testing.T) {
	matched := FilterListings(testListings(), llm.SearchCriteria{Budget: 500000000})
	if len(matched) != 2 {
		t.Fatalf("expected 2 matches within tolerance, got %d", len(matched))
	}
	// Closest to budget first.
	if matched[0].ID != "b" || matched[1].ID != "a" {
		t.Fatalf("expected order b, a; got %s, %s", matched[0].ID, matched[1].ID)
	}
}

func TestFilterListingsBedsAndDistrict(t *testing.T) {
	matched := FilterListings(testListings(), llm.SearchCriteria{Bedrooms: 3, SubDistrict: "Prabumulih Timur"})
	if len(matched) != 1 || matched[0].ID != "a" {
		t.Fatalf("expected only listing a, got %+v", matched)
	}
}

type stubExtractor struct {
	criteria *llm.SearchCriteria
	err      error
}

func (s *stubExtractor) ExtractCriteria(ctx context.Context, query string) (*llm.SearchCriteria, error) {
	return s.criteria, s.err
}

func TestSearchEmptyQueryShowsLatest(t *testing.T) {
	svc := NewService(nil, func() ([]property.Listing, error) { return testListings(), nil }, zap.NewNop())

	resp, err := svc.Search(context.Background(), "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Listings) != 4 {
		t.Fatalf("expected all listings, got %d", len(resp.Listings))
	}
	if resp.AIPowered {
		t.Fatal("empty query should not be ai powered")
	}
}

func TestSearchUsesLLMCriteria(t *testing.T) {
	extractor := &stubExtractor{criteria: &llm.SearchCriteria{Bedrooms: 4}}
	svc := NewService(extractor, func() ([]property.Listing, error) { return testListings(), nil }, zap.NewNop())

	resp, err := svc.Search(context.Background(), "rumah besar untuk keluarga")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.AIPowered {
		t.Fatal("expected ai powered response")
	}
	if len(resp.Listings) != 1 || resp.Listings[0].ID != "c" {
		t.Fatalf("expected only listing c, got %+v", resp.Listings)
	}
}

func TestSearchFallsBackToPatternExtractor(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("quota exceeded")}
	svc := NewService(extractor, func() ([]property.Listing, error) { return testListings(), nil }, zap.NewNop())

	resp, err := svc.Search(context.Background(), "rumah 500 juta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.AIPowered {
		t.Fatal("degraded search must not claim ai")
	}
	if len(resp.Listings) != 2 {
		t.Fatalf("expected 2 budget matches, got %d", len(resp.Listings))
	}
}

func TestSearchNoMatches(t *testing.T) {
	svc := NewService(nil, func() ([]property.Listing, error) { return testListings(), nil }, zap.NewNop())

	resp, err := svc.Search(context.Background(), "rumah 10 milyar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Listings) != 0 {
		t.Fatalf("expected no matches, got %d", len(resp.Listings))
	}
	if resp.Explanation == "" {
		t.Fatal("expected an explanation for empty results")
	}
}
