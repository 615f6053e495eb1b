package search

import (
	"regexp"
	"strconv"
	"strings"

	"rumahcerdas/llm"
)

var (
	budgetMillionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*juta`),
		regexp.MustCompile(`budget\s*(\d+)`),
		regexp.MustCompile(`harga\s*(\d+)`),
		regexp.MustCompile(`(\d+)\s*m\b`),
	}
	budgetBillionPattern = regexp.MustCompile(`(\d+)\s*milyar`)

	bedroomPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*kamar\s*tidur`),
		regexp.MustCompile(`(\d+)\s*kt\b`),
		regexp.MustCompile(`kt\s*(\d+)`),
		regexp.MustCompile(`kamar\s*tidur\s*(\d+)`),
		regexp.MustCompile(`(\d+)\s*kamar(?:\s|$)`),
	}
	bathroomPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*kamar\s*mandi`),
		regexp.MustCompile(`(\d+)\s*km\b`),
		regexp.MustCompile(`km\s*(\d+)`),
		regexp.MustCompile(`kamar\s*mandi\s*(\d+)`),
		regexp.MustCompile(`(\d+)\s*wc\b`),
	}
	landAreaPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*m2?\s*tanah`),
		regexp.MustCompile(`tanah\s*(\d+)\s*m2?`),
		regexp.MustCompile(`luas\s*tanah\s*(\d+)`),
	}

	fillerPattern = regexp.MustCompile(`\b(ada\s*ga|ada\s*tidak|ada\s*ngga|ada\s*enggak|kalau|kalo|gimana|bagaimana|berapa)\b`)
)

var knownSubDistricts = []string{
	"prabumulih selatan",
	"prabumulih timur",
	"prabumulih barat",
	"prabumulih utara",
	"cambai",
	"rambang kapak tengah",
}

// ExtractCriteria parses an Indonesian property query with fixed
// patterns. Deterministic stand-in for the LLM extractor.
func ExtractCriteria(query string) llm.SearchCriteria {
	normalized := strings.ToLower(strings.TrimSpace(query))
	normalized = fillerPattern.ReplaceAllString(normalized, " ")

	var criteria llm.SearchCriteria

	// Bathrooms first: "2 kamar mandi" also matches the loose bedroom
	// patterns, so the matched span is removed before bedrooms run.
	if value, rest, ok := matchFirst(bathroomPatterns, normalized); ok {
		criteria.Bathrooms = int(value)
		normalized = rest
	}
	if value, rest, ok := matchFirst(bedroomPatterns, normalized); ok {
		criteria.Bedrooms = int(value)
		normalized = rest
	}
	if value, rest, ok := matchFirst(landAreaPatterns, normalized); ok {
		criteria.MinLandArea = value
		normalized = rest
	}
	if value, rest, ok := matchFirst([]*regexp.Regexp{budgetBillionPattern}, normalized); ok {
		criteria.Budget = value * 1000000000
		normalized = rest
	} else if value, rest, ok := matchFirst(budgetMillionPatterns, normalized); ok {
		criteria.Budget = value * 1000000
		normalized = rest
	}

	for _, district := range knownSubDistricts {
		if strings.Contains(normalized, district) {
			criteria.SubDistrict = district
			break
		}
	}

	switch {
	case strings.Contains(normalized, "butuh renovasi"):
		criteria.Condition = "butuh_renovasi"
	case strings.Contains(normalized, "renovasi ringan"):
		criteria.Condition = "renovasi_ringan"
	case strings.Contains(normalized, "baru"):
		criteria.Condition = "baru"
	case strings.Contains(normalized, "baik"):
		criteria.Condition = "baik"
	}

	return criteria
}

func matchFirst(patterns []*regexp.Regexp, query string) (value float64, rest string, ok bool) {
	for _, pattern := range patterns {
		loc := pattern.FindStringSubmatchIndex(query)
		if loc == nil {
			continue
		}
		number := query[loc[2]:loc[3]]
		parsed, err := strconv.ParseFloat(number, 64)
		if err != nil {
			continue
		}
		return parsed, query[:loc[0]] + " " + query[loc[1]:], true
	}
	return 0, query, false
}
