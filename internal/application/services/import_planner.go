package services

import (
	"fmt"
	"strings"
)

// categoryPhrases maps a requested business category to the natural-language
// phrases searched for it. Unrecognized categories fall back to a generic
// phrase.
var categoryPhrases = map[string][]string{
	"exhibition_stand_builder": {"exhibition stand builder", "trade show booth builder", "exhibition contractor"},
	"booth_builder":            {"booth builder", "trade show display", "exhibition booth"},
	"event_planning_service":   {"event planner", "event planning service", "corporate event planner"},
	"corporate_event_planner":  {"corporate event planner", "business event planner"},
	"wedding_planner":          {"wedding planner", "wedding coordinator"},
	"display_designer":         {"display designer", "exhibition designer"},
	"trade_show_contractor":    {"trade show contractor", "exhibition contractor"},
	"expo_services":            {"expo services", "exhibition services"},
	"exhibition_contractor":    {"exhibition contractor", "exhibition builder"},
	"event_production":         {"event production", "event management"},
	"marketing_agency":         {"marketing agency", "advertising agency"},
	"av_rental":                {"av rental", "audio visual rental"},
}

var fallbackPhrases = []string{"exhibition services"}

var categoryLabels = map[string]string{
	"exhibition_stand_builder": "Exhibition Stand Builder",
	"booth_builder":            "Booth Builder",
	"event_planning_service":   "Event Planning Service",
	"corporate_event_planner":  "Corporate Event Planner",
	"wedding_planner":          "Wedding Planner",
	"display_designer":         "Display Designer",
	"trade_show_contractor":    "Trade Show Contractor",
	"expo_services":            "Expo Services",
	"exhibition_contractor":    "Exhibition Contractor",
	"event_production":         "Event Production",
	"marketing_agency":         "Marketing Agency",
	"av_rental":                "AV Equipment Rental",
}

const fallbackCategoryLabel = "Exhibition Services"

// PhrasesForCategory returns the search phrases for a business category.
func PhrasesForCategory(category string) []string {
	if phrases, ok := categoryPhrases[category]; ok {
		return phrases
	}
	return fallbackPhrases
}

// CategoryLabel returns the human-readable label for a business category.
func CategoryLabel(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return fallbackCategoryLabel
}

// SearchQuery is one text-search request, created by the planner and
// consumed once by the fetch loop.
type SearchQuery struct {
	Phrase  string
	City    string
	Country string
}

// Text renders the free-text query sent to the search API.
func (q SearchQuery) Text() string {
	return fmt.Sprintf("%s in %s, %s", q.Phrase, q.City, q.Country)
}

// RunProgress exposes the live counters the planner consults before emitting
// each query.
type RunProgress interface {
	// CityResultCount is the number of results collected so far for a city.
	CityResultCount(city string) int
	// TotalResultCount is the number of results collected so far in the run.
	TotalResultCount() int
	// BudgetRemaining is the number of external calls still available.
	BudgetRemaining() int
}

// QueryPlanner expands a (category, country, cities) request into an ordered
// sequence of search queries, city-major then phrase-minor, so the call
// budget is spent on breadth across cities before depth within one city's
// phrase variants.
type QueryPlanner struct {
	phrases       []string
	cities        []string
	country       string
	maxResults    int
	perCityTarget int
}

// NewQueryPlanner creates a planner for one import run.
func NewQueryPlanner(category, country string, cities []string, maxResults int) *QueryPlanner {
	perCity := 0
	if len(cities) > 0 && maxResults > 0 {
		perCity = (maxResults + len(cities) - 1) / len(cities)
	}
	return &QueryPlanner{
		phrases:       PhrasesForCategory(category),
		cities:        cities,
		country:       country,
		maxResults:    maxResults,
		perCityTarget: perCity,
	}
}

// PerCityTarget returns the result target for each city.
func (p *QueryPlanner) PerCityTarget() int {
	return p.perCityTarget
}

// Iterate returns a fresh iterator over the planned query sequence. The
// sequence is lazy and finite; calling Iterate again restarts it.
func (p *QueryPlanner) Iterate() *QueryIterator {
	return &QueryIterator{planner: p}
}

// QueryIterator walks the planned query sequence, applying the stopping
// policy before each emission.
type QueryIterator struct {
	planner   *QueryPlanner
	cityIdx   int
	phraseIdx int
}

// Next emits the next query, or false when iteration is done. Before each
// emission it skips to the next city once the current city's result count
// reaches the per-city target, and stops entirely once the run total reaches
// the desired maximum or the budget is exhausted.
func (it *QueryIterator) Next(progress RunProgress) (SearchQuery, bool) {
	p := it.planner

	for it.cityIdx < len(p.cities) {
		if progress.TotalResultCount() >= p.maxResults || progress.BudgetRemaining() <= 0 {
			it.cityIdx = len(p.cities)
			return SearchQuery{}, false
		}

		city := p.cities[it.cityIdx]
		if it.phraseIdx >= len(p.phrases) || progress.CityResultCount(city) >= p.perCityTarget {
			it.cityIdx++
			it.phraseIdx = 0
			continue
		}

		query := SearchQuery{
			Phrase:  p.phrases[it.phraseIdx],
			City:    city,
			Country: p.country,
		}
		it.phraseIdx++
		return query, true
	}

	return SearchQuery{}, false
}

// normalizeCategory trims the requested category to its canonical key form.
func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
