package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProgress is a RunProgress with directly settable counters.
type stubProgress struct {
	cityCounts map[string]int
	total      int
	budget     int
}

func newStubProgress(budget int) *stubProgress {
	return &stubProgress{cityCounts: map[string]int{}, budget: budget}
}

func (p *stubProgress) CityResultCount(city string) int { return p.cityCounts[city] }
func (p *stubProgress) TotalResultCount() int           { return p.total }
func (p *stubProgress) BudgetRemaining() int            { return p.budget }

func drain(it *QueryIterator, progress RunProgress) []SearchQuery {
	var queries []SearchQuery
	for {
		query, ok := it.Next(progress)
		if !ok {
			return queries
		}
		queries = append(queries, query)
	}
}

func TestQueryPlanner_CityMajorOrder(t *testing.T) {
	planner := NewQueryPlanner("wedding_planner", "Germany", []string{"Berlin", "Munich"}, 50)
	progress := newStubProgress(100)

	queries := drain(planner.Iterate(), progress)

	require.Len(t, queries, 4)
	assert.Equal(t, "wedding planner in Berlin, Germany", queries[0].Text())
	assert.Equal(t, "wedding coordinator in Berlin, Germany", queries[1].Text())
	assert.Equal(t, "wedding planner in Munich, Germany", queries[2].Text())
	assert.Equal(t, "wedding coordinator in Munich, Germany", queries[3].Text())
}

func TestQueryPlanner_UnknownCategoryFallsBack(t *testing.T) {
	planner := NewQueryPlanner("underwater_basket_weaving", "France", []string{"Paris"}, 10)
	progress := newStubProgress(100)

	queries := drain(planner.Iterate(), progress)

	require.Len(t, queries, 1)
	assert.Equal(t, "exhibition services in Paris, France", queries[0].Text())
}

func TestQueryPlanner_PerCityTarget(t *testing.T) {
	planner := NewQueryPlanner("booth_builder", "Germany", []string{"Berlin", "Munich", "Hamburg"}, 10)

	// ceil(10/3)
	assert.Equal(t, 4, planner.PerCityTarget())
}

func TestQueryPlanner_SkipsCityAtTarget(t *testing.T) {
	planner := NewQueryPlanner("booth_builder", "Germany", []string{"Berlin", "Munich"}, 4)
	progress := newStubProgress(100)
	progress.cityCounts["Berlin"] = planner.PerCityTarget()

	it := planner.Iterate()
	query, ok := it.Next(progress)

	require.True(t, ok)
	assert.Equal(t, "Munich", query.City)
}

func TestQueryPlanner_StopsAtMaxResults(t *testing.T) {
	planner := NewQueryPlanner("booth_builder", "Germany", []string{"Berlin", "Munich"}, 5)
	progress := newStubProgress(100)
	progress.total = 5

	_, ok := planner.Iterate().Next(progress)
	assert.False(t, ok)
}

func TestQueryPlanner_StopsWhenBudgetExhausted(t *testing.T) {
	planner := NewQueryPlanner("booth_builder", "Germany", []string{"Berlin"}, 10)
	progress := newStubProgress(0)

	_, ok := planner.Iterate().Next(progress)
	assert.False(t, ok)
}

func TestQueryPlanner_BudgetCheckedMidIteration(t *testing.T) {
	planner := NewQueryPlanner("wedding_planner", "Germany", []string{"Berlin"}, 10)
	progress := newStubProgress(1)

	it := planner.Iterate()
	_, ok := it.Next(progress)
	require.True(t, ok)

	progress.budget = 0
	_, ok = it.Next(progress)
	assert.False(t, ok)
}

func TestQueryPlanner_IterateRestarts(t *testing.T) {
	planner := NewQueryPlanner("wedding_planner", "Germany", []string{"Berlin"}, 10)

	first := drain(planner.Iterate(), newStubProgress(100))
	second := drain(planner.Iterate(), newStubProgress(100))

	assert.Equal(t, first, second)
}
