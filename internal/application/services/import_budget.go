package services

import (
	"sync"
)

// CallBudget tracks the remaining external-API calls for one import run.
// Exhaustion is a normal stopping condition, not an error. Reserve is the
// single synchronization point if enrichment is ever parallelized.
type CallBudget struct {
	mu        sync.Mutex
	remaining int
}

// NewCallBudget computes the run budget as min(cityCount*perCityMultiplier, hardCap).
func NewCallBudget(cityCount, perCityMultiplier, hardCap int) *CallBudget {
	budget := cityCount * perCityMultiplier
	if budget > hardCap {
		budget = hardCap
	}
	if budget < 0 {
		budget = 0
	}
	return &CallBudget{remaining: budget}
}

// Reserve atomically takes n units from the budget. It returns false and
// leaves the budget untouched when fewer than n units remain.
func (b *CallBudget) Reserve(n int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.remaining < n {
		return false
	}
	b.remaining -= n
	return true
}

// Remaining returns the number of calls still available.
func (b *CallBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}
