package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCallBudget(t *testing.T) {
	tests := []struct {
		name       string
		cityCount  int
		multiplier int
		hardCap    int
		want       int
	}{
		{"three cities under cap", 3, 3, 200, 9},
		{"many cities clamped to cap", 100, 3, 200, 200},
		{"exactly at cap", 10, 20, 200, 200},
		{"zero cities", 0, 3, 200, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			budget := NewCallBudget(tt.cityCount, tt.multiplier, tt.hardCap)
			assert.Equal(t, tt.want, budget.Remaining())
		})
	}
}

func TestCallBudget_Reserve(t *testing.T) {
	budget := NewCallBudget(1, 3, 200)

	assert.True(t, budget.Reserve(1))
	assert.True(t, budget.Reserve(2))
	assert.Equal(t, 0, budget.Remaining())

	assert.False(t, budget.Reserve(1))
	assert.Equal(t, 0, budget.Remaining())
}

func TestCallBudget_ReserveLeavesBudgetOnFailure(t *testing.T) {
	budget := NewCallBudget(1, 2, 200)

	assert.False(t, budget.Reserve(3))
	assert.Equal(t, 2, budget.Remaining())
}
