package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrade(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "A"},
		{90, "A"},
		{89, "B"},
		{80, "B"},
		{79, "C"},
		{70, "C"},
		{69, "D"},
		{60, "D"},
		{59, "F"},
		{0, "F"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.score), "score %d", tt.score)
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-11))
	assert.Equal(t, 0, ClampScore(0))
	assert.Equal(t, 33, ClampScore(32.5))
	assert.Equal(t, 32, ClampScore(32.4))
	assert.Equal(t, 100, ClampScore(100))
	assert.Equal(t, 100, ClampScore(117))
}

func TestDimensionWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, id := range DimensionOrder {
		sum += DimensionWeights[id]
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Len(t, DimensionOrder, len(DimensionWeights))
	assert.Len(t, DimensionNames, len(DimensionWeights))
}
