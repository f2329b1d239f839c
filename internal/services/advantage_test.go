package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.5, Clamp(0.5, -1, 1))
	assert.Equal(t, -1.0, Clamp(-3, -1, 1))
	assert.Equal(t, 1.0, Clamp(7, -1, 1))
}

func TestDeltaForm(t *testing.T) {
	// A cold stretch (trailing average below season pace) is positive.
	assert.InDelta(t, 0.25, DeltaForm(20, 15), 1e-9)

	// A hot stretch is negative and clamped.
	assert.InDelta(t, -0.5, DeltaForm(10, 15), 1e-9)
	assert.Equal(t, -1.0, DeltaForm(10, 40))

	// A zero season average cannot blow up the ratio.
	assert.Equal(t, -1.0, DeltaForm(0, 5))
	assert.Equal(t, 0.0, DeltaForm(0, 0))
}

func TestAdvantageScore(t *testing.T) {
	// Weak defense (z=0.5) against a slightly cold scorer.
	assert.Equal(t, 0.75, AdvantageScore(0.5, 20, 15))

	// Neutral defense, neutral form.
	assert.Equal(t, 0.0, AdvantageScore(0, 20, 20))

	// Strong defense dominates a hot streak's penalty.
	assert.Equal(t, -2.25, AdvantageScore(-2, 20, 25))
}
