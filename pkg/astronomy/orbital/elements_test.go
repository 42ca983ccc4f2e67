package orbital

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeplerThirdLaw(t *testing.T) {
	// Earth around the Sun
	assert.InDelta(t, 1.0, SemiMajorAxis(365.25, 1.0), 1e-3)
	assert.InDelta(t, 365.25, Period(1.0, 1.0), 0.2)

	a := SemiMajorAxis(3.5, 0.8)
	assert.InDelta(t, 3.5, Period(a, 0.8), 1e-9)
}

func TestInsolation(t *testing.T) {
	assert.InDelta(t, 1.0, Insolation(1, 1), 1e-12)
	assert.InDelta(t, 4.0, Insolation(1, 0.5), 1e-12)
}

func TestComplete(t *testing.T) {
	nan := math.NaN()

	e := Elements{PeriodDays: 365.25, SemiMajorAxisAU: nan, StellarMass: 1}.Complete()
	assert.InDelta(t, 1.0, e.SemiMajorAxisAU, 1e-3)

	e = Elements{PeriodDays: 0, SemiMajorAxisAU: 1, StellarMass: 1}.Complete()
	assert.InDelta(t, 365.25, e.PeriodDays, 0.2)

	// unknown host mass leaves everything untouched
	e = Elements{PeriodDays: 10, SemiMajorAxisAU: nan, StellarMass: nan}.Complete()
	assert.True(t, math.IsNaN(e.SemiMajorAxisAU))

	// present values are never overwritten
	e = Elements{PeriodDays: 10, SemiMajorAxisAU: 7, StellarMass: 1}.Complete()
	assert.Equal(t, 7.0, e.SemiMajorAxisAU)
	assert.Equal(t, 10.0, e.PeriodDays)
}
