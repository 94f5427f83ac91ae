package raytrace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The reference cast used throughout: surface value injected at depth 0,
// a warm layer at 10m, a cold layer at 50m.
var (
	refDepths = []float64{0, 10, 50}
	refSpeeds = []float64{1500, 1520, 1480}
)

func TestBuildTablesCumulativeValues(t *testing.T) {
	t.Parallel()

	tab := BuildTables(refDepths, refSpeeds, []float64{deg(10)})
	require.Equal(t, 3, tab.Layers())
	assert.Equal(t, 0, tab.Clipped)

	assert.Equal(t, []float64{0, 10, 50}, tab.Depth)
	assert.InDelta(t, 1.7632698070846498, tab.Horizontal[1][0], 1e-12)
	assert.InDelta(t, 8.91337454668044, tab.Horizontal[2][0], 1e-12)
	assert.InDelta(t, 0.0067695107459049665, tab.RayTime[1][0], 1e-15)
	assert.InDelta(t, 0.03350242201176994, tab.RayTime[2][0], 1e-15)
}

func TestLookupInterpolates(t *testing.T) {
	t.Parallel()

	tab := BuildTables(refDepths, refSpeeds, []float64{deg(10)})

	h, d, flag := tab.Lookup(0, 0.025)
	require.Equal(t, InRange, flag)
	assert.InDelta(t, 6.63927849631775, h, 1e-9)
	assert.InDelta(t, 37.27797069730058, d, 1e-9)
}

func TestLookupRangePolicy(t *testing.T) {
	t.Parallel()

	tab := BuildTables(refDepths, refSpeeds, []float64{deg(10)})

	// The cast covers 0.0335s one-way; 0.04s outruns it.
	h, d, flag := tab.Lookup(0, 0.04)
	assert.Equal(t, BeyondCast, flag)
	assert.Zero(t, h)
	assert.Zero(t, d)

	_, _, flag = tab.Lookup(0, 0)
	assert.Equal(t, AboveTransducer, flag)
}

func TestClosedFormSingleLayer(t *testing.T) {
	t.Parallel()

	// A near-constant cast (an exactly constant one collapses to a single
	// layer during normalization): the traced offsets must match the
	// straight-ray closed form h = t*c*sin(a), d = t*c*cos(a).
	const c = 1500.0
	depths, speeds, err := NormalizeForSSV([]float64{0, 500}, []float64{c, c + 0.01}, math.Inf(1), c)
	require.NoError(t, err)

	const owtt = 0.05
	for _, a := range []float64{deg(10), deg(30), deg(-25)} {
		tab := BuildTables(depths, speeds, []float64{a})
		h, d, flag := tab.Lookup(0, owtt)
		require.Equal(t, InRange, flag)
		assert.InDelta(t, owtt*c*math.Sin(a), h, 1e-3)
		assert.InDelta(t, owtt*c*math.Cos(a), d, 1e-3)
	}
}

func TestLookupMonotonicInTravelTime(t *testing.T) {
	t.Parallel()

	tab := BuildTables(refDepths, refSpeeds, []float64{deg(10)})

	prevH, prevD := math.Inf(-1), math.Inf(-1)
	for owtt := 0.002; owtt < 0.033; owtt += 0.002 {
		h, d, flag := tab.Lookup(0, owtt)
		require.Equal(t, InRange, flag, "owtt %.3f", owtt)
		assert.Greater(t, h, prevH, "horizontal at owtt %.3f", owtt)
		assert.Greater(t, d, prevD, "depth at owtt %.3f", owtt)
		prevH, prevD = h, d
	}
}

func TestSnellInvariant(t *testing.T) {
	t.Parallel()

	// Reconstruct each layer's incidence angle from the table increments;
	// the ray parameter sin(angle)/c must hold across unclipped layers.
	launch := deg(10)
	tab := BuildTables(refDepths, refSpeeds, []float64{launch})
	require.Equal(t, 0, tab.Clipped)

	want := math.Sin(launch) / refSpeeds[0]
	for i := 1; i < tab.Layers(); i++ {
		dd := tab.Depth[i] - tab.Depth[i-1]
		dh := tab.Horizontal[i][0] - tab.Horizontal[i-1][0]
		angle := math.Atan(dh / dd)
		assert.InDelta(t, want, math.Sin(angle)/refSpeeds[i-1], 1e-15, "layer %d", i)
	}
}

func TestBuildTablesCountsClipping(t *testing.T) {
	t.Parallel()

	// A steep beam into strongly faster layers reflects at both boundaries.
	tab := BuildTables([]float64{0, 10, 20}, []float64{1480, 1600, 1650}, []float64{deg(70)})
	assert.Equal(t, 2, tab.Clipped)

	// Port side clips the same way.
	tab = BuildTables([]float64{0, 10, 20}, []float64{1480, 1600, 1650}, []float64{deg(-70)})
	assert.Equal(t, 2, tab.Clipped)
}
