package raytrace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrophase/svtrace/internal/sonar"
)

func TestShiftToTransducer(t *testing.T) {
	t.Parallel()

	cast := sonar.Cast{
		Depths:      []float64{0, 1, 2},
		SoundSpeeds: []float64{1487, 1489, 1490},
	}

	// Transducer half a meter below the waterline: the surface layer falls
	// above it and is dropped.
	d, s := ShiftToTransducer(cast, -0.5)
	assert.Equal(t, []float64{0.5, 1.5}, d)
	assert.Equal(t, []float64{1489.0, 1490.0}, s)

	d, s = ShiftToTransducer(cast, 0)
	assert.Equal(t, cast.Depths, d)
	assert.Equal(t, cast.SoundSpeeds, s)
}

func TestInterpolateGaps(t *testing.T) {
	t.Parallel()

	d, s := InterpolateGaps([]float64{0, 50, 350}, []float64{1500, 1480, 1700}, 100)
	require.Equal(t, []float64{0, 50, 150, 250, 350}, d)
	require.Len(t, s, 5)
	assert.Equal(t, 1500.0, s[0])
	assert.Equal(t, 1480.0, s[1])
	assert.InDelta(t, 1553.3333333333333, s[2], 1e-9)
	assert.InDelta(t, 1626.6666666666667, s[3], 1e-9)
	assert.Equal(t, 1700.0, s[4])

	// A gap between one and two bounds still gets its single layer.
	d, s = InterpolateGaps([]float64{0, 150}, []float64{1500, 1600}, 100)
	require.Equal(t, []float64{0, 100, 150}, d)
	require.Len(t, s, 3)
	assert.InDelta(t, 1566.6666666666667, s[1], 1e-9)

	// A gap of exactly two bounds: the endpoint is already a layer, so only
	// the midpoint is inserted.
	d, s = InterpolateGaps([]float64{0, 200}, []float64{1500, 1600}, 100)
	assert.Equal(t, []float64{0, 100, 200}, d)
	assert.Equal(t, []float64{1500.0, 1550.0, 1600.0}, s)

	// No gap wider than the bound: untouched.
	d, s = InterpolateGaps([]float64{0, 50, 100}, []float64{1500, 1480, 1490}, 100)
	assert.Equal(t, []float64{0, 50, 100}, d)
	assert.Equal(t, []float64{1500.0, 1480.0, 1490.0}, s)
}

func TestMaxAllowableSV(t *testing.T) {
	t.Parallel()

	got := MaxAllowableSV([]float64{deg(75)}, 1500)
	assert.InDelta(t, 1552.9142706151247, got, 1e-9)

	// Sign does not matter, only the steepest magnitude.
	got = MaxAllowableSV([]float64{deg(10), deg(-75)}, 1500)
	assert.InDelta(t, 1552.9142706151247, got, 1e-9)

	assert.True(t, math.IsInf(MaxAllowableSV(nil, 1500), 1))
	assert.True(t, math.IsInf(MaxAllowableSV([]float64{0}, 1500), 1))
}

func TestNormalizeForSSVTruncatesFastLayers(t *testing.T) {
	t.Parallel()

	// A cast extended to 12000m with an absurd terminal sound speed gets cut
	// at the total reflection bound for a 75 degree beam.
	maxSV := MaxAllowableSV([]float64{deg(75)}, 1500)
	d, s, err := NormalizeForSSV(
		[]float64{0, 10, 50, 12000},
		[]float64{1500, 1520, 1480, 3000},
		maxSV, 1500)
	require.NoError(t, err)

	require.Len(t, d, 4)
	assert.InDelta(t, 623.2404827965394, d[3], 1e-9)
	assert.InDelta(t, maxSV, s[3], 1e-12)
	assert.Equal(t, []float64{0, 10, 50}, d[:3])
}

func TestNormalizeForSSVSurfaceLayer(t *testing.T) {
	t.Parallel()

	// Existing zero-depth layer: overridden with the live value.
	d, s, err := NormalizeForSSV([]float64{0, 10, 50}, []float64{1487, 1520, 1480}, math.Inf(1), 1500)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10, 50}, d)
	assert.Equal(t, []float64{1500.0, 1520.0, 1480.0}, s)

	// No zero-depth layer: prepended.
	d, s, err = NormalizeForSSV([]float64{5, 50}, []float64{1520, 1480}, math.Inf(1), 1500)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 5, 50}, d)
	assert.Equal(t, []float64{1500.0, 1520.0, 1480.0}, s)
}

func TestNormalizeForSSVCollapsesDuplicates(t *testing.T) {
	t.Parallel()

	d, s, err := NormalizeForSSV([]float64{0, 10, 20}, []float64{1487, 1500, 1510}, math.Inf(1), 1500)
	require.NoError(t, err)
	// The injected surface value matches layer 1, which collapses into it.
	assert.Equal(t, []float64{0, 20}, d)
	assert.Equal(t, []float64{1500.0, 1510.0}, s)
}

func TestNormalizeForSSVDegenerate(t *testing.T) {
	t.Parallel()

	// A constant-speed cast collapses to a single layer.
	_, _, err := NormalizeForSSV([]float64{0, 200}, []float64{1500, 1500}, math.Inf(1), 1500)
	assert.ErrorIs(t, err, sonar.ErrCastDegenerate)

	_, _, err = NormalizeForSSV(nil, nil, math.Inf(1), 1500)
	assert.ErrorIs(t, err, sonar.ErrCastDegenerate)

	// Truncation at the very first layer leaves nothing usable.
	_, _, err = NormalizeForSSV([]float64{0, 10}, []float64{1600, 1700}, 1550, 1500)
	assert.ErrorIs(t, err, sonar.ErrCastDegenerate)
}

func deg(v float64) float64 { return v * math.Pi / 180 }
