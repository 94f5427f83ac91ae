package orient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrophase/svtrace/internal/ragged"
	"github.com/hydrophase/svtrace/internal/sonar"
	"github.com/hydrophase/svtrace/internal/sonar/rotation"
)

func TestTransmitVectors(t *testing.T) {
	t.Parallel()

	rot, err := rotation.BuildSeries(nil,
		[]float64{0, 1.5}, []float64{0, -0.5}, []float64{0, 30.0},
		rotation.OrderRollPitchYaw, true)
	require.NoError(t, err)

	tx := TransmitVectors(rot)
	require.Len(t, tx, 2)

	// Identity attitude leaves the ideal forward vector untouched.
	assert.InDelta(t, 1.0, tx[0][0], 1e-15)
	assert.InDelta(t, 0.0, tx[0][1], 1e-15)
	assert.InDelta(t, 0.0, tx[0][2], 1e-15)

	assert.InDelta(t, 0.8659924281907128, tx[1][0], 1e-12)
	assert.InDelta(t, 0.4999809615320856, tx[1][1], 1e-12)
	assert.InDelta(t, 0.008726535498373935, tx[1][2], 1e-12)
}

func TestReceiveVectors(t *testing.T) {
	t.Parallel()

	// Two pings, two beams: four per-slot rotations.
	rot, err := rotation.BuildSeries(nil,
		[]float64{0, 1.5, 0, 1.5}, []float64{0, -0.5, 0, -0.5}, []float64{0, 30, 0, 30},
		rotation.OrderRollPitchYaw, true)
	require.NoError(t, err)

	rx, err := ReceiveVectors(rot, 2, 2, nil)
	require.NoError(t, err)

	v, ok := rx.At(0, 0)
	require.True(t, ok)
	assert.InDelta(t, 0.0, v[0], 1e-15)
	assert.InDelta(t, 1.0, v[1], 1e-15)

	v, ok = rx.At(0, 1)
	require.True(t, ok)
	assert.InDelta(t, -0.5000264921943174, v[0], 1e-12)
	assert.InDelta(t, 0.8656144214737049, v[1], 1e-12)
	assert.InDelta(t, 0.026175951569892244, v[2], 1e-12)
}

func TestReceiveVectorsValidityMask(t *testing.T) {
	t.Parallel()

	rot, err := rotation.BuildSeries(nil,
		[]float64{0, 0}, []float64{0, 0}, []float64{0, 0},
		rotation.OrderRollPitchYaw, true)
	require.NoError(t, err)

	rx, err := ReceiveVectors(rot, 1, 2, []bool{true, false})
	require.NoError(t, err)

	_, ok := rx.At(0, 0)
	assert.True(t, ok)
	_, ok = rx.At(0, 1)
	assert.False(t, ok)
}

func TestReceiveVectorsShapeMismatch(t *testing.T) {
	t.Parallel()

	rot, err := rotation.BuildSeries(nil,
		[]float64{0}, []float64{0}, []float64{0},
		rotation.OrderRollPitchYaw, true)
	require.NoError(t, err)

	_, err = ReceiveVectors(rot, 2, 2, nil)
	assert.ErrorIs(t, err, sonar.ErrDimensionMismatch)

	_, err = ReceiveVectors(rot, 1, 1, []bool{true, true})
	assert.ErrorIs(t, err, sonar.ErrDimensionMismatch)
}

func TestPingSampleIndices(t *testing.T) {
	t.Parallel()

	attTimes := []float64{0, 0.1, 0.2, 0.3}
	idx, err := PingSampleIndices(attTimes, []float64{0.04, 0.26, 9})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 3}, idx)

	_, err = PingSampleIndices(nil, []float64{0.1})
	assert.ErrorIs(t, err, sonar.ErrDimensionMismatch)
}

func TestReceiveSampleIndices(t *testing.T) {
	t.Parallel()

	attTimes := []float64{0, 0.1, 0.2, 0.3, 0.4}
	tt := ragged.New(1, 3)
	tt.Set(0, 0, 0.0)   // arrives at ping time, sample 1
	tt.Set(0, 1, 0.25)  // owtt 0.125 -> 0.225, nearest sample 2
	tt.Invalidate(0, 2) // falls back to ping time

	idx, err := ReceiveSampleIndices(attTimes, []float64{0.1}, tt)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 1}, idx)

	// Targets beyond either end clamp to the nearest edge sample.
	late := ragged.New(1, 1)
	late.Set(0, 0, 10.0)
	idx, err = ReceiveSampleIndices(attTimes, []float64{0.4}, late)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, idx)

	_, err = ReceiveSampleIndices(attTimes, []float64{1, 2}, tt)
	assert.ErrorIs(t, err, sonar.ErrDimensionMismatch)

	_, err = ReceiveSampleIndices(nil, []float64{0.1}, tt)
	assert.ErrorIs(t, err, sonar.ErrDimensionMismatch)
}
