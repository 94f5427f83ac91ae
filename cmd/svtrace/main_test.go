package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrophase/svtrace/internal/config"
	"github.com/hydrophase/svtrace/internal/sonar"
)

func geometryRun() (*runDescription, chunkDesc, sonar.Cast) {
	desc := &runDescription{
		Attitude: []attitudeDesc{{Time: 0}},
		Mounting: &mountingDesc{Timestamp: "0"},
	}
	cd := chunkDesc{
		Pings:      1,
		Beams:      2,
		PingTimes:  []float64{0},
		SSV:        []float64{1500},
		BeamAngle:  []float64{45, -30},
		TiltAngle:  []float64{0, 0},
		TravelTime: []float64{0.02, 0.02},
	}
	cast := sonar.Cast{
		Depths:      []float64{0, 10, 50},
		SoundSpeeds: []float64{1500, 1520, 1480},
	}
	return desc, cd, cast
}

func TestBuildChunkBeamGeometry(t *testing.T) {
	t.Parallel()

	desc, cd, cast := geometryRun()
	ch, err := buildChunk(desc, cd, cast, config.Empty())
	require.NoError(t, err)

	// Level vessel, level install: a 45 degree starboard receive angle
	// points straight abeam to starboard, azimuth 270 relative to heading.
	az, ok := ch.Azimuth.At(0, 0)
	require.True(t, ok)
	assert.InDelta(t, 3*math.Pi/2, az, 1e-12)
	angle, _ := ch.BeamAngle.At(0, 0)
	assert.InDelta(t, math.Pi/4, angle, 1e-12)

	// Port beam: opposite azimuth, negative pointing angle.
	az, _ = ch.Azimuth.At(0, 1)
	assert.InDelta(t, math.Pi/2, az, 1e-12)
	angle, _ = ch.BeamAngle.At(0, 1)
	assert.InDelta(t, -math.Pi/6, angle, 1e-12)
}

func TestBuildChunkBeamGeometryRxReversed(t *testing.T) {
	t.Parallel()

	desc, cd, cast := geometryRun()
	rev := true
	cfg := &config.ProcessConfig{RxReversed: &rev}
	ch, err := buildChunk(desc, cd, cast, cfg)
	require.NoError(t, err)

	// A reversed receiver negates the steering angle, flipping each beam to
	// the other side.
	az, ok := ch.Azimuth.At(0, 0)
	require.True(t, ok)
	assert.InDelta(t, math.Pi/2, az, 1e-12)
	angle, _ := ch.BeamAngle.At(0, 0)
	assert.InDelta(t, -math.Pi/4, angle, 1e-12)

	az, _ = ch.Azimuth.At(0, 1)
	assert.InDelta(t, 3*math.Pi/2, az, 1e-12)
	angle, _ = ch.BeamAngle.At(0, 1)
	assert.InDelta(t, math.Pi/6, angle, 1e-12)
}

func TestBuildChunkRejectsBadGeometry(t *testing.T) {
	t.Parallel()

	desc, cd, cast := geometryRun()

	// Raw steering angles without attitude records to orient them.
	bare := &runDescription{}
	_, err := buildChunk(bare, cd, cast, config.Empty())
	assert.Error(t, err)

	// Both chunk forms at once.
	both := cd
	both.Azimuth = []float64{0, 0}
	_, err = buildChunk(desc, both, cast, config.Empty())
	assert.Error(t, err)

	// Neither form.
	neither := cd
	neither.TiltAngle = nil
	_, err = buildChunk(desc, neither, cast, config.Empty())
	assert.Error(t, err)

	noTimes := cd
	noTimes.PingTimes = nil
	_, err = buildChunk(desc, noTimes, cast, config.Empty())
	assert.Error(t, err)
}
