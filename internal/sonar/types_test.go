package sonar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3(t *testing.T) {
	t.Parallel()

	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}

	assert.Equal(t, 0.0, x.Dot(y))
	assert.Equal(t, Vec3{0, 0, 1}, x.Cross(y))
	assert.Equal(t, Vec3{0, 0, -1}, y.Cross(x))
	assert.Equal(t, 1.0, x.Norm())
	assert.InDelta(t, 5.0, Vec3{3, 4, 0}.Norm(), 1e-15)
}

func TestCastClone(t *testing.T) {
	t.Parallel()

	c := Cast{
		Name:        "cast",
		Depths:      []float64{0, 10},
		SoundSpeeds: []float64{1500, 1510},
	}
	clone := c.Clone()
	clone.Depths[0] = 99
	clone.SoundSpeeds[1] = 99

	assert.Equal(t, 0.0, c.Depths[0])
	assert.Equal(t, 1510.0, c.SoundSpeeds[1])
}

func TestProcessingStatusString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "converted", StatusConverted.String())
	assert.Equal(t, "soundvelocity", StatusSoundVelocity.String())
	assert.Equal(t, "georeference", StatusGeoreference.String())
}
