// Package sonar holds the shared domain model for multibeam sound-velocity
// correction: attitude and mounting records, sound-velocity casts, ping
// chunks, sounding offsets and processing-status codes.
//
// This package is a leaf: the processing packages (rotation, beamvec,
// raytrace, svp) all import it, it imports none of them.
package sonar

import "math"

// Vec3 is a 3-component vector in the vessel/geographic frame.
// Convention: X=+forward, Y=+starboard, Z=+down.
type Vec3 [3]float64

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

// Cross returns the cross product v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// AttitudeSample is one record from the attitude sensor, already
// interpolated by the caller onto the time of interest (ping or receive).
// Angles are in degrees, heave in meters.
type AttitudeSample struct {
	Time    float64 // UTC seconds
	Roll    float64
	Pitch   float64
	Heading float64
	Heave   float64
}

// MountingAngles is the static roll/pitch/yaw offset of a sensor for one
// installation period. Timestamp is the UTC-seconds key of the installation
// record the angles came from; records are immutable once created.
type MountingAngles struct {
	Roll      float64
	Pitch     float64
	Yaw       float64
	Timestamp string
}

// LeverArm is the fixed physical offset between a sensor reference point and
// the vessel reference point, in meters: +Along forward, +Across starboard,
// +Down below.
type LeverArm struct {
	Along  float64
	Across float64
	Down   float64
}

// Cast is a sound-velocity profile: depth-ordered (depth, soundspeed)
// samples plus the metadata parsed from the cast file header. Depths are in
// meters positive down, sound speeds in m/s.
type Cast struct {
	Name        string
	Time        float64 // UTC seconds of the cast
	Latitude    float64 // decimal degrees
	Longitude   float64 // decimal degrees
	Depths      []float64
	SoundSpeeds []float64
}

// Clone returns a deep copy of the cast. Normalization never mutates a cast
// in place, so processing stages clone before editing layers.
func (c Cast) Clone() Cast {
	out := c
	out.Depths = append([]float64(nil), c.Depths...)
	out.SoundSpeeds = append([]float64(nil), c.SoundSpeeds...)
	return out
}

// ProcessingStatus marks how far a sounding has progressed through the
// processing pipeline. Each stage stamps its level on the beams it completed;
// a beam it could not resolve keeps the previous stage's level.
type ProcessingStatus uint8

const (
	// StatusConverted marks a sounding that has only been converted from raw.
	StatusConverted ProcessingStatus = iota
	// StatusOrientation marks completion of the orientation stage.
	StatusOrientation
	// StatusBeamVector marks completion of the beam-vector stage.
	StatusBeamVector
	// StatusSoundVelocity marks completion of sound-velocity correction.
	StatusSoundVelocity
	// StatusGeoreference marks completion of georeferencing (downstream).
	StatusGeoreference
)

// String returns the pipeline stage name for the status level.
func (s ProcessingStatus) String() string {
	switch s {
	case StatusConverted:
		return "converted"
	case StatusOrientation:
		return "orientation"
	case StatusBeamVector:
		return "beamvector"
	case StatusSoundVelocity:
		return "soundvelocity"
	case StatusGeoreference:
		return "georeference"
	default:
		return "unknown"
	}
}
