// Package rotation builds and composes the 3x3 rotation matrices that take
// sensor-relative geometry into the vessel and geographic frames.
//
// Rotations are intrinsic: each elementary rotation is performed in the
// coordinate system already rotated by the previous one, so the composed
// matrix for order rpy is rot(yaw) * rot(pitch) * rot(roll).
package rotation

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/hydrophase/svtrace/internal/sonar"
	"github.com/hydrophase/svtrace/internal/units"
)

// Order selects which input angle is treated as the innermost rotation.
type Order string

const (
	// OrderRollPitchYaw composes roll first, then pitch, then yaw.
	OrderRollPitchYaw Order = "rpy"
	// OrderYawPitchRoll composes yaw first, then pitch, then roll.
	OrderYawPitchRoll Order = "ypr"
)

// Series is a time series of rotation matrices: one 3x3 orthonormal matrix
// per time sample. A mounting-angle Series has exactly one sample; an
// attitude Series has one per attitude record.
type Series struct {
	Times []float64
	Mats  []*mat.Dense
}

// Len returns the number of time samples.
func (s *Series) Len() int { return len(s.Mats) }

// At returns the matrix for time sample i.
func (s *Series) At(i int) *mat.Dense { return s.Mats[i] }

// Apply rotates v by the matrix at time sample i.
func (s *Series) Apply(i int, v sonar.Vec3) sonar.Vec3 {
	m := s.Mats[i]
	var out sonar.Vec3
	for r := 0; r < 3; r++ {
		out[r] = m.At(r, 0)*v[0] + m.At(r, 1)*v[1] + m.At(r, 2)*v[2]
	}
	return out
}

// BuildSeries builds one rotation matrix per time sample from roll, pitch and
// heading series. Angles are degrees when degrees is true, radians otherwise.
// The three series must have equal length.
func BuildSeries(times, roll, pitch, heading []float64, order Order, degrees bool) (*Series, error) {
	if len(roll) != len(pitch) || len(roll) != len(heading) {
		return nil, fmt.Errorf("%w: roll %d, pitch %d, heading %d",
			sonar.ErrDimensionMismatch, len(roll), len(pitch), len(heading))
	}
	if times != nil && len(times) != len(roll) {
		return nil, fmt.Errorf("%w: %d times for %d samples",
			sonar.ErrDimensionMismatch, len(times), len(roll))
	}

	out := &Series{
		Times: times,
		Mats:  make([]*mat.Dense, len(roll)),
	}
	for i := range roll {
		r, p, y := roll[i], pitch[i], heading[i]
		if order == OrderYawPitchRoll {
			r, y = y, r
		} else if order != OrderRollPitchYaw {
			return nil, fmt.Errorf("rotation order %q is not rpy or ypr", order)
		}
		if degrees {
			r = units.DegToRad(r)
			p = units.DegToRad(p)
			y = units.DegToRad(y)
		}
		out.Mats[i] = composed(r, p, y)
	}
	return out, nil
}

// BuildMounting builds the single-sample rotation matrix for a static sensor
// mounting offset. Angles are degrees, rotation order rpy. The timestamp is
// the UTC-seconds key of the installation record and becomes the series'
// only time coordinate.
func BuildMounting(angles sonar.MountingAngles) (*Series, error) {
	ts, err := strconv.ParseFloat(angles.Timestamp, 64)
	if err != nil {
		return nil, fmt.Errorf("mounting timestamp %q: %w", angles.Timestamp, err)
	}
	return BuildSeries([]float64{ts},
		[]float64{angles.Roll}, []float64{angles.Pitch}, []float64{angles.Yaw},
		OrderRollPitchYaw, true)
}

// Combine composes two rotation series by matrix product, a then b applied
// in sequence (result = a_t * b_t). Exactly one operand must have a single
// time sample, which is broadcast across the other's time dimension; the
// result carries the longer operand's time coordinates.
func Combine(a, b *Series) (*Series, error) {
	switch {
	case a.Len() == 1 && b.Len() >= 1:
		out := &Series{Times: b.Times, Mats: make([]*mat.Dense, b.Len())}
		for i := range b.Mats {
			m := mat.NewDense(3, 3, nil)
			m.Mul(a.Mats[0], b.Mats[i])
			out.Mats[i] = m
		}
		return out, nil
	case b.Len() == 1:
		out := &Series{Times: a.Times, Mats: make([]*mat.Dense, a.Len())}
		for i := range a.Mats {
			m := mat.NewDense(3, 3, nil)
			m.Mul(a.Mats[i], b.Mats[0])
			out.Mats[i] = m
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: lengths %d and %d", sonar.ErrInvalidComposition, a.Len(), b.Len())
	}
}

// AttitudeRotation builds the rotation series for an attitude record,
// optionally subsetting to specific sample indices first. The subset exists
// because transmit-time and receive-time attitude differ by the one-way
// travel time, so callers select the samples relevant to each event.
func AttitudeRotation(att []sonar.AttitudeSample, timeIndex []int) (*Series, error) {
	if timeIndex != nil {
		subset := make([]sonar.AttitudeSample, len(timeIndex))
		for k, i := range timeIndex {
			if i < 0 || i >= len(att) {
				return nil, fmt.Errorf("attitude index %d out of range [0,%d)", i, len(att))
			}
			subset[k] = att[i]
		}
		att = subset
	}
	times := make([]float64, len(att))
	roll := make([]float64, len(att))
	pitch := make([]float64, len(att))
	heading := make([]float64, len(att))
	for i, a := range att {
		times[i] = a.Time
		roll[i] = a.Roll
		pitch[i] = a.Pitch
		heading[i] = a.Heading
	}
	return BuildSeries(times, roll, pitch, heading, OrderRollPitchYaw, true)
}

// composed returns the intrinsic rotation matrix rot(y)*rot(p)*rot(r) for
// angles in radians.
func composed(r, p, y float64) *mat.Dense {
	sr, cr := sincos(r)
	sp, cp := sincos(p)
	sy, cy := sincos(y)
	return mat.NewDense(3, 3, []float64{
		cy * cp, cy*sp*sr - sy*cr, cy*sp*cr + sy*sr,
		sy * cp, sy*sp*sr + cy*cr, sy*sp*cr - cy*sr,
		-sp, cp * sr, cp * cr,
	})
}

func sincos(a float64) (float64, float64) {
	return math.Sin(a), math.Cos(a)
}
