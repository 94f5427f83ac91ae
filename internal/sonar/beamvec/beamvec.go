// Package beamvec builds beam pointing vectors: for every beam, the
// direction from the array midpoint toward the ensonified patch of seafloor,
// expressed as a corrected pointing angle and an azimuth relative to vessel
// heading. The transmitter and receiver are treated as co-located, so the
// beam vector is the intersection of the transmit sector and the receive
// cone projected through the combined array orientation.
//
// Frame convention is x forward, y starboard, z down. Positive receive
// angles steer to port and carry a negative y component.
package beamvec

import (
	"fmt"
	"math"

	"github.com/hydrophase/svtrace/internal/ragged"
	"github.com/hydrophase/svtrace/internal/sonar"
	"github.com/hydrophase/svtrace/internal/units"
)

// Input carries one chunk of pings through beam vector construction.
// Angles are degrees; BeamAngle is the raw receiver beam pointing angle and
// TiltAngle the transmitter steering angle. TxVectors holds one transmitter
// orientation per ping, RxVectors one receiver orientation per (ping, beam).
// The reversed flags mark arrays installed 180 degrees off in yaw, which
// negates the corresponding steering angles.
type Input struct {
	Heading    []float64
	BeamAngle  ragged.Array
	TiltAngle  ragged.Array
	TxVectors  []sonar.Vec3
	RxVectors  ragged.VectorArray
	TxReversed bool
	RxReversed bool
}

// Result holds the constructed beam geometry in radians. BeamAngle is the
// corrected pointing angle relative to vertical, signed positive to
// starboard; Azimuth is relative to vessel heading in [0, 2*pi). Both carry
// the input's validity mask.
type Result struct {
	BeamAngle ragged.Array
	Azimuth   ragged.Array
}

// Build constructs beam pointing vectors for every valid (ping, beam) slot.
// All inputs must agree on the ping/beam dimensions and validity mask.
func Build(in Input) (Result, error) {
	if err := in.validate(); err != nil {
		return Result{}, err
	}

	pings, beams := in.BeamAngle.Pings, in.BeamAngle.Beams
	angle := ragged.New(pings, beams)
	azimuth := ragged.New(pings, beams)

	for p := 0; p < pings; p++ {
		tx := in.TxVectors[p]
		for b := 0; b < beams; b++ {
			bpa, ok := in.BeamAngle.At(p, b)
			if !ok {
				continue
			}
			tilt, _ := in.TiltAngle.At(p, b)
			rx, _ := in.RxVectors.At(p, b)

			rxAngle := units.DegToRad(bpa)
			txAngle := units.DegToRad(tilt)
			if in.TxReversed {
				txAngle = -txAngle
			}
			if in.RxReversed {
				rxAngle = -rxAngle
			}

			az, pt := pointing(tx, sonar.Vec3(rx), txAngle, rxAngle, in.Heading[p])
			azimuth.Set(p, b, az)
			angle.Set(p, b, pt)
		}
	}
	return Result{BeamAngle: angle, Azimuth: azimuth}, nil
}

// pointing builds one geographic beam vector and reduces it to the relative
// azimuth and corrected pointing angle, both in radians.
func pointing(tx, rx sonar.Vec3, txAngle, rxAngle, headingDeg float64) (azimuth, angle float64) {
	// delta is the residual misalignment between the tx and rx arrays after
	// attitude, ideally zero for an orthogonal install.
	delta := math.Acos(tx.Dot(rx)) - math.Pi/2

	x := math.Sin(txAngle)
	y := -math.Sin(rxAngle)/math.Cos(delta) + math.Sin(txAngle)*math.Tan(delta)
	radial := math.Sqrt(y*y + x*x)
	z := math.Sqrt(math.Max(0, 1-radial*radial))

	// Array-relative frame axes in geographic coordinates: x along the
	// transmitter, z normal to both arrays, y completing the right-handed set.
	xp := tx
	zp := tx.Cross(rx)
	yp := zp.Cross(xp)

	var bv sonar.Vec3
	for i := 0; i < 3; i++ {
		bv[i] = x*xp[i] + y*yp[i] + z*zp[i]
	}

	azDeg := units.RadToDeg(math.Atan2(bv[1], bv[0]))
	azimuth = units.DegToRad(math.Mod(azDeg-headingDeg+360, 360))

	angle = math.Pi/2 - math.Atan(bv[2]/math.Hypot(bv[0], bv[1]))
	if rxAngle < 0 {
		angle = -angle
	}
	return azimuth, angle
}

func (in Input) validate() error {
	pings, beams := in.BeamAngle.Pings, in.BeamAngle.Beams
	if len(in.Heading) != pings {
		return fmt.Errorf("%w: %d headings for %d pings", sonar.ErrDimensionMismatch, len(in.Heading), pings)
	}
	if len(in.TxVectors) != pings {
		return fmt.Errorf("%w: %d tx vectors for %d pings", sonar.ErrDimensionMismatch, len(in.TxVectors), pings)
	}
	if !in.BeamAngle.SameShape(in.TiltAngle) {
		return fmt.Errorf("%w: beam angle and tilt angle arrays differ", sonar.ErrDimensionMismatch)
	}
	if in.RxVectors.Pings != pings || in.RxVectors.Beams != beams {
		return fmt.Errorf("%w: rx vectors are %dx%d, beam angles %dx%d",
			sonar.ErrDimensionMismatch, in.RxVectors.Pings, in.RxVectors.Beams, pings, beams)
	}
	for i, ok := range in.BeamAngle.Valid {
		if ok && !in.RxVectors.Valid[i] {
			return fmt.Errorf("%w: beam %d has an angle but no rx vector", sonar.ErrDimensionMismatch, i)
		}
	}
	return nil
}
