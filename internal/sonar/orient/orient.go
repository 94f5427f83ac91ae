// Package orient turns rotation series into transmitter and receiver
// orientation vectors. In the idealized sensor frame the transmitter points
// forward along +x and the receiver array lies along +y; rotating those unit
// vectors by the combined mounting and attitude rotation gives the actual
// orientation of each element at ping time.
package orient

import (
	"fmt"
	"sort"

	"github.com/hydrophase/svtrace/internal/ragged"
	"github.com/hydrophase/svtrace/internal/sonar"
	"github.com/hydrophase/svtrace/internal/sonar/rotation"
)

// Ideal element orientations in the sensor frame.
var (
	idealTx = sonar.Vec3{1, 0, 0}
	idealRx = sonar.Vec3{0, 1, 0}
)

// TransmitVectors rotates the ideal transmitter vector by each sample of the
// combined rotation series, one result per ping.
func TransmitVectors(rot *rotation.Series) []sonar.Vec3 {
	out := make([]sonar.Vec3, rot.Len())
	for i := range out {
		out[i] = rot.Apply(i, idealTx)
	}
	return out
}

// ReceiveVectors rotates the ideal receiver vector by each sample of the
// combined rotation series. The series carries one rotation per (ping, beam)
// in ping-major order, because each beam hears the return at a different
// time and therefore under a different attitude. valid marks which slots
// hold real beams; nil means all slots are valid.
func ReceiveVectors(rot *rotation.Series, pings, beams int, valid []bool) (ragged.VectorArray, error) {
	if rot.Len() != pings*beams {
		return ragged.VectorArray{}, fmt.Errorf("%w: %d rotations for %d pings x %d beams",
			sonar.ErrDimensionMismatch, rot.Len(), pings, beams)
	}
	if valid != nil && len(valid) != pings*beams {
		return ragged.VectorArray{}, fmt.Errorf("%w: %d validity flags for %d slots",
			sonar.ErrDimensionMismatch, len(valid), pings*beams)
	}
	out := ragged.NewVectorArray(pings, beams)
	for p := 0; p < pings; p++ {
		for b := 0; b < beams; b++ {
			i := p*beams + b
			if valid != nil && !valid[i] {
				continue
			}
			out.Set(p, b, rot.Apply(i, idealRx))
		}
	}
	return out, nil
}

// PingSampleIndices maps each ping to the attitude sample nearest its
// transmit time. attTimes must be ascending.
func PingSampleIndices(attTimes, pingTimes []float64) ([]int, error) {
	if len(attTimes) == 0 {
		return nil, fmt.Errorf("%w: empty attitude series", sonar.ErrDimensionMismatch)
	}
	out := make([]int, len(pingTimes))
	for p, t := range pingTimes {
		out[p] = nearestIndex(attTimes, t)
	}
	return out, nil
}

// ReceiveSampleIndices maps each (ping, beam) slot to the attitude sample
// nearest the moment the beam's return arrives, ping time plus the one-way
// travel time. attTimes must be ascending. Invalid slots map to the sample
// nearest the bare ping time.
func ReceiveSampleIndices(attTimes, pingTimes []float64, traveltime ragged.Array) ([]int, error) {
	if len(pingTimes) != traveltime.Pings {
		return nil, fmt.Errorf("%w: %d ping times for %d pings",
			sonar.ErrDimensionMismatch, len(pingTimes), traveltime.Pings)
	}
	if len(attTimes) == 0 {
		return nil, fmt.Errorf("%w: empty attitude series", sonar.ErrDimensionMismatch)
	}
	out := make([]int, traveltime.Pings*traveltime.Beams)
	for p := 0; p < traveltime.Pings; p++ {
		for b := 0; b < traveltime.Beams; b++ {
			target := pingTimes[p]
			if twtt, ok := traveltime.At(p, b); ok {
				target += twtt / 2
			}
			out[p*traveltime.Beams+b] = nearestIndex(attTimes, target)
		}
	}
	return out, nil
}

func nearestIndex(times []float64, target float64) int {
	i := sort.SearchFloat64s(times, target)
	if i == 0 {
		return 0
	}
	if i == len(times) {
		return len(times) - 1
	}
	if target-times[i-1] <= times[i]-target {
		return i - 1
	}
	return i
}
