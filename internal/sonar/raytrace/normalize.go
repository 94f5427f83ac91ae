// Package raytrace corrects beam geometry for refraction through the water
// column. A sound velocity cast is normalized against the live surface sound
// speed, Snell's law propagates each beam's launch angle through the cast
// layers into cumulative distance and travel time tables, and each beam's
// travel time is interpolated against those tables to produce alongtrack,
// acrosstrack and depth offsets relative to the transducer.
package raytrace

import (
	"fmt"
	"math"

	"github.com/hydrophase/svtrace/internal/sonar"
)

// ShiftToTransducer rebases cast depths from the waterline to the
// transducer by adding the signed waterline offset (positive down), dropping
// layers that end up above the transducer.
func ShiftToTransducer(cast sonar.Cast, waterlineOffset float64) (depths, speeds []float64) {
	depths = make([]float64, 0, len(cast.Depths))
	speeds = make([]float64, 0, len(cast.Depths))
	for i, d := range cast.Depths {
		nd := d + waterlineOffset
		if nd < 0 {
			continue
		}
		depths = append(depths, nd)
		speeds = append(speeds, cast.SoundSpeeds[i])
	}
	return depths, speeds
}

// InterpolateGaps fills layer gaps wider than maxGap with linearly
// interpolated samples. Casts extended to great depth to satisfy sonar
// drivers can jump tens of m/s between two layers hundreds of meters apart,
// which produces violent steering-angle changes across that boundary;
// interpolation keeps the per-layer gradients gentle. Inserted depths are
// rounded to centimeters.
func InterpolateGaps(depths, speeds []float64, maxGap float64) ([]float64, []float64) {
	outD := make([]float64, 0, len(depths))
	outS := make([]float64, 0, len(speeds))
	for i := range depths {
		outD = append(outD, depths[i])
		outS = append(outS, speeds[i])
		if i == len(depths)-1 {
			break
		}
		d1, d2 := depths[i], depths[i+1]
		if d2-d1 <= maxGap {
			continue
		}
		n := int((d2 - d1) / maxGap)
		for k := 0; k < n; k++ {
			nd := d1 + maxGap
			if n > 1 {
				nd += (d2 - (d1 + maxGap)) * float64(k) / float64(n-1)
			}
			nd = math.Round(nd*100) / 100
			if nd >= d2 {
				break
			}
			sv := speeds[i] + (nd-d1)*(speeds[i+1]-speeds[i])/(d2-d1)
			outD = append(outD, nd)
			outS = append(outS, sv)
		}
	}
	return outD, outS
}

// MaxAllowableSV returns the largest layer sound speed the given beam
// angles can refract through without total reflection, the reciprocal of
// the steepest ray parameter sin(angle)/ssv in the group. Angles are
// radians, signed; only the magnitude matters here.
func MaxAllowableSV(angles []float64, ssv float64) float64 {
	maxParam := 0.0
	for _, a := range angles {
		if p := math.Abs(math.Sin(a)) / ssv; p > maxParam {
			maxParam = p
		}
	}
	if maxParam == 0 {
		return math.Inf(1)
	}
	return 1 / maxParam
}

// NormalizeForSSV prepares a transducer-relative cast for one surface sound
// speed group. Layers at or beyond maxAllowedSV are cut off, with the
// terminal depth linearly interpolated to land exactly on the bound; the
// live ssv becomes the layer at depth zero, overriding any measured surface
// layer; consecutive layers with identical sound speed collapse so the
// per-layer gradient stays defined. The result is a new cast, inputs are
// not modified.
func NormalizeForSSV(depths, speeds []float64, maxAllowedSV, ssv float64) ([]float64, []float64, error) {
	d := append([]float64(nil), depths...)
	s := append([]float64(nil), speeds...)

	for i, sv := range s {
		if sv < maxAllowedSV {
			continue
		}
		if i == 0 {
			d, s = d[:0], s[:0]
			break
		}
		sv1, sv2 := s[i-1], s[i]
		d1, d2 := d[i-1], d[i]
		d = d[:i+1]
		s = s[:i+1]
		d[i] = d1 + (maxAllowedSV-sv1)*((d2-d1)/(sv2-sv1))
		s[i] = maxAllowedSV
		break
	}

	if len(d) > 0 && d[0] == 0 {
		s[0] = ssv
	} else {
		d = append([]float64{0}, d...)
		s = append([]float64{ssv}, s...)
	}

	outD := append(make([]float64, 0, len(d)), d[0])
	outS := append(make([]float64, 0, len(s)), s[0])
	for i := 1; i < len(d); i++ {
		if s[i] == outS[len(outS)-1] {
			continue
		}
		outD = append(outD, d[i])
		outS = append(outS, s[i])
	}

	if len(outD) < 2 {
		return nil, nil, fmt.Errorf("%w: %d usable layers after normalization", sonar.ErrCastDegenerate, len(outD))
	}
	for i := 1; i < len(outD); i++ {
		if outD[i] <= outD[i-1] {
			return nil, nil, fmt.Errorf("%w: depth %.3f at layer %d does not increase", sonar.ErrCastDegenerate, outD[i], i)
		}
	}
	return outD, outS, nil
}
