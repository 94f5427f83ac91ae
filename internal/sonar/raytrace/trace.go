package raytrace

import "math"

// RangeFlag classifies where a beam's one-way travel time fell relative to
// the cast's cumulative time coverage.
type RangeFlag uint8

const (
	// InRange means the travel time was bracketed by two cast layers.
	InRange RangeFlag = iota
	// AboveTransducer means the travel time ended before the first layer.
	AboveTransducer
	// BeyondCast means the travel time outran the deepest layer.
	BeyondCast
)

// Tables holds the cumulative ray tables for one normalized cast and one
// group of beam launch angles. Depth is per layer and shared by every beam;
// Horizontal and RayTime are per (layer, beam) because each beam refracts
// through the layers at its own angle. Clipped counts Snell updates that
// left the valid sine domain and were clamped, rays past total reflection
// whose deeper layers are meaningless but intentionally non-fatal.
type Tables struct {
	Depth      []float64
	Horizontal [][]float64
	RayTime    [][]float64
	Clipped    int
}

// BuildTables propagates each launch angle through the cast layer by layer.
// At each boundary the incidence angle follows Snell's law,
// sin(next) = (c2/c1) * sin(prev), clamped to [-1, 1]; within a layer the
// ray runs straight, contributing depth*tan(angle) horizontally and
// raydist/c to the cumulative time. Angles are radians, signed, negative
// angles accumulate negative horizontal distance.
func BuildTables(depths, speeds, angles []float64) *Tables {
	layers := len(speeds)
	beams := len(angles)

	t := &Tables{
		Depth:      make([]float64, layers),
		Horizontal: make([][]float64, layers),
		RayTime:    make([][]float64, layers),
	}
	t.Horizontal[0] = make([]float64, beams)
	t.RayTime[0] = make([]float64, beams)

	ang := append([]float64(nil), angles...)
	for i := 1; i < layers; i++ {
		dd := depths[i] - depths[i-1]
		t.Depth[i] = t.Depth[i-1] + dd
		t.Horizontal[i] = make([]float64, beams)
		t.RayTime[i] = make([]float64, beams)

		ratio := speeds[i] / speeds[i-1]
		for b, a := range ang {
			across := dd * math.Tan(a)
			rayDist := math.Sqrt(dd*dd + across*across)
			t.Horizontal[i][b] = t.Horizontal[i-1][b] + across
			t.RayTime[i][b] = t.RayTime[i-1][b] + rayDist/speeds[i-1]

			sin := ratio * math.Sin(a)
			if sin > 1 {
				sin = 1
				t.Clipped++
			} else if sin < -1 {
				sin = -1
				t.Clipped++
			}
			ang[b] = math.Asin(sin)
		}
	}
	return t
}

// Layers returns the number of cast layers in the tables.
func (t *Tables) Layers() int { return len(t.Depth) }

// Lookup interpolates the horizontal distance and depth reached by beam b
// after the given one-way travel time. The bracketing layer is the first
// whose cumulative ray time reaches the target; the fractional position of
// the target between the bracketing cumulative times interpolates both
// outputs. Travel times outside the cast's coverage return a non-zero
// RangeFlag and no offsets.
func (t *Tables) Lookup(b int, owtt float64) (horizontal, depth float64, flag RangeFlag) {
	k := -1
	for i := range t.RayTime {
		if t.RayTime[i][b] >= owtt {
			k = i
			break
		}
	}
	if k < 0 {
		return 0, 0, BeyondCast
	}
	if k == 0 {
		return 0, 0, AboveTransducer
	}

	t1, t2 := t.RayTime[k-1][b], t.RayTime[k][b]
	f := (owtt - t1) / (t2 - t1)
	horizontal = t.Horizontal[k-1][b] + f*(t.Horizontal[k][b]-t.Horizontal[k-1][b])
	depth = t.Depth[k-1] + f*(t.Depth[k]-t.Depth[k-1])
	return horizontal, depth, InRange
}
