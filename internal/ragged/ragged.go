// Package ragged represents variable beam-count (ragged) ping/beam arrays as
// a dense structure-of-arrays with an explicit validity mask.
//
// Multibeam pings carry different beam counts, so a (ping, beam) array padded
// to the maximum beam count has holes. Earlier tooling marked the holes with
// NaN and let them flow through arithmetic; here a missing beam is a
// first-class state carried in the mask, and the numeric payload of an
// invalid slot is never read.
//
// Compact and Reform convert between the dense masked layout and a packed
// values+index form that the numeric stages iterate over.
package ragged

import "fmt"

// Array is a dense (ping, beam) float64 array with a validity mask.
// Slot (p, b) lives at index p*Beams+b in both Values and Valid.
type Array struct {
	Pings  int
	Beams  int
	Values []float64
	Valid  []bool
}

// New returns an all-invalid Array with the given dimensions.
func New(pings, beams int) Array {
	return Array{
		Pings:  pings,
		Beams:  beams,
		Values: make([]float64, pings*beams),
		Valid:  make([]bool, pings*beams),
	}
}

// At returns the value at (ping, beam) and whether the slot is valid.
func (a Array) At(ping, beam int) (float64, bool) {
	i := ping*a.Beams + beam
	return a.Values[i], a.Valid[i]
}

// Set stores a value at (ping, beam) and marks the slot valid.
func (a Array) Set(ping, beam int, v float64) {
	i := ping*a.Beams + beam
	a.Values[i] = v
	a.Valid[i] = true
}

// Invalidate marks the slot at (ping, beam) invalid and zeroes its payload.
func (a Array) Invalidate(ping, beam int) {
	i := ping*a.Beams + beam
	a.Values[i] = 0
	a.Valid[i] = false
}

// Len returns the total number of slots, valid or not.
func (a Array) Len() int { return a.Pings * a.Beams }

// CountValid returns the number of valid slots.
func (a Array) CountValid() int {
	n := 0
	for _, ok := range a.Valid {
		if ok {
			n++
		}
	}
	return n
}

// SameShape reports whether a and b have identical dimensions and masks.
// The numeric stages require their input arrays to agree exactly: a beam
// present in one array but absent in another is a dimension mismatch, not
// something to silently truncate.
func (a Array) SameShape(b Array) bool {
	if a.Pings != b.Pings || a.Beams != b.Beams {
		return false
	}
	for i := range a.Valid {
		if a.Valid[i] != b.Valid[i] {
			return false
		}
	}
	return true
}

// SlicePings returns the sub-array covering pings [p0, p1). The view shares
// backing storage with a.
func (a Array) SlicePings(p0, p1 int) Array {
	return Array{
		Pings:  p1 - p0,
		Beams:  a.Beams,
		Values: a.Values[p0*a.Beams : p1*a.Beams],
		Valid:  a.Valid[p0*a.Beams : p1*a.Beams],
	}
}

// Compact packs the valid slots into a flat value slice, returning the flat
// indices alongside so Reform can scatter results back to the original
// layout.
func (a Array) Compact() (idx []int, vals []float64) {
	n := a.CountValid()
	idx = make([]int, 0, n)
	vals = make([]float64, 0, n)
	for i, ok := range a.Valid {
		if ok {
			idx = append(idx, i)
			vals = append(vals, a.Values[i])
		}
	}
	return idx, vals
}

// Reform rebuilds a dense masked Array from packed values and the flat
// indices produced by Compact. Positions not named by idx come back invalid,
// exactly as they were before compaction.
func Reform(idx []int, vals []float64, pings, beams int) (Array, error) {
	if len(idx) != len(vals) {
		return Array{}, fmt.Errorf("reform: %d indices for %d values", len(idx), len(vals))
	}
	out := New(pings, beams)
	for k, i := range idx {
		if i < 0 || i >= len(out.Values) {
			return Array{}, fmt.Errorf("reform: index %d out of range for %dx%d array", i, pings, beams)
		}
		out.Values[i] = vals[k]
		out.Valid[i] = true
	}
	return out, nil
}

// VectorArray is a dense (ping, beam) array of 3-vectors with a validity
// mask, used for per-beam orientation vectors.
type VectorArray struct {
	Pings  int
	Beams  int
	Values [][3]float64
	Valid  []bool
}

// NewVectorArray returns an all-invalid VectorArray with the given dimensions.
func NewVectorArray(pings, beams int) VectorArray {
	return VectorArray{
		Pings:  pings,
		Beams:  beams,
		Values: make([][3]float64, pings*beams),
		Valid:  make([]bool, pings*beams),
	}
}

// At returns the vector at (ping, beam) and whether the slot is valid.
func (a VectorArray) At(ping, beam int) ([3]float64, bool) {
	i := ping*a.Beams + beam
	return a.Values[i], a.Valid[i]
}

// Set stores a vector at (ping, beam) and marks the slot valid.
func (a VectorArray) Set(ping, beam int, v [3]float64) {
	i := ping*a.Beams + beam
	a.Values[i] = v
	a.Valid[i] = true
}
