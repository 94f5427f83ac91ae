package raytrace

import (
	"fmt"
	"math"
	"sort"

	"github.com/hydrophase/svtrace/internal/monitoring"
	"github.com/hydrophase/svtrace/internal/ragged"
	"github.com/hydrophase/svtrace/internal/sonar"
)

// Chunk is one bounded run of ping records moving through sound velocity
// correction together. BeamAngle and Azimuth are radians out of beam vector
// construction, TravelTime is two-way seconds, SSV the surface sound speed
// per ping. All three beam arrays must agree in shape and validity mask.
type Chunk struct {
	PingTimes       []float64
	SSV             []float64
	BeamAngle       ragged.Array
	Azimuth         ragged.Array
	TravelTime      ragged.Array
	Cast            sonar.Cast
	WaterlineOffset float64
	Lever           sonar.LeverArm
}

// Split partitions the chunk into consecutive runs of at most maxPings
// pings, sharing the underlying arrays with the parent. Correction is
// independent per ping, so splitting changes nothing but the work
// granularity. Values below 1 return the chunk whole.
func (ch Chunk) Split(maxPings int) []Chunk {
	pings := ch.BeamAngle.Pings
	if maxPings < 1 || pings <= maxPings {
		return []Chunk{ch}
	}
	out := make([]Chunk, 0, (pings+maxPings-1)/maxPings)
	for p0 := 0; p0 < pings; p0 += maxPings {
		p1 := p0 + maxPings
		if p1 > pings {
			p1 = pings
		}
		sub := ch
		sub.SSV = ch.SSV[p0:p1]
		if ch.PingTimes != nil {
			sub.PingTimes = ch.PingTimes[p0:p1]
		}
		sub.BeamAngle = ch.BeamAngle.SlicePings(p0, p1)
		sub.Azimuth = ch.Azimuth.SlicePings(p0, p1)
		sub.TravelTime = ch.TravelTime.SlicePings(p0, p1)
		out = append(out, sub)
	}
	return out
}

// Options tunes cast repair during chunk correction.
type Options struct {
	// MaxLayerGap is the widest layer spacing tolerated before gap
	// interpolation kicks in, meters.
	MaxLayerGap float64
}

// DefaultOptions returns the stock correction options.
func DefaultOptions() Options {
	return Options{MaxLayerGap: 100.0}
}

// Stats aggregates the recoverable conditions hit while correcting a chunk,
// reported so operators can judge data quality.
type Stats struct {
	// Traced counts beams that resolved to an offset.
	Traced int
	// Clipped counts Snell updates clamped at the total reflection bound.
	Clipped int
	// AboveTransducer counts beams whose travel time ended before the
	// first cast layer.
	AboveTransducer int
	// BeyondCast counts beams whose travel time outran the cast.
	BeyondCast int
}

// OutOfRange returns the number of beams flagged instead of traced.
func (s Stats) OutOfRange() int { return s.AboveTransducer + s.BeyondCast }

// Result holds a corrected chunk: alongtrack, acrosstrack and depth offsets
// in meters relative to the transducer, a per-slot processing status, and
// the aggregate trace statistics. Beams hit by the range policy stay
// invalid in the offset arrays and keep their pre-correction status.
type Result struct {
	Along  ragged.Array
	Across ragged.Array
	Depth  ragged.Array
	Status []sonar.ProcessingStatus
	Stats  Stats
}

// CorrectChunk runs sound velocity correction over one chunk. Beams are
// partitioned by exact surface sound speed value; each partition gets its
// own normalized cast and cumulative tables, and results scatter back into
// the chunk's original (ping, beam) layout. Successfully traced beams are
// stamped StatusSoundVelocity; out-of-range beams are flagged in Stats and
// left invalid rather than defaulting to a zero offset.
func CorrectChunk(ch Chunk, opts Options) (*Result, error) {
	if err := ch.validate(); err != nil {
		return nil, err
	}

	pings, beams := ch.BeamAngle.Pings, ch.BeamAngle.Beams
	res := &Result{
		Along:  ragged.New(pings, beams),
		Across: ragged.New(pings, beams),
		Depth:  ragged.New(pings, beams),
		Status: make([]sonar.ProcessingStatus, pings*beams),
	}
	for i, ok := range ch.BeamAngle.Valid {
		if ok {
			res.Status[i] = sonar.StatusBeamVector
		}
	}

	baseDepths, baseSpeeds := ShiftToTransducer(ch.Cast, ch.WaterlineOffset)
	if opts.MaxLayerGap > 0 {
		baseDepths, baseSpeeds = InterpolateGaps(baseDepths, baseSpeeds, opts.MaxLayerGap)
	}

	for _, ssv := range ch.uniqueSSV() {
		slots, angles := ch.groupForSSV(ssv)
		if len(slots) == 0 {
			continue
		}

		depths, speeds, err := NormalizeForSSV(baseDepths, baseSpeeds, MaxAllowableSV(angles, ssv), ssv)
		if err != nil {
			return nil, fmt.Errorf("cast %q, ssv %.2f: %w", ch.Cast.Name, ssv, err)
		}
		tables := BuildTables(depths, speeds, angles)
		res.Stats.Clipped += tables.Clipped

		for j, slot := range slots {
			owtt := ch.TravelTime.Values[slot] / 2
			h, d, flag := tables.Lookup(j, owtt)
			switch flag {
			case AboveTransducer:
				res.Stats.AboveTransducer++
				continue
			case BeyondCast:
				res.Stats.BeyondCast++
				continue
			}

			p, b := slot/beams, slot%beams
			az := ch.Azimuth.Values[slot]
			res.Across.Set(p, b, math.Abs(h)*math.Sin(az)+ch.Lever.Across)
			res.Along.Set(p, b, math.Abs(h)*math.Cos(az)+ch.Lever.Along)
			res.Depth.Set(p, b, d+ch.Lever.Down)
			res.Status[slot] = sonar.StatusSoundVelocity
			res.Stats.Traced++
		}
	}

	if n := res.Stats.OutOfRange(); n > 0 {
		monitoring.Logf("cast %q: %d beam(s) with travel time outside cast coverage, flagged",
			ch.Cast.Name, n)
	}
	if res.Stats.Clipped > 0 {
		monitoring.Logf("cast %q: %d Snell update(s) clipped at the total reflection bound",
			ch.Cast.Name, res.Stats.Clipped)
	}
	return res, nil
}

// uniqueSSV returns the distinct surface sound speed values in ascending
// order, so partition processing is deterministic.
func (ch Chunk) uniqueSSV() []float64 {
	seen := make(map[float64]struct{}, len(ch.SSV))
	out := make([]float64, 0, len(ch.SSV))
	for _, v := range ch.SSV {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

// groupForSSV collects the flat slot indices and launch angles of every
// valid beam belonging to pings with the given surface sound speed.
func (ch Chunk) groupForSSV(ssv float64) (slots []int, angles []float64) {
	beams := ch.BeamAngle.Beams
	for p, v := range ch.SSV {
		if v != ssv {
			continue
		}
		for b := 0; b < beams; b++ {
			i := p*beams + b
			if !ch.BeamAngle.Valid[i] {
				continue
			}
			slots = append(slots, i)
			angles = append(angles, ch.BeamAngle.Values[i])
		}
	}
	return slots, angles
}

func (ch Chunk) validate() error {
	pings := ch.BeamAngle.Pings
	if len(ch.SSV) != pings {
		return fmt.Errorf("%w: %d ssv values for %d pings", sonar.ErrDimensionMismatch, len(ch.SSV), pings)
	}
	if ch.PingTimes != nil && len(ch.PingTimes) != pings {
		return fmt.Errorf("%w: %d ping times for %d pings", sonar.ErrDimensionMismatch, len(ch.PingTimes), pings)
	}
	if !ch.BeamAngle.SameShape(ch.Azimuth) {
		return fmt.Errorf("%w: beam angle and azimuth arrays differ", sonar.ErrDimensionMismatch)
	}
	if !ch.BeamAngle.SameShape(ch.TravelTime) {
		return fmt.Errorf("%w: beam angle and travel time arrays differ", sonar.ErrDimensionMismatch)
	}
	if len(ch.Cast.Depths) != len(ch.Cast.SoundSpeeds) {
		return fmt.Errorf("%w: cast %q has %d depths for %d sound speeds",
			sonar.ErrDimensionMismatch, ch.Cast.Name, len(ch.Cast.Depths), len(ch.Cast.SoundSpeeds))
	}
	return nil
}
