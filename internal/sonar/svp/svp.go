// Package svp reads sound velocity profile cast files: a line-oriented ASCII
// format with a version marker, a display name, and one or more Section
// blocks, each holding the cast time, the cast location in
// degrees:minutes:seconds, and whitespace-separated depth/soundspeed rows.
//
//	[SVP_VERSION_2]
//	2016_288_021224.svp
//	Section 2016-288 02:12 37:35:23 -076:06:35
//	0.031 1487.07
//	1.031 1489.17
//
// A file may carry several Section blocks; each becomes its own cast. Any
// malformed content aborts the whole load, partial results are never
// returned.
package svp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hydrophase/svtrace/internal/sonar"
	"github.com/hydrophase/svtrace/internal/timeutil"
	"github.com/hydrophase/svtrace/internal/units"
)

// File is a parsed cast file.
type File struct {
	Version string
	Name    string
	Casts   []sonar.Cast
}

// Load reads and parses the cast file at path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cast file: %w", err)
	}
	defer f.Close()
	file, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return file, nil
}

// Parse reads a cast file from r.
func Parse(r io.Reader) (*File, error) {
	sc := bufio.NewScanner(r)

	lines := make([]string, 0, 256)
	for sc.Scan() {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read cast file: %w", err)
	}
	if len(lines) < 3 {
		return nil, fmt.Errorf("%w: expected version, name and at least one section", sonar.ErrCastFormat)
	}

	out := &File{
		Version: lines[0],
		Name:    lines[1],
	}
	if !strings.HasPrefix(out.Version, "[SVP_VERSION") {
		return nil, fmt.Errorf("%w: first line %q is not a version marker", sonar.ErrCastFormat, out.Version)
	}

	body := lines[2:]
	if !isSectionHeader(body[0]) {
		return nil, fmt.Errorf("%w: expected Section header, got %q", sonar.ErrCastFormat, body[0])
	}

	start := 0
	for i := 1; i <= len(body); i++ {
		if i < len(body) && !isSectionHeader(body[i]) {
			continue
		}
		cast, err := parseSection(body[start:i], len(out.Casts)+1, out.Name)
		if err != nil {
			return nil, err
		}
		out.Casts = append(out.Casts, cast)
		start = i
	}
	return out, nil
}

func isSectionHeader(line string) bool {
	return strings.HasPrefix(line, "Section ")
}

// parseSection parses one Section header plus its depth/soundspeed rows.
func parseSection(lines []string, ordinal int, fileName string) (sonar.Cast, error) {
	fields := strings.Fields(lines[0])
	if len(fields) < 5 {
		return sonar.Cast{}, fmt.Errorf("%w: short Section header %q", sonar.ErrCastFormat, lines[0])
	}

	ts, err := parseSectionTime(fields[1], fields[2])
	if err != nil {
		return sonar.Cast{}, err
	}
	lat, err := units.ParseDMS(fields[3])
	if err != nil {
		return sonar.Cast{}, fmt.Errorf("%w: latitude %q: %v", sonar.ErrCastFormat, fields[3], err)
	}
	lon, err := units.ParseDMS(fields[4])
	if err != nil {
		return sonar.Cast{}, fmt.Errorf("%w: longitude %q: %v", sonar.ErrCastFormat, fields[4], err)
	}

	cast := sonar.Cast{
		Name:      fmt.Sprintf("%s_%d", strings.TrimSuffix(fileName, filepath.Ext(fileName)), ordinal),
		Time:      ts,
		Latitude:  lat,
		Longitude: lon,
	}

	type layer struct{ depth, sv float64 }
	layers := make([]layer, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		cols := strings.Fields(line)
		if len(cols) < 2 {
			return sonar.Cast{}, fmt.Errorf("%w: profile row %q", sonar.ErrCastFormat, line)
		}
		depth, err := strconv.ParseFloat(cols[0], 64)
		if err != nil {
			return sonar.Cast{}, fmt.Errorf("%w: depth %q", sonar.ErrCastFormat, cols[0])
		}
		sv, err := strconv.ParseFloat(cols[1], 64)
		if err != nil {
			return sonar.Cast{}, fmt.Errorf("%w: soundspeed %q", sonar.ErrCastFormat, cols[1])
		}
		layers = append(layers, layer{depth, sv})
	}
	if len(layers) == 0 {
		return sonar.Cast{}, fmt.Errorf("%w: section %q has no profile rows", sonar.ErrCastFormat, fields[1])
	}

	// A zero-depth layer mirroring the shallowest sample covers the case of
	// a transducer above the first measured depth.
	if layers[0].depth != 0 {
		layers = append([]layer{{0, layers[0].sv}}, layers...)
	}
	sort.SliceStable(layers, func(i, j int) bool { return layers[i].depth < layers[j].depth })

	cast.Depths = make([]float64, 0, len(layers))
	cast.SoundSpeeds = make([]float64, 0, len(layers))
	for _, l := range layers {
		// Duplicate depths collapse to the last sample at that depth.
		if n := len(cast.Depths); n > 0 && cast.Depths[n-1] == l.depth {
			cast.SoundSpeeds[n-1] = l.sv
			continue
		}
		cast.Depths = append(cast.Depths, l.depth)
		cast.SoundSpeeds = append(cast.SoundSpeeds, l.sv)
	}
	return cast, nil
}

// parseSectionTime converts the yyyy-jjj julian date and HH:MM[:SS] clock
// fields into a UTC timestamp in seconds.
func parseSectionTime(jdate, clock string) (float64, error) {
	dparts := strings.Split(jdate, "-")
	if len(dparts) != 2 {
		return 0, fmt.Errorf("%w: julian date %q", sonar.ErrCastFormat, jdate)
	}
	year, err := strconv.Atoi(dparts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: year %q", sonar.ErrCastFormat, dparts[0])
	}
	yday, err := strconv.Atoi(dparts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: day of year %q", sonar.ErrCastFormat, dparts[1])
	}

	tparts := strings.Split(clock, ":")
	if len(tparts) != 2 && len(tparts) != 3 {
		return 0, fmt.Errorf("%w: timestamp %q", sonar.ErrCastFormat, clock)
	}
	hhmmss := make([]int, 3)
	for i, p := range tparts {
		hhmmss[i], err = strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("%w: timestamp %q", sonar.ErrCastFormat, clock)
		}
	}

	ts, err := timeutil.JulianDayTimestamp(year, yday, hhmmss[0], hhmmss[1], float64(hhmmss[2]))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", sonar.ErrCastFormat, err)
	}
	return ts, nil
}
