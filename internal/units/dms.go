package units

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// dmsSplit separates a DMS string on any run of characters that is neither a
// word character nor a minus sign, so "37:35:23", "37 35 23.5" and
// "-076:06:35" all split the same way.
var dmsSplit = regexp.MustCompile(`[^\w-]+`)

var dmsDirections = map[string]float64{"N": 1, "E": 1, "S": -1, "W": -1}

// DMSToDecimal converts degrees-minutes-seconds to decimal degrees. The sign
// of the degrees field carries through to the result.
func DMSToDecimal(deg, min, sec float64) float64 {
	sign := 1.0
	if deg < 0 {
		sign = -1.0
	}
	return sign * (abs(deg) + min/60.0 + sec/3600.0)
}

// DecimalToDMS converts decimal degrees to degrees, minutes and seconds.
// Degrees carry the sign; minutes and seconds are non-negative.
func DecimalToDMS(dd float64) (deg, min, sec float64) {
	a := abs(dd)
	deg = float64(int(a))
	rem := (a - deg) * 60.0
	min = float64(int(rem))
	sec = (rem - min) * 60.0
	if dd < 0 {
		deg = -deg
	}
	return deg, min, sec
}

// ParseDMS parses a degrees-minutes-seconds string in the formats that
// appear in cast file headers and returns decimal degrees:
//
//	"80:38:06.57 W"
//	"80:38:06.57W"
//	"-80:38:06.57"
//	"-80:38:06"
//
// A direction letter (N/E/S/W), attached or space-separated, supplies the
// sign when the degrees field itself is unsigned.
func ParseDMS(dms string) (float64, error) {
	parts := dmsSplit.Split(strings.TrimSpace(dms), -1)
	if len(parts) == 0 || parts[0] == "" {
		return 0, fmt.Errorf("empty dms string %q", dms)
	}

	direction := 1.0
	last := parts[len(parts)-1]
	if d, ok := dmsDirections[last]; ok {
		// direction with a separator, ex: "80:38:06.57 W"
		direction = d
		parts = parts[:len(parts)-1]
	} else if len(last) > 0 {
		if d, ok := dmsDirections[strings.ToUpper(last[len(last)-1:])]; ok {
			// direction attached to the seconds field, ex: "80:38:06.57W"
			direction = d
			parts[len(parts)-1] = last[:len(last)-1]
		}
	}

	if len(parts) != 3 && len(parts) != 4 {
		return 0, fmt.Errorf("unrecognized dms string %q", dms)
	}

	deg, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("dms degrees %q: %w", parts[0], err)
	}
	min, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("dms minutes %q: %w", parts[1], err)
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("dms seconds %q: %w", parts[2], err)
	}
	if len(parts) == 4 {
		// fractional seconds split off as a fourth field, ex: "-80:38:06.57"
		frac, err := strconv.ParseFloat(parts[3], 64)
		if err != nil {
			return 0, fmt.Errorf("dms fractional seconds %q: %w", parts[3], err)
		}
		sec += frac / math.Pow10(len(parts[3]))
	}

	dd := DMSToDecimal(deg, min, sec)
	if deg >= 0 {
		// sign only came from the direction letter, if any
		dd *= direction
	}
	return dd, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
