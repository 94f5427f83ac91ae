// Package monitoring carries the processing diagnostics channel: recoverable
// conditions worth an operator's attention, like clipped rays or beams whose
// travel time fell outside cast coverage, that are flagged rather than
// returned as errors.
package monitoring

import "log"

// Logf emits one diagnostic line. It defaults to log.Printf; SetLogger swaps
// it out, which the CLI uses for -quiet and tests use to capture output.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. A nil f mutes diagnostics entirely.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
