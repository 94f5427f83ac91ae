package sonar

import "errors"

// Sentinel errors for the sound-velocity correction stage. Callers match
// them with errors.Is; the wrapping message carries the file/chunk context.
var (
	// ErrCastFormat reports an unparsable cast file or section header. A
	// format error aborts the whole file load; no partial cast list is
	// returned.
	ErrCastFormat = errors.New("cast file format invalid")

	// ErrCastDegenerate reports a cast that has fewer than two usable layers
	// after normalization, or layer depths that are not strictly increasing.
	ErrCastDegenerate = errors.New("cast degenerate after normalization")

	// ErrDimensionMismatch reports beam arrays whose shapes disagree. The
	// enclosing chunk's sound-velocity stage is aborted rather than
	// truncating data to the shortest array.
	ErrDimensionMismatch = errors.New("beam array dimensions disagree")

	// ErrInvalidComposition reports a rotation combine where neither operand
	// has a single time sample to broadcast.
	ErrInvalidComposition = errors.New("rotation composition requires exactly one single-sample operand")
)
