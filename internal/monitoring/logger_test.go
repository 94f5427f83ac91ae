package monitoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer SetLogger(original)

	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})
	Logf("cast %q: %d beam(s) flagged", "2016_288_021224_1", 3)
	require.Equal(t, []string{`cast "2016_288_021224_1": 3 beam(s) flagged`}, got)

	// A nil logger mutes diagnostics instead of panicking.
	SetLogger(nil)
	Logf("dropped")
	assert.Len(t, got, 1)
}

func TestLogfDefault(t *testing.T) {
	assert.NotNil(t, Logf)
}
