// Package output creates termenv outputs with forge's colour policy.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// Target is the kind of stream an output writes to.
type Target int

const (
	// Terminal is an interactive terminal; its capabilities are detected.
	Terminal Target = iota
	// Log is a CI log or a pipe; basic ANSI colours are used.
	Log
)

// Profile returns the colour profile for target. A non-empty NO_COLOR disables colour.
func Profile(target Target) termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	if target == Log {
		return termenv.ANSI
	}
	return termenv.EnvColorProfile()
}

// New returns an output for w using the profile of target. A nil w writes to stderr.
func New(w io.Writer, target Target, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}

	opts = append(opts,
		termenv.WithProfile(Profile(target)),
		termenv.WithTTY(true),
	)
	return termenv.NewOutput(w, opts...)
}
