// Package detector chooses between the interactive and the line-oriented renderer.
package detector

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// OutputMode represents the rendering mode for the application.
type OutputMode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModeTUI forces the interactive TUI renderer.
	ModeTUI
	// ModeLinear forces the linear renderer.
	ModeLinear
)

// ciVariables are set by common CI providers.
var ciVariables = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "BUILDKITE", "JENKINS_URL"}

func (m OutputMode) String() string {
	switch m {
	case ModeTUI:
		return "tui"
	case ModeLinear:
		return "linear"
	default:
		return "auto"
	}
}

// DetectEnvironment returns the recommended output mode for the current process.
func DetectEnvironment() OutputMode {
	return Detect(term.IsTerminal(int(os.Stdout.Fd())), os.Getenv)
}

// Detect returns ModeLinear when output is not a terminal or a CI provider is detected.
func Detect(isTTY bool, getenv func(string) string) OutputMode {
	if !isTTY || IsCI(getenv) {
		return ModeLinear
	}
	return ModeTUI
}

// IsCI reports whether any known CI variable is set to a truthy value.
func IsCI(getenv func(string) string) bool {
	for _, name := range ciVariables {
		switch strings.ToLower(getenv(name)) {
		case "", "0", "false", "no":
			continue
		default:
			return true
		}
	}
	return false
}

// ResolveMode applies the user's choice to the detected mode.
// userFlag is one of "auto", "tui", "linear" or "ci"; forceCI wins over everything.
func ResolveMode(autoDetected OutputMode, userFlag string, forceCI bool) OutputMode {
	if forceCI {
		return ModeLinear
	}
	switch userFlag {
	case "tui":
		return ModeTUI
	case "linear", "ci":
		return ModeLinear
	default:
		return autoDetected
	}
}
