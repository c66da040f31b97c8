package transform

import (
	"slices"
	"strconv"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/zerr"
)

// resolveOptions validates with against the options of tool and fills in defaults.
func resolveOptions(tool domain.ToolSpec, with map[string]string) (map[string]string, error) {
	resolved := make(map[string]string, len(tool.Options))
	for name, spec := range tool.Options {
		if spec.Default != "" {
			resolved[name] = spec.Default
		}
	}

	for name, value := range with {
		if _, ok := tool.Options[name]; !ok {
			err := zerr.With(zerr.Wrap(domain.ErrInvalidToolOption, "unknown option"), "tool", tool.Name)
			return nil, zerr.With(err, "option", name)
		}
		resolved[name] = value
	}

	for name, value := range resolved {
		if err := checkOption(tool.Options[name], value); err != nil {
			err = zerr.With(zerr.With(err, "tool", tool.Name), "option", name)
			return nil, zerr.With(err, "value", value)
		}
	}
	return resolved, nil
}

func checkOption(spec domain.OptionSpec, value string) error {
	switch spec.Type {
	case domain.OptionBool:
		if _, err := strconv.ParseBool(value); err != nil {
			return zerr.Wrap(domain.ErrInvalidToolOption, "expected a boolean")
		}
	case domain.OptionInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return zerr.Wrap(domain.ErrInvalidToolOption, "expected an integer")
		}
		if spec.Min != nil && n < *spec.Min {
			return zerr.With(zerr.Wrap(domain.ErrInvalidToolOption, "below minimum"), "min", *spec.Min)
		}
		if spec.Max != nil && n > *spec.Max {
			return zerr.With(zerr.Wrap(domain.ErrInvalidToolOption, "above maximum"), "max", *spec.Max)
		}
	case domain.OptionEnum:
		if !slices.Contains(spec.Values, value) {
			return zerr.With(zerr.Wrap(domain.ErrInvalidToolOption, "not an allowed value"), "allowed", spec.Values)
		}
	case domain.OptionString:
	}
	return nil
}
