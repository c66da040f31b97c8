package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// AssetClass is the category a source file belongs to. It selects the pipeline applied to the file.
type AssetClass uint8

const (
	// AssetClassNone marks tasks that do not process a particular kind of source file.
	AssetClassNone AssetClass = iota
	// AssetClassMarkup covers HTML documents.
	AssetClassMarkup
	// AssetClassStylesheet covers Sass and CSS sources.
	AssetClassStylesheet
	// AssetClassScript covers JavaScript and TypeScript sources.
	AssetClassScript
	// AssetClassImage covers raster and vector images.
	AssetClassImage
	// AssetClassFont covers web font files.
	AssetClassFont
	// AssetClassStaticCopy covers every other file under the source root.
	AssetClassStaticCopy
)

var assetClassNames = [...]string{
	AssetClassNone:       "none",
	AssetClassMarkup:     "markup",
	AssetClassStylesheet: "stylesheet",
	AssetClassScript:     "script",
	AssetClassImage:      "image",
	AssetClassFont:       "font",
	AssetClassStaticCopy: "static",
}

// AssetClasses returns the classes a file can be classified as, in rule order.
func AssetClasses() []AssetClass {
	return []AssetClass{
		AssetClassMarkup,
		AssetClassStylesheet,
		AssetClassScript,
		AssetClassFont,
		AssetClassImage,
		AssetClassStaticCopy,
	}
}

func (c AssetClass) String() string {
	if int(c) < len(assetClassNames) {
		return assetClassNames[c]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (c AssetClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *AssetClass) UnmarshalText(text []byte) error {
	parsed, err := ParseAssetClass(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseAssetClass converts a configuration value into an AssetClass.
// The empty string yields AssetClassNone.
func ParseAssetClass(s string) (AssetClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return AssetClassNone, nil
	case "markup", "html":
		return AssetClassMarkup, nil
	case "stylesheet", "style", "css":
		return AssetClassStylesheet, nil
	case "script", "js":
		return AssetClassScript, nil
	case "image", "img":
		return AssetClassImage, nil
	case "font":
		return AssetClassFont, nil
	case "static", "staticcopy", "copy":
		return AssetClassStaticCopy, nil
	default:
		return AssetClassNone, zerr.With(zerr.Wrap(ErrUnknownAssetClass, "parse asset class"), "class", s)
	}
}
