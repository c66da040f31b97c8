// Package classifier maps source paths to asset classes.
package classifier

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/zerr"
)

// DefaultRules returns the built-in classification rules in evaluation order.
// They match regardless of case. Anything under the source root that matches no rule is static.
func DefaultRules() []domain.ClassRule {
	return []domain.ClassRule{
		{Class: domain.AssetClassMarkup, Patterns: []string{"**/*.{html,htm}"}},
		{Class: domain.AssetClassStylesheet, Patterns: []string{"**/*.{scss,sass,css}"}},
		{Class: domain.AssetClassScript, Patterns: []string{"**/*.{js,mjs,cjs,ts}"}},
		{Class: domain.AssetClassFont, Patterns: []string{"**/*.{woff,woff2,ttf,eot,otf}"}},
		{Class: domain.AssetClassImage, Patterns: []string{"**/*.{png,jpg,jpeg,svg,gif,webp,avif}"}},
	}
}

// Classifier is a pure function from a path to its asset class.
type Classifier struct {
	source string
	rules  []rule
}

// rule is a class rule; built-in rules ignore the case of the path.
type rule struct {
	class    domain.AssetClass
	patterns []string
	fold     bool
}

// New builds a classifier for the given source root.
// An override replaces the patterns of its class and keeps the class's position in the rule order;
// overrides for classes without a default rule are appended before the catch-all.
func New(source string, overrides []domain.ClassRule) (*Classifier, error) {
	defaults := DefaultRules()
	rules := make([]rule, len(defaults))
	for i, d := range defaults {
		rules[i] = rule{class: d.Class, patterns: d.Patterns, fold: true}
	}

	for _, o := range overrides {
		if o.Class == domain.AssetClassNone {
			return nil, zerr.With(zerr.Wrap(domain.ErrUnknownAssetClass, "classifier rule"), "class", o.Class.String())
		}
		override := rule{class: o.Class, patterns: slices.Clone(o.Patterns)}
		idx := slices.IndexFunc(rules, func(r rule) bool { return r.class == o.Class })
		if idx < 0 {
			rules = append(rules, override)
			continue
		}
		rules[idx] = override
	}

	for _, r := range rules {
		for _, p := range r.patterns {
			if !doublestar.ValidatePattern(p) {
				err := zerr.With(zerr.Wrap(domain.ErrInvalidPattern, "classifier rule"), "pattern", p)
				return nil, zerr.With(err, "class", r.class.String())
			}
		}
	}

	return &Classifier{source: filepath.Clean(source), rules: rules}, nil
}

// Classify returns the asset class of path.
// Relative paths are taken relative to the source root. Paths outside the
// source root yield ErrUnclassifiedPath, which callers treat as a warning.
func (c *Classifier) Classify(path string) (domain.AssetClass, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.source, path)
	}
	rel, err := filepath.Rel(c.source, filepath.Clean(path))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return domain.AssetClassNone, zerr.With(zerr.Wrap(domain.ErrUnclassifiedPath, "classify"), "path", path)
	}

	slashed := filepath.ToSlash(rel)
	folded := strings.ToLower(slashed)
	for _, r := range c.rules {
		name := slashed
		if r.fold {
			name = folded
		}
		for _, p := range r.patterns {
			if ok, _ := doublestar.Match(p, name); ok {
				return r.class, nil
			}
		}
	}
	return domain.AssetClassStaticCopy, nil
}
