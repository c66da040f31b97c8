package transform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/forge/internal/adapters/transform"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/forge/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func siteTools() map[string]domain.ToolSpec {
	return map[string]domain.ToolSpec{
		"sass": {
			Name:    "sass",
			Command: []string{"sass", "{{.Input}}", "{{.OutputDir}}/css/main.css", "--style={{.Options.style}}"},
			Options: map[string]domain.OptionSpec{
				"style": {Type: domain.OptionEnum, Values: []string{"expanded", "compressed"}, Default: "expanded"},
			},
		},
		"imagemin": {
			Name:    "imagemin",
			Command: []string{"imagemin", "$INPUTS", "--quality={{.Options.quality}}"},
			Options: map[string]domain.OptionSpec{
				"quality":     {Type: domain.OptionInt, Min: intPtr(1), Max: intPtr(100), Default: "75"},
				"progressive": {Type: domain.OptionBool},
			},
		},
		"broken": {
			Name:    "broken",
			Command: []string{"broken", "{{.Input"},
		},
	}
}

func TestFactory_NewStep(t *testing.T) {
	ctrl := gomock.NewController(t)
	factory := newFactory(mocks.NewMockExecutor(ctrl))
	project := newSite(t)
	project.Tools = siteTools()

	tests := []struct {
		uses string
		with map[string]string
		name string
	}{
		{uses: "copy", name: "copy"},
		{uses: "copy", with: map[string]string{"to": "fonts"}, name: "copy"},
		{uses: "clean", name: "clean"},
		{uses: "clean", with: map[string]string{"path": "css"}, name: "clean"},
		{uses: "cache-clear", name: "cache-clear"},
		{uses: "filter", with: map[string]string{"include": "**/*.png, **/*.jpg"}, name: "filter"},
		{uses: "sass", name: "sass"},
		{uses: "imagemin", with: map[string]string{"quality": "100", "progressive": "true"}, name: "imagemin"},
	}

	for _, tt := range tests {
		t.Run(tt.uses, func(t *testing.T) {
			step, err := factory.NewStep(ports.StepContext{
				Project: project,
				Mode:    domain.ModeDevelopment,
				Spec:    domain.StepSpec{Uses: tt.uses, With: tt.with},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.name, step.Name())
		})
	}
}

func TestFactory_NewStep_Errors(t *testing.T) {
	tests := []struct {
		name        string
		spec        domain.StepSpec
		expectedErr error
	}{
		{
			name:        "unknown tool",
			spec:        domain.StepSpec{Uses: "webpack"},
			expectedErr: domain.ErrUnknownStepKind,
		},
		{
			name:        "unknown tool option",
			spec:        domain.StepSpec{Uses: "sass", With: map[string]string{"sourcemap": "true"}},
			expectedErr: domain.ErrInvalidToolOption,
		},
		{
			name:        "enum value",
			spec:        domain.StepSpec{Uses: "sass", With: map[string]string{"style": "nested"}},
			expectedErr: domain.ErrInvalidToolOption,
		},
		{
			name:        "int not a number",
			spec:        domain.StepSpec{Uses: "imagemin", With: map[string]string{"quality": "high"}},
			expectedErr: domain.ErrInvalidToolOption,
		},
		{
			name:        "int above maximum",
			spec:        domain.StepSpec{Uses: "imagemin", With: map[string]string{"quality": "101"}},
			expectedErr: domain.ErrInvalidToolOption,
		},
		{
			name:        "int below minimum",
			spec:        domain.StepSpec{Uses: "imagemin", With: map[string]string{"quality": "0"}},
			expectedErr: domain.ErrInvalidToolOption,
		},
		{
			name:        "bool",
			spec:        domain.StepSpec{Uses: "imagemin", With: map[string]string{"progressive": "sometimes"}},
			expectedErr: domain.ErrInvalidToolOption,
		},
		{
			name:        "unparsable argument template",
			spec:        domain.StepSpec{Uses: "broken"},
			expectedErr: domain.ErrInvalidToolSpec,
		},
		{
			name:        "unknown built-in option",
			spec:        domain.StepSpec{Uses: "copy", With: map[string]string{"from": "x"}},
			expectedErr: domain.ErrInvalidToolOption,
		},
		{
			name:        "filter without include",
			spec:        domain.StepSpec{Uses: "filter"},
			expectedErr: domain.ErrInvalidToolOption,
		},
		{
			name:        "filter with invalid pattern",
			spec:        domain.StepSpec{Uses: "filter", With: map[string]string{"include": "img/[.png"}},
			expectedErr: domain.ErrInvalidPattern,
		},
		{
			name:        "copy outside the output",
			spec:        domain.StepSpec{Uses: "copy", With: map[string]string{"to": "../elsewhere"}},
			expectedErr: domain.ErrOutputPathOutsideRoot,
		},
		{
			name:        "clean outside the root",
			spec:        domain.StepSpec{Uses: "clean", With: map[string]string{"path": "../.."}},
			expectedErr: domain.ErrOutputPathOutsideRoot,
		},
		{
			name:        "clean of the root",
			spec:        domain.StepSpec{Uses: "clean", With: map[string]string{"path": ".."}},
			expectedErr: domain.ErrOutputPathOutsideRoot,
		},
		{
			name:        "clean of an absolute path",
			spec:        domain.StepSpec{Uses: "clean", With: map[string]string{"path": "/etc"}},
			expectedErr: domain.ErrOutputPathOutsideRoot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			factory := newFactory(mocks.NewMockExecutor(ctrl))
			project := newSite(t)
			project.Tools = siteTools()

			step, err := factory.NewStep(ports.StepContext{Project: project, Spec: tt.spec})
			require.ErrorIs(t, err, tt.expectedErr)
			assert.True(t, domain.IsConfigurationError(err))
			assert.Nil(t, step)
		})
	}
}

func TestFactory_NewStep_CleanContainingSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	factory := newFactory(mocks.NewMockExecutor(ctrl))
	project := newSite(t)
	// Output directory that contains the sources.
	project.Layout = domain.NewLayout(project.Layout.Root, "site/src", "site")

	_, err := factory.NewStep(ports.StepContext{Project: project, Spec: domain.StepSpec{Uses: transform.StepClean}})
	require.ErrorIs(t, err, domain.ErrOutputPathOutsideRoot)
}
