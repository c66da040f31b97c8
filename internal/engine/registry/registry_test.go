package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/forge/internal/core/ports/mocks"
	"go.trai.ch/forge/internal/engine/registry"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func newProject(t *testing.T, tasks ...*domain.Task) *domain.Project {
	t.Helper()
	g := domain.NewGraph()
	for _, tk := range tasks {
		require.NoError(t, g.AddTask(tk))
	}
	require.NoError(t, g.Validate())
	return &domain.Project{Graph: g, Pipelines: map[domain.AssetClass][]domain.StepSpec{}}
}

func namedStep(ctrl *gomock.Controller, name string) *mocks.MockTransformStep {
	s := mocks.NewMockTransformStep(ctrl)
	s.EXPECT().Name().Return(name).AnyTimes()
	return s
}

func stepNames(steps []ports.TransformStep) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Name()
	}
	return out
}

func TestRegistry_StepsFor(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := registry.New()

	compile := namedStep(ctrl, "sass")
	prefix := namedStep(ctrl, "autoprefixer")
	r.Register(domain.AssetClassStylesheet, compile, prefix)

	assert.Equal(t, []string{"sass", "autoprefixer"}, stepNames(r.StepsFor(domain.AssetClassStylesheet)))
	assert.Empty(t, r.StepsFor(domain.AssetClassFont))

	sass := domain.Task{Name: domain.NewInternedString("sass"), Class: domain.AssetClassStylesheet}
	assert.Equal(t, []string{"sass", "autoprefixer"}, stepNames(r.StepsForTask(sass)))

	r.Bind(sass.Name, namedStep(ctrl, "lightningcss"))
	assert.Equal(t, []string{"lightningcss"}, stepNames(r.StepsForTask(sass)))
}

func TestBuild(t *testing.T) {
	ctrl := gomock.NewController(t)
	factory := mocks.NewMockStepFactory(ctrl)

	clean := &domain.Task{
		Name:  domain.NewInternedString("clean"),
		Steps: []domain.StepSpec{{Uses: "clean"}},
	}
	sass := &domain.Task{
		Name:         domain.NewInternedString("sass"),
		Dependencies: []domain.InternedString{clean.Name},
		Class:        domain.AssetClassStylesheet,
	}
	project := newProject(t, clean, sass)
	project.Pipelines[domain.AssetClassStylesheet] = []domain.StepSpec{{Uses: "sass"}, {Uses: "postcss"}}

	factory.EXPECT().NewStep(gomock.Any()).DoAndReturn(func(sc ports.StepContext) (ports.TransformStep, error) {
		assert.Equal(t, domain.ModeProduction, sc.Mode)
		return namedStep(ctrl, sc.Spec.Uses), nil
	}).Times(3)

	r, err := registry.Build(project, domain.ModeProduction, factory)
	require.NoError(t, err)

	assert.Equal(t, []string{"sass", "postcss"}, stepNames(r.StepsForTask(*sass)))
	assert.Equal(t, []string{"clean"}, stepNames(r.StepsForTask(*clean)))
}

func TestBuild_FactoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	factory := mocks.NewMockStepFactory(ctrl)

	js := &domain.Task{
		Name:  domain.NewInternedString("js"),
		Steps: []domain.StepSpec{{Uses: "webpack"}},
	}
	project := newProject(t, js)

	factory.EXPECT().NewStep(gomock.Any()).
		Return(nil, zerr.With(zerr.Wrap(domain.ErrUnknownStepKind, "build step"), "uses", "webpack"))

	_, err := registry.Build(project, domain.ModeDevelopment, factory)
	require.ErrorIs(t, err, domain.ErrUnknownStepKind)
	assert.True(t, domain.IsConfigurationError(err))

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "js", zErr.Metadata()["task"])
}
