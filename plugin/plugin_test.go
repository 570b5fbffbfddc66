package plugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donutnomad/memberwise/internal/syntax"
)

// testGenerator 用于测试的生成器，Generate 由 fn 决定
type testGenerator struct {
	BaseGenerator
	fn func(ctx context.Context, genCtx *GenerateContext) (*GenerateResult, error)
}

func (g *testGenerator) Generate(ctx context.Context, genCtx *GenerateContext) (*GenerateResult, error) {
	if g.fn == nil {
		return NewGenerateResult(), nil
	}
	return g.fn(ctx, genCtx)
}

func newTestGenerator(name string, annotations []string, targets []TargetKind) *testGenerator {
	return &testGenerator{BaseGenerator: *NewBaseGenerator(name, annotations, targets)}
}

func TestNewAnnotation(t *testing.T) {
	tests := []struct {
		name       string
		attr       syntax.Attribute
		wantRaw    string
		wantParams map[string]string
	}{
		{
			name:       "bare attribute",
			attr:       syntax.Attribute{Name: "MemberwiseInit"},
			wantRaw:    "@MemberwiseInit",
			wantParams: map[string]string{},
		},
		{
			name: "positional member access",
			attr: syntax.Attribute{Name: "MemberwiseInit", Arguments: []syntax.Argument{
				{Value: ".public"},
			}},
			wantRaw:    "@MemberwiseInit(.public)",
			wantParams: map[string]string{"$0": "public"},
		},
		{
			name: "labeled arguments lose leading underscore",
			attr: syntax.Attribute{Name: "MemberwiseInit", Arguments: []syntax.Argument{
				{Value: ".internal"},
				{Label: "_optionalsDefaultNil", Value: "true"},
				{Label: "_deunderscoreParameters", Value: "false"},
			}},
			wantRaw: "@MemberwiseInit(.internal, _optionalsDefaultNil: true, _deunderscoreParameters: false)",
			wantParams: map[string]string{
				"$0":                     "internal",
				"optionalsdefaultnil":    "true",
				"deunderscoreparameters": "false",
			},
		},
		{
			name: "string literal is unquoted",
			attr: syntax.Attribute{Name: "Init", Arguments: []syntax.Argument{
				{Label: "label", Value: `"for"`},
				{Value: ".escaping"},
				{Value: "someValue"},
			}},
			wantRaw:    `@Init(label: "for", .escaping, someValue)`,
			wantParams: map[string]string{"label": "for", "$0": "escaping", "$1": "someValue"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ann := NewAnnotation(tt.attr)
			assert.Equal(t, tt.attr.Name, ann.Name)
			assert.Equal(t, tt.wantRaw, ann.Raw)
			assert.Equal(t, tt.wantParams, ann.Params)
		})
	}
}

func TestAnnotation_GetParam(t *testing.T) {
	ann := NewAnnotation(syntax.Attribute{Name: "MemberwiseInit", Arguments: []syntax.Argument{
		{Label: "_optionalsDefaultNil", Value: "true"},
	}})

	assert.Equal(t, "true", ann.GetParam("optionalsDefaultNil"))
	assert.Equal(t, "true", ann.GetParam("_optionalsDefaultNil"))
	assert.True(t, ann.HasParam("OPTIONALSDEFAULTNIL"))
	assert.False(t, ann.HasParam("output"))
	assert.Equal(t, "fallback", ann.GetParamOr("output", "fallback"))
}

func TestFilterAnnotations(t *testing.T) {
	annotations := ParseAnnotations([]syntax.Attribute{
		{Name: "MainActor"},
		{Name: "MemberwiseInit"},
		{Name: "available"},
	})
	require.Len(t, annotations, 3)

	assert.Len(t, FilterByNames(annotations), 3)
	filtered := FilterByNames(annotations, "MemberwiseInit", "Other")
	require.Len(t, filtered, 1)
	assert.Equal(t, "MemberwiseInit", filtered[0].Name)

	assert.True(t, HasAnnotation(annotations, "MainActor"))
	assert.Nil(t, GetAnnotation(annotations, "Missing"))
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	gen1 := newTestGenerator("gen1", []string{"MemberwiseInit"}, []TargetKind{TargetStruct, TargetClass})
	gen2 := newTestGenerator("gen2", []string{"Other"}, AllTargets)
	gen2.SetPriority(10)

	require.NoError(t, registry.Register(gen1))
	require.NoError(t, registry.Register(gen2))

	assert.True(t, registry.IsRegistered("MemberwiseInit"))
	assert.True(t, registry.IsRegistered("Other"))
	assert.Equal(t, []string{"MemberwiseInit", "Other"}, registry.Annotations())

	generators := registry.Generators()
	require.Len(t, generators, 2)
	assert.Equal(t, "gen2", generators[0].Name(), "priority first")

	err := registry.Register(newTestGenerator("gen3", []string{"MemberwiseInit"}, AllTargets))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "@MemberwiseInit")

	err = registry.Register(newTestGenerator("gen1", []string{"Fresh"}, AllTargets))
	require.Error(t, err)

	gen, ok := registry.GetByAnnotation("MemberwiseInit")
	require.True(t, ok)
	assert.Equal(t, "gen1", gen.Name())

	require.NoError(t, registry.Unregister("gen1"))
	assert.False(t, registry.IsRegistered("MemberwiseInit"))
	require.Error(t, registry.Unregister("gen1"))
}

func TestRegistry_DispatchTargets(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(newTestGenerator("memberwise", []string{"MemberwiseInit", "MemberwiseInitAlias"}, []TargetKind{TargetStruct, TargetEnum}))

	target := func(name string, kind TargetKind, attrs ...string) *AnnotatedTarget {
		var list []syntax.Attribute
		for _, a := range attrs {
			list = append(list, syntax.Attribute{Name: a})
		}
		return &AnnotatedTarget{
			Target:      &Target{Name: name, Kind: kind},
			Annotations: ParseAnnotations(list),
		}
	}

	result := &ScanResult{Types: []*AnnotatedTarget{
		target("A", TargetStruct, "MemberwiseInit"),
		target("B", TargetProtocol, "MemberwiseInit"),
		target("C", TargetEnum, "MemberwiseInit", "MemberwiseInitAlias"),
		target("D", TargetStruct, "Unrelated"),
	}}

	dispatch := registry.DispatchTargets(result)
	require.Len(t, dispatch["memberwise"], 2)
	assert.Equal(t, "A", dispatch["memberwise"][0].Target.Name)
	assert.Equal(t, "C", dispatch["memberwise"][1].Target.Name, "dispatched once")

	assert.Len(t, result.ByAnnotation("MemberwiseInit"), 3)
}

func TestTargetKindOf(t *testing.T) {
	assert.Equal(t, TargetStruct, TargetKindOf(syntax.KindStruct))
	assert.Equal(t, TargetActor, TargetKindOf(syntax.KindActor))
	assert.Equal(t, TargetExtension, TargetKindOf(syntax.KindExtension))
	assert.Equal(t, "protocol", TargetKindOf(syntax.KindProtocol).String())
	assert.Equal(t, "unknown", TargetKindOf("typealias").String())
}
