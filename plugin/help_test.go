package plugin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHelpText(t *testing.T) {
	registry := NewRegistry()
	gen := &testGenerator{BaseGenerator: *NewBaseGeneratorWithParams(
		"Memberwise",
		[]string{"MemberwiseInit"},
		[]TargetKind{TargetStruct, TargetClass, TargetActor},
		[]ParamDef{
			{Name: "$0", Default: "internal", Description: "初始化器访问级别"},
			{Name: "deunderscoreParameters", Default: "false", Description: "去掉参数名前导下划线"},
			{Name: "required", Required: true, Description: "必填参数"},
		},
	)}
	registry.MustRegister(gen)

	help := FormatHelpText(registry)
	for _, want := range []string{
		"@MemberwiseInit - Memberwise",
		"目标: struct, class, actor",
		"<位置参数 0> [默认: internal] - 初始化器访问级别",
		"required (必填) - 必填参数",
		"// memberwise: plugin:memberwise -output",
		"@MemberwiseInit(.internal)",
		"@MemberwiseInit(_deunderscoreParameters: false)",
	} {
		assert.Contains(t, help, want)
	}
}

func TestFormatHelpText_MultipleGenerators(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(newTestGenerator("beta", []string{"Beta"}, []TargetKind{TargetStruct}))
	registry.MustRegister(newTestGenerator("alpha", []string{"Alpha"}, []TargetKind{TargetEnum}))
	registry.MustRegister(newTestGenerator("silent", nil, nil))

	help := FormatHelpText(registry)
	alpha := strings.Index(help, "@Alpha - alpha")
	beta := strings.Index(help, "@Beta - beta")
	assert.True(t, alpha >= 0 && beta > alpha, "generators are listed by name at equal priority")
	assert.NotContains(t, help, "silent")
	assert.NotContains(t, help, "参数:", "no parameter section without params")
}

func TestFormatHelpText_EmptyRegistry(t *testing.T) {
	assert.Equal(t, "  (暂无已注册的生成器)\n", FormatHelpText(NewRegistry()))
}

func TestFormatParamDef(t *testing.T) {
	tests := []struct {
		param ParamDef
		want  string
	}{
		{ParamDef{Name: "output"}, "output"},
		{ParamDef{Name: "mode", Required: true, Description: "模式"}, "mode (必填) - 模式"},
		{ParamDef{Name: "$1", Default: "x"}, "<位置参数 1> [默认: x]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatParamDef(tt.param))
	}
}
