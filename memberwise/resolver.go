package memberwise

import (
	"strings"

	"github.com/donutnomad/memberwise/internal/syntax"
)

// MemberProperty 一个可参与生成的属性
type MemberProperty struct {
	AccessLevel      AccessLevel
	CustomSettings   *VariableCustomSettings
	InitializerValue string // 绑定自身的初始值，作为参数默认值的种子
	Keyword          syntax.BindingKeyword
	Name             string
	Type             string
	Pos              syntax.Position
}

// resolveProperties 对每个绑定应用排除与校验规则，得到最终的属性列表
func resolveProperties(bindings []*PropertyBinding) ([]MemberProperty, []Diagnostic) {
	var (
		properties []MemberProperty
		diags      []Diagnostic
	)

	for _, b := range bindings {
		v := b.Variable
		settings := v.CustomSettings

		if settings != nil && settings.Ignore {
			continue
		}

		hasInitializer := strings.TrimSpace(b.Binding.Initializer) != ""
		if v.Keyword == syntax.KeywordLet && hasInitializer {
			// 已赋值的常量无法通过初始化器设置
			continue
		}

		customType := ""
		if settings != nil {
			customType = settings.Type
		}
		typ := b.ExplicitOrInferredType()

		if v.Keyword == syntax.KeywordVar && hasInitializer && typ == "" && customType == "" {
			diags = append(diags, bindingDiagnostic(b, msgRequiresTypeAnnotation))
			continue
		}

		if b.Binding.Pattern.Tuple {
			diags = append(diags, bindingDiagnostic(b, msgTupleDestructuring))
			continue
		}

		if customType != "" {
			typ = customType
		}
		name := b.Binding.Pattern.Name
		if name == "" || typ == "" {
			continue
		}

		access := v.AccessLevel
		if settings != nil && settings.AccessLevel != 0 {
			access = settings.AccessLevel
		}

		properties = append(properties, MemberProperty{
			AccessLevel:      access,
			CustomSettings:   settings,
			InitializerValue: strings.TrimSpace(b.Binding.Initializer),
			Keyword:          v.Keyword,
			Name:             name,
			Type:             syntax.TrimTypeSelf(typ),
			Pos:              b.Binding.Pos,
		})
	}

	return properties, diags
}
