package memberwise

import (
	"strings"

	"github.com/donutnomad/memberwise/internal/syntax"
)

// MemberVariable 一条源码中的属性声明
type MemberVariable struct {
	Decl           *syntax.VariableDecl
	AccessLevel    AccessLevel
	Keyword        syntax.BindingKeyword
	CustomSettings *VariableCustomSettings
	Bindings       []*PropertyBinding
}

// PropertyBinding 声明中的一个名字
type PropertyBinding struct {
	Variable     *MemberVariable
	Binding      syntax.Binding
	InferredType string // 从后面的同声明绑定继承来的类型
}

// ExplicitOrInferredType 显式类型优先，其次为推断类型
func (b *PropertyBinding) ExplicitOrInferredType() string {
	if t := strings.TrimSpace(b.Binding.Type); t != "" {
		return t
	}
	return b.InferredType
}

// excludedModifiers 带这些修饰符的成员不参与初始化
var excludedModifiers = []string{"static", "class", "lazy"}

// collectBindings 遍历成员列表，筛出可参与生成的属性声明并展开为绑定
func collectBindings(members []syntax.Member) ([]*PropertyBinding, []Diagnostic) {
	var (
		bindings []*PropertyBinding
		diags    []Diagnostic
	)

	for _, member := range members {
		decl := member.Variable
		if decl == nil || !isEligibleVariable(decl) {
			continue
		}

		class := ClassifyAttributes(decl.Attributes)
		if class.Implicit && len(class.Others) > 0 {
			// 只有无关属性（如属性包装器）时不参与
			continue
		}
		if class.HasMultiple() {
			diags = append(diags, attributeDiagnostic(SeverityError, class.Config[1], msgMultipleConfigurations))
			continue
		}

		var settings *VariableCustomSettings
		if class.Implicit {
			settings = &VariableCustomSettings{Kind: AttributePlain}
		} else {
			attr := class.Config[0]
			settings = ExtractCustomSettings(&attr)
			diags = append(diags, settings.deprecations()...)
		}

		variable := &MemberVariable{
			Decl:           decl,
			AccessLevel:    declaredAccessLevel(decl.Modifiers),
			Keyword:        decl.Keyword,
			CustomSettings: settings,
		}
		for _, b := range decl.Bindings {
			variable.Bindings = append(variable.Bindings, &PropertyBinding{Variable: variable, Binding: b})
		}
		inferBindingTypes(variable.Bindings)

		if settings.Label != nil && len(variable.Bindings) > 1 {
			diags = append(diags, argumentDiagnostic(SeverityError, *settings.labelArg, msgLabelOnMultipleBinding))
			continue
		}

		bindings = append(bindings, variable.Bindings...)
	}

	return bindings, diags
}

// isEligibleVariable 排除计算属性与 static/class/lazy 成员
func isEligibleVariable(decl *syntax.VariableDecl) bool {
	for _, m := range excludedModifiers {
		if decl.HasModifier(m) {
			return false
		}
	}
	for i := range decl.Bindings {
		if decl.Bindings[i].IsComputed() {
			return false
		}
	}
	return true
}

// inferBindingTypes 反向传播类型：var x, y: Int 中 x 继承 y 的类型
// 只在同一条声明内部进行；var a = 0, b: Int 中 a 同样继承 Int
func inferBindingTypes(bindings []*PropertyBinding) {
	var lastType string
	for i := len(bindings) - 1; i >= 0; i-- {
		b := bindings[i]
		if t := strings.TrimSpace(b.Binding.Type); t != "" {
			lastType = t
			continue
		}
		b.InferredType = lastType
	}
}
