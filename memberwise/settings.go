package memberwise

import (
	"github.com/donutnomad/memberwise/internal/syntax"
)

// AssigneeKind 赋值目标的重定向方式
type AssigneeKind int

const (
	AssigneeSelf    AssigneeKind = iota // self.<name>
	AssigneeWrapper                     // self._<name>
	AssigneeRaw                         // 原样文本
)

// Assignee 赋值目标
type Assignee struct {
	Kind AssigneeKind
	Raw  string
}

// VariableCustomSettings 由配置属性参数解析出的覆盖项
type VariableCustomSettings struct {
	Kind          AttributeKind
	AccessLevel   AccessLevel // 零值表示未覆盖
	Assignee      Assignee
	DefaultValue  string // 原样表达式文本，空表示未设置
	ForceEscaping bool
	Ignore        bool
	Label         *string
	Type          string // 已去掉 .self 后缀

	// 旧式裸标记，仅用于生成弃用警告
	legacyIgnore   *syntax.Argument
	legacyEscaping *syntax.Argument
	labelArg       *syntax.Argument
}

// ExtractCustomSettings 解析配置属性的参数；attr 为 nil 表示没有配置属性
// 不合法的参数按缺省处理，组合校验交给后续阶段
func ExtractCustomSettings(attr *syntax.Attribute) *VariableCustomSettings {
	if attr == nil {
		return nil
	}
	kind, _ := ClassifyAttributeName(attr.Name)
	settings := &VariableCustomSettings{Kind: kind}

	// 无标签的成员值：旧式 .ignore / .escaping 标记与访问级别
	for _, arg := range attr.Unlabeled() {
		name, ok := MemberAccessNameOf(arg)
		if !ok {
			continue
		}
		switch name {
		case "ignore":
			settings.Ignore = true
			settings.legacyIgnore = &arg
		case "escaping":
			settings.ForceEscaping = true
			settings.legacyEscaping = &arg
		default:
			if level, ok := ParseAccessLevel(name); ok && settings.AccessLevel == 0 {
				settings.AccessLevel = level
			}
		}
	}

	if kind == AttributeWrapper {
		settings.Assignee = Assignee{Kind: AssigneeWrapper}
	} else if arg, ok := attr.Labeled("assignee"); ok {
		if raw, ok := syntax.StringLiteralValue(arg.Value); ok {
			settings.Assignee = Assignee{Kind: AssigneeRaw, Raw: raw}
		}
	}

	if arg, ok := attr.Labeled("escaping"); ok {
		if v, ok := syntax.BoolLiteralValue(arg.Value); ok {
			settings.ForceEscaping = settings.ForceEscaping || v
		}
	}

	if arg, ok := attr.Labeled("ignore"); ok {
		if v, ok := syntax.BoolLiteralValue(arg.Value); ok {
			settings.Ignore = settings.Ignore || v
		}
	}

	if arg, ok := attr.Labeled("default"); ok {
		settings.DefaultValue = arg.Value
	}

	if arg, ok := attr.Labeled("label"); ok {
		if label, ok := syntax.StringLiteralValue(arg.Value); ok {
			settings.Label = &label
			settings.labelArg = &arg
		}
	}

	if arg, ok := attr.Labeled("type"); ok {
		settings.Type = syntax.TrimTypeSelf(arg.Value)
	}

	return settings
}

// MemberAccessNameOf 无标签参数是否为 ".name" 形式
func MemberAccessNameOf(arg syntax.Argument) (string, bool) {
	if arg.Label != "" {
		return "", false
	}
	return syntax.MemberAccessName(arg.Value)
}

// deprecations 旧式裸标记的弃用警告
func (s *VariableCustomSettings) deprecations() []Diagnostic {
	var diags []Diagnostic
	if s.legacyIgnore != nil {
		diags = append(diags, argumentDiagnostic(SeverityWarning, *s.legacyIgnore, msgDeprecatedIgnore))
	}
	if s.legacyEscaping != nil {
		diags = append(diags, argumentDiagnostic(SeverityWarning, *s.legacyEscaping, msgDeprecatedEscaping))
	}
	return diags
}
