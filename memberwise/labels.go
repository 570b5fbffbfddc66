package memberwise

import (
	"strings"

	"github.com/donutnomad/memberwise/internal/syntax"
)

// parameterLabel 计算参数的外部标签：自定义标签 > 去下划线的名字 > 属性名
// 去下划线后的名字与其他属性重名时保留原名
func parameterLabel(p MemberProperty, names map[string]bool, deunderscore bool) string {
	if p.CustomSettings != nil && p.CustomSettings.Label != nil {
		return *p.CustomSettings.Label
	}
	if deunderscore {
		if stripped, ok := strings.CutPrefix(p.Name, "_"); ok &&
			syntax.IsIdentifier(stripped) && !names[stripped] {
			return stripped
		}
	}
	return p.Name
}

// diagnoseLabels 一次性检查所有自定义标签：非法值、与其他标签重复、与属性名冲突
// 出现问题的属性被排除
func diagnoseLabels(props []MemberProperty, deunderscore bool) ([]MemberProperty, []Diagnostic) {
	names := make(map[string]bool, len(props))
	for _, p := range props {
		names[p.Name] = true
	}

	// 没有自定义标签的属性先占用各自的标签
	implicit := make(map[string]string)
	for _, p := range props {
		if !hasCustomLabel(p) {
			implicit[parameterLabel(p, names, deunderscore)] = p.Name
		}
	}

	var (
		kept  []MemberProperty
		diags []Diagnostic
		seen  = make(map[string]bool)
	)
	for _, p := range props {
		if !hasCustomLabel(p) {
			kept = append(kept, p)
			continue
		}

		label := *p.CustomSettings.Label
		arg := *p.CustomSettings.labelArg
		switch {
		case label == "_":
		case !syntax.IsIdentifier(label):
			diags = append(diags, argumentDiagnostic(SeverityError, arg, msgInvalidLabel(label)))
			continue
		case seen[label]:
			diags = append(diags, argumentDiagnostic(SeverityError, arg, msgLabelConflictsWithLabel(label)))
			continue
		default:
			if owner, ok := implicit[label]; ok && owner != p.Name {
				msg := msgLabelConflictsWithLabel(label)
				if owner == label {
					msg = msgLabelConflictsWithProperty(label)
				}
				diags = append(diags, argumentDiagnostic(SeverityError, arg, msg))
				continue
			}
			seen[label] = true
		}
		kept = append(kept, p)
	}

	return kept, diags
}

func hasCustomLabel(p MemberProperty) bool {
	return p.CustomSettings != nil && p.CustomSettings.Label != nil && p.CustomSettings.labelArg != nil
}
