package memberwise

import (
	"github.com/donutnomad/memberwise/internal/syntax"
)

// MacroName 宏的属性名
const MacroName = "MemberwiseInit"

// Options 类型级选项，来自 @MemberwiseInit 的参数
type Options struct {
	AccessLevel            AccessLevel // 零值按 internal
	OptionalsDefaultNil    *bool       // nil 表示按绑定关键字与访问级别计算
	DeunderscoreParameters bool
}

// ParseOptions 解析 @MemberwiseInit(.public, _optionalsDefaultNil: true, _deunderscoreParameters: true)
// 无法识别的参数被忽略
func ParseOptions(attr syntax.Attribute) Options {
	var opts Options
	for _, arg := range attr.Unlabeled() {
		if name, ok := syntax.MemberAccessName(arg.Value); ok {
			if level, ok := ParseAccessLevel(name); ok {
				opts.AccessLevel = level
				break
			}
		}
	}
	if arg, ok := attr.Labeled("_optionalsDefaultNil"); ok {
		if v, ok := syntax.BoolLiteralValue(arg.Value); ok {
			opts.OptionalsDefaultNil = &v
		}
	}
	if arg, ok := attr.Labeled("_deunderscoreParameters"); ok {
		if v, ok := syntax.BoolLiteralValue(arg.Value); ok {
			opts.DeunderscoreParameters = v
		}
	}
	return opts
}

// MacroAttribute 返回类型上的 @MemberwiseInit 属性
func MacroAttribute(decl *syntax.TypeDecl) (syntax.Attribute, bool) {
	for _, attr := range decl.Attributes {
		if attr.Name == MacroName {
			return attr, true
		}
	}
	return syntax.Attribute{}, false
}
