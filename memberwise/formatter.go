package memberwise

import (
	"github.com/donutnomad/memberwise/internal/syntax"
)

// initializerAccessLevel 初始化器的访问级别：目标级别与各属性级别中最严格的那个
func initializerAccessLevel(props []MemberProperty, target AccessLevel) AccessLevel {
	access := target.OrInternal()
	for _, p := range props {
		access = minAccess(access, p.AccessLevel)
	}
	return access
}

// defaultOptionalsDefaultNil 未显式配置时的可选类型默认 nil 策略
func defaultOptionalsDefaultNil(keyword syntax.BindingKeyword, access AccessLevel) bool {
	if keyword != syntax.KeywordVar {
		return false
	}
	switch access {
	case AccessPrivate, AccessFileprivate, AccessInternal:
		return true
	default:
		return false
	}
}

// formatInitializer 根据属性列表与类型级选项合成初始化器
func formatInitializer(props []MemberProperty, opts Options) syntax.InitializerDecl {
	access := initializerAccessLevel(props, opts.AccessLevel)

	names := make(map[string]bool, len(props))
	for _, p := range props {
		names[p.Name] = true
	}

	decl := syntax.InitializerDecl{
		AccessLevel: access.InitKeyword(),
		Parameters:  make([]syntax.Parameter, 0, len(props)),
		Body:        make([]string, 0, len(props)),
	}
	for _, p := range props {
		decl.Parameters = append(decl.Parameters, formatParameter(p, names, access, opts))
		decl.Body = append(decl.Body, formatAssignment(p))
	}
	return decl
}

func formatParameter(p MemberProperty, names map[string]bool, access AccessLevel, opts Options) syntax.Parameter {
	settings := p.CustomSettings
	if settings == nil {
		settings = &VariableCustomSettings{}
	}

	param := syntax.Parameter{
		Label: parameterLabel(p, names, opts.DeunderscoreParameters),
		Name:  p.Name,
		Type:  p.Type,
	}
	if param.Label == param.Name {
		param.Label = ""
	}

	// 函数类型总是逃逸；escaping 标记用于类型别名等看不出是函数的类型
	param.Escaping = settings.ForceEscaping || syntax.IsFunctionType(p.Type)

	optionalsDefaultNil := defaultOptionalsDefaultNil(p.Keyword, access)
	if opts.OptionalsDefaultNil != nil {
		optionalsDefaultNil = *opts.OptionalsDefaultNil
	}

	switch {
	case settings.DefaultValue != "":
		param.Default, param.HasDefault = settings.DefaultValue, true
	case p.InitializerValue != "":
		param.Default, param.HasDefault = p.InitializerValue, true
	case optionalsDefaultNil && syntax.IsOptionalType(p.Type):
		param.Default, param.HasDefault = "nil", true
	}

	return param
}

// formatAssignment 生成赋值语句
func formatAssignment(p MemberProperty) string {
	target := "self." + p.Name
	if p.CustomSettings != nil {
		switch p.CustomSettings.Assignee.Kind {
		case AssigneeWrapper:
			target = "self." + wrapperStoragePrefix + p.Name
		case AssigneeRaw:
			target = p.CustomSettings.Assignee.Raw
		}
	}
	return target + " = " + p.Name
}

// wrapperStoragePrefix 属性包装器底层存储的名字前缀
const wrapperStoragePrefix = "_"
