package memberwise

import (
	"github.com/donutnomad/memberwise/internal/syntax"
)

// 测试用的声明构造函数

func structDecl(members ...syntax.Member) *syntax.TypeDecl {
	return &syntax.TypeDecl{Kind: syntax.KindStruct, Name: "S", Members: members}
}

func varMember(keyword syntax.BindingKeyword, bindings ...syntax.Binding) syntax.Member {
	return syntax.Member{Variable: &syntax.VariableDecl{Keyword: keyword, Bindings: bindings}}
}

func annotated(m syntax.Member, attrs ...syntax.Attribute) syntax.Member {
	m.Variable.Attributes = append(m.Variable.Attributes, attrs...)
	return m
}

func modified(m syntax.Member, names ...string) syntax.Member {
	for _, n := range names {
		m.Variable.Modifiers = append(m.Variable.Modifiers, syntax.Modifier{Name: n})
	}
	return m
}

func bind(name, typ string) syntax.Binding {
	return syntax.Binding{Pattern: syntax.Pattern{Name: name}, Type: typ}
}

func bindInit(name, typ, initializer string) syntax.Binding {
	return syntax.Binding{Pattern: syntax.Pattern{Name: name}, Type: typ, Initializer: initializer}
}

func attr(name string, args ...syntax.Argument) syntax.Attribute {
	return syntax.Attribute{Name: name, Arguments: args}
}

func bare(value string) syntax.Argument {
	return syntax.Argument{Value: value}
}

func labeled(label, value string) syntax.Argument {
	return syntax.Argument{Label: label, Value: value}
}

func boolPtr(v bool) *bool {
	return &v
}
