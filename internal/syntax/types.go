// Package syntax 定义宏引擎的输入/输出语法模型
//
// 输入是外部解析器交给引擎的、已经结构化的类型声明（成员、属性、修饰符、绑定）；
// 输出是合成的初始化器声明。所有表达式与类型都以原样文本保存，引擎不做语义解释。
package syntax

import "strings"

// DeclKind 类型声明的种类
type DeclKind string

const (
	KindStruct    DeclKind = "struct"
	KindClass     DeclKind = "class"
	KindActor     DeclKind = "actor"
	KindEnum      DeclKind = "enum"
	KindExtension DeclKind = "extension"
	KindProtocol  DeclKind = "protocol"
)

// WithArticle 返回带冠词的描述，用于错误信息，如 "an enum"
func (k DeclKind) WithArticle() string {
	switch k {
	case KindEnum, KindExtension, KindActor:
		return "an " + string(k)
	case "":
		return "a declaration"
	default:
		return "a " + string(k)
	}
}

// BindingKeyword 绑定关键字 let / var
type BindingKeyword string

const (
	KeywordLet BindingKeyword = "let"
	KeywordVar BindingKeyword = "var"
)

// Position 源码位置，行列均从 1 开始；零值表示未知
type Position struct {
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`
}

func (p Position) IsValid() bool {
	return p.Line > 0
}

// TypeDecl 一个聚合类型声明
type TypeDecl struct {
	Kind       DeclKind    `json:"kind"`
	Name       string      `json:"name"`
	Inherited  []string    `json:"inherited,omitempty"` // 继承列表，类的第一个元素可能是父类
	Attributes []Attribute `json:"attributes,omitempty"`
	Modifiers  []Modifier  `json:"modifiers,omitempty"`
	Members    []Member    `json:"members,omitempty"`
	Pos        Position    `json:"pos"`
}

// Superclass 返回继承列表中的第一个类型名（仅 class 有意义）
func (d *TypeDecl) Superclass() string {
	if d.Kind != KindClass || len(d.Inherited) == 0 {
		return ""
	}
	return d.Inherited[0]
}

// Member 类型的一个成员；非变量成员只保留描述文本
type Member struct {
	Variable *VariableDecl `json:"variable,omitempty"`
	Other    string        `json:"other,omitempty"` // 其他成员的关键字，如 "func" "init" "struct"
	Pos      Position      `json:"pos"`
}

// VariableDecl 一条 let/var 声明语句
type VariableDecl struct {
	Attributes []Attribute    `json:"attributes,omitempty"`
	Modifiers  []Modifier     `json:"modifiers,omitempty"`
	Keyword    BindingKeyword `json:"keyword"`
	Bindings   []Binding      `json:"bindings"`
	Pos        Position       `json:"pos"`
}

// HasModifier 检查是否含有指定修饰符（忽略带 detail 的修饰符，如 private(set)）
func (v *VariableDecl) HasModifier(name string) bool {
	for _, m := range v.Modifiers {
		if m.Name == name && m.Detail == "" {
			return true
		}
	}
	return false
}

// Modifier 声明修饰符，Detail 为括号内内容，如 private(set) 的 "set"
type Modifier struct {
	Name   string `json:"name"`
	Detail string `json:"detail,omitempty"`
}

// Binding 一个 (模式, 类型, 初始值) 三元组
type Binding struct {
	Pattern     Pattern  `json:"pattern"`
	Type        string   `json:"type,omitempty"`
	Initializer string   `json:"initializer,omitempty"`
	Accessors   []string `json:"accessors,omitempty"` // 访问器块中的访问器，如 get/set/willSet/didSet
	Pos         Position `json:"pos"`
}

// IsComputed 有 get/set 等访问器即为计算属性；只有 willSet/didSet 观察器的仍是存储属性
func (b *Binding) IsComputed() bool {
	for _, acc := range b.Accessors {
		if acc != "willSet" && acc != "didSet" {
			return true
		}
	}
	return false
}

// Pattern 绑定模式：标识符或元组
type Pattern struct {
	Name     string    `json:"name,omitempty"`
	Elements []Pattern `json:"elements,omitempty"`
	Tuple    bool      `json:"tuple,omitempty"`
}

func (p Pattern) IsIdentifier() bool {
	return !p.Tuple && p.Name != ""
}

func (p Pattern) String() string {
	if !p.Tuple {
		return p.Name
	}
	parts := make([]string, 0, len(p.Elements))
	for _, e := range p.Elements {
		parts = append(parts, e.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Attribute 一个属性标注，如 @Init(label: "x")
type Attribute struct {
	Name      string     `json:"name"`
	Arguments []Argument `json:"arguments,omitempty"`
	Pos       Position   `json:"pos"`
}

// Argument 属性参数，Label 为空表示无标签参数；Value 为原样表达式文本
type Argument struct {
	Label string   `json:"label,omitempty"`
	Value string   `json:"value"`
	Pos   Position `json:"pos"`
}

// Labeled 返回第一个指定标签的参数
func (a Attribute) Labeled(label string) (Argument, bool) {
	for _, arg := range a.Arguments {
		if arg.Label == label {
			return arg, true
		}
	}
	return Argument{}, false
}

// Unlabeled 返回所有无标签参数
func (a Attribute) Unlabeled() []Argument {
	var result []Argument
	for _, arg := range a.Arguments {
		if arg.Label == "" {
			result = append(result, arg)
		}
	}
	return result
}
