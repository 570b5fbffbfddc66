// Package memberwise 根据类型的存储属性合成成员初始化器
//
// 流程：收集属性绑定 -> 解析自定义配置 -> 排除与校验 -> 标签检查 -> 生成初始化器 -> 特殊基类处理。
// 整个展开是纯函数：不做 I/O，不持有跨调用状态，相同输入总是得到相同输出。
package memberwise

import (
	"errors"
	"fmt"
	"strings"

	"github.com/donutnomad/memberwise/internal/syntax"
)

// ErrUnsupportedDeclaration 宏附着在 struct/class/actor 以外的声明上
var ErrUnsupportedDeclaration = errors.New("unsupported declaration")

// UnsupportedReason 去掉 ErrUnsupportedDeclaration 的前缀，只保留面向用户的说明
func UnsupportedReason(err error) string {
	msg, _ := strings.CutPrefix(err.Error(), ErrUnsupportedDeclaration.Error()+": ")
	return msg
}

// Expansion 一次展开的结果
type Expansion struct {
	Initializers []syntax.InitializerDecl `json:"initializers"`
	Diagnostics  []Diagnostic             `json:"diagnostics,omitempty"`
	Properties   []MemberProperty         `json:"-"`
}

var supportedKinds = map[syntax.DeclKind]bool{
	syntax.KindStruct: true,
	syntax.KindClass:  true,
	syntax.KindActor:  true,
}

// Expand 为 decl 合成初始化器
// 声明种类不受支持时返回 ErrUnsupportedDeclaration，此时不产生任何声明
func Expand(decl *syntax.TypeDecl, opts Options) (*Expansion, error) {
	if decl == nil {
		return nil, fmt.Errorf("%w: nil declaration", ErrUnsupportedDeclaration)
	}
	if !supportedKinds[decl.Kind] {
		return nil, fmt.Errorf("%w: @%s can only be attached to a struct, class, or actor; not to %s",
			ErrUnsupportedDeclaration, MacroName, decl.Kind.WithArticle())
	}

	bindings, diags := collectBindings(decl.Members)

	properties, resolveDiags := resolveProperties(bindings)
	diags = append(diags, resolveDiags...)

	properties, labelDiags := diagnoseLabels(properties, opts.DeunderscoreParameters)
	diags = append(diags, labelDiags...)

	initDecl := formatInitializer(properties, opts)
	result := &Expansion{Properties: properties, Diagnostics: diags}

	if inheritsViewController(decl) {
		companion := applyViewControllerChain(&initDecl)
		result.Initializers = []syntax.InitializerDecl{initDecl, companion}
	} else {
		result.Initializers = []syntax.InitializerDecl{initDecl}
	}

	return result, nil
}

// ExpandAnnotated 从类型上的 @MemberwiseInit 读取选项后展开
func ExpandAnnotated(decl *syntax.TypeDecl) (*Expansion, error) {
	attr, _ := MacroAttribute(decl)
	return Expand(decl, ParseOptions(attr))
}
