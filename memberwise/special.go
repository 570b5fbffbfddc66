package memberwise

import (
	"strings"

	"github.com/donutnomad/memberwise/internal/syntax"
)

// viewControllerSuffix UIKit 控制器基类的命名后缀
// 这是一个封闭的兼容规则，不做扩展
const viewControllerSuffix = "ViewController"

const (
	viewControllerSuperInit = "super.init(nibName: nil, bundle: nil)"
	coderFatalError         = `fatalError("init(coder:) has not been implemented")`
)

// inheritsViewController 类的父类名以 ViewController 结尾
func inheritsViewController(decl *syntax.TypeDecl) bool {
	super := baseTypeName(decl.Superclass())
	return super != "" && strings.HasSuffix(super, viewControllerSuffix)
}

// baseTypeName 去掉泛型参数与模块前缀：UIKit.UIViewController -> UIViewController
func baseTypeName(typ string) string {
	typ = strings.TrimSpace(typ)
	if i := strings.IndexByte(typ, '<'); i >= 0 {
		typ = typ[:i]
	}
	if i := strings.LastIndexByte(typ, '.'); i >= 0 {
		typ = typ[i+1:]
	}
	return strings.TrimSpace(typ)
}

// applyViewControllerChain 追加父类指定初始化器调用，并返回 NSCoder 解码初始化器
func applyViewControllerChain(initDecl *syntax.InitializerDecl) syntax.InitializerDecl {
	initDecl.Body = append(initDecl.Body, viewControllerSuperInit)
	return syntax.InitializerDecl{
		Attributes: []string{"@available(*, unavailable)"},
		Required:   true,
		Failable:   true,
		Parameters: []syntax.Parameter{{Name: "coder", Type: "NSCoder"}},
		Body:       []string{coderFatalError},
	}
}
