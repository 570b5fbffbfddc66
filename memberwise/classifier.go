package memberwise

import (
	"github.com/samber/lo"

	"github.com/donutnomad/memberwise/internal/syntax"
)

// AttributeKind 配置属性的种类
type AttributeKind int

const (
	AttributePlain   AttributeKind = iota // @Init
	AttributeWrapper                      // @InitWrapper
	AttributeRaw                          // @InitRaw
)

// 可识别的配置属性名
const (
	InitAttribute        = "Init"
	InitWrapperAttribute = "InitWrapper"
	InitRawAttribute     = "InitRaw"
)

var configAttributeKinds = map[string]AttributeKind{
	InitAttribute:        AttributePlain,
	InitWrapperAttribute: AttributeWrapper,
	InitRawAttribute:     AttributeRaw,
}

func (k AttributeKind) String() string {
	switch k {
	case AttributeWrapper:
		return InitWrapperAttribute
	case AttributeRaw:
		return InitRawAttribute
	default:
		return InitAttribute
	}
}

// ClassifyAttributeName 返回属性名对应的配置种类
func ClassifyAttributeName(name string) (AttributeKind, bool) {
	kind, ok := configAttributeKinds[name]
	return kind, ok
}

// AttributeClassification 一条属性声明的属性分类结果
type AttributeClassification struct {
	Config   []syntax.Attribute // 配置属性；没有时为一个隐式的 @Init
	Others   []syntax.Attribute // 其他属性，如 @State
	Implicit bool               // Config 是否为隐式补充的
}

// ClassifyAttributes 区分配置属性与无关属性
func ClassifyAttributes(attrs []syntax.Attribute) AttributeClassification {
	config, others := lo.FilterReject(attrs, func(a syntax.Attribute, _ int) bool {
		_, ok := configAttributeKinds[a.Name]
		return ok
	})
	if len(config) == 0 {
		return AttributeClassification{
			Config:   []syntax.Attribute{{Name: InitAttribute}},
			Others:   others,
			Implicit: true,
		}
	}
	return AttributeClassification{Config: config, Others: others}
}

// HasExtraneous 存在无关属性或多于一个配置属性
func (c AttributeClassification) HasExtraneous() bool {
	return len(c.Others) > 0 || c.HasMultiple()
}

// HasMultiple 声明了多于一个配置属性
func (c AttributeClassification) HasMultiple() bool {
	return len(c.Config) > 1
}

// Primary 唯一的配置属性及其种类
func (c AttributeClassification) Primary() (syntax.Attribute, AttributeKind) {
	attr := c.Config[0]
	return attr, configAttributeKinds[attr.Name]
}
