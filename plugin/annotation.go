package plugin

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/donutnomad/memberwise/internal/syntax"
)

// NewAnnotation 从属性构造注解
// 参数规则:
//   - label: value  -> key 为去掉前导下划线后的小写标签
//   - .member       -> key 为 "$N"（第 N 个无标签参数），值为 member
//   - "string"      -> 值为去掉引号后的内容
func NewAnnotation(attr syntax.Attribute) *Annotation {
	ann := &Annotation{
		Name:      attr.Name,
		Params:    make(map[string]string),
		Raw:       formatAttribute(attr),
		Attribute: attr,
	}

	positional := 0
	for _, arg := range attr.Arguments {
		value := arg.Value
		if s, ok := syntax.StringLiteralValue(value); ok {
			value = s
		} else if name, ok := syntax.MemberAccessName(value); ok {
			value = name
		}

		if arg.Label == "" {
			ann.Params[fmt.Sprintf("$%d", positional)] = value
			positional++
			continue
		}
		ann.Params[paramKey(arg.Label)] = value
	}
	return ann
}

// ParseAnnotations 将属性列表转换为注解
func ParseAnnotations(attrs []syntax.Attribute) []*Annotation {
	return lo.Map(attrs, func(attr syntax.Attribute, _ int) *Annotation {
		return NewAnnotation(attr)
	})
}

func paramKey(label string) string {
	return strings.ToLower(strings.TrimLeft(label, "_"))
}

func formatAttribute(attr syntax.Attribute) string {
	if len(attr.Arguments) == 0 {
		return "@" + attr.Name
	}
	args := lo.Map(attr.Arguments, func(arg syntax.Argument, _ int) string {
		if arg.Label == "" {
			return arg.Value
		}
		return arg.Label + ": " + arg.Value
	})
	return fmt.Sprintf("@%s(%s)", attr.Name, strings.Join(args, ", "))
}

// FilterByNames 过滤指定名称的注解
func FilterByNames(annotations []*Annotation, names ...string) []*Annotation {
	if len(names) == 0 {
		return annotations
	}
	return lo.Filter(annotations, func(ann *Annotation, _ int) bool {
		return lo.Contains(names, ann.Name)
	})
}

// HasAnnotation 检查是否包含指定注解
func HasAnnotation(annotations []*Annotation, name string) bool {
	return GetAnnotation(annotations, name) != nil
}

// GetAnnotation 获取指定名称的注解
func GetAnnotation(annotations []*Annotation, name string) *Annotation {
	ann, _ := lo.Find(annotations, func(a *Annotation) bool {
		return a.Name == name
	})
	return ann
}

// GetParam 获取注解参数
func (a *Annotation) GetParam(key string) string {
	return a.Params[paramKey(key)]
}

// GetParamOr 获取注解参数，如果不存在返回默认值
func (a *Annotation) GetParamOr(key, defaultValue string) string {
	if v, ok := a.Params[paramKey(key)]; ok {
		return v
	}
	return defaultValue
}

// HasParam 检查是否有指定参数
func (a *Annotation) HasParam(key string) bool {
	_, ok := a.Params[paramKey(key)]
	return ok
}
