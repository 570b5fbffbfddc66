package plugin

import (
	"fmt"
	"strings"
)

// FormatHelpText 为所有注册的生成器生成帮助文本
func FormatHelpText(registry *Registry) string {
	generators := registry.Generators()
	if len(generators) == 0 {
		return "  (暂无已注册的生成器)\n"
	}

	var sb strings.Builder
	for _, gen := range generators {
		annotations := gen.Annotations()
		if len(annotations) == 0 {
			continue
		}
		mainAnnotation := annotations[0]
		paramDefs := gen.ParamDefs()

		fmt.Fprintf(&sb, "  @%s - %s\n", mainAnnotation, gen.Name())

		kinds := make([]string, 0, len(gen.SupportedTargets()))
		for _, k := range gen.SupportedTargets() {
			kinds = append(kinds, k.String())
		}
		fmt.Fprintf(&sb, "    目标: %s\n", strings.Join(kinds, ", "))

		if len(paramDefs) > 0 {
			sb.WriteString("    参数:\n")
			for _, param := range paramDefs {
				sb.WriteString("      " + FormatParamDef(param) + "\n")
			}
		}

		sb.WriteString("    输出:\n")
		sb.WriteString("      // memberwise: -output `$FILE+Init`          所有插件\n")
		fmt.Fprintf(&sb, "      // memberwise: plugin:%s -output `Generated` 仅此插件\n", strings.ToLower(gen.Name()))

		sb.WriteString("    示例:\n")
		fmt.Fprintf(&sb, "      @%s\n", mainAnnotation)
		examples := 0
		for _, param := range paramDefs {
			if examples >= 2 {
				break
			}
			if example := paramExample(param); example != "" {
				fmt.Fprintf(&sb, "      @%s(%s)\n", mainAnnotation, example)
				examples++
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// paramExample 按参数的默认值生成示例参数
func paramExample(param ParamDef) string {
	if param.Default == "" {
		return ""
	}
	if strings.HasPrefix(param.Name, "$") {
		return "." + param.Default
	}
	return fmt.Sprintf("_%s: %s", param.Name, param.Default)
}

// FormatParamDef 格式化单个参数定义
func FormatParamDef(param ParamDef) string {
	name := param.Name
	if strings.HasPrefix(name, "$") {
		name = "<位置参数 " + strings.TrimPrefix(name, "$") + ">"
	}

	var sb strings.Builder
	sb.WriteString(name)
	if param.Required {
		sb.WriteString(" (必填)")
	}
	if param.Default != "" {
		fmt.Fprintf(&sb, " [默认: %s]", param.Default)
	}
	if param.Description != "" {
		sb.WriteString(" - " + param.Description)
	}
	return sb.String()
}
