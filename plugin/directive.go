package plugin

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// directiveRegex 匹配 memberwise: 指令
// 支持两种格式：//memberwise: 和 // memberwise:
var directiveRegex = regexp.MustCompile(`^//\s*memberwise:\s*(.*)$`)

// directiveArgs 若该行是 memberwise: 指令，返回指令参数
func directiveArgs(line string) (string, bool) {
	matches := directiveRegex.FindStringSubmatch(strings.TrimSpace(line))
	if matches == nil {
		return "", false
	}
	return strings.TrimSpace(matches[1]), true
}

// parseFileConfig 解析文件级 memberwise: 配置
// 支持格式:
//
//	// memberwise: -output `$FILE+Init`
//	// memberwise: plugin:memberwise -output `Generated/$FILE` plugin:other -output `x`
//
// 一个文件只允许一条指令，出现多条时返回错误
func parseFileConfig(filePath string, src []byte) (*FileConfig, error) {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(src))
	scanner.Buffer(make([]byte, 64*1024), 4<<20)
	for scanner.Scan() {
		if args, ok := directiveArgs(scanner.Text()); ok {
			lines = append(lines, args)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	switch len(lines) {
	case 0:
		return nil, nil
	case 1:
		return parseDirectiveLine(lines[0], filePath)
	default:
		return nil, fmt.Errorf("%s: 定义了 %d 条 memberwise: 指令，只允许一条", filePath, len(lines))
	}
}

// parseDirectiveLine 解析单行指令
// 格式:
//
//	-output `xxx`                                          // 默认输出
//	plugin:memberwise -output `xxx` plugin:other -output `yyy`  // 插件特定输出
func parseDirectiveLine(line string, filePath string) (*FileConfig, error) {
	config := &FileConfig{
		FilePath:      filePath,
		PluginOutputs: make(map[string]string),
	}

	parts, err := splitDirectiveArgs(line)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	var currentPlugin string
	for i := 0; i < len(parts); i++ {
		part := parts[i]
		switch {
		case strings.HasPrefix(part, "plugin:"):
			currentPlugin = strings.ToLower(strings.TrimPrefix(part, "plugin:"))
		case part == "-output":
			if i+1 >= len(parts) {
				return nil, fmt.Errorf("%s: -output 缺少参数", filePath)
			}
			i++
			output := trimQuotes(parts[i])
			if currentPlugin == "" {
				config.DefaultOutput = output
			} else {
				config.PluginOutputs[currentPlugin] = output
			}
		default:
			return nil, fmt.Errorf("%s: 无法识别的指令参数 %q", filePath, part)
		}
	}

	if config.DefaultOutput == "" && len(config.PluginOutputs) == 0 {
		return nil, nil
	}
	return config, nil
}

// splitDirectiveArgs 按空白分割指令参数，引号内的空白保留
func splitDirectiveArgs(line string) ([]string, error) {
	var parts []string
	var current strings.Builder
	var quote rune

	for _, c := range line {
		switch {
		case quote != 0:
			current.WriteRune(c)
			if c == quote {
				quote = 0
			}
		case c == '`' || c == '"' || c == '\'':
			quote = c
			current.WriteRune(c)
		case c == ' ' || c == '\t':
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(c)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("引号 %c 未闭合", quote)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts, nil
}

// trimQuotes 去除引号
func trimQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '`' || first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
