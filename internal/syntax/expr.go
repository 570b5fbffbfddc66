package syntax

import (
	"regexp"
	"strings"
)

var (
	memberAccessRegex = regexp.MustCompile(`^\.\s*([A-Za-z_]\w*)$`)
	identifierRegex   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// MemberAccessName 解析 ".public" 形式的裸成员值，返回成员名
func MemberAccessName(value string) (string, bool) {
	m := memberAccessRegex.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// StringLiteralValue 解析简单字符串字面量（不含插值），返回内容
func StringLiteralValue(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
		return "", false
	}
	if strings.HasPrefix(value, `"""`) {
		return "", false
	}
	inner := value[1 : len(value)-1]
	if strings.Contains(inner, `\(`) {
		return "", false
	}
	var sb strings.Builder
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c == '"' {
			return "", false
		}
		if c == '\\' && i+1 < len(inner) {
			i++
			switch inner[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '0':
				sb.WriteByte(0)
			default:
				sb.WriteByte(inner[i])
			}
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String(), true
}

// BoolLiteralValue 解析 true / false 字面量
func BoolLiteralValue(value string) (bool, bool) {
	switch strings.TrimSpace(value) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// IsIdentifier 检查是否为合法标识符（不含反引号转义）
func IsIdentifier(s string) bool {
	return identifierRegex.MatchString(s)
}

// TrimTypeSelf 去掉 "Foo.self" 的 ".self" 后缀
func TrimTypeSelf(value string) string {
	value = strings.TrimSpace(value)
	if base, ok := strings.CutSuffix(value, ".self"); ok && base != "" {
		return strings.TrimSpace(base)
	}
	return value
}

// IsOptionalType 语法层面判断是否为可选类型：T?、T!、Optional<T>
// 返回可选值的函数类型 () -> Int? 不是可选类型
func IsOptionalType(typ string) bool {
	typ = strings.TrimSpace(stripTypeAttributes(typ))
	if typ == "" || containsTopLevelArrow(typ) {
		return false
	}
	if strings.HasSuffix(typ, "?") || strings.HasSuffix(typ, "!") {
		return true
	}
	for _, prefix := range []string{"Optional<", "Swift.Optional<"} {
		if strings.HasPrefix(typ, prefix) && strings.HasSuffix(typ, ">") &&
			matchingClose(typ, len(prefix)-1) == len(typ)-1 {
			return true
		}
	}
	return false
}

// IsFunctionType 语法层面判断是否为函数类型，如 (Int) -> Void、@Sendable () async throws -> T
// 可选的函数类型 (() -> Void)? 不算（它本身就是逃逸的）
func IsFunctionType(typ string) bool {
	typ = strings.TrimSpace(stripTypeAttributes(typ))
	if !strings.HasPrefix(typ, "(") {
		return false
	}
	end := matchingClose(typ, 0)
	if end < 0 {
		return false
	}
	if end == len(typ)-1 {
		// 整体被括号包裹：(() -> Void)
		inner := typ[1:end]
		if hasTopLevelComma(inner) {
			return false // 元组类型
		}
		return IsFunctionType(inner)
	}
	return strings.HasPrefix(strings.TrimSpace(typ[end+1:]), "->") ||
		containsTopLevelArrow(typ[end+1:])
}

// stripTypeAttributes 去掉类型前的属性与说明符，如 @Sendable、@MainActor、sending
func stripTypeAttributes(typ string) string {
	typ = strings.TrimSpace(typ)
	for {
		switch {
		case strings.HasPrefix(typ, "@"):
			i := 1
			for i < len(typ) && (isIdentByte(typ[i])) {
				i++
			}
			if i < len(typ) && typ[i] == '(' {
				if end := matchingClose(typ, i); end > 0 {
					i = end + 1
				}
			}
			typ = strings.TrimSpace(typ[i:])
		case strings.HasPrefix(typ, "sending "), strings.HasPrefix(typ, "borrowing "), strings.HasPrefix(typ, "consuming "):
			typ = strings.TrimSpace(typ[strings.IndexByte(typ, ' ')+1:])
		default:
			return typ
		}
	}
}

// matchingClose 返回 open 位置的括号对应的闭合位置，-1 表示不匹配
func matchingClose(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '-':
			if i+1 < len(s) && s[i+1] == '>' {
				i++
			}
		case '(', '[', '<', '{':
			depth++
		case ')', ']', '>', '}':
			depth--
			if depth == 0 {
				return i
			}
		case '"':
			i = skipString(s, i)
		}
	}
	return -1
}

func containsTopLevelArrow(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '-':
			if i+1 < len(s) && s[i+1] == '>' {
				if depth == 0 {
					return true
				}
				i++
			}
		case '(', '[', '<', '{':
			depth++
		case ')', ']', '>', '}':
			depth--
		case '"':
			i = skipString(s, i)
		}
	}
	return false
}

func hasTopLevelComma(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '-':
			if i+1 < len(s) && s[i+1] == '>' {
				i++
			}
		case '(', '[', '<', '{':
			depth++
		case ')', ']', '>', '}':
			depth--
		case ',':
			if depth == 0 {
				return true
			}
		case '"':
			i = skipString(s, i)
		}
	}
	return false
}

// skipString 跳过从 i 开始的字符串字面量，返回闭合引号的位置
func skipString(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		if s[j] == '\\' {
			j++
			continue
		}
		if s[j] == '"' {
			return j
		}
	}
	return len(s) - 1
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
