package memberwise

import "github.com/donutnomad/memberwise/internal/syntax"

// AccessLevel 访问级别，按开放程度递增排列；零值表示未指定
type AccessLevel int

const (
	AccessPrivate AccessLevel = iota + 1
	AccessFileprivate
	AccessInternal
	AccessPackage
	AccessPublic
	AccessOpen
)

var accessLevelNames = map[string]AccessLevel{
	"private":     AccessPrivate,
	"fileprivate": AccessFileprivate,
	"internal":    AccessInternal,
	"package":     AccessPackage,
	"public":      AccessPublic,
	"open":        AccessOpen,
}

// ParseAccessLevel 解析访问级别关键字
func ParseAccessLevel(s string) (AccessLevel, bool) {
	level, ok := accessLevelNames[s]
	return level, ok
}

func (a AccessLevel) String() string {
	switch a {
	case AccessPrivate:
		return "private"
	case AccessFileprivate:
		return "fileprivate"
	case AccessInternal:
		return "internal"
	case AccessPackage:
		return "package"
	case AccessPublic:
		return "public"
	case AccessOpen:
		return "open"
	default:
		return ""
	}
}

// OrInternal 未指定时按 internal 处理
func (a AccessLevel) OrInternal() AccessLevel {
	if a == 0 {
		return AccessInternal
	}
	return a
}

// InitKeyword 初始化器上使用的关键字；初始化器不能声明为 open
func (a AccessLevel) InitKeyword() string {
	if a == AccessOpen {
		return AccessPublic.String()
	}
	return a.OrInternal().String()
}

// declaredAccessLevel 从修饰符中取访问级别；private(set) 这类 setter 修饰符不影响
func declaredAccessLevel(modifiers []syntax.Modifier) AccessLevel {
	for _, m := range modifiers {
		if m.Detail != "" {
			continue
		}
		if level, ok := ParseAccessLevel(m.Name); ok {
			return level
		}
	}
	return AccessInternal
}

func minAccess(a, b AccessLevel) AccessLevel {
	if a == 0 {
		return b
	}
	if b == 0 || a < b {
		return a
	}
	return b
}
