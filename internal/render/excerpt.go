package render

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/donutnomad/memberwise/internal/syntax"
)

// Excerpt 输出编译器风格的诊断：
//
//	User.swift:8:7: error: message
//	  var name = 1
//	      ^
//
// 列号按字符计；插入符按显示宽度对齐，制表符原样保留
func Excerpt(path string, src []byte, pos syntax.Position, severity, message string) string {
	var sb strings.Builder
	if pos.IsValid() {
		fmt.Fprintf(&sb, "%s:%d:%d: %s: %s", path, pos.Line, pos.Column, severity, message)
	} else {
		fmt.Fprintf(&sb, "%s: %s: %s", path, severity, message)
		return sb.String()
	}

	line, ok := sourceLine(src, pos.Line)
	if !ok {
		return sb.String()
	}
	sb.WriteByte('\n')
	sb.WriteString(line)
	sb.WriteByte('\n')
	sb.WriteString(caretPadding(line, pos.Column))
	sb.WriteByte('^')
	return sb.String()
}

func sourceLine(src []byte, n int) (string, bool) {
	lines := strings.Split(string(src), "\n")
	if n < 1 || n > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[n-1], "\r"), true
}

func caretPadding(line string, column int) string {
	var sb strings.Builder
	col := 1
	for _, r := range line {
		if col >= column {
			break
		}
		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
		}
		col++
	}
	return sb.String()
}
