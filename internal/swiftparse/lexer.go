package swiftparse

import (
	"fmt"
	"strings"

	"github.com/donutnomad/memberwise/internal/syntax"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokOperator
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	pos  syntax.Position
	off  int
	end  int
	nl   bool // 与上一个 token 之间有换行
}

// Error 带位置的解析错误
type Error struct {
	Pos syntax.Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

const operatorChars = "/=-+*%<>&|^~"

// 条件编译指令整行跳过，两个分支的声明都会被看到
var directives = map[string]bool{
	"if":             true,
	"elseif":         true,
	"else":           true,
	"endif":          true,
	"sourceLocation": true,
}

type lexer struct {
	src  string
	off  int
	line int
	col  int
	toks []token
}

func tokenize(src string) ([]token, error) {
	lx := &lexer{src: src, line: 1, col: 1}
	nl := true
	for {
		sawNewline, err := lx.skipTrivia()
		if err != nil {
			return nil, err
		}
		nl = nl || sawNewline
		if lx.off >= len(lx.src) {
			lx.toks = append(lx.toks, token{kind: tokEOF, pos: lx.pos(), off: lx.off, end: lx.off, nl: true})
			return lx.toks, nil
		}
		if nl && lx.atDirective() {
			lx.skipLine()
			continue
		}
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		tok.nl = nl
		nl = false
		lx.toks = append(lx.toks, tok)
	}
}

func (lx *lexer) pos() syntax.Position {
	return syntax.Position{Line: lx.line, Column: lx.col}
}

func (lx *lexer) errorf(pos syntax.Position, format string, args ...any) error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (lx *lexer) advance(n int) {
	for i := 0; i < n && lx.off < len(lx.src); i++ {
		c := lx.src[lx.off]
		switch {
		case c == '\n':
			lx.line++
			lx.col = 1
		case c&0xC0 != 0x80:
			lx.col++
		}
		lx.off++
	}
}

func (lx *lexer) rest() string {
	return lx.src[lx.off:]
}

// skipTrivia 跳过空白与注释，返回是否跨过了换行
func (lx *lexer) skipTrivia() (bool, error) {
	sawNewline := false
	for lx.off < len(lx.src) {
		c := lx.src[lx.off]
		switch {
		case c == '\n':
			sawNewline = true
			lx.advance(1)
		case c == ' ' || c == '\t' || c == '\r' || c == '\f':
			lx.advance(1)
		case strings.HasPrefix(lx.rest(), "//"):
			i := strings.IndexByte(lx.rest(), '\n')
			if i < 0 {
				i = len(lx.rest())
			}
			lx.advance(i)
		case strings.HasPrefix(lx.rest(), "/*"):
			start := lx.pos()
			depth := 0
			for {
				if lx.off >= len(lx.src) {
					return false, lx.errorf(start, "unterminated block comment")
				}
				switch {
				case strings.HasPrefix(lx.rest(), "/*"):
					depth++
					lx.advance(2)
				case strings.HasPrefix(lx.rest(), "*/"):
					depth--
					lx.advance(2)
				default:
					if lx.src[lx.off] == '\n' {
						sawNewline = true
					}
					lx.advance(1)
				}
				if depth == 0 {
					break
				}
			}
		default:
			return sawNewline, nil
		}
	}
	return sawNewline, nil
}

func (lx *lexer) atDirective() bool {
	if lx.src[lx.off] != '#' {
		return false
	}
	i := lx.off + 1
	for i < len(lx.src) && isIdentByte(lx.src[i]) {
		i++
	}
	return directives[lx.src[lx.off+1:i]]
}

func (lx *lexer) skipLine() {
	i := strings.IndexByte(lx.rest(), '\n')
	if i < 0 {
		i = len(lx.rest())
	}
	lx.advance(i)
}

func (lx *lexer) next() (token, error) {
	start := lx.off
	pos := lx.pos()
	emit := func(kind tokenKind, n int) token {
		lx.advance(n)
		return token{kind: kind, text: lx.src[start:lx.off], pos: pos, off: start, end: lx.off}
	}

	c := lx.src[lx.off]
	switch {
	case isIdentStart(c):
		n := 1
		for start+n < len(lx.src) && (isIdentByte(lx.src[start+n]) || lx.src[start+n] >= 0x80) {
			n++
		}
		return emit(tokIdent, n), nil

	case c == '`':
		end := strings.IndexByte(lx.src[start+1:], '`')
		if end < 0 {
			return token{}, lx.errorf(pos, "unterminated escaped identifier")
		}
		tok := emit(tokIdent, end+2)
		tok.text = tok.text[1 : len(tok.text)-1]
		return tok, nil

	case c >= '0' && c <= '9':
		n := 1
		for start+n < len(lx.src) {
			d := lx.src[start+n]
			if isIdentByte(d) || d == '.' && start+n+1 < len(lx.src) && isDigit(lx.src[start+n+1]) {
				n++
				continue
			}
			break
		}
		return emit(tokNumber, n), nil

	case c == '"' || c == '#' && isRawStringStart(lx.rest()):
		end, err := scanString(lx.src, start)
		if err != nil {
			return token{}, lx.errorf(pos, "%s", err.Error())
		}
		return emit(tokString, end-start), nil

	case c == '#':
		n := 1
		for start+n < len(lx.src) && isIdentByte(lx.src[start+n]) {
			n++
		}
		if n > 1 {
			return emit(tokIdent, n), nil
		}
		return emit(tokPunct, 1), nil

	case c == '.':
		if strings.HasPrefix(lx.rest(), "...") || strings.HasPrefix(lx.rest(), "..<") {
			return emit(tokOperator, 3), nil
		}
		return emit(tokPunct, 1), nil

	case c == '?' || c == '!':
		return emit(tokOperator, 1), nil

	case strings.IndexByte(operatorChars, c) >= 0:
		n := 1
		for start+n < len(lx.src) && strings.IndexByte(operatorChars, lx.src[start+n]) >= 0 {
			r := lx.src[start+n:]
			if strings.HasPrefix(r, "//") || strings.HasPrefix(r, "/*") {
				break
			}
			n++
		}
		return emit(tokOperator, n), nil

	default:
		return emit(tokPunct, 1), nil
	}
}

func isRawStringStart(s string) bool {
	i := 0
	for i < len(s) && s[i] == '#' {
		i++
	}
	return i > 0 && i < len(s) && s[i] == '"'
}

// scanString 扫描从 start 开始的字符串字面量，返回结束位置（不含）
// 支持多行字符串、原始字符串与嵌套插值
func scanString(src string, start int) (int, error) {
	hashes := 0
	for start+hashes < len(src) && src[start+hashes] == '#' {
		hashes++
	}
	p := start + hashes
	quote := `"`
	if strings.HasPrefix(src[p:], `"""`) {
		quote = `"""`
	}
	multiline := quote == `"""`
	p += len(quote)
	closing := quote + strings.Repeat("#", hashes)
	escape := `\` + strings.Repeat("#", hashes)

	for p < len(src) {
		switch {
		case strings.HasPrefix(src[p:], closing):
			return p + len(closing), nil
		case !multiline && src[p] == '\n':
			return 0, fmt.Errorf("unterminated string literal")
		case strings.HasPrefix(src[p:], escape):
			p += len(escape)
			if p < len(src) && src[p] == '(' {
				end, err := skipInterpolation(src, p)
				if err != nil {
					return 0, err
				}
				p = end
				continue
			}
			p++
		default:
			p++
		}
	}
	return 0, fmt.Errorf("unterminated string literal")
}

// skipInterpolation 跳过 \( ... )，p 指向左括号
func skipInterpolation(src string, p int) (int, error) {
	depth := 0
	for p < len(src) {
		c := src[p]
		switch {
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return p + 1, nil
			}
		case c == '"' || c == '#' && isRawStringStart(src[p:]):
			end, err := scanString(src, p)
			if err != nil {
				return 0, err
			}
			p = end
			continue
		}
		p++
	}
	return 0, fmt.Errorf("unterminated string interpolation")
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || isDigit(c) || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
