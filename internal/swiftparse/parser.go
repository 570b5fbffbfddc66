package swiftparse

import (
	"fmt"
	"os"
	"strings"

	"github.com/donutnomad/memberwise/internal/syntax"
)

// File 一个 Swift 源文件中的声明级信息
type File struct {
	Path    string
	Imports []string    // 导入的模块，如 "SwiftUI"、"Foundation"
	Types   []*TypeNode // 所有聚合类型声明（含嵌套），按出现顺序
}

// TypeNode 类型声明及其限定名
type TypeNode struct {
	*syntax.TypeDecl
	QualifiedName string // 嵌套类型带外层前缀，如 "Outer.Inner"
}

// Annotated 返回带有指定属性的类型
func (f *File) Annotated(attribute string) []*TypeNode {
	var result []*TypeNode
	for _, t := range f.Types {
		for _, a := range t.Attributes {
			if a.Name == attribute {
				result = append(result, t)
				break
			}
		}
	}
	return result
}

// ParseFile 读取并解析文件
func ParseFile(path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(path, src)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", path, err)
	}
	return f, nil
}

// Parse 解析源码。只识别声明结构：类型、属性、修饰符、绑定；
// 表达式与类型以原样文本保存，函数体等整体跳过。
func Parse(path string, src []byte) (*File, error) {
	toks, err := tokenize(string(src))
	if err != nil {
		return nil, err
	}
	ps := &parser{toks: toks, src: string(src), file: &File{Path: path}}
	if _, err := ps.parseDecls(nil); err != nil {
		return nil, err
	}
	return ps.file, nil
}

var typeKeywords = map[string]syntax.DeclKind{
	"struct":    syntax.KindStruct,
	"class":     syntax.KindClass,
	"actor":     syntax.KindActor,
	"enum":      syntax.KindEnum,
	"extension": syntax.KindExtension,
	"protocol":  syntax.KindProtocol,
}

var modifierNames = map[string]bool{
	"public": true, "private": true, "fileprivate": true, "internal": true, "package": true, "open": true,
	"static": true, "class": true, "final": true, "lazy": true, "weak": true, "unowned": true,
	"override": true, "required": true, "convenience": true, "mutating": true, "nonmutating": true,
	"dynamic": true, "optional": true, "indirect": true, "nonisolated": true, "isolated": true,
	"distributed": true, "prefix": true, "postfix": true, "infix": true, "consuming": true, "borrowing": true,
}

var otherDeclKeywords = map[string]bool{
	"let": true, "var": true, "func": true, "init": true, "deinit": true, "subscript": true,
	"typealias": true, "associatedtype": true, "case": true, "import": true, "operator": true,
	"precedencegroup": true, "macro": true,
}

var accessorKeywords = map[string]bool{
	"get": true, "set": true, "willSet": true, "didSet": true, "init": true,
	"_read": true, "_modify": true, "read": true, "modify": true,
	"unsafeAddress": true, "unsafeMutableAddress": true,
}

type parser struct {
	toks []token
	p    int
	src  string
	file *File
}

func (ps *parser) peek() token {
	return ps.toks[ps.p]
}

func (ps *parser) peekN(n int) token {
	if i := ps.p + n; i < len(ps.toks) {
		return ps.toks[i]
	}
	return ps.toks[len(ps.toks)-1]
}

func (ps *parser) next() token {
	t := ps.toks[ps.p]
	if t.kind != tokEOF {
		ps.p++
	}
	return t
}

// is 当前 token 是否为给定的标点、运算符或标识符
func (ps *parser) is(text string) bool {
	return isText(ps.peek(), text)
}

func isText(t token, text string) bool {
	return t.kind != tokString && t.kind != tokEOF && t.text == text
}

func (ps *parser) errorf(t token, format string, args ...any) error {
	return &Error{Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

func (ps *parser) expect(text string) (token, error) {
	t := ps.peek()
	if !isText(t, text) {
		return t, ps.errorf(t, "expected %q, found %s", text, describe(t))
	}
	return ps.next(), nil
}

func describe(t token) string {
	if t.kind == tokEOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", t.text)
}

// parseDecls 解析声明序列，直到文件结束或（在类型体内）遇到右花括号
func (ps *parser) parseDecls(parent *TypeNode) ([]syntax.Member, error) {
	var members []syntax.Member
	for {
		t := ps.peek()
		switch {
		case t.kind == tokEOF:
			if parent != nil {
				return nil, ps.errorf(t, "unexpected end of file in body of %s", parent.QualifiedName)
			}
			return members, nil
		case isText(t, "}"):
			if parent == nil {
				return nil, ps.errorf(t, "unexpected '}'")
			}
			return members, nil
		case isText(t, ";"):
			ps.next()
			continue
		}

		member, err := ps.parseDecl(parent)
		if err != nil {
			return nil, err
		}
		if member != nil {
			members = append(members, *member)
		}
	}
}

func (ps *parser) parseDecl(parent *TypeNode) (*syntax.Member, error) {
	start := ps.peek()
	attrs, err := ps.parseAttributes()
	if err != nil {
		return nil, err
	}
	mods := ps.parseModifiers()

	kw := ps.peek()
	if kw.kind == tokIdent {
		if kind, ok := typeKeywords[kw.text]; ok {
			if err := ps.parseTypeDecl(kind, attrs, mods, parent, start.pos); err != nil {
				return nil, err
			}
			return &syntax.Member{Other: kw.text, Pos: start.pos}, nil
		}
		switch kw.text {
		case "let", "var":
			v, err := ps.parseVariable(attrs, mods, start.pos)
			if err != nil {
				return nil, err
			}
			return &syntax.Member{Variable: v, Pos: start.pos}, nil
		case "import":
			ps.parseImport()
			return nil, nil
		}
	}

	if isText(kw, "}") || kw.kind == tokEOF {
		if len(attrs) > 0 || len(mods) > 0 {
			return nil, ps.errorf(kw, "expected declaration")
		}
		return nil, nil
	}
	other := kw.text
	ps.skipDecl()
	return &syntax.Member{Other: other, Pos: start.pos}, nil
}

func (ps *parser) parseAttributes() ([]syntax.Attribute, error) {
	var attrs []syntax.Attribute
	for ps.is("@") {
		at := ps.next()
		name := ps.peek()
		if name.kind != tokIdent || name.off != at.end {
			return nil, ps.errorf(name, "expected attribute name")
		}
		ps.next()
		attr := syntax.Attribute{Name: name.text, Pos: at.pos}
		for ps.is(".") && ps.peekN(1).kind == tokIdent && ps.peek().off == name.end {
			ps.next()
			name = ps.next()
			attr.Name += "." + name.text
		}
		if ps.is("(") && !ps.peek().nl {
			args, err := ps.parseArguments()
			if err != nil {
				return nil, err
			}
			attr.Arguments = args
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

// parseArguments 解析括号内的参数列表，参数值保存为原样文本
func (ps *parser) parseArguments() ([]syntax.Argument, error) {
	ps.next()
	var args []syntax.Argument
	if ps.is(")") {
		ps.next()
		return args, nil
	}
	for {
		first := ps.peek()
		var label string
		if first.kind == tokIdent && isText(ps.peekN(1), ":") {
			label = first.text
			ps.next()
			ps.next()
		}
		valueStart := ps.peek().off
		end, err := ps.skipUntil(func(t token, depth int) bool {
			return depth == 0 && (isText(t, ",") || isText(t, ")"))
		})
		if err != nil {
			return nil, err
		}
		args = append(args, syntax.Argument{
			Label: label,
			Value: strings.TrimSpace(ps.src[valueStart:max(end, valueStart)]),
			Pos:   first.pos,
		})
		if sep := ps.next(); isText(sep, ")") {
			return args, nil
		}
	}
}

// skipUntil 消费 token 直到 stop 返回 true（不消费该 token），返回最后一个被消费 token 的结束位置
func (ps *parser) skipUntil(stop func(t token, depth int) bool) (int, error) {
	depth := 0
	end := ps.peek().off
	for {
		t := ps.peek()
		if t.kind == tokEOF {
			return end, ps.errorf(t, "unexpected end of file")
		}
		if stop(t, depth) {
			return end, nil
		}
		if t.kind == tokPunct {
			switch t.text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 {
					return end, ps.errorf(t, "unexpected %q", t.text)
				}
				depth--
			}
		}
		end = t.end
		ps.next()
	}
}

func (ps *parser) parseModifiers() []syntax.Modifier {
	var mods []syntax.Modifier
	for {
		t := ps.peek()
		if t.kind != tokIdent || !modifierNames[t.text] {
			return mods
		}
		if t.text == "class" && !ps.classIsModifier() {
			return mods
		}
		ps.next()
		m := syntax.Modifier{Name: t.text}
		if ps.is("(") && !ps.peek().nl && ps.peekN(1).kind == tokIdent && isText(ps.peekN(2), ")") {
			ps.next()
			m.Detail = ps.next().text
			ps.next()
		}
		mods = append(mods, m)
	}
}

// classIsModifier 区分 "class var x" 与 "class Foo"
func (ps *parser) classIsModifier() bool {
	next := ps.peekN(1)
	if next.kind != tokIdent {
		return false
	}
	switch next.text {
	case "var", "let", "func", "subscript":
		return true
	}
	return modifierNames[next.text]
}

func (ps *parser) parseImport() {
	ps.next()
	if t := ps.peek(); t.kind == tokIdent && !t.nl {
		switch t.text {
		case "struct", "class", "enum", "protocol", "typealias", "func", "let", "var":
			ps.next()
		}
	}
	t := ps.peek()
	if t.kind != tokIdent || t.nl {
		return
	}
	path := ps.next().text
	for ps.is(".") && ps.peekN(1).kind == tokIdent {
		ps.next()
		path += "." + ps.next().text
	}
	ps.file.Imports = append(ps.file.Imports, path)
}

func (ps *parser) parseTypeDecl(kind syntax.DeclKind, attrs []syntax.Attribute, mods []syntax.Modifier, parent *TypeNode, pos syntax.Position) error {
	ps.next()
	nameTok := ps.peek()
	if nameTok.kind != tokIdent {
		return ps.errorf(nameTok, "expected %s name, found %s", kind, describe(nameTok))
	}
	ps.next()
	name := nameTok.text
	for ps.is(".") && ps.peekN(1).kind == tokIdent {
		ps.next()
		name += "." + ps.next().text
	}
	if t := ps.peek(); t.kind == tokOperator && strings.HasPrefix(t.text, "<") {
		if err := ps.skipAngles(); err != nil {
			return err
		}
	}

	decl := &syntax.TypeDecl{Kind: kind, Name: name, Attributes: attrs, Modifiers: mods, Pos: pos}
	if ps.is(":") {
		ps.next()
		for {
			typ, err := ps.parseTypeText()
			if err != nil {
				return err
			}
			decl.Inherited = append(decl.Inherited, typ)
			if !ps.is(",") {
				break
			}
			ps.next()
		}
	}
	if ps.is("where") {
		if _, err := ps.skipUntil(func(t token, depth int) bool { return depth == 0 && isText(t, "{") }); err != nil {
			return err
		}
	}
	if _, err := ps.expect("{"); err != nil {
		return err
	}

	node := &TypeNode{TypeDecl: decl, QualifiedName: name}
	if parent != nil {
		node.QualifiedName = parent.QualifiedName + "." + name
	}
	ps.file.Types = append(ps.file.Types, node)

	members, err := ps.parseDecls(node)
	if err != nil {
		return err
	}
	ps.next()
	decl.Members = members
	return nil
}

// skipAngles 跳过泛型参数列表 <...>
func (ps *parser) skipAngles() error {
	depth := 0
	for {
		t := ps.peek()
		if t.kind == tokEOF {
			return ps.errorf(t, "unterminated generic parameter list")
		}
		if t.kind == tokOperator {
			depth += angleDelta(t.text)
		}
		ps.next()
		if depth <= 0 {
			return nil
		}
	}
}

// angleDelta 运算符 token 中尖括号的净深度变化，"->" 不计
func angleDelta(op string) int {
	delta := 0
	for i := 0; i < len(op); i++ {
		switch op[i] {
		case '-':
			if i+1 < len(op) && op[i+1] == '>' {
				i++
			}
		case '<':
			delta++
		case '>':
			delta--
		}
	}
	return delta
}

func (ps *parser) parseVariable(attrs []syntax.Attribute, mods []syntax.Modifier, pos syntax.Position) (*syntax.VariableDecl, error) {
	kw := ps.next()
	v := &syntax.VariableDecl{
		Attributes: attrs,
		Modifiers:  mods,
		Keyword:    syntax.BindingKeyword(kw.text),
		Pos:        pos,
	}
	for {
		b, err := ps.parseBinding()
		if err != nil {
			return nil, err
		}
		v.Bindings = append(v.Bindings, b)
		if !ps.is(",") {
			return v, nil
		}
		ps.next()
	}
}

func (ps *parser) parseBinding() (syntax.Binding, error) {
	start := ps.peek()
	pattern, err := ps.parsePattern()
	if err != nil {
		return syntax.Binding{}, err
	}
	b := syntax.Binding{Pattern: pattern, Pos: start.pos}

	if ps.is(":") {
		ps.next()
		if b.Type, err = ps.parseTypeText(); err != nil {
			return b, err
		}
	}
	if ps.is("=") {
		ps.next()
		if b.Initializer, err = ps.parseInitializer(); err != nil {
			return b, err
		}
	}
	if ps.is("{") {
		if b.Accessors, err = ps.parseAccessorBlock(); err != nil {
			return b, err
		}
	}
	return b, nil
}

func (ps *parser) parsePattern() (syntax.Pattern, error) {
	t := ps.peek()
	switch {
	case t.kind == tokIdent:
		ps.next()
		return syntax.Pattern{Name: t.text}, nil
	case isText(t, "("):
		ps.next()
		p := syntax.Pattern{Tuple: true}
		for !ps.is(")") {
			elem, err := ps.parsePattern()
			if err != nil {
				return p, err
			}
			p.Elements = append(p.Elements, elem)
			if ps.is(",") {
				ps.next()
			} else if !ps.is(")") {
				return p, ps.errorf(ps.peek(), "expected ',' or ')' in tuple pattern, found %s", describe(ps.peek()))
			}
		}
		ps.next()
		return p, nil
	default:
		return syntax.Pattern{}, ps.errorf(t, "expected pattern, found %s", describe(t))
	}
}

// parseTypeText 读取一个类型的原样文本，止于顶层的 = , { } ; ) where 或换行
func (ps *parser) parseTypeText() (string, error) {
	start := ps.peek()
	end := start.off
	depth := 0
	var prev token
	for first := true; ; first = false {
		t := ps.peek()
		if t.kind == tokEOF {
			break
		}
		if depth == 0 {
			if t.kind == tokPunct && strings.Contains(",{};)]", t.text) {
				break
			}
			if isText(t, "=") || isText(t, "where") {
				break
			}
			if !first && t.nl && !continuesType(prev, t) {
				break
			}
		}
		switch {
		case t.kind == tokPunct && (t.text == "(" || t.text == "["):
			depth++
		case t.kind == tokPunct && (t.text == ")" || t.text == "]"):
			depth--
		case t.kind == tokOperator:
			depth += angleDelta(t.text)
		}
		end = t.end
		prev = t
		ps.next()
	}
	text := strings.TrimSpace(ps.src[start.off:max(end, start.off)])
	if text == "" {
		return "", ps.errorf(start, "expected type, found %s", describe(start))
	}
	return text, nil
}

func continuesType(prev, next token) bool {
	for _, op := range []string{"->", "&"} {
		if isText(prev, op) || isText(next, op) {
			return true
		}
	}
	return false
}

// parseInitializer 读取初始值表达式的原样文本
// 止于顶层的 , ; } 或换行（除非下一行以运算符或 . 继续）；
// 紧跟的 { willSet/didSet 块是属性观察器，其他同一行的 { 视为尾随闭包
func (ps *parser) parseInitializer() (string, error) {
	start := ps.peek()
	end := start.off
	depth, angle := 0, 0
	var prev token
	for first := true; ; first = false {
		t := ps.peek()
		if t.kind == tokEOF {
			break
		}
		if depth == 0 {
			if t.kind == tokPunct && strings.Contains(";})]", t.text) {
				break
			}
			if isText(t, ",") && angle == 0 {
				break
			}
			if isText(t, "{") && !first && ps.isObserverBlock() {
				break
			}
			if !first && t.nl && !continuesExpr(prev, t) {
				break
			}
		}
		switch {
		case t.kind == tokPunct && (t.text == "(" || t.text == "[" || t.text == "{"):
			depth++
		case t.kind == tokPunct && (t.text == ")" || t.text == "]" || t.text == "}"):
			depth--
		case t.kind == tokOperator && strings.HasPrefix(t.text, "<") && prev.kind == tokIdent && prev.end == t.off:
			// Foo<A, B>() 中的泛型实参
			angle += angleDelta(t.text)
		case t.kind == tokOperator && angle > 0:
			angle = max(angle+angleDelta(t.text), 0)
		}
		end = t.end
		prev = t
		ps.next()
	}
	text := strings.TrimSpace(ps.src[start.off:max(end, start.off)])
	if text == "" {
		return "", ps.errorf(start, "expected initial value, found %s", describe(start))
	}
	return text, nil
}

func continuesExpr(prev, next token) bool {
	if next.kind == tokOperator || isText(next, ".") {
		return true
	}
	if prev.kind == tokOperator && prev.text != "?" && prev.text != "!" {
		return true
	}
	return isText(prev, ".")
}

// isObserverBlock 当前 { 之后是否为 willSet/didSet
func (ps *parser) isObserverBlock() bool {
	for i := 1; ; i++ {
		t := ps.peekN(i)
		switch {
		case isText(t, "@"):
			i++
			continue
		case t.kind == tokIdent && (t.text == "willSet" || t.text == "didSet"):
			return true
		default:
			return false
		}
	}
}

// parseAccessorBlock 解析 { ... } 访问器块，返回出现的访问器名
// 不以访问器关键字开头的块是隐式 getter
func (ps *parser) parseAccessorBlock() ([]string, error) {
	open := ps.next()
	explicit := ps.startsAccessor()

	var accessors []string
	if !explicit {
		accessors = []string{"get"}
	}
	depth := 1
	var prev token
	for depth > 0 {
		t := ps.peek()
		if t.kind == tokEOF {
			return nil, ps.errorf(open, "unterminated accessor block")
		}
		if t.kind == tokPunct {
			switch t.text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			}
		}
		if explicit && depth == 1 && t.kind == tokIdent && accessorKeywords[t.text] && !isText(prev, "@") {
			accessors = append(accessors, t.text)
		}
		prev = t
		ps.next()
	}
	return accessors, nil
}

// startsAccessor 块内第一个有效 token（跳过属性与 mutating 等修饰）是否为访问器关键字
func (ps *parser) startsAccessor() bool {
	i := 0
	for {
		t := ps.peekN(i)
		switch {
		case isText(t, "@"):
			i += 2
			if isText(ps.peekN(i), "(") {
				for depth := 0; ; i++ {
					u := ps.peekN(i)
					if u.kind == tokEOF {
						return false
					}
					if isText(u, "(") {
						depth++
					} else if isText(u, ")") {
						depth--
						if depth == 0 {
							i++
							break
						}
					}
				}
			}
		case t.kind == tokIdent && (t.text == "mutating" || t.text == "nonmutating" || t.text == "__consuming"):
			i++
		case t.kind == tokIdent && accessorKeywords[t.text]:
			next := ps.peekN(i + 1)
			return next.nl || next.kind == tokIdent || isText(next, "{") || isText(next, "}") || isText(next, "(")
		default:
			return false
		}
	}
}

// skipDecl 跳过一个不关心的声明或语句
func (ps *parser) skipDecl() {
	depth := 0
	for first := true; ; first = false {
		t := ps.peek()
		if t.kind == tokEOF {
			return
		}
		if depth == 0 && !first {
			if isText(t, "}") || isText(t, ";") {
				return
			}
			if t.nl && startsDecl(t) {
				return
			}
		}
		if t.kind == tokPunct {
			switch t.text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 {
					if first {
						ps.next()
					}
					return
				}
				depth--
			}
		}
		ps.next()
	}
}

func startsDecl(t token) bool {
	if isText(t, "@") {
		return true
	}
	if t.kind != tokIdent {
		return false
	}
	if strings.HasPrefix(t.text, "#") {
		return true
	}
	_, isType := typeKeywords[t.text]
	return isType || modifierNames[t.text] || otherDeclKeywords[t.text]
}
