// Package render 把合成的初始化器渲染为 Swift 源码
package render

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/donutnomad/memberwise/internal/syntax"
)

// DefaultIndent 生成代码的缩进宽度
const DefaultIndent = 2

const initializerTemplate = `
{{- range .Attributes }}{{ . }}
{{ end -}}
{{ with .AccessLevel }}{{ . }} {{ end }}{{ if .Required }}required {{ end }}init{{ if .Failable }}?{{ end }}(
{{- if .Parameters }}
{{ parameters .Parameters | indent .Indent }}
{{ end -}}
) {
{{- range .Body }}
{{ indent $.Indent . }}
{{- end }}
}`

const extensionTemplate = `extension {{ .TypeName }} {
{{ .Members | join "\n\n" | pad .Indent }}
}`

var templates = func() *template.Template {
	t := template.New("swift").
		Funcs(sprig.TxtFuncMap()).
		Funcs(template.FuncMap{"parameters": parameters, "pad": pad})
	template.Must(t.New("initializer").Parse(initializerTemplate))
	template.Must(t.New("extension").Parse(extensionTemplate))
	return t
}()

type initializerView struct {
	syntax.InitializerDecl
	Indent int
}

type extensionView struct {
	TypeName string
	Members  []string
	Indent   int
}

// Parameter 渲染单个参数：[label ]name: [@escaping ]Type[ = default]
func Parameter(p syntax.Parameter) string {
	var sb strings.Builder
	if p.Label != "" && p.Label != p.Name {
		sb.WriteString(p.Label)
		sb.WriteByte(' ')
	}
	sb.WriteString(p.Name)
	sb.WriteString(": ")
	if p.Escaping {
		sb.WriteString("@escaping ")
	}
	sb.WriteString(p.Type)
	if p.HasDefault {
		sb.WriteString(" = ")
		sb.WriteString(p.Default)
	}
	return sb.String()
}

func parameters(params []syntax.Parameter) string {
	lines := make([]string, 0, len(params))
	for _, p := range params {
		lines = append(lines, Parameter(p))
	}
	return strings.Join(lines, ",\n")
}

// pad 缩进每个非空行
func pad(spaces int, s string) string {
	prefix := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// Initializer 渲染一个初始化器声明
func Initializer(decl syntax.InitializerDecl, indent int) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "initializer", initializerView{InitializerDecl: decl, Indent: indent}); err != nil {
		return "", fmt.Errorf("渲染初始化器失败: %w", err)
	}
	return buf.String(), nil
}

// Initializers 依次渲染多个初始化器
func Initializers(decls []syntax.InitializerDecl, indent int) ([]string, error) {
	result := make([]string, 0, len(decls))
	for _, d := range decls {
		s, err := Initializer(d, indent)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, nil
}

// Extension 把初始化器包进 extension 块
func Extension(typeName string, decls []syntax.InitializerDecl, indent int) (string, error) {
	members, err := Initializers(decls, indent)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	view := extensionView{TypeName: typeName, Members: members, Indent: indent}
	if err := templates.ExecuteTemplate(&buf, "extension", view); err != nil {
		return "", fmt.Errorf("渲染 extension %s 失败: %w", typeName, err)
	}
	return buf.String(), nil
}

// GeneratedHeader 生成文件头注释
const GeneratedHeader = "Code generated by memberwise. DO NOT EDIT."

// File 一个生成的 Swift 文件，由多个代码块组成
type File struct {
	header  string
	imports []string
	blocks  []string
}

func NewFile() *File {
	return &File{header: GeneratedHeader}
}

func (f *File) SetHeader(header string) *File {
	f.header = header
	return f
}

// AddImport 添加导入的模块，重复的忽略
func (f *File) AddImport(modules ...string) *File {
	for _, m := range modules {
		if m != "" && !slices.Contains(f.imports, m) {
			f.imports = append(f.imports, m)
		}
	}
	return f
}

func (f *File) Imports() []string {
	return f.imports
}

// AddBlock 追加一个顶层代码块
func (f *File) AddBlock(block string) *File {
	f.blocks = append(f.blocks, strings.TrimRight(block, "\n"))
	return f
}

func (f *File) Blocks() []string {
	return f.blocks
}

// Merge 合并另一个文件的导入与代码块
func (f *File) Merge(other *File) *File {
	f.AddImport(other.imports...)
	f.blocks = append(f.blocks, other.blocks...)
	return f
}

// Bytes 输出文件内容；导入按字母排序
func (f *File) Bytes() []byte {
	var buf bytes.Buffer
	if f.header != "" {
		fmt.Fprintf(&buf, "// %s\n\n", f.header)
	}
	if len(f.imports) > 0 {
		imports := slices.Clone(f.imports)
		slices.Sort(imports)
		for _, m := range imports {
			fmt.Fprintf(&buf, "import %s\n", m)
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(strings.Join(f.blocks, "\n\n"))
	buf.WriteByte('\n')
	return buf.Bytes()
}
