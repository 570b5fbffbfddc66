// Package hostproto 实现宿主与插件之间的展开协议
//
// 每行一个 JSON 对象。宿主写入 Request，插件按顺序回写 Response：
//
//	{"id":"1","declaration":{...},"macro":{"name":"MemberwiseInit","arguments":[...]}}
//	{"id":"1","declarations":["internal init(...) {...}"],"initializers":[...],"diagnostics":[]}
package hostproto

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bytedance/sonic"

	"github.com/donutnomad/memberwise/internal/render"
	"github.com/donutnomad/memberwise/internal/syntax"
	"github.com/donutnomad/memberwise/memberwise"
)

// maxLineSize 单个请求的最大字节数
const maxLineSize = 16 << 20

// Request 一次展开请求
type Request struct {
	ID          string            `json:"id,omitempty"`
	Declaration *syntax.TypeDecl  `json:"declaration"`
	Macro       *syntax.Attribute `json:"macro,omitempty"` // 为空时从 declaration 的属性中查找
	Indent      int               `json:"indent,omitempty"`
}

// Response 展开结果；Error 非空表示宏无法展开
type Response struct {
	ID           string                   `json:"id,omitempty"`
	Declarations []string                 `json:"declarations"`
	Initializers []syntax.InitializerDecl `json:"initializers"`
	Diagnostics  []memberwise.Diagnostic  `json:"diagnostics"`
	Error        string                   `json:"error,omitempty"`
}

// Handler 处理单个请求
type Handler func(ctx context.Context, req *Request) *Response

// Serve 逐行读取请求并写回响应，直到输入结束或 ctx 取消
// 无法解码的行返回带 Error 的响应，不中断循环
func Serve(ctx context.Context, r io.Reader, w io.Writer, handler Handler) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	out := bufio.NewWriter(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp *Response
		var req Request
		if err := sonic.Unmarshal(line, &req); err != nil {
			resp = &Response{Error: fmt.Sprintf("invalid request: %v", err)}
		} else {
			resp = handler(ctx, &req)
			resp.ID = req.ID
		}

		data, err := sonic.Marshal(resp)
		if err != nil {
			return fmt.Errorf("编码响应失败: %w", err)
		}
		if _, err := out.Write(append(data, '\n')); err != nil {
			return err
		}
		if err := out.Flush(); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Expand 默认的请求处理：运行成员初始化器合成并渲染声明文本
func Expand(_ context.Context, req *Request) *Response {
	resp := &Response{
		Declarations: []string{},
		Initializers: []syntax.InitializerDecl{},
		Diagnostics:  []memberwise.Diagnostic{},
	}
	if req.Declaration == nil {
		resp.Error = "missing declaration"
		return resp
	}

	macro := req.Macro
	if macro == nil {
		if attr, ok := memberwise.MacroAttribute(req.Declaration); ok {
			macro = &attr
		} else {
			macro = &syntax.Attribute{Name: memberwise.MacroName}
		}
	}

	exp, err := memberwise.Expand(req.Declaration, memberwise.ParseOptions(*macro))
	if err != nil {
		if errors.Is(err, memberwise.ErrUnsupportedDeclaration) {
			resp.Error = memberwise.UnsupportedReason(err)
		} else {
			resp.Error = err.Error()
		}
		return resp
	}

	indent := req.Indent
	if indent <= 0 {
		indent = render.DefaultIndent
	}
	decls, err := render.Initializers(exp.Initializers, indent)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Declarations = decls
	resp.Initializers = exp.Initializers
	if exp.Diagnostics != nil {
		resp.Diagnostics = exp.Diagnostics
	}
	return resp
}
