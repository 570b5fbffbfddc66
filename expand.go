package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/donutnomad/memberwise/internal/config"
	"github.com/donutnomad/memberwise/internal/render"
	"github.com/donutnomad/memberwise/internal/swiftparse"
	"github.com/donutnomad/memberwise/memberwise"
)

// errExpandFailed 至少一个类型展开失败或带有 error 级诊断
var errExpandFailed = errors.New("展开失败")

func runExpand(cmd *cobra.Command, args []string) error {
	width := indent
	if !cmd.Flags().Changed("indent") {
		cfg, err := config.Load(configPath, ".")
		if err != nil {
			return err
		}
		width = cfg.Indent
	}
	return expandFile(cmd.OutOrStdout(), args[0], width, dumpDecl)
}

// expandFile 打印文件中每个 @MemberwiseInit 类型的展开结果，诊断按编译器格式输出
func expandFile(w io.Writer, path string, width int, dump bool) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	file, err := swiftparse.Parse(path, src)
	if err != nil {
		return fmt.Errorf("%s:%w", path, err)
	}
	if width <= 0 {
		width = render.DefaultIndent
	}

	failed := false
	for i, node := range file.Annotated(memberwise.MacroName) {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "// %s\n", node.QualifiedName)
		if dump {
			spew.Fdump(w, node.TypeDecl)
		}

		exp, err := memberwise.ExpandAnnotated(node.TypeDecl)
		if err != nil {
			failed = true
			fmt.Fprintln(w, render.Excerpt(path, src, node.Pos, string(memberwise.SeverityError), memberwise.UnsupportedReason(err)))
			continue
		}
		for _, d := range exp.Diagnostics {
			failed = failed || d.Severity == memberwise.SeverityError
			fmt.Fprintln(w, render.Excerpt(path, src, d.Pos, string(d.Severity), d.Message))
		}

		block, err := render.Extension(node.QualifiedName, exp.Initializers, width)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, block)
	}

	if failed {
		return errExpandFailed
	}
	return nil
}
