// Package memberwisegen 把 @MemberwiseInit 标注的类型展开为成员初始化器，
// 写入 <file>+MemberwiseInit.swift 中的 extension 块
package memberwisegen

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/davecgh/go-spew/spew"
	"github.com/samber/lo"

	"github.com/donutnomad/memberwise/internal/logger"
	"github.com/donutnomad/memberwise/internal/render"
	"github.com/donutnomad/memberwise/memberwise"
	"github.com/donutnomad/memberwise/plugin"
)

const generatorName = "memberwise"

// DefaultOutput 默认输出文件名模板
const DefaultOutput = "$FILE+MemberwiseInit"

// MemberwiseParams 定义 @MemberwiseInit 支持的参数
type MemberwiseParams struct {
	Access                 string `param:"name=$0,required=false,default=internal,description=初始化器访问级别: private|fileprivate|internal|package|public|open"`
	OptionalsDefaultNil    *bool  `param:"name=optionalsDefaultNil,required=false,description=可选类型参数是否默认为 nil；不设置时 var 属性在 internal 及以下默认 nil"`
	DeunderscoreParameters bool   `param:"name=deunderscoreParameters,required=false,default=false,description=去掉参数名的前导下划线"`
}

// Options 转换为展开选项
func (p MemberwiseParams) Options() (memberwise.Options, error) {
	opts := memberwise.Options{
		OptionalsDefaultNil:    p.OptionalsDefaultNil,
		DeunderscoreParameters: p.DeunderscoreParameters,
	}
	if p.Access != "" {
		level, ok := memberwise.ParseAccessLevel(p.Access)
		if !ok {
			return opts, fmt.Errorf("未知的访问级别 %q", p.Access)
		}
		opts.AccessLevel = level
	}
	return opts, nil
}

// MemberwiseGenerator 实现 plugin.Generator 接口
type MemberwiseGenerator struct {
	plugin.BaseGenerator
}

func NewMemberwiseGenerator() *MemberwiseGenerator {
	gen := &MemberwiseGenerator{
		BaseGenerator: *plugin.NewBaseGeneratorWithParamsStruct(
			generatorName,
			[]string{memberwise.MacroName},
			plugin.AllTargets, // 不支持的声明由展开时报错
			MemberwiseParams{},
		),
	}
	gen.SetPriority(10)
	return gen
}

// Generate 执行代码生成
func (g *MemberwiseGenerator) Generate(ctx context.Context, genCtx *plugin.GenerateContext) (*plugin.GenerateResult, error) {
	result := plugin.NewGenerateResult()
	if len(genCtx.Targets) == 0 {
		return result, nil
	}

	log := logger.FromContext(ctx)
	indent := genCtx.Indent
	if indent <= 0 {
		indent = render.DefaultIndent
	}

	// key: 输出路径；同一文件内保持扫描顺序
	files := make(map[string]*render.File)
	var paths []string

	for _, at := range genCtx.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ann := plugin.GetAnnotation(at.Annotations, memberwise.MacroName)
		if ann == nil {
			continue
		}

		var params MemberwiseParams
		if at.ParsedParams != nil {
			var ok bool
			params, ok = at.ParsedParams.(MemberwiseParams)
			if !ok {
				result.AddError(fmt.Errorf("ParsedParams 类型断言失败: %T", at.ParsedParams))
				continue
			}
		}

		block, err := g.expandTarget(ctx, at.Target, params, indent)
		if err != nil {
			result.AddError(err)
			continue
		}

		fileConfig := genCtx.GetFileConfig(at.Target.FilePath)
		outputPath := plugin.GetOutputPath(at.Target, ann, DefaultOutput, fileConfig, g.Name(), genCtx.DefaultOutput)
		file, ok := files[outputPath]
		if !ok {
			file = render.NewFile()
			files[outputPath] = file
			paths = append(paths, outputPath)
		}
		file.AddImport(at.Target.Imports...).AddBlock(block)

		if genCtx.Verbose {
			log.Debug("展开类型", "type", at.Target.Name, "output", outputPath, "params", spew.Sdump(params))
		}
	}

	slices.Sort(paths)
	for _, path := range paths {
		result.AddOutput(path, files[path])
	}
	return result, nil
}

// expandTarget 展开单个目标，返回 extension 代码块
// error 级诊断会作为错误返回，warning 只记录日志
func (g *MemberwiseGenerator) expandTarget(ctx context.Context, target *plugin.Target, params MemberwiseParams, indent int) (string, error) {
	log := logger.FromContext(ctx)
	excerpt := func(d memberwise.Diagnostic) string {
		return render.Excerpt(target.FilePath, target.Source, d.Pos, string(d.Severity), d.Message)
	}

	opts, err := params.Options()
	if err != nil {
		return "", errors.New(render.Excerpt(target.FilePath, target.Source, target.Position, string(memberwise.SeverityError), err.Error()))
	}

	exp, err := memberwise.Expand(target.Decl, opts)
	if err != nil {
		return "", fmt.Errorf("%w: %s", memberwise.ErrUnsupportedDeclaration,
			render.Excerpt(target.FilePath, target.Source, target.Position, string(memberwise.SeverityError), memberwise.UnsupportedReason(err)))
	}
	log.Debug("解析属性", "type", target.Name, "properties", lo.Map(exp.Properties, func(p memberwise.MemberProperty, _ int) string {
		return p.Name + ": " + p.Type
	}))

	var errs []error
	for _, d := range exp.Diagnostics {
		if d.Severity == memberwise.SeverityError {
			errs = append(errs, errors.New(excerpt(d)))
			continue
		}
		log.Warn(excerpt(d))
	}
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}

	if target.Kind == plugin.TargetClass {
		log.Warn("class 的指定初始化器不能声明在 extension 中，需要移入类型内部", "type", target.Name, "file", target.FilePath)
	}

	block, err := render.Extension(target.Name, exp.Initializers, indent)
	if err != nil {
		return "", err
	}
	return block, nil
}
