package plugin

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/donutnomad/memberwise/internal/logger"
	"github.com/donutnomad/memberwise/internal/render"
)

// Run 运行代码生成
// 1. 扫描指定路径的注解
// 2. 将目标分发给对应的生成器
// 3. 执行生成器
// 4. 合并同一文件的输出并写入
func Run(ctx context.Context, registry *Registry, patterns ...string) error {
	opts := &RunOptions{
		Registry: registry,
		Patterns: patterns,
	}
	return RunWithOptions(ctx, opts)
}

// RunGlobal 使用全局注册表运行
func RunGlobal(ctx context.Context, patterns ...string) error {
	return Run(ctx, globalRegistry, patterns...)
}

// RunOptions 运行选项
type RunOptions struct {
	Registry *Registry
	Patterns []string
	Verbose  bool
	Output   string // 命令行或配置文件指定的默认输出路径（最低优先级）
	Async    bool   // 是否并行执行生成器
	Indent   int    // 生成代码的缩进宽度，0 使用默认值

	// Check 检查模式：不写文件，输出差异，存在差异时返回 ErrStaleOutput
	Check      bool
	DiffOutput io.Writer // 检查模式的差异输出，默认 os.Stdout

	// Writer 自定义输出，设置后忽略 Check
	Writer OutputWriter
}

// RunStats 运行统计信息
type RunStats struct {
	ScanDuration     time.Duration // 扫描耗时
	GenerateDuration time.Duration // 生成耗时
	TotalDuration    time.Duration // 总耗时
	TargetCount      int           // 目标数量
	FileCount        int           // 写入（或检查模式下不一致）的文件数量
	UnchangedCount   int           // 内容未变化的文件数量
}

// RunWithOptions 带选项运行
func RunWithOptions(ctx context.Context, opts *RunOptions) error {
	_, err := RunWithOptionsAndStats(ctx, opts)
	return err
}

// genResultItem 存储单个生成器的执行结果
type genResultItem struct {
	genName string
	result  *GenerateResult
	err     error
}

// RunWithOptionsAndStats 带选项运行并返回统计信息
func RunWithOptionsAndStats(ctx context.Context, opts *RunOptions) (*RunStats, error) {
	totalStart := time.Now()
	stats := &RunStats{}
	log := logger.FromContext(ctx)

	registry := opts.Registry
	if registry == nil {
		registry = globalRegistry
	}

	annotations := registry.Annotations()
	if len(annotations) == 0 {
		return nil, fmt.Errorf("没有已注册的生成器")
	}

	// 扫描
	scanStart := time.Now()
	scanner := NewScanner(
		WithAnnotationFilter(annotations...),
		WithScannerVerbose(opts.Verbose),
	)
	result, err := scanner.Scan(ctx, opts.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("扫描失败: %w", err)
	}
	stats.ScanDuration = time.Since(scanStart)

	allErrors := slices.Clone(result.Errors)

	stats.TargetCount = len(result.All())
	if stats.TargetCount == 0 {
		log.Debug("没有找到任何带注解的目标")
		stats.TotalDuration = time.Since(totalStart)
		return stats, summarize(log, allErrors, nil)
	}
	if opts.Verbose {
		log.Info("扫描完成", "targets", stats.TargetCount, "elapsed", stats.ScanDuration)
	}

	generateStart := time.Now()
	dispatch := registry.DispatchTargets(result)

	// 按优先级排序生成器名称（优先级数字越小越靠前）
	genNames := lo.Keys(dispatch)
	slices.SortFunc(genNames, func(a, b string) int {
		genA, _ := registry.GetByName(a)
		genB, _ := registry.GetByName(b)
		if genA.Priority() != genB.Priority() {
			return genA.Priority() - genB.Priority()
		}
		return strings.Compare(a, b)
	})

	// 先串行解析所有目标的参数（避免并发修改共享数据）
	for _, genName := range genNames {
		gen, _ := registry.GetByName(genName)
		kept, errs := parseTargetParams(gen, dispatch[genName])
		dispatch[genName] = kept
		allErrors = append(allErrors, errs...)
	}

	executeGenerator := func(genName string) genResultItem {
		targets := dispatch[genName]
		gen, ok := registry.GetByName(genName)
		if !ok || len(targets) == 0 {
			return genResultItem{genName: genName}
		}

		genCtx := &GenerateContext{
			Targets:       targets,
			FileConfigs:   result.FileConfigs,
			DefaultOutput: opts.Output,
			Indent:        opts.Indent,
			Verbose:       opts.Verbose,
		}

		start := time.Now()
		genResult, err := gen.Generate(logger.ContextWithLogger(ctx, log.With("generator", genName)), genCtx)
		if opts.Verbose {
			log.Info("执行生成器", "generator", genName, "targets", len(targets), "elapsed", time.Since(start))
		}
		return genResultItem{genName: genName, result: genResult, err: err}
	}

	items := make([]genResultItem, len(genNames))
	if opts.Async {
		var wg sync.WaitGroup
		for i, genName := range genNames {
			wg.Add(1)
			go func() {
				defer wg.Done()
				items[i] = executeGenerator(genName)
			}()
		}
		wg.Wait()
	} else {
		for i, genName := range genNames {
			items[i] = executeGenerator(genName)
		}
	}

	// 按优先级顺序收集输出，按文件分组
	fileOutputs := make(map[string][]*render.File)
	fileGenNames := make(map[string][]string)
	for _, item := range items {
		if item.err != nil {
			allErrors = append(allErrors, fmt.Errorf("生成器 %s 执行失败: %w", item.genName, item.err))
			continue
		}
		if item.result == nil {
			continue
		}
		for path, file := range item.result.Outputs {
			fileOutputs[path] = append(fileOutputs[path], file)
			fileGenNames[path] = append(fileGenNames[path], item.genName)
		}
		allErrors = append(allErrors, item.result.Errors...)
	}

	writer := opts.Writer
	var checker *CheckWriter
	if writer == nil {
		if opts.Check {
			out := opts.DiffOutput
			if out == nil {
				out = os.Stdout
			}
			checker = NewCheckWriter(out)
			writer = checker
		} else {
			writer = DiskWriter{}
		}
	}

	paths := lo.Keys(fileOutputs)
	slices.Sort(paths)
	for _, path := range paths {
		merged := mergeWithSeparator(fileOutputs[path], fileGenNames[path])
		changed, err := writer.WriteFile(path, merged.Bytes())
		switch {
		case err != nil:
			allErrors = append(allErrors, fmt.Errorf("写入文件 %s 失败: %w", path, err))
		case !changed:
			stats.UnchangedCount++
			log.Debug("文件未变化", "file", path)
		case checker != nil:
			stats.FileCount++
			log.Warn("文件需要重新生成", "file", path)
		default:
			stats.FileCount++
			log.Info("生成文件", "file", path)
		}
	}

	stats.GenerateDuration = time.Since(generateStart)
	stats.TotalDuration = time.Since(totalStart)

	var staleErr error
	if checker != nil {
		staleErr = checker.Err()
	}
	return stats, summarize(log, allErrors, staleErr)
}

// parseTargetParams 将注解参数解析到生成器的参数结构体中；解析失败的目标被移除
func parseTargetParams(gen Generator, targets []*AnnotatedTarget) ([]*AnnotatedTarget, []error) {
	if gen.NewParams() == nil {
		return targets, nil
	}

	var kept []*AnnotatedTarget
	var errs []error
	for _, target := range targets {
		ann, ok := lo.Find(target.Annotations, func(a *Annotation) bool {
			return slices.Contains(gen.Annotations(), a.Name)
		})
		if !ok {
			continue
		}

		params := gen.NewParams()
		val := reflect.ValueOf(params)
		if val.Kind() != reflect.Pointer {
			errs = append(errs, fmt.Errorf("NewParams() 必须返回指针类型, 得到: %T", params))
			continue
		}
		if err := ParseAnnotationParams(ann, params, gen.ParamDefs()); err != nil {
			errs = append(errs, fmt.Errorf("%s:%d:%d: 解析参数失败: %w",
				target.Target.FilePath, ann.Attribute.Pos.Line, ann.Attribute.Pos.Column, err))
			continue
		}
		target.ParsedParams = val.Elem().Interface()
		kept = append(kept, target)
	}
	return kept, errs
}

// summarize 输出所有错误并返回汇总错误
func summarize(log logger.Logger, allErrors []error, staleErr error) error {
	for _, e := range allErrors {
		log.Error(e.Error())
	}
	if len(allErrors) > 0 {
		return fmt.Errorf("生成过程中出现 %d 个错误", len(allErrors))
	}
	return staleErr
}

// mergeWithSeparator 合并多个生成器对同一文件的输出
// 多于一个生成器时，每段输出前加上生成器名称分隔符
func mergeWithSeparator(files []*render.File, genNames []string) *render.File {
	merged := render.NewFile()
	for i, file := range files {
		if len(files) > 1 {
			genName := "unknown"
			if i < len(genNames) {
				genName = genNames[i]
			}
			merged.AddBlock(fmt.Sprintf("// ================ %s ================", genName))
		}
		merged.Merge(file)
	}
	return merged
}

// GetOutputPath 根据注解参数和默认规则计算输出路径
// 优先级：注解参数 > 文件级插件配置 > 文件级默认配置 > 命令行参数 > 默认文件名
// 模板变量：
//   - $FILE: 源文件名（不含 .swift 后缀）
//   - $PACKAGE: 源文件所在目录名
func GetOutputPath(target *Target, ann *Annotation, defaultFileName string, fileConfig *FileConfig, pluginName string, cmdOutput string) string {
	var output string
	if ann != nil {
		output = ann.GetParam("output")
	}
	if output == "" {
		output = fileConfig.GetPluginOutput(strings.ToLower(pluginName))
	}
	if output == "" {
		output = cmdOutput
	}
	if output == "" {
		return GetDefaultOutputPath(target, defaultFileName)
	}
	return resolveOutput(target, output)
}

// GetDefaultOutputPath 获取默认输出路径
func GetDefaultOutputPath(target *Target, defaultFileName string) string {
	if defaultFileName == "" {
		defaultFileName = "$FILE+Generated"
	}
	return resolveOutput(target, defaultFileName)
}

func resolveOutput(target *Target, output string) string {
	output = replaceTemplateVars(output, target)
	if !strings.HasSuffix(output, ".swift") {
		output += ".swift"
	}
	if filepath.IsAbs(output) {
		return output
	}
	// 相对于源文件目录
	return filepath.Join(filepath.Dir(target.FilePath), output)
}

// replaceTemplateVars 替换模板变量
func replaceTemplateVars(template string, target *Target) string {
	fileName := strings.TrimSuffix(filepath.Base(target.FilePath), ".swift")
	template = strings.ReplaceAll(template, "$FILE", fileName)
	template = strings.ReplaceAll(template, "$PACKAGE", target.ModuleName)
	return template
}
