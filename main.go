package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/donutnomad/memberwise/internal/config"
	"github.com/donutnomad/memberwise/internal/hostproto"
	"github.com/donutnomad/memberwise/internal/logger"
	"github.com/donutnomad/memberwise/memberwisegen"
	"github.com/donutnomad/memberwise/plugin"
)

func init() {
	// 集中注册所有生成器
	plugin.MustRegister(memberwisegen.NewMemberwiseGenerator())
}

var (
	verbose    bool
	output     string
	noOutput   bool
	async      bool
	check      bool
	indent     int
	logLevel   string
	logJSON    bool
	configPath string
	dumpDecl   bool
)

// settings 命令行参数与配置文件合并后的结果
type settings struct {
	patterns []string
	output   string
	async    bool
	indent   int
	cfg      *config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "memberwise [路径...]",
		Short:         "为 @MemberwiseInit 标注的 Swift 类型生成成员初始化器",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogger(cmd)
		},
		RunE: runGen,
	}
	root.SetHelpTemplate(root.HelpTemplate() + helpFooter())

	flags := root.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "详细输出")
	flags.StringVar(&output, "output", "", "默认输出路径（支持模板变量 $FILE, $PACKAGE）")
	flags.BoolVar(&noOutput, "no-output", false, "忽略配置文件中的默认输出，使用生成器自身的默认值")
	flags.BoolVar(&async, "async", true, "并行执行生成器")
	flags.BoolVar(&check, "check", false, "只检查生成的文件是否最新，不写入")
	flags.IntVar(&indent, "indent", 0, "生成代码的缩进宽度（默认取配置文件，否则为 2）")
	flags.StringVar(&logLevel, "log-level", "", "日志级别: debug|info|warn|error|disabled")
	flags.BoolVar(&logJSON, "log-json", false, "以 JSON 格式输出日志")
	flags.StringVar(&configPath, "config", "", "配置文件路径（默认向上查找 "+config.FileName+"）")

	genCmd := &cobra.Command{
		Use:   "gen [路径...]",
		Short: "执行代码生成（默认命令）",
		RunE:  runGen,
	}
	devCmd := &cobra.Command{
		Use:   "dev [路径...]",
		Short: "启动开发模式，监听文件变动自动生成",
		RunE:  runDev,
	}
	expandCmd := &cobra.Command{
		Use:   "expand <file.swift>",
		Short: "打印文件中每个 @MemberwiseInit 类型的展开结果与诊断",
		Args:  cobra.ExactArgs(1),
		RunE:  runExpand,
	}
	expandCmd.Flags().BoolVar(&dumpDecl, "dump", false, "同时打印解析得到的声明结构")
	pluginCmd := &cobra.Command{
		Use:   "plugin",
		Short: "以插件模式运行：从标准输入逐行读取展开请求，向标准输出写回结果",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return hostproto.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), hostproto.Expand)
		},
	}

	root.AddCommand(genCmd, devCmd, expandCmd, pluginCmd)
	return root
}

func setupLogger(cmd *cobra.Command) error {
	level := logLevel
	if level == "" {
		level = string(logger.InfoLevel)
		if verbose {
			level = string(logger.DebugLevel)
		}
	}
	switch logger.LogLevel(level) {
	case logger.DebugLevel, logger.InfoLevel, logger.WarnLevel, logger.ErrorLevel, logger.DisabledLevel:
	default:
		return fmt.Errorf("未知的日志级别: %q", level)
	}
	logger.SetupLogger(level, logJSON, false)
	cmd.SetContext(logger.ContextWithLogger(cmd.Context(), logger.GetDefault()))
	return nil
}

// loadSettings 读取配置文件并用显式设置的命令行参数覆盖
func loadSettings(cmd *cobra.Command, args []string) (*settings, error) {
	cfg, err := config.Load(configPath, ".")
	if err != nil {
		return nil, err
	}
	// 配置文件中的日志级别只在命令行未指定时生效
	if logLevel == "" && !verbose && cfg.LogLevel != "" {
		logger.SetupLogger(cfg.LogLevel, logJSON, false)
		cmd.SetContext(logger.ContextWithLogger(cmd.Context(), logger.GetDefault()))
	}

	s := &settings{
		patterns: args,
		output:   cfg.Output,
		async:    cfg.AsyncEnabled(),
		indent:   cfg.Indent,
		cfg:      cfg,
	}
	if len(s.patterns) == 0 {
		s.patterns = lo.Ternary(len(cfg.Patterns) > 0, cfg.Patterns, []string{"./..."})
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		s.output = output
	}
	if noOutput {
		s.output = ""
	}
	if flags.Changed("async") {
		s.async = async
	}
	if flags.Changed("indent") {
		s.indent = indent
	}
	return s, nil
}

func requireGenerators() (*plugin.Registry, error) {
	registry := plugin.Global()
	if len(registry.Generators()) == 0 {
		return nil, errors.New("没有已注册的生成器")
	}
	return registry, nil
}

func runGen(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)

	s, err := loadSettings(cmd, args)
	if err != nil {
		log.Error("加载配置失败", "err", err)
		return err
	}
	registry, err := requireGenerators()
	if err != nil {
		log.Error(err.Error())
		return err
	}

	if verbose {
		for _, gen := range registry.Generators() {
			anns := lo.Map(gen.Annotations(), func(item string, _ int) string {
				return "@" + item
			})
			log.Debug("已注册生成器", "name", gen.Name(), "annotations", strings.Join(anns, ","))
		}
	}

	stats, err := plugin.RunWithOptionsAndStats(ctx, &plugin.RunOptions{
		Registry:   registry,
		Patterns:   s.patterns,
		Verbose:    verbose,
		Output:     s.output,
		Async:      s.async,
		Indent:     s.indent,
		Check:      check,
		DiffOutput: cmd.OutOrStdout(),
	})
	if err != nil {
		if errors.Is(err, plugin.ErrStaleOutput) {
			log.Error("生成的文件不是最新的，请重新运行 memberwise gen", "files", stats.FileCount)
		} else {
			log.Error("生成失败", "err", err)
		}
		return err
	}

	// 输出统计信息
	if stats != nil && (stats.FileCount > 0 || verbose) {
		log.Info("生成完成",
			"targets", stats.TargetCount,
			"files", stats.FileCount,
			"unchanged", stats.UnchangedCount,
			"scan", stats.ScanDuration,
			"generate", stats.GenerateDuration,
			"total", stats.TotalDuration,
		)
	}
	return nil
}

func helpFooter() string {
	var sb strings.Builder
	registry := plugin.Global()
	if len(registry.Generators()) > 0 {
		sb.WriteString("\n支持的注解:\n")
		sb.WriteString(plugin.FormatHelpText(registry))
	}
	sb.WriteString(`模板变量:
  $FILE     - 源文件名（不含 .swift 后缀）
  $PACKAGE  - 源文件所在目录名

示例:
  memberwise                                扫描当前目录（默认 ./...）
  memberwise -v ./Sources/...               详细模式扫描 Sources 目录
  memberwise --output '$FILE+Init' ./...    指定输出文件名
  memberwise gen --check ./...              检查生成的文件是否最新
  memberwise dev ./Sources/...              开发模式，监听文件变动
  memberwise expand Sources/User.swift      查看单个文件的展开结果
`)
	return sb.String()
}
