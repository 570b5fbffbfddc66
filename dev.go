package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/donutnomad/memberwise/internal/logger"
	"github.com/donutnomad/memberwise/internal/swiftparse"
	"github.com/donutnomad/memberwise/plugin"
)

// DevOptions dev 命令选项
type DevOptions struct {
	Patterns []string      // 监听的路径模式
	Verbose  bool          // 详细输出
	Output   string        // 默认输出路径
	Async    bool          // 异步执行
	Indent   int           // 生成代码的缩进宽度
	Debounce time.Duration // 防抖动时间
}

// devRunner 处理文件变动的核心逻辑
type devRunner struct {
	opts     *DevOptions
	registry *plugin.Registry
	watcher  *fsnotify.Watcher
	scanner  *plugin.Scanner
	ctx      context.Context // 用于响应退出信号
	log      logger.Logger

	// 防抖动相关
	mu          sync.Mutex
	pendingDirs map[string]*time.Timer // key: 源文件目录

	// generate 执行生成，测试中替换
	generate func(dir string)
}

// runDev 启动开发模式
func runDev(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}
	registry, err := requireGenerators()
	if err != nil {
		return err
	}

	opts := &DevOptions{
		Patterns: s.patterns,
		Verbose:  verbose,
		Output:   s.output,
		Async:    s.async,
		Indent:   s.indent,
		Debounce: s.cfg.Debounce,
	}
	if err := dev(cmd.Context(), registry, opts); err != nil {
		logger.FromContext(cmd.Context()).Error("开发模式退出", "err", err)
		return err
	}
	return nil
}

// dev 启动开发模式，直到 ctx 取消
func dev(ctx context.Context, registry *plugin.Registry, opts *DevOptions) error {
	log := logger.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听器失败: %w", err)
	}
	defer watcher.Close()

	runner := newDevRunner(ctx, registry, watcher, opts)

	// 退出时停止所有待处理的定时器
	defer runner.stop()

	dirs, err := collectWatchDirs(opts.Patterns)
	if err != nil {
		return fmt.Errorf("收集监听目录失败: %w", err)
	}
	if len(dirs) == 0 {
		return errors.New("没有找到需要监听的目录")
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("添加监听目录失败 %s: %w", dir, err)
		}
		log.Debug("监听目录", "dir", dir)
	}

	log.Info("开发模式已启动，按 Ctrl+C 退出", "dirs", len(dirs), "debounce", opts.Debounce)
	return runner.watchLoop(ctx)
}

func newDevRunner(ctx context.Context, registry *plugin.Registry, watcher *fsnotify.Watcher, opts *DevOptions) *devRunner {
	r := &devRunner{
		opts:        opts,
		registry:    registry,
		watcher:     watcher,
		scanner:     plugin.NewScanner(plugin.WithAnnotationFilter(registry.Annotations()...)),
		ctx:         ctx,
		log:         logger.FromContext(ctx),
		pendingDirs: make(map[string]*time.Timer),
	}
	r.generate = r.runGenerate
	return r
}

func (r *devRunner) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, timer := range r.pendingDirs {
		timer.Stop()
	}
}

// watchLoop 事件处理循环
func (r *devRunner) watchLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			r.handleEvent(event)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("监听错误", "err", err)
		}
	}
}

// handleEvent 处理文件事件
func (r *devRunner) handleEvent(event fsnotify.Event) {
	// 只关注 Write 和 Create 事件
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	filePath := event.Name
	if !strings.HasSuffix(filePath, ".swift") {
		return
	}

	// QuickMatchFile 会跳过生成的文件
	matched, err := r.scanner.QuickMatchFile(filePath)
	if err != nil {
		r.log.Debug("检查注解失败", "file", filePath, "err", err)
		return
	}
	if !matched {
		return
	}
	r.log.Debug("检测到文件变化", "file", filePath)

	// 保存到一半的文件先不生成
	if _, err := swiftparse.ParseFile(filePath); err != nil {
		r.log.Warn("语法错误", "err", err)
		return
	}

	r.scheduleGenerate(filepath.Dir(filePath))
}

// scheduleGenerate 防抖动调度生成
func (r *devRunner) scheduleGenerate(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if timer, exists := r.pendingDirs[dir]; exists {
		timer.Stop()
	}

	r.pendingDirs[dir] = time.AfterFunc(r.opts.Debounce, func() {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		r.generate(dir)

		r.mu.Lock()
		delete(r.pendingDirs, dir)
		r.mu.Unlock()
	})
}

// runGenerate 只生成变动文件所在的目录
func (r *devRunner) runGenerate(dir string) {
	r.log.Debug("触发代码生成", "dir", dir)

	stats, err := plugin.RunWithOptionsAndStats(r.ctx, &plugin.RunOptions{
		Registry: r.registry,
		Patterns: []string{dir},
		Verbose:  r.opts.Verbose,
		Output:   r.opts.Output,
		Async:    r.opts.Async,
		Indent:   r.opts.Indent,
	})
	if err != nil {
		r.log.Error("生成失败", "dir", dir, "err", err)
		return
	}

	if stats != nil && stats.FileCount > 0 {
		r.log.Info("生成完成", "dir", dir, "files", stats.FileCount, "elapsed", stats.TotalDuration)
	} else {
		r.log.Debug("生成完成: 无文件变化", "dir", dir)
	}
}

// watchSkippedDirs 不监听的目录
var watchSkippedDirs = []string{"Pods", "Carthage", "DerivedData", "testdata", "node_modules"}

// collectWatchDirs 收集所有需要监听的目录
func collectWatchDirs(patterns []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		baseDir := strings.TrimSuffix(pattern, "/...")

		absDir, err := filepath.Abs(baseDir)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(absDir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			// 单个文件监听其所在目录
			add(filepath.Dir(absDir))
			continue
		}
		if !recursive {
			add(absDir)
			continue
		}

		err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			name := d.Name()
			if path != absDir && (strings.HasPrefix(name, ".") || slices.Contains(watchSkippedDirs, name)) {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return dirs, nil
}
