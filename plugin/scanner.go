package plugin

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/donutnomad/memberwise/internal/logger"
	"github.com/donutnomad/memberwise/internal/swiftparse"
)

// Scanner 两阶段并行注解扫描器
// 第一阶段：快速文本匹配，找出可能包含注解的文件
// 第二阶段：对匹配的文件进行声明级解析
type Scanner struct {
	workers int
	verbose bool

	// 注解过滤器（可选）
	annotationFilter []string
}

// ScannerOption 扫描器选项
type ScannerOption func(*Scanner)

func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithScannerVerbose(v bool) ScannerOption {
	return func(s *Scanner) {
		s.verbose = v
	}
}

func WithAnnotationFilter(annotations ...string) ScannerOption {
	return func(s *Scanner) {
		s.annotationFilter = annotations
	}
}

func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// quickMatchRegex 快速匹配属性 @Name
var quickMatchRegex = regexp.MustCompile(`@(\w+)`)

// generatedPrefix 生成文件的首行前缀
const generatedPrefix = "// Code generated "

// skippedDirs 不扫描的目录
var skippedDirs = []string{"Pods", "Carthage", "DerivedData", "testdata", "node_modules"}

// Scan 扫描指定路径
// 支持: ./... ./Sources/... ./Sources /abs/path/... 以及单个 .swift 文件
func (s *Scanner) Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	allFiles, err := s.collectFiles(patterns)
	if err != nil {
		return nil, err
	}
	if len(allFiles) == 0 {
		return &ScanResult{FileConfigs: map[string]*FileConfig{}}, nil
	}

	// ========== 第一阶段：快速匹配 ==========
	matchedFiles := s.quickMatch(ctx, allFiles)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.verbose {
		logger.FromContext(ctx).Debug("快速匹配完成", "files", len(allFiles), "matched", len(matchedFiles))
	}
	if len(matchedFiles) == 0 {
		return &ScanResult{FileConfigs: map[string]*FileConfig{}}, nil
	}

	// ========== 第二阶段：声明解析 ==========
	result := s.parseFiles(ctx, matchedFiles)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// runWorkers 用 s.workers 个 goroutine 并行处理 files，结果按 files 的顺序返回
func runWorkers[T any](ctx context.Context, workers int, files []string, fn func(string) T) []T {
	results := make([]T, len(files))
	indexCh := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				results[idx] = fn(files[idx])
			}
		}()
	}

feed:
	for i := range files {
		select {
		case <-ctx.Done():
			break feed
		case indexCh <- i:
		}
	}
	close(indexCh)
	wg.Wait()
	return results
}

// quickMatch 第一阶段：快速文本匹配
func (s *Scanner) quickMatch(ctx context.Context, files []string) []string {
	log := logger.FromContext(ctx)
	matched := runWorkers(ctx, s.workers, files, func(file string) bool {
		ok, err := s.QuickMatchFile(file)
		if err != nil {
			log.Warn("读取文件失败", "file", file, "err", err)
		}
		return ok
	})

	var result []string
	for i, ok := range matched {
		if ok {
			result = append(result, files[i])
		}
	}
	return result
}

// QuickMatchFile 快速检查文件是否包含已注册的属性或 memberwise: 指令
// 用于 dev 模式判断文件是否需要触发代码生成；生成的文件总是跳过
func (s *Scanner) QuickMatchFile(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 4<<20)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			if strings.HasPrefix(line, generatedPrefix) {
				return false, nil
			}
		}

		if strings.Contains(line, "@") {
			for _, match := range quickMatchRegex.FindAllStringSubmatch(line, -1) {
				if len(s.annotationFilter) == 0 || slices.Contains(s.annotationFilter, match[1]) {
					return true, nil
				}
			}
		}
		if _, ok := directiveArgs(line); ok {
			return true, nil
		}
	}
	return false, scanner.Err()
}

type fileScan struct {
	targets []*AnnotatedTarget
	config  *FileConfig
	err     error
}

// parseFiles 第二阶段：解析匹配的文件
func (s *Scanner) parseFiles(ctx context.Context, files []string) *ScanResult {
	scans := runWorkers(ctx, s.workers, files, s.parseFile)

	result := &ScanResult{
		FileConfigs: make(map[string]*FileConfig),
	}
	log := logger.FromContext(ctx)
	for _, r := range scans {
		if r.err != nil {
			log.Warn("解析文件失败", "err", r.err)
			result.Errors = append(result.Errors, r.err)
			continue
		}
		result.Types = append(result.Types, r.targets...)
		if r.config != nil {
			result.FileConfigs[r.config.FilePath] = r.config
		}
	}
	return result
}

// parseFile 解析单个文件
func (s *Scanner) parseFile(filePath string) fileScan {
	var result fileScan

	src, err := os.ReadFile(filePath)
	if err != nil {
		result.err = err
		return result
	}
	if bytes.HasPrefix(src, []byte(generatedPrefix)) {
		return result
	}

	file, err := swiftparse.Parse(filePath, src)
	if err != nil {
		result.err = fmt.Errorf("%s:%w", filePath, err)
		return result
	}

	config, err := parseFileConfig(filePath, src)
	if err != nil {
		result.err = err
		return result
	}
	result.config = config

	moduleName := filepath.Base(filepath.Dir(filePath))
	for _, node := range file.Types {
		annotations := ParseAnnotations(node.Attributes)
		if len(s.annotationFilter) > 0 {
			annotations = FilterByNames(annotations, s.annotationFilter...)
		}
		if len(annotations) == 0 {
			continue
		}
		result.targets = append(result.targets, &AnnotatedTarget{
			Target: &Target{
				Kind:       TargetKindOf(node.Kind),
				Name:       node.QualifiedName,
				ModuleName: moduleName,
				FilePath:   filePath,
				Position:   node.Pos,
				Imports:    file.Imports,
				Source:     src,
				Decl:       node.TypeDecl,
			},
			Annotations: annotations,
		})
	}
	return result
}

// collectFiles 收集所有需要扫描的文件
func (s *Scanner) collectFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		if recursive {
			pattern = strings.TrimSuffix(pattern, "/...")
		}

		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if strings.HasSuffix(absPath, ".swift") {
				add(absPath)
			}
			continue
		}

		err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == absPath {
					return nil
				}
				name := d.Name()
				if !recursive || strings.HasPrefix(name, ".") || slices.Contains(skippedDirs, name) {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, ".swift") {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	slices.Sort(files)
	return files, nil
}

// 默认扫描器
var defaultScanner = NewScanner()

func Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	return defaultScanner.Scan(ctx, patterns...)
}

func ScanWithFilter(ctx context.Context, annotations []string, patterns ...string) (*ScanResult, error) {
	scanner := NewScanner(WithAnnotationFilter(annotations...))
	return scanner.Scan(ctx, patterns...)
}
