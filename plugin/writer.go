package plugin

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/pmezard/go-difflib/difflib"
)

//go:generate mockgen -source=writer.go -destination=writer_mock_test.go -package=plugin

// OutputWriter 负责落盘生成的文件
type OutputWriter interface {
	// WriteFile 写入一个生成文件，返回文件内容是否发生变化
	WriteFile(path string, data []byte) (bool, error)
}

// DiskWriter 写入磁盘，内容未变化时不重写文件
type DiskWriter struct{}

func (DiskWriter) WriteFile(path string, data []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("创建目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// ErrStaleOutput 检查模式下存在需要重新生成的文件
var ErrStaleOutput = errors.New("生成的文件已过期")

// CheckWriter 不写文件，只把磁盘内容与新内容的差异以 unified diff 输出
type CheckWriter struct {
	out io.Writer

	mu    sync.Mutex
	stale []string
}

func NewCheckWriter(out io.Writer) *CheckWriter {
	return &CheckWriter{out: out}
}

func (w *CheckWriter) WriteFile(path string, data []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	if bytes.Equal(existing, data) {
		return false, nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(existing)),
		B:        difflib.SplitLines(string(data)),
		FromFile: path,
		ToFile:   path + " (generated)",
		Context:  3,
	})
	if err != nil {
		return false, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stale = append(w.stale, path)
	if _, err := io.WriteString(w.out, diff); err != nil {
		return false, err
	}
	return true, nil
}

// Stale 返回内容不一致的文件（已排序）
func (w *CheckWriter) Stale() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Sorted(slices.Values(w.stale))
}

// Err 存在过期文件时返回 ErrStaleOutput
func (w *CheckWriter) Err() error {
	stale := w.Stale()
	if len(stale) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d 个文件需要重新生成", ErrStaleOutput, len(stale))
}
