// Package config 读取项目级配置文件 .memberwise.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName 默认配置文件名
const FileName = ".memberwise.yaml"

// Config 项目配置；命令行参数优先于文件中的值
type Config struct {
	Output   string        `yaml:"output"`   // 默认输出文件名模板，如 "$FILE+MemberwiseInit"
	Async    *bool         `yaml:"async"`    // 是否并行执行生成器
	Debounce time.Duration `yaml:"debounce"` // dev 模式的防抖间隔
	LogLevel string        `yaml:"logLevel"`
	Indent   int           `yaml:"indent"`   // 生成代码的缩进宽度
	Patterns []string      `yaml:"patterns"` // 未指定路径时扫描的模式
}

// Default 返回默认配置
func Default() *Config {
	async := true
	return &Config{
		Async:    &async,
		Debounce: 100 * time.Millisecond,
		LogLevel: "info",
		Indent:   2,
		Patterns: []string{"./..."},
	}
}

// Load 读取配置文件；path 为空时在 dir 及其上级目录中查找 .memberwise.yaml
// 找不到文件时返回默认配置
func Load(path, dir string) (*Config, error) {
	if path == "" {
		found, ok := Find(dir)
		if !ok {
			return Default(), nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	return cfg, nil
}

// Parse 解析配置内容，未设置的字段使用默认值
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查取值范围
func (c *Config) Validate() error {
	var errs []error
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce 不能为负数: %v", c.Debounce))
	}
	if c.Indent < 0 || c.Indent > 8 {
		errs = append(errs, fmt.Errorf("indent 必须在 0-8 之间: %d", c.Indent))
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error", "disabled":
	default:
		errs = append(errs, fmt.Errorf("未知的 logLevel: %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// AsyncEnabled 未配置时默认并行
func (c *Config) AsyncEnabled() bool {
	return c.Async == nil || *c.Async
}

// Find 从 dir 开始向上查找配置文件
func Find(dir string) (string, bool) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(abs, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", false
		}
		abs = parent
	}
}
