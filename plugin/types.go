package plugin

import (
	"github.com/donutnomad/memberwise/internal/render"
	"github.com/donutnomad/memberwise/internal/syntax"
)

// TargetKind 表示注解目标的类型
type TargetKind int

const (
	TargetStruct    TargetKind = iota + 1 // 结构体
	TargetClass                           // 类
	TargetActor                           // actor
	TargetEnum                            // 枚举
	TargetExtension                       // 扩展
	TargetProtocol                        // 协议
)

func (k TargetKind) String() string {
	switch k {
	case TargetStruct:
		return "struct"
	case TargetClass:
		return "class"
	case TargetActor:
		return "actor"
	case TargetEnum:
		return "enum"
	case TargetExtension:
		return "extension"
	case TargetProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// TargetKindOf 将声明种类映射为目标类型
func TargetKindOf(kind syntax.DeclKind) TargetKind {
	switch kind {
	case syntax.KindStruct:
		return TargetStruct
	case syntax.KindClass:
		return TargetClass
	case syntax.KindActor:
		return TargetActor
	case syntax.KindEnum:
		return TargetEnum
	case syntax.KindExtension:
		return TargetExtension
	case syntax.KindProtocol:
		return TargetProtocol
	default:
		return 0
	}
}

// AllTargets 所有目标类型
var AllTargets = []TargetKind{TargetStruct, TargetClass, TargetActor, TargetEnum, TargetExtension, TargetProtocol}

// ParamDef 定义注解参数的元信息
type ParamDef struct {
	Name        string // 参数名称；"$0" 表示第一个无标签参数
	Required    bool   // 是否必填
	Default     string // 默认值（如果不是必填）
	Description string // 参数描述
}

// Annotation 表示解析后的注解
type Annotation struct {
	Name   string            // 注解名称，如 "MemberwiseInit"
	Params map[string]string // 注解参数，key 为小写标签
	Raw    string            // 原始注解文本

	Attribute syntax.Attribute // 原始属性，保留位置与参数顺序
}

// Target 表示注解的目标
type Target struct {
	Kind       TargetKind      // 目标类型
	Name       string          // 限定类型名，如 "Outer.Inner"
	ModuleName string          // 源文件所在目录名
	FilePath   string          // 文件路径
	Position   syntax.Position // 位置信息

	Imports []string // 源文件的导入模块
	Source  []byte   // 源文件内容，用于诊断摘录

	Decl *syntax.TypeDecl
}

// AnnotatedTarget 表示带注解的目标
type AnnotatedTarget struct {
	Target       *Target       // 目标信息
	Annotations  []*Annotation // 注解列表
	ParsedParams any           // 解析后的参数结构体
}

// ScanResult 表示扫描结果
type ScanResult struct {
	Types []*AnnotatedTarget // 带注解的类型声明，按文件与出现顺序

	// FileConfigs 文件级配置
	// key: 文件路径
	FileConfigs map[string]*FileConfig

	// Errors 无法解析的文件
	Errors []error
}

// All 返回所有带注解的目标
func (r *ScanResult) All() []*AnnotatedTarget {
	return r.Types
}

// ByAnnotation 按注解名称过滤
func (r *ScanResult) ByAnnotation(name string) []*AnnotatedTarget {
	var result []*AnnotatedTarget
	for _, t := range r.All() {
		if HasAnnotation(t.Annotations, name) {
			result = append(result, t)
		}
	}
	return result
}

// GenerateContext 生成上下文，传递给 Generator
type GenerateContext struct {
	Targets       []*AnnotatedTarget     // 该 Generator 需要处理的目标
	FileConfigs   map[string]*FileConfig // 文件级配置，key: 文件路径
	DefaultOutput string                 // 命令行或配置文件指定的默认输出路径（最低优先级）
	Indent        int                    // 生成代码的缩进宽度
	Verbose       bool                   // 详细输出
}

// GetFileConfig 获取指定文件的配置
func (c *GenerateContext) GetFileConfig(filePath string) *FileConfig {
	if c.FileConfigs == nil {
		return nil
	}
	return c.FileConfigs[filePath]
}

// GenerateResult 生成结果
// Generator 返回待写入的文件，由聚合器统一合并、写入
type GenerateResult struct {
	// Outputs 生成的文件
	// key: 输出文件路径
	Outputs map[string]*render.File

	// Errors 错误列表
	Errors []error

	// Skipped 跳过的数量
	Skipped int
}

// FileConfig 文件级生成配置
// 通过 // memberwise: 注释定义
// 示例:
//
//	// memberwise: -output `$FILE+Init`
//	// memberwise: plugin:memberwise -output `Generated/Inits`
type FileConfig struct {
	FilePath string // 文件路径

	// DefaultOutput 默认输出路径（对所有插件生效）
	DefaultOutput string

	// PluginOutputs 插件特定的输出路径
	// key: 插件名（小写）, value: 输出路径
	PluginOutputs map[string]string
}

// GetPluginOutput 获取指定插件的输出路径
// 优先返回插件特定配置，其次返回默认配置，最后返回空字符串
func (c *FileConfig) GetPluginOutput(pluginName string) string {
	if c == nil {
		return ""
	}
	if output, ok := c.PluginOutputs[pluginName]; ok {
		return output
	}
	return c.DefaultOutput
}

// NewGenerateResult 创建新的生成结果
func NewGenerateResult() *GenerateResult {
	return &GenerateResult{
		Outputs: make(map[string]*render.File),
	}
}

// AddOutput 添加输出文件；同一路径的多次添加会被合并
func (r *GenerateResult) AddOutput(path string, file *render.File) {
	if r.Outputs == nil {
		r.Outputs = make(map[string]*render.File)
	}
	if existing, ok := r.Outputs[path]; ok {
		existing.Merge(file)
		return
	}
	r.Outputs[path] = file
}

// AddError 添加错误
func (r *GenerateResult) AddError(err error) {
	r.Errors = append(r.Errors, err)
}

// HasErrors 检查是否有错误
func (r *GenerateResult) HasErrors() bool {
	return len(r.Errors) > 0
}
