package memberwise

import (
	"fmt"

	"github.com/donutnomad/memberwise/internal/syntax"
)

// Severity 诊断级别
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// TargetKind 诊断挂载的子声明种类
type TargetKind string

const (
	TargetType      TargetKind = "type"
	TargetVariable  TargetKind = "variable"
	TargetBinding   TargetKind = "binding"
	TargetAttribute TargetKind = "attribute"
	TargetArgument  TargetKind = "argument"
)

// Diagnostic 一条诊断描述，由宿主负责最终展示
type Diagnostic struct {
	Severity Severity        `json:"severity"`
	Message  string          `json:"message"`
	Target   TargetKind      `json:"target"`
	Node     string          `json:"node,omitempty"` // 挂载节点的简述，如 "@Init" 或绑定名
	Pos      syntax.Position `json:"pos"`
}

func (d Diagnostic) String() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%d:%d: %s: %s", d.Pos.Line, d.Pos.Column, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// HasErrors 检查诊断中是否有 error 级别
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

const (
	msgMultipleConfigurations = "Multiple @Init configurations are not supported by @MemberwiseInit"
	msgRequiresTypeAnnotation = "@MemberwiseInit requires a type annotation."
	msgTupleDestructuring     = "@MemberwiseInit does not support tuple destructuring for property declarations. Use multiple declarations instead."
	msgLabelOnMultipleBinding = "Custom 'label' can't be applied to multiple bindings"
	msgDeprecatedIgnore       = "@Init(.ignore) is deprecated; use @Init(ignore: true)"
	msgDeprecatedEscaping     = "@Init(.escaping) is deprecated; use @Init(escaping: true)"
)

func msgInvalidLabel(label string) string {
	return fmt.Sprintf("Invalid label value %q", label)
}

func msgLabelConflictsWithLabel(label string) string {
	return fmt.Sprintf("Label %q conflicts with another label", label)
}

func msgLabelConflictsWithProperty(label string) string {
	return fmt.Sprintf("Label %q conflicts with a property name", label)
}

func attributeDiagnostic(severity Severity, attr syntax.Attribute, msg string) Diagnostic {
	return Diagnostic{Severity: severity, Message: msg, Target: TargetAttribute, Node: "@" + attr.Name, Pos: attr.Pos}
}

func argumentDiagnostic(severity Severity, arg syntax.Argument, msg string) Diagnostic {
	node := arg.Value
	if arg.Label != "" {
		node = arg.Label + ": " + arg.Value
	}
	return Diagnostic{Severity: severity, Message: msg, Target: TargetArgument, Node: node, Pos: arg.Pos}
}

func bindingDiagnostic(b *PropertyBinding, msg string) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Message:  msg,
		Target:   TargetBinding,
		Node:     b.Binding.Pattern.String(),
		Pos:      b.Binding.Pos,
	}
}
