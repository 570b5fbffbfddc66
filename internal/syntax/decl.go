package syntax

// InitializerDecl 合成的初始化器声明
type InitializerDecl struct {
	Attributes  []string    `json:"attributes,omitempty"`  // 如 "@available(*, unavailable)"
	AccessLevel string      `json:"accessLevel,omitempty"` // 为空表示不写访问修饰符
	Required    bool        `json:"required,omitempty"`
	Failable    bool        `json:"failable,omitempty"`
	Parameters  []Parameter `json:"parameters"`
	Body        []string    `json:"body"` // 每个元素是一条语句
}

// Parameter 初始化器参数
type Parameter struct {
	Label      string `json:"label,omitempty"` // 外部标签，与 Name 相同时渲染时省略
	Name       string `json:"name"`            // 内部绑定名
	Type       string `json:"type"`
	Escaping   bool   `json:"escaping,omitempty"`
	Default    string `json:"default,omitempty"`
	HasDefault bool   `json:"hasDefault,omitempty"`
}

// Signature 返回 "init(a:b:)" 形式的签名名称
func (d *InitializerDecl) Signature() string {
	s := "init("
	for _, p := range d.Parameters {
		label := p.Label
		if label == "" {
			label = p.Name
		}
		s += label + ":"
	}
	return s + ")"
}
