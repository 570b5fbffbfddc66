package memberwise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donutnomad/memberwise/internal/syntax"
)

func mustExpand(t *testing.T, decl *syntax.TypeDecl, opts Options) *Expansion {
	t.Helper()
	exp, err := Expand(decl, opts)
	require.NoError(t, err)
	require.NotEmpty(t, exp.Initializers)
	return exp
}

func paramNames(decl syntax.InitializerDecl) []string {
	names := make([]string, 0, len(decl.Parameters))
	for _, p := range decl.Parameters {
		names = append(names, p.Name)
	}
	return names
}

func TestExpand_BasicScenario(t *testing.T) {
	decl := structDecl(
		varMember(syntax.KeywordLet, bind("a", "Int")),
		varMember(syntax.KeywordVar, bindInit("b", "String", `"x"`)),
	)

	exp := mustExpand(t, decl, Options{})
	require.Len(t, exp.Initializers, 1)
	got := exp.Initializers[0]

	assert.Equal(t, "internal", got.AccessLevel)
	assert.Equal(t, []syntax.Parameter{
		{Name: "a", Type: "Int"},
		{Name: "b", Type: "String", Default: `"x"`, HasDefault: true},
	}, got.Parameters)
	assert.Equal(t, []string{"self.a = a", "self.b = b"}, got.Body)
	assert.Empty(t, exp.Diagnostics)
}

func TestExpand_DeclarationOrderAndRequiredParameters(t *testing.T) {
	decl := structDecl(
		varMember(syntax.KeywordVar, bind("z", "Int")),
		varMember(syntax.KeywordLet, bind("y", "String")),
		varMember(syntax.KeywordVar, bind("x", "[Int]")),
	)

	got := mustExpand(t, decl, Options{}).Initializers[0]
	assert.Equal(t, []string{"z", "y", "x"}, paramNames(got))
	for _, p := range got.Parameters {
		assert.False(t, p.HasDefault, "参数 %s 不应有默认值", p.Name)
	}
}

func TestExpand_IgnoredPropertyNeverAppears(t *testing.T) {
	decl := structDecl(
		annotated(varMember(syntax.KeywordVar, bind("a", "Int")), attr(InitAttribute, bare(".ignore"))),
		annotated(varMember(syntax.KeywordVar, bind("b", "Int")), attr(InitAttribute, labeled("ignore", "true"), labeled("label", `"bee"`))),
		annotated(varMember(syntax.KeywordVar, bind("c", "Int")), attr(InitRawAttribute, bare(".ignore"), labeled("assignee", `"self.x"`))),
		varMember(syntax.KeywordVar, bind("d", "Int")),
	)

	exp := mustExpand(t, decl, Options{})
	got := exp.Initializers[0]
	assert.Equal(t, []string{"d"}, paramNames(got))
	assert.Equal(t, []string{"self.d = d"}, got.Body)

	// 旧式 .ignore 标记产生弃用警告
	require.Len(t, exp.Diagnostics, 2)
	for _, d := range exp.Diagnostics {
		assert.Equal(t, SeverityWarning, d.Severity)
		assert.Equal(t, msgDeprecatedIgnore, d.Message)
	}
}

func TestExpand_InitializedConstantIsExcluded(t *testing.T) {
	decl := structDecl(
		varMember(syntax.KeywordLet, bindInit("a", "Int", "1")),
		annotated(varMember(syntax.KeywordLet, bindInit("b", "Int", "2")), attr(InitAttribute, labeled("default", "3"))),
		varMember(syntax.KeywordLet, bindInit("c", "", "3")),
		varMember(syntax.KeywordVar, bind("d", "Int")),
	)

	exp := mustExpand(t, decl, Options{})
	assert.Equal(t, []string{"d"}, paramNames(exp.Initializers[0]))
	assert.Empty(t, exp.Diagnostics)
}

func TestExpand_AssigneeRedirection(t *testing.T) {
	decl := structDecl(
		annotated(varMember(syntax.KeywordVar, bind("isOn", "Bool")),
			attr(InitWrapperAttribute, labeled("type", "Binding<Bool>.self")),
			attr("Binding")),
		annotated(varMember(syntax.KeywordVar, bind("value", "Int")),
			attr(InitRawAttribute, labeled("assignee", `"self.storage"`))),
		annotated(varMember(syntax.KeywordVar, bind("other", "Int")),
			attr(InitWrapperAttribute, labeled("assignee", `"self.ignored"`))),
	)

	got := mustExpand(t, decl, Options{}).Initializers[0]
	assert.Equal(t, []string{
		"self._isOn = isOn",
		"self.storage = value",
		"self._other = other",
	}, got.Body)
	assert.Equal(t, "Binding<Bool>", got.Parameters[0].Type)
}

func TestExpand_MultipleConfigurationAttributes(t *testing.T) {
	second := attr(InitRawAttribute)
	second.Pos = syntax.Position{Line: 3, Column: 9}
	decl := structDecl(
		annotated(varMember(syntax.KeywordVar, bind("a", "Int")), attr(InitAttribute), second),
		varMember(syntax.KeywordVar, bind("b", "Int")),
	)

	exp := mustExpand(t, decl, Options{})
	assert.Equal(t, []string{"b"}, paramNames(exp.Initializers[0]))
	require.Len(t, exp.Diagnostics, 1)
	d := exp.Diagnostics[0]
	assert.Equal(t, SeverityError, d.Severity)
	assert.Equal(t, msgMultipleConfigurations, d.Message)
	assert.Equal(t, TargetAttribute, d.Target)
	assert.Equal(t, "@InitRaw", d.Node)
	assert.Equal(t, syntax.Position{Line: 3, Column: 9}, d.Pos)
}

func TestExpand_TupleDestructuring(t *testing.T) {
	tuple := syntax.Binding{
		Pattern: syntax.Pattern{Tuple: true, Elements: []syntax.Pattern{{Name: "x"}, {Name: "y"}}},
		Type:    "(Int, Int)",
		Pos:     syntax.Position{Line: 2, Column: 7},
	}
	decl := structDecl(
		varMember(syntax.KeywordVar, tuple),
		varMember(syntax.KeywordVar, bind("z", "Int")),
	)

	exp := mustExpand(t, decl, Options{})
	assert.Equal(t, []string{"z"}, paramNames(exp.Initializers[0]))
	require.Len(t, exp.Diagnostics, 1)
	assert.Equal(t, msgTupleDestructuring, exp.Diagnostics[0].Message)
	assert.Equal(t, TargetBinding, exp.Diagnostics[0].Target)
	assert.Equal(t, "(x, y)", exp.Diagnostics[0].Node)
}

func TestExpand_RequiresTypeAnnotation(t *testing.T) {
	decl := structDecl(
		varMember(syntax.KeywordVar, bindInit("count", "", "0")),
		annotated(varMember(syntax.KeywordVar, bindInit("typed", "", "0")), attr(InitAttribute, labeled("type", "Int.self"))),
	)

	exp := mustExpand(t, decl, Options{})
	got := exp.Initializers[0]
	assert.Equal(t, []string{"typed"}, paramNames(got))
	assert.Equal(t, "Int", got.Parameters[0].Type)
	require.Len(t, exp.Diagnostics, 1)
	assert.Equal(t, msgRequiresTypeAnnotation, exp.Diagnostics[0].Message)
	assert.Equal(t, "count", exp.Diagnostics[0].Node)
}

func TestExpand_BackwardTypeInference(t *testing.T) {
	decl := structDecl(
		varMember(syntax.KeywordVar, bind("x", ""), bind("y", ""), bind("z", "Double")),
		varMember(syntax.KeywordLet, bind("a", ""), bind("b", "String")),
		// 带初始值的绑定同样继承类型
		varMember(syntax.KeywordVar, bindInit("c", "", "1"), bind("d", "Int")),
		// 推断不跨越声明
		varMember(syntax.KeywordVar, bindInit("e", "", "2")),
		varMember(syntax.KeywordVar, bind("f", "Int")),
	)

	exp := mustExpand(t, decl, Options{})
	got := exp.Initializers[0]
	assert.Equal(t, []string{"x", "y", "z", "a", "b", "c", "d", "f"}, paramNames(got))
	for _, p := range got.Parameters[:3] {
		assert.Equal(t, "Double", p.Type)
	}
	assert.Equal(t, "String", got.Parameters[3].Type)
	assert.Equal(t, syntax.Parameter{Name: "c", Type: "Int", Default: "1", HasDefault: true}, got.Parameters[5])
	assert.Equal(t, syntax.Parameter{Name: "d", Type: "Int"}, got.Parameters[6])

	require.Len(t, exp.Diagnostics, 1)
	assert.Equal(t, msgRequiresTypeAnnotation, exp.Diagnostics[0].Message)
	assert.Equal(t, "e", exp.Diagnostics[0].Node)
}

func TestExpand_MemberFiltering(t *testing.T) {
	computed := bind("computed", "Int")
	computed.Accessors = []string{"get"}
	observed := bind("observed", "Int")
	observed.Accessors = []string{"didSet"}

	decl := structDecl(
		varMember(syntax.KeywordVar, computed),
		varMember(syntax.KeywordVar, observed),
		modified(varMember(syntax.KeywordVar, bind("shared", "Int")), "static"),
		modified(varMember(syntax.KeywordVar, bindInit("cache", "[Int]", "[]")), "lazy"),
		annotated(varMember(syntax.KeywordVar, bind("state", "Int")), attr("State")),
		syntax.Member{Other: "func"},
		varMember(syntax.KeywordVar, bind("plain", "Int")),
	)

	got := mustExpand(t, decl, Options{}).Initializers[0]
	assert.Equal(t, []string{"observed", "plain"}, paramNames(got))
}

func TestExpand_OptionalsDefaultNil(t *testing.T) {
	decl := func() *syntax.TypeDecl {
		return structDecl(
			varMember(syntax.KeywordVar, bind("a", "Int?")),
			varMember(syntax.KeywordLet, bind("b", "Optional<String>")),
			varMember(syntax.KeywordVar, bind("c", "Int")),
		)
	}

	tests := []struct {
		name     string
		opts     Options
		defaults []bool
	}{
		{name: "internal default", opts: Options{}, defaults: []bool{true, false, false}},
		{name: "public", opts: Options{AccessLevel: AccessPublic}, defaults: []bool{false, false, false}},
		{name: "package", opts: Options{AccessLevel: AccessPackage}, defaults: []bool{false, false, false}},
		{name: "fileprivate", opts: Options{AccessLevel: AccessFileprivate}, defaults: []bool{true, false, false}},
		{name: "forced true", opts: Options{AccessLevel: AccessPublic, OptionalsDefaultNil: boolPtr(true)}, defaults: []bool{true, true, false}},
		{name: "forced false", opts: Options{OptionalsDefaultNil: boolPtr(false)}, defaults: []bool{false, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decl()
			for i := range d.Members {
				d.Members[i].Variable.Modifiers = []syntax.Modifier{{Name: "public"}}
			}
			got := mustExpand(t, d, tt.opts).Initializers[0]
			for i, want := range tt.defaults {
				p := got.Parameters[i]
				assert.Equal(t, want, p.HasDefault, "参数 %s", p.Name)
				if want {
					assert.Equal(t, "nil", p.Default)
				}
			}
		})
	}
}

func TestExpand_FunctionReturningOptional(t *testing.T) {
	decl := structDecl(
		varMember(syntax.KeywordVar, bind("f", "() -> Int?")),
		varMember(syntax.KeywordVar, bind("g", "(() -> Int?)?")),
	)

	got := mustExpand(t, decl, Options{}).Initializers[0]
	assert.Equal(t, syntax.Parameter{Name: "f", Type: "() -> Int?", Escaping: true}, got.Parameters[0])
	assert.Equal(t, syntax.Parameter{Name: "g", Type: "(() -> Int?)?", Default: "nil", HasDefault: true}, got.Parameters[1])
}

func TestExpand_DefaultValuePrecedence(t *testing.T) {
	decl := structDecl(
		annotated(varMember(syntax.KeywordVar, bindInit("a", "Int", "0")), attr(InitAttribute, labeled("default", "42"))),
		annotated(varMember(syntax.KeywordVar, bind("b", "Int?")), attr(InitAttribute, labeled("default", ".init(1)"))),
		varMember(syntax.KeywordVar, bindInit("c", "Int?", "5")),
	)

	got := mustExpand(t, decl, Options{}).Initializers[0]
	assert.Equal(t, "42", got.Parameters[0].Default)
	assert.Equal(t, ".init(1)", got.Parameters[1].Default)
	assert.Equal(t, "5", got.Parameters[2].Default)
}

func TestExpand_Escaping(t *testing.T) {
	decl := structDecl(
		varMember(syntax.KeywordVar, bind("onTap", "() -> Void")),
		varMember(syntax.KeywordVar, bind("optional", "(() -> Void)?")),
		annotated(varMember(syntax.KeywordVar, bind("alias", "Handler")), attr(InitAttribute, labeled("escaping", "true"))),
		annotated(varMember(syntax.KeywordVar, bind("legacy", "Handler")), attr(InitAttribute, bare(".escaping"))),
		annotated(varMember(syntax.KeywordVar, bind("both", "Handler")), attr(InitAttribute, bare(".escaping"), labeled("escaping", "false"))),
		varMember(syntax.KeywordVar, bind("count", "Int")),
	)

	exp := mustExpand(t, decl, Options{})
	initDecl := exp.Initializers[0]
	got := make(map[string]bool)
	for _, p := range initDecl.Parameters {
		got[p.Name] = p.Escaping
	}
	assert.Equal(t, map[string]bool{
		"onTap":    true,
		"optional": false,
		"alias":    true,
		"legacy":   true,
		"both":     true,
		"count":    false,
	}, got)

	require.Len(t, exp.Diagnostics, 2)
	assert.Equal(t, msgDeprecatedEscaping, exp.Diagnostics[0].Message)
}

func TestExpand_AccessLevel(t *testing.T) {
	tests := []struct {
		name    string
		target  AccessLevel
		members []syntax.Member
		want    string
	}{
		{
			name:    "default internal",
			members: []syntax.Member{varMember(syntax.KeywordVar, bind("a", "Int"))},
			want:    "internal",
		},
		{
			name:    "public target with public property",
			target:  AccessPublic,
			members: []syntax.Member{modified(varMember(syntax.KeywordVar, bind("a", "Int")), "public")},
			want:    "public",
		},
		{
			name:    "public target narrowed by internal property",
			target:  AccessPublic,
			members: []syntax.Member{varMember(syntax.KeywordVar, bind("a", "Int"))},
			want:    "internal",
		},
		{
			name:   "private property narrows",
			target: AccessPublic,
			members: []syntax.Member{
				modified(varMember(syntax.KeywordVar, bind("a", "Int")), "public"),
				modified(varMember(syntax.KeywordVar, bind("b", "Int")), "private"),
			},
			want: "private",
		},
		{
			name:   "custom access override widens the property",
			target: AccessPublic,
			members: []syntax.Member{
				annotated(modified(varMember(syntax.KeywordVar, bind("a", "Int")), "private"), attr(InitAttribute, bare(".public"))),
			},
			want: "public",
		},
		{
			name:    "property never widens the target",
			target:  AccessFileprivate,
			members: []syntax.Member{modified(varMember(syntax.KeywordVar, bind("a", "Int")), "public")},
			want:    "fileprivate",
		},
		{
			name:    "open renders as public",
			target:  AccessOpen,
			members: []syntax.Member{modified(varMember(syntax.KeywordVar, bind("a", "Int")), "open")},
			want:    "public",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustExpand(t, structDecl(tt.members...), Options{AccessLevel: tt.target}).Initializers[0]
			assert.Equal(t, tt.want, got.AccessLevel)
		})
	}
}

func TestExpand_DeunderscoreParameters(t *testing.T) {
	decl := structDecl(
		varMember(syntax.KeywordVar, bind("_a", "Int")),
		varMember(syntax.KeywordVar, bind("_b", "Int")),
		varMember(syntax.KeywordVar, bind("b", "Int")),
		varMember(syntax.KeywordVar, bind("_1", "Int")),
	)

	got := mustExpand(t, decl, Options{DeunderscoreParameters: true}).Initializers[0]
	assert.Equal(t, "a", got.Parameters[0].Label)
	assert.Equal(t, "", got.Parameters[1].Label)
	assert.Equal(t, "", got.Parameters[2].Label)
	assert.Equal(t, "", got.Parameters[3].Label)
	assert.Equal(t, "self._a = _a", got.Body[0])

	got = mustExpand(t, decl, Options{}).Initializers[0]
	assert.Equal(t, "", got.Parameters[0].Label)
}

func TestExpand_Labels(t *testing.T) {
	t.Run("custom labels", func(t *testing.T) {
		decl := structDecl(
			annotated(varMember(syntax.KeywordVar, bind("a", "Int")), attr(InitAttribute, labeled("label", `"_"`))),
			annotated(varMember(syntax.KeywordVar, bind("b", "Int")), attr(InitAttribute, labeled("label", `"with"`))),
		)
		exp := mustExpand(t, decl, Options{})
		got := exp.Initializers[0]
		assert.Equal(t, "_", got.Parameters[0].Label)
		assert.Equal(t, "with", got.Parameters[1].Label)
		assert.Equal(t, "init(_:with:)", got.Signature())
		assert.Empty(t, exp.Diagnostics)
	})

	t.Run("conflicts exclude the offending property", func(t *testing.T) {
		decl := structDecl(
			annotated(varMember(syntax.KeywordVar, bind("a", "Int")), attr(InitAttribute, labeled("label", `"x"`))),
			annotated(varMember(syntax.KeywordVar, bind("b", "Int")), attr(InitAttribute, labeled("label", `"x"`))),
			annotated(varMember(syntax.KeywordVar, bind("c", "Int")), attr(InitAttribute, labeled("label", `"d"`))),
			varMember(syntax.KeywordVar, bind("d", "Int")),
			annotated(varMember(syntax.KeywordVar, bind("e", "Int")), attr(InitAttribute, labeled("label", `"1e"`))),
		)
		exp := mustExpand(t, decl, Options{})
		assert.Equal(t, []string{"a", "d"}, paramNames(exp.Initializers[0]))

		msgs := make([]string, 0, len(exp.Diagnostics))
		for _, d := range exp.Diagnostics {
			assert.Equal(t, TargetArgument, d.Target)
			msgs = append(msgs, d.Message)
		}
		assert.Equal(t, []string{
			msgLabelConflictsWithLabel("x"),
			msgLabelConflictsWithProperty("d"),
			msgInvalidLabel("1e"),
		}, msgs)
	})

	t.Run("label on multiple bindings", func(t *testing.T) {
		decl := structDecl(
			annotated(varMember(syntax.KeywordVar, bind("a", ""), bind("b", "Int")), attr(InitAttribute, labeled("label", `"x"`))),
			varMember(syntax.KeywordVar, bind("c", "Int")),
		)
		exp := mustExpand(t, decl, Options{})
		assert.Equal(t, []string{"c"}, paramNames(exp.Initializers[0]))
		require.Len(t, exp.Diagnostics, 1)
		assert.Equal(t, msgLabelOnMultipleBinding, exp.Diagnostics[0].Message)
	})
}

func TestExpand_UnsupportedDeclaration(t *testing.T) {
	for _, kind := range []syntax.DeclKind{syntax.KindEnum, syntax.KindExtension, syntax.KindProtocol} {
		t.Run(string(kind), func(t *testing.T) {
			decl := &syntax.TypeDecl{Kind: kind, Name: "E"}
			exp, err := Expand(decl, Options{})
			require.ErrorIs(t, err, ErrUnsupportedDeclaration)
			assert.Nil(t, exp)
			assert.Contains(t, err.Error(), "can only be attached to a struct, class, or actor; not to "+kind.WithArticle())
			assert.Equal(t, "@MemberwiseInit can only be attached to a struct, class, or actor; not to "+kind.WithArticle(), UnsupportedReason(err))
		})
	}
}

func TestExpand_ViewControllerSubclass(t *testing.T) {
	decl := &syntax.TypeDecl{
		Kind:      syntax.KindClass,
		Name:      "ProfileViewController",
		Inherited: []string{"UIKit.UIViewController", "Sendable"},
		Members:   []syntax.Member{varMember(syntax.KeywordLet, bind("user", "User"))},
	}

	exp := mustExpand(t, decl, Options{})
	require.Len(t, exp.Initializers, 2)
	assert.Equal(t, []string{"self.user = user", "super.init(nibName: nil, bundle: nil)"}, exp.Initializers[0].Body)

	coder := exp.Initializers[1]
	assert.True(t, coder.Required)
	assert.True(t, coder.Failable)
	assert.Equal(t, []string{"@available(*, unavailable)"}, coder.Attributes)
	assert.Equal(t, "init(coder:)", coder.Signature())

	t.Run("other base classes are untouched", func(t *testing.T) {
		for _, d := range []*syntax.TypeDecl{
			{Kind: syntax.KindClass, Name: "C", Inherited: []string{"NSObject"}},
			{Kind: syntax.KindClass, Name: "C", Inherited: []string{"Codable", "MyViewController"}},
			{Kind: syntax.KindStruct, Name: "S", Inherited: []string{"UIViewController"}},
		} {
			assert.Len(t, mustExpand(t, d, Options{}).Initializers, 1)
		}
	})
}

func TestExpand_Deterministic(t *testing.T) {
	decl := structDecl(
		varMember(syntax.KeywordVar, bind("a", ""), bind("b", "Int?")),
		annotated(varMember(syntax.KeywordVar, bind("c", "Int")), attr(InitAttribute, bare(".escaping"), labeled("label", `"see"`))),
		varMember(syntax.KeywordVar, bindInit("d", "", "1")),
	)

	first := mustExpand(t, decl, Options{AccessLevel: AccessPublic})
	second := mustExpand(t, decl, Options{AccessLevel: AccessPublic})
	assert.Equal(t, first.Initializers, second.Initializers)
	assert.Equal(t, first.Diagnostics, second.Diagnostics)
}

func TestExpandAnnotated(t *testing.T) {
	decl := structDecl(varMember(syntax.KeywordVar, bind("_name", "String?")))
	decl.Modifiers = []syntax.Modifier{{Name: "public"}}
	decl.Members[0].Variable.Modifiers = []syntax.Modifier{{Name: "public"}}
	decl.Attributes = []syntax.Attribute{
		attr(MacroName, bare(".public"), labeled("_optionalsDefaultNil", "true"), labeled("_deunderscoreParameters", "true")),
	}

	exp, err := ExpandAnnotated(decl)
	require.NoError(t, err)
	got := exp.Initializers[0]
	assert.Equal(t, "public", got.AccessLevel)
	assert.Equal(t, syntax.Parameter{Label: "name", Name: "_name", Type: "String?", Default: "nil", HasDefault: true}, got.Parameters[0])
}
