package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFunctionType(t *testing.T) {
	tests := []struct {
		typ  string
		want bool
	}{
		{"() -> Void", true},
		{"(Int, String) -> Bool", true},
		{"(Int) async throws -> Void", true},
		{"@Sendable () -> Void", true},
		{"@MainActor @Sendable (String) -> Void", true},
		{"(() -> Void)", true},
		{"(() -> Void)?", false},
		{"(Int, String)", false},
		{"[() -> Void]", false},
		{"Handler", false},
		{"Int", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFunctionType(tt.typ))
		})
	}
}

func TestIsOptionalType(t *testing.T) {
	tests := []struct {
		typ  string
		want bool
	}{
		{"Int?", true},
		{"String!", true},
		{"Optional<Int>", true},
		{"Swift.Optional<[String: Int]>", true},
		{"(() -> Void)?", true},
		{"@Sendable (() -> Int?)?", true},
		{"() -> Int?", false},
		{"(Int) throws -> String!", false},
		{"@escaping () async -> Optional<Int>", false},
		{"[Int?]", false},
		{"Optional<Int>.Wrapped", false},
		{"Int", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOptionalType(tt.typ))
		})
	}
}

func TestStringLiteralValue(t *testing.T) {
	tests := []struct {
		value string
		want  string
		ok    bool
	}{
		{`"label"`, "label", true},
		{`""`, "", true},
		{` "self.storage" `, "self.storage", true},
		{`"a\"b"`, `a"b`, true},
		{`"\(name)"`, "", false},
		{`"""x"""`, "", false},
		{`label`, "", false},
		{`"open`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := StringLiteralValue(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemberAccessName(t *testing.T) {
	name, ok := MemberAccessName(".public")
	assert.True(t, ok)
	assert.Equal(t, "public", name)

	_, ok = MemberAccessName("public")
	assert.False(t, ok)
	_, ok = MemberAccessName(".init(1)")
	assert.False(t, ok)
}

func TestTrimTypeSelf(t *testing.T) {
	assert.Equal(t, "Binding<Int>", TrimTypeSelf("Binding<Int>.self"))
	assert.Equal(t, "Int", TrimTypeSelf(" Int "))
	assert.Equal(t, ".self", TrimTypeSelf(".self"))
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("with"))
	assert.True(t, IsIdentifier("_x1"))
	assert.False(t, IsIdentifier("1x"))
	assert.False(t, IsIdentifier("a-b"))
	assert.False(t, IsIdentifier(""))
}

func TestInitializerDecl_Signature(t *testing.T) {
	d := InitializerDecl{Parameters: []Parameter{{Label: "_", Name: "a"}, {Name: "b"}}}
	assert.Equal(t, "init(_:b:)", d.Signature())
	assert.Equal(t, "init()", (&InitializerDecl{}).Signature())
}
