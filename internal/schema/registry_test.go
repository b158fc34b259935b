package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/i2y/apicatalog/internal/domain"
)

func TestBuilder_LaterDeclarationWins(t *testing.T) {
	b := NewBuilder()
	b.Add("a/User.java", "User", []domain.Member{{Name: "id", Type: "int"}})
	b.Add("b/User.java", "User", []domain.Member{{Name: "email", Type: "String"}})
	b.Add("b/Role.java", "Role", nil)

	assert.Equal(t, []Overwrite{{Name: "User", Unit: "b/User.java", Previous: "a/User.java"}}, b.Overwrites())

	reg := b.Build()
	fields, ok := reg.Lookup("User")
	assert.True(t, ok)
	assert.Equal(t, FieldMap{{Name: "email", Type: "String"}}, fields)
	assert.Equal(t, 2, reg.Len())
	assert.ElementsMatch(t, []string{"User", "Role"}, reg.Names())
}

func TestBuilder_CopiesFields(t *testing.T) {
	fields := []domain.Member{{Name: "id", Type: "int"}}
	b := NewBuilder()
	b.Add("", "User", fields)
	fields[0].Type = "Long"

	got, _ := b.Build().Lookup("User")
	assert.Equal(t, "int", got[0].Type)
}

func TestBuilder_AddAfterBuildPanics(t *testing.T) {
	b := NewBuilder()
	b.Build()
	assert.Panics(t, func() { b.Add("", "X", nil) })
}

func TestNilRegistry(t *testing.T) {
	var reg *Registry
	_, ok := reg.Lookup("X")
	assert.False(t, ok)
	assert.Zero(t, reg.Len())
	assert.Equal(t, domain.Opaque("X"), Resolve(reg, "X"))
}

func TestContainerElem(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"List<String>", "String", true},
		{"Set<UserDto>", "UserDto", true},
		{"java.util.List<Item>", "Item", true},
		{"java.util.Set<Item>", "Item", true},
		{"List<Map<String, Integer>>", "Map<String, Integer>", true},
		{"ArrayList<String>", "", false},
		{"List", "", false},
		{"Collection<String>", "", false},
		{"List<String>[]", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := containerElem(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsPrimitive(t *testing.T) {
	assert.True(t, IsPrimitive("int"))
	assert.True(t, IsPrimitive("java.lang.Integer"))
	assert.False(t, IsPrimitive("Integer"))
	assert.False(t, IsPrimitive("long"))
	assert.False(t, IsPrimitive("java.util.List<String>"))
	assert.False(t, IsPrimitive("UserDto"))
}
