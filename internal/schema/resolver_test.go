package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i2y/apicatalog/internal/domain"
	"github.com/i2y/apicatalog/internal/schema"
)

func member(name, typ string) domain.Member {
	return domain.Member{Name: name, Type: typ}
}

func TestResolve_Primitives(t *testing.T) {
	registries := map[string]*schema.Registry{
		"empty": schema.NewRegistry(nil),
		// A registry entry never shadows a primitive name.
		"shadowing": schema.NewRegistry(map[string][]domain.Member{
			"String": {member("x", "int")},
			"UUID":   {member("y", "int")},
		}),
	}

	names := append(schema.PrimitiveNames(), "java.math.BigDecimal", "java.time.ZonedDateTime")
	for regName, reg := range registries {
		for _, name := range names {
			t.Run(regName+"/"+name, func(t *testing.T) {
				assert.Equal(t, domain.Primitive(name), schema.Resolve(reg, name))
			})
		}
	}
}

func TestResolve(t *testing.T) {
	reg := schema.NewRegistry(map[string][]domain.Member{
		"T":       {member("a", "int"), member("b", "String")},
		"Order":   {member("id", "UUID"), member("lines", "List<Line>"), member("customer", "Customer")},
		"Line":    {member("sku", "String"), member("qty", "int")},
		"Empty":   {},
		"Wrapper": {member("tags", "Set<String>"), member("raw", "Map<String, Object>")},
	})

	tests := []struct {
		name string
		in   string
		want domain.SchemaNode
	}{
		{
			name: "registered type",
			in:   "T",
			want: domain.Object(
				domain.SchemaField{Name: "a", Schema: domain.Primitive("int")},
				domain.SchemaField{Name: "b", Schema: domain.Primitive("String")},
			),
		},
		{
			name: "unregistered name is opaque",
			in:   "Foo",
			want: domain.Opaque("Foo"),
		},
		{
			name: "list of registered type",
			in:   "List<T>",
			want: domain.Sequence(schema.Resolve(reg, "T")),
		},
		{
			name: "fully qualified set",
			in:   "java.util.Set<Line>",
			want: domain.Sequence(schema.Resolve(reg, "Line")),
		},
		{
			name: "nested lists",
			in:   "List<List<int>>",
			want: domain.Sequence(domain.Sequence(domain.Primitive("int"))),
		},
		{
			name: "other generics are opaque",
			in:   "Map<String, T>",
			want: domain.Opaque("Map<String, T>"),
		},
		{
			name: "nested objects keep declaration order",
			in:   "Order",
			want: domain.Object(
				domain.SchemaField{Name: "id", Schema: domain.Primitive("UUID")},
				domain.SchemaField{Name: "lines", Schema: domain.Sequence(domain.Object(
					domain.SchemaField{Name: "sku", Schema: domain.Primitive("String")},
					domain.SchemaField{Name: "qty", Schema: domain.Primitive("int")},
				))},
				domain.SchemaField{Name: "customer", Schema: domain.Opaque("Customer")},
			),
		},
		{
			name: "type without fields",
			in:   "Empty",
			want: domain.Object(),
		},
		{
			name: "set and opaque generic fields",
			in:   "Wrapper",
			want: domain.Object(
				domain.SchemaField{Name: "tags", Schema: domain.Sequence(domain.Primitive("String"))},
				domain.SchemaField{Name: "raw", Schema: domain.Opaque("Map<String, Object>")},
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schema.Resolve(reg, tt.in))
		})
	}
}

func TestResolve_ListAndSetAreIndistinguishable(t *testing.T) {
	reg := schema.NewRegistry(map[string][]domain.Member{
		"Item": {member("name", "String")},
	})
	for _, elem := range []string{"Item", "int", "Unknown", "List<Item>"} {
		list := schema.Resolve(reg, "List<"+elem+">")
		set := schema.Resolve(reg, "Set<"+elem+">")
		assert.Equal(t, domain.Sequence(schema.Resolve(reg, elem)), list, elem)
		assert.Equal(t, list, set, elem)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	reg := schema.NewRegistry(map[string][]domain.Member{
		"A": {member("b", "B"), member("bs", "List<B>")},
		"B": {member("n", "int")},
	})
	first := schema.Resolve(reg, "A")
	second := schema.Resolve(reg, "A")
	assert.Equal(t, first, second)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestResolve_Cycles(t *testing.T) {
	reg := schema.NewRegistry(map[string][]domain.Member{
		"A":    {member("self", "A")},
		"Node": {member("value", "int"), member("children", "List<Node>")},
		"Ping": {member("pong", "Pong")},
		"Pong": {member("ping", "Ping")},
	})

	t.Run("self reference", func(t *testing.T) {
		got := schema.Resolve(reg, "A")
		assert.Equal(t, domain.Object(domain.SchemaField{Name: "self", Schema: domain.Cyclic("A")}), got)
	})

	t.Run("through a list", func(t *testing.T) {
		got := schema.Resolve(reg, "Node")
		children, ok := got.Field("children")
		require.True(t, ok)
		assert.Equal(t, domain.Sequence(domain.Cyclic("Node")), children)
	})

	t.Run("mutual reference", func(t *testing.T) {
		got := schema.Resolve(reg, "Ping")
		want := domain.Object(domain.SchemaField{
			Name: "pong",
			Schema: domain.Object(domain.SchemaField{
				Name:   "ping",
				Schema: domain.Cyclic("Ping"),
			}),
		})
		assert.Equal(t, want, got)
	})

	t.Run("siblings are not cycles", func(t *testing.T) {
		reg := schema.NewRegistry(map[string][]domain.Member{
			"Pair":  {member("left", "Point"), member("right", "Point")},
			"Point": {member("x", "int")},
		})
		got := schema.Resolve(reg, "Pair")
		left, _ := got.Field("left")
		right, _ := got.Field("right")
		assert.Equal(t, domain.SchemaObject, left.Kind)
		assert.Equal(t, left, right)
	})
}

func TestResolveReturn(t *testing.T) {
	reg := schema.NewRegistry(map[string][]domain.Member{
		"UserDto": {member("name", "String")},
	})
	wrappers := schema.DefaultResponseWrappers

	assert.Equal(t, schema.Resolve(reg, "UserDto"), schema.ResolveReturn(reg, "ResponseEntity<UserDto>", wrappers))
	assert.Equal(t, domain.Sequence(schema.Resolve(reg, "UserDto")), schema.ResolveReturn(reg, "ResponseEntity<List<UserDto>>", wrappers))
	assert.Equal(t, domain.Opaque("void"), schema.ResolveReturn(reg, "void", wrappers))
	assert.Equal(t, domain.Opaque("ResponseEntity"), schema.ResolveReturn(reg, "ResponseEntity", wrappers))
	assert.Equal(t, domain.Opaque("?"), schema.ResolveReturn(reg, "ResponseEntity<?>", wrappers))
}
