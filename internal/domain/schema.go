package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SchemaKind tags the variant held by a SchemaNode.
type SchemaKind int

const (
	SchemaPrimitive SchemaKind = iota
	SchemaSequence
	SchemaObject
	SchemaOpaque
	// SchemaCyclic marks a reference back to a type already being expanded.
	SchemaCyclic
)

// String returns the kind name.
func (k SchemaKind) String() string {
	switch k {
	case SchemaPrimitive:
		return "primitive"
	case SchemaSequence:
		return "sequence"
	case SchemaObject:
		return "object"
	case SchemaOpaque:
		return "opaque"
	case SchemaCyclic:
		return "cyclic"
	default:
		return "unknown"
	}
}

// CyclicPrefix is prepended to the type name when a cyclic leaf is serialized.
const CyclicPrefix = "$ref:"

// SchemaNode is the expanded shape of a type reference.
//
// Primitive, Opaque and Cyclic nodes carry only Name. Sequence nodes carry
// Elem. Object nodes carry Fields in declaration order.
type SchemaNode struct {
	Kind   SchemaKind
	Name   string
	Elem   *SchemaNode
	Fields []SchemaField
}

// SchemaField is one named entry of an Object node.
type SchemaField struct {
	Name   string
	Schema SchemaNode
}

// Primitive returns a primitive leaf.
func Primitive(name string) SchemaNode { return SchemaNode{Kind: SchemaPrimitive, Name: name} }

// Opaque returns a leaf for a name that is neither primitive nor registered.
func Opaque(name string) SchemaNode { return SchemaNode{Kind: SchemaOpaque, Name: name} }

// Cyclic returns a leaf for a back-reference to name.
func Cyclic(name string) SchemaNode { return SchemaNode{Kind: SchemaCyclic, Name: name} }

// Sequence wraps elem as a list/set shape.
func Sequence(elem SchemaNode) SchemaNode {
	return SchemaNode{Kind: SchemaSequence, Elem: &elem}
}

// Object builds an object node from fields in the given order.
func Object(fields ...SchemaField) SchemaNode {
	if fields == nil {
		fields = []SchemaField{}
	}
	return SchemaNode{Kind: SchemaObject, Fields: fields}
}

// Field returns the schema of the named field of an Object node.
func (n SchemaNode) Field(name string) (SchemaNode, bool) {
	for _, f := range n.Fields {
		if f.Name == name {
			return f.Schema, true
		}
	}
	return SchemaNode{}, false
}

// MarshalJSON writes a leaf as a bare string, a sequence as a one-element
// array and an object as a JSON object with keys in declaration order.
func (n SchemaNode) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n SchemaNode) encode(buf *bytes.Buffer) error {
	switch n.Kind {
	case SchemaPrimitive, SchemaOpaque:
		return writeJSONString(buf, n.Name)
	case SchemaCyclic:
		return writeJSONString(buf, CyclicPrefix+n.Name)
	case SchemaSequence:
		buf.WriteByte('[')
		if n.Elem != nil {
			if err := n.Elem.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case SchemaObject:
		return encodeFields(buf, n.Fields)
	default:
		return fmt.Errorf("unknown schema kind %d", n.Kind)
	}
}

func encodeFields(buf *bytes.Buffer, fields []SchemaField) error {
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(buf, f.Name); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := f.Schema.encode(buf); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
