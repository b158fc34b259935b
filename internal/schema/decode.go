package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/i2y/apicatalog/internal/domain"
)

// DecodeNode parses the JSON form of a schema node. Bare strings are
// classified with IsPrimitive, so nodes produced by Resolve survive a round trip.
func DecodeNode(data []byte) (domain.SchemaNode, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	node, err := decodeNode(dec)
	if err != nil {
		return domain.SchemaNode{}, err
	}
	if _, err := dec.Token(); err == nil {
		return domain.SchemaNode{}, fmt.Errorf("unexpected data after schema node")
	}
	return node, nil
}

// DecodeFields parses a JSON object into fields, keeping key order.
func DecodeFields(data []byte) ([]domain.SchemaField, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	return decodeFields(dec)
}

func decodeNode(dec *json.Decoder) (domain.SchemaNode, error) {
	tok, err := dec.Token()
	if err != nil {
		return domain.SchemaNode{}, err
	}
	switch t := tok.(type) {
	case string:
		if name, ok := strings.CutPrefix(t, domain.CyclicPrefix); ok {
			return domain.Cyclic(name), nil
		}
		if IsPrimitive(t) {
			return domain.Primitive(t), nil
		}
		return domain.Opaque(t), nil
	case json.Delim:
		switch t {
		case '[':
			elem, err := decodeNode(dec)
			if err != nil {
				return domain.SchemaNode{}, err
			}
			if end, err := dec.Token(); err != nil || end != json.Delim(']') {
				return domain.SchemaNode{}, fmt.Errorf("sequence must hold exactly one element")
			}
			return domain.Sequence(elem), nil
		case '{':
			fields, err := decodeFields(dec)
			if err != nil {
				return domain.SchemaNode{}, err
			}
			return domain.Object(fields...), nil
		}
	}
	return domain.SchemaNode{}, fmt.Errorf("unexpected token %v in schema node", tok)
}

// decodeFields reads key/node pairs up to the closing brace.
func decodeFields(dec *json.Decoder) ([]domain.SchemaField, error) {
	fields := []domain.SchemaField{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}
		node, err := decodeNode(dec)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		fields = append(fields, domain.SchemaField{Name: key, Schema: node})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}
