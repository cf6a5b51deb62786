package wire

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrSchema = errors.New("invalid schema")

// Field binds a logical field name to its element name on the wire and an
// order key controlling its position in the serialized document. Order keys
// must be distinct within a schema. When EmitDefault is false an absent
// field is skipped entirely instead of being written as an empty element.
type Field struct {
	Name        string
	Wire        string
	Order       int
	EmitDefault bool
}

// Schema is an explicit serialization descriptor for a single document
// type: the root element, the fixed namespace and the ordered field set.
type Schema struct {
	root      string
	namespace string
	fields    []Field
	byWire    map[string]Field
}

func NewSchema(root, namespace string, fields ...Field) (s Schema, err error) {
	if strings.TrimSpace(root) == "" {
		err = fmt.Errorf("%w: blank root element name", ErrSchema)
	}
	if err == nil && strings.TrimSpace(namespace) == "" {
		err = fmt.Errorf("%w: blank namespace", ErrSchema)
	}
	names := make(map[string]bool, len(fields))
	wires := make(map[string]bool, len(fields))
	orders := make(map[int]bool, len(fields))
	for _, f := range fields {
		if err != nil {
			break
		}
		switch {
		case strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Wire) == "":
			err = fmt.Errorf("%w: blank field or wire name", ErrSchema)
		case names[f.Name]:
			err = fmt.Errorf("%w: duplicate field name %s", ErrSchema, f.Name)
		case wires[f.Wire]:
			err = fmt.Errorf("%w: duplicate wire name %s", ErrSchema, f.Wire)
		case orders[f.Order]:
			err = fmt.Errorf("%w: duplicate order key %d (field %s)", ErrSchema, f.Order, f.Name)
		}
		names[f.Name], wires[f.Wire], orders[f.Order] = true, true, true
	}
	if err == nil {
		ordered := make([]Field, len(fields))
		copy(ordered, fields)
		sort.Slice(ordered, func(i, j int) bool {
			return ordered[i].Order < ordered[j].Order
		})
		byWire := make(map[string]Field, len(ordered))
		for _, f := range ordered {
			byWire[f.Wire] = f
		}
		s = Schema{
			root:      root,
			namespace: namespace,
			fields:    ordered,
			byWire:    byWire,
		}
	}
	return
}

// MustSchema is for fixed schema declarations known to be well-formed.
func MustSchema(root, namespace string, fields ...Field) (s Schema) {
	s, err := NewSchema(root, namespace, fields...)
	if err != nil {
		panic(err)
	}
	return
}

func (s Schema) Root() string {
	return s.root
}

func (s Schema) Namespace() string {
	return s.namespace
}

// Fields returns the field set sorted by order key.
func (s Schema) Fields() (fields []Field) {
	fields = make([]Field, len(s.fields))
	copy(fields, s.fields)
	return
}

func (s Schema) FieldByWire(wire string) (f Field, found bool) {
	f, found = s.byWire[wire]
	return
}
