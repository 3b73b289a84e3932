// Package schema holds the static record schema registry: the mapping from a
// collection name to the typed field definitions of its record kind.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCollection is returned when a collection name has no registered schema.
var ErrUnknownCollection = errors.New("unknown collection")

// Kind enumerates the field types a record schema can declare.
type Kind int

const (
	KindString Kind = iota
	KindEmail
	KindBoolean
	KindInteger
	KindFloat
	KindDate
	KindDateTime
	KindEnum
)

var kindLabels = map[Kind]string{
	KindString:   "string",
	KindEmail:    "email",
	KindBoolean:  "boolean",
	KindInteger:  "integer",
	KindFloat:    "number",
	KindDate:     "date",
	KindDateTime: "datetime",
	KindEnum:     "enum",
}

// String returns the type label of the kind.
func (k Kind) String() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// FieldType is a field's declared type. Allowed is only set for enums.
type FieldType struct {
	Kind    Kind
	Allowed []string
}

// Field types without parameters.
var (
	String   = FieldType{Kind: KindString}
	Email    = FieldType{Kind: KindEmail}
	Boolean  = FieldType{Kind: KindBoolean}
	Integer  = FieldType{Kind: KindInteger}
	Float    = FieldType{Kind: KindFloat}
	Date     = FieldType{Kind: KindDate}
	DateTime = FieldType{Kind: KindDateTime}
)

// Enum returns an enum type accepting exactly the given literal values.
func Enum(values ...string) FieldType {
	return FieldType{Kind: KindEnum, Allowed: values}
}

// Label renders the type for schema discovery.
func (t FieldType) Label() string {
	return t.Kind.String()
}

// Allows reports whether v is one of the enum's allowed values.
func (t FieldType) Allows(v string) bool {
	for _, a := range t.Allowed {
		if a == v {
			return true
		}
	}
	return false
}

// Field is one typed field of a record schema.
type Field struct {
	// Name is the payload key.
	Name string
	// Type is the declared type.
	Type FieldType
	// Required fields must be present on create and have no default.
	Required bool
	// Nullable fields accept an explicit null.
	Nullable bool
	// Default is applied when the field is absent. Nil means null.
	Default any
	// Min is the inclusive lower bound of numeric fields, if any.
	Min *float64
	// Description is shown by schema discovery; empty means none.
	Description string
}

func required(name string, t FieldType, desc string) Field {
	return Field{Name: name, Type: t, Required: true, Description: desc}
}

func optional(name string, t FieldType, desc string) Field {
	return Field{Name: name, Type: t, Nullable: true, Description: desc}
}

func defaulted(name string, t FieldType, def any, desc string) Field {
	return Field{Name: name, Type: t, Default: def, Description: desc}
}

func (f Field) withDefault(def any) Field {
	f.Default = def
	return f
}

func (f Field) atLeast(bound float64) Field {
	f.Min = &bound
	return f
}

// RecordSchema is the declarative description of a record kind.
type RecordSchema struct {
	// Kind is the record kind name, e.g. "CEEApplication".
	Kind string
	// Fields are kept in declaration order.
	Fields []Field
}

// Collection returns the collection name addressing the kind's records.
func (s RecordSchema) Collection() string {
	return strings.ToLower(s.Kind)
}

// Field returns the named field.
func (s RecordSchema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Registry maps collection names to record schemas. It is immutable once built.
type Registry struct {
	schemas []RecordSchema
	index   map[string]int
}

// NewRegistry builds a registry from schemas in declaration order.
// Two kinds mapping to the same collection name are rejected.
func NewRegistry(schemas ...RecordSchema) (*Registry, error) {
	r := &Registry{
		schemas: make([]RecordSchema, 0, len(schemas)),
		index:   make(map[string]int, len(schemas)),
	}
	for _, s := range schemas {
		name := s.Collection()
		if _, dup := r.index[name]; dup {
			return nil, fmt.Errorf("duplicate collection %q", name)
		}
		r.index[name] = len(r.schemas)
		r.schemas = append(r.schemas, s)
	}
	return r, nil
}

// Lookup returns the schema registered under collection.
func (r *Registry) Lookup(collection string) (RecordSchema, error) {
	i, ok := r.index[collection]
	if !ok {
		return RecordSchema{}, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return r.schemas[i], nil
}

// All returns every schema in declaration order.
func (r *Registry) All() []RecordSchema {
	out := make([]RecordSchema, len(r.schemas))
	copy(out, r.schemas)
	return out
}

// Collections returns every collection name in declaration order.
func (r *Registry) Collections() []string {
	out := make([]string, len(r.schemas))
	for i, s := range r.schemas {
		out[i] = s.Collection()
	}
	return out
}
