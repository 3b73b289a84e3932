// Package models defines the core data structures exchanged between the
// record gateway, the store adapter, and the HTTP layer.
package models

// NativeIDKey is the key under which the document store reports the
// identifier it assigned to a stored document.
const NativeIDKey = "_id"

// IDKey is the canonical identifier key exposed to API callers.
const IDKey = "id"

// Record is a validated record ready to be stored. It carries every field
// declared by the record schema and nothing else.
type Record map[string]any

// Document is a raw document as returned by the store, including the
// store-native identifier under NativeIDKey.
type Document map[string]any

// CreateResult is returned after a record has been inserted.
type CreateResult struct {
	// ID is the identifier assigned by the store.
	ID string `json:"id"`
}

// SchemaField describes one field of a record kind for schema discovery.
type SchemaField struct {
	// Name is the field name as it appears in payloads.
	Name string `json:"name"`
	// Type is the rendered type label ("string", "email", "enum", ...).
	Type string `json:"type"`
	// Required reports whether the field must be present on create.
	Required bool `json:"required"`
	// Description is the human-readable description, or null.
	Description *string `json:"description"`
	// Enum lists the allowed values of enum fields.
	Enum []string `json:"enum,omitempty"`
	// Default is the value applied when the field is omitted.
	Default any `json:"default,omitempty"`
}

// CollectionDescriptor describes a record kind and its fields.
type CollectionDescriptor struct {
	// Name is the collection name (lower-cased kind name).
	Name string `json:"name"`
	// Title is the record kind name.
	Title string `json:"title"`
	// Fields are listed in declaration order.
	Fields []SchemaField `json:"fields"`
}
