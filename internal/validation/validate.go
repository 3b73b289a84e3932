// Package validation checks raw create payloads against the record schema
// registry and produces normalized records.
package validation

import (
	"github.com/atinyakov/erfms/internal/models"
	"github.com/atinyakov/erfms/internal/schema"
)

// Validator validates payloads against the schemas of a registry.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	registry *schema.Registry
}

// New returns a Validator backed by registry.
func New(registry *schema.Registry) *Validator {
	return &Validator{registry: registry}
}

// Validate checks payload against the schema of collection.
//
// Fields are checked in declaration order and the first failure is returned
// as *Error. Absent optional fields take their default (or null); keys the
// schema does not declare are dropped. An unregistered collection yields an
// error wrapping schema.ErrUnknownCollection.
func (v *Validator) Validate(collection string, payload map[string]any) (models.Record, error) {
	s, err := v.registry.Lookup(collection)
	if err != nil {
		return nil, err
	}

	rec := make(models.Record, len(s.Fields))
	for _, f := range s.Fields {
		raw, present := payload[f.Name]
		if !present {
			if f.Required {
				return nil, fail(collection, f.Name, ReasonMissingField, "field required")
			}
			rec[f.Name] = f.Default
			continue
		}

		if raw == nil {
			if !f.Nullable {
				if f.Required {
					return nil, fail(collection, f.Name, ReasonMissingField, "field required")
				}
				return nil, fail(collection, f.Name, ReasonInvalidFormat, "must not be null")
			}
			rec[f.Name] = nil
			continue
		}

		val, verr := coerce(collection, f, raw)
		if verr != nil {
			return nil, verr
		}
		rec[f.Name] = val
	}
	return rec, nil
}
