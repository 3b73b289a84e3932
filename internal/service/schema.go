package service

import (
	"github.com/atinyakov/erfms/internal/models"
	"github.com/atinyakov/erfms/internal/schema"
)

// Route binds a public API path segment to the collection it serves.
type Route struct {
	Name       string
	Collection string
}

// Routes lists the collections exposed under /api/{name}.
var Routes = []Route{
	{Name: "projects", Collection: "project"},
	{Name: "cee", Collection: "ceeapplication"},
	{Name: "mar", Collection: "marapplication"},
	{Name: "audits", Collection: "audit"},
	{Name: "documents", Collection: "document"},
	{Name: "users", Collection: "user"},
	{Name: "clients", Collection: "client"},
	{Name: "tasks", Collection: "task"},
}

// SchemaService describes the registered record kinds.
type SchemaService struct {
	registry *schema.Registry
	version  string
}

// NewSchemaService constructs a SchemaService over registry. version is
// reported in the generated OpenAPI document.
func NewSchemaService(registry *schema.Registry, version string) *SchemaService {
	return &SchemaService{registry: registry, version: version}
}

// DescribeAll returns one descriptor per record kind in registry order.
func (s *SchemaService) DescribeAll() []models.CollectionDescriptor {
	all := s.registry.All()
	out := make([]models.CollectionDescriptor, 0, len(all))
	for _, rs := range all {
		fields := make([]models.SchemaField, 0, len(rs.Fields))
		for _, f := range rs.Fields {
			var desc *string
			if f.Description != "" {
				d := f.Description
				desc = &d
			}
			fields = append(fields, models.SchemaField{
				Name:        f.Name,
				Type:        f.Type.Label(),
				Required:    f.Required,
				Description: desc,
				Enum:        f.Type.Allowed,
				Default:     f.Default,
			})
		}
		out = append(out, models.CollectionDescriptor{
			Name:   rs.Collection(),
			Title:  rs.Kind,
			Fields: fields,
		})
	}
	return out
}
