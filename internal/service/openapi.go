package service

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/atinyakov/erfms/internal/schema"
)

const componentRef = "#/components/schemas/"

// OpenAPI builds the OpenAPI 3 description of the record API: one component
// schema per record kind plus the list and create operations of every route.
func (s *SchemaService) OpenAPI() *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "ERFMS record API",
			Version: s.version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
		},
	}

	doc.Components.Schemas["Error"] = openapi3.NewSchemaRef("", errorSchema())
	doc.Components.Schemas["CreateResult"] = openapi3.NewSchemaRef("",
		openapi3.NewObjectSchema().
			WithProperty("id", openapi3.NewStringSchema()).
			WithRequired([]string{"id"}))

	kinds := map[string]string{}
	for _, rs := range s.registry.All() {
		doc.Components.Schemas[rs.Kind] = openapi3.NewSchemaRef("", recordSchema(rs))
		kinds[rs.Collection()] = rs.Kind
	}

	for _, r := range Routes {
		kind, ok := kinds[r.Collection]
		if !ok {
			continue
		}
		doc.Paths.Set("/api/"+r.Name, collectionPath(r, kind))
	}

	doc.Paths.Set("/schema", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "describeSchema",
			Summary:     "Describe every record kind",
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
					Value: openapi3.NewResponse().WithDescription("Collection descriptors"),
				}),
			),
		},
	})
	return doc
}

func collectionPath(r Route, kind string) *openapi3.PathItem {
	ref := openapi3.NewSchemaRef(componentRef+kind, nil)
	errRef := openapi3.NewSchemaRef(componentRef+"Error", nil)

	list := openapi3.NewOperation()
	list.OperationID = "list_" + r.Name
	list.Summary = "List " + kind + " records"
	list.AddParameter(openapi3.NewQueryParameter("limit").
		WithSchema(openapi3.NewIntegerSchema().WithMin(1).WithDefault(DefaultLimit)))
	items := openapi3.NewArraySchema()
	items.Items = ref
	list.AddResponse(http.StatusOK, openapi3.NewResponse().
		WithDescription("Stored records").
		WithJSONSchema(items))
	list.AddResponse(http.StatusBadRequest, errorResponse("Invalid limit", errRef))
	list.AddResponse(http.StatusServiceUnavailable, errorResponse("Store unavailable", errRef))

	create := openapi3.NewOperation()
	create.OperationID = "create_" + r.Name
	create.Summary = "Create a " + kind + " record"
	create.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(ref),
	}
	create.AddResponse(http.StatusCreated, openapi3.NewResponse().
		WithDescription("Record created").
		WithJSONSchemaRef(openapi3.NewSchemaRef(componentRef+"CreateResult", nil)))
	create.AddResponse(http.StatusBadRequest, errorResponse("Malformed JSON body", errRef))
	create.AddResponse(http.StatusUnprocessableEntity, errorResponse("Validation failed", errRef))
	create.AddResponse(http.StatusServiceUnavailable, errorResponse("Store unavailable", errRef))

	return &openapi3.PathItem{Get: list, Post: create}
}

func errorResponse(desc string, ref *openapi3.SchemaRef) *openapi3.Response {
	return openapi3.NewResponse().WithDescription(desc).WithJSONSchemaRef(ref)
}

func errorSchema() *openapi3.Schema {
	body := openapi3.NewObjectSchema().
		WithProperty("code", openapi3.NewStringSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("field", openapi3.NewStringSchema()).
		WithProperty("reason", openapi3.NewStringSchema()).
		WithRequired([]string{"code", "message"})
	return openapi3.NewObjectSchema().
		WithProperty("error", body).
		WithRequired([]string{"error"})
}

func recordSchema(rs schema.RecordSchema) *openapi3.Schema {
	obj := openapi3.NewObjectSchema()
	obj.Title = rs.Kind
	var req []string
	for _, f := range rs.Fields {
		obj.WithProperty(f.Name, fieldSchema(f))
		if f.Required {
			req = append(req, f.Name)
		}
	}
	if len(req) > 0 {
		obj.WithRequired(req)
	}
	return obj
}

func fieldSchema(f schema.Field) *openapi3.Schema {
	var fs *openapi3.Schema
	switch f.Type.Kind {
	case schema.KindEmail:
		fs = openapi3.NewStringSchema().WithFormat("email")
	case schema.KindBoolean:
		fs = openapi3.NewBoolSchema()
	case schema.KindInteger:
		fs = openapi3.NewInt64Schema()
	case schema.KindFloat:
		fs = openapi3.NewFloat64Schema()
	case schema.KindDate:
		fs = openapi3.NewStringSchema().WithFormat("date")
	case schema.KindDateTime:
		fs = openapi3.NewDateTimeSchema()
	case schema.KindEnum:
		values := make([]any, len(f.Type.Allowed))
		for i, v := range f.Type.Allowed {
			values[i] = v
		}
		fs = openapi3.NewStringSchema().WithEnum(values...)
	default:
		fs = openapi3.NewStringSchema()
	}

	fs.Description = f.Description
	if f.Min != nil {
		fs.WithMin(*f.Min)
	}
	if f.Nullable {
		fs.WithNullable()
	}
	if f.Default != nil {
		fs.WithDefault(f.Default)
	}
	return fs
}
