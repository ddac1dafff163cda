package handlers

import (
	"context"

	"github.com/invopop/jsonschema"
	"github.com/maruel/blogdb/internal/blog"
	"github.com/maruel/blogdb/internal/jsonstore"
	"github.com/maruel/blogdb/internal/server/dto"
)

// SchemaHandler serves the JSON Schema of each table's rows.
type SchemaHandler struct {
	schemas map[string]*jsonschema.Schema
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler() *SchemaHandler {
	return &SchemaHandler{schemas: map[string]*jsonschema.Schema{
		"users":    jsonstore.SchemaOf[*blog.User](),
		"posts":    jsonstore.SchemaOf[*blog.Post](),
		"comments": jsonstore.SchemaOf[*blog.Comment](),
	}}
}

// GetSchema returns the schema of a table's rows as stored on disk.
func (h *SchemaHandler) GetSchema(ctx context.Context, req *dto.GetSchemaRequest) (*jsonschema.Schema, error) {
	s, ok := h.schemas[req.Table]
	if !ok {
		return nil, dto.NotFound("table").WithDetail("table", req.Table)
	}
	return s, nil
}
