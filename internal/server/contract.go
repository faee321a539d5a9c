package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var contractDocument []byte

// Schema names the handlers validate request bodies against.
const (
	schemaDraftRecord = "DraftRecord"
	schemaAnswerSet   = "AnswerSet"
)

// contract is the parsed API description. Request bodies are checked
// against its component schemas before they are decoded.
type contract struct {
	doc     *openapi3.T
	schemas map[string]*openapi3.Schema
}

// Violation is one schema failure reported in an error's details.
type Violation struct {
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

func loadContract(ctx context.Context) (*contract, error) {
	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: false,
	}
	doc, err := loader.LoadFromData(contractDocument)
	if err != nil {
		return nil, fmt.Errorf("server: load openapi document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("server: validate openapi document: %w", err)
	}

	c := &contract{doc: doc, schemas: make(map[string]*openapi3.Schema)}
	for _, name := range []string{schemaDraftRecord, schemaAnswerSet} {
		ref, ok := doc.Components.Schemas[name]
		if !ok || ref == nil || ref.Value == nil {
			return nil, fmt.Errorf("server: openapi document is missing schema %q", name)
		}
		c.schemas[name] = ref.Value
	}
	return c, nil
}

// validate checks raw JSON against the named schema. Failures come back as
// an *APIError carrying one Violation per problem.
func (c *contract) validate(name, code string, raw []byte) error {
	schema, ok := c.schemas[name]
	if !ok {
		return fmt.Errorf("server: unknown schema %q", name)
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return apiError(http.StatusBadRequest, "INVALID_BODY", "Request body is not valid JSON", nil)
	}
	if err := schema.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return apiError(http.StatusBadRequest, code, "Request body does not match the "+name+" schema", violations(err))
	}
	return nil
}

func violations(err error) []Violation {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []Violation
		for _, inner := range multi {
			out = append(out, violations(inner)...)
		}
		return out
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		field := ""
		if pointer := schemaErr.JSONPointer(); len(pointer) > 0 {
			field = "/" + strings.Join(pointer, "/")
		}
		return []Violation{{Field: field, Reason: schemaErr.Reason}}
	}
	return []Violation{{Reason: err.Error()}}
}
