package contract

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Kind names a response shape with a registered JSON schema.
type Kind string

const (
	KindMenu         Kind = "menu"
	KindFranchises   Kind = "franchises"
	KindUser         Kind = "user"
	KindAuth         Kind = "auth"
	KindOrder        Kind = "order"
	KindOrderHistory Kind = "order-history"
	KindStore        Kind = "store"
	KindMessage      Kind = "message"
	KindVerify       Kind = "verify"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schemas    map[Kind]*gojsonschema.Schema
	schemaErr  error
)

// FieldError is one schema violation.
type FieldError struct {
	Field   string
	Message string
}

// SchemaError lists every violation of a document against its schema.
type SchemaError struct {
	Kind   Kind
	Errors []FieldError
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return fmt.Sprintf("%s contract violated: %s", e.Kind, strings.Join(parts, "; "))
}

func loadSchemas() {
	schemas = make(map[Kind]*gojsonschema.Schema)
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		schemaErr = fmt.Errorf("failed to read schemas: %w", err)
		return
	}
	for _, e := range entries {
		raw, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			schemaErr = fmt.Errorf("failed to read schema %s: %w", e.Name(), err)
			return
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			schemaErr = fmt.Errorf("failed to compile schema %s: %w", e.Name(), err)
			return
		}
		schemas[Kind(strings.TrimSuffix(e.Name(), ".json"))] = s
	}
}

// Kinds lists the registered schema kinds, sorted.
func Kinds() ([]Kind, error) {
	schemaOnce.Do(loadSchemas)
	if schemaErr != nil {
		return nil, schemaErr
	}
	kinds := make([]Kind, 0, len(schemas))
	for k := range schemas {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds, nil
}

// Validate checks a JSON document against the schema registered for kind.
func Validate(kind Kind, doc []byte) error {
	schemaOnce.Do(loadSchemas)
	if schemaErr != nil {
		return schemaErr
	}
	s, ok := schemas[kind]
	if !ok {
		return fmt.Errorf("no schema registered for kind: %s", kind)
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	se := &SchemaError{Kind: kind}
	for _, re := range result.Errors() {
		se.Errors = append(se.Errors, FieldError{Field: re.Field(), Message: re.Description()})
	}
	return se
}

// ValidateValue marshals v and validates it.
func ValidateValue(kind Kind, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s document: %w", kind, err)
	}
	return Validate(kind, doc)
}
