package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidJSON is returned when the document is not JSON at all.
var ErrInvalidJSON = errors.New("invalid JSON")

// Violation is one schema error.
type Violation struct {
	Field       string
	Description string
	Value       any
}

func (v Violation) String() string {
	if v.Value == nil {
		return fmt.Sprintf("%s: %s", v.Field, v.Description)
	}

	return fmt.Sprintf("%s: %s (got %v)", v.Field, v.Description, v.Value)
}

// Result is the outcome of a validation.
type Result struct {
	Violations []Violation
}

// Valid reports whether the document matched the schema.
func (r Result) Valid() bool {
	return len(r.Violations) == 0
}

var compiled = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	data, err := FS.ReadFile(SchemaFile)
	if err != nil {
		return nil, fmt.Errorf("read embedded schema: %w", err)
	}

	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("compile embedded schema: %w", err)
	}

	return s, nil
})

// Validate checks a JSON report against the embedded result schema.
// Violations are sorted by field.
func Validate(data []byte) (Result, error) {
	var doc any

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	err := dec.Decode(&doc)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	s, err := compiled()
	if err != nil {
		return Result{}, err
	}

	res, err := s.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return Result{}, fmt.Errorf("validate report: %w", err)
	}

	violations := make([]Violation, 0, len(res.Errors()))

	for _, verr := range res.Errors() {
		violations = append(violations, Violation{
			Field:       verr.Field(),
			Description: verr.Description(),
			Value:       verr.Value(),
		})
	}

	sort.SliceStable(violations, func(i, j int) bool { return violations[i].Field < violations[j].Field })

	return Result{Violations: violations}, nil
}
