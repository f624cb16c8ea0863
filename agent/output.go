package agent

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/hupe1980/agentswarm/internal/util"
	"github.com/hupe1980/agentswarm/model"
	"github.com/xeipuuv/gojsonschema"
)

// OutputType binds an agent to a structured final answer. The schema is
// derived from the prototype struct once at construction and compiled for
// validation; agents carrying an OutputType never call tools.
type OutputType struct {
	name       string
	prototype  any
	schema     map[string]any
	compiled   *gojsonschema.Schema
	compileErr error
}

// NewOutputType derives a structured output contract from a prototype struct.
// The name labels the schema in backend requests; the prototype drives both
// schema generation and parsing of the model's final answer.
func NewOutputType(name string, prototype any) *OutputType {
	schema := util.CreateSchema(prototype)

	ot := &OutputType{name: name, prototype: prototype, schema: schema}
	ot.compiled, ot.compileErr = gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))

	return ot
}

// Name returns the schema label sent to the backend.
func (ot *OutputType) Name() string { return ot.name }

// Schema returns the derived JSON schema.
func (ot *OutputType) Schema() map[string]any { return ot.schema }

// ResponseFormat renders the contract as a backend response format request.
func (ot *OutputType) ResponseFormat() *model.ResponseFormat {
	return &model.ResponseFormat{Name: ot.name, Schema: ot.schema, Strict: true}
}

// Validate checks raw JSON content against the compiled schema.
func (ot *OutputType) Validate(content string) error {
	if ot.compileErr != nil {
		return fmt.Errorf("output schema %q: %w", ot.name, ot.compileErr)
	}

	result, err := ot.compiled.Validate(gojsonschema.NewStringLoader(content))
	if err != nil {
		return fmt.Errorf("validate output %q: %w", ot.name, err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}

		return fmt.Errorf("output does not match schema %q: %s", ot.name, strings.Join(msgs, "; "))
	}

	return nil
}

// Parse validates content and unmarshals it into a fresh instance of the
// prototype's type. The returned value is a pointer to that type.
func (ot *OutputType) Parse(content string) (any, error) {
	if err := ot.Validate(content); err != nil {
		return nil, err
	}

	t := reflect.TypeOf(ot.prototype)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		var v any
		if err := json.Unmarshal([]byte(content), &v); err != nil {
			return nil, fmt.Errorf("parse output %q: %w", ot.name, err)
		}

		return v, nil
	}

	v := reflect.New(t)
	if err := json.Unmarshal([]byte(content), v.Interface()); err != nil {
		return nil, fmt.Errorf("parse output %q: %w", ot.name, err)
	}

	return v.Interface(), nil
}
