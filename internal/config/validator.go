package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/vvka-141/transient/pkg/transient"
)

//go:embed schema/transient-schema.json
var embeddedSchema []byte

const schemaURL = "https://github.com/vvka-141/transient/schemas/transient.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaInitErr  error
)

// Schema returns the embedded JSON schema of the configuration document.
func Schema() []byte {
	return embeddedSchema
}

func getCompiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(embeddedSchema))
		if err != nil {
			schemaInitErr = fmt.Errorf("failed to parse embedded schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, doc); err != nil {
			schemaInitErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}

		compiledSchema, err = compiler.Compile(schemaURL)
		if err != nil {
			schemaInitErr = fmt.Errorf("failed to compile schema: %w", err)
		}
	})

	if schemaInitErr != nil {
		return nil, schemaInitErr
	}
	return compiledSchema, nil
}

// ValidationError is a single schema violation.
type ValidationError struct {
	Path    string
	Message string
}

// ValidationErrors lists every schema violation of a document.
// It matches transient.ErrInvalidConfig.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, v := range e {
		parts[i] = v.Path + ": " + v.Message
	}
	return fmt.Sprintf("%v: %s", transient.ErrInvalidConfig, strings.Join(parts, "; "))
}

func (e ValidationErrors) Unwrap() error {
	return transient.ErrInvalidConfig
}

// Validate checks a decoded YAML document against the schema.
// A nil document is valid and means "use the defaults".
func Validate(doc map[string]any) error {
	if doc == nil {
		return nil
	}

	schema, err := getCompiledSchema()
	if err != nil {
		return err
	}

	// Round-trip through JSON so numbers reach the validator as json.Number.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", transient.ErrInvalidConfig, err)
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", transient.ErrInvalidConfig, err)
	}

	validationErr := schema.Validate(instance)
	if validationErr == nil {
		return nil
	}
	if detailed, ok := validationErr.(*jsonschema.ValidationError); ok {
		if errs := convertValidationErrors(detailed); len(errs) > 0 {
			return errs
		}
	}
	return ValidationErrors{{Path: "/", Message: validationErr.Error()}}
}

// convertValidationErrors flattens the leaf causes of a validation error.
func convertValidationErrors(err *jsonschema.ValidationError) ValidationErrors {
	if len(err.Causes) == 0 {
		return ValidationErrors{{
			Path:    formatInstanceLocation(err.InstanceLocation),
			Message: err.Error(),
		}}
	}

	var errs ValidationErrors
	for _, cause := range err.Causes {
		errs = append(errs, convertValidationErrors(cause)...)
	}
	return errs
}

func formatInstanceLocation(loc []string) string {
	if len(loc) == 0 {
		return "/"
	}
	return "/" + strings.Join(loc, "/")
}
