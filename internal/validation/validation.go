// Package validation checks inbound requests against JSON Schemas and the
// "no unexpected URL query parameters" rule, grounded on
// original_source/server/validation.py's Validator and
// original_source/server/http_server.py's HttpServer.__validate.
package validation

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/mars-robotics/buildseq/internal/apperr"
)

// schemaDocument is a *.schema.json file: the compiled JSON Schema plus the
// list of URL paths it applies to (original_source's "$paths" key).
type schemaDocument struct {
	Paths []string `json:"$paths"`
}

// Validator holds one compiled schema per registered URL path.
type Validator struct {
	byPath map[string]*jsonschema.Resolved
}

// NewValidator creates an empty Validator.
func NewValidator() *Validator {
	return &Validator{byPath: map[string]*jsonschema.Resolved{}}
}

// LoadDir compiles every *.schema.json file in dir and registers it under
// every path its "$paths" array names. A schema file without "$paths" is a
// config error, matching original_source/main.py's own fatal check.
func (v *Validator) LoadDir(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*.schema.json"))
	if err != nil {
		return apperr.New(apperr.KindConfigNotConform, []string{"validation.LoadDir"}, "%v", err)
	}
	for _, file := range matches {
		data, err := os.ReadFile(file)
		if err != nil {
			return apperr.New(apperr.KindConfigMissing, []string{"validation.LoadDir"},
				"reading %q: %v", file, err)
		}
		if err := v.addSchema(file, data); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) addSchema(file string, raw []byte) error {
	var doc schemaDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return apperr.New(apperr.KindConfigNotConform, []string{"validation.addSchema"},
			"parsing %q: %v", file, err)
	}
	if len(doc.Paths) == 0 {
		return apperr.New(apperr.KindConfigNotConform, []string{"validation.addSchema"},
			"schema file %q is missing the required \"$paths\" key", file)
	}

	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return apperr.New(apperr.KindConfigNotConform, []string{"validation.addSchema"},
			"parsing %q as a JSON Schema: %v", file, err)
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return apperr.New(apperr.KindConfigNotConform, []string{"validation.addSchema"},
			"resolving schema %q: %v", file, err)
	}

	for _, path := range doc.Paths {
		v.byPath[path] = resolved
	}
	return nil
}

// HasSchema reports whether path has a registered schema (mirrors
// original_source's Validator.has_key, used by the HTTP layer to refuse
// registering an endpoint with no matching schema).
func (v *Validator) HasSchema(path string) bool {
	_, ok := v.byPath[path]
	return ok
}

// ValidateBody checks body against the schema registered for path.
// A nil/empty body is validated as an empty object, matching
// original_source's "body = {} if not body else body" default.
func (v *Validator) ValidateBody(path string, body []byte) error {
	resolved, ok := v.byPath[path]
	if !ok {
		return apperr.New(apperr.KindValidationBody, []string{"validation.ValidateBody"},
			"no schema registered for path %q", path)
	}

	var instance any
	if len(body) == 0 {
		instance = map[string]any{}
	} else if err := json.Unmarshal(body, &instance); err != nil {
		return apperr.New(apperr.KindValidationBody, []string{"validation.ValidateBody"},
			"request body is not valid JSON: %v", err)
	}

	if err := resolved.Validate(instance); err != nil {
		return apperr.New(apperr.KindValidationBody, []string{"validation.ValidateBody"}, "%v", err)
	}
	return nil
}

// ValidateURLQuery rejects any request carrying URL query parameters at
// all, matching original_source/server/http_server.py's blanket
// "No url parameters authorized" rule.
func ValidateURLQuery(query url.Values) error {
	if len(query) == 0 {
		return nil
	}
	return apperr.New(apperr.KindValidationURL, []string{"validation.ValidateURLQuery"},
		"no url parameters authorized, got %d", len(query))
}
