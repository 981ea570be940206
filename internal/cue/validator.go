package cue

import (
	"embed"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schemas/*.cue
var schemaFS embed.FS

// Schema names, matching the embedded file base names.
const (
	SchemaSchedule = "schedule"
	SchemaCatalog  = "catalog"
)

// ValidationError represents a validation error
type ValidationError struct {
	File    string
	Path    string // dotted field path inside the document
	Message string
}

func (e ValidationError) Error() string {
	loc := e.File
	if e.Path != "" {
		if loc != "" {
			loc += ": "
		}
		loc += e.Path
	}
	if loc == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", loc, e.Message)
}

// Validator handles CUE validation
type Validator struct {
	ctx     *cue.Context
	schemas map[string]cue.Value
}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{
		ctx:     cuecontext.New(),
		schemas: make(map[string]cue.Value),
	}
}

// LoadSchemas loads all CUE schema files from the embedded filesystem
func (v *Validator) LoadSchemas() error {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return fmt.Errorf("could not read embedded schemas: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".cue" {
			continue
		}

		content, err := schemaFS.ReadFile("schemas/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading schema %s: %w", entry.Name(), err)
		}

		inst := v.ctx.CompileBytes(content, cue.Filename(entry.Name()))
		if instErr := inst.Err(); instErr != nil {
			return fmt.Errorf("compiling schema %s: %w", entry.Name(), instErr)
		}

		// schedule.cue -> schedule
		schemaName := strings.TrimSuffix(entry.Name(), ".cue")
		v.schemas[schemaName] = inst.Value()
	}

	if len(v.schemas) == 0 {
		return fmt.Errorf("no CUE schemas loaded")
	}

	return nil
}

// HasSchema reports whether a schema with the given name is loaded.
func (v *Validator) HasSchema(name string) bool {
	_, ok := v.schemas[name]
	return ok
}

// ValidateSchedule validates a decoded schedule document.
func (v *Validator) ValidateSchedule(file string, data map[string]any) ([]ValidationError, error) {
	return v.validate(SchemaSchedule, file, data)
}

// ValidateCatalog validates a decoded catalog override document.
func (v *Validator) ValidateCatalog(file string, data map[string]any) ([]ValidationError, error) {
	return v.validate(SchemaCatalog, file, data)
}

func (v *Validator) validate(schemaType, file string, data map[string]any) ([]ValidationError, error) {
	schema, ok := v.schemas[schemaType]
	if !ok {
		return nil, fmt.Errorf("schema %q not loaded", schemaType)
	}
	return v.validateAgainstSchema(schema, data, schemaType, file)
}

// validateAgainstSchema unifies data with the #<Type> definition of schema
// and checks the result is concrete.
func (v *Validator) validateAgainstSchema(schema cue.Value, data map[string]any, schemaType, file string) ([]ValidationError, error) {
	dataValue := v.ctx.Encode(data)
	if encErr := dataValue.Err(); encErr != nil {
		return nil, fmt.Errorf("error encoding data: %w", encErr)
	}

	defPath := cue.ParsePath(fmt.Sprintf("#%s", strings.ToUpper(schemaType[:1])+schemaType[1:]))
	def := schema.LookupPath(defPath)
	if !def.Exists() {
		return nil, fmt.Errorf("schema %q has no %s definition", schemaType, defPath)
	}

	unified := def.Unify(dataValue)
	if err := unified.Err(); err != nil {
		return extractErrorsFromCUE(err, file), nil
	}

	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return extractErrorsFromCUE(err, file), nil
	}

	return nil, nil
}

// extractErrorsFromCUE flattens a CUE error into one entry per failing path,
// sorted for stable output.
func extractErrorsFromCUE(err error, file string) []ValidationError {
	var out []ValidationError
	seen := make(map[string]bool)

	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		ve := ValidationError{
			File:    file,
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		key := ve.Path + "|" + ve.Message
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ve)
	}

	if len(out) == 0 {
		out = append(out, ValidationError{File: file, Message: err.Error()})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Message < out[j].Message
	})

	return out
}

// AsError joins validation errors into a single error, or nil.
func AsError(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}
