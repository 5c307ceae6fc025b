package admin

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// AlertIncompleteDraft is the message shown when a submission is rejected.
const AlertIncompleteDraft = "Please fill in all fields."

// AlertEditTargetMissing is shown when the book being edited was deleted.
const AlertEditTargetMissing = "The book you were editing no longer exists. Submit again to add it as a new book."

// draftFields lists the required draft fields in form order.
var draftFields = []string{"title", "author", "category"}

const draftSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["title", "author", "category"],
  "properties": {
    "title":    {"type": "string", "minLength": 1},
    "author":   {"type": "string", "minLength": 1},
    "category": {"type": "string", "minLength": 1},
    "image":    {"type": "string"}
  }
}`

// DraftError reports which required draft fields were empty.
type DraftError struct {
	Fields []string
}

func (e *DraftError) Error() string {
	if len(e.Fields) == 0 {
		return ErrIncompleteDraft.Error()
	}
	return fmt.Sprintf("%s (missing: %s)", ErrIncompleteDraft.Error(), strings.Join(e.Fields, ", "))
}

func (e *DraftError) Unwrap() error {
	return ErrIncompleteDraft
}

// DraftValidator checks a trimmed draft before it is committed.
type DraftValidator interface {
	ValidateDraft(draft Draft) error
}

// JSONSchemaValidator validates drafts against a compiled JSON schema.
type JSONSchemaValidator struct {
	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{}
}

// ValidateDraft returns a *DraftError when a required field is empty.
func (v *JSONSchemaValidator) ValidateDraft(draft Draft) error {
	schema, err := v.schema()
	if err != nil {
		return err
	}
	payload := map[string]any{
		"title":    draft.Title,
		"author":   draft.Author,
		"category": draft.Category,
		"image":    draft.Image,
	}
	err = schema.Validate(payload)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("admin: validate draft: %w", err)
	}
	fields := failedFields(verr)
	if len(fields) == 0 {
		fields = emptyFields(draft)
	}
	return &DraftError{Fields: fields}
}

func (v *JSONSchemaValidator) schema() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("draft.json", strings.NewReader(draftSchema)); err != nil {
			v.err = fmt.Errorf("admin: load draft schema: %w", err)
			return
		}
		v.compiled, v.err = compiler.Compile("draft.json")
		if v.err != nil {
			v.err = fmt.Errorf("admin: compile draft schema: %w", v.err)
		}
	})
	return v.compiled, v.err
}

func failedFields(verr *jsonschema.ValidationError) []string {
	seen := map[string]bool{}
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			if field := strings.TrimPrefix(e.InstanceLocation, "/"); field != "" {
				seen[field] = true
			}
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return orderedFields(seen)
}

func emptyFields(draft Draft) []string {
	seen := map[string]bool{}
	if draft.Title == "" {
		seen["title"] = true
	}
	if draft.Author == "" {
		seen["author"] = true
	}
	if draft.Category == "" {
		seen["category"] = true
	}
	return orderedFields(seen)
}

func orderedFields(seen map[string]bool) []string {
	out := make([]string, 0, len(seen))
	for _, field := range draftFields {
		if seen[field] {
			out = append(out, field)
			delete(seen, field)
		}
	}
	rest := make([]string, 0, len(seen))
	for field := range seen {
		rest = append(rest, field)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

type emptyFieldValidator struct{}

func (emptyFieldValidator) ValidateDraft(draft Draft) error {
	if fields := emptyFields(draft); len(fields) > 0 {
		return &DraftError{Fields: fields}
	}
	return nil
}
