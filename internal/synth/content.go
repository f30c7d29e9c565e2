// Package synth turns concept seeds into draft concepts by delegating all
// content generation to an external ContentGenerator collaborator. The
// package contains no business content of its own: it builds structured
// prompt context, assigns identity, and checks the returned shape.
package synth

import (
	"context"
	"encoding/json"
	"fmt"
)

// FieldKind describes the expected type of a generated field.
type FieldKind string

const (
	// FieldString expects a free-text string value.
	FieldString FieldKind = "string"
	// FieldNumber expects a numeric value.
	FieldNumber FieldKind = "number"
)

// FieldSpec describes one field of an expected result shape.
type FieldSpec struct {
	// Key is the field name in the structured result.
	Key string `json:"key"`
	// Kind is the expected value type.
	Kind FieldKind `json:"kind"`
	// Required marks fields the result must contain. A missing or
	// mistyped required field fails the generation; values are never
	// silently coerced.
	Required bool `json:"required"`
	// Description tells the generator what the field should contain.
	Description string `json:"description,omitempty"`
}

// ResultShape describes the structured result a generation call must
// produce.
type ResultShape struct {
	// Name labels the shape for prompts and error messages.
	Name string `json:"name"`
	// Fields lists the expected fields.
	Fields []FieldSpec `json:"fields"`
}

// StructuredResult is a generated result keyed by field name. Numeric
// fields decode as json.Number or float64 depending on the decoder; use
// the accessor helpers rather than type-asserting directly.
type StructuredResult map[string]any

// String returns the named field as a string, or "" if absent or not a
// string.
func (r StructuredResult) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Number returns the named field as a float64 and whether it was numeric.
func (r StructuredResult) Number(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Validate checks the result against the shape. Required fields must be
// present, non-empty, and of the declared kind. This is the strict boundary
// check: a shape mismatch is a generation failure, never a coercion.
func (s ResultShape) Validate(result StructuredResult) error {
	for _, f := range s.Fields {
		if !f.Required {
			continue
		}
		v, ok := result[f.Key]
		if !ok || v == nil {
			return fmt.Errorf("%s: missing required field %q", s.Name, f.Key)
		}
		switch f.Kind {
		case FieldString:
			str, ok := v.(string)
			if !ok {
				return fmt.Errorf("%s: field %q: expected string, got %T", s.Name, f.Key, v)
			}
			if str == "" {
				return fmt.Errorf("%s: field %q is empty", s.Name, f.Key)
			}
		case FieldNumber:
			if _, ok := result.Number(f.Key); !ok {
				return fmt.Errorf("%s: field %q: expected number, got %T", s.Name, f.Key, v)
			}
		}
	}
	return nil
}

// EntityContext is the structured description of one seed entity passed to
// the generator.
type EntityContext struct {
	// Dimension is the taxonomy axis the entity belongs to.
	Dimension string `json:"dimension"`
	// ID is the entity's stable identifier.
	ID string `json:"id"`
	// Name is the entity's display name.
	Name string `json:"name"`
	// Level is the entity's hierarchy level.
	Level int `json:"level"`
	// Description is the entity's free-text description.
	Description string `json:"description,omitempty"`
}

// PromptContext is the structured context passed to the generator. Only
// already-structured values appear here; no templating logic beyond
// interpolation happens downstream.
type PromptContext struct {
	// StrategyID identifies the originating strategy.
	StrategyID string `json:"strategy_id"`
	// StrategyName is the human name of the strategy.
	StrategyName string `json:"strategy_name"`
	// Thesis is the strategy's free-text hypothesis.
	Thesis string `json:"thesis,omitempty"`
	// Entities describes the seed's entities in canonical dimension order.
	Entities []EntityContext `json:"entities,omitempty"`
	// Enrichment holds prior enrichment summaries keyed by entity ID.
	Enrichment map[string]string `json:"enrichment,omitempty"`
	// Subject names what is being generated about, for non-seed calls
	// (for example a single entity being enriched).
	Subject string `json:"subject,omitempty"`
}

// ContentGenerator is the external generation collaborator. Given structured
// prompt context and an expected result shape it returns a structured result
// or fails with an opaque error; this package never interprets
// provider-specific failure detail.
type ContentGenerator interface {
	Generate(ctx context.Context, pc PromptContext, shape ResultShape) (StructuredResult, error)
}
