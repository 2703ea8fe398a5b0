// Package articulation recovers structured report objects from the free-form
// text a generative model returns.
//
// The pipeline mirrors the order in which models tend to go wrong: the whole
// answer wrapped in a markdown fence, the prompt template echoed back with
// {{placeholders}} still in it, commentary around the object, JavaScript
// style comments, and trailing commas. Every repair is a pure string step;
// only the final parse can fail.
package articulation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoObject is returned when no {...} span survives the repair steps.
var ErrNoObject = errors.New("no JSON object found in generated text")

// RecoveryError carries the text as it looked after all repairs.
type RecoveryError struct {
	Sanitized string
	Err       error
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("report recovery failed: %v", e.Err)
}

func (e *RecoveryError) Unwrap() error {
	return e.Err
}

// Method records how the value was obtained.
type Method string

const (
	MethodStructured Method = "structured"
	MethodDirect     Method = "direct"
	MethodRepaired   Method = "repaired"
)

// Recovery is a recovered report value.
type Recovery struct {
	Value  map[string]any
	Method Method
	// Steps lists the repair steps that changed the text, in order.
	Steps []string
	// Warnings are schema conformance findings. They never fail recovery.
	Warnings []string
}

// Steps returns the repair pipeline for a schema and its fallback data.
func Steps(schema Schema, fallback map[string]any) []Step {
	return []Step{
		{Name: "strip_fences", Apply: stripFences},
		{Name: "substitute_placeholders", Apply: substitutePlaceholders(schema.Placeholders, fallback)},
		{Name: "extract_object", Apply: extractObject},
		{Name: "strip_line_comments", Apply: stripLineComments},
		{Name: "remove_trailing_commas", Apply: removeTrailingCommas},
	}
}

// Recover turns raw generator output into a report value. raw may already be
// structured (map[string]any, or a json.RawMessage holding an object), in
// which case it is returned without repair. Strings and byte slices go
// through the repair steps.
func Recover(raw any, schema Schema, fallback map[string]any) (*Recovery, error) {
	var text string
	switch v := raw.(type) {
	case map[string]any:
		return &Recovery{Value: v, Method: MethodStructured, Warnings: schema.Conform(v)}, nil
	case json.RawMessage:
		var obj map[string]any
		if err := json.Unmarshal(v, &obj); err == nil && obj != nil {
			return &Recovery{Value: obj, Method: MethodStructured, Warnings: schema.Conform(obj)}, nil
		}
		text = string(v)
	case []byte:
		text = string(v)
	case string:
		text = v
	case nil:
		return nil, &RecoveryError{Err: ErrNoObject}
	default:
		return nil, &RecoveryError{Err: fmt.Errorf("unsupported output type %T", raw)}
	}

	// Valid JSON skips repair unless it still carries template tokens.
	if obj, ok := parseObject(text); ok && !strings.Contains(text, "{{") {
		return &Recovery{Value: obj, Method: MethodDirect, Warnings: schema.Conform(obj)}, nil
	}

	var applied []string
	for _, step := range Steps(schema, fallback) {
		next := step.Apply(text)
		if next != text {
			applied = append(applied, step.Name)
		}
		text = next
	}
	sanitized := strings.TrimSpace(text)

	if !strings.Contains(sanitized, "{") {
		return nil, &RecoveryError{Sanitized: sanitized, Err: ErrNoObject}
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(sanitized), &obj); err != nil {
		return nil, &RecoveryError{Sanitized: sanitized, Err: err}
	}
	if obj == nil {
		return nil, &RecoveryError{Sanitized: sanitized, Err: ErrNoObject}
	}
	return &Recovery{Value: obj, Method: MethodRepaired, Steps: applied, Warnings: schema.Conform(obj)}, nil
}

func parseObject(text string) (map[string]any, bool) {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "{") {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(t), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
