package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Validation limits for session object payloads.
const (
	MaxObjectsPerRequest = 1000
	MaxNestingDepth      = 5
	MaxStringLength      = 256
)

// Valid drawing object types, matched case-insensitively.
var validObjectTypes = map[string]struct{}{
	"LINE": {}, "POLYLINE": {}, "POLYGON": {}, "POINT": {},
	"CIRCLE": {}, "ARC": {}, "TEXT": {}, "BLOCK": {},
}

// allowedObjectKeys is the closed set of top-level keys a session object may
// carry. Unknown keys are collected during decode and reported by Validate
// alongside every other field error.
var allowedObjectKeys = map[string]struct{}{
	"type": {}, "layer": {}, "geometry": {}, "properties": {}, "coordinates": {},
}

// DrawingObject is a single object from the caller's session drawing state.
// Supplied fresh on every request and immutable during processing.
type DrawingObject struct {
	Type       string         `json:"type"`
	Layer      string         `json:"layer"`
	Geometry   map[string]any `json:"geometry,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	// Coordinates is a top-level fallback some exporters emit instead of
	// geometry.coordinates.
	Coordinates []any `json:"coordinates,omitempty"`

	// unknownKeys records disallowed top-level keys seen during decode.
	// Decode stays permissive so Validate can report every offender across
	// the whole object list, not just the first.
	unknownKeys []string
}

// UnmarshalJSON records allow-list violations without failing the decode.
func (o *DrawingObject) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("drawing object must be a JSON object: %w", err)
	}
	var unknown []string
	for k := range raw {
		if _, ok := allowedObjectKeys[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	type alias DrawingObject
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err //nolint:wrapcheck // field-level decode error is already descriptive
	}
	*o = DrawingObject(a)
	o.unknownKeys = unknown
	return nil
}

// HasGeometry reports whether the object carries usable coordinate data:
// geometry.coordinates non-empty, or the top-level coordinates fallback.
// An empty nested first element ([[ ]]) does not count.
func (o DrawingObject) HasGeometry() bool {
	if coordsUsable(o.Coordinates) {
		return true
	}
	if o.Geometry == nil {
		return false
	}
	coords, ok := o.Geometry["coordinates"].([]any)
	if !ok {
		return false
	}
	return coordsUsable(coords)
}

func coordsUsable(coords []any) bool {
	if len(coords) == 0 {
		return false
	}
	if first, ok := coords[0].([]any); ok {
		return len(first) > 0
	}
	return true
}

// Validate checks a single object and returns every field error found.
// The index is stamped into each error by ValidateObjects.
func (o DrawingObject) Validate() []FieldError {
	var errs []FieldError
	for _, k := range o.unknownKeys {
		errs = append(errs, FieldError{
			Field: k,
			Msg:   fmt.Sprintf("unknown field %q", k),
		})
	}
	if strings.TrimSpace(o.Type) == "" {
		errs = append(errs, FieldError{Field: "type", Msg: "type is required"})
	} else if _, ok := validObjectTypes[strings.ToUpper(o.Type)]; !ok {
		errs = append(errs, FieldError{
			Field: "type",
			Msg:   fmt.Sprintf("unrecognized type %q", o.Type),
		})
	}
	if strings.TrimSpace(o.Layer) == "" {
		errs = append(errs, FieldError{Field: "layer", Msg: "layer is required"})
	} else if len(o.Layer) > MaxStringLength {
		errs = append(errs, FieldError{
			Field: "layer",
			Msg:   fmt.Sprintf("layer exceeds %d characters", MaxStringLength),
		})
	}
	if o.Properties != nil {
		if depth := nestingDepth(o.Properties, 0); depth > MaxNestingDepth {
			errs = append(errs, FieldError{
				Field: "properties",
				Msg:   fmt.Sprintf("nested deeper than %d levels", MaxNestingDepth),
			})
		}
		for _, path := range longStringPaths(o.Properties, "properties") {
			errs = append(errs, FieldError{
				Field: path,
				Msg:   fmt.Sprintf("string value exceeds %d characters", MaxStringLength),
			})
		}
	}
	return errs
}

// longStringPaths returns the paths of string values in v that exceed
// MaxStringLength, sorted for deterministic reporting.
func longStringPaths(v any, path string) []string {
	var out []string
	walkLongStrings(v, path, &out)
	sort.Strings(out)
	return out
}

func walkLongStrings(v any, path string, out *[]string) {
	switch t := v.(type) {
	case string:
		if len(t) > MaxStringLength {
			*out = append(*out, path)
		}
	case map[string]any:
		for k, child := range t {
			walkLongStrings(child, path+"."+k, out)
		}
	case []any:
		for i, child := range t {
			walkLongStrings(child, fmt.Sprintf("%s[%d]", path, i), out)
		}
	}
}

func nestingDepth(v any, depth int) int {
	if depth > MaxNestingDepth {
		return depth
	}
	maxDepth := depth
	switch t := v.(type) {
	case map[string]any:
		for _, child := range t {
			if d := nestingDepth(child, depth+1); d > maxDepth {
				maxDepth = d
			}
		}
	case []any:
		for _, child := range t {
			if d := nestingDepth(child, depth+1); d > maxDepth {
				maxDepth = d
			}
		}
	}
	return maxDepth
}

// ValidateObjects validates a full session object list. It returns a
// *ValidationError listing every offending field, or nil when the list is
// acceptable. Runs before the summarizer ever sees the objects.
func ValidateObjects(objects []DrawingObject) error {
	var fields []FieldError
	if len(objects) > MaxObjectsPerRequest {
		fields = append(fields, FieldError{
			Index: -1,
			Field: "objects",
			Msg:   fmt.Sprintf("too many objects (%d, max %d)", len(objects), MaxObjectsPerRequest),
		})
	}
	for i, obj := range objects {
		for _, fe := range obj.Validate() {
			fe.Index = i
			fields = append(fields, fe)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
