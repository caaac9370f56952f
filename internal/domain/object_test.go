package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestValidateObjects_OK(t *testing.T) {
	objs := []DrawingObject{
		{Type: "LINE", Layer: "Walls", Geometry: map[string]any{
			"coordinates": []any{[]any{0.0, 0.0}, []any{10.0, 10.0}},
		}},
		{Type: "polygon", Layer: "Plot Boundary"},
	}
	if err := ValidateObjects(objs); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestValidateObjects_CollectsAllErrors(t *testing.T) {
	objs := []DrawingObject{
		{Type: "", Layer: ""},
		{Type: "SPLINE", Layer: "Walls"},
	}
	err := ValidateObjects(objs)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrInvalidObjects) {
		t.Fatalf("expected ErrInvalidObjects, got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Fields) != 3 {
		t.Fatalf("expected 3 field errors (missing type, missing layer, bad type), got %d: %+v",
			len(ve.Fields), ve.Fields)
	}
	if ve.Fields[2].Index != 1 || ve.Fields[2].Field != "type" {
		t.Fatalf("expected third error on object 1 field type, got %+v", ve.Fields[2])
	}
}

func TestValidateObjects_NestingDepth(t *testing.T) {
	deep := map[string]any{"a": map[string]any{"b": map[string]any{
		"c": map[string]any{"d": map[string]any{"e": map[string]any{"f": 1}}},
	}}}
	err := ValidateObjects([]DrawingObject{{Type: "BLOCK", Layer: "Walls", Properties: deep}})
	if err == nil {
		t.Fatal("expected nesting depth error")
	}
}

func TestValidateObjects_UnknownKeysAggregated(t *testing.T) {
	var objs []DrawingObject
	data := []byte(`[{"type":"LINE","layer":"Walls","color":"red"},{"layer":"Doors"}]`)
	if err := json.Unmarshal(data, &objs); err != nil {
		t.Fatalf("decode must stay permissive, got %v", err)
	}

	err := ValidateObjects(objs)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}

	type loc struct {
		index int
		field string
	}
	got := make(map[loc]bool)
	for _, fe := range ve.Fields {
		got[loc{fe.Index, fe.Field}] = true
	}
	if !got[loc{0, "color"}] {
		t.Errorf("unknown key on object 0 not reported: %+v", ve.Fields)
	}
	if !got[loc{1, "type"}] {
		t.Errorf("missing type on object 1 not reported: %+v", ve.Fields)
	}
}

func TestValidateObjects_UnknownKeysSorted(t *testing.T) {
	var obj DrawingObject
	data := []byte(`{"type":"LINE","layer":"Walls","zeta":1,"alpha":2}`)
	if err := json.Unmarshal(data, &obj); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	errs := obj.Validate()
	if len(errs) != 2 || errs[0].Field != "alpha" || errs[1].Field != "zeta" {
		t.Fatalf("expected sorted unknown-key errors [alpha zeta], got %+v", errs)
	}
}

func TestValidateObjects_LongPropertyString(t *testing.T) {
	objs := []DrawingObject{{
		Type:  "BLOCK",
		Layer: "Walls",
		Properties: map[string]any{
			"material": strings.Repeat("x", MaxStringLength+1),
			"name":     "ok",
		},
	}}

	err := ValidateObjects(objs)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0].Field != "properties.material" {
		t.Fatalf("expected one error on properties.material, got %+v", ve.Fields)
	}
}

func TestDrawingObject_HasGeometry(t *testing.T) {
	tests := []struct {
		name string
		obj  DrawingObject
		want bool
	}{
		{"nil geometry", DrawingObject{Type: "LINE", Layer: "Walls"}, false},
		{"empty coordinates", DrawingObject{Type: "LINE", Layer: "Walls",
			Geometry: map[string]any{"coordinates": []any{}}}, false},
		{"empty nested ring", DrawingObject{Type: "POLYGON", Layer: "Plot Boundary",
			Geometry: map[string]any{"coordinates": []any{[]any{}}}}, false},
		{"flat point", DrawingObject{Type: "POINT", Layer: "Doors",
			Geometry: map[string]any{"coordinates": []any{1.0, 2.0}}}, true},
		{"nested line", DrawingObject{Type: "LINE", Layer: "Highway",
			Geometry: map[string]any{"coordinates": []any{[]any{0.0, 0.0}, []any{1.0, 1.0}}}}, true},
		{"top-level fallback", DrawingObject{Type: "POINT", Layer: "Doors",
			Coordinates: []any{3.0, 4.0}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.obj.HasGeometry(); got != tt.want {
				t.Fatalf("HasGeometry() = %v, want %v", got, tt.want)
			}
		})
	}
}
