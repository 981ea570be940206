package cue

import (
	"strings"
	"testing"
)

func loadedValidator(t *testing.T) *Validator {
	t.Helper()
	v := NewValidator()
	if err := v.LoadSchemas(); err != nil {
		t.Fatalf("LoadSchemas failed: %v", err)
	}
	return v
}

// TestNewValidator tests the Validator constructor
func TestNewValidator(t *testing.T) {
	v := NewValidator()
	if v == nil {
		t.Fatal("NewValidator returned nil")
	}
	if v.ctx == nil {
		t.Error("Validator.ctx is nil")
	}
	if len(v.schemas) != 0 {
		t.Errorf("Expected empty schemas map, got %d entries", len(v.schemas))
	}
}

// TestLoadSchemas tests loading embedded CUE schemas
func TestLoadSchemas(t *testing.T) {
	v := loadedValidator(t)

	for _, name := range []string{SchemaSchedule, SchemaCatalog} {
		if !v.HasSchema(name) {
			t.Errorf("Expected schema %q to be loaded", name)
		}
	}
}

func TestValidateSchedule(t *testing.T) {
	v := loadedValidator(t)

	tests := []struct {
		name      string
		data      map[string]any
		wantError bool
	}{
		{
			name: "empty schedule",
			data: map[string]any{
				"activities": []any{},
			},
		},
		{
			name: "full activity",
			data: map[string]any{
				"project_id": "p-1",
				"data_date":  "2024-03-01",
				"activities": []any{
					map[string]any{
						"id":               "A1",
						"name":             "Excavate",
						"type":             "task",
						"duration":         5,
						"planned_start":    "2024-01-01",
						"planned_finish":   "2024-01-06T17:00:00Z",
						"total_float":      -2.5,
						"status":           "in_progress",
						"percent_complete": 40,
						"constraint_type":  "snet",
						"constraint_date":  "2024-01-01",
					},
				},
				"relationships": []any{
					map[string]any{"predecessor": "A1", "successor": "ZZ", "type": "FS", "lag": -1},
				},
			},
		},
		{
			name: "missing activities",
			data: map[string]any{
				"project_id": "p-1",
			},
			wantError: true,
		},
		{
			name: "unknown status",
			data: map[string]any{
				"activities": []any{
					map[string]any{"id": "A1", "status": "paused"},
				},
			},
			wantError: true,
		},
		{
			name: "percent out of range",
			data: map[string]any{
				"activities": []any{
					map[string]any{"id": "A1", "percent_complete": 120},
				},
			},
			wantError: true,
		},
		{
			name: "malformed date",
			data: map[string]any{
				"activities": []any{
					map[string]any{"id": "A1", "planned_start": "01/02/2024"},
				},
			},
			wantError: true,
		},
		{
			name: "unknown field",
			data: map[string]any{
				"activities": []any{
					map[string]any{"id": "A1", "colour": "red"},
				},
			},
			wantError: true,
		},
		{
			name: "bad relationship type",
			data: map[string]any{
				"activities": []any{},
				"relationships": []any{
					map[string]any{"predecessor": "A", "successor": "B", "type": "XX"},
				},
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, err := v.ValidateSchedule("test.schedule.json", tt.data)
			if err != nil {
				t.Fatalf("ValidateSchedule returned error: %v", err)
			}
			if tt.wantError && len(errs) == 0 {
				t.Error("Expected validation errors, got none")
			}
			if !tt.wantError && len(errs) > 0 {
				t.Errorf("Expected no validation errors, got %v", errs)
			}
		})
	}
}

func TestValidateCatalog(t *testing.T) {
	v := loadedValidator(t)

	tests := []struct {
		name      string
		data      map[string]any
		wantError bool
	}{
		{
			name: "retune weight",
			data: map[string]any{
				"standard": []any{
					map[string]any{"id": "missing_logic", "weight": 5},
				},
			},
		},
		{
			name: "custom rule with threshold",
			data: map[string]any{
				"custom_blend_weight": 0.3,
				"custom": []any{
					map[string]any{
						"id":        "long_lags",
						"weight":    1,
						"threshold": map[string]any{"kind": "ratio", "value": 0.02},
						"params":    map[string]any{"ceiling": 15},
					},
				},
			},
		},
		{
			name: "blend weight above one",
			data: map[string]any{
				"custom_blend_weight": 1.5,
			},
			wantError: true,
		},
		{
			name: "unknown threshold kind",
			data: map[string]any{
				"standard": []any{
					map[string]any{"id": "x", "threshold": map[string]any{"kind": "percent", "value": 1}},
				},
			},
			wantError: true,
		},
		{
			name: "bad id",
			data: map[string]any{
				"standard": []any{
					map[string]any{"id": "Missing Logic"},
				},
			},
			wantError: true,
		},
		{
			name: "unknown category",
			data: map[string]any{
				"standard": []any{
					map[string]any{"id": "x", "category": "cost"},
				},
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, err := v.ValidateCatalog("catalog.yaml", tt.data)
			if err != nil {
				t.Fatalf("ValidateCatalog returned error: %v", err)
			}
			if tt.wantError != (len(errs) > 0) {
				t.Errorf("wantError=%v, got %v", tt.wantError, errs)
			}
		})
	}
}

func TestValidate_SchemaNotLoaded(t *testing.T) {
	v := NewValidator()
	_, err := v.ValidateSchedule("", map[string]any{})
	if err == nil {
		t.Fatal("expected error when schemas are not loaded")
	}
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{File: "a.json", Path: "activities.0.status", Message: "conflicting values"}
	got := e.Error()
	if !strings.Contains(got, "a.json") || !strings.Contains(got, "activities.0.status") {
		t.Errorf("Error() = %q, want file and path", got)
	}

	if AsError(nil) != nil {
		t.Error("AsError(nil) should be nil")
	}
	if err := AsError([]ValidationError{e}); err == nil || !strings.Contains(err.Error(), "conflicting values") {
		t.Errorf("AsError = %v", err)
	}
}
