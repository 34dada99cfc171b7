package audit

import (
	"testing"
)

func TestDiffDetectsMonitoredChange(t *testing.T) {
	before := map[string]any{"name": "Cola 350ml", "unitPrice": "1.50", "active": true}
	after := map[string]any{"name": "Cola 350ml", "unitPrice": "1.75", "active": true}

	changes := Diff("product", before, after)
	if len(changes) != 1 {
		t.Fatalf("got %d changes, want 1: %+v", len(changes), changes)
	}
	c := changes[0]
	if c.Field != "unitPrice" || c.Before != "1.50" || c.After != "1.75" {
		t.Errorf("unexpected change: %+v", c)
	}
}

func TestDiffIgnoresUnmonitoredFields(t *testing.T) {
	before := map[string]any{"name": "Cola 350ml", "updatedAt": "2026-01-01T00:00:00Z", "version": 1}
	after := map[string]any{"name": "Cola 350ml", "updatedAt": "2026-02-01T00:00:00Z", "version": 2}

	if changes := Diff("product", before, after); len(changes) != 0 {
		t.Errorf("got %d changes, want 0: %+v", len(changes), changes)
	}
}

func TestDiffTreatsNilAndMissingAsEqual(t *testing.T) {
	before := map[string]any{"name": "Cola 350ml", "barcode": nil}
	after := map[string]any{"name": "Cola 350ml"}

	if changes := Diff("product", before, after); len(changes) != 0 {
		t.Errorf("nil and absent must compare equal, got %+v", changes)
	}
}

func TestDiffNilToValueIsAChange(t *testing.T) {
	before := map[string]any{"name": "Cola 350ml"}
	after := map[string]any{"name": "Cola 350ml", "barcode": "7591234567890"}

	changes := Diff("product", before, after)
	if len(changes) != 1 || changes[0].Field != "barcode" {
		t.Errorf("expected one barcode change, got %+v", changes)
	}
	if changes[0].Before != nil {
		t.Errorf("before = %v, want nil", changes[0].Before)
	}
}

func TestDiffUnknownEntity(t *testing.T) {
	if changes := Diff("warehouse", map[string]any{"a": 1}, map[string]any{"a": 2}); changes != nil {
		t.Errorf("unknown entity must produce no changes, got %+v", changes)
	}
}

func TestDiffStructSnapshots(t *testing.T) {
	type snapshot struct {
		Name      string `json:"name"`
		UnitPrice string `json:"unitPrice"`
	}
	changes := Diff("product", snapshot{"Cola", "1.50"}, snapshot{"Cola", "2.00"})
	if len(changes) != 1 || changes[0].Field != "unitPrice" {
		t.Errorf("expected one unitPrice change, got %+v", changes)
	}
}
