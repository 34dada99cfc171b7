package audit

import (
	"encoding/json"
	"reflect"
)

// monitoredFields lists, per entity, the JSON fields whose changes are
// worth an audit trail. Anything else (timestamps, versions, derived
// values) is ignored.
var monitoredFields = map[string][]string{
	"product": {
		"code", "barcode", "name", "category", "brand", "description",
		"stockCases", "looseUnits", "unitsPerCase", "minStock",
		"unitPrice", "casePrice", "unitCost", "caseCost",
		"saleMode", "active",
	},
	"client": {
		"cedula", "name", "phone", "email", "address", "active",
	},
	"config": {
		"businessName", "taxID", "address", "phone", "email",
		"currencySymbol", "taxPercent", "invoiceFooter", "logoURL",
	},
	"user": {
		"email", "name", "role", "active",
	},
}

// Diff compares two snapshots of an entity over its monitored fields.
// A field missing on one side and nil on the other counts as unchanged.
// Unknown entities produce no changes.
func Diff(entity string, before, after any) []Change {
	fields, ok := monitoredFields[entity]
	if !ok {
		return nil
	}
	b := toMap(before)
	a := toMap(after)

	var changes []Change
	for _, f := range fields {
		bv := b[f]
		av := a[f]
		if equalValue(bv, av) {
			continue
		}
		changes = append(changes, Change{Field: f, Before: bv, After: av})
	}
	return changes
}

// toMap flattens a snapshot through its JSON representation so that
// comparisons see exactly what clients see.
func toMap(v any) map[string]any {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func equalValue(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	return reflect.DeepEqual(a, b)
}
