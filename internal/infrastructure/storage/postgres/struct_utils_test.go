package postgres

import (
	"reflect"
	"testing"
)

type sampleRow struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Skipped string `db:"-"`
	NoTag   string
}

func TestExtractDBColumns(t *testing.T) {
	got := ExtractDBColumns[sampleRow]()
	want := []string{"id", "name"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractDBColumns() = %v, want %v", got, want)
	}
}

func TestStructToMap(t *testing.T) {
	row := sampleRow{ID: "1", Name: "cola", Skipped: "x", NoTag: "y"}
	got := StructToMap(&row)
	want := map[string]any{"id": "1", "name": "cola"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("StructToMap() = %v, want %v", got, want)
	}
}
