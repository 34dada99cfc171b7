package docnumber

import (
	"testing"
	"time"
)

func fixedGen(t *testing.T, suffix int) *Generator {
	t.Helper()
	now := func() time.Time {
		return time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	}
	return NewWithSource(now, func(n int) int {
		if suffix >= n {
			t.Fatalf("suffix %d out of range %d", suffix, n)
		}
		return suffix
	})
}

func TestInvoiceFormat(t *testing.T) {
	got := fixedGen(t, 42).Next(InvoiceFormat())
	want := "FAC-20260115-042"
	if got != want {
		t.Errorf("invoice number = %q, want %q", got, want)
	}
}

func TestReturnFormat(t *testing.T) {
	got := fixedGen(t, 421).Next(ReturnFormat())
	want := "DEV-26010421"
	if got != want {
		t.Errorf("return number = %q, want %q", got, want)
	}
}

func TestSuffixZeroPadded(t *testing.T) {
	got := fixedGen(t, 7).Next(InvoiceFormat())
	want := "FAC-20260115-007"
	if got != want {
		t.Errorf("invoice number = %q, want %q", got, want)
	}
}

func TestRegenerationChangesSuffix(t *testing.T) {
	suffixes := []int{5, 6}
	i := 0
	now := func() time.Time { return time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC) }
	g := NewWithSource(now, func(n int) int {
		s := suffixes[i%len(suffixes)]
		i++
		return s
	})

	first := g.Next(InvoiceFormat())
	second := g.Next(InvoiceFormat())
	if first == second {
		t.Errorf("expected distinct numbers on regeneration, got %q twice", first)
	}
}
