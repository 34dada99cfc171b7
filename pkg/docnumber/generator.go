// Package docnumber generates human-readable document numbers for sales
// documents (invoices, returns).
//
// Numbers carry a date component plus a short random suffix. Uniqueness is
// NOT guaranteed by the generator: the storage layer enforces it with a
// unique constraint, and callers regenerate on collision (bounded retry).
package docnumber

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// MaxAttempts is the recommended bound for regenerate-on-collision loops.
const MaxAttempts = 5

// Format describes the shape of a document number.
type Format struct {
	// Prefix added to all numbers (e.g., "FAC", "DEV")
	Prefix string

	// DateLayout is the time layout of the date component
	DateLayout string

	// SuffixDigits is the width of the zero-padded random suffix
	SuffixDigits int

	// Join separates the date component from the suffix ("-" or "")
	Join string
}

// InvoiceFormat returns the sale invoice format: FAC-20260115-042
func InvoiceFormat() Format {
	return Format{Prefix: "FAC", DateLayout: "20060102", SuffixDigits: 3, Join: "-"}
}

// ReturnFormat returns the return-note format: DEV-26010421
func ReturnFormat() Format {
	return Format{Prefix: "DEV", DateLayout: "0601", SuffixDigits: 4, Join: ""}
}

// Generator produces document numbers. Safe for concurrent use.
type Generator struct {
	now  func() time.Time
	intN func(n int) int
}

// New creates a Generator backed by the shared math/rand source.
func New() *Generator {
	return &Generator{
		now:  time.Now,
		intN: rand.IntN,
	}
}

// NewWithSource creates a Generator with injected clock and random source.
// Use in tests for deterministic numbers.
func NewWithSource(now func() time.Time, intN func(int) int) *Generator {
	return &Generator{now: now, intN: intN}
}

// Next returns a fresh number for the format, e.g. FAC-20260115-042.
func (g *Generator) Next(f Format) string {
	suffixSpace := int(math.Pow10(f.SuffixDigits))
	suffix := g.intN(suffixSpace)
	return fmt.Sprintf("%s-%s%s%0*d",
		f.Prefix,
		g.now().Format(f.DateLayout),
		f.Join,
		f.SuffixDigits, suffix,
	)
}
