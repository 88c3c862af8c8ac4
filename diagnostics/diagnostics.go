// Copyright ©2026 The scico-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diagnostics accumulates and formats per-iteration solver
// statistics. It performs no numerical computation of its own: solvers push
// one record per iteration and the package stores, formats and optionally
// echoes it.
package diagnostics

import (
	"fmt"
	"io"
	"strings"
)

// Field describes one column of an iteration-statistics schema.
type Field struct {
	// Name is the column header, for example "Primal Rsdl".
	Name string

	// Format is a printf-style verb used to render values of this
	// column, for example "%d" or "%8.3e". Integer verbs are rendered
	// from the truncated value.
	Format string
}

// IterationStats accumulates a growable, insertion-ordered log of records
// conforming to a fixed field schema. If a writer is supplied, each record
// is echoed as it arrives, preceded by a header before the first record.
//
// The history is append-only and single-writer: it is owned by one solver.
type IterationStats struct {
	fields  []Field
	widths  []int
	history [][]float64

	w           io.Writer
	printedHead bool
}

// New returns an IterationStats with the given schema. If w is non-nil,
// every inserted record is written to it. New returns an error if the schema
// is empty or contains duplicate field names.
func New(fields []Field, w io.Writer) (*IterationStats, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("diagnostics: empty field schema")
	}
	seen := make(map[string]bool, len(fields))
	widths := make([]int, len(fields))
	for i, f := range fields {
		if seen[f.Name] {
			return nil, fmt.Errorf("diagnostics: duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		w := len(format(f.Format, 0))
		if n := len(f.Name); n > w {
			w = n
		}
		widths[i] = w
	}
	return &IterationStats{
		fields: append([]Field(nil), fields...),
		widths: widths,
		w:      w,
	}, nil
}

// Fields returns the schema. The returned slice must not be modified.
func (s *IterationStats) Fields() []Field { return s.fields }

// Len returns the number of inserted records.
func (s *IterationStats) Len() int { return len(s.history) }

// Insert appends one record. The record length must match the schema;
// a mismatch is a programmer error and panics. The record is value-copied.
func (s *IterationStats) Insert(record []float64) {
	if len(record) != len(s.fields) {
		panic("diagnostics: record length does not match schema")
	}
	s.history = append(s.history, append([]float64(nil), record...))
	if s.w == nil {
		return
	}
	if !s.printedHead {
		s.printHeader()
		s.printedHead = true
	}
	cells := make([]string, len(record))
	for i, v := range record {
		cells[i] = pad(format(s.fields[i].Format, v), s.widths[i])
	}
	fmt.Fprintln(s.w, strings.Join(cells, "  "))
}

// Series returns the column of values recorded for the named field, aligned
// by insertion index, and whether the field exists in the schema.
func (s *IterationStats) Series(name string) ([]float64, bool) {
	col := -1
	for i, f := range s.fields {
		if f.Name == name {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, false
	}
	out := make([]float64, len(s.history))
	for i, rec := range s.history {
		out[i] = rec[col]
	}
	return out, true
}

// History returns the full log transposed into one column per field.
func (s *IterationStats) History() map[string][]float64 {
	out := make(map[string][]float64, len(s.fields))
	for _, f := range s.fields {
		col, _ := s.Series(f.Name)
		out[f.Name] = col
	}
	return out
}

func (s *IterationStats) printHeader() {
	names := make([]string, len(s.fields))
	rules := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = pad(f.Name, s.widths[i])
		rules[i] = strings.Repeat("-", s.widths[i])
	}
	fmt.Fprintln(s.w, strings.Join(names, "  "))
	fmt.Fprintln(s.w, strings.Join(rules, "  "))
}

// format renders v with a printf verb, truncating to an integer for integer
// verbs so that schemas can mix "%d" counters with float columns.
func format(verb string, v float64) string {
	if strings.ContainsAny(verb, "dboxX") {
		return fmt.Sprintf(verb, int64(v))
	}
	return fmt.Sprintf(verb, v)
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}
