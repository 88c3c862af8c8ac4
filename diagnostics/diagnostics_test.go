// Copyright ©2026 The scico-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package diagnostics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFields() []Field {
	return []Field{
		{Name: "Iter", Format: "%d"},
		{Name: "Time", Format: "%8.2e"},
		{Name: "Primal Rsdl", Format: "%8.3e"},
	}
}

func TestNewRejectsBadSchemas(t *testing.T) {
	_, err := New(nil, nil)
	require.Error(t, err)

	_, err = New([]Field{{Name: "A", Format: "%d"}, {Name: "A", Format: "%d"}}, nil)
	require.Error(t, err)
}

func TestInsertAndColumnView(t *testing.T) {
	s, err := New(testFields(), nil)
	require.NoError(t, err)
	require.Zero(t, s.Len())

	s.Insert([]float64{0, 0.5, 1e-1})
	s.Insert([]float64{1, 1.0, 5e-2})
	require.Equal(t, 2, s.Len())

	iters, ok := s.Series("Iter")
	require.True(t, ok)
	assert.Equal(t, []float64{0, 1}, iters)

	rsdl, ok := s.Series("Primal Rsdl")
	require.True(t, ok)
	assert.Equal(t, []float64{1e-1, 5e-2}, rsdl)

	_, ok = s.Series("Objective")
	assert.False(t, ok)

	hist := s.History()
	require.Len(t, hist, 3)
	assert.Equal(t, []float64{0.5, 1.0}, hist["Time"])
}

func TestInsertCopiesRecord(t *testing.T) {
	s, err := New(testFields(), nil)
	require.NoError(t, err)

	rec := []float64{0, 1, 2}
	s.Insert(rec)
	rec[2] = 99

	col, _ := s.Series("Primal Rsdl")
	assert.Equal(t, []float64{2}, col)
}

func TestInsertPanicsOnLengthMismatch(t *testing.T) {
	s, err := New(testFields(), nil)
	require.NoError(t, err)
	assert.Panics(t, func() { s.Insert([]float64{1, 2}) })
}

func TestDisplay(t *testing.T) {
	var buf bytes.Buffer
	s, err := New(testFields(), &buf)
	require.NoError(t, err)

	s.Insert([]float64{0, 1.5e-3, 2.5e-1})
	s.Insert([]float64{1, 3.0e-3, 1.25e-1})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4) // header, rule, two records

	assert.Contains(t, lines[0], "Iter")
	assert.Contains(t, lines[0], "Primal Rsdl")
	assert.Contains(t, lines[1], "----")

	// Integer verbs render without a decimal point.
	assert.True(t, strings.HasPrefix(lines[2], "0"))
	assert.Contains(t, lines[2], "1.50e-03")
	assert.Contains(t, lines[3], "1.250e-01")
}
