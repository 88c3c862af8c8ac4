// Copyright ©2026 The scico-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package optimize implements proximal splitting solvers for composite
// problems of the form
//
//	minimize f(x) + g(C x),
//
// where f and g are scico.Functionals and C is a scico.LinearOperator. The
// solvers share one architecture: a validated constructor builds the state,
// Step performs one update, and Solve runs a fixed iteration budget while
// recording diagnostics and remains resumable across calls.
//
// Solver instances are not safe for concurrent use.
package optimize

import (
	"fmt"
	"io"
	"os"

	"github.com/Danaroth83/scico"
	"github.com/Danaroth83/scico/diagnostics"
)

// defaultMaxIter is the iteration budget used when Settings.MaxIter is zero.
const defaultMaxIter = 100

// Settings holds construction options shared by the solvers in this
// package. Zero values select defaults.
type Settings struct {
	// X0 is the starting point for the primal variable. If nil, the zero
	// vector of the operator's input dimension is used. X0 is
	// value-copied; the solver never aliases it.
	X0 []float64

	// MaxIter is the iteration budget per Solve call. If zero, it is set
	// to 100. Negative values are rejected at construction.
	MaxIter int

	// Verbose indicates whether iteration statistics are displayed as
	// they are recorded.
	Verbose bool

	// StatsWriter is the display destination used when Verbose is set.
	// If nil, os.Stdout is used.
	StatsWriter io.Writer
}

func (s *Settings) maxIter() (int, error) {
	if s.MaxIter < 0 {
		return 0, fmt.Errorf("%w: maxiter must be positive, got %d", scico.ErrInvalidParameter, s.MaxIter)
	}
	if s.MaxIter == 0 {
		return defaultMaxIter, nil
	}
	return s.MaxIter, nil
}

func (s *Settings) statsWriter() io.Writer {
	if !s.Verbose {
		return nil
	}
	if s.StatsWriter != nil {
		return s.StatsWriter
	}
	return os.Stdout
}

// itstat bundles the diagnostics machinery shared by the solvers in this
// package: the iteration timer, the statistics log, and the record extractor
// selected once at construction.
type itstat struct {
	timer  scico.Timer
	stats  *diagnostics.IterationStats
	record func() []float64
	statsW io.Writer
}

// SetStats replaces the diagnostics schema and the record extractor chosen
// at construction. record must return one value per field. Any previously
// recorded history is discarded, so SetStats should be called before the
// first Solve.
func (s *itstat) SetStats(fields []diagnostics.Field, record func() []float64) error {
	st, err := diagnostics.New(fields, s.statsW)
	if err != nil {
		return err
	}
	s.stats = st
	s.record = record
	return nil
}

// Stats returns the diagnostics history.
func (s *itstat) Stats() *diagnostics.IterationStats { return s.stats }

// initialPoint validates and value-copies an initial iterate against the
// expected dimension, substituting the zero vector when x0 is nil.
func initialPoint(x0 []float64, dim int) ([]float64, error) {
	if x0 == nil {
		return make([]float64, dim), nil
	}
	if len(x0) != dim {
		return nil, fmt.Errorf("%w: initial point length %d does not match operator input dimension %d",
			scico.ErrInvalidParameter, len(x0), dim)
	}
	return append([]float64(nil), x0...), nil
}
