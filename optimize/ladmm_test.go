// Copyright ©2026 The scico-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/Danaroth83/scico"
	"github.com/Danaroth83/scico/diagnostics"
	"github.com/Danaroth83/scico/functional"
	"github.com/Danaroth83/scico/linop"
)

// proxOnly is a stand-in for an implicit regularizer, such as a denoiser
// used as a proximal operator: it has no closed-form value.
type proxOnly struct{}

func (proxOnly) Eval(x []float64) (float64, error) { return 0, scico.ErrNotEvaluable }
func (proxOnly) HasEval() bool                     { return false }
func (proxOnly) Prox(dst, v []float64, step float64, warm []float64) error {
	copy(dst, v)
	return nil
}

// failAfter fails its prox on the n-th call.
type failAfter struct {
	n, calls int
}

func (f *failAfter) Eval(x []float64) (float64, error) { return 0, nil }
func (f *failAfter) HasEval() bool                     { return true }
func (f *failAfter) Prox(dst, v []float64, step float64, warm []float64) error {
	f.calls++
	if f.calls >= f.n {
		return fmt.Errorf("prox failed on call %d", f.calls)
	}
	copy(dst, v)
	return nil
}

// lassoProblem builds a deterministic least-squares-plus-L1 instance
//
//	minimize ½‖Ax − y‖₂² + λ‖x‖₁
//
// with C the identity, suitable for mu=0.5, nu=1.
func lassoProblem(t *testing.T) (f *functional.SquaredL2Loss, g *functional.Scaled, c *linop.Identity) {
	t.Helper()
	rnd := rand.New(rand.NewSource(42))
	const m, n = 6, 4
	a := mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			a.Set(i, j, rnd.NormFloat64()/math.Sqrt(m))
		}
	}
	xTrue := []float64{1, 0, -2, 0}
	y := make([]float64, m)
	linop.NewMatrix(a).Apply(y, xTrue)

	f, err := functional.NewSquaredL2Loss(linop.NewMatrix(a), y)
	require.NoError(t, err)
	g, err = functional.NewScaled(functional.L1Norm{}, 0.1)
	require.NoError(t, err)
	return f, g, linop.NewIdentity(n)
}

func TestLinearizedADMMValidation(t *testing.T) {
	g := functional.L1Norm{}
	c := linop.NewIdentity(2)
	for name, build := range map[string]func() (*LinearizedADMM, error){
		"nil g":       func() (*LinearizedADMM, error) { return NewLinearizedADMM(nil, nil, c, 0.5, 1, nil) },
		"nil c":       func() (*LinearizedADMM, error) { return NewLinearizedADMM(nil, g, nil, 0.5, 1, nil) },
		"zero mu":     func() (*LinearizedADMM, error) { return NewLinearizedADMM(nil, g, c, 0, 1, nil) },
		"negative nu": func() (*LinearizedADMM, error) { return NewLinearizedADMM(nil, g, c, 0.5, -1, nil) },
		"bad x0": func() (*LinearizedADMM, error) {
			return NewLinearizedADMM(nil, g, c, 0.5, 1, &Settings{X0: []float64{1, 2, 3}})
		},
		"negative maxiter": func() (*LinearizedADMM, error) {
			return NewLinearizedADMM(nil, g, c, 0.5, 1, &Settings{MaxIter: -1})
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := build()
			assert.True(t, errors.Is(err, scico.ErrInvalidParameter), "got %v", err)
		})
	}
}

func TestLinearizedADMMInitialState(t *testing.T) {
	c := linop.NewFiniteDifference(4, false)
	lad, err := NewLinearizedADMM(nil, functional.L1Norm{}, c, 0.1, 1, &Settings{X0: []float64{1, 2, 4, 7}})
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2, 4, 7}, lad.X())
	assert.Equal(t, []float64{1, 2, 3}, lad.Z()) // z = C x0
	assert.Equal(t, []float64{0, 0, 0}, lad.U()) // u = 0
	assert.Zero(t, lad.Iteration())
}

// Non-negative clamp scenario: C identity, f zero, g the indicator of the
// non-negative orthant, mu=0.5, nu=1, x0=[-1, 2]. The first iteration clamps
// the split variable; the second iteration's x-update pulls x onto it.
func TestLinearizedADMMNonNegativeClamp(t *testing.T) {
	lad, err := NewLinearizedADMM(nil, functional.NonNegativeIndicator{}, linop.NewIdentity(2),
		0.5, 1.0, &Settings{X0: []float64{-1, 2}, MaxIter: 1})
	require.NoError(t, err)

	x, err := lad.Solve(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, lad.Iteration())
	assert.InDeltaSlice(t, []float64{0, 2}, lad.Z(), 1e-9)
	assert.InDeltaSlice(t, []float64{-1, 2}, x, 1e-9)

	x, err = lad.Solve(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, lad.Iteration())
	assert.InDeltaSlice(t, []float64{0, 2}, x, 1e-9)
}

func TestLinearizedADMMFixedPoint(t *testing.T) {
	// A feasible non-negative starting point with C the identity is a
	// fixed point: C x = z and the multiplier update is a no-op.
	lad, err := NewLinearizedADMM(nil, functional.NonNegativeIndicator{}, linop.NewIdentity(2),
		0.5, 1.0, &Settings{X0: []float64{1, 2}, MaxIter: 3})
	require.NoError(t, err)

	_, err = lad.Solve(nil)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2}, lad.X(), 1e-12)
	assert.InDeltaSlice(t, []float64{1, 2}, lad.Z(), 1e-12)
	assert.InDeltaSlice(t, []float64{0, 0}, lad.U(), 1e-12)
	assert.InDelta(t, 0, lad.NormPrimalResidual(nil), 1e-12)
	assert.InDelta(t, 0, lad.NormDualResidual(), 1e-12)
}

func TestLinearizedADMMObjectiveArgumentContract(t *testing.T) {
	f, g, c := lassoProblem(t)
	lad, err := NewLinearizedADMM(f, g, c, 0.5, 1, nil)
	require.NoError(t, err)

	_, err = lad.Objective([]float64{0, 0, 0, 0}, nil)
	assert.True(t, errors.Is(err, scico.ErrInvalidArgument))
	_, err = lad.Objective(nil, []float64{0, 0, 0, 0})
	assert.True(t, errors.Is(err, scico.ErrInvalidArgument))

	obj, err := lad.Objective(nil, nil)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(obj))
}

func TestLinearizedADMMSchemaSelection(t *testing.T) {
	c := linop.NewIdentity(2)

	lad, err := NewLinearizedADMM(nil, functional.L1Norm{}, c, 0.5, 1, nil)
	require.NoError(t, err)
	names := fieldNames(lad.Stats().Fields())
	assert.Contains(t, names, "Objective")

	lad, err = NewLinearizedADMM(nil, proxOnly{}, c, 0.5, 1, nil)
	require.NoError(t, err)
	names = fieldNames(lad.Stats().Fields())
	assert.NotContains(t, names, "Objective")
	assert.Contains(t, names, "Primal Rsdl")
	assert.Contains(t, names, "Dual Rsdl")
}

func fieldNames(fields []diagnostics.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func TestLinearizedADMMIterationCounterAndResume(t *testing.T) {
	f, g, c := lassoProblem(t)

	one, err := NewLinearizedADMM(f, g, c, 0.5, 1, &Settings{MaxIter: 20})
	require.NoError(t, err)
	_, err = one.Solve(nil)
	require.NoError(t, err)
	require.Equal(t, 20, one.Iteration())

	two, err := NewLinearizedADMM(f, g, c, 0.5, 1, &Settings{MaxIter: 10})
	require.NoError(t, err)
	_, err = two.Solve(nil)
	require.NoError(t, err)
	require.Equal(t, 10, two.Iteration())
	_, err = two.Solve(nil)
	require.NoError(t, err)
	require.Equal(t, 20, two.Iteration())

	assert.InDeltaSlice(t, one.X(), two.X(), 1e-12)
	assert.InDeltaSlice(t, one.Z(), two.Z(), 1e-12)
	assert.InDeltaSlice(t, one.U(), two.U(), 1e-12)
	assert.Equal(t, 20, two.Stats().Len())

	// Resumed records continue the counter without gaps or resets.
	iters, ok := two.Stats().Series("Iter")
	require.True(t, ok)
	assert.Equal(t, 0.0, iters[0])
	assert.Equal(t, 19.0, iters[19])
}

func TestLinearizedADMMResidualsNonNegative(t *testing.T) {
	f, g, c := lassoProblem(t)
	lad, err := NewLinearizedADMM(f, g, c, 0.5, 1, &Settings{MaxIter: 25})
	require.NoError(t, err)

	_, err = lad.Solve(func(s *LinearizedADMM) {
		assert.GreaterOrEqual(t, s.NormPrimalResidual(nil), 0.0)
		assert.GreaterOrEqual(t, s.NormDualResidual(), 0.0)
	})
	require.NoError(t, err)
}

func TestLinearizedADMMObjectiveBounded(t *testing.T) {
	// With mu, nu satisfying the stability bound (‖C‖₂ = 1 here), the
	// objective must not diverge over 100 iterations.
	f, g, c := lassoProblem(t)
	lad, err := NewLinearizedADMM(f, g, c, 0.5, 1, &Settings{MaxIter: 100})
	require.NoError(t, err)
	_, err = lad.Solve(nil)
	require.NoError(t, err)

	obj, ok := lad.Stats().Series("Objective")
	require.True(t, ok)
	require.Len(t, obj, 100)
	for i, v := range obj {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "objective diverged at iteration %d", i)
	}
	assert.Less(t, obj[99], obj[0])
	assert.Less(t, lad.NormPrimalResidual(nil), 1e-2)
}

func TestLinearizedADMMCallbackTimeExcluded(t *testing.T) {
	f, g, c := lassoProblem(t)
	lad, err := NewLinearizedADMM(f, g, c, 0.5, 1, &Settings{MaxIter: 5})
	require.NoError(t, err)

	calls := 0
	_, err = lad.Solve(func(s *LinearizedADMM) {
		calls++
		time.Sleep(10 * time.Millisecond)
	})
	require.NoError(t, err)
	require.Equal(t, 5, calls)

	times, ok := lad.Stats().Series("Time")
	require.True(t, ok)
	// The 50ms of callback sleep must not show up in the recorded time.
	assert.Less(t, times[4], 0.040)
	assert.True(t, sortedNonDecreasing(times))
}

func sortedNonDecreasing(v []float64) bool {
	for i := 1; i < len(v); i++ {
		if v[i] < v[i-1] {
			return false
		}
	}
	return true
}

func TestLinearizedADMMVerboseDisplay(t *testing.T) {
	var buf bytes.Buffer
	f, g, c := lassoProblem(t)
	lad, err := NewLinearizedADMM(f, g, c, 0.5, 1,
		&Settings{MaxIter: 3, Verbose: true, StatsWriter: &buf})
	require.NoError(t, err)
	_, err = lad.Solve(nil)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5) // header, rule, three records
	assert.Contains(t, lines[0], "Iter")
	assert.Contains(t, lines[0], "Objective")
}

func TestLinearizedADMMErrorAbortsPreservingProgress(t *testing.T) {
	g := &failAfter{n: 3}
	lad, err := NewLinearizedADMM(nil, g, linop.NewIdentity(2), 0.5, 1,
		&Settings{X0: []float64{1, 1}, MaxIter: 10})
	require.NoError(t, err)

	_, err = lad.Solve(nil)
	require.Error(t, err)
	// Two iterations completed before the third prox call failed.
	assert.Equal(t, 2, lad.Iteration())
	assert.Equal(t, 2, lad.Stats().Len())
}

func TestLinearizedADMMSetStatsOverride(t *testing.T) {
	f, g, c := lassoProblem(t)
	lad, err := NewLinearizedADMM(f, g, c, 0.5, 1, &Settings{MaxIter: 4})
	require.NoError(t, err)

	err = lad.SetStats([]diagnostics.Field{
		{Name: "Iter", Format: "%d"},
		{Name: "NrmX", Format: "%8.3e"},
	}, func() []float64 {
		return []float64{float64(lad.Iteration()), floats.Norm(lad.X(), 2)}
	})
	require.NoError(t, err)

	_, err = lad.Solve(nil)
	require.NoError(t, err)
	nrm, ok := lad.Stats().Series("NrmX")
	require.True(t, ok)
	require.Len(t, nrm, 4)
	_, ok = lad.Stats().Series("Objective")
	assert.False(t, ok)
}
