package solver

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	cubicExp   = Scalar(func(x float64) float64 { return x*x*x - math.Exp(0.8*x) - 20 })
	cubicExpDF = Scalar(func(x float64) float64 { return 3*x*x - 0.8*math.Exp(0.8*x) })
	cubic      = Scalar(func(x float64) float64 { return x*x*x - 0.5*x*x + 4*x - 1 })
	cubicDF    = Scalar(func(x float64) float64 { return 3*x*x - x + 4 })
	xcos       = Scalar(func(x float64) float64 { return x * math.Cos(x) })
	xcosDF     = Scalar(func(x float64) float64 { return math.Cos(x) - x*math.Sin(x) })
)

type recorder struct {
	iters []Iter
}

func (r *recorder) observe(it Iter) error {
	r.iters = append(r.iters, it)
	return nil
}

func assertIndexed(t *testing.T, iters []Iter, n int) {
	t.Helper()
	require.Len(t, iters, n)
	for i, it := range iters {
		assert.Equal(t, i+1, it.K)
	}
}

func TestBisection_Problems(t *testing.T) {
	cases := []struct {
		name  string
		f     Func
		a, b  float64
		root  float64
		iters int
	}{
		{"cubic-exp", cubicExp, 3, 4, 3.20819091796875, 14},
		{"cubic", cubic, 0, 1, 0.25396728515625, 14},
		{"xcos", xcos, 1.5, 2, 1.57073974609375, 13},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			out, err := Bisection(tc.f, tc.a, tc.b, 1e-4, 0, rec.observe)
			require.NoError(t, err)
			assert.Equal(t, RootFound, out.Kind)
			assert.InDelta(t, tc.root, out.Root, 1e-12)
			assert.Equal(t, tc.iters, out.Iterations)
			assertIndexed(t, rec.iters, tc.iters)

			last := rec.iters[len(rec.iters)-1]
			assert.Less(t, last.Err, 1e-4)
			assert.Equal(t, last.X, out.Root)
			// на предыдущей итерации полуширина ещё не меньше tol
			assert.GreaterOrEqual(t, rec.iters[len(rec.iters)-2].Err, 1e-4)
		})
	}
}

func TestBisection_NoSignChange(t *testing.T) {
	rec := &recorder{}
	out, err := Bisection(cubicExp, 2, 3, 1e-4, 0, rec.observe)
	require.NoError(t, err)
	assert.Equal(t, NoSignChange, out.Kind)
	assert.Equal(t, 2.0, out.A)
	assert.Equal(t, 3.0, out.B)
	assert.Zero(t, out.Iterations)
	assert.Empty(t, rec.iters)
}

func TestBisection_ExactRoot(t *testing.T) {
	out, err := Bisection(Scalar(func(x float64) float64 { return x }), -1, 3, 1e-4, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, ExactRoot, out.Kind)
	assert.Equal(t, 0.0, out.Root)
	assert.Equal(t, 2, out.Iterations)
}

func TestBisection_ZeroAtEndpointIsNotSignChange(t *testing.T) {
	// f(a) = 0: произведение равно нулю, поэтому всегда сдвигается a
	rec := &recorder{}
	out, err := Bisection(Scalar(func(x float64) float64 { return x - 1 }), 1, 2, 1e-3, 0, rec.observe)
	require.NoError(t, err)
	assert.Equal(t, RootFound, out.Kind)
	assert.Greater(t, out.Root, 1.9)
}

func TestBisection_SlowConvergence(t *testing.T) {
	rec := &recorder{}
	out, err := Bisection(cubicExp, 3, 4, 1e-4, 5, rec.observe)
	require.NoError(t, err)
	assert.Equal(t, SlowConvergence, out.Kind)
	assert.Equal(t, 5, out.Iterations)
	assertIndexed(t, rec.iters, 5)
	assert.Equal(t, rec.iters[4].X, out.Root)
}

func TestBisection_BadInput(t *testing.T) {
	_, err := Bisection(cubicExp, 3, 3, 1e-4, 0, nil)
	assert.True(t, errors.Is(err, ErrBadInput))

	_, err = Bisection(cubicExp, math.NaN(), 3, 1e-4, 0, nil)
	assert.True(t, errors.Is(err, ErrBadInput))
}

func TestNewton_Problems(t *testing.T) {
	cases := []struct {
		name  string
		f, df Func
		x0    float64
		root  float64
		iters int
	}{
		{"cubic-exp", cubicExp, cubicExpDF, 3.5, 3.208219804561943, 3},
		{"cubic", cubic, cubicDF, 0.2, 0.253967238809841, 3},
		{"xcos", xcos, xcosDF, 1.5, 1.57079632683948, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			out, err := Newton(tc.f, tc.df, tc.x0, 1e-4, 0, rec.observe)
			require.NoError(t, err)
			assert.Equal(t, RootFound, out.Kind)
			assert.InDelta(t, tc.root, out.Root, 1e-9)
			assert.Equal(t, tc.iters, out.Iterations)
			assertIndexed(t, rec.iters, tc.iters)
			assert.Equal(t, tc.x0, rec.iters[0].X)
			assert.Equal(t, out.Root, rec.iters[len(rec.iters)-1].XNext)
		})
	}
}

func TestNewton_SingularDerivative(t *testing.T) {
	f := Scalar(func(x float64) float64 { return x*x + 1 })
	df := Scalar(func(x float64) float64 { return 2 * x })

	rec := &recorder{}
	out, err := Newton(f, df, 0, 1e-4, 0, rec.observe)
	require.NoError(t, err)
	assert.Equal(t, SingularDerivative, out.Kind)
	assert.False(t, out.Converged())
	assert.Zero(t, out.Iterations)
	assert.Empty(t, rec.iters)
}

func TestNewton_SlowConvergenceKeepsAcceptedIterate(t *testing.T) {
	f := Scalar(func(x float64) float64 { return x*x - 2 })
	df := Scalar(func(x float64) float64 { return 2 * x })

	rec := &recorder{}
	out, err := Newton(f, df, 1, 1e-12, 3, rec.observe)
	require.NoError(t, err)
	assert.Equal(t, SlowConvergence, out.Kind)
	assert.Equal(t, 3, out.Iterations)
	assert.InDelta(t, 1.4142156862745099, out.Root, 1e-15)
	assertIndexed(t, rec.iters, 3)
}

func TestNewton_CycleHitsCap(t *testing.T) {
	// x^3 - 2x + 2 из x0 = 0 зацикливается между 0 и 1
	f := Scalar(func(x float64) float64 { return x*x*x - 2*x + 2 })
	df := Scalar(func(x float64) float64 { return 3*x*x - 2 })

	rec := &recorder{}
	out, err := Newton(f, df, 0, 1e-6, 0, rec.observe)
	require.NoError(t, err)
	assert.Equal(t, SlowConvergence, out.Kind)
	assert.Equal(t, DefaultMaxIter, out.Iterations)
	assert.Equal(t, 0.0, out.Root)
	assertIndexed(t, rec.iters, DefaultMaxIter)
}

func TestSecant_Problems(t *testing.T) {
	cases := []struct {
		name   string
		f      Func
		x0, x1 float64
		root   float64
		iters  int
	}{
		{"cubic-exp", cubicExp, 3, 4, 3.208219697395827, 4},
		{"cubic", cubic, 0.3, 0.2, 0.25396723880497796, 3},
		{"xcos", xcos, 1.5, 2, 1.570796282588922, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			out, err := Secant(tc.f, tc.x0, tc.x1, 1e-4, 0, rec.observe)
			require.NoError(t, err)
			assert.Equal(t, RootFound, out.Kind)
			assert.InDelta(t, tc.root, out.Root, 1e-9)
			assert.Equal(t, tc.iters, out.Iterations)
			assertIndexed(t, rec.iters, tc.iters)

			first := rec.iters[0]
			assert.Equal(t, tc.x0, first.XPrev)
			assert.Equal(t, tc.x1, first.X)
			for i := 1; i < len(rec.iters); i++ {
				assert.Equal(t, rec.iters[i-1].X, rec.iters[i].XPrev)
				assert.Equal(t, rec.iters[i-1].XNext, rec.iters[i].X)
			}
		})
	}
}

func TestSecant_Degenerate(t *testing.T) {
	out, err := Secant(Scalar(func(float64) float64 { return 5 }), 1, 2, 1e-4, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DegenerateSecant, out.Kind)
	assert.Equal(t, 1.0, out.A)
	assert.Equal(t, 2.0, out.B)
	assert.Zero(t, out.Iterations)
}

func TestSecant_SlowConvergence(t *testing.T) {
	rec := &recorder{}
	out, err := Secant(cubicExp, 3, 4, 1e-4, 2, rec.observe)
	require.NoError(t, err)
	assert.Equal(t, SlowConvergence, out.Kind)
	assert.Equal(t, 2, out.Iterations)
	assert.Equal(t, rec.iters[1].XNext, out.Root)
	assertIndexed(t, rec.iters, 2)
}

func TestSolvers_Idempotent(t *testing.T) {
	run := func() ([]Outcome, [][]Iter) {
		var outs []Outcome
		var traces [][]Iter
		for _, req := range []Request{
			{Method: MethodBisection, F: cubicExp, A: 3, B: 4, Tol: 1e-4},
			{Method: MethodNewton, F: cubicExp, DF: cubicExpDF, X0: 3.5, Tol: 1e-4},
			{Method: MethodSecant, F: cubicExp, X0: 3, X1: 4, Tol: 1e-4},
		} {
			rec := &recorder{}
			out, err := Run(req, rec.observe)
			require.NoError(t, err)
			outs = append(outs, out)
			traces = append(traces, rec.iters)
		}
		return outs, traces
	}

	outs1, traces1 := run()
	outs2, traces2 := run()
	assert.Equal(t, outs1, outs2)
	assert.Equal(t, traces1, traces2)
}

func TestObserver_Stop(t *testing.T) {
	calls := 0
	stopAt3 := func(it Iter) error {
		calls++
		if it.K == 3 {
			return ErrStopped
		}
		return nil
	}

	_, err := Bisection(cubicExp, 3, 4, 1e-4, 0, stopAt3)
	assert.ErrorIs(t, err, ErrStopped)
	assert.Equal(t, 3, calls)

	boom := errors.New("boom")
	_, err = Secant(cubicExp, 3, 4, 1e-4, 0, func(Iter) error { return boom })
	assert.ErrorIs(t, err, boom)
}

type failingFunc struct{ after int }

func (f *failingFunc) Eval(x float64) (float64, error) {
	if f.after == 0 {
		return 0, errors.New("domain error")
	}
	f.after--
	return x - 3.3, nil
}

func TestEvalErrorIsWrapped(t *testing.T) {
	_, err := Bisection(&failingFunc{after: 3}, 3, 4, 1e-4, 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "domain error")
	assert.Contains(t, err.Error(), "f(")
}

func TestRun_Validation(t *testing.T) {
	_, err := Run(Request{Method: MethodNewton, F: cubicExp, X0: 1}, nil)
	assert.ErrorIs(t, err, ErrBadInput)

	_, err = Run(Request{Method: "regula-falsi", F: cubicExp}, nil)
	assert.ErrorIs(t, err, ErrBadInput)

	_, err = Run(Request{Method: MethodSecant}, nil)
	assert.ErrorIs(t, err, ErrBadInput)
}

func TestParseMethod(t *testing.T) {
	for _, m := range Methods {
		got, err := ParseMethod(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMethod("brent")
	assert.ErrorIs(t, err, ErrBadInput)
}

func TestSolvers_NilFunc(t *testing.T) {
	_, err := Bisection(nil, 3, 4, 1e-4, 0, nil)
	assert.ErrorIs(t, err, ErrBadInput)

	_, err = Newton(nil, cubicExpDF, 3.5, 1e-4, 0, nil)
	assert.ErrorIs(t, err, ErrBadInput)

	_, err = Newton(cubicExp, nil, 3.5, 1e-4, 0, nil)
	assert.ErrorIs(t, err, ErrBadInput)

	_, err = Secant(nil, 3, 4, 1e-4, 0, nil)
	assert.ErrorIs(t, err, ErrBadInput)
}
