package solver

import (
	"fmt"
	"math"
)

// Bisection — метод половинного деления на отрезке [a, b].
// Критерий остановки |b-a|/2 < tol проверяется по отрезку до сужения.
// onIter вызывается на каждой итерации; если вернёт ErrStopped — метод прерывается.
func Bisection(
	f Func,
	a, b, tol float64,
	maxIter int,
	onIter Observer,
) (Outcome, error) {
	if f == nil {
		return Outcome{}, fmt.Errorf("%w: не задана функция", ErrBadInput)
	}
	if !finite(a, b, tol) || a == b {
		return Outcome{}, fmt.Errorf("%w: отрезок [%g, %g]", ErrBadInput, a, b)
	}
	maxIter = capOrDefault(maxIter)

	fa, err := eval(f, a)
	if err != nil {
		return Outcome{}, err
	}
	fb, err := eval(f, b)
	if err != nil {
		return Outcome{}, err
	}
	if fa*fb > 0 {
		return Outcome{Kind: NoSignChange, A: a, B: b}, nil
	}

	var p float64
	for k := 1; k <= maxIter; k++ {
		p = (a + b) / 2
		fp, err := eval(f, p)
		if err != nil {
			return Outcome{}, err
		}

		half := math.Abs(b-a) / 2
		if err := onIter.emit(Iter{
			Method: MethodBisection,
			K:      k,
			A:      a,
			B:      b,
			X:      p,
			FX:     fp,
			Err:    half,
		}); err != nil {
			return Outcome{}, err
		}

		if half < tol {
			return rootFound(p, k), nil
		}
		if fp == 0 {
			return Outcome{Kind: ExactRoot, Root: p, Iterations: k}, nil
		}

		if fa*fp < 0 {
			b = p
		} else {
			a = p
			fa = fp
		}
	}

	return slow(p, maxIter), nil
}
