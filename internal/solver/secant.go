package solver

import (
	"fmt"
	"math"
)

// Secant — метод секущих по двум начальным точкам x0 (x_{k-1}) и x1 (x_k)
func Secant(
	f Func,
	x0, x1, tol float64,
	maxIter int,
	onIter Observer,
) (Outcome, error) {
	if f == nil {
		return Outcome{}, fmt.Errorf("%w: не задана функция", ErrBadInput)
	}
	if !finite(x0, x1, tol) {
		return Outcome{}, fmt.Errorf("%w: x0 = %g, x1 = %g", ErrBadInput, x0, x1)
	}
	maxIter = capOrDefault(maxIter)

	prev, curr := x0, x1
	for k := 1; k <= maxIter; k++ {
		fPrev, err := eval(f, prev)
		if err != nil {
			return Outcome{}, err
		}
		fCurr, err := eval(f, curr)
		if err != nil {
			return Outcome{}, err
		}

		if math.Abs(fCurr-fPrev) < Guard {
			return degenerate(DegenerateSecant, prev, curr, k-1), nil
		}

		next := curr - fCurr*(prev-curr)/(fPrev-fCurr)
		errAbs := math.Abs(next - curr)

		if err := onIter.emit(Iter{
			Method: MethodSecant,
			K:      k,
			XPrev:  prev,
			FXPrev: fPrev,
			X:      curr,
			FX:     fCurr,
			XNext:  next,
			Err:    errAbs,
		}); err != nil {
			return Outcome{}, err
		}

		if errAbs < tol {
			return rootFound(next, k), nil
		}
		prev, curr = curr, next
	}

	return slow(curr, maxIter), nil
}
