package solver

import (
	"fmt"
	"math"
)

// Newton — метод Ньютона-Рафсона из начального приближения x0.
// При |f'(x_k)| < Guard возвращает SingularDerivative без частичного результата.
func Newton(
	f, df Func,
	x0, tol float64,
	maxIter int,
	onIter Observer,
) (Outcome, error) {
	if f == nil || df == nil {
		return Outcome{}, fmt.Errorf("%w: не заданы функция или производная", ErrBadInput)
	}
	if !finite(x0, tol) {
		return Outcome{}, fmt.Errorf("%w: x0 = %g", ErrBadInput, x0)
	}
	maxIter = capOrDefault(maxIter)

	x := x0
	for k := 1; k <= maxIter; k++ {
		fx, err := eval(f, x)
		if err != nil {
			return Outcome{}, err
		}
		dfx, err := df.Eval(x)
		if err != nil {
			return Outcome{}, fmt.Errorf("f'(%g): %w", x, err)
		}

		if math.Abs(dfx) < Guard {
			return degenerate(SingularDerivative, x, 0, k-1), nil
		}

		next := x - fx/dfx
		errAbs := math.Abs(next - x)

		if err := onIter.emit(Iter{
			Method: MethodNewton,
			K:      k,
			X:      x,
			FX:     fx,
			DFX:    dfx,
			XNext:  next,
			Err:    errAbs,
		}); err != nil {
			return Outcome{}, err
		}

		if errAbs < tol {
			return rootFound(next, k), nil
		}
		x = next
	}

	return slow(x, maxIter), nil
}
