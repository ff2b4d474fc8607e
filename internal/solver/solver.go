package solver

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultMaxIter — предел итераций, если вызывающий не задал свой
	DefaultMaxIter = 50
	// DefaultTol — абсолютная погрешность по умолчанию
	DefaultTol = 1e-4
	// Guard — порог, ниже которого знаменатель считается нулевым
	Guard = 1e-10
)

// Method — название метода
type Method string

const (
	MethodBisection Method = "bisection"
	MethodNewton    Method = "newton"
	MethodSecant    Method = "secant"
)

// Methods — все поддерживаемые методы в порядке вывода
var Methods = []Method{MethodBisection, MethodNewton, MethodSecant}

// ParseMethod разбирает название метода
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodBisection, MethodNewton, MethodSecant:
		return m, nil
	}
	return "", fmt.Errorf("%w: неизвестный метод %q", ErrBadInput, s)
}

var (
	// ErrStopped — наблюдатель попросил прервать вычисление
	ErrStopped = errors.New("solver: stopped by callback")
	// ErrBadInput — некорректные аргументы вызова
	ErrBadInput = errors.New("solver: bad input")
)

// Iter — одна итерация любого из методов.
// Для бисекции заполняются A, B (отрезок до сужения), X = середина, FX = f(X).
// Для Ньютона X = x_k, DFX = f'(x_k), XNext = x_{k+1}.
// Для секущих XPrev = x_{k-1}, X = x_k, XNext = x_{k+1}.
// Err — величина, сравниваемая с tol.
type Iter struct {
	Method Method  `json:"method"`
	K      int     `json:"k"`
	A      float64 `json:"a"`
	B      float64 `json:"b"`
	XPrev  float64 `json:"xprev"`
	FXPrev float64 `json:"fxprev"`
	X      float64 `json:"x"`
	FX     float64 `json:"fx"`
	DFX    float64 `json:"dfx"`
	XNext  float64 `json:"xnext"`
	Err    float64 `json:"err"`
}

// Observer получает каждую итерацию; ошибка прерывает решатель
type Observer func(Iter) error

func (o Observer) emit(it Iter) error {
	if o == nil {
		return nil
	}
	if err := o(it); err != nil {
		if errors.Is(err, ErrStopped) {
			return ErrStopped
		}
		return err
	}
	return nil
}

func capOrDefault(maxIter int) int {
	if maxIter <= 0 {
		return DefaultMaxIter
	}
	return maxIter
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func eval(f Func, x float64) (float64, error) {
	y, err := f.Eval(x)
	if err != nil {
		return math.NaN(), fmt.Errorf("f(%g): %w", x, err)
	}
	return y, nil
}

// Request — описание одной задачи для Run
type Request struct {
	Method  Method
	F       Func
	DF      Func
	A, B    float64
	X0, X1  float64
	Tol     float64
	MaxIter int
}

// Run выбирает метод по req.Method
func Run(req Request, onIter Observer) (Outcome, error) {
	if req.F == nil {
		return Outcome{}, fmt.Errorf("%w: не задана функция", ErrBadInput)
	}
	switch req.Method {
	case MethodBisection:
		return Bisection(req.F, req.A, req.B, req.Tol, req.MaxIter, onIter)
	case MethodNewton:
		if req.DF == nil {
			return Outcome{}, fmt.Errorf("%w: для метода Ньютона нужна производная", ErrBadInput)
		}
		return Newton(req.F, req.DF, req.X0, req.Tol, req.MaxIter, onIter)
	case MethodSecant:
		return Secant(req.F, req.X0, req.X1, req.Tol, req.MaxIter, onIter)
	}
	return Outcome{}, fmt.Errorf("%w: неизвестный метод %q", ErrBadInput, req.Method)
}
