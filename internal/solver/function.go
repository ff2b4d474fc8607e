package solver

import (
	"fmt"
	"math"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/spf13/cast"
)

// Func — интерфейс для абстрактной функции f(x)
type Func interface {
	Eval(x float64) (float64, error)
}

// Scalar — обычная функция Go как Func
type Scalar func(float64) float64

func (s Scalar) Eval(x float64) (float64, error) {
	return s(x), nil
}

// exprFunc — реализация Func на основе govaluate
type exprFunc struct {
	src  string
	expr *govaluate.EvaluableExpression
}

func unary(fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("ожидался 1 аргумент, получено %d", len(args))
		}
		v, err := toFloat(args[0])
		if err != nil {
			return nil, err
		}
		return fn(v), nil
	}
}

var exprFuncs = map[string]govaluate.ExpressionFunction{
	"sin":  unary(math.Sin),
	"cos":  unary(math.Cos),
	"tan":  unary(math.Tan),
	"exp":  unary(math.Exp),
	"log":  unary(math.Log),
	"sqrt": unary(math.Sqrt),
	"abs":  unary(math.Abs),
	"pow": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("pow: ожидалось 2 аргумента, получено %d", len(args))
		}
		base, err := toFloat(args[0])
		if err != nil {
			return nil, err
		}
		exp, err := toFloat(args[1])
		if err != nil {
			return nil, err
		}
		return math.Pow(base, exp), nil
	},
}

// NewExprFunc создаёт вычислимую функцию по строке f(x).
// Степень записывается как x**3, доступны константы e и pi.
//
// Унарный минус связывает сильнее степени: -x**2 означает (-x)**2,
// поэтому пишите -(x**2). Десятичная запятая (0,8) допускается только вне
// аргументов функций: внутри pow(2,3) запятая разделяет аргументы.
func NewExprFunc(expr string) (Func, error) {
	// нормализуем запятые в десятичной записи
	src := normalizeDecimalComma(strings.TrimSpace(expr))
	if src == "" {
		return nil, fmt.Errorf("%w: пустое выражение", ErrBadInput)
	}

	parsed, err := govaluate.NewEvaluableExpressionWithFunctions(src, exprFuncs)
	if err != nil {
		return nil, fmt.Errorf("разбор %q: %w", expr, err)
	}
	for _, v := range parsed.Vars() {
		switch v {
		case "x", "e", "pi":
		default:
			return nil, fmt.Errorf("%w: неизвестная переменная %q в %q", ErrBadInput, v, expr)
		}
	}

	return &exprFunc{src: src, expr: parsed}, nil
}

// Eval не изменяет общее состояние, поэтому одну функцию можно вызывать из разных горутин
func (f *exprFunc) Eval(x float64) (float64, error) {
	v, err := f.expr.Evaluate(map[string]interface{}{
		"x":  x,
		"e":  math.E,
		"pi": math.Pi,
	})
	if err != nil {
		return math.NaN(), err
	}
	y, err := toFloat(v)
	if err != nil {
		return math.NaN(), fmt.Errorf("выражение не вернуло число: %w", err)
	}
	return y, nil
}

func (f *exprFunc) String() string {
	return f.src
}

// normalizeDecimalComma заменяет запятую между цифрами на точку,
// если ближайшая открытая скобка не является вызовом функции
func normalizeDecimalComma(s string) string {
	b := []byte(s)
	var calls []bool // для каждой открытой скобки: это вызов функции
	for i, c := range b {
		switch {
		case c == '(':
			calls = append(calls, isIdentByte(lastNonSpace(b[:i])))
		case c == ')':
			if len(calls) > 0 {
				calls = calls[:len(calls)-1]
			}
		case c == ',':
			inCall := len(calls) > 0 && calls[len(calls)-1]
			if !inCall && i > 0 && i+1 < len(b) && isDigit(b[i-1]) && isDigit(b[i+1]) {
				b[i] = '.'
			}
		}
	}
	return string(b)
}

func lastNonSpace(b []byte) byte {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != ' ' && b[i] != '\t' {
			return b[i]
		}
	}
	return 0
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentByte(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func toFloat(v interface{}) (float64, error) {
	if b, ok := v.(bool); ok {
		return math.NaN(), fmt.Errorf("логическое значение %v", b)
	}
	return cast.ToFloat64E(v)
}
