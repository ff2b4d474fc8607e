package solver

import "fmt"

// Kind — вид результата решателя
type Kind int

const (
	KindUnknown Kind = iota
	RootFound
	ExactRoot
	NoSignChange
	SingularDerivative
	DegenerateSecant
	SlowConvergence
)

var kindNames = map[Kind]string{
	KindUnknown:        "unknown",
	RootFound:          "root_found",
	ExactRoot:          "exact_root",
	NoSignChange:       "no_sign_change",
	SingularDerivative: "singular_derivative",
	DegenerateSecant:   "degenerate_secant",
	SlowConvergence:    "slow_convergence",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("неизвестный вид результата %q", b)
}

// Outcome — итог запуска решателя.
//
// Root — найденный корень (RootFound, ExactRoot) или последнее принятое
// приближение (SlowConvergence). A и B — исходный отрезок для NoSignChange,
// точка вырождения для SingularDerivative (A) и пара точек для DegenerateSecant.
// Iterations всегда равно числу переданных наблюдателю итераций.
type Outcome struct {
	Kind       Kind    `json:"kind"`
	Root       float64 `json:"root"`
	Iterations int     `json:"iterations"`
	A          float64 `json:"a"`
	B          float64 `json:"b"`
}

// Converged — true, если корень найден с заданной точностью или точно
func (o Outcome) Converged() bool {
	return o.Kind == RootFound || o.Kind == ExactRoot
}

func (o Outcome) String() string {
	switch o.Kind {
	case RootFound:
		return fmt.Sprintf("корень найден: %.6f за %d итераций", o.Root, o.Iterations)
	case ExactRoot:
		return fmt.Sprintf("точный корень: %.6f за %d итераций", o.Root, o.Iterations)
	case NoSignChange:
		return fmt.Sprintf("отрезок [%g, %g] не содержит корня (нет смены знака)", o.A, o.B)
	case SingularDerivative:
		return fmt.Sprintf("деление на ноль: производная близка к нулю в x = %g", o.A)
	case DegenerateSecant:
		return fmt.Sprintf("деление на ноль: f(%g) и f(%g) почти равны", o.A, o.B)
	case SlowConvergence:
		return fmt.Sprintf("медленная сходимость, последнее приближение: %.6f", o.Root)
	}
	return o.Kind.String()
}

func rootFound(x float64, k int) Outcome {
	return Outcome{Kind: RootFound, Root: x, Iterations: k}
}

func slow(x float64, k int) Outcome {
	return Outcome{Kind: SlowConvergence, Root: x, Iterations: k}
}

func degenerate(kind Kind, a, b float64, k int) Outcome {
	return Outcome{Kind: kind, Iterations: k, A: a, B: b}
}
