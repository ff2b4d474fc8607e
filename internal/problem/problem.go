package problem

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rootfind/internal/solver"
)

//go:embed problems.yaml
var builtin []byte

// Bracket — отрезок для бисекции
type Bracket struct {
	A float64 `yaml:"a" json:"a"`
	B float64 `yaml:"b" json:"b"`
}

// Guess — начальное приближение для метода Ньютона
type Guess struct {
	X0 float64 `yaml:"x0" json:"x0"`
}

// Pair — две начальные точки метода секущих
type Pair struct {
	X0 float64 `yaml:"x0" json:"x0"`
	X1 float64 `yaml:"x1" json:"x1"`
}

// Problem — одна задача: функция, производная и параметры каждого метода.
// Метод без параметров не запускается.
type Problem struct {
	Name      string   `yaml:"name" json:"name"`
	F         string   `yaml:"f" json:"f"`
	DF        string   `yaml:"df,omitempty" json:"df,omitempty"`
	Tol       float64  `yaml:"tol,omitempty" json:"tol,omitempty"`
	MaxIter   int      `yaml:"max_iter,omitempty" json:"maxIter,omitempty"`
	Bisection *Bracket `yaml:"bisection,omitempty" json:"bisection,omitempty"`
	Newton    *Guess   `yaml:"newton,omitempty" json:"newton,omitempty"`
	Secant    *Pair    `yaml:"secant,omitempty" json:"secant,omitempty"`
}

// Catalog — набор задач
type Catalog []Problem

var ErrNotFound = errors.New("problem: not found")

// Builtin возвращает встроенный каталог
func Builtin() Catalog {
	c, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("problem: встроенный каталог: %v", err))
	}
	return c
}

// Load читает каталог из YAML-файла; пустой путь — встроенный каталог
func Load(path string) (Catalog, error) {
	if path == "" {
		return Builtin(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse разбирает и проверяет каталог
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("problem: %w", err)
	}
	seen := map[string]bool{}
	for i, p := range c {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("problem #%d: %w", i+1, err)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("problem: повторяется имя %q", p.Name)
		}
		seen[p.Name] = true
	}
	return c, nil
}

// Get ищет задачу по имени
func (c Catalog) Get(name string) (Problem, error) {
	for _, p := range c {
		if p.Name == name {
			return p, nil
		}
	}
	return Problem{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Validate проверяет, что задача может быть запущена
func (p Problem) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: пустое имя", solver.ErrBadInput)
	}
	if p.F == "" {
		return fmt.Errorf("%w: %s: не задана f", solver.ErrBadInput, p.Name)
	}
	if p.Bisection == nil && p.Newton == nil && p.Secant == nil {
		return fmt.Errorf("%w: %s: не задан ни один метод", solver.ErrBadInput, p.Name)
	}
	if p.Newton != nil && p.DF == "" {
		return fmt.Errorf("%w: %s: для метода Ньютона нужна df", solver.ErrBadInput, p.Name)
	}
	if p.Bisection != nil && p.Bisection.A == p.Bisection.B {
		return fmt.Errorf("%w: %s: вырожденный отрезок", solver.ErrBadInput, p.Name)
	}
	return nil
}

// Methods — методы, для которых заданы параметры
func (p Problem) Methods() []solver.Method {
	var ms []solver.Method
	if p.Bisection != nil {
		ms = append(ms, solver.MethodBisection)
	}
	if p.Newton != nil {
		ms = append(ms, solver.MethodNewton)
	}
	if p.Secant != nil {
		ms = append(ms, solver.MethodSecant)
	}
	return ms
}

// Request собирает запрос решателю для метода m
func (p Problem) Request(m solver.Method) (solver.Request, error) {
	f, err := solver.NewExprFunc(p.F)
	if err != nil {
		return solver.Request{}, fmt.Errorf("%s: f: %w", p.Name, err)
	}
	req := solver.Request{Method: m, F: f, Tol: p.Tol, MaxIter: p.MaxIter}
	if req.Tol <= 0 {
		req.Tol = solver.DefaultTol
	}

	switch m {
	case solver.MethodBisection:
		if p.Bisection == nil {
			return solver.Request{}, fmt.Errorf("%w: %s: нет отрезка", solver.ErrBadInput, p.Name)
		}
		req.A, req.B = p.Bisection.A, p.Bisection.B
	case solver.MethodNewton:
		if p.Newton == nil {
			return solver.Request{}, fmt.Errorf("%w: %s: нет x0", solver.ErrBadInput, p.Name)
		}
		if req.DF, err = solver.NewExprFunc(p.DF); err != nil {
			return solver.Request{}, fmt.Errorf("%s: df: %w", p.Name, err)
		}
		req.X0 = p.Newton.X0
	case solver.MethodSecant:
		if p.Secant == nil {
			return solver.Request{}, fmt.Errorf("%w: %s: нет начальных точек", solver.ErrBadInput, p.Name)
		}
		req.X0, req.X1 = p.Secant.X0, p.Secant.X1
	default:
		return solver.Request{}, fmt.Errorf("%w: неизвестный метод %q", solver.ErrBadInput, m)
	}
	return req, nil
}

// Result — итог одного метода с трассой итераций
type Result struct {
	Problem string         `json:"problem"`
	Method  solver.Method  `json:"method"`
	Outcome solver.Outcome `json:"outcome"`
	Trace   []solver.Iter  `json:"trace"`
}

// Solve запускает все заданные методы по очереди.
// observe (может быть nil) получает каждую итерацию вместе с методом.
func (p Problem) Solve(observe func(solver.Method) solver.Observer) ([]Result, error) {
	var results []Result
	for _, m := range p.Methods() {
		req, err := p.Request(m)
		if err != nil {
			return results, err
		}

		res := Result{Problem: p.Name, Method: m}
		var next solver.Observer
		if observe != nil {
			next = observe(m)
		}
		out, err := solver.Run(req, func(it solver.Iter) error {
			res.Trace = append(res.Trace, it)
			if next != nil {
				return next(it)
			}
			return nil
		})
		if err != nil {
			return results, fmt.Errorf("%s/%s: %w", p.Name, m, err)
		}
		res.Outcome = out
		results = append(results, res)
	}
	return results, nil
}
