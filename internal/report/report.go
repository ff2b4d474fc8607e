// Package report печатает трассу итераций: таблицей для терминала и в CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"rootfind/internal/solver"
)

// Header — заголовки столбцов для метода
func Header(m solver.Method) []string {
	switch m {
	case solver.MethodBisection:
		return []string{"k", "a", "b", "p", "f(p)", "|b-a|/2"}
	case solver.MethodNewton:
		return []string{"k", "x_k", "f(x_k)", "f'(x_k)", "x_k+1", "err"}
	case solver.MethodSecant:
		return []string{"k", "x_k-1", "x_k", "f(x_k)", "x_k+1", "err"}
	}
	return []string{"k", "x", "f(x)", "err"}
}

func row(it solver.Iter) []float64 {
	switch it.Method {
	case solver.MethodBisection:
		return []float64{it.A, it.B, it.X, it.FX, it.Err}
	case solver.MethodNewton:
		return []float64{it.X, it.FX, it.DFX, it.XNext, it.Err}
	case solver.MethodSecant:
		return []float64{it.XPrev, it.X, it.FX, it.XNext, it.Err}
	}
	return []float64{it.X, it.FX, it.Err}
}

// Table — наблюдатель, печатающий итерации в столбцы фиксированной ширины
type Table struct {
	w      io.Writer
	method solver.Method
	header bool
}

func NewTable(w io.Writer, m solver.Method) *Table {
	return &Table{w: w, method: m}
}

// Observe подходит как solver.Observer
func (t *Table) Observe(it solver.Iter) error {
	if !t.header {
		t.header = true
		if err := t.writeHeader(); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(t.w, "%-5d", it.K); err != nil {
		return err
	}
	for _, v := range row(it) {
		if _, err := fmt.Fprintf(t.w, " %-15.8f", v); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(t.w)
	return err
}

func (t *Table) writeHeader() error {
	h := Header(t.method)
	if _, err := fmt.Fprintf(t.w, "%-5s", h[0]); err != nil {
		return err
	}
	for _, c := range h[1:] {
		if _, err := fmt.Fprintf(t.w, " %-15s", c); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(t.w)
	return err
}

// WriteCSV — экспорт итераций одного метода в CSV
func WriteCSV(w io.Writer, m solver.Method, iters []solver.Iter) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header(m)); err != nil {
		return err
	}
	for _, it := range iters {
		rec := []string{strconv.Itoa(it.K)}
		for _, v := range row(it) {
			rec = append(rec, FormatFloat(v))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 16, 64)
}
