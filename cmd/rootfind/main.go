// Команда rootfind решает задачи каталога всеми заданными методами
// и печатает таблицы итераций и итог каждого метода.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"rootfind/internal/problem"
	"rootfind/internal/report"
	"rootfind/internal/solver"
)

type options struct {
	problems string
	only     string
	format   string
	tol      float64
	maxIter  int
}

func main() {
	var o options
	flag.StringVar(&o.problems, "problems", "", "YAML-каталог задач (по умолчанию встроенный)")
	flag.StringVar(&o.only, "only", "", "решить только задачу с этим именем")
	flag.StringVar(&o.format, "format", "table", "формат вывода: table | csv | json")
	flag.Float64Var(&o.tol, "tol", 0, "переопределить погрешность всех задач")
	flag.IntVar(&o.maxIter, "maxiter", 0, "переопределить предел итераций всех задач")
	flag.Parse()

	if err := run(o, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "rootfind:", err)
		os.Exit(1)
	}
}

func run(o options, w io.Writer) error {
	catalog, err := problem.Load(o.problems)
	if err != nil {
		return err
	}
	if o.only != "" {
		p, err := catalog.Get(o.only)
		if err != nil {
			return err
		}
		catalog = problem.Catalog{p}
	}

	var all []problem.Result
	for _, p := range catalog {
		if o.tol > 0 {
			p.Tol = o.tol
		}
		if o.maxIter > 0 {
			p.MaxIter = o.maxIter
		}

		switch o.format {
		case "table":
			if err := printTables(w, p); err != nil {
				return err
			}
		case "csv":
			results, err := p.Solve(nil)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Fprintf(w, "# %s %s: %s\n", r.Problem, r.Method, r.Outcome)
				if err := report.WriteCSV(w, r.Method, r.Trace); err != nil {
					return err
				}
			}
		case "json":
			results, err := p.Solve(nil)
			if err != nil {
				return err
			}
			all = append(all, results...)
		default:
			return fmt.Errorf("неизвестный формат %q", o.format)
		}
	}

	if o.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(all)
	}
	return nil
}

func printTables(w io.Writer, p problem.Problem) error {
	fmt.Fprintf(w, "\n--- %s: f(x) = %s ---\n", p.Name, p.F)

	for _, m := range p.Methods() {
		req, err := p.Request(m)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "\n=== %s ===\n", m)
		out, err := solver.Run(req, report.NewTable(w, m).Observe)
		if err != nil {
			return fmt.Errorf("%s/%s: %w", p.Name, m, err)
		}
		fmt.Fprintln(w, out)
	}
	return nil
}
