package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"rootfind/internal/problem"
	"rootfind/internal/report"
	"rootfind/internal/solver"
)

// число точек графика функции
const plotPoints = 400

// StartRun запускает новый поиск корня
func (s *Server) StartRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "только POST", http.StatusMethodNotAllowed)
		return
	}
	if !s.limiter.Allow() {
		http.Error(w, "слишком много запусков, повторите позже", http.StatusTooManyRequests)
		return
	}

	var p RunParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "ошибка JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	req, err := s.buildRequest(p)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, problem.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	// предварительно считаем значения функции для графика
	lo, hi := plotRange(req)
	xs := make([]float64, plotPoints)
	ys := make([]*float64, plotPoints)
	h := (hi - lo) / float64(plotPoints-1)
	for i := 0; i < plotPoints; i++ {
		x := lo + float64(i)*h
		xs[i] = x
		if y, err := req.F.Eval(x); err == nil && !math.IsNaN(y) && !math.IsInf(y, 0) {
			ys[i] = &y
		}
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	rs := &RunState{
		ID:        id,
		Method:    req.Method,
		Params:    p,
		CreatedAt: time.Now(),
		Cancel:    cancel,
	}
	s.runs.save(rs)
	s.metrics.Active.Inc()

	// асинхронный запуск решателя
	go s.run(ctx, rs, req)

	resp := map[string]any{
		"id":     id,
		"method": req.Method,
		"xs":     xs,
		"ys":     ys,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) run(ctx context.Context, rs *RunState, req solver.Request) {
	defer s.metrics.Active.Dec()
	defer rs.Cancel()

	log := s.log.With("id", rs.ID, "method", req.Method)
	log.Info("run started")

	// стартовое событие
	s.publish(rs, map[string]any{
		"type":   "start",
		"id":     rs.ID,
		"method": req.Method,
	}, false)

	onIter := func(it solver.Iter) error {
		select {
		case <-ctx.Done():
			return solver.ErrStopped
		default:
		}

		rs.addIter(it)
		s.publish(rs, map[string]any{
			"type": "iter",
			"iter": it,
		}, false)
		return nil
	}

	out, err := solver.Run(req, onIter)
	if err != nil {
		if errors.Is(err, solver.ErrStopped) {
			s.metrics.Fail(req.Method, "stopped")
			rs.fail("остановлено")
			s.publish(rs, map[string]any{"type": "stopped"}, true)
			log.Info("run stopped")
			return
		}

		msg := "ошибка при вычислении: " + err.Error()
		s.metrics.Fail(req.Method, "error")
		rs.fail(msg)
		s.publish(rs, map[string]any{
			"type": "error",
			"err":  msg,
		}, true)
		log.Warn("run failed", "err", err)
		return
	}

	s.metrics.Observe(req.Method, out)
	rs.finish(out)
	s.publish(rs, map[string]any{
		"type":    "done",
		"outcome": out,
		"message": out.String(),
	}, true)
	log.Info("run finished", "outcome", out.Kind, "root", out.Root, "iterations", out.Iterations)
}

func (s *Server) publish(rs *RunState, payload map[string]any, final bool) {
	msg, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("event dropped", "id", rs.ID, "type", payload["type"], "err", err)
		return
	}
	rs.record(s.hub, string(msg), final)
}

// buildRequest собирает запрос решателю из параметров или из задачи каталога
func (s *Server) buildRequest(p RunParams) (solver.Request, error) {
	m, err := solver.ParseMethod(p.Method)
	if err != nil {
		return solver.Request{}, err
	}

	var req solver.Request
	if p.Problem != "" {
		prob, err := s.catalog.Get(p.Problem)
		if err != nil {
			return solver.Request{}, err
		}
		// значения задачи важнее настроек сервера, настройки — важнее встроенных
		if prob.Tol <= 0 {
			prob.Tol = s.cfg.Solver.Tol
		}
		if prob.MaxIter <= 0 {
			prob.MaxIter = s.cfg.Solver.MaxIter
		}
		if req, err = prob.Request(m); err != nil {
			return solver.Request{}, err
		}
	} else {
		if req.F, err = solver.NewExprFunc(p.Func); err != nil {
			return solver.Request{}, fmt.Errorf("ошибка в выражении функции: %w", err)
		}
		if m == solver.MethodNewton {
			if p.Deriv == "" {
				return solver.Request{}, errors.New("для метода Ньютона требуется производная")
			}
			if req.DF, err = solver.NewExprFunc(p.Deriv); err != nil {
				return solver.Request{}, fmt.Errorf("ошибка в выражении производной: %w", err)
			}
		}
		req.Method = m
		req.A, req.B = p.A, p.B
		req.X0, req.X1 = p.X0, p.X1
		req.Tol = s.cfg.Solver.Tol
		req.MaxIter = s.cfg.Solver.MaxIter
	}

	if p.Tol > 0 {
		req.Tol = p.Tol
	}
	if p.MaxIter > 0 {
		req.MaxIter = p.MaxIter
	}

	switch m {
	case solver.MethodBisection:
		if !(req.A < req.B) {
			return solver.Request{}, errors.New("требуется a < b")
		}
	case solver.MethodSecant:
		if req.X0 == req.X1 {
			return solver.Request{}, errors.New("требуются различные x0 и x1")
		}
	}
	return req, nil
}

// plotRange — отрезок, на котором строится график
func plotRange(req solver.Request) (float64, float64) {
	switch req.Method {
	case solver.MethodBisection:
		return req.A, req.B
	case solver.MethodSecant:
		lo, hi := math.Min(req.X0, req.X1), math.Max(req.X0, req.X1)
		pad := (hi - lo) / 2
		return lo - pad, hi + pad
	}
	return req.X0 - 1, req.X0 + 1
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) *RunState {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "требуется id", http.StatusBadRequest)
		return nil
	}
	rs := s.runs.get(id)
	if rs == nil {
		http.Error(w, "неизвестный id", http.StatusNotFound)
		return nil
	}
	return rs
}

// StopRun — прерывание запуска
func (s *Server) StopRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "только POST", http.StatusMethodNotAllowed)
		return
	}
	rs := s.lookup(w, r)
	if rs == nil {
		return
	}

	if rs.Cancel != nil {
		rs.Cancel()
	}

	w.WriteHeader(http.StatusNoContent)
}

// Result — текущее состояние запуска и его итерации
func (s *Server) Result(w http.ResponseWriter, r *http.Request) {
	rs := s.lookup(w, r)
	if rs == nil {
		return
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(rs.view()); err != nil {
		s.log.Warn("encode result", "id", rs.ID, "err", err)
		http.Error(w, "ошибка кодирования результата", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

// ExportCSV — экспорт итераций в CSV
func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	rs := s.lookup(w, r)
	if rs == nil {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=iterations_"+rs.ID+".csv")

	v := rs.view()
	if err := report.WriteCSV(w, v.Method, v.Iters); err != nil {
		s.log.Warn("export csv", "id", rs.ID, "err", err)
	}
}

// Problems — встроенный или загруженный каталог задач
func (s *Server) Problems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "только GET", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.catalog)
}

// Stream — SSE-стрим итераций: сначала уже опубликованные события запуска,
// затем новые; поток закрывается после done, error или stopped
func (s *Server) Stream(w http.ResponseWriter, r *http.Request) {
	rs := s.lookup(w, r)
	if rs == nil {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	past, final, ch, cancel := rs.subscribe(s.hub)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for _, msg := range past {
		writeEvent(w, msg)
	}
	flusher.Flush()
	if final {
		return
	}

	ctx := r.Context()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			writeEvent(w, msg)
			if rs.finished() {
				// последнее событие уже в канале: дочитываем буфер и закрываем поток
				for {
					select {
					case msg := <-ch:
						writeEvent(w, msg)
					default:
						flusher.Flush()
						return
					}
				}
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w io.Writer, msg string) {
	fmt.Fprintf(w, "event: msg\n")
	fmt.Fprintf(w, "data: %s\n\n", msg)
}
