package server

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"rootfind/internal/solver"
	"rootfind/internal/sse"
)

// параметры запуска метода
type RunParams struct {
	Method  string  `json:"method"`
	Problem string  `json:"problem,omitempty"` // имя задачи из каталога вместо func/deriv/a/b/x0/x1
	Func    string  `json:"func"`
	Deriv   string  `json:"deriv,omitempty"`
	A       float64 `json:"a"`
	B       float64 `json:"b"`
	X0      float64 `json:"x0"`
	X1      float64 `json:"x1"`
	Tol     float64 `json:"tol"`
	MaxIter int     `json:"maxIter"`
}

// состояние одного запуска
type RunState struct {
	ID        string
	Method    solver.Method
	Params    RunParams
	CreatedAt time.Time
	Cancel    context.CancelFunc

	mu      sync.Mutex
	iters   []solver.Iter
	outcome *solver.Outcome
	err     string
	done    bool

	events []string // закодированные SSE-события в порядке публикации
	final  bool     // done, error или stopped уже опубликовано
}

// RunView — снимок состояния для ответа /result
type RunView struct {
	ID      string          `json:"id"`
	Method  solver.Method   `json:"method"`
	Params  RunParams       `json:"params"`
	Done    bool            `json:"done"`
	Err     string          `json:"err,omitempty"`
	Outcome *solver.Outcome `json:"outcome,omitempty"`
	Message string          `json:"message,omitempty"`
	Iters   []solver.Iter   `json:"iters"`
}

func (rs *RunState) addIter(it solver.Iter) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.iters = append(rs.iters, it)
}

func (rs *RunState) finish(out solver.Outcome) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.outcome = &out
	rs.done = true
}

func (rs *RunState) fail(msg string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.err = msg
	rs.done = true
}

// record сохраняет событие и рассылает его под тем же замком, что и subscribe:
// подписчик получает каждое событие ровно один раз, из истории или из канала
func (rs *RunState) record(hub *sse.Hub, msg string, final bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.events = append(rs.events, msg)
	if final {
		rs.final = true
	}
	hub.Publish(rs.ID, msg)
}

// subscribe возвращает уже опубликованные события и канал для последующих
func (rs *RunState) subscribe(hub *sse.Hub) ([]string, bool, <-chan string, func()) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	ch, cancel := hub.Subscribe(rs.ID)
	return append([]string(nil), rs.events...), rs.final, ch, cancel
}

func (rs *RunState) finished() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.final
}

func (rs *RunState) view() RunView {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	v := RunView{
		ID:      rs.ID,
		Method:  rs.Method,
		Params:  rs.Params,
		Done:    rs.done,
		Err:     rs.err,
		Outcome: rs.outcome,
		Iters:   append([]solver.Iter(nil), rs.iters...),
	}
	if rs.outcome != nil {
		v.Message = rs.outcome.String()
	}
	return v
}

// runStore хранит запуски ограниченное время
type runStore struct {
	c *cache.Cache
}

func newRunStore(ttl time.Duration) *runStore {
	return &runStore{c: cache.New(ttl, ttl)}
}

func (s *runStore) save(rs *RunState) {
	s.c.Set(rs.ID, rs, cache.DefaultExpiration)
}

func (s *runStore) get(id string) *RunState {
	v, ok := s.c.Get(id)
	if !ok {
		return nil
	}
	return v.(*RunState)
}
