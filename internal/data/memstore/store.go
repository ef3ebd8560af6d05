// Package memstore keeps the three queue tables in memory and evaluates
// query expressions in Go. It backs DB_DRIVER=memory and service tests.
package memstore

import (
	"cmp"
	"errors"
	"slices"
	"sync"

	"github.com/target/mmk-queue-monitor/internal/domain/model"
)

var errMissingPush = errors.New("execution references an unknown push")

// Store holds pushes, executions and workers. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	pushes  map[int64]*model.PushRecord
	execs   map[int64]*model.ExecRecord
	workers map[int64]*model.WorkerRecord

	// One sequence per table, like the auto-increment columns.
	lastPushID   int64
	lastExecID   int64
	lastWorkerID int64
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		pushes:  make(map[int64]*model.PushRecord),
		execs:   make(map[int64]*model.ExecRecord),
		workers: make(map[int64]*model.WorkerRecord),
	}
}

// caller must hold s.mu
func assignID(seq *int64, id int64) int64 {
	if id == 0 {
		*seq++
		return *seq
	}
	*seq = max(*seq, id)
	return id
}

// AddPush stores a copy of p, assigning an id when p.ID is zero, and returns the id.
func (s *Store) AddPush(p model.PushRecord) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = assignID(&s.lastPushID, p.ID)
	s.pushes[p.ID] = &p
	return p.ID
}

// AddWorker stores a copy of w and returns its id.
func (s *Store) AddWorker(w model.WorkerRecord) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.ID = assignID(&s.lastWorkerID, w.ID)
	s.workers[w.ID] = &w
	return w.ID
}

// AddExec stores a copy of e and points the push's last_exec_id, and the
// worker's when set, at it the way the queue does when an attempt starts.
func (s *Store) AddExec(e model.ExecRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	push, ok := s.pushes[e.PushID]
	if !ok {
		return 0, errMissingPush
	}
	e.ID = assignID(&s.lastExecID, e.ID)
	s.execs[e.ID] = &e

	id := e.ID
	push.LastExecID = &id
	if e.WorkerID != nil {
		if w, ok := s.workers[*e.WorkerID]; ok {
			wid := e.ID
			w.LastExecID = &wid
		}
	}
	return e.ID, nil
}

// DeleteExec removes an execution row without touching references to it.
func (s *Store) DeleteExec(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.execs, id)
}

// Pushes returns the push repository view.
func (s *Store) Pushes() *PushRepo { return &PushRepo{s: s} }

// Execs returns the execution repository view.
func (s *Store) Execs() *ExecRepo { return &ExecRepo{s: s} }

// Workers returns the worker repository view.
func (s *Store) Workers() *WorkerRepo { return &WorkerRepo{s: s} }

// caller must hold s.mu
func (s *Store) pushState(p *model.PushRecord) model.PushState {
	st := model.PushState{Push: p}
	if p.LastExecID != nil {
		st.LastExec = s.execs[*p.LastExecID]
	}
	for _, e := range s.execs {
		if e.PushID == p.ID && e.Error != nil {
			st.HasFails = true
			break
		}
	}
	return st
}

func sortedByID[T any](m map[int64]*T, id func(*T) int64, desc bool) []*T {
	out := make([]*T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b *T) int {
		if desc {
			return cmp.Compare(id(b), id(a))
		}
		return cmp.Compare(id(a), id(b))
	})
	return out
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}
