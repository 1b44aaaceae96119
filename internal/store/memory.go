package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/MihkelHunter/mkAgenda/internal/agenda"
)

// MemoryStore keeps tasks and links in maps. It returns copies, so callers
// never share state with the store, and follows the same ordering rules as
// SQLiteStore.
type MemoryStore struct {
	mu     sync.RWMutex
	tasks  map[int64]agenda.Task
	links  map[int64]agenda.Link
	nextID int64
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[int64]agenda.Task),
		links: make(map[int64]agenda.Link),
	}
}

// ── Tasks ────────────────────────────────────────────────────────────────────

func (m *MemoryStore) CreateTask(_ context.Context, t *agenda.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = m.nextID
	m.tasks[t.ID] = *t
	return nil
}

// ListTasks returns tasks in priority-first storage order.
func (m *MemoryStore) ListTasks(_ context.Context) ([]*agenda.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*agenda.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		t := t
		out = append(out, &t)
	}
	slices.SortFunc(out, func(a, b *agenda.Task) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		if c := a.Due.Compare(b.Due); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m *MemoryStore) GetTask(_ context.Context, id int64) (*agenda.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %d: %w", id, agenda.ErrNotFound)
	}
	return &t, nil
}

func (m *MemoryStore) UpdateTask(_ context.Context, t *agenda.Task) error {
	return m.updateTask(t.ID, func(cur *agenda.Task) {
		cur.Title = t.Title
		cur.Description = t.Description
		cur.Due = t.Due
		cur.Recurrence = t.Recurrence
		cur.Folder = t.Folder
		cur.Priority = t.Priority
	})
}

func (m *MemoryStore) SwapRanks(_ context.Context, a, b int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ta, okA := m.tasks[a]
	tb, okB := m.tasks[b]
	if !okA || !okB {
		return agenda.ErrNotFound
	}
	ta.Rank, tb.Rank = tb.Rank, ta.Rank
	m.tasks[a], m.tasks[b] = ta, tb
	return nil
}

func (m *MemoryStore) UpdateNotified(_ context.Context, id int64, marker agenda.Marker) error {
	return m.updateTask(id, func(cur *agenda.Task) { cur.Notified = marker })
}

func (m *MemoryStore) SetCompleted(_ context.Context, id int64, completed bool) error {
	return m.updateTask(id, func(cur *agenda.Task) { cur.Completed = completed })
}

func (m *MemoryStore) DeleteTask(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, id)
	return nil
}

func (m *MemoryStore) updateTask(id int64, fn func(*agenda.Task)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return agenda.ErrNotFound
	}
	fn(&t)
	m.tasks[id] = t
	return nil
}

// ── Links ────────────────────────────────────────────────────────────────────

func (m *MemoryStore) CreateLink(_ context.Context, l *agenda.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	l.ID = m.nextID
	m.links[l.ID] = *l
	return nil
}

// ListLinks returns links newest first.
func (m *MemoryStore) ListLinks(_ context.Context) ([]*agenda.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*agenda.Link, 0, len(m.links))
	for _, l := range m.links {
		l := l
		out = append(out, &l)
	}
	slices.SortFunc(out, func(a, b *agenda.Link) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (m *MemoryStore) GetLink(_ context.Context, id int64) (*agenda.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.links[id]
	if !ok {
		return nil, fmt.Errorf("link %d: %w", id, agenda.ErrNotFound)
	}
	return &l, nil
}

func (m *MemoryStore) UpdateLink(_ context.Context, l *agenda.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.links[l.ID]
	if !ok {
		return agenda.ErrNotFound
	}
	cur.Name, cur.URL, cur.Folder = l.Name, l.URL, l.Folder
	m.links[l.ID] = cur
	return nil
}

func (m *MemoryStore) DeleteLink(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.links, id)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
