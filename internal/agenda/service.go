package agenda

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"
)

// Service wraps the stores and the reminder engine and holds the use cases
// the hosts call.
type Service struct {
	tasks    TaskStore
	links    LinkStore
	reminder *ReminderEngine
	now      func() time.Time
	log      *log.Logger

	mu       sync.Mutex
	lastRank int64
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService builds a Service. notifier may be nil, in which case reminders
// are only returned to the caller.
func NewService(tasks TaskStore, links LinkStore, notifier Notifier, opts ...Option) *Service {
	s := &Service{tasks: tasks, links: links, now: time.Now, log: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.reminder = NewReminderEngine(tasks, notifier, s.log)
	return s
}

// ── Tasks ────────────────────────────────────────────────────────────────────

// AddTask creates a task ranked after every task this service has seen, so it
// sorts last in the manual view until moved.
func (s *Service) AddTask(ctx context.Context, in TaskInput) (*Task, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	rank, err := s.nextRank(ctx)
	if err != nil {
		return nil, err
	}
	t := &Task{
		Title:       in.Title,
		Description: in.Description,
		Due:         in.Due,
		Recurrence:  in.Recurrence,
		Folder:      in.Folder,
		Priority:    in.Priority,
		Rank:        rank,
		CreatedAt:   s.now(),
	}
	if err := s.tasks.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// nextRank issues "now" in unix milliseconds, bumped past the highest rank
// already issued or stored.
func (s *Service) nextRank(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRank == 0 {
		all, err := s.tasks.ListTasks(ctx)
		if err != nil {
			return 0, fmt.Errorf("list tasks: %w", err)
		}
		for _, t := range all {
			s.lastRank = max(s.lastRank, t.Rank)
		}
	}
	rank := max(s.now().UnixMilli(), s.lastRank+1)
	s.lastRank = rank
	return rank, nil
}

// EditTask rewrites the user-editable fields. Rank and the notification
// marker are left as they are, even when the due time changes.
func (s *Service) EditTask(ctx context.Context, id int64, in TaskInput) (*Task, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	t, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Title = in.Title
	t.Description = in.Description
	t.Due = in.Due
	t.Recurrence = in.Recurrence
	t.Folder = in.Folder
	t.Priority = in.Priority
	if err := s.tasks.UpdateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	return t, nil
}

func (s *Service) Task(ctx context.Context, id int64) (*Task, error) {
	return s.tasks.GetTask(ctx, id)
}

// Tasks returns the task list in display order.
func (s *Service) Tasks(ctx context.Context, strategy Strategy, includeCompleted bool) ([]*Task, error) {
	all, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	if !includeCompleted {
		all = slices.DeleteFunc(all, func(t *Task) bool { return t.Completed })
	}
	return SortedView(all, strategy), nil
}

func (s *Service) SetCompleted(ctx context.Context, id int64, completed bool) error {
	if _, err := s.tasks.GetTask(ctx, id); err != nil {
		return err
	}
	return s.tasks.SetCompleted(ctx, id, completed)
}

// ToggleCompleted flips the completed flag and returns the new value.
func (s *Service) ToggleCompleted(ctx context.Context, id int64) (bool, error) {
	t, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return false, err
	}
	if err := s.tasks.SetCompleted(ctx, id, !t.Completed); err != nil {
		return false, err
	}
	return !t.Completed, nil
}

func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	return s.tasks.DeleteTask(ctx, id)
}

// SwapRank exchanges the manual ranks of two tasks; see SwapRank.
func (s *Service) SwapRank(ctx context.Context, a, b int64) (bool, error) {
	return SwapRank(ctx, s.tasks, a, b)
}

// MoveUp swaps id with its predecessor in the manual view. Moving the first
// task up is refused and reports false.
func (s *Service) MoveUp(ctx context.Context, id int64) (bool, error) {
	return s.move(ctx, id, -1)
}

// MoveDown swaps id with its successor in the manual view. Moving the last
// task down is refused and reports false.
func (s *Service) MoveDown(ctx context.Context, id int64) (bool, error) {
	return s.move(ctx, id, +1)
}

func (s *Service) move(ctx context.Context, id int64, step int) (bool, error) {
	all, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return false, err
	}
	view := SortedView(all, Manual)
	pos := slices.IndexFunc(view, func(t *Task) bool { return t.ID == id })
	if pos < 0 {
		return false, nil
	}
	other := pos + step
	if other < 0 || other >= len(view) {
		return false, nil
	}
	return SwapRank(ctx, s.tasks, id, view[other].ID)
}

// CheckReminders evaluates every task against the current time and window.
// Tasks are visited in priority-first storage order.
func (s *Service) CheckReminders(ctx context.Context, window time.Duration) ([]NotificationEvent, error) {
	return s.reminder.Check(ctx, s.now(), window, s.tasks)
}

// MonthView lays out the incomplete tasks on a calendar month.
func (s *Service) MonthView(ctx context.Context, year int, month time.Month) (Month, error) {
	all, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return Month{}, err
	}
	return BuildMonth(year, month, all), nil
}

// Now exposes the service clock to hosts.
func (s *Service) Now() time.Time { return s.now() }

// ── Links ────────────────────────────────────────────────────────────────────

// AddLink stores a link. An invalid URL is still saved; hosts may warn
// using ValidURL.
func (s *Service) AddLink(ctx context.Context, name, rawURL, folder string) (*Link, error) {
	l := &Link{
		Name:      strings.TrimSpace(name),
		URL:       strings.TrimSpace(rawURL),
		Folder:    strings.TrimSpace(folder),
		CreatedAt: s.now(),
	}
	if l.Name == "" || l.URL == "" {
		return nil, ErrEmptyLink
	}
	if err := s.links.CreateLink(ctx, l); err != nil {
		return nil, fmt.Errorf("create link: %w", err)
	}
	return l, nil
}

func (s *Service) EditLink(ctx context.Context, id int64, name, rawURL, folder string) (*Link, error) {
	l, err := s.links.GetLink(ctx, id)
	if err != nil {
		return nil, err
	}
	l.Name = strings.TrimSpace(name)
	l.URL = strings.TrimSpace(rawURL)
	l.Folder = strings.TrimSpace(folder)
	if l.Name == "" || l.URL == "" {
		return nil, ErrEmptyLink
	}
	if err := s.links.UpdateLink(ctx, l); err != nil {
		return nil, fmt.Errorf("update link %d: %w", id, err)
	}
	return l, nil
}

func (s *Service) Link(ctx context.Context, id int64) (*Link, error) {
	return s.links.GetLink(ctx, id)
}

func (s *Service) Links(ctx context.Context) ([]*Link, error) {
	return s.links.ListLinks(ctx)
}

func (s *Service) DeleteLink(ctx context.Context, id int64) error {
	return s.links.DeleteLink(ctx, id)
}
