// Package agenda defines the core domain model: tasks with due times,
// recurrence and manual ordering, bookmarked links, the ordering policy and
// the reminder engine. Storage and notification delivery are collaborators
// behind the TaskStore, LinkStore and Notifier interfaces, so the desktop,
// web and CLI hosts share the same logic.
package agenda

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrEmptyTitle        = errors.New("title cannot be empty")
	ErrMissingDue        = errors.New("due date and time are required")
	ErrEmptyLink         = errors.New("link name and url are required")
	ErrInvalidRecurrence = errors.New("invalid recurrence")
)

// Priority is an arbitrary non-negative integer, higher is more urgent.
type Priority int

const (
	PriorityUnset  Priority = 0
	PriorityLow    Priority = 1
	PriorityMedium Priority = 5
	PriorityHigh   Priority = 10
)

// Level buckets p into one of the three labelled values:
// >= 10 High, 5..9 Medium, anything lower Low.
func (p Priority) Level() Priority {
	switch {
	case p >= PriorityHigh:
		return PriorityHigh
	case p >= PriorityMedium:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func (p Priority) String() string {
	switch p.Level() {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// ParsePriority maps a UI label to its value. Unknown labels map to Medium.
func ParsePriority(label string) Priority {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// Recurrence controls how often a task may fire a reminder.
type Recurrence string

const (
	Once  Recurrence = "once"
	Daily Recurrence = "daily"
)

func ParseRecurrence(s string) (Recurrence, error) {
	switch r := Recurrence(strings.ToLower(strings.TrimSpace(s))); r {
	case Once, Daily:
		return r, nil
	case "":
		return Once, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRecurrence, s)
	}
}

// Task is the central domain object.
type Task struct {
	ID          int64
	Title       string
	Description string
	// Due is a local wall-clock time. A zero Due means the persisted value
	// could not be parsed.
	Due        time.Time
	Recurrence Recurrence
	Folder     string
	Priority   Priority
	Rank       int64
	Notified   Marker
	Completed  bool
	CreatedAt  time.Time
}

func (t *Task) HasDue() bool { return !t.Due.IsZero() }

// TaskInput carries the user-editable fields of a task.
type TaskInput struct {
	Title       string
	Description string
	Due         time.Time
	Recurrence  Recurrence
	Folder      string
	Priority    Priority
}

func (in TaskInput) normalize() (TaskInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Folder = strings.TrimSpace(in.Folder)
	if in.Title == "" {
		return in, ErrEmptyTitle
	}
	if in.Due.IsZero() {
		return in, ErrMissingDue
	}
	rec, err := ParseRecurrence(string(in.Recurrence))
	if err != nil {
		return in, err
	}
	in.Recurrence = rec
	if in.Priority < 0 {
		in.Priority = PriorityUnset
	}
	return in, nil
}

// Link is a bookmarked URL with an optional related folder.
type Link struct {
	ID        int64
	Name      string
	URL       string
	Folder    string
	CreatedAt time.Time
}

// ValidURL reports whether s is an absolute http(s) URL with a host.
func ValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// TaskStore is the task persistence contract. Any backend (SQLite, memory)
// must satisfy it; hosts and the reminder engine only see this interface.
type TaskStore interface {
	CreateTask(ctx context.Context, t *Task) error
	// ListTasks returns every task in priority-first storage order.
	ListTasks(ctx context.Context) ([]*Task, error)
	// GetTask returns ErrNotFound when id does not resolve.
	GetTask(ctx context.Context, id int64) (*Task, error)
	// UpdateTask writes the user-editable fields only.
	UpdateTask(ctx context.Context, t *Task) error
	// SwapRanks exchanges the ranks of a and b atomically: either both
	// change or neither does. ErrNotFound when either id does not resolve.
	SwapRanks(ctx context.Context, a, b int64) error
	UpdateNotified(ctx context.Context, id int64, m Marker) error
	SetCompleted(ctx context.Context, id int64, completed bool) error
	DeleteTask(ctx context.Context, id int64) error
}

// LinkStore persists bookmarked links.
type LinkStore interface {
	CreateLink(ctx context.Context, l *Link) error
	// ListLinks returns links newest first.
	ListLinks(ctx context.Context) ([]*Link, error)
	GetLink(ctx context.Context, id int64) (*Link, error)
	UpdateLink(ctx context.Context, l *Link) error
	DeleteLink(ctx context.Context, id int64) error
}

// Notifier delivers a reminder. A returned error means the reminder was
// attempted but not delivered; callers never treat it as fatal.
type Notifier interface {
	Send(ctx context.Context, title, body string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, title, body string) error

func (f NotifierFunc) Send(ctx context.Context, title, body string) error {
	return f(ctx, title, body)
}
