package agenda

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// DefaultWindow is how far ahead reminders look when the host does not say.
const DefaultWindow = 60 * time.Minute

// NotificationEvent describes one reminder that fired.
type NotificationEvent struct {
	TaskID      int64
	Title       string
	Description string
	// Due is the stored due time, shown in the message.
	Due time.Time
	// Occurrence is the instant that fell in the window: Due for one-shot
	// tasks, today's date at Due's time of day for daily tasks.
	Occurrence time.Time
	Folder     string
	Priority   Priority
}

// Message renders the notification title and body.
func (ev NotificationEvent) Message() (title, body string) {
	title = fmt.Sprintf("Reminder: %s - %s", ev.Title, ev.Due.Format("2006-01-02 15:04"))
	body = ev.Description
	if ev.Folder != "" {
		body += "\nFolder: " + ev.Folder
	}
	return title, body
}

// MarkerWriter persists the last-notified marker of a task.
type MarkerWriter interface {
	UpdateNotified(ctx context.Context, id int64, m Marker) error
}

// TaskLister supplies the tasks a check runs over.
type TaskLister interface {
	ListTasks(ctx context.Context) ([]*Task, error)
}

// ReminderEngine decides which tasks owe a reminder at a given instant,
// sends them and records the marker. It never starts timers of its own; the
// host calls EvaluateDue on demand.
type ReminderEngine struct {
	markers  MarkerWriter
	notifier Notifier
	log      *log.Logger

	// serialises evaluate-and-mark runs so concurrent triggers cannot
	// fire a one-shot task twice.
	mu sync.Mutex
}

func NewReminderEngine(markers MarkerWriter, notifier Notifier, logger *log.Logger) *ReminderEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &ReminderEngine{markers: markers, notifier: notifier, log: logger}
}

// EvaluateDue fires every incomplete task whose next occurrence falls in
// [now, now+window] and that has not already fired under its recurrence
// rule. Events come back in the order of tasks. Delivery and marker write
// failures are logged and never abort the run; a fired task's marker is
// set even when delivery failed. tasks are updated in place.
func (e *ReminderEngine) EvaluateDue(ctx context.Context, now time.Time, window time.Duration, tasks []*Task) []NotificationEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.evaluate(ctx, now, window, tasks)
}

// Check lists the tasks and evaluates them in one critical section, so a
// concurrent check always sees the markers written by the one before it.
func (e *ReminderEngine) Check(ctx context.Context, now time.Time, window time.Duration, src TaskLister) ([]NotificationEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	tasks, err := src.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return e.evaluate(ctx, now, window, tasks), nil
}

func (e *ReminderEngine) evaluate(ctx context.Context, now time.Time, window time.Duration, tasks []*Task) []NotificationEvent {
	windowEnd := now.Add(window)
	today := DateOf(now)

	var events []NotificationEvent
	for _, t := range tasks {
		at, ok := occurrenceDue(t, now, windowEnd, today)
		if !ok {
			continue
		}
		events = append(events, NotificationEvent{
			TaskID:      t.ID,
			Title:       t.Title,
			Description: t.Description,
			Due:         t.Due,
			Occurrence:  at,
			Folder:      t.Folder,
			Priority:    t.Priority,
		})
	}

	for _, ev := range events {
		title, body := ev.Message()
		if e.notifier != nil {
			if err := e.notifier.Send(ctx, title, body); err != nil {
				e.log.Printf("reminder: task %d not delivered: %v", ev.TaskID, err)
			}
		}
		marker := FiredOn(today)
		if err := e.markers.UpdateNotified(ctx, ev.TaskID, marker); err != nil {
			e.log.Printf("reminder: task %d: record marker: %v", ev.TaskID, err)
			continue
		}
		for _, t := range tasks {
			if t.ID == ev.TaskID {
				t.Notified = marker
			}
		}
	}
	return events
}

// occurrenceDue reports whether t owes a reminder and at which instant.
func occurrenceDue(t *Task, now, windowEnd time.Time, today Date) (time.Time, bool) {
	if t.Completed || !t.HasDue() {
		return time.Time{}, false
	}
	var at time.Time
	switch t.Recurrence {
	case Once:
		if !onceArmed(t.Notified) {
			return time.Time{}, false
		}
		at = t.Due
	case Daily:
		if !dailyArmed(t.Notified, today) {
			return time.Time{}, false
		}
		at = today.At(t.Due, now.Location())
	default:
		return time.Time{}, false
	}
	if at.Before(now) || at.After(windowEnd) {
		return time.Time{}, false
	}
	return at, true
}
