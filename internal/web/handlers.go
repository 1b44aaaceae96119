package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MihkelHunter/mkAgenda/internal/agenda"
)

// page is the view model of templates/index.html.
type page struct {
	Now           time.Time
	Sort          string
	Manual        bool
	ShowCompleted bool
	Tasks         []*agenda.Task
	Edit          *agenda.Task
	Links         []*agenda.Link
	EditLink      *agenda.Link
	Month         agenda.Month
	MonthParam    string
	PrevMonth     string
	NextMonth     string
	WindowMinutes int
	Checked       bool
	Fired         []agenda.NotificationEvent
	Error         string
	Notice        string
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	p, err := s.buildPage(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	p.Notice = r.URL.Query().Get("notice")
	s.render(w, http.StatusOK, p)
}

// buildPage reads the view state from request parameters; nothing about
// the page lives on the server between requests.
func (s *Server) buildPage(r *http.Request) (*page, error) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	q := r.Form

	strategy := s.opts.Sort
	if v := q.Get("sort"); v != "" {
		if st, err := agenda.ParseStrategy(v); err == nil {
			strategy = st
		}
	}
	now := s.svc.Now()
	p := &page{
		Now:           now,
		Sort:          strategy.String(),
		Manual:        strategy == agenda.Manual,
		ShowCompleted: q.Get("completed") == "1",
		WindowMinutes: int(s.opts.Window / time.Minute),
	}

	tasks, err := s.svc.Tasks(ctx, strategy, p.ShowCompleted)
	if err != nil {
		return nil, err
	}
	p.Tasks = tasks

	if id, ok := parseID(q.Get("edit")); ok {
		if t, err := s.svc.Task(ctx, id); err == nil {
			p.Edit = t
		}
	}

	if p.Links, err = s.svc.Links(ctx); err != nil {
		return nil, err
	}
	if id, ok := parseID(q.Get("editlink")); ok {
		if l, err := s.svc.Link(ctx, id); err == nil {
			p.EditLink = l
		}
	}

	year, month := now.Year(), now.Month()
	if v := q.Get("month"); v != "" {
		if m, err := time.Parse("2006-01", v); err == nil {
			year, month = m.Year(), m.Month()
		}
	}
	if p.Month, err = s.svc.MonthView(ctx, year, month); err != nil {
		return nil, err
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	p.MonthParam = first.Format("2006-01")
	p.PrevMonth = first.AddDate(0, -1, 0).Format("2006-01")
	p.NextMonth = first.AddDate(0, 1, 0).Format("2006-01")
	return p, nil
}

func (s *Server) render(w http.ResponseWriter, status int, p *page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, "index.html", p); err != nil {
		s.log.Printf("web: render: %v", err)
	}
}

// renderError re-renders the page with a message instead of redirecting,
// so a bad form does not lose the rest of the view.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	p, err := s.buildPage(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	p.Error = msg
	s.render(w, status, p)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.log.Printf("web: %v", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// back redirects to the page, keeping the view parameters of the form.
func back(w http.ResponseWriter, r *http.Request, notice string) {
	q := url.Values{}
	for _, k := range []string{"sort", "completed", "month"} {
		if v := r.FormValue(k); v != "" {
			q.Set(k, v)
		}
	}
	if notice != "" {
		q.Set("notice", notice)
	}
	target := "/"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// ── Tasks ────────────────────────────────────────────────────────────────────

func taskInputFromForm(r *http.Request) (agenda.TaskInput, error) {
	due, ok := agenda.ParseDueFields(r.FormValue("due_date"), r.FormValue("due_time"))
	if !ok {
		return agenda.TaskInput{}, agenda.ErrMissingDue
	}
	rec, err := agenda.ParseRecurrence(r.FormValue("recurrence"))
	if err != nil {
		return agenda.TaskInput{}, err
	}
	return agenda.TaskInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Due:         due,
		Recurrence:  rec,
		Folder:      r.FormValue("folder"),
		Priority:    agenda.ParsePriority(r.FormValue("priority")),
	}, nil
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	in, err := taskInputFromForm(r)
	if err == nil {
		_, err = s.svc.AddTask(r.Context(), in)
	}
	if err != nil {
		s.taskError(w, r, err)
		return
	}
	back(w, r, "Task added.")
}

func (s *Server) handleEditTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	in, err := taskInputFromForm(r)
	if err == nil {
		_, err = s.svc.EditTask(r.Context(), id, in)
	}
	if err != nil {
		s.taskError(w, r, err)
		return
	}
	back(w, r, "Task updated.")
}

func (s *Server) taskError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, agenda.ErrNotFound):
		http.Error(w, "task not found", http.StatusNotFound)
	case errors.Is(err, agenda.ErrEmptyTitle),
		errors.Is(err, agenda.ErrMissingDue),
		errors.Is(err, agenda.ErrInvalidRecurrence):
		s.renderError(w, r, http.StatusBadRequest, err.Error())
	default:
		s.fail(w, err)
	}
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	if _, err := s.svc.ToggleCompleted(r.Context(), id); err != nil {
		s.taskError(w, r, err)
		return
	}
	back(w, r, "")
}

func (s *Server) handleMove(move func(context.Context, int64) (bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "invalid task id", http.StatusBadRequest)
			return
		}
		if _, err := move(r.Context(), id); err != nil {
			s.fail(w, err)
			return
		}
		back(w, r, "")
	}
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	if err := s.svc.DeleteTask(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	back(w, r, "Task deleted.")
}

// ── Links ────────────────────────────────────────────────────────────────────

func (s *Server) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	l, err := s.svc.AddLink(r.Context(), r.FormValue("name"), r.FormValue("url"), r.FormValue("folder"))
	if err != nil {
		s.linkError(w, r, err)
		return
	}
	back(w, r, linkNotice("Link added.", l))
}

func (s *Server) handleEditLink(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "invalid link id", http.StatusBadRequest)
		return
	}
	l, err := s.svc.EditLink(r.Context(), id, r.FormValue("name"), r.FormValue("url"), r.FormValue("folder"))
	if err != nil {
		s.linkError(w, r, err)
		return
	}
	back(w, r, linkNotice("Link updated.", l))
}

// linkNotice warns about a URL that does not look valid; it is saved anyway.
func linkNotice(msg string, l *agenda.Link) string {
	if !agenda.ValidURL(l.URL) {
		return msg + " The URL does not look valid."
	}
	return msg
}

func (s *Server) linkError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, agenda.ErrNotFound):
		http.Error(w, "link not found", http.StatusNotFound)
	case errors.Is(err, agenda.ErrEmptyLink):
		s.renderError(w, r, http.StatusBadRequest, err.Error())
	default:
		s.fail(w, err)
	}
}

func (s *Server) handleDeleteLink(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "invalid link id", http.StatusBadRequest)
		return
	}
	if err := s.svc.DeleteLink(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	back(w, r, "Link deleted.")
}

// ── Reminders ────────────────────────────────────────────────────────────────

// handleCheckReminders renders the page directly so the fired reminders are
// shown as the in-page fallback for OS notifications.
func (s *Server) handleCheckReminders(w http.ResponseWriter, r *http.Request) {
	window, err := s.windowFrom(r.FormValue("window"))
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	fired, err := s.svc.CheckReminders(r.Context(), window)
	if err != nil {
		s.fail(w, err)
		return
	}
	p, err := s.buildPage(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	p.Checked = true
	p.Fired = fired
	p.WindowMinutes = int(window / time.Minute)
	s.render(w, http.StatusOK, p)
}

func (s *Server) windowFrom(v string) (time.Duration, error) {
	if v == "" {
		return s.opts.Window, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 24*60 {
		return 0, fmt.Errorf("window must be between 1 and 1440 minutes")
	}
	return time.Duration(n) * time.Minute, nil
}

// ── API ──────────────────────────────────────────────────────────────────────

type apiTask struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Due         string `json:"due"`
	Recurrence  string `json:"recurrence"`
	Folder      string `json:"folder,omitempty"`
	Priority    int    `json:"priority"`
	Rank        int64  `json:"rank"`
	Notified    string `json:"last_notified,omitempty"`
	Completed   bool   `json:"completed"`
}

type apiEvent struct {
	TaskID   int64  `json:"task_id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Due      string `json:"due"`
	Priority int    `json:"priority"`
}

func (s *Server) handleAPITasks(w http.ResponseWriter, r *http.Request) {
	strategy, err := agenda.ParseStrategy(r.URL.Query().Get("sort"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	tasks, err := s.svc.Tasks(r.Context(), strategy, r.URL.Query().Get("completed") == "1")
	if err != nil {
		s.log.Printf("web: list tasks: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load tasks"})
		return
	}
	items := make([]apiTask, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, apiTask{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Due:         agenda.FormatTimestamp(t.Due),
			Recurrence:  string(t.Recurrence),
			Folder:      t.Folder,
			Priority:    int(t.Priority),
			Rank:        t.Rank,
			Notified:    t.Notified.String(),
			Completed:   t.Completed,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleAPICheckReminders(w http.ResponseWriter, r *http.Request) {
	window, err := s.windowFrom(r.URL.Query().Get("window"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	fired, err := s.svc.CheckReminders(r.Context(), window)
	if err != nil {
		s.log.Printf("web: check reminders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check reminders"})
		return
	}
	items := make([]apiEvent, 0, len(fired))
	for _, ev := range fired {
		title, body := ev.Message()
		items = append(items, apiEvent{
			TaskID:   ev.TaskID,
			Title:    title,
			Body:     body,
			Due:      agenda.FormatTimestamp(ev.Due),
			Priority: int(ev.Priority),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}
