package store

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/MihkelHunter/mkAgenda/internal/agenda"
)

type backend interface {
	agenda.TaskStore
	agenda.LinkStore
	Close() error
}

func backends(t *testing.T) map[string]backend {
	t.Helper()
	sqlite, err := New(filepath.Join(t.TempDir(), "nested", "agenda.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]backend{
		"sqlite": sqlite,
		"memory": NewMemory(),
	}
}

func sampleTask(title string, priority agenda.Priority, due time.Time) *agenda.Task {
	return &agenda.Task{
		Title:      title,
		Due:        due,
		Recurrence: agenda.Once,
		Priority:   priority,
		Rank:       due.UnixMilli(),
		CreatedAt:  due,
	}
}

func TestTaskRoundTrip(t *testing.T) {
	due := time.Date(2024, 3, 1, 18, 0, 0, 0, time.Local)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			in := &agenda.Task{
				Title:       "gym",
				Description: "leg day",
				Due:         due,
				Recurrence:  agenda.Daily,
				Folder:      "/home/me/fitness",
				Priority:    agenda.PriorityHigh,
				Rank:        42,
				Notified:    agenda.FiredOn(agenda.Date{Year: 2024, Month: time.February, Day: 29}),
				CreatedAt:   due,
			}
			if err := s.CreateTask(ctx, in); err != nil {
				t.Fatal(err)
			}
			if in.ID == 0 {
				t.Fatal("CreateTask did not assign an id")
			}
			got, err := s.GetTask(ctx, in.ID)
			if err != nil {
				t.Fatal(err)
			}
			opts := cmp.Options{
				cmp.AllowUnexported(agenda.Marker{}),
				cmpopts.EquateApproxTime(time.Millisecond),
			}
			if diff := cmp.Diff(in, got, opts); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTaskUpdates(t *testing.T) {
	due := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			task := sampleTask("write report", agenda.PriorityMedium, due)
			if err := s.CreateTask(ctx, task); err != nil {
				t.Fatal(err)
			}

			task.Title = "write final report"
			task.Rank = 1 // UpdateTask must not touch rank
			if err := s.UpdateTask(ctx, task); err != nil {
				t.Fatal(err)
			}
			if err := s.UpdateNotified(ctx, task.ID, agenda.FiredOn(agenda.DateOf(due))); err != nil {
				t.Fatal(err)
			}
			if err := s.SetCompleted(ctx, task.ID, true); err != nil {
				t.Fatal(err)
			}
			got, err := s.GetTask(ctx, task.ID)
			if err != nil {
				t.Fatal(err)
			}
			if got.Title != "write final report" || got.Rank != due.UnixMilli() || !got.Completed {
				t.Errorf("after updates: %+v", got)
			}
			if got.Notified.String() != "2024-01-01" {
				t.Errorf("marker = %q", got.Notified)
			}

			if err := s.UpdateNotified(ctx, task.ID, agenda.NotYet()); err != nil {
				t.Fatal(err)
			}
			got, _ = s.GetTask(ctx, task.ID)
			if _, fired := got.Notified.Fired(); fired {
				t.Error("cleared marker reads back as fired")
			}

			if err := s.SwapRanks(ctx, task.ID, 999); !errors.Is(err, agenda.ErrNotFound) {
				t.Errorf("SwapRanks(missing) = %v, want ErrNotFound", err)
			}
			if got, _ := s.GetTask(ctx, task.ID); got.Rank != due.UnixMilli() {
				t.Errorf("failed swap changed rank to %d", got.Rank)
			}
			if err := s.DeleteTask(ctx, task.ID); err != nil {
				t.Fatal(err)
			}
			if _, err := s.GetTask(ctx, task.ID); !errors.Is(err, agenda.ErrNotFound) {
				t.Errorf("GetTask after delete = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestListTasksStorageOrder(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, task := range []*agenda.Task{
				sampleTask("low", agenda.PriorityLow, base),
				sampleTask("high later", agenda.PriorityHigh, base.Add(time.Hour)),
				sampleTask("high sooner", agenda.PriorityHigh, base),
			} {
				if err := s.CreateTask(ctx, task); err != nil {
					t.Fatal(err)
				}
			}
			tasks, err := s.ListTasks(ctx)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, task := range tasks {
				got = append(got, task.Title)
			}
			want := []string{"high sooner", "high later", "low"}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLinks(t *testing.T) {
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			older := &agenda.Link{Name: "go", URL: "https://go.dev", CreatedAt: created}
			newer := &agenda.Link{Name: "notes", URL: "file:///tmp", Folder: "/tmp", CreatedAt: created.Add(time.Second)}
			for _, l := range []*agenda.Link{older, newer} {
				if err := s.CreateLink(ctx, l); err != nil {
					t.Fatal(err)
				}
			}
			links, err := s.ListLinks(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(links) != 2 || links[0].ID != newer.ID {
				t.Fatalf("ListLinks = %+v, want newest first", links)
			}

			older.Name = "Go"
			if err := s.UpdateLink(ctx, older); err != nil {
				t.Fatal(err)
			}
			got, err := s.GetLink(ctx, older.ID)
			if err != nil {
				t.Fatal(err)
			}
			if got.Name != "Go" || got.Folder != "" {
				t.Errorf("GetLink = %+v", got)
			}

			if err := s.DeleteLink(ctx, older.ID); err != nil {
				t.Fatal(err)
			}
			if _, err := s.GetLink(ctx, older.ID); !errors.Is(err, agenda.ErrNotFound) {
				t.Errorf("GetLink after delete = %v", err)
			}
			if err := s.UpdateLink(ctx, older); !errors.Is(err, agenda.ErrNotFound) {
				t.Errorf("UpdateLink after delete = %v", err)
			}
		})
	}
}

func TestSQLiteUnparseableDue(t *testing.T) {
	s, err := New(MemoryPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tasks (title, due_iso, recurrence, last_notified_date, created_at)
		 VALUES ('legacy', 'next tuesday', 'once', 'yesterday', '2024-01-01T00:00:00')`)
	if err != nil {
		t.Fatal(err)
	}
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	task := tasks[0]
	if task.HasDue() {
		t.Errorf("Due = %v, want zero", task.Due)
	}
	if _, fired := task.Notified.Fired(); !fired {
		t.Error("corrupt marker should read as fired")
	}
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agenda.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	task := sampleTask("persist me", agenda.PriorityLow, time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local))
	if err := s.CreateTask(context.Background(), task); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.GetTask(context.Background(), task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "persist me" {
		t.Errorf("Title = %q", got.Title)
	}
}

func TestSwapRanks(t *testing.T) {
	due := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			a := sampleTask("a", agenda.PriorityLow, due)
			a.Rank = 10
			b := sampleTask("b", agenda.PriorityLow, due)
			b.Rank = 30
			for _, task := range []*agenda.Task{a, b} {
				if err := s.CreateTask(ctx, task); err != nil {
					t.Fatal(err)
				}
			}
			if err := s.SwapRanks(ctx, a.ID, b.ID); err != nil {
				t.Fatal(err)
			}
			gotA, _ := s.GetTask(ctx, a.ID)
			gotB, _ := s.GetTask(ctx, b.ID)
			if gotA.Rank != 30 || gotB.Rank != 10 {
				t.Errorf("ranks after swap = %d, %d; want 30, 10", gotA.Rank, gotB.Rank)
			}
		})
	}
}

func TestSQLiteSwapRanksRollsBack(t *testing.T) {
	s, err := New(MemoryPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	due := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)
	a := sampleTask("a", agenda.PriorityLow, due)
	a.Rank = 10
	b := sampleTask("b", agenda.PriorityLow, due)
	b.Rank = 30
	for _, task := range []*agenda.Task{a, b} {
		if err := s.CreateTask(ctx, task); err != nil {
			t.Fatal(err)
		}
	}

	// the second write of the swap fails
	_, err = s.db.ExecContext(ctx, `CREATE TRIGGER reject_rank BEFORE UPDATE OF sort_index ON tasks
		WHEN NEW.id = `+strconv.FormatInt(b.ID, 10)+`
		BEGIN SELECT RAISE(ABORT, 'disk I/O error'); END`)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SwapRanks(ctx, a.ID, b.ID); err == nil {
		t.Fatal("expected the swap to fail")
	}
	gotA, _ := s.GetTask(ctx, a.ID)
	gotB, _ := s.GetTask(ctx, b.ID)
	if gotA.Rank != 10 || gotB.Rank != 30 {
		t.Errorf("ranks after failed swap = %d, %d; want 10, 30", gotA.Rank, gotB.Rank)
	}
}
