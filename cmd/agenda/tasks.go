package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/MihkelHunter/mkAgenda/internal/agenda"
	"github.com/MihkelHunter/mkAgenda/internal/host"
)

type taskFlags struct {
	description string
	due         string
	recurrence  string
	priority    string
	folder      string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.description, "desc", "d", "", "Description")
	cmd.Flags().StringVar(&f.due, "due", "", `Due date and time, e.g. "2024-03-01 18:00"`)
	cmd.Flags().StringVarP(&f.recurrence, "recurrence", "r", "once", "Recurrence (once, daily)")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "Medium", "Priority (Low, Medium, High)")
	cmd.Flags().StringVarP(&f.folder, "folder", "f", "", "Related folder")
}

// apply fills in from the flags; on edit only the flags that were set count.
func (f *taskFlags) apply(cmd *cobra.Command, in *agenda.TaskInput, edit bool) error {
	set := func(name string) bool { return !edit || cmd.Flags().Changed(name) }
	if set("desc") {
		in.Description = f.description
	}
	if set("due") {
		due, ok := agenda.ParseFlexibleTimestamp(f.due)
		if !ok {
			return fmt.Errorf("cannot parse due time %q", f.due)
		}
		in.Due = due
	}
	if set("recurrence") {
		rec, err := agenda.ParseRecurrence(f.recurrence)
		if err != nil {
			return err
		}
		in.Recurrence = rec
	}
	if set("priority") {
		in.Priority = agenda.ParsePriority(f.priority)
	}
	if set("folder") {
		in.Folder = f.folder
	}
	return nil
}

func addCmd() *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, app *host.App, args []string) error {
			in := agenda.TaskInput{Title: args[0]}
			if err := f.apply(cmd, &in, false); err != nil {
				return err
			}
			t, err := app.Service.AddTask(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %d: %s\n", t.ID, t.Title)
			return nil
		}),
	}
	f.register(cmd)
	return cmd
}

func editCmd() *cobra.Command {
	var f taskFlags
	var title string
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a task; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, app *host.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			cur, err := app.Service.Task(ctx, id)
			if err != nil {
				return err
			}
			in := agenda.TaskInput{
				Title:       cur.Title,
				Description: cur.Description,
				Due:         cur.Due,
				Recurrence:  cur.Recurrence,
				Folder:      cur.Folder,
				Priority:    cur.Priority,
			}
			if cmd.Flags().Changed("title") {
				in.Title = title
			}
			if err := f.apply(cmd, &in, true); err != nil {
				return err
			}
			if _, err := app.Service.EditTask(ctx, id, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %d\n", id)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Title")
	f.register(cmd)
	return cmd
}

func listCmd() *cobra.Command {
	var sortBy string
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, app *host.App, args []string) error {
			strategy := app.Strategy()
			if cmd.Flags().Changed("sort") {
				s, err := agenda.ParseStrategy(sortBy)
				if err != nil {
					return err
				}
				strategy = s
			}
			tasks, err := app.Service.Tasks(ctx, strategy, all)
			if err != nil {
				return err
			}
			printTasks(cmd.OutOrStdout(), tasks)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "manual", "Order (manual, priority)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed tasks")
	return cmd
}

func printTasks(w io.Writer, tasks []*agenda.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	for _, t := range tasks {
		done := " "
		if t.Completed {
			done = "x"
		}
		due := "?"
		if t.HasDue() {
			due = t.Due.Format("2006-01-02 15:04")
		}
		notified := t.Notified.String()
		if notified == "" {
			notified = "-"
		}
		fmt.Fprintf(w, "[%s] %4d  %-6s %-16s %-5s notified:%-10s %s\n",
			done, t.ID, t.Priority, due, t.Recurrence, notified, t.Title)
	}
}

func doneCmd(completed bool) *cobra.Command {
	use, short := "done [id]", "Mark a task completed"
	if !completed {
		use, short = "undo [id]", "Mark a task not completed"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, app *host.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Service.SetCompleted(ctx, id, completed)
		}),
	}
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, app *host.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Service.DeleteTask(ctx, id)
		}),
	}
}

func moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "move [id] [up|down]",
		Short:     "Move a task one place in the manual order",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"up", "down"},
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, app *host.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var moved bool
			switch args[1] {
			case "up":
				moved, err = app.Service.MoveUp(ctx, id)
			case "down":
				moved, err = app.Service.MoveDown(ctx, id)
			default:
				return fmt.Errorf("direction must be up or down, got %q", args[1])
			}
			if err != nil {
				return err
			}
			if !moved {
				fmt.Fprintf(cmd.OutOrStdout(), "Task %d cannot move %s\n", id, args[1])
			}
			return nil
		}),
	}
}

func swapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "swap [id] [id]",
		Short: "Exchange the manual ranks of two tasks",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, app *host.App, args []string) error {
			a, err := parseID(args[0])
			if err != nil {
				return err
			}
			b, err := parseID(args[1])
			if err != nil {
				return err
			}
			swapped, err := app.Service.SwapRank(ctx, a, b)
			if err != nil {
				return err
			}
			if !swapped {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to swap")
			}
			return nil
		}),
	}
}

func calendarCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show a month of tasks",
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, app *host.App, args []string) error {
			at := app.Service.Now()
			if month != "" {
				m, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("month must look like 2024-03: %w", err)
				}
				at = m
			}
			m, err := app.Service.MonthView(ctx, at.Year(), at.Month())
			if err != nil {
				return err
			}
			printMonth(cmd.OutOrStdout(), m)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month to show (YYYY-MM, default current)")
	return cmd
}

func printMonth(w io.Writer, m agenda.Month) {
	fmt.Fprintf(w, "%s %d\n", m.Month, m.Year)
	for _, week := range m.Weeks {
		for _, day := range week {
			if !day.InMonth || len(day.Tasks) == 0 {
				continue
			}
			fmt.Fprintf(w, "%s\n", day.Date)
			for _, t := range day.Tasks {
				fmt.Fprintf(w, "  %s  %-6s %s\n", t.Due.Format("15:04"), t.Priority, t.Title)
			}
		}
	}
}
