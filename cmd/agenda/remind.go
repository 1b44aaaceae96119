package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MihkelHunter/mkAgenda/internal/host"
)

func remindCmd() *cobra.Command {
	var window int
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send reminders for tasks due within the window",
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, app *host.App, args []string) error {
			w := app.Config.Window()
			if cmd.Flags().Changed("window") {
				if window < 1 || window > 24*60 {
					return fmt.Errorf("window must be between 1 and 1440 minutes")
				}
				w = time.Duration(window) * time.Minute
			}
			fired, err := app.Service.CheckReminders(ctx, w)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(fired) == 0 {
				fmt.Fprintln(out, "No tasks to notify in this window.")
				return nil
			}
			fmt.Fprintf(out, "%d reminder(s) sent.\n", len(fired))
			for _, ev := range fired {
				fmt.Fprintf(out, "- %s - %s - %s\n", ev.Title, ev.Due.Format("2006-01-02 15:04"), ev.Priority)
			}
			return nil
		}),
	}
	cmd.Flags().IntVarP(&window, "window", "w", 60, "Look-ahead in minutes (overrides config)")
	return cmd
}
