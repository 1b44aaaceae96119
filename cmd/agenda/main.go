// Command agenda manages tasks and links from the terminal. "agenda remind"
// is meant to be run from cron or a launchd/systemd timer; reminders are only
// evaluated when it runs.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MihkelHunter/mkAgenda/internal/host"
	"github.com/MihkelHunter/mkAgenda/internal/notify"
)

var Version = "dev"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "agenda",
		Short:         "mkAgenda - tasks, reminders and links",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.mkagenda/config.yaml)")

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(doneCmd(true))
	rootCmd.AddCommand(doneCmd(false))
	rootCmd.AddCommand(rmCmd())
	rootCmd.AddCommand(moveCmd())
	rootCmd.AddCommand(swapCmd())
	rootCmd.AddCommand(remindCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(linkCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openApp assembles the service; reminders are echoed to stderr.
func openApp(cmd *cobra.Command) (*host.App, error) {
	logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
	return host.Open(cmd.Context(), configPath, notify.LogNotifier{Log: logger}, logger)
}

func withApp(fn func(ctx context.Context, cmd *cobra.Command, app *host.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return fn(cmd.Context(), cmd, app, args)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
