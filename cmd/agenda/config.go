package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MihkelHunter/mkAgenda/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.Save(config.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "db_path:        %s\n", cfg.DBPath)
			fmt.Fprintf(out, "window_minutes: %d\n", cfg.WindowMinutes)
			fmt.Fprintf(out, "sort:           %s\n", cfg.Sort)
			fmt.Fprintf(out, "web.addr:       %s\n", cfg.Web.Addr)
			fmt.Fprintf(out, "notify.email:   %t\n", cfg.Notify.Email.Enabled)
			fmt.Fprintf(out, "notify.kafka:   %t\n", cfg.Notify.Kafka.Enabled)
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
