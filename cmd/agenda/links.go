package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MihkelHunter/mkAgenda/internal/agenda"
	"github.com/MihkelHunter/mkAgenda/internal/host"
)

func linkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Manage bookmarked links",
	}
	cmd.AddCommand(linkAddCmd(), linkListCmd(), linkRmCmd())
	return cmd
}

func linkAddCmd() *cobra.Command {
	var folder string
	cmd := &cobra.Command{
		Use:   "add [name] [url]",
		Short: "Add a link",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, app *host.App, args []string) error {
			l, err := app.Service.AddLink(ctx, args[0], args[1], folder)
			if err != nil {
				return err
			}
			if !agenda.ValidURL(l.URL) {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: the URL does not look valid; saved anyway")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added link %d: %s\n", l.ID, l.Name)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&folder, "folder", "f", "", "Related folder")
	return cmd
}

func linkListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List links, newest first",
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, app *host.App, args []string) error {
			links, err := app.Service.Links(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(links) == 0 {
				fmt.Fprintln(out, "No links saved.")
				return nil
			}
			for _, l := range links {
				fmt.Fprintf(out, "%4d  %s  %s", l.ID, l.Name, l.URL)
				if l.Folder != "" {
					fmt.Fprintf(out, "  (%s)", l.Folder)
				}
				fmt.Fprintln(out)
			}
			return nil
		}),
	}
}

func linkRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a link",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, app *host.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Service.DeleteLink(ctx, id)
		}),
	}
}
