package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/halflife/internal/client"
)

func newStatusCmd(a *app) *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check whether a halflife server is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				url = "http://" + a.cfg.ListenAddr()
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			c := client.New(url)
			h, err := c.Health(ctx)
			if err != nil {
				return fmt.Errorf("server not reachable at %s: %w", url, err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "server:  %s (%s)\n", url, h.Version)
			fmt.Fprintf(out, "uptime:  %s\n", (time.Duration(h.Uptime) * time.Second).String())
			fmt.Fprintf(out, "drinks:  %d\n", h.Drinks)
			if h.DBPath != "" {
				fmt.Fprintf(out, "db:      %s (schema %d)\n", h.DBPath, h.Schema)
			}

			l, err := c.Level(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "level:   %.2f %s\n", l.Level, l.Unit)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "server URL (default from config)")
	return cmd
}
