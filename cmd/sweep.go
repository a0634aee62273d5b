package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newSweepCmd(configPath *string) *cobra.Command {
	var pass string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run reminder and cleanup passes once and exit",
		Long:  "Runs a single sweeper pass (upcoming, tomorrow, today, cleanup) or all of them in order when --pass is empty.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			sw := a.newSweeper()
			if pass == "" {
				return sw.RunAll(ctx)
			}
			return sw.Run(ctx, pass)
		},
	}
	cmd.Flags().StringVar(&pass, "pass", "", "single pass to run: upcoming, tomorrow, today or cleanup")

	return cmd
}
