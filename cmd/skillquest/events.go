package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/skillquest/internal/config"
	"github.com/felixgeelhaar/skillquest/internal/events"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Observe domain events published by the daemon",
	}
	cmd.AddCommand(newEventsTailCmd())
	return cmd
}

func newEventsTailCmd() *cobra.Command {
	var (
		path    string
		pattern string
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print events as JSON lines until interrupted",
		Long:  `Binds a private queue to the events exchange. --pattern takes an AMQP topic pattern such as "plan.*".`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if cfg.Events.RabbitMQURL == "" {
				return fmt.Errorf("no broker configured (set SKILLQUEST_RABBITMQ_URL)")
			}

			conn, err := events.Dial(cfg.Events.RabbitMQURL)
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			enc := json.NewEncoder(cmd.OutOrStdout())
			return events.NewSubscriber(conn, pattern).Run(ctx, func(_ context.Context, e events.Event) error {
				return enc.Encode(e)
			})
		},
	}

	cmd.Flags().StringVarP(&path, "config", "c", "", "Path to config.yaml")
	cmd.Flags().StringVarP(&pattern, "pattern", "p", "#", "Routing key pattern")
	return cmd
}
