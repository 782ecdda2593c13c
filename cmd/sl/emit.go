package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/alfredjeanlab/shelflog/internal/events"
	"github.com/spf13/cobra"
)

// sl emit book.created --data '{"BookId":"b-1","Title":"Dune"}'
// Publishes a library event directly to the broker, bypassing the
// application services. Useful for smoke-testing the consumer chain.
var emitCmd = &cobra.Command{
	Use:   "emit <event-name> [json-payload]",
	Short: "Publish a library event to the broker",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eventName := args[0]
		data, _ := cmd.Flags().GetString("data")
		if len(args) == 2 {
			data = args[1]
		}
		natsURL, _ := cmd.Flags().GetString("nats")
		stream, _ := cmd.Flags().GetString("stream")
		prefix, _ := cmd.Flags().GetString("prefix")

		if natsURL == "" {
			natsURL = os.Getenv("SHELFLOG_NATS_URL")
		}
		if natsURL == "" {
			natsURL = activeRemoteNATSURL()
		}
		if natsURL == "" {
			return fmt.Errorf("no NATS URL; use --nats, SHELFLOG_NATS_URL, or a remote with nats_url set")
		}

		var payload json.RawMessage
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return fmt.Errorf("--data is not valid JSON: %w", err)
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		pub := events.NewJetStreamPublisher(natsURL, stream, prefix, logger)
		defer pub.Close()

		pub.Publish(context.Background(), eventName, payload)
		fmt.Printf("emitted %s to %s\n", eventName, natsURL)
		return nil
	},
}

func init() {
	emitCmd.Flags().String("data", "{}", "event payload as JSON")
	emitCmd.Flags().String("nats", "", "NATS URL (default: SHELFLOG_NATS_URL or active remote)")
	emitCmd.Flags().String("stream", "LIBRARY_EVENTS", "JetStream stream name")
	emitCmd.Flags().String("prefix", "library", "subject prefix")
}
