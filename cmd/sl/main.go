package main

import (
	"os"

	"github.com/alfredjeanlab/shelflog/internal/client"
	"github.com/spf13/cobra"
)

var (
	httpURL    string
	jsonOutput bool

	eventsClient client.EventsClient
)

func defaultHTTPURL() string {
	if s := os.Getenv("SHELFLOG_HTTP_URL"); s != "" {
		return s
	}
	if u := activeRemoteURL(); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func authToken() string {
	if t := os.Getenv("SHELFLOG_AUTH_TOKEN"); t != "" {
		return t
	}
	return activeRemoteToken()
}

var rootCmd = &cobra.Command{
	Use:   "sl <command>",
	Short: "CLI client for the shelflog event service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		eventsClient = client.NewHTTPClient(httpURL, authToken())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if eventsClient != nil {
			eventsClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&httpURL, "http-url", defaultHTTPURL(), "HTTP server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
