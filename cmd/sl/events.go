package main

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/shelflog/internal/model"
	"github.com/spf13/cobra"
)

var (
	lastIndex int
	pageSize  int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List stored library events by category",
}

var eventsBookCmd = &cobra.Command{
	Use:   "book",
	Short: "List book and category events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := eventsClient.BookEvents(context.Background(), lastIndex, pageSize)
		if err != nil {
			return fmt.Errorf("listing book events: %w", err)
		}
		return printEventPage(page)
	},
}

var eventsUserCmd = &cobra.Command{
	Use:   "user",
	Short: "List reservation, party, and role events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := eventsClient.UserEvents(context.Background(), lastIndex, pageSize)
		if err != nil {
			return fmt.Errorf("listing user events: %w", err)
		}
		return printEventPage(page)
	},
}

func printEventPage(page *model.EventPage) error {
	if jsonOutput {
		return printEventPageJSON(page)
	}
	printEventTable(page)
	return nil
}

func init() {
	for _, c := range []*cobra.Command{eventsBookCmd, eventsUserCmd} {
		c.Flags().IntVar(&lastIndex, "last-index", 0, "pagination cursor from a previous page")
		c.Flags().IntVar(&pageSize, "page-size", 0, "maximum events per page (server default 100)")
	}

	eventsCmd.AddCommand(eventsBookCmd)
	eventsCmd.AddCommand(eventsUserCmd)
}
