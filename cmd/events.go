package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/intervue/internal/app"
	"github.com/abhisek/intervue/internal/store"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the audit trail for the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		sessionID, _ := cmd.Flags().GetString("session")
		all, _ := cmd.Flags().GetBool("all")

		a, err := openApp(cmd, "console", app.Options{})
		if err != nil {
			return err
		}
		defer closeApp(a)

		if sessionID == "" && !all {
			sessionID = a.Machine.View().State.SessionID
		}
		events, err := a.Events.List(cmd.Context(), sessionID, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No events found.")
			return nil
		}

		fmt.Fprintf(out, "%-6s  %-19s  %-18s  %s\n", "Seq", "Timestamp", "Action", "Detail")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, e := range events {
			fmt.Fprintf(out, "%-6d  %-19s  %-18s  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Action,
				describe(e),
			)
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().Int("limit", 50, "Maximum number of events")
	eventsCmd.Flags().String("session", "", "Session ID (defaults to the current session)")
	eventsCmd.Flags().Bool("all", false, "List events from every session")
}

// describe renders LLM request events as a one-line summary; other events
// already carry a readable detail.
func describe(e store.Event) string {
	if e.Action != store.ActionLLMRequest {
		return e.Detail
	}
	var d store.LLMRequestEventData
	if err := json.Unmarshal([]byte(e.Detail), &d); err != nil {
		return e.Detail
	}
	ok := "✓"
	if !d.Success {
		ok = "✗ " + d.ErrorMessage
	}
	return fmt.Sprintf("%s/%s %s in=%d out=%d %dms $%.4f %s",
		d.Provider, d.Model, d.Purpose, d.InputTokens, d.OutputTokens, d.LatencyMs, d.CostUSD, ok)
}
