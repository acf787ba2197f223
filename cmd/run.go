package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/intervue/internal/app"
	"github.com/abhisek/intervue/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Take the interview in the terminal (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

// runTUI opens the session and hands it to the terminal presenter.
func runTUI(cmd *cobra.Command) error {
	a, err := openApp(cmd, "console", app.Options{})
	if err != nil {
		return err
	}
	defer closeApp(a)

	scorer, err := a.Scorer(cmd.Context())
	if err != nil {
		return err
	}
	return tui.Run(cmd.Context(), tui.Options{
		Machine:   a.Machine,
		Questions: a.Questions,
		Scorer:    scorer,
		Log:       a.Log,
	})
}
