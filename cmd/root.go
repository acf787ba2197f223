package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/intervue/internal/app"
	"github.com/abhisek/intervue/internal/config"
	"github.com/abhisek/intervue/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "intervue",
	Short: "Timed technical interviews in the terminal",
	Long: "intervue runs a timed, multi-question screening interview: questions go from easy to hard,\n" +
		"each with its own countdown, and progress is saved after every step so an interrupted\n" +
		"session can be continued later.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides INTERVUE_DB)")
	pf.String("store", "", "Storage backend: sqlite, redis or memory (overrides INTERVUE_STORE)")
	pf.String("redis-addr", "", "Redis address for --store redis (overrides INTERVUE_REDIS_ADDR)")
	pf.String("questions", "", "YAML or JSON question file (overrides INTERVUE_QUESTIONS)")
	pf.String("scorer", "", "Scorer: heuristic or llm (overrides INTERVUE_SCORER)")
	pf.String("log-level", "", "Log level (overrides INTERVUE_LOG_LEVEL)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(versionCmd)
	addSessionCommands(rootCmd)
}

// loadConfig reads the environment, then applies any flags that were set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"db", &cfg.DBPath},
		{"store", &cfg.Store},
		{"redis-addr", &cfg.RedisAddr},
		{"questions", &cfg.Questions},
		{"scorer", &cfg.Scorer},
		{"log-level", &cfg.LogLevel},
	}
	for _, o := range overrides {
		if v, _ := cmd.Flags().GetString(o.flag); v != "" {
			*o.target = v
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openApp loads configuration, builds the logger and opens the session.
// logFormat overrides the configured format; the interactive commands use
// the console encoder.
func openApp(cmd *cobra.Command, logFormat string, opts app.Options) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logFormat == "" {
		logFormat = cfg.LogFormat
	}
	log, err := logging.New(cfg.LogLevel, logFormat)
	if err != nil {
		return nil, err
	}

	a, err := app.Open(cmd.Context(), cfg, log, opts)
	if err != nil {
		log.Sync()
		return nil, err
	}
	if a.Machine.View().Degraded {
		log.Warn("session storage unavailable; progress will not be saved", zap.String("store", cfg.Store))
	}
	return a, nil
}

func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		a.Log.Warn("close store", zap.Error(err))
	}
	a.Log.Sync()
}
