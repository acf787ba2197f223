package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/intervue/internal/app"
	"github.com/abhisek/intervue/internal/countdown"
	"github.com/abhisek/intervue/internal/httpapi"
	"github.com/abhisek/intervue/internal/interview"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the session over HTTP for a browser presenter",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		// The machine needs its listener before it opens and the driver
		// needs the machine. No transition runs until the server is up, so
		// the driver is always bound before the listener fires.
		var driver *countdown.Driver
		a, err := openApp(cmd, "", app.Options{
			Registry: reg,
			Listeners: []interview.Listener{func(v interview.View) {
				driver.Listener()(v)
			}},
		})
		if err != nil {
			return err
		}
		defer closeApp(a)

		driver = countdown.New(ctx, a.Machine, countdown.WithLogger(a.Log))
		defer driver.Close()

		// A session restored while active stays suspended until a client
		// decides, so the countdown only starts for a live running timer.
		driver.Listener()(a.Machine.View())

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			a.Config.HTTPAddr = addr
		}
		scorer, err := a.Scorer(ctx)
		if err != nil {
			return err
		}

		server := &http.Server{
			Addr: a.Config.HTTPAddr,
			Handler: httpapi.NewRouter(httpapi.Options{
				Machine:        a.Machine,
				Questions:      a.Questions,
				Scorer:         scorer,
				Events:         a.Events,
				Metrics:        a.Metrics,
				Logger:         a.Log,
				AllowedOrigins: a.Config.AllowedOrigins,
			}),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			a.Log.Info("interview service starting", zap.String("addr", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			a.Log.Info("interview service shutting down")
			driver.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides INTERVUE_HTTP_ADDR)")
}
