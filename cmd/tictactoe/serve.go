package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jaminalder/tictactoe-rounds/internal/app"
	"github.com/jaminalder/tictactoe-rounds/internal/config"
	"github.com/jaminalder/tictactoe-rounds/internal/logging"
	"github.com/jaminalder/tictactoe-rounds/internal/storage/memory"
	"github.com/jaminalder/tictactoe-rounds/internal/storage/redis"
	"github.com/jaminalder/tictactoe-rounds/internal/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long:  `Serves the match over HTTP with htmx fragments and server-sent events.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		conf, err := config.Load(path)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			conf.HTTP.Addr = addr
		}
		log := logging.New(os.Stderr, logging.ParseLevel(conf.LogLevel), conf.LogFormat)
		return serve(cmd.Context(), conf, log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address, overrides the config")
}

func serve(ctx context.Context, conf *config.Config, log *slog.Logger) error {
	store, closeStore, err := openStore(ctx, conf, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error("close store", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	svc := app.NewService(store, app.WithLogger(log), app.WithMetrics(app.NewMetrics(reg)))

	srv := &http.Server{
		Addr: conf.HTTP.Addr,
		Handler: web.NewServer(svc,
			web.WithLogger(log),
			web.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		),
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr, "store", conf.Store.Kind)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info("shutting down", "signal", sig.String())

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), conf.HTTP.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown did not complete", "timeout", conf.HTTP.ShutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("close server: %w", err)
			}
		}
		log.Info("server stopped")
		return nil
	}
}

func openStore(ctx context.Context, conf *config.Config, log *slog.Logger) (app.Store, func() error, error) {
	switch conf.Store.Kind {
	case config.StoreRedis:
		rs, err := redis.Open(ctx, conf.Redis.Addr(), conf.Redis.Password, conf.Redis.DB,
			redis.WithTTL(conf.Store.SessionTTL),
			redis.WithPrefix(conf.Redis.Prefix),
		)
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to redis", "addr", conf.Redis.Addr(), "db", conf.Redis.DB)
		return rs, rs.Close, nil
	default:
		return memory.New(), func() error { return nil }, nil
	}
}
