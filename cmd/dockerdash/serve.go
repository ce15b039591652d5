package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"dockerdash/internal/collector"
	"dockerdash/internal/config"
	"dockerdash/internal/handler"
	"dockerdash/internal/hub"
	"dockerdash/internal/metrics"
	"dockerdash/internal/service"
	"dockerdash/internal/watcher"
)

var (
	listenAddr  string
	withCollect bool

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the topology API and event stream",
		RunE:  runServe,
	}
)

func init() {
	serveCmd.Flags().StringVarP(&listenAddr, "addr", "a", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().BoolVar(&withCollect, "collect", false, "run the periodic collector even if disabled in config")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if withCollect {
		cfg.Collector.Enabled = true
	}

	log.Info("Starting dockerdash server...")
	for _, line := range strings.Split(cfg.Summary(), "\n") {
		log.Info(line)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	m := metrics.New()

	// Connect event bus to SSE hub
	eventBus := service.NewEventBus()
	sseHub := hub.New()
	go sseHub.Run(ctx)
	m.RegisterClientGauge(sseHub.ClientCount)

	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventChan:
				sseHub.Broadcast(event)
			}
		}
	}()

	graphSvc := service.NewGraphService(repo, eventBus, policyFromConfig(cfg), m)

	if cfgPath != "" {
		w := watcher.New(cfgPath, func() { reloadConfig(cfgPath, graphSvc) })
		go func() {
			if err := w.Watch(ctx); err != nil {
				log.WithError(err).Warn("Config watcher stopped")
			}
		}()
	}

	var poller *collector.Poller
	if cfg.Collector.Enabled {
		c, cleanup, err := newCollector(cfg)
		if err != nil {
			return err
		}
		defer cleanup()
		poller = collector.NewPoller(c, graphSvc, m, cfg.Collector.Interval.Duration())
		poller.Start(ctx)
	}

	mux := http.NewServeMux()
	handler.NewGraphHandler(graphSvc).Register(mux)
	mux.Handle("GET /events", sseHub)
	mux.Handle("GET /metrics", m.Handler())

	server := &http.Server{
		Addr:        cfg.ListenAddr,
		Handler:     handler.Chain(mux, handler.Recover, handler.CORS, handler.Logger(m)),
		ReadTimeout: 10 * time.Second,
		// WriteTimeout stays unset so /events streams are not cut off
		IdleTimeout: 60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down server...")
	if poller != nil {
		poller.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Server shutdown error")
	}

	log.Info("Server stopped")
	return nil
}

// reloadConfig applies graph and retention settings from a changed config
// file. Listen address, database and collector changes need a restart.
func reloadConfig(path string, svc *service.GraphService) {
	cfg, _, err := config.LoadFromPath(path)
	if err != nil {
		log.WithError(err).Warn("Ignoring invalid config change")
		return
	}
	if logLevel == "" {
		log.SetLevel(cfg.Level())
	}
	if err := svc.SetPolicy(policyFromConfig(cfg)); err != nil {
		log.WithError(err).Warn("Ignoring invalid graph policy")
		return
	}
	log.WithField("path", path).Info("Config reloaded")
}
