package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gigsafe/internal/handler"
	"gigsafe/internal/hub"
	"gigsafe/internal/metrics"
	"gigsafe/internal/service"
	"gigsafe/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, event stream and content watcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides server.addr)")
	return cmd
}

func (a *app) serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := a.logger
	m := metrics.New()

	st, err := a.openStack(m)
	if err != nil {
		return err
	}
	defer st.Close()
	logger.Info("database opened", zap.String("path", a.cfg.Database.Path))

	if dir := a.cfg.Content.Dir; dir != "" {
		a.importDir(ctx, st.content, dir)
	}

	sseHub := hub.New(logger, hub.WithClientCounter(m.SetSSEClients))
	events := make(chan service.Event, 100)
	st.bus.Subscribe(events)
	defer st.bus.Unsubscribe(events)

	router := handler.NewRouter(handler.New(st.content, st.gigs, logger), handler.RouterConfig{
		CORSOrigins: a.cfg.Server.CORSOrigins,
		Events:      sseHub,
		Metrics:     promhttp.Handler(),
		Recorder:    m,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return sseHub.Run(gctx) })
	g.Go(func() error { return hub.Forward(gctx, sseHub, events) })

	if a.cfg.Content.Watch && a.cfg.Content.Dir != "" {
		w := watcher.New(a.cfg.Content.Dir, func(ctx context.Context, path string) {
			a.importFile(ctx, st.content, path)
		}, logger)
		g.Go(func() error { return w.Run(gctx) })
	}

	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

// importDir imports every content file in dir. Failures are logged and do
// not stop the server from starting.
func (a *app) importDir(ctx context.Context, svc *service.ContentService, dir string) {
	files, err := watcher.Files(dir)
	if err != nil {
		a.logger.Warn("skipping initial content import", zap.String("dir", dir), zap.Error(err))
		return
	}
	for _, path := range files {
		a.importFile(ctx, svc, path)
	}
}

func (a *app) importFile(ctx context.Context, svc *service.ContentService, path string) {
	if _, err := svc.ImportFile(ctx, path); err != nil {
		a.logger.Error("content import failed", zap.String("path", path), zap.Error(err))
	}
}
