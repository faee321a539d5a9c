package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-intake/internal/server"
	"github.com/goliatone/go-intake/internal/store"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the draft, scoring and flow API",
	Long: `Serves the intake HTTP API backed by the SQL draft store
(INTAKE_DB_DRIVER and INTAKE_DATABASE_URL). Migrations run at startup.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: INTAKE_ADDR or :8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	srv, err := server.New(ctx, store.NewDraftStore(db), cat,
		server.WithLogger(logger),
		server.WithRequestTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("intake api listening", zap.String("addr", addr), zap.String("driver", db.Driver))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down intake api")
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
