package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/heshamdawsha976/sen2/internal/config"
	"github.com/heshamdawsha976/sen2/internal/db"
	orderHandler "github.com/heshamdawsha976/sen2/internal/handler/http"
	"github.com/heshamdawsha976/sen2/internal/order"
	"github.com/heshamdawsha976/sen2/internal/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the order API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log.Info().Str("store", cfg.App.StoreDriver).Msg("Order desk starting...")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	service, err := newService(cfg, repo)
	if err != nil {
		return err
	}

	limiter := ratelimit.New(cfg.RateLimit.Window, cfg.RateLimit.MaxRequests)
	go limiter.Run(ctx, cfg.RateLimit.SweepInterval)

	router := orderHandler.NewRouter(orderHandler.NewOrderHandler(service), limiter)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (order.Repository, func(), error) {
	if cfg.App.StoreDriver == config.StoreDriverMemory {
		log.Warn().Msg("Using in-memory order store, data is lost on restart")
		return order.NewMemoryRepository(), func() {}, nil
	}

	if cfg.Postgres.AutoMigrate {
		if err := db.Migrate(cfg.Postgres, 0); err != nil {
			return nil, nil, err
		}
	}

	dbConn, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return order.NewRepository(dbConn.Pool), dbConn.Close, nil
}

func newService(cfg *config.Config, repo order.Repository) (order.Service, error) {
	price, err := cfg.UnitPrice()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return order.NewService(repo,
		order.WithUnitPrice(price),
		order.WithLocation(loc),
		order.WithConfirmer(order.NewConfirmer(cfg.Shop.WhatsAppNumber, cfg.Shop.ProductName, price)),
	), nil
}
