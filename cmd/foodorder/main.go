// Food order API server
//
// Menu and order management with live order status streams over SSE.
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

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/syp1xd/food-ordering-app/api"
	"github.com/syp1xd/food-ordering-app/config"
	fiberRoutes "github.com/syp1xd/food-ordering-app/routes/fiber"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "foodorder",
		Short:         "Food order management API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configFile)
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configFile)
		},
	})

	var seedFile string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the menu if it is empty",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd.Context(), configFile, seedFile)
		},
	}
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML menu file (defaults to the built-in menu)")
	root.AddCommand(seedCmd)

	return root
}

func runSeed(ctx context.Context, configFile, seedFile string) error {
	cfg, err := Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	services, err := cfg.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if err := services.Close(); err != nil {
			services.Logger.Error("Error closing services", slog.String("error", err.Error()))
		}
	}()

	if seedFile == "" {
		seedFile = cfg.Seed.File
	}
	n, err := services.SeedMenuFrom(ctx, seedFile)
	if err != nil {
		return fmt.Errorf("failed to seed menu: %w", err)
	}

	services.Logger.Info("Menu seeded", slog.Int("items", n))
	return nil
}

func runServe(ctx context.Context, configFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	services, err := cfg.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	log := services.Logger
	defer func() {
		if err := services.Close(); err != nil {
			log.Error("Error closing services", slog.String("error", err.Error()))
		}
	}()

	log.Info("Starting order service",
		slog.String("version", version),
		slog.String("log_level", cfg.GetLogLevel()),
		slog.String("engine", string(cfg.GetEngine())))

	n, err := services.SeedMenu(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed menu: %w", err)
	}
	if n > 0 {
		log.Info("Seeded menu", slog.Int("items", n))
	}

	// Streams are bound to this context so shutdown can end them
	streamCtx, cancelStreams := context.WithCancel(ctx)
	defer cancelStreams()

	dashboard := NewDashboard(services)

	var srv server
	switch cfg.GetEngine() {
	case config.EngineEcho:
		srv = newEchoServer(services, dashboard)
	default:
		srv = newFiberServer(streamCtx, services, dashboard)
	}

	log.Info("Starting HTTP server", slog.String("address", cfg.Server.Address))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Listen(cfg.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	log.Info("Order service started successfully")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		log.Info("Received shutdown signal")
	case err := <-errCh:
		log.Error("Server error", slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
		log.Info("Context canceled")
	}

	// Graceful shutdown
	log.Info("Shutting down gracefully")

	// End every open stream before waiting on connections to drain
	cancelStreams()
	if err := services.Bus.Close(); err != nil {
		log.Error("Error closing event bus", slog.String("error", err.Error()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", slog.String("error", err.Error()))
	}

	log.Info("Shutdown complete")
	return nil
}

// server is the part of an HTTP engine the run loop needs
type server interface {
	Listen(addr string) error
	Shutdown(ctx context.Context) error
}

type fiberServer struct {
	app *fiber.App
}

func newFiberServer(streamCtx context.Context, services *config.Services, dashboard http.Handler) *fiberServer {
	cfg := services.Config

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
	})

	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${method} ${path} - ${status} (${latency})\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "*",
		AllowMethods: "GET,POST,PATCH,OPTIONS",
	}))

	routes := fiberRoutes.NewRoutes(fiberRoutes.Config{
		Service:     services.OrderService,
		Store:       services.Store,
		Logger:      services.Logger,
		BaseContext: streamCtx,
	})

	app.Get("/", routes.HandleGetRoot)
	app.Get("/health", routes.HandleGetHealth)
	app.Get("/status", adaptor.HTTPHandler(dashboard))

	routes.Register(app)

	return &fiberServer{app: app}
}

func (s *fiberServer) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *fiberServer) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

type echoServer struct {
	srv *api.Server
}

func newEchoServer(services *config.Services, dashboard http.Handler) *echoServer {
	cfg := services.Config

	return &echoServer{srv: api.NewServer(api.Config{
		Service:      services.OrderService,
		Store:        services.Store,
		Logger:       services.Logger,
		Dashboard:    dashboard,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})}
}

func (s *echoServer) Listen(addr string) error {
	return s.srv.Start(addr)
}

func (s *echoServer) Shutdown(ctx context.Context) error {
	return s.srv.Stop(ctx)
}
