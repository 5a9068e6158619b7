package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/syp1xd/food-ordering-app/events"
	"github.com/syp1xd/food-ordering-app/events/memory"
	"github.com/syp1xd/food-ordering-app/logging"
	"github.com/syp1xd/food-ordering-app/models"
	"github.com/syp1xd/food-ordering-app/service"
	"github.com/syp1xd/food-ordering-app/service/embedded"
	"github.com/syp1xd/food-ordering-app/store"
	"github.com/syp1xd/food-ordering-app/store/sqlite"
	"github.com/syp1xd/food-ordering-app/telemetry"
	"github.com/syp1xd/food-ordering-app/validator"
)

// Services holds initialized application services.
type Services struct {
	// OrderService is the interface the HTTP layer talks to
	OrderService service.OrderService

	// Internal components
	Embedded  *embedded.Embedded
	Store     store.Store
	Bus       events.Bus
	Validator *validator.Validator
	Telemetry *telemetry.Provider
	Logger    *slog.Logger
	Config    *Config

	logCloser io.Closer
}

// Initialize creates and returns all application services.
func (c *Config) Initialize(ctx context.Context) (*Services, error) {
	logger, logCloser, err := logging.New(c.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	s := &Services{Logger: logger, Config: c, logCloser: logCloser}
	if err := c.initialize(ctx, s); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (c *Config) initialize(ctx context.Context, s *Services) error {
	logger := s.Logger

	logger.Info("Initializing telemetry", slog.String("otlp_endpoint", c.Telemetry.OTLPEndpoint))
	tp, err := telemetry.Setup(ctx, c.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	s.Telemetry = tp

	if c.Database.Type != "sqlite" && c.Database.Type != "" {
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	dbPath, err := expandHome(c.Database.SQLitePath)
	if err != nil {
		return fmt.Errorf("failed to resolve home directory for database: %w", err)
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	logger.Info("Initializing store", slog.String("path", dbPath))
	sqliteStore, err := sqlite.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	s.Store = sqliteStore

	logger.Info("Initializing event bus", slog.String("type", c.Events.Type))
	switch c.Events.Type {
	case "memory", "":
		s.Bus = memory.NewInMemoryBus(
			memory.WithObserver(tp.Bus),
			memory.WithLogger(logger),
		)
	default:
		return fmt.Errorf("unsupported event bus type: %s", c.Events.Type)
	}

	logger.Info("Initializing validator")
	s.Validator = validator.NewValidator(&validator.Policy{
		MaxOrderItems: c.Validator.MaxOrderItems,
		MaxQuantity:   c.Validator.MaxQuantity,
	})

	embeddedService, err := embedded.New(embedded.Config{
		Store:     sqliteStore,
		Bus:       s.Bus,
		Validator: s.Validator,
		Logger:    logger,
		Tracer:    tp.Tracer("github.com/syp1xd/food-ordering-app/service/embedded"),
		Stream: service.SubscribeOptions{
			Snapshot:   c.Stream.SnapshotOnConnect,
			KeepAlive:  c.Stream.KeepAlive,
			BufferSize: c.Events.BufferSize,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create order service: %w", err)
	}
	s.Embedded = embeddedService
	s.OrderService = embeddedService

	return nil
}

// SeedMenu inserts the configured menu when seeding is enabled and the catalog is empty.
func (s *Services) SeedMenu(ctx context.Context) (int, error) {
	if !s.Config.Seed.Enabled {
		return 0, nil
	}
	return s.SeedMenuFrom(ctx, s.Config.Seed.File)
}

// SeedMenuFrom seeds from a YAML file, or the built-in menu when file is empty.
func (s *Services) SeedMenuFrom(ctx context.Context, file string) (int, error) {
	var items []*models.MenuItemCreate
	if file == "" {
		items = embedded.DefaultMenu()
	} else {
		var err error
		if items, err = embedded.LoadMenuFile(file); err != nil {
			return 0, err
		}
	}
	return s.Embedded.Seed(ctx, items)
}

// Close gracefully shuts down all services.
func (s *Services) Close() error {
	if s == nil {
		return nil
	}

	var errs []error

	// Close the bus first so every open stream ends
	if s.Bus != nil {
		if err := s.Bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bus close: %w", err))
		}
	}

	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
	}

	if s.Telemetry != nil {
		if err := s.Telemetry.Shutdown(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
	}

	if s.logCloser != nil {
		if err := s.logCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("log file close: %w", err))
		}
	}

	return errors.Join(errs...)
}

func expandHome(p string) (string, error) {
	if len(p) >= 2 && p[:2] == "~/" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return path.Join(homeDir, p[2:]), nil
	}
	return p, nil
}
