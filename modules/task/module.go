package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/example/todo-graphql-demo/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the task store settings.
type Config struct {
	Driver string
	// Path is the SQLite database file, or ":memory:".
	Path string
	// DSN is the PostgreSQL connection string.
	DSN   string
	Debug bool
}

// TaskModule owns the task store and exposes it as request-reply services.
//
// If the store cannot be opened, migrated or seeded, the module still
// starts: services answer with a store_unavailable error and Health
// reports the failure.
type TaskModule struct {
	cfg     Config
	db      *gorm.DB
	repo    *Repository
	initErr error
	logger  types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a new TaskModule.
func NewModule(cfg Config, logger types.Logger) *TaskModule {
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if cfg.Driver == DriverSQLite && cfg.Path == "" {
		cfg.Path = "todo.db"
	}
	return &TaskModule{
		cfg:    cfg,
		logger: logger,
	}
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// Health reports whether the task store is reachable.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.initErr != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database initialization failed: %v", m.initErr),
			Details: m.details(),
		}
	}
	if m.repo == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	if err := m.repo.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
			Details: m.details(),
		}
	}

	details := m.details()
	if n, err := m.repo.Count(ctx); err == nil {
		details["tasks"] = n
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: details,
	}
}

func (m *TaskModule) details() map[string]any {
	details := map[string]any{"driver": m.cfg.Driver}
	if m.cfg.Driver == DriverSQLite {
		details["path"] = m.cfg.Path
	}
	return details
}

// RegisterServices registers request-reply services in the service container.
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCreateTask, json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreateTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetTask, json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListTasks, json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListTasks, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceUpdateTask, json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceUpdateTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceUpdateTaskStatus, json.Unmarshal, json.Marshal, m.updateTaskStatus,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceUpdateTaskStatus, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDeleteTask, json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDeleteTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceStoreHealth, json.Unmarshal, json.Marshal, m.storeHealth,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceStoreHealth, err)
	}

	m.logger.Info("Registered services",
		"services", []string{
			ServiceCreateTask, ServiceGetTask, ServiceListTasks, ServiceUpdateTask,
			ServiceUpdateTaskStatus, ServiceDeleteTask, ServiceStoreHealth,
		})
	return nil
}

// Start opens the database, runs migrations and seeds a fresh store.
func (m *TaskModule) Start(ctx context.Context) error {
	m.logger.Info("Connecting to database", "driver", m.cfg.Driver, "path", m.cfg.Path)

	if err := m.initStore(ctx); err != nil {
		m.initErr = err
		m.logger.Error("Task store unavailable, starting in degraded mode", "error", err)
		return nil
	}

	m.logger.Info("Task module started")
	return nil
}

func (m *TaskModule) initStore(ctx context.Context) error {
	dialector, err := m.dialector()
	if err != nil {
		return err
	}

	logLevel := logger.Silent
	if m.cfg.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if m.cfg.Driver == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		// A single connection keeps ":memory:" databases shared and
		// serializes SQLite writers.
		sqlDB.SetMaxOpenConns(1)
	}

	fresh := !db.WithContext(ctx).Migrator().HasTable(&domain.Task{})
	if err := db.WithContext(ctx).AutoMigrate(&domain.Task{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if fresh {
		if err := Seed(ctx, db, time.Now().UTC()); err != nil {
			return err
		}
		m.logger.Info("Seeded initial tasks", "count", len(seedTasks))
	}

	m.repo = NewRepository(db)
	return nil
}

func (m *TaskModule) dialector() (gorm.Dialector, error) {
	switch m.cfg.Driver {
	case DriverSQLite:
		return sqlite.Open(m.cfg.Path), nil
	case DriverPostgres:
		if m.cfg.DSN == "" {
			return nil, fmt.Errorf("postgres driver requires a DSN")
		}
		return postgres.Open(m.cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", m.cfg.Driver)
	}
}

// store returns the repository, or ErrStoreUnavailable in degraded mode.
func (m *TaskModule) store() (*Repository, error) {
	if m.repo == nil {
		if m.initErr != nil {
			return nil, &domain.UnavailableError{Cause: m.initErr.Error()}
		}
		return nil, &domain.UnavailableError{Cause: "database not initialized"}
	}
	return m.repo, nil
}

// Stop closes the database connection.
func (m *TaskModule) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}

	m.logger.Info("Closing database connection")

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	m.db = nil
	m.repo = nil
	return nil
}
