package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/todo-graphql-demo/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
)

// Config holds the HTTP server settings.
type Config struct {
	Port           int
	AllowedOrigins []string
	// AccessLog enables per-request access logging.
	AccessLog bool
}

// APIModule is the driving adapter that serves the GraphQL endpoint.
// It calls into the task module via the TaskPort interface.
type APIModule struct {
	cfg      Config
	app      *fiber.App
	schema   graphql.Schema
	taskPort task.TaskPort
	logger   types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(cfg Config, moduleLogger types.Logger) *APIModule {
	return &APIModule{
		cfg:    cfg,
		logger: moduleLogger,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"task"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "task":
		m.taskPort = task.NewTaskAdapter(container)
	}
}

// Start builds the GraphQL schema and starts the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.taskPort == nil {
		return fmt.Errorf("taskPort dependency not set")
	}

	if err := m.setup(); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", m.cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			errCh <- err
		}
	}()

	// Catch immediate startup errors such as a port already in use.
	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("HTTP server started", "addr", addr)
	return nil
}

// setup creates the schema and the Fiber app without listening.
func (m *APIModule) setup() error {
	schema, err := NewSchema(m.taskPort)
	if err != nil {
		return fmt.Errorf("failed to build GraphQL schema: %w", err)
	}
	m.schema = schema

	m.app = fiber.New(fiber.Config{
		AppName:               "Todo GraphQL API",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	if m.cfg.AccessLog {
		m.app.Use(logger.New(logger.Config{
			Format: "[${time}] ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	m.app.Use(cors.New(corsConfig(m.cfg.AllowedOrigins)))

	m.setupRoutes()
	return nil
}

// corsConfig allows credentials unless every origin is allowed.
func corsConfig(origins []string) cors.Config {
	allowOrigins := strings.Join(origins, ",")
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	return cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: allowOrigins != "*",
	}
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	m.logger.Info("HTTP server stopped")
	return nil
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	if m.app == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "not started",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"port": m.cfg.Port,
		},
	}
}

// errorHandler renders Fiber errors as JSON.
func (m *APIModule) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		m.logger.Error("Unhandled request error",
			"path", c.Path(),
			"request_id", c.Locals("requestid"),
			"error", err)
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   errorLabel(code),
		Message: message,
	})
}

// errorLabel maps an HTTP status to the error field of ErrorResponse.
func errorLabel(code int) string {
	switch {
	case code == fiber.StatusNotFound:
		return "not_found"
	case code == fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	case code >= 400 && code < 500:
		return "request_error"
	default:
		return "server_error"
	}
}
