package main

import (
	"context"
	"log"
	"os"

	"github.com/example/todo-graphql-demo/config"
	"github.com/example/todo-graphql-demo/modules/api"
	"github.com/example/todo-graphql-demo/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	cfg, err := config.LoadServer(".")
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Println("=== Todo GraphQL Server ===")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", describeDatabase(cfg))

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	taskModule := task.NewModule(task.Config{
		Driver: cfg.DBDriver,
		Path:   cfg.DBPath,
		DSN:    cfg.DatabaseURL,
		Debug:  cfg.DBDebug,
	}, logger.WithModule("task"))

	apiModule := api.NewModule(api.Config{
		Port:           cfg.HTTPPort,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AccessLog:      true,
	}, logger.WithModule("api"))

	// Order: the task store first, then the GraphQL adapter that depends on it.
	app.Register(taskModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg.HTTPPort)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func describeDatabase(cfg *config.Server) string {
	if cfg.DBDriver == task.DriverPostgres {
		return "postgres"
	}
	return "sqlite (" + cfg.DBPath + ")"
}

func printStartupInfo(port int) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("GraphQL endpoint: http://localhost:%d/graphql", port)
	log.Println("  Queries:   getAllTasks, getTasksByStatus(status), getTaskById(id), health")
	log.Println("  Mutations: createTask(input), updateTask(id, input), updateTaskStatus(input), deleteTask(id)")
	log.Printf("Health check:     http://localhost:%d/health", port)
	log.Println("")
	log.Println("Client: go run ./cmd/todoctl --help")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
