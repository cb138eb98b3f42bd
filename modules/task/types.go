package task

import (
	"context"
	"time"

	domain "github.com/example/todo-graphql-demo/domain/task"
)

// Service names registered by the task module.
const (
	ServiceCreateTask       = "create-task"
	ServiceGetTask          = "get-task"
	ServiceListTasks        = "list-tasks"
	ServiceUpdateTask       = "update-task"
	ServiceUpdateTaskStatus = "update-task-status"
	ServiceDeleteTask       = "delete-task"
	ServiceStoreHealth      = "store-health"
)

// Error codes carried in ServiceError.
const (
	ErrorCodeValidation  = "validation_error"
	ErrorCodeNotFound    = "not_found"
	ErrorCodeUnavailable = "store_unavailable"
)

// ServiceError is a domain failure returned inside a reply payload.
type ServiceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	ID      int    `json:"id,omitempty"`
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	ID int `json:"id"`
}

// ListTasksRequest is the request for listing tasks. A nil status lists all.
type ListTasksRequest struct {
	Status *domain.Status `json:"status,omitempty"`
}

// ListTasksResponse is the response containing a list of tasks.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
	Error *ServiceError  `json:"error,omitempty"`
}

// UpdateTaskRequest replaces the title and description of a task.
type UpdateTaskRequest struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// UpdateTaskStatusRequest sets the status of a task.
type UpdateTaskStatusRequest struct {
	ID     int           `json:"id"`
	Status domain.Status `json:"status"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	ID int `json:"id"`
}

// DeleteTaskResponse reports whether a task was actually removed.
type DeleteTaskResponse struct {
	Deleted bool          `json:"deleted"`
	ID      int           `json:"id"`
	Error   *ServiceError `json:"error,omitempty"`
}

// TaskReply wraps a single task. Task is nil when a lookup misses.
type TaskReply struct {
	Task  *TaskResponse `json:"task,omitempty"`
	Error *ServiceError `json:"error,omitempty"`
}

// HealthRequest is the request for the store health check.
type HealthRequest struct{}

// HealthResponse reports store health and the server time.
type HealthResponse struct {
	Healthy   bool           `json:"healthy"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// TaskResponse is the external representation of a task.
type TaskResponse struct {
	ID          int           `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	Status      domain.Status `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   *time.Time    `json:"updated_at,omitempty"`
}

// TaskPort defines the interface for task operations (hexagonal port).
// Driving adapters such as the GraphQL API use it to reach the task module.
type TaskPort interface {
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error)
	GetTask(ctx context.Context, id int) (*TaskResponse, error)
	ListTasks(ctx context.Context, status *domain.Status) ([]TaskResponse, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error)
	UpdateTaskStatus(ctx context.Context, req *UpdateTaskStatusRequest) (*TaskResponse, error)
	DeleteTask(ctx context.Context, id int) (bool, error)
	Health(ctx context.Context) (*HealthResponse, error)
}
