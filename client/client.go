// Package client talks to the todo GraphQL API and keeps a local,
// reconciled copy of the task list.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Status is the GraphQL TaskStatus enum value.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// Toggled returns the opposite status.
func (s Status) Toggled() Status {
	if s == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

// Task is the client-side view of a task.
type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

// Health is the result of the health query.
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrTransport is matched by every *TransportError.
var ErrTransport = errors.New("transport error")

// TransportError reports a connection failure or a non-success HTTP status.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	return fmt.Sprintf("transport error: unexpected status %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// GraphQLError carries the messages of a response's errors array.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return strings.Join(e.Messages, "; ")
}

const taskFields = `id title description status createdAt updatedAt`

const (
	queryAllTasks = `query { getAllTasks { ` + taskFields + ` } }`

	queryTasksByStatus = `query ($status: TaskStatus!) { getTasksByStatus(status: $status) { ` + taskFields + ` } }`

	queryTaskByID = `query ($id: Int!) { getTaskById(id: $id) { ` + taskFields + ` } }`

	queryHealth = `query { health { status timestamp } }`

	mutationCreateTask = `mutation ($input: CreateTaskInput!) { createTask(input: $input) { ` + taskFields + ` } }`

	mutationUpdateTask = `mutation ($id: Int!, $input: CreateTaskInput!) { updateTask(id: $id, input: $input) { ` + taskFields + ` } }`

	mutationUpdateTaskStatus = `mutation ($input: UpdateTaskStatusInput!) { updateTaskStatus(input: $input) { ` + taskFields + ` } }`

	mutationDeleteTask = `mutation ($id: Int!) { deleteTask(id: $id) }`
)

// Client issues GraphQL requests over HTTP.
type Client struct {
	endpoint string
	timeout  time.Duration
}

// New creates a Client for the given GraphQL endpoint.
func New(endpoint string, timeout time.Duration) *Client {
	return &Client{endpoint: endpoint, timeout: timeout}
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// do posts a GraphQL request and decodes its data into out.
func (c *Client) do(ctx context.Context, query string, variables map[string]any, out any) error {
	if err := ctx.Err(); err != nil {
		return &TransportError{Err: err}
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Post(c.endpoint).
		UserAgent("todoctl").
		JSON(request{Query: query, Variables: variables})
	if timeout > 0 {
		agent = agent.Timeout(timeout)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return &TransportError{Err: errors.Join(errs...)}
	}
	if code < 200 || code > 299 {
		return &TransportError{StatusCode: code}
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return &TransportError{StatusCode: code, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(resp.Errors) > 0 {
		gqlErr := &GraphQLError{}
		for _, e := range resp.Errors {
			gqlErr.Messages = append(gqlErr.Messages, e.Message)
		}
		return gqlErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// GetAllTasks returns every task, newest first.
func (c *Client) GetAllTasks(ctx context.Context) ([]Task, error) {
	var data struct {
		Tasks []Task `json:"getAllTasks"`
	}
	if err := c.do(ctx, queryAllTasks, nil, &data); err != nil {
		return nil, err
	}
	return nonNil(data.Tasks), nil
}

// GetTasksByStatus returns the tasks with the given status, newest first.
func (c *Client) GetTasksByStatus(ctx context.Context, status Status) ([]Task, error) {
	var data struct {
		Tasks []Task `json:"getTasksByStatus"`
	}
	if err := c.do(ctx, queryTasksByStatus, map[string]any{"status": status}, &data); err != nil {
		return nil, err
	}
	return nonNil(data.Tasks), nil
}

// GetTaskByID returns the task, or nil when it does not exist.
func (c *Client) GetTaskByID(ctx context.Context, id int) (*Task, error) {
	var data struct {
		Task *Task `json:"getTaskById"`
	}
	if err := c.do(ctx, queryTaskByID, map[string]any{"id": id}, &data); err != nil {
		return nil, err
	}
	return data.Task, nil
}

// CreateTask creates a task. A nil description is sent as absent.
func (c *Client) CreateTask(ctx context.Context, title string, description *string) (*Task, error) {
	var data struct {
		Task *Task `json:"createTask"`
	}
	vars := map[string]any{"input": taskInput(title, description)}
	if err := c.do(ctx, mutationCreateTask, vars, &data); err != nil {
		return nil, err
	}
	return data.Task, nil
}

// UpdateTask replaces the title and description of a task.
func (c *Client) UpdateTask(ctx context.Context, id int, title string, description *string) (*Task, error) {
	var data struct {
		Task *Task `json:"updateTask"`
	}
	vars := map[string]any{"id": id, "input": taskInput(title, description)}
	if err := c.do(ctx, mutationUpdateTask, vars, &data); err != nil {
		return nil, err
	}
	return data.Task, nil
}

// UpdateTaskStatus sets the status of a task.
func (c *Client) UpdateTaskStatus(ctx context.Context, id int, status Status) (*Task, error) {
	var data struct {
		Task *Task `json:"updateTaskStatus"`
	}
	vars := map[string]any{"input": map[string]any{"id": id, "status": status}}
	if err := c.do(ctx, mutationUpdateTaskStatus, vars, &data); err != nil {
		return nil, err
	}
	return data.Task, nil
}

// DeleteTask deletes a task and reports whether it existed.
func (c *Client) DeleteTask(ctx context.Context, id int) (bool, error) {
	var data struct {
		Deleted bool `json:"deleteTask"`
	}
	if err := c.do(ctx, mutationDeleteTask, map[string]any{"id": id}, &data); err != nil {
		return false, err
	}
	return data.Deleted, nil
}

// Health queries the server health.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var data struct {
		Health Health `json:"health"`
	}
	if err := c.do(ctx, queryHealth, nil, &data); err != nil {
		return nil, err
	}
	return &data.Health, nil
}

func taskInput(title string, description *string) map[string]any {
	input := map[string]any{"title": title}
	if description != nil {
		input["description"] = *description
	}
	return input
}

func nonNil(tasks []Task) []Task {
	if tasks == nil {
		return []Task{}
	}
	return tasks
}
