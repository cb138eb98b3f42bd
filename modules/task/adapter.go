package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/todo-graphql-demo/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter implements TaskPort over the task module's request-reply services.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// call invokes service on container and decodes the reply into resp.
func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

// CreateTask creates a new task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error) {
	var resp TaskReply
	if err := call(ctx, a.container, ServiceCreateTask, req, &resp); err != nil {
		return nil, err
	}
	return unwrapTaskReply(resp)
}

// GetTask retrieves a task by ID. A missing task yields (nil, nil).
func (a *taskAdapter) GetTask(ctx context.Context, id int) (*TaskResponse, error) {
	var resp TaskReply
	if err := call(ctx, a.container, ServiceGetTask, &GetTaskRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return unwrapTaskReply(resp)
}

// ListTasks lists tasks newest first, optionally filtered by status.
func (a *taskAdapter) ListTasks(ctx context.Context, status *domain.Status) ([]TaskResponse, error) {
	var resp ListTasksResponse
	if err := call(ctx, a.container, ServiceListTasks, &ListTasksRequest{Status: status}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, mapServiceError(resp.Error)
	}
	if resp.Tasks == nil {
		return []TaskResponse{}, nil
	}
	return resp.Tasks, nil
}

// UpdateTask replaces a task's title and description.
func (a *taskAdapter) UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error) {
	var resp TaskReply
	if err := call(ctx, a.container, ServiceUpdateTask, req, &resp); err != nil {
		return nil, err
	}
	return unwrapTaskReply(resp)
}

// UpdateTaskStatus sets a task's status.
func (a *taskAdapter) UpdateTaskStatus(ctx context.Context, req *UpdateTaskStatusRequest) (*TaskResponse, error) {
	var resp TaskReply
	if err := call(ctx, a.container, ServiceUpdateTaskStatus, req, &resp); err != nil {
		return nil, err
	}
	return unwrapTaskReply(resp)
}

// DeleteTask deletes a task and reports whether it existed.
func (a *taskAdapter) DeleteTask(ctx context.Context, id int) (bool, error) {
	var resp DeleteTaskResponse
	if err := call(ctx, a.container, ServiceDeleteTask, &DeleteTaskRequest{ID: id}, &resp); err != nil {
		return false, err
	}
	if resp.Error != nil {
		return false, mapServiceError(resp.Error)
	}
	return resp.Deleted, nil
}

// Health fetches the task store health.
func (a *taskAdapter) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := call(ctx, a.container, ServiceStoreHealth, &HealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func unwrapTaskReply(resp TaskReply) (*TaskResponse, error) {
	if resp.Error != nil {
		return nil, mapServiceError(resp.Error)
	}
	return resp.Task, nil
}

// mapServiceError converts a reply error payload back to a domain error.
func mapServiceError(serr *ServiceError) error {
	switch serr.Code {
	case ErrorCodeValidation:
		return &domain.ValidationError{Field: serr.Field, Message: serr.Message}
	case ErrorCodeNotFound:
		return &domain.NotFoundError{ID: serr.ID}
	case ErrorCodeUnavailable:
		return &domain.UnavailableError{Cause: serr.Message}
	default:
		return fmt.Errorf("task service error [%s]: %s", serr.Code, serr.Message)
	}
}
