package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/example/todo-graphql-demo/domain/task"
	"github.com/go-monolith/mono"
)

// createTask handles the create-task service request.
func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskReply, error) {
	repo, err := m.store()
	if err != nil {
		return taskErrorReply(err)
	}

	task, err := repo.Insert(ctx, strings.TrimSpace(req.Title), trimmed(req.Description))
	if err != nil {
		return taskErrorReply(err)
	}

	m.logger.Debug("Task created", "id", task.ID)
	resp := toTaskResponse(task)
	return TaskReply{Task: &resp}, nil
}

// getTask handles the get-task service request.
func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskReply, error) {
	repo, err := m.store()
	if err != nil {
		return taskErrorReply(err)
	}

	task, err := repo.FindByID(ctx, req.ID)
	if err != nil {
		return TaskReply{}, err
	}
	if task == nil {
		return TaskReply{}, nil
	}

	resp := toTaskResponse(task)
	return TaskReply{Task: &resp}, nil
}

// listTasks handles the list-tasks service request.
func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	repo, err := m.store()
	if err != nil {
		serr, err := toServiceError(err)
		return ListTasksResponse{Tasks: []TaskResponse{}, Error: serr}, err
	}

	if req.Status != nil && !req.Status.Valid() {
		return ListTasksResponse{
			Tasks: []TaskResponse{},
			Error: &ServiceError{
				Code:    ErrorCodeValidation,
				Field:   "status",
				Message: fmt.Sprintf("unknown status %q", *req.Status),
			},
		}, nil
	}

	tasks, err := repo.FindAll(ctx, req.Status)
	if err != nil {
		return ListTasksResponse{}, err
	}

	response := ListTasksResponse{
		Tasks: make([]TaskResponse, 0, len(tasks)),
		Total: len(tasks),
	}
	for _, task := range tasks {
		response.Tasks = append(response.Tasks, toTaskResponse(task))
	}
	return response, nil
}

// updateTask handles the update-task service request.
// The description is replaced, so an absent description clears it.
func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskReply, error) {
	repo, err := m.store()
	if err != nil {
		return taskErrorReply(err)
	}

	title := strings.TrimSpace(req.Title)
	changes := domain.Changes{
		Title:            &title,
		Description:      trimmed(req.Description),
		ClearDescription: req.Description == nil,
	}

	task, err := repo.Update(ctx, req.ID, changes)
	if err != nil {
		return taskErrorReply(err)
	}

	resp := toTaskResponse(task)
	return TaskReply{Task: &resp}, nil
}

// updateTaskStatus handles the update-task-status service request.
func (m *TaskModule) updateTaskStatus(ctx context.Context, req UpdateTaskStatusRequest, _ *mono.Msg) (TaskReply, error) {
	repo, err := m.store()
	if err != nil {
		return taskErrorReply(err)
	}

	status := req.Status
	task, err := repo.Update(ctx, req.ID, domain.Changes{Status: &status})
	if err != nil {
		return taskErrorReply(err)
	}

	m.logger.Debug("Task status updated", "id", task.ID, "status", string(task.Status))
	resp := toTaskResponse(task)
	return TaskReply{Task: &resp}, nil
}

// deleteTask handles the delete-task service request.
// A missing id is reported as Deleted=false, not as an error.
func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	repo, err := m.store()
	if err != nil {
		serr, err := toServiceError(err)
		return DeleteTaskResponse{ID: req.ID, Error: serr}, err
	}

	deleted, err := repo.Delete(ctx, req.ID)
	if err != nil {
		return DeleteTaskResponse{ID: req.ID}, err
	}
	return DeleteTaskResponse{Deleted: deleted, ID: req.ID}, nil
}

// storeHealth handles the store-health service request.
func (m *TaskModule) storeHealth(ctx context.Context, _ HealthRequest, _ *mono.Msg) (HealthResponse, error) {
	status := m.Health(ctx)
	return HealthResponse{
		Healthy:   status.Healthy,
		Message:   status.Message,
		Details:   status.Details,
		Timestamp: time.Now().UTC(),
	}, nil
}

// taskErrorReply turns domain failures into a reply payload and passes
// everything else through as a service error.
func taskErrorReply(err error) (TaskReply, error) {
	serr, err := toServiceError(err)
	return TaskReply{Error: serr}, err
}

func toServiceError(err error) (*ServiceError, error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return &ServiceError{Code: ErrorCodeValidation, Field: verr.Field, Message: verr.Message}, nil
	}

	var nferr *domain.NotFoundError
	if errors.As(err, &nferr) {
		return &ServiceError{Code: ErrorCodeNotFound, ID: nferr.ID, Message: nferr.Error()}, nil
	}

	var uerr *domain.UnavailableError
	if errors.As(err, &uerr) {
		return &ServiceError{Code: ErrorCodeUnavailable, Message: uerr.Cause}, nil
	}

	return nil, err
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// toTaskResponse converts a domain Task to a TaskResponse.
func toTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}
