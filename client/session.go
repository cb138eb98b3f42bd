package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrBlankTitle is returned before any request when the title is blank.
var ErrBlankTitle = errors.New("title is required")

// API is the subset of Client used by a Session.
type API interface {
	GetAllTasks(ctx context.Context) ([]Task, error)
	CreateTask(ctx context.Context, title string, description *string) (*Task, error)
	UpdateTask(ctx context.Context, id int, title string, description *string) (*Task, error)
	UpdateTaskStatus(ctx context.Context, id int, status Status) (*Task, error)
	DeleteTask(ctx context.Context, id int) (bool, error)
}

var _ API = (*Client)(nil)

// Session holds the local task list and reconciles it after each
// successful call. Failed calls leave the list untouched.
type Session struct {
	api API

	mu    sync.RWMutex
	tasks []Task
}

// NewSession creates an empty Session.
func NewSession(api API) *Session {
	return &Session{api: api, tasks: []Task{}}
}

// Tasks returns a copy of the local list.
func (s *Session) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Refresh replaces the local list with the server's.
func (s *Session) Refresh(ctx context.Context) error {
	tasks, err := s.api.GetAllTasks(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	return nil
}

// Create creates a task and prepends it. An empty description is sent as absent.
func (s *Session) Create(ctx context.Context, title, description string) (*Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrBlankTitle
	}

	t, err := s.api.CreateTask(ctx, title, optional(description))
	if err != nil {
		return nil, err
	}
	s.apply(func(tasks []Task) []Task { return Prepend(tasks, *t) })
	return t, nil
}

// Edit replaces the title and description of a task.
func (s *Session) Edit(ctx context.Context, id int, title, description string) (*Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrBlankTitle
	}

	t, err := s.api.UpdateTask(ctx, id, title, optional(description))
	if err != nil {
		return nil, err
	}
	s.apply(func(tasks []Task) []Task { return Replace(tasks, *t) })
	return t, nil
}

// SetStatus sets the status of a task.
func (s *Session) SetStatus(ctx context.Context, id int, status Status) (*Task, error) {
	t, err := s.api.UpdateTaskStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.apply(func(tasks []Task) []Task { return Replace(tasks, *t) })
	return t, nil
}

// Toggle flips the status of a task in the local list.
func (s *Session) Toggle(ctx context.Context, id int) (*Task, error) {
	s.mu.RLock()
	current, ok := Find(s.tasks, id)
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("task %d is not in the local list", id)
	}
	return s.SetStatus(ctx, id, current.Status.Toggled())
}

// Delete deletes a task and removes it locally. The result reports
// whether the server still had it.
func (s *Session) Delete(ctx context.Context, id int) (bool, error) {
	deleted, err := s.api.DeleteTask(ctx, id)
	if err != nil {
		return false, err
	}
	s.apply(func(tasks []Task) []Task { return Remove(tasks, id) })
	return deleted, nil
}

func (s *Session) apply(f func([]Task) []Task) {
	s.mu.Lock()
	s.tasks = f(s.tasks)
	s.mu.Unlock()
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
