package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/todo-graphql-demo/domain/task"
	"gorm.io/gorm"
)

// Repository provides access to task storage.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Insert validates and saves a new pending task.
func (r *Repository) Insert(ctx context.Context, title string, description *string) (*domain.Task, error) {
	task := &domain.Task{
		Title:       title,
		Description: description,
		Status:      domain.StatusPending,
		CreatedAt:   r.now(),
	}
	if err := domain.Validate(task); err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// FindByID retrieves a task by its ID. A miss returns (nil, nil).
func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// FindAll retrieves all tasks, newest first, optionally filtered by status.
func (r *Repository) FindAll(ctx context.Context, status *domain.Status) ([]*domain.Task, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC").Order("id ASC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	tasks := make([]*domain.Task, 0)
	if err := query.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	return tasks, nil
}

// Update applies changes to an existing task and refreshes UpdatedAt.
// Empty changes return the stored task without writing.
func (r *Repository) Update(ctx context.Context, id int, changes domain.Changes) (*domain.Task, error) {
	var updated domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.NotFoundError{ID: id}
			}
			return fmt.Errorf("failed to find task: %w", err)
		}
		if changes.Empty() {
			return nil
		}

		changes.Apply(&updated)
		if err := domain.Validate(&updated); err != nil {
			return err
		}

		now := r.now()
		if now.Before(updated.CreatedAt) {
			now = updated.CreatedAt
		}
		updated.UpdatedAt = &now

		if err := tx.Save(&updated).Error; err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a task by ID and reports whether a row was removed.
func (r *Repository) Delete(ctx context.Context, id int) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Task{}, "id = ?", id)
	if err := result.Error; err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	return result.RowsAffected > 0, nil
}

// Count returns the number of stored tasks.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Task{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}

// Ping checks the underlying database connection.
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
