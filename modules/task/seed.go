package task

import (
	"context"
	"fmt"
	"time"

	domain "github.com/example/todo-graphql-demo/domain/task"
	"gorm.io/gorm"
)

type seedTask struct {
	id          int
	title       string
	description string
}

var seedTasks = []seedTask{
	{1, "Welcome to TodoApp", "This is your first task. Try marking it as completed!"},
	{2, "Create a new task", "Use the form above to create your own tasks"},
}

// Seed inserts the starter tasks into an empty store.
func Seed(ctx context.Context, db *gorm.DB, now time.Time) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range seedTasks {
			description := s.description
			task := &domain.Task{
				ID:          s.id,
				Title:       s.title,
				Description: &description,
				Status:      domain.StatusPending,
				CreatedAt:   now,
			}
			if err := tx.Create(task).Error; err != nil {
				return fmt.Errorf("failed to seed task %d: %w", s.id, err)
			}
		}

		// Explicit ids do not advance a postgres serial sequence.
		if tx.Dialector.Name() == DriverPostgres {
			if err := tx.Exec(
				"SELECT setval(pg_get_serial_sequence('tasks', 'id'), (SELECT MAX(id) FROM tasks))",
			).Error; err != nil {
				return fmt.Errorf("failed to reset task id sequence: %w", err)
			}
		}
		return nil
	})
}
