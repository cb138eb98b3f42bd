package task

import "time"

// Field limits enforced before a task is persisted.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// Status represents the state of a task. It is persisted by name.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
)

// Valid reports whether s is one of the two known statuses.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// ParseStatus accepts the stored name or the GraphQL enum spelling.
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "Pending", "PENDING", "pending":
		return StatusPending, true
	case "Completed", "COMPLETED", "completed":
		return StatusCompleted, true
	}
	return "", false
}

// Task is the core domain entity representing a todo item.
type Task struct {
	ID          int        `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description *string    `gorm:"size:1000" json:"description,omitempty"`
	Status      Status     `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
}

// TableName returns the table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}

// Changes is a partial update. Nil members are left untouched.
type Changes struct {
	Title       *string
	Description *string
	// ClearDescription removes the description when Description is nil.
	ClearDescription bool
	Status           *Status
}

// Empty reports whether the changes would not touch any field.
func (c Changes) Empty() bool {
	return c.Title == nil && c.Description == nil && !c.ClearDescription && c.Status == nil
}

// Apply copies the present members of c onto t.
func (c Changes) Apply(t *Task) {
	if c.Title != nil {
		t.Title = *c.Title
	}
	switch {
	case c.Description != nil:
		d := *c.Description
		t.Description = &d
	case c.ClearDescription:
		t.Description = nil
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
}
