package types

import (
	"time"

	"github.com/google/uuid"
)

type TodoPriority string

const (
	TodoPriorityLow    TodoPriority = "low"
	TodoPriorityMedium TodoPriority = "medium"
	TodoPriorityHigh   TodoPriority = "high"
)

// Valid reports whether p is one of the known priority levels.
func (p TodoPriority) Valid() bool {
	switch p {
	case TodoPriorityLow, TodoPriorityMedium, TodoPriorityHigh:
		return true
	}
	return false
}

// Todo represents a single task owned by exactly one user.
type Todo struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"userId"`                // Owning user. Immutable after creation.
	Title       string       `json:"title"`                 // Non-empty.
	Description *string      `json:"description,omitempty"` // Optional free text.
	DueDate     *time.Time   `json:"dueDate,omitempty"`     // Optional deadline.
	Priority    TodoPriority `json:"priority"`              // low | medium | high, defaults to medium.
	Completed   bool         `json:"completed"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// CreateTodoParams is the request body for creating a todo.
type CreateTodoParams struct {
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
	Priority    *TodoPriority `json:"priority,omitempty"`
}

// UpdateTodoParams is the allow-listed set of mutable fields for a partial
// update. Pointer fields distinguish "not supplied" from a zero value; the
// owner and id can never appear here.
type UpdateTodoParams struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
	Priority    *TodoPriority `json:"priority,omitempty"`
	Completed   *bool         `json:"completed,omitempty"`
}
