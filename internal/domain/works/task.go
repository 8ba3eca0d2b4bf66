package works

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
)

// TaskStatus is the operational status of a maintenance task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pendiente"
	TaskStatusBudgeted   TaskStatus = "presupuestado"
	TaskStatusInProgress TaskStatus = "en_proceso"
	TaskStatusFinished   TaskStatus = "terminado"
	TaskStatusInvoiced   TaskStatus = "facturado"
	TaskStatusSettled    TaskStatus = "liquidado"
)

// IsValid checks if the status is a known TaskStatus
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusBudgeted, TaskStatusInProgress,
		TaskStatusFinished, TaskStatusInvoiced, TaskStatusSettled:
		return true
	}
	return false
}

// String returns the string representation of TaskStatus
func (s TaskStatus) String() string {
	return string(s)
}

// Task is a unit of maintenance work at a building, owned by a supervisor
type Task struct {
	shared.BaseAggregateRoot
	Title        string
	BuildingRef  string
	Status       TaskStatus
	SupervisorID uuid.UUID
}

// NewTask creates a new pending task
func NewTask(title, buildingRef string, supervisorID uuid.UUID) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Task title cannot be empty")
	}
	if len(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Task title cannot exceed 200 characters")
	}
	if supervisorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPERVISOR", "Supervisor ID cannot be empty")
	}

	return &Task{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             title,
		BuildingRef:       strings.TrimSpace(buildingRef),
		Status:            TaskStatusPending,
		SupervisorID:      supervisorID,
	}, nil
}

// ChangeStatus moves the task to an arbitrary known status
func (t *Task) ChangeStatus(status TaskStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown task status %q", status))
	}
	t.Status = status
	t.touch()
	return nil
}

// MarkBudgeted sets the task to presupuestado once one of its final budgets is approved
func (t *Task) MarkBudgeted() {
	if t.Status == TaskStatusPending {
		t.Status = TaskStatusBudgeted
		t.touch()
	}
}

// MarkInvoiced sets the task to facturado when its budget gets invoiced.
// A task already invoiced or settled keeps its status; the result reports a change.
func (t *Task) MarkInvoiced() bool {
	if t.Status == TaskStatusInvoiced || t.Status == TaskStatusSettled {
		return false
	}
	t.Status = TaskStatusInvoiced
	t.touch()
	return true
}

// RollbackToBudgeted undoes invoicing on the task after its last invoice was removed
func (t *Task) RollbackToBudgeted() {
	t.Status = TaskStatusBudgeted
	t.touch()
}

// IsSupervisedBy reports whether the given user supervises the task
func (t *Task) IsSupervisedBy(userID uuid.UUID) bool {
	return t.SupervisorID == userID
}

func (t *Task) touch() {
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}
