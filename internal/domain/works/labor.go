package works

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DayType is the length of a logged work day
type DayType string

const (
	DayTypeFull DayType = "dia_completo"
	DayTypeHalf DayType = "medio_dia"
)

var halfDay = decimal.RequireFromString("0.5")

// IsValid checks if the day type is known
func (d DayType) IsValid() bool {
	return d == DayTypeFull || d == DayTypeHalf
}

// Weight returns the fraction of a daily rate the day costs
func (d DayType) Weight() decimal.Decimal {
	if d == DayTypeHalf {
		return halfDay
	}
	return decimal.NewFromInt(1)
}

// Worker is a field worker paid per day
type Worker struct {
	shared.BaseAggregateRoot
	Name      string
	DailyRate decimal.Decimal
	Active    bool
}

// NewWorker creates an active worker
func NewWorker(name string, dailyRate decimal.Decimal) (*Worker, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Worker name cannot be empty")
	}
	if !dailyRate.IsPositive() {
		return nil, shared.NewDomainError("INVALID_RATE", "Worker daily rate must be positive")
	}
	return &Worker{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		DailyRate:         dailyRate,
		Active:            true,
	}, nil
}

// WorkEntry is a worker's daily log on a task (parte de trabajo)
type WorkEntry struct {
	shared.BaseEntity
	TaskID   uuid.UUID
	WorkerID uuid.UUID
	Date     time.Time
	DayType  DayType
}

// NewWorkEntry creates a work log entry
func NewWorkEntry(taskID, workerID uuid.UUID, date time.Time, dayType DayType) (*WorkEntry, error) {
	if taskID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TASK", "Task ID cannot be empty")
	}
	if workerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WORKER", "Worker ID cannot be empty")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Work date is required")
	}
	if !dayType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DAY_TYPE", "Day type must be dia_completo or medio_dia")
	}
	return &WorkEntry{
		BaseEntity: shared.NewBaseEntity(),
		TaskID:     taskID,
		WorkerID:   workerID,
		Date:       date,
		DayType:    dayType,
	}, nil
}

// Cost returns what the entry costs at the given daily rate
func (e WorkEntry) Cost(dailyRate decimal.Decimal) decimal.Decimal {
	return e.DayType.Weight().Mul(dailyRate)
}
