package gdelt

import (
	"time"

	"github.com/google/uuid"
)

const (
	QueryRunStatusOK             = "ok"
	QueryRunStatusEmpty          = "empty"
	QueryRunStatusError          = "error"
	QueryRunStatusBudgetExceeded = "budget_exceeded"
)

// QueryRun is the audit row written for every outbound warehouse call.
type QueryRun struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EventDate  string    `gorm:"not null;index;column:event_date" json:"event_date"`
	Status     string    `gorm:"not null;column:status" json:"status"`
	RowCount   int       `gorm:"not null;default:0;column:row_count" json:"row_count"`
	DurationMS int64     `gorm:"not null;default:0;column:duration_ms" json:"duration_ms"`
	Error      string    `gorm:"column:error" json:"error,omitempty"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}

func (QueryRun) TableName() string { return "gdelt_query_run" }
