package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Goal horizons.
const (
	GoalDaily     = "daily"
	GoalWeekly    = "weekly"
	GoalMonthly   = "monthly"
	GoalQuarterly = "quarterly"
	GoalYearly    = "yearly"
)

const GoalStatusActive = "active"

// Goal tracks progress toward a target over a date range.
type Goal struct {
	bun.BaseModel `bun:"table:goals,alias:g"`

	ID           string    `bun:"id,pk,type:varchar(36)" json:"id"`
	UserID       string    `bun:"user_id,notnull,type:varchar(36)" json:"-"`
	Title        string    `bun:"title,notnull" json:"title"`
	Description  *string   `bun:"description,type:text" json:"description"`
	Type         string    `bun:"type,notnull" json:"type"`
	TargetValue  *float64  `bun:"target_value" json:"target_value"`
	CurrentValue float64   `bun:"current_value,notnull" json:"current_value"`
	Unit         *string   `bun:"unit" json:"unit"`
	StartDate    time.Time `bun:"start_date,notnull" json:"start_date"`
	EndDate      time.Time `bun:"end_date,notnull" json:"end_date"`
	Status       string    `bun:"status,notnull" json:"status"`
	Progress     int       `bun:"progress,notnull" json:"progress"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,notnull" json:"updated_at"`
}
