package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Habit frequencies.
const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
	FrequencyCustom = "custom"
)

// Habit is a recurring behaviour with a completion streak.
// CompletedDates holds sorted YYYY-MM-DD strings.
type Habit struct {
	bun.BaseModel `bun:"table:habits,alias:h"`

	ID             string     `bun:"id,pk,type:varchar(36)" json:"id"`
	UserID         string     `bun:"user_id,notnull,type:varchar(36)" json:"-"`
	Title          string     `bun:"title,notnull" json:"title"`
	Description    *string    `bun:"description,type:text" json:"description"`
	Frequency      string     `bun:"frequency,notnull" json:"frequency"`
	TargetDays     IntList    `bun:"target_days,type:text" json:"target_days"`
	Streak         int        `bun:"streak,notnull" json:"streak"`
	LongestStreak  int        `bun:"longest_streak,notnull" json:"longest_streak"`
	CompletedDates StringList `bun:"completed_dates,type:text" json:"completed_dates"`
	CreatedAt      time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull" json:"updated_at"`
}
