package model

import "time"

// UserProgress is one logged attempt at an exposure step. Repeating a step
// appends a new row; rows are never merged.
type UserProgress struct {
	ID            uint `gorm:"primaryKey"`
	PhobiaID      uint `gorm:"index"`
	LevelID       uint
	StepID        uint
	IsCompleted   bool `gorm:"default:false"`
	AnxietyRating *int
	CompletedDate *Millis
	Notes         *string
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// CompletedAt returns the completion time, if one was recorded.
func (p UserProgress) CompletedAt() (time.Time, bool) {
	if p.CompletedDate == nil {
		return time.Time{}, false
	}
	return p.CompletedDate.Time, true
}
