// Package metrics derives user-facing progress signals from progress rows.
// Every function is a pure transformation of its input.
package metrics

import (
	"sort"
	"time"

	"onesmallstep/internal/model"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

const (
	MessageFirstStep   = "Ready to take your first step?"
	MessageGreatStart  = "Great start! Keep going!"
	MessageHabit       = "You're building a great habit!"
	MessageAmazing     = "Amazing progress! You're doing fantastic!"
	MessageIncredible  = "Incredible dedication! You're conquering your fears!"
	MessageKeepWorking = "Keep up the excellent work!"
)

// CompletionPercentage floors completed*100/total; 0 when total is 0.
func CompletionPercentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return completed * 100 / total
}

// Streak counts consecutive completions walked back from now. Each row is
// compared with the previous one (starting at now) in whole elapsed days,
// truncated; a gap of at most one day continues the streak.
func Streak(rows []model.UserProgress, now time.Time) int {
	times := completionTimes(rows)
	if len(times) == 0 {
		return 0
	}
	sort.Slice(times, func(i, j int) bool { return times[i].After(times[j]) })

	streak := 0
	last := now
	for _, completed := range times {
		daysDiff := last.Sub(completed).Milliseconds() / day.Milliseconds()
		if daysDiff > 1 {
			break
		}
		streak++
		last = completed
	}
	return streak
}

// WeeklyProgress keeps rows completed within the last seven days.
func WeeklyProgress(rows []model.UserProgress, now time.Time) []model.UserProgress {
	cutoff := now.Add(-week)
	weekly := make([]model.UserProgress, 0, len(rows))
	for _, row := range rows {
		completed, ok := row.CompletedAt()
		if !ok || completed.Before(cutoff) {
			continue
		}
		weekly = append(weekly, row)
	}
	return weekly
}

// MotivationalMessage picks the message for a streak. The first matching
// range wins.
func MotivationalMessage(streak, completedSteps int) string {
	switch {
	case streak == 0 && completedSteps == 0:
		return MessageFirstStep
	case streak >= 1 && streak <= 2:
		return MessageGreatStart
	case streak >= 3 && streak <= 6:
		return MessageHabit
	case streak >= 7 && streak <= 13:
		return MessageAmazing
	case streak >= 14:
		return MessageIncredible
	default:
		return MessageKeepWorking
	}
}

func completionTimes(rows []model.UserProgress) []time.Time {
	times := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		if !row.IsCompleted {
			continue
		}
		if completed, ok := row.CompletedAt(); ok {
			times = append(times, completed)
		}
	}
	return times
}
