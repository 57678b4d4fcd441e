package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"
)

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	progress *ProgressService
}

func NewReminderService(progress *ProgressService) *ReminderService {
	return &ReminderService{progress: progress}
}

// DailySummary renders the daily check-in message in Telegram HTML.
func (s *ReminderService) DailySummary(ctx context.Context, now time.Time) (string, error) {
	overview, err := s.progress.Overview(ctx, now)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("🌱 <b>Daily check-in</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("2006-01-02")))

	builder.WriteString(fmt.Sprintf("🔥 Streak: <b>%d</b>\n", overview.Streak))
	builder.WriteString(fmt.Sprintf("✅ Completed steps: %d (this week: %d)\n", overview.CompletedSteps, len(overview.Weekly)))
	builder.WriteString(fmt.Sprintf("💬 %s\n", html.EscapeString(overview.Message)))

	builder.WriteString("\n🎯 <b>Your plans</b>\n")
	if len(overview.ActivePhobias) == 0 {
		builder.WriteString("No active phobias yet, pick one with /phobias\n")
	} else {
		plans := append([]PhobiaProgress(nil), overview.ActivePhobias...)
		sort.SliceStable(plans, func(i, j int) bool {
			return plans[i].Percent < plans[j].Percent
		})
		for _, p := range plans {
			builder.WriteString(formatPlan(p))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

func formatPlan(p PhobiaProgress) string {
	icon := "🟢"
	switch {
	case p.Percent >= 100:
		icon = "🏆"
	case p.Completed == 0:
		icon = "⏳"
	}
	return fmt.Sprintf("%s %s: %d%% (%d/%d)\n", icon, html.EscapeString(strings.TrimSpace(p.Phobia.Name)), p.Percent, p.Completed, p.Total)
}
