package bot

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"onesmallstep/internal/model"
	"onesmallstep/internal/service"
)

var icons = map[string]string{
	"spider":     "🕷",
	"height":     "🏔",
	"airplane":   "✈️",
	"microphone": "🎤",
	"snake":      "🐍",
	"dog":        "🐕",
	"needle":     "💉",
	"blood":      "🩸",
	"box":        "📦",
	"people":     "👥",
	"stomach":    "🤢",
	"car":        "🚗",
	"bacteria":   "🦠",
	"storm":      "⛈",
	"field":      "🌾",
	"clown":      "🤡",
	"holes":      "🕳",
	"balloon":    "🎈",
	"doll":       "🪆",
	"mirror":     "🪞",
	"throat":     "🫁",
	"dentist":    "🦷",
	"moon":       "🌙",
	"hand":       "✋",
	"skull":      "💀",
}

// iconFor maps a catalog icon tag to an emoji.
func iconFor(tag string) string {
	if icon, ok := icons[tag]; ok {
		return icon
	}
	return "🔹"
}

func escape(s string) string {
	return html.EscapeString(s)
}

func shortTitle(title string, maxLen int) string {
	clean := strings.Join(strings.Fields(title), " ")
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func parseID(args string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(args), 10, 64)
	if err != nil {
		return 0, err
	}
	if value == 0 {
		return 0, errors.New("id must be positive")
	}
	return uint(value), nil
}

// parseCategory turns the /phobias argument into a category. Anything other
// than a known category lists everything.
func parseCategory(args string) string {
	switch strings.ToLower(strings.TrimSpace(args)) {
	case model.CategoryCommon:
		return model.CategoryCommon
	case model.CategoryRare:
		return model.CategoryRare
	default:
		return service.CategoryAll
	}
}

// parseDoneArgs reads "<stepId> <rating> [notes...]".
func parseDoneArgs(args string) (service.StepCompletion, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return service.StepCompletion{}, errors.New("step id and rating are required")
	}
	stepID, err := parseID(fields[0])
	if err != nil {
		return service.StepCompletion{}, fmt.Errorf("step id %q is not a number", fields[0])
	}
	rating, err := strconv.Atoi(fields[1])
	if err != nil {
		return service.StepCompletion{}, fmt.Errorf("rating %q is not a number", fields[1])
	}
	return service.StepCompletion{
		StepID:        stepID,
		AnxietyRating: rating,
		Notes:         strings.Join(fields[2:], " "),
	}, nil
}

func parseCallback(data string) (string, uint, error) {
	idx := strings.Index(data, ":")
	if idx < 0 {
		return "", 0, fmt.Errorf("malformed callback %q", data)
	}
	id, err := parseID(data[idx+1:])
	if err != nil {
		return "", 0, err
	}
	return data[:idx+1], id, nil
}

func phobiaButton(p model.Phobia) string {
	label := fmt.Sprintf("%s %s", iconFor(p.IconResource), shortTitle(p.Name, 24))
	if p.IsActive {
		label += " ⭐"
	}
	return label
}

func formatBrowse(res service.BrowseResult) string {
	var builder strings.Builder
	switch {
	case res.Query != "":
		builder.WriteString(fmt.Sprintf("🔎 <b>Results for '%s'</b>\n", escape(res.Query)))
	case res.Category == service.CategoryAll:
		builder.WriteString("🗂 <b>All phobias</b>\n")
	default:
		builder.WriteString(fmt.Sprintf("🗂 <b>%s phobias</b>\n", escape(strings.ToUpper(res.Category[:1])+res.Category[1:])))
	}
	builder.WriteString(fmt.Sprintf("%d found. ⭐ marks the ones you are working on.", len(res.Phobias)))
	return builder.String()
}

func formatDetails(d service.PhobiaDetails) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%s <b>%s</b> <i>(%s)</i>\n", iconFor(d.Phobia.IconResource), escape(d.Phobia.Name), escape(d.Phobia.ScientificName)))
	builder.WriteString(escape(d.Phobia.Description))
	builder.WriteString("\n\n")
	builder.WriteString(fmt.Sprintf("📊 %s %d%% (%d/%d steps)\n", progressBar(d.Progress.Percent), d.Progress.Percent, d.Progress.Completed, d.Progress.Total))
	builder.WriteString("\n<b>Levels</b>\n")
	for _, level := range d.Levels {
		builder.WriteString(fmt.Sprintf("%d. %s · %s\n", level.LevelNumber, escape(level.Title), escape(level.EstimatedDuration)))
	}
	return strings.TrimSpace(builder.String())
}

func formatLevel(plan service.LevelPlan) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🪜 <b>Level %d: %s</b>\n", plan.Level.LevelNumber, escape(plan.Level.Title)))
	builder.WriteString(fmt.Sprintf("%s (%s)\n", escape(plan.Level.Description), escape(plan.Level.EstimatedDuration)))
	for _, step := range plan.Steps {
		builder.WriteString(fmt.Sprintf("\n<b>#%d %s</b>\n", step.ID, escape(step.Title)))
		builder.WriteString(escape(step.Description))
		builder.WriteByte('\n')
		builder.WriteString(fmt.Sprintf("👉 %s\n", escape(step.Instructions)))
		builder.WriteString(fmt.Sprintf("⏱ %s · 🔁 %s\n", escape(step.Duration), escape(step.Frequency)))
	}
	builder.WriteString("\nDone one? Send /done &lt;step&gt; &lt;rating 1-10&gt;.")
	return builder.String()
}

func formatCompletion(row model.UserProgress, overview service.Overview) string {
	rating := 0
	if row.AnxietyRating != nil {
		rating = *row.AnxietyRating
	}
	return fmt.Sprintf("✅ Step #%d completed with anxiety %d/10.\n🔥 Streak: <b>%d</b>\n💬 %s",
		row.StepID, rating, overview.Streak, escape(overview.Message))
}

func formatOverview(o service.Overview) string {
	var builder strings.Builder
	builder.WriteString("📈 <b>Your progress</b>\n")
	builder.WriteString(fmt.Sprintf("🔥 Streak: <b>%d</b>\n", o.Streak))
	builder.WriteString(fmt.Sprintf("✅ Completed steps: %d\n", o.CompletedSteps))
	builder.WriteString(fmt.Sprintf("🗓 This week: %d\n", len(o.Weekly)))
	builder.WriteString(fmt.Sprintf("💬 %s\n", escape(o.Message)))
	if len(o.ActivePhobias) > 0 {
		builder.WriteString("\n<b>Active plans</b>\n")
		for _, p := range o.ActivePhobias {
			builder.WriteString(fmt.Sprintf("%s %s %s %d%%\n", iconFor(p.Phobia.IconResource), escape(p.Phobia.Name), progressBar(p.Percent), p.Percent))
		}
	}
	return strings.TrimSpace(builder.String())
}

// progressBar renders percent as ten cells.
func progressBar(percent int) string {
	filled := percent / 10
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return strings.Repeat("▰", filled) + strings.Repeat("▱", 10-filled)
}
