package seed

import (
	"fmt"

	"onesmallstep/internal/model"
)

// Placeholder content for phobias without a hand-authored plan, keyed by
// level number and step index.
var (
	templateIntensity = [model.LevelCount][StepsPerLevel]string{
		{"images", "drawings", "videos"},
		{"sounds", "detailed images", "longer videos"},
		{"simulation", "controlled exposure", "practice scenarios"},
		{"real situations", "independent practice", "maintenance"},
	}
	templateDuration = [model.LevelCount][StepsPerLevel]string{
		{"30 seconds", "1 minute", "2 minutes"},
		{"2 minutes", "5 minutes", "10 minutes"},
		{"10 minutes", "20 minutes", "30 minutes"},
		{"As needed", "Regular practice", "Ongoing"},
	}
	templateFrequency = [model.LevelCount]string{
		"Daily for 3-5 days",
		"Daily for 1 week",
		"Every other day for 2 weeks",
		"Weekly then as needed",
	}
)

func templatedStep(id, levelID uint, level, step int) model.ExposureStep {
	return model.ExposureStep{
		ID:           id,
		LevelID:      levelID,
		StepNumber:   step,
		Title:        fmt.Sprintf("Step %d - %s", step, templateIntensity[level-1][step-1]),
		Description:  fmt.Sprintf("Gradual exposure step for level %d", level),
		Instructions: "Follow the guidance and rate your anxiety level",
		Duration:     templateDuration[level-1][step-1],
		Frequency:    templateFrequency[level-1],
	}
}
