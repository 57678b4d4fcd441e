// Package seed builds the fixed phobia catalog inserted on first run.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"onesmallstep/internal/model"
)

//go:embed catalog.yaml
var catalogYAML []byte

// StepsPerLevel is the number of steps every level receives.
const StepsPerLevel = 3

// Catalog is the complete seed dataset.
type Catalog struct {
	Phobias []model.Phobia
	Levels  []model.ExposureLevel
	Steps   []model.ExposureStep
}

type levelTemplate struct {
	Number      int    `yaml:"number"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Duration    string `yaml:"duration"`
}

type authoredPlan struct {
	PhobiaID uint `yaml:"phobia_id"`
	// Levels[level][step] = title, description, instructions, duration, frequency
	Levels [][][]string `yaml:"levels"`
}

type fixture struct {
	Phobias []model.Phobia  `yaml:"phobias"`
	Levels  []levelTemplate `yaml:"levels"`
	Plans   []authoredPlan  `yaml:"plans"`
}

// Load parses the embedded fixture and expands it into rows.
func Load() (Catalog, error) {
	var f fixture
	if err := yaml.Unmarshal(catalogYAML, &f); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Levels) != model.LevelCount {
		return Catalog{}, fmt.Errorf("parse catalog: want %d level templates, got %d", model.LevelCount, len(f.Levels))
	}

	cat := Catalog{Phobias: f.Phobias}
	for _, p := range f.Phobias {
		for _, tpl := range f.Levels {
			cat.Levels = append(cat.Levels, model.ExposureLevel{
				ID:                LevelID(p.ID, tpl.Number),
				PhobiaID:          p.ID,
				LevelNumber:       tpl.Number,
				Title:             tpl.Title,
				Description:       tpl.Description,
				EstimatedDuration: tpl.Duration,
			})
		}
	}

	authored := make(map[uint]bool, len(f.Plans))
	var stepID uint = 1
	for _, plan := range f.Plans {
		steps, err := authoredSteps(plan, &stepID)
		if err != nil {
			return Catalog{}, err
		}
		authored[plan.PhobiaID] = true
		cat.Steps = append(cat.Steps, steps...)
	}

	for _, p := range f.Phobias {
		if authored[p.ID] {
			continue
		}
		for level := 1; level <= model.LevelCount; level++ {
			for step := 1; step <= StepsPerLevel; step++ {
				cat.Steps = append(cat.Steps, templatedStep(stepID, LevelID(p.ID, level), level, step))
				stepID++
			}
		}
	}

	return cat, nil
}

// MustLoad is Load for callers that cannot recover from a broken fixture.
func MustLoad() Catalog {
	cat, err := Load()
	if err != nil {
		panic(err)
	}
	return cat
}

// LevelID returns the fixed id of a phobia's level.
func LevelID(phobiaID uint, levelNumber int) uint {
	return (phobiaID-1)*model.LevelCount + uint(levelNumber)
}

func authoredSteps(plan authoredPlan, nextID *uint) ([]model.ExposureStep, error) {
	if len(plan.Levels) != model.LevelCount {
		return nil, fmt.Errorf("plan for phobia %d: want %d levels, got %d", plan.PhobiaID, model.LevelCount, len(plan.Levels))
	}
	var steps []model.ExposureStep
	for li, level := range plan.Levels {
		for si, fields := range level {
			if len(fields) != 5 {
				return nil, fmt.Errorf("plan for phobia %d level %d step %d: want 5 fields, got %d", plan.PhobiaID, li+1, si+1, len(fields))
			}
			steps = append(steps, model.ExposureStep{
				ID:           *nextID,
				LevelID:      LevelID(plan.PhobiaID, li+1),
				StepNumber:   si + 1,
				Title:        fields[0],
				Description:  fields[1],
				Instructions: fields[2],
				Duration:     fields[3],
				Frequency:    fields[4],
			})
			*nextID++
		}
	}
	return steps, nil
}
