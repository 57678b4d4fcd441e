package model

// LevelCount is the number of exposure levels every phobia plan has.
const LevelCount = 4

// ExposureLevel is one of the four fixed intensity stages of a phobia plan.
type ExposureLevel struct {
	ID                uint `gorm:"primaryKey"`
	PhobiaID          uint `gorm:"index"`
	LevelNumber       int
	Title             string
	Description       string
	EstimatedDuration string
}

func (ExposureLevel) TableName() string {
	return "exposure_levels"
}

// ExposureStep is a single exercise inside a level. StepNumber starts at 1.
type ExposureStep struct {
	ID           uint `gorm:"primaryKey"`
	LevelID      uint `gorm:"index"`
	StepNumber   int
	Title        string
	Description  string
	Instructions string
	Duration     string
	Frequency    string
}

func (ExposureStep) TableName() string {
	return "exposure_steps"
}
