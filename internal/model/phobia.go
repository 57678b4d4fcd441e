package model

// Catalog categories used by the seed dataset.
const (
	CategoryCommon = "common"
	CategoryRare   = "rare"
)

// Phobia is a catalogued fear object. IDs are assigned by the catalog, not the database.
type Phobia struct {
	ID             uint   `gorm:"primaryKey;autoIncrement:false" yaml:"id"`
	Name           string `gorm:"index" yaml:"name"`
	ScientificName string `yaml:"scientific_name"`
	Description    string `yaml:"description"`
	IconResource   string `yaml:"icon"`
	Category       string `gorm:"index" yaml:"category"`
	IsActive       bool   `gorm:"default:false" yaml:"-"`
}

func (Phobia) TableName() string {
	return "phobias"
}
