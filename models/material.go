package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Material is a catalog entry a contractor picks from when adding line items.
// The caller maps a material into a LineItem; pricing only ever sees line items.
type Material struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	ContractorID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name           string           `gorm:"not null"`
	Category       LineItemCategory `gorm:"type:varchar(20);default:'material'"`
	Unit           string           `gorm:"not null"` // e.g. "sq ft", "lin ft", "tube"
	SuggestedPrice float64          `gorm:"type:decimal(12,2);not null"`
	Supplier       string
	Specs          JSONB `gorm:"type:jsonb;default:'{}'"`
	IsActive       bool  `gorm:"default:true"`

	gorm.Model
}

func (m *Material) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}

// Custom JSONB type for material spec sheets
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, &j)
	case string:
		return json.Unmarshal([]byte(v), &j)
	default:
		return errors.New("unsupported JSONB source type")
	}
}
