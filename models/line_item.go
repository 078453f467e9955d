package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LineItemCategory string

const (
	CategoryMaterial  LineItemCategory = "material"
	CategoryLabor     LineItemCategory = "labor"
	CategoryEquipment LineItemCategory = "equipment"
	CategoryOverhead  LineItemCategory = "overhead"
	CategoryProfit    LineItemCategory = "profit"
	CategoryCustom    LineItemCategory = "custom"
)

// LineItemCategories is the fixed display order used for breakdowns.
var LineItemCategories = []LineItemCategory{
	CategoryMaterial,
	CategoryLabor,
	CategoryEquipment,
	CategoryOverhead,
	CategoryProfit,
	CategoryCustom,
}

type LineItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	ProposalID uuid.UUID `gorm:"type:uuid;index;not null"`

	Category    LineItemCategory `gorm:"type:varchar(20);not null"`
	Description string           `gorm:"not null"`
	Quantity    float64          `gorm:"type:decimal(12,2);not null"`
	Unit        string           `gorm:"default:'each'"`
	UnitPrice   float64          `gorm:"type:decimal(12,2);not null"`
	Total       float64          `gorm:"type:decimal(12,2);not null"`

	// Set when a user hand-edits the computed total. Advisory only:
	// validation still flags the mismatch against quantity * unit price.
	IsManualOverride bool `gorm:"default:false"`

	MaterialID *uuid.UUID `gorm:"type:uuid;index"`
	OrderIndex int        `gorm:"default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (li *LineItem) BeforeCreate(tx *gorm.DB) (err error) {
	if li.ID == uuid.Nil {
		li.ID = uuid.New()
	}
	return
}
