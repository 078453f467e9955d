package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProposalStatus values form a strictly forward-moving chain:
// draft -> review -> ready_to_send -> sent.
type ProposalStatus string

const (
	StatusDraft       ProposalStatus = "draft"
	StatusReview      ProposalStatus = "review"
	StatusReadyToSend ProposalStatus = "ready_to_send"
	StatusSent        ProposalStatus = "sent"
)

type ProjectType string

const (
	ProjectStorefrontInstallation ProjectType = "storefront_installation"
	ProjectCurtainWall            ProjectType = "curtain_wall"
	ProjectGlassDoors             ProjectType = "glass_doors"
	ProjectGlassRailings          ProjectType = "glass_railings"
	ProjectShowers                ProjectType = "showers"
	ProjectGlassCanopies          ProjectType = "glass_canopies"
	ProjectCustomInstallation     ProjectType = "custom_installation"
)

type Proposal struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	ContractorID uuid.UUID `gorm:"type:uuid;index;not null"`

	ProposalNumber string         `gorm:"uniqueIndex;not null"`
	ProjectType    ProjectType    `gorm:"type:varchar(30);not null"`
	Status         ProposalStatus `gorm:"type:varchar(20);not null;default:'draft'"`

	ClientName        string `gorm:"not null"`
	ClientContactName string
	ClientEmail       string
	ClientPhone       string
	ClientAddress     string

	ProjectName        string `gorm:"not null"`
	ProjectAddress     string
	ProjectDescription string

	// Derived from line items, recomputed on every item or tax rate change.
	Subtotal    float64 `gorm:"type:decimal(12,2);default:0.0"`
	TaxRate     float64 `gorm:"type:decimal(5,2);default:0.0"`
	TaxAmount   float64 `gorm:"type:decimal(12,2);default:0.0"`
	TotalAmount float64 `gorm:"type:decimal(12,2);default:0.0"`

	InternalNotes string `gorm:"type:text"`
	ReviewNotes   string `gorm:"type:text"`

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ReviewedAt *time.Time
	SentAt     *time.Time

	LineItems []LineItem `gorm:"foreignKey:ProposalID"`
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	return
}
