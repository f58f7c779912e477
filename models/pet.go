package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PetLevel is the growth stage of a pet. Forward-only.
type PetLevel string

const (
	PetLevelBaby   PetLevel = "BABY"
	PetLevelAdult  PetLevel = "ADULT"
	PetLevelMythic PetLevel = "MYTHIC"
)

// Next returns the following level, ok=false at MYTHIC.
func (l PetLevel) Next() (PetLevel, bool) {
	switch l {
	case PetLevelBaby:
		return PetLevelAdult, true
	case PetLevelAdult:
		return PetLevelMythic, true
	}
	return "", false
}

// PetStatus is the pet state machine.
// OWNED_IDLE -> TRAINING -> READY_TO_CLAIM -> (OWNED_IDLE | EVOLVED),
// any non-terminal state -> SOLD. EVOLVED and SOLD are terminal.
type PetStatus string

const (
	PetStatusOwnedIdle    PetStatus = "OWNED_IDLE"
	PetStatusTraining     PetStatus = "TRAINING"
	PetStatusReadyToClaim PetStatus = "READY_TO_CLAIM"
	PetStatusEvolved      PetStatus = "EVOLVED"
	PetStatusSold         PetStatus = "SOLD"
)

// MaxPetSlots is the number of live (non-SOLD) pets an account may hold.
const MaxPetSlots = 3

// Pet is an owned instance of a catalog entry.
type Pet struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	AccountID      string `gorm:"index;not null" json:"account_id"`
	CatalogEntryID string `gorm:"index;not null" json:"catalog_entry_id"`
	Slot           int    `gorm:"not null" json:"slot"`
	Nickname       string `json:"nickname,omitempty"`

	Level  PetLevel  `gorm:"not null;default:'BABY'" json:"level"`
	Status PetStatus `gorm:"not null;default:'OWNED_IDLE';index" json:"status"`

	// Cumulative capital put in via buy + upgrades.
	InvestedTotal decimal.Decimal `gorm:"type:decimal(30,12);not null" json:"invested_total"`
	// Cumulative gross profit ever claimed, commission included.
	ProfitClaimed decimal.Decimal `gorm:"type:decimal(30,12);not null;default:0" json:"profit_claimed"`

	TrainingStartedAt  *time.Time `json:"training_started_at,omitempty"`
	TrainingEndsAt     *time.Time `gorm:"index" json:"training_ends_at,omitempty"`
	TrainingNotifiedAt *time.Time `json:"-"`
	EvolvedAt          *time.Time `json:"evolved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CatalogEntry *PetCatalogEntry `gorm:"foreignKey:CatalogEntryID" json:"catalog_entry,omitempty"`
}

// Terminal reports whether no further operations are permitted.
func (p *Pet) Terminal() bool {
	return p.Status == PetStatusEvolved || p.Status == PetStatusSold
}

// TrainingDone reports whether a TRAINING pet has finished its window.
func (p *Pet) TrainingDone(now time.Time) bool {
	return p.Status == PetStatusTraining && p.TrainingEndsAt != nil && !now.Before(*p.TrainingEndsAt)
}
