package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PetCatalogEntry is the purchasable template for a pet.
// DailyRate is the fraction of invested value paid per claim cycle;
// RoiCapMultiplier is the fraction of invested value that bounds the
// lifetime payout before boosts.
type PetCatalogEntry struct {
	ID    string `gorm:"primaryKey;type:uuid" json:"id"`
	Name  string `gorm:"not null" json:"name"`
	Emoji string `gorm:"size:10" json:"emoji"`

	BasePrice        decimal.Decimal `gorm:"type:decimal(30,12);not null" json:"base_price"`
	DailyRate        decimal.Decimal `gorm:"type:decimal(10,6);not null" json:"daily_rate"`
	RoiCapMultiplier decimal.Decimal `gorm:"type:decimal(10,6);not null" json:"roi_cap_multiplier"`

	// Cumulative invested value required to hold each level.
	AdultPrice  decimal.Decimal `gorm:"type:decimal(30,12);not null" json:"adult_price"`
	MythicPrice decimal.Decimal `gorm:"type:decimal(30,12);not null" json:"mythic_price"`

	Active    bool `gorm:"not null;default:true;index" json:"active"`
	Available bool `gorm:"not null;default:true" json:"available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LevelPrice returns the cumulative invested value required for a level.
// Zero for BABY (the base purchase already covers it), ok=false when the
// level is unknown.
func (e *PetCatalogEntry) LevelPrice(level PetLevel) (decimal.Decimal, bool) {
	switch level {
	case PetLevelBaby:
		return decimal.Zero, true
	case PetLevelAdult:
		return e.AdultPrice, true
	case PetLevelMythic:
		return e.MythicPrice, true
	}
	return decimal.Zero, false
}
