package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SnackTier names one of the fixed snack offerings.
type SnackTier string

const (
	SnackTierCookie SnackTier = "COOKIE"
	SnackTierSteak  SnackTier = "STEAK"
	SnackTierFeast  SnackTier = "FEAST"
)

// Snack is a one-shot claim bonus bound to a pet. At most one unconsumed
// snack may exist per pet; the next successful claim consumes it.
type Snack struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	PetID     string    `gorm:"index;not null" json:"pet_id"`
	AccountID string    `gorm:"index;not null" json:"account_id"`
	Tier      SnackTier `gorm:"not null" json:"tier"`

	BonusPercent decimal.Decimal `gorm:"type:decimal(10,6);not null" json:"bonus_percent"`
	Cost         decimal.Decimal `gorm:"type:decimal(30,12);not null" json:"cost"`

	Consumed   bool       `gorm:"not null;default:false;index" json:"consumed"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// MaxRoiBoostTotal caps the sum of boost percentages on one pet.
var MaxRoiBoostTotal = decimal.NewFromFloat(0.50)

// RoiBoost is a permanent addition to a pet's payout cap. Boosts stack;
// their percentages may never sum past MaxRoiBoostTotal.
type RoiBoost struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	PetID     string `gorm:"index;not null" json:"pet_id"`
	AccountID string `gorm:"index;not null" json:"account_id"`

	BoostPercent decimal.Decimal `gorm:"type:decimal(10,6);not null" json:"boost_percent"`
	Cost         decimal.Decimal `gorm:"type:decimal(30,12);not null" json:"cost"`

	CreatedAt time.Time `json:"created_at"`
}
