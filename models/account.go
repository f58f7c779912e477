package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a player wallet. Created on first login, never deleted.
// ReferrerID is a weak back-reference: the referrer never owns this row.
type Account struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	TelegramID int64  `gorm:"uniqueIndex;not null" json:"telegram_id"`
	Username   string `gorm:"index" json:"username"`

	Balance decimal.Decimal `gorm:"type:decimal(30,12);not null;default:0" json:"balance"`

	ReferralCode          string  `gorm:"uniqueIndex;not null" json:"referral_code"`
	ReferrerID            *string `gorm:"index" json:"referrer_id,omitempty"`
	UnlockedReferralLevel int     `gorm:"not null;default:1" json:"unlocked_referral_level"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
