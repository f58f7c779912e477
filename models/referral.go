package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxReferralDepth is how many referrer hops earn from a claim.
const MaxReferralDepth = 5

// ReferralReward records one cascade payment: the beneficiary ancestor at
// the given tree level earned RewardAmount from SourceAccountID's claim.
type ReferralReward struct {
	ID              string `gorm:"primaryKey;type:uuid" json:"id"`
	SourceAccountID string `gorm:"index;not null" json:"source_account_id"`
	BeneficiaryID   string `gorm:"index;not null" json:"beneficiary_id"`
	Level           int    `gorm:"not null" json:"level"`

	ClaimAmount  decimal.Decimal `gorm:"type:decimal(30,12);not null" json:"claim_amount"`
	RewardAmount decimal.Decimal `gorm:"type:decimal(30,12);not null" json:"reward_amount"`

	CreatedAt time.Time `json:"created_at"`
}

// ReferralStat is the per-account, per-level rollup, bumped incrementally
// on every distribution rather than derived lazily.
type ReferralStat struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	AccountID string `gorm:"not null;uniqueIndex:idx_referral_stats_account_level" json:"account_id"`
	Level     int    `gorm:"not null;uniqueIndex:idx_referral_stats_account_level" json:"level"`

	RewardCount int64           `gorm:"not null;default:0" json:"reward_count"`
	TotalEarned decimal.Decimal `gorm:"type:decimal(30,12);not null;default:0" json:"total_earned"`

	UpdatedAt time.Time `json:"updated_at"`
}
