package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerReason categorizes a balance delta.
type LedgerReason string

const (
	LedgerReasonClaim          LedgerReason = "claim"
	LedgerReasonAutoClaimFee   LedgerReason = "auto_claim_fee"
	LedgerReasonPetPurchase    LedgerReason = "pet_purchase"
	LedgerReasonPetUpgrade     LedgerReason = "pet_upgrade"
	LedgerReasonPetSale        LedgerReason = "pet_sale"
	LedgerReasonSnackPurchase  LedgerReason = "snack_purchase"
	LedgerReasonRoiBoost       LedgerReason = "roi_boost_purchase"
	LedgerReasonSubscription   LedgerReason = "subscription_purchase"
	LedgerReasonReferralReward LedgerReason = "referral_reward"
)

// LedgerEntry is one immutable balance delta. Rows are only ever appended;
// together they are the source of truth for balance history.
type LedgerEntry struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	AccountID string `gorm:"index;not null" json:"account_id"`

	Amount   decimal.Decimal `gorm:"type:decimal(30,12);not null" json:"amount"`
	Reason   LedgerReason    `gorm:"not null;index" json:"reason"`
	Metadata string          `gorm:"type:text" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
