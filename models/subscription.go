package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AutoClaimSubscription lets the sweep claim on the account's behalf for a
// commission. At most one active (non-expired) subscription per account.
// The counters are advisory bookkeeping, not re-checked elsewhere.
type AutoClaimSubscription struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	AccountID string `gorm:"index;not null" json:"account_id"`

	Months            int             `gorm:"not null" json:"months"`
	Price             decimal.Decimal `gorm:"type:decimal(30,12);not null" json:"price"`
	CommissionPercent decimal.Decimal `gorm:"type:decimal(10,6);not null" json:"commission_percent"`

	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`

	TotalClaims     int64           `gorm:"not null;default:0" json:"total_claims"`
	TotalCommission decimal.Decimal `gorm:"type:decimal(30,12);not null;default:0" json:"total_commission"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the subscription covers the given moment.
func (s *AutoClaimSubscription) Active(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
