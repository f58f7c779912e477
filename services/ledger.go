package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kpizzy812/pixelpets-sub000/models"
)

// appendLedger writes one immutable delta row inside the caller's
// transaction. The triggering operation is only committed together with
// its ledger rows.
func appendLedger(tx *gorm.DB, accountID string, amount decimal.Decimal, reason models.LedgerReason, metadata string) error {
	entry := models.LedgerEntry{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Amount:    amount,
		Reason:    reason,
		Metadata:  metadata,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// adjustBalance locks the account row and applies a signed delta. A delta
// that would drive the balance negative is rejected with no change.
// Returns the balance after the adjustment.
func adjustBalance(tx *gorm.DB, accountID string, delta decimal.Decimal) (decimal.Decimal, error) {
	var account models.Account
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, "id = ?", accountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.Zero, ErrNotFound
		}
		return decimal.Zero, err
	}

	newBalance := account.Balance.Add(delta)
	if newBalance.IsNegative() {
		if delta.IsNegative() {
			return decimal.Zero, ErrInsufficientBalance
		}
		return decimal.Zero, ErrNegativeBalance
	}

	if err := tx.Model(&models.Account{}).Where("id = ?", accountID).
		Update("balance", newBalance).Error; err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// LedgerService serves the read-only history surface.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// History returns a page of an account's ledger, newest first.
func (s *LedgerService) History(accountID string, limit, offset int) ([]models.LedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var entries []models.LedgerEntry
	err := s.DB.Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, err
}
