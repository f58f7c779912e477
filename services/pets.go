package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kpizzy812/pixelpets-sub000/logging"
	"github.com/kpizzy812/pixelpets-sub000/models"
	"github.com/kpizzy812/pixelpets-sub000/notifier"
)

// PetService implements the pet lifecycle: buy, train, claim, upgrade,
// sell. Every mutation of one pet runs in a transaction holding a
// SELECT ... FOR UPDATE lock on the pet row, so a manual claim racing the
// auto-claim sweep can never double-pay.
type PetService struct {
	DB        *gorm.DB
	Config    *ConfigService
	Referrals *ReferralService
	Notifier  notifier.Notifier
}

func NewPetService(db *gorm.DB, cfg *ConfigService, refs *ReferralService, n notifier.Notifier) *PetService {
	return &PetService{DB: db, Config: cfg, Referrals: refs, Notifier: n}
}

// ClaimResult is the breakdown returned by a successful claim.
type ClaimResult struct {
	Base         decimal.Decimal `json:"base"`
	SnackBonus   decimal.Decimal `json:"snack_bonus"`
	BoostPercent decimal.Decimal `json:"boost_percent"`
	Claimable    decimal.Decimal `json:"claimable"`
	Commission   decimal.Decimal `json:"commission"`
	Payable      decimal.Decimal `json:"payable"`
	NewBalance   decimal.Decimal `json:"new_balance"`
	Evolved      bool            `json:"evolved"`
}

// lockPet loads a pet row FOR UPDATE and applies the lazy training
// transition: a TRAINING pet past its window becomes READY_TO_CLAIM
// before the caller sees it. requesterID == "" skips the ownership check
// (sweep path).
func (s *PetService) lockPet(tx *gorm.DB, petID, requesterID string, now time.Time) (*models.Pet, error) {
	var pet models.Pet
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&pet, "id = ?", petID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if requesterID != "" && pet.AccountID != requesterID {
		return nil, ErrNotFound
	}
	if pet.TrainingDone(now) {
		pet.Status = models.PetStatusReadyToClaim
		if err := tx.Model(&models.Pet{}).Where("id = ?", pet.ID).
			Update("status", models.PetStatusReadyToClaim).Error; err != nil {
			return nil, err
		}
	}
	return &pet, nil
}

func (s *PetService) catalogEntry(tx *gorm.DB, id string) (*models.PetCatalogEntry, error) {
	var entry models.PetCatalogEntry
	if err := tx.First(&entry, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// boostTotal sums a pet's permanent ROI boosts.
func boostTotal(tx *gorm.DB, petID string) (decimal.Decimal, error) {
	var boosts []models.RoiBoost
	if err := tx.Where("pet_id = ?", petID).Find(&boosts).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, b := range boosts {
		total = total.Add(b.BoostPercent)
	}
	return total, nil
}

// Buy debits the base price and creates a BABY pet in the lowest free
// slot. The account row lock taken by the debit serializes concurrent
// purchases, so two requests can never grab the same slot.
func (s *PetService) Buy(accountID, catalogEntryID, nickname string) (*models.Pet, error) {
	var pet *models.Pet
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		entry, err := s.catalogEntry(tx, catalogEntryID)
		if err != nil {
			return err
		}
		if !entry.Active || !entry.Available {
			return ErrInvalidState
		}

		if _, err := adjustBalance(tx, accountID, entry.BasePrice.Neg()); err != nil {
			return err
		}

		var live []models.Pet
		if err := tx.Select("slot").
			Where("account_id = ? AND status <> ?", accountID, models.PetStatusSold).
			Find(&live).Error; err != nil {
			return err
		}
		used := make(map[int]bool, len(live))
		for _, p := range live {
			used[p.Slot] = true
		}
		slot := -1
		for i := 0; i < models.MaxPetSlots; i++ {
			if !used[i] {
				slot = i
				break
			}
		}
		if slot < 0 {
			return ErrInvalidState
		}

		pet = &models.Pet{
			ID:             uuid.NewString(),
			AccountID:      accountID,
			CatalogEntryID: entry.ID,
			Slot:           slot,
			Nickname:       nickname,
			Level:          models.PetLevelBaby,
			Status:         models.PetStatusOwnedIdle,
			InvestedTotal:  entry.BasePrice,
			ProfitClaimed:  decimal.Zero,
		}
		if err := tx.Create(pet).Error; err != nil {
			return fmt.Errorf("create pet: %w", err)
		}

		meta := fmt.Sprintf(`{"pet_id":%q,"catalog_entry_id":%q}`, pet.ID, entry.ID)
		return appendLedger(tx, accountID, entry.BasePrice.Neg(), models.LedgerReasonPetPurchase, meta)
	})
	if err != nil {
		return nil, err
	}
	return pet, nil
}

// StartTraining opens the 24h profit window on an idle pet.
func (s *PetService) StartTraining(petID, requesterID string) (*models.Pet, error) {
	now := time.Now()
	var pet *models.Pet
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		pet, err = s.lockPet(tx, petID, requesterID, now)
		if err != nil {
			return err
		}
		if pet.Status != models.PetStatusOwnedIdle {
			return ErrInvalidState
		}
		ends := now.Add(s.Config.TrainingDuration())
		pet.Status = models.PetStatusTraining
		pet.TrainingStartedAt = &now
		pet.TrainingEndsAt = &ends
		pet.TrainingNotifiedAt = nil
		return tx.Model(&models.Pet{}).Where("id = ?", pet.ID).Updates(map[string]interface{}{
			"status":               models.PetStatusTraining,
			"training_started_at":  now,
			"training_ends_at":     ends,
			"training_notified_at": nil,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return pet, nil
}

// Claim converts a READY_TO_CLAIM pet's accrued profit into balance:
// snack bonus applied and consumed, capped by the boosted ROI cap,
// auto-claim commission withheld from the payout. The gross amount,
// commission included, consumes the cap. Referral distribution of the
// net payable runs inside the same transaction.
func (s *PetService) Claim(petID, requesterID string, isAutoClaim bool) (*ClaimResult, error) {
	now := time.Now()
	result := &ClaimResult{}
	var owner models.Account
	var petName string
	var totalEarned decimal.Decimal

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		pet, err := s.lockPet(tx, petID, requesterID, now)
		if err != nil {
			return err
		}
		if pet.Status != models.PetStatusReadyToClaim {
			return ErrInvalidState
		}

		entry, err := s.catalogEntry(tx, pet.CatalogEntryID)
		if err != nil {
			return err
		}
		petName = pet.Nickname
		if petName == "" {
			petName = entry.Name
		}

		base := pet.InvestedTotal.Mul(entry.DailyRate)
		result.Base = base

		boostSum, err := boostTotal(tx, pet.ID)
		if err != nil {
			return err
		}
		result.BoostPercent = boostSum
		boostedCap := entry.RoiCapMultiplier.Add(boostSum)
		maxProfit := pet.InvestedTotal.Mul(boostedCap)

		if err := tx.First(&owner, "id = ?", pet.AccountID).Error; err != nil {
			return err
		}

		remaining := maxProfit.Sub(pet.ProfitClaimed)
		if !remaining.IsPositive() {
			// Cap already exhausted: terminal no-op transition. An
			// unconsumed snack survives, nothing was claimed with it.
			result.Evolved = true
			totalEarned = pet.ProfitClaimed
			return tx.Model(&models.Pet{}).Where("id = ?", pet.ID).Updates(map[string]interface{}{
				"status":     models.PetStatusEvolved,
				"evolved_at": now,
			}).Error
		}

		withSnack := base
		var snack models.Snack
		snackErr := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("pet_id = ? AND consumed = ?", pet.ID, false).
			First(&snack).Error
		if snackErr == nil {
			withSnack = base.Mul(decimal.NewFromInt(1).Add(snack.BonusPercent))
			result.SnackBonus = withSnack.Sub(base)
			if err := tx.Model(&models.Snack{}).Where("id = ?", snack.ID).Updates(map[string]interface{}{
				"consumed":    true,
				"consumed_at": now,
			}).Error; err != nil {
				return err
			}
		} else if snackErr != gorm.ErrRecordNotFound {
			return snackErr
		}

		claimable := decimal.Min(withSnack, remaining)
		result.Claimable = claimable

		payable := claimable
		commission := decimal.Zero
		if isAutoClaim {
			var sub models.AutoClaimSubscription
			subErr := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("account_id = ? AND expires_at > ?", pet.AccountID, now).
				Order("expires_at DESC").
				First(&sub).Error
			if subErr == nil {
				commission = claimable.Mul(sub.CommissionPercent)
				payable = claimable.Sub(commission)
				if err := tx.Model(&models.AutoClaimSubscription{}).Where("id = ?", sub.ID).Updates(map[string]interface{}{
					"total_claims":     gorm.Expr("total_claims + 1"),
					"total_commission": gorm.Expr("total_commission + ?", commission),
				}).Error; err != nil {
					return err
				}
			} else if subErr != gorm.ErrRecordNotFound {
				return subErr
			}
		}
		result.Commission = commission
		result.Payable = payable

		newBalance, err := adjustBalance(tx, pet.AccountID, payable)
		if err != nil {
			return err
		}
		result.NewBalance = newBalance

		// The claim row records the gross amount so the ledger replays to
		// the actual balance delta: claimable - commission = payable.
		meta := fmt.Sprintf(`{"pet_id":%q,"auto_claim":%t}`, pet.ID, isAutoClaim)
		if err := appendLedger(tx, pet.AccountID, claimable, models.LedgerReasonClaim, meta); err != nil {
			return err
		}
		if commission.IsPositive() {
			if err := appendLedger(tx, pet.AccountID, commission.Neg(), models.LedgerReasonAutoClaimFee, meta); err != nil {
				return err
			}
		}

		// Gross consumes the cap: commission is deducted from the payout,
		// never from cap consumption.
		newProfitClaimed := pet.ProfitClaimed.Add(claimable)
		updates := map[string]interface{}{
			"profit_claimed": newProfitClaimed,
		}
		if newProfitClaimed.GreaterThanOrEqual(maxProfit) {
			result.Evolved = true
			totalEarned = newProfitClaimed
			updates["status"] = models.PetStatusEvolved
			updates["evolved_at"] = now
		} else {
			updates["status"] = models.PetStatusOwnedIdle
			updates["training_started_at"] = nil
			updates["training_ends_at"] = nil
			updates["training_notified_at"] = nil
		}
		if err := tx.Model(&models.Pet{}).Where("id = ?", pet.ID).Updates(updates).Error; err != nil {
			return err
		}

		return s.Referrals.Distribute(tx, pet.AccountID, payable)
	})
	if err != nil {
		return nil, err
	}

	if result.Evolved && owner.ID != "" {
		if err := s.Notifier.NotifyEvolved(context.Background(), owner.TelegramID, petName, totalEarned); err != nil {
			logging.L().Warn("evolved notification failed",
				zap.String("account_id", owner.ID), zap.Error(err))
		}
	}
	return result, nil
}

// Upgrade moves a pet to its next level, charging the difference between
// the level's cumulative price and what is already invested.
func (s *PetService) Upgrade(petID, requesterID string) (*models.Pet, error) {
	now := time.Now()
	var pet *models.Pet
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		pet, err = s.lockPet(tx, petID, requesterID, now)
		if err != nil {
			return err
		}
		if pet.Terminal() {
			return ErrInvalidState
		}
		next, ok := pet.Level.Next()
		if !ok {
			return ErrInvalidState
		}
		entry, err := s.catalogEntry(tx, pet.CatalogEntryID)
		if err != nil {
			return err
		}
		levelPrice, ok := entry.LevelPrice(next)
		if !ok {
			return ErrInvalidState
		}
		cost := decimal.Max(decimal.Zero, levelPrice.Sub(pet.InvestedTotal))
		if cost.IsPositive() {
			if _, err := adjustBalance(tx, pet.AccountID, cost.Neg()); err != nil {
				return err
			}
			meta := fmt.Sprintf(`{"pet_id":%q,"level":%q}`, pet.ID, next)
			if err := appendLedger(tx, pet.AccountID, cost.Neg(), models.LedgerReasonPetUpgrade, meta); err != nil {
				return err
			}
		}
		pet.InvestedTotal = pet.InvestedTotal.Add(cost)
		pet.Level = next
		return tx.Model(&models.Pet{}).Where("id = ?", pet.ID).Updates(map[string]interface{}{
			"invested_total": pet.InvestedTotal,
			"level":          next,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return pet, nil
}

// SellResult reports the exit pricing applied to a sale.
type SellResult struct {
	ProfitRatio decimal.Decimal `json:"profit_ratio"`
	Fee         decimal.Decimal `json:"fee"`
	Refund      decimal.Decimal `json:"refund"`
	NewBalance  decimal.Decimal `json:"new_balance"`
}

// Sell liquidates a non-terminal pet. The exit fee grows linearly from
// the base fee at zero claimed profit to the max fee at the boosted cap,
// so a fully-milked pet refunds nothing.
func (s *PetService) Sell(petID, requesterID string) (*SellResult, error) {
	now := time.Now()
	result := &SellResult{}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		pet, err := s.lockPet(tx, petID, requesterID, now)
		if err != nil {
			return err
		}
		if pet.Terminal() {
			return ErrInvalidState
		}
		entry, err := s.catalogEntry(tx, pet.CatalogEntryID)
		if err != nil {
			return err
		}
		boostSum, err := boostTotal(tx, pet.ID)
		if err != nil {
			return err
		}
		maxProfit := pet.InvestedTotal.Mul(entry.RoiCapMultiplier.Add(boostSum))

		one := decimal.NewFromInt(1)
		ratio := one
		if maxProfit.IsPositive() {
			ratio = decimal.Min(pet.ProfitClaimed.Div(maxProfit), one)
		}
		result.ProfitRatio = ratio

		baseFee := s.Config.SellBaseFee()
		maxFee := s.Config.SellMaxFee()
		fee := baseFee.Add(ratio.Mul(maxFee.Sub(baseFee)))
		result.Fee = fee

		refund := decimal.Max(decimal.Zero, pet.InvestedTotal.Mul(one.Sub(fee)))
		result.Refund = refund

		newBalance, err := adjustBalance(tx, pet.AccountID, refund)
		if err != nil {
			return err
		}
		result.NewBalance = newBalance

		meta := fmt.Sprintf(`{"pet_id":%q,"fee":%q}`, pet.ID, fee.String())
		if err := appendLedger(tx, pet.AccountID, refund, models.LedgerReasonPetSale, meta); err != nil {
			return err
		}

		return tx.Model(&models.Pet{}).Where("id = ?", pet.ID).
			Update("status", models.PetStatusSold).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// HallOfFame lists the most recently evolved pets.
func (s *PetService) HallOfFame(limit int) ([]models.Pet, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var pets []models.Pet
	err := s.DB.Preload("CatalogEntry").
		Where("status = ?", models.PetStatusEvolved).
		Order("evolved_at DESC").
		Limit(limit).
		Find(&pets).Error
	return pets, err
}
