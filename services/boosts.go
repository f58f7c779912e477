package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kpizzy812/pixelpets-sub000/models"
)

// BoostService sells the three claim modifiers: one-shot snacks,
// permanent ROI-cap boosts and the auto-claim subscription.
type BoostService struct {
	DB     *gorm.DB
	Config *ConfigService
}

func NewBoostService(db *gorm.DB, cfg *ConfigService) *BoostService {
	return &BoostService{DB: db, Config: cfg}
}

// BuySnack attaches a one-shot bonus to a pet. One unconsumed snack per
// pet; cost scales with the bonus it will add to the next claim.
func (s *BoostService) BuySnack(petID, requesterID string, tier models.SnackTier) (*models.Snack, error) {
	bonus, ok := s.Config.SnackBonus(tier)
	if !ok {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	var snack *models.Snack
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		pet, err := lockBoostTarget(tx, petID, requesterID, now)
		if err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.Snack{}).
			Where("pet_id = ? AND consumed = ?", pet.ID, false).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyActive
		}

		var entry models.PetCatalogEntry
		if err := tx.First(&entry, "id = ?", pet.CatalogEntryID).Error; err != nil {
			return err
		}

		dailyProfit := pet.InvestedTotal.Mul(entry.DailyRate)
		bonusAmount := dailyProfit.Mul(bonus)
		cost := decimal.Max(s.Config.SnackMinCost(), bonusAmount.Mul(s.Config.SnackCostCoefficient()))

		if _, err := adjustBalance(tx, pet.AccountID, cost.Neg()); err != nil {
			return err
		}

		snack = &models.Snack{
			ID:           uuid.NewString(),
			PetID:        pet.ID,
			AccountID:    pet.AccountID,
			Tier:         tier,
			BonusPercent: bonus,
			Cost:         cost,
		}
		if err := tx.Create(snack).Error; err != nil {
			return fmt.Errorf("create snack: %w", err)
		}

		meta := fmt.Sprintf(`{"pet_id":%q,"tier":%q}`, pet.ID, tier)
		return appendLedger(tx, pet.AccountID, cost.Neg(), models.LedgerReasonSnackPurchase, meta)
	})
	if err != nil {
		return nil, err
	}
	return snack, nil
}

// BuyRoiBoost permanently raises a pet's payout cap. Increments come from
// a fixed set and the pet's boost total may never pass MaxRoiBoostTotal.
func (s *BoostService) BuyRoiBoost(petID, requesterID string, boostPercent decimal.Decimal) (*models.RoiBoost, error) {
	accepted := false
	for _, inc := range s.Config.RoiBoostIncrements() {
		if inc.Equal(boostPercent) {
			accepted = true
			break
		}
	}
	if !accepted {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	var boost *models.RoiBoost
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		pet, err := lockBoostTarget(tx, petID, requesterID, now)
		if err != nil {
			return err
		}

		current, err := boostTotal(tx, pet.ID)
		if err != nil {
			return err
		}
		if current.Add(boostPercent).GreaterThan(models.MaxRoiBoostTotal) {
			return ErrCapExceeded
		}

		extraProfit := pet.InvestedTotal.Mul(boostPercent)
		cost := decimal.Max(s.Config.RoiBoostMinCost(), extraProfit.Mul(s.Config.RoiBoostCoefficient()))

		if _, err := adjustBalance(tx, pet.AccountID, cost.Neg()); err != nil {
			return err
		}

		boost = &models.RoiBoost{
			ID:           uuid.NewString(),
			PetID:        pet.ID,
			AccountID:    pet.AccountID,
			BoostPercent: boostPercent,
			Cost:         cost,
		}
		if err := tx.Create(boost).Error; err != nil {
			return fmt.Errorf("create roi boost: %w", err)
		}

		meta := fmt.Sprintf(`{"pet_id":%q,"boost_percent":%q}`, pet.ID, boostPercent.String())
		return appendLedger(tx, pet.AccountID, cost.Neg(), models.LedgerReasonRoiBoost, meta)
	})
	if err != nil {
		return nil, err
	}
	return boost, nil
}

// BuySubscription starts an auto-claim subscription for a fixed number of
// months. The commission percentage is frozen at purchase time; one
// active subscription per account.
func (s *BoostService) BuySubscription(accountID string, months int) (*models.AutoClaimSubscription, error) {
	accepted := false
	for _, m := range s.Config.AutoClaimDurations() {
		if m == months {
			accepted = true
			break
		}
	}
	if !accepted {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	var sub *models.AutoClaimSubscription
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&models.AutoClaimSubscription{}).
			Where("account_id = ? AND expires_at > ?", accountID, now).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrAlreadyActive
		}

		price := s.Config.AutoClaimMonthlyPrice().Mul(decimal.NewFromInt(int64(months)))
		if _, err := adjustBalance(tx, accountID, price.Neg()); err != nil {
			return err
		}

		sub = &models.AutoClaimSubscription{
			ID:                uuid.NewString(),
			AccountID:         accountID,
			Months:            months,
			Price:             price,
			CommissionPercent: s.Config.AutoClaimCommission(),
			ExpiresAt:         now.AddDate(0, months, 0),
			TotalCommission:   decimal.Zero,
		}
		if err := tx.Create(sub).Error; err != nil {
			return fmt.Errorf("create subscription: %w", err)
		}

		meta := fmt.Sprintf(`{"months":%d}`, months)
		return appendLedger(tx, accountID, price.Neg(), models.LedgerReasonSubscription, meta)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// lockBoostTarget locks a pet row for a boost purchase and rejects
// terminal pets. Boost purchases share the pet lock with claims so a
// snack bought mid-claim can never straddle the consumption check.
func lockBoostTarget(tx *gorm.DB, petID, requesterID string, now time.Time) (*models.Pet, error) {
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
	if pet.Terminal() {
		return nil, ErrInvalidState
	}
	return &pet, nil
}
