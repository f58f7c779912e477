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

// ReferralService walks the referrer ancestry and cascades a share of
// every successful claim to up to five unlocked ancestors.
type ReferralService struct {
	DB     *gorm.DB
	Config *ConfigService
}

func NewReferralService(db *gorm.DB, cfg *ConfigService) *ReferralService {
	return &ReferralService{DB: db, Config: cfg}
}

// LevelStats is the per-level rollup slice returned to the profile page.
type LevelStats struct {
	Level       int             `json:"level"`
	Unlocked    bool            `json:"unlocked"`
	RewardCount int64           `json:"reward_count"`
	TotalEarned decimal.Decimal `json:"total_earned"`
}

// StatsSummary is the referral dashboard for one account.
type StatsSummary struct {
	ReferralCode        string          `json:"referral_code"`
	ActiveReferrals     int64           `json:"active_referrals"`
	UnlockedLevel       int             `json:"unlocked_level"`
	Levels              []LevelStats    `json:"levels"`
	TotalEarned         decimal.Decimal `json:"total_earned"`
	DirectReferralCount int64           `json:"direct_referral_count"`
}

// ancestorChain follows referrer back-references from the source account,
// ordered level 1 outward, stopping at the first missing hop.
func (s *ReferralService) ancestorChain(tx *gorm.DB, accountID string) ([]models.Account, error) {
	chain := make([]models.Account, 0, models.MaxReferralDepth)
	currentID := accountID
	for len(chain) < models.MaxReferralDepth {
		var current models.Account
		if err := tx.Select("id", "referrer_id").First(&current, "id = ?", currentID).Error; err != nil {
			return nil, fmt.Errorf("walk referral chain: %w", err)
		}
		if current.ReferrerID == nil {
			break
		}
		var ancestor models.Account
		if err := tx.First(&ancestor, "id = ?", *current.ReferrerID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				break
			}
			return nil, err
		}
		chain = append(chain, ancestor)
		currentID = ancestor.ID
	}
	return chain, nil
}

// activeReferralCount counts level-1 referrals that currently own at
// least one non-SOLD pet.
func (s *ReferralService) activeReferralCount(tx *gorm.DB, accountID string) (int64, error) {
	var n int64
	err := tx.Model(&models.Account{}).
		Where("referrer_id = ?", accountID).
		Where("EXISTS (SELECT 1 FROM pets WHERE pets.account_id = accounts.id AND pets.status <> ?)",
			models.PetStatusSold).
		Count(&n).Error
	return n, err
}

// unlockedLevelFor returns the highest level L such that every step
// 2..L meets its active-referral threshold. Level 1 is always unlocked.
func unlockedLevelFor(activeCount int64, thresholds map[int]int64) int {
	level := 1
	for l := 2; l <= models.MaxReferralDepth; l++ {
		if activeCount < thresholds[l] {
			break
		}
		level = l
	}
	return level
}

// refreshUnlockedLevel recomputes and persists an account's unlocked
// level from live data. Called inside the distribution transaction so the
// gate never acts on a stale value.
func (s *ReferralService) refreshUnlockedLevel(tx *gorm.DB, account *models.Account) error {
	active, err := s.activeReferralCount(tx, account.ID)
	if err != nil {
		return err
	}
	level := unlockedLevelFor(active, s.Config.UnlockThresholds())
	if level != account.UnlockedReferralLevel {
		if err := tx.Model(&models.Account{}).Where("id = ?", account.ID).
			Update("unlocked_referral_level", level).Error; err != nil {
			return err
		}
		account.UnlockedReferralLevel = level
	}
	return nil
}

// Distribute cascades claimAmount's referral shares inside the caller's
// transaction. An ancestor whose unlocked level is below its tree level
// earns nothing from this claim; zero rewards are skipped silently.
func (s *ReferralService) Distribute(tx *gorm.DB, sourceAccountID string, claimAmount decimal.Decimal) error {
	if !claimAmount.IsPositive() {
		return nil
	}
	chain, err := s.ancestorChain(tx, sourceAccountID)
	if err != nil {
		return err
	}
	if len(chain) == 0 {
		return nil
	}

	percentages := s.Config.ReferralPercentages()

	for i := range chain {
		level := i + 1
		ancestor := &chain[i]

		if err := s.refreshUnlockedLevel(tx, ancestor); err != nil {
			return err
		}
		if ancestor.UnlockedReferralLevel < level {
			continue
		}

		reward := claimAmount.Mul(percentages[level])
		if !reward.IsPositive() {
			continue
		}

		if _, err := adjustBalance(tx, ancestor.ID, reward); err != nil {
			return err
		}
		meta := fmt.Sprintf(`{"source_account_id":%q,"level":%d,"claim_amount":%q}`,
			sourceAccountID, level, claimAmount.String())
		if err := appendLedger(tx, ancestor.ID, reward, models.LedgerReasonReferralReward, meta); err != nil {
			return err
		}

		record := models.ReferralReward{
			ID:              uuid.NewString(),
			SourceAccountID: sourceAccountID,
			BeneficiaryID:   ancestor.ID,
			Level:           level,
			ClaimAmount:     claimAmount,
			RewardAmount:    reward,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("record referral reward: %w", err)
		}

		if err := bumpReferralStat(tx, ancestor.ID, level, reward); err != nil {
			return err
		}
	}
	return nil
}

// bumpReferralStat increments the per-level rollup, creating the row on
// first use.
func bumpReferralStat(tx *gorm.DB, accountID string, level int, reward decimal.Decimal) error {
	stat := models.ReferralStat{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Level:       level,
		RewardCount: 1,
		TotalEarned: reward,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}, {Name: "level"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"reward_count": gorm.Expr("reward_count + 1"),
			"total_earned": gorm.Expr("total_earned + ?", reward),
			"updated_at":   time.Now(),
		}),
	}).Create(&stat).Error
}

// Stats builds the referral dashboard, refreshing the unlocked level so
// the page never shows a value stale relative to pet sales.
func (s *ReferralService) Stats(accountID string) (*StatsSummary, error) {
	var account models.Account
	if err := s.DB.First(&account, "id = ?", accountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	summary := &StatsSummary{ReferralCode: account.ReferralCode, TotalEarned: decimal.Zero}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		active, err := s.activeReferralCount(tx, accountID)
		if err != nil {
			return err
		}
		summary.ActiveReferrals = active
		if err := s.refreshUnlockedLevel(tx, &account); err != nil {
			return err
		}
		summary.UnlockedLevel = account.UnlockedReferralLevel

		if err := tx.Model(&models.Account{}).
			Where("referrer_id = ?", accountID).
			Count(&summary.DirectReferralCount).Error; err != nil {
			return err
		}

		var stats []models.ReferralStat
		if err := tx.Where("account_id = ?", accountID).Find(&stats).Error; err != nil {
			return err
		}
		byLevel := make(map[int]models.ReferralStat, len(stats))
		for _, st := range stats {
			byLevel[st.Level] = st
		}
		for l := 1; l <= models.MaxReferralDepth; l++ {
			ls := LevelStats{
				Level:       l,
				Unlocked:    l <= summary.UnlockedLevel,
				TotalEarned: decimal.Zero,
			}
			if st, ok := byLevel[l]; ok {
				ls.RewardCount = st.RewardCount
				ls.TotalEarned = st.TotalEarned
			}
			summary.TotalEarned = summary.TotalEarned.Add(ls.TotalEarned)
			summary.Levels = append(summary.Levels, ls)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
