package services

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kpizzy812/pixelpets-sub000/models"
)

// Setting keys backed by the game_settings table. The admin panel updates
// rows at runtime and calls Invalidate on the cache.
const (
	keyReferralPercentPrefix   = "referral_percent_l"   // + level 1..5
	keyReferralThresholdPrefix = "referral_threshold_l" // + level 2..5

	keySellBaseFee = "sell_base_fee"
	keySellMaxFee  = "sell_max_fee"

	keySnackBonusPrefix    = "snack_bonus_" // + lowercased tier
	keySnackCoefficient    = "snack_cost_coefficient"
	keySnackMinCost        = "snack_min_cost"
	keyRoiBoostIncrements  = "roi_boost_increments"
	keyRoiBoostCoefficient = "roi_boost_coefficient"
	keyRoiBoostMinCost     = "roi_boost_min_cost"

	keyAutoClaimMonthlyPrice = "auto_claim_monthly_price"
	keyAutoClaimCommission   = "auto_claim_commission"
	keyAutoClaimDurations    = "auto_claim_durations"

	keyTrainingHours = "training_hours"
)

var defaultSettings = map[string]string{
	keyReferralPercentPrefix + "1": "0.20",
	keyReferralPercentPrefix + "2": "0.15",
	keyReferralPercentPrefix + "3": "0.10",
	keyReferralPercentPrefix + "4": "0.05",
	keyReferralPercentPrefix + "5": "0.02",

	keyReferralThresholdPrefix + "2": "3",
	keyReferralThresholdPrefix + "3": "5",
	keyReferralThresholdPrefix + "4": "10",
	keyReferralThresholdPrefix + "5": "20",

	keySellBaseFee: "0.15",
	keySellMaxFee:  "1.00",

	keySnackBonusPrefix + "cookie": "0.10",
	keySnackBonusPrefix + "steak":  "0.25",
	keySnackBonusPrefix + "feast":  "0.50",
	keySnackCoefficient:            "0.6",
	keySnackMinCost:                "0.05",

	keyRoiBoostIncrements:  "0.05,0.10,0.15,0.20",
	keyRoiBoostCoefficient: "0.25",
	keyRoiBoostMinCost:     "0.5",

	keyAutoClaimMonthlyPrice: "10",
	keyAutoClaimCommission:   "0.03",
	keyAutoClaimDurations:    "1,3,6,12",

	keyTrainingHours: "24",
}

// ConfigService reads economy constants from the game_settings table,
// caching them in memory until Invalidate.
type ConfigService struct {
	DB *gorm.DB

	mu    sync.RWMutex
	cache map[string]string
}

func NewConfigService(db *gorm.DB) *ConfigService {
	return &ConfigService{DB: db}
}

// SeedDefaults inserts any missing setting rows. Existing rows win, so an
// admin-tuned value survives redeploys.
func (s *ConfigService) SeedDefaults() error {
	for k, v := range defaultSettings {
		row := models.GameSetting{Key: k, Value: v}
		if err := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("seed setting %s: %w", k, err)
		}
	}
	return nil
}

// Invalidate drops the cache; the next read reloads from the table.
func (s *ConfigService) Invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
}

// Set upserts one setting and invalidates the cache.
func (s *ConfigService) Set(key, value string) error {
	row := models.GameSetting{Key: key, Value: value}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

func (s *ConfigService) get(key string) string {
	s.mu.RLock()
	if s.cache != nil {
		v := s.cache[key]
		s.mu.RUnlock()
		if v != "" {
			return v
		}
		return defaultSettings[key]
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		var rows []models.GameSetting
		if err := s.DB.Find(&rows).Error; err != nil {
			// Settings are all defaulted, so a failed load degrades to the
			// shipped constants instead of blocking the economy.
			return defaultSettings[key]
		}
		s.cache = make(map[string]string, len(rows))
		for _, r := range rows {
			s.cache[r.Key] = r.Value
		}
	}
	if v := s.cache[key]; v != "" {
		return v
	}
	return defaultSettings[key]
}

func (s *ConfigService) getDecimal(key string) decimal.Decimal {
	d, err := decimal.NewFromString(s.get(key))
	if err != nil {
		d, _ = decimal.NewFromString(defaultSettings[key])
	}
	return d
}

func (s *ConfigService) getInt(key string) int {
	n, err := strconv.Atoi(s.get(key))
	if err != nil {
		n, _ = strconv.Atoi(defaultSettings[key])
	}
	return n
}

// ReferralPercentages returns the payout fraction per tree level 1..5.
func (s *ConfigService) ReferralPercentages() map[int]decimal.Decimal {
	out := make(map[int]decimal.Decimal, models.MaxReferralDepth)
	for l := 1; l <= models.MaxReferralDepth; l++ {
		out[l] = s.getDecimal(keyReferralPercentPrefix + strconv.Itoa(l))
	}
	return out
}

// UnlockThresholds returns the active-referral count required to unlock
// each level 2..5. Level 1 is always unlocked and has no row.
func (s *ConfigService) UnlockThresholds() map[int]int64 {
	out := make(map[int]int64, models.MaxReferralDepth-1)
	for l := 2; l <= models.MaxReferralDepth; l++ {
		out[l] = int64(s.getInt(keyReferralThresholdPrefix + strconv.Itoa(l)))
	}
	return out
}

func (s *ConfigService) SellBaseFee() decimal.Decimal { return s.getDecimal(keySellBaseFee) }
func (s *ConfigService) SellMaxFee() decimal.Decimal  { return s.getDecimal(keySellMaxFee) }

// SnackBonus returns the bonus fraction for a tier, ok=false for an
// unknown tier.
func (s *ConfigService) SnackBonus(tier models.SnackTier) (decimal.Decimal, bool) {
	switch tier {
	case models.SnackTierCookie, models.SnackTierSteak, models.SnackTierFeast:
		return s.getDecimal(keySnackBonusPrefix + strings.ToLower(string(tier))), true
	}
	return decimal.Zero, false
}

func (s *ConfigService) SnackCostCoefficient() decimal.Decimal {
	return s.getDecimal(keySnackCoefficient)
}
func (s *ConfigService) SnackMinCost() decimal.Decimal { return s.getDecimal(keySnackMinCost) }

// RoiBoostIncrements returns the accepted boost percentages.
func (s *ConfigService) RoiBoostIncrements() []decimal.Decimal {
	parts := strings.Split(s.get(keyRoiBoostIncrements), ",")
	out := make([]decimal.Decimal, 0, len(parts))
	for _, p := range parts {
		if d, err := decimal.NewFromString(strings.TrimSpace(p)); err == nil {
			out = append(out, d)
		}
	}
	return out
}

func (s *ConfigService) RoiBoostCoefficient() decimal.Decimal {
	return s.getDecimal(keyRoiBoostCoefficient)
}
func (s *ConfigService) RoiBoostMinCost() decimal.Decimal { return s.getDecimal(keyRoiBoostMinCost) }

func (s *ConfigService) AutoClaimMonthlyPrice() decimal.Decimal {
	return s.getDecimal(keyAutoClaimMonthlyPrice)
}
func (s *ConfigService) AutoClaimCommission() decimal.Decimal {
	return s.getDecimal(keyAutoClaimCommission)
}

// AutoClaimDurations returns the accepted subscription lengths in months.
func (s *ConfigService) AutoClaimDurations() []int {
	parts := strings.Split(s.get(keyAutoClaimDurations), ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		if n, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			out = append(out, n)
		}
	}
	return out
}

func (s *ConfigService) TrainingDuration() time.Duration {
	return time.Duration(s.getInt(keyTrainingHours)) * time.Hour
}
