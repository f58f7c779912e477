package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kpizzy812/pixelpets-sub000/models"
)

func TestConfigDefaults(t *testing.T) {
	db := setupTestDB(t)
	cfg := NewConfigService(db)
	require.NoError(t, cfg.SeedDefaults())

	percentages := cfg.ReferralPercentages()
	require.True(t, percentages[1].Equal(mustDecimal(t, "0.20")))
	require.True(t, percentages[5].Equal(mustDecimal(t, "0.02")))

	thresholds := cfg.UnlockThresholds()
	require.Equal(t, int64(3), thresholds[2])
	require.Equal(t, int64(20), thresholds[5])

	require.True(t, cfg.SellBaseFee().Equal(mustDecimal(t, "0.15")))
	require.True(t, cfg.SellMaxFee().Equal(mustDecimal(t, "1.00")))

	bonus, ok := cfg.SnackBonus(models.SnackTierCookie)
	require.True(t, ok)
	require.True(t, bonus.Equal(mustDecimal(t, "0.10")))
	_, ok = cfg.SnackBonus(models.SnackTier("CAVIAR"))
	require.False(t, ok)

	require.Len(t, cfg.RoiBoostIncrements(), 4)
	require.Equal(t, []int{1, 3, 6, 12}, cfg.AutoClaimDurations())
	require.Equal(t, 24*time.Hour, cfg.TrainingDuration())
}

func TestConfigSetInvalidatesCache(t *testing.T) {
	db := setupTestDB(t)
	cfg := NewConfigService(db)
	require.NoError(t, cfg.SeedDefaults())

	// Warm the cache.
	require.True(t, cfg.SellBaseFee().Equal(mustDecimal(t, "0.15")))

	require.NoError(t, cfg.Set("sell_base_fee", "0.20"))
	require.True(t, cfg.SellBaseFee().Equal(mustDecimal(t, "0.20")))
}

func TestConfigSeedKeepsAdminOverrides(t *testing.T) {
	db := setupTestDB(t)
	cfg := NewConfigService(db)
	require.NoError(t, cfg.SeedDefaults())
	require.NoError(t, cfg.Set("sell_base_fee", "0.25"))

	// Redeploy: seeding again must not clobber the tuned value.
	require.NoError(t, cfg.SeedDefaults())
	cfg.Invalidate()
	require.True(t, cfg.SellBaseFee().Equal(mustDecimal(t, "0.25")))
}
