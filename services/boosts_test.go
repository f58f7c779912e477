package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kpizzy812/pixelpets-sub000/models"
)

func TestBuySnackPricing(t *testing.T) {
	db, _, _, boosts, _, _ := newTestEconomy(t)

	account := createAccount(t, db, "10", nil)
	entry := createCatalogEntry(t, db, "100", "0.015", "1.7")
	pet := createReadyPet(t, db, account.ID, entry.ID, "100")

	// dailyProfit = 1.5, bonus 10% -> bonusAmount 0.15, cost = 0.15*0.6 = 0.09.
	snack, err := boosts.BuySnack(pet.ID, account.ID, models.SnackTierCookie)
	require.NoError(t, err)
	require.True(t, snack.BonusPercent.Equal(mustDecimal(t, "0.10")))
	require.True(t, snack.Cost.Equal(mustDecimal(t, "0.09")), "cost = %s", snack.Cost)
	require.True(t, reloadAccount(t, db, account.ID).Balance.Equal(mustDecimal(t, "9.91")))

	// Second unconsumed snack on the same pet is rejected.
	_, err = boosts.BuySnack(pet.ID, account.ID, models.SnackTierSteak)
	require.ErrorIs(t, err, ErrAlreadyActive)

	var unconsumed int64
	require.NoError(t, db.Model(&models.Snack{}).
		Where("pet_id = ? AND consumed = ?", pet.ID, false).
		Count(&unconsumed).Error)
	require.Equal(t, int64(1), unconsumed)
}

func TestBuySnackValidations(t *testing.T) {
	db, _, pets, boosts, _, _ := newTestEconomy(t)

	account := createAccount(t, db, "10", nil)
	entry := createCatalogEntry(t, db, "100", "0.015", "1.7")

	t.Run("unknown tier", func(t *testing.T) {
		pet := createReadyPet(t, db, account.ID, entry.ID, "100")
		_, err := boosts.BuySnack(pet.ID, account.ID, models.SnackTier("CAVIAR"))
		require.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("terminal pet", func(t *testing.T) {
		pet := createReadyPet(t, db, account.ID, entry.ID, "100")
		_, err := pets.Sell(pet.ID, account.ID)
		require.NoError(t, err)
		_, err = boosts.BuySnack(pet.ID, account.ID, models.SnackTierCookie)
		require.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		broke := createAccount(t, db, "0", nil)
		pet := createReadyPet(t, db, broke.ID, entry.ID, "100")
		_, err := boosts.BuySnack(pet.ID, broke.ID, models.SnackTierCookie)
		require.ErrorIs(t, err, ErrInsufficientBalance)
	})
}

func TestBuyRoiBoost(t *testing.T) {
	db, _, _, boosts, _, _ := newTestEconomy(t)

	account := createAccount(t, db, "100", nil)
	entry := createCatalogEntry(t, db, "100", "0.015", "1.7")
	pet := createReadyPet(t, db, account.ID, entry.ID, "100")

	// extraProfit = 100*0.10 = 10, cost = 10*0.25 = 2.5.
	boost, err := boosts.BuyRoiBoost(pet.ID, account.ID, mustDecimal(t, "0.10"))
	require.NoError(t, err)
	require.True(t, boost.Cost.Equal(mustDecimal(t, "2.5")), "cost = %s", boost.Cost)
	require.True(t, reloadAccount(t, db, account.ID).Balance.Equal(mustDecimal(t, "97.5")))

	total, err := boostTotal(db, pet.ID)
	require.NoError(t, err)
	require.True(t, total.Equal(mustDecimal(t, "0.10")))

	// 0.10 + 0.20 + 0.20 = 0.50 is allowed exactly at the cap.
	_, err = boosts.BuyRoiBoost(pet.ID, account.ID, mustDecimal(t, "0.20"))
	require.NoError(t, err)
	_, err = boosts.BuyRoiBoost(pet.ID, account.ID, mustDecimal(t, "0.20"))
	require.NoError(t, err)

	// Any further boost exceeds 0.50 and leaves state unchanged.
	balanceBefore := reloadAccount(t, db, account.ID).Balance
	_, err = boosts.BuyRoiBoost(pet.ID, account.ID, mustDecimal(t, "0.05"))
	require.ErrorIs(t, err, ErrCapExceeded)
	require.True(t, reloadAccount(t, db, account.ID).Balance.Equal(balanceBefore))

	total, err = boostTotal(db, pet.ID)
	require.NoError(t, err)
	require.True(t, total.Equal(mustDecimal(t, "0.50")))
}

func TestBuyRoiBoostRejectsOffMenuIncrement(t *testing.T) {
	db, _, _, boosts, _, _ := newTestEconomy(t)

	account := createAccount(t, db, "100", nil)
	entry := createCatalogEntry(t, db, "100", "0.015", "1.7")
	pet := createReadyPet(t, db, account.ID, entry.ID, "100")

	_, err := boosts.BuyRoiBoost(pet.ID, account.ID, mustDecimal(t, "0.07"))
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRoiBoostRaisesClaimCap(t *testing.T) {
	db, _, pets, boosts, _, _ := newTestEconomy(t)

	account := createAccount(t, db, "100", nil)
	// Base cap 0.01 -> maxProfit 1; +5% boost -> maxProfit 6.
	entry := createCatalogEntry(t, db, "100", "0.015", "0.01")
	pet := createReadyPet(t, db, account.ID, entry.ID, "100")

	_, err := boosts.BuyRoiBoost(pet.ID, account.ID, mustDecimal(t, "0.05"))
	require.NoError(t, err)

	result, err := pets.Claim(pet.ID, account.ID, false)
	require.NoError(t, err)
	require.True(t, result.BoostPercent.Equal(mustDecimal(t, "0.05")))
	// Full base of 1.5 fits under the boosted cap of 6.
	require.True(t, result.Claimable.Equal(mustDecimal(t, "1.5")), "claimable = %s", result.Claimable)
	require.False(t, result.Evolved)
}

func TestBuySubscription(t *testing.T) {
	db, _, _, boosts, _, _ := newTestEconomy(t)

	account := createAccount(t, db, "100", nil)

	sub, err := boosts.BuySubscription(account.ID, 3)
	require.NoError(t, err)
	require.True(t, sub.Price.Equal(mustDecimal(t, "30")))
	require.True(t, sub.CommissionPercent.Equal(mustDecimal(t, "0.03")))
	require.True(t, sub.Active(time.Now()))
	require.True(t, reloadAccount(t, db, account.ID).Balance.Equal(mustDecimal(t, "70")))

	// One active subscription per account.
	_, err = boosts.BuySubscription(account.ID, 1)
	require.ErrorIs(t, err, ErrAlreadyActive)

	// Off-menu duration.
	other := createAccount(t, db, "100", nil)
	_, err = boosts.BuySubscription(other.ID, 2)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAutoClaimCommission(t *testing.T) {
	db, _, pets, boosts, _, _ := newTestEconomy(t)

	account := createAccount(t, db, "100", nil)
	entry := createCatalogEntry(t, db, "100", "0.015", "1.7")
	pet := createReadyPet(t, db, account.ID, entry.ID, "100")

	_, err := boosts.BuySubscription(account.ID, 1)
	require.NoError(t, err)
	balanceBefore := reloadAccount(t, db, account.ID).Balance

	result, err := pets.Claim(pet.ID, "", true)
	require.NoError(t, err)

	// claimable 1.5 at 3%: commission 0.045, payable 1.455.
	require.True(t, result.Claimable.Equal(mustDecimal(t, "1.5")))
	require.True(t, result.Commission.Equal(mustDecimal(t, "0.045")), "commission = %s", result.Commission)
	require.True(t, result.Payable.Equal(mustDecimal(t, "1.455")), "payable = %s", result.Payable)

	// Gross consumes the cap, net hits the balance.
	require.True(t, reloadPet(t, db, pet.ID).ProfitClaimed.Equal(mustDecimal(t, "1.5")))
	require.True(t, reloadAccount(t, db, account.ID).Balance.Equal(balanceBefore.Add(mustDecimal(t, "1.455"))))

	var sub models.AutoClaimSubscription
	require.NoError(t, db.First(&sub, "account_id = ?", account.ID).Error)
	require.Equal(t, int64(1), sub.TotalClaims)
	require.True(t, sub.TotalCommission.Equal(mustDecimal(t, "0.045")))

	// The claim row carries the gross and the fee row its negative share,
	// so replaying the ledger lands on the actual balance.
	var ledger []models.LedgerEntry
	require.NoError(t, db.Where("account_id = ?", account.ID).Find(&ledger).Error)
	replayed := decimal.Zero
	var claimAmount, feeAmount decimal.Decimal
	for _, e := range ledger {
		replayed = replayed.Add(e.Amount)
		switch e.Reason {
		case models.LedgerReasonClaim:
			claimAmount = e.Amount
		case models.LedgerReasonAutoClaimFee:
			feeAmount = e.Amount
		}
	}
	require.True(t, claimAmount.Equal(mustDecimal(t, "1.5")), "claim row = %s", claimAmount)
	require.True(t, feeAmount.Equal(mustDecimal(t, "-0.045")), "fee row = %s", feeAmount)
	require.True(t, mustDecimal(t, "100").Add(replayed).Equal(reloadAccount(t, db, account.ID).Balance))
}

func TestManualClaimPaysNoCommission(t *testing.T) {
	db, _, pets, boosts, _, _ := newTestEconomy(t)

	account := createAccount(t, db, "100", nil)
	entry := createCatalogEntry(t, db, "100", "0.015", "1.7")
	pet := createReadyPet(t, db, account.ID, entry.ID, "100")

	_, err := boosts.BuySubscription(account.ID, 1)
	require.NoError(t, err)

	result, err := pets.Claim(pet.ID, account.ID, false)
	require.NoError(t, err)
	require.True(t, result.Commission.IsZero())
	require.True(t, result.Payable.Equal(mustDecimal(t, "1.5")))
}
