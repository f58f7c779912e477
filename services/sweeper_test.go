package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kpizzy812/pixelpets-sub000/models"
)

func TestAutoClaimSweep(t *testing.T) {
	db, cfg, pets, boosts, _, n := newTestEconomy(t)
	sweeper := NewSweeperService(db, pets, cfg, n)

	entry := createCatalogEntry(t, db, "100", "0.015", "1.7")

	subscriber := createAccount(t, db, "100", nil)
	_, err := boosts.BuySubscription(subscriber.ID, 1)
	require.NoError(t, err)
	duePet := createReadyPet(t, db, subscriber.ID, entry.ID, "100")

	// Training window over, but the row still says TRAINING: the sweep
	// must pick it up through the lazy completion check.
	trainingPet := createReadyPet(t, db, subscriber.ID, entry.ID, "100")
	ended := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(trainingPet).Updates(map[string]interface{}{
		"status":           models.PetStatusTraining,
		"training_ends_at": ended,
	}).Error)

	// No subscription: the sweep must leave this pet alone.
	outsider := createAccount(t, db, "0", nil)
	outsiderPet := createReadyPet(t, db, outsider.ID, entry.ID, "100")

	stats := sweeper.RunAutoClaimSweep(context.Background())
	require.Equal(t, 2, stats.Processed)
	require.Equal(t, 2, stats.Succeeded)
	require.Zero(t, stats.Failed)

	require.Equal(t, models.PetStatusOwnedIdle, reloadPet(t, db, duePet.ID).Status)
	require.Equal(t, models.PetStatusOwnedIdle, reloadPet(t, db, trainingPet.ID).Status)
	require.Equal(t, models.PetStatusReadyToClaim, reloadPet(t, db, outsiderPet.ID).Status)

	// Commission withheld on both claims: 2 × 1.5 × 0.97 = 2.91 paid out.
	var sub models.AutoClaimSubscription
	require.NoError(t, db.First(&sub, "account_id = ?", subscriber.ID).Error)
	require.Equal(t, int64(2), sub.TotalClaims)
	require.True(t, sub.TotalCommission.Equal(mustDecimal(t, "0.09")), "commission = %s", sub.TotalCommission)

	// Re-running finds nothing: claimed pets left the eligibility set.
	stats = sweeper.RunAutoClaimSweep(context.Background())
	require.Zero(t, stats.Processed)
}

func TestTrainingNotificationSweep(t *testing.T) {
	db, cfg, pets, _, _, n := newTestEconomy(t)
	sweeper := NewSweeperService(db, pets, cfg, n)

	entry := createCatalogEntry(t, db, "100", "0.015", "1.7")
	account := createAccount(t, db, "0", nil)

	pet := createReadyPet(t, db, account.ID, entry.ID, "100")
	ended := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(pet).Updates(map[string]interface{}{
		"status":           models.PetStatusTraining,
		"training_ends_at": ended,
	}).Error)

	// Still mid-training: must not be notified.
	earlyPet := createReadyPet(t, db, account.ID, entry.ID, "100")
	endsLater := time.Now().Add(time.Hour)
	require.NoError(t, db.Model(earlyPet).Updates(map[string]interface{}{
		"status":           models.PetStatusTraining,
		"training_ends_at": endsLater,
	}).Error)

	stats := sweeper.RunTrainingNotificationSweep(context.Background())
	require.Equal(t, 1, stats.Processed)
	require.Equal(t, 1, stats.Succeeded)
	require.Equal(t, 1, n.trainingCount())

	after := reloadPet(t, db, pet.ID)
	require.Equal(t, models.PetStatusReadyToClaim, after.Status)
	require.NotNil(t, after.TrainingNotifiedAt)

	// Idempotent: the second run notifies nobody.
	stats = sweeper.RunTrainingNotificationSweep(context.Background())
	require.Zero(t, stats.Processed)
	require.Equal(t, 1, n.trainingCount())
}
