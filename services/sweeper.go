package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kpizzy812/pixelpets-sub000/logging"
	"github.com/kpizzy812/pixelpets-sub000/models"
	"github.com/kpizzy812/pixelpets-sub000/notifier"
)

// SweepStats summarizes one sweep iteration for observability. There are
// no retries beyond the next scheduled interval.
type SweepStats struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// SweeperService runs the two periodic sweeps: auto-claiming for
// subscribers and training-complete notifications. Both are idempotent:
// a processed pet leaves the eligibility condition, so re-running after a
// crash only touches still-eligible pets.
type SweeperService struct {
	DB       *gorm.DB
	Pets     *PetService
	Config   *ConfigService
	Notifier notifier.Notifier

	scheduler gocron.Scheduler
}

func NewSweeperService(db *gorm.DB, pets *PetService, cfg *ConfigService, n notifier.Notifier) *SweeperService {
	return &SweeperService{DB: db, Pets: pets, Config: cfg, Notifier: n}
}

// Start registers both sweeps on their intervals and starts the
// scheduler.
func (s *SweeperService) Start(ctx context.Context, autoClaimEvery, trainingNotifyEvery time.Duration) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.scheduler = sched

	if _, err := sched.NewJob(
		gocron.DurationJob(autoClaimEvery),
		gocron.NewTask(func() {
			stats := s.RunAutoClaimSweep(ctx)
			logging.L().Info("auto-claim sweep finished",
				zap.Int("processed", stats.Processed),
				zap.Int("succeeded", stats.Succeeded),
				zap.Int("failed", stats.Failed))
		}),
	); err != nil {
		return err
	}

	if _, err := sched.NewJob(
		gocron.DurationJob(trainingNotifyEvery),
		gocron.NewTask(func() {
			stats := s.RunTrainingNotificationSweep(ctx)
			logging.L().Info("training notification sweep finished",
				zap.Int("processed", stats.Processed),
				zap.Int("succeeded", stats.Succeeded),
				zap.Int("failed", stats.Failed))
		}),
	); err != nil {
		return err
	}

	sched.Start()
	return nil
}

// Stop shuts the scheduler down gracefully.
func (s *SweeperService) Stop() {
	if s.scheduler != nil {
		_ = s.scheduler.Shutdown()
	}
}

// RunAutoClaimSweep claims every due pet owned by an account with an
// active subscription. One pet's failure never blocks the others; the
// per-pet lock inside Claim keeps a racing manual claim from
// double-paying.
func (s *SweeperService) RunAutoClaimSweep(ctx context.Context) SweepStats {
	now := time.Now()
	stats := SweepStats{}

	var pets []models.Pet
	err := s.DB.
		Select("pets.*").
		Joins("JOIN auto_claim_subscriptions ON auto_claim_subscriptions.account_id = pets.account_id AND auto_claim_subscriptions.expires_at > ?", now).
		Where("pets.status = ? OR (pets.status = ? AND pets.training_ends_at <= ?)",
			models.PetStatusReadyToClaim, models.PetStatusTraining, now).
		Find(&pets).Error
	if err != nil {
		logging.L().Error("auto-claim sweep query failed", zap.Error(err))
		return stats
	}

	for i := range pets {
		if ctx.Err() != nil {
			break
		}
		stats.Processed++
		if _, err := s.Pets.Claim(pets[i].ID, "", true); err != nil {
			stats.Failed++
			logging.L().Warn("auto-claim failed",
				zap.String("pet_id", pets[i].ID), zap.Error(err))
			continue
		}
		stats.Succeeded++
	}
	return stats
}

// RunTrainingNotificationSweep transitions TRAINING pets past their
// window to READY_TO_CLAIM and tells the owner once. The notified stamp
// keeps the sweep idempotent; notification failures are logged and
// swallowed.
func (s *SweeperService) RunTrainingNotificationSweep(ctx context.Context) SweepStats {
	now := time.Now()
	stats := SweepStats{}

	var pets []models.Pet
	err := s.DB.
		Where("status = ? AND training_ends_at <= ? AND training_notified_at IS NULL",
			models.PetStatusTraining, now).
		Find(&pets).Error
	if err != nil {
		logging.L().Error("training sweep query failed", zap.Error(err))
		return stats
	}

	for i := range pets {
		if ctx.Err() != nil {
			break
		}
		stats.Processed++
		if err := s.notifyTrainingComplete(ctx, pets[i].ID, now); err != nil {
			stats.Failed++
			logging.L().Warn("training notification failed",
				zap.String("pet_id", pets[i].ID), zap.Error(err))
			continue
		}
		stats.Succeeded++
	}
	return stats
}

func (s *SweeperService) notifyTrainingComplete(ctx context.Context, petID string, now time.Time) error {
	var owner models.Account
	var petName string
	estimate := decimal.Zero

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var pet models.Pet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&pet, "id = ?", petID).Error; err != nil {
			return err
		}
		// Another writer may have claimed or sold it since the scan.
		if !pet.TrainingDone(now) || pet.TrainingNotifiedAt != nil {
			return nil
		}

		var entry models.PetCatalogEntry
		if err := tx.First(&entry, "id = ?", pet.CatalogEntryID).Error; err != nil {
			return err
		}
		if err := tx.First(&owner, "id = ?", pet.AccountID).Error; err != nil {
			return err
		}

		petName = pet.Nickname
		if petName == "" {
			petName = entry.Name
		}
		estimate = pet.InvestedTotal.Mul(entry.DailyRate)

		return tx.Model(&models.Pet{}).Where("id = ?", pet.ID).Updates(map[string]interface{}{
			"status":               models.PetStatusReadyToClaim,
			"training_notified_at": now,
		}).Error
	})
	if err != nil {
		return err
	}
	if owner.ID == "" {
		return nil
	}

	if err := s.Notifier.NotifyTrainingComplete(ctx, owner.TelegramID, petName, estimate); err != nil {
		logging.L().Warn("training-complete notification delivery failed",
			zap.String("account_id", owner.ID), zap.Error(err))
	}
	return nil
}
