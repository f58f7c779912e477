package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kpizzy812/pixelpets-sub000/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Account{},
		&models.PetCatalogEntry{},
		&models.Pet{},
		&models.Snack{},
		&models.RoiBoost{},
		&models.AutoClaimSubscription{},
		&models.LedgerEntry{},
		&models.ReferralReward{},
		&models.ReferralStat{},
		&models.GameSetting{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestEconomy(t *testing.T) (*gorm.DB, *ConfigService, *PetService, *BoostService, *ReferralService, *recordingNotifier) {
	t.Helper()
	db := setupTestDB(t)
	cfg := NewConfigService(db)
	if err := cfg.SeedDefaults(); err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	n := &recordingNotifier{}
	refs := NewReferralService(db, cfg)
	pets := NewPetService(db, cfg, refs, n)
	boosts := NewBoostService(db, cfg)
	return db, cfg, pets, boosts, refs, n
}

func createAccount(t *testing.T, db *gorm.DB, balance string, referrerID *string) *models.Account {
	t.Helper()
	bal, err := decimal.NewFromString(balance)
	if err != nil {
		t.Fatalf("bad balance %q: %v", balance, err)
	}
	account := &models.Account{
		ID:                    uuid.NewString(),
		TelegramID:            int64(uuid.New().ID()),
		Username:              "player-" + uuid.NewString()[:8],
		Balance:               bal,
		ReferralCode:          "code-" + uuid.NewString()[:8],
		ReferrerID:            referrerID,
		UnlockedReferralLevel: 1,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}
	return account
}

func createCatalogEntry(t *testing.T, db *gorm.DB, basePrice, dailyRate, roiCap string) *models.PetCatalogEntry {
	t.Helper()
	entry := &models.PetCatalogEntry{
		ID:               uuid.NewString(),
		Name:             "Pixel Corgi",
		Emoji:            "🐶",
		BasePrice:        mustDecimal(t, basePrice),
		DailyRate:        mustDecimal(t, dailyRate),
		RoiCapMultiplier: mustDecimal(t, roiCap),
		AdultPrice:       mustDecimal(t, basePrice).Mul(decimal.NewFromInt(3)),
		MythicPrice:      mustDecimal(t, basePrice).Mul(decimal.NewFromInt(10)),
		Active:           true,
		Available:        true,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("create catalog entry: %v", err)
	}
	return entry
}

func createReadyPet(t *testing.T, db *gorm.DB, accountID, entryID, invested string) *models.Pet {
	t.Helper()
	pet := &models.Pet{
		ID:             uuid.NewString(),
		AccountID:      accountID,
		CatalogEntryID: entryID,
		Slot:           0,
		Level:          models.PetLevelBaby,
		Status:         models.PetStatusReadyToClaim,
		InvestedTotal:  mustDecimal(t, invested),
		ProfitClaimed:  decimal.Zero,
	}
	if err := db.Create(pet).Error; err != nil {
		t.Fatalf("create pet: %v", err)
	}
	return pet
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func reloadPet(t *testing.T, db *gorm.DB, id string) *models.Pet {
	t.Helper()
	var pet models.Pet
	if err := db.First(&pet, "id = ?", id).Error; err != nil {
		t.Fatalf("reload pet: %v", err)
	}
	return &pet
}

func reloadAccount(t *testing.T, db *gorm.DB, id string) *models.Account {
	t.Helper()
	var account models.Account
	if err := db.First(&account, "id = ?", id).Error; err != nil {
		t.Fatalf("reload account: %v", err)
	}
	return &account
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu               sync.Mutex
	trainingComplete []int64
	evolved          []int64
}

func (n *recordingNotifier) NotifyTrainingComplete(_ context.Context, telegramID int64, _ string, _ decimal.Decimal) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.trainingComplete = append(n.trainingComplete, telegramID)
	return nil
}

func (n *recordingNotifier) NotifyEvolved(_ context.Context, telegramID int64, _ string, _ decimal.Decimal) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.evolved = append(n.evolved, telegramID)
	return nil
}

func (n *recordingNotifier) trainingCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.trainingComplete)
}
