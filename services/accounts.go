package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/kpizzy812/pixelpets-sub000/models"
)

type AccountService struct {
	DB *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{DB: db}
}

// EnsureAccount returns the account for a Telegram user, creating it on
// first login. A referral code is only honored at creation time; a code
// pointing at the account itself or at nothing binds no referrer.
func (s *AccountService) EnsureAccount(telegramID int64, username, referralCodeUsed string) (*models.Account, error) {
	var account models.Account
	err := s.DB.Where("telegram_id = ?", telegramID).First(&account).Error
	if err == nil {
		return &account, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	account = models.Account{
		ID:                    uuid.NewString(),
		TelegramID:            telegramID,
		Username:              username,
		ReferralCode:          makeReferralCode(username),
		UnlockedReferralLevel: 1,
	}

	if referralCodeUsed != "" {
		var referrer models.Account
		if err := s.DB.Where("referral_code = ?", referralCodeUsed).First(&referrer).Error; err == nil {
			if referrer.TelegramID != telegramID {
				account.ReferrerID = &referrer.ID
			}
		}
	}

	if err := s.DB.Create(&account).Error; err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return &account, nil
}

// GetByID fetches an account or ErrNotFound.
func (s *AccountService) GetByID(accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.DB.First(&account, "id = ?", accountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// Pets returns the account's live pets with their effective status: a
// TRAINING pet past its window reads as READY_TO_CLAIM. The transition is
// a pure function of time, so reads present it without persisting; the
// next mutation or sweep writes it back.
func (s *AccountService) Pets(accountID string, now time.Time) ([]models.Pet, error) {
	var pets []models.Pet
	err := s.DB.Preload("CatalogEntry").
		Where("account_id = ? AND status <> ?", accountID, models.PetStatusSold).
		Order("slot ASC").
		Find(&pets).Error
	if err != nil {
		return nil, err
	}
	for i := range pets {
		if pets[i].TrainingDone(now) {
			pets[i].Status = models.PetStatusReadyToClaim
		}
	}
	return pets, nil
}

func makeReferralCode(username string) string {
	base := slug.Make(username)
	if base == "" {
		base = "pet"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return base + "-" + suffix
}
