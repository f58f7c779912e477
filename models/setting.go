package models

import "time"

// GameSetting is one row of the admin-tunable key/value store backing the
// economy constants (referral percentages, fee bounds, boost pricing).
type GameSetting struct {
	Key   string `gorm:"primaryKey" json:"key"`
	Value string `gorm:"not null" json:"value"`

	UpdatedAt time.Time `json:"updated_at"`
}
