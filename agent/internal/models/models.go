package models

import "time"

// Watcher represents a registered alert recipient, keyed by Telegram user id.
type Watcher struct {
	ID             uint      `gorm:"primaryKey"`
	TelegramUserID int64     `gorm:"uniqueIndex;not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// FilterRow is one raw (type, value) filter entry for a user. The poll cycle
// normalizes a user's rows into a FilterProfile on every run.
type FilterRow struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      int64     `gorm:"index:idx_filter_user;not null"`
	FilterType  string    `gorm:"index:idx_filter_user;not null"`
	FilterValue string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// KnownToken marks a mint as previously observed. Inserts are idempotent;
// the unique index makes a concurrent duplicate insert a no-op.
type KnownToken struct {
	ID        uint      `gorm:"primaryKey"`
	Mint      string    `gorm:"uniqueIndex;not null"`
	Symbol    string    `gorm:"default:''"`
	FirstSeen time.Time `gorm:"autoCreateTime"`
}
