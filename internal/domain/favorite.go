package domain

import "time"

type Favorite struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_favorite_user_ayah,priority:1" json:"-"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	SurahNumber int       `gorm:"not null;uniqueIndex:idx_favorite_user_ayah,priority:2" json:"surah_number"`
	AyahNumber  int       `gorm:"not null;uniqueIndex:idx_favorite_user_ayah,priority:3" json:"ayah_number"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}
