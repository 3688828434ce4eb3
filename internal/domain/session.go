package domain

import "time"

// Session backs exactly one outstanding refresh token. The row is deleted
// when the token is redeemed or the session is logged out.
type Session struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	TokenHash string    `gorm:"size:128;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) IsExpiredAt(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
