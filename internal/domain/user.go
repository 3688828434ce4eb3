package domain

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     *string   `gorm:"size:50;uniqueIndex:idx_users_username" json:"username"`
	Email        *string   `gorm:"size:254;uniqueIndex:idx_users_email" json:"email"`
	PasswordHash *string   `gorm:"size:255" json:"-"`
	FullName     *string   `gorm:"size:100" json:"full_name"`
	Photo        *string   `gorm:"size:255" json:"-"`
	GoogleID     *string   `gorm:"size:255;uniqueIndex:idx_users_google_id" json:"google_id"`
	GoogleEmail  *string   `gorm:"size:254" json:"google_email"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPassword reports whether a password login method is bound.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
