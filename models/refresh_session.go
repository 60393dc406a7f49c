package models

import "time"

// RefreshSession records every refresh token the server has issued so
// issuance can be audited and wiped together with the owning account.
type RefreshSession struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	UserID    uint   `gorm:"index;not null"`
	User      User   `gorm:"constraint:OnDelete:CASCADE"`
	TokenID   string `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time
}
