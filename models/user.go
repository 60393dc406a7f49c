package models

import "time"

// User is the account record plus its embedded fitness profile.
// An empty Password means the account cannot authenticate with a
// password (Google-provisioned accounts start in that state).
type User struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Username    string `gorm:"uniqueIndex;not null"`
	Email       string `gorm:"uniqueIndex;not null"`
	Password    string
	FirstName   string
	LastName    string
	IsSuperuser bool

	Height        *float64
	Weight        *float64
	InitialWeight *float64
	FatPercentage *float64
	FitnessGoal   *float64
	DateOfBirth   *time.Time
}

func (u *User) HasUsablePassword() bool {
	return u.Password != ""
}
