package services

import (
	"backend/models"

	"gorm.io/gorm"
)

// CredentialService answers availability questions about usernames and
// emails. It only reads: a race between its answer and a subsequent
// create is expected and resolved by the storage unique indexes.
type CredentialService struct {
	DB *gorm.DB
}

func NewCredentialService(db *gorm.DB) *CredentialService {
	return &CredentialService{DB: db}
}

// Validate checks each supplied (non-empty) field for an exact match
// against existing accounts. An empty map means no conflicts.
func (s *CredentialService) Validate(username, email string) (FieldErrors, error) {
	conflicts := FieldErrors{}

	if username != "" {
		taken, err := s.usernameExists(username)
		if err != nil {
			return nil, err
		}
		if taken {
			conflicts["username"] = MsgUsernameTaken
		}
	}

	if email != "" {
		taken, err := s.EmailExists(email)
		if err != nil {
			return nil, err
		}
		if taken {
			conflicts["email"] = MsgEmailTaken
		}
	}

	return conflicts, nil
}

func (s *CredentialService) EmailExists(email string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (s *CredentialService) usernameExists(username string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}
