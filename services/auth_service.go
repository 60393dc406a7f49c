package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"backend/models"
	"backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidLogin = errors.New("invalid email or password")

// AuthService resolves identities (password or Google) into accounts
// and issues session token pairs.
type AuthService struct {
	DB          *gorm.DB
	Log         *zap.Logger
	Verifier    GoogleVerifier
	Issuer      *utils.TokenIssuer
	Credentials *CredentialService
}

func NewAuthService(db *gorm.DB, log *zap.Logger, verifier GoogleVerifier, issuer *utils.TokenIssuer) *AuthService {
	return &AuthService{
		DB:          db,
		Log:         log,
		Verifier:    verifier,
		Issuer:      issuer,
		Credentials: NewCredentialService(db),
	}
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates an account with a usable password. Conflicts are
// reported per field; a creation that loses the race to the unique
// indexes comes back as the same field-level errors.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	conflicts, err := s.Credentials.Validate(input.Username, input.Email)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, conflicts
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:  input.Username,
		Email:     input.Email,
		Password:  hashed,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		if fieldErrs := MapUniqueViolation(err); fieldErrs != nil {
			return nil, fieldErrs
		}
		return nil, err
	}
	return &user, nil
}

// PasswordLogin authenticates by email and password. Accounts with an
// unusable password (Google-provisioned) always fail here.
func (s *AuthService) PasswordLogin(email, password string) (*models.User, *utils.TokenPair, error) {
	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidLogin
		}
		return nil, nil, err
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, nil, ErrInvalidLogin
	}

	pair, err := s.issuePair(&user)
	if err != nil {
		return nil, nil, err
	}
	return &user, pair, nil
}

// GoogleLogin verifies the credential, resolves or provisions the
// account for its email claim, and issues a token pair. Verification
// failures propagate with their classification intact.
func (s *AuthService) GoogleLogin(ctx context.Context, credential string) (*models.User, *utils.TokenPair, error) {
	claims, err := s.Verifier.Verify(ctx, credential)
	if err != nil {
		return nil, nil, err
	}

	var user models.User
	err = s.DB.Where("email = ?", claims.Email).First(&user).Error
	switch {
	case err == nil:
		// resolved existing account
	case errors.Is(err, gorm.ErrRecordNotFound):
		created, provisionErr := s.provisionGoogleUser(claims)
		if provisionErr != nil {
			return nil, nil, provisionErr
		}
		user = *created
	default:
		return nil, nil, err
	}

	pair, err := s.issuePair(&user)
	if err != nil {
		return nil, nil, err
	}
	return &user, pair, nil
}

// provisionGoogleUser creates an account for a verified claim set. The
// username is the email's local part, deduplicated with _1, _2, ...
// until free; the password stays unusable. A concurrent provision for
// the same email is arbitrated by the email unique index.
func (s *AuthService) provisionGoogleUser(claims *GoogleClaims) (*models.User, error) {
	username, err := s.availableUsername(localPart(claims.Email))
	if err != nil {
		return nil, err
	}

	firstName, lastName, _ := strings.Cut(claims.Name, " ")

	user := models.User{
		Username:  username,
		Email:     claims.Email,
		Password:  "", // cannot log in with a password
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		if fieldErrs := MapUniqueViolation(err); fieldErrs != nil {
			return nil, fieldErrs
		}
		return nil, err
	}

	s.Log.Info("provisioned account from google identity",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username))
	return &user, nil
}

func (s *AuthService) availableUsername(base string) (string, error) {
	candidate := base
	for suffix := 1; ; suffix++ {
		var count int64
		if err := s.DB.Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%d", base, suffix)
	}
}

func (s *AuthService) issuePair(user *models.User) (*utils.TokenPair, error) {
	pair, err := s.Issuer.GeneratePair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	session := models.RefreshSession{
		UserID:    user.ID,
		TokenID:   pair.RefreshTokenID,
		ExpiresAt: pair.RefreshExpiresAt,
	}
	if err := s.DB.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("record refresh session: %w", err)
	}
	return pair, nil
}

func localPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
