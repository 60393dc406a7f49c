package services

import (
	"errors"
	"time"

	"backend/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// ProfileUpdateInput is a partial update: only non-nil fields are
// applied. DateOfBirth travels as a YYYY-MM-DD string.
type ProfileUpdateInput struct {
	Height        *float64 `json:"height"`
	Weight        *float64 `json:"weight"`
	InitialWeight *float64 `json:"initial_weight"`
	FitnessGoal   *float64 `json:"fitness_goal"`
	DateOfBirth   *string  `json:"date_of_birth"`
}

// ProfileView is the full profile as returned to clients; numeric
// fields are always float64 regardless of how the driver stored them.
type ProfileView struct {
	ID            uint     `json:"id"`
	Username      string   `json:"username"`
	Email         string   `json:"email"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	Height        *float64 `json:"height"`
	Weight        *float64 `json:"weight"`
	InitialWeight *float64 `json:"initial_weight"`
	FatPercentage *float64 `json:"fat_percentage"`
	FitnessGoal   *float64 `json:"fitness_goal"`
	DateOfBirth   *string  `json:"date_of_birth"`
}

// UserService reconciles partial profile updates onto an account.
type UserService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewUserService(db *gorm.DB, log *zap.Logger) *UserService {
	return &UserService{DB: db, Log: log}
}

func (s *UserService) GetProfile(userID uint) (*ProfileView, error) {
	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return profileViewOf(&user), nil
}

// UpdateProfile applies the supplied fields, leaving the rest
// untouched. All supplied values validate or nothing is written.
//
// initial_weight is write-once: it is auto-populated the first time a
// weight arrives while it is unset, and a supplied value that would
// change an already-set one is skipped rather than applied.
func (s *UserService) UpdateProfile(userID uint, input ProfileUpdateInput) (*ProfileView, error) {
	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	updates := map[string]any{}
	fieldErrs := FieldErrors{}

	if input.Height != nil {
		updates["height"] = *input.Height
	}
	if input.Weight != nil {
		updates["weight"] = *input.Weight
	}
	if input.FitnessGoal != nil {
		updates["fitness_goal"] = *input.FitnessGoal
	}
	if input.DateOfBirth != nil {
		parsed, err := time.Parse(dateLayout, *input.DateOfBirth)
		if err != nil {
			fieldErrs["date_of_birth"] = "must be a valid date in YYYY-MM-DD format"
		} else {
			updates["date_of_birth"] = parsed
		}
	}

	if input.InitialWeight != nil {
		if user.InitialWeight == nil {
			updates["initial_weight"] = *input.InitialWeight
		} else if *user.InitialWeight != *input.InitialWeight {
			s.Log.Warn("ignoring attempt to change initial_weight",
				zap.Uint("user_id", user.ID),
				zap.Float64("current", *user.InitialWeight),
				zap.Float64("attempted", *input.InitialWeight))
		}
	} else if input.Weight != nil && user.InitialWeight == nil {
		// first recorded weight becomes the baseline
		updates["initial_weight"] = *input.Weight
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	if len(updates) > 0 {
		if err := s.DB.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
		if err := s.DB.First(&user, userID).Error; err != nil {
			return nil, err
		}
	}

	return profileViewOf(&user), nil
}

func profileViewOf(user *models.User) *ProfileView {
	view := &ProfileView{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Height:        user.Height,
		Weight:        user.Weight,
		InitialWeight: user.InitialWeight,
		FatPercentage: user.FatPercentage,
		FitnessGoal:   user.FitnessGoal,
	}
	if user.DateOfBirth != nil {
		formatted := user.DateOfBirth.Format(dateLayout)
		view.DateOfBirth = &formatted
	}
	return view
}
