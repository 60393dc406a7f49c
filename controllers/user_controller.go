package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserController struct {
	Users *services.UserService
	Log   *zap.Logger
}

func NewUserController(users *services.UserService, log *zap.Logger) *UserController {
	return &UserController{Users: users, Log: log}
}

func (u *UserController) GetProfile(c *gin.Context) {
	userID := c.GetUint("userID")

	view, err := u.Users.GetProfile(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "The requested resource was not found."})
			return
		}
		u.Log.Error("profile fetch failed", zap.Error(err), zap.Uint("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericError})
		return
	}

	c.JSON(http.StatusOK, view)
}

// UpdateProfile applies a partial profile update. Either every
// supplied field validates and applies, or nothing is written and the
// client gets field-level messages.
func (u *UserController) UpdateProfile(c *gin.Context) {
	userID := c.GetUint("userID")

	var input services.ProfileUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, bindErrorFields(err))
		return
	}

	view, err := u.Users.UpdateProfile(userID, input)
	if err != nil {
		var fieldErrs services.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			c.JSON(http.StatusBadRequest, fieldErrs)
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "The requested resource was not found."})
		default:
			u.Log.Error("profile update failed", zap.Error(err), zap.Uint("user_id", userID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": genericError})
		}
		return
	}

	c.JSON(http.StatusOK, view)
}

// bindErrorFields turns a JSON type mismatch into the same field-level
// shape the service-side validation uses.
func bindErrorFields(err error) gin.H {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		message := "must be a number"
		if typeErr.Field == "date_of_birth" {
			message = "must be a valid date in YYYY-MM-DD format"
		}
		return gin.H{typeErr.Field: message}
	}
	return gin.H{"error": "Invalid request body"}
}
