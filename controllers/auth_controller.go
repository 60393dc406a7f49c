package controllers

import (
	"errors"
	"net/http"
	"time"

	"backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// genericError is what clients see for unexpected failures; the detail
// stays in the server log.
const genericError = "An unexpected error occurred. Our team has been notified."

type AuthController struct {
	Auth        *services.AuthService
	Credentials *services.CredentialService
	Log         *zap.Logger
}

func NewAuthController(auth *services.AuthService, credentials *services.CredentialService, log *zap.Logger) *AuthController {
	return &AuthController{Auth: auth, Credentials: credentials, Log: log}
}

type RegisterInput struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (a *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := a.Auth.Register(services.RegisterInput{
		Username:  input.Username,
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	})
	if err != nil {
		var fieldErrs services.FieldErrors
		if errors.As(err, &fieldErrs) {
			c.JSON(http.StatusBadRequest, fieldErrs)
			return
		}
		a.Log.Error("registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericError})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (a *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, pair, err := a.Auth.PasswordLogin(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidLogin) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		a.Log.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericError})
		return
	}

	c.JSON(http.StatusOK, tokenResponse(pair.Access, pair.Refresh, user.ID, user.Username, user.Email))
}

type GoogleLoginInput struct {
	Credential string `json:"credential" binding:"required"`
}

func (a *AuthController) GoogleLogin(c *gin.Context) {
	var input GoogleLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "credential is required"})
		return
	}

	user, pair, err := a.Auth.GoogleLogin(c.Request.Context(), input.Credential)
	if err != nil {
		a.respondGoogleError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse(pair.Access, pair.Refresh, user.ID, user.Username, user.Email))
}

// respondGoogleError maps the resolver's classified failures onto
// status codes. Early use is the one failure that carries diagnostic
// detail back to the caller: it is recoverable once the client fixes
// its clock.
func (a *AuthController) respondGoogleError(c *gin.Context, err error) {
	var early *services.EarlyUseError
	var fieldErrs services.FieldErrors

	switch {
	case errors.As(err, &early):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":       "Token used too early; check that your device clock is accurate",
			"server_time": early.ServerTime.UTC().Format(time.RFC3339),
		})
	case errors.Is(err, services.ErrTokenMalformed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credential"})
	case errors.Is(err, services.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credential has expired"})
	case errors.Is(err, services.ErrTokenRejected), errors.Is(err, services.ErrNoEmailClaim):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credential could not be verified"})
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusBadRequest, fieldErrs)
	default:
		a.Log.Error("google login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericError})
	}
}

type ValidateCredentialsInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (a *AuthController) ValidateCredentials(c *gin.Context) {
	var input ValidateCredentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	conflicts, err := a.Credentials.Validate(input.Username, input.Email)
	if err != nil {
		a.Log.Error("credential validation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericError})
		return
	}
	if len(conflicts) > 0 {
		c.JSON(http.StatusBadRequest, conflicts)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

type ValidateEmailInput struct {
	Email string `json:"email"`
}

func (a *AuthController) ValidateEmail(c *gin.Context) {
	var input ValidateEmailInput
	if err := c.ShouldBindJSON(&input); err != nil || input.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	exists, err := a.Credentials.EmailExists(input.Email)
	if err != nil {
		a.Log.Error("email lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericError})
		return
	}

	c.JSON(http.StatusOK, gin.H{"email": input.Email, "exists": exists})
}

func tokenResponse(access, refresh string, id uint, username, email string) gin.H {
	return gin.H{
		"access":  access,
		"refresh": refresh,
		"user": gin.H{
			"id":       id,
			"username": username,
			"email":    email,
		},
	}
}
