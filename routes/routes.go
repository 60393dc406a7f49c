package routes

import (
	"time"

	"backend/config"
	"backend/controllers"
	"backend/middlewares"
	"backend/services"
	"backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRouter wires every handler onto a gin engine. All dependencies
// arrive explicitly; nothing here reads ambient state.
func SetupRouter(cfg *config.Config, db *gorm.DB, log *zap.Logger) *gin.Engine {
	issuer := &utils.TokenIssuer{
		Secret:     []byte(cfg.JWTSecret),
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}
	verifier := services.NewGoogleVerifier(cfg.GoogleClientID, cfg.ClockSkew)

	authService := services.NewAuthService(db, log, verifier, issuer)
	userService := services.NewUserService(db, log)
	credentialService := services.NewCredentialService(db)

	authController := controllers.NewAuthController(authService, credentialService, log)
	userController := controllers.NewUserController(userService, log)

	r := gin.Default()

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Public account routes
	r.POST("/register/", authController.Register)
	r.POST("/login/", authController.Login)
	r.POST("/google-login/", authController.GoogleLogin)
	r.POST("/validate-credentials/", authController.ValidateCredentials)
	r.POST("/validate-email/", authController.ValidateEmail)
	r.GET("/api/time/", controllers.ServerTime)

	// Protected profile routes
	profile := r.Group("/profile")
	profile.Use(middlewares.AuthMiddleware(issuer))
	{
		profile.GET("/", userController.GetProfile)
		profile.PATCH("/", userController.UpdateProfile)
		profile.PUT("/", userController.UpdateProfile)
	}

	return r
}
