package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"backend/middlewares"
	"backend/models"
	"backend/services"
	"backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeVerifier struct {
	claims *services.GoogleClaims
	err    error
}

func (f *fakeVerifier) Verify(ctx context.Context, credential string) (*services.GoogleClaims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

type testApp struct {
	db       *gorm.DB
	router   *gin.Engine
	issuer   *utils.TokenIssuer
	verifier *fakeVerifier
	auth     *services.AuthService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.RefreshSession{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	logger := zap.NewNop()
	issuer := &utils.TokenIssuer{
		Secret:     []byte("test-secret"),
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
	verifier := &fakeVerifier{}

	authService := services.NewAuthService(db, logger, verifier, issuer)
	userService := services.NewUserService(db, logger)
	credentialService := services.NewCredentialService(db)

	authController := NewAuthController(authService, credentialService, logger)
	userController := NewUserController(userService, logger)

	router := gin.New()
	router.POST("/register/", authController.Register)
	router.POST("/login/", authController.Login)
	router.POST("/google-login/", authController.GoogleLogin)
	router.POST("/validate-credentials/", authController.ValidateCredentials)
	router.POST("/validate-email/", authController.ValidateEmail)
	router.GET("/api/time/", ServerTime)

	profile := router.Group("/profile")
	profile.Use(middlewares.AuthMiddleware(issuer))
	profile.GET("/", userController.GetProfile)
	profile.PATCH("/", userController.UpdateProfile)

	return &testApp{db: db, router: router, issuer: issuer, verifier: verifier, auth: authService}
}

func (app *testApp) request(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	app.router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
	return body
}

func (app *testApp) createUser(t *testing.T, user *models.User) *models.User {
	t.Helper()
	if err := app.db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (app *testApp) accessTokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	pair, err := app.issuer.GeneratePair(user.ID, user.Email)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return pair.Access
}
