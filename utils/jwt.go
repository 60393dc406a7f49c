package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer signs HS256 access/refresh pairs for a user.
type TokenIssuer struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenPair is the credential set handed to an authenticated client.
type TokenPair struct {
	Access           string
	Refresh          string
	RefreshTokenID   string
	RefreshExpiresAt time.Time
}

// Claims carried by both token kinds; TokenType tells them apart so a
// refresh token cannot be replayed as an access token.
type Claims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func (issuer *TokenIssuer) GeneratePair(userID uint, email string) (*TokenPair, error) {
	now := time.Now()

	access, err := issuer.sign(userID, email, TokenTypeAccess, now, issuer.AccessTTL, newTokenID())
	if err != nil {
		return nil, err
	}

	refreshID := newTokenID()
	refreshExpiry := now.Add(issuer.RefreshTTL)
	refresh, err := issuer.sign(userID, email, TokenTypeRefresh, now, issuer.RefreshTTL, refreshID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		Access:           access,
		Refresh:          refresh,
		RefreshTokenID:   refreshID,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

func (issuer *TokenIssuer) sign(userID uint, email, tokenType string, now time.Time, ttl time.Duration, tokenID string) (string, error) {
	claims := Claims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(issuer.Secret)
}

// ParseAccess validates an access token and returns its claims.
func (issuer *TokenIssuer) ParseAccess(tokenString string) (*Claims, error) {
	return issuer.parse(tokenString, TokenTypeAccess)
}

// ParseRefresh validates a refresh token and returns its claims.
func (issuer *TokenIssuer) ParseRefresh(tokenString string) (*Claims, error) {
	return issuer.parse(tokenString, TokenTypeRefresh)
}

func (issuer *TokenIssuer) parse(tokenString, wantType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return issuer.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func newTokenID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the platform entropy source is broken
		panic(err)
	}
	return hex.EncodeToString(buf)
}
