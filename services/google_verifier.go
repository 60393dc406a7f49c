package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/idtoken"
)

// Classified verification failures. Early use is the one recoverable
// case (the client's clock is ahead); callers surface the server time
// so the client can self-correct.
var (
	ErrTokenMalformed = errors.New("credential is malformed")
	ErrTokenExpired   = errors.New("credential has expired")
	ErrTokenRejected  = errors.New("credential was rejected")
	ErrNoEmailClaim   = errors.New("credential carries no email claim")
)

// EarlyUseError reports a token issued further in the future than the
// configured clock-skew tolerance allows.
type EarlyUseError struct {
	IssuedAt   time.Time
	ServerTime time.Time
}

func (e *EarlyUseError) Error() string {
	return fmt.Sprintf("credential used before issued: iat %s, server time %s",
		e.IssuedAt.Format(time.RFC3339), e.ServerTime.Format(time.RFC3339))
}

// GoogleClaims is the identity extracted from a verified ID token.
type GoogleClaims struct {
	Email    string
	Name     string
	IssuedAt time.Time
	Expires  time.Time
}

// GoogleVerifier checks an opaque Google ID token and returns its
// verified claims.
type GoogleVerifier interface {
	Verify(ctx context.Context, credential string) (*GoogleClaims, error)
}

// googleIDTokenVerifier verifies signature and audience through the
// idtoken package, then applies the configured clock-skew tolerance to
// the verified iat claim itself so the tolerance is deterministic.
type googleIDTokenVerifier struct {
	clientID string
	skew     time.Duration
	now      func() time.Time
}

func NewGoogleVerifier(clientID string, skew time.Duration) GoogleVerifier {
	return &googleIDTokenVerifier{clientID: clientID, skew: skew, now: time.Now}
}

func (v *googleIDTokenVerifier) Verify(ctx context.Context, credential string) (*GoogleClaims, error) {
	payload, err := idtoken.Validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, classifyIDTokenError(err)
	}

	issuedAt := time.Unix(payload.IssuedAt, 0)
	if err := v.checkFreshness(issuedAt); err != nil {
		return nil, err
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, ErrNoEmailClaim
	}
	name, _ := payload.Claims["name"].(string)

	return &GoogleClaims{
		Email:    email,
		Name:     name,
		IssuedAt: issuedAt,
		Expires:  time.Unix(payload.Expires, 0),
	}, nil
}

// checkFreshness applies the clock-skew tolerance to a verified iat
// claim: a token "from the future" passes while it is within the
// tolerance and is classified as early use beyond it.
func (v *googleIDTokenVerifier) checkFreshness(issuedAt time.Time) error {
	now := v.now()
	if issuedAt.After(now.Add(v.skew)) {
		return &EarlyUseError{IssuedAt: issuedAt, ServerTime: now}
	}
	return nil
}

// classifyIDTokenError maps the idtoken package's error shapes onto the
// sentinel kinds. Unrecognized failures (bad signature, wrong audience,
// key-fetch trouble) all land on ErrTokenRejected.
func classifyIDTokenError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "expired"):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case strings.Contains(msg, "segments"),
		strings.Contains(msg, "unable to parse"),
		strings.Contains(msg, "malformed"):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenRejected, err)
	}
}
