package tokenstore

import (
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/reforzo/go-authgate"
)

// TokenValidator turns a provider-issued token into a read-only session
// copy without tying the store to a signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (*authgate.Session, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (*authgate.Session, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (*authgate.Session, error) {
	if f == nil {
		return nil, fmt.Errorf("tokenstore: nil validator")
	}
	return f(tokenString)
}

// HMACValidator validates locally signed HS256 tokens.
type HMACValidator struct {
	key []byte
}

var _ TokenValidator = (*HMACValidator)(nil)

// NewHMACValidator creates a validator for a shared signing key.
func NewHMACValidator(key []byte) *HMACValidator {
	return &HMACValidator{key: key}
}

// Validate satisfies the TokenValidator interface.
func (v *HMACValidator) Validate(tokenString string) (*authgate.Session, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return v.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("tokenstore: could not parse token: %w", err)
	}
	return sessionFromToken(token, tokenString)
}

// JWKSValidator validates tokens against a remote JWK Set, for providers
// that publish rotating keys.
type JWKSValidator struct {
	jwks *keyfunc.JWKS
}

var _ TokenValidator = (*JWKSValidator)(nil)

// NewJWKSValidator fetches the JWK Set at the given URL and keeps it
// refreshed in the background until Close is called.
func NewJWKSValidator(jwksURL string) (*JWKSValidator, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:  time.Hour,
		RefreshRateLimit: time.Minute * 5,
	})
	if err != nil {
		return nil, fmt.Errorf("tokenstore: could not load JWK Set: %w", err)
	}
	return &JWKSValidator{jwks: jwks}, nil
}

// Validate satisfies the TokenValidator interface.
func (v *JWKSValidator) Validate(tokenString string) (*authgate.Session, error) {
	token, err := jwt.Parse(tokenString, v.jwks.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("tokenstore: could not parse token: %w", err)
	}
	return sessionFromToken(token, tokenString)
}

// Close stops the background JWK Set refresh.
func (v *JWKSValidator) Close() {
	v.jwks.EndBackground()
}

func sessionFromToken(token *jwt.Token, raw string) (*authgate.Session, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("tokenstore: unexpected claims type %T", token.Claims)
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("tokenstore: token has no subject")
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("tokenstore: subject is not a user id: %w", err)
	}

	user := &authgate.User{ID: userID}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}

	session := &authgate.Session{
		Token: raw,
		User:  user,
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		session.IssuedAt = &t
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		session.ExpiresAt = &t
	}

	return session, nil
}
