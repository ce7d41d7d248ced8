package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

const (
	// AccessTokenTTL is the fixed lifetime of an access token. It is a
	// constant rather than configuration so renewal timing stays
	// predictable across every mint site.
	AccessTokenTTL = 15 * time.Minute
	// RefreshTokenTTL is the fixed lifetime of a refresh token. The
	// token is never rotated on use; it stays valid until expiry.
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenServiceImpl implements the TokenService interface. The two token
// classes are signed with independent secrets so a compromise of one
// key cannot forge the other class.
type TokenServiceImpl struct {
	accessKey  []byte
	refreshKey []byte
	issuer     string
	logger     Logger
}

var _ TokenService = (*TokenServiceImpl)(nil)

// NewTokenService creates a new TokenService instance. Both signing keys
// are injected here; nothing reads ambient process state at call time.
func NewTokenService(accessKey, refreshKey []byte, issuer string, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		accessKey:  accessKey,
		refreshKey: refreshKey,
		issuer:     issuer,
		logger:     logger,
	}
}

// MintAccessToken signs a short-lived access token for the given user.
func (ts *TokenServiceImpl) MintAccessToken(id, email string) (string, error) {
	return ts.mint(ts.accessKey, AccessTokenTTL, id, email)
}

// MintRefreshToken signs a long-lived refresh token for the given user.
func (ts *TokenServiceImpl) MintRefreshToken(id, email string) (string, error) {
	return ts.mint(ts.refreshKey, RefreshTokenTTL, id, email)
}

// ValidateAccess verifies a token against the access secret.
func (ts *TokenServiceImpl) ValidateAccess(token string) (*JWTClaims, error) {
	return ts.validate(token, ts.accessKey)
}

// ValidateRefresh verifies a token against the refresh secret.
func (ts *TokenServiceImpl) ValidateRefresh(token string) (*JWTClaims, error) {
	return ts.validate(token, ts.refreshKey)
}

func (ts *TokenServiceImpl) mint(key []byte, ttl time.Duration, id, email string) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UID:   id,
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(key)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

func (ts *TokenServiceImpl) validate(tokenString string, key []byte) (*JWTClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("token validate could not decode or validate claims")
	return nil, ErrTokenMalformed
}
