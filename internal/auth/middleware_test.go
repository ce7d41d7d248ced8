package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gateFixture struct {
	app    *fiber.App
	gate   *SessionGate
	tokens *TokenServiceImpl
	repo   RepositoryManager
	user   *User
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	repo := newTestRepo(t)
	tokens := newTestTokens()
	gate := NewSessionGate(tokens, repo)
	user := seedUser(t, repo, "frodo@example.com", "precious-ring")

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if IsAuthFailure(err) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"msg": ErrUnauthorized.Message,
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"msg": err.Error(),
			})
		},
	})

	app.Get("/protected", gate.Authenticate(), func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromCtx(c)
		if !ok {
			return ErrUnauthorized
		}
		return c.JSON(principal)
	})

	return &gateFixture{
		app:    app,
		gate:   gate,
		tokens: tokens,
		repo:   repo,
		user:   user,
	}
}

func (f *gateFixture) request(t *testing.T, cookies map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

func responseCookie(resp *http.Response, name string) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// expiredAccessToken signs an access-class token whose expiry has
// already elapsed, using the fixture's signing key.
func expiredAccessToken(t *testing.T, user *User) string {
	t.Helper()

	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "tally-test",
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-30 * time.Minute)),
		},
		UID:   user.ID.String(),
		Email: user.Email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("access-secret"))
	require.NoError(t, err)
	return signed
}

func TestGateValidAccessToken(t *testing.T) {
	f := newGateFixture(t)

	access, err := f.tokens.MintAccessToken(f.user.ID.String(), f.user.Email)
	require.NoError(t, err)

	resp := f.request(t, map[string]string{AccessTokenCookie: access})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// no renewal happened, so no cookie writes
	assert.Nil(t, responseCookie(resp, AccessTokenCookie))
}

func TestGateNoTokens(t *testing.T) {
	f := newGateFixture(t)

	resp := f.request(t, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGateRefreshRenewsAccess(t *testing.T) {
	f := newGateFixture(t)

	refresh, err := f.tokens.MintRefreshToken(f.user.ID.String(), f.user.Email)
	require.NoError(t, err)

	resp := f.request(t, map[string]string{
		AccessTokenCookie:  expiredAccessToken(t, f.user),
		RefreshTokenCookie: refresh,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	renewed := responseCookie(resp, AccessTokenCookie)
	require.NotNil(t, renewed)
	assert.True(t, renewed.HttpOnly)

	claims, err := f.tokens.ValidateAccess(renewed.Value)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID.String(), claims.UserID())

	// refresh cookie is never rewritten during renewal
	assert.Nil(t, responseCookie(resp, RefreshTokenCookie))
}

func TestGateRefreshOnlyCookie(t *testing.T) {
	f := newGateFixture(t)

	refresh, err := f.tokens.MintRefreshToken(f.user.ID.String(), f.user.Email)
	require.NoError(t, err)

	resp := f.request(t, map[string]string{RefreshTokenCookie: refresh})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, responseCookie(resp, AccessTokenCookie))
}

func TestGateBothTokensInvalid(t *testing.T) {
	f := newGateFixture(t)

	resp := f.request(t, map[string]string{
		AccessTokenCookie:  "garbage",
		RefreshTokenCookie: "also-garbage",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Nil(t, responseCookie(resp, AccessTokenCookie))
}

func TestGateAccessTokenForDeletedUser(t *testing.T) {
	f := newGateFixture(t)

	// a verified token whose subject no longer resolves is a stale
	// credential and must not pass the gate
	access, err := f.tokens.MintAccessToken("1b671a64-40d5-491e-99b0-da01ff1f3341", "ghost@example.com")
	require.NoError(t, err)

	resp := f.request(t, map[string]string{AccessTokenCookie: access})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGateAccessWinsOverRefresh(t *testing.T) {
	f := newGateFixture(t)

	access, err := f.tokens.MintAccessToken(f.user.ID.String(), f.user.Email)
	require.NoError(t, err)

	resp := f.request(t, map[string]string{
		AccessTokenCookie:  access,
		RefreshTokenCookie: "garbage",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, responseCookie(resp, AccessTokenCookie))
}
