package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	// AccessTokenCookie carries the short-lived access token.
	AccessTokenCookie = "accessToken"
	// RefreshTokenCookie carries the long-lived refresh token. Set at
	// login and reconciliation only; silent renewal never touches it.
	RefreshTokenCookie = "refreshToken"
)

// SetSessionCookies writes both tokens of a freshly issued session.
// Login and the federated callback share this helper so the two paths
// cannot diverge in cookie attributes or lifetimes.
func SetSessionCookies(c *fiber.Ctx, pair *TokenPair) {
	setTokenCookie(c, AccessTokenCookie, pair.AccessToken, AccessTokenTTL)
	setTokenCookie(c, RefreshTokenCookie, pair.RefreshToken, RefreshTokenTTL)
}

// SetAccessCookie writes a renewed access token. Cookie lifetime
// matches the token's own expiry.
func SetAccessCookie(c *fiber.Ctx, token string) {
	setTokenCookie(c, AccessTokenCookie, token, AccessTokenTTL)
}

// ClearSessionCookies erases both token cookies. There is no token-side
// invalidation; logout is purely a client-side cookie erase.
func ClearSessionCookies(c *fiber.Ctx) {
	cookieDel(c, AccessTokenCookie)
	cookieDel(c, RefreshTokenCookie)
}

func setTokenCookie(c *fiber.Ctx, name, val string, duration time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}

func cookieDel(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}
