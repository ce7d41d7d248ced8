package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// SessionGate decides, from the two cookies presented, whether the
// caller is authenticated. Per request it walks an explicit transition
// table, top to bottom with short-circuit:
//
//  1. access cookie verifies        -> lookup user, attach principal, next
//  2. no refresh cookie             -> unauthorized
//  3. refresh cookie verifies       -> lookup user, attach principal,
//     mint + set a new access cookie, next
//  4. refresh present but invalid   -> unauthorized
//
// A live access token always wins, even when an expired refresh token
// rides along. The only cookie write happens on path 3.
type SessionGate struct {
	tokens TokenService
	repo   RepositoryManager
	logger Logger
}

// NewSessionGate builds the middleware around the codec and the store.
func NewSessionGate(tokens TokenService, repo RepositoryManager) *SessionGate {
	return &SessionGate{
		tokens: tokens,
		repo:   repo,
		logger: defLogger{},
	}
}

func (g *SessionGate) WithLogger(logger Logger) *SessionGate {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// Authenticate returns the handler enforcing the transition table on
// every request it wraps.
func (g *SessionGate) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw := c.Cookies(AccessTokenCookie); raw != "" {
			claims, err := g.tokens.ValidateAccess(raw)
			if err == nil {
				principal, perr := g.resolvePrincipal(c.UserContext(), claims)
				if perr == nil {
					SetPrincipal(c, principal)
					return c.Next()
				}
				if !IsAuthFailure(perr) {
					return perr
				}
				// A verified token pointing at a missing record is a
				// stale credential, not a pass-through.
				g.logger.Info("access token user lookup failed", "error", perr)
			} else {
				g.logger.Debug("access token rejected", "error", err)
			}
		}

		raw := c.Cookies(RefreshTokenCookie)
		if raw == "" {
			return ErrUnauthorized
		}

		claims, err := g.tokens.ValidateRefresh(raw)
		if err != nil {
			g.logger.Info("refresh token rejected", "error", err)
			return ErrUnauthorized
		}

		principal, err := g.resolvePrincipal(c.UserContext(), claims)
		if err != nil {
			if !IsAuthFailure(err) {
				return err
			}
			g.logger.Info("refresh token user lookup failed", "error", err)
			return ErrUnauthorized
		}

		access, err := g.tokens.MintAccessToken(claims.UserID(), claims.Email)
		if err != nil {
			return err
		}

		SetPrincipal(c, principal)
		SetAccessCookie(c, access)

		return c.Next()
	}
}

// RenewAccess performs the silent renewal half of the transition table
// without gating a request: it verifies the refresh cookie and, on
// success, sets a fresh access cookie. The status endpoint shares this
// with the middleware so both renewal sites mint identically.
func (g *SessionGate) RenewAccess(c *fiber.Ctx) error {
	raw := c.Cookies(RefreshTokenCookie)
	if raw == "" {
		return ErrUnauthorized
	}

	claims, err := g.tokens.ValidateRefresh(raw)
	if err != nil {
		g.logger.Info("refresh token rejected during status check", "error", err)
		return ErrUnauthorized
	}

	access, err := g.tokens.MintAccessToken(claims.UserID(), claims.Email)
	if err != nil {
		return err
	}

	SetAccessCookie(c, access)
	return nil
}

// AccessValid reports whether the request carries a verifiable access
// cookie, with no side effects.
func (g *SessionGate) AccessValid(c *fiber.Ctx) bool {
	raw := c.Cookies(AccessTokenCookie)
	if raw == "" {
		return false
	}
	_, err := g.tokens.ValidateAccess(raw)
	return err == nil
}

// resolvePrincipal re-fetches the user for the claimed id. The email
// comes from the token; the display name always comes from the store so
// profile edits show up without re-login, at the cost of one lookup per
// request.
func (g *SessionGate) resolvePrincipal(ctx context.Context, claims *JWTClaims) (*Principal, error) {
	id, err := claims.UserUUID()
	if err != nil {
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	user, err := g.repo.Users().GetByUserID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user for session")
	}

	return &Principal{
		ID:    claims.UserID(),
		Email: claims.Email,
		Name:  user.FullName,
	}, nil
}
