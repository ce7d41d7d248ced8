package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Principal is the request-scoped identity attached after a request
// authenticates. The name is re-read from the store on every request,
// so display-name changes propagate without forcing a re-login.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

const principalLocalsKey = "principal"

var principalCtxKey = &contextKey{"principal"}

type contextKey struct {
	name string
}

// SetPrincipal attaches the principal to the in-flight fiber request and
// to its user context.
func SetPrincipal(c *fiber.Ctx, p *Principal) {
	c.Locals(principalLocalsKey, p)
	c.SetUserContext(WithPrincipal(c.UserContext(), p))
}

// PrincipalFromCtx finds the principal on a fiber request.
func PrincipalFromCtx(c *fiber.Ctx) (*Principal, bool) {
	raw, ok := c.Locals(principalLocalsKey).(*Principal)
	return raw, ok && raw != nil
}

// WithPrincipal sets the Principal in the given context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// PrincipalFrom finds the principal from a standard context.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	raw, ok := ctx.Value(principalCtxKey).(*Principal)
	return raw, ok && raw != nil
}
