package auth

import (
	"context"
	"fmt"
)

// Logger is the minimal logging surface the auth components need. The
// server wires glog named loggers in; tests pass fakes.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Authenticator holds methods to deal with credential authentication
// and session issuance.
type Authenticator interface {
	Register(ctx context.Context, msg RegisterUserMessage) (*User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	SessionIssuer
}

// SessionIssuer is the single shared mint site for a user session. Both
// the password login and the federated reconciler go through it so the
// two paths cannot drift in expiry or claim shape.
type SessionIssuer interface {
	IssueSession(user *User) (*TokenPair, error)
}

// TokenService signs and verifies the two bearer token classes.
type TokenService interface {
	MintAccessToken(id, email string) (string, error)
	MintRefreshToken(id, email string) (string, error)
	ValidateAccess(token string) (*JWTClaims, error)
	ValidateRefresh(token string) (*JWTClaims, error)
}

// DefaultLogger returns the fallback logger used when a component is
// constructed without one.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) { d.print("ERR", msg, args...) }
func (d defLogger) Warn(msg string, args ...any)  { d.print("WRN", msg, args...) }
func (d defLogger) Info(msg string, args ...any)  { d.print("INF", msg, args...) }
func (d defLogger) Debug(msg string, args ...any) { d.print("DBG", msg, args...) }

func (d defLogger) print(level, msg string, args ...any) {
	fmt.Printf("[%s] AUTH %s", level, msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Printf(" %v=%v", args[i], args[i+1])
	}
	fmt.Println()
}
