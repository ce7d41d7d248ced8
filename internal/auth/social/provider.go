package social

import (
	"context"
	"time"
)

// Provider defines the interface for OAuth2 identity providers. The
// provider's own authentication UI stays external; this package only
// consumes the profile it hands back.
type Provider interface {
	// Name returns the provider identifier (e.g., "google").
	Name() string

	// AuthCodeURL returns the URL to redirect users for authorization.
	// The state parameter should be included for CSRF protection.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for an access token.
	Exchange(ctx context.Context, code string) (*Token, error)

	// UserInfo fetches the user's profile using the access token.
	UserInfo(ctx context.Context, token *Token) (*Profile, error)
}

// Token represents an OAuth2 token response.
type Token struct {
	AccessToken  string
	TokenType    string
	RefreshToken string
	ExpiresAt    time.Time
	Scopes       []string
	Raw          map[string]any
}

// Email is one address exposed by a provider profile.
type Email struct {
	Value    string
	Verified bool
}

// Profile represents normalized user information from a provider.
type Profile struct {
	Provider       string
	ProviderUserID string
	DisplayName    string
	Emails         []Email
	AvatarURL      string
	Raw            map[string]any
}

// PrimaryEmail returns the first verified email in the profile.
func (p *Profile) PrimaryEmail() (string, bool) {
	if p == nil {
		return "", false
	}
	for _, e := range p.Emails {
		if e.Verified && e.Value != "" {
			return e.Value, true
		}
	}
	return "", false
}
