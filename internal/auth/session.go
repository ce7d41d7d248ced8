package auth

// TokenPair is one issued session: a short-lived access token and a
// long-lived refresh token. Both are bearer credentials owned by the
// client's cookie jar; the server keeps no copy.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
