package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tallyapp/tally/internal/auth/social"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Name() string {
	return "google"
}

func (m *mockProvider) AuthCodeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *mockProvider) Exchange(ctx context.Context, code string) (*social.Token, error) {
	args := m.Called(ctx, code)
	if token := args.Get(0); token != nil {
		return token.(*social.Token), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) UserInfo(ctx context.Context, token *social.Token) (*social.Profile, error) {
	args := m.Called(ctx, token)
	if profile := args.Get(0); profile != nil {
		return profile.(*social.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

type federatedFixture struct {
	app      *fiber.App
	provider *mockProvider
	repo     RepositoryManager
}

func newFederatedFixture(t *testing.T) *federatedFixture {
	t.Helper()

	repo := newTestRepo(t)
	tokens := newTestTokens()
	auther := NewAuthenticator(repo, tokens)
	provider := &mockProvider{}

	controller := NewFederatedController(
		provider,
		NewReconciler(repo, auther),
		"https://app.example.com/dashboard",
		"https://app.example.com/login",
	)

	app := fiber.New()
	controller.RegisterRoutes(app)

	return &federatedFixture{
		app:      app,
		provider: provider,
		repo:     repo,
	}
}

func TestFederatedBegin(t *testing.T) {
	f := newFederatedFixture(t)

	f.provider.On("AuthCodeURL", mock.AnythingOfType("string")).
		Return("https://accounts.google.com/o/oauth2/v2/auth?state=xyz")

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "accounts.google.com")

	state := responseCookie(resp, stateCookie)
	require.NotNil(t, state)
	assert.NotEmpty(t, state.Value)
	assert.True(t, state.HttpOnly)
}

func TestFederatedCallbackSuccess(t *testing.T) {
	f := newFederatedFixture(t)

	token := &social.Token{AccessToken: "ya29.token"}
	f.provider.On("Exchange", mock.Anything, "the-code").Return(token, nil)
	f.provider.On("UserInfo", mock.Anything, token).Return(&social.Profile{
		Provider:       "google",
		ProviderUserID: "109876543210",
		DisplayName:    "Frodo Baggins",
		Emails: []social.Email{
			{Value: "frodo@example.com", Verified: true},
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=xyz&code=the-code", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "xyz"})

	resp, err := f.app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://app.example.com/dashboard", resp.Header.Get("Location"))
	assert.NotNil(t, responseCookie(resp, AccessTokenCookie))
	assert.NotNil(t, responseCookie(resp, RefreshTokenCookie))

	user, err := f.repo.Users().GetByEmail(context.Background(), "frodo@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Frodo Baggins", user.FullName)
	assert.True(t, user.IsFederatedOnly())
}

func TestFederatedCallbackStateMismatch(t *testing.T) {
	f := newFederatedFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=evil&code=the-code", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "xyz"})

	resp, err := f.app.Test(req)
	require.NoError(t, err)

	// no exchange, no cookies
	assert.NotEqual(t, http.StatusFound, resp.StatusCode)
	assert.Nil(t, responseCookie(resp, AccessTokenCookie))
	f.provider.AssertNotCalled(t, "Exchange", mock.Anything, mock.Anything)
}

func TestFederatedCallbackMissingCode(t *testing.T) {
	f := newFederatedFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=xyz", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "xyz"})

	resp, err := f.app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://app.example.com/login", resp.Header.Get("Location"))
}

func TestFederatedCallbackExchangeFailure(t *testing.T) {
	f := newFederatedFixture(t)

	f.provider.On("Exchange", mock.Anything, "bad-code").
		Return(nil, &social.ProviderError{
			Provider:  "google",
			Operation: "exchange",
			Status:    http.StatusBadRequest,
			Code:      "invalid_grant",
		})

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=xyz&code=bad-code", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "xyz"})

	resp, err := f.app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://app.example.com/login", resp.Header.Get("Location"))
	assert.Nil(t, responseCookie(resp, AccessTokenCookie))
}
