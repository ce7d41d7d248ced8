package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tallyapp/tally/internal/auth/social"
)

const stateCookie = "oauthState"

// stateTTL bounds how long a started provider handoff stays redeemable.
const stateTTL = 10 * time.Minute

// FederatedController drives the provider handoff: it redirects the
// user out to the provider and completes the login on callback. The
// provider's own authentication UI is not our concern; we only consume
// the profile handed back.
type FederatedController struct {
	Logger     Logger
	Provider   social.Provider
	Reconciler *Reconciler
	SuccessURL string
	FailureURL string
}

func NewFederatedController(provider social.Provider, reconciler *Reconciler, successURL, failureURL string) *FederatedController {
	return &FederatedController{
		Logger:     defLogger{},
		Provider:   provider,
		Reconciler: reconciler,
		SuccessURL: successURL,
		FailureURL: failureURL,
	}
}

func (f *FederatedController) WithLogger(logger Logger) *FederatedController {
	if logger != nil {
		f.Logger = logger
	}
	return f
}

// RegisterRoutes mounts the begin and callback endpoints under the
// given group, e.g. /auth/google and /auth/google/callback.
func (f *FederatedController) RegisterRoutes(app fiber.Router) {
	name := f.Provider.Name()
	app.Get("/auth/"+name, f.Begin)
	app.Get("/auth/"+name+"/callback", f.Callback)
}

// Begin stores a state nonce in a short-lived cookie and redirects to
// the provider's authorization page.
func (f *FederatedController) Begin(c *fiber.Ctx) error {
	state := uuid.NewString()

	c.Cookie(&fiber.Cookie{
		Name:     stateCookie,
		Value:    state,
		Expires:  time.Now().Add(stateTTL),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Redirect(f.Provider.AuthCodeURL(state), fiber.StatusFound)
}

// Callback completes the handoff: state check, code exchange, profile
// fetch, reconciliation, session cookies, redirect to the app.
func (f *FederatedController) Callback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(stateCookie) {
		f.Logger.Warn("oauth state mismatch", "provider", f.Provider.Name())
		return social.ErrInvalidState
	}
	cookieDel(c, stateCookie)

	code := c.Query("code")
	if code == "" {
		f.Logger.Info("provider callback without code", "provider", f.Provider.Name())
		return c.Redirect(f.FailureURL, fiber.StatusFound)
	}

	token, err := f.Provider.Exchange(c.UserContext(), code)
	if err != nil {
		f.Logger.Error("provider code exchange failed", "provider", f.Provider.Name(), "error", err)
		return c.Redirect(f.FailureURL, fiber.StatusFound)
	}

	profile, err := f.Provider.UserInfo(c.UserContext(), token)
	if err != nil {
		f.Logger.Error("provider user info failed", "provider", f.Provider.Name(), "error", err)
		return c.Redirect(f.FailureURL, fiber.StatusFound)
	}

	pair, user, err := f.Reconciler.Reconcile(c.UserContext(), profile)
	if err != nil {
		f.Logger.Error("federated reconcile failed", "provider", f.Provider.Name(), "error", err)
		return err
	}

	f.Logger.Info("federated login", "provider", f.Provider.Name(), "user_id", user.ID.String())

	SetSessionCookies(c, pair)

	return c.Redirect(f.SuccessURL, fiber.StatusFound)
}
