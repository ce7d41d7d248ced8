package auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/nyaruka/phonenumbers"
)

// AuthController owns the credential-facing JSON endpoints: register,
// login, logout, the status probe, and the protected current-user echo.
type AuthController struct {
	Debug  bool
	Logger Logger
	Auther Authenticator
	Gate   *SessionGate
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Gate == nil {
		panic("Missing SessionGate in auth controller...")
	}

	return c
}

func WithAuthenticator(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithSessionGate(gate *SessionGate) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Gate = gate
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// RegisterRoutes mounts the controller on the app. The protected /user
// route goes through the session gate; everything else is public.
func (a *AuthController) RegisterRoutes(app fiber.Router) {
	app.Post("/register", a.RegistrationCreate)
	app.Post("/login", a.LoginPost)
	app.Post("/logout", a.LogOut)
	app.Get("/auth/status", a.Status)
	app.Get("/user", a.Gate.Authenticate(), a.CurrentUser)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return errors.Wrap(err, errors.CategoryBadInput, "failed to parse login payload").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid login payload").
			WithCode(errors.CodeBadRequest)
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	pair, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Info("login rejected", "email", payload.Email, "error", err)
		return err
	}

	SetSessionCookies(c, pair)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"msg": "Logged in Successfully.",
	})
}

// RegistrationCreatePayload is the registration payload
type RegistrationCreatePayload struct {
	FullName        string `form:"full_name" json:"full_name"`
	Email           string `form:"email" json:"email"`
	Phone           string `form:"phone_number" json:"phone_number"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.By(ValidateOptionalPhone)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) RegistrationCreate(c *fiber.Ctx) error {
	payload := new(RegistrationCreatePayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register user parse payload", "error", err)
		return errors.Wrap(err, errors.CategoryBadInput, "failed to parse registration payload").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload", "error", err)
		return errors.Wrap(err, errors.CategoryValidation, "invalid registration payload").
			WithCode(errors.CodeBadRequest)
	}

	msg := RegisterUserMessage{
		FullName: payload.FullName,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Password: payload.Password,
	}

	if _, err := a.Auther.Register(c.UserContext(), msg); err != nil {
		a.Logger.Error("register user", "email", payload.Email, "error", err)
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"msg": "User Created Successfully.",
	})
}

// Status is the non-mutating sibling of the session gate: it answers
// "is my session usable" without enforcing a route. An existing valid
// access token is reported as-is; otherwise a valid refresh token
// triggers the same silent renewal the gate performs on path 3.
func (a *AuthController) Status(c *fiber.Ctx) error {
	if a.Gate.AccessValid(c) {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"msg": "You are already logged in.",
		})
	}

	if err := a.Gate.RenewAccess(c); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"msg": "Logged in successfully.",
	})
}

func (a *AuthController) LogOut(c *fiber.Ctx) error {
	ClearSessionCookies(c)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"msg": "Logged out successfully.",
	})
}

// CurrentUser echoes the request principal. Runs behind the gate.
func (a *AuthController) CurrentUser(c *fiber.Ctx) error {
	principal, ok := PrincipalFromCtx(c)
	if !ok {
		return ErrUnauthorized
	}

	return c.JSON(fiber.Map{
		"user": principal,
	})
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match", errors.CategoryValidation)
		}
		return nil
	}
}

// ValidateOptionalPhone accepts an empty phone and otherwise requires a
// parseable, valid number in international format.
func ValidateOptionalPhone(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, "US")
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid phone number")
	}

	if !phonenumbers.IsValidNumber(num) {
		return errors.New("invalid phone number", errors.CategoryValidation)
	}

	return nil
}
