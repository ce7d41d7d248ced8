package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/tallyapp/tally/internal/auth"
	"github.com/tallyapp/tally/internal/ledger"
)

type Config struct {
	Debug        bool
	ClientOrigin string
	Logger       auth.Logger
}

// New builds the fiber app with the shared error boundary and CORS
// policy. Routes are mounted separately through Mount.
func New(cfg Config) *fiber.App {
	logger := cfg.Logger
	if logger == nil {
		logger = auth.DefaultLogger()
	}

	app := fiber.New(fiber.Config{
		AppName:      "tally",
		ErrorHandler: makeErrorHandler(logger, cfg.Debug),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.ClientOrigin,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PATCH, DELETE, OPTIONS",
	}))

	return app
}

// Deps carries the controllers Mount wires into the app. Federated may
// be nil when no provider is configured.
type Deps struct {
	Auth      *auth.AuthController
	Federated *auth.FederatedController
	Ledger    *ledger.Controller
	Gate      *auth.SessionGate
}

// Mount registers every route group on the app.
func Mount(app *fiber.App, deps Deps) {
	deps.Auth.RegisterRoutes(app)

	if deps.Federated != nil {
		deps.Federated.RegisterRoutes(app)
	}

	protected := app.Group("/transaction", deps.Gate.Authenticate())
	deps.Ledger.RegisterRoutes(protected)

	app.Get("/dashboard", deps.Gate.Authenticate(), deps.Ledger.Dashboard)
}

// makeErrorHandler converts rich errors into the JSON bodies clients
// depend on. Anything that is not already a rich error becomes a 500.
func makeErrorHandler(logger auth.Logger, debug bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"msg": fiberErr.Message,
			})
		}

		var richErr *errors.Error
		if !errors.As(err, &richErr) {
			richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
				WithCode(errors.CodeInternal)
		}

		status := richErr.Code
		if status < fiber.StatusBadRequest {
			status = statusForCategory(richErr.Category)
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				"error", richErr.Message,
				"category", richErr.Category,
				"path", c.OriginalURL(),
			)
		}

		body := fiber.Map{
			"msg": richErr.Message,
		}
		if richErr.TextCode != "" {
			body["text_code"] = richErr.TextCode
		}
		if debug && len(richErr.Metadata) > 0 {
			body["details"] = print.MaybePrettyJSON(richErr.Metadata)
		}

		return c.Status(status).JSON(body)
	}
}

func statusForCategory(category errors.Category) int {
	switch category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return fiber.StatusUnauthorized
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryConflict:
		return fiber.StatusConflict
	case errors.CategoryBadInput, errors.CategoryValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
