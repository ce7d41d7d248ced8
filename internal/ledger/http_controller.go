package ledger

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/tallyapp/tally/internal/auth"
)

// Controller owns the transaction endpoints. Every route runs behind
// the session gate; ownership is the principal's email.
type Controller struct {
	Logger auth.Logger
	Repo   Transactions
}

func NewController(repo Transactions, logger auth.Logger) *Controller {
	c := &Controller{
		Logger: logger,
		Repo:   repo,
	}

	if c.Repo == nil {
		panic("Missing Transactions repository in ledger controller...")
	}

	return c
}

// RegisterRoutes mounts the transaction routes under the given
// (already authenticated) group.
func (l *Controller) RegisterRoutes(app fiber.Router) {
	app.Post("/income", l.AddIncome)
	app.Post("/expense", l.AddExpense)
	app.Get("/income", l.ListIncome)
	app.Get("/expense", l.ListExpense)
	app.Delete("/delete/:id", l.Delete)
	app.Patch("/update/:id", l.Update)
}

// AddTransactionPayload is shared by the income and expense routes; the
// expense route binds the source from a "category" field.
type AddTransactionPayload struct {
	Source   string  `form:"source" json:"source"`
	Category string  `form:"category" json:"category"`
	Amount   float64 `form:"amount" json:"amount"`
	Date     string  `form:"date" json:"date"`
}

// Validate will validate the payload
func (r AddTransactionPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Amount, validation.Required),
		validation.Field(&r.Date, validation.Date("2006-01-02")),
	)
}

func (l *Controller) AddIncome(c *fiber.Ctx) error {
	return l.addTransaction(c, KindIncome)
}

func (l *Controller) AddExpense(c *fiber.Ctx) error {
	return l.addTransaction(c, KindExpense)
}

func (l *Controller) addTransaction(c *fiber.Ctx, kind TransactionKind) error {
	principal, ok := auth.PrincipalFromCtx(c)
	if !ok {
		return auth.ErrUnauthorized
	}

	payload := new(AddTransactionPayload)
	if err := c.BodyParser(payload); err != nil {
		l.Logger.Error("add transaction parse payload", "error", err)
		return errors.Wrap(err, errors.CategoryBadInput, "failed to parse transaction payload").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid transaction payload").
			WithCode(errors.CodeBadRequest)
	}

	source := payload.Source
	if kind == KindExpense && payload.Category != "" {
		source = payload.Category
	}
	if source == "" {
		return errors.New("missing transaction source", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	date := time.Now()
	if payload.Date != "" {
		parsed, err := time.Parse("2006-01-02", payload.Date)
		if err == nil {
			date = parsed
		}
	}

	record := &Transaction{
		UserEmail: principal.Email,
		Kind:      kind,
		Source:    source,
		Amount:    payload.Amount,
		Date:      date,
	}

	if _, err := l.Repo.Add(c.UserContext(), record); err != nil {
		l.Logger.Error("add transaction", "kind", kind, "error", err)
		return errors.Wrap(err, errors.CategoryInternal, "failed to store transaction")
	}

	msg := "Income added successfully."
	if kind == KindExpense {
		msg = "Expense added successfully."
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"msg": msg,
	})
}

func (l *Controller) ListIncome(c *fiber.Ctx) error {
	return l.listTransactions(c, KindIncome)
}

func (l *Controller) ListExpense(c *fiber.Ctx) error {
	return l.listTransactions(c, KindExpense)
}

func (l *Controller) listTransactions(c *fiber.Ctx, kind TransactionKind) error {
	principal, ok := auth.PrincipalFromCtx(c)
	if !ok {
		return auth.ErrUnauthorized
	}

	rng, err := ParseDateRange(c.Query("range"), c.Query("from"), c.Query("to"))
	if err != nil {
		return err
	}

	records, err := l.Repo.ListByUser(c.UserContext(), principal.Email, kind, rng)
	if err != nil {
		l.Logger.Error("list transactions", "kind", kind, "error", err)
		return errors.Wrap(err, errors.CategoryInternal, "failed to list transactions")
	}

	return c.JSON(fiber.Map{
		"transactions": records,
	})
}

// Dashboard returns the principal's transactions, date-descending. It
// is mounted outside the /transaction group but behind the same gate.
func (l *Controller) Dashboard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromCtx(c)
	if !ok {
		return auth.ErrUnauthorized
	}

	records, err := l.Repo.RecentByUser(c.UserContext(), principal.Email)
	if err != nil {
		l.Logger.Error("dashboard transactions", "error", err)
		return errors.Wrap(err, errors.CategoryInternal, "failed to load transactions")
	}

	return c.JSON(fiber.Map{
		"transactions": records,
	})
}

func (l *Controller) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errors.New("invalid transaction id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	if err := l.Repo.DeleteByID(c.UserContext(), id); err != nil {
		if repository.IsRecordNotFound(err) {
			return errors.New("Resource not found", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound)
		}
		l.Logger.Error("delete transaction", "id", id.String(), "error", err)
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete transaction")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"msg": "Deleted successfully",
	})
}

func (l *Controller) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errors.New("invalid transaction id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	payload := new(Transaction)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "failed to parse transaction payload").
			WithCode(errors.CodeBadRequest)
	}

	updated, err := l.Repo.UpdateByID(c.UserContext(), id, payload)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return errors.New("Resource not found", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound)
		}
		l.Logger.Error("update transaction", "id", id.String(), "error", err)
		return errors.Wrap(err, errors.CategoryInternal, "failed to update transaction")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"msg":  "Updated successfully",
		"data": updated,
	})
}
