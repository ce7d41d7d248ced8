package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TransactionKind is the transaction direction.
type TransactionKind = string

const (
	// KindIncome marks money coming in.
	KindIncome TransactionKind = "income"
	// KindExpense marks money going out.
	KindExpense TransactionKind = "expense"
)

// Transaction is one income or expense entry. Ownership is by the
// authenticated principal's email; there is no cross-user sharing.
type Transaction struct {
	bun.BaseModel `bun:"table:transactions,alias:txn"`
	ID            uuid.UUID       `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserEmail     string          `bun:"user_email,notnull" json:"user,omitempty"`
	Kind          TransactionKind `bun:"kind,notnull" json:"type,omitempty"`
	Source        string          `bun:"source,notnull" json:"source,omitempty"`
	Amount        float64         `bun:"amount,notnull" json:"amount,omitempty"`
	Date          time.Time       `bun:"date,notnull" json:"date,omitempty"`
	CreatedAt     *time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
