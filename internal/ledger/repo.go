package ledger

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Transactions is the ledger store. Listings are always scoped to one
// user's email and returned date-descending.
type Transactions interface {
	repository.Repository[*Transaction]

	Add(ctx context.Context, record *Transaction) (*Transaction, error)
	ListByUser(ctx context.Context, email string, kind TransactionKind, rng DateRange) ([]*Transaction, error)
	RecentByUser(ctx context.Context, email string) ([]*Transaction, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	UpdateByID(ctx context.Context, id uuid.UUID, record *Transaction) (*Transaction, error)
}

type transactions struct {
	repository.Repository[*Transaction]
	db *bun.DB
}

var _ Transactions = (*transactions)(nil)

func NewTransactionsRepository(db *bun.DB) Transactions {
	repo := repository.NewRepository[*Transaction](db, repository.ModelHandlers[*Transaction]{
		NewRecord: func() *Transaction { return &Transaction{} },
		GetID: func(t *Transaction) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *Transaction, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
	})

	return &transactions{
		Repository: repo,
		db:         db,
	}
}

func (r *transactions) Add(ctx context.Context, record *Transaction) (*Transaction, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.Repository.Create(ctx, record)
}

func (r *transactions) ListByUser(ctx context.Context, email string, kind TransactionKind, rng DateRange) ([]*Transaction, error) {
	var records []*Transaction

	q := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_email = ?", email).
		Where("?TableAlias.kind = ?", kind)

	if rng.From != nil {
		q = q.Where("?TableAlias.date >= ?", *rng.From)
	}
	if rng.To != nil {
		q = q.Where("?TableAlias.date <= ?", *rng.To)
	}

	if err := q.Order("date DESC").Scan(ctx); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *transactions) RecentByUser(ctx context.Context, email string) ([]*Transaction, error) {
	var records []*Transaction

	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_email = ?", email).
		Order("date DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *transactions) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*Transaction)(nil)).
		Where("?TableAlias.id = ?", id.String()).
		Exec(ctx)

	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func (r *transactions) UpdateByID(ctx context.Context, id uuid.UUID, record *Transaction) (*Transaction, error) {
	record.ID = id
	return r.Repository.Update(ctx, record, repository.UpdateByID(id.String()))
}
