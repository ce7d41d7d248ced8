package ledger

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestStore(t *testing.T) Transactions {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = db.NewCreateTable().
		Model((*Transaction)(nil)).
		Exec(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})

	return NewTransactionsRepository(db)
}

func day(offset int) time.Time {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start.AddDate(0, 0, offset)
}

func seedTransaction(t *testing.T, store Transactions, email string, kind TransactionKind, amount float64, date time.Time) *Transaction {
	t.Helper()

	record, err := store.Add(context.Background(), &Transaction{
		UserEmail: email,
		Kind:      kind,
		Source:    "salary",
		Amount:    amount,
		Date:      date,
	})
	require.NoError(t, err)
	return record
}

func TestAddAssignsID(t *testing.T) {
	store := newTestStore(t)

	record := seedTransaction(t, store, "frodo@example.com", KindIncome, 100, day(0))
	assert.NotEqual(t, uuid.Nil, record.ID)
}

func TestListByUserScopesEmailAndKind(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedTransaction(t, store, "frodo@example.com", KindIncome, 100, day(-1))
	seedTransaction(t, store, "frodo@example.com", KindExpense, 40, day(-1))
	seedTransaction(t, store, "sam@example.com", KindIncome, 70, day(-1))

	records, err := store.ListByUser(ctx, "frodo@example.com", KindIncome, DateRange{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, float64(100), records[0].Amount)
}

func TestListByUserOrdersDateDescending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedTransaction(t, store, "frodo@example.com", KindIncome, 1, day(-10))
	seedTransaction(t, store, "frodo@example.com", KindIncome, 2, day(-1))
	seedTransaction(t, store, "frodo@example.com", KindIncome, 3, day(-5))

	records, err := store.ListByUser(ctx, "frodo@example.com", KindIncome, DateRange{})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, float64(2), records[0].Amount)
	assert.Equal(t, float64(3), records[1].Amount)
	assert.Equal(t, float64(1), records[2].Amount)
}

func TestListByUserHonorsDateRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedTransaction(t, store, "frodo@example.com", KindIncome, 1, day(-30))
	seedTransaction(t, store, "frodo@example.com", KindIncome, 2, day(-3))

	from := day(-7)
	records, err := store.ListByUser(ctx, "frodo@example.com", KindIncome, DateRange{From: &from})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, float64(2), records[0].Amount)
}

func TestRecentByUserMixesKinds(t *testing.T) {
	store := newTestStore(t)

	seedTransaction(t, store, "frodo@example.com", KindIncome, 100, day(-2))
	seedTransaction(t, store, "frodo@example.com", KindExpense, 40, day(-1))

	records, err := store.RecentByUser(context.Background(), "frodo@example.com")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, KindExpense, records[0].Kind)
}

func TestDeleteByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := seedTransaction(t, store, "frodo@example.com", KindIncome, 100, day(0))

	require.NoError(t, store.DeleteByID(ctx, record.ID))

	records, err := store.RecentByUser(ctx, "frodo@example.com")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDeleteByIDNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.DeleteByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestUpdateByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := seedTransaction(t, store, "frodo@example.com", KindIncome, 100, day(0))

	record.Amount = 150
	record.Source = "bonus"
	updated, err := store.UpdateByID(ctx, record.ID, record)
	require.NoError(t, err)
	assert.Equal(t, float64(150), updated.Amount)
	assert.Equal(t, "bonus", updated.Source)

	records, err := store.RecentByUser(ctx, "frodo@example.com")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, float64(150), records[0].Amount)
}
