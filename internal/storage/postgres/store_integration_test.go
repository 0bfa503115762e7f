//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/operator"
	"github.com/carson-networks/budget-ledger/internal/pending"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

// setupStore starts a disposable PostgreSQL container, applies the
// migrations and returns a store on it.
func setupStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	require.NoError(t, Migrate(db, "file://../../../migrations", logger))

	store := New(db, 0, logger)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newEngine(t *testing.T, store *Store) *ledger.Engine {
	t.Helper()
	logger, _ := test.NewNullLogger()
	delegator := operator.NewOperatorDelegator(store, 4, logger)
	delegator.Start()
	t.Cleanup(delegator.Stop)
	return ledger.NewEngine(store, delegator, ledger.WithLogger(logger))
}

func createAccount(t *testing.T, engine *ledger.Engine, tag string, opening string) *model.Account {
	t.Helper()
	a, err := engine.CreateAccount(context.Background(), &model.Account{
		Name:           tag,
		Tag:            "#" + tag,
		Currency:       "KES",
		OpeningBalance: decimal.RequireFromString(opening),
	})
	require.NoError(t, err)
	return a
}

func balanceOf(t *testing.T, engine *ledger.Engine, id uuid.UUID) decimal.Decimal {
	t.Helper()
	a, err := engine.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return a.Balance
}

func TestIntegration_Postgres_LedgerRoundTrip(t *testing.T) {
	store := setupStore(t)
	engine := newEngine(t, store)
	ctx := context.Background()

	cash := createAccount(t, engine, "cash", "1000.00")
	bank := createAccount(t, engine, "bank", "50.00")
	food, err := engine.CreateCategory(ctx, &model.Category{Name: "food", ColorHex: "#ff0000"})
	require.NoError(t, err)

	def, err := engine.GetDefaultAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, cash.ID, def.ID)

	split, err := engine.CreateTransaction(ctx, &model.Transaction{
		Type:          model.TransactionTypeExpense,
		FromAccountID: model.IDPtr(cash.ID),
		Description:   "Supermarket",
		SplitTransactions: []model.Transaction{
			{Amount: decimal.RequireFromString("120.50"), CategoryID: model.IDPtr(food.ID)},
			{Amount: decimal.RequireFromString("30.00")},
		},
	})
	require.NoError(t, err)

	stored, err := engine.GetTransaction(ctx, split.ID)
	require.NoError(t, err)
	require.Len(t, stored.SplitTransactions, 2)
	assert.True(t, decimal.RequireFromString("150.50").Equal(stored.Amount))
	assert.Equal(t, food.ID, *stored.CategoryID)

	transfer, err := engine.CreateTransaction(ctx, &model.Transaction{
		Type:          model.TransactionTypeTransferOut,
		Amount:        decimal.RequireFromString("200"),
		FromAccountID: model.IDPtr(cash.ID),
		ToAccountID:   model.IDPtr(bank.ID),
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("649.50").Equal(balanceOf(t, engine, cash.ID)))
	assert.True(t, decimal.RequireFromString("250.00").Equal(balanceOf(t, engine, bank.ID)))

	legs, err := store.ListTransactions(ctx, &storage.TransactionFilter{TransferID: transfer.TransferID})
	require.NoError(t, err)
	assert.Len(t, legs, 2)

	assert.ErrorIs(t, engine.DeleteCategory(ctx, food.ID), model.ErrConflict)

	require.NoError(t, engine.DeleteTransaction(ctx, transfer.ID))
	assert.True(t, decimal.RequireFromString("50.00").Equal(balanceOf(t, engine, bank.ID)))

	report, err := engine.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, report.Balanced())
	assert.Equal(t, 2, report.Accounts)
}

func TestIntegration_Postgres_RollbackOnFailure(t *testing.T) {
	store := setupStore(t)
	engine := newEngine(t, store)
	ctx := context.Background()
	cash := createAccount(t, engine, "cash", "100")

	_, err := engine.CreateTransaction(ctx, &model.Transaction{
		Type:          model.TransactionTypeTransferOut,
		Amount:        decimal.RequireFromString("10"),
		FromAccountID: model.IDPtr(cash.ID),
		ToAccountID:   model.IDPtr(uuid.Must(uuid.NewV4())),
	})
	assert.ErrorIs(t, err, model.ErrAccountNotFound)

	txs, err := engine.GetTransactions(ctx, ledger.TransactionQuery{})
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.True(t, decimal.RequireFromString("100").Equal(balanceOf(t, engine, cash.ID)))
}

func TestIntegration_Postgres_ConcurrentPosting(t *testing.T) {
	store := setupStore(t)
	engine := newEngine(t, store)
	ctx := context.Background()
	cash := createAccount(t, engine, "cash", "100")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.CreateTransaction(ctx, &model.Transaction{
				Type:          model.TransactionTypeExpense,
				Amount:        decimal.RequireFromString("2.50"),
				FromAccountID: model.IDPtr(cash.ID),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.True(t, decimal.RequireFromString("50").Equal(balanceOf(t, engine, cash.ID)))
	report, err := engine.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, report.Balanced())
}

func TestIntegration_Postgres_PendingPromotion(t *testing.T) {
	store := setupStore(t)
	engine := newEngine(t, store)
	queue := pending.NewQueue(engine)
	ctx := context.Background()
	mpesa := createAccount(t, engine, "mpesa", "500")

	bankID := "QFT4ABC12X"
	created, err := queue.Create(ctx, &model.PendingTransaction{
		BankTransactionID: &bankID,
		Amount:            decimal.RequireFromString("120"),
		DescriptionText:   "M-PESA to JAVA HOUSE",
		Type:              model.TransactionTypeExpense,
		AccountID:         mpesa.ID,
	})
	require.NoError(t, err)

	_, err = queue.Create(ctx, &model.PendingTransaction{
		BankTransactionID: &bankID,
		Amount:            decimal.RequireFromString("120"),
		Type:              model.TransactionTypeExpense,
		AccountID:         mpesa.ID,
	})
	assert.ErrorIs(t, err, model.ErrConflict)

	result, err := queue.Process(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, pending.PromotionID(created.ID), result.Transaction.ID)

	again, err := queue.Process(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.True(t, decimal.RequireFromString("380").Equal(balanceOf(t, engine, mpesa.ID)))
}

func TestIntegration_Postgres_StreamsAfterCommit(t *testing.T) {
	store := setupStore(t)
	engine := newEngine(t, store)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := store.Streams().Accounts.Subscribe(ctx)
	cash := createAccount(t, engine, "cash", "1")

	select {
	case set := <-changes:
		assert.True(t, set.Contains(cash.ID))
	case <-time.After(5 * time.Second):
		t.Fatal("no account change published")
	}
}
