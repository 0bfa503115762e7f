// Package storage defines the persistence boundary the ledger depends on.
// Reads run against the last committed state; every mutation happens inside
// PerformBatch and commits atomically or not at all.
package storage

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/notify"
)

// TransactionFilter selects top-level transactions. Split children are never
// returned on their own; they come attached to their parent.
type TransactionFilter struct {
	// AccountID matches the account whose balance the transaction moves.
	AccountID *uuid.UUID
	// AnyAccountID matches either leg.
	AnyAccountID *uuid.UUID
	// CategoryID matches a leaf's category or any child of a split parent.
	CategoryID *uuid.UUID
	TransferID *uuid.UUID
	// From and To bound TransactionDate, both inclusive.
	From *time.Time
	To   *time.Time
	// MaxCreationTime bounds Timestamp, for stable pagination.
	MaxCreationTime *time.Time
	Limit           int
	Offset          int
}

// PendingFilter selects pending transactions.
type PendingFilter struct {
	AccountID *uuid.UUID
	Status    *model.PendingStatus
	// ProcessingBefore selects records stuck in processing since before it.
	ProcessingBefore *time.Time
}

// Reader is the read side of the repository. Missing entities are reported
// with model.NotFound.
type Reader interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]*model.Account, error)
	GetDefaultAccount(ctx context.Context) (*model.Account, error)

	GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)

	// GetTransaction returns any transaction row by id, with children
	// attached when it is a split parent.
	GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	// ListTransactions returns matches ordered by TransactionDate descending.
	ListTransactions(ctx context.Context, filter *TransactionFilter) ([]*model.Transaction, error)

	GetPending(ctx context.Context, id uuid.UUID) (*model.PendingTransaction, error)
	ListPending(ctx context.Context, filter *PendingFilter) ([]*model.PendingTransaction, error)
	// FindPendingByBankID returns nil, nil when no candidate carries bankID.
	FindPendingByBankID(ctx context.Context, bankID string) (*model.PendingTransaction, error)
}

// Writer is the unit-of-work handle passed to a batch. Reads through a Writer
// see the batch's own uncommitted writes.
type Writer interface {
	Reader

	// LockAccounts loads and locks the given accounts for the rest of the
	// batch. Ids that do not exist are absent from the result.
	LockAccounts(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*model.Account, error)
	InsertAccount(ctx context.Context, account *model.Account) error
	UpdateAccount(ctx context.Context, account *model.Account) error
	DeleteAccount(ctx context.Context, id uuid.UUID) error

	InsertCategory(ctx context.Context, category *model.Category) error
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	// CategoryInUse reports whether any transaction or pending candidate references the category.
	CategoryInUse(ctx context.Context, id uuid.UUID) (bool, error)

	// Transaction writes operate on single rows; children are written
	// individually by the caller.
	InsertTransaction(ctx context.Context, tx *model.Transaction) error
	UpdateTransaction(ctx context.Context, tx *model.Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	InsertPending(ctx context.Context, p *model.PendingTransaction) error
	UpdatePending(ctx context.Context, p *model.PendingTransaction) error
}

// BatchFunc is an atomic unit of work.
type BatchFunc func(ctx context.Context, w Writer) error

// Store is the repository the ledger engine depends on.
type Store interface {
	Reader

	// PerformBatch runs fn as one atomic unit. An error from fn, or ctx
	// being done before commit, rolls back every write.
	PerformBatch(ctx context.Context, fn BatchFunc) error

	// Streams publishes the ids touched by each committed batch.
	Streams() *notify.Streams

	Close() error
}
