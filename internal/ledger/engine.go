// Package ledger keeps account balances consistent with the transactions
// that reference them. Every mutation runs as one storage batch: the stored
// version's effects are reversed, the new version's effects applied, and the
// rows and balances written together or not at all.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-ledger/internal/ledger/split"
	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/operator"
	"github.com/carson-networks/budget-ledger/internal/operator/actions"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

// DeletePolicy decides what happens to transactions that reference an
// account being deleted.
type DeletePolicy string

const (
	DeletePolicyRefuse  DeletePolicy = "refuse"
	DeletePolicyCascade DeletePolicy = "cascade"
)

type Engine struct {
	store        storage.Store
	exec         operator.Processor
	logger       logrus.FieldLogger
	now          func() time.Time
	deletePolicy DeletePolicy
}

var _ actions.Ledger = (*Engine)(nil)

type Option func(*Engine)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithDeletePolicy(policy DeletePolicy) Option {
	return func(e *Engine) {
		e.deletePolicy = policy
	}
}

// NewEngine builds an engine that reads from store and runs its mutations
// through exec.
func NewEngine(store storage.Store, exec operator.Processor, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		exec:         exec,
		logger:       logrus.StandardLogger(),
		now:          time.Now,
		deletePolicy: DeletePolicyRefuse,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store is the repository the engine reads from.
func (e *Engine) Store() storage.Store {
	return e.store
}

// Processor is the executor the engine submits batches to.
func (e *Engine) Processor() operator.Processor {
	return e.exec
}

func (e *Engine) Now() time.Time {
	return e.now().UTC()
}

// CreateTransaction validates tx, persists it with any split children or
// transfer leg, and posts its balance effects.
func (e *Engine) CreateTransaction(ctx context.Context, tx *model.Transaction) (*model.Transaction, error) {
	action := &actions.CreateTransaction{Ledger: e, Transaction: tx}
	if err := e.exec.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Created, nil
}

// UpdateTransaction replaces the stored version of tx. A non-zero
// tx.Version must match the stored version.
func (e *Engine) UpdateTransaction(ctx context.Context, tx *model.Transaction) (*model.Transaction, error) {
	action := &actions.UpdateTransaction{Ledger: e, Transaction: tx}
	if err := e.exec.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Updated, nil
}

// DeleteTransaction removes a transaction, its children and its transfer
// leg, reversing their effects.
func (e *Engine) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return e.exec.Process(ctx, &actions.DeleteTransaction{Ledger: e, ID: id})
}

// GetTransaction reads one transaction with its children.
func (e *Engine) GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	return e.store.GetTransaction(ctx, id)
}

// TransactionQuery narrows GetTransactions. Zero fields do not filter.
type TransactionQuery struct {
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// GetTransactions returns matching top-level transactions, newest
// transactionDate first.
func (e *Engine) GetTransactions(ctx context.Context, query TransactionQuery) ([]*model.Transaction, error) {
	if query.From != nil && query.To != nil && query.From.After(*query.To) {
		return nil, model.NewValidationError("dateRange", "from must not be after to")
	}
	return e.store.ListTransactions(ctx, &storage.TransactionFilter{
		AccountID:  query.AccountID,
		CategoryID: query.CategoryID,
		From:       query.From,
		To:         query.To,
	})
}

// ExpandSplit turns the transaction parentID into a split parent carrying
// children, replacing any children it already had. Every child must name
// parentID as its parent; a child that sends back the ID of one of the
// current children keeps that identity.
func (e *Engine) ExpandSplit(ctx context.Context, parentID uuid.UUID, children []model.Transaction) (*model.Transaction, error) {
	if len(children) == 0 {
		return nil, model.NewValidationError("splitTransactions", "a split needs at least one child")
	}
	for i := range children {
		if children[i].ParentTransactionID == nil || *children[i].ParentTransactionID != parentID {
			return nil, model.NewValidationError(fmt.Sprintf("splitTransactions[%d].parentTransactionId", i), "child must reference the transaction being split")
		}
	}

	var result *model.Transaction
	err := e.exec.Process(ctx, actions.ActionFunc(func(ctx context.Context, w storage.Writer) error {
		stored, err := w.GetTransaction(ctx, parentID)
		if err != nil {
			return err
		}
		next := stored.Clone()
		next.SplitTransactions = children
		next.Version = 0
		result, err = e.UpdateTransactionTx(ctx, w, next)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CollapseSplit turns a split parent back into a leaf with the given amount
// and category, dropping its children.
func (e *Engine) CollapseSplit(ctx context.Context, parentID uuid.UUID, amount decimal.Decimal, categoryID *uuid.UUID) (*model.Transaction, error) {
	var result *model.Transaction
	err := e.exec.Process(ctx, actions.ActionFunc(func(ctx context.Context, w storage.Writer) error {
		stored, err := w.GetTransaction(ctx, parentID)
		if err != nil {
			return err
		}
		leaf, err := split.Collapse(stored, amount, categoryID)
		if err != nil {
			return err
		}
		leaf.Version = 0
		result, err = e.UpdateTransactionTx(ctx, w, leaf)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return result, nil
}
