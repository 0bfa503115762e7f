package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

type IAction interface {
	Perform(ctx context.Context, writer storage.Writer) error
}

// ActionFunc adapts a plain function to IAction.
type ActionFunc func(ctx context.Context, writer storage.Writer) error

func (f ActionFunc) Perform(ctx context.Context, writer storage.Writer) error {
	return f(ctx, writer)
}

// Ledger is the part of the ledger engine that runs inside a batch.
//
//go:generate mockery --name Ledger --inpackage --with-expecter
type Ledger interface {
	CreateTransactionTx(ctx context.Context, writer storage.Writer, tx *model.Transaction) (*model.Transaction, error)
	UpdateTransactionTx(ctx context.Context, writer storage.Writer, tx *model.Transaction) (*model.Transaction, error)
	DeleteTransactionTx(ctx context.Context, writer storage.Writer, id uuid.UUID) error
}
