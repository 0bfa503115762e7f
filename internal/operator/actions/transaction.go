package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

type CreateTransaction struct {
	Ledger      Ledger
	Transaction *model.Transaction

	// Created is set once the batch has run.
	Created *model.Transaction
}

func (t *CreateTransaction) Perform(ctx context.Context, writer storage.Writer) error {
	created, err := t.Ledger.CreateTransactionTx(ctx, writer, t.Transaction)
	if err != nil {
		return err
	}
	t.Created = created
	return nil
}

type UpdateTransaction struct {
	Ledger      Ledger
	Transaction *model.Transaction

	Updated *model.Transaction
}

func (t *UpdateTransaction) Perform(ctx context.Context, writer storage.Writer) error {
	updated, err := t.Ledger.UpdateTransactionTx(ctx, writer, t.Transaction)
	if err != nil {
		return err
	}
	t.Updated = updated
	return nil
}

type DeleteTransaction struct {
	Ledger Ledger
	ID     uuid.UUID
}

func (t *DeleteTransaction) Perform(ctx context.Context, writer storage.Writer) error {
	return t.Ledger.DeleteTransactionTx(ctx, writer, t.ID)
}
