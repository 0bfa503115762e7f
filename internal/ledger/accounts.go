package ledger

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/operator/actions"
)

func (e *Engine) CreateAccount(ctx context.Context, account *model.Account) (*model.Account, error) {
	action := &actions.CreateAccount{Account: account, Now: e.Now()}
	if err := e.exec.Process(ctx, action); err != nil {
		return nil, err
	}
	e.logger.WithField("accountID", action.Created.ID).Info("Ledger.CreateAccount.created")
	return action.Created, nil
}

// UpdateAccount changes everything except the balance, which only moves
// with the transactions posted against it.
func (e *Engine) UpdateAccount(ctx context.Context, account *model.Account) (*model.Account, error) {
	action := &actions.UpdateAccount{Account: account}
	if err := e.exec.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Updated, nil
}

// DeleteAccount removes an account according to the engine's delete policy.
func (e *Engine) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	action := &actions.DeleteAccount{Ledger: e, ID: id, Cascade: e.deletePolicy == DeletePolicyCascade}
	if err := e.exec.Process(ctx, action); err != nil {
		return err
	}
	e.logger.WithFields(logrus.Fields{
		"accountID": id,
		"policy":    e.deletePolicy,
	}).Info("Ledger.DeleteAccount.deleted")
	return nil
}

// EnsureDefaultAccount returns the default account, creating template when
// the ledger has no accounts yet.
func (e *Engine) EnsureDefaultAccount(ctx context.Context, template *model.Account) (*model.Account, error) {
	action := &actions.EnsureDefaultAccount{Template: template, Now: e.Now()}
	if err := e.exec.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Default, nil
}

func (e *Engine) GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	return e.store.GetAccount(ctx, id)
}

func (e *Engine) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	return e.store.ListAccounts(ctx)
}

func (e *Engine) GetDefaultAccount(ctx context.Context) (*model.Account, error) {
	return e.store.GetDefaultAccount(ctx)
}

func (e *Engine) CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	action := &actions.CreateCategory{Category: category}
	if err := e.exec.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Created, nil
}

func (e *Engine) UpdateCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	action := &actions.UpdateCategory{Category: category}
	if err := e.exec.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Updated, nil
}

func (e *Engine) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return e.exec.Process(ctx, &actions.DeleteCategory{ID: id})
}

func (e *Engine) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	return e.store.GetCategory(ctx, id)
}

func (e *Engine) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return e.store.ListCategories(ctx)
}
