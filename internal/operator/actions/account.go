package actions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

type CreateAccount struct {
	Account *model.Account
	Now     time.Time

	Created *model.Account
}

func (c *CreateAccount) Perform(ctx context.Context, writer storage.Writer) error {
	account := c.Account.Clone()
	if account.ID == uuid.Nil {
		account.ID = uuid.Must(uuid.NewV4())
	}
	account.Currency = strings.ToUpper(account.Currency)
	if err := model.ValidateAccount(account); err != nil {
		return err
	}

	existing, err := writer.ListAccounts(ctx)
	if err != nil {
		return err
	}
	if err := checkTagFree(existing, account); err != nil {
		return err
	}

	account.Balance = account.OpeningBalance
	account.LastTransactionDate = nil
	if account.CreatedAt.IsZero() {
		account.CreatedAt = c.Now
	}
	if len(existing) == 0 {
		account.IsDefault = true
	}
	if account.IsDefault {
		if err := clearDefault(ctx, writer, existing, account.ID); err != nil {
			return err
		}
	}

	if err := writer.InsertAccount(ctx, account); err != nil {
		return err
	}
	c.Created = account
	return nil
}

// UpdateAccount changes the user-editable fields. Balance, opening balance
// and creation time always come from the stored row.
type UpdateAccount struct {
	Account *model.Account

	Updated *model.Account
}

func (u *UpdateAccount) Perform(ctx context.Context, writer storage.Writer) error {
	stored, err := writer.GetAccount(ctx, u.Account.ID)
	if err != nil {
		return err
	}

	account := u.Account.Clone()
	account.Currency = strings.ToUpper(account.Currency)
	account.Balance = stored.Balance
	account.OpeningBalance = stored.OpeningBalance
	account.CreatedAt = stored.CreatedAt
	account.LastTransactionDate = stored.LastTransactionDate
	if err := model.ValidateAccount(account); err != nil {
		return err
	}
	if account.Currency != stored.Currency && stored.LastTransactionDate != nil {
		return model.NewValidationError("currency", "currency cannot change once the account has transactions")
	}

	existing, err := writer.ListAccounts(ctx)
	if err != nil {
		return err
	}
	if err := checkTagFree(existing, account); err != nil {
		return err
	}

	switch {
	case account.IsDefault && !stored.IsDefault:
		if err := clearDefault(ctx, writer, existing, account.ID); err != nil {
			return err
		}
	case !account.IsDefault && stored.IsDefault:
		return model.NewValidationError("isDefault", "mark another account as default instead")
	}

	if err := writer.UpdateAccount(ctx, account); err != nil {
		return err
	}
	u.Updated = account
	return nil
}

// DeleteAccount removes an account. With Cascade unset the account must not
// be referenced by any transaction; with Cascade set every referencing
// transaction is deleted first through the ledger so the other side of a
// transfer is reversed.
type DeleteAccount struct {
	Ledger  Ledger
	ID      uuid.UUID
	Cascade bool
}

func (d *DeleteAccount) Perform(ctx context.Context, writer storage.Writer) error {
	account, err := writer.GetAccount(ctx, d.ID)
	if err != nil {
		return err
	}

	referencing, err := writer.ListTransactions(ctx, &storage.TransactionFilter{AnyAccountID: &d.ID})
	if err != nil {
		return err
	}
	if len(referencing) > 0 && !d.Cascade {
		return model.NewConflictError("account", "account is referenced by transactions")
	}
	for _, tx := range referencing {
		err := d.Ledger.DeleteTransactionTx(ctx, writer, tx.ID)
		// the other leg of a transfer was already removed with its pair
		if err != nil && !errors.Is(err, model.ErrEntityNotFound) {
			return err
		}
	}

	if err := writer.DeleteAccount(ctx, d.ID); err != nil {
		return err
	}

	if !account.IsDefault {
		return nil
	}
	remaining, err := writer.ListAccounts(ctx)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return nil
	}
	next := remaining[0]
	next.IsDefault = true
	return writer.UpdateAccount(ctx, next)
}

// EnsureDefaultAccount makes sure one account is the default, creating
// Template when there are no accounts at all.
type EnsureDefaultAccount struct {
	Template *model.Account
	Now      time.Time

	Default *model.Account
}

func (e *EnsureDefaultAccount) Perform(ctx context.Context, writer storage.Writer) error {
	accounts, err := writer.ListAccounts(ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if a.IsDefault {
			e.Default = a
			return nil
		}
	}

	if len(accounts) > 0 {
		first := accounts[0]
		first.IsDefault = true
		if err := writer.UpdateAccount(ctx, first); err != nil {
			return err
		}
		e.Default = first
		return nil
	}

	create := &CreateAccount{Account: e.Template, Now: e.Now}
	if err := create.Perform(ctx, writer); err != nil {
		return err
	}
	e.Default = create.Created
	return nil
}

func checkTagFree(existing []*model.Account, account *model.Account) error {
	for _, other := range existing {
		if other.ID != account.ID && strings.EqualFold(other.Tag, account.Tag) {
			return model.NewValidationError("tag", "tag "+account.Tag+" is already used by "+other.Name)
		}
	}
	return nil
}

func clearDefault(ctx context.Context, writer storage.Writer, existing []*model.Account, keep uuid.UUID) error {
	for _, other := range existing {
		if other.ID == keep || !other.IsDefault {
			continue
		}
		other.IsDefault = false
		if err := writer.UpdateAccount(ctx, other); err != nil {
			return err
		}
	}
	return nil
}
