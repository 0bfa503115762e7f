package memory

import (
	"bytes"
	"context"
	"sort"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

// reader answers queries over either committed tables or a batch overlay.
type reader struct {
	accounts     source[*model.Account]
	categories   source[*model.Category]
	transactions source[*model.Transaction]
	pending      source[*model.PendingTransaction]
}

func (r *reader) GetAccount(_ context.Context, id uuid.UUID) (*model.Account, error) {
	a, ok := r.accounts.get(id)
	if !ok {
		return nil, model.NotFound("account", id)
	}
	return a, nil
}

func (r *reader) ListAccounts(_ context.Context) ([]*model.Account, error) {
	accounts := r.accounts.all()
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].Name != accounts[j].Name {
			return accounts[i].Name < accounts[j].Name
		}
		return lessID(accounts[i].ID, accounts[j].ID)
	})
	return accounts, nil
}

func (r *reader) GetDefaultAccount(_ context.Context) (*model.Account, error) {
	for _, a := range r.accounts.all() {
		if a.IsDefault {
			return a, nil
		}
	}
	return nil, &model.Error{Kind: model.KindAccountNotFound, Field: "account", Message: "no default account"}
}

func (r *reader) GetCategory(_ context.Context, id uuid.UUID) (*model.Category, error) {
	c, ok := r.categories.get(id)
	if !ok {
		return nil, model.NotFound("category", id)
	}
	return c, nil
}

func (r *reader) ListCategories(_ context.Context) ([]*model.Category, error) {
	categories := r.categories.all()
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (r *reader) GetTransaction(_ context.Context, id uuid.UUID) (*model.Transaction, error) {
	tx, ok := r.transactions.get(id)
	if !ok {
		return nil, model.NotFound("transaction", id)
	}
	tx.SplitTransactions = r.children(id)
	return tx, nil
}

func (r *reader) children(parentID uuid.UUID) []model.Transaction {
	var out []model.Transaction
	for _, row := range r.transactions.all() {
		if row.ParentTransactionID != nil && *row.ParentTransactionID == parentID {
			out = append(out, *row)
		}
	}
	sortChildren(out)
	return out
}

func (r *reader) ListTransactions(_ context.Context, filter *storage.TransactionFilter) ([]*model.Transaction, error) {
	rows := r.transactions.all()

	children := make(map[uuid.UUID][]model.Transaction)
	var top []*model.Transaction
	for _, row := range rows {
		if row.ParentTransactionID != nil {
			children[*row.ParentTransactionID] = append(children[*row.ParentTransactionID], *row)
			continue
		}
		top = append(top, row)
	}

	var out []*model.Transaction
	for _, tx := range top {
		tx.SplitTransactions = children[tx.ID]
		sortChildren(tx.SplitTransactions)
		if matches(tx, filter) {
			out = append(out, tx)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.TransactionDate.Equal(b.TransactionDate) {
			return a.TransactionDate.After(b.TransactionDate)
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return lessID(b.ID, a.ID)
	})

	if filter != nil {
		if filter.Offset > 0 {
			if filter.Offset >= len(out) {
				return nil, nil
			}
			out = out[filter.Offset:]
		}
		if filter.Limit > 0 && len(out) > filter.Limit+1 {
			out = out[:filter.Limit+1]
		}
	}
	return out, nil
}

func matches(tx *model.Transaction, f *storage.TransactionFilter) bool {
	if f == nil {
		return true
	}
	if f.AccountID != nil {
		ledgerAccount := tx.LedgerAccountID()
		if ledgerAccount == nil || *ledgerAccount != *f.AccountID {
			return false
		}
	}
	if f.AnyAccountID != nil && !tx.References(*f.AnyAccountID) {
		return false
	}
	if f.TransferID != nil && (tx.TransferID == nil || *tx.TransferID != *f.TransferID) {
		return false
	}
	if f.From != nil && tx.TransactionDate.Before(*f.From) {
		return false
	}
	if f.To != nil && tx.TransactionDate.After(*f.To) {
		return false
	}
	if f.MaxCreationTime != nil && tx.Timestamp.After(*f.MaxCreationTime) {
		return false
	}
	if f.CategoryID != nil && !hasCategory(tx, *f.CategoryID) {
		return false
	}
	return true
}

func hasCategory(tx *model.Transaction, categoryID uuid.UUID) bool {
	if !tx.IsSplitParent() {
		return tx.CategoryID != nil && *tx.CategoryID == categoryID
	}
	for i := range tx.SplitTransactions {
		c := tx.SplitTransactions[i].CategoryID
		if c != nil && *c == categoryID {
			return true
		}
	}
	return false
}

func (r *reader) GetPending(_ context.Context, id uuid.UUID) (*model.PendingTransaction, error) {
	p, ok := r.pending.get(id)
	if !ok {
		return nil, model.NotFound("pending transaction", id)
	}
	return p, nil
}

func (r *reader) ListPending(_ context.Context, filter *storage.PendingFilter) ([]*model.PendingTransaction, error) {
	var out []*model.PendingTransaction
	for _, p := range r.pending.all() {
		if filter != nil {
			if filter.AccountID != nil && p.AccountID != *filter.AccountID {
				continue
			}
			if filter.Status != nil && p.Status != *filter.Status {
				continue
			}
			if filter.ProcessingBefore != nil &&
				(p.ProcessingStartedAt == nil || !p.ProcessingStartedAt.Before(*filter.ProcessingBefore)) {
				continue
			}
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TransactionDate.Equal(out[j].TransactionDate) {
			return out[i].TransactionDate.After(out[j].TransactionDate)
		}
		return lessID(out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *reader) FindPendingByBankID(_ context.Context, bankID string) (*model.PendingTransaction, error) {
	for _, p := range r.pending.all() {
		if p.BankTransactionID != nil && *p.BankTransactionID == bankID {
			return p, nil
		}
	}
	return nil, nil
}

func sortChildren(children []model.Transaction) {
	sort.Slice(children, func(i, j int) bool {
		if children[i].Position != children[j].Position {
			return children[i].Position < children[j].Position
		}
		return lessID(children[i].ID, children[j].ID)
	})
}

func lessID(a, b uuid.UUID) bool {
	return bytes.Compare(a.Bytes(), b.Bytes()) < 0
}
