package memory

import (
	"context"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

// writer is the unit of work handed to a batch. Its reads go through the
// overlays so the batch sees its own writes.
type writer struct {
	reader

	accounts     *overlay[*model.Account]
	categories   *overlay[*model.Category]
	transactions *overlay[*model.Transaction]
	pending      *overlay[*model.PendingTransaction]
}

var _ storage.Writer = (*writer)(nil)

func newWriter(s *Store) *writer {
	w := &writer{
		accounts:     newOverlay(s.accounts),
		categories:   newOverlay(s.categories),
		transactions: newOverlay(s.transactions),
		pending:      newOverlay(s.pending),
	}
	w.reader = reader{
		accounts:     w.accounts,
		categories:   w.categories,
		transactions: w.transactions,
		pending:      w.pending,
	}
	return w
}

func (w *writer) commit() {
	w.accounts.commit()
	w.categories.commit()
	w.transactions.commit()
	w.pending.commit()
}

func (w *writer) changes() storage.ChangeLog {
	return storage.ChangeLog{
		Transactions: w.transactions.changed(),
		Accounts:     w.accounts.changed(),
		Categories:   w.categories.changed(),
		Pending:      w.pending.changed(),
	}
}

// LockAccounts needs no locking here: batches already run one at a time.
func (w *writer) LockAccounts(_ context.Context, ids ...uuid.UUID) (map[uuid.UUID]*model.Account, error) {
	out := make(map[uuid.UUID]*model.Account, len(ids))
	for _, id := range ids {
		if a, ok := w.accounts.get(id); ok {
			out[id] = a
		}
	}
	return out, nil
}

func (w *writer) InsertAccount(_ context.Context, account *model.Account) error {
	if _, ok := w.accounts.get(account.ID); ok {
		return model.NewConflictError("id", "account "+account.ID.String()+" already exists")
	}
	if err := w.checkTag(account); err != nil {
		return err
	}
	w.accounts.put(account.ID, account)
	return nil
}

func (w *writer) UpdateAccount(_ context.Context, account *model.Account) error {
	if _, ok := w.accounts.get(account.ID); !ok {
		return model.NotFound("account", account.ID)
	}
	if err := w.checkTag(account); err != nil {
		return err
	}
	w.accounts.put(account.ID, account)
	return nil
}

func (w *writer) checkTag(account *model.Account) error {
	for _, other := range w.accounts.all() {
		if other.ID != account.ID && strings.EqualFold(other.Tag, account.Tag) {
			return model.NewConflictError("tag", "tag "+account.Tag+" is already used")
		}
	}
	return nil
}

func (w *writer) DeleteAccount(_ context.Context, id uuid.UUID) error {
	if _, ok := w.accounts.get(id); !ok {
		return model.NotFound("account", id)
	}
	w.accounts.del(id)
	// import candidates live and die with their account
	for _, p := range w.pending.all() {
		if p.AccountID == id {
			w.pending.del(p.ID)
		}
	}
	return nil
}

func (w *writer) InsertCategory(_ context.Context, category *model.Category) error {
	if _, ok := w.categories.get(category.ID); ok {
		return model.NewConflictError("id", "category "+category.ID.String()+" already exists")
	}
	if err := w.checkCategoryName(category); err != nil {
		return err
	}
	w.categories.put(category.ID, category)
	return nil
}

func (w *writer) UpdateCategory(_ context.Context, category *model.Category) error {
	if _, ok := w.categories.get(category.ID); !ok {
		return model.NotFound("category", category.ID)
	}
	if err := w.checkCategoryName(category); err != nil {
		return err
	}
	w.categories.put(category.ID, category)
	return nil
}

func (w *writer) checkCategoryName(category *model.Category) error {
	for _, other := range w.categories.all() {
		if other.ID != category.ID && other.Name == category.Name {
			return model.NewConflictError("name", "category "+category.Name+" already exists")
		}
	}
	return nil
}

func (w *writer) DeleteCategory(_ context.Context, id uuid.UUID) error {
	if _, ok := w.categories.get(id); !ok {
		return model.NotFound("category", id)
	}
	w.categories.del(id)
	return nil
}

func (w *writer) CategoryInUse(_ context.Context, id uuid.UUID) (bool, error) {
	for _, tx := range w.transactions.all() {
		if tx.CategoryID != nil && *tx.CategoryID == id {
			return true, nil
		}
	}
	for _, p := range w.pending.all() {
		if p.SuggestedCategoryID != nil && *p.SuggestedCategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

func (w *writer) InsertTransaction(_ context.Context, tx *model.Transaction) error {
	if _, ok := w.transactions.get(tx.ID); ok {
		return model.NewConflictError("id", "transaction "+tx.ID.String()+" already exists")
	}
	if tx.ParentTransactionID != nil {
		if _, ok := w.transactions.get(*tx.ParentTransactionID); !ok {
			return model.NotFound("transaction", *tx.ParentTransactionID)
		}
	}
	w.transactions.put(tx.ID, tx)
	return nil
}

func (w *writer) UpdateTransaction(_ context.Context, tx *model.Transaction) error {
	if _, ok := w.transactions.get(tx.ID); !ok {
		return model.NotFound("transaction", tx.ID)
	}
	w.transactions.put(tx.ID, tx)
	return nil
}

func (w *writer) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	if _, ok := w.transactions.get(id); !ok {
		return model.NotFound("transaction", id)
	}
	w.transactions.del(id)
	return nil
}

func (w *writer) InsertPending(_ context.Context, p *model.PendingTransaction) error {
	if _, ok := w.pending.get(p.ID); ok {
		return model.NewConflictError("id", "pending transaction "+p.ID.String()+" already exists")
	}
	if err := w.checkBankID(p); err != nil {
		return err
	}
	w.pending.put(p.ID, p)
	return nil
}

func (w *writer) UpdatePending(_ context.Context, p *model.PendingTransaction) error {
	if _, ok := w.pending.get(p.ID); !ok {
		return model.NotFound("pending transaction", p.ID)
	}
	if err := w.checkBankID(p); err != nil {
		return err
	}
	w.pending.put(p.ID, p)
	return nil
}

func (w *writer) checkBankID(p *model.PendingTransaction) error {
	if p.BankTransactionID == nil {
		return nil
	}
	for _, other := range w.pending.all() {
		if other.ID != p.ID && other.BankTransactionID != nil && *other.BankTransactionID == *p.BankTransactionID {
			return model.NewConflictError("bankTransactionId", "bank transaction "+*p.BankTransactionID+" was already imported")
		}
	}
	return nil
}
