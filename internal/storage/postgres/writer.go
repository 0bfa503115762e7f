package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

// writer runs every statement on the batch's transaction and remembers the
// ids it touched.
type writer struct {
	reader
	tx bob.Tx

	changes storage.ChangeLog
	seen    map[uuid.UUID]struct{}
}

var _ storage.Writer = (*writer)(nil)

func newWriter(tx bob.Tx) *writer {
	return &writer{
		reader: reader{exec: tx},
		tx:     tx,
		seen:   make(map[uuid.UUID]struct{}),
	}
}

func (w *writer) touch(list *[]uuid.UUID, id uuid.UUID) {
	if _, ok := w.seen[id]; ok {
		return
	}
	w.seen[id] = struct{}{}
	*list = append(*list, id)
}

// LockAccounts takes row locks one id at a time in byte order, so two
// batches touching the same accounts always queue instead of deadlocking.
func (w *writer) LockAccounts(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*model.Account, error) {
	sorted := append([]uuid.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Bytes(), sorted[j].Bytes()) < 0
	})

	out := make(map[uuid.UUID]*model.Account, len(sorted))
	for _, id := range sorted {
		if _, done := out[id]; done {
			continue
		}
		q := psql.Select(
			sm.Columns(accountColumns...),
			sm.From(accountsTable),
			byID(id),
			sm.ForUpdate(),
		)
		row, err := bob.One(ctx, w.tx, q, scan.StructMapper[accountRow]())
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, classify("lock account", err)
		}
		out[id] = row.toModel()
	}
	return out, nil
}

func (w *writer) insert(ctx context.Context, op, table string, set *columnSet) error {
	q := psql.Insert(im.Into(table, set.names...), im.Values(set.args()))
	if _, err := bob.Exec(ctx, w.tx, q); err != nil {
		return classify(op, err)
	}
	return nil
}

// update writes set to the row with id and reports whether it existed.
func (w *writer) update(ctx context.Context, op, table string, id uuid.UUID, set *columnSet) (bool, error) {
	mods := []bob.Mod[*dialect.UpdateQuery]{um.Table(table)}
	mods = append(mods, set.updateMods()...)
	mods = append(mods, um.Where(psql.Quote("id").EQ(psql.Arg(id))))

	res, err := bob.Exec(ctx, w.tx, psql.Update(mods...))
	if err != nil {
		return false, classify(op, err)
	}
	return affected(op, res)
}

func (w *writer) delete(ctx context.Context, op, table string, id uuid.UUID) (bool, error) {
	q := psql.Delete(dm.From(table), dm.Where(psql.Quote("id").EQ(psql.Arg(id))))
	res, err := bob.Exec(ctx, w.tx, q)
	if err != nil {
		return false, classify(op, err)
	}
	return affected(op, res)
}

func affected(op string, res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify(op, err)
	}
	return n > 0, nil
}

func (w *writer) InsertAccount(ctx context.Context, account *model.Account) error {
	if err := w.insert(ctx, "insert account", accountsTable, newAccountSetter(account).columns()); err != nil {
		return err
	}
	w.touch(&w.changes.Accounts, account.ID)
	return nil
}

func (w *writer) UpdateAccount(ctx context.Context, account *model.Account) error {
	ok, err := w.update(ctx, "update account", accountsTable, account.ID, newAccountSetter(account).columns())
	if err != nil {
		return err
	}
	if !ok {
		return model.NotFound("account", account.ID)
	}
	w.touch(&w.changes.Accounts, account.ID)
	return nil
}

func (w *writer) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	// candidates go with the account through the foreign key; record them first
	candidates, err := w.ListPending(ctx, &storage.PendingFilter{AccountID: &id})
	if err != nil {
		return err
	}
	ok, err := w.delete(ctx, "delete account", accountsTable, id)
	if err != nil {
		return err
	}
	if !ok {
		return model.NotFound("account", id)
	}
	w.touch(&w.changes.Accounts, id)
	for _, p := range candidates {
		w.touch(&w.changes.Pending, p.ID)
	}
	return nil
}

func (w *writer) InsertCategory(ctx context.Context, category *model.Category) error {
	if err := w.insert(ctx, "insert category", categoriesTable, categoryValues(category)); err != nil {
		return err
	}
	w.touch(&w.changes.Categories, category.ID)
	return nil
}

func (w *writer) UpdateCategory(ctx context.Context, category *model.Category) error {
	ok, err := w.update(ctx, "update category", categoriesTable, category.ID, categoryValues(category))
	if err != nil {
		return err
	}
	if !ok {
		return model.NotFound("category", category.ID)
	}
	w.touch(&w.changes.Categories, category.ID)
	return nil
}

func (w *writer) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	ok, err := w.delete(ctx, "delete category", categoriesTable, id)
	if err != nil {
		return err
	}
	if !ok {
		return model.NotFound("category", id)
	}
	w.touch(&w.changes.Categories, id)
	return nil
}

func (w *writer) CategoryInUse(ctx context.Context, id uuid.UUID) (bool, error) {
	q := psql.Select(sm.Columns(psql.Raw(
		"EXISTS (SELECT 1 FROM transactions WHERE category_id = ?) OR EXISTS (SELECT 1 FROM pending_transactions WHERE suggested_category_id = ?)",
		id, id,
	)))
	inUse, err := bob.One(ctx, w.tx, q, scan.SingleColumnMapper[bool])
	if err != nil {
		return false, classify("check category usage", err)
	}
	return inUse, nil
}

func (w *writer) InsertTransaction(ctx context.Context, tx *model.Transaction) error {
	if err := w.insert(ctx, "insert transaction", transactionsTable, transactionValues(tx)); err != nil {
		return err
	}
	w.touch(&w.changes.Transactions, tx.ID)
	return nil
}

func (w *writer) UpdateTransaction(ctx context.Context, tx *model.Transaction) error {
	ok, err := w.update(ctx, "update transaction", transactionsTable, tx.ID, transactionValues(tx))
	if err != nil {
		return err
	}
	if !ok {
		return model.NotFound("transaction", tx.ID)
	}
	w.touch(&w.changes.Transactions, tx.ID)
	return nil
}

func (w *writer) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	ok, err := w.delete(ctx, "delete transaction", transactionsTable, id)
	if err != nil {
		return err
	}
	if !ok {
		return model.NotFound("transaction", id)
	}
	w.touch(&w.changes.Transactions, id)
	return nil
}

func (w *writer) InsertPending(ctx context.Context, p *model.PendingTransaction) error {
	if err := w.insert(ctx, "insert pending transaction", pendingTable, pendingValues(p)); err != nil {
		return err
	}
	w.touch(&w.changes.Pending, p.ID)
	return nil
}

func (w *writer) UpdatePending(ctx context.Context, p *model.PendingTransaction) error {
	ok, err := w.update(ctx, "update pending transaction", pendingTable, p.ID, pendingValues(p))
	if err != nil {
		return err
	}
	if !ok {
		return model.NotFound("pending transaction", p.ID)
	}
	w.touch(&w.changes.Pending, p.ID)
	return nil
}
