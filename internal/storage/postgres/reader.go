package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

type reader struct {
	exec bob.Executor
}

func byID(id uuid.UUID) bob.Mod[*dialect.SelectQuery] {
	return sm.Where(psql.Quote("id").EQ(psql.Arg(id)))
}

func (r *reader) GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	q := psql.Select(sm.Columns(accountColumns...), sm.From(accountsTable), byID(id))
	row, err := bob.One(ctx, r.exec, q, scan.StructMapper[accountRow]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFound("account", id)
	}
	if err != nil {
		return nil, classify("get account", err)
	}
	return row.toModel(), nil
}

func (r *reader) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	q := psql.Select(
		sm.Columns(accountColumns...),
		sm.From(accountsTable),
		sm.OrderBy(psql.Quote("name")).Asc(),
		sm.OrderBy(psql.Quote("id")).Asc(),
	)
	rows, err := bob.All(ctx, r.exec, q, scan.StructMapper[accountRow]())
	if err != nil {
		return nil, classify("list accounts", err)
	}
	out := make([]*model.Account, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

func (r *reader) GetDefaultAccount(ctx context.Context) (*model.Account, error) {
	q := psql.Select(
		sm.Columns(accountColumns...),
		sm.From(accountsTable),
		sm.Where(psql.Quote("is_default").EQ(psql.Arg(true))),
		sm.Limit(1),
	)
	row, err := bob.One(ctx, r.exec, q, scan.StructMapper[accountRow]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &model.Error{Kind: model.KindAccountNotFound, Field: "account", Message: "no default account"}
	}
	if err != nil {
		return nil, classify("get default account", err)
	}
	return row.toModel(), nil
}

func (r *reader) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	q := psql.Select(sm.Columns(categoryColumns...), sm.From(categoriesTable), byID(id))
	row, err := bob.One(ctx, r.exec, q, scan.StructMapper[categoryRow]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFound("category", id)
	}
	if err != nil {
		return nil, classify("get category", err)
	}
	return row.toModel(), nil
}

func (r *reader) ListCategories(ctx context.Context) ([]*model.Category, error) {
	q := psql.Select(
		sm.Columns(categoryColumns...),
		sm.From(categoriesTable),
		sm.OrderBy(psql.Quote("name")).Asc(),
	)
	rows, err := bob.All(ctx, r.exec, q, scan.StructMapper[categoryRow]())
	if err != nil {
		return nil, classify("list categories", err)
	}
	out := make([]*model.Category, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

// GetTransaction reads the row and its children in one statement so the
// tree comes from a single snapshot.
func (r *reader) GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	q := psql.Select(
		sm.Columns(transactionColumns...),
		sm.From(transactionsTable),
		sm.Where(psql.Or(
			psql.Quote("id").EQ(psql.Arg(id)),
			psql.Quote("parent_transaction_id").EQ(psql.Arg(id)),
		)),
		sm.OrderBy(psql.Quote("position")).Asc(),
		sm.OrderBy(psql.Quote("id")).Asc(),
	)
	rows, err := bob.All(ctx, r.exec, q, scan.StructMapper[transactionRow]())
	if err != nil {
		return nil, classify("get transaction", err)
	}

	var tx *model.Transaction
	var children []model.Transaction
	for i := range rows {
		if rows[i].ID == id {
			tx = rows[i].toModel()
			continue
		}
		children = append(children, *rows[i].toModel())
	}
	if tx == nil {
		return nil, model.NotFound("transaction", id)
	}
	tx.SplitTransactions = children
	return tx, nil
}

func (r *reader) ListTransactions(ctx context.Context, filter *storage.TransactionFilter) ([]*model.Transaction, error) {
	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(transactionColumns...),
		sm.From(transactionsTable),
		sm.Where(psql.Quote("parent_transaction_id").IsNull()),
	}
	if filter != nil {
		mods = append(mods, transactionFilterMods(filter)...)
	}
	mods = append(mods,
		sm.OrderBy(psql.Quote("transaction_date")).Desc(),
		sm.OrderBy(psql.Quote("created_at")).Desc(),
		sm.OrderBy(psql.Quote("id")).Desc(),
	)
	if filter != nil {
		if filter.Limit > 0 {
			mods = append(mods, sm.Limit(filter.Limit+1))
		}
		if filter.Offset > 0 {
			mods = append(mods, sm.Offset(filter.Offset))
		}
	}

	rows, err := bob.All(ctx, r.exec, psql.Select(mods...), scan.StructMapper[transactionRow]())
	if err != nil {
		return nil, classify("list transactions", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	out := make([]*model.Transaction, len(rows))
	index := make(map[uuid.UUID]*model.Transaction, len(rows))
	ids := make([]string, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
		index[out[i].ID] = out[i]
		ids[i] = out[i].ID.String()
	}

	childQuery := psql.Select(
		sm.Columns(transactionColumns...),
		sm.From(transactionsTable),
		sm.Where(psql.Raw("parent_transaction_id = ANY(?::uuid[])", pq.Array(ids))),
		sm.OrderBy(psql.Quote("position")).Asc(),
		sm.OrderBy(psql.Quote("id")).Asc(),
	)
	children, err := bob.All(ctx, r.exec, childQuery, scan.StructMapper[transactionRow]())
	if err != nil {
		return nil, classify("list split children", err)
	}
	for i := range children {
		parent := index[*children[i].ParentTransactionID]
		parent.SplitTransactions = append(parent.SplitTransactions, *children[i].toModel())
	}
	return out, nil
}

func transactionFilterMods(f *storage.TransactionFilter) []bob.Mod[*dialect.SelectQuery] {
	var mods []bob.Mod[*dialect.SelectQuery]
	if f.AccountID != nil {
		mods = append(mods, sm.Where(psql.Quote("ledger_account_id").EQ(psql.Arg(*f.AccountID))))
	}
	if f.AnyAccountID != nil {
		mods = append(mods, sm.Where(psql.Or(
			psql.Quote("from_account_id").EQ(psql.Arg(*f.AnyAccountID)),
			psql.Quote("to_account_id").EQ(psql.Arg(*f.AnyAccountID)),
		)))
	}
	if f.CategoryID != nil {
		mods = append(mods, sm.Where(psql.Or(
			psql.Quote("category_id").EQ(psql.Arg(*f.CategoryID)),
			psql.Raw("EXISTS (SELECT 1 FROM transactions c WHERE c.parent_transaction_id = transactions.id AND c.category_id = ?)", *f.CategoryID),
		)))
	}
	if f.TransferID != nil {
		mods = append(mods, sm.Where(psql.Quote("transfer_id").EQ(psql.Arg(*f.TransferID))))
	}
	if f.From != nil {
		mods = append(mods, sm.Where(psql.Quote("transaction_date").GTE(psql.Arg(*f.From))))
	}
	if f.To != nil {
		mods = append(mods, sm.Where(psql.Quote("transaction_date").LTE(psql.Arg(*f.To))))
	}
	if f.MaxCreationTime != nil {
		mods = append(mods, sm.Where(psql.Quote("created_at").LTE(psql.Arg(*f.MaxCreationTime))))
	}
	return mods
}

func (r *reader) GetPending(ctx context.Context, id uuid.UUID) (*model.PendingTransaction, error) {
	q := psql.Select(sm.Columns(pendingColumns...), sm.From(pendingTable), byID(id))
	row, err := bob.One(ctx, r.exec, q, scan.StructMapper[pendingRow]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFound("pending transaction", id)
	}
	if err != nil {
		return nil, classify("get pending transaction", err)
	}
	return row.toModel(), nil
}

func (r *reader) ListPending(ctx context.Context, filter *storage.PendingFilter) ([]*model.PendingTransaction, error) {
	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(pendingColumns...),
		sm.From(pendingTable),
	}
	if filter != nil {
		if filter.AccountID != nil {
			mods = append(mods, sm.Where(psql.Quote("account_id").EQ(psql.Arg(*filter.AccountID))))
		}
		if filter.Status != nil {
			mods = append(mods, sm.Where(psql.Quote("status").EQ(psql.Arg(string(*filter.Status)))))
		}
		if filter.ProcessingBefore != nil {
			mods = append(mods, sm.Where(psql.Quote("processing_started_at").LT(psql.Arg(*filter.ProcessingBefore))))
		}
	}
	mods = append(mods,
		sm.OrderBy(psql.Quote("transaction_date")).Desc(),
		sm.OrderBy(psql.Quote("id")).Asc(),
	)

	rows, err := bob.All(ctx, r.exec, psql.Select(mods...), scan.StructMapper[pendingRow]())
	if err != nil {
		return nil, classify("list pending transactions", err)
	}
	out := make([]*model.PendingTransaction, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

func (r *reader) FindPendingByBankID(ctx context.Context, bankID string) (*model.PendingTransaction, error) {
	q := psql.Select(
		sm.Columns(pendingColumns...),
		sm.From(pendingTable),
		sm.Where(psql.Quote("bank_transaction_id").EQ(psql.Arg(bankID))),
	)
	row, err := bob.One(ctx, r.exec, q, scan.StructMapper[pendingRow]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find pending transaction", err)
	}
	return row.toModel(), nil
}

// classify maps driver errors onto ledger error kinds.
func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return &model.Error{Kind: model.KindConflict, Field: pqErr.Constraint, Message: op + ": duplicate value", Err: err}
		case "23503":
			return &model.Error{Kind: model.KindConflict, Field: pqErr.Constraint, Message: op + ": row is still referenced", Err: err}
		case "40001", "40P01":
			return &model.Error{Kind: model.KindConflict, Message: op + ": concurrent update", Err: err}
		}
	}
	return model.Persistence(op, err)
}
