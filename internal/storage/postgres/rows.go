package postgres

import (
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/um"

	"github.com/carson-networks/budget-ledger/internal/model"
)

const (
	accountsTable     = "accounts"
	categoriesTable   = "categories"
	transactionsTable = "transactions"
	pendingTable      = "pending_transactions"
)

var (
	accountColumns = []any{
		"id", "name", "tag", "type", "currency", "balance", "opening_balance",
		"is_default", "last_transaction_date", "created_at",
	}
	categoryColumns    = []any{"id", "name", "icon", "color_hex"}
	transactionColumns = []any{
		"id", "created_at", "transaction_date", "type", "amount", "category_id", "description",
		"from_account_id", "to_account_id", "ledger_account_id", "parent_transaction_id",
		"transfer_id", "position", "version",
	}
	pendingColumns = []any{
		"id", "bank_transaction_id", "amount", "description_text", "merchant_name",
		"transaction_date", "type", "account_id", "suggested_category_id", "confidence",
		"imported_at", "status", "processing_started_at", "transaction_id", "last_error",
	}
)

type accountRow struct {
	ID                  uuid.UUID       `db:"id"`
	Name                string          `db:"name"`
	Tag                 string          `db:"tag"`
	Type                int16           `db:"type"`
	Currency            string          `db:"currency"`
	Balance             decimal.Decimal `db:"balance"`
	OpeningBalance      decimal.Decimal `db:"opening_balance"`
	IsDefault           bool            `db:"is_default"`
	LastTransactionDate *time.Time      `db:"last_transaction_date"`
	CreatedAt           time.Time       `db:"created_at"`
}

func (r *accountRow) toModel() *model.Account {
	return &model.Account{
		ID:                  r.ID,
		Name:                r.Name,
		Tag:                 r.Tag,
		Type:                model.AccountType(r.Type),
		Currency:            r.Currency,
		Balance:             r.Balance,
		OpeningBalance:      r.OpeningBalance,
		IsDefault:           r.IsDefault,
		LastTransactionDate: r.LastTransactionDate,
		CreatedAt:           r.CreatedAt,
	}
}

// accountSetter lists the columns a write sets. Unset fields are left alone.
type accountSetter struct {
	ID                  omit.Val[uuid.UUID]
	Name                omit.Val[string]
	Tag                 omit.Val[string]
	Type                omit.Val[int16]
	Currency            omit.Val[string]
	Balance             omit.Val[decimal.Decimal]
	OpeningBalance      omit.Val[decimal.Decimal]
	IsDefault           omit.Val[bool]
	LastTransactionDate omitnull.Val[time.Time]
	CreatedAt           omit.Val[time.Time]
}

func newAccountSetter(a *model.Account) accountSetter {
	s := accountSetter{
		ID:                  omit.From(a.ID),
		Name:                omit.From(a.Name),
		Tag:                 omit.From(a.Tag),
		Type:                omit.From(int16(a.Type)),
		Currency:            omit.From(a.Currency),
		Balance:             omit.From(a.Balance),
		OpeningBalance:      omit.From(a.OpeningBalance),
		IsDefault:           omit.From(a.IsDefault),
		LastTransactionDate: omitnull.FromPtr(a.LastTransactionDate),
	}
	if !a.CreatedAt.IsZero() {
		s.CreatedAt = omit.From(a.CreatedAt)
	}
	return s
}

func (s accountSetter) columns() *columnSet {
	c := &columnSet{}
	setOmit(c, "id", s.ID)
	setOmit(c, "name", s.Name)
	setOmit(c, "tag", s.Tag)
	setOmit(c, "type", s.Type)
	setOmit(c, "currency", s.Currency)
	setOmit(c, "balance", s.Balance)
	setOmit(c, "opening_balance", s.OpeningBalance)
	setOmit(c, "is_default", s.IsDefault)
	setOmitNull(c, "last_transaction_date", s.LastTransactionDate)
	setOmit(c, "created_at", s.CreatedAt)
	return c
}

type categoryRow struct {
	ID       uuid.UUID `db:"id"`
	Name     string    `db:"name"`
	Icon     string    `db:"icon"`
	ColorHex string    `db:"color_hex"`
}

func (r *categoryRow) toModel() *model.Category {
	return &model.Category{ID: r.ID, Name: r.Name, Icon: r.Icon, ColorHex: r.ColorHex}
}

func categoryValues(c *model.Category) *columnSet {
	set := &columnSet{}
	set.add("id", c.ID)
	set.add("name", c.Name)
	set.add("icon", c.Icon)
	set.add("color_hex", c.ColorHex)
	return set
}

type transactionRow struct {
	ID                  uuid.UUID       `db:"id"`
	CreatedAt           time.Time       `db:"created_at"`
	TransactionDate     time.Time       `db:"transaction_date"`
	Type                string          `db:"type"`
	Amount              decimal.Decimal `db:"amount"`
	CategoryID          *uuid.UUID      `db:"category_id"`
	Description         string          `db:"description"`
	FromAccountID       *uuid.UUID      `db:"from_account_id"`
	ToAccountID         *uuid.UUID      `db:"to_account_id"`
	LedgerAccountID     *uuid.UUID      `db:"ledger_account_id"`
	ParentTransactionID *uuid.UUID      `db:"parent_transaction_id"`
	TransferID          *uuid.UUID      `db:"transfer_id"`
	Position            int             `db:"position"`
	Version             int64           `db:"version"`
}

func (r *transactionRow) toModel() *model.Transaction {
	return &model.Transaction{
		ID:                  r.ID,
		Timestamp:           r.CreatedAt,
		TransactionDate:     r.TransactionDate,
		Type:                model.TransactionType(r.Type),
		Amount:              r.Amount,
		CategoryID:          r.CategoryID,
		Description:         r.Description,
		FromAccountID:       r.FromAccountID,
		ToAccountID:         r.ToAccountID,
		ParentTransactionID: r.ParentTransactionID,
		TransferID:          r.TransferID,
		Position:            r.Position,
		Version:             r.Version,
	}
}

func transactionValues(tx *model.Transaction) *columnSet {
	set := &columnSet{}
	set.add("id", tx.ID)
	set.add("created_at", tx.Timestamp)
	set.add("transaction_date", tx.TransactionDate)
	set.add("type", string(tx.Type))
	set.add("amount", tx.Amount)
	set.add("category_id", tx.CategoryID)
	set.add("description", tx.Description)
	set.add("from_account_id", tx.FromAccountID)
	set.add("to_account_id", tx.ToAccountID)
	set.add("ledger_account_id", tx.LedgerAccountID())
	set.add("parent_transaction_id", tx.ParentTransactionID)
	set.add("transfer_id", tx.TransferID)
	set.add("position", tx.Position)
	set.add("version", tx.Version)
	return set
}

type pendingRow struct {
	ID                  uuid.UUID       `db:"id"`
	BankTransactionID   *string         `db:"bank_transaction_id"`
	Amount              decimal.Decimal `db:"amount"`
	DescriptionText     string          `db:"description_text"`
	MerchantName        *string         `db:"merchant_name"`
	TransactionDate     time.Time       `db:"transaction_date"`
	Type                string          `db:"type"`
	AccountID           uuid.UUID       `db:"account_id"`
	SuggestedCategoryID *uuid.UUID      `db:"suggested_category_id"`
	Confidence          float64         `db:"confidence"`
	ImportedAt          time.Time       `db:"imported_at"`
	Status              string          `db:"status"`
	ProcessingStartedAt *time.Time      `db:"processing_started_at"`
	TransactionID       *uuid.UUID      `db:"transaction_id"`
	LastError           string          `db:"last_error"`
}

func (r *pendingRow) toModel() *model.PendingTransaction {
	return &model.PendingTransaction{
		ID:                  r.ID,
		BankTransactionID:   r.BankTransactionID,
		Amount:              r.Amount,
		DescriptionText:     r.DescriptionText,
		MerchantName:        r.MerchantName,
		TransactionDate:     r.TransactionDate,
		Type:                model.TransactionType(r.Type),
		AccountID:           r.AccountID,
		SuggestedCategoryID: r.SuggestedCategoryID,
		Confidence:          r.Confidence,
		ImportedAt:          r.ImportedAt,
		Status:              model.PendingStatus(r.Status),
		ProcessingStartedAt: r.ProcessingStartedAt,
		TransactionID:       r.TransactionID,
		LastError:           r.LastError,
	}
}

func pendingValues(p *model.PendingTransaction) *columnSet {
	set := &columnSet{}
	set.add("id", p.ID)
	set.add("bank_transaction_id", p.BankTransactionID)
	set.add("amount", p.Amount)
	set.add("description_text", p.DescriptionText)
	set.add("merchant_name", p.MerchantName)
	set.add("transaction_date", p.TransactionDate)
	set.add("type", string(p.Type))
	set.add("account_id", p.AccountID)
	set.add("suggested_category_id", p.SuggestedCategoryID)
	set.add("confidence", p.Confidence)
	set.add("imported_at", p.ImportedAt)
	set.add("status", string(p.Status))
	set.add("processing_started_at", p.ProcessingStartedAt)
	set.add("transaction_id", p.TransactionID)
	set.add("last_error", p.LastError)
	return set
}

// columnSet pairs column names with the values written to them.
type columnSet struct {
	names  []string
	values []any
}

func (c *columnSet) add(name string, value any) {
	c.names = append(c.names, name)
	c.values = append(c.values, value)
}

func (c *columnSet) updateMods() []bob.Mod[*dialect.UpdateQuery] {
	mods := make([]bob.Mod[*dialect.UpdateQuery], 0, len(c.names))
	for i, name := range c.names {
		if name == "id" {
			continue
		}
		mods = append(mods, um.SetCol(name).ToArg(c.values[i]))
	}
	return mods
}

func (c *columnSet) args() bob.Expression {
	return psql.Arg(c.values...)
}

func setOmit[T any](c *columnSet, name string, v omit.Val[T]) {
	if val, ok := v.Get(); ok {
		c.add(name, val)
	}
}

func setOmitNull[T any](c *columnSet, name string, v omitnull.Val[T]) {
	if v.IsUnset() {
		return
	}
	c.add(name, v.Ptr())
}
