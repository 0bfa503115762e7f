package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction. Amounts are always
// non-negative; the type decides the sign of the balance effect.
type TransactionType string

const (
	TransactionTypeExpense     TransactionType = "expense"
	TransactionTypeIncome      TransactionType = "income"
	TransactionTypeTransferOut TransactionType = "transferOut"
	TransactionTypeTransferIn  TransactionType = "transferIn"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeExpense, TransactionTypeIncome, TransactionTypeTransferOut, TransactionTypeTransferIn:
		return true
	}
	return false
}

// IsTransfer reports whether t is one leg of a transfer.
func (t TransactionType) IsTransfer() bool {
	return t == TransactionTypeTransferOut || t == TransactionTypeTransferIn
}

// Transaction is a ledger entry. A transaction is either a leaf (no
// children) or a split parent whose own Amount and CategoryID are ignored in
// favour of values derived from SplitTransactions.
type Transaction struct {
	ID                  uuid.UUID
	Timestamp           time.Time
	TransactionDate     time.Time
	Type                TransactionType
	Amount              decimal.Decimal
	CategoryID          *uuid.UUID
	Description         string
	FromAccountID       *uuid.UUID
	ToAccountID         *uuid.UUID
	ParentTransactionID *uuid.UUID
	TransferID          *uuid.UUID
	// Position orders split children within their parent.
	Position            int
	SplitTransactions   []Transaction
	Version             int64
}

// IsSplitParent reports whether the transaction carries split children.
func (t *Transaction) IsSplitParent() bool {
	return len(t.SplitTransactions) > 0
}

// IsSplitChild reports whether the transaction belongs to a split parent.
func (t *Transaction) IsSplitChild() bool {
	return t.ParentTransactionID != nil
}

// EffectiveAmount is the sum of the children for a split parent, otherwise
// the transaction's own amount.
func (t *Transaction) EffectiveAmount() decimal.Decimal {
	if !t.IsSplitParent() {
		return t.Amount
	}
	total := decimal.Zero
	for i := range t.SplitTransactions {
		total = total.Add(t.SplitTransactions[i].Amount)
	}
	return total
}

// PrimaryCategory is the category of the largest child for a split parent,
// otherwise the transaction's own category. Ties go to the earliest child.
func (t *Transaction) PrimaryCategory() *uuid.UUID {
	if !t.IsSplitParent() {
		return t.CategoryID
	}
	largest := 0
	for i := 1; i < len(t.SplitTransactions); i++ {
		if t.SplitTransactions[i].Amount.GreaterThan(t.SplitTransactions[largest].Amount) {
			largest = i
		}
	}
	return t.SplitTransactions[largest].CategoryID
}

// LedgerAccountID is the account whose balance this transaction moves:
// the source for expense and transferOut, the destination otherwise.
func (t *Transaction) LedgerAccountID() *uuid.UUID {
	switch t.Type {
	case TransactionTypeExpense, TransactionTypeTransferOut:
		return t.FromAccountID
	case TransactionTypeIncome, TransactionTypeTransferIn:
		return t.ToAccountID
	}
	return nil
}

// References reports whether the transaction names accountID on either leg.
func (t *Transaction) References(accountID uuid.UUID) bool {
	return (t.FromAccountID != nil && *t.FromAccountID == accountID) ||
		(t.ToAccountID != nil && *t.ToAccountID == accountID)
}

// Clone returns a deep copy including children.
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	c := *t
	c.CategoryID = cloneID(t.CategoryID)
	c.FromAccountID = cloneID(t.FromAccountID)
	c.ToAccountID = cloneID(t.ToAccountID)
	c.ParentTransactionID = cloneID(t.ParentTransactionID)
	c.TransferID = cloneID(t.TransferID)
	if t.SplitTransactions != nil {
		c.SplitTransactions = make([]Transaction, len(t.SplitTransactions))
		for i := range t.SplitTransactions {
			c.SplitTransactions[i] = *t.SplitTransactions[i].Clone()
		}
	}
	return &c
}

// Row returns a copy without children, the shape a single stored row has.
func (t *Transaction) Row() *Transaction {
	c := t.Clone()
	c.SplitTransactions = nil
	return c
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// IDPtr returns a pointer to a copy of id.
func IDPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
