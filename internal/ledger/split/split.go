// Package split expands and collapses split parent/child transaction trees.
package split

import (
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/budget-ledger/internal/model"
)

// ChildID is the id derived for the index-th new child added when parentID
// is saved at version.
func ChildID(parentID uuid.UUID, version int64, index int) uuid.UUID {
	return uuid.NewV5(parentID, fmt.Sprintf("split/%d/%d", version, index))
}

// Expand validates children for parent and returns normalized copies with
// ids and parent references assigned. Children inherit the parent's type,
// account legs and date when they do not set their own date.
//
// existing holds the children parent already has. A child whose ID is one of
// them keeps it; every other child gets ChildID for parent's version at the
// lowest index no existing child carries.
func Expand(parent *model.Transaction, children, existing []model.Transaction) ([]model.Transaction, error) {
	if len(children) == 0 {
		return nil, model.NewValidationError("splitTransactions", "a split needs at least one child")
	}
	if parent.Type.IsTransfer() {
		return nil, model.NewValidationError("splitTransactions", "transfers cannot be split")
	}
	if parent.ParentTransactionID != nil {
		return nil, model.NewValidationError("parentTransactionId", "a split child cannot be split again")
	}

	owned := make(map[uuid.UUID]struct{}, len(existing))
	for i := range existing {
		owned[existing[i].ID] = struct{}{}
	}
	kept := make(map[uuid.UUID]struct{}, len(children))
	for i := range children {
		id := children[i].ID
		if id == uuid.Nil {
			continue
		}
		if _, ok := owned[id]; !ok {
			return nil, model.NewValidationError(fmt.Sprintf("splitTransactions[%d].id", i), "not a child of this transaction")
		}
		if _, dup := kept[id]; dup {
			return nil, model.NewValidationError(fmt.Sprintf("splitTransactions[%d].id", i), "child listed twice")
		}
		kept[id] = struct{}{}
	}

	next := 0
	fresh := func() uuid.UUID {
		for {
			id := ChildID(parent.ID, parent.Version, next)
			next++
			if _, taken := owned[id]; !taken {
				return id
			}
		}
	}

	out := make([]model.Transaction, len(children))
	for i := range children {
		child := children[i].Clone()
		field := fmt.Sprintf("splitTransactions[%d]", i)

		if child.ParentTransactionID != nil && *child.ParentTransactionID != parent.ID {
			return nil, model.NewValidationError(field+".parentTransactionId", "child belongs to another parent")
		}
		if len(child.SplitTransactions) > 0 {
			return nil, model.NewValidationError(field, "split children cannot have children")
		}
		if !child.Amount.IsPositive() {
			return nil, model.NewValidationError(field+".amount", "amount must be greater than zero")
		}

		if child.ID == uuid.Nil {
			child.ID = fresh()
		}
		child.Position = i
		child.ParentTransactionID = model.IDPtr(parent.ID)
		child.Type = parent.Type
		child.FromAccountID = cloneID(parent.FromAccountID)
		child.ToAccountID = cloneID(parent.ToAccountID)
		child.TransferID = nil
		child.Timestamp = parent.Timestamp
		if child.TransactionDate.IsZero() {
			child.TransactionDate = parent.TransactionDate
		}
		out[i] = *child
	}
	return out, nil
}

// Collapse turns a split parent back into a leaf. The children are dropped
// and the caller supplies the amount and category the leaf now carries.
func Collapse(parent *model.Transaction, amount decimal.Decimal, categoryID *uuid.UUID) (*model.Transaction, error) {
	if !parent.IsSplitParent() {
		return nil, model.NewValidationError("splitTransactions", "transaction is not a split parent")
	}
	if !amount.IsPositive() {
		return nil, model.NewValidationError("amount", "amount must be greater than zero")
	}

	leaf := parent.Row()
	leaf.Amount = amount
	leaf.CategoryID = cloneID(categoryID)
	return leaf, nil
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
