// Package balance computes the signed balance effects a transaction implies
// and posts them against account balances.
package balance

import (
	"bytes"
	"sort"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/budget-ledger/internal/model"
)

// Effect is a signed change to one account's balance.
type Effect struct {
	AccountID uuid.UUID
	Delta     decimal.Decimal
}

// Apply returns the effects posting tx has on account balances.
//
// A split parent posts its effective amount once against its own account
// reference. Split children never post: they only carry the categorized
// breakdown, so counting them would double the parent's effect.
func Apply(tx *model.Transaction) ([]Effect, error) {
	if tx.IsSplitChild() {
		return nil, nil
	}

	amount := tx.EffectiveAmount()
	if !amount.IsPositive() {
		return nil, model.NewValidationError("amount", "amount must be greater than zero")
	}

	switch tx.Type {
	case model.TransactionTypeExpense, model.TransactionTypeTransferOut:
		if tx.FromAccountID == nil {
			return nil, model.NewValidationError("fromAccount", string(tx.Type)+" requires a source account")
		}
		return []Effect{{AccountID: *tx.FromAccountID, Delta: amount.Neg()}}, nil
	case model.TransactionTypeIncome, model.TransactionTypeTransferIn:
		if tx.ToAccountID == nil {
			return nil, model.NewValidationError("toAccount", string(tx.Type)+" requires a destination account")
		}
		return []Effect{{AccountID: *tx.ToAccountID, Delta: amount}}, nil
	}
	return nil, model.NewValidationError("type", "unsupported transaction type "+string(tx.Type))
}

// Reverse returns the exact additive inverse of Apply.
func Reverse(tx *model.Transaction) ([]Effect, error) {
	effects, err := Apply(tx)
	if err != nil {
		return nil, err
	}
	for i := range effects {
		effects[i].Delta = effects[i].Delta.Neg()
	}
	return effects, nil
}

// Net folds effects into one entry per account, ordered by account id so
// callers lock rows in a stable order. Accounts whose deltas cancel out are
// kept with a zero delta: they were still touched.
func Net(effects ...[]Effect) []Effect {
	totals := make(map[uuid.UUID]decimal.Decimal)
	for _, group := range effects {
		for _, e := range group {
			totals[e.AccountID] = totals[e.AccountID].Add(e.Delta)
		}
	}

	out := make([]Effect, 0, len(totals))
	for id, delta := range totals {
		out = append(out, Effect{AccountID: id, Delta: delta})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].AccountID.Bytes(), out[j].AccountID.Bytes()) < 0
	})
	return out
}

// AccountIDs returns the accounts touched by effects, in Net order.
func AccountIDs(effects []Effect) []uuid.UUID {
	ids := make([]uuid.UUID, len(effects))
	for i, e := range effects {
		ids[i] = e.AccountID
	}
	return ids
}

// Post computes the resulting balance of every account named in effects
// without modifying accounts. Any missing account fails the whole posting
// with AccountNotFound before a single balance is produced.
func Post(accounts map[uuid.UUID]*model.Account, effects []Effect) (map[uuid.UUID]decimal.Decimal, error) {
	for _, e := range effects {
		if _, ok := accounts[e.AccountID]; !ok {
			return nil, model.NotFound("account", e.AccountID)
		}
	}

	balances := make(map[uuid.UUID]decimal.Decimal, len(effects))
	for _, e := range effects {
		current, ok := balances[e.AccountID]
		if !ok {
			current = accounts[e.AccountID].Balance
		}
		balances[e.AccountID] = current.Add(e.Delta)
	}
	return balances, nil
}
