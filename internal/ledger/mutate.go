package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-ledger/internal/ledger/balance"
	"github.com/carson-networks/budget-ledger/internal/ledger/split"
	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

// CreateTransactionTx is CreateTransaction inside an existing batch.
func (e *Engine) CreateTransactionTx(ctx context.Context, w storage.Writer, tx *model.Transaction) (*model.Transaction, error) {
	next := tx.Clone()
	if next.ID == uuid.Nil {
		next.ID = uuid.Must(uuid.NewV4())
	}
	now := e.Now()
	if next.Timestamp.IsZero() {
		next.Timestamp = now
	}
	if next.TransactionDate.IsZero() {
		next.TransactionDate = next.Timestamp
	}
	next.Version = 1

	rows, err := buildGroup(next, nil, nil)
	if err != nil {
		return nil, err
	}
	if err := checkCategories(ctx, w, rows); err != nil {
		return nil, err
	}

	applied, err := groupEffects(rows)
	if err != nil {
		return nil, err
	}
	if err := e.post(ctx, w, next.ID, nil, applied, rows); err != nil {
		return nil, err
	}
	if err := writeRows(ctx, w, nil, rows); err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"transactionID": next.ID,
		"type":          next.Type,
		"amount":        next.EffectiveAmount().String(),
	}).Debug("Ledger.CreateTransaction.posted")
	return next.Clone(), nil
}

// UpdateTransactionTx is UpdateTransaction inside an existing batch.
func (e *Engine) UpdateTransactionTx(ctx context.Context, w storage.Writer, tx *model.Transaction) (*model.Transaction, error) {
	stored, err := w.GetTransaction(ctx, tx.ID)
	if err != nil {
		return nil, err
	}
	if stored.IsSplitChild() {
		return nil, model.NewValidationError("parentTransactionId", "split children are edited through their parent")
	}
	if tx.Version != 0 && tx.Version != stored.Version {
		return nil, model.NewConflictError("version", "transaction was changed by someone else; reload and retry")
	}

	old, err := loadGroup(ctx, w, stored)
	if err != nil {
		return nil, err
	}

	next := tx.Clone()
	next.Timestamp = stored.Timestamp
	if next.TransactionDate.IsZero() {
		next.TransactionDate = stored.TransactionDate
	}
	next.Version = stored.Version + 1

	var partner *model.Transaction
	for _, row := range old {
		if row.ID != stored.ID {
			partner = row
		}
	}
	if partner != nil && next.Type.IsTransfer() {
		next.TransferID = stored.TransferID
	}
	rows, err := buildGroup(next, partner, stored.SplitTransactions)
	if err != nil {
		return nil, err
	}
	if err := checkCategories(ctx, w, rows); err != nil {
		return nil, err
	}

	reversed, err := groupReversal(old)
	if err != nil {
		return nil, err
	}
	applied, err := groupEffects(rows)
	if err != nil {
		return nil, err
	}
	if err := e.post(ctx, w, next.ID, reversed, applied, rows); err != nil {
		return nil, err
	}
	if err := writeRows(ctx, w, old, rows); err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"transactionID": next.ID,
		"version":       next.Version,
	}).Debug("Ledger.UpdateTransaction.posted")
	return next.Clone(), nil
}

// DeleteTransactionTx is DeleteTransaction inside an existing batch.
func (e *Engine) DeleteTransactionTx(ctx context.Context, w storage.Writer, id uuid.UUID) error {
	stored, err := w.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if stored.IsSplitChild() {
		return model.NewValidationError("parentTransactionId", "split children are removed by editing their parent")
	}

	old, err := loadGroup(ctx, w, stored)
	if err != nil {
		return err
	}
	reversed, err := groupReversal(old)
	if err != nil {
		return err
	}
	if err := e.post(ctx, w, id, reversed, nil, nil); err != nil {
		return err
	}
	if err := writeRows(ctx, w, old, nil); err != nil {
		return err
	}

	e.logger.WithField("transactionID", id).Debug("Ledger.DeleteTransaction.reversed")
	return nil
}

// loadGroup returns stored together with its transfer leg, if any.
func loadGroup(ctx context.Context, w storage.Writer, stored *model.Transaction) ([]*model.Transaction, error) {
	if stored.TransferID == nil {
		return []*model.Transaction{stored}, nil
	}
	legs, err := w.ListTransactions(ctx, &storage.TransactionFilter{TransferID: stored.TransferID})
	if err != nil {
		return nil, err
	}
	group := []*model.Transaction{stored}
	for _, leg := range legs {
		if leg.ID != stored.ID {
			group = append(group, leg)
		}
	}
	return group, nil
}

// buildGroup validates tx and returns the top-level rows it stands for: tx
// itself, plus the opposite leg when tx is a transfer. partner is the stored
// opposite leg whose identity an update keeps; children are the split
// children tx already has.
func buildGroup(tx, partner *model.Transaction, children []model.Transaction) ([]*model.Transaction, error) {
	if err := validateShape(tx); err != nil {
		return nil, err
	}
	tx.Description = strings.TrimSpace(tx.Description)

	if !tx.Type.IsTransfer() {
		tx.TransferID = nil
		if len(tx.SplitTransactions) == 0 {
			tx.SplitTransactions = nil
			return []*model.Transaction{tx}, nil
		}
		expanded, err := split.Expand(tx, tx.SplitTransactions, children)
		if err != nil {
			return nil, err
		}
		for i := range expanded {
			expanded[i].Version = tx.Version
		}
		tx.SplitTransactions = expanded
		// the stored parent row carries the derived values
		tx.Amount = tx.EffectiveAmount()
		tx.CategoryID = copyID(tx.PrimaryCategory())
		return []*model.Transaction{tx}, nil
	}

	if len(tx.SplitTransactions) > 0 {
		return nil, model.NewValidationError("splitTransactions", "transfers cannot be split")
	}
	other := tx.Row()
	other.Type = oppositeLeg(tx.Type)
	if partner != nil {
		other.ID = partner.ID
		other.Timestamp = partner.Timestamp
		other.Version = partner.Version + 1
	} else {
		if tx.TransferID == nil {
			tx.TransferID = model.IDPtr(uuid.Must(uuid.NewV4()))
		}
		other.ID = uuid.NewV5(tx.ID, "transfer/"+string(other.Type))
		other.Version = 1
	}
	other.TransferID = copyID(tx.TransferID)
	return []*model.Transaction{tx, other}, nil
}

func validateShape(tx *model.Transaction) error {
	if !tx.Type.Valid() {
		return model.NewValidationError("type", "unknown transaction type "+string(tx.Type))
	}
	if tx.ParentTransactionID != nil {
		return model.NewValidationError("parentTransactionId", "split children are created through their parent")
	}
	if len(tx.SplitTransactions) == 0 && !tx.Amount.IsPositive() {
		return model.NewValidationError("amount", "amount must be greater than zero")
	}

	switch tx.Type {
	case model.TransactionTypeExpense:
		if tx.FromAccountID == nil {
			return model.NewValidationError("fromAccount", "an expense needs a source account")
		}
		if tx.ToAccountID != nil {
			return model.NewValidationError("toAccount", "an expense has no destination account")
		}
	case model.TransactionTypeIncome:
		if tx.ToAccountID == nil {
			return model.NewValidationError("toAccount", "income needs a destination account")
		}
		if tx.FromAccountID != nil {
			return model.NewValidationError("fromAccount", "income has no source account")
		}
	default:
		if tx.FromAccountID == nil || tx.ToAccountID == nil {
			return model.NewValidationError("account", "a transfer needs both a source and a destination account")
		}
		if *tx.FromAccountID == *tx.ToAccountID {
			return model.NewValidationError("toAccount", "a transfer needs two different accounts")
		}
	}
	return nil
}

func oppositeLeg(t model.TransactionType) model.TransactionType {
	if t == model.TransactionTypeTransferOut {
		return model.TransactionTypeTransferIn
	}
	return model.TransactionTypeTransferOut
}

func checkCategories(ctx context.Context, w storage.Writer, rows []*model.Transaction) error {
	seen := make(map[uuid.UUID]struct{})
	check := func(id *uuid.UUID) error {
		if id == nil {
			return nil
		}
		if _, ok := seen[*id]; ok {
			return nil
		}
		seen[*id] = struct{}{}
		_, err := w.GetCategory(ctx, *id)
		return err
	}
	for _, row := range rows {
		if err := check(row.CategoryID); err != nil {
			return err
		}
		for i := range row.SplitTransactions {
			if err := check(row.SplitTransactions[i].CategoryID); err != nil {
				return err
			}
		}
	}
	return nil
}

func groupEffects(rows []*model.Transaction) ([]balance.Effect, error) {
	var effects []balance.Effect
	for _, row := range rows {
		eff, err := balance.Apply(row)
		if err != nil {
			return nil, err
		}
		effects = append(effects, eff...)
	}
	return effects, nil
}

func groupReversal(rows []*model.Transaction) ([]balance.Effect, error) {
	var effects []balance.Effect
	for _, row := range rows {
		eff, err := balance.Reverse(row)
		if err != nil {
			return nil, err
		}
		effects = append(effects, eff...)
	}
	return effects, nil
}

// post locks every account the effects touch, nets them and writes the new
// balances. A reversal against an account that no longer exists is dropped
// with a warning; an application against one fails with AccountNotFound.
// rows are the new version, checked against their accounts' currencies.
func (e *Engine) post(ctx context.Context, w storage.Writer, txID uuid.UUID, reversed, applied []balance.Effect, rows []*model.Transaction) error {
	touched := balance.Net(reversed, applied)
	accounts, err := w.LockAccounts(ctx, balance.AccountIDs(touched)...)
	if err != nil {
		return err
	}

	kept := make([]balance.Effect, 0, len(reversed))
	for _, eff := range reversed {
		if _, ok := accounts[eff.AccountID]; !ok {
			e.logger.WithFields(logrus.Fields{
				"transactionID": txID,
				"accountID":     eff.AccountID,
				"delta":         eff.Delta.String(),
			}).Warn("Ledger.reverse.detachedAccount")
			continue
		}
		kept = append(kept, eff)
	}

	net := balance.Net(kept, applied)
	balances, err := balance.Post(accounts, net)
	if err != nil {
		return err
	}
	if err := checkCurrencies(rows, accounts); err != nil {
		return err
	}

	var date time.Time
	if len(rows) > 0 {
		date = rows[0].TransactionDate
	}
	appliedTo := make(map[uuid.UUID]struct{}, len(applied))
	for _, eff := range applied {
		appliedTo[eff.AccountID] = struct{}{}
	}

	for _, eff := range net {
		account := accounts[eff.AccountID]
		account.Balance = balances[eff.AccountID]
		if _, ok := appliedTo[eff.AccountID]; ok {
			account.Touch(date)
		}
		if err := w.UpdateAccount(ctx, account); err != nil {
			return err
		}
		e.logger.WithFields(logrus.Fields{
			"transactionID": txID,
			"accountID":     eff.AccountID,
			"delta":         eff.Delta.String(),
		}).Debug("Ledger.post.balance")
	}
	return nil
}

// checkCurrencies rejects amounts finer than the account currency allows and
// transfers between accounts of different currencies.
func checkCurrencies(rows []*model.Transaction, accounts map[uuid.UUID]*model.Account) error {
	for _, row := range rows {
		ledgerAccount := row.LedgerAccountID()
		if ledgerAccount == nil {
			continue
		}
		account, ok := accounts[*ledgerAccount]
		if !ok {
			continue
		}
		if err := checkPrecision("amount", row.Amount, account.Currency); err != nil {
			return err
		}
		for i := range row.SplitTransactions {
			if err := checkPrecision("splitTransactions.amount", row.SplitTransactions[i].Amount, account.Currency); err != nil {
				return err
			}
		}

		if row.Type.IsTransfer() {
			from, okFrom := accounts[*row.FromAccountID]
			to, okTo := accounts[*row.ToAccountID]
			if okFrom && okTo && from.Currency != to.Currency {
				return model.NewValidationError("toAccount", "transfers need both accounts in the same currency")
			}
		}
	}
	return nil
}

func checkPrecision(field string, amount decimal.Decimal, code string) error {
	currency := money.GetCurrency(code)
	if currency == nil {
		return nil
	}
	places := int32(currency.Fraction)
	if !amount.Round(places).Equal(amount) {
		return model.NewValidationError(field, "amount has more decimal places than "+code+" allows")
	}
	return nil
}

// writeRows turns the old set of rows into the new one: rows only in old are
// deleted, rows in both are overwritten, rows only in next are inserted.
// Children are deleted before and inserted after their parents.
func writeRows(ctx context.Context, w storage.Writer, old, next []*model.Transaction) error {
	oldParents, oldChildren := flatten(old)
	newParents, newChildren := flatten(next)

	keep := make(map[uuid.UUID]struct{}, len(newParents)+len(newChildren))
	for _, row := range newParents {
		keep[row.ID] = struct{}{}
	}
	for _, row := range newChildren {
		keep[row.ID] = struct{}{}
	}
	existing := make(map[uuid.UUID]struct{}, len(oldParents)+len(oldChildren))

	for _, rows := range [][]*model.Transaction{oldChildren, oldParents} {
		for _, row := range rows {
			existing[row.ID] = struct{}{}
			if _, ok := keep[row.ID]; ok {
				continue
			}
			if err := w.DeleteTransaction(ctx, row.ID); err != nil {
				return err
			}
		}
	}

	for _, rows := range [][]*model.Transaction{newParents, newChildren} {
		for _, row := range rows {
			var err error
			if _, ok := existing[row.ID]; ok {
				err = w.UpdateTransaction(ctx, row)
			} else {
				err = w.InsertTransaction(ctx, row)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func flatten(rows []*model.Transaction) (parents, children []*model.Transaction) {
	for _, row := range rows {
		parents = append(parents, row.Row())
		for i := range row.SplitTransactions {
			children = append(children, row.SplitTransactions[i].Row())
		}
	}
	return parents, children
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	return model.IDPtr(*id)
}
