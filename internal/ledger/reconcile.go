package ledger

import (
	"context"
	"sort"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-ledger/internal/ledger/balance"
	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/operator/actions"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

// AccountDrift is one account's stored balance against the balance its
// transactions imply.
type AccountDrift struct {
	AccountID uuid.UUID
	Name      string
	Stored    decimal.Decimal
	Expected  decimal.Decimal
}

func (d AccountDrift) Difference() decimal.Decimal {
	return d.Stored.Sub(d.Expected)
}

// OrphanEffect is an effect that names an account which no longer exists.
type OrphanEffect struct {
	TransactionID uuid.UUID
	AccountID     uuid.UUID
	Delta         decimal.Decimal
}

type ReconcileReport struct {
	Accounts     int
	Transactions int
	Drift        []AccountDrift
	Orphans      []OrphanEffect
}

// Balanced reports whether every stored balance matches its transactions.
func (r *ReconcileReport) Balanced() bool {
	return len(r.Drift) == 0
}

// Reconcile recomputes every account balance as opening balance plus the
// effects of all stored transactions and reports where it differs. The
// accounts are locked while the check runs so no mutation lands halfway.
func (e *Engine) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	report := &ReconcileReport{}
	err := e.exec.Process(ctx, actions.ActionFunc(func(ctx context.Context, w storage.Writer) error {
		*report = ReconcileReport{}

		all, err := w.ListAccounts(ctx)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(all))
		for i, a := range all {
			ids[i] = a.ID
		}
		accounts, err := w.LockAccounts(ctx, ids...)
		if err != nil {
			return err
		}

		txs, err := w.ListTransactions(ctx, &storage.TransactionFilter{})
		if err != nil {
			return err
		}

		expected := make(map[uuid.UUID]decimal.Decimal, len(accounts))
		for id, a := range accounts {
			expected[id] = a.OpeningBalance
		}
		for _, tx := range txs {
			effects, err := balance.Apply(tx)
			if err != nil {
				return err
			}
			for _, eff := range effects {
				current, ok := expected[eff.AccountID]
				if !ok {
					report.Orphans = append(report.Orphans, OrphanEffect{
						TransactionID: tx.ID,
						AccountID:     eff.AccountID,
						Delta:         eff.Delta,
					})
					continue
				}
				expected[eff.AccountID] = current.Add(eff.Delta)
			}
		}

		report.Accounts = len(accounts)
		report.Transactions = len(txs)
		for id, a := range accounts {
			if a.Balance.Equal(expected[id]) {
				continue
			}
			report.Drift = append(report.Drift, driftOf(a, expected[id]))
		}
		sort.Slice(report.Drift, func(i, j int) bool {
			return report.Drift[i].Name < report.Drift[j].Name
		})
		return nil
	}))
	if err != nil {
		return nil, err
	}

	for _, d := range report.Drift {
		e.logger.WithFields(logrus.Fields{
			"accountID": d.AccountID,
			"stored":    d.Stored.String(),
			"expected":  d.Expected.String(),
		}).Warn("Ledger.Reconcile.drift")
	}
	return report, nil
}

func driftOf(a *model.Account, expected decimal.Decimal) AccountDrift {
	return AccountDrift{
		AccountID: a.ID,
		Name:      a.Name,
		Stored:    a.Balance,
		Expected:  expected,
	}
}
