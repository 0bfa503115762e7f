package account

import (
	"time"

	"github.com/carson-networks/budget-ledger/internal/model"
)

// Account is the API response model for an account.
type Account struct {
	ID                  string `json:"id" doc:"Account UUID"`
	Name                string `json:"name" doc:"Account name"`
	Tag                 string `json:"tag" doc:"Unique tag starting with '#'"`
	Type                int    `json:"type" doc:"Account type: 0=Cash, 1=Credit Cards, 2=Investments, 3=Loans, 4=Assets"`
	Currency            string `json:"currency" doc:"ISO 4217 currency code"`
	Balance             string `json:"balance" doc:"Decimal balance"`
	OpeningBalance      string `json:"openingBalance" doc:"Decimal balance the account was opened with"`
	IsDefault           bool   `json:"isDefault" doc:"Whether this is the default account"`
	LastTransactionDate string `json:"lastTransactionDate,omitempty" doc:"RFC3339 date of the latest transaction"`
	CreatedAt           string `json:"createdAt" doc:"RFC3339 creation time"`
}

func toAccount(a *model.Account) Account {
	out := Account{
		ID:             a.ID.String(),
		Name:           a.Name,
		Tag:            a.Tag,
		Type:           int(a.Type),
		Currency:       a.Currency,
		Balance:        a.Balance.String(),
		OpeningBalance: a.OpeningBalance.String(),
		IsDefault:      a.IsDefault,
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
	}
	if a.LastTransactionDate != nil {
		out.LastTransactionDate = a.LastTransactionDate.Format(time.RFC3339)
	}
	return out
}
