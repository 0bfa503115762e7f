package model

import (
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// AccountType represents an account type.
type AccountType int8

const (
	AccountTypeCash AccountType = iota
	AccountTypeCreditCards
	AccountTypeInvestments
	AccountTypeLoans
	AccountTypeAssets
)

// Valid reports whether the type is one of the known account types.
func (t AccountType) Valid() bool {
	return t >= AccountTypeCash && t <= AccountTypeAssets
}

// Account is a ledger account. Balance is only ever written by the ledger
// engine as a side effect of posting transactions.
type Account struct {
	ID                  uuid.UUID
	Name                string
	Tag                 string
	Type                AccountType
	Currency            string
	Balance             decimal.Decimal
	OpeningBalance      decimal.Decimal
	IsDefault           bool
	LastTransactionDate *time.Time
	CreatedAt           time.Time
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.LastTransactionDate != nil {
		d := *a.LastTransactionDate
		c.LastTransactionDate = &d
	}
	return &c
}

// Touch moves LastTransactionDate forward to date, never backwards.
func (a *Account) Touch(date time.Time) {
	if date.IsZero() {
		return
	}
	if a.LastTransactionDate == nil || date.After(*a.LastTransactionDate) {
		d := date
		a.LastTransactionDate = &d
	}
}

// ValidateAccount checks the fields the account-management boundary owns.
// Tag uniqueness needs the full account set and is checked by the caller.
func ValidateAccount(a *Account) error {
	if strings.TrimSpace(a.Name) == "" {
		return NewValidationError("name", "account name is required")
	}
	if !strings.HasPrefix(a.Tag, "#") || len(a.Tag) < 2 {
		return NewValidationError("tag", "account tag must start with '#'")
	}
	if !a.Type.Valid() {
		return NewValidationError("type", "unknown account type")
	}
	if money.GetCurrency(a.Currency) == nil {
		return NewValidationError("currency", "unknown currency code "+a.Currency)
	}
	return nil
}
