package pending

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/budget-ledger/internal/model"
)

// PendingTransaction is the API response model for an imported candidate.
type PendingTransaction struct {
	ID                  string  `json:"id" doc:"Pending transaction UUID"`
	BankTransactionID   string  `json:"bankTransactionID,omitempty" doc:"Identifier assigned by the bank"`
	Amount              string  `json:"amount" doc:"Decimal amount"`
	Description         string  `json:"description" doc:"Description as imported"`
	MerchantName        string  `json:"merchantName,omitempty" doc:"Merchant or counterparty"`
	TransactionDate     string  `json:"transactionDate" doc:"RFC3339 transaction date"`
	Type                string  `json:"type" doc:"expense or income"`
	AccountID           string  `json:"accountID" doc:"Account the candidate belongs to"`
	SuggestedCategoryID string  `json:"suggestedCategoryID,omitempty" doc:"Suggested category UUID"`
	Confidence          float64 `json:"confidence" doc:"Confidence of the suggestion between 0 and 1"`
	Status              string  `json:"status" doc:"pending, processing, processed or dismissed"`
	TransactionID       string  `json:"transactionID,omitempty" doc:"Transaction created when the candidate was processed"`
	LastError           string  `json:"lastError,omitempty" doc:"Why the last processing attempt failed"`
	ImportedAt          string  `json:"importedAt" doc:"RFC3339 import time"`
}

func toPendingTransaction(p *model.PendingTransaction) PendingTransaction {
	out := PendingTransaction{
		ID:                  p.ID.String(),
		Amount:              p.Amount.String(),
		Description:         p.DescriptionText,
		MerchantName:        p.Merchant(),
		TransactionDate:     p.TransactionDate.Format(time.RFC3339),
		Type:                string(p.Type),
		AccountID:           p.AccountID.String(),
		SuggestedCategoryID: idString(p.SuggestedCategoryID),
		Confidence:          p.Confidence,
		Status:              string(p.Status),
		TransactionID:       idString(p.TransactionID),
		LastError:           p.LastError,
		ImportedAt:          p.ImportedAt.Format(time.RFC3339),
	}
	if p.BankTransactionID != nil {
		out.BankTransactionID = *p.BankTransactionID
	}
	return out
}

func idString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.FromString(value)
	if err != nil {
		return uuid.Nil, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
	}
	return id, nil
}

func parseOptionalID(field, value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := parseID(field, value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseAmount(field, value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
	}
	return amount, nil
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
	}
	return t, nil
}
