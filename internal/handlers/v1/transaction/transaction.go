package transaction

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/budget-ledger/internal/model"
)

// Transaction is the API response model for a transaction.
// It is used only for responses, not for request bodies.
type Transaction struct {
	ID                  string        `json:"id" doc:"Transaction UUID"`
	Type                string        `json:"type" doc:"expense, income, transferOut or transferIn"`
	Amount              string        `json:"amount" doc:"Decimal amount; for a split parent the sum of its children"`
	CategoryID          string        `json:"categoryID,omitempty" doc:"Category UUID; for a split parent the largest child's category"`
	Description         string        `json:"description" doc:"Free text description"`
	FromAccountID       string        `json:"fromAccountID,omitempty" doc:"Source account UUID"`
	ToAccountID         string        `json:"toAccountID,omitempty" doc:"Destination account UUID"`
	ParentTransactionID string        `json:"parentTransactionID,omitempty" doc:"Split parent UUID"`
	TransferID          string        `json:"transferID,omitempty" doc:"UUID shared by both legs of a transfer"`
	SplitTransactions   []Transaction `json:"splitTransactions,omitempty" doc:"Children of a split parent"`
	TransactionDate     string        `json:"transactionDate" doc:"RFC3339 transaction date"`
	CreatedAt           string        `json:"createdAt" doc:"RFC3339 creation time"`
	Version             int64         `json:"version" doc:"Version to send back on update"`
}

func toTransaction(tx *model.Transaction) Transaction {
	out := Transaction{
		ID:                  tx.ID.String(),
		Type:                string(tx.Type),
		Amount:              tx.EffectiveAmount().String(),
		CategoryID:          idString(tx.PrimaryCategory()),
		Description:         tx.Description,
		FromAccountID:       idString(tx.FromAccountID),
		ToAccountID:         idString(tx.ToAccountID),
		ParentTransactionID: idString(tx.ParentTransactionID),
		TransferID:          idString(tx.TransferID),
		TransactionDate:     tx.TransactionDate.Format(time.RFC3339),
		CreatedAt:           tx.Timestamp.Format(time.RFC3339),
		Version:             tx.Version,
	}
	for i := range tx.SplitTransactions {
		out.SplitTransactions = append(out.SplitTransactions, toTransaction(&tx.SplitTransactions[i]))
	}
	return out
}

func idString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

// TransactionBody is the request body for creating or replacing a transaction.
type TransactionBody struct {
	Type              string      `json:"type" enum:"expense,income,transferOut,transferIn" doc:"Transaction type"`
	Amount            string      `json:"amount,omitempty" doc:"Decimal amount, required unless splitTransactions is set"`
	CategoryID        string      `json:"categoryID,omitempty" doc:"Category UUID"`
	Description       string      `json:"description,omitempty" doc:"Free text description"`
	FromAccountID     string      `json:"fromAccountID,omitempty" doc:"Source account UUID, for expense and transfers"`
	ToAccountID       string      `json:"toAccountID,omitempty" doc:"Destination account UUID, for income and transfers"`
	TransactionDate   string      `json:"transactionDate,omitempty" doc:"RFC3339 transaction date, defaults to now"`
	Version           int64       `json:"version,omitempty" doc:"Version the update is based on; 0 skips the check"`
	SplitTransactions []SplitBody `json:"splitTransactions,omitempty" doc:"Categorized breakdown; makes this a split parent"`
}

// SplitBody is one child of a split.
type SplitBody struct {
	ID          string `json:"id,omitempty" doc:"UUID of an existing child to keep"`
	Amount      string `json:"amount" doc:"Decimal amount"`
	CategoryID  string `json:"categoryID,omitempty" doc:"Category UUID"`
	Description string `json:"description,omitempty" doc:"Free text description"`
}

func parseOptionalID(field, value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.FromString(value)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
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

func parseSplits(body []SplitBody) ([]model.Transaction, error) {
	if len(body) == 0 {
		return nil, nil
	}
	children := make([]model.Transaction, len(body))
	for i, s := range body {
		amount, err := parseAmount("splitTransactions.amount", s.Amount)
		if err != nil {
			return nil, err
		}
		categoryID, err := parseOptionalID("splitTransactions.categoryID", s.CategoryID)
		if err != nil {
			return nil, err
		}
		id, err := parseOptionalID("splitTransactions.id", s.ID)
		if err != nil {
			return nil, err
		}
		children[i] = model.Transaction{
			Amount:      amount,
			CategoryID:  categoryID,
			Description: s.Description,
		}
		if id != nil {
			children[i].ID = *id
		}
	}
	return children, nil
}

// parseTransactionBody turns the request body into a ledger transaction.
// An empty transactionDate is left zero for the ledger to default.
func parseTransactionBody(body *TransactionBody) (*model.Transaction, error) {
	tx := &model.Transaction{
		Type:        model.TransactionType(body.Type),
		Description: body.Description,
		Version:     body.Version,
	}

	var err error
	if body.Amount != "" {
		if tx.Amount, err = parseAmount("amount", body.Amount); err != nil {
			return nil, err
		}
	}
	if tx.CategoryID, err = parseOptionalID("categoryID", body.CategoryID); err != nil {
		return nil, err
	}
	if tx.FromAccountID, err = parseOptionalID("fromAccountID", body.FromAccountID); err != nil {
		return nil, err
	}
	if tx.ToAccountID, err = parseOptionalID("toAccountID", body.ToAccountID); err != nil {
		return nil, err
	}
	if body.TransactionDate != "" {
		tx.TransactionDate, err = time.Parse(time.RFC3339, body.TransactionDate)
		if err != nil {
			return nil, huma.NewError(http.StatusBadRequest, "invalid transactionDate", err)
		}
	}
	if tx.SplitTransactions, err = parseSplits(body.SplitTransactions); err != nil {
		return nil, err
	}
	return tx, nil
}
