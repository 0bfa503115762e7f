package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/budget-ledger/internal/handlers/v1/apierr"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/model"
)

type transactionManager interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *model.Transaction) (*model.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	ExpandSplit(ctx context.Context, parentID uuid.UUID, children []model.Transaction) (*model.Transaction, error)
	CollapseSplit(ctx context.Context, parentID uuid.UUID, amount decimal.Decimal, categoryID *uuid.UUID) (*model.Transaction, error)
}

type TransactionIDInput struct {
	ID string `path:"id" doc:"Transaction UUID"`
}

type UpdateTransactionInput struct {
	ID   string `path:"id" doc:"Transaction UUID"`
	Body TransactionBody
}

type SplitTransactionInput struct {
	ID   string `path:"id" doc:"Transaction UUID"`
	Body struct {
		SplitTransactions []SplitBody `json:"splitTransactions" minItems:"1" doc:"Children replacing any existing split"`
	}
}

type CollapseTransactionInput struct {
	ID   string `path:"id" doc:"Transaction UUID"`
	Body struct {
		Amount     string `json:"amount" doc:"Amount of the collapsed transaction"`
		CategoryID string `json:"categoryID,omitempty" doc:"Category of the collapsed transaction"`
	}
}

type TransactionOutput struct {
	Body Transaction
}

type DeleteTransactionOutput struct {
	Status int
}

// ManageTransactionHandler serves the single-transaction endpoints under
// /v1/transaction/{id}.
type ManageTransactionHandler struct {
	TransactionService transactionManager
}

func NewManageTransactionHandler(svc transactionManager) *ManageTransactionHandler {
	return &ManageTransactionHandler{TransactionService: svc}
}

func (h *ManageTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-transaction",
		Method:      http.MethodGet,
		Path:        "/v1/transaction/{id}",
		Summary:     "Get a transaction",
		Tags:        []string{"Transactions"},
	}, h.get)

	huma.Register(api, huma.Operation{
		OperationID: "update-transaction",
		Method:      http.MethodPut,
		Path:        "/v1/transaction/{id}",
		Summary:     "Replace a transaction",
		Description: "Reverses the stored version's balance effects and applies the new one. " +
			"A non-zero version must match the stored version.",
		Tags: []string{"Transactions"},
	}, h.update)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-transaction",
		Method:        http.MethodDelete,
		Path:          "/v1/transaction/{id}",
		Summary:       "Delete a transaction",
		Description:   "Deletes a transaction with its split children and transfer leg, reversing their effects.",
		Tags:          []string{"Transactions"},
		DefaultStatus: http.StatusNoContent,
	}, h.delete)

	huma.Register(api, huma.Operation{
		OperationID: "split-transaction",
		Method:      http.MethodPost,
		Path:        "/v1/transaction/{id}/split",
		Summary:     "Split a transaction",
		Tags:        []string{"Transactions"},
	}, h.split)

	huma.Register(api, huma.Operation{
		OperationID: "collapse-transaction",
		Method:      http.MethodPost,
		Path:        "/v1/transaction/{id}/collapse",
		Summary:     "Collapse a split transaction",
		Tags:        []string{"Transactions"},
	}, h.collapse)
}

func parseID(value string) (uuid.UUID, error) {
	id, err := uuid.FromString(value)
	if err != nil {
		return uuid.Nil, huma.NewError(http.StatusBadRequest, "invalid id", err)
	}
	return id, nil
}

func (h *ManageTransactionHandler) get(ctx context.Context, input *TransactionIDInput) (*TransactionOutput, error) {
	id, err := parseID(input.ID)
	if err != nil {
		return nil, err
	}
	tx, err := h.TransactionService.GetTransaction(ctx, id)
	if err != nil {
		return nil, apierr.FromError("failed to get transaction", err)
	}
	return &TransactionOutput{Body: toTransaction(tx)}, nil
}

func (h *ManageTransactionHandler) update(ctx context.Context, input *UpdateTransactionInput) (*TransactionOutput, error) {
	logData := logging.GetLogData(ctx)

	id, err := parseID(input.ID)
	if err != nil {
		return nil, err
	}
	tx, err := parseTransactionBody(&input.Body)
	if err != nil {
		return nil, err
	}
	tx.ID = id

	var stopTimer func()
	if logData != nil {
		logData.AddData("transactionID", input.ID)
		stopTimer = logData.AddTiming("updateTransactionMs")
	}
	updated, err := h.TransactionService.UpdateTransaction(ctx, tx)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, apierr.FromError("failed to update transaction", err)
	}
	return &TransactionOutput{Body: toTransaction(updated)}, nil
}

func (h *ManageTransactionHandler) delete(ctx context.Context, input *TransactionIDInput) (*DeleteTransactionOutput, error) {
	id, err := parseID(input.ID)
	if err != nil {
		return nil, err
	}
	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("transactionID", input.ID)
	}
	if err := h.TransactionService.DeleteTransaction(ctx, id); err != nil {
		return nil, apierr.FromError("failed to delete transaction", err)
	}
	return &DeleteTransactionOutput{Status: http.StatusNoContent}, nil
}

func (h *ManageTransactionHandler) split(ctx context.Context, input *SplitTransactionInput) (*TransactionOutput, error) {
	id, err := parseID(input.ID)
	if err != nil {
		return nil, err
	}
	children, err := parseSplits(input.Body.SplitTransactions)
	if err != nil {
		return nil, err
	}
	for i := range children {
		children[i].ParentTransactionID = model.IDPtr(id)
	}
	tx, err := h.TransactionService.ExpandSplit(ctx, id, children)
	if err != nil {
		return nil, apierr.FromError("failed to split transaction", err)
	}
	return &TransactionOutput{Body: toTransaction(tx)}, nil
}

func (h *ManageTransactionHandler) collapse(ctx context.Context, input *CollapseTransactionInput) (*TransactionOutput, error) {
	id, err := parseID(input.ID)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", input.Body.Amount)
	if err != nil {
		return nil, err
	}
	categoryID, err := parseOptionalID("categoryID", input.Body.CategoryID)
	if err != nil {
		return nil, err
	}
	tx, err := h.TransactionService.CollapseSplit(ctx, id, amount, categoryID)
	if err != nil {
		return nil, apierr.FromError("failed to collapse transaction", err)
	}
	return &TransactionOutput{Body: toTransaction(tx)}, nil
}
