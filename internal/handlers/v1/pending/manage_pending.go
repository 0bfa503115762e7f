package pending

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/handlers/v1/apierr"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/model"
	pendingqueue "github.com/carson-networks/budget-ledger/internal/pending"
)

type pendingManager interface {
	ProcessPending(ctx context.Context, id uuid.UUID, as *model.Transaction) (*pendingqueue.Result, error)
	DismissPending(ctx context.Context, id uuid.UUID) (*model.PendingTransaction, error)
	ListPending(ctx context.Context, accountID *uuid.UUID, status *model.PendingStatus) ([]*model.PendingTransaction, error)
}

type ListPendingInput struct {
	AccountID string `query:"accountID" doc:"Only candidates for this account"`
	Status    string `query:"status" enum:"pending,processing,processed,dismissed" doc:"Only candidates in this status"`
}

type ListPendingOutput struct {
	Body struct {
		Pending []PendingTransaction `json:"pending" doc:"Candidates, newest transaction date first"`
	}
}

// ProcessPendingBody optionally overrides the candidate's own fields when it
// is turned into a transaction.
type ProcessPendingBody struct {
	Amount          string `json:"amount,omitempty" doc:"Amount to record instead of the imported one"`
	CategoryID      string `json:"categoryID,omitempty" doc:"Category to record instead of the suggestion"`
	Description     string `json:"description,omitempty" doc:"Description to record"`
	TransactionDate string `json:"transactionDate,omitempty" doc:"RFC3339 date to record"`
}

type ProcessPendingInput struct {
	ID   string              `path:"id" doc:"Pending transaction UUID"`
	Body *ProcessPendingBody `required:"false"`
}

type ProcessPendingOutput struct {
	Body struct {
		Pending     PendingTransaction `json:"pending" doc:"The processed candidate"`
		Transaction *TransactionRef    `json:"transaction,omitempty" doc:"The transaction it became, absent if it was since deleted"`
		Replayed    bool               `json:"replayed" doc:"True when the candidate had already been processed"`
	}
}

// TransactionRef identifies the transaction a candidate was promoted into.
type TransactionRef struct {
	ID      string `json:"id"`
	Amount  string `json:"amount"`
	Version int64  `json:"version"`
}

type DismissPendingInput struct {
	ID string `path:"id" doc:"Pending transaction UUID"`
}

type DismissPendingOutput struct {
	Body PendingTransaction
}

// ManagePendingHandler serves listing, processing and dismissal of
// candidates.
type ManagePendingHandler struct {
	PendingService pendingManager
}

func NewManagePendingHandler(svc pendingManager) *ManagePendingHandler {
	return &ManagePendingHandler{PendingService: svc}
}

func (h *ManagePendingHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-pending",
		Method:      http.MethodGet,
		Path:        "/v1/pending",
		Summary:     "List pending transactions",
		Tags:        []string{"Pending"},
	}, h.list)

	huma.Register(api, huma.Operation{
		OperationID: "process-pending",
		Method:      http.MethodPost,
		Path:        "/v1/pending/{id}/process",
		Summary:     "Process a pending transaction",
		Description: "Turns the candidate into a real transaction exactly once. " +
			"Repeating the call returns the transaction created the first time.",
		Tags: []string{"Pending"},
	}, h.process)

	huma.Register(api, huma.Operation{
		OperationID: "dismiss-pending",
		Method:      http.MethodPost,
		Path:        "/v1/pending/{id}/dismiss",
		Summary:     "Dismiss a pending transaction",
		Tags:        []string{"Pending"},
	}, h.dismiss)
}

func (h *ManagePendingHandler) list(ctx context.Context, input *ListPendingInput) (*ListPendingOutput, error) {
	accountID, err := parseOptionalID("accountID", input.AccountID)
	if err != nil {
		return nil, err
	}
	var status *model.PendingStatus
	if input.Status != "" {
		s := model.PendingStatus(input.Status)
		status = &s
	}

	records, err := h.PendingService.ListPending(ctx, accountID, status)
	if err != nil {
		return nil, apierr.FromError("failed to list pending transactions", err)
	}

	out := &ListPendingOutput{}
	out.Body.Pending = make([]PendingTransaction, len(records))
	for i, p := range records {
		out.Body.Pending[i] = toPendingTransaction(p)
	}
	return out, nil
}

func parseProcessPendingBody(body *ProcessPendingBody) (*model.Transaction, error) {
	if body == nil {
		return nil, nil
	}
	as := &model.Transaction{Description: body.Description}

	var err error
	if body.Amount != "" {
		if as.Amount, err = parseAmount("amount", body.Amount); err != nil {
			return nil, err
		}
	}
	if as.CategoryID, err = parseOptionalID("categoryID", body.CategoryID); err != nil {
		return nil, err
	}
	if as.TransactionDate, err = parseDate("transactionDate", body.TransactionDate); err != nil {
		return nil, err
	}
	return as, nil
}

func (h *ManagePendingHandler) process(ctx context.Context, input *ProcessPendingInput) (*ProcessPendingOutput, error) {
	logData := logging.GetLogData(ctx)

	id, err := parseID("id", input.ID)
	if err != nil {
		return nil, err
	}
	as, err := parseProcessPendingBody(input.Body)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		logData.AddData("pendingID", input.ID)
		stopTimer = logData.AddTiming("processPendingMs")
	}
	result, err := h.PendingService.ProcessPending(ctx, id, as)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, apierr.FromError("failed to process pending transaction", err)
	}

	out := &ProcessPendingOutput{}
	out.Body.Pending = toPendingTransaction(result.Pending)
	out.Body.Replayed = result.Replayed
	if tx := result.Transaction; tx != nil {
		out.Body.Transaction = &TransactionRef{
			ID:      tx.ID.String(),
			Amount:  tx.EffectiveAmount().String(),
			Version: tx.Version,
		}
		if logData != nil {
			logData.AddData("transactionID", tx.ID.String())
		}
	}
	return out, nil
}

func (h *ManagePendingHandler) dismiss(ctx context.Context, input *DismissPendingInput) (*DismissPendingOutput, error) {
	id, err := parseID("id", input.ID)
	if err != nil {
		return nil, err
	}
	p, err := h.PendingService.DismissPending(ctx, id)
	if err != nil {
		return nil, apierr.FromError("failed to dismiss pending transaction", err)
	}
	return &DismissPendingOutput{Body: toPendingTransaction(p)}, nil
}
