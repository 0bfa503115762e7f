package transaction

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/budget-ledger/internal/handlers/v1/apierr"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/service"
)

// ListTransactionsCursor is the cursor for paginated requests.
type ListTransactionsCursor struct {
	Position        int    `json:"position" minimum:"0" doc:"Offset for next page"`
	Limit           int    `json:"limit" minimum:"1" maximum:"100" doc:"Page size"`
	MaxCreationTime string `json:"maxCreationTime" format:"date-time" doc:"Only include transactions created at or before this time"`
}

// ListTransactionsFilter narrows the listing. Empty fields do not filter.
type ListTransactionsFilter struct {
	AccountID  string `json:"accountID,omitempty" doc:"Only transactions touching this account"`
	CategoryID string `json:"categoryID,omitempty" doc:"Only transactions in this category"`
	From       string `json:"from,omitempty" doc:"RFC3339 lower bound on transactionDate, inclusive"`
	To         string `json:"to,omitempty" doc:"RFC3339 upper bound on transactionDate, inclusive"`
}

// ListTransactionsBody is the request body for listing transactions.
type ListTransactionsBody struct {
	Filter *ListTransactionsFilter `json:"filter,omitempty" doc:"Optional filter"`
	Cursor *ListTransactionsCursor `json:"cursor,omitempty" doc:"Cursor from a previous response; omit for the first page"`
}

// ListTransactionsInput is the Huma input for listing transactions.
type ListTransactionsInput struct {
	Body ListTransactionsBody
}

// ListTransactionsResponseBody is the response body for listing transactions.
type ListTransactionsResponseBody struct {
	Transactions []Transaction           `json:"transactions" doc:"Page of transactions, newest transactionDate first"`
	NextCursor   *ListTransactionsCursor `json:"nextCursor,omitempty" doc:"Cursor to fetch the next page, absent on the last page"`
}

// ListTransactionsOutput is the Huma output for listing transactions.
type ListTransactionsOutput struct {
	Body ListTransactionsResponseBody
}

// transactionLister is the interface for listing transactions.
type transactionLister interface {
	ListTransactions(ctx context.Context, filter service.TransactionFilter, cursor *service.TransactionCursor) ([]*model.Transaction, *service.TransactionCursor, error)
}

// ListTransactionsHandler handles POST /v1/transaction/list.
type ListTransactionsHandler struct {
	TransactionService transactionLister
}

// NewListTransactionsHandler creates a new ListTransactionsHandler.
func NewListTransactionsHandler(svc transactionLister) *ListTransactionsHandler {
	return &ListTransactionsHandler{TransactionService: svc}
}

// Register registers the list transactions endpoint with the Huma API.
func (h *ListTransactionsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-transactions",
		Method:      http.MethodPost,
		Path:        "/v1/transaction/list",
		Summary:     "List transactions",
		Description: "Returns a paginated, optionally filtered list of transactions.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func parseListTransactionsInput(input *ListTransactionsInput) (*service.TransactionCursor, error) {
	if input.Body.Cursor == nil {
		return nil, nil
	}

	maxCreationTime, err := time.Parse(time.RFC3339, input.Body.Cursor.MaxCreationTime)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid cursor maxCreationTime", err)
	}

	return &service.TransactionCursor{
		Position:        input.Body.Cursor.Position,
		Limit:           input.Body.Cursor.Limit,
		MaxCreationTime: maxCreationTime,
	}, nil
}

func parseOptionalTime(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
	}
	return &t, nil
}

func parseListTransactionsFilter(input *ListTransactionsInput) (service.TransactionFilter, error) {
	var filter service.TransactionFilter
	f := input.Body.Filter
	if f == nil {
		return filter, nil
	}

	var err error
	if filter.AccountID, err = parseOptionalID("filter.accountID", f.AccountID); err != nil {
		return filter, err
	}
	if filter.CategoryID, err = parseOptionalID("filter.categoryID", f.CategoryID); err != nil {
		return filter, err
	}
	if filter.From, err = parseOptionalTime("filter.from", f.From); err != nil {
		return filter, err
	}
	if filter.To, err = parseOptionalTime("filter.to", f.To); err != nil {
		return filter, err
	}
	return filter, nil
}

func (h *ListTransactionsHandler) handle(ctx context.Context, input *ListTransactionsInput) (*ListTransactionsOutput, error) {
	logData := logging.GetLogData(ctx)

	cursor, err := parseListTransactionsInput(input)
	if err != nil {
		return nil, err
	}
	filter, err := parseListTransactionsFilter(input)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("listTransactionsMs")
	}
	txs, nextCursor, err := h.TransactionService.ListTransactions(ctx, filter, cursor)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, apierr.FromError("failed to list transactions", err)
	}

	if logData != nil {
		logData.AddData("transactionCount", len(txs))
	}

	resp := ListTransactionsResponseBody{
		Transactions: make([]Transaction, len(txs)),
	}
	for i, tx := range txs {
		resp.Transactions[i] = toTransaction(tx)
	}

	if nextCursor != nil {
		resp.NextCursor = &ListTransactionsCursor{
			Position:        nextCursor.Position,
			Limit:           nextCursor.Limit,
			MaxCreationTime: nextCursor.MaxCreationTime.Format(time.RFC3339Nano),
		}
	}

	return &ListTransactionsOutput{Body: resp}, nil
}
