package pending

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/budget-ledger/internal/handlers/v1/apierr"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/model"
)

// CreatePendingInput is the Huma input for importing a candidate.
type CreatePendingInput struct {
	Body CreatePendingBody
}

// CreatePendingBody is the request body for importing a candidate.
type CreatePendingBody struct {
	BankTransactionID   string   `json:"bankTransactionID,omitempty" doc:"Identifier assigned by the bank, used to reject duplicates"`
	Amount              string   `json:"amount" doc:"Positive decimal amount"`
	Description         string   `json:"description,omitempty" doc:"Description as imported"`
	MerchantName        string   `json:"merchantName,omitempty" doc:"Merchant or counterparty"`
	TransactionDate     string   `json:"transactionDate,omitempty" doc:"RFC3339 transaction date, defaults to now"`
	Type                string   `json:"type" enum:"expense,income" doc:"Direction of the candidate"`
	AccountID           string   `json:"accountID" doc:"Account UUID"`
	SuggestedCategoryID string   `json:"suggestedCategoryID,omitempty" doc:"Category UUID; suggested automatically when absent"`
	Confidence          *float64 `json:"confidence,omitempty" minimum:"0" maximum:"1" doc:"Confidence of the suggestion"`
}

// CreatePendingOutput is the response for importing a candidate.
type CreatePendingOutput struct {
	Status int
	Body   PendingTransaction
}

type pendingCreator interface {
	CreatePending(ctx context.Context, p *model.PendingTransaction) (*model.PendingTransaction, error)
}

// CreatePendingHandler handles POST /v1/pending.
type CreatePendingHandler struct {
	PendingService pendingCreator
}

func NewCreatePendingHandler(svc pendingCreator) *CreatePendingHandler {
	return &CreatePendingHandler{PendingService: svc}
}

func (h *CreatePendingHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-pending",
		Method:      http.MethodPost,
		Path:        "/v1/pending",
		Summary:     "Import a pending transaction",
		Description: "Queues a bank-imported candidate for review. It does not move any balance until processed.",
		Tags:        []string{"Pending"},
	}, h.handle)
}

func parseCreatePendingInput(input *CreatePendingInput) (*model.PendingTransaction, error) {
	body := input.Body

	amount, err := parseAmount("amount", body.Amount)
	if err != nil {
		return nil, err
	}
	accountID, err := parseID("accountID", body.AccountID)
	if err != nil {
		return nil, err
	}
	categoryID, err := parseOptionalID("suggestedCategoryID", body.SuggestedCategoryID)
	if err != nil {
		return nil, err
	}
	date, err := parseDate("transactionDate", body.TransactionDate)
	if err != nil {
		return nil, err
	}

	p := &model.PendingTransaction{
		Amount:              amount,
		DescriptionText:     body.Description,
		TransactionDate:     date,
		Type:                model.TransactionType(body.Type),
		AccountID:           accountID,
		SuggestedCategoryID: categoryID,
	}
	if body.BankTransactionID != "" {
		bankID := body.BankTransactionID
		p.BankTransactionID = &bankID
	}
	if body.MerchantName != "" {
		merchant := body.MerchantName
		p.MerchantName = &merchant
	}
	if body.Confidence != nil {
		p.Confidence = *body.Confidence
	}
	return p, nil
}

func (h *CreatePendingHandler) handle(ctx context.Context, input *CreatePendingInput) (*CreatePendingOutput, error) {
	logData := logging.GetLogData(ctx)

	p, err := parseCreatePendingInput(input)
	if err != nil {
		return nil, err
	}

	created, err := h.PendingService.CreatePending(ctx, p)
	if err != nil {
		return nil, apierr.FromError("failed to import pending transaction", err)
	}

	if logData != nil {
		logData.AddData("pendingID", created.ID.String())
	}

	return &CreatePendingOutput{
		Status: http.StatusCreated,
		Body:   toPendingTransaction(created),
	}, nil
}
