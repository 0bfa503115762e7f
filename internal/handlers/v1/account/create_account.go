package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/budget-ledger/internal/handlers/v1/apierr"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/model"
)

// CreateAccountInput is the Huma input for creating an account.
type CreateAccountInput struct {
	Body CreateAccountBody
}

// CreateAccountBody is the request body fields for creating an account.
type CreateAccountBody struct {
	Name           string `json:"name" minLength:"1" doc:"Account name"`
	Tag            string `json:"tag" minLength:"2" doc:"Unique tag starting with '#'"`
	Type           int    `json:"type" minimum:"0" maximum:"4" doc:"Account type: 0=Cash, 1=Credit Cards, 2=Investments, 3=Loans, 4=Assets"`
	Currency       string `json:"currency" minLength:"3" maxLength:"3" doc:"ISO 4217 currency code"`
	OpeningBalance string `json:"openingBalance,omitempty" doc:"Balance when the account is created (e.g. '0' or '1234.56'), defaults to 0"`
	IsDefault      bool   `json:"isDefault,omitempty" doc:"Make this the default account"`
}

// CreateAccountOutput is the response for creating an account.
type CreateAccountOutput struct {
	Status int
	Body   Account
}

// accountCreator is the interface for creating accounts.
type accountCreator interface {
	CreateAccount(ctx context.Context, account *model.Account) (*model.Account, error)
}

// CreateAccountHandler handles POST /v1/account.
type CreateAccountHandler struct {
	AccountService accountCreator
}

// NewCreateAccountHandler creates a new CreateAccountHandler.
func NewCreateAccountHandler(svc accountCreator) *CreateAccountHandler {
	return &CreateAccountHandler{AccountService: svc}
}

// Register registers the create account endpoint with the Huma API.
func (h *CreateAccountHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-account",
		Method:      http.MethodPost,
		Path:        "/v1/account",
		Summary:     "Create an account",
		Description: "Creates a new account. Its balance starts at the opening balance and only moves with transactions.",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func parseCreateAccountInput(input *CreateAccountInput) (*model.Account, error) {
	openingBalanceStr := input.Body.OpeningBalance
	if openingBalanceStr == "" {
		openingBalanceStr = "0"
	}
	openingBalance, err := decimal.NewFromString(openingBalanceStr)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid openingBalance", err)
	}

	return &model.Account{
		Name:           input.Body.Name,
		Tag:            input.Body.Tag,
		Type:           model.AccountType(input.Body.Type),
		Currency:       input.Body.Currency,
		OpeningBalance: openingBalance,
		IsDefault:      input.Body.IsDefault,
	}, nil
}

func (h *CreateAccountHandler) handle(ctx context.Context, input *CreateAccountInput) (*CreateAccountOutput, error) {
	logData := logging.GetLogData(ctx)

	account, err := parseCreateAccountInput(input)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("createAccountMs")
	}
	created, err := h.AccountService.CreateAccount(ctx, account)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, apierr.FromError("failed to create account", err)
	}

	if logData != nil {
		logData.AddData("accountID", created.ID.String())
	}

	return &CreateAccountOutput{
		Status: http.StatusCreated,
		Body:   toAccount(created),
	}, nil
}
