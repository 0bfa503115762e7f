package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/handlers/v1/apierr"
	"github.com/carson-networks/budget-ledger/internal/model"
)

type UpdateAccountInput struct {
	ID   string `path:"id" format:"uuid" doc:"Account UUID"`
	Body UpdateAccountBody
}

// UpdateAccountBody carries the editable fields. The balance is not one of them.
type UpdateAccountBody struct {
	Name      string `json:"name" minLength:"1" doc:"Account name"`
	Tag       string `json:"tag" minLength:"2" doc:"Unique tag starting with '#'"`
	Type      int    `json:"type" minimum:"0" maximum:"4" doc:"Account type"`
	Currency  string `json:"currency" minLength:"3" maxLength:"3" doc:"ISO 4217 currency code"`
	IsDefault bool   `json:"isDefault,omitempty" doc:"Make this the default account"`
}

type UpdateAccountOutput struct {
	Body Account
}

type accountUpdater interface {
	UpdateAccount(ctx context.Context, account *model.Account) (*model.Account, error)
}

// UpdateAccountHandler handles PUT /v1/account/{id}.
type UpdateAccountHandler struct {
	AccountService accountUpdater
}

func NewUpdateAccountHandler(svc accountUpdater) *UpdateAccountHandler {
	return &UpdateAccountHandler{AccountService: svc}
}

func (h *UpdateAccountHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "update-account",
		Method:      http.MethodPut,
		Path:        "/v1/account/{id}",
		Summary:     "Update an account",
		Description: "Changes an account's name, tag, type, currency or default flag.",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *UpdateAccountHandler) handle(ctx context.Context, input *UpdateAccountInput) (*UpdateAccountOutput, error) {
	id, err := uuid.FromString(input.ID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid id", err)
	}

	updated, err := h.AccountService.UpdateAccount(ctx, &model.Account{
		ID:        id,
		Name:      input.Body.Name,
		Tag:       input.Body.Tag,
		Type:      model.AccountType(input.Body.Type),
		Currency:  input.Body.Currency,
		IsDefault: input.Body.IsDefault,
	})
	if err != nil {
		return nil, apierr.FromError("failed to update account", err)
	}
	return &UpdateAccountOutput{Body: toAccount(updated)}, nil
}
