package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/handlers/v1/apierr"
	"github.com/carson-networks/budget-ledger/internal/logging"
)

type DeleteAccountInput struct {
	ID string `path:"id" format:"uuid" doc:"Account UUID"`
}

type DeleteAccountOutput struct {
	Status int
}

type accountDeleter interface {
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

// DeleteAccountHandler handles DELETE /v1/account/{id}.
type DeleteAccountHandler struct {
	AccountService accountDeleter
}

func NewDeleteAccountHandler(svc accountDeleter) *DeleteAccountHandler {
	return &DeleteAccountHandler{AccountService: svc}
}

func (h *DeleteAccountHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "delete-account",
		Method:      http.MethodDelete,
		Path:        "/v1/account/{id}",
		Summary:     "Delete an account",
		Description: "Deletes an account. Depending on server policy, accounts with transactions are refused (409) or deleted together with their transactions.",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *DeleteAccountHandler) handle(ctx context.Context, input *DeleteAccountInput) (*DeleteAccountOutput, error) {
	id, err := uuid.FromString(input.ID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid id", err)
	}
	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("accountID", id.String())
	}

	if err := h.AccountService.DeleteAccount(ctx, id); err != nil {
		return nil, apierr.FromError("failed to delete account", err)
	}
	return &DeleteAccountOutput{Status: http.StatusNoContent}, nil
}
