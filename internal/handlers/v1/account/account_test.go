package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/service"
)

type mockAccountService struct {
	mock.Mock
}

func (m *mockAccountService) CreateAccount(ctx context.Context, account *model.Account) (*model.Account, error) {
	args := m.Called(ctx, account)
	created, _ := args.Get(0).(*model.Account)
	return created, args.Error(1)
}

func (m *mockAccountService) UpdateAccount(ctx context.Context, account *model.Account) (*model.Account, error) {
	args := m.Called(ctx, account)
	updated, _ := args.Get(0).(*model.Account)
	return updated, args.Error(1)
}

func (m *mockAccountService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAccountService) ListAccounts(ctx context.Context, cursor *service.AccountCursor) ([]*model.Account, *service.AccountCursor, error) {
	args := m.Called(ctx, cursor)
	accounts, _ := args.Get(0).([]*model.Account)
	next, _ := args.Get(1).(*service.AccountCursor)
	return accounts, next, args.Error(2)
}

func newTestAPI(t *testing.T, svc *mockAccountService) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewCreateAccountHandler(svc).Register(api)
	NewUpdateAccountHandler(svc).Register(api)
	NewDeleteAccountHandler(svc).Register(api)
	NewListAccountsHandler(svc).Register(api)
	return api
}

func sampleAccount() *model.Account {
	return &model.Account{
		ID:             uuid.Must(uuid.NewV4()),
		Name:           "Checking",
		Tag:            "#checking",
		Type:           model.AccountTypeCash,
		Currency:       "KES",
		Balance:        decimal.RequireFromString("1000"),
		OpeningBalance: decimal.RequireFromString("1000"),
		IsDefault:      true,
		CreatedAt:      time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
	}
}

// -- parseCreateAccountInput tests --

func TestParseCreateAccountInput_DefaultsOpeningBalance(t *testing.T) {
	account, err := parseCreateAccountInput(&CreateAccountInput{Body: CreateAccountBody{
		Name:     "Wallet",
		Tag:      "#wallet",
		Currency: "KES",
	}})

	require.NoError(t, err)
	assert.True(t, account.OpeningBalance.IsZero())
	assert.Equal(t, "#wallet", account.Tag)
}

func TestParseCreateAccountInput_InvalidOpeningBalance(t *testing.T) {
	_, err := parseCreateAccountInput(&CreateAccountInput{Body: CreateAccountBody{
		Name:           "Wallet",
		Tag:            "#wallet",
		Currency:       "KES",
		OpeningBalance: "lots",
	}})

	assert.Error(t, err)
}

// -- HTTP tests --

func TestHTTP_CreateAccount_Success(t *testing.T) {
	svc := new(mockAccountService)
	created := sampleAccount()
	svc.On("CreateAccount", mock.Anything, mock.MatchedBy(func(a *model.Account) bool {
		return a.Name == "Checking" && a.Tag == "#checking" && a.OpeningBalance.Equal(decimal.RequireFromString("1000"))
	})).Return(created, nil)

	resp := newTestAPI(t, svc).Post("/v1/account", CreateAccountBody{
		Name:           "Checking",
		Tag:            "#checking",
		Currency:       "KES",
		OpeningBalance: "1000",
	})

	assert.Equal(t, http.StatusCreated, resp.Code)
	var body Account
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, created.ID.String(), body.ID)
	assert.Equal(t, "1000", body.Balance)
	assert.True(t, body.IsDefault)
	svc.AssertExpectations(t)
}

func TestHTTP_CreateAccount_DuplicateTag(t *testing.T) {
	svc := new(mockAccountService)
	svc.On("CreateAccount", mock.Anything, mock.Anything).
		Return(nil, model.NewValidationError("tag", "tag #checking is already used by Checking"))

	resp := newTestAPI(t, svc).Post("/v1/account", CreateAccountBody{
		Name:     "Second",
		Tag:      "#checking",
		Currency: "KES",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHTTP_CreateAccount_MissingName(t *testing.T) {
	svc := new(mockAccountService)

	resp := newTestAPI(t, svc).Post("/v1/account", CreateAccountBody{
		Tag:      "#x",
		Currency: "KES",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	svc.AssertNotCalled(t, "CreateAccount")
}

func TestHTTP_UpdateAccount_NotFound(t *testing.T) {
	svc := new(mockAccountService)
	id := uuid.Must(uuid.NewV4())
	svc.On("UpdateAccount", mock.Anything, mock.MatchedBy(func(a *model.Account) bool {
		return a.ID == id
	})).Return(nil, model.NotFound("account", id))

	resp := newTestAPI(t, svc).Put("/v1/account/"+id.String(), UpdateAccountBody{
		Name:     "Renamed",
		Tag:      "#renamed",
		Currency: "KES",
	})

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHTTP_DeleteAccount_Success(t *testing.T) {
	svc := new(mockAccountService)
	id := uuid.Must(uuid.NewV4())
	svc.On("DeleteAccount", mock.Anything, id).Return(nil)

	resp := newTestAPI(t, svc).Delete("/v1/account/" + id.String())

	assert.Equal(t, http.StatusNoContent, resp.Code)
	svc.AssertExpectations(t)
}

func TestHTTP_DeleteAccount_Referenced(t *testing.T) {
	svc := new(mockAccountService)
	id := uuid.Must(uuid.NewV4())
	svc.On("DeleteAccount", mock.Anything, id).
		Return(model.NewConflictError("account", "account is referenced by transactions"))

	resp := newTestAPI(t, svc).Delete("/v1/account/" + id.String())

	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestHTTP_ListAccounts_DefaultPage(t *testing.T) {
	svc := new(mockAccountService)
	svc.On("ListAccounts", mock.Anything, (*service.AccountCursor)(nil)).
		Return([]*model.Account{sampleAccount()}, nil, nil)

	resp := newTestAPI(t, svc).Get("/v1/accounts")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ListAccountsResponseBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Accounts, 1)
	assert.Nil(t, body.NextCursor)
}

func TestHTTP_ListAccounts_NextCursor(t *testing.T) {
	svc := new(mockAccountService)
	svc.On("ListAccounts", mock.Anything, &service.AccountCursor{Position: 0, Limit: 1}).
		Return([]*model.Account{sampleAccount()}, &service.AccountCursor{Position: 1, Limit: 1}, nil)

	resp := newTestAPI(t, svc).Get("/v1/accounts?limit=1")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ListAccountsResponseBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.NextCursor)
	assert.Equal(t, 1, body.NextCursor.Position)
}

func TestHTTP_ListAccounts_StorageError(t *testing.T) {
	svc := new(mockAccountService)
	svc.On("ListAccounts", mock.Anything, mock.Anything).
		Return(nil, nil, errors.New("database unavailable"))

	resp := newTestAPI(t, svc).Get("/v1/accounts")

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}
