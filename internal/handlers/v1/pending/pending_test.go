package pending

import (
	"context"
	"encoding/json"
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
	pendingqueue "github.com/carson-networks/budget-ledger/internal/pending"
)

type mockPendingService struct {
	mock.Mock
}

func (m *mockPendingService) CreatePending(ctx context.Context, p *model.PendingTransaction) (*model.PendingTransaction, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(*model.PendingTransaction)
	return created, args.Error(1)
}

func (m *mockPendingService) ProcessPending(ctx context.Context, id uuid.UUID, as *model.Transaction) (*pendingqueue.Result, error) {
	args := m.Called(ctx, id, as)
	result, _ := args.Get(0).(*pendingqueue.Result)
	return result, args.Error(1)
}

func (m *mockPendingService) DismissPending(ctx context.Context, id uuid.UUID) (*model.PendingTransaction, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.PendingTransaction)
	return p, args.Error(1)
}

func (m *mockPendingService) ListPending(ctx context.Context, accountID *uuid.UUID, status *model.PendingStatus) ([]*model.PendingTransaction, error) {
	args := m.Called(ctx, accountID, status)
	records, _ := args.Get(0).([]*model.PendingTransaction)
	return records, args.Error(1)
}

func newTestAPI(t *testing.T, svc *mockPendingService) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewCreatePendingHandler(svc).Register(api)
	NewManagePendingHandler(svc).Register(api)
	return api
}

func samplePending(status model.PendingStatus) *model.PendingTransaction {
	bankID := "SAF123"
	merchant := "Java House"
	return &model.PendingTransaction{
		ID:                uuid.Must(uuid.NewV4()),
		BankTransactionID: &bankID,
		Amount:            decimal.RequireFromString("450"),
		DescriptionText:   "Paid to Java House",
		MerchantName:      &merchant,
		TransactionDate:   time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC),
		Type:              model.TransactionTypeExpense,
		AccountID:         uuid.Must(uuid.NewV4()),
		Confidence:        0.6,
		ImportedAt:        time.Date(2025, 3, 2, 9, 5, 0, 0, time.UTC),
		Status:            status,
	}
}

func TestParseCreatePendingInput(t *testing.T) {
	accountID := uuid.Must(uuid.NewV4())
	confidence := 0.8

	p, err := parseCreatePendingInput(&CreatePendingInput{Body: CreatePendingBody{
		BankTransactionID: "SAF123",
		Amount:            "450.00",
		MerchantName:      "Java House",
		Type:              "expense",
		AccountID:         accountID.String(),
		Confidence:        &confidence,
	}})
	require.NoError(t, err)
	assert.Equal(t, "SAF123", *p.BankTransactionID)
	assert.Equal(t, "Java House", p.Merchant())
	assert.Equal(t, accountID, p.AccountID)
	assert.True(t, p.TransactionDate.IsZero())
	assert.Nil(t, p.SuggestedCategoryID)
	assert.InDelta(t, 0.8, p.Confidence, 1e-9)
}

func TestParseCreatePendingInput_InvalidAccount(t *testing.T) {
	_, err := parseCreatePendingInput(&CreatePendingInput{Body: CreatePendingBody{
		Amount:    "1",
		Type:      "income",
		AccountID: "nope",
	}})
	assert.Error(t, err)
}

func TestParseProcessPendingBody(t *testing.T) {
	as, err := parseProcessPendingBody(nil)
	require.NoError(t, err)
	assert.Nil(t, as)

	categoryID := uuid.Must(uuid.NewV4())
	as, err = parseProcessPendingBody(&ProcessPendingBody{
		Amount:     "400",
		CategoryID: categoryID.String(),
	})
	require.NoError(t, err)
	assert.True(t, as.Amount.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, categoryID, *as.CategoryID)
	assert.True(t, as.TransactionDate.IsZero())
}

func TestHTTP_CreatePending(t *testing.T) {
	created := samplePending(model.PendingStatusPending)

	mockSvc := new(mockPendingService)
	mockSvc.On("CreatePending", mock.Anything, mock.MatchedBy(func(p *model.PendingTransaction) bool {
		return p.AccountID == created.AccountID && p.Amount.Equal(decimal.NewFromInt(450))
	})).Return(created, nil)

	resp := newTestAPI(t, mockSvc).Post("/v1/pending", CreatePendingBody{
		BankTransactionID: "SAF123",
		Amount:            "450",
		Type:              "expense",
		AccountID:         created.AccountID.String(),
	})

	assert.Equal(t, http.StatusCreated, resp.Code)
	var body PendingTransaction
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, created.ID.String(), body.ID)
	assert.Equal(t, "pending", body.Status)
	assert.Equal(t, "Java House", body.MerchantName)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_CreatePending_Duplicate(t *testing.T) {
	mockSvc := new(mockPendingService)
	mockSvc.On("CreatePending", mock.Anything, mock.Anything).
		Return(nil, model.NewConflictError("bankTransactionID", "already imported"))

	resp := newTestAPI(t, mockSvc).Post("/v1/pending", CreatePendingBody{
		BankTransactionID: "SAF123",
		Amount:            "450",
		Type:              "expense",
		AccountID:         uuid.Must(uuid.NewV4()).String(),
	})

	assert.Equal(t, http.StatusConflict, resp.Code)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_CreatePending_TransferRejected(t *testing.T) {
	mockSvc := new(mockPendingService)

	resp := newTestAPI(t, mockSvc).Post("/v1/pending", CreatePendingBody{
		Amount:    "450",
		Type:      "transferOut",
		AccountID: uuid.Must(uuid.NewV4()).String(),
	})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	mockSvc.AssertNotCalled(t, "CreatePending")
}

func TestHTTP_ProcessPending(t *testing.T) {
	p := samplePending(model.PendingStatusProcessed)
	txID := pendingqueue.PromotionID(p.ID)
	p.TransactionID = &txID

	mockSvc := new(mockPendingService)
	mockSvc.On("ProcessPending", mock.Anything, p.ID, (*model.Transaction)(nil)).
		Return(&pendingqueue.Result{
			Pending:     p,
			Transaction: &model.Transaction{ID: txID, Amount: p.Amount, Version: 1},
		}, nil)

	resp := newTestAPI(t, mockSvc).Post("/v1/pending/" + p.ID.String() + "/process")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ProcessPendingOutput
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body.Body))
	assert.Equal(t, "processed", body.Body.Pending.Status)
	require.NotNil(t, body.Body.Transaction)
	assert.Equal(t, txID.String(), body.Body.Transaction.ID)
	assert.False(t, body.Body.Replayed)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_ProcessPending_WithOverride(t *testing.T) {
	p := samplePending(model.PendingStatusProcessed)
	categoryID := uuid.Must(uuid.NewV4())

	mockSvc := new(mockPendingService)
	mockSvc.On("ProcessPending", mock.Anything, p.ID, mock.MatchedBy(func(as *model.Transaction) bool {
		return as != nil && as.CategoryID != nil && *as.CategoryID == categoryID
	})).Return(&pendingqueue.Result{Pending: p, Replayed: true}, nil)

	resp := newTestAPI(t, mockSvc).Post("/v1/pending/"+p.ID.String()+"/process", ProcessPendingBody{
		CategoryID: categoryID.String(),
	})

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ProcessPendingOutput
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body.Body))
	assert.True(t, body.Body.Replayed)
	assert.Nil(t, body.Body.Transaction)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_ProcessPending_Dismissed(t *testing.T) {
	id := uuid.Must(uuid.NewV4())

	mockSvc := new(mockPendingService)
	mockSvc.On("ProcessPending", mock.Anything, id, (*model.Transaction)(nil)).
		Return(nil, model.ValidatePendingTransition(model.PendingStatusDismissed, model.PendingStatusProcessing))

	resp := newTestAPI(t, mockSvc).Post("/v1/pending/" + id.String() + "/process")

	assert.Equal(t, http.StatusConflict, resp.Code)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_DismissPending(t *testing.T) {
	p := samplePending(model.PendingStatusDismissed)

	mockSvc := new(mockPendingService)
	mockSvc.On("DismissPending", mock.Anything, p.ID).Return(p, nil)

	resp := newTestAPI(t, mockSvc).Post("/v1/pending/" + p.ID.String() + "/dismiss")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body PendingTransaction
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "dismissed", body.Status)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_ListPending_ByStatus(t *testing.T) {
	p := samplePending(model.PendingStatusPending)
	status := model.PendingStatusPending

	mockSvc := new(mockPendingService)
	mockSvc.On("ListPending", mock.Anything, (*uuid.UUID)(nil), &status).
		Return([]*model.PendingTransaction{p}, nil)

	resp := newTestAPI(t, mockSvc).Get("/v1/pending?status=pending")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		Pending []PendingTransaction `json:"pending"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Pending, 1)
	assert.Equal(t, p.ID.String(), body.Pending[0].ID)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_ListPending_InvalidStatus(t *testing.T) {
	mockSvc := new(mockPendingService)

	resp := newTestAPI(t, mockSvc).Get("/v1/pending?status=lost")

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	mockSvc.AssertNotCalled(t, "ListPending")
}
