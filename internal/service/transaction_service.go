package service

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

const defaultLimit = 20

// TransactionService handles transaction business logic.
type TransactionService struct {
	engine *ledger.Engine
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(engine *ledger.Engine) *TransactionService {
	return &TransactionService{engine: engine}
}

// CreateTransaction records a transaction and posts its balance effects.
func (s *TransactionService) CreateTransaction(ctx context.Context, tx *model.Transaction) (*model.Transaction, error) {
	return s.engine.CreateTransaction(ctx, tx)
}

func (s *TransactionService) UpdateTransaction(ctx context.Context, tx *model.Transaction) (*model.Transaction, error) {
	return s.engine.UpdateTransaction(ctx, tx)
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return s.engine.DeleteTransaction(ctx, id)
}

func (s *TransactionService) GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	return s.engine.GetTransaction(ctx, id)
}

func (s *TransactionService) ExpandSplit(ctx context.Context, parentID uuid.UUID, children []model.Transaction) (*model.Transaction, error) {
	return s.engine.ExpandSplit(ctx, parentID, children)
}

func (s *TransactionService) CollapseSplit(ctx context.Context, parentID uuid.UUID, amount decimal.Decimal, categoryID *uuid.UUID) (*model.Transaction, error) {
	return s.engine.CollapseSplit(ctx, parentID, amount, categoryID)
}

// ListTransactions returns a page of transactions using cursor-based pagination.
func (s *TransactionService) ListTransactions(ctx context.Context, filter TransactionFilter, cursor *TransactionCursor) ([]*model.Transaction, *TransactionCursor, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, nil, model.NewValidationError("dateRange", "from must not be after to")
	}

	limit := defaultLimit
	offset := 0
	// the first page pins the creation time so later pages skip newer rows
	maxCreationTime := s.engine.Now()
	if cursor != nil {
		if cursor.Limit > 0 {
			limit = cursor.Limit
		}
		offset = cursor.Position
		if !cursor.MaxCreationTime.IsZero() {
			maxCreationTime = cursor.MaxCreationTime
		}
	}

	rows, err := s.engine.Store().ListTransactions(ctx, &storage.TransactionFilter{
		AccountID:       filter.AccountID,
		CategoryID:      filter.CategoryID,
		From:            filter.From,
		To:              filter.To,
		MaxCreationTime: &maxCreationTime,
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		return nil, nil, err
	}

	if len(rows) == 0 {
		return nil, nil, nil
	}

	var nextCursor *TransactionCursor
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = &TransactionCursor{
			Position:        offset + limit,
			Limit:           limit,
			MaxCreationTime: maxCreationTime,
		}
	}

	return rows, nextCursor, nil
}
