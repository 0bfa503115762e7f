package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/model"
)

const defaultAccountLimit = 20

// AccountService handles account business logic.
type AccountService struct {
	engine *ledger.Engine
}

// NewAccountService creates a new AccountService.
func NewAccountService(engine *ledger.Engine) *AccountService {
	return &AccountService{engine: engine}
}

// CreateAccount creates a new account and returns it with its ID and balance set.
func (s *AccountService) CreateAccount(ctx context.Context, account *model.Account) (*model.Account, error) {
	return s.engine.CreateAccount(ctx, account)
}

func (s *AccountService) UpdateAccount(ctx context.Context, account *model.Account) (*model.Account, error) {
	return s.engine.UpdateAccount(ctx, account)
}

func (s *AccountService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return s.engine.DeleteAccount(ctx, id)
}

// GetAccount retrieves an account by ID.
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	return s.engine.GetAccount(ctx, id)
}

// ListAccounts returns a page of accounts using cursor pagination.
func (s *AccountService) ListAccounts(ctx context.Context, cursor *AccountCursor) ([]*model.Account, *AccountCursor, error) {
	limit := defaultAccountLimit
	offset := 0
	if cursor != nil {
		if cursor.Limit > 0 {
			limit = cursor.Limit
		}
		offset = cursor.Position
	}

	accounts, err := s.engine.ListAccounts(ctx)
	if err != nil {
		return nil, nil, err
	}
	if offset >= len(accounts) {
		return nil, nil, nil
	}
	accounts = accounts[offset:]

	var nextCursor *AccountCursor
	if len(accounts) > limit {
		accounts = accounts[:limit]
		nextCursor = &AccountCursor{
			Position: offset + limit,
			Limit:    limit,
		}
	}
	return accounts, nextCursor, nil
}
