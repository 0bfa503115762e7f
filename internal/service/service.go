package service

import (
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/pending"
)

// Service holds all business logic services.
type Service struct {
	Transaction *TransactionService
	Account     *AccountService
	Category    *CategoryService
	Pending     *PendingService
}

// NewService creates a new Service on top of the ledger engine and the
// pending import queue.
func NewService(engine *ledger.Engine, queue *pending.Queue) *Service {
	return &Service{
		Transaction: NewTransactionService(engine),
		Account:     NewAccountService(engine),
		Category:    NewCategoryService(engine),
		Pending:     NewPendingService(queue),
	}
}
