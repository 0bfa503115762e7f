package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/pending"
)

// PendingService exposes the import queue.
type PendingService struct {
	queue *pending.Queue
}

func NewPendingService(queue *pending.Queue) *PendingService {
	return &PendingService{queue: queue}
}

func (s *PendingService) CreatePending(ctx context.Context, p *model.PendingTransaction) (*model.PendingTransaction, error) {
	return s.queue.Create(ctx, p)
}

// ProcessPending promotes a candidate. as may be nil to take the
// candidate's own fields.
func (s *PendingService) ProcessPending(ctx context.Context, id uuid.UUID, as *model.Transaction) (*pending.Result, error) {
	return s.queue.Process(ctx, id, as)
}

func (s *PendingService) DismissPending(ctx context.Context, id uuid.UUID) (*model.PendingTransaction, error) {
	return s.queue.Dismiss(ctx, id)
}

func (s *PendingService) ListPending(ctx context.Context, accountID *uuid.UUID, status *model.PendingStatus) ([]*model.PendingTransaction, error) {
	return s.queue.List(ctx, accountID, status)
}
