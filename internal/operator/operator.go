package operator

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-ledger/internal/operator/actions"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

// Processor runs an action as one atomic batch.
type Processor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// Operator is the worker that processes items from the queue.
type Operator struct {
	store  storage.Store
	queue  chan ActionItem
	logger logrus.FieldLogger
}

func NewOperator(s storage.Store, queue chan ActionItem, logger logrus.FieldLogger) *Operator {
	return &Operator{
		store:  s,
		queue:  queue,
		logger: logger,
	}
}

// Run listens to the queue and processes items. Exits when the queue is closed.
func (o *Operator) Run() {
	for item := range o.queue {
		o.processItem(item)
	}
}

func (o *Operator) processItem(item ActionItem) {
	// the caller gave up while the item sat in the queue
	if err := item.ctx.Err(); err != nil {
		item.response <- ActionItemResponse{err: err}
		return
	}

	err := o.store.PerformBatch(item.ctx, item.action.Perform)
	if err != nil {
		o.logger.WithError(err).Debug("Operator.processItem.rolledBack")
	}
	item.response <- ActionItemResponse{err: err}
}

type ActionItem struct {
	ctx      context.Context
	action   actions.IAction
	response chan ActionItemResponse
}

type ActionItemResponse struct {
	err error
}

// Direct runs actions inline on the calling goroutine. The store still
// serializes conflicting batches.
type Direct struct {
	Store storage.Store
}

func (d Direct) Process(ctx context.Context, action actions.IAction) error {
	return d.Store.PerformBatch(ctx, action.Perform)
}
