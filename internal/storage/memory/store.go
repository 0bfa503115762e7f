// Package memory is an in-process storage.Store. Batches are serialized and
// stage their writes in an overlay; readers always see the last committed
// state and never a batch in flight.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/notify"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

var errClosed = errors.New("store is closed")

// Store keeps every table in memory.
type Store struct {
	// writeMu serializes batches. mu guards the committed tables.
	writeMu sync.Mutex
	mu      sync.RWMutex
	closed  bool

	accounts     *table[*model.Account]
	categories   *table[*model.Category]
	transactions *table[*model.Transaction]
	pending      *table[*model.PendingTransaction]

	streams *notify.Streams
}

var _ storage.Store = (*Store)(nil)

// New creates an empty store whose change streams debounce by debounce.
func New(debounce time.Duration) *Store {
	return &Store{
		accounts:     newTable((*model.Account).Clone),
		categories:   newTable((*model.Category).Clone),
		transactions: newTable((*model.Transaction).Row),
		pending:      newTable((*model.PendingTransaction).Clone),
		streams:      notify.NewStreams(debounce),
	}
}

// PerformBatch runs fn against a staging overlay and folds it into the
// committed tables when fn succeeds and ctx is still live.
func (s *Store) PerformBatch(ctx context.Context, fn storage.BatchFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed {
		return model.Persistence("perform batch", errClosed)
	}

	w := newWriter(s)
	if err := fn(ctx, w); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	w.commit()
	s.mu.Unlock()

	changes := w.changes()
	changes.Publish(s.streams)
	return nil
}

func (s *Store) Streams() *notify.Streams {
	return s.streams
}

func (s *Store) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.streams.Close()
	return nil
}

// snapshot returns a reader over committed state. The caller must call the
// returned release func once done.
func (s *Store) snapshot() (*reader, func()) {
	s.mu.RLock()
	return &reader{
		accounts:     s.accounts,
		categories:   s.categories,
		transactions: s.transactions,
		pending:      s.pending,
	}, s.mu.RUnlock
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	r, release := s.snapshot()
	defer release()
	return r.GetAccount(ctx, id)
}

func (s *Store) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	r, release := s.snapshot()
	defer release()
	return r.ListAccounts(ctx)
}

func (s *Store) GetDefaultAccount(ctx context.Context) (*model.Account, error) {
	r, release := s.snapshot()
	defer release()
	return r.GetDefaultAccount(ctx)
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	r, release := s.snapshot()
	defer release()
	return r.GetCategory(ctx, id)
}

func (s *Store) ListCategories(ctx context.Context) ([]*model.Category, error) {
	r, release := s.snapshot()
	defer release()
	return r.ListCategories(ctx)
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	r, release := s.snapshot()
	defer release()
	return r.GetTransaction(ctx, id)
}

func (s *Store) ListTransactions(ctx context.Context, filter *storage.TransactionFilter) ([]*model.Transaction, error) {
	r, release := s.snapshot()
	defer release()
	return r.ListTransactions(ctx, filter)
}

func (s *Store) GetPending(ctx context.Context, id uuid.UUID) (*model.PendingTransaction, error) {
	r, release := s.snapshot()
	defer release()
	return r.GetPending(ctx, id)
}

func (s *Store) ListPending(ctx context.Context, filter *storage.PendingFilter) ([]*model.PendingTransaction, error) {
	r, release := s.snapshot()
	defer release()
	return r.ListPending(ctx, filter)
}

func (s *Store) FindPendingByBankID(ctx context.Context, bankID string) (*model.PendingTransaction, error) {
	r, release := s.snapshot()
	defer release()
	return r.FindPendingByBankID(ctx, bankID)
}
