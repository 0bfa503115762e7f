// Package postgres is the storage.Store backed by PostgreSQL. Queries are
// built with bob and scanned with scan; each batch is one database
// transaction and account balances are serialized with row locks.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/budget-ledger/internal/config"
	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/notify"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

type Store struct {
	reader

	db      *sql.DB
	bobDB   bob.DB
	streams *notify.Streams
	logger  logrus.FieldLogger
}

var _ storage.Store = (*Store)(nil)

// Open connects using the postgres settings in env.
func Open(env *config.Config, logger logrus.FieldLogger) (*Store, error) {
	db, err := sql.Open("postgres", env.PostgresURL())
	if err != nil {
		return nil, model.Persistence("open database", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, model.Persistence("ping database", err)
	}
	return New(db, env.NotifyDebounce, logger), nil
}

// New wraps an open database handle.
func New(db *sql.DB, debounce time.Duration, logger logrus.FieldLogger) *Store {
	bobDB := bob.NewDB(db)
	return &Store{
		reader:  reader{exec: bobDB},
		db:      db,
		bobDB:   bobDB,
		streams: notify.NewStreams(debounce),
		logger:  logger,
	}
}

// DB exposes the handle for migrations.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) PerformBatch(ctx context.Context, fn storage.BatchFunc) error {
	tx, err := s.bobDB.BeginTx(ctx, nil)
	if err != nil {
		return model.Persistence("begin batch", err)
	}

	w := newWriter(tx)
	if err := fn(ctx, w); err != nil {
		s.rollback(tx)
		return err
	}
	if err := ctx.Err(); err != nil {
		s.rollback(tx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return classify("commit batch", err)
	}

	w.changes.Publish(s.streams)
	return nil
}

func (s *Store) rollback(tx bob.Tx) {
	if err := tx.Rollback(context.Background()); err != nil && !errors.Is(err, sql.ErrTxDone) {
		s.logger.WithError(err).Warn("PostgresStore.PerformBatch.rollback failed")
	}
}

// ListTransactions reads parents and children inside one repeatable-read
// transaction so a page never mixes two committed states.
func (s *Store) ListTransactions(ctx context.Context, filter *storage.TransactionFilter) ([]*model.Transaction, error) {
	tx, err := s.bobDB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, model.Persistence("begin snapshot", err)
	}
	defer s.rollback(tx)

	r := reader{exec: tx}
	return r.ListTransactions(ctx, filter)
}

func (s *Store) Streams() *notify.Streams {
	return s.streams
}

func (s *Store) Close() error {
	s.streams.Close()
	return s.db.Close()
}
