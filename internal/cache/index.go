// Package cache keeps an id-keyed copy of accounts and categories that is
// refreshed per changed entity from the store's change streams.
package cache

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/notify"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

type Index struct {
	store  storage.Store
	logger logrus.FieldLogger

	mu         sync.RWMutex
	accounts   map[uuid.UUID]*model.Account
	categories map[uuid.UUID]*model.Category
	byName     map[string]uuid.UUID

	done chan struct{}
}

func NewIndex(store storage.Store, logger logrus.FieldLogger) *Index {
	return &Index{
		store:      store,
		logger:     logger,
		accounts:   make(map[uuid.UUID]*model.Account),
		categories: make(map[uuid.UUID]*model.Category),
		byName:     make(map[string]uuid.UUID),
		done:       make(chan struct{}),
	}
}

// Start subscribes to the change streams, loads everything once and then
// keeps the index current until ctx is done.
func (i *Index) Start(ctx context.Context) error {
	accountChanges := i.store.Streams().Accounts.Subscribe(ctx)
	categoryChanges := i.store.Streams().Categories.Subscribe(ctx)

	if err := i.Warm(ctx); err != nil {
		return err
	}

	go i.follow(ctx, accountChanges, categoryChanges)
	return nil
}

// Done is closed once the index stops following changes.
func (i *Index) Done() <-chan struct{} {
	return i.done
}

// Warm replaces the index contents with a full read.
func (i *Index) Warm(ctx context.Context) error {
	var (
		accounts   []*model.Account
		categories []*model.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = i.store.ListAccounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = i.store.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.accounts = make(map[uuid.UUID]*model.Account, len(accounts))
	for _, a := range accounts {
		i.accounts[a.ID] = a
	}
	i.categories = make(map[uuid.UUID]*model.Category, len(categories))
	i.byName = make(map[string]uuid.UUID, len(categories))
	for _, c := range categories {
		i.categories[c.ID] = c
		i.byName[strings.ToLower(c.Name)] = c.ID
	}
	i.logger.WithFields(logrus.Fields{
		"accounts":   len(accounts),
		"categories": len(categories),
	}).Debug("Index.Warm.loaded")
	return nil
}

func (i *Index) follow(ctx context.Context, accounts, categories <-chan notify.ChangeSet) {
	defer close(i.done)
	for accounts != nil || categories != nil {
		select {
		case set, ok := <-accounts:
			if !ok {
				accounts = nil
				continue
			}
			if err := i.RefreshAccounts(ctx, set.IDs); err != nil {
				i.logger.WithError(err).Warn("Index.follow.refreshAccounts")
			}
		case set, ok := <-categories:
			if !ok {
				categories = nil
				continue
			}
			if err := i.RefreshCategories(ctx, set.IDs); err != nil {
				i.logger.WithError(err).Warn("Index.follow.refreshCategories")
			}
		}
	}
}

// RefreshAccounts re-reads only ids; ids that no longer exist are dropped.
func (i *Index) RefreshAccounts(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		a, err := i.store.GetAccount(ctx, id)
		switch {
		case errors.Is(err, model.ErrEntityNotFound):
			i.mu.Lock()
			delete(i.accounts, id)
			i.mu.Unlock()
		case err != nil:
			return err
		default:
			i.mu.Lock()
			i.accounts[id] = a
			i.mu.Unlock()
		}
	}
	return nil
}

func (i *Index) RefreshCategories(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		c, err := i.store.GetCategory(ctx, id)
		if err != nil && !errors.Is(err, model.ErrEntityNotFound) {
			return err
		}

		i.mu.Lock()
		if old, ok := i.categories[id]; ok {
			delete(i.byName, strings.ToLower(old.Name))
			delete(i.categories, id)
		}
		if c != nil {
			i.categories[id] = c
			i.byName[strings.ToLower(c.Name)] = id
		}
		i.mu.Unlock()
	}
	return nil
}

func (i *Index) Account(id uuid.UUID) (*model.Account, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	a, ok := i.accounts[id]
	return a.Clone(), ok
}

// Accounts returns every cached account ordered by name.
func (i *Index) Accounts() []*model.Account {
	i.mu.RLock()
	out := make([]*model.Account, 0, len(i.accounts))
	for _, a := range i.accounts {
		out = append(out, a.Clone())
	}
	i.mu.RUnlock()
	sort.Slice(out, func(a, b int) bool {
		return out[a].Name < out[b].Name
	})
	return out
}

func (i *Index) Category(id uuid.UUID) (*model.Category, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	c, ok := i.categories[id]
	return c.Clone(), ok
}

// CategoryByName looks a category up by name, ignoring case.
func (i *Index) CategoryByName(name string) (*model.Category, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	id, ok := i.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return i.categories[id].Clone(), true
}
