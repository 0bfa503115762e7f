package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-ledger/internal/cache"
	"github.com/carson-networks/budget-ledger/internal/categorize"
	"github.com/carson-networks/budget-ledger/internal/config"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/operator"
	"github.com/carson-networks/budget-ledger/internal/pending"
	"github.com/carson-networks/budget-ledger/internal/storage"
	"github.com/carson-networks/budget-ledger/internal/storage/memory"
	"github.com/carson-networks/budget-ledger/internal/storage/postgres"
)

// app holds everything a command needs, wired from the configuration.
type app struct {
	env       *config.Config
	logger    *logrus.Logger
	store     storage.Store
	delegator *operator.OperatorDelegator
	engine    *ledger.Engine
	index     *cache.Index
	queue     *pending.Queue
}

func newApp(logger *logrus.Logger) (*app, error) {
	env, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logging.SetLevel(logger, env.LogLevel); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	store, err := openStore(env, logger)
	if err != nil {
		return nil, err
	}

	delegator := operator.NewOperatorDelegator(store, env.OperatorWorkers, logger)
	delegator.Start()

	engine := ledger.NewEngine(store, delegator,
		ledger.WithLogger(logger),
		ledger.WithDeletePolicy(ledger.DeletePolicy(env.AccountDeletePolicy)),
	)

	a := &app{
		env:       env,
		logger:    logger,
		store:     store,
		delegator: delegator,
		engine:    engine,
		index:     cache.NewIndex(store, logger),
	}

	queueOpts := []pending.Option{
		pending.WithStaleAfter(env.PendingStaleAfter),
		pending.WithLogger(logger),
	}
	if env.CategoryRules != "" {
		rules, err := categorize.LoadRules(env.CategoryRules)
		if err != nil {
			a.Close()
			return nil, err
		}
		queueOpts = append(queueOpts, pending.WithCategorizer(categorize.NewRuleCategorizer(rules, a.index)))
	}
	a.queue = pending.NewQueue(engine, queueOpts...)
	return a, nil
}

func openStore(env *config.Config, logger *logrus.Logger) (storage.Store, error) {
	if env.Store == config.StoreMemory {
		logger.Warn("App.openStore.memory: nothing is persisted")
		return memory.New(env.NotifyDebounce), nil
	}
	return postgres.Open(env, logger)
}

// start warms the read cache, makes sure a default account exists and
// resolves promotions a previous run left half done.
func (a *app) start(ctx context.Context) error {
	if err := a.index.Start(ctx); err != nil {
		return err
	}

	def, err := a.engine.EnsureDefaultAccount(ctx, &model.Account{
		Name:     "Cash",
		Tag:      "#cash",
		Type:     model.AccountTypeCash,
		Currency: a.env.DefaultCurrency,
	})
	if err != nil {
		return err
	}
	a.logger.WithField("accountID", def.ID).Debug("App.start.defaultAccount")

	recovered, err := a.queue.RecoverStuck(ctx, a.engine.Now().Add(-a.env.PendingStaleAfter))
	if err != nil {
		return err
	}
	if recovered > 0 {
		a.logger.WithField("recovered", recovered).Info("App.start.recoveredPending")
	}
	return nil
}

func (a *app) smsLocation() (*time.Location, error) {
	return time.LoadLocation(a.env.SMSTimezone)
}

func (a *app) Close() {
	a.delegator.Stop()
	if err := a.store.Close(); err != nil {
		a.logger.WithError(err).Error("App.Close.store")
	}
}
