package main

import (
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-ledger/internal/config"
	"github.com/carson-networks/budget-ledger/internal/storage/postgres"
)

func main() {
	env, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config.Load")
		return
	}

	store, err := postgres.Open(env, logrus.StandardLogger())
	if err != nil {
		logrus.WithError(err).Fatal("postgres.Open")
		return
	}
	defer store.Close()

	if err := postgres.Migrate(store.DB(), env.MigrationsSource, logrus.StandardLogger()); err != nil {
		logrus.WithError(err).Fatal("postgres.Migrate")
	}
}
