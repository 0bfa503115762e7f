package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/budget-ledger/api"
	"github.com/carson-networks/budget-ledger/internal/bankfeed"
	"github.com/carson-networks/budget-ledger/internal/config"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/service"
	"github.com/carson-networks/budget-ledger/internal/storage/postgres"
)

func main() {
	logger := logging.SetupLogging()

	cliApp := &cli.App{
		Name:  "ledgerctl",
		Usage: "transaction ledger and balance reconciliation",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: func(c *cli.Context) error { return serve(c.Context, logger) },
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations",
				Action: func(c *cli.Context) error { return migrateDB(logger) },
			},
			{
				Name:      "import-sms",
				Usage:     "queue M-PESA confirmation messages as pending transactions",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "account", Usage: "account UUID, defaults to the default account"},
				},
				Action: func(c *cli.Context) error {
					return importSMS(c.Context, logger, c.Args().First(), c.String("account"))
				},
			},
			{
				Name:  "reconcile",
				Usage: "check every stored balance against its transactions",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "verbose", Usage: "dump the full report"},
				},
				Action: func(c *cli.Context) error { return reconcile(c.Context, logger, c.Bool("verbose")) },
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		logger.WithError(err).Fatal("ledgerctl")
	}
}

func serve(ctx context.Context, logger *logrus.Logger) error {
	logger.Info("budget-ledger starting")

	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	g, ctx := errgroup.WithContext(ctx)
	if err := a.start(ctx); err != nil {
		return err
	}

	httpRest := api.Rest{
		Logger:  logger,
		Port:    a.env.HTTPPort,
		Service: service.NewService(a.engine, a.queue),
		Store:   a.store,
	}
	g.Go(func() error {
		return httpRest.Serve(ctx)
	})
	g.Go(func() error {
		<-a.index.Done()
		if ctx.Err() == nil {
			return errors.New("cache index stopped")
		}
		return nil
	})
	return g.Wait()
}

func migrateDB(logger *logrus.Logger) error {
	env, err := config.Load()
	if err != nil {
		return err
	}
	store, err := postgres.Open(env, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	return postgres.Migrate(store.DB(), env.MigrationsSource, logger)
}

func importSMS(ctx context.Context, logger *logrus.Logger, path, accountFlag string) error {
	if path == "" {
		return errors.New("import-sms: missing file argument")
	}

	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.start(ctx); err != nil {
		return err
	}

	var accountID uuid.UUID
	if accountFlag != "" {
		if accountID, err = uuid.FromString(accountFlag); err != nil {
			return fmt.Errorf("import-sms: account: %w", err)
		}
	} else {
		def, err := a.engine.GetDefaultAccount(ctx)
		if err != nil {
			return err
		}
		accountID = def.ID
	}

	loc, err := a.smsLocation()
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	messages, err := bankfeed.ReadMessages(f)
	if err != nil {
		return err
	}

	summary, err := bankfeed.NewImporter(a.queue, accountID, loc, logger).Import(ctx, messages)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d, duplicates %d, unparsed %d\n", summary.Imported, summary.Duplicates, summary.Unparsed)
	return nil
}

func reconcile(ctx context.Context, logger *logrus.Logger, verbose bool) error {
	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.engine.Reconcile(ctx)
	if err != nil {
		return err
	}
	if verbose {
		spew.Dump(report)
	}

	fmt.Printf("%d accounts, %d transactions\n", report.Accounts, report.Transactions)
	for _, d := range report.Drift {
		fmt.Printf("  %s: stored %s, expected %s (off by %s)\n",
			d.Name, d.Stored.StringFixed(2), d.Expected.StringFixed(2), d.Difference().StringFixed(2))
	}
	for _, o := range report.Orphans {
		fmt.Printf("  transaction %s moves missing account %s by %s\n", o.TransactionID, o.AccountID, o.Delta)
	}
	if !report.Balanced() {
		return errors.New("reconcile: balances drifted")
	}
	return nil
}
