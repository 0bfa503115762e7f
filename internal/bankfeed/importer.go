package bankfeed

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-ledger/internal/model"
)

// PendingCreator is the part of the pending queue an import needs.
type PendingCreator interface {
	Create(ctx context.Context, p *model.PendingTransaction) (*model.PendingTransaction, error)
}

type Summary struct {
	Imported   int
	Duplicates int
	Unparsed   int
}

// Importer feeds M-PESA messages for one account into the pending queue.
type Importer struct {
	queue     PendingCreator
	accountID uuid.UUID
	location  *time.Location
	logger    logrus.FieldLogger
}

func NewImporter(queue PendingCreator, accountID uuid.UUID, location *time.Location, logger logrus.FieldLogger) *Importer {
	return &Importer{
		queue:     queue,
		accountID: accountID,
		location:  location,
		logger:    logger,
	}
}

// Import parses and queues every message. Messages that do not parse and
// codes that were already imported are counted, not treated as failures.
func (i *Importer) Import(ctx context.Context, messages []string) (Summary, error) {
	var summary Summary
	for _, msg := range messages {
		parsed, err := ParseMPesaMessage(msg, i.location)
		if err != nil {
			summary.Unparsed++
			i.logger.WithError(err).Debug("Importer.Import.unparsed")
			continue
		}

		_, err = i.queue.Create(ctx, parsed.Pending(i.accountID))
		switch {
		case errors.Is(err, model.ErrConflict):
			summary.Duplicates++
		case err != nil:
			return summary, err
		default:
			summary.Imported++
		}
	}

	i.logger.WithFields(logrus.Fields{
		"accountID":  i.accountID,
		"imported":   summary.Imported,
		"duplicates": summary.Duplicates,
		"unparsed":   summary.Unparsed,
	}).Info("Importer.Import.done")
	return summary, nil
}

// ReadMessages splits an SMS export into messages, one per non-blank line.
func ReadMessages(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, scanner.Err()
}
