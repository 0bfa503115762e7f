package storage

import (
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/notify"
)

// ChangeLog records the ids a batch touched so they can be published once
// the batch commits.
type ChangeLog struct {
	Transactions []uuid.UUID
	Accounts     []uuid.UUID
	Categories   []uuid.UUID
	Pending      []uuid.UUID
}

// Publish pushes non-empty change sets to streams.
func (c *ChangeLog) Publish(streams *notify.Streams) {
	if streams == nil {
		return
	}
	if len(c.Transactions) > 0 {
		streams.Transactions.Publish(notify.ChangeSet{IDs: c.Transactions})
	}
	if len(c.Accounts) > 0 {
		streams.Accounts.Publish(notify.ChangeSet{IDs: c.Accounts})
	}
	if len(c.Categories) > 0 {
		streams.Categories.Publish(notify.ChangeSet{IDs: c.Categories})
	}
	if len(c.Pending) > 0 {
		streams.Pending.Publish(notify.ChangeSet{IDs: c.Pending})
	}
}
