package notify

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// ChangeSet names the entities a committed batch touched.
type ChangeSet struct {
	IDs []uuid.UUID
}

// Contains reports whether id is part of the change set.
func (c ChangeSet) Contains(id uuid.UUID) bool {
	for _, v := range c.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// MergeChangeSets is the union of two change sets, preserving first-seen order.
func MergeChangeSets(a, b ChangeSet) ChangeSet {
	seen := make(map[uuid.UUID]struct{}, len(a.IDs)+len(b.IDs))
	out := make([]uuid.UUID, 0, len(a.IDs)+len(b.IDs))
	for _, set := range [][]uuid.UUID{a.IDs, b.IDs} {
		for _, id := range set {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return ChangeSet{IDs: out}
}

// Streams are the change feeds a store publishes after each commit.
type Streams struct {
	Transactions *Publisher[ChangeSet]
	Accounts     *Publisher[ChangeSet]
	Categories   *Publisher[ChangeSet]
	Pending      *Publisher[ChangeSet]
}

func NewStreams(debounce time.Duration) *Streams {
	return &Streams{
		Transactions: NewPublisher(MergeChangeSets, debounce),
		Accounts:     NewPublisher(MergeChangeSets, debounce),
		Categories:   NewPublisher(MergeChangeSets, debounce),
		Pending:      NewPublisher(MergeChangeSets, debounce),
	}
}

// Close closes every stream.
func (s *Streams) Close() {
	s.Transactions.Close()
	s.Accounts.Close()
	s.Categories.Close()
	s.Pending.Close()
}
