// Package pending admits bank-imported candidates into the ledger. A
// candidate moves pending -> processing -> processed, or to dismissed, and
// is turned into a transaction at most once.
package pending

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-ledger/internal/categorize"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/operator/actions"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

// DefaultStaleAfter is how long a candidate may sit in processing before
// another promotion may reclaim it.
const DefaultStaleAfter = 10 * time.Minute

// PromotionID is the id of the transaction a candidate is promoted into.
func PromotionID(pendingID uuid.UUID) uuid.UUID {
	return uuid.NewV5(pendingID, "promotion")
}

type Queue struct {
	engine      *ledger.Engine
	categorizer categorize.Categorizer
	staleAfter  time.Duration
	logger      logrus.FieldLogger
}

type Option func(*Queue)

func WithCategorizer(c categorize.Categorizer) Option {
	return func(q *Queue) {
		q.categorizer = c
	}
}

func WithStaleAfter(d time.Duration) Option {
	return func(q *Queue) {
		q.staleAfter = d
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

func NewQueue(engine *ledger.Engine, opts ...Option) *Queue {
	q := &Queue{
		engine:     engine,
		staleAfter: DefaultStaleAfter,
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Create records a new candidate in pending status. A candidate whose
// bankTransactionId is already known is rejected with ConflictDetected.
func (q *Queue) Create(ctx context.Context, p *model.PendingTransaction) (*model.PendingTransaction, error) {
	candidate := p.Clone()
	if err := validateCandidate(candidate); err != nil {
		return nil, err
	}
	if candidate.ID == uuid.Nil {
		candidate.ID = uuid.Must(uuid.NewV4())
	}
	candidate.ImportedAt = q.engine.Now()
	if candidate.TransactionDate.IsZero() {
		candidate.TransactionDate = candidate.ImportedAt
	}
	candidate.Status = model.PendingStatusPending
	candidate.ProcessingStartedAt = nil
	candidate.TransactionID = nil
	candidate.LastError = ""

	if candidate.SuggestedCategoryID == nil && q.categorizer != nil {
		candidate.SuggestedCategoryID, candidate.Confidence = q.categorizer.SuggestCategory(candidate.DescriptionText, candidate.Merchant())
	}

	err := q.engine.Processor().Process(ctx, actions.ActionFunc(func(ctx context.Context, w storage.Writer) error {
		if _, err := w.GetAccount(ctx, candidate.AccountID); err != nil {
			return err
		}
		if candidate.SuggestedCategoryID != nil {
			if _, err := w.GetCategory(ctx, *candidate.SuggestedCategoryID); err != nil {
				return err
			}
		}
		if candidate.BankTransactionID != nil {
			existing, err := w.FindPendingByBankID(ctx, *candidate.BankTransactionID)
			if err != nil {
				return err
			}
			if existing != nil {
				return model.NewConflictError("bankTransactionId", "bank transaction "+*candidate.BankTransactionID+" was already imported")
			}
		}
		return w.InsertPending(ctx, candidate)
	}))
	if err != nil {
		return nil, err
	}

	q.logger.WithFields(logrus.Fields{
		"pendingID":  candidate.ID,
		"accountID":  candidate.AccountID,
		"confidence": candidate.Confidence,
	}).Debug("PendingQueue.Create.imported")
	return candidate, nil
}

func validateCandidate(p *model.PendingTransaction) error {
	if !p.Amount.IsPositive() {
		return model.NewValidationError("amount", "amount must be greater than zero")
	}
	if p.Type != model.TransactionTypeExpense && p.Type != model.TransactionTypeIncome {
		return model.NewValidationError("type", "imported transactions are expenses or income")
	}
	if p.AccountID == uuid.Nil {
		return model.NewValidationError("account", "an imported transaction needs an account")
	}
	if p.BankTransactionID != nil {
		id := strings.TrimSpace(*p.BankTransactionID)
		if id == "" {
			p.BankTransactionID = nil
		} else {
			p.BankTransactionID = &id
		}
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return model.NewValidationError("confidence", "confidence must be between 0 and 1")
	}
	return nil
}

// Result is the outcome of a promotion.
type Result struct {
	Pending *model.PendingTransaction
	// Transaction is nil when a replayed promotion's transaction has since
	// been deleted.
	Transaction *model.Transaction
	// Replayed is set when the candidate had already been processed.
	Replayed bool
}

// Process promotes candidate id into a ledger transaction. as overrides the
// fields derived from the candidate and may be nil. Processing an already
// processed candidate returns the existing transaction and changes nothing.
func (q *Queue) Process(ctx context.Context, id uuid.UUID, as *model.Transaction) (*Result, error) {
	log := q.logger.WithField("pendingID", id)

	claimed, result, err := q.claim(ctx, id)
	if err != nil || result != nil {
		return result, err
	}

	tx, err := q.promote(ctx, claimed, as)
	if err != nil {
		log.WithError(err).Warn("PendingQueue.Process.failed")
		if releaseErr := q.release(context.WithoutCancel(ctx), claimed, err); releaseErr != nil {
			log.WithError(releaseErr).Error("PendingQueue.Process.releaseFailed")
		}
		return nil, err
	}

	processed, err := q.engine.Store().GetPending(ctx, id)
	if err != nil {
		return nil, err
	}
	log.WithField("transactionID", tx.ID).Info("PendingQueue.Process.promoted")

	q.learn(claimed, tx)
	return &Result{Pending: processed, Transaction: tx}, nil
}

// claim durably moves the candidate to processing. It returns a Result
// instead when the candidate was already processed.
func (q *Queue) claim(ctx context.Context, id uuid.UUID) (*model.PendingTransaction, *Result, error) {
	var (
		claimed *model.PendingTransaction
		replay  *Result
	)
	err := q.engine.Processor().Process(ctx, actions.ActionFunc(func(ctx context.Context, w storage.Writer) error {
		claimed, replay = nil, nil

		p, err := w.GetPending(ctx, id)
		if err != nil {
			return err
		}
		// stored timestamps keep microseconds; the claim is compared after a round trip
		now := q.engine.Now().Truncate(time.Microsecond)

		switch p.Status {
		case model.PendingStatusProcessed:
			replay = &Result{Pending: p, Replayed: true}
			if p.TransactionID == nil {
				return nil
			}
			tx, err := w.GetTransaction(ctx, *p.TransactionID)
			if err != nil && !errors.Is(err, model.ErrEntityNotFound) {
				return err
			}
			replay.Transaction = tx
			return nil
		case model.PendingStatusProcessing:
			if p.ProcessingStartedAt != nil && now.Sub(*p.ProcessingStartedAt) < q.staleAfter {
				return model.NewConflictError("status", "pending transaction is already being processed")
			}
			q.logger.WithFields(logrus.Fields{
				"pendingID":           id,
				"processingStartedAt": p.ProcessingStartedAt,
			}).Warn("PendingQueue.claim.reclaimStale")
		}

		if err := model.ValidatePendingTransition(p.Status, model.PendingStatusProcessing); err != nil {
			return err
		}
		p.Status = model.PendingStatusProcessing
		p.ProcessingStartedAt = &now
		if err := w.UpdatePending(ctx, p); err != nil {
			return err
		}
		claimed = p
		return nil
	}))
	if err != nil {
		return nil, nil, err
	}
	return claimed, replay, nil
}

// promote creates the transaction and marks the candidate processed in one
// batch. A transaction already carrying the promotion id is adopted instead
// of created again.
func (q *Queue) promote(ctx context.Context, claimed *model.PendingTransaction, as *model.Transaction) (*model.Transaction, error) {
	var created *model.Transaction
	err := q.engine.Processor().Process(ctx, actions.ActionFunc(func(ctx context.Context, w storage.Writer) error {
		p, err := w.GetPending(ctx, claimed.ID)
		if err != nil {
			return err
		}
		if !sameClaim(p, claimed) {
			return model.NewConflictError("status", "pending transaction was reclaimed by another promotion")
		}

		txID := PromotionID(p.ID)
		created, err = w.GetTransaction(ctx, txID)
		switch {
		case errors.Is(err, model.ErrEntityNotFound):
			created, err = q.engine.CreateTransactionTx(ctx, w, transactionFor(p, as, txID))
			if err != nil {
				return err
			}
		case err != nil:
			return err
		}

		if err := model.ValidatePendingTransition(p.Status, model.PendingStatusProcessed); err != nil {
			return err
		}
		p.Status = model.PendingStatusProcessed
		p.TransactionID = model.IDPtr(created.ID)
		p.LastError = ""
		return w.UpdatePending(ctx, p)
	}))
	if err != nil {
		return nil, err
	}
	return created, nil
}

// release puts a failed candidate back to pending with the failure recorded,
// unless someone else has claimed it since.
func (q *Queue) release(ctx context.Context, claimed *model.PendingTransaction, cause error) error {
	return q.engine.Processor().Process(ctx, actions.ActionFunc(func(ctx context.Context, w storage.Writer) error {
		p, err := w.GetPending(ctx, claimed.ID)
		if err != nil {
			return err
		}
		if !sameClaim(p, claimed) {
			return nil
		}
		p.Status = model.PendingStatusPending
		p.ProcessingStartedAt = nil
		p.LastError = cause.Error()
		return w.UpdatePending(ctx, p)
	}))
}

func sameClaim(p, claimed *model.PendingTransaction) bool {
	return p.Status == model.PendingStatusProcessing &&
		p.ProcessingStartedAt != nil && claimed.ProcessingStartedAt != nil &&
		p.ProcessingStartedAt.Equal(*claimed.ProcessingStartedAt)
}

// transactionFor builds the transaction a candidate becomes. Fields set on
// as win over the candidate's.
func transactionFor(p *model.PendingTransaction, as *model.Transaction, id uuid.UUID) *model.Transaction {
	tx := &model.Transaction{}
	if as != nil {
		tx = as.Clone()
	}
	tx.ID = id
	if tx.Type == "" {
		tx.Type = p.Type
	}
	if tx.Amount.IsZero() && len(tx.SplitTransactions) == 0 {
		tx.Amount = p.Amount
	}
	if tx.CategoryID == nil && len(tx.SplitTransactions) == 0 && p.SuggestedCategoryID != nil {
		tx.CategoryID = model.IDPtr(*p.SuggestedCategoryID)
	}
	if tx.Description == "" {
		tx.Description = p.DescriptionText
		if tx.Description == "" {
			tx.Description = p.Merchant()
		}
	}
	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = p.TransactionDate
	}
	if tx.FromAccountID == nil && tx.ToAccountID == nil {
		switch tx.Type {
		case model.TransactionTypeIncome, model.TransactionTypeTransferIn:
			tx.ToAccountID = model.IDPtr(p.AccountID)
		default:
			tx.FromAccountID = model.IDPtr(p.AccountID)
		}
	}
	tx.Version = 0
	return tx
}

// learn tells the categorizer about the category the user settled on. It
// never blocks or fails a promotion.
func (q *Queue) learn(p *model.PendingTransaction, tx *model.Transaction) {
	if q.categorizer == nil {
		return
	}
	final := tx.PrimaryCategory()
	if final == nil {
		return
	}
	if p.SuggestedCategoryID != nil && *p.SuggestedCategoryID == *final && p.Confidence >= categorize.ConfidenceLearned {
		return
	}

	description, merchant, categoryID := p.DescriptionText, p.Merchant(), *final
	go func() {
		defer func() {
			if r := recover(); r != nil {
				q.logger.WithField("pendingID", p.ID).Error(fmt.Sprintf("PendingQueue.learn.panic: %v", r))
			}
		}()
		q.categorizer.LearnFromCorrection(description, merchant, categoryID)
	}()
}

// Dismiss marks a candidate as rejected. Dismissing twice is a no-op.
func (q *Queue) Dismiss(ctx context.Context, id uuid.UUID) (*model.PendingTransaction, error) {
	var dismissed *model.PendingTransaction
	err := q.engine.Processor().Process(ctx, actions.ActionFunc(func(ctx context.Context, w storage.Writer) error {
		p, err := w.GetPending(ctx, id)
		if err != nil {
			return err
		}
		if p.Status == model.PendingStatusDismissed {
			dismissed = p
			return nil
		}
		if err := model.ValidatePendingTransition(p.Status, model.PendingStatusDismissed); err != nil {
			return err
		}
		p.Status = model.PendingStatusDismissed
		if err := w.UpdatePending(ctx, p); err != nil {
			return err
		}
		dismissed = p
		return nil
	}))
	if err != nil {
		return nil, err
	}
	q.logger.WithField("pendingID", id).Debug("PendingQueue.Dismiss.dismissed")
	return dismissed, nil
}

func (q *Queue) Get(ctx context.Context, id uuid.UUID) (*model.PendingTransaction, error) {
	return q.engine.Store().GetPending(ctx, id)
}

// List returns candidates, optionally narrowed to one account and status.
func (q *Queue) List(ctx context.Context, accountID *uuid.UUID, status *model.PendingStatus) ([]*model.PendingTransaction, error) {
	if status != nil && !status.IsValid() {
		return nil, model.NewValidationError("status", "unknown status "+string(*status))
	}
	return q.engine.Store().ListPending(ctx, &storage.PendingFilter{AccountID: accountID, Status: status})
}

// RecoverStuck resolves candidates left in processing since before cutoff,
// typically by a crash mid-promotion. A candidate whose transaction exists
// becomes processed; any other goes back to pending.
func (q *Queue) RecoverStuck(ctx context.Context, cutoff time.Time) (int, error) {
	status := model.PendingStatusProcessing
	stuck, err := q.engine.Store().ListPending(ctx, &storage.PendingFilter{Status: &status, ProcessingBefore: &cutoff})
	if err != nil {
		return 0, err
	}

	recovered := 0
	for _, candidate := range stuck {
		err := q.engine.Processor().Process(ctx, actions.ActionFunc(func(ctx context.Context, w storage.Writer) error {
			p, err := w.GetPending(ctx, candidate.ID)
			if err != nil {
				return err
			}
			if !sameClaim(p, candidate) {
				return nil
			}

			txID := PromotionID(p.ID)
			_, err = w.GetTransaction(ctx, txID)
			switch {
			case err == nil:
				p.Status = model.PendingStatusProcessed
				p.TransactionID = model.IDPtr(txID)
				p.LastError = ""
			case errors.Is(err, model.ErrEntityNotFound):
				p.Status = model.PendingStatusPending
				p.ProcessingStartedAt = nil
				p.LastError = "promotion was interrupted"
			default:
				return err
			}
			return w.UpdatePending(ctx, p)
		}))
		if err != nil {
			return recovered, err
		}
		recovered++
		q.logger.WithField("pendingID", candidate.ID).Info("PendingQueue.RecoverStuck.recovered")
	}
	return recovered, nil
}
