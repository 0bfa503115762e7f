package model

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// PendingStatus is the lifecycle state of an imported candidate.
type PendingStatus string

const (
	PendingStatusPending    PendingStatus = "pending"
	PendingStatusProcessing PendingStatus = "processing"
	PendingStatusProcessed  PendingStatus = "processed"
	PendingStatusDismissed  PendingStatus = "dismissed"
)

// IsValid reports whether the status is part of the lifecycle.
func (s PendingStatus) IsValid() bool {
	switch s {
	case PendingStatusPending, PendingStatusProcessing, PendingStatusProcessed, PendingStatusDismissed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s PendingStatus) IsTerminal() bool {
	return s == PendingStatusProcessed || s == PendingStatusDismissed
}

// CanTransitionTo reports whether a transition from s to next is allowed.
// processing -> processing is a reclaim of a stale promotion.
func (s PendingStatus) CanTransitionTo(next PendingStatus) bool {
	switch s {
	case PendingStatusPending:
		return next == PendingStatusProcessing || next == PendingStatusDismissed
	case PendingStatusProcessing:
		return next == PendingStatusProcessing || next == PendingStatusProcessed || next == PendingStatusPending
	}
	return false
}

// ValidatePendingTransition returns a ConflictDetected error for a transition
// the lifecycle does not allow.
func ValidatePendingTransition(from, to PendingStatus) error {
	if !from.CanTransitionTo(to) {
		return NewConflictError("status", fmt.Sprintf("pending transaction cannot move from %s to %s", from, to))
	}
	return nil
}

// PendingTransaction is a bank-imported candidate awaiting review. It never
// touches balances; only the transaction it is promoted into does.
type PendingTransaction struct {
	ID                  uuid.UUID
	BankTransactionID   *string
	Amount              decimal.Decimal
	DescriptionText     string
	MerchantName        *string
	TransactionDate     time.Time
	Type                TransactionType
	AccountID           uuid.UUID
	SuggestedCategoryID *uuid.UUID
	Confidence          float64
	ImportedAt          time.Time
	Status              PendingStatus
	ProcessingStartedAt *time.Time
	TransactionID       *uuid.UUID
	LastError           string
}

// Clone returns a deep copy.
func (p *PendingTransaction) Clone() *PendingTransaction {
	if p == nil {
		return nil
	}
	c := *p
	if p.BankTransactionID != nil {
		v := *p.BankTransactionID
		c.BankTransactionID = &v
	}
	if p.MerchantName != nil {
		v := *p.MerchantName
		c.MerchantName = &v
	}
	if p.ProcessingStartedAt != nil {
		v := *p.ProcessingStartedAt
		c.ProcessingStartedAt = &v
	}
	c.SuggestedCategoryID = cloneID(p.SuggestedCategoryID)
	c.TransactionID = cloneID(p.TransactionID)
	return &c
}

// Merchant returns the merchant name or "".
func (p *PendingTransaction) Merchant() string {
	if p.MerchantName == nil {
		return ""
	}
	return *p.MerchantName
}
