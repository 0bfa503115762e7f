// Package bankfeed turns bank notifications into pending candidates.
package bankfeed

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/budget-ledger/internal/model"
)

var ErrNotMPesa = errors.New("not a recognised M-PESA message")

// Message is one parsed M-PESA confirmation.
type Message struct {
	Code         string
	Type         model.TransactionType
	Amount       decimal.Decimal
	Counterparty string
	Date         time.Time
	Balance      decimal.Decimal
	Cost         decimal.Decimal
}

const kes = `Ksh[\d,]+(?:\.\d+)?`

var (
	outgoing = regexp.MustCompile(`(?i)(\w+)\s+Confirmed\.?\s+(` + kes + `)\s+(?:sent|paid)\s+to\s+(.*?)\s*\.?\s+on\s+(\d{1,2}/\d{1,2}/\d{2})\s+at\s+(\d{1,2}:\d{2}\s?(?:AM|PM))\.?\s*New\s+(?:M-PESA|business)\s+balance\s+is\s+(` + kes + `)\.\s*Transaction\s+cost,?\s*(` + kes + `)(?:\.|\b)`)
	incoming = regexp.MustCompile(`(?i)(\w+)\s+Confirmed\.?\s*You\s+have\s+received\s+(` + kes + `)\s+from\s+(.*?)\s*\.?\s+on\s+(\d{1,2}/\d{1,2}/\d{2})\s+at\s+(\d{1,2}:\d{2}\s?(?:AM|PM))\.?\s*New\s+(?:M-PESA|business)\s+balance\s+is\s+(` + kes + `)`)
)

// ParseMPesaMessage parses an outgoing ("sent to", "paid to") or incoming
// ("You have received") confirmation. Times are read in loc.
func ParseMPesaMessage(msg string, loc *time.Location) (*Message, error) {
	if loc == nil {
		loc = time.UTC
	}

	var (
		m       []string
		txType  model.TransactionType
		costIdx int
	)
	if m = outgoing.FindStringSubmatch(msg); m != nil {
		txType = model.TransactionTypeExpense
		costIdx = 7
	} else if m = incoming.FindStringSubmatch(msg); m != nil {
		txType = model.TransactionTypeIncome
	} else {
		return nil, ErrNotMPesa
	}

	amount, err := parseKsh(m[2])
	if err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	date, err := parseDateTime(m[4], m[5], loc)
	if err != nil {
		return nil, err
	}
	balance, err := parseKsh(m[6])
	if err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}
	cost := decimal.Zero
	if costIdx > 0 {
		if cost, err = parseKsh(m[costIdx]); err != nil {
			return nil, fmt.Errorf("parse cost: %w", err)
		}
	}

	counterparty := strings.TrimSpace(strings.TrimSuffix(m[3], "."))
	counterparty = strings.Join(strings.Fields(counterparty), " ")

	return &Message{
		Code:         strings.ToUpper(m[1]),
		Type:         txType,
		Amount:       amount,
		Counterparty: counterparty,
		Date:         date,
		Balance:      balance,
		Cost:         cost,
	}, nil
}

func parseKsh(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(strings.ToUpper(s), "KSH")
	return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
}

func parseDateTime(datePart, timePart string, loc *time.Location) (time.Time, error) {
	parts := strings.Split(datePart, "/")
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day: %w", err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("parse month: %w", err)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("parse year: %w", err)
	}

	clock := strings.ToUpper(strings.ReplaceAll(timePart, " ", ""))
	t, err := time.ParseInLocation("3:04PM", clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time: %w", err)
	}
	return time.Date(2000+year, time.Month(month), day, t.Hour(), t.Minute(), 0, 0, loc), nil
}

// Pending converts the message into a candidate for accountID.
func (m *Message) Pending(accountID uuid.UUID) *model.PendingTransaction {
	code := m.Code
	merchant := m.Counterparty
	return &model.PendingTransaction{
		BankTransactionID: &code,
		Amount:            m.Amount,
		DescriptionText:   describe(m),
		MerchantName:      &merchant,
		TransactionDate:   m.Date.UTC(),
		Type:              m.Type,
		AccountID:         accountID,
	}
}

func describe(m *Message) string {
	if m.Type == model.TransactionTypeIncome {
		return "M-PESA from " + m.Counterparty
	}
	return "M-PESA to " + m.Counterparty
}
