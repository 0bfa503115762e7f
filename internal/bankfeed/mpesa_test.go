package bankfeed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/operator"
	"github.com/carson-networks/budget-ledger/internal/pending"
	"github.com/carson-networks/budget-ledger/internal/storage/memory"
)

var eat = time.FixedZone("EAT", 3*60*60)

const (
	sentMsg     = "QFT4ABC12X Confirmed. Ksh1,250.00 sent to JOHN DOE 0712345678 on 5/6/24 at 3:15 PM. New M-PESA balance is Ksh8,750.50. Transaction cost, Ksh13.00."
	paidMsg     = "qft5def34y Confirmed. Ksh450.00 paid to JAVA HOUSE. on 6/6/24 at 9:05 AM.New M-PESA balance is Ksh8,300.50. Transaction cost, Ksh0.00."
	receivedMsg = "QFT6GHI56Z Confirmed.You have received Ksh2,000.00 from JANE  WANJIKU 0722000000 on 7/6/24 at 11:40 AM New M-PESA balance is Ksh10,300.50. Buy goods with M-PESA."
)

func TestParseMPesaMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want Message
	}{
		{
			name: "sent",
			msg:  sentMsg,
			want: Message{
				Code:         "QFT4ABC12X",
				Type:         model.TransactionTypeExpense,
				Amount:       decimal.RequireFromString("1250.00"),
				Counterparty: "JOHN DOE 0712345678",
				Date:         time.Date(2024, 6, 5, 15, 15, 0, 0, eat),
				Balance:      decimal.RequireFromString("8750.50"),
				Cost:         decimal.RequireFromString("13.00"),
			},
		},
		{
			name: "paid",
			msg:  paidMsg,
			want: Message{
				Code:         "QFT5DEF34Y",
				Type:         model.TransactionTypeExpense,
				Amount:       decimal.RequireFromString("450.00"),
				Counterparty: "JAVA HOUSE",
				Date:         time.Date(2024, 6, 6, 9, 5, 0, 0, eat),
				Balance:      decimal.RequireFromString("8300.50"),
				Cost:         decimal.Zero,
			},
		},
		{
			name: "received",
			msg:  receivedMsg,
			want: Message{
				Code:         "QFT6GHI56Z",
				Type:         model.TransactionTypeIncome,
				Amount:       decimal.RequireFromString("2000.00"),
				Counterparty: "JANE WANJIKU 0722000000",
				Date:         time.Date(2024, 6, 7, 11, 40, 0, 0, eat),
				Balance:      decimal.RequireFromString("10300.50"),
				Cost:         decimal.Zero,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMPesaMessage(tt.msg, eat)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Code, got.Code)
			assert.Equal(t, tt.want.Type, got.Type)
			assert.True(t, tt.want.Amount.Equal(got.Amount), "amount %s", got.Amount)
			assert.Equal(t, tt.want.Counterparty, got.Counterparty)
			assert.True(t, tt.want.Date.Equal(got.Date), "date %s", got.Date)
			assert.True(t, tt.want.Balance.Equal(got.Balance), "balance %s", got.Balance)
			assert.True(t, tt.want.Cost.Equal(got.Cost), "cost %s", got.Cost)
		})
	}
}

func TestParseMPesaMessage_NotMPesa(t *testing.T) {
	for _, msg := range []string{
		"",
		"Your OTP is 123456",
		"Failed. You do not have enough money in your M-PESA account to send Ksh500.00.",
	} {
		_, err := ParseMPesaMessage(msg, eat)
		assert.ErrorIs(t, err, ErrNotMPesa, msg)
	}
}

func TestMessage_Pending(t *testing.T) {
	msg, err := ParseMPesaMessage(sentMsg, eat)
	require.NoError(t, err)

	accountID := uuid.Must(uuid.NewV4())
	p := msg.Pending(accountID)
	assert.Equal(t, "QFT4ABC12X", *p.BankTransactionID)
	assert.Equal(t, "M-PESA to JOHN DOE 0712345678", p.DescriptionText)
	assert.Equal(t, "JOHN DOE 0712345678", p.Merchant())
	assert.Equal(t, time.UTC, p.TransactionDate.Location())
	assert.Equal(t, 12, p.TransactionDate.Hour())
	assert.Equal(t, accountID, p.AccountID)
}

func TestReadMessages(t *testing.T) {
	messages, err := ReadMessages(strings.NewReader(sentMsg + "\n\n   \n" + receivedMsg + "\r\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{sentMsg, receivedMsg}, messages)
}

func TestImporter_Import(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	store := memory.New(0)
	t.Cleanup(func() { _ = store.Close() })
	engine := ledger.NewEngine(store, operator.Direct{Store: store}, ledger.WithLogger(logger))
	queue := pending.NewQueue(engine, pending.WithLogger(logger))

	account, err := engine.CreateAccount(ctx, &model.Account{Name: "M-PESA", Tag: "#mpesa", Currency: "KES"})
	require.NoError(t, err)

	importer := NewImporter(queue, account.ID, eat, logger)
	summary, err := importer.Import(ctx, []string{sentMsg, paidMsg, "hello", sentMsg, receivedMsg})
	require.NoError(t, err)
	assert.Equal(t, Summary{Imported: 3, Duplicates: 1, Unparsed: 1}, summary)
	assert.Equal(t, "Importer.Import.done", hook.LastEntry().Message)

	again, err := importer.Import(ctx, []string{receivedMsg})
	require.NoError(t, err)
	assert.Equal(t, Summary{Duplicates: 1}, again)

	candidates, err := queue.List(ctx, &account.ID, nil)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	// newest transaction date first
	assert.Equal(t, model.TransactionTypeIncome, candidates[0].Type)
	assert.True(t, decimal.Zero.Equal(account.Balance))
}

func TestImporter_UnknownAccountFails(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	store := memory.New(0)
	engine := ledger.NewEngine(store, operator.Direct{Store: store}, ledger.WithLogger(logger))
	queue := pending.NewQueue(engine, pending.WithLogger(logger))

	_, err := NewImporter(queue, uuid.Must(uuid.NewV4()), eat, logger).Import(ctx, []string{sentMsg})
	assert.ErrorIs(t, err, model.ErrAccountNotFound)
}
