package balance

import (
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-ledger/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestApply_Directions(t *testing.T) {
	a := uuid.Must(uuid.NewV4())
	b := uuid.Must(uuid.NewV4())

	tests := []struct {
		name    string
		tx      *model.Transaction
		account uuid.UUID
		delta   string
	}{
		{"expense debits source", &model.Transaction{Type: model.TransactionTypeExpense, Amount: dec("10"), FromAccountID: &a}, a, "-10"},
		{"income credits destination", &model.Transaction{Type: model.TransactionTypeIncome, Amount: dec("10"), ToAccountID: &b}, b, "10"},
		{"transferOut debits source", &model.Transaction{Type: model.TransactionTypeTransferOut, Amount: dec("3.5"), FromAccountID: &a, ToAccountID: &b}, a, "-3.5"},
		{"transferIn credits destination", &model.Transaction{Type: model.TransactionTypeTransferIn, Amount: dec("3.5"), FromAccountID: &a, ToAccountID: &b}, b, "3.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effects, err := Apply(tt.tx)
			require.NoError(t, err)
			require.Len(t, effects, 1)
			assert.Equal(t, tt.account, effects[0].AccountID)
			assert.True(t, effects[0].Delta.Equal(dec(tt.delta)), effects[0].Delta.String())
		})
	}
}

func TestApply_Invalid(t *testing.T) {
	a := uuid.Must(uuid.NewV4())

	tests := []struct {
		name string
		tx   *model.Transaction
	}{
		{"zero amount", &model.Transaction{Type: model.TransactionTypeExpense, Amount: decimal.Zero, FromAccountID: &a}},
		{"negative amount", &model.Transaction{Type: model.TransactionTypeExpense, Amount: dec("-1"), FromAccountID: &a}},
		{"expense without source", &model.Transaction{Type: model.TransactionTypeExpense, Amount: dec("1"), ToAccountID: &a}},
		{"income without destination", &model.Transaction{Type: model.TransactionTypeIncome, Amount: dec("1"), FromAccountID: &a}},
		{"unknown type", &model.Transaction{Type: "refund", Amount: dec("1"), FromAccountID: &a}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(tt.tx)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestApply_SplitParentPostsOnceAndChildrenNever(t *testing.T) {
	a := uuid.Must(uuid.NewV4())
	parentID := uuid.Must(uuid.NewV4())
	parent := &model.Transaction{
		ID:            parentID,
		Type:          model.TransactionTypeExpense,
		Amount:        dec("1"),
		FromAccountID: &a,
		SplitTransactions: []model.Transaction{
			{Type: model.TransactionTypeExpense, Amount: dec("60"), FromAccountID: &a, ParentTransactionID: &parentID},
			{Type: model.TransactionTypeExpense, Amount: dec("40"), FromAccountID: &a, ParentTransactionID: &parentID},
		},
	}

	effects, err := Apply(parent)
	require.NoError(t, err)
	require.Len(t, effects, 1)
	assert.True(t, effects[0].Delta.Equal(dec("-100")))

	childEffects, err := Apply(&parent.SplitTransactions[0])
	require.NoError(t, err)
	assert.Empty(t, childEffects)
}

func TestReverse_IsAdditiveInverse(t *testing.T) {
	a := uuid.Must(uuid.NewV4())
	tx := &model.Transaction{Type: model.TransactionTypeExpense, Amount: dec("0.10"), FromAccountID: &a}

	applied, err := Apply(tx)
	require.NoError(t, err)
	reversed, err := Reverse(tx)
	require.NoError(t, err)

	net := Net(applied, reversed)
	require.Len(t, net, 1)
	assert.True(t, net[0].Delta.IsZero())
}

func TestNet_SortsAndFolds(t *testing.T) {
	a := uuid.Must(uuid.FromString("00000000-0000-0000-0000-00000000000a"))
	b := uuid.Must(uuid.FromString("00000000-0000-0000-0000-00000000000b"))

	net := Net(
		[]Effect{{AccountID: b, Delta: dec("5")}, {AccountID: a, Delta: dec("-2")}},
		[]Effect{{AccountID: b, Delta: dec("1")}},
	)
	require.Len(t, net, 2)
	assert.Equal(t, []uuid.UUID{a, b}, AccountIDs(net))
	assert.True(t, net[0].Delta.Equal(dec("-2")))
	assert.True(t, net[1].Delta.Equal(dec("6")))
}

func TestPost_MissingAccountFailsWholePosting(t *testing.T) {
	a := uuid.Must(uuid.NewV4())
	missing := uuid.Must(uuid.NewV4())
	accounts := map[uuid.UUID]*model.Account{a: {ID: a, Balance: dec("100")}}

	_, err := Post(accounts, []Effect{{AccountID: a, Delta: dec("-10")}, {AccountID: missing, Delta: dec("10")}})
	assert.ErrorIs(t, err, model.ErrAccountNotFound)
	assert.True(t, accounts[a].Balance.Equal(dec("100")))
}

func TestPost_ComputesBalances(t *testing.T) {
	a := uuid.Must(uuid.NewV4())
	accounts := map[uuid.UUID]*model.Account{a: {ID: a, Balance: dec("100")}}

	balances, err := Post(accounts, []Effect{{AccountID: a, Delta: dec("-10.25")}, {AccountID: a, Delta: dec("0.25")}})
	require.NoError(t, err)
	assert.True(t, balances[a].Equal(dec("90")))
	assert.True(t, accounts[a].Balance.Equal(dec("100")))
}
