package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-ledger/internal/model"
)

// -- ListAccounts tests --

func TestListAccounts_NoResults(t *testing.T) {
	svc, _ := newTestService(t)

	accounts, nextCursor, err := svc.Account.ListAccounts(context.Background(), nil)

	assert.NoError(t, err)
	assert.Nil(t, accounts)
	assert.Nil(t, nextCursor)
}

func TestListAccounts_Pages(t *testing.T) {
	svc, _ := newTestService(t)
	for _, tag := range []string{"a", "b", "c"} {
		createAccount(t, svc, tag)
	}

	first, cursor, err := svc.Account.ListAccounts(context.Background(), &AccountCursor{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "a", first[0].Name)
	require.NotNil(t, cursor)
	assert.Equal(t, 2, cursor.Position)

	second, cursor, err := svc.Account.ListAccounts(context.Background(), cursor)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "c", second[0].Name)
	assert.Nil(t, cursor)
}

// -- Account lifecycle tests --

func TestAccountLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	cash := createAccount(t, svc, "cash")
	assert.True(t, cash.IsDefault)

	edit := cash.Clone()
	edit.Name = "Wallet"
	updated, err := svc.Account.UpdateAccount(context.Background(), edit)
	require.NoError(t, err)
	assert.Equal(t, "Wallet", updated.Name)

	require.NoError(t, svc.Account.DeleteAccount(context.Background(), cash.ID))
	_, err = svc.Account.GetAccount(context.Background(), cash.ID)
	assert.ErrorIs(t, err, model.ErrAccountNotFound)
}

// -- Category tests --

func TestCategoryLifecycle(t *testing.T) {
	svc, _ := newTestService(t)

	food, err := svc.Category.CreateCategory(context.Background(), &model.Category{Name: "food"})
	require.NoError(t, err)

	updated, err := svc.Category.UpdateCategory(context.Background(), &model.Category{ID: food.ID, Icon: "bowl"})
	require.NoError(t, err)
	assert.Equal(t, "bowl", updated.Icon)

	categories, err := svc.Category.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 1)

	require.NoError(t, svc.Category.DeleteCategory(context.Background(), food.ID))
	categories, err = svc.Category.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, categories)
}
