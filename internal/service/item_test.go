package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplist/shoplist-go/internal/apperror"
	"github.com/shoplist/shoplist-go/internal/model"
	"github.com/shoplist/shoplist-go/internal/repository"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

type itemFixture struct {
	svc   *ItemService
	alice string
	bob   string
}

func newTestItemService(t *testing.T) itemFixture {
	t.Helper()
	dir := t.TempDir()

	users, err := repository.NewUserRepository(filepath.Join(dir, "users.json"))
	require.NoError(t, err)
	items, err := repository.NewItemRepository(filepath.Join(dir, "data.json"))
	require.NoError(t, err)

	ctx := context.Background()
	alice := &model.User{Username: "alice", PasswordHash: "h"}
	require.NoError(t, users.Create(ctx, alice))
	bob := &model.User{Username: "bob", PasswordHash: "h"}
	require.NoError(t, users.Create(ctx, bob))

	return itemFixture{
		svc:   NewItemService(items, users),
		alice: alice.ID,
		bob:   bob.ID,
	}
}

func TestCreateItem(t *testing.T) {
	f := newTestItemService(t)

	item, err := f.svc.Create(context.Background(), f.alice, model.CreateItemRequest{Text: "  milk  "})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "milk", item.Text)
	assert.False(t, item.Completed)
	assert.Equal(t, f.alice, item.UserID)
}

func TestCreateItem_EmptyText(t *testing.T) {
	f := newTestItemService(t)

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := f.svc.Create(context.Background(), f.alice, model.CreateItemRequest{Text: text})
		assert.ErrorIs(t, err, ErrTextRequired)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	}
}

func TestCreateItem_UnknownOwner(t *testing.T) {
	f := newTestItemService(t)

	_, err := f.svc.Create(context.Background(), "ghost", model.CreateItemRequest{Text: "milk"})
	assert.ErrorIs(t, err, apperror.ErrAuth)
}

func TestUpdateItem_MergesProvidedFields(t *testing.T) {
	f := newTestItemService(t)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, f.alice, model.CreateItemRequest{Text: "milk"})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, f.alice, item.ID, model.ItemPatch{Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, "milk", updated.Text)
	assert.True(t, updated.Completed)

	updated, err = f.svc.Update(ctx, f.alice, item.ID, model.ItemPatch{Text: strPtr("oat milk")})
	require.NoError(t, err)
	assert.Equal(t, "oat milk", updated.Text)
	assert.True(t, updated.Completed)

	updated, err = f.svc.Update(ctx, f.alice, item.ID, model.ItemPatch{})
	require.NoError(t, err)
	assert.Equal(t, model.Item{ID: item.ID, Text: "oat milk", Completed: true, UserID: f.alice}, updated)
}

func TestUpdateItem_EmptyText(t *testing.T) {
	f := newTestItemService(t)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, f.alice, model.CreateItemRequest{Text: "milk"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.alice, item.ID, model.ItemPatch{Text: strPtr(" ")})
	assert.ErrorIs(t, err, ErrTextRequired)
}

func TestItemIsolation(t *testing.T) {
	f := newTestItemService(t)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, f.alice, model.CreateItemRequest{Text: "milk"})
	require.NoError(t, err)

	bobs, err := f.svc.List(ctx, f.bob)
	require.NoError(t, err)
	assert.Empty(t, bobs)

	_, notOwned := f.svc.Update(ctx, f.bob, item.ID, model.ItemPatch{Completed: boolPtr(true)})
	_, missing := f.svc.Update(ctx, f.bob, "does-not-exist", model.ItemPatch{Completed: boolPtr(true)})
	assert.ErrorIs(t, notOwned, ErrItemNotFound)
	assert.ErrorIs(t, missing, ErrItemNotFound)
	assert.Equal(t, missing.Error(), notOwned.Error())

	assert.ErrorIs(t, f.svc.Delete(ctx, f.bob, item.ID), ErrItemNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.bob, item.ID), apperror.ErrNotFound)

	alices, err := f.svc.List(ctx, f.alice)
	require.NoError(t, err)
	assert.Equal(t, []model.Item{item}, alices)
}

func TestConcurrentCreatesAcrossUsers(t *testing.T) {
	f := newTestItemService(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		for _, owner := range []string{f.alice, f.bob} {
			wg.Add(1)
			go func(owner string) {
				defer wg.Done()
				_, err := f.svc.Create(ctx, owner, model.CreateItemRequest{Text: "x"})
				assert.NoError(t, err)
			}(owner)
		}
	}
	wg.Wait()

	for _, owner := range []string{f.alice, f.bob} {
		items, err := f.svc.List(ctx, owner)
		require.NoError(t, err)
		assert.Len(t, items, n)
		for _, it := range items {
			assert.Equal(t, owner, it.UserID)
		}
	}
}

func TestDeleteItem(t *testing.T) {
	f := newTestItemService(t)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, f.alice, model.CreateItemRequest{Text: "milk"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.alice, item.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, f.alice, item.ID), ErrItemNotFound)

	items, err := f.svc.List(ctx, f.alice)
	require.NoError(t, err)
	assert.Empty(t, items)
}
