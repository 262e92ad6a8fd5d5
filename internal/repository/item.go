package repository

import (
	"context"
	"errors"
	"slices"

	"github.com/shoplist/shoplist-go/internal/crypto"
	"github.com/shoplist/shoplist-go/internal/model"
)

var ErrItemNotFound = errors.New("item not found")

// ItemRepository handles item persistence in a JSON snapshot file. Every
// lookup is scoped by owner: an item owned by someone else is reported as
// ErrItemNotFound, exactly like a missing one.
type ItemRepository struct {
	items *collection[model.Item]
}

// NewItemRepository opens the items file at path, creating it on first write.
func NewItemRepository(path string) (*ItemRepository, error) {
	c, err := openCollection[model.Item]("items", path)
	if err != nil {
		return nil, err
	}
	return &ItemRepository{items: c}, nil
}

// ListByUser returns the user's items in insertion order.
func (r *ItemRepository) ListByUser(ctx context.Context, userID string) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := []model.Item{}
	for _, it := range r.items.snapshot() {
		if it.UserID == userID {
			result = append(result, it)
		}
	}
	return result, nil
}

// Create assigns a fresh ID to item and appends it.
func (r *ItemRepository) Create(ctx context.Context, item *model.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.items.update("create", func(items []model.Item) ([]model.Item, error) {
		id := crypto.NewID()
		for slices.ContainsFunc(items, func(it model.Item) bool { return it.ID == id }) {
			id = crypto.NewID()
		}

		item.ID = id
		return append(items, *item), nil
	})
}

// Update applies mutate to the user's item with itemID and persists the
// result. mutate runs inside the write critical section; an error from it
// aborts the update without touching storage.
func (r *ItemRepository) Update(ctx context.Context, userID, itemID string, mutate func(*model.Item) error) (model.Item, error) {
	if err := ctx.Err(); err != nil {
		return model.Item{}, err
	}

	var updated model.Item
	err := r.items.update("update", func(items []model.Item) ([]model.Item, error) {
		i := indexOwned(items, userID, itemID)
		if i < 0 {
			return nil, ErrItemNotFound
		}

		it := items[i]
		if err := mutate(&it); err != nil {
			return nil, err
		}
		it.ID, it.UserID = items[i].ID, items[i].UserID

		items[i] = it
		updated = it
		return items, nil
	})
	if err != nil {
		return model.Item{}, err
	}

	return updated, nil
}

// Delete removes the user's item with itemID.
func (r *ItemRepository) Delete(ctx context.Context, userID, itemID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.items.update("delete", func(items []model.Item) ([]model.Item, error) {
		i := indexOwned(items, userID, itemID)
		if i < 0 {
			return nil, ErrItemNotFound
		}
		return slices.Delete(items, i, i+1), nil
	})
}

func indexOwned(items []model.Item, userID, itemID string) int {
	return slices.IndexFunc(items, func(it model.Item) bool {
		return it.ID == itemID && it.UserID == userID
	})
}
