package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shoplist/shoplist-go/internal/apperror"
	"github.com/shoplist/shoplist-go/internal/model"
	"github.com/shoplist/shoplist-go/internal/repository"
)

var (
	ErrTextRequired = apperror.Validation("item text is required")
	ErrItemNotFound = apperror.NotFound("item not found")
	ErrUnknownOwner = apperror.Auth("unauthorized")
)

// ItemService handles item business logic. Every call is scoped to the
// caller's verified user ID.
type ItemService struct {
	items *repository.ItemRepository
	users *repository.UserRepository
}

// NewItemService creates a new ItemService.
func NewItemService(items *repository.ItemRepository, users *repository.UserRepository) *ItemService {
	return &ItemService{items: items, users: users}
}

// List returns the user's items in insertion order.
func (s *ItemService) List(ctx context.Context, userID string) ([]model.Item, error) {
	return s.items.ListByUser(ctx, userID)
}

// Create adds a new, incomplete item owned by userID.
func (s *ItemService) Create(ctx context.Context, userID string, req model.CreateItemRequest) (model.Item, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return model.Item{}, ErrTextRequired
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return model.Item{}, err
	}
	if !exists {
		return model.Item{}, ErrUnknownOwner
	}

	item := model.Item{
		Text:      text,
		Completed: false,
		UserID:    userID,
	}
	if err := s.items.Create(ctx, &item); err != nil {
		return model.Item{}, err
	}

	return item, nil
}

// Update merges the provided fields of patch into the user's item.
func (s *ItemService) Update(ctx context.Context, userID, itemID string, patch model.ItemPatch) (model.Item, error) {
	var text string
	if patch.Text != nil {
		text = strings.TrimSpace(*patch.Text)
		if text == "" {
			return model.Item{}, ErrTextRequired
		}
	}

	item, err := s.items.Update(ctx, userID, itemID, func(it *model.Item) error {
		if patch.Text != nil {
			it.Text = text
		}
		if patch.Completed != nil {
			it.Completed = *patch.Completed
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return model.Item{}, ErrItemNotFound
		}
		return model.Item{}, err
	}

	return item, nil
}

// Delete removes the user's item.
func (s *ItemService) Delete(ctx context.Context, userID, itemID string) error {
	err := s.items.Delete(ctx, userID, itemID)
	if errors.Is(err, repository.ErrItemNotFound) {
		return ErrItemNotFound
	}
	return err
}
