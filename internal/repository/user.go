package repository

import (
	"context"
	"errors"

	"github.com/shoplist/shoplist-go/internal/crypto"
	"github.com/shoplist/shoplist-go/internal/model"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
)

// UserRepository handles user persistence in a JSON snapshot file.
type UserRepository struct {
	users *collection[model.User]
}

// NewUserRepository opens the users file at path, creating it on first write.
func NewUserRepository(path string) (*UserRepository, error) {
	c, err := openCollection[model.User]("users", path)
	if err != nil {
		return nil, err
	}
	return &UserRepository{users: c}, nil
}

// Create assigns a new ID to user and appends it. The username check and
// the append happen in the same critical section.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.users.update("create", func(users []model.User) ([]model.User, error) {
		for _, u := range users {
			if u.Username == user.Username {
				return nil, ErrDuplicateUsername
			}
		}

		user.ID = crypto.NewID()
		return append(users, *user), nil
	})
}

// GetByUsername retrieves a user by exact, case-sensitive username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, u := range r.users.snapshot() {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, u := range r.users.snapshot() {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

// Exists reports whether a user with the given ID is registered.
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
