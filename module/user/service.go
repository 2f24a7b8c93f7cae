package user

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"ChatRelay/module/user/model"
	"ChatRelay/tools/security"
)

const bcryptCost = 10

var ErrBadCredentials = errors.New("bad credentials")

// register creates the account and signs its session credential.
func register(ctx context.Context, store *Store, opts security.Options, username, password, email string) (*model.User, string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", errors.Wrap(err, "hash password")
	}
	u := &model.User{Username: username, Password: string(hashed), Email: email}
	id, err := store.Create(ctx, u)
	if err != nil {
		return nil, "", err
	}
	token, err := security.Generate(opts, security.Identity{ID: id, Username: username, Email: email})
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// login verifies the password and signs a fresh session credential.
func login(ctx context.Context, store *Store, opts security.Options, username, password string) (*model.User, string, error) {
	u, err := store.FindByUsername(ctx, username)
	if err != nil {
		return nil, "", ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, "", ErrBadCredentials
	}
	token, err := security.Generate(opts, security.Identity{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Email:    u.Email,
	})
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
