package usersvc

import (
	"context"
	"errors"

	"librarydesk/model"
)

var (
	ErrInvalidLimit   = errors.New("max borrows must be positive")
	ErrInvalidPayload = errors.New("invalid payload")
)

type Repo interface {
	List(ctx context.Context) ([]model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	UpdateProfile(ctx context.Context, id int64, firstName, lastName, email, username string) error
	Approve(ctx context.Context, id int64) error
	SetMaxBorrows(ctx context.Context, id int64, n int) error
	SoftDelete(ctx context.Context, id int64, deletedBy string) error
}

type Service interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	UpdateProfile(ctx context.Context, id int64, firstName, lastName, email, username string) error

	// Approve activates a PENDING account (librarian/admin action).
	Approve(ctx context.Context, id int64) error
	SetMaxBorrows(ctx context.Context, id int64, n int) error

	// Delete soft-deletes the account, recording who did it.
	Delete(ctx context.Context, id int64, actor string) error
}

type service struct{ ur Repo }

func New(ur Repo) Service { return &service{ur: ur} }

func (s *service) List(ctx context.Context) ([]model.User, error) { return s.ur.List(ctx) }

func (s *service) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.ur.ByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, id int64, firstName, lastName, email, username string) error {
	if firstName == "" || lastName == "" || email == "" || username == "" {
		return ErrInvalidPayload
	}
	return s.ur.UpdateProfile(ctx, id, firstName, lastName, email, username)
}

func (s *service) Approve(ctx context.Context, id int64) error {
	return s.ur.Approve(ctx, id)
}

func (s *service) SetMaxBorrows(ctx context.Context, id int64, n int) error {
	if n <= 0 {
		return ErrInvalidLimit
	}
	return s.ur.SetMaxBorrows(ctx, id, n)
}

func (s *service) Delete(ctx context.Context, id int64, actor string) error {
	return s.ur.SoftDelete(ctx, id, actor)
}
