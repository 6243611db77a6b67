package usersvc_test

import (
	"context"
	"testing"

	"librarydesk/model"
	usersvc "librarydesk/service/user"
)

type repoMock struct {
	listFn          func(ctx context.Context) ([]model.User, error)
	byIDFn          func(ctx context.Context, id int64) (*model.User, error)
	updateProfileFn func(ctx context.Context, id int64, firstName, lastName, email, username string) error
	approveFn       func(ctx context.Context, id int64) error
	setMaxFn        func(ctx context.Context, id int64, n int) error
	softDeleteFn    func(ctx context.Context, id int64, deletedBy string) error
}

func (m *repoMock) List(ctx context.Context) ([]model.User, error) { return m.listFn(ctx) }
func (m *repoMock) ByID(ctx context.Context, id int64) (*model.User, error) {
	return m.byIDFn(ctx, id)
}
func (m *repoMock) UpdateProfile(ctx context.Context, id int64, firstName, lastName, email, username string) error {
	return m.updateProfileFn(ctx, id, firstName, lastName, email, username)
}
func (m *repoMock) Approve(ctx context.Context, id int64) error { return m.approveFn(ctx, id) }
func (m *repoMock) SetMaxBorrows(ctx context.Context, id int64, n int) error {
	return m.setMaxFn(ctx, id, n)
}
func (m *repoMock) SoftDelete(ctx context.Context, id int64, deletedBy string) error {
	return m.softDeleteFn(ctx, id, deletedBy)
}

func TestUpdateProfile_Validation(t *testing.T) {
	s := usersvc.New(&repoMock{})
	if err := s.UpdateProfile(context.Background(), 1, "", "Lovelace", "a@b.c", "ada"); err != usersvc.ErrInvalidPayload {
		t.Fatalf("got %v; want ErrInvalidPayload for empty first name", err)
	}
	if err := s.UpdateProfile(context.Background(), 1, "Ada", "Lovelace", "", "ada"); err != usersvc.ErrInvalidPayload {
		t.Fatalf("got %v; want ErrInvalidPayload for empty email", err)
	}
}

func TestSetMaxBorrows_Validation(t *testing.T) {
	s := usersvc.New(&repoMock{})
	if err := s.SetMaxBorrows(context.Background(), 1, 0); err != usersvc.ErrInvalidLimit {
		t.Fatalf("got %v; want ErrInvalidLimit", err)
	}
	if err := s.SetMaxBorrows(context.Background(), 1, -3); err != usersvc.ErrInvalidLimit {
		t.Fatalf("got %v; want ErrInvalidLimit", err)
	}
}

func TestDelete_RecordsActor(t *testing.T) {
	var gotActor string
	m := &repoMock{
		softDeleteFn: func(ctx context.Context, id int64, deletedBy string) error {
			gotActor = deletedBy
			return nil
		},
	}
	s := usersvc.New(m)

	if err := s.Delete(context.Background(), 5, "17"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if gotActor != "17" {
		t.Fatalf("deletedBy = %q; want 17", gotActor)
	}
}

func TestPassThroughs(t *testing.T) {
	m := &repoMock{
		listFn:    func(ctx context.Context) ([]model.User, error) { return nil, nil },
		byIDFn:    func(ctx context.Context, id int64) (*model.User, error) { return &model.User{ID: id}, nil },
		approveFn: func(ctx context.Context, id int64) error { return nil },
		setMaxFn:  func(ctx context.Context, id int64, n int) error { return nil },
	}
	s := usersvc.New(m)

	if _, err := s.List(context.Background()); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if _, err := s.Get(context.Background(), 2); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if err := s.Approve(context.Background(), 2); err != nil {
		t.Fatalf("Approve error: %v", err)
	}
	if err := s.SetMaxBorrows(context.Background(), 2, 5); err != nil {
		t.Fatalf("SetMaxBorrows error: %v", err)
	}
}
