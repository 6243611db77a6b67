// service/book/book_service_test.go
package booksvc_test

import (
	"context"
	"errors"
	"testing"

	"librarydesk/events"
	"librarydesk/model"
	booksvc "librarydesk/service/book"
)

type repoMock struct {
	createFn   func(ctx context.Context, b *model.Book) error
	listFn     func(ctx context.Context) ([]model.Book, error)
	byIDFn     func(ctx context.Context, id int64) (*model.Book, error)
	byISBNFn   func(ctx context.Context, isbn string) (*model.Book, error)
	updateFn   func(ctx context.Context, id int64, title, author, isbn string) error
	deleteFn   func(ctx context.Context, id int64) error
	addStockFn func(ctx context.Context, id int64, n int64) (*model.Book, error)
	setAvailFn func(ctx context.Context, id int64, available bool) (*model.Book, error)
}

func (m *repoMock) Create(ctx context.Context, b *model.Book) error { return m.createFn(ctx, b) }
func (m *repoMock) List(ctx context.Context) ([]model.Book, error)  { return m.listFn(ctx) }
func (m *repoMock) ByID(ctx context.Context, id int64) (*model.Book, error) {
	return m.byIDFn(ctx, id)
}
func (m *repoMock) ByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	return m.byISBNFn(ctx, isbn)
}
func (m *repoMock) UpdateMeta(ctx context.Context, id int64, title, author, isbn string) error {
	return m.updateFn(ctx, id, title, author, isbn)
}
func (m *repoMock) Delete(ctx context.Context, id int64) error { return m.deleteFn(ctx, id) }
func (m *repoMock) AddStock(ctx context.Context, id int64, n int64) (*model.Book, error) {
	return m.addStockFn(ctx, id, n)
}
func (m *repoMock) SetAvailability(ctx context.Context, id int64, available bool) (*model.Book, error) {
	return m.setAvailFn(ctx, id, available)
}

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{}, nil)
	if _, err := s.Create(context.Background(), "", "Donovan", "978-0134190440", 2); err == nil {
		t.Fatal("expected error for empty title")
	}
	if _, err := s.Create(context.Background(), "The Go Programming Language", "", "978-0134190440", 2); err == nil {
		t.Fatal("expected error for empty author")
	}
	if _, err := s.Create(context.Background(), "The Go Programming Language", "Donovan", "", 2); err == nil {
		t.Fatal("expected error for empty isbn")
	}
	if _, err := s.Create(context.Background(), "The Go Programming Language", "Donovan", "978-0134190440", -1); err == nil {
		t.Fatal("expected error for negative quantity")
	}
}

func TestCreate_Success(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Book) error {
			if b.Title != "Clean Code" || b.ISBN != "978-0132350884" {
				return errors.New("bad args")
			}
			b.ID = 42
			return nil
		},
	}
	s := booksvc.New(m, nil)
	b, err := s.Create(context.Background(), "Clean Code", "Martin", "978-0132350884", 3)
	if err != nil || b.ID != 42 {
		t.Fatalf("got book=%v err=%v; want id 42 nil", b, err)
	}
	if !b.Available {
		t.Fatal("book with stock should start available")
	}
}

func TestCreate_ZeroQuantityStartsUnavailable(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Book) error { return nil },
	}
	s := booksvc.New(m, nil)
	b, err := s.Create(context.Background(), "Clean Code", "Martin", "978-0132350884", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Available {
		t.Fatal("book with zero stock must not be available")
	}
}

func TestAddStock_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{}, nil)
	if _, err := s.AddStock(context.Background(), 1, 0); err == nil {
		t.Fatal("expected error for zero count")
	}
	if _, err := s.AddStock(context.Background(), 1, -2); err == nil {
		t.Fatal("expected error for negative count")
	}
}

func TestAddStock_PublishesAvailability(t *testing.T) {
	hub := events.NewHub()
	m := &repoMock{
		addStockFn: func(ctx context.Context, id int64, n int64) (*model.Book, error) {
			return &model.Book{ID: id, Title: "Clean Code", Quantity: n, Available: true}, nil
		},
	}
	s := booksvc.New(m, hub)

	ch, cancel := hub.Subscribe()
	defer cancel()

	if _, err := s.AddStock(context.Background(), 7, 3); err != nil {
		t.Fatalf("AddStock error: %v", err)
	}

	select {
	case ev := <-ch:
		if ev.BookID != 7 || !ev.Available || ev.Quantity != 3 {
			t.Fatalf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("expected availability event")
	}
}

func TestSetAvailability_ForceUnavailable(t *testing.T) {
	m := &repoMock{
		setAvailFn: func(ctx context.Context, id int64, available bool) (*model.Book, error) {
			return &model.Book{ID: id, Quantity: 5, Available: available}, nil
		},
	}
	s := booksvc.New(m, nil)

	b, err := s.SetAvailability(context.Background(), 9, false)
	if err != nil {
		t.Fatalf("SetAvailability error: %v", err)
	}
	if b.Available {
		t.Fatal("expected book to be force-flagged unavailable")
	}
}

func TestPassThroughs(t *testing.T) {
	m := &repoMock{
		listFn:   func(ctx context.Context) ([]model.Book, error) { return nil, nil },
		byIDFn:   func(ctx context.Context, id int64) (*model.Book, error) { return &model.Book{}, nil },
		byISBNFn: func(ctx context.Context, isbn string) (*model.Book, error) { return &model.Book{}, nil },
		deleteFn: func(ctx context.Context, id int64) error { return nil },
	}
	s := booksvc.New(m, nil)

	if _, err := s.List(context.Background()); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if _, err := s.Get(context.Background(), 99); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if _, err := s.GetByISBN(context.Background(), "978-0132350884"); err != nil {
		t.Fatalf("GetByISBN error: %v", err)
	}
	if err := s.Delete(context.Background(), 99); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}
