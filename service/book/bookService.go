package booksvc

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"librarydesk/events"
	"librarydesk/model"
)

var (
	ErrISBNTaken      = errors.New("isbn already registered")
	ErrInvalidPayload = errors.New("invalid payload")
)

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context) ([]model.Book, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	ByISBN(ctx context.Context, isbn string) (*model.Book, error)
	UpdateMeta(ctx context.Context, id int64, title, author, isbn string) error
	Delete(ctx context.Context, id int64) error
	AddStock(ctx context.Context, id int64, n int64) (*model.Book, error)
	SetAvailability(ctx context.Context, id int64, available bool) (*model.Book, error)
}

type Service interface {
	Create(ctx context.Context, title, author, isbn string, quantity int64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Get(ctx context.Context, id int64) (*model.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*model.Book, error)
	UpdateMeta(ctx context.Context, id int64, title, author, isbn string) error
	Delete(ctx context.Context, id int64) error
	AddStock(ctx context.Context, id int64, n int64) (*model.Book, error)

	// SetAvailability force-flags a book unavailable (or back) for
	// curation, independent of stock.
	SetAvailability(ctx context.Context, id int64, available bool) (*model.Book, error)
}

type service struct {
	r   Repo
	hub *events.Hub
}

func New(r Repo, hub *events.Hub) Service { return &service{r: r, hub: hub} }

func (s *service) Create(ctx context.Context, title, author, isbn string, quantity int64) (*model.Book, error) {
	if title == "" || author == "" || isbn == "" || quantity < 0 {
		return nil, ErrInvalidPayload
	}
	b := &model.Book{
		Title:     title,
		Author:    author,
		ISBN:      isbn,
		Quantity:  quantity,
		Available: quantity > 0,
	}
	if err := s.r.Create(ctx, b); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrISBNTaken
		}
		return nil, err
	}
	return b, nil
}

func (s *service) List(ctx context.Context) ([]model.Book, error) { return s.r.List(ctx) }

func (s *service) Get(ctx context.Context, id int64) (*model.Book, error) {
	return s.r.ByID(ctx, id)
}

func (s *service) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	return s.r.ByISBN(ctx, isbn)
}

func (s *service) UpdateMeta(ctx context.Context, id int64, title, author, isbn string) error {
	if title == "" || author == "" || isbn == "" {
		return ErrInvalidPayload
	}
	err := s.r.UpdateMeta(ctx, id, title, author, isbn)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrISBNTaken
	}
	return err
}

func (s *service) Delete(ctx context.Context, id int64) error { return s.r.Delete(ctx, id) }

func (s *service) AddStock(ctx context.Context, id int64, n int64) (*model.Book, error) {
	if n <= 0 {
		return nil, ErrInvalidPayload
	}
	b, err := s.r.AddStock(ctx, id, n)
	if err != nil {
		return nil, err
	}
	s.publish(b)
	return b, nil
}

func (s *service) SetAvailability(ctx context.Context, id int64, available bool) (*model.Book, error) {
	b, err := s.r.SetAvailability(ctx, id, available)
	if err != nil {
		return nil, err
	}
	s.publish(b)
	return b, nil
}

func (s *service) publish(b *model.Book) {
	if s.hub == nil || b == nil {
		return
	}
	s.hub.Publish(events.Availability{
		BookID:    b.ID,
		Title:     b.Title,
		Quantity:  b.Quantity,
		Available: b.Available,
		At:        time.Now().UTC(),
	})
}
