package bookrepo

import (
	"context"
	"database/sql"

	"librarydesk/model"
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

	// Borrow/return transaction helpers. The locked read plus the guarded
	// decrement is what keeps quantity from going negative under
	// concurrent borrows.
	ByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error)
	DecrementQuantity(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error)
	IncrementQuantity(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const bookCols = `id, title, author, isbn, quantity, available, created_at`

func scanBook(row interface{ Scan(...any) error }, b *model.Book) error {
	return row.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Quantity, &b.Available, &b.CreatedAt)
}

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (title, author, isbn, quantity, available)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q, b.Title, b.Author, b.ISBN, b.Quantity, b.Available).
		Scan(&b.ID, &b.CreatedAt)
}

func (r *repo) List(ctx context.Context) ([]model.Book, error) {
	const q = `
		SELECT ` + bookCols + `
		FROM books
		ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := scanBook(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	b := &model.Book{}
	err := scanBook(r.db.QueryRowContext(ctx, `
		SELECT `+bookCols+`
		FROM books
		WHERE id=$1`, id), b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) ByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	b := &model.Book{}
	err := scanBook(r.db.QueryRowContext(ctx, `
		SELECT `+bookCols+`
		FROM books
		WHERE isbn=$1`, isbn), b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) UpdateMeta(ctx context.Context, id int64, title, author, isbn string) error {
	const q = `
		UPDATE books
		SET title=$2, author=$3, isbn=$4
		WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id, title, author, isbn)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) AddStock(ctx context.Context, id int64, n int64) (*model.Book, error) {
	// Restocking clears stock-derived unavailability (quantity was 0) but
	// never a force-set flag on a book that still had copies.
	const q = `
		UPDATE books
		SET quantity = quantity + $2,
			available = available OR quantity = 0
		WHERE id=$1
		RETURNING ` + bookCols
	b := &model.Book{}
	if err := scanBook(r.db.QueryRowContext(ctx, q, id, n), b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) SetAvailability(ctx context.Context, id int64, available bool) (*model.Book, error) {
	const q = `
		UPDATE books
		SET available=$2
		WHERE id=$1
		RETURNING ` + bookCols
	b := &model.Book{}
	if err := scanBook(r.db.QueryRowContext(ctx, q, id, available), b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) ByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error) {
	b := &model.Book{}
	err := scanBook(tx.QueryRowContext(ctx, `
		SELECT `+bookCols+`
		FROM books
		WHERE id=$1
		FOR UPDATE`, id), b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) DecrementQuantity(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error) {
	// Guard: never push quantity below zero.
	const q = `
		UPDATE books
		SET quantity = quantity - 1,
			available = (quantity - 1) > 0
		WHERE id=$1 AND quantity > 0
		RETURNING ` + bookCols
	b := &model.Book{}
	if err := scanBook(tx.QueryRowContext(ctx, q, id), b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) IncrementQuantity(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error) {
	// A returned copy is always immediately available.
	const q = `
		UPDATE books
		SET quantity = quantity + 1,
			available = TRUE
		WHERE id=$1
		RETURNING ` + bookCols
	b := &model.Book{}
	if err := scanBook(tx.QueryRowContext(ctx, q, id), b); err != nil {
		return nil, err
	}
	return b, nil
}
