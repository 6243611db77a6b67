package loanrepo

import (
	"context"
	"database/sql"
	"time"

	"librarydesk/model"
)

type Repo interface {
	// Inside the borrow transaction.
	Insert(ctx context.Context, tx *sql.Tx, userID, bookID int64, borrowDate, dueDate time.Time) (*model.Loan, error)
	CountActiveByUser(ctx context.Context, tx *sql.Tx, userID int64) (int, error)
	ActiveExists(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error)

	// Inside the return transaction.
	ByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Loan, error)
	MarkReturned(ctx context.Context, tx *sql.Tx, id int64, returnDate time.Time, late bool) error

	// Overdue sweep: one conditional update, return always wins because a
	// concurrent return holds the row lock and flips status first.
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)

	// Read queries for the presentation and report layers.
	ByID(ctx context.Context, id int64) (*model.Loan, error)
	ListAll(ctx context.Context) ([]model.Loan, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Loan, error)
	ListByBook(ctx context.Context, bookID int64) ([]model.Loan, error)
	ListOverdue(ctx context.Context) ([]model.Loan, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Loan, error)

	// Penalty engine scans.
	CountLateReturnsSince(ctx context.Context, userID int64, since time.Time) (int, error)
	LatestBorrowDate(ctx context.Context, userID int64) (*time.Time, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const loanCols = `id, user_id, book_id, borrow_date, due_date, return_date, status, returned_late, created_at`

func scanLoan(row interface{ Scan(...any) error }, l *model.Loan) error {
	return row.Scan(&l.ID, &l.UserID, &l.BookID, &l.BorrowDate, &l.DueDate, &l.ReturnDate,
		&l.Status, &l.ReturnedLate, &l.CreatedAt)
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, userID, bookID int64, borrowDate, dueDate time.Time) (*model.Loan, error) {
	const q = `
		INSERT INTO loans (user_id, book_id, borrow_date, due_date, status)
		VALUES ($1,$2,$3,$4,'ACTIVE')
		RETURNING ` + loanCols
	l := &model.Loan{}
	if err := scanLoan(tx.QueryRowContext(ctx, q, userID, bookID, borrowDate, dueDate), l); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *repo) CountActiveByUser(ctx context.Context, tx *sql.Tx, userID int64) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM loans
		WHERE user_id=$1 AND status='ACTIVE'`
	var n int
	err := tx.QueryRowContext(ctx, q, userID).Scan(&n)
	return n, err
}

func (r *repo) ActiveExists(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM loans
			WHERE user_id=$1 AND book_id=$2 AND status='ACTIVE'
		)`
	var exists bool
	err := tx.QueryRowContext(ctx, q, userID, bookID).Scan(&exists)
	return exists, err
}

func (r *repo) ByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Loan, error) {
	l := &model.Loan{}
	err := scanLoan(tx.QueryRowContext(ctx, `
		SELECT `+loanCols+`
		FROM loans
		WHERE id=$1
		FOR UPDATE`, id), l)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *repo) MarkReturned(ctx context.Context, tx *sql.Tx, id int64, returnDate time.Time, late bool) error {
	const q = `
		UPDATE loans
		SET status='RETURNED', return_date=$2, returned_late=$3
		WHERE id=$1 AND status IN ('ACTIVE','OVERDUE')`
	res, err := tx.ExecContext(ctx, q, id, returnDate, late)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	const q = `
		UPDATE loans
		SET status='OVERDUE'
		WHERE status='ACTIVE' AND due_date < $1`
	res, err := r.db.ExecContext(ctx, q, asOf)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Loan, error) {
	l := &model.Loan{}
	err := scanLoan(r.db.QueryRowContext(ctx, `
		SELECT `+loanCols+`
		FROM loans
		WHERE id=$1`, id), l)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *repo) ListAll(ctx context.Context) ([]model.Loan, error) {
	const q = `
		SELECT ` + loanCols + `
		FROM loans
		ORDER BY created_at DESC, id DESC`
	return r.queryLoans(ctx, q)
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.Loan, error) {
	const q = `
		SELECT ` + loanCols + `
		FROM loans
		WHERE user_id=$1
		ORDER BY created_at DESC, id DESC`
	return r.queryLoans(ctx, q, userID)
}

func (r *repo) ListByBook(ctx context.Context, bookID int64) ([]model.Loan, error) {
	const q = `
		SELECT ` + loanCols + `
		FROM loans
		WHERE book_id=$1
		ORDER BY created_at DESC, id DESC`
	return r.queryLoans(ctx, q, bookID)
}

func (r *repo) ListOverdue(ctx context.Context) ([]model.Loan, error) {
	const q = `
		SELECT ` + loanCols + `
		FROM loans
		WHERE status='OVERDUE'
		ORDER BY due_date, id`
	return r.queryLoans(ctx, q)
}

func (r *repo) ListBetween(ctx context.Context, from, to time.Time) ([]model.Loan, error) {
	const q = `
		SELECT ` + loanCols + `
		FROM loans
		WHERE borrow_date >= $1 AND borrow_date <= $2
		ORDER BY borrow_date, id`
	return r.queryLoans(ctx, q, from, to)
}

func (r *repo) queryLoans(ctx context.Context, q string, args ...any) ([]model.Loan, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Loan
	for rows.Next() {
		var l model.Loan
		if err := scanLoan(rows, &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repo) CountLateReturnsSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM loans
		WHERE user_id=$1
		AND returned_late=TRUE
		AND return_date >= $2`
	var n int
	err := r.db.QueryRowContext(ctx, q, userID, since).Scan(&n)
	return n, err
}

func (r *repo) LatestBorrowDate(ctx context.Context, userID int64) (*time.Time, error) {
	const q = `
		SELECT MAX(borrow_date)
		FROM loans
		WHERE user_id=$1`
	var t *time.Time
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&t); err != nil {
		return nil, err
	}
	return t, nil
}
