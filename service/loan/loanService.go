package loansvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"librarydesk/events"
	"librarydesk/model"
)

// errors used by controllers

type ErrCode string

const (
	ErrUserNotFound    ErrCode = "USER_NOT_FOUND"
	ErrUserSuspended   ErrCode = "USER_SUSPENDED"
	ErrUserNotActive   ErrCode = "USER_NOT_ACTIVE"
	ErrBookNotFound    ErrCode = "BOOK_NOT_FOUND"
	ErrBookUnavailable ErrCode = "BOOK_UNAVAILABLE"
	ErrLimitExceeded   ErrCode = "LIMIT_EXCEEDED"
	ErrDuplicateBorrow ErrCode = "DUPLICATE_BORROW"
	ErrLoanNotFound    ErrCode = "LOAN_NOT_FOUND"
	ErrNotOwner        ErrCode = "NOT_OWNER"
	ErrAlreadyReturned ErrCode = "ALREADY_RETURNED"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string {
	if e.msg == "" {
		return string(e.code)
	}
	return string(e.code) + ": " + e.msg
}
func (e codedError) Code() ErrCode { return e.code }

func makeErr(c ErrCode, format string, args ...any) error {
	return codedError{code: c, msg: fmt.Sprintf(format, args...)}
}

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// LoanPeriodDays is the default loan period applied when no due date is
// requested.
const LoanPeriodDays = 14

type UserRepo interface {
	ByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type BookRepo interface {
	ByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error)
	DecrementQuantity(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error)
	IncrementQuantity(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error)
}

type LoanRepo interface {
	Insert(ctx context.Context, tx *sql.Tx, userID, bookID int64, borrowDate, dueDate time.Time) (*model.Loan, error)
	CountActiveByUser(ctx context.Context, tx *sql.Tx, userID int64) (int, error)
	ActiveExists(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error)
	ByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Loan, error)
	MarkReturned(ctx context.Context, tx *sql.Tx, id int64, returnDate time.Time, late bool) error
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
	ByID(ctx context.Context, id int64) (*model.Loan, error)
	ListAll(ctx context.Context) ([]model.Loan, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Loan, error)
	ListByBook(ctx context.Context, bookID int64) ([]model.Loan, error)
	ListOverdue(ctx context.Context) ([]model.Loan, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Loan, error)
}

type Service interface {
	// Borrow checks eligibility and opens a loan for userID on bookID.
	// A requested due date in the future is honored, anything else falls
	// back to borrow date + 14 days.
	Borrow(ctx context.Context, userID, bookID int64, requestedDue *time.Time) (*model.Loan, error)

	// Return closes a loan. Only the owner or an elevated role may return
	// it; RETURNED is terminal.
	Return(ctx context.Context, loanID, requestingUserID int64, returnDate *time.Time) (*model.Loan, error)

	// SweepOverdue flags every open loan whose due date has passed.
	SweepOverdue(ctx context.Context) (int64, error)

	ByID(ctx context.Context, id int64) (*model.Loan, error)
	ListAll(ctx context.Context) ([]model.Loan, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Loan, error)
	ListByBook(ctx context.Context, bookID int64) ([]model.Loan, error)
	ListOverdue(ctx context.Context) ([]model.Loan, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Loan, error)
}

type service struct {
	db  *sql.DB
	ur  UserRepo
	br  BookRepo
	lr  LoanRepo
	hub *events.Hub
	now func() time.Time
}

func New(db *sql.DB, ur UserRepo, br BookRepo, lr LoanRepo, hub *events.Hub) Service {
	return &service{db: db, ur: ur, br: br, lr: lr, hub: hub, now: time.Now}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *service) Borrow(ctx context.Context, userID, bookID int64, requestedDue *time.Time) (loan *model.Loan, err error) {
	today := dateOf(s.now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Locking the user row serializes this user's borrows, so the limit
	// check below cannot race with itself.
	u, err := s.ur.ByIDForUpdate(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrUserNotFound, "user %d", userID)
		}
		return nil, err
	}
	switch u.Status {
	case model.UserActive:
	case model.UserSuspended:
		until := ""
		if u.SuspendedUntil != nil {
			until = u.SuspendedUntil.Format("2006-01-02")
		}
		return nil, makeErr(ErrUserSuspended, "user %d suspended until %s", userID, until)
	default:
		return nil, makeErr(ErrUserNotActive, "user %d status %s", userID, u.Status)
	}

	b, err := s.br.ByIDForUpdate(ctx, tx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound, "book %d", bookID)
		}
		return nil, err
	}
	if !b.Available || b.Quantity <= 0 {
		return nil, makeErr(ErrBookUnavailable, "book %d (%s)", bookID, b.Title)
	}

	active, err := s.lr.CountActiveByUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if active >= u.MaxBorrows {
		return nil, makeErr(ErrLimitExceeded, "user %d at limit %d", userID, u.MaxBorrows)
	}

	dup, err := s.lr.ActiveExists(ctx, tx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, makeErr(ErrDuplicateBorrow, "user %d already borrowed book %d", userID, bookID)
	}

	due := today.AddDate(0, 0, LoanPeriodDays)
	if requestedDue != nil && dateOf(*requestedDue).After(today) {
		due = dateOf(*requestedDue)
	}

	loan, err = s.lr.Insert(ctx, tx, userID, bookID, today, due)
	if err != nil {
		// The partial unique index closes the race the ActiveExists read
		// leaves open.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, makeErr(ErrDuplicateBorrow, "user %d already borrowed book %d", userID, bookID)
		}
		return nil, err
	}

	title := b.Title
	b, err = s.br.DecrementQuantity(ctx, tx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookUnavailable, "book %d (%s)", bookID, title)
		}
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.publish(b)
	return loan, nil
}

func (s *service) Return(ctx context.Context, loanID, requestingUserID int64, returnDate *time.Time) (loan *model.Loan, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	l, err := s.lr.ByIDForUpdate(ctx, tx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrLoanNotFound, "loan %d", loanID)
		}
		return nil, err
	}

	if l.UserID != requestingUserID {
		req, err := s.ur.ByID(ctx, requestingUserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, makeErr(ErrNotOwner, "user %d does not own loan %d", requestingUserID, loanID)
			}
			return nil, err
		}
		if !req.Role.Elevated() {
			return nil, makeErr(ErrNotOwner, "user %d does not own loan %d", requestingUserID, loanID)
		}
	}

	if l.Status == model.LoanReturned {
		return nil, makeErr(ErrAlreadyReturned, "loan %d", loanID)
	}

	retDate := dateOf(s.now())
	if returnDate != nil {
		retDate = dateOf(*returnDate)
	}
	late := retDate.After(dateOf(l.DueDate))

	if err = s.lr.MarkReturned(ctx, tx, loanID, retDate, late); err != nil {
		return nil, err
	}

	b, err := s.br.IncrementQuantity(ctx, tx, l.BookID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.publish(b)

	l.Status = model.LoanReturned
	l.ReturnDate = &retDate
	l.ReturnedLate = late
	return l, nil
}

func (s *service) SweepOverdue(ctx context.Context) (int64, error) {
	return s.lr.MarkOverdue(ctx, dateOf(s.now()))
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
		At:        s.now().UTC(),
	})
}

func (s *service) ByID(ctx context.Context, id int64) (*model.Loan, error) {
	l, err := s.lr.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrLoanNotFound, "loan %d", id)
		}
		return nil, err
	}
	return l, nil
}

func (s *service) ListAll(ctx context.Context) ([]model.Loan, error) { return s.lr.ListAll(ctx) }
func (s *service) ListByUser(ctx context.Context, userID int64) ([]model.Loan, error) {
	return s.lr.ListByUser(ctx, userID)
}
func (s *service) ListByBook(ctx context.Context, bookID int64) ([]model.Loan, error) {
	return s.lr.ListByBook(ctx, bookID)
}
func (s *service) ListOverdue(ctx context.Context) ([]model.Loan, error) {
	return s.lr.ListOverdue(ctx)
}
func (s *service) ListBetween(ctx context.Context, from, to time.Time) ([]model.Loan, error) {
	return s.lr.ListBetween(ctx, from, to)
}
