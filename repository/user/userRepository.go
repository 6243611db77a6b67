package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"librarydesk/model"
)

var ErrNoRows = sql.ErrNoRows

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	ListByStatus(ctx context.Context, status model.UserStatus) ([]model.User, error)

	UpdateProfile(ctx context.Context, id int64, firstName, lastName, email, username string) error
	Approve(ctx context.Context, id int64) error
	SetMaxBorrows(ctx context.Context, id int64, n int) error
	SoftDelete(ctx context.Context, id int64, deletedBy string) error

	// Locked read used inside the borrow transaction.
	ByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.User, error)

	// Penalty engine writes; each is guarded so it only fires when the
	// account is still in the source state.
	Suspend(ctx context.Context, id int64, until time.Time) (bool, error)
	LiftSuspension(ctx context.Context, id int64) (bool, error)
	RetireInactive(ctx context.Context, id int64, deletedBy string, at time.Time) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const userCols = `id, first_name, last_name, email, username, password_hash,
	role, status, suspended_until, max_borrows, deleted_at, deleted_by, created_at`

func scanUser(row interface{ Scan(...any) error }, u *model.User) error {
	return row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Username, &u.PasswordHash,
		&u.Role, &u.Status, &u.SuspendedUntil, &u.MaxBorrows, &u.DeletedAt, &u.DeletedBy, &u.CreatedAt)
}

func (r *repo) Create(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO users(first_name, last_name, email, username, password_hash, role, status, max_borrows)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		u.FirstName, u.LastName, u.Email, u.Username, u.PasswordHash, u.Role, u.Status, u.MaxBorrows,
	).Scan(&u.ID, &u.CreatedAt)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userCols+`
		FROM users
		WHERE lower(email) = lower($1)`, email), u)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	u := &model.User{}
	err := scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userCols+`
		FROM users
		WHERE id = $1`, id), u)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) ByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.User, error) {
	u := &model.User{}
	err := scanUser(tx.QueryRowContext(ctx, `
		SELECT `+userCols+`
		FROM users
		WHERE id = $1
		FOR UPDATE`, id), u)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) List(ctx context.Context) ([]model.User, error) {
	const q = `
		SELECT ` + userCols + `
		FROM users
		WHERE status <> 'DELETED'
		ORDER BY id`
	return r.queryUsers(ctx, q)
}

func (r *repo) ListByStatus(ctx context.Context, status model.UserStatus) ([]model.User, error) {
	const q = `
		SELECT ` + userCols + `
		FROM users
		WHERE status = $1
		ORDER BY id`
	return r.queryUsers(ctx, q, status)
}

func (r *repo) queryUsers(ctx context.Context, q string, args ...any) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repo) UpdateProfile(ctx context.Context, id int64, firstName, lastName, email, username string) error {
	const q = `
		UPDATE users
		SET first_name=$2, last_name=$3, email=$4, username=$5
		WHERE id=$1 AND status <> 'DELETED'`
	res, err := r.db.ExecContext(ctx, q, id, firstName, lastName, email, username)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRows
	}
	return nil
}

func (r *repo) Approve(ctx context.Context, id int64) error {
	const q = `
		UPDATE users
		SET status='ACTIVE'
		WHERE id=$1 AND status='PENDING'`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New("user not pending or not found")
	}
	return nil
}

func (r *repo) SetMaxBorrows(ctx context.Context, id int64, n int) error {
	const q = `
		UPDATE users
		SET max_borrows=$2
		WHERE id=$1 AND status <> 'DELETED'`
	res, err := r.db.ExecContext(ctx, q, id, n)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrNoRows
	}
	return nil
}

func (r *repo) SoftDelete(ctx context.Context, id int64, deletedBy string) error {
	const q = `
		UPDATE users
		SET status='DELETED', deleted_at=NOW(), deleted_by=$2
		WHERE id=$1 AND status <> 'DELETED'`
	res, err := r.db.ExecContext(ctx, q, id, deletedBy)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRows
	}
	return nil
}

func (r *repo) Suspend(ctx context.Context, id int64, until time.Time) (bool, error) {
	const q = `
		UPDATE users
		SET status='SUSPENDED', suspended_until=$2
		WHERE id=$1 AND status='ACTIVE'`
	res, err := r.db.ExecContext(ctx, q, id, until)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) LiftSuspension(ctx context.Context, id int64) (bool, error) {
	const q = `
		UPDATE users
		SET status='ACTIVE', suspended_until=NULL
		WHERE id=$1 AND status='SUSPENDED'`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) RetireInactive(ctx context.Context, id int64, deletedBy string, at time.Time) (bool, error) {
	const q = `
		UPDATE users
		SET status='DELETED', deleted_at=$3, deleted_by=$2
		WHERE id=$1 AND status='ACTIVE'`
	res, err := r.db.ExecContext(ctx, q, id, deletedBy, at)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
