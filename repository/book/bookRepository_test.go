package bookrepo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func bookRow(id int64, quantity int64, available bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "author", "isbn", "quantity", "available", "created_at"}).
		AddRow(id, "Clean Code", "Martin", "978-0132350884", quantity, available, time.Now())
}

func TestAddStock_KeepsForcedUnavailableFlag(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	r := New(db)

	// The update must only clear availability derived from an empty
	// shelf, never a curation flag on a stocked book.
	mock.ExpectQuery(`UPDATE books\s+SET quantity = quantity \+ \$2,\s+available = available OR quantity = 0\s+WHERE id=\$1`).
		WithArgs(int64(9), int64(3)).
		WillReturnRows(bookRow(9, 8, false))

	b, err := r.AddStock(context.Background(), 9, 3)
	require.NoError(t, err)
	require.False(t, b.Available)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddStock_RestockClearsStockDerivedUnavailability(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	r := New(db)

	mock.ExpectQuery(`UPDATE books\s+SET quantity = quantity \+ \$2,\s+available = available OR quantity = 0\s+WHERE id=\$1`).
		WithArgs(int64(9), int64(3)).
		WillReturnRows(bookRow(9, 3, true))

	b, err := r.AddStock(context.Background(), 9, 3)
	require.NoError(t, err)
	require.True(t, b.Available)
	require.NoError(t, mock.ExpectationsWereMet())
}
