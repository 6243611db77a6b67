// service/penalty/penalty_service_test.go
package penaltysvc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"librarydesk/model"
)

type mockUserRepo struct {
	listByStatusFn   func(ctx context.Context, status model.UserStatus) ([]model.User, error)
	suspendFn        func(ctx context.Context, id int64, until time.Time) (bool, error)
	liftSuspensionFn func(ctx context.Context, id int64) (bool, error)
	retireFn         func(ctx context.Context, id int64, deletedBy string, at time.Time) (bool, error)
}

func (m *mockUserRepo) ListByStatus(ctx context.Context, status model.UserStatus) ([]model.User, error) {
	return m.listByStatusFn(ctx, status)
}
func (m *mockUserRepo) Suspend(ctx context.Context, id int64, until time.Time) (bool, error) {
	return m.suspendFn(ctx, id, until)
}
func (m *mockUserRepo) LiftSuspension(ctx context.Context, id int64) (bool, error) {
	return m.liftSuspensionFn(ctx, id)
}
func (m *mockUserRepo) RetireInactive(ctx context.Context, id int64, deletedBy string, at time.Time) (bool, error) {
	return m.retireFn(ctx, id, deletedBy, at)
}

type mockLoanRepo struct {
	countLateFn  func(ctx context.Context, userID int64, since time.Time) (int, error)
	latestBorrow func(ctx context.Context, userID int64) (*time.Time, error)
}

func (m *mockLoanRepo) CountLateReturnsSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	return m.countLateFn(ctx, userID, since)
}
func (m *mockLoanRepo) LatestBorrowDate(ctx context.Context, userID int64) (*time.Time, error) {
	return m.latestBorrow(ctx, userID)
}

var fixedNow = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
var today = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

func newTestService(ur UserRepo, lr LoanRepo) *service {
	return &service{
		ur:  ur,
		lr:  lr,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now: func() time.Time { return fixedNow },
	}
}

func TestSweepLateReturns_ThresholdBoundary(t *testing.T) {
	lateCounts := map[int64]int{1: 3, 2: 2, 3: 5}
	var suspendedIDs []int64
	var gotUntil time.Time
	var gotSince time.Time

	ur := &mockUserRepo{
		listByStatusFn: func(ctx context.Context, status model.UserStatus) ([]model.User, error) {
			require.Equal(t, model.UserActive, status)
			return []model.User{{ID: 1}, {ID: 2}, {ID: 3}}, nil
		},
		suspendFn: func(ctx context.Context, id int64, until time.Time) (bool, error) {
			suspendedIDs = append(suspendedIDs, id)
			gotUntil = until
			return true, nil
		},
	}
	lr := &mockLoanRepo{
		countLateFn: func(ctx context.Context, userID int64, since time.Time) (int, error) {
			gotSince = since
			return lateCounts[userID], nil
		},
	}
	s := newTestService(ur, lr)

	n, err := s.SweepLateReturns(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []int64{1, 3}, suspendedIDs)
	require.Equal(t, today.AddDate(0, 0, 14), gotUntil)
	require.Equal(t, today.AddDate(0, 0, -30), gotSince)
}

func TestSweepLateReturns_AppliesToAllRoles(t *testing.T) {
	var suspendedIDs []int64
	ur := &mockUserRepo{
		listByStatusFn: func(ctx context.Context, status model.UserStatus) ([]model.User, error) {
			return []model.User{
				{ID: 1, Role: model.RolePatron},
				{ID: 2, Role: model.RoleLibrarian},
				{ID: 3, Role: model.RoleAdmin},
			}, nil
		},
		suspendFn: func(ctx context.Context, id int64, until time.Time) (bool, error) {
			suspendedIDs = append(suspendedIDs, id)
			return true, nil
		},
	}
	lr := &mockLoanRepo{
		countLateFn: func(ctx context.Context, userID int64, since time.Time) (int, error) {
			return 3, nil
		},
	}
	s := newTestService(ur, lr)

	n, err := s.SweepLateReturns(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []int64{1, 2, 3}, suspendedIDs)
}

func TestSweepLateReturns_OneFailureDoesNotStopSweep(t *testing.T) {
	var suspendedIDs []int64
	ur := &mockUserRepo{
		listByStatusFn: func(ctx context.Context, status model.UserStatus) ([]model.User, error) {
			return []model.User{{ID: 1}, {ID: 2}, {ID: 3}}, nil
		},
		suspendFn: func(ctx context.Context, id int64, until time.Time) (bool, error) {
			suspendedIDs = append(suspendedIDs, id)
			return true, nil
		},
	}
	lr := &mockLoanRepo{
		countLateFn: func(ctx context.Context, userID int64, since time.Time) (int, error) {
			if userID == 2 {
				return 0, errors.New("db hiccup")
			}
			return 3, nil
		},
	}
	s := newTestService(ur, lr)

	n, err := s.SweepLateReturns(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []int64{1, 3}, suspendedIDs)
}

func TestSweepSuspensions_StrictlyBeforeToday(t *testing.T) {
	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)
	var lifted []int64

	ur := &mockUserRepo{
		listByStatusFn: func(ctx context.Context, status model.UserStatus) ([]model.User, error) {
			require.Equal(t, model.UserSuspended, status)
			return []model.User{
				{ID: 1, SuspendedUntil: &yesterday},
				{ID: 2, SuspendedUntil: &today}, // boundary: stays suspended
				{ID: 3, SuspendedUntil: &tomorrow},
				{ID: 4}, // no end date recorded
			}, nil
		},
		liftSuspensionFn: func(ctx context.Context, id int64) (bool, error) {
			lifted = append(lifted, id)
			return true, nil
		},
	}
	s := newTestService(ur, &mockLoanRepo{})

	n, err := s.SweepSuspensions(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []int64{1}, lifted)
}

func TestSweepInactive_ExemptsStaff(t *testing.T) {
	var retired []int64
	ur := &mockUserRepo{
		listByStatusFn: func(ctx context.Context, status model.UserStatus) ([]model.User, error) {
			return []model.User{
				{ID: 1, Role: model.RolePatron},
				{ID: 2, Role: model.RoleLibrarian},
				{ID: 3, Role: model.RoleAdmin},
			}, nil
		},
		retireFn: func(ctx context.Context, id int64, deletedBy string, at time.Time) (bool, error) {
			require.Equal(t, "system", deletedBy)
			retired = append(retired, id)
			return true, nil
		},
	}
	lr := &mockLoanRepo{
		latestBorrow: func(ctx context.Context, userID int64) (*time.Time, error) {
			return nil, nil // no activity at all
		},
	}
	s := newTestService(ur, lr)

	n, err := s.SweepInactive(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []int64{1}, retired)
}

func TestSweepInactive_ActivityWindow(t *testing.T) {
	old := today.AddDate(0, 0, -31)
	boundary := today.AddDate(0, 0, -30)
	recent := today.AddDate(0, 0, -5)
	activity := map[int64]*time.Time{1: &old, 2: &boundary, 3: &recent, 4: nil}

	var retired []int64
	ur := &mockUserRepo{
		listByStatusFn: func(ctx context.Context, status model.UserStatus) ([]model.User, error) {
			return []model.User{
				{ID: 1, Role: model.RolePatron},
				{ID: 2, Role: model.RolePatron},
				{ID: 3, Role: model.RolePatron},
				{ID: 4, Role: model.RolePatron},
			}, nil
		},
		retireFn: func(ctx context.Context, id int64, deletedBy string, at time.Time) (bool, error) {
			retired = append(retired, id)
			return true, nil
		},
	}
	lr := &mockLoanRepo{
		latestBorrow: func(ctx context.Context, userID int64) (*time.Time, error) {
			return activity[userID], nil
		},
	}
	s := newTestService(ur, lr)

	n, err := s.SweepInactive(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []int64{1, 4}, retired)
}

func TestSweeps_EmptyStoreIsNoop(t *testing.T) {
	ur := &mockUserRepo{
		listByStatusFn: func(ctx context.Context, status model.UserStatus) ([]model.User, error) {
			return nil, nil
		},
	}
	s := newTestService(ur, &mockLoanRepo{})

	n, err := s.SweepLateReturns(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = s.SweepSuspensions(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = s.SweepInactive(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}
