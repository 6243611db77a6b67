// Package penaltysvc holds the timer-driven account policy sweeps. Each
// sweep is a plain callable; scheduling lives in app/scheduler.
package penaltysvc

import (
	"context"
	"log/slog"
	"time"

	"librarydesk/model"
)

const (
	// LateReturnThreshold suspends an account once it has this many late
	// returns inside LateReturnWindowDays.
	LateReturnThreshold  = 3
	LateReturnWindowDays = 30
	SuspensionDays       = 14
	InactivityDays       = 30

	systemActor = "system"
)

type UserRepo interface {
	ListByStatus(ctx context.Context, status model.UserStatus) ([]model.User, error)
	Suspend(ctx context.Context, id int64, until time.Time) (bool, error)
	LiftSuspension(ctx context.Context, id int64) (bool, error)
	RetireInactive(ctx context.Context, id int64, deletedBy string, at time.Time) (bool, error)
}

type LoanRepo interface {
	CountLateReturnsSince(ctx context.Context, userID int64, since time.Time) (int, error)
	LatestBorrowDate(ctx context.Context, userID int64) (*time.Time, error)
}

type Service interface {
	// SweepLateReturns suspends ACTIVE accounts with too many recent late
	// returns. Applied to every ACTIVE account regardless of role.
	SweepLateReturns(ctx context.Context) (suspended int, err error)

	// SweepSuspensions reactivates accounts whose suspension has expired.
	// Boundary: an account suspended until today stays suspended.
	SweepSuspensions(ctx context.Context) (restored int, err error)

	// SweepInactive retires ACTIVE patron accounts with no borrow
	// activity inside the inactivity window. LIBRARIAN and ADMIN
	// accounts are exempt.
	SweepInactive(ctx context.Context) (retired int, err error)
}

type service struct {
	ur  UserRepo
	lr  LoanRepo
	log *slog.Logger
	now func() time.Time
}

func New(ur UserRepo, lr LoanRepo, log *slog.Logger) Service {
	return &service{ur: ur, lr: lr, log: log, now: time.Now}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *service) SweepLateReturns(ctx context.Context) (int, error) {
	today := dateOf(s.now())
	since := today.AddDate(0, 0, -LateReturnWindowDays)
	until := today.AddDate(0, 0, SuspensionDays)

	users, err := s.ur.ListByStatus(ctx, model.UserActive)
	if err != nil {
		return 0, err
	}

	suspended := 0
	for _, u := range users {
		n, err := s.lr.CountLateReturnsSince(ctx, u.ID, since)
		if err != nil {
			// One bad account must not stop the sweep.
			s.log.Error("late-return count failed", "user_id", u.ID, "err", err)
			continue
		}
		if n < LateReturnThreshold {
			continue
		}
		ok, err := s.ur.Suspend(ctx, u.ID, until)
		if err != nil {
			s.log.Error("suspend failed", "user_id", u.ID, "err", err)
			continue
		}
		if ok {
			suspended++
			s.log.Info("account suspended for late returns",
				"user_id", u.ID, "late_returns", n, "until", until.Format("2006-01-02"))
		}
	}
	return suspended, nil
}

func (s *service) SweepSuspensions(ctx context.Context) (int, error) {
	today := dateOf(s.now())

	users, err := s.ur.ListByStatus(ctx, model.UserSuspended)
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, u := range users {
		if u.SuspendedUntil == nil || !dateOf(*u.SuspendedUntil).Before(today) {
			continue
		}
		ok, err := s.ur.LiftSuspension(ctx, u.ID)
		if err != nil {
			s.log.Error("lift suspension failed", "user_id", u.ID, "err", err)
			continue
		}
		if ok {
			restored++
			s.log.Info("suspension lifted", "user_id", u.ID)
		}
	}
	return restored, nil
}

func (s *service) SweepInactive(ctx context.Context) (int, error) {
	today := dateOf(s.now())
	cutoff := today.AddDate(0, 0, -InactivityDays)

	users, err := s.ur.ListByStatus(ctx, model.UserActive)
	if err != nil {
		return 0, err
	}

	retired := 0
	for _, u := range users {
		if u.Role.Elevated() {
			continue
		}
		last, err := s.lr.LatestBorrowDate(ctx, u.ID)
		if err != nil {
			s.log.Error("latest activity lookup failed", "user_id", u.ID, "err", err)
			continue
		}
		if last != nil && !dateOf(*last).Before(cutoff) {
			continue
		}
		ok, err := s.ur.RetireInactive(ctx, u.ID, systemActor, s.now().UTC())
		if err != nil {
			s.log.Error("retire failed", "user_id", u.ID, "err", err)
			continue
		}
		if ok {
			retired++
			s.log.Info("inactive account retired", "user_id", u.ID)
		}
	}
	return retired, nil
}
