// Package maintenance exposes the sweep operations for manual runs; the
// scheduler invokes the same services on its own cadence.
package maintenance

import (
	"log/slog"
	"net/http"

	loansvc "librarydesk/service/loan"
	penaltysvc "librarydesk/service/penalty"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Loans   loansvc.Service
	Penalty penaltysvc.Service
	Log     *slog.Logger
}

// POST /v1/maintenance/sweep-overdue  (staff)
func (h *Controller) SweepOverdue(c echo.Context) error {
	n, err := h.Loans.SweepOverdue(c.Request().Context())
	if err != nil {
		h.Log.Error("overdue sweep", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"marked_overdue": n})
}

// POST /v1/maintenance/sweep-late-returns  (staff)
func (h *Controller) SweepLateReturns(c echo.Context) error {
	n, err := h.Penalty.SweepLateReturns(c.Request().Context())
	if err != nil {
		h.Log.Error("late-return sweep", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"suspended": n})
}

// POST /v1/maintenance/sweep-suspensions  (staff)
func (h *Controller) SweepSuspensions(c echo.Context) error {
	n, err := h.Penalty.SweepSuspensions(c.Request().Context())
	if err != nil {
		h.Log.Error("suspension sweep", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"restored": n})
}

// POST /v1/maintenance/sweep-inactive  (staff)
func (h *Controller) SweepInactive(c echo.Context) error {
	n, err := h.Penalty.SweepInactive(c.Request().Context())
	if err != nil {
		h.Log.Error("inactivity sweep", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"retired": n})
}
