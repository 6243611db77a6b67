package report

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	reportsvc "librarydesk/service/report"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc reportsvc.Service
	Log *slog.Logger
}

func (h *Controller) serve(c echo.Context, name string, data []byte, err error) error {
	if err != nil {
		h.Log.Error("report render", "report", name, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	c.Response().Header().Set("Content-Disposition", `attachment; filename="`+name+`.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", data)
}

// GET /v1/reports/loans  (staff; optional ?from=&to= range)
func (h *Controller) Loans(c echo.Context) error {
	ctx := c.Request().Context()
	if from, to := c.QueryParam("from"), c.QueryParam("to"); from != "" || to != "" {
		f, err1 := time.Parse("2006-01-02", from)
		t, err2 := time.Parse("2006-01-02", to)
		if err1 != nil || err2 != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid date range"})
		}
		data, err := h.Svc.LoansBetween(ctx, f, t)
		return h.serve(c, "loans-range", data, err)
	}
	data, err := h.Svc.AllLoans(ctx)
	return h.serve(c, "loans", data, err)
}

// GET /v1/reports/loans/overdue  (staff)
func (h *Controller) Overdue(c echo.Context) error {
	data, err := h.Svc.OverdueLoans(c.Request().Context())
	return h.serve(c, "loans-overdue", data, err)
}

// GET /v1/reports/loans/user/:id  (staff)
func (h *Controller) ByUser(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	data, rerr := h.Svc.LoansByUser(c.Request().Context(), id)
	return h.serve(c, "loans-user", data, rerr)
}

// GET /v1/reports/loans/book/:id  (staff)
func (h *Controller) ByBook(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	data, rerr := h.Svc.LoansByBook(c.Request().Context(), id)
	return h.serve(c, "loans-book", data, rerr)
}
