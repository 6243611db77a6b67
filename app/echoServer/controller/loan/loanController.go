package loan

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"librarydesk/app/echoServer/jwtx"
	ls "librarydesk/service/loan"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc ls.Service
	Log *slog.Logger
}

func httpStatus(code ls.ErrCode) int {
	switch code {
	case ls.ErrUserNotFound, ls.ErrBookNotFound, ls.ErrLoanNotFound:
		return http.StatusNotFound
	case ls.ErrNotOwner:
		return http.StatusForbidden
	case ls.ErrUserSuspended, ls.ErrUserNotActive, ls.ErrBookUnavailable,
		ls.ErrLimitExceeded, ls.ErrDuplicateBorrow, ls.ErrAlreadyReturned:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	code := ls.Code(err)
	if code == "" {
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(httpStatus(code), echo.Map{"code": code, "message": err.Error()})
}

// POST /v1/loans
func (h *Controller) Borrow(c echo.Context) error {
	var req BorrowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	var due *time.Time
	if req.DueDate != "" {
		d, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid due_date"})
		}
		due = &d
	}

	out, err := h.Svc.Borrow(c.Request().Context(), uid, req.BookID, due)
	if err != nil {
		return h.fail(c, "borrow", err)
	}
	return c.JSON(http.StatusCreated, out)
}

// POST /v1/loans/:id/return
func (h *Controller) Return(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	var req ReturnReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	var ret *time.Time
	if req.ReturnDate != "" {
		d, err := time.Parse("2006-01-02", req.ReturnDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid return_date"})
		}
		ret = &d
	}

	out, err := h.Svc.Return(c.Request().Context(), id, uid, ret)
	if err != nil {
		return h.fail(c, "return", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/loans/my
func (h *Controller) My(c echo.Context) error {
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.ListByUser(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("loan history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/loans  (staff)
func (h *Controller) List(c echo.Context) error {
	ctx := c.Request().Context()

	if from, to := c.QueryParam("from"), c.QueryParam("to"); from != "" || to != "" {
		f, err1 := time.Parse("2006-01-02", from)
		t, err2 := time.Parse("2006-01-02", to)
		if err1 != nil || err2 != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid date range"})
		}
		rows, err := h.Svc.ListBetween(ctx, f, t)
		if err != nil {
			h.Log.Error("loan list", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
		return c.JSON(http.StatusOK, echo.Map{"data": rows})
	}

	rows, err := h.Svc.ListAll(ctx)
	if err != nil {
		h.Log.Error("loan list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/loans/overdue  (staff)
func (h *Controller) Overdue(c echo.Context) error {
	rows, err := h.Svc.ListOverdue(c.Request().Context())
	if err != nil {
		h.Log.Error("overdue list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/loans/user/:id  (staff)
func (h *Controller) ByUser(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rows, err := h.Svc.ListByUser(c.Request().Context(), id)
	if err != nil {
		h.Log.Error("loans by user", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/loans/book/:id  (staff)
func (h *Controller) ByBook(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rows, err := h.Svc.ListByBook(c.Request().Context(), id)
	if err != nil {
		h.Log.Error("loans by book", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
