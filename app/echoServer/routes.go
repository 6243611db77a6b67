package echoServer

import (
	"net/http"

	"librarydesk/app/echoServer/controller/auth"
	"librarydesk/app/echoServer/controller/book"
	"librarydesk/app/echoServer/controller/events"
	"librarydesk/app/echoServer/controller/loan"
	"librarydesk/app/echoServer/controller/maintenance"
	"librarydesk/app/echoServer/controller/report"
	"librarydesk/app/echoServer/controller/user"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth        *auth.Controller
	User        *user.Controller
	Book        *book.Controller
	Loan        *loan.Controller
	Report      *report.Controller
	Events      *events.Controller
	Maintenance *maintenance.Controller
	JWTSecret   string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// SSE uses token-in-query auth because EventSource cannot send
	// headers.
	pub.GET("/events/availability", c.Events.Availability, JWTQueryAuth(c.JWTSecret))

	// Authenticated
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	authed.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			tok, ok := ctx.Get("user").(*jwt.Token)
			if !ok || tok == nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			sub, ok := claims["sub"].(float64)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", int64(sub))
			if role, ok := claims["role"].(string); ok {
				ctx.Set("role", role)
			}
			return next(ctx)
		}
	})

	// Books
	authed.GET("/books", c.Book.List)
	authed.GET("/books/:id", c.Book.Detail)

	// Loans
	authed.POST("/loans", c.Loan.Borrow)
	authed.POST("/loans/:id/return", c.Loan.Return)
	authed.GET("/loans/my", c.Loan.My)

	// Profile
	authed.GET("/users/me", c.User.Me)

	// Staff endpoints
	staff := authed.Group("", RequireStaff())
	staff.POST("/books", c.Book.Create)
	staff.PUT("/books/:id", c.Book.Update)
	staff.DELETE("/books/:id", c.Book.Delete)
	staff.POST("/books/:id/stock", c.Book.AddStock)
	staff.PUT("/books/:id/availability", c.Book.SetAvailability)

	staff.GET("/users", c.User.List)
	staff.GET("/users/:id", c.User.Detail)
	staff.PUT("/users/:id", c.User.Update)
	staff.DELETE("/users/:id", c.User.Delete)
	staff.POST("/users/:id/approve", c.User.Approve)
	staff.PUT("/users/:id/max-borrows", c.User.SetMaxBorrows)

	staff.GET("/loans", c.Loan.List)
	staff.GET("/loans/overdue", c.Loan.Overdue)
	staff.GET("/loans/user/:id", c.Loan.ByUser)
	staff.GET("/loans/book/:id", c.Loan.ByBook)

	staff.GET("/reports/loans", c.Report.Loans)
	staff.GET("/reports/loans/overdue", c.Report.Overdue)
	staff.GET("/reports/loans/user/:id", c.Report.ByUser)
	staff.GET("/reports/loans/book/:id", c.Report.ByBook)

	staff.POST("/maintenance/sweep-overdue", c.Maintenance.SweepOverdue)
	staff.POST("/maintenance/sweep-late-returns", c.Maintenance.SweepLateReturns)
	staff.POST("/maintenance/sweep-suspensions", c.Maintenance.SweepSuspensions)
	staff.POST("/maintenance/sweep-inactive", c.Maintenance.SweepInactive)
}
