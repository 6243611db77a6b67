// Package main librarydesk API.
//
// @title           librarydesk API
// @version         1.0
// @description     library management backend (books, users, loans, penalties).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"librarydesk/app/echoServer"
	authctrl "librarydesk/app/echoServer/controller/auth"
	bookctrl "librarydesk/app/echoServer/controller/book"
	eventsctrl "librarydesk/app/echoServer/controller/events"
	loanctrl "librarydesk/app/echoServer/controller/loan"
	maintctrl "librarydesk/app/echoServer/controller/maintenance"
	reportctrl "librarydesk/app/echoServer/controller/report"
	userctrl "librarydesk/app/echoServer/controller/user"
	"librarydesk/app/echoServer/validation"
	"librarydesk/app/scheduler"
	"librarydesk/config"
	"librarydesk/events"
	bookrepo "librarydesk/repository/book"
	loanrepo "librarydesk/repository/loan"
	userrepo "librarydesk/repository/user"
	authsvc "librarydesk/service/auth"
	booksvc "librarydesk/service/book"
	loansvc "librarydesk/service/loan"
	penaltysvc "librarydesk/service/penalty"
	reportsvc "librarydesk/service/report"
	usersvc "librarydesk/service/user"
	"librarydesk/util/database"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg := config.Load()
	ctx := context.Background()

	// DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Error("migrate failed", "err", err)
		os.Exit(1)
	}

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	lr := loanrepo.New(db)

	// availability fan-out
	hub := events.NewHub()

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	us := usersvc.New(ur)
	bs := booksvc.New(br, hub)
	ls := loansvc.New(db, ur, br, lr, hub)
	ps := penaltysvc.New(ur, lr, log)
	rs := reportsvc.New(lr)

	// controllers
	authC := &authctrl.Controller{Svc: as, Log: log}
	userC := &userctrl.Controller{Svc: us, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, Log: log}
	loanC := &loanctrl.Controller{Svc: ls, Log: log}
	reportC := &reportctrl.Controller{Svc: rs, Log: log}
	eventsC := &eventsctrl.Controller{Hub: hub, Log: log}
	maintC := &maintctrl.Controller{Loans: ls, Penalty: ps, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:        authC,
		User:        userC,
		Book:        bookC,
		Loan:        loanC,
		Report:      reportC,
		Events:      eventsC,
		Maintenance: maintC,
		JWTSecret:   cfg.JWTSecret,
	})

	// sweeps
	sched, err := scheduler.New(cfg, ls, ps, log)
	if err != nil {
		log.Error("scheduler init failed", "err", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)
	e.Logger.Fatal(e.Start(":" + port))
}
