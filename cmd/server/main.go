package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/tallyapp/tally/internal/auth"
	"github.com/tallyapp/tally/internal/auth/social/google"
	"github.com/tallyapp/tally/internal/config"
	"github.com/tallyapp/tally/internal/ledger"
	"github.com/tallyapp/tally/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	level := glog.Info
	if cfg.Debug {
		level = glog.Trace
	}

	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(level),
		glog.WithName("tally"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	tokens := auth.NewTokenService(
		[]byte(cfg.AccessTokenSecret),
		[]byte(cfg.RefreshTokenSecret),
		cfg.TokenIssuer,
		lgr.GetLogger("tokens"),
	)

	auther := auth.NewAuthenticator(repo, tokens).
		WithLogger(lgr.GetLogger("auth"))

	gate := auth.NewSessionGate(tokens, repo).
		WithLogger(lgr.GetLogger("gate"))

	authController := auth.NewAuthController(
		auth.WithAuthenticator(auther),
		auth.WithSessionGate(gate),
		auth.WithControllerLogger(lgr.GetLogger("http")),
	)
	authController.Debug = cfg.Debug

	transactions := ledger.NewTransactionsRepository(db)
	ledgerController := ledger.NewController(transactions, lgr.GetLogger("ledger"))

	var federated *auth.FederatedController
	if cfg.GoogleEnabled() {
		provider := google.New(google.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			CallbackURL:  cfg.GoogleCallbackURL,
		})

		reconciler := auth.NewReconciler(repo, auther).
			WithLogger(lgr.GetLogger("reconciler"))

		federated = auth.NewFederatedController(
			provider,
			reconciler,
			cfg.SuccessURL,
			cfg.FailureURL,
		).WithLogger(lgr.GetLogger("federated"))
	} else {
		lgr.GetLogger("app").Warn("google credentials missing, federated login disabled")
	}

	app := server.New(server.Config{
		Debug:        cfg.Debug,
		ClientOrigin: cfg.ClientOrigin,
		Logger:       lgr.GetLogger("server"),
	})

	server.Mount(app, server.Deps{
		Auth:      authController,
		Federated: federated,
		Ledger:    ledgerController,
		Gate:      gate,
	})

	go func() {
		if err := app.Listen(cfg.Addr); err != nil {
			log.Fatal(err)
		}
	}()

	lgr.GetLogger("app").Info("server started", "addr", cfg.Addr)

	WaitExitSignal()

	if err := app.Shutdown(); err != nil {
		lgr.GetLogger("app").Error("shutdown", "error", err)
	}
}

func openDatabase(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []any{
		(*auth.User)(nil),
		(*ledger.Transaction)(nil),
	} {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
