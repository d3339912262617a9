package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-auth-go-stdlib/internal/auth"
	"github.com/ovaphlow/pitchfork/service-auth-go-stdlib/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-auth-go-stdlib/internal/router"
	"github.com/ovaphlow/pitchfork/service-auth-go-stdlib/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-auth-go-stdlib/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-auth-go-stdlib/pkg/database"
	"github.com/ovaphlow/pitchfork/service-auth-go-stdlib/pkg/utilities"
)

const defaultAddr = "0.0.0.0:8431"

func main() {
	// load .env file if present so os.Getenv picks values from it
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-auth-go-stdlib")

	// signing config is required; never log the secret itself
	authCfg, err := auth.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("auth config: %v", err)
	}
	key, err := authCfg.SigningKey()
	if err != nil {
		sugar.Fatalf("auth config: %v", err)
	}
	signer, err := auth.NewSigner(key)
	if err != nil {
		sugar.Fatalf("signer: %v", err)
	}
	codec, err := auth.NewCodec(signer, authCfg.TokenTTLSeconds, nil)
	if err != nil {
		sugar.Fatalf("codec: %v", err)
	}
	sugar.Infow("token codec ready", "ttl_seconds", codec.TTLSeconds())

	// init db
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.Connect(connectCtx, database.ConfigFromEnv())
	cancelConnect()
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	repo := userrepo.NewUserRepo(db)
	if err := repo.EnsureTable(context.Background()); err != nil {
		sugar.Fatalf("ensure users table: %v", err)
	}
	users := user.NewUserService(db, repo, sugar)

	m := metrics.New()
	resolver := auth.NewResolver(codec, users, m, sugar)
	loginSvc := auth.NewService(codec, auth.NewExternalReader(), users, m, sugar)

	handler := router.RegisterRoutes(sugar, router.Deps{
		Resolver: resolver,
		Auth:     auth.NewHandler(loginSvc, sugar),
		User:     user.NewHandler(sugar),
		Ping:     db.PingContext,
	})

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = defaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		sugar.Infow("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
