package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/minhle/coursehub-auth/internal/auth"
	"github.com/minhle/coursehub-auth/internal/config"
	"github.com/minhle/coursehub-auth/internal/crypto"
	"github.com/minhle/coursehub-auth/internal/database"
	"github.com/minhle/coursehub-auth/internal/handler"
	"github.com/minhle/coursehub-auth/internal/notify"
	"github.com/minhle/coursehub-auth/internal/queue"
	"github.com/minhle/coursehub-auth/internal/repository"
	"github.com/minhle/coursehub-auth/internal/router"
)

func main() {
	// .env is optional; real deployments provide the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	cipher, err := crypto.NewFieldCipher(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("field cipher: %v", err)
	}

	store := repository.NewAccountRepo(db)
	lockout := auth.LockoutPolicy{Threshold: cfg.LockThreshold, Duration: cfg.LockDuration}
	hasher := auth.BcryptHasher{Cost: cfg.BcryptCost}
	migrator := &auth.FieldMigrator{Cipher: cipher, Store: store}
	issuer := &auth.TokenIssuer{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		BcryptCost:    cfg.BcryptCost,
		Store:         store,
	}
	broker := &auth.FederationBroker{
		Store:    store,
		Verifier: &auth.GoogleVerifier{ClientID: cfg.GoogleClientID},
		Migrator: migrator,
		Cipher:   cipher,
	}
	service := &auth.AuthSessionService{
		Store:    store,
		Lockout:  lockout,
		Verifier: hasher,
		Hasher:   hasher,
		Cipher:   cipher,
		Migrator: migrator,
		Issuer:   issuer,
		Broker:   broker,
		Notifier: notify.NewRabbitNotifier(int64(cfg.LockDuration.Seconds())),
	}

	// Background worker draining account.locked into the audit log. Runs a
	// reconnect loop forever; broker outages only pause it.
	go func() {
		if err := queue.StartLockoutConsumer(); err != nil {
			log.Printf("lockout consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(service), issuer, store,
		config.LoadRateLimitConfig(), config.NewRedisClient())

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
