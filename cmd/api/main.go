package main

import (
	"log"

	"github.com/J2WFFDev/custody-manager/internal/config"
	"github.com/J2WFFDev/custody-manager/internal/crypto"
	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
	httpapi "github.com/J2WFFDev/custody-manager/internal/http"
	"github.com/J2WFFDev/custody-manager/internal/http/auth"
	"github.com/J2WFFDev/custody-manager/internal/infra/ratelimit"
	"github.com/J2WFFDev/custody-manager/internal/repo/postgres"
	"github.com/J2WFFDev/custody-manager/internal/usecase"
)

func main() {
	cfg := config.FromEnv()

	cipher, err := crypto.New(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("failed to init field cipher: %v", err)
	}

	store, err := postgres.NewStore(cfg.PostgresDSN, cipher)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()

	var limiter custody.RateLimiter
	if cfg.RedisAddr != "" {
		limiter, err = ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, nil)
		if err != nil {
			log.Fatalf("failed to init redis rate limiter: %v", err)
		}
	} else {
		limiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{})
	}

	srv := httpapi.NewServer(cfg, httpapi.ServerDeps{
		Kits:          usecase.NewKitService(store, cfg.ExtendedCustodyDays),
		Custody:       usecase.NewCustodyService(store),
		Approvals:     usecase.NewApprovalService(store),
		Maintenance:   usecase.NewMaintenanceService(store),
		Export:        usecase.NewExportService(store),
		Items:         usecase.NewItemService(store),
		Authenticator: auth.NewBearerAuthenticator(cfg.AuthSecret),
		RateLimiter:   limiter,
	})
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
