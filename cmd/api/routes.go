package main

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"callcenter-platform/internal/auth"
	"callcenter-platform/internal/audit"
	"callcenter-platform/internal/calls"
	"callcenter-platform/internal/config"
	"callcenter-platform/internal/customers"
	"callcenter-platform/internal/httpapi"
	"callcenter-platform/internal/identity"
	"callcenter-platform/internal/recordings"
	"callcenter-platform/internal/reporting"
	"callcenter-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// registerRoutes builds the service graph and wires HTTP routes. Keep this
// file free of business logic; handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, cfg config.Config, authManager *auth.Manager, db *sql.DB, rdb *redis.Client, log *slog.Logger) {
	userRepo := identity.NewPostgresRepo(db)
	userSvc := identity.NewService(userRepo)

	customerRepo := customers.NewPostgresRepo(db)
	customerSvc := customers.NewService(customerRepo, userSvc)

	callRepo := calls.NewPostgresRepo(db)
	callSvc := calls.NewService(callRepo, userSvc)

	auditSvc := audit.NewService(audit.NewPostgresRepo(db), log)

	reportSvc := reporting.NewService(
		reporting.NewSourceRepository(userRepo, customerRepo, callRepo),
		reporting.NewRedisCache(rdb),
		30*time.Second,
	)

	var store recordings.Store
	if cfg.Media.UploadURL != "" {
		store = recordings.NewHTTPStore(cfg.Media)
	} else {
		// Local-only fallback; production requires MEDIA_UPLOAD_URL.
		store = recordings.NewMemoryStore()
		log.Warn("MEDIA_UPLOAD_URL not set, recordings stay in process memory")
	}

	h := httpapi.Handlers{
		Auth:       authManager,
		Users:      userSvc,
		Customers:  customerSvc,
		Calls:      callSvc,
		Recordings: store,
		Reports:    reportSvc,
		Audit:      auditSvc,
		LoginLimit: func(ctx context.Context, clientIP string) (bool, error) {
			return utils.AllowFixedWindow(ctx, rdb, "login:"+clientIP, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)
		},
	}

	authMW := auth.RequireAccessToken(authManager, userSvc.LookupRole)
	httpapi.Register(r, h, authMW)
}
