package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ayush22-04/xetor-backen/handlers"
	"github.com/Ayush22-04/xetor-backen/internal/collections"
	"github.com/Ayush22-04/xetor-backen/internal/config"
	"github.com/Ayush22-04/xetor-backen/internal/database"
	dochandler "github.com/Ayush22-04/xetor-backen/internal/document/handler"
	"github.com/Ayush22-04/xetor-backen/internal/document/repository"
	"github.com/Ayush22-04/xetor-backen/internal/document/service"
	"github.com/Ayush22-04/xetor-backen/internal/notify"
	"github.com/Ayush22-04/xetor-backen/internal/sessions"
	"github.com/Ayush22-04/xetor-backen/internal/storage"
	"github.com/Ayush22-04/xetor-backen/internal/tokens"
	"github.com/Ayush22-04/xetor-backen/internal/upload"
	"github.com/Ayush22-04/xetor-backen/internal/users"
	"github.com/Ayush22-04/xetor-backen/pkg/logger"
	"github.com/Ayush22-04/xetor-backen/pkg/metrics"
	"github.com/Ayush22-04/xetor-backen/pkg/middleware"
	"github.com/gin-contrib/gzip"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

// stores groups the persistence-backed services chosen at startup.
type stores struct {
	handle   *database.Handle
	docs     repository.Repository
	users    *users.Service
	sessions *sessions.Service
}

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = randomSecret()
		logger.Warnf("JWT_SECRET not set; using a random secret, tokens will not survive a restart")
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Infof("config loaded: mongo=%v redis=%v mail=%v upload=%q", cfg.MongoDB.URI != "", cfg.Redis.Addr() != "", cfg.Mail.Enabled(), cfg.Upload.Backend)

	ctx := context.Background()
	rdb := connectRedis(ctx, cfg)
	st := openStores(ctx, cfg, rdb)
	bootstrapAdmin(ctx, st.users)

	var sender notify.Sender = notify.NoopSender{}
	if cfg.Mail.Enabled() {
		sender = notify.NewSMTPSender(cfg.Mail)
	} else {
		logger.Warnf("MAIL_SERVER/MAIL_DEFAULT_SENDER not set; contact notifications are disabled")
	}
	dispatcher := notify.NewDispatcher(sender)
	docSvc := service.New(st.docs, dispatcher)

	r := newRouter(cfg, rdb, st, docSvc, dispatcher, newUploader(cfg))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
	if st.handle != nil {
		_ = st.handle.Disconnect(shutdownCtx)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logger.Fatalf("generate secret: %v", err)
	}
	return hex.EncodeToString(b)
}

// connectRedis returns nil when Redis is not configured or unreachable.
func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	addr := cfg.Redis.Addr()
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
		_ = client.Close()
		return nil
	}
	sessions.SetBlacklistClient(client)
	logger.Infof("connected to Redis: %s", addr)
	return client
}

// openStores wires Mongo-backed services when MONGODB_URI is set and in-memory ones otherwise.
// Refresh sessions prefer Redis whenever it is reachable.
func openStores(ctx context.Context, cfg *config.Config, rdb *redis.Client) stores {
	var st stores
	if rdb != nil {
		st.sessions = sessions.NewService(sessions.NewRedisRepository(rdb, "session:"))
		logger.Infof("using Redis for session storage")
	}

	if cfg.MongoDB.URI == "" {
		st.docs = repository.NewMemoryRepo()
		st.users = users.NewService(users.NewMemoryUserRepository(), cfg.Auth.BcryptCost)
		if st.sessions == nil {
			st.sessions = sessions.NewService(sessions.NewMemoryRepository())
		}
		logger.Warnf("running with the in-memory store; data is lost on restart")
		return st
	}

	st.handle = database.NewHandle(cfg.MongoDB.URI, cfg.MongoDB.Database, cfg.MongoDB.Timeout)
	// retry/backoff to tolerate startup races; later calls reconnect on demand
	const maxAttempts = 5
	backoff := time.Second
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		db, err := st.handle.Database(ctx)
		if err == nil {
			if err := database.EnsureIndexes(ctx, db, database.DefaultIndexes); err != nil {
				logger.Warnf("index bootstrap failed: %v", err)
			}
			break
		}
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	st.docs = repository.NewMongoRepo(st.handle, cfg.MongoDB.Timeout)
	st.users = users.NewService(users.NewMongoUserRepository(st.handle.Collection(collections.StorageAdminUsers)), cfg.Auth.BcryptCost)
	if st.sessions == nil {
		st.sessions = sessions.NewService(sessions.NewMongoRepository(st.handle.Collection(sessions.CollectionName)))
	}
	return st
}

// bootstrapAdmin creates ADMIN_USERNAME/ADMIN_PASSWORD when that account does not exist yet.
func bootstrapAdmin(ctx context.Context, svc *users.Service) {
	name, pw := os.Getenv("ADMIN_USERNAME"), os.Getenv("ADMIN_PASSWORD")
	if name == "" || pw == "" {
		return
	}
	if _, err := svc.Create(ctx, name, pw); err != nil {
		if errors.Is(err, users.ErrDuplicateUsername) {
			return
		}
		logger.Warnf("bootstrap admin %q: %v", name, err)
		return
	}
	logger.Infof("created admin account %q", name)
}

func newUploader(cfg *config.Config) upload.Uploader {
	var store upload.ObjectStore
	if mcfg := storage.LoadMinIOConfig(); mcfg.Configured() {
		s, err := storage.NewMinIOStorage(mcfg)
		if err != nil {
			logger.Warnf("MinIO unavailable: %v", err)
		} else {
			store = s
		}
	}
	return upload.New(cfg.Upload, store)
}

func newRouter(cfg *config.Config, rdb *redis.Client, st stores, docSvc *service.Service, dispatcher *notify.Dispatcher, uploader upload.Uploader) *gin.Engine {
	r := gin.New()
	r.Use(
		ginzap.Ginzap(logger.L(), time.RFC3339, true),
		ginzap.RecoveryWithZap(logger.L(), true),
		middleware.RequestMetrics(),
		middleware.CORS(cfg.CORS.Origins),
	)

	// optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.Window))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when the document store answers
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		ready := true
		deps := map[string]bool{}

		deps["store"] = docSvc.Ping(ctx) == nil
		ready = ready && deps["store"]
		if rdb != nil {
			deps["redis"] = rdb.Ping(ctx).Err() == nil
			if cfg.RateLimit.UseRedis {
				ready = ready && deps["redis"]
			}
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterSwagger(r)

	api := r.Group("/api", gzip.Gzip(gzip.DefaultCompression))
	dochandler.RegisterRoutes(api, docSvc)

	verifier := tokens.NewVerifier(cfg.JWT.Secret)
	handlers.NewAuthHandler(cfg, st.users, st.sessions, verifier).Register(r.Group("/"))
	admin := r.Group("/admin", middleware.AuthMiddleware(verifier), middleware.RequireRole(tokens.RoleAdmin))
	handlers.NewAdminHandler(docSvc, st.users, uploader, dispatcher, cfg.Mail.AdminAddress).Register(admin)

	return r
}
