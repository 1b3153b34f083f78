package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	myPostgresRepo "github.com/osavchuk/contacts-api/internal/adapters/db/postgres"
	myRedisRepo "github.com/osavchuk/contacts-api/internal/adapters/db/redis"
	"github.com/osavchuk/contacts-api/internal/adapters/imagehost"
	"github.com/osavchuk/contacts-api/internal/adapters/mail"
	myHTTP "github.com/osavchuk/contacts-api/internal/adapters/transport/http"
	httpmw "github.com/osavchuk/contacts-api/internal/adapters/transport/http/middleware"
	"github.com/osavchuk/contacts-api/internal/app/authz"
	"github.com/osavchuk/contacts-api/internal/app/contacts"
	"github.com/osavchuk/contacts-api/internal/app/ratelimit"
	"github.com/osavchuk/contacts-api/internal/app/token"
	"github.com/osavchuk/contacts-api/internal/app/users"
	"github.com/osavchuk/contacts-api/internal/domain/contacts/repo"
	"github.com/osavchuk/contacts-api/internal/infra/config"
	lg "github.com/osavchuk/contacts-api/internal/infra/log"
	"github.com/osavchuk/contacts-api/internal/infra/migrate"
	"github.com/osavchuk/contacts-api/internal/infra/server"
)

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	// no redis address means the cache degrades to pass-through
	var cache repo.PrincipalCache = myRedisRepo.NewNoopPrincipalCache()
	if cfg.RedisAddress != "" {
		redisCli := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisCli.Close()
		cache = myRedisRepo.NewPrincipalCache(redisCli, cfg.CacheUserTTL, zapLog)
	} else {
		zapLog.Warn("REDIS_ADDRESS not set, principal cache disabled")
	}

	validate := validator.New()
	tokens := token.New(cfg)

	userRepo := myPostgresRepo.NewUserRepo(db)
	contactRepo := myPostgresRepo.NewContactRepo(db)
	metaRepo := myPostgresRepo.NewMetaRepo(db)

	var uploader users.Uploader
	if cfg.CloudinaryURL != "" {
		uploader, err = imagehost.NewCloudinaryUploader(cfg.CloudinaryURL)
		if err != nil {
			zapLog.Fatal("init cloudinary", zap.Error(err))
		}
	} else {
		zapLog.Warn("CLOUDINARY_URL not set, avatar uploads will fail")
		uploader = imagehost.Unconfigured{}
	}

	usersSvc := users.New(userRepo, metaRepo, cache, tokens, uploader, validate, cfg.DefaultAvatarURL)
	contactsSvc := contacts.New(contactRepo, validate)
	pipeline := authz.New(tokens, cache, userRepo, zapLog)
	meLimiter := ratelimit.NewSlidingWindow(cfg.RateLimitMeCalls, cfg.RateLimitMeWindow)

	mailer := mail.NewSMTPSender(cfg, zapLog)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmw.RequestLogger(zapLog))
	router.Use(httpmw.RateLimitPerIP(50, 100, 10_000, time.Hour))
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length", "X-Verify-Email"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	handler := myHTTP.NewHandler(usersSvc, contactsSvc, mailer, zapLog)
	handler.Register(router, pipeline, meLimiter)

	rootCtx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		return server.StartHTTPServer(ctx, cfg.HTTPAddress, router, zapLog)
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		zapLog.Info("shutdown signal received")
	case <-ctx.Done():
	}
	cancel()

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
