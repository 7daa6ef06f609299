// Package app assembles the HTTP API, the realtime feed and the background
// jobs into one process.
package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mroshb/kudos/internal/config"
	"github.com/mroshb/kudos/internal/database"
	"github.com/mroshb/kudos/internal/feed"
	"github.com/mroshb/kudos/internal/handlers"
	"github.com/mroshb/kudos/internal/jobs"
	"github.com/mroshb/kudos/internal/middleware"
	"github.com/mroshb/kudos/internal/notify"
	"github.com/mroshb/kudos/internal/repositories"
	"github.com/mroshb/kudos/internal/security"
	"github.com/mroshb/kudos/internal/services"
	"github.com/mroshb/kudos/pkg/logger"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	Config    *config.Config
	DB        *gorm.DB
	Redis     *redis.Client
	Hub       *feed.Hub
	Limiter   *middleware.RateLimiter
	Scheduler *jobs.Scheduler
	Relay     *notify.TelegramRelay

	users   *repositories.UserRepository
	handler http.Handler
}

// New wires repositories, services and routes. rdb may be nil.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())

	userRepo := repositories.NewUserRepository(db)
	kudoRepo := repositories.NewKudoRepository(db, repositories.NewLedgerRepository(db))

	kudoSvc := services.NewKudoService(kudoRepo)
	catalogSvc := services.NewCatalogService(
		userRepo,
		repositories.NewCoreValueRepository(db),
		repositories.NewRewardRepository(db),
		repositories.NewRedemptionRepository(db),
	)
	authSvc := services.NewAuthService(userRepo, repositories.NewAuthCodeRepository(rdb, cfg.AuthCodeTTL), tokens)
	budgetSvc := services.NewBudgetService(userRepo, cfg.DefaultGivingBudget)

	hub := feed.NewHub(cfg.FeedBufferSize)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerUser, cfg.RateLimitPerIP, cfg.RateLimitWindow)

	h := handlers.NewHandlerManager(cfg, db, kudoSvc, catalogSvc, authSvc, limiter)
	h.AttachFeed(hub, feed.NewServer(hub, authSvc, cfg.FeedClientBuffer, cfg.AllowedOrigins()))

	return &App{
		Config:    cfg,
		DB:        db,
		Redis:     rdb,
		Hub:       hub,
		Limiter:   limiter,
		Scheduler: jobs.NewScheduler(budgetSvc, cfg.BudgetResetSchedule),
		users:     userRepo,
		handler:   h.Router(),
	}
}

func (a *App) Handler() http.Handler {
	return a.handler
}

// EnableTelegramRelay mirrors new kudos to the configured chat. It is a
// no-op when the relay is not configured.
func (a *App) EnableTelegramRelay() error {
	if !a.Config.TelegramRelayEnabled() {
		return nil
	}

	api, err := tgbotapi.NewBotAPI(a.Config.TelegramBotToken)
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}
	logger.Info("Telegram relay authorized", "username", api.Self.UserName, "chat_id", a.Config.TelegramChatID)

	a.Relay = notify.NewTelegramRelay(api, a.users, a.Config.TelegramChatID, a.Config.FeedClientBuffer)
	return nil
}

// Run serves HTTP until ctx is cancelled, then drains the server, stops the
// scheduler and finally the hub, which disconnects every feed client.
func (a *App) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.Hub.Run(hubCtx)

	if a.Relay != nil {
		a.Hub.Join(a.Relay)
	}

	g, ctx := errgroup.WithContext(ctx)

	if err := a.Scheduler.Start(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + a.Config.AppPort,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr, "env", a.Config.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		a.Scheduler.Stop()
		stopHub()
		<-a.Hub.Done()
		return err
	})

	return g.Wait()
}

// Close releases the stores. Call it after Run has returned.
func (a *App) Close() {
	a.Limiter.Close()
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Warn("Failed to close redis", "error", err)
		}
	}
	if err := database.Close(a.DB); err != nil {
		logger.Warn("Failed to close database", "error", err)
	}
}
