package wire

import (
	"context"
	"errors"
	"net/http"

	"stay-nest/internal/adaptor"
	"stay-nest/internal/data/repository"
	"stay-nest/internal/notify"
	"stay-nest/internal/usecase"
	"stay-nest/pkg/cache"
	"stay-nest/pkg/middleware"
	"stay-nest/pkg/storage"
	"stay-nest/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const notifyWorkers = 4

// App holds the router and the background collaborators that must be
// released on shutdown.
type App struct {
	Router *chi.Mux

	dispatcher *notify.Dispatcher
	hub        *notify.Hub
	redis      *redis.Client
}

// Wiring builds the infrastructure, services and handlers.
func Wiring(ctx context.Context, repo *repository.Repository, config *utils.Config, logger *zap.Logger) (*App, error) {
	rdb, err := cache.NewRedisClient(ctx, config.Redis)
	if err != nil {
		return nil, err
	}

	var propertyCache cache.PropertyCache
	if rdb != nil {
		propertyCache = cache.NewRedisPropertyCache(rdb, config.Redis.PropertyTTL, logger)
	} else {
		logger.Warn("REDIS_ADDR not set, using in-process property cache")
		propertyCache = cache.NewMemoryPropertyCache(config.Redis.PropertyTTL)
	}

	images, err := storage.NewImageStore(config.Cloudinary, logger)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, err
	}

	// Notification pipeline: handlers publish, workers persist, push and mail.
	hub := notify.NewHub(logger)
	mailer := notify.NewMailer(config.Email, logger)
	notifications := usecase.NewNotificationService(repo, hub, mailer, logger)
	dispatcher := notify.NewDispatcher(notifications.Deliver, config.Notify.QueueSize, notifyWorkers, logger)

	service := usecase.NewService(repo, config, usecase.Deps{
		Cache:     propertyCache,
		Images:    images,
		Mailer:    mailer,
		Publisher: dispatcher,
	}, notifications, logger)
	handler := adaptor.NewHandler(service, hub, logger)

	router := setupRouter(handler, repo, config, logger)

	return &App{
		Router:     router,
		dispatcher: dispatcher,
		hub:        hub,
		redis:      rdb,
	}, nil
}

// Close drains pending notifications, then disconnects websocket clients
// and the cache.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.dispatcher.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.hub.Close(); err != nil {
		errs = append(errs, err)
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Recover sits outermost so panics inside the logger are caught too
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))

	wireAuth(r, handler.Auth, repo, config, logger)
	wireUser(r, handler.User, repo, config, logger)
	wireProperty(r, handler.Property, repo, config, logger)
	wireBooking(r, handler.Booking, repo, config, logger)
	wireReview(r, handler.Review, repo, config, logger)
	wireNotification(r, handler.Notification, handler.WS, repo, config, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
