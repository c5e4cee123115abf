package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"collectify-be/internal/config"
	"collectify-be/internal/controller"
	"collectify-be/internal/handler"
	"collectify-be/internal/identity"
	"collectify-be/internal/jobs"
	"collectify-be/internal/pkg/cipher"
	"collectify-be/internal/pkg/jwtauth"
	"collectify-be/internal/pkg/logger"
	"collectify-be/internal/pkg/mailer"
	"collectify-be/internal/pkg/serverutils"
	"collectify-be/internal/pkg/storage"
	"collectify-be/internal/pkg/tokenstore"
	"collectify-be/internal/repository/memory"
	"collectify-be/internal/repository/unitofwork"
	"collectify-be/internal/service"
	"collectify-be/internal/websocket"
	pktNats "collectify-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AccountController controller.IAccountController
	NoteController    controller.INoteController
	GroupController   controller.IGroupController

	AuthMiddleware fiber.Handler

	// Background services, started by Start
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService
	RefreshTokenCleanup *jobs.RefreshTokenCleanup

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	UowFactory unitofwork.RepositoryFactory
	Logger     logger.ILogger

	pubSub  *gochannel.GoChannel
	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
	rdb     *redis.Client
	cancel  context.CancelFunc
}

// NewContainer wires every dependency. A nil db selects the in-memory
// repositories; an empty NATS or Redis URL disables that integration.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	if cfg.Auth.JwtSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	noteCipher, err := cipher.New(cfg.Crypto.NoteEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid NOTE_ENCRYPTION_KEY: %w", err)
	}

	// 1. Persistence
	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	} else {
		sysLogger.Warn("Bootstrap", "Using in-memory repositories, data is lost on restart", nil)
		uowFactory = memory.NewRepositoryFactory(memory.NewStore())
	}

	avatars, err := newAvatarStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	var emailService mailer.IEmailService = mailer.NopEmailService{Log: sysLogger}
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			cfg.SMTP.SenderName,
			sysLogger,
		)
	}

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)

	// 3. Infrastructure
	natsPub, natsSub := connectNats(cfg.Messaging.NatsURL, sysLogger)
	rdb := connectRedis(ctx, cfg.Messaging.RedisURL, sysLogger)

	var denylist tokenstore.Denylist
	if rdb != nil {
		denylist = tokenstore.NewRedisDenylist(rdb)
	} else {
		denylist = tokenstore.NewMemoryDenylist(cfg.Auth.RefreshCleanupInterval)
	}

	wsLogger := sysLogger
	if cfg.App.NotificationLogPath != "" {
		wsLogger = logger.NewIsolatedLogger(cfg.App.NotificationLogPath)
	}
	wsHub := websocket.NewHub(rdb, wsLogger)

	// 4. Services
	jwtManager := jwtauth.NewManager(cfg.Auth.JwtSecret, cfg.Auth.JwtIssuer, cfg.Auth.AccessTokenTTL)
	tokenService := service.NewTokenService(uowFactory, jwtManager, cfg.Auth.RefreshTokenTTL)
	credentials := identity.NewCredentialStore(
		uowFactory,
		identity.DefaultPasswordPolicy(cfg.Auth.PasswordMinLength),
		cfg.Auth.PasswordHashCost,
	)

	publisherService := service.NewPublisherService(pubSub, natsPub, sysLogger)

	accountService := service.NewAccountService(
		credentials,
		tokenService,
		denylist,
		avatars,
		uowFactory,
		cfg.Storage.AvatarMaxBytes,
		sysLogger,
	)
	noteService := service.NewNoteService(uowFactory, noteCipher, publisherService, sysLogger)
	groupService := service.NewGroupService(uowFactory, publisherService, sysLogger)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Messaging.MemberAddedTopic,
		uowFactory,
		emailService,
		sysLogger,
	)
	notifService := service.NewNotificationService(uowFactory, natsSub, pubSub, wsHub, wsLogger)

	// 5. Controllers
	return &Container{
		AccountController: controller.NewAccountController(accountService),
		NoteController:    controller.NewNoteController(noteService),
		GroupController:   controller.NewGroupController(groupService),
		AuthMiddleware:    serverutils.NewJwtMiddleware(tokenService, denylist),

		ConsumerService:     consumerService,
		NotificationService: notifService,
		RefreshTokenCleanup: jobs.NewRefreshTokenCleanup(tokenService, cfg.Auth.RefreshCleanupInterval, sysLogger),

		NotificationHandler: handler.NewNotificationHandler(tokenService, denylist, wsHub, wsLogger),
		WebSocketHub:        wsHub,

		UowFactory: uowFactory,
		Logger:     sysLogger,

		pubSub:  pubSub,
		natsPub: natsPub,
		natsSub: natsSub,
		rdb:     rdb,
	}, nil
}

// Start launches the background workers. They run until Stop.
func (c *Container) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	if err := c.ConsumerService.Consume(ctx); err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}
	if err := c.NotificationService.Start(ctx); err != nil {
		return err
	}

	go c.WebSocketHub.Run(ctx)
	c.RefreshTokenCleanup.Start()
	return nil
}

func (c *Container) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()

	c.RefreshTokenCleanup.Stop()
	c.NotificationService.Stop()

	if err := c.pubSub.Close(); err != nil {
		c.Logger.Warn("Bootstrap", "Failed to close event bus", map[string]interface{}{"error": err.Error()})
	}
	c.natsSub.Close()
	c.natsPub.Close()
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
}

func newAvatarStorage(ctx context.Context, cfg config.StorageConfig) (storage.AvatarStorage, error) {
	if cfg.Driver == "s3" {
		s3Storage, err := storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init s3 storage: %w", err)
		}
		return s3Storage, nil
	}

	localStorage, err := storage.NewLocalStorage(cfg.LocalDir, cfg.PublicPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to init local storage: %w", err)
	}
	return localStorage, nil
}

func connectNats(url string, log logger.ILogger) (*pktNats.Publisher, *pktNats.Subscriber) {
	if url == "" {
		return nil, nil
	}

	pub, err := pktNats.NewPublisher(url)
	if err != nil {
		log.Warn("Bootstrap", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		return nil, nil
	}
	sub, err := pktNats.NewSubscriber(url)
	if err != nil {
		log.Warn("Bootstrap", "Failed to connect to NATS Subscriber", map[string]interface{}{"error": err.Error()})
		return pub, nil
	}
	return pub, sub
}

func connectRedis(ctx context.Context, url string, log logger.ILogger) *redis.Client {
	if url == "" {
		return nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("Bootstrap", "Failed to parse Redis URL, using it as an address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Bootstrap", "Redis unreachable, falling back to in-memory denylist", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}
