package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/agicotech/ForumApp/internal/audit"
	"github.com/agicotech/ForumApp/internal/auth"
	"github.com/agicotech/ForumApp/internal/config"
	"github.com/agicotech/ForumApp/internal/forum"
	"github.com/agicotech/ForumApp/internal/handlers/api"
	"github.com/agicotech/ForumApp/internal/middlewares"
	"github.com/agicotech/ForumApp/internal/store"
	"github.com/agicotech/ForumApp/internal/users"
	"github.com/agicotech/ForumApp/model"
	"github.com/agicotech/ForumApp/params"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var (
	app       *cli.App
	gitCommit string
	gitDate   string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "forumapp - A forum server with role-based moderation and audit trail"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name: "version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(params.VersionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
	}
	app.Action = run
}

func mustInitLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func mustInitDatabase(dbConfig config.MySQLConfig) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dbConfig.Dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   dbConfig.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Failed to access database pool", "error", err)
		os.Exit(1)
	}
	if dbConfig.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	}
	if dbConfig.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	}
	if dbConfig.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(dbConfig.ConnMaxIdleTime) * time.Second)
	}
	if dbConfig.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Second)
	}

	if err := model.AutoMigrate(db); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}
	return db
}

func mustInitRedis(redisCfg config.RedisConfig) redis.UniversalClient {
	opts, err := redis.ParseURL(redisCfg.URL)
	if err != nil {
		slog.Error("Invalid redis URL", "error", err)
		os.Exit(1)
	}
	opts.PoolSize = redisCfg.PoolSize
	return redis.NewClient(opts)
}

func setupAPIRoutes(
	router fiber.Router,
	authHandler *api.AuthHandler,
	auditHandler *api.AuditHandler,
	topicHandler *api.TopicHandler,
	messageHandler *api.MessageHandler) {

	adminOnly := middlewares.RequireRole(model.RoleAdmin)
	memberOnly := middlewares.RequireRole(model.RoleUser, model.RoleAdmin)

	router.Post("/auth/register", authHandler.PostRegister)
	router.Post("/auth/login", authHandler.PostLogin)
	router.Post("/auth/change-password", middlewares.RequireAuth(), authHandler.PostChangePassword)
	router.Post("/auth/promote-to-admin/:userId", adminOnly, authHandler.PostPromoteToAdmin)
	router.Get("/auth/users", adminOnly, authHandler.GetUsers)

	router.Get("/audit", adminOnly, auditHandler.GetAll)
	router.Get("/audit/user/:userId", adminOnly, auditHandler.GetByUser)

	router.Get("/topics", topicHandler.GetTopics)
	router.Get("/topics/:id", topicHandler.GetTopic)
	router.Post("/topics", adminOnly, topicHandler.PostTopic)
	router.Delete("/topics/:id", adminOnly, topicHandler.DeleteTopic)

	router.Get("/messages/topic/:topicId", messageHandler.GetByTopic)
	router.Get("/messages/:id", messageHandler.GetMessage)
	router.Post("/messages", memberOnly, messageHandler.PostMessage)
	router.Put("/messages/:id", memberOnly, messageHandler.PutMessage)
	router.Delete("/messages/:id", memberOnly, messageHandler.DeleteMessage)
}

func run(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}

	mustInitLogger(cfg.Debug || ctx.IsSet(debugFlag.Name))

	db := mustInitDatabase(cfg.MySQL)
	rdb := mustInitRedis(cfg.Redis)
	cacheStorage := store.NewRedisStorage(rdb)

	// repositories
	var (
		userRepo    = users.NewUserRepository(db)
		auditRepo   = audit.NewAuditLogRepository(db)
		topicRepo   = forum.NewTopicRepository(db)
		messageRepo = forum.NewMessageRepository(db)
	)
	audit.Initialize(auditRepo)

	// services
	var (
		tokenService = auth.NewTokenService(
			cfg.JWT.SecretKey,
			cfg.JWT.Issuer,
			cfg.JWT.Audience,
			time.Duration(cfg.JWT.ExpirationMinutes)*time.Minute,
		)
		userService  = users.NewUserService(userRepo, tokenService)
		forumService = forum.NewForumService(topicRepo, messageRepo, cacheStorage)
	)

	// handlers
	var (
		authHandler    = api.NewAuthHandler(userService)
		auditHandler   = api.NewAuditHandler(auditRepo)
		topicHandler   = api.NewTopicHandler(forumService)
		messageHandler = api.NewMessageHandler(forumService)
	)

	router := fiber.New(fiber.Config{
		CaseSensitive: true,
		BodyLimit:     params.ServerBodyLimit,
		IdleTimeout:   params.ServerIdleTimeout,
		ReadTimeout:   params.ServerReadTimeout,
		WriteTimeout:  params.ServerWriteTimeout,
		ErrorHandler:  middlewares.ErrorHandler,
	})

	router.Use(recover.New())
	router.Use(logger.New())
	router.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	router.Use(middlewares.TokenAuth(tokenService))
	router.Use(middlewares.RequestAudit())

	setupAPIRoutes(router.Group("/api"), authHandler, auditHandler, topicHandler, messageHandler)

	go startHealthCheckServer(params.HealthCheckServerAddr, rdb, db)

	return router.Listen(cfg.ListenAddr)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
