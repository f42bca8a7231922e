package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/davicafu/hexaquery/internal/config"
	sharedCache "github.com/davicafu/hexaquery/internal/shared/infra/platform/cache"
	sharedDB "github.com/davicafu/hexaquery/internal/shared/infra/platform/db"
	"github.com/davicafu/hexaquery/internal/shared/infra/platform/db/sqlbuilder"
	taskApp "github.com/davicafu/hexaquery/internal/task/application"
	taskDomain "github.com/davicafu/hexaquery/internal/task/domain"
	taskHttp "github.com/davicafu/hexaquery/internal/task/infra/inbound/http"
	taskClickHouse "github.com/davicafu/hexaquery/internal/task/infra/outbound/analytics/clickhouse"
	taskMongo "github.com/davicafu/hexaquery/internal/task/infra/outbound/db/mongodb"
	taskSQL "github.com/davicafu/hexaquery/internal/task/infra/outbound/db/sqlstore"
	taskFile "github.com/davicafu/hexaquery/internal/task/infra/outbound/filesystem"
	userApp "github.com/davicafu/hexaquery/internal/user/application"
	userDomain "github.com/davicafu/hexaquery/internal/user/domain"
	userHttp "github.com/davicafu/hexaquery/internal/user/infra/inbound/http"
	userSQL "github.com/davicafu/hexaquery/internal/user/infra/outbound/db/sqlstore"
	"github.com/davicafu/hexaquery/pkg/logger"
)

// ---------------- Main ----------------
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		panic(err)
	}
	log := logger.Logger() // obtiene logger estructurado
	defer log.Sync()       // flush buffers al salir

	ctx := context.Background()

	// ---------------- Queries ----------------
	// Una configuración inválida es un error de arranque, nunca de petición.
	userScopes, err := userDomain.CompileQueries()
	if err != nil {
		log.Fatal("invalid query setup", zap.Error(err))
	}
	taskScopes, err := taskDomain.CompileQueries()
	if err != nil {
		log.Fatal("invalid query setup", zap.Error(err))
	}

	// ---------------- DB ----------------
	dialect, err := sqlbuilder.ParseDialect(cfg.DBDriver)
	if err != nil || dialect == sqlbuilder.ClickHouse {
		log.Fatal("DB_DRIVER must be sqlite or postgres", zap.String("driver", cfg.DBDriver))
	}
	db, err := sharedDB.Open(ctx, dialect, cfg.SQLDSN())
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := userSQL.InitSchema(ctx, db, dialect); err != nil {
		log.Fatal("failed to initialize users schema", zap.Error(err))
	}
	userRepo := userSQL.NewUserRepoSQL(db, dialect)

	taskRepo, closeTasks := openTaskRepo(ctx, cfg, db, dialect, log)
	defer closeTasks()

	// ---------------- Cache ----------------
	var cacheInstance sharedCache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, cache en memoria", zap.Error(err))
		mem := sharedCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
		defer mem.Stop()
		cacheInstance = mem
	} else {
		cacheInstance = sharedCache.NewRedisCache(rdb, cfg.CacheTTL)
		log.Info("✅ Redis conectado, cache habilitado")
	}

	// --------------- Servicio --------------
	userService := userApp.NewUserService(userRepo, userScopes, cacheInstance, cfg.CacheTTL, log)
	taskService := taskApp.NewTaskService(taskRepo, taskScopes, cacheInstance, cfg.CacheTTL, log)

	// ---------------- HTTP ----------------
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))
	userHttp.RegisterUserRoutes(router, userHttp.NewUserHandler(userService))
	taskHttp.RegisterTaskRoutes(router, taskHttp.NewTaskHandler(taskService))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	log.Info("🚀 Server running",
		zap.String("url", "http://localhost:"+cfg.HTTPPort),
		zap.String("db", dialect.String()),
		zap.String("task_store", cfg.TaskStore),
	)
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		log.Error("failed to start server", zap.Error(err))
		os.Exit(1)
	}
}

// openTaskRepo elige el almacén de tareas según TASK_STORE.
func openTaskRepo(ctx context.Context, cfg *config.Config, db *sql.DB, dialect sqlbuilder.Dialect, log *zap.Logger) (taskDomain.TaskRepository, func()) {
	switch cfg.TaskStore {
	case config.TaskStoreMongo:
		client, err := sharedDB.OpenMongo(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		return taskMongo.NewTaskRepoMongoDB(client, cfg.MongoDB), func() { _ = client.Disconnect(context.Background()) }

	case config.TaskStoreClickHouse:
		ch, err := sharedDB.Open(ctx, sqlbuilder.ClickHouse, cfg.ClickHouseAddr)
		if err != nil {
			log.Fatal("failed to connect to ClickHouse", zap.Error(err))
		}
		repo := taskClickHouse.NewTaskRepoClickHouse(ch)
		if err := repo.InitSchema(ctx); err != nil {
			log.Fatal("failed to initialize ClickHouse schema", zap.Error(err))
		}
		return repo, func() { ch.Close() }

	case config.TaskStoreFile:
		return taskFile.NewJSONTaskStorage(cfg.TaskFile), func() {}

	default:
		if err := taskSQL.InitSchema(ctx, db, dialect); err != nil {
			log.Fatal("failed to initialize tasks schema", zap.Error(err))
		}
		return taskSQL.NewTaskRepoSQL(db, dialect), func() {}
	}
}

// requestLogger registra cada petición con zap.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", c.Writer.Status()),
		)
	}
}
