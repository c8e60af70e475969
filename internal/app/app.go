package app

import (
	"log"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/shoplead/shoplead_server/config"
	"github.com/shoplead/shoplead_server/internal/database"
	"github.com/shoplead/shoplead_server/internal/pkg/email"
	"github.com/shoplead/shoplead_server/internal/pkg/lock"
	"github.com/shoplead/shoplead_server/internal/pkg/oss"
	"github.com/shoplead/shoplead_server/internal/pkg/pubsub"
	"github.com/shoplead/shoplead_server/internal/pkg/queue"
	"github.com/shoplead/shoplead_server/internal/repository"
	"github.com/shoplead/shoplead_server/internal/service"
)

// App server、worker 与命令行共用的依赖
type App struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client // 未配置 Redis 时为 nil
	Store  *repository.Store

	Queue     *queue.Queue      // 未配置 Redis 时为 nil
	Publisher *pubsub.Publisher // 未配置 Redis 时为 nil

	Ingest      *service.IngestService
	Imports     *service.ImportService
	WorkCenters *service.WorkCenterService
	Jobs        *service.JobService
	NCRs        *service.NCRService
	WorkLogs    *service.WorkLogService
}

// New 连接数据库并建表；Redis、OSS 与邮件按配置启用
func New(cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, err
	}
	log.Printf("Database connected (%s)", cfg.Database.Driver)

	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}

	a := &App{
		Config: cfg,
		DB:     db,
		Store:  repository.NewStore(db),
	}

	var locker lock.Locker = lock.NewLocalLocker()
	var enqueuer service.Enqueuer
	if cfg.Redis.Enabled() {
		rdb, err := database.NewRedis(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		log.Println("Redis connected")

		a.Redis = rdb
		a.Queue = queue.NewQueue(rdb, cfg.Queue.IngestQueue)
		a.Publisher = pubsub.NewPublisher(rdb)
		locker = lock.NewRedisLocker(rdb)
		enqueuer = a.Queue
	} else {
		log.Println("Redis not configured, using in-process lock")
	}

	var archiver service.Archiver
	if oss.Enabled(&cfg.OSS) {
		client, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Printf("Warning: Failed to init OSS client: %v", err)
		} else {
			archiver = client
			log.Println("OSS client initialized")
		}
	}

	var notifier service.NCRNotifier
	if mailer := email.NewService(&cfg.Email); mailer.Enabled() {
		notifier = mailer
		log.Printf("NCR alerts enabled for %d recipients", len(cfg.Email.AlertRecipients))
	}

	a.Ingest = service.NewIngestService(a.Store, locker, notifier, &cfg.Ingest)
	a.Imports = service.NewImportService(cfg, a.Store.Runs, enqueuer, archiver)
	a.WorkCenters = service.NewWorkCenterService(a.Store.Operations)
	a.Jobs = service.NewJobService(a.Store.Jobs, a.Store.Operations)
	a.NCRs = service.NewNCRService(a.Store.NCRs)
	a.WorkLogs = service.NewWorkLogService(a.Store.WorkLogs, cfg.Ingest.BatchSize)
	return a, nil
}

// Close 关闭数据库与 Redis 连接
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Printf("close redis: %v", err)
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("close database: %v", err)
		}
	}
}
