package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shoplead/shoplead_server/config"
	"github.com/shoplead/shoplead_server/internal/api"
	"github.com/shoplead/shoplead_server/internal/api/handler"
	"github.com/shoplead/shoplead_server/internal/app"
	"github.com/shoplead/shoplead_server/internal/pkg/cron"
	"github.com/shoplead/shoplead_server/internal/pkg/pubsub"
	"github.com/shoplead/shoplead_server/internal/pkg/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 初始化 WebSocket Hub；worker 的进度经 Redis 转发到这里
	hub := ws.NewHub()
	if a.Redis != nil {
		subscriber := pubsub.NewSubscriber(a.Redis)
		go func() {
			err := subscriber.Subscribe(ctx, func(msg *pubsub.ProgressMessage) {
				if err := hub.SendProgress(msg); err != nil {
					log.Printf("forward progress for run %d: %v", msg.RunID, err)
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("progress subscriber stopped: %v", err)
			}
		}()
	}

	// 定时清理
	cronService := cron.NewService(a.Store.Runs, cfg.Upload.TempDir, cfg.Upload.ExpireHours, cfg.Ingest.StaleRunHours)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Handler
	router := api.NewRouter(
		handler.NewIngestHandler(a.Ingest, a.Imports, hub, cfg),
		handler.NewWorkCenterHandler(a.WorkCenters),
		handler.NewJobHandler(a.Jobs),
		handler.NewNCRHandler(a.NCRs),
		handler.NewWorkLogHandler(a.WorkLogs, a.Imports),
		handler.NewWebSocketHandler(hub, cfg.JWT.Secret, cfg.CORS.AllowedOrigins),
		cfg,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Received shutdown signal")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	log.Println("Server stopped")
}
