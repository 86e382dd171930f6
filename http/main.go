package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lumenhealth/media-asset-service/config"
	"github.com/lumenhealth/media-asset-service/http/controller"
	routes "github.com/lumenhealth/media-asset-service/http/route"
	infraPkg "github.com/lumenhealth/media-asset-service/infra"
	"github.com/lumenhealth/media-asset-service/repository"
	"github.com/lumenhealth/media-asset-service/scheduler"
	"github.com/lumenhealth/media-asset-service/storage"
	"github.com/lumenhealth/media-asset-service/upload"
	"github.com/lumenhealth/media-asset-service/utils"
)

func main() {
	err := godotenv.Load("staging.env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra.Postgres.DB)

	// Surface a misconfigured storage backend before the first upload
	// fails. Connectivity trouble here is loud but not fatal; the backend
	// may come up after the service does.
	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := infra.Minio.Health(startupCtx); err != nil {
		log.Printf("Storage health check failed: %v", err)
	} else if err := infra.Minio.EnsureBucket(startupCtx); err != nil {
		log.Printf("Bucket setup failed: %v", err)
	}
	cancel()

	clock := utils.NewClock()
	adapter := storage.NewAdapter(
		infra.Minio,
		cfg.EnvConfig.Minio.PublicBase+"/"+cfg.EnvConfig.Minio.Bucket,
		cfg.EnvConfig.Upload.BufferThreshold,
		cfg.EnvConfig.Upload.PartSize,
		clock,
	)
	signer := storage.NewSigner(infra.Minio, cfg.EnvConfig.SignedURL.Window, clock)
	orchestrator := upload.NewOrchestrator(
		adapter,
		signer,
		repo.AssetRepo,
		upload.LimitsFromConfig(cfg.EnvConfig),
		clock,
		infra.Logger,
	)

	engine := scheduler.NewEngine(
		scheduler.NewPublishSweep(repo.BlogRepo, infra.Produce.Notify, clock, infra.Logger),
		scheduler.NewRefreshSweep(repo.AssetRepo, signer, infra.Logger),
		infra.Logger,
	)
	if err := engine.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	ctrl := controller.NewController(cfg, infra, repo, adapter, signer, orchestrator, clock)
	router := routes.SetupRouter(ctrl)

	server := &http.Server{
		Addr:    ":" + cfg.EnvConfig.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("HTTP Server started on :%s", cfg.EnvConfig.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	<-engine.Stop().Done()
	infra.RabbitMQ.Close()
	infra.Logger.Shutdown(shutdownCtx)
}
