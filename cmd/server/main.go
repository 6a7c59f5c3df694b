package main

import (
	"fmt"
	"log"

	"chunkrelay/internal/config"
	"chunkrelay/internal/handler"
	"chunkrelay/internal/router"
	"chunkrelay/internal/service"
	s3storage "chunkrelay/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize services
	uploadSvc := service.NewUploadService(s3Client, cfg.Upload.ChunkSize())
	objectSvc := service.NewObjectService(s3Client)

	// Initialize handlers
	uploadH := handler.NewUploadHandler(uploadSvc)
	objectH := handler.NewObjectHandler(objectSvc)
	healthH := handler.NewHealthHandler(s3Client)

	// Setup router
	r := router.Setup(cfg, uploadH, objectH, healthH)

	log.Printf("Relay starting on %s (bucket %s, chunk size %d bytes)",
		cfg.Server.Port, cfg.S3.Bucket, cfg.Upload.ChunkSize())
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
