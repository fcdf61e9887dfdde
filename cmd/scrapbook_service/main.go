package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisclient "github.com/go-redis/redis/v8"

	"github.com/STop211650/ai-scrapbook/internal/config"
	"github.com/STop211650/ai-scrapbook/internal/database/milvus"
	"github.com/STop211650/ai-scrapbook/internal/database/minio"
	"github.com/STop211650/ai-scrapbook/internal/database/mongo"
	"github.com/STop211650/ai-scrapbook/internal/database/redis"
	"github.com/STop211650/ai-scrapbook/internal/embedding"
	"github.com/STop211650/ai-scrapbook/internal/llm"
	"github.com/STop211650/ai-scrapbook/internal/scrapbook/api"
	"github.com/STop211650/ai-scrapbook/internal/scrapbook/extract"
	"github.com/STop211650/ai-scrapbook/internal/scrapbook/extract/convert"
	"github.com/STop211650/ai-scrapbook/internal/scrapbook/service"
	"github.com/STop211650/ai-scrapbook/internal/scrapbook/store"
	"github.com/STop211650/ai-scrapbook/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Init(logger.ParseLevel("info"))
		logger.New("scrapbook_service").Fatal("loading config: " + err.Error())
	}

	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	log := logger.New("scrapbook_service")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Storage backends. Every client is built here once and injected.
	mongoClient, err := mongo.Connect(ctx, &cfg.Databases.MongoDB)
	if err != nil {
		log.Fatal("connecting to mongodb: " + err.Error())
	}
	defer mongoClient.Disconnect(context.Background())

	milvusClient, err := milvus.Connect(ctx, &cfg.Databases.Milvus)
	if err != nil {
		log.Fatal("connecting to milvus: " + err.Error())
	}
	defer milvusClient.Close()

	minioClient, err := minio.Connect(ctx, &cfg.Databases.MinIO)
	if err != nil {
		log.Fatal("connecting to minio: " + err.Error())
	}

	// Redis is optional; without it classification and link previews just
	// skip their caches.
	var redisClient *redisclient.Client
	if cfg.Databases.Redis.Address != "" {
		redisClient, err = redis.Connect(ctx, &cfg.Databases.Redis)
		if err != nil {
			log.Warn("redis unavailable, caching disabled: " + err.Error())
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	contentStore := store.NewMongoContentStore(mongoClient, cfg.Databases.MongoDB)
	if err := contentStore.EnsureIndexes(ctx); err != nil {
		log.Fatal("preparing mongodb indexes: " + err.Error())
	}

	embeddingIndex := store.NewMilvusEmbeddingIndex(milvusClient, cfg.Databases.Milvus)
	if err := embeddingIndex.EnsureCollection(ctx); err != nil {
		log.Fatal("preparing milvus collection: " + err.Error())
	}

	objectStore := store.NewMinIOObjectStore(minioClient, cfg.Databases.MinIO)
	if err := objectStore.EnsureBucket(ctx); err != nil {
		log.Fatal("preparing minio bucket: " + err.Error())
	}

	// Model providers.
	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		log.Fatal("building llm client: " + err.Error())
	}
	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		log.Fatal("building embedding client: " + err.Error())
	}

	// Extraction pipeline.
	extractor := extract.NewExtractor(
		extract.NewClassifier(redisClient, log),
		extract.NewTwitterClient(cfg.Social.Twitter),
		extract.NewRedditClient(cfg.Social.Reddit),
		extract.NewLinkExtractor(redisClient, log),
		extract.NewAssetDownloader(cfg.Server.MaxAssetBytes),
		convert.NewRegistry(),
		log,
	)

	// Services.
	jobs := service.NewJobRunner(log)
	enricher := service.NewEnricher(llmClient, log)
	captureService := service.NewCaptureService(contentStore, embeddingIndex, objectStore, extractor, enricher, embedder, jobs, log)
	searchService := service.NewSearchService(contentStore, embeddingIndex, embedder, log)
	askService := service.NewAskService(searchService, contentStore, llmClient, log)
	summarizeService := service.NewSummarizeService(extractor, llmClient, log)

	handler := api.NewHandler(captureService, searchService, askService, summarizeService,
		contentStore, cfg.Server.MaxUploadBytes, log)
	router := api.NewRouter(cfg, handler, log)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		log.Info("listening on " + cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server: " + err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed: " + err.Error())
	}
	jobs.Wait()
	log.Info("stopped")
}
