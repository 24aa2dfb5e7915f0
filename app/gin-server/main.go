package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/skillsage/config"
	"github.com/yoockh/skillsage/internal/api/handlers"
	"github.com/yoockh/skillsage/internal/api/middleware"
	"github.com/yoockh/skillsage/internal/api/routes"
	"github.com/yoockh/skillsage/internal/cache"
	"github.com/yoockh/skillsage/internal/jobs"
	"github.com/yoockh/skillsage/internal/logger"
	"github.com/yoockh/skillsage/internal/prompts"
	"github.com/yoockh/skillsage/internal/providers/questions"
	"github.com/yoockh/skillsage/internal/providers/summary"
	mongorepo "github.com/yoockh/skillsage/internal/repositories/mongo"
	pgrepo "github.com/yoockh/skillsage/internal/repositories/postgres"
	"github.com/yoockh/skillsage/internal/scrape"
	"github.com/yoockh/skillsage/internal/services"
	"github.com/yoockh/skillsage/internal/storage"
	"github.com/yoockh/skillsage/internal/workers"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	cfg, err := config.LoadApp()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}
	log.Info("MongoDB connected")

	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	if err := config.MigratePostgres(config.PostgresDB); err != nil {
		log.Fatalf("PostgreSQL migration error: %v", err)
	}
	log.Info("PostgreSQL connected")

	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	log.Info("Redis connected")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model, embedder, err := buildLLM(ctx, cfg)
	if err != nil {
		log.Fatalf("LLM init error: %v", err)
	}
	defer model.Close()

	speech, err := buildSTT(ctx, cfg)
	if err != nil {
		log.Fatalf("speech init error: %v", err)
	}
	defer speech.Close()

	var uploader storage.Uploader
	if cfg.GCSBucket != "" {
		gcs, err := storage.NewGCSUploader(ctx, cfg.GCSBucket, cfg.GoogleCredentialsFile, os.Getenv("GCS_PUBLIC") == "true")
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		defer gcs.Close()
		uploader = gcs
	} else {
		log.Warn("GCS_BUCKET not set; uploads are disabled")
	}

	pm, err := prompts.NewManager()
	if err != nil {
		log.Fatalf("prompt templates: %v", err)
	}

	// repositories
	interviewRepo := pgrepo.NewInterviewRepo(config.PostgresDB)
	profileRepo := pgrepo.NewProfileRepo(config.PostgresDB)
	uploadRepo := pgrepo.NewUploadRepo(config.PostgresDB)
	resumeRepo := pgrepo.NewResumeRepo(config.PostgresDB)
	referenceRepo := pgrepo.NewReferenceRepo(config.PostgresDB)
	aiCallRepo := mongorepo.NewAICallRepo(config.MongoDatabase())

	// services
	aiCalls := services.NewAICallService(aiCallRepo, cfg.AICallTTL, log)
	references := services.NewReferenceService(services.ReferenceDeps{
		Repo:     referenceRepo,
		Redis:    config.RedisClient,
		LLM:      model,
		Embedder: embedder,
		Pages:    scrape.NewFetcher(15 * time.Second),
		Prompts:  pm,
		Recorder: aiCalls,
		Log:      log,
		Timeout:  cfg.QuestionTimeout,
	})

	source := questions.NewLLMSource(model, pm,
		questions.WithRetriever(references, 4),
		questions.WithRecorder(aiCalls),
		questions.WithTimeout(cfg.QuestionTimeout),
		questions.WithLogger(log),
	)
	interviews := services.NewInterviewService(services.InterviewDeps{
		Repo:              interviewRepo,
		Questions:         source,
		STT:               speech,
		Summarizer:        summary.NewLLMSummarizer(model, pm, aiCalls, cfg.SummaryTimeout),
		Cache:             cache.NewRedisCache(config.RedisClient),
		Recorder:          aiCalls,
		Log:               log,
		TargetMinutes:     cfg.TargetMinutes,
		SummaryTTL:        cfg.SummaryCacheTTL,
		TranscribeTimeout: cfg.TranscribeTimeout,
		Language:          cfg.SpeechLanguage,
	})
	profiles := services.NewProfileService(profileRepo)
	users := services.NewUserService(profiles)
	uploads := services.NewUploadService(uploadRepo, uploader, profiles)
	resumes := services.NewResumeService(resumeRepo, profiles, model, pm, aiCalls, cfg.QuestionTimeout)

	// background work
	pool := &workers.IngestWorkerPool{
		Redis:      config.RedisClient,
		References: references,
		NumWorkers: cfg.IngestWorkers,
		Logger:     log,
	}
	if err := pool.Start(ctx); err != nil {
		log.Fatalf("ingest workers: %v", err)
	}
	refresh := jobs.NewReferenceRefreshJob(interviewRepo, references, cfg.ReferenceRefreshCron, log)
	if err := refresh.Start(); err != nil {
		log.Fatalf("reference refresh job: %v", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	routes.RegisterRoutes(r, routes.Deps{
		Interview: handlers.NewInterviewHandler(interviews),
		Profile:   handlers.NewProfileHandler(profiles, users, uploads),
		Resume:    handlers.NewResumeHandler(uploads, resumes),
		Admin:     handlers.NewAdminHandler(references, aiCalls),
		JWT:       middleware.JWTConfigFromEnv(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdown(log, srv, refresh, pool)
}

func shutdown(log logrus.FieldLogger, srv *http.Server, refresh *jobs.ReferenceRefreshJob, pool *workers.IngestWorkerPool) {
	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	refresh.Stop()
	pool.Wait()

	if config.MongoClient != nil {
		_ = config.MongoClient.Disconnect(ctx)
	}
	if config.RedisClient != nil {
		_ = config.RedisClient.Close()
	}
}
