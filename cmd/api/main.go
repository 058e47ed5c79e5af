// Package main is the entry point for the AirbnbLite API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/airbnblite/airbot/internal/chat"
	"github.com/airbnblite/airbot/internal/config"
	"github.com/airbnblite/airbot/internal/contextbuilder"
	"github.com/airbnblite/airbot/internal/document"
	"github.com/airbnblite/airbot/internal/embedding"
	"github.com/airbnblite/airbot/internal/handler"
	"github.com/airbnblite/airbot/internal/intent"
	"github.com/airbnblite/airbot/internal/llm"
	natsclient "github.com/airbnblite/airbot/internal/nats"
	"github.com/airbnblite/airbot/internal/rag"
	"github.com/airbnblite/airbot/internal/settings"
	"github.com/airbnblite/airbot/internal/store"
	"github.com/airbnblite/airbot/internal/vectorstore"
	"github.com/airbnblite/airbot/internal/vectorstore/memory"
	"github.com/airbnblite/airbot/internal/vectorstore/qdrant"
	"github.com/airbnblite/airbot/pkg/logger"
	"github.com/airbnblite/airbot/pkg/tracing"
)

const claimTTL = 5 * time.Minute

func main() {
	configPath := flag.String("config", "", "YAML file with environment defaults")
	migrateVectors := flag.Bool("migrate-vectors", false, "drop and recreate the vector collection, clearing the ingestion manifest")
	warmPolicies := flag.Bool("warm-policies", false, "ingest every insurance plan's terms document at startup")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "airbot"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "airbot", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Database
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	method, _ := settings.ParseMethod(cfg.InsuranceContextMethod)
	runtime, err := settings.NewRuntime(method)
	if err != nil {
		log.Fatal("failed to initialize runtime settings", zap.Error(err))
	}

	// NATS is optional. Interfaces stay nil when it is disabled.
	var (
		natsConn handler.Connection
		events   chat.EventPublisher
		claimer  rag.Claimer
	)
	if cfg.NATSURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		nc, err := natsclient.Connect(connectCtx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		cancel()
		if err != nil {
			log.Fatal("failed to connect to NATS", zap.Error(err))
		}
		defer nc.Close()
		natsConn = nc

		if err := natsclient.NewStreamManager(nc).EnsureStream(ctx); err != nil {
			log.Fatal("failed to ensure stream", zap.Error(err))
		}
		events = natsclient.NewEventPublisher(nc)

		c, err := natsclient.NewClaimer(ctx, nc, claimTTL, log)
		if err != nil {
			log.Warn("ingestion claims disabled", zap.Error(err))
		} else {
			claimer = c
		}
	}

	// Language model
	llmClient, err := llm.NewClient(ctx, llm.Provider(cfg.LLMProvider), llmKey(cfg))
	if err != nil {
		log.Fatal("failed to create LLM client", zap.String("provider", cfg.LLMProvider), zap.Error(err))
	}
	if c, ok := llmClient.(io.Closer); ok {
		defer c.Close()
	}
	llmClient = llm.WithMetrics(llmClient)

	// Embeddings and vector store
	embedder, err := embedding.New(ctx, cfg.EmbeddingProvider, embeddingKey(cfg), cfg.EmbedModel)
	if err != nil {
		log.Fatal("failed to create embedder", zap.String("provider", cfg.EmbeddingProvider), zap.Error(err))
	}
	if c, ok := embedder.(io.Closer); ok {
		defer c.Close()
	}

	vectors, err := openVectorStore(cfg)
	if err != nil {
		log.Fatal("failed to open vector store", zap.Error(err))
	}
	defer vectors.Close()

	if err := prepareCollection(ctx, cfg, embedder, vectors, db, *migrateVectors, log); err != nil {
		// Chat keeps working; vector search falls back to full-text extraction.
		log.Error("vector collection unavailable", zap.Error(err))
	}

	fetcher := document.NewHTTPFetcher(cfg.DocumentFetchTimeout)
	var cacheOpts []rag.CacheOption
	if claimer != nil {
		cacheOpts = append(cacheOpts, rag.WithClaimer(claimer))
	}
	cache := rag.NewCache(fetcher, embedder, vectors, db, cfg.VectorSchemaVersion, log, cacheOpts...)
	retriever := rag.NewRetriever(embedder, vectors, cfg.SearchLimit, log)

	if *warmPolicies {
		warm(ctx, db, cache, log)
	}

	// Assistant
	insurance := contextbuilder.NewInsuranceBuilder(
		fetcher, cache, retriever,
		cfg.SearchLimit, cfg.MaxExcerptChars,
		cfg.InsuranceSupportEmail, log,
	)
	router := contextbuilder.NewRouter(insurance, time.Now)
	classifier := intent.NewClassifier(llmClient, cfg.ClassifierModel, log)
	orchestrator := chat.NewOrchestrator(llmClient, chat.OrchestratorConfig{
		Model:        cfg.ChatModel,
		SupportName:  cfg.SupportName,
		SupportEmail: cfg.SupportEmail,
		MaxHistory:   cfg.MaxHistoryMessages,
		MaxContext:   cfg.MaxContextChars,
	}, log)
	chatSvc := chat.NewService(classifier, router, orchestrator, llmClient, cfg.ChatModel, events, log)

	// Handlers
	h := handler.NewRouter(handler.RouterConfig{
		APIContext:        cfg.APIContext,
		CORSOrigins:       cfg.CORSOrigins,
		JWTSecret:         cfg.JWTSecret,
		AdminAuthEnabled:  cfg.AdminAuthEnabled,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		Health:            handler.NewHealthHandler(db, natsConn),
		Users: handler.NewUserHandler(db, handler.TokenConfig{
			Secret: cfg.JWTSecret,
			TTL:    cfg.JWTExpiration,
			Admins: cfg.AdminEmails,
		}, log),
		Properties:     handler.NewPropertyHandler(db, log),
		Bookings:       handler.NewBookingHandler(db, log),
		InsurancePlans: handler.NewInsurancePlanHandler(db, log),
		Chat:           handler.NewChatHandler(chatSvc, runtime, log),
		Config:         handler.NewConfigHandler(runtime, log),
		Logger:         log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      h,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening",
			zap.String("port", cfg.ServerPort),
			zap.String("api_context", cfg.APIContext),
			zap.String("insurance_method", string(method)),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

func llmKey(cfg *config.Config) string {
	switch llm.Provider(cfg.LLMProvider) {
	case llm.ProviderAnthropic:
		return cfg.AnthropicAPIKey
	case llm.ProviderGemini:
		return cfg.GeminiAPIKey
	default:
		return cfg.OpenAIAPIKey
	}
}

func embeddingKey(cfg *config.Config) string {
	if cfg.EmbeddingProvider == "gemini" {
		return cfg.GeminiAPIKey
	}
	return cfg.OpenAIAPIKey
}

func openVectorStore(cfg *config.Config) (vectorstore.Storage, error) {
	if cfg.QdrantHost == "" {
		return memory.NewStorage(), nil
	}
	return qdrant.NewStorage(qdrant.Config{
		Host:       cfg.QdrantHost,
		Port:       cfg.QdrantPort,
		APIKey:     cfg.QdrantAPIKey,
		UseTLS:     cfg.QdrantUseTLS,
		Collection: cfg.CollectionName(),
	})
}

// prepareCollection ensures the vector collection once at startup. With
// migrate set it drops the collection and forgets every ingestion.
func prepareCollection(
	ctx context.Context,
	cfg *config.Config,
	embedder embedding.Embedder,
	vectors vectorstore.Storage,
	db *store.SQLiteStore,
	migrate bool,
	log *logger.Logger,
) error {
	dim := cfg.EmbeddingDimensions
	if dim == 0 {
		probeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		var err error
		if dim, err = embedding.Dimension(probeCtx, embedder); err != nil {
			return fmt.Errorf("failed to probe embedding dimension: %w", err)
		}
	}

	if migrate {
		log.Warn("recreating vector collection", zap.String("collection", cfg.CollectionName()), zap.Int("dimension", dim))
		if err := vectors.Recreate(ctx, dim); err != nil {
			return fmt.Errorf("failed to recreate collection: %w", err)
		}
		if err := db.ClearIngestions(ctx, cfg.VectorSchemaVersion); err != nil {
			return fmt.Errorf("failed to clear ingestion manifest: %w", err)
		}
		return nil
	}

	if err := vectors.EnsureCollection(ctx, dim); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}
	log.Info("vector collection ready", zap.String("collection", cfg.CollectionName()), zap.Int("dimension", dim))
	return nil
}

func warm(ctx context.Context, db *store.SQLiteStore, cache *rag.Cache, log *logger.Logger) {
	plans, err := db.ListInsurancePlans(ctx)
	if err != nil {
		log.Error("failed to list insurance plans for warm-up", zap.Error(err))
		return
	}
	for _, plan := range plans {
		if plan.TermsURL == "" {
			continue
		}
		if err := cache.EnsureEmbedded(ctx, plan.TermsURL); err != nil {
			log.Warn("failed to warm policy document",
				zap.String("plan_id", plan.ID),
				zap.String("url", plan.TermsURL),
				zap.Error(err),
			)
			continue
		}
		log.Info("policy document warmed", zap.String("plan_id", plan.ID))
	}
}
