package bootstrap

import (
	"context"
	"log"

	"ask-engine-be/internal/config"
	"ask-engine-be/internal/controller"
	"ask-engine-be/internal/pkg/logger"
	"ask-engine-be/internal/repository/implementation"
	"ask-engine-be/internal/service"
	"ask-engine-be/pkg/backoff"
	"ask-engine-be/pkg/bedrock"
	"ask-engine-be/pkg/embedding"
	"ask-engine-be/pkg/llm"
	"ask-engine-be/pkg/rag/facet"
	"ask-engine-be/pkg/rag/prompt"
	"ask-engine-be/pkg/rerank"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AskController controller.IAskController

	// Services (Exposed for CLI tooling)
	AskService service.IAskService

	// Background Services (Exposed for main.go to run)
	AnalyticsConsumer service.IAnalyticsConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Model Providers
	// Chat and rerank always go through Bedrock; embeddings can be pointed
	// at a local Ollama for development.
	bedrockClient, err := bedrock.NewClient(context.Background(), cfg.Aws.Region)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Bedrock client: %v", err)
	}

	var embeddingProvider embedding.Provider
	if cfg.Ai.Provider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewTitanProvider(bedrockClient, cfg.Aws.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: BEDROCK (%s)", cfg.Aws.EmbeddingModel)
	}

	invoker := backoff.New(backoff.Config{
		MaxRetries: cfg.Backoff.MaxRetries,
		BaseDelay:  cfg.Backoff.BaseDelay,
		MaxJitter:  cfg.Backoff.MaxJitter,
	})
	retryable := bedrock.IsThrottling

	embedder := embedding.NewClient(embeddingProvider, invoker, retryable, cfg.Retrieval.MaxEmbedInputChars, sysLogger)

	rerankProvider := rerank.NewCohereProvider(bedrockClient, cfg.Aws.RerankModel)
	reranker := rerank.NewReranker(rerankProvider, invoker, retryable, cfg.Retrieval.ContextMaxChunks, sysLogger)

	llmProvider := llm.NewAnthropicProvider(bedrockClient, cfg.Aws.ChatModel, cfg.Aws.AnthropicVersion)
	generator := llm.NewGenerator(llmProvider, invoker, retryable, prompt.System, 1000, sysLogger)

	// 4. Retrieval
	documentRepo := implementation.NewDocumentRepository(db)
	expander := facet.NewExpander(documentRepo, facet.Config{
		Facets:            cfg.Retrieval.Facets,
		MaxValuesPerFacet: cfg.Retrieval.MaxFacetValues,
	}, sysLogger)

	// 5. Infrastructure
	// Redis is optional; without it answers are recomputed every request.
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v. Answer caching disabled", err)
			rdb = nil
		}
	}

	analyticsPublisher := service.NewAnalyticsPublisher(cfg.App.AnalyticsTopic, pubSub)
	analyticsConsumer := service.NewAnalyticsConsumerService(pubSub, cfg.App.AnalyticsTopic, sysLogger)

	// 6. Services
	askService := service.NewAskService(
		documentRepo,
		embedder,
		expander,
		reranker,
		generator,
		analyticsPublisher,
		rdb,
		service.RetrievalDefaults{
			K:          cfg.Retrieval.K,
			ExtraLimit: cfg.Retrieval.ExtraLimit,
			UseFacets:  cfg.Retrieval.UseFacets,
			UseRerank:  cfg.Retrieval.UseRerank,
		},
		sysLogger,
	)

	// 7. Controllers
	return &Container{
		AskController:     controller.NewAskController(askService),
		AskService:        askService,
		AnalyticsConsumer: analyticsConsumer,
	}
}
