package cmd

import (
	"fmt"

	"github.com/tranmq/docrag-be/config"
	"github.com/tranmq/docrag-be/database"
	"github.com/tranmq/docrag-be/service"
	"github.com/tranmq/docrag-be/types"
)

type services struct {
	cfg       *config.Config
	retriever *service.Retriever
	answerer  *service.OpenAIService
	files     *service.FileService
}

// buildServices wires the index backend, summarizers and retriever from
// config. Shared by every command so the CLI and the server agree on how
// the index is constructed.
func buildServices(cfgPath string) (*services, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	openAI := service.NewOpenAIService(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.TextModel, cfg.AI.VisionModel)

	var gemini *service.GeminiService
	if len(cfg.Google.APIKeys) > 0 {
		gemini, err = service.NewGeminiService(cfg.Google.APIKeys, cfg.Google.EmbeddingModel, cfg.Google.VisionModel)
		if err != nil {
			return nil, fmt.Errorf("failed to init Gemini service: %w", err)
		}
	}

	var vision service.VisionDescriber = openAI
	if cfg.VisionProvider == config.VisionProviderGemini {
		vision = gemini
	}
	summarizer := service.NewSummaryService(openAI, vision, cfg.Throttle)

	var index database.SummaryIndex
	switch cfg.IndexBackend {
	case config.IndexBackendWeaviate:
		index, err = database.NewWeaviateIndex(cfg.Weaviate)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Weaviate: %w", err)
		}
	case config.IndexBackendMemory:
		index = database.NewMemoryIndex(gemini)
	}

	retriever := service.NewRetriever(index, database.NewMemoryStore(), summarizer)

	pdfService := service.NewPDFService(types.DocumentServiceConfig{
		MaxChunkSize:  cfg.Chunking.MaxChunkSize,
		OverlapSize:   cfg.Chunking.OverlapSize,
		ExtractImages: cfg.Chunking.ExtractImages,
	})
	fileService := service.NewFileService(cfg.UploadDir, pdfService, retriever)

	return &services{
		cfg:       cfg,
		retriever: retriever,
		answerer:  openAI,
		files:     fileService,
	}, nil
}
