package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mitraverify/mitraverify/internal/adapters/corpus"
	"github.com/mitraverify/mitraverify/internal/adapters/httpapi"
	"github.com/mitraverify/mitraverify/internal/adapters/imaging"
	"github.com/mitraverify/mitraverify/internal/config"
	"github.com/mitraverify/mitraverify/internal/core"
	"github.com/mitraverify/mitraverify/internal/factory"
	"github.com/mitraverify/mitraverify/internal/logging"
	"github.com/mitraverify/mitraverify/internal/ports"
	"github.com/mitraverify/mitraverify/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []interface{}{
		// Configuration and logging
		config.New,
		logging.InitLogger,

		// Factories
		factory.NewClassifierFactory,
		factory.NewFingerprintFactory,
		factory.NewTextProcessorFactory,

		// Collaborator ports
		func(f *factory.ClassifierFactory) (core.TextClassifier, error) {
			return f.CreateClassifier()
		},
		func(f *factory.ClassifierFactory) (core.Embedder, error) {
			return f.CreateEmbedder()
		},
		func(f *factory.FingerprintFactory) (core.FingerprintStore, error) {
			return f.CreateFingerprintStore()
		},
		func(f *factory.TextProcessorFactory) *utils.TextProcessor {
			return f.CreateTextProcessor()
		},
		func(logger *zap.Logger) core.ImageDecoder {
			return imaging.NewDecoder(logger)
		},
		func(cfg *config.Config, embedder core.Embedder, logger *zap.Logger) (core.EvidenceCorpus, error) {
			return corpus.NewJSONCorpus(context.Background(), cfg.GetEvidence().CorpusPath, embedder, logger)
		},

		// Core components
		func(cfg *config.Config) *core.Calibrator {
			calibrationCfg := cfg.GetCalibration()
			return core.NewCalibrator(calibrationCfg.Enabled, calibrationCfg.Slope, calibrationCfg.Intercept)
		},
		func(classifier core.TextClassifier, textProcessor *utils.TextProcessor, calibrator *core.Calibrator, cfg *config.Config, logger *zap.Logger) *core.TextAnalyzer {
			return core.NewTextAnalyzer(classifier, textProcessor, calibrator, maxTextSize(cfg), logger)
		},
		func(decoder core.ImageDecoder, store core.FingerprintStore, cfg *config.Config, logger *zap.Logger) *core.ImageAnalyzer {
			imageCfg := cfg.GetImage()
			return core.NewImageAnalyzer(decoder, store, imageCfg.ManipulationThreshold, imageCfg.ReuseThreshold, imageCfg.StoreFingerprints, logger)
		},
		func(embedder core.Embedder, evidenceCorpus core.EvidenceCorpus, cfg *config.Config, logger *zap.Logger) *core.EvidenceRetriever {
			evidenceCfg := cfg.GetEvidence()
			return core.NewEvidenceRetriever(embedder, evidenceCorpus, evidenceCfg.TopK, evidenceCfg.MinSimilarity, logger)
		},
		func(text *core.TextAnalyzer, image *core.ImageAnalyzer, evidence *core.EvidenceRetriever, cfg *config.Config, logger *zap.Logger) (*core.FusionEngine, error) {
			fusionCfg, err := cfg.GetFusion()
			if err != nil {
				return nil, err
			}
			weights := core.FusionWeights{
				Text:     fusionCfg.TextWeight,
				Image:    fusionCfg.ImageWeight,
				Evidence: fusionCfg.EvidenceWeight,
			}
			return core.NewFusionEngine(text, image, evidence, weights, fusionCfg.ComponentTimeout, logger), nil
		},

		// Transport
		func(engine *core.FusionEngine, cfg *config.Config, logger *zap.Logger) ports.APIServer {
			return httpapi.NewServer(engine, cfg.GetServer(), modelInfo(cfg), logger)
		},
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}

// maxTextSize returns the input budget of the configured classifier backend
func maxTextSize(cfg *config.Config) int {
	switch cfg.GetClassifier().Provider {
	case "bedrock":
		return cfg.GetBedrock().MaxTextSize
	case "gemini":
		return cfg.GetGemini().MaxTextSize
	default:
		return cfg.GetOpenAI().MaxTextSize
	}
}

// modelInfo describes the configured backends for the stats endpoint
func modelInfo(cfg *config.Config) httpapi.ModelInfo {
	info := httpapi.ModelInfo{
		ImageModel:     "difference_hash",
		EmbeddingModel: cfg.GetOpenAI().EmbeddingModel,
	}
	switch cfg.GetClassifier().Provider {
	case "bedrock":
		info.TextModel = cfg.GetBedrock().ModelID
	case "gemini":
		info.TextModel = cfg.GetGemini().ModelName
	default:
		info.TextModel = cfg.GetOpenAI().ModelName
	}
	return info
}
