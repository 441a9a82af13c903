package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitraverify/mitraverify/internal/adapters/corpus"
	"github.com/mitraverify/mitraverify/internal/adapters/imaging"
	"github.com/mitraverify/mitraverify/internal/config"
	"github.com/mitraverify/mitraverify/internal/core"
	"github.com/mitraverify/mitraverify/internal/factory"
	"github.com/mitraverify/mitraverify/internal/logging"
	"github.com/mitraverify/mitraverify/internal/utils"
	"go.uber.org/zap"
)

var (
	// Input flags
	text      = flag.String("text", "", "Claim text to verify")
	textFile  = flag.String("text-file", "", "File containing the claim text (use -text or stdin if not specified)")
	imagePath = flag.String("image", "", "Path to an image to verify")

	// Classifier provider flags
	provider    = flag.String("provider", "openai", "Text classifier provider (openai, bedrock, gemini)")
	maxTokens   = flag.Int("max-tokens", 1000, "Maximum tokens for model response")
	temperature = flag.Float64("temperature", 0.1, "Temperature for model generation")
	topP        = flag.Float64("top-p", 0.9, "Top-p for model generation")
	maxTextSize = flag.Int("max-text-size", 4096, "Maximum claim size to send to the model")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	openaiAPIKey         = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName      = flag.String("openai-model", "gpt-4", "OpenAI model name")
	openaiEmbeddingModel = flag.String("openai-embedding-model", "text-embedding-3-small", "OpenAI embedding model name")

	// Pipeline flags
	corpusPath            = flag.String("corpus", "./data/evidence/fact_check_corpus.json", "Path to the evidence corpus")
	topK                  = flag.Int("top-k", 3, "Maximum evidence items to retrieve")
	minSimilarity         = flag.Float64("min-similarity", 0.3, "Minimum evidence similarity")
	manipulationThreshold = flag.Float64("manipulation-threshold", 0.5, "Image manipulation decision threshold")
	reuseThreshold        = flag.Float64("reuse-threshold", 0.90, "Image reuse similarity threshold")

	// Output flags
	jsonOutput = flag.Bool("json", false, "Print the full result as JSON")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config
	if *configFile != "" {
		v := config.NewEmptyViper()
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		cfg = config.NewFromViper(v)
		logger.Info("Loaded configuration from file", zap.String("file", *configFile))
	} else {
		cfg = createConfigFromFlags()
	}

	request, err := buildRequest()
	if err != nil {
		logger.Fatal("Invalid input", zap.Error(err))
	}

	engine, err := buildEngine(cfg, request.HasText(), logger)
	if err != nil {
		logger.Fatal("Failed to build verification pipeline", zap.Error(err))
	}

	result, err := engine.Verify(context.Background(), request)
	if err != nil {
		logger.Error("Verification failed", zap.Error(err))
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	printResult(result)
}

// buildRequest assembles the verification request from flags, reading
// claim text from a file or stdin when -text is not given
func buildRequest() (*core.VerificationRequest, error) {
	request := &core.VerificationRequest{Text: *text}

	if request.Text == "" && *textFile != "" {
		data, err := os.ReadFile(*textFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read text file: %w", err)
		}
		request.Text = string(data)
	}

	// With no text flags and no image, the claim comes from stdin
	if request.Text == "" && *textFile == "" && *imagePath == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read claim from stdin: %w", err)
		}
		request.Text = strings.TrimSpace(string(data))
	}

	if *imagePath != "" {
		data, err := os.ReadFile(*imagePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read image file: %w", err)
		}
		request.Image = data
	}

	if !request.HasText() && !request.HasImage() {
		return nil, fmt.Errorf("either -text, -text-file or -image must be provided")
	}

	return request, nil
}

// buildEngine wires the full pipeline from factories. The evidence
// corpus is only loaded when text is present, since evidence retrieval
// is never dispatched for image-only requests.
func buildEngine(cfg *config.Config, needsEvidence bool, logger *zap.Logger) (*core.FusionEngine, error) {
	classifierFactory := factory.NewClassifierFactory(cfg, logger)

	classifier, err := classifierFactory.CreateClassifier()
	if err != nil {
		return nil, err
	}
	embedder, err := classifierFactory.CreateEmbedder()
	if err != nil {
		return nil, err
	}

	store, err := factory.NewFingerprintFactory(cfg, logger).CreateFingerprintStore()
	if err != nil {
		return nil, err
	}

	var evidenceCorpus core.EvidenceCorpus
	if needsEvidence {
		evidenceCorpus, err = corpus.NewJSONCorpus(context.Background(), cfg.GetEvidence().CorpusPath, embedder, logger)
		if err != nil {
			return nil, err
		}
	} else {
		evidenceCorpus = emptyCorpus{}
	}

	textProcessor := utils.NewTextProcessor(logger)
	calibrationCfg := cfg.GetCalibration()
	calibrator := core.NewCalibrator(calibrationCfg.Enabled, calibrationCfg.Slope, calibrationCfg.Intercept)

	imageCfg := cfg.GetImage()
	evidenceCfg := cfg.GetEvidence()
	fusionCfg, err := cfg.GetFusion()
	if err != nil {
		return nil, err
	}

	textAnalyzer := core.NewTextAnalyzer(classifier, textProcessor, calibrator, *maxTextSize, logger)
	imageAnalyzer := core.NewImageAnalyzer(imaging.NewDecoder(logger), store, imageCfg.ManipulationThreshold, imageCfg.ReuseThreshold, imageCfg.StoreFingerprints, logger)
	retriever := core.NewEvidenceRetriever(embedder, evidenceCorpus, evidenceCfg.TopK, evidenceCfg.MinSimilarity, logger)

	weights := core.FusionWeights{
		Text:     fusionCfg.TextWeight,
		Image:    fusionCfg.ImageWeight,
		Evidence: fusionCfg.EvidenceWeight,
	}

	return core.NewFusionEngine(textAnalyzer, imageAnalyzer, retriever, weights, fusionCfg.ComponentTimeout, logger), nil
}

// emptyCorpus satisfies the EvidenceCorpus port for image-only runs
type emptyCorpus struct{}

func (emptyCorpus) Search(ctx context.Context, embedding []float32, k int) ([]core.EvidenceItem, error) {
	return nil, nil
}

// createConfigFromFlags builds a configuration instance from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("classifier.provider", *provider)

	v.Set("bedrock.region", *bedrockRegion)
	v.Set("bedrock.model_id", *bedrockModelID)
	v.Set("bedrock.max_tokens", *maxTokens)
	v.Set("bedrock.temperature", *temperature)
	v.Set("bedrock.top_p", *topP)
	v.Set("bedrock.max_text_size", *maxTextSize)

	v.Set("gemini.api_key", *geminiAPIKey)
	v.Set("gemini.model_name", *geminiModelName)
	v.Set("gemini.max_tokens", *maxTokens)
	v.Set("gemini.temperature", *temperature)
	v.Set("gemini.top_p", *topP)
	v.Set("gemini.max_text_size", *maxTextSize)

	v.Set("openai.api_key", *openaiAPIKey)
	v.Set("openai.model_name", *openaiModelName)
	v.Set("openai.embedding_model", *openaiEmbeddingModel)
	v.Set("openai.max_tokens", *maxTokens)
	v.Set("openai.temperature", *temperature)
	v.Set("openai.top_p", *topP)
	v.Set("openai.max_text_size", *maxTextSize)

	v.Set("evidence.corpus_path", *corpusPath)
	v.Set("evidence.top_k", *topK)
	v.Set("evidence.min_similarity", *minSimilarity)

	v.Set("image.manipulation_threshold", *manipulationThreshold)
	v.Set("image.reuse_threshold", *reuseThreshold)

	return config.NewFromViper(v)
}

// printResult renders the fusion result for the terminal
func printResult(result *core.FusionResult) {
	if *jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Printf("Error: failed to marshal result: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	fmt.Printf("\n=== Verification Result ===\n")
	fmt.Printf("Overall verdict: %s\n", result.OverallVerdict)
	fmt.Printf("Confidence: %.4f\n", result.Confidence)
	fmt.Printf("Explanation: %s\n", result.Explanation)
	fmt.Printf("Processing time: %.3fs\n", result.ProcessingTime)

	if result.TextAnalysis != nil {
		fmt.Printf("\n--- Text analysis ---\n")
		fmt.Printf("Prediction: %s (%.4f)\n", result.TextAnalysis.Prediction, result.TextAnalysis.Confidence)
		fmt.Printf("Language: %s\n", result.TextAnalysis.Language)
		fmt.Printf("Explanation: %s\n", result.TextAnalysis.Explanation)
	}

	if result.ImageAnalysis != nil {
		fmt.Printf("\n--- Image analysis ---\n")
		fmt.Printf("Verdict: %s (%.4f)\n", result.ImageAnalysis.Verdict, result.ImageAnalysis.Confidence)
		fmt.Printf("Manipulation score: %.4f\n", result.ImageAnalysis.ManipulationScore)
		fmt.Printf("Reused: %t\n", result.ImageAnalysis.IsReused)
		if result.ImageAnalysis.ReusedSource != nil {
			fmt.Printf("Reused source: %s\n", result.ImageAnalysis.ReusedSource.Source)
		}
	}

	if len(result.Evidence) > 0 {
		fmt.Printf("\n--- Evidence (%d) ---\n", len(result.Evidence))
		for i, item := range result.Evidence {
			fmt.Printf("%d. [%s] %s (similarity %.3f, %s)\n", i+1, item.Verdict, item.Claim, item.Similarity, item.Source)
		}
	}

	for _, failure := range result.Failures {
		fmt.Printf("\nWarning: %s analysis unavailable: %s\n", failure.Component, failure.Reason)
	}
}
