package config

import "time"

// ClassifierConfig represents the configuration for the text classifier provider
type ClassifierConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxTextSize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxTextSize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey         string
	ModelName      string
	EmbeddingModel string
	MaxTokens      int
	Temperature    float32
	TopP           float32
	MaxTextSize    int
}

// CalibrationConfig represents the probability calibration settings
type CalibrationConfig struct {
	Enabled   bool
	Slope     float64
	Intercept float64
}

// ImageConfig represents the image analysis settings
type ImageConfig struct {
	ManipulationThreshold float64
	ReuseThreshold        float64
	StoreFingerprints     bool
}

// EvidenceConfig represents the evidence retrieval settings
type EvidenceConfig struct {
	TopK          int
	MinSimilarity float64
	CorpusPath    string
}

// FusionConfig represents the fusion engine settings
type FusionConfig struct {
	TextWeight       float64
	ImageWeight      float64
	EvidenceWeight   float64
	ComponentTimeout time.Duration
}

// ServerConfig represents the HTTP API settings
type ServerConfig struct {
	ListenAddress string
	MaxUploadSize int64
}

// GetClassifier returns the classifier provider configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Provider: c.GetString("classifier.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxTextSize: c.GetInt("bedrock.max_text_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxTextSize: c.GetInt("gemini.max_text_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:         c.GetString("openai.api_key"),
		ModelName:      c.GetString("openai.model_name"),
		EmbeddingModel: c.GetString("openai.embedding_model"),
		MaxTokens:      c.GetInt("openai.max_tokens"),
		Temperature:    float32(c.GetFloat64("openai.temperature")),
		TopP:           float32(c.GetFloat64("openai.top_p")),
		MaxTextSize:    c.GetInt("openai.max_text_size"),
	}
}

// GetCalibration returns the calibration configuration
func (c *Config) GetCalibration() CalibrationConfig {
	return CalibrationConfig{
		Enabled:   c.GetBool("text.calibration.enabled"),
		Slope:     c.GetFloat64("text.calibration.slope"),
		Intercept: c.GetFloat64("text.calibration.intercept"),
	}
}

// GetImage returns the image analysis configuration
func (c *Config) GetImage() ImageConfig {
	return ImageConfig{
		ManipulationThreshold: c.GetFloat64("image.manipulation_threshold"),
		ReuseThreshold:        c.GetFloat64("image.reuse_threshold"),
		StoreFingerprints:     c.GetBool("image.store_fingerprints"),
	}
}

// GetEvidence returns the evidence retrieval configuration
func (c *Config) GetEvidence() EvidenceConfig {
	return EvidenceConfig{
		TopK:          c.GetInt("evidence.top_k"),
		MinSimilarity: c.GetFloat64("evidence.min_similarity"),
		CorpusPath:    c.GetString("evidence.corpus_path"),
	}
}

// GetFusion returns the fusion engine configuration
func (c *Config) GetFusion() (FusionConfig, error) {
	timeout, err := c.GetDuration("fusion.component_timeout")
	if err != nil {
		return FusionConfig{}, err
	}
	return FusionConfig{
		TextWeight:       c.GetFloat64("fusion.text_weight"),
		ImageWeight:      c.GetFloat64("fusion.image_weight"),
		EvidenceWeight:   c.GetFloat64("fusion.evidence_weight"),
		ComponentTimeout: timeout,
	}, nil
}

// GetServer returns the HTTP API configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
		MaxUploadSize: c.GetInt64("server.max_upload_size"),
	}
}
