package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mitraverify/mitraverify/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Classifier is an implementation of the TextClassifier interface using Google Gemini
type Classifier struct {
	client       *genai.Client
	model        *genai.GenerativeModel
	modelName    string
	logger       *zap.Logger
	promptFormat string
}

// classificationResponse represents the structured response from the model
type classificationResponse struct {
	Label                     string  `json:"label"`
	ProbabilityMisinformation float64 `json:"probability_misinformation"`
	Language                  string  `json:"language"`
}

// NewClassifier creates a new Gemini classifier
func NewClassifier(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) (*Classifier, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &Classifier{
		client:    client,
		model:     model,
		modelName: modelName,
		logger:    logger,
		promptFormat: `You are a misinformation detection system. Analyze the following claim and determine whether it is reliable or misinformation.
Respond with a JSON object containing:
- label: "reliable" or "misinformation"
- probability_misinformation: number between 0 and 1 (probability that the claim is misinformation)
- language: BCP-47 language tag of the claim (e.g. "en", "hi")

Claim:
%s

Respond only with the JSON object and nothing else.`,
	}, nil
}

// Predict classifies a claim as reliable or misinformation
func (c *Classifier) Predict(ctx context.Context, text string) (*core.Prediction, error) {
	prompt := fmt.Sprintf(c.promptFormat, text)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("%w: Gemini generation failed: %v", core.ErrModelUnavailable, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: empty response from Gemini", core.ErrModelUnavailable)
	}

	var responseText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			responseText += string(textPart)
		}
	}

	parsed, err := parseClassification(responseText)
	if err != nil {
		return nil, err
	}

	return toPrediction(parsed, c.modelName), nil
}

// Close releases the underlying client
func (c *Classifier) Close() error {
	return c.client.Close()
}

// parseClassification decodes the model's JSON response, falling back to
// extracting the first JSON object embedded in surrounding prose
func parseClassification(responseText string) (*classificationResponse, error) {
	var parsed classificationResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err == nil {
		return &parsed, nil
	}

	jsonStart := strings.Index(responseText, "{")
	jsonEnd := strings.LastIndex(responseText, "}")
	if jsonStart < 0 || jsonStart >= jsonEnd {
		return nil, fmt.Errorf("failed to extract JSON from model response")
	}
	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd+1]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
	}

	return &parsed, nil
}

// toPrediction converts the model response into the core prediction shape
func toPrediction(parsed *classificationResponse, modelName string) *core.Prediction {
	p := parsed.ProbabilityMisinformation
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}

	label := core.LabelReliable
	if p > 0.5 {
		label = core.LabelMisinformation
	}

	return &core.Prediction{
		Label: label,
		Probabilities: map[core.TextLabel]float64{
			core.LabelMisinformation: p,
			core.LabelReliable:       1 - p,
		},
		Language:  parsed.Language,
		ModelName: modelName,
	}
}
