package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mitraverify/mitraverify/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Classifier is an implementation of the TextClassifier interface using OpenAI
type Classifier struct {
	client       *openai.Client
	modelName    string
	maxTokens    int
	temperature  float32
	topP         float32
	logger       *zap.Logger
	promptFormat string
}

// classificationResponse represents the structured response from the model
type classificationResponse struct {
	Label                     string  `json:"label"`
	ProbabilityMisinformation float64 `json:"probability_misinformation"`
	Language                  string  `json:"language"`
}

// NewClassifier creates a new OpenAI classifier
func NewClassifier(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) *Classifier {
	return &Classifier{
		client:      client,
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
		promptFormat: `You are a misinformation detection system. Analyze the following claim and determine whether it is reliable or misinformation.
Respond with a JSON object containing:
- label: "reliable" or "misinformation"
- probability_misinformation: number between 0 and 1 (probability that the claim is misinformation)
- language: BCP-47 language tag of the claim (e.g. "en", "hi")

Claim:
%s

Respond only with the JSON object and nothing else.`,
	}
}

// Predict classifies a claim as reliable or misinformation
func (c *Classifier) Predict(ctx context.Context, text string) (*core.Prediction, error) {
	prompt := fmt.Sprintf(c.promptFormat, text)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a misinformation detection system. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}
	req.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: OpenAI chat completion failed: %v", core.ErrModelUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response from OpenAI", core.ErrModelUnavailable)
	}

	parsed, err := parseClassification(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return toPrediction(parsed, c.modelName), nil
}

// parseClassification decodes the model's JSON response, falling back to
// extracting the first JSON object embedded in surrounding prose
func parseClassification(responseText string) (*classificationResponse, error) {
	var parsed classificationResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err == nil {
		return &parsed, nil
	}

	jsonStart := -1
	jsonEnd := -1
	for i := 0; i < len(responseText); i++ {
		if responseText[i] == '{' {
			jsonStart = i
			break
		}
	}
	for i := len(responseText) - 1; i >= 0; i-- {
		if responseText[i] == '}' {
			jsonEnd = i + 1
			break
		}
	}

	if jsonStart < 0 || jsonStart >= jsonEnd {
		return nil, fmt.Errorf("failed to extract JSON from model response")
	}
	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd]), &parsed); err != nil {
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
