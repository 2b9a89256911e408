package research

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

const DefaultOpenAIModel = openai.GPT4oMini

var _ Lookup = (*OpenAILookup)(nil)

type OpenAILookup struct {
	client *openai.Client
	model  string
	now    Clock
}

// NewOpenAILookup builds a lookup against the OpenAI chat API. baseURL may point
// at any compatible endpoint; empty keeps the default.
func NewOpenAILookup(apiKey, baseURL, model string) *OpenAILookup {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAILookup{client: openai.NewClientWithConfig(cfg), model: model, now: time.Now}
}

func (o *OpenAILookup) ResearchPlace(ctx context.Context, p types.Place, region string) (types.PlaceKnowledge, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: researchTemperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: researchSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: researchPrompt(p, region)},
		},
	})
	if err != nil {
		return types.PlaceKnowledge{}, fmt.Errorf("openai research for %s: %w", p.Name, err)
	}
	if len(resp.Choices) == 0 {
		return types.PlaceKnowledge{}, errors.New("openai returned no choices")
	}
	return parseKnowledge(resp.Choices[0].Message.Content, p, o.now())
}
