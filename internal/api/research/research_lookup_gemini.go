package research

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

const researchTemperature = 0.2

// ContentGenerator is the part of the Gemini client the lookup needs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error)
}

var _ Lookup = (*GeminiLookup)(nil)

type GeminiLookup struct {
	aiClient ContentGenerator
	now      Clock
}

func NewGeminiLookup(aiClient ContentGenerator) *GeminiLookup {
	return &GeminiLookup{aiClient: aiClient, now: time.Now}
}

func (g *GeminiLookup) ResearchPlace(ctx context.Context, p types.Place, region string) (types.PlaceKnowledge, error) {
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](researchTemperature),
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(researchSystemPrompt, genai.RoleUser),
	}
	reply, err := g.aiClient.GenerateContent(ctx, researchPrompt(p, region), config)
	if err != nil {
		return types.PlaceKnowledge{}, fmt.Errorf("gemini research for %s: %w", p.Name, err)
	}
	return parseKnowledge(reply, p, g.now())
}
