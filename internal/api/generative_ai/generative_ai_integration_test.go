//go:build integration

package generativeAI

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestMain(m *testing.M) {
	if os.Getenv("GOOGLE_GEMINI_API_KEY") == "" {
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func TestNewAIClient_Integration(t *testing.T) {
	ctx := context.Background()

	t.Run("Create AI client successfully", func(t *testing.T) {
		client, err := NewAIClient(ctx, os.Getenv("GOOGLE_GEMINI_API_KEY"), "")
		require.NoError(t, err)
		require.NotNil(t, client)
		assert.Equal(t, DefaultModel, client.Model())
	})

	t.Run("Missing key is rejected", func(t *testing.T) {
		_, err := NewAIClient(ctx, "", "")
		assert.Error(t, err)
	})
}

func TestAIClient_GenerateContent_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := NewAIClient(ctx, os.Getenv("GOOGLE_GEMINI_API_KEY"), "")
	require.NoError(t, err)

	t.Run("Research reply is JSON", func(t *testing.T) {
		config := &genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](0.1),
			ResponseMIMEType: "application/json",
		}
		response, err := client.GenerateContent(ctx, `Return {"name": "Fort Aguada", "type": "fort"} as JSON.`, config)
		require.NoError(t, err)
		assert.True(t, strings.Contains(response, "Aguada"))
	})
}
