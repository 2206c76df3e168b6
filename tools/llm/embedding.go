package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// EmbeddingFunc turns a text into its embedding vector. The signature
// matches what the FAQ vector store expects.
type EmbeddingFunc func(ctx context.Context, text string) ([]float32, error)

// NewGeminiEmbeddingFunc creates an EmbeddingFunc backed by the Gemini
// embedding API. Queries and documents share the same function; the
// retrieval-document task type works for both sides of a small FAQ
// corpus.
func NewGeminiEmbeddingFunc(apiKey, model string) (EmbeddingFunc, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "text-embedding-004"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return func(ctx context.Context, text string) ([]float32, error) {
		contents := []*genai.Content{
			genai.NewContentFromText(text, genai.RoleUser),
		}
		result, err := client.Models.EmbedContent(ctx, model, contents,
			&genai.EmbedContentConfig{
				TaskType: "RETRIEVAL_DOCUMENT",
			},
		)
		if err != nil {
			return nil, fmt.Errorf("embed failed: %w", err)
		}
		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("no embeddings returned")
		}
		return result.Embeddings[0].Values, nil
	}, nil
}
