package vector

import (
	"context"

	"github.com/gavinyap/captain/internal/llm"
)

// ClientEmbedder adapts the LLM client's embeddings endpoint to the
// Embedder interface.
type ClientEmbedder struct {
	Client *llm.Client
	Model  string
}

// NewClientEmbedder creates an Embedder backed by the given client.
func NewClientEmbedder(client *llm.Client, model string) *ClientEmbedder {
	return &ClientEmbedder{Client: client, Model: model}
}

// Embed requests embedding vectors for the texts.
func (e *ClientEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	return e.Client.Embeddings(ctx, e.Model, texts)
}
