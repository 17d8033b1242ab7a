package ai

import "context"

// Embedder binds the OpenAI-compatible client to one embedding config so it
// can be injected wherever a plain Embed(ctx, text) is expected.
type Embedder struct {
	client *OpenAICompatibleClient
	cfg    EmbeddingConfig
}

func NewEmbedder(client *OpenAICompatibleClient, cfg EmbeddingConfig) *Embedder {
	return &Embedder{client: client, cfg: cfg}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.client.Embed(ctx, e.cfg, text)
}

// Generator binds the client to one chat config.
type Generator struct {
	client *OpenAICompatibleClient
	cfg    ChatConfig
}

func NewGenerator(client *OpenAICompatibleClient, cfg ChatConfig) *Generator {
	return &Generator{client: client, cfg: cfg}
}

func (g *Generator) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	return g.client.Complete(ctx, g.cfg, messages)
}
