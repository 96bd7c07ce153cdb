package llm

import "context"

const geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// NewGemini creates a provider for Google's Gemini API via its
// OpenAI-compatible endpoint. The base URL already includes the full
// path, so no /v1 prefix is appended.
func NewGemini(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = geminiDefaultBaseURL
	}
	return &geminiProvider{base: newOpenAICompatClientPrefix(cfg, "")}
}

type geminiProvider struct {
	base openAICompatClient
}

func (p *geminiProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return p.base.chat(ctx, req)
}

func (p *geminiProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return p.base.embed(ctx, texts)
}
