package main

import (
	"context"
	"fmt"

	"github.com/yoockh/skillsage/config"
	"github.com/yoockh/skillsage/internal/providers/llm"
	"github.com/yoockh/skillsage/internal/providers/stt"
)

// buildLLM returns the text model and, when an OpenAI key is configured, the
// embedder used for reference retrieval. A nil embedder disables retrieval.
func buildLLM(ctx context.Context, cfg *config.AppConfig) (llm.Provider, llm.Embedder, error) {
	var embedder llm.Embedder
	var openAI *llm.OpenAI
	if cfg.OpenAIAPIKey != "" {
		openAI = llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.EmbeddingModel)
		embedder = openAI
	}

	switch cfg.LLMProvider {
	case "openai":
		return openAI, embedder, nil
	case "vertex":
		v, err := llm.NewVertexGemini(ctx, cfg.VertexProject, cfg.VertexLocation, cfg.VertexModel, cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return v, embedder, nil
	}
	return nil, nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
}

func buildSTT(ctx context.Context, cfg *config.AppConfig) (stt.Provider, error) {
	switch cfg.STTProvider {
	case "google":
		return stt.NewGoogleSpeech(ctx, cfg.SpeechLanguage, cfg.GoogleCredentialsFile)
	case "whisper":
		return stt.NewWhisper(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), nil
	}
	return nil, fmt.Errorf("unsupported STT_PROVIDER %q", cfg.STTProvider)
}
