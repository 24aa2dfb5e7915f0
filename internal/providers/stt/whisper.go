package stt

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Whisper transcribes through the OpenAI audio API. Sample rate is read from
// the uploaded container, so Request.SampleRateHz is ignored.
type Whisper struct {
	client *openai.Client
	model  string
}

func NewWhisper(apiKey, baseURL string) *Whisper {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return NewWhisperWithConfig(config)
}

func NewWhisperWithConfig(config openai.ClientConfig) *Whisper {
	return &Whisper{client: openai.NewClientWithConfig(config), model: openai.Whisper1}
}

func (w *Whisper) Name() string { return "openai-whisper" }

func (w *Whisper) Close() error { return nil }

func (w *Whisper) Transcribe(ctx context.Context, req Request) (Result, error) {
	language := req.Language
	if i := strings.IndexByte(language, '-'); i > 0 {
		// whisper wants ISO-639-1 ("en"), not a locale
		language = language[:i]
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: "answer.wav",
		Reader:   bytes.NewReader(req.Audio),
		Language: language,
	})
	if err != nil {
		return Result{}, fmt.Errorf("whisper transcription: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return Result{}, ErrNoSpeech
	}
	return Result{Text: text, Confidence: 1}, nil
}
