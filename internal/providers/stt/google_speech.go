package stt

import (
	"context"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
)

type GoogleSpeech struct {
	c *speech.Client

	Encoding        speechpb.RecognitionConfig_AudioEncoding
	DefaultLanguage string
}

func NewGoogleSpeech(ctx context.Context, language, credentialsFile string) (*GoogleSpeech, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if language == "" {
		language = "en-US"
	}
	return &GoogleSpeech{
		c:               c,
		Encoding:        speechpb.RecognitionConfig_LINEAR16,
		DefaultLanguage: language,
	}, nil
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

func (g *GoogleSpeech) Name() string { return "google-speech" }

func (g *GoogleSpeech) Transcribe(ctx context.Context, req Request) (Result, error) {
	language := req.Language
	if language == "" {
		language = g.DefaultLanguage
	}

	cfg := &speechpb.RecognitionConfig{
		Encoding:                   g.Encoding,
		LanguageCode:               language,
		EnableAutomaticPunctuation: true,
	}
	if req.SampleRateHz > 0 {
		cfg.SampleRateHertz = int32(req.SampleRateHz)
	}

	resp, err := g.c.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: cfg,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: req.Audio},
		},
	})
	if err != nil {
		return Result{}, err
	}

	// results are consecutive segments; keep the best alternative of each
	var parts []string
	var confSum float64
	for _, r := range resp.Results {
		var best *speechpb.SpeechRecognitionAlternative
		for _, alt := range r.Alternatives {
			if alt.Transcript == "" {
				continue
			}
			if best == nil || alt.Confidence > best.Confidence {
				best = alt
			}
		}
		if best != nil {
			parts = append(parts, strings.TrimSpace(best.Transcript))
			confSum += float64(best.Confidence)
		}
	}

	if len(parts) == 0 {
		return Result{}, ErrNoSpeech
	}
	return Result{
		Text:       strings.Join(parts, " "),
		Confidence: confSum / float64(len(parts)),
	}, nil
}
