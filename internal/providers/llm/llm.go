package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

type Provider interface {
	// Generate returns the full text answer for a single prompt.
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
	Close() error
}

// Embedder turns texts into fixed-width vectors for similarity search.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

var ErrEmptyResponse = errors.New("empty response")

// DecodeJSON is the single place model output is turned into a typed value.
// A response wrapped in one markdown code fence is accepted; anything else
// must be exactly one JSON value matching dst.
func DecodeJSON(raw string, dst any) error {
	body := unfence(raw)
	if body == "" {
		return ErrEmptyResponse
	}

	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON value")
	}
	return nil
}

func unfence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// drop the info string ("json", "JSON", ...)
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
