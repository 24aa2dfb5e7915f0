package stt

import (
	"context"
	"errors"
)

type Request struct {
	Audio        []byte
	SampleRateHz int    // 0 lets the provider read it from the container header
	Language     string // ex: "en-US"
}

type Result struct {
	Text       string
	Confidence float64
}

type Provider interface {
	Transcribe(ctx context.Context, req Request) (Result, error)
	Name() string
	Close() error
}

// ErrNoSpeech is returned when the audio decoded but nothing was recognised.
var ErrNoSpeech = errors.New("no speech recognised")

const DefaultSampleRate = 16000
