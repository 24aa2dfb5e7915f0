package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeNoContent, http.StatusUnprocessableEntity},
		{CodeUpstreamUnavailable, http.StatusServiceUnavailable},
		{CodeUpstreamFormat, http.StatusBadGateway},
		{CodeTranscriptionFailed, http.StatusBadGateway},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", E(tc.code, "Op", "msg", nil))
			assert.Equal(t, tc.want, HTTPStatus(err))
		})
	}

	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestUpstream(t *testing.T) {
	err := Upstream("Op", "call failed", context.DeadlineExceeded)
	assert.True(t, IsCode(err, CodeUpstreamUnavailable))
	assert.True(t, Retryable(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	format := E(CodeUpstreamFormat, "Inner", "bad json", nil)
	assert.Same(t, format, Upstream("Op", "call failed", format))
	assert.False(t, Retryable(format))
}

func TestAppErrorMessage(t *testing.T) {
	err := E(CodeNotFound, "InterviewService.GetSummary", "session not found", ErrNotFound)
	assert.Equal(t, "InterviewService.GetSummary: session not found: not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
}
