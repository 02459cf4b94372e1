//go:build !whisper

package stt

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/loqalabs/loqa-scribe/internal/transcript"
)

var errWhisperDisabled = errors.New("whisper transcription disabled (build with -tags whisper to enable)")

// WhisperTranscriber stub implementation when whisper is disabled
type WhisperTranscriber struct {
	modelDir string
}

// NewWhisperTranscriber creates a stub transcriber when whisper is disabled
func NewWhisperTranscriber(modelDir string, logger *zap.Logger) (*WhisperTranscriber, error) {
	return &WhisperTranscriber{modelDir: modelDir}, nil
}

// Name implements Transcriber
func (wt *WhisperTranscriber) Name() string { return "whisper" }

// Transcribe stub implementation always fails
func (wt *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string, opts Options) (transcript.Result, error) {
	if err := opts.Validate(); err != nil {
		return transcript.Result{}, err
	}
	return transcript.Result{}, invocationError(wt.Name(), errWhisperDisabled)
}

// Close stub implementation
func (wt *WhisperTranscriber) Close() error {
	return nil
}
