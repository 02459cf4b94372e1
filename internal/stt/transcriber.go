/*
Copyright (c) 2024 Loqa Labs

Licensed under the AGPLv3 License.
This file is part of loqa-scribe.
*/

package stt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/loqalabs/loqa-scribe/internal/transcript"
)

// Transcriber defines the interface for speech-to-text model backends
type Transcriber interface {
	// Transcribe runs the model over a 16 kHz mono WAV file
	Transcribe(ctx context.Context, audioPath string, opts Options) (transcript.Result, error)

	// Name identifies the backend in logs and run history
	Name() string

	// Close releases model resources
	Close() error
}

// MediaTranscriber is implemented by backends that accept compressed media
// directly, so the caller can skip WAV extraction.
type MediaTranscriber interface {
	Transcriber
	AcceptsMedia() bool
}

// invocationError wraps a backend failure in ErrModelInvocation. Segment
// validation errors pass through unchanged so callers can tell them apart.
func invocationError(backend string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, transcript.ErrInvalidSegment) || errors.Is(err, transcript.ErrSerialization) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", transcript.ErrModelInvocation, backend, err)
}

// rawSegment is the shape every backend produces before validation
type rawSegment struct {
	Start float64
	End   float64
	Text  string
}

// buildResult trims and validates model segments. Segments with blank text
// are dropped; anything else that violates the invariant is an error.
func buildResult(raw []rawSegment, lang string, duration float64) (transcript.Result, error) {
	res := transcript.Result{Language: lang, Duration: duration}
	for i, r := range raw {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		seg, err := transcript.NewSegment(r.Start, r.End, text)
		if err != nil {
			return transcript.Result{}, fmt.Errorf("model segment %d: %w", i, err)
		}
		res.Segments = append(res.Segments, seg)
	}
	if err := res.Validate(); err != nil {
		return transcript.Result{}, err
	}
	return res, nil
}
