/*
 * This file is part of Loqa (https://github.com/loqalabs/loqa).
 * Copyright (C) 2025 Loqa Labs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

//go:build whisper

package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"go.uber.org/zap"

	"github.com/loqalabs/loqa-scribe/internal/media"
	"github.com/loqalabs/loqa-scribe/internal/transcript"
)

// WhisperTranscriber runs whisper.cpp models in-process. Models are loaded on
// first use of each preset and kept until Close.
type WhisperTranscriber struct {
	modelDir string
	models   map[ModelSize]whisper.Model
	logger   *zap.Logger
}

// NewWhisperTranscriber creates a transcriber reading ggml models from modelDir
func NewWhisperTranscriber(modelDir string, logger *zap.Logger) (*WhisperTranscriber, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fi, err := os.Stat(modelDir); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("whisper model directory not found at %s", modelDir)
	}

	return &WhisperTranscriber{
		modelDir: modelDir,
		models:   make(map[ModelSize]whisper.Model),
		logger:   logger.With(zap.String("component", "stt"), zap.String("backend", "whisper")),
	}, nil
}

// Name implements Transcriber
func (wt *WhisperTranscriber) Name() string { return "whisper" }

func (wt *WhisperTranscriber) load(size ModelSize) (whisper.Model, error) {
	if m, ok := wt.models[size]; ok {
		return m, nil
	}

	path := ModelPath(wt.modelDir, size)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("whisper model not found at %s", path)
	}

	model, err := whisper.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load whisper model: %w", err)
	}

	wt.logger.Info("Whisper model loaded", zap.String("model_path", path))
	wt.models[size] = model
	return model, nil
}

// Transcribe implements Transcriber
func (wt *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string, opts Options) (transcript.Result, error) {
	if err := opts.Validate(); err != nil {
		return transcript.Result{}, err
	}

	model, err := wt.load(opts.ModelSize)
	if err != nil {
		return transcript.Result{}, invocationError(wt.Name(), err)
	}

	samples, rate, err := media.LoadSamples(audioPath)
	if err != nil {
		return transcript.Result{}, invocationError(wt.Name(), err)
	}
	if rate != whisper.SampleRate {
		return transcript.Result{}, invocationError(wt.Name(),
			fmt.Errorf("sample rate %d, model needs %d", rate, whisper.SampleRate))
	}

	wctx, err := model.NewContext()
	if err != nil {
		return transcript.Result{}, invocationError(wt.Name(), fmt.Errorf("failed to create whisper context: %w", err))
	}
	if opts.Threads > 0 {
		wctx.SetThreads(opts.Threads)
	}
	if err := wctx.SetLanguage(opts.Language); err != nil {
		return transcript.Result{}, invocationError(wt.Name(), fmt.Errorf("set language %q: %w", opts.Language, err))
	}
	wctx.SetTranslate(opts.Translate)

	wt.logger.Info("Processing audio",
		zap.String("model", string(opts.ModelSize)),
		zap.String("language", opts.Language),
		zap.Int("samples", len(samples)),
	)

	// whisper.cpp stops encoding when the callback returns false
	keepGoing := func() bool { return ctx.Err() == nil }
	if err := wctx.Process(samples, keepGoing, nil, opts.progress); err != nil {
		return transcript.Result{}, invocationError(wt.Name(), fmt.Errorf("failed to process audio: %w", err))
	}
	if err := ctx.Err(); err != nil {
		return transcript.Result{}, invocationError(wt.Name(), err)
	}
	opts.progress(100)

	var raw []rawSegment
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return transcript.Result{}, invocationError(wt.Name(), err)
		}
		raw = append(raw, rawSegment{
			Start: segment.Start.Seconds(),
			End:   segment.End.Seconds(),
			Text:  segment.Text,
		})
	}

	lang := opts.Language
	if lang == AutoDetect {
		lang = wctx.DetectedLanguage()
	}
	return buildResult(raw, lang, float64(len(samples))/float64(rate))
}

// Close cleans up every loaded model
func (wt *WhisperTranscriber) Close() error {
	var errs []error
	for size, m := range wt.models {
		if err := m.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", size, err))
		}
		delete(wt.models, size)
	}
	wt.logger.Info("Whisper models closed")
	return errors.Join(errs...)
}
