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

// Package scribe ties media probing, model invocation and output rendering
// into the transcribe / save workflow.
package scribe

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/loqalabs/loqa-scribe/internal/logging"
	"github.com/loqalabs/loqa-scribe/internal/media"
	"github.com/loqalabs/loqa-scribe/internal/security"
	"github.com/loqalabs/loqa-scribe/internal/stt"
	"github.com/loqalabs/loqa-scribe/internal/subtitle"
	"github.com/loqalabs/loqa-scribe/internal/transcript"
)

// MediaTools probes input files and extracts their audio track.
// media.Tools is the production implementation.
type MediaTools interface {
	Probe(ctx context.Context, path string) (media.Info, error)
	ExtractAudio(ctx context.Context, info media.Info, tmpDir string) (string, error)
}

// Config is everything a Scribe needs. There is no package-level default.
type Config struct {
	STT     stt.Options
	Render  subtitle.Options
	TempDir string     // parent for per-run scratch directories, "" = os.TempDir()
	Media   MediaTools // nil uses ffmpeg/ffprobe from PATH
}

// Scribe transcribes media files and writes the results
type Scribe struct {
	cfg       Config
	model     stt.Transcriber
	media     MediaTools
	logger    *zap.Logger
	recorder  Recorder
	publisher Publisher
}

// Option customizes a Scribe
type Option func(*Scribe)

// WithRecorder stores every Run in r
func WithRecorder(r Recorder) Option {
	return func(s *Scribe) { s.recorder = r }
}

// WithPublisher announces every Run through p
func WithPublisher(p Publisher) Option {
	return func(s *Scribe) { s.publisher = p }
}

// New validates cfg and binds it to a model backend
func New(cfg Config, model stt.Transcriber, logger *zap.Logger, opts ...Option) (*Scribe, error) {
	if model == nil {
		return nil, errors.New("scribe: a transcriber is required")
	}
	if err := cfg.STT.Validate(); err != nil {
		return nil, fmt.Errorf("scribe: %w", err)
	}
	if err := cfg.Render.Validate(); err != nil {
		return nil, fmt.Errorf("scribe: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scribe{
		cfg:    cfg,
		model:  model,
		media:  cfg.Media,
		logger: logger,
	}
	if s.media == nil {
		s.media = media.Tools{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Options returns the validated model options
func (s *Scribe) Options() stt.Options {
	return s.cfg.STT
}

// Backend names the model implementation
func (s *Scribe) Backend() string {
	return s.model.Name()
}

// Transcribe runs the model over the audio of path. Video and non-WAV audio
// are converted into a scratch directory that is removed before returning.
func (s *Scribe) Transcribe(ctx context.Context, path string) (transcript.Result, error) {
	st, err := os.Stat(path)
	if err != nil {
		return transcript.Result{}, fmt.Errorf("input %s: %w", path, err)
	}
	if st.IsDir() {
		return transcript.Result{}, fmt.Errorf("input %s is a directory", path)
	}

	info, err := s.media.Probe(ctx, path)
	if err != nil {
		return transcript.Result{}, err
	}
	if !info.HasAudio {
		return transcript.Result{}, fmt.Errorf("%s: %w", path, media.ErrUnsupportedMedia)
	}
	logging.LogMediaProcessing(security.SanitizeLogInput(path), "probe",
		zap.String("size", humanize.IBytes(uint64(max(info.Size, st.Size())))),
		zap.Bool("video", info.IsVideo()),
		zap.Float64("duration", info.Duration),
	)

	audioPath := path
	if !s.acceptsMedia() {
		tmpDir, err := os.MkdirTemp(s.cfg.TempDir, "loqa-scribe-*")
		if err != nil {
			return transcript.Result{}, fmt.Errorf("create scratch dir: %w", err)
		}
		defer func() {
			if err := os.RemoveAll(tmpDir); err != nil {
				s.logger.Warn("Failed to remove scratch dir", zap.String("dir", tmpDir), zap.Error(err))
			}
		}()

		audioPath, err = s.media.ExtractAudio(ctx, info, tmpDir)
		if err != nil {
			return transcript.Result{}, err
		}
		logging.LogMediaProcessing(security.SanitizeLogInput(path), "extract", zap.String("audio", audioPath))
	}

	s.logger.Debug("Invoking model",
		zap.String("backend", s.model.Name()),
		zap.String("model", string(s.cfg.STT.ModelSize)),
		zap.String("language", s.cfg.STT.Language),
	)
	res, err := s.model.Transcribe(ctx, audioPath, s.cfg.STT)
	if err != nil {
		return transcript.Result{}, modelError(s.model.Name(), err)
	}
	if res.Duration == 0 {
		res.Duration = info.Duration
	}
	if err := res.Validate(); err != nil {
		return transcript.Result{}, err
	}
	return res, nil
}

func (s *Scribe) acceptsMedia() bool {
	mt, ok := s.model.(stt.MediaTranscriber)
	return ok && mt.AcceptsMedia()
}

// modelError makes sure a backend failure carries ErrModelInvocation unless
// it already names one of the segment error kinds
func modelError(backend string, err error) error {
	if errors.Is(err, transcript.ErrModelInvocation) ||
		errors.Is(err, transcript.ErrInvalidSegment) ||
		errors.Is(err, transcript.ErrSerialization) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", transcript.ErrModelInvocation, backend, err)
}

// Close releases the model backend
func (s *Scribe) Close() error {
	return s.model.Close()
}
