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

package scribe

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loqalabs/loqa-scribe/internal/events"
	"github.com/loqalabs/loqa-scribe/internal/logging"
	"github.com/loqalabs/loqa-scribe/internal/security"
	"github.com/loqalabs/loqa-scribe/internal/subtitle"
	"github.com/loqalabs/loqa-scribe/internal/transcript"
)

// Recorder keeps a history of runs (storage.RunsStore)
type Recorder interface {
	Record(event *events.TranscriptionEvent) error
}

// Publisher announces finished runs (messaging.NATSService)
type Publisher interface {
	PublishTranscription(event *events.TranscriptionEvent) error
}

// RunRequest asks for one input to be transcribed and saved
type RunRequest struct {
	Input   string
	Formats []subtitle.Format // defaults to txt and srt
	// Output names the destination. With several formats its extension is
	// replaced per format. Empty writes next to the input.
	Output string
}

// OutputFile is one written rendering
type OutputFile struct {
	Format subtitle.Format
	Path   string
}

// RunReport summarizes a completed Run
type RunReport struct {
	RunID   string
	Result  transcript.Result
	Outputs []OutputFile
	Elapsed time.Duration
}

// DefaultFormats are written when a RunRequest names none
var DefaultFormats = []subtitle.Format{subtitle.FormatText, subtitle.FormatSRT}

// Run transcribes req.Input and saves every requested format. The run is
// recorded and published whether or not it succeeded; failures to do so are
// logged and do not fail the run.
func (s *Scribe) Run(ctx context.Context, req RunRequest) (RunReport, error) {
	report := RunReport{RunID: uuid.NewString()}
	event := events.NewTranscriptionEvent(report.RunID, req.Input)
	event.SetModel(s.model.Name(), string(s.cfg.STT.ModelSize), s.cfg.STT.Language)

	start := time.Now()
	err := s.run(ctx, req, &report, event)
	report.Elapsed = time.Since(start)
	event.ProcessingTime = report.Elapsed.Milliseconds()

	if err != nil {
		event.SetError(err)
		logging.LogTranscription(report.RunID, "failed", zap.Error(err))
	} else {
		logging.LogTranscription(report.RunID, "completed",
			zap.Int("segments", len(report.Result.Segments)),
			zap.Duration("elapsed", report.Elapsed),
		)
	}
	s.finish(event)

	return report, err
}

func (s *Scribe) run(ctx context.Context, req RunRequest, report *RunReport, event *events.TranscriptionEvent) error {
	if req.Input == "" {
		return errors.New("scribe: no input given")
	}
	formats := req.Formats
	if len(formats) == 0 {
		formats = DefaultFormats
	}

	// resolve every destination up front so a bad path fails before the model runs
	paths := make([]string, len(formats))
	for i, f := range formats {
		output := req.Output
		if output != "" && len(formats) > 1 {
			output = withExt(output, f.Extension())
		}
		path, err := OutputPath(req.Input, output, f.Extension())
		if err != nil {
			return err
		}
		paths[i] = path
	}

	logging.LogTranscription(report.RunID, "started",
		zap.String("input", security.SanitizeLogInput(req.Input)),
		zap.String("backend", s.model.Name()),
		zap.String("model", string(s.cfg.STT.ModelSize)),
	)

	res, err := s.Transcribe(ctx, req.Input)
	if err != nil {
		return err
	}
	report.Result = res
	event.SetResult(res)

	for i, f := range formats {
		if err := s.Save(res, f, paths[i]); err != nil {
			return err
		}
		report.Outputs = append(report.Outputs, OutputFile{Format: f, Path: paths[i]})
		event.AddOutput(paths[i])
	}
	return nil
}

func (s *Scribe) finish(event *events.TranscriptionEvent) {
	if s.recorder != nil {
		if err := s.recorder.Record(event); err != nil {
			logging.LogWarn("Failed to record transcription run",
				zap.String("run_id", event.RunID), zap.Error(err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishTranscription(event); err != nil {
			logging.LogWarn("Failed to publish transcription run",
				zap.String("run_id", event.RunID), zap.Error(err))
		}
	}
}
