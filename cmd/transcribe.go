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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/loqalabs/loqa-scribe/internal/config"
	"github.com/loqalabs/loqa-scribe/internal/logging"
	"github.com/loqalabs/loqa-scribe/internal/media"
	"github.com/loqalabs/loqa-scribe/internal/messaging"
	"github.com/loqalabs/loqa-scribe/internal/scribe"
	"github.com/loqalabs/loqa-scribe/internal/storage"
	"github.com/loqalabs/loqa-scribe/internal/stt"
	"github.com/loqalabs/loqa-scribe/internal/subtitle"
)

// transcribeFlags mirror the environment configuration; a flag that was set
// on the command line wins
type transcribeFlags struct {
	backend        string
	model          string
	language       string
	modelDir       string
	threads        int
	translate      bool
	formats        []string
	output         string
	wrap           int
	crlf           bool
	delimiter      string
	sentenceBreaks bool
	quiet          bool
}

func newTranscribeCmd() *cobra.Command {
	f := &transcribeFlags{}

	cmd := &cobra.Command{
		Use:   "transcribe <media>",
		Short: "Transcribe a media file and save text and subtitles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := f.apply(cmd.Flags(), cfg); err != nil {
				return err
			}
			formats, err := parseFormats(f.formats)
			if err != nil {
				return err
			}
			return runTranscribe(cmd, cfg, f, scribe.RunRequest{
				Input:   args[0],
				Formats: formats,
				Output:  f.output,
			})
		},
	}

	bindTranscribeFlags(cmd.Flags(), f)
	return cmd
}

func bindTranscribeFlags(flags *pflag.FlagSet, f *transcribeFlags) {
	flags.StringVar(&f.backend, "backend", "", "model backend: whisper or openai")
	flags.StringVarP(&f.model, "model", "m", "", "model size: "+modelSizeNames())
	flags.StringVarP(&f.language, "language", "l", "", "ISO 639 language code or auto")
	flags.StringVar(&f.modelDir, "model-dir", "", "directory holding ggml model files")
	flags.IntVar(&f.threads, "threads", 0, "inference threads, 0 lets the backend decide")
	flags.BoolVar(&f.translate, "translate", false, "translate the speech to English")
	flags.StringSliceVarP(&f.formats, "format", "f", []string{"txt", "srt"}, "output formats: txt, srt, vtt")
	flags.StringVarP(&f.output, "output", "o", "", "output file; a bare name goes into a directory named after the input")
	flags.IntVar(&f.wrap, "wrap", 0, "wrap subtitle lines at this many characters, 0 disables")
	flags.BoolVar(&f.crlf, "crlf", false, "write CRLF line endings")
	flags.StringVar(&f.delimiter, "delimiter", "", "separator between segments in the plain-text output")
	flags.BoolVar(&f.sentenceBreaks, "sentence-breaks", false, "start a new line after each sentence in the plain-text output")
	flags.BoolVarP(&f.quiet, "quiet", "q", false, "no progress bar")
}

// apply copies explicitly set flags over cfg and validates the result
func (f *transcribeFlags) apply(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("backend") {
		cfg.STT.Backend = config.Backend(strings.ToLower(f.backend))
	}
	if flags.Changed("model") {
		cfg.STT.ModelSize = stt.ModelSize(strings.ToLower(f.model))
	}
	if flags.Changed("language") {
		cfg.STT.Language = f.language
	}
	if flags.Changed("model-dir") {
		cfg.STT.ModelDir = f.modelDir
	}
	if flags.Changed("threads") {
		cfg.STT.Threads = f.threads
	}
	if flags.Changed("translate") {
		cfg.STT.Translate = f.translate
	}
	if flags.Changed("wrap") {
		cfg.Output.WrapWidth = f.wrap
	}
	if flags.Changed("crlf") {
		cfg.Output.LineEnding = subtitle.LF
		if f.crlf {
			cfg.Output.LineEnding = subtitle.CRLF
		}
	}
	if flags.Changed("delimiter") {
		cfg.Output.TextDelimiter = f.delimiter
	}
	if flags.Changed("sentence-breaks") {
		cfg.Output.SentenceBreaks = f.sentenceBreaks
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func parseFormats(names []string) ([]subtitle.Format, error) {
	seen := make(map[subtitle.Format]bool)
	var formats []subtitle.Format
	for _, name := range names {
		format, err := subtitle.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		if !seen[format] {
			seen[format] = true
			formats = append(formats, format)
		}
	}
	return formats, nil
}

func modelSizeNames() string {
	names := make([]string, len(stt.ModelSizes))
	for i, m := range stt.ModelSizes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func newTranscriber(cfg *config.Config) (stt.Transcriber, error) {
	logger := logging.Component("stt")
	switch cfg.STT.Backend {
	case config.BackendOpenAI:
		return stt.NewOpenAITranscriber(stt.OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
			Timeout: cfg.OpenAI.Timeout,
		}, logger), nil
	default:
		return stt.NewWhisperTranscriber(cfg.STT.ModelDir, logger)
	}
}

func runTranscribe(cmd *cobra.Command, cfg *config.Config, f *transcribeFlags, req scribe.RunRequest) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := cfg.STTOptions()
	var bar *progressbar.ProgressBar
	if !f.quiet {
		bar = progressbar.NewOptions(100,
			progressbar.OptionSetDescription("transcribing "+filepath.Base(req.Input)),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
		)
		opts.Progress = func(percent int) {
			if err := bar.Set(percent); err != nil {
				logging.LogWarn("Progress bar update failed", zap.Error(err))
			}
		}
	}

	var scribeOpts []scribe.Option
	if cfg.Storage.DBPath != "" {
		db, err := storage.NewDatabase(storage.DatabaseConfig{Path: cfg.Storage.DBPath})
		if err != nil {
			return err
		}
		defer db.Close()
		scribeOpts = append(scribeOpts, scribe.WithRecorder(storage.NewRunsStore(db)))
	}

	publisher := messaging.NewNATSService(messaging.Config{
		URL:           cfg.NATS.URL,
		Subject:       cfg.NATS.Subject,
		MaxReconnect:  cfg.NATS.MaxReconnect,
		ReconnectWait: cfg.NATS.ReconnectWait,
		Timeout:       cfg.NATS.Timeout,
	}, logging.Component("messaging"))
	if publisher.Enabled() {
		if err := publisher.Connect(); err != nil {
			logging.LogWarn("Run events will not be published", zap.Error(err))
		} else {
			defer publisher.Close()
			scribeOpts = append(scribeOpts, scribe.WithPublisher(publisher))
		}
	}

	model, err := newTranscriber(cfg)
	if err != nil {
		return err
	}

	s, err := scribe.New(scribe.Config{
		STT:     opts,
		Render:  cfg.RenderOptions(),
		TempDir: cfg.Media.TempDir,
		Media:   media.Tools{FFmpeg: cfg.Media.FFmpegPath, FFprobe: cfg.Media.FFprobePath},
	}, model, logging.Component("scribe"), scribeOpts...)
	if err != nil {
		model.Close()
		return err
	}
	defer s.Close()

	report, err := s.Run(ctx, req)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	return printReport(cmd, report)
}

func printReport(cmd *cobra.Command, report scribe.RunReport) error {
	out := cmd.OutOrStdout()
	for _, o := range report.Outputs {
		if _, err := fmt.Fprintf(out, "%s\t%s\n", o.Format, o.Path); err != nil {
			return err
		}
	}
	return nil
}
