/*
Copyright (c) 2024 Loqa Labs

Licensed under the AGPLv3 License.
This file is part of loqa-scribe.
*/

package stt

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/loqalabs/loqa-scribe/internal/transcript"
)

// DefaultOpenAIModel is the hosted Whisper model name
const DefaultOpenAIModel = openai.Whisper1

// OpenAIConfig configures an OpenAI-compatible transcription endpoint
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // empty means api.openai.com
	Model   string // empty means whisper-1
	Timeout time.Duration
}

// OpenAITranscriber implements the Transcriber interface against any
// OpenAI-compatible /v1/audio/transcriptions service
type OpenAITranscriber struct {
	client *openai.Client
	model  string
	base   string
	logger *zap.Logger
}

// NewOpenAITranscriber creates a new OpenAI-compatible STT client
func NewOpenAITranscriber(cfg OpenAIConfig, logger *zap.Logger) *OpenAITranscriber {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = apiBase(cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAITranscriber{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		base:   clientCfg.BaseURL,
		logger: logger.With(zap.String("component", "stt"), zap.String("backend", "openai")),
	}
}

// apiBase makes "http://stt:8000" and "http://stt:8000/v1/" both point at the
// versioned API root
func apiBase(u string) string {
	u = strings.TrimRight(u, "/")
	if !strings.HasSuffix(u, "/v1") {
		u += "/v1"
	}
	return u
}

// Name implements Transcriber
func (o *OpenAITranscriber) Name() string { return "openai" }

// AcceptsMedia implements MediaTranscriber; the service decodes media itself
func (o *OpenAITranscriber) AcceptsMedia() bool { return true }

// Transcribe implements Transcriber. The model preset is not sent: the
// endpoint serves whatever model name the transcriber was configured with.
func (o *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string, opts Options) (transcript.Result, error) {
	if err := opts.Validate(); err != nil {
		return transcript.Result{}, err
	}

	req := openai.AudioRequest{
		Model:    o.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}
	if opts.Language != AutoDetect && !opts.Translate {
		req.Language = opts.Language
	}

	start := time.Now()
	o.logger.Info("Sending transcription request",
		zap.String("base_url", o.base),
		zap.String("model", o.model),
		zap.String("language", opts.Language),
		zap.Bool("translate", opts.Translate),
	)

	var (
		resp openai.AudioResponse
		err  error
	)
	if opts.Translate {
		resp, err = o.client.CreateTranslation(ctx, req)
	} else {
		resp, err = o.client.CreateTranscription(ctx, req)
	}
	if err != nil {
		return transcript.Result{}, invocationError(o.Name(), err)
	}
	opts.progress(100)

	raw := make([]rawSegment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		raw = append(raw, rawSegment{Start: s.Start, End: s.End, Text: s.Text})
	}
	// Some compatible servers ignore verbose_json and only return text
	if len(raw) == 0 && strings.TrimSpace(resp.Text) != "" {
		raw = append(raw, rawSegment{Start: 0, End: resp.Duration, Text: resp.Text})
	}

	res, err := buildResult(raw, resp.Language, resp.Duration)
	if err != nil {
		return transcript.Result{}, err
	}

	o.logger.Info("Transcription completed",
		zap.Int64("processing_time_ms", time.Since(start).Milliseconds()),
		zap.Int("segments", len(res.Segments)),
		zap.String("language", res.Language),
	)
	return res, nil
}

// Close implements Transcriber
func (o *OpenAITranscriber) Close() error {
	o.logger.Debug("Closing STT client", zap.String("base_url", o.base))
	return nil
}

var _ MediaTranscriber = (*OpenAITranscriber)(nil)

// String is used in startup logs
func (o *OpenAITranscriber) String() string {
	return fmt.Sprintf("openai(%s @ %s)", o.model, o.base)
}
