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
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loqalabs/loqa-scribe/internal/config"
	"github.com/loqalabs/loqa-scribe/internal/events"
	"github.com/loqalabs/loqa-scribe/internal/storage"
	"github.com/loqalabs/loqa-scribe/internal/stt"
	"github.com/loqalabs/loqa-scribe/internal/subtitle"
)

func baseConfig() *config.Config {
	return &config.Config{
		STT: config.STTConfig{
			Backend:   config.BackendWhisper,
			ModelSize: stt.ModelBase,
			Language:  stt.AutoDetect,
			ModelDir:  "./models",
		},
		Output: config.OutputConfig{LineEnding: subtitle.LF, TextDelimiter: " "},
		NATS:   config.NATSConfig{Subject: "loqa.transcriptions"},
	}
}

func parseTranscribeFlags(t *testing.T, args ...string) (*pflag.FlagSet, *transcribeFlags) {
	t.Helper()
	f := &transcribeFlags{}
	flags := pflag.NewFlagSet("transcribe", pflag.ContinueOnError)
	bindTranscribeFlags(flags, f)
	require.NoError(t, flags.Parse(args))
	return flags, f
}

func TestParseFormats(t *testing.T) {
	formats, err := parseFormats([]string{"srt", ".TXT", "webvtt", "srt"})
	require.NoError(t, err)
	assert.Equal(t, []subtitle.Format{subtitle.FormatSRT, subtitle.FormatText, subtitle.FormatVTT}, formats)

	_, err = parseFormats([]string{"docx"})
	assert.Error(t, err)
}

func TestTranscribeFlagsDefaults(t *testing.T) {
	_, f := parseTranscribeFlags(t)
	assert.Equal(t, []string{"txt", "srt"}, f.formats)
	assert.False(t, f.quiet)
}

func TestTranscribeFlagsOverrideConfig(t *testing.T) {
	flags, f := parseTranscribeFlags(t,
		"--model", "Small",
		"--language", "fr-CA",
		"--crlf",
		"--wrap", "32",
		"--delimiter", " | ",
		"--sentence-breaks",
		"--threads", "4",
		"-f", "srt,vtt",
	)

	cfg := baseConfig()
	require.NoError(t, f.apply(flags, cfg))

	assert.Equal(t, stt.ModelSmall, cfg.STT.ModelSize)
	assert.Equal(t, "fr", cfg.STT.Language)
	assert.Equal(t, 4, cfg.STT.Threads)
	assert.Equal(t, subtitle.CRLF, cfg.Output.LineEnding)
	assert.Equal(t, 32, cfg.Output.WrapWidth)
	assert.Equal(t, " | ", cfg.Output.TextDelimiter)
	assert.True(t, cfg.Output.SentenceBreaks)
	assert.Equal(t, []string{"srt", "vtt"}, f.formats)
	assert.Equal(t, config.BackendWhisper, cfg.STT.Backend, "unset flags keep the environment value")
	assert.Equal(t, "./models", cfg.STT.ModelDir)
}

func TestTranscribeFlagsRejectInvalid(t *testing.T) {
	tests := [][]string{
		{"--model", "colossal"},
		{"--backend", "sphinx"},
		{"--threads", "-1"},
		{"--wrap", "-3"},
		{"--backend", "openai"},
	}

	for _, args := range tests {
		flags, f := parseTranscribeFlags(t, args...)
		err := f.apply(flags, baseConfig())
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "invalid configuration")
	}
}

func seedHistory(t *testing.T) *storage.RunsStore {
	t.Helper()
	db, err := storage.NewDatabase(storage.DatabaseConfig{Path: filepath.Join(t.TempDir(), "runs.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := storage.NewRunsStore(db)

	ok := events.NewTranscriptionEvent("0123456789abcdef", "talk.mp4")
	ok.Timestamp = time.Now().Add(-2 * time.Hour)
	ok.SetModel("whisper", "base", "en")
	ok.SegmentCount = 12
	ok.AudioDuration = 95.4
	require.NoError(t, store.Insert(ok))

	bad := events.NewTranscriptionEvent("fedcba9876543210", "broken.mkv")
	bad.SetModel("openai", "base", "auto")
	bad.SetError(errors.New("unsupported media: no audio stream"))
	require.NoError(t, store.Insert(bad))

	return store
}

func TestListRunsTable(t *testing.T) {
	store := seedHistory(t)

	var out bytes.Buffer
	require.NoError(t, listRuns(&out, store, &historyFlags{limit: 10, format: "table"}))

	text := out.String()
	assert.Contains(t, text, "RUN")
	assert.Contains(t, text, "01234567")
	assert.Contains(t, text, "whisper/base")
	assert.Contains(t, text, "1m35s")
	assert.Contains(t, text, "2 hours ago")
	assert.Contains(t, text, "failed: unsupported media")
	assert.Contains(t, text, "Showing 2 of 2 runs")
}

func TestListRunsFailedJSON(t *testing.T) {
	store := seedHistory(t)

	var out bytes.Buffer
	require.NoError(t, listRuns(&out, store, &historyFlags{limit: 10, failed: true, format: "json"}))

	var runs []events.TranscriptionEvent
	require.NoError(t, json.Unmarshal(out.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "broken.mkv", runs[0].MediaPath)
	assert.False(t, runs[0].Success)
}

func TestListRunsEmptyJSON(t *testing.T) {
	db, err := storage.NewDatabase(storage.DatabaseConfig{Path: filepath.Join(t.TempDir(), "runs.db")})
	require.NoError(t, err)
	defer db.Close()

	var out bytes.Buffer
	require.NoError(t, listRuns(&out, storage.NewRunsStore(db), &historyFlags{format: "json"}))
	assert.JSONEq(t, "[]", out.String())
}

func TestHistoryRequiresDatabase(t *testing.T) {
	t.Setenv("DB_PATH", "")
	cmd := newHistoryCmd()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH")
}

func TestShortIDAndSeconds(t *testing.T) {
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "abcdefgh", shortID("abcdefghij"))
	assert.Equal(t, 95*time.Second, seconds(95.4))
}
