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

package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/loqalabs/loqa-scribe/internal/transcript"
)

// TranscriptionEvent records one transcription run from media input to
// rendered outputs
type TranscriptionEvent struct {
	// Core identification
	UUID      string    `json:"uuid" db:"uuid"`
	RunID     string    `json:"run_id" db:"run_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`

	// Input and model
	MediaPath string `json:"media_path" db:"media_path"`
	Backend   string `json:"backend" db:"backend"`
	ModelSize string `json:"model_size" db:"model_size"`
	Language  string `json:"language" db:"language"`

	// Results
	SegmentCount  int      `json:"segment_count" db:"segment_count"`
	AudioDuration float64  `json:"audio_duration" db:"audio_duration"`
	Outputs       []string `json:"outputs" db:"outputs"`

	ProcessingTime int64  `json:"processing_time_ms" db:"processing_time_ms"`
	Success        bool   `json:"success" db:"success"`
	ErrorMessage   string `json:"error_message,omitempty" db:"error_message"`
}

// NewTranscriptionEvent creates an event for a run that starts now
func NewTranscriptionEvent(runID, mediaPath string) *TranscriptionEvent {
	return &TranscriptionEvent{
		UUID:      uuid.NewString(),
		RunID:     runID,
		MediaPath: mediaPath,
		Timestamp: time.Now(),
		Outputs:   []string{},
		Success:   true,
	}
}

// SetModel records which backend and preset served the run
func (te *TranscriptionEvent) SetModel(backend, modelSize, language string) {
	te.Backend = backend
	te.ModelSize = modelSize
	te.Language = language
}

// SetResult records the transcript summary and marks processing as complete
func (te *TranscriptionEvent) SetResult(res transcript.Result) {
	te.SegmentCount = len(res.Segments)
	te.AudioDuration = res.Duration
	if te.AudioDuration == 0 {
		te.AudioDuration = res.End()
	}
	if res.Language != "" {
		te.Language = res.Language
	}
	te.ProcessingTime = time.Since(te.Timestamp).Milliseconds()
}

// AddOutput records a written output file
func (te *TranscriptionEvent) AddOutput(path string) {
	te.Outputs = append(te.Outputs, path)
}

// SetError marks the event as failed with an error message
func (te *TranscriptionEvent) SetError(err error) {
	te.Success = false
	te.ErrorMessage = err.Error()
	te.ProcessingTime = time.Since(te.Timestamp).Milliseconds()
}

// OutputsJSON returns outputs as JSON string for database storage
func (te *TranscriptionEvent) OutputsJSON() (string, error) {
	if te.Outputs == nil {
		return "[]", nil
	}

	data, err := json.Marshal(te.Outputs)
	if err != nil {
		return "", fmt.Errorf("failed to marshal outputs: %w", err)
	}

	return string(data), nil
}

// SetOutputsFromJSON parses JSON string and sets outputs
func (te *TranscriptionEvent) SetOutputsFromJSON(jsonStr string) error {
	if jsonStr == "" || jsonStr == "[]" {
		te.Outputs = []string{}
		return nil
	}

	var outputs []string
	if err := json.Unmarshal([]byte(jsonStr), &outputs); err != nil {
		return fmt.Errorf("failed to unmarshal outputs JSON: %w", err)
	}

	te.Outputs = outputs
	return nil
}

// IsValid performs basic validation on the transcription event
func (te *TranscriptionEvent) IsValid() error {
	if te.UUID == "" {
		return fmt.Errorf("UUID is required")
	}

	if te.RunID == "" {
		return fmt.Errorf("runID is required")
	}

	if te.MediaPath == "" {
		return fmt.Errorf("media path is required")
	}

	if te.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}

	if te.SegmentCount < 0 || te.AudioDuration < 0 {
		return fmt.Errorf("segment count and duration must not be negative")
	}

	return nil
}

// String returns a human-readable representation of the event
func (te *TranscriptionEvent) String() string {
	return fmt.Sprintf("TranscriptionEvent{UUID: %s, RunID: %s, Media: %s, Model: %s/%s, Segments: %d, Success: %t}",
		te.UUID, te.RunID, te.MediaPath, te.Backend, te.ModelSize, te.SegmentCount, te.Success)
}
