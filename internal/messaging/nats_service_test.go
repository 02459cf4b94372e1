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

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loqalabs/loqa-scribe/internal/events"
)

// MockNATSConnection records publishes in memory
type MockNATSConnection struct {
	mu         sync.Mutex
	published  map[string][][]byte
	errors     map[string]error
	flushErr   error
	connected  bool
	closeCalls int
}

func NewMockNATSConnection() *MockNATSConnection {
	return &MockNATSConnection{
		published: make(map[string][][]byte),
		errors:    make(map[string]error),
		connected: true,
	}
}

func (m *MockNATSConnection) Publish(subject string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return errors.New("nats: connection closed")
	}
	if err, ok := m.errors[subject]; ok {
		return err
	}
	m.published[subject] = append(m.published[subject], data)
	return nil
}

func (m *MockNATSConnection) FlushTimeout(time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushErr
}

func (m *MockNATSConnection) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockNATSConnection) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	m.closeCalls++
}

func (m *MockNATSConnection) SetError(subject string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[subject] = err
}

func (m *MockNATSConnection) Messages(subject string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.published[subject]
}

func newTestService(t *testing.T) (*NATSService, *MockNATSConnection) {
	t.Helper()
	mock := NewMockNATSConnection()
	ns := NewNATSService(Config{URL: "nats://test:4222", Subject: "loqa.transcriptions"}, nil)
	ns.conn = mock
	return ns, mock
}

func TestNATSService_Disabled(t *testing.T) {
	ns := NewNATSService(Config{}, nil)

	assert.False(t, ns.Enabled())
	require.NoError(t, ns.Connect())
	assert.NoError(t, ns.PublishTranscription(events.NewTranscriptionEvent("run", "a.wav")))
	assert.False(t, ns.IsConnected())
	ns.Close()
}

func TestNATSService_NotConnected(t *testing.T) {
	ns := NewNATSService(Config{URL: "nats://test:4222"}, nil)

	err := ns.PublishTranscription(events.NewTranscriptionEvent("run", "a.wav"))
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestNATSService_Subject(t *testing.T) {
	ns := NewNATSService(Config{URL: "nats://test:4222", Subject: "scribe.runs"}, nil)

	ev := events.NewTranscriptionEvent("run", "a.wav")
	assert.Equal(t, "scribe.runs.completed", ns.Subject(ev))

	ev.SetError(errors.New("boom"))
	assert.Equal(t, "scribe.runs.failed", ns.Subject(ev))

	def := NewNATSService(Config{URL: "nats://test:4222"}, nil)
	assert.Equal(t, "loqa.transcriptions.completed", def.Subject(events.NewTranscriptionEvent("run", "a.wav")))
}

func TestNATSService_PublishTranscription(t *testing.T) {
	ns, mock := newTestService(t)

	ok := events.NewTranscriptionEvent("run-ok", "talk.mp4")
	ok.SetModel("whisper", "base", "en")
	ok.AddOutput("talk/talk.srt")
	require.NoError(t, ns.PublishTranscription(ok))

	failed := events.NewTranscriptionEvent("run-bad", "broken.mp4")
	failed.SetError(errors.New("model invocation failed"))
	require.NoError(t, ns.PublishTranscription(failed))

	completed := mock.Messages("loqa.transcriptions.completed")
	require.Len(t, completed, 1)

	var decoded events.TranscriptionEvent
	require.NoError(t, json.Unmarshal(completed[0], &decoded))
	assert.Equal(t, ok.UUID, decoded.UUID)
	assert.Equal(t, "run-ok", decoded.RunID)
	assert.Equal(t, []string{"talk/talk.srt"}, decoded.Outputs)

	failures := mock.Messages("loqa.transcriptions.failed")
	require.Len(t, failures, 1)
	require.NoError(t, json.Unmarshal(failures[0], &decoded))
	assert.False(t, decoded.Success)
	assert.Equal(t, "model invocation failed", decoded.ErrorMessage)
}

func TestNATSService_ErrorScenarios(t *testing.T) {
	tests := []struct {
		name          string
		setupError    func(*MockNATSConnection)
		errorContains string
	}{
		{
			name:          "connection_closed",
			setupError:    func(conn *MockNATSConnection) { conn.Close() },
			errorContains: "connection closed",
		},
		{
			name: "publish_timeout",
			setupError: func(conn *MockNATSConnection) {
				conn.SetError("loqa.transcriptions.completed", context.DeadlineExceeded)
			},
			errorContains: "failed to publish",
		},
		{
			name:          "flush_timeout",
			setupError:    func(conn *MockNATSConnection) { conn.flushErr = errors.New("nats: timeout") },
			errorContains: "failed to flush",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns, mock := newTestService(t)
			tt.setupError(mock)

			err := ns.PublishTranscription(events.NewTranscriptionEvent("run", "a.wav"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestNATSService_Close(t *testing.T) {
	ns, mock := newTestService(t)
	assert.True(t, ns.IsConnected())

	ns.Close()
	ns.Close()

	assert.False(t, ns.IsConnected())
	assert.Equal(t, 1, mock.closeCalls)
}
