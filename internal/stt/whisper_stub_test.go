//go:build !whisper

package stt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loqalabs/loqa-scribe/internal/transcript"
)

func TestWhisperStub(t *testing.T) {
	wt, err := NewWhisperTranscriber(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, "whisper", wt.Name())

	_, err = wt.Transcribe(context.Background(), "audio.wav", DefaultOptions())
	assert.ErrorIs(t, err, transcript.ErrModelInvocation)
	assert.Contains(t, err.Error(), "-tags whisper")

	assert.NoError(t, wt.Close())
}
