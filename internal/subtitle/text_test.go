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

package subtitle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loqalabs/loqa-scribe/internal/transcript"
)

func TestPlainText(t *testing.T) {
	sentences := []transcript.Segment{
		transcript.MustSegment(0, 2, " It works. Does it? "),
		transcript.MustSegment(2, 4, "Yes! Great."),
	}

	tests := []struct {
		name     string
		segments []transcript.Segment
		opts     Options
		want     string
	}{
		{"example", helloWorld(), DefaultOptions(), "Hello world"},
		{"zero options use a space", helloWorld(), Options{}, "Hello world"},
		{"custom delimiter", helloWorld(), Options{Delimiter: "\n"}, "Hello\nworld"},
		{"crlf delimiter", helloWorld(), Options{Delimiter: "\n", LineEnding: CRLF}, "Hello\r\nworld"},
		{"empty", nil, DefaultOptions(), ""},
		{"sentence breaks", sentences, Options{SentenceBreaks: true}, "It works.\nDoes it?\nYes!\nGreat."},
		{"no sentence breaks", sentences, DefaultOptions(), "It works. Does it? Yes! Great."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlainText(tt.segments, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlainTextErrors(t *testing.T) {
	_, err := PlainText([]transcript.Segment{
		transcript.MustSegment(3, 4, "b"),
		transcript.MustSegment(1, 2, "a"),
	}, DefaultOptions())
	assert.ErrorIs(t, err, transcript.ErrSerialization)

	_, err = PlainText([]transcript.Segment{{}}, DefaultOptions())
	assert.ErrorIs(t, err, transcript.ErrInvalidSegment)
}

func TestVTT(t *testing.T) {
	got, err := VTT(helloWorld(), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "WEBVTT\n\n"+
		"00:00:00.000 --> 00:00:01.500\nHello\n\n"+
		"00:00:01.500 --> 00:00:03.000\nworld\n\n", got)

	empty, err := VTT(nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "WEBVTT\n\n", empty)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"txt": FormatText, "TEXT": FormatText, ".srt": FormatSRT, "vtt": FormatVTT, "WebVTT": FormatVTT,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("ass")
	assert.Error(t, err)
	assert.Equal(t, ".srt", FormatSRT.Extension())
}

func TestRender(t *testing.T) {
	srt, err := Render(FormatSRT, helloWorld(), DefaultOptions())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(srt, "1\n00:00:00,000"))

	txt, err := Render(FormatText, helloWorld(), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "Hello world", txt)

	_, err = Render(Format("ass"), helloWorld(), DefaultOptions())
	assert.ErrorIs(t, err, transcript.ErrSerialization)
}

func TestParseLineEnding(t *testing.T) {
	le, err := ParseLineEnding("")
	require.NoError(t, err)
	assert.Equal(t, LF, le)

	le, err = ParseLineEnding("CRLF")
	require.NoError(t, err)
	assert.Equal(t, CRLF, le)

	_, err = ParseLineEnding("cr")
	assert.Error(t, err)
}
