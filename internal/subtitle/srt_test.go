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
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loqalabs/loqa-scribe/internal/transcript"
)

func helloWorld() []transcript.Segment {
	return []transcript.Segment{
		transcript.MustSegment(0.0, 1.5, "Hello"),
		transcript.MustSegment(1.5, 3.0, "world"),
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{12345.678, "03:25:45,678"},
		{59.9999, "00:01:00,000"},
		{0.0625, "00:00:00,063"}, // exactly half a millisecond rounds up
		{2.0625, "00:00:02,063"},
		{3599.999, "00:59:59,999"},
		{3600, "01:00:00,000"},
		{360000, "100:00:00,000"},
		{-1, "00:00:00,000"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.seconds), func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimestamp(tt.seconds))
		})
	}
}

func TestFormatVTTTimestamp(t *testing.T) {
	assert.Equal(t, "03:25:45.678", FormatVTTTimestamp(12345.678))
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("03:25:45,678")
	require.NoError(t, err)
	assert.InDelta(t, 12345.678, got, 1e-9)

	got, err = ParseTimestamp(" 00:00:01.500 ")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, got, 1e-9)

	for _, bad := range []string{"", "00:00:01", "00:00:01,5", "00:61:00,000", "aa:00:00,000", "00:00,000"} {
		_, err := ParseTimestamp(bad)
		assert.ErrorIs(t, err, transcript.ErrSerialization, "input %q", bad)
	}
}

func TestSRTExample(t *testing.T) {
	got, err := SRT(helloWorld(), DefaultOptions())
	require.NoError(t, err)

	want := "1\n" +
		"00:00:00,000 --> 00:00:01,500\n" +
		"Hello\n" +
		"\n" +
		"2\n" +
		"00:00:01,500 --> 00:00:03,000\n" +
		"world\n" +
		"\n"
	assert.Equal(t, want, got)
}

func TestSRTEmpty(t *testing.T) {
	got, err := SRT(nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "", got)

	got, err = SRT([]transcript.Segment{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestSRTCRLF(t *testing.T) {
	got, err := SRT(helloWorld()[:1], Options{LineEnding: CRLF})
	require.NoError(t, err)
	assert.Equal(t, "1\r\n00:00:00,000 --> 00:00:01,500\r\nHello\r\n\r\n", got)
}

func TestSRTOutOfOrder(t *testing.T) {
	segs := []transcript.Segment{
		transcript.MustSegment(5, 6, "later"),
		transcript.MustSegment(1, 2, "earlier"),
	}

	got, err := SRT(segs, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, transcript.ErrSerialization))
	assert.Empty(t, got)
}

func TestSRTInvalidSegment(t *testing.T) {
	segs := []transcript.Segment{transcript.MustSegment(0, 1, "fine"), {}}

	_, err := SRT(segs, DefaultOptions())
	assert.ErrorIs(t, err, transcript.ErrInvalidSegment)
}

func TestSRTRejectsBadOptions(t *testing.T) {
	_, err := SRT(helloWorld(), Options{WrapWidth: -1})
	assert.ErrorIs(t, err, transcript.ErrSerialization)

	_, err = SRT(helloWorld(), Options{LineEnding: "cr"})
	assert.ErrorIs(t, err, transcript.ErrSerialization)
}

func TestSRTWrapping(t *testing.T) {
	segs := []transcript.Segment{
		transcript.MustSegment(0, 4, "the quick brown fox jumps over the lazy dog"),
	}

	got, err := SRT(segs, Options{WrapWidth: 16})
	require.NoError(t, err)
	assert.Equal(t, "1\n00:00:00,000 --> 00:00:04,000\n"+
		"the quick brown\n"+
		"fox jumps over\n"+
		"the lazy dog\n\n", got)
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"no wrap keeps line", "  one long line of text ", 0, []string{"one long line of text"}},
		{"drops blank lines", "first\n\n  \nsecond", 0, []string{"first", "second"}},
		{"crlf input", "a\r\nb", 0, []string{"a", "b"}},
		{"long word stays whole", "supercalifragilistic is long", 5, []string{"supercalifragilistic", "is", "long"}},
		{"counts runes", "äöü äöü äöü", 7, []string{"äöü äöü", "äöü"}},
		{"exact fit", "ab cd", 5, []string{"ab cd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapText(tt.text, tt.width))
		})
	}
}

func TestSRTRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	words := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta"}

	for n := 0; n < 50; n++ {
		var segs []transcript.Segment
		cursor := int64(0)
		count := rng.Intn(12)
		for i := 0; i < count; i++ {
			cursor += int64(rng.Intn(2000))
			length := int64(rng.Intn(5000))
			text := strings.Join([]string{words[rng.Intn(len(words))], words[rng.Intn(len(words))]}, " ")
			segs = append(segs, transcript.MustSegment(float64(cursor)/1000, float64(cursor+length)/1000, text))
			cursor += length
		}

		for _, le := range []LineEnding{LF, CRLF} {
			out, err := SRT(segs, Options{LineEnding: le})
			require.NoError(t, err)

			cues, err := ParseSRT(strings.NewReader(out))
			require.NoError(t, err)
			require.Len(t, cues, len(segs))

			for i, cue := range cues {
				assert.Equal(t, i+1, cue.Index)
				assert.InDelta(t, segs[i].Start(), cue.Start, 1e-9)
				assert.InDelta(t, segs[i].End(), cue.End, 1e-9)
				assert.Equal(t, segs[i].Text(), cue.Text())
			}
		}
	}
}
