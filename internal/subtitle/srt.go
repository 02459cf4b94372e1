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
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/loqalabs/loqa-scribe/internal/transcript"
)

// SRT renders segments as SubRip text, one numbered cue per segment.
// An empty slice renders as the empty string.
func SRT(segments []transcript.Segment, opts Options) (string, error) {
	var b strings.Builder
	if err := WriteSRT(&b, segments, opts); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteSRT streams SubRip cues to w. The whole sequence is validated before
// anything is written.
func WriteSRT(w io.Writer, segments []transcript.Segment, opts Options) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("%w: %w", transcript.ErrSerialization, err)
	}
	if err := transcript.ValidateSequence(segments); err != nil {
		return err
	}

	nl := opts.LineEnding.newline()
	bw := bufio.NewWriter(w)
	for i, seg := range segments {
		fmt.Fprintf(bw, "%d%s%s --> %s%s", i+1, nl,
			FormatTimestamp(seg.Start()), FormatTimestamp(seg.End()), nl)
		writeCueText(bw, seg.Text(), opts.WrapWidth, nl)
		bw.WriteString(nl)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", transcript.ErrSerialization, err)
	}
	return nil
}

func writeCueText(bw *bufio.Writer, text string, width int, nl string) {
	for _, line := range wrapText(text, width) {
		bw.WriteString(line)
		bw.WriteString(nl)
	}
}

// wrapText splits cue text into display lines. Blank lines are dropped since
// an empty line terminates a cue. With width > 0 words are packed greedily;
// a single word longer than width keeps a line to itself.
func wrapText(text string, width int) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if width <= 0 {
			lines = append(lines, raw)
			continue
		}

		var cur strings.Builder
		curLen := 0
		for _, word := range strings.Fields(raw) {
			wl := utf8.RuneCountInString(word)
			if curLen > 0 && curLen+1+wl > width {
				lines = append(lines, cur.String())
				cur.Reset()
				curLen = 0
			}
			if curLen > 0 {
				cur.WriteByte(' ')
				curLen++
			}
			cur.WriteString(word)
			curLen += wl
		}
		if curLen > 0 {
			lines = append(lines, cur.String())
		}
	}
	return lines
}
