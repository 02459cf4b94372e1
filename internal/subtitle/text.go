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
	"fmt"
	"io"
	"strings"

	"github.com/loqalabs/loqa-scribe/internal/transcript"
)

var sentenceBreaker = strings.NewReplacer(". ", ".\n", "? ", "?\n", "! ", "!\n")

// PlainText joins the trimmed text of every segment with the configured
// delimiter. No timestamps are written.
func PlainText(segments []transcript.Segment, opts Options) (string, error) {
	if err := transcript.ValidateSequence(segments); err != nil {
		return "", err
	}

	text := transcript.Result{Segments: segments}.Text(opts.delimiter())
	if opts.SentenceBreaks {
		text = sentenceBreaker.Replace(text)
	}
	if opts.LineEnding == CRLF {
		text = strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\n", "\r\n")
	}
	return text, nil
}

// WritePlainText writes PlainText output to w
func WritePlainText(w io.Writer, segments []transcript.Segment, opts Options) error {
	text, err := PlainText(segments, opts)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, text); err != nil {
		return fmt.Errorf("%w: %w", transcript.ErrSerialization, err)
	}
	return nil
}
