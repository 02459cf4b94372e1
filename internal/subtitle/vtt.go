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

	"github.com/loqalabs/loqa-scribe/internal/transcript"
)

// VTT renders segments as a WebVTT document
func VTT(segments []transcript.Segment, opts Options) (string, error) {
	var b strings.Builder
	if err := WriteVTT(&b, segments, opts); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteVTT streams a WebVTT document to w. The header is always written, so
// an empty sequence yields a valid file with no cues.
func WriteVTT(w io.Writer, segments []transcript.Segment, opts Options) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("%w: %w", transcript.ErrSerialization, err)
	}
	if err := transcript.ValidateSequence(segments); err != nil {
		return err
	}

	nl := opts.LineEnding.newline()
	bw := bufio.NewWriter(w)
	bw.WriteString("WEBVTT" + nl + nl)
	for _, seg := range segments {
		fmt.Fprintf(bw, "%s --> %s%s",
			FormatVTTTimestamp(seg.Start()), FormatVTTTimestamp(seg.End()), nl)
		writeCueText(bw, seg.Text(), opts.WrapWidth, nl)
		bw.WriteString(nl)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", transcript.ErrSerialization, err)
	}
	return nil
}
