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

// Format names an output rendering
type Format string

const (
	FormatText Format = "txt"
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
)

// ParseFormat accepts a format name or file extension
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "txt", "text":
		return FormatText, nil
	case "srt", "subrip":
		return FormatSRT, nil
	case "vtt", "webvtt":
		return FormatVTT, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Extension returns the file extension including the leading dot
func (f Format) Extension() string {
	return "." + string(f)
}

// Write renders segments in format f to w
func Write(w io.Writer, f Format, segments []transcript.Segment, opts Options) error {
	switch f {
	case FormatText:
		return WritePlainText(w, segments, opts)
	case FormatSRT:
		return WriteSRT(w, segments, opts)
	case FormatVTT:
		return WriteVTT(w, segments, opts)
	default:
		return fmt.Errorf("%w: unknown output format %q", transcript.ErrSerialization, f)
	}
}

// Render returns segments in format f as a string
func Render(f Format, segments []transcript.Segment, opts Options) (string, error) {
	var b strings.Builder
	if err := Write(&b, f, segments, opts); err != nil {
		return "", err
	}
	return b.String(), nil
}
