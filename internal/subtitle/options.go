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
	"strings"
)

// LineEnding selects the newline sequence written to output files
type LineEnding string

const (
	LF   LineEnding = "lf"
	CRLF LineEnding = "crlf"
)

// ParseLineEnding accepts "lf" or "crlf" in any case. Empty means LF.
func ParseLineEnding(s string) (LineEnding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lf", "unix":
		return LF, nil
	case "crlf", "windows", "dos":
		return CRLF, nil
	default:
		return "", fmt.Errorf("unknown line ending %q (want lf or crlf)", s)
	}
}

func (le LineEnding) newline() string {
	if le == CRLF {
		return "\r\n"
	}
	return "\n"
}

// Options controls how segments are rendered. The zero value gives LF line
// endings, no wrapping and a single space between plain-text segments.
type Options struct {
	LineEnding LineEnding

	// WrapWidth is the maximum cue line length in runes. 0 disables wrapping.
	WrapWidth int

	// Delimiter joins segments in plain text. Empty means a single space.
	Delimiter string

	// SentenceBreaks puts a line break after sentence-ending punctuation in
	// plain text.
	SentenceBreaks bool
}

// DefaultOptions returns the documented defaults
func DefaultOptions() Options {
	return Options{
		LineEnding: LF,
		WrapWidth:  0,
		Delimiter:  " ",
	}
}

// Validate rejects option values that cannot be rendered
func (o Options) Validate() error {
	if o.WrapWidth < 0 {
		return fmt.Errorf("wrap width must not be negative: %d", o.WrapWidth)
	}
	if _, err := ParseLineEnding(string(o.LineEnding)); err != nil {
		return err
	}
	return nil
}

func (o Options) delimiter() string {
	if o.Delimiter == "" {
		return " "
	}
	return o.Delimiter
}
