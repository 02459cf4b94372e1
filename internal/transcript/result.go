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

package transcript

import "strings"

// Result is the ordered output of one transcription
type Result struct {
	Segments []Segment
	Language string  // detected or requested language, may be empty
	Duration float64 // media duration in seconds when known
}

// Validate checks the whole sequence
func (r Result) Validate() error {
	return ValidateSequence(r.Segments)
}

// Text joins trimmed segment text with delim
func (r Result) Text(delim string) string {
	parts := make([]string, 0, len(r.Segments))
	for _, s := range r.Segments {
		parts = append(parts, strings.TrimSpace(s.text))
	}
	return strings.Join(parts, delim)
}

// End returns the end of the last segment, or 0 for an empty result
func (r Result) End() float64 {
	if len(r.Segments) == 0 {
		return 0
	}
	return r.Segments[len(r.Segments)-1].end
}
