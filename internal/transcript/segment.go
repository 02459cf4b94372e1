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

import (
	"fmt"
	"math"
	"strings"
)

// Segment is one timed span of recognized speech. Times are seconds from the
// start of the media. A Segment is immutable once constructed.
type Segment struct {
	start float64
	end   float64
	text  string
}

// NewSegment builds a validated segment
func NewSegment(start, end float64, text string) (Segment, error) {
	s := Segment{start: start, end: end, text: text}
	if err := s.Validate(); err != nil {
		return Segment{}, err
	}
	return s, nil
}

// MustSegment is like NewSegment but panics on invalid input.
func MustSegment(start, end float64, text string) Segment {
	s, err := NewSegment(start, end, text)
	if err != nil {
		panic(err)
	}
	return s
}

// Start returns the segment start in seconds
func (s Segment) Start() float64 { return s.start }

// End returns the segment end in seconds
func (s Segment) End() float64 { return s.end }

// Text returns the recognized text
func (s Segment) Text() string { return s.text }

// Duration returns end minus start in seconds
func (s Segment) Duration() float64 { return s.end - s.start }

// Validate checks the segment invariant: 0 <= start <= end and non-blank text.
func (s Segment) Validate() error {
	if math.IsNaN(s.start) || math.IsInf(s.start, 0) || math.IsNaN(s.end) || math.IsInf(s.end, 0) {
		return fmt.Errorf("%w: non-finite timing [%v, %v]", ErrInvalidSegment, s.start, s.end)
	}
	if s.start < 0 {
		return fmt.Errorf("%w: negative start %.3f", ErrInvalidSegment, s.start)
	}
	if s.end < s.start {
		return fmt.Errorf("%w: end %.3f precedes start %.3f", ErrInvalidSegment, s.end, s.start)
	}
	if strings.TrimSpace(s.text) == "" {
		return fmt.Errorf("%w: empty text", ErrInvalidSegment)
	}
	return nil
}

// String renders the segment for logs
func (s Segment) String() string {
	return fmt.Sprintf("[%.3f-%.3f] %s", s.start, s.end, s.text)
}

// ValidateSequence checks every segment and that starts never go backwards.
// Positions in error messages are 1-indexed to match subtitle cue numbers.
func ValidateSequence(segments []Segment) error {
	for i, s := range segments {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("segment %d: %w", i+1, err)
		}
		if i > 0 && s.start < segments[i-1].start {
			return fmt.Errorf("%w: segment %d starts at %.3f before segment %d at %.3f",
				ErrSerialization, i+1, s.start, i, segments[i-1].start)
		}
	}
	return nil
}
