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
	"strconv"
	"strings"

	"github.com/loqalabs/loqa-scribe/internal/transcript"
)

// Cue is one parsed SubRip block
type Cue struct {
	Index int
	Start float64
	End   float64
	Lines []string
}

// Text joins the cue lines with newlines
func (c Cue) Text() string {
	return strings.Join(c.Lines, "\n")
}

// Segment converts the cue back into a transcript segment
func (c Cue) Segment() (transcript.Segment, error) {
	return transcript.NewSegment(c.Start, c.End, c.Text())
}

// ParseSRT reads SubRip cues. LF and CRLF line endings are both accepted, as
// is a leading UTF-8 byte order mark.
func ParseSRT(r io.Reader) ([]Cue, error) {
	var (
		cues  []Cue
		block []string
		line  int
	)

	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		cue, err := parseCue(block)
		if err != nil {
			return fmt.Errorf("cue ending at line %d: %w", line, err)
		}
		cues = append(cues, cue)
		block = block[:0]
		return nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if strings.TrimSpace(text) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		block = append(block, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", transcript.ErrSerialization, err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cues, nil
}

func parseCue(block []string) (Cue, error) {
	if len(block) < 2 {
		return Cue{}, fmt.Errorf("%w: cue needs an index and a timing line", transcript.ErrSerialization)
	}

	index, err := strconv.Atoi(strings.TrimSpace(block[0]))
	if err != nil || index <= 0 {
		return Cue{}, fmt.Errorf("%w: bad cue index %q", transcript.ErrSerialization, block[0])
	}

	from, to, ok := strings.Cut(block[1], "-->")
	if !ok {
		return Cue{}, fmt.Errorf("%w: bad timing line %q", transcript.ErrSerialization, block[1])
	}
	start, err := ParseTimestamp(from)
	if err != nil {
		return Cue{}, err
	}
	end, err := ParseTimestamp(to)
	if err != nil {
		return Cue{}, err
	}

	lines := make([]string, len(block)-2)
	copy(lines, block[2:])
	return Cue{Index: index, Start: start, End: end, Lines: lines}, nil
}
