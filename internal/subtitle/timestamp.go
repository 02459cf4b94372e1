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
	"math"
	"strconv"
	"strings"

	"github.com/loqalabs/loqa-scribe/internal/transcript"
)

// Milliseconds rounds seconds half-up to whole milliseconds. Negative and
// non-finite input yields 0.
func Milliseconds(seconds float64) int64 {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0
	}
	return int64(math.Floor(seconds*1000 + 0.5))
}

// FormatTimestamp renders seconds as an SRT timestamp, HH:MM:SS,mmm
func FormatTimestamp(seconds float64) string {
	return formatTimestamp(seconds, ',')
}

// FormatVTTTimestamp renders seconds as a WebVTT timestamp, HH:MM:SS.mmm
func FormatVTTTimestamp(seconds float64) string {
	return formatTimestamp(seconds, '.')
}

func formatTimestamp(seconds float64, sep byte) string {
	ms := Milliseconds(seconds)
	hours := ms / 3_600_000
	minutes := (ms / 60_000) % 60
	secs := (ms / 1000) % 60
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hours, minutes, secs, sep, ms%1000)
}

// ParseTimestamp reads HH:MM:SS,mmm (a '.' separator is also accepted) and
// returns seconds.
func ParseTimestamp(s string) (float64, error) {
	ms, err := parseTimestampMillis(s)
	if err != nil {
		return 0, err
	}
	return float64(ms) / 1000, nil
}

func parseTimestampMillis(s string) (int64, error) {
	s = strings.TrimSpace(s)
	clock, frac, ok := strings.Cut(s, ",")
	if !ok {
		clock, frac, ok = strings.Cut(s, ".")
	}
	if !ok || len(frac) != 3 {
		return 0, fmt.Errorf("%w: malformed timestamp %q", transcript.ErrSerialization, s)
	}

	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: malformed timestamp %q", transcript.ErrSerialization, s)
	}

	var fields [4]int64
	for i, p := range append(parts, frac) {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("%w: malformed timestamp %q", transcript.ErrSerialization, s)
		}
		fields[i] = v
	}
	if fields[1] > 59 || fields[2] > 59 {
		return 0, fmt.Errorf("%w: timestamp out of range %q", transcript.ErrSerialization, s)
	}

	return fields[0]*3_600_000 + fields[1]*60_000 + fields[2]*1000 + fields[3], nil
}
