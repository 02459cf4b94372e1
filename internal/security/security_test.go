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

package security

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeLogInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Clean path", "recordings/talk.mp4", "recordings/talk.mp4"},
		{"Newline in file name", "talk\nERROR: fake.mp4", "talkERROR: fake.mp4"},
		{"CRLF sequence", "line1\r\nline2", "line1line2"},
		{"Only newlines", "\n\r\n\r", ""},
		{"Unicode preserved", "Vortrag über Ölpreise\n.mkv", "Vortrag über Ölpreise.mkv"},
		{"Empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeLogInput(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeLogInput(%q) = %q, want %q", tt.input, result, tt.expected)
			}
			if strings.ContainsAny(result, "\r\n") {
				t.Errorf("SanitizeLogInput(%q) still contains line breaks: %q", tt.input, result)
			}
		})
	}
}

func TestValidateSubject(t *testing.T) {
	tests := []struct {
		subject string
		valid   bool
	}{
		{"loqa.transcriptions", true},
		{"scribe", true},
		{"team-a.scribe_runs.v2", true},
		{"", false},
		{"loqa..transcriptions", false},
		{"loqa.transcriptions.", false},
		{".loqa", false},
		{"loqa.*", false},
		{"loqa.>", false},
		{"loqa transcriptions", false},
		{"loqa.trans\ncriptions", false},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			err := ValidateSubject(tt.subject)
			if tt.valid && err != nil {
				t.Errorf("ValidateSubject(%q) = %v, want nil", tt.subject, err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidSubject) {
				t.Errorf("ValidateSubject(%q) = %v, want ErrInvalidSubject", tt.subject, err)
			}
		})
	}
}

func BenchmarkSanitizeLogInput(b *testing.B) {
	testInput := "Normal media path with some\nmalicious\r\ncontent.mp4"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SanitizeLogInput(testInput)
	}
}
