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
	"regexp"
	"strings"
)

var (
	// ErrInvalidSubject is returned when a NATS publish subject is unusable
	ErrInvalidSubject = errors.New("invalid NATS subject")

	// subjectTokenPattern allows the characters NATS accepts in a literal token
	subjectTokenPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// SanitizeLogInput removes newline characters to prevent log injection attacks.
// Media paths and model output are user controlled and go through it before
// they are logged or printed in tables.
func SanitizeLogInput(input string) string {
	sanitized := strings.ReplaceAll(input, "\n", "")
	sanitized = strings.ReplaceAll(sanitized, "\r", "")
	return sanitized
}

// ValidateSubject checks a base subject for publishing. Wildcards, empty
// tokens and whitespace are rejected.
func ValidateSubject(subject string) error {
	if subject == "" {
		return ErrInvalidSubject
	}

	for _, token := range strings.Split(subject, ".") {
		if !subjectTokenPattern.MatchString(token) {
			return ErrInvalidSubject
		}
	}

	return nil
}
