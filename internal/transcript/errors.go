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

import "errors"

// Error kinds surfaced by the transcription pipeline. Callers match them with
// errors.Is; the concrete error carries the detail.
var (
	// ErrInvalidSegment reports malformed timing or empty text on a segment
	ErrInvalidSegment = errors.New("invalid segment")

	// ErrSerialization reports an ordering violation or a formatting failure
	// while producing output
	ErrSerialization = errors.New("serialization error")

	// ErrModelInvocation wraps any failure coming back from the speech model
	ErrModelInvocation = errors.New("model invocation error")
)
