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

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/loqalabs/loqa-scribe/internal/events"
	"github.com/loqalabs/loqa-scribe/internal/logging"
)

// ErrRunNotFound is returned when no run matches a lookup
var ErrRunNotFound = errors.New("transcription run not found")

const runColumns = `uuid, run_id, timestamp,
		media_path, backend, model_size, language,
		segment_count, audio_duration, outputs,
		processing_time_ms, success, error_message`

// sortable columns accepted by ListOptions.SortBy
var sortColumns = map[string]string{
	"":                "timestamp",
	"timestamp":       "timestamp",
	"duration":        "audio_duration",
	"processing_time": "processing_time_ms",
	"segments":        "segment_count",
}

// RunsStore handles database operations for transcription runs
type RunsStore struct {
	db *Database
}

// NewRunsStore creates a new runs store
func NewRunsStore(db *Database) *RunsStore {
	return &RunsStore{db: db}
}

// Insert stores a finished run
func (s *RunsStore) Insert(event *events.TranscriptionEvent) error {
	if err := event.IsValid(); err != nil {
		return fmt.Errorf("invalid transcription event: %w", err)
	}

	outputsJSON, err := event.OutputsJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize outputs: %w", err)
	}

	query := `
		INSERT INTO transcription_runs (` + runColumns + `) VALUES (
			?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?,
			?, ?, ?
		)`

	_, err = s.db.DB().Exec(query,
		event.UUID, event.RunID, event.Timestamp,
		event.MediaPath, event.Backend, event.ModelSize, event.Language,
		event.SegmentCount, event.AudioDuration, outputsJSON,
		event.ProcessingTime, event.Success, event.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transcription run: %w", err)
	}

	logging.LogDatabaseOperation("insert", "transcription_runs",
		zap.String("uuid", event.UUID),
		zap.String("run_id", event.RunID),
	)
	return nil
}

// Record implements the run recorder used by the scribe façade
func (s *RunsStore) Record(event *events.TranscriptionEvent) error {
	return s.Insert(event)
}

// GetByUUID retrieves a run by its UUID
func (s *RunsStore) GetByUUID(uuid string) (*events.TranscriptionEvent, error) {
	query := `SELECT ` + runColumns + ` FROM transcription_runs WHERE uuid = ?`
	return scanRun(s.db.DB().QueryRow(query, uuid))
}

// List retrieves runs with pagination and filtering
func (s *RunsStore) List(options ListOptions) ([]*events.TranscriptionEvent, error) {
	query, args, err := buildListQuery(options)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.DB().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcription runs: %w", err)
	}
	defer rows.Close()

	var runs []*events.TranscriptionEvent
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transcription run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transcription runs: %w", err)
	}

	return runs, nil
}

// Count returns the number of runs matching the filter
func (s *RunsStore) Count(options ListOptions) (int64, error) {
	options.Limit = 0
	options.Offset = 0
	query, args, err := buildListQuery(options)
	if err != nil {
		return 0, err
	}

	var count int64
	countQuery := "SELECT COUNT(*) FROM (" + query + ") AS filtered"
	if err := s.db.DB().QueryRow(countQuery, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transcription runs: %w", err)
	}

	return count, nil
}

// Delete removes a run by UUID
func (s *RunsStore) Delete(uuid string) error {
	result, err := s.db.DB().Exec("DELETE FROM transcription_runs WHERE uuid = ?", uuid)
	if err != nil {
		return fmt.Errorf("failed to delete transcription run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, uuid)
	}

	logging.LogDatabaseOperation("delete", "transcription_runs", zap.String("uuid", uuid))
	return nil
}

// ListOptions defines filtering and pagination options
type ListOptions struct {
	// Filtering
	Backend   string
	MediaPath string
	Success   *bool // nil = all, true = success only, false = failures only
	Since     *time.Time

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "timestamp", "duration", "processing_time", "segments"
	SortOrder string // "ASC", "DESC"
}

// buildListQuery constructs the SQL query based on ListOptions
func buildListQuery(options ListOptions) (string, []any, error) {
	query := `SELECT ` + runColumns + ` FROM transcription_runs WHERE 1=1`
	var args []any

	if options.Backend != "" {
		query += " AND backend = ?"
		args = append(args, options.Backend)
	}

	if options.MediaPath != "" {
		query += " AND media_path = ?"
		args = append(args, options.MediaPath)
	}

	if options.Success != nil {
		query += " AND success = ?"
		args = append(args, *options.Success)
	}

	if options.Since != nil {
		query += " AND timestamp >= ?"
		args = append(args, *options.Since)
	}

	sortBy, ok := sortColumns[strings.ToLower(options.SortBy)]
	if !ok {
		return "", nil, fmt.Errorf("unsupported sort field %q", options.SortBy)
	}

	sortOrder := strings.ToUpper(options.SortOrder)
	switch sortOrder {
	case "":
		sortOrder = "DESC"
	case "ASC", "DESC":
	default:
		return "", nil, fmt.Errorf("unsupported sort order %q", options.SortOrder)
	}

	// rowid breaks ties between runs stored within the same timestamp
	query += fmt.Sprintf(" ORDER BY %s %s, rowid %s", sortBy, sortOrder, sortOrder)

	if options.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, options.Limit)

		if options.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, options.Offset)
		}
	}

	return query, args, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun scans a database row into a TranscriptionEvent
func scanRun(row rowScanner) (*events.TranscriptionEvent, error) {
	var event events.TranscriptionEvent
	var outputsJSON string

	err := row.Scan(
		&event.UUID, &event.RunID, &event.Timestamp,
		&event.MediaPath, &event.Backend, &event.ModelSize, &event.Language,
		&event.SegmentCount, &event.AudioDuration, &outputsJSON,
		&event.ProcessingTime, &event.Success, &event.ErrorMessage,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	if err := event.SetOutputsFromJSON(outputsJSON); err != nil {
		return nil, fmt.Errorf("failed to parse outputs JSON: %w", err)
	}

	return &event, nil
}
