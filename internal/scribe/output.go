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

package scribe

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/loqalabs/loqa-scribe/internal/logging"
	"github.com/loqalabs/loqa-scribe/internal/subtitle"
	"github.com/loqalabs/loqa-scribe/internal/transcript"
)

// SaveText writes the plain-text transcript to path
func (s *Scribe) SaveText(res transcript.Result, path string) error {
	return s.Save(res, subtitle.FormatText, path)
}

// SaveSubtitles writes SRT subtitles to path
func (s *Scribe) SaveSubtitles(res transcript.Result, path string) error {
	return s.Save(res, subtitle.FormatSRT, path)
}

// SaveVTT writes WebVTT subtitles to path
func (s *Scribe) SaveVTT(res transcript.Result, path string) error {
	return s.Save(res, subtitle.FormatVTT, path)
}

// Save renders res in format f and writes it to path as UTF-8. The file is
// only created once rendering succeeded.
func (s *Scribe) Save(res transcript.Result, f subtitle.Format, path string) error {
	content, err := subtitle.Render(f, res.Segments, s.cfg.Render)
	if err != nil {
		return err
	}
	if err := writeFile(path, content); err != nil {
		return err
	}
	logging.LogOutputWritten(string(f), path,
		zap.Int("segments", len(res.Segments)),
		zap.String("size", humanize.Bytes(uint64(len(content)))),
	)
	return nil
}

func writeFile(path, content string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if _, err := io.WriteString(f, content); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// OutputPath resolves where an output for input goes. An empty output swaps
// the input's extension for ext. A bare file name lands in a directory named
// after the input without its extension. The parent directory is created.
func OutputPath(input, output, ext string) (string, error) {
	if output == "" {
		return trimExt(input) + ext, nil
	}

	dir, file := filepath.Split(output)
	if dir == "" {
		dir = trimExt(input)
		output = filepath.Join(dir, file)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return output, nil
}

// withExt replaces the extension of path with ext
func withExt(path, ext string) string {
	return trimExt(path) + ext
}

func trimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}
