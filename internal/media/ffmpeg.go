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

package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// SampleRate is the rate every extracted track is resampled to
const SampleRate = 16000

// ErrUnsupportedMedia is returned for files with no audio stream
var ErrUnsupportedMedia = errors.New("unsupported media: no audio stream")

// Tools names the ffmpeg binaries. Empty fields fall back to PATH lookups.
type Tools struct {
	FFmpeg  string
	FFprobe string
}

func (t Tools) ffmpeg() string {
	if t.FFmpeg == "" {
		return "ffmpeg"
	}
	return t.FFmpeg
}

func (t Tools) ffprobe() string {
	if t.FFprobe == "" {
		return "ffprobe"
	}
	return t.FFprobe
}

// Info describes a probed media file
type Info struct {
	Path     string
	HasVideo bool
	HasAudio bool
	Duration float64 // seconds, 0 when unknown
	Size     int64
}

// IsVideo reports whether the audio has to be extracted from a video container
func (i Info) IsVideo() bool { return i.HasVideo }

type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
	} `json:"format"`
}

// Probe inspects path with ffprobe
func (t Tools) Probe(ctx context.Context, path string) (Info, error) {
	cmd := exec.CommandContext(ctx, t.ffprobe(),
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe %s: %w (stderr: %s)", path, err, strings.TrimSpace(stderr.String()))
	}
	return parseProbe(path, out)
}

func parseProbe(path string, out []byte) (Info, error) {
	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return Info{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := Info{Path: path}
	for _, s := range parsed.Streams {
		switch s.CodecType {
		case "video":
			info.HasVideo = true
		case "audio":
			info.HasAudio = true
		}
	}
	if d, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
		info.Duration = d
	}
	if n, err := strconv.ParseInt(parsed.Format.Size, 10, 64); err == nil {
		info.Size = n
	}
	return info, nil
}

// ExtractAudio converts src into a 16 kHz mono 16-bit WAV inside tmpDir and
// returns its path. Files without an audio stream fail with ErrUnsupportedMedia.
func (t Tools) ExtractAudio(ctx context.Context, info Info, tmpDir string) (string, error) {
	if !info.HasAudio {
		return "", fmt.Errorf("%s: %w", info.Path, ErrUnsupportedMedia)
	}
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}

	base := strings.TrimSuffix(filepath.Base(info.Path), filepath.Ext(info.Path))
	dst := filepath.Join(tmpDir, base+"_16k.wav")

	cmd := exec.CommandContext(ctx, t.ffmpeg(),
		"-y", "-i", info.Path,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(SampleRate),
		"-acodec", "pcm_s16le",
		"-f", "wav",
		dst,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg: %w out: %s", err, strings.TrimSpace(string(out)))
	}
	return dst, nil
}
