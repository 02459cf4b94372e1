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

package stt

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
)

// ModelSize is one of the fixed Whisper model presets
type ModelSize string

const (
	ModelTiny   ModelSize = "tiny"
	ModelBase   ModelSize = "base"
	ModelSmall  ModelSize = "small"
	ModelMedium ModelSize = "medium"
	ModelLarge  ModelSize = "large"
	ModelTurbo  ModelSize = "turbo"
)

// ModelSizes lists every accepted preset, smallest first
var ModelSizes = []ModelSize{ModelTiny, ModelBase, ModelSmall, ModelMedium, ModelLarge, ModelTurbo}

// ParseModelSize validates a preset name
func ParseModelSize(s string) (ModelSize, error) {
	size := ModelSize(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ModelSizes {
		if size == known {
			return size, nil
		}
	}
	names := make([]string, len(ModelSizes))
	for i, m := range ModelSizes {
		names[i] = string(m)
	}
	return "", fmt.Errorf("invalid model size %q: choose from %s", s, strings.Join(names, ", "))
}

// FileName is the ggml model file whisper.cpp ships for this preset
func (m ModelSize) FileName() string {
	switch m {
	case ModelLarge:
		return "ggml-large-v3.bin"
	case ModelTurbo:
		return "ggml-large-v3-turbo.bin"
	default:
		return "ggml-" + string(m) + ".bin"
	}
}

// ModelPath joins dir and the preset file name
func ModelPath(dir string, m ModelSize) string {
	return filepath.Join(dir, m.FileName())
}

// AutoDetect asks the model to detect the spoken language
const AutoDetect = "auto"

// NormalizeLanguage returns "auto" for empty/auto input and the canonical
// ISO 639 base code otherwise ("EN-us" -> "en").
func NormalizeLanguage(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, AutoDetect) || strings.EqualFold(s, "auto-detect") {
		return AutoDetect, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", s, err)
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return "", fmt.Errorf("invalid language %q", s)
	}
	return base.String(), nil
}

// Options enumerates every knob the model boundary understands
type Options struct {
	ModelSize ModelSize
	Language  string // "auto" or an ISO 639 code
	Threads   uint   // 0 lets the backend decide
	Translate bool   // translate to English instead of transcribing

	// Progress receives 0-100 while the model runs. Backends that cannot
	// report progress never call it.
	Progress func(percent int)
}

// DefaultOptions returns the base preset with language auto-detection
func DefaultOptions() Options {
	return Options{ModelSize: ModelBase, Language: AutoDetect}
}

// Validate checks the preset and normalizes the language in place
func (o *Options) Validate() error {
	size, err := ParseModelSize(string(o.ModelSize))
	if err != nil {
		return err
	}
	lang, err := NormalizeLanguage(o.Language)
	if err != nil {
		return err
	}
	o.ModelSize = size
	o.Language = lang
	return nil
}

func (o Options) progress(p int) {
	if o.Progress != nil {
		o.Progress(p)
	}
}
