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

package messaging

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/loqalabs/loqa-scribe/internal/events"
	"github.com/loqalabs/loqa-scribe/internal/logging"
)

// Subject suffixes appended to the configured base subject
const (
	SuffixCompleted = "completed"
	SuffixFailed    = "failed"
)

// ErrNotConnected is returned when publishing before Connect succeeded
var ErrNotConnected = errors.New("NATS connection not established")

// Config holds the publisher settings
type Config struct {
	URL           string
	Subject       string
	MaxReconnect  int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// conn is the part of *nats.Conn the publisher uses
type conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	IsConnected() bool
	Close()
}

// NATSService publishes transcription run events. A service built with an
// empty URL is disabled and every publish is a no-op.
type NATSService struct {
	cfg    Config
	conn   conn
	logger *zap.Logger
}

// NewNATSService creates a new NATS service instance
func NewNATSService(cfg Config, logger *zap.Logger) *NATSService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Subject == "" {
		cfg.Subject = "loqa.transcriptions"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &NATSService{cfg: cfg, logger: logger}
}

// Enabled reports whether a NATS URL was configured
func (ns *NATSService) Enabled() bool {
	return ns.cfg.URL != ""
}

// Connect establishes connection to NATS server
func (ns *NATSService) Connect() error {
	if !ns.Enabled() {
		return nil
	}

	ns.logger.Info("Connecting to NATS", zap.String("url", ns.cfg.URL))

	opts := []nats.Option{
		nats.Name("loqa-scribe"),
		nats.Timeout(ns.cfg.Timeout),
		nats.ReconnectWait(ns.cfg.ReconnectWait),
		nats.MaxReconnects(ns.cfg.MaxReconnect),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			ns.logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			ns.logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			ns.logger.Debug("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(ns.cfg.URL, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	ns.conn = nc
	ns.logger.Info("Connected to NATS server", zap.String("url", nc.ConnectedUrl()))
	return nil
}

// Subject returns the subject a run event is published on
func (ns *NATSService) Subject(event *events.TranscriptionEvent) string {
	suffix := SuffixCompleted
	if !event.Success {
		suffix = SuffixFailed
	}
	return ns.cfg.Subject + "." + suffix
}

// PublishTranscription publishes a finished run, successful or not
func (ns *NATSService) PublishTranscription(event *events.TranscriptionEvent) error {
	if !ns.Enabled() {
		return nil
	}
	if ns.conn == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal transcription event: %w", err)
	}

	subject := ns.Subject(event)
	if err := ns.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	// The CLI exits right after a run, so the message must leave the buffer now
	if err := ns.conn.FlushTimeout(ns.cfg.Timeout); err != nil {
		return fmt.Errorf("failed to flush %s: %w", subject, err)
	}

	logging.LogNATSEvent(subject, "publish",
		zap.String("run_id", event.RunID),
		zap.Bool("success", event.Success),
	)
	return nil
}

// Close closes the NATS connection
func (ns *NATSService) Close() {
	if ns.conn != nil {
		ns.conn.Close()
		ns.conn = nil
	}
}

// IsConnected returns true if connected to NATS
func (ns *NATSService) IsConnected() bool {
	return ns.conn != nil && ns.conn.IsConnected()
}
