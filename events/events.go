// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/synadia-io/orbit.go/natscontext"

	"github.com/choria-io/openstack-nfs/internal/backoff"
	"github.com/choria-io/openstack-nfs/model"
)

const (
	// FlushTimeout bounds waiting for the server to acknowledge published events
	FlushTimeout = 5 * time.Second

	// ConnectAttempts is how often connecting is tried before giving up on an event
	ConnectAttempts = 3
)

// conn is the part of a nats connection used to publish
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// ConnectFunc connects to NATS using a named context
type ConnectFunc func(natsContext string, opts ...nats.Option) (conn, error)

func connectContext(natsContext string, opts ...nats.Option) (conn, error) {
	nc, _, err := natscontext.Connect(natsContext, opts...)
	if err != nil {
		return nil, err
	}

	return nc, nil
}

// NatsPublisher publishes step events to NATS, the connection is made on first use
type NatsPublisher struct {
	natsContext string
	subject     string
	connect     ConnectFunc
	retry       backoff.Policy
	nc          conn
	log         model.Logger
	mu          sync.Mutex
}

var _ model.EventPublisher = (*NatsPublisher)(nil)

// NoopPublisher discards all events
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *model.StepEvent) error { return nil }

// New creates a publisher for natsContext, without a context events are discarded
func New(natsContext string, subject string, unit string, log model.Logger) model.EventPublisher {
	if natsContext == "" {
		return NoopPublisher{}
	}

	return NewNatsPublisher(natsContext, Subject(subject, unit), connectContext, log)
}

// NewNatsPublisher creates a publisher sending to subject
func NewNatsPublisher(natsContext string, subject string, connect ConnectFunc, log model.Logger) *NatsPublisher {
	return &NatsPublisher{
		natsContext: natsContext,
		subject:     subject,
		connect:     connect,
		retry:       backoff.FiveSec,
		log:         log.With("nats_context", natsContext, "subject", subject),
	}
}

// Subject is the subject events of unit are published to, unit names like app/0 become app_0
func Subject(prefix string, unit string) string {
	if unit == "" {
		return prefix
	}

	r := strings.NewReplacer("/", "_", ".", "_", "*", "_", ">", "_", " ", "_")

	return fmt.Sprintf("%s.%s", prefix, r.Replace(unit))
}

func (p *NatsPublisher) connection(ctx context.Context) (conn, error) {
	if p.nc != nil {
		return p.nc, nil
	}

	var nc conn
	var lastErr error

	err := p.retry.For(ctx, func(try int) error {
		nc, lastErr = p.connect(p.natsContext, nats.Name("openstack-nfs"), nats.MaxReconnects(1))
		if lastErr != nil && try < ConnectAttempts {
			p.log.Debug("Connecting to NATS failed, retrying", "try", try, "error", lastErr)
			return lastErr
		}

		return nil
	})
	switch {
	case lastErr != nil:
		return nil, lastErr
	case err != nil:
		return nil, err
	}

	p.nc = nc

	return nc, nil
}

// Publish sends event and waits for the server to receive it
func (p *NatsPublisher) Publish(ctx context.Context, event *model.StepEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	nc, err := p.connection(ctx)
	if err != nil {
		return fmt.Errorf("could not connect to NATS: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = nc.Publish(p.subject, data)
	if err != nil {
		return err
	}

	fctx, cancel := context.WithTimeout(ctx, FlushTimeout)
	defer cancel()

	err = nc.FlushWithContext(fctx)
	if err != nil {
		return err
	}

	p.log.Debug("Published event", "event", event.EventID)

	return nil
}

// Close closes the connection if one was made
func (p *NatsPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.nc != nil {
		p.nc.Close()
		p.nc = nil
	}
}
