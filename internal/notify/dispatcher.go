// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Dispatcher queues notifications and delivers them on background
// workers, so request handlers never block on a mail relay.
type Dispatcher struct {
	notifier Notifier
	logger   *slog.Logger
	queue    chan Message
	workers  int
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
}

// NewDispatcher wraps a Notifier with an asynchronous delivery queue.
func NewDispatcher(notifier Notifier, logger *slog.Logger, workers int) *Dispatcher {
	if workers <= 0 {
		workers = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		notifier: notifier,
		logger:   logger,
		queue:    make(chan Message, 64),
		workers:  workers,
	}
}

// Start launches the delivery workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
}

// Stop drains the queue and waits for in-flight deliveries.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	close(d.queue)
	d.wg.Wait()
}

// Send enqueues a message for background delivery. It never blocks: when
// the queue is full the message is dropped with a logged error, since a
// stalled relay must not stall registration.
func (d *Dispatcher) Send(_ context.Context, msg Message) error {
	select {
	case d.queue <- msg:
	default:
		d.logger.Error("notification queue full, dropping message", "subject", msg.Subject)
	}
	return nil
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for msg := range d.queue {
		if err := d.notifier.Send(ctx, msg); err != nil {
			d.logger.Error("notification delivery failed",
				"subject", msg.Subject,
				"error", err,
			)
		}
	}
}
