/*
 * Copyright 2025 Ted Dunning
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package power is the sleep primitive for a node running on a host. The
// simulated wake timer calls Wake where the hardware would raise an
// interrupt; Sleep blocks until that happens.
package power

import (
	"context"
	"sync"
)

type Waker struct {
	ctx context.Context
	// mu stands in for masking interrupts: Wake cannot run while Sleep
	// checks whether it may sleep.
	mu     sync.Mutex
	wake   chan struct{}
	sleeps int
}

// NewWaker returns a sleeper that stops blocking once ctx is done.
func NewWaker(ctx context.Context) *Waker {
	return &Waker{ctx: ctx, wake: make(chan struct{}, 1)}
}

/*
Wake is the interrupt. The handler runs first, then the sleeper is released.
A wake that arrives while nobody sleeps is kept, just as a pending interrupt
makes the next wfi return at once.
*/
func (w *Waker) Wake(handler func()) {
	w.mu.Lock()
	if handler != nil {
		handler()
	}
	w.mu.Unlock()
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Sleep blocks until the next Wake if idle still holds.
func (w *Waker) Sleep(idle func() bool) bool {
	w.mu.Lock()
	if !idle() || w.ctx.Err() != nil {
		w.mu.Unlock()
		return false
	}
	w.sleeps++
	w.mu.Unlock()
	select {
	case <-w.wake:
	case <-w.ctx.Done():
	}
	return true
}

func (w *Waker) Sleeps() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sleeps
}
