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

// Package lmac is the contract between the duty cycle core and whatever
// speaks LoRaWAN. The core never touches the radio. It submits uplinks,
// steps the engine and reacts to the events the engine reports.
package lmac

import (
	"errors"

	"loranode/src/credentials"
)

// MaxClockError is the full-scale clock error setting. A setting of
// MaxClockError/10 means the local clock may be off by 10%, and receive
// windows are widened to match.
const MaxClockError = 65536

// ErrBusy is returned by Submit when a transmission or its receive windows
// are still pending.
var ErrBusy = errors.New("lmac: busy")

// ErrNotConfigured is returned by Submit before Configure has succeeded.
var ErrNotConfigured = errors.New("lmac: not configured")

// Settings are applied once at boot. Configure also resets the MAC, dropping
// any session.
type Settings struct {
	Identity        credentials.Identity
	SpreadingFactor uint8
	TxPowerDBm      int8
	ClockError      uint32
	LinkCheck       bool
}

// Engine is a LoRaWAN MAC. Configure, Step, Submit and SetLinkCheck are only
// called from the main context. Every accepted Submit ends in exactly one
// TxComplete event, whatever happens to the frame; if a join is needed first
// and fails, the engine reports JoinFailed and then TxComplete with status
// TxAborted.
type Engine interface {
	Configure(s Settings) error
	// Step advances the MAC by one unit of work. It must not block for
	// longer than one radio operation.
	Step()
	// Busy reports whether a transmission or its receive windows are pending.
	Busy() bool
	Submit(port uint8, data []byte, confirmed bool) error
	SetLinkCheck(enabled bool)
	// Events delivers protocol events. The channel is buffered and is only
	// drained from the main context.
	Events() <-chan Event
}
