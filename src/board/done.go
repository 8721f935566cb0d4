//go:build rp2040

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

package board

import (
	"machine"
	"time"

	pio "github.com/tinygo-org/pio/rp2-pio"

	"loranode/src/support"
)

//go:generate pioasm -o go done.pio donepulse_pio.go

// TPL5010MinDone is the shortest DONE pulse the timer is guaranteed to see.
const TPL5010MinDone = 100 * time.Nanosecond

/*
DonePulse acknowledges the wake timer. The pulse is produced by a PIO state
machine so its width is set in clock cycles computed from the actual system
clock, not by a busy loop whose length depends on the compiler. Pulse only
pushes a word into the state machine's FIFO, which makes it safe to call from
the wake interrupt.
*/
type DonePulse struct {
	sm    pio.StateMachine
	count uint32
}

func NewDonePulse(sm pio.StateMachine, pin machine.Pin, minHigh time.Duration) (*DonePulse, error) {
	Pio := sm.PIO()
	offset, err := Pio.AddProgram(donepulseInstructions, donepulseOrigin)
	if err != nil {
		return nil, err
	}
	pin.Configure(machine.PinConfig{Mode: Pio.PinMode()})
	sm.SetPindirsConsecutive(pin, 1, true)
	cfg := donepulseProgramDefaultConfig(offset)
	cfg.SetSetPins(pin, 1)
	sm.Init(offset, cfg)
	sm.SetEnabled(true)
	return &DonePulse{
		sm:    sm,
		count: support.DoneLoopCount(machine.CPUFrequency(), minHigh),
	}, nil
}

func (d *DonePulse) Pulse() {
	if d.sm.IsTxFIFOFull() {
		// pulses are already queued, one more would change nothing
		return
	}
	d.sm.TxPut(d.count)
}
