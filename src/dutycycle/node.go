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

/*
Package dutycycle is the wake, transmit and sleep cycle of the node.

An external timer wakes the processor with a pulse. The pulse handler counts
pulses and, every TransmitInterval pulses, sets the send gate and arms a
transmit job. The main loop runs the armed job, steps the LoRaWAN engine and
feeds the engine's events through the event bridge. Once the bridge has seen
the transmission complete it clears the gate and the loop puts the processor
back to sleep until the next pulse.

All of the state shared between the pulse handler and the main loop lives in
a Node. Only the gate and the job slot are touched from both sides.
*/
package dutycycle

import (
	"errors"
	"fmt"
	"time"

	"loranode/src/config"
	"loranode/src/credentials"
	"loranode/src/diag"
	"loranode/src/lmac"
	"loranode/src/payload"
)

// Acknowledger resets the wake timer. Pulse is called from interrupt context
// and must not block.
type Acknowledger interface {
	Pulse()
}

/*
Sleeper puts the processor into its lowest power state. Implementations must
evaluate idle with interrupts masked and only sleep if it still holds, so a
pulse that arrives between the loop's own check and the sleep instruction
cannot be lost. Sleep reports whether it actually slept.
*/
type Sleeper interface {
	Sleep(idle func() bool) bool
}

type Battery interface {
	Millivolts() uint32
}

// Secondary is the sensor reported on channel 1.
type Secondary interface {
	Value() float64
}

// Parts are the collaborators a Node drives.
type Parts struct {
	Engine    lmac.Engine
	Ack       Acknowledger
	Sleeper   Sleeper
	Battery   Battery
	Secondary Secondary
	// Sink receives diagnostics. Nil discards them.
	Sink diag.Sink
	// Uptime stamps diagnostics. Nil stamps them with zero.
	Uptime func() time.Duration
}

var ErrMissingPart = errors.New("dutycycle: missing part")

type Node struct {
	cfg     config.Node
	engine  lmac.Engine
	ack     Acknowledger
	sleeper Sleeper
	battery Battery
	second  Secondary
	sink    diag.Sink
	uptime  func() time.Duration
	encoder *payload.Encoder

	gate Gate
	job  jobSlot

	// counter belongs to OnWake
	counter uint32

	state   State
	resumes uint32
	stats   Stats
}

func New(cfg config.Node, p Parts) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case p.Engine == nil:
		return nil, fmt.Errorf("%w: engine", ErrMissingPart)
	case p.Ack == nil:
		return nil, fmt.Errorf("%w: acknowledger", ErrMissingPart)
	case p.Sleeper == nil:
		return nil, fmt.Errorf("%w: sleeper", ErrMissingPart)
	case p.Battery == nil:
		return nil, fmt.Errorf("%w: battery", ErrMissingPart)
	case p.Secondary == nil:
		return nil, fmt.Errorf("%w: secondary sensor", ErrMissingPart)
	}
	n := &Node{
		cfg:     cfg,
		engine:  p.Engine,
		ack:     p.Ack,
		sleeper: p.Sleeper,
		battery: p.Battery,
		second:  p.Secondary,
		sink:    p.Sink,
		uptime:  p.Uptime,
		encoder: payload.NewEncoder(),
		// the first pulse after boot arms a send
		counter: cfg.TransmitInterval - 1,
		state:   RunningProtocol,
	}
	if n.sink == nil {
		n.sink = diag.Discard{}
	}
	if n.uptime == nil {
		n.uptime = func() time.Duration { return 0 }
	}
	// no sleep until the first send has gone out
	n.gate.Set()
	return n, nil
}

/*
Boot configures the engine, sends the first reading if the configuration asks
for it (the send also starts the join) and then starts the wake timer with one
acknowledgement pulse. Call it once, from the main context. The wake
interrupt may already be attached: OnWake is safe from the moment New
returns, and a pulse that arrives before Boot arms a send like any other.
*/
func (n *Node) Boot(id credentials.Identity) error {
	err := n.engine.Configure(lmac.Settings{
		Identity:        id,
		SpreadingFactor: n.cfg.SpreadingFactor,
		TxPowerDBm:      n.cfg.TxPowerDBm,
		ClockError:      n.cfg.ClockError(),
		LinkCheck:       n.cfg.LinkCheck,
	})
	if err != nil {
		return fmt.Errorf("dutycycle: configure engine: %w", err)
	}
	n.record("Starting",
		diag.F("deveui", id.DevEUI.String()),
		diag.F("interval", n.cfg.TransmitInterval))
	if n.cfg.SendOnBoot {
		n.transmit()
	}
	n.ack.Pulse()
	return nil
}

// Gate exposes the send gate for inspection.
func (n *Node) Gate() *Gate {
	return &n.gate
}

// Pending reports whether a transmit job is armed and not yet run.
func (n *Node) Pending() bool {
	return n.job.Armed()
}

func (n *Node) Stats() Snapshot {
	return n.stats.Snapshot()
}

func (n *Node) State() State {
	return n.state
}

func (n *Node) record(name string, fields ...diag.Field) {
	n.sink.Record(diag.Record{At: n.uptime(), Name: name, Fields: fields})
}
