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

package dutycycle

import (
	"testing"

	"loranode/src/config"
	"loranode/src/diag"
	"loranode/src/lmac"
	"loranode/src/sensor"
)

// fakeEngine completes a submitted uplink after latency steps. completed runs
// inside the Step that reports a completion, where a real wake interrupt can
// land. lateBusy makes Submit discover an exchange the Busy check missed.
type fakeEngine struct {
	completed  func()
	lateBusy   bool
	settings   lmac.Settings
	configErr  error
	submitErr  error
	busy       bool
	pending    bool
	latency    int
	left       int
	status     lmac.TxStatus
	submits    [][]byte
	ports      []uint8
	linkChecks []bool
	steps      int
	events     chan lmac.Event
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{events: make(chan lmac.Event, 16)}
}

func (f *fakeEngine) Configure(s lmac.Settings) error {
	f.settings = s
	return f.configErr
}

func (f *fakeEngine) Step() {
	f.steps++
	if !f.pending {
		return
	}
	if f.left > 0 {
		f.left--
		return
	}
	f.pending = false
	f.events <- lmac.TxCompleted{Status: f.status, Port: f.ports[len(f.ports)-1]}
	if f.completed != nil {
		f.completed()
	}
}

func (f *fakeEngine) Busy() bool {
	return f.busy || f.pending
}

func (f *fakeEngine) Submit(port uint8, data []byte, confirmed bool) error {
	if f.Busy() {
		return lmac.ErrBusy
	}
	if f.lateBusy {
		f.busy = true
		return lmac.ErrBusy
	}
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submits = append(f.submits, data)
	f.ports = append(f.ports, port)
	f.pending = true
	f.left = f.latency
	return nil
}

func (f *fakeEngine) SetLinkCheck(enabled bool) {
	f.linkChecks = append(f.linkChecks, enabled)
}

func (f *fakeEngine) Events() <-chan lmac.Event {
	return f.events
}

type fakeAck struct {
	pulses int
}

func (a *fakeAck) Pulse() {
	a.pulses++
}

// fakeSleeper checks that the node never sleeps with the gate set. before
// runs where a real interrupt could land between the loop's check and the
// sleep instruction.
type fakeSleeper struct {
	t       *testing.T
	n       *Node
	before  func()
	during  func()
	slept   int
	refused int
}

func (s *fakeSleeper) Sleep(idle func() bool) bool {
	if s.before != nil {
		f := s.before
		s.before = nil
		f()
	}
	if !idle() {
		s.refused++
		return false
	}
	if s.n.Gate().Busy() {
		s.t.Errorf("sleeping with the gate set")
	}
	if s.n.State() != Sleeping {
		s.t.Errorf("sleeping in state %v", s.n.State())
	}
	s.slept++
	if s.during != nil {
		s.during()
	}
	return true
}

type battery uint32

func (b battery) Millivolts() uint32 {
	return uint32(b)
}

type memSink struct {
	records []diag.Record
}

func (m *memSink) Record(r diag.Record) {
	m.records = append(m.records, r)
}

func (m *memSink) count(name string) int {
	k := 0
	for _, r := range m.records {
		if r.Name == name {
			k++
		}
	}
	return k
}

type rig struct {
	n       *Node
	engine  *fakeEngine
	ack     *fakeAck
	sleeper *fakeSleeper
	sink    *memSink
}

func newRig(t *testing.T, mutate func(*config.Node)) *rig {
	t.Helper()
	cfg := config.Default()
	cfg.SendOnBoot = false
	if mutate != nil {
		mutate(&cfg)
	}
	r := &rig{
		engine:  newFakeEngine(),
		ack:     &fakeAck{},
		sleeper: &fakeSleeper{t: t},
		sink:    &memSink{},
	}
	n, err := New(cfg, Parts{
		Engine:    r.engine,
		Ack:       r.ack,
		Sleeper:   r.sleeper,
		Battery:   battery(3300),
		Secondary: sensor.Fixed(19.1),
		Sink:      r.sink,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.n = n
	r.sleeper.n = n
	return r
}
