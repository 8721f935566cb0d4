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
Package sim is a LoRaWAN MAC and network in one, for running a node on a
host. It builds real frames (join request, join accept, data uplinks with
encrypted payloads and MICs) so what the node submits can be checked the way
a network server would check it. Time on the air and in the receive windows
is accounted on a virtual clock unless a clock is supplied.

Each Step does one radio operation: send a join request, wait out the join
accept window, send the uplink, or wait out the receive windows.
*/
package sim

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/brocaar/lorawan"
	"github.com/brocaar/lorawan/airtime"

	"loranode/src/lmac"
)

type Config struct {
	Seed int64
	// NetID and DevAddr are handed out in the join accept.
	NetID   uint32
	DevAddr uint32
	// JoinFailures is how many join requests go unanswered before one is
	// accepted.
	JoinFailures int
	// MaxJoinAttempts is how many join requests one uplink may cost before
	// the engine gives up on it.
	MaxJoinAttempts int
	// AckRate is the chance that a confirmed uplink is acknowledged.
	AckRate float64
	// BandwidthKHz and Preamble feed the airtime calculation.
	BandwidthKHz    int
	Preamble        int
	JoinAcceptDelay time.Duration
	RX1Delay        time.Duration
	// RXWindow is how long each receive window stays open.
	RXWindow time.Duration
	// Clock, if set, replaces the virtual clock.
	Clock func() time.Duration
}

func DefaultConfig() Config {
	return Config{
		Seed:            1,
		NetID:           0x000013,
		DevAddr:         0x26011234,
		MaxJoinAttempts: 3,
		AckRate:         1,
		BandwidthKHz:    125,
		Preamble:        8,
		JoinAcceptDelay: 5 * time.Second,
		RX1Delay:        time.Second,
		RXWindow:        200 * time.Millisecond,
	}
}

var ErrSettings = errors.New("sim: unsupported settings")

type phase uint8

const (
	idle phase = iota
	joinTx
	joinRx
	dataTx
	dataRx
)

// Frame is one PHYPayload as it went over the air.
type Frame struct {
	At     time.Duration
	Uplink bool
	Bytes  []byte
}

type Engine struct {
	cfg    Config
	rng    *rand.Rand
	events chan lmac.Event

	settings   lmac.Settings
	configured bool
	linkCheck  bool
	virtual    time.Duration

	phase     phase
	port      uint8
	data      []byte
	confirmed bool
	attempts  int
	failLeft  int

	joined   bool
	devNonce lorawan.DevNonce
	devAddr  lorawan.DevAddr
	nwkSKey  lorawan.AES128Key
	appSKey  lorawan.AES128Key
	fCnt     uint32
	fCntDown uint32

	frames []Frame
}

func New(cfg Config) *Engine {
	if cfg.MaxJoinAttempts < 1 {
		cfg.MaxJoinAttempts = 1
	}
	return &Engine{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		events: make(chan lmac.Event, 32),
	}
}

// Configure resets the MAC. Any session and any pending uplink are dropped.
func (e *Engine) Configure(s lmac.Settings) error {
	if s.SpreadingFactor < 7 || s.SpreadingFactor > 12 {
		return fmt.Errorf("%w: spreading factor %d", ErrSettings, s.SpreadingFactor)
	}
	if s.ClockError > lmac.MaxClockError {
		return fmt.Errorf("%w: clock error %d", ErrSettings, s.ClockError)
	}
	e.settings = s
	e.linkCheck = s.LinkCheck
	e.configured = true
	e.phase = idle
	e.data = nil
	e.joined = false
	e.fCnt = 0
	e.fCntDown = 0
	e.failLeft = e.cfg.JoinFailures
	return nil
}

func (e *Engine) Busy() bool {
	return e.phase != idle
}

func (e *Engine) Submit(port uint8, data []byte, confirmed bool) error {
	if !e.configured {
		return lmac.ErrNotConfigured
	}
	if e.Busy() {
		return lmac.ErrBusy
	}
	e.port = port
	e.data = append([]byte(nil), data...)
	e.confirmed = confirmed
	e.attempts = 0
	if e.joined {
		e.phase = dataTx
	} else {
		e.phase = joinTx
	}
	return nil
}

func (e *Engine) SetLinkCheck(enabled bool) {
	e.linkCheck = enabled
}

// LinkCheck reports whether link check validation is on.
func (e *Engine) LinkCheck() bool {
	return e.linkCheck
}

func (e *Engine) Events() <-chan lmac.Event {
	return e.events
}

func (e *Engine) Step() {
	var err error
	switch e.phase {
	case idle:
		return
	case joinTx:
		err = e.sendJoinRequest()
	case joinRx:
		err = e.joinAcceptWindow()
	case dataTx:
		err = e.sendData()
	case dataRx:
		e.receiveWindows()
	}
	if err != nil {
		// a frame that cannot be built cannot be sent either
		e.finish(lmac.TxAborted)
	}
}

// Now is the engine clock.
func (e *Engine) Now() time.Duration {
	if e.cfg.Clock != nil {
		return e.cfg.Clock()
	}
	return e.virtual
}

// Frames returns every frame sent or received so far.
func (e *Engine) Frames() []Frame {
	return e.frames
}

// Session returns the current session, if joined.
func (e *Engine) Session() (devAddr uint32, nwkSKey, appSKey [16]byte, ok bool) {
	if !e.joined {
		return 0, nwkSKey, appSKey, false
	}
	return binary.BigEndian.Uint32(e.devAddr[:]), e.nwkSKey, e.appSKey, true
}

// FCnt is the uplink frame counter of the next data frame.
func (e *Engine) FCnt() uint32 {
	return e.fCnt
}

func (e *Engine) advance(d time.Duration) {
	e.virtual += d
}

func (e *Engine) emit(ev lmac.Event) {
	select {
	case e.events <- ev:
	default:
		panic("sim: event queue full, is the node draining events?")
	}
}

func (e *Engine) notice(k lmac.Kind) {
	e.emit(lmac.Notice{K: k, At: e.Now()})
}

func (e *Engine) finish(status lmac.TxStatus) {
	e.phase = idle
	e.data = nil
	e.emit(lmac.TxCompleted{At: e.Now(), Status: status, Port: e.port})
}

func (e *Engine) record(uplink bool, p lorawan.PHYPayload) error {
	b, err := p.MarshalBinary()
	if err != nil {
		return err
	}
	e.frames = append(e.frames, Frame{At: e.Now(), Uplink: uplink, Bytes: b})
	return nil
}

// Airtime is the time on air of a PHYPayload of n bytes at the configured
// spreading factor.
func (e *Engine) Airtime(n int) time.Duration {
	sf := int(e.settings.SpreadingFactor)
	ldro := sf >= 11 && e.cfg.BandwidthKHz <= 125
	d, err := airtime.CalculateLoRaAirtime(n, sf, e.cfg.BandwidthKHz, e.cfg.Preamble, airtime.CodingRate45, true, ldro)
	if err != nil {
		return 0
	}
	return d
}
