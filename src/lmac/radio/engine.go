//go:build tinygo

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
Package radio drives a real LoRa radio through the TinyGo LoRaWAN stack.

The stack's Join and SendUplink block for the whole exchange, receive windows
included, so each Step performs at most one of them. Submit only records the
uplink; the radio is touched from Step, on the main loop, never from an
interrupt.
*/
package radio

import (
	"encoding/binary"
	"errors"
	"time"

	"tinygo.org/x/drivers/lora"
	"tinygo.org/x/drivers/lora/lorawan"
	"tinygo.org/x/drivers/lora/lorawan/region"

	"loranode/src/lmac"
)

type Engine struct {
	radio   lora.Radio
	uptime  func() time.Duration
	events  chan lmac.Event
	otaa    *lorawan.Otaa
	session *lorawan.Session

	maxJoinAttempts int
	settings        lmac.Settings
	configured      bool
	linkCheck       bool

	pending   bool
	data      []byte
	port      uint8
	confirmed bool
	attempts  int
	joined    bool
}

// New wraps radio. uptime stamps events; maxJoinAttempts bounds the join
// requests sent for one uplink before it is given up.
func New(radio lora.Radio, uptime func() time.Duration, maxJoinAttempts int) *Engine {
	if maxJoinAttempts < 1 {
		maxJoinAttempts = 1
	}
	return &Engine{
		radio:           radio,
		uptime:          uptime,
		events:          make(chan lmac.Event, 16),
		maxJoinAttempts: maxJoinAttempts,
	}
}

var errNoRadio = errors.New("radio: no device")

func (e *Engine) Configure(s lmac.Settings) error {
	if e.radio == nil {
		return errNoRadio
	}
	rs := region.EU868()
	if err := tune(rs, s); err != nil {
		return err
	}
	lorawan.UseRadio(e.radio)
	lorawan.UseRegionSettings(rs)

	e.otaa = &lorawan.Otaa{}
	e.session = &lorawan.Session{}
	// the stack takes identifiers in display order
	if err := e.otaa.SetDevEUI(s.Identity.DevEUI[:]); err != nil {
		return err
	}
	if err := e.otaa.SetAppEUI(s.Identity.AppEUI[:]); err != nil {
		return err
	}
	if err := e.otaa.SetAppKey(s.Identity.AppKey[:]); err != nil {
		return err
	}
	// The stack opens its receive windows with a fixed margin. The clock
	// error setting is kept for diagnostics only.
	e.settings = s
	e.linkCheck = s.LinkCheck
	e.pending = false
	e.joined = false
	e.configured = true
	return nil
}

func (e *Engine) Busy() bool {
	return e.pending
}

func (e *Engine) Submit(port uint8, data []byte, confirmed bool) error {
	if !e.configured {
		return lmac.ErrNotConfigured
	}
	if e.pending {
		return lmac.ErrBusy
	}
	if err := checkUplink(port, confirmed); err != nil {
		return err
	}
	e.data = append(e.data[:0], data...)
	e.port = port
	e.confirmed = confirmed
	e.attempts = 0
	e.pending = true
	return nil
}

// SetLinkCheck only records the mode; the stack sends no LinkCheckReq.
func (e *Engine) SetLinkCheck(enabled bool) {
	e.linkCheck = enabled
}

func (e *Engine) Events() <-chan lmac.Event {
	return e.events
}

func (e *Engine) Step() {
	if !e.pending {
		return
	}
	if !e.joined {
		e.join()
		return
	}
	e.notice(lmac.TxStart)
	status := lmac.TxDone
	if err := lorawan.SendUplink(e.data, e.session); err != nil {
		status = lmac.TxTimeout
	}
	e.finish(status)
}

func (e *Engine) join() {
	if e.attempts == 0 {
		e.notice(lmac.Joining)
	}
	e.attempts++
	e.notice(lmac.TxStart)
	if err := lorawan.Join(e.otaa, e.session); err != nil {
		e.notice(lmac.JoinTxComplete)
		if e.attempts >= e.maxJoinAttempts {
			e.notice(lmac.JoinFailed)
			e.finish(lmac.TxAborted)
		}
		return
	}
	e.joined = true
	e.emit(lmac.JoinedEvent{
		At:      e.uptime(),
		DevAddr: binary.BigEndian.Uint32(e.session.DevAddr[:]),
	})
}

func (e *Engine) finish(status lmac.TxStatus) {
	e.pending = false
	e.emit(lmac.TxCompleted{At: e.uptime(), Status: status, Port: e.port})
}

func (e *Engine) notice(k lmac.Kind) {
	e.emit(lmac.Notice{K: k, At: e.uptime()})
}

func (e *Engine) emit(ev lmac.Event) {
	select {
	case e.events <- ev:
	default:
		// a Step emits at most five events and the loop drains after each
	}
}
