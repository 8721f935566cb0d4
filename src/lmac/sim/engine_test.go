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

package sim

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/brocaar/lorawan"

	"loranode/src/credentials"
	"loranode/src/lmac"
)

var testID = credentials.Identity{
	DevEUI: credentials.EUI{0x00, 0x4a, 0x7d, 0x39, 0x2f, 0x1c, 0x6e, 0x01},
	AppEUI: credentials.EUI{0x70, 0xb3, 0xd5, 0x7e, 0xd0, 0x04, 0xa9, 0x12},
	AppKey: credentials.Key{0x67, 0x57, 0xbb, 0x98, 0x1d, 0x0e, 0x26, 0x71, 0xf4, 0x0f, 0x53, 0x4f, 0x6e, 0x4c, 0xd8, 0x7f},
}

func configured(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e := New(cfg)
	err := e.Configure(lmac.Settings{Identity: testID, SpreadingFactor: 7, TxPowerDBm: 14, ClockError: lmac.MaxClockError / 10})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return e
}

// run steps until the engine is idle and returns the events it reported.
func run(t *testing.T, e *Engine) []lmac.Event {
	t.Helper()
	for i := 0; e.Busy(); i++ {
		if i > 50 {
			t.Fatalf("engine never went idle")
		}
		e.Step()
	}
	var events []lmac.Event
	for {
		select {
		case ev := <-e.Events():
			events = append(events, ev)
		default:
			return events
		}
	}
}

func kinds(events []lmac.Event) []lmac.Kind {
	var r []lmac.Kind
	for _, ev := range events {
		r = append(r, ev.Kind())
	}
	return r
}

func sameKinds(a, b []lmac.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func Test_joinThenUplink(t *testing.T) {
	e := configured(t, DefaultConfig())
	data := []byte{0x02, 0x02, 0x01, 0x4a, 0x01, 0x02, 0x07, 0x76}
	if err := e.Submit(1, data, false); err != nil {
		t.Fatal(err)
	}
	events := run(t, e)
	want := []lmac.Kind{lmac.Joining, lmac.TxStart, lmac.Joined, lmac.TxStart, lmac.TxComplete}
	if !sameKinds(kinds(events), want) {
		t.Fatalf("events %v, want %v", kinds(events), want)
	}
	done := events[len(events)-1].(lmac.TxCompleted)
	if done.Status != lmac.TxDone || done.Port != 1 {
		t.Errorf("completion %+v", done)
	}
	joined := events[2].(lmac.JoinedEvent)
	if joined.DevAddr != 0x26011234 || joined.NetID != 0x13 {
		t.Errorf("joined %+v", joined)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Time() < events[i-1].Time() {
			t.Errorf("event %d goes back in time", i)
		}
	}

	frames := e.Frames()
	if len(frames) != 3 || !frames[0].Uplink || frames[1].Uplink || !frames[2].Uplink {
		t.Fatalf("frames %+v", frames)
	}

	var join lorawan.PHYPayload
	if err := join.UnmarshalBinary(frames[0].Bytes); err != nil {
		t.Fatal(err)
	}
	ok, err := join.ValidateUplinkJoinMIC(lorawan.AES128Key(testID.AppKey))
	if err != nil || !ok {
		t.Errorf("join request mic: %v %v", ok, err)
	}
	jr := join.MACPayload.(*lorawan.JoinRequestPayload)
	if jr.DevEUI != lorawan.EUI64(testID.DevEUI) || jr.JoinEUI != lorawan.EUI64(testID.AppEUI) {
		t.Errorf("join request %+v", jr)
	}
	// EUIs go over the air least significant byte first
	if frames[0].Bytes[1] != testID.AppEUI[7] || frames[0].Bytes[9] != testID.DevEUI[7] {
		t.Errorf("join request byte order % x", frames[0].Bytes)
	}

	_, nwk, app, joinedOK := e.Session()
	if !joinedOK {
		t.Fatalf("no session")
	}
	var up lorawan.PHYPayload
	if err := up.UnmarshalBinary(frames[2].Bytes); err != nil {
		t.Fatal(err)
	}
	ok, err = up.ValidateUplinkDataMIC(lorawan.LoRaWAN1_0, 0, 0, 0, lorawan.AES128Key(nwk), lorawan.AES128Key(nwk))
	if err != nil || !ok {
		t.Errorf("uplink mic: %v %v", ok, err)
	}
	if up.MHDR.MType != lorawan.UnconfirmedDataUp {
		t.Errorf("mtype %v", up.MHDR.MType)
	}
	if err := up.DecryptFRMPayload(lorawan.AES128Key(app)); err != nil {
		t.Fatal(err)
	}
	mac := up.MACPayload.(*lorawan.MACPayload)
	if mac.FPort == nil || *mac.FPort != 1 {
		t.Errorf("port %v", mac.FPort)
	}
	got := mac.FRMPayload[0].(*lorawan.DataPayload).Bytes
	if !bytes.Equal(got, data) {
		t.Errorf("payload % x, want % x", got, data)
	}
}

func Test_sessionKept(t *testing.T) {
	e := configured(t, DefaultConfig())
	for i := 0; i < 3; i++ {
		if err := e.Submit(1, []byte{1}, false); err != nil {
			t.Fatal(err)
		}
		run(t, e)
	}
	if e.FCnt() != 3 {
		t.Errorf("FCnt = %d, want 3", e.FCnt())
	}
	joins := 0
	for _, f := range e.Frames() {
		if f.Bytes[0]>>5 == byte(lorawan.JoinRequest) {
			joins++
		}
	}
	if joins != 1 {
		t.Errorf("%d join requests", joins)
	}
	// Configure resets the MAC
	if err := e.Configure(lmac.Settings{Identity: testID, SpreadingFactor: 7}); err != nil {
		t.Fatal(err)
	}
	if _, _, _, ok := e.Session(); ok {
		t.Errorf("session survived a reset")
	}
}

func Test_busy(t *testing.T) {
	e := New(DefaultConfig())
	if err := e.Submit(1, nil, false); !errors.Is(err, lmac.ErrNotConfigured) {
		t.Errorf("got %v, want ErrNotConfigured", err)
	}
	e = configured(t, DefaultConfig())
	if err := e.Submit(1, nil, false); err != nil {
		t.Fatal(err)
	}
	if !e.Busy() {
		t.Errorf("not busy after submit")
	}
	if err := e.Submit(1, nil, false); !errors.Is(err, lmac.ErrBusy) {
		t.Errorf("got %v, want ErrBusy", err)
	}
	e.Step()
	if !e.Busy() {
		t.Errorf("not busy during the join")
	}
}

func Test_joinFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JoinFailures = 5
	cfg.MaxJoinAttempts = 3
	e := configured(t, cfg)
	if err := e.Submit(1, []byte{1}, false); err != nil {
		t.Fatal(err)
	}
	events := run(t, e)
	want := []lmac.Kind{
		lmac.Joining,
		lmac.TxStart, lmac.JoinTxComplete,
		lmac.TxStart, lmac.JoinTxComplete,
		lmac.TxStart, lmac.JoinTxComplete,
		lmac.JoinFailed, lmac.TxComplete,
	}
	if !sameKinds(kinds(events), want) {
		t.Fatalf("events %v, want %v", kinds(events), want)
	}
	if s := events[len(events)-1].(lmac.TxCompleted).Status; s != lmac.TxAborted {
		t.Errorf("status %v", s)
	}

	// two more failures, then the network answers
	if err := e.Submit(1, []byte{1}, false); err != nil {
		t.Fatal(err)
	}
	events = run(t, e)
	last := events[len(events)-1].(lmac.TxCompleted)
	if last.Status != lmac.TxDone {
		t.Errorf("status %v", last.Status)
	}
	if _, _, _, ok := e.Session(); !ok {
		t.Errorf("not joined")
	}
}

func Test_confirmed(t *testing.T) {
	tests := []struct {
		rate float64
		want lmac.TxStatus
	}{
		{1, lmac.TxAcked},
		{0, lmac.TxNoAck},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.AckRate = tt.rate
		e := configured(t, cfg)
		if err := e.Submit(2, []byte{1, 2}, true); err != nil {
			t.Fatal(err)
		}
		events := run(t, e)
		done := events[len(events)-1].(lmac.TxCompleted)
		if done.Status != tt.want {
			t.Errorf("ack rate %g: status %v, want %v", tt.rate, done.Status, tt.want)
		}
		if tt.want != lmac.TxAcked {
			continue
		}
		frames := e.Frames()
		var ack lorawan.PHYPayload
		if err := ack.UnmarshalBinary(frames[len(frames)-1].Bytes); err != nil {
			t.Fatal(err)
		}
		_, nwk, _, _ := e.Session()
		ok, err := ack.ValidateDownlinkDataMIC(lorawan.LoRaWAN1_0, 0, lorawan.AES128Key(nwk))
		if err != nil || !ok {
			t.Errorf("ack mic: %v %v", ok, err)
		}
		if !ack.MACPayload.(*lorawan.MACPayload).FHDR.FCtrl.ACK {
			t.Errorf("ack bit not set")
		}
	}
}

func Test_airtime(t *testing.T) {
	e := configured(t, DefaultConfig())
	// 23 byte join request at SF7/125kHz is 61.696ms on air
	got := e.Airtime(23)
	if d := got - 61696*time.Microsecond; d < -time.Microsecond || d > time.Microsecond {
		t.Errorf("Airtime(23) = %v", got)
	}
	if err := e.Configure(lmac.Settings{Identity: testID, SpreadingFactor: 12}); err != nil {
		t.Fatal(err)
	}
	if slow := e.Airtime(23); slow < 20*got {
		t.Errorf("SF12 airtime %v is not much longer than SF7 %v", slow, got)
	}
}

func Test_configureRejects(t *testing.T) {
	e := New(DefaultConfig())
	if err := e.Configure(lmac.Settings{SpreadingFactor: 6}); !errors.Is(err, ErrSettings) {
		t.Errorf("SF6: got %v", err)
	}
	if err := e.Configure(lmac.Settings{SpreadingFactor: 7, ClockError: lmac.MaxClockError + 1}); !errors.Is(err, ErrSettings) {
		t.Errorf("clock error: got %v", err)
	}
}

func Test_linkCheck(t *testing.T) {
	e := New(DefaultConfig())
	if err := e.Configure(lmac.Settings{SpreadingFactor: 7, LinkCheck: true}); err != nil {
		t.Fatal(err)
	}
	if !e.LinkCheck() {
		t.Errorf("link check not applied")
	}
	e.SetLinkCheck(false)
	if e.LinkCheck() {
		t.Errorf("link check still on")
	}
}

func Test_clock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Clock = func() time.Duration { return 42 * time.Second }
	e := configured(t, cfg)
	if err := e.Submit(1, []byte{1}, false); err != nil {
		t.Fatal(err)
	}
	for _, ev := range run(t, e) {
		if ev.Time() != 42*time.Second {
			t.Errorf("%v at %v", ev.Kind(), ev.Time())
		}
	}
}
