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

package lmac

import (
	"fmt"
	"time"
)

// Kind identifies a protocol event. The set and the names follow the LMIC
// event list so diagnostics read the same as on any other node.
type Kind uint8

const (
	ScanTimeout Kind = iota + 1
	BeaconFound
	BeaconMissed
	BeaconTracked
	Joining
	Joined
	RFU1
	JoinFailed
	RejoinFailed
	TxComplete
	LostTSync
	Reset
	RxComplete
	LinkDead
	LinkAlive
	TxStart
	TxCanceled
	RxStart
	JoinTxComplete
)

func (k Kind) String() string {
	switch k {
	case ScanTimeout:
		return "EV_SCAN_TIMEOUT"
	case BeaconFound:
		return "EV_BEACON_FOUND"
	case BeaconMissed:
		return "EV_BEACON_MISSED"
	case BeaconTracked:
		return "EV_BEACON_TRACKED"
	case Joining:
		return "EV_JOINING"
	case Joined:
		return "EV_JOINED"
	case RFU1:
		return "EV_RFU1"
	case JoinFailed:
		return "EV_JOIN_FAILED"
	case RejoinFailed:
		return "EV_REJOIN_FAILED"
	case TxComplete:
		return "EV_TXCOMPLETE"
	case LostTSync:
		return "EV_LOST_TSYNC"
	case Reset:
		return "EV_RESET"
	case RxComplete:
		return "EV_RXCOMPLETE"
	case LinkDead:
		return "EV_LINK_DEAD"
	case LinkAlive:
		return "EV_LINK_ALIVE"
	case TxStart:
		return "EV_TXSTART"
	case TxCanceled:
		return "EV_TXCANCELED"
	case RxStart:
		return "EV_RXSTART"
	case JoinTxComplete:
		return "EV_JOIN_TXCOMPLETE: no JoinAccept"
	default:
		return fmt.Sprintf("Unknown event: %d", uint8(k))
	}
}

// TxStatus says how a transmission ended. All of them are terminal.
type TxStatus uint8

const (
	TxDone TxStatus = iota
	TxAcked
	TxNoAck
	TxTimeout
	TxAborted
)

func (s TxStatus) String() string {
	switch s {
	case TxDone:
		return "done"
	case TxAcked:
		return "acked"
	case TxNoAck:
		return "no ack"
	case TxTimeout:
		return "timeout"
	case TxAborted:
		return "aborted"
	default:
		return fmt.Sprintf("TxStatus(%d)", uint8(s))
	}
}

// Event is one of JoinedEvent, TxCompleted or Notice. The set is closed.
type Event interface {
	Kind() Kind
	// Time is the engine clock when the event happened.
	Time() time.Duration
	event()
}

// JoinedEvent reports a successful join.
type JoinedEvent struct {
	At      time.Duration
	NetID   uint32
	DevAddr uint32
}

// TxCompleted reports the end of a transmission, including its receive
// windows. Downlink holds the application payload received, if any.
type TxCompleted struct {
	At       time.Duration
	Status   TxStatus
	Port     uint8
	Downlink []byte
}

// Notice is any event the core only logs.
type Notice struct {
	K  Kind
	At time.Duration
}

func (JoinedEvent) Kind() Kind { return Joined }
func (e JoinedEvent) Time() time.Duration { return e.At }
func (JoinedEvent) event() {}

func (TxCompleted) Kind() Kind { return TxComplete }
func (e TxCompleted) Time() time.Duration { return e.At }
func (TxCompleted) event() {}

func (n Notice) Kind() Kind { return n.K }
func (n Notice) Time() time.Duration { return n.At }
func (Notice) event() {}

// Acked reports whether the network acknowledged the uplink.
func (e TxCompleted) Acked() bool {
	return e.Status == TxAcked
}
