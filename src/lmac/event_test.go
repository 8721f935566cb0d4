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
	"testing"
	"time"
)

func Test_kindNames(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{Joining, "EV_JOINING"},
		{Joined, "EV_JOINED"},
		{TxComplete, "EV_TXCOMPLETE"},
		{JoinTxComplete, "EV_JOIN_TXCOMPLETE: no JoinAccept"},
		{Kind(0), "Unknown event: 0"},
		{Kind(200), "Unknown event: 200"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", uint8(tt.k), got, tt.want)
		}
	}
	// every defined kind has a real name
	for k := ScanTimeout; k <= JoinTxComplete; k++ {
		if k.String()[:3] != "EV_" {
			t.Errorf("kind %d has no name", uint8(k))
		}
	}
}

func Test_eventKinds(t *testing.T) {
	events := []struct {
		e    Event
		want Kind
	}{
		{JoinedEvent{At: 5}, Joined},
		{TxCompleted{At: 6, Status: TxNoAck}, TxComplete},
		{Notice{K: TxStart, At: 7}, TxStart},
	}
	for i, tt := range events {
		if tt.e.Kind() != tt.want {
			t.Errorf("event %d: kind %v, want %v", i, tt.e.Kind(), tt.want)
		}
		if tt.e.Time() != time.Duration(5+i) {
			t.Errorf("event %d: time %v", i, tt.e.Time())
		}
	}
	if !(TxCompleted{Status: TxAcked}).Acked() {
		t.Errorf("acked status not reported as acked")
	}
	if (TxCompleted{Status: TxDone}).Acked() {
		t.Errorf("plain completion reported as acked")
	}
}
