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
	"fmt"

	"loranode/src/diag"
	"loranode/src/lmac"
)

// Reaction is what the node does about one engine event.
type Reaction struct {
	ClearGate        bool
	DisableLinkCheck bool
	Record           diag.Record
}

/*
React maps an engine event to a reaction. It has no side effects.

A completed transmission clears the gate whatever its status: acked, not
acked, timed out or aborted after a failed join are all final, and a missing
ack is not something this layer retries. A join turns off link check
validation, which the network does not support. Everything else is only
recorded.
*/
func React(ev lmac.Event) Reaction {
	switch e := ev.(type) {
	case lmac.JoinedEvent:
		return Reaction{
			DisableLinkCheck: true,
			Record: diag.Record{
				At:   e.At,
				Name: e.Kind().String(),
				Fields: []diag.Field{
					diag.F("netid", fmt.Sprintf("%06X", e.NetID)),
					diag.F("devaddr", fmt.Sprintf("%08X", e.DevAddr)),
				},
			},
		}
	case lmac.TxCompleted:
		fields := []diag.Field{diag.F("status", e.Status.String())}
		if e.Acked() {
			fields = append(fields, diag.F("ack", true))
		}
		if len(e.Downlink) > 0 {
			fields = append(fields, diag.F("received", len(e.Downlink)))
		}
		return Reaction{
			ClearGate: true,
			Record: diag.Record{
				At:     e.At,
				Name:   "EV_TXCOMPLETE (includes waiting for RX windows)",
				Fields: fields,
			},
		}
	case lmac.Notice:
		if e.K == lmac.RxStart {
			// too close to the receive window to spend time on output
			return Reaction{}
		}
		return Reaction{Record: diag.Record{At: e.At, Name: e.K.String()}}
	default:
		return Reaction{}
	}
}

// apply carries out a reaction. This is the only place the gate is cleared.
func (n *Node) apply(r Reaction) {
	if r.ClearGate && n.gate.Clear() {
		n.stats.Cleared.Add(1)
	}
	if r.DisableLinkCheck {
		n.stats.Joins.Add(1)
		n.engine.SetLinkCheck(false)
	}
	if !r.Record.Empty() {
		n.sink.Record(r.Record)
	}
}
