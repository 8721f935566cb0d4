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
	"encoding/hex"

	"loranode/src/diag"
	"loranode/src/lmac"
	"loranode/src/payload"
)

/*
transmit is the transmit job. It only runs on the main context.

If the engine still has an exchange in flight the cycle is lost: nothing is
queued, the job is not re-armed and the gate is left alone, since the
exchange in flight will clear it when it completes. Otherwise both sensors are
read, encoded fresh and submitted as an uplink. What happens to the uplink is
only learned from the engine's events.

An accepted uplink sets the gate again. A wake pulse that lands while the
previous exchange is completing sets the gate just before that completion
clears it, so the gate can be down by the time the armed job runs. An uplink
the engine refuses with nothing in flight will never complete, so it is
treated as an aborted exchange.
*/
func (n *Node) transmit() {
	if n.engine.Busy() {
		n.stats.Skipped.Add(1)
		n.record("OP_TXRXPEND, not sending")
		return
	}
	data := n.encoder.Encode(payload.Reading{
		BatteryMillivolts: n.battery.Millivolts(),
		Secondary:         n.second.Value(),
	})
	if err := n.engine.Submit(n.cfg.Port, data, n.cfg.Confirmed); err != nil {
		n.stats.Skipped.Add(1)
		n.record("not sending", diag.F("err", err.Error()))
		if n.engine.Busy() {
			// the engine found itself busy after all
			return
		}
		n.apply(React(lmac.TxCompleted{At: n.uptime(), Status: lmac.TxAborted, Port: n.cfg.Port}))
		return
	}
	n.gate.Set()
	n.stats.Submitted.Add(1)
	n.record("Packet queued",
		diag.F("port", n.cfg.Port),
		diag.F("payload", hex.EncodeToString(data)))
}
