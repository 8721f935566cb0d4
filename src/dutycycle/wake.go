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

/*
OnWake is the wake pulse handler. It runs in interrupt context, so it does no
logging, no allocation and nothing that touches the radio: it acknowledges
the timer, counts the pulse and, every TransmitInterval pulses, sets the gate
and arms the transmit job. Arming an already armed job is a no-op.

The counter is only ever touched here.
*/
func (n *Node) OnWake() {
	n.ack.Pulse()
	n.stats.Pulses.Add(1)
	n.counter++
	if n.counter < n.cfg.TransmitInterval {
		return
	}
	n.counter = 0
	// the gate goes up before the job is visible to the loop
	n.gate.Set()
	if n.job.Arm() {
		n.stats.Armed.Add(1)
	} else {
		n.stats.Coalesced.Add(1)
	}
}
