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

import "sync/atomic"

/*
Gate is the "transmission outstanding" flag. It is shared between the wake
interrupt and the main loop without a lock. Each side only ever writes in one
direction: the interrupt sets it when it arms a send, the event bridge clears
it when the engine reports that the send finished. A single atomic word is
enough for that.
*/
type Gate struct {
	busy atomic.Bool
}

// Set marks a transmission as outstanding.
func (g *Gate) Set() {
	g.busy.Store(true)
}

// Clear marks the outstanding transmission as finished. It reports whether
// the gate was set, so a repeated completion is seen as a no-op.
func (g *Gate) Clear() bool {
	return g.busy.CompareAndSwap(true, false)
}

func (g *Gate) Busy() bool {
	return g.busy.Load()
}

// jobSlot is a deferred job queue of depth one. Arming an armed slot does
// nothing; the job runs once however many times it was armed.
type jobSlot struct {
	armed atomic.Bool
}

// Arm reports whether this call armed the slot.
func (j *jobSlot) Arm() bool {
	return j.armed.CompareAndSwap(false, true)
}

// Take disarms the slot and reports whether it was armed.
func (j *jobSlot) Take() bool {
	return j.armed.CompareAndSwap(true, false)
}

func (j *jobSlot) Armed() bool {
	return j.armed.Load()
}
