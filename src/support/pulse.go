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

package support

import "time"

// DoneOverheadCycles is the number of state machine cycles the DONE pin stays
// high beyond the loop count: the `set pins, 1` itself and the final,
// non-jumping `jmp x--`.
const DoneOverheadCycles = 2

/*
DoneLoopCount returns the value to push into the DONE pulse state machine so
that the pin stays high for at least twice minHigh at a state machine clock of
clockHz. The TPL5010 wants a DONE pulse of at least 100ns. It does not care
much how long it lasts beyond that as long as it falls before the next wake.

The pulse lasts n + DoneOverheadCycles cycles where n is the returned value.
The factor of two covers clock tolerance and the synchronizer on the timer's
DONE input.
*/
func DoneLoopCount(clockHz uint32, minHigh time.Duration) uint32 {
	if minHigh <= 0 || clockHz == 0 {
		return 0
	}
	ns := uint64(2 * minHigh / time.Nanosecond)
	// round up so that short pulses never come out short
	cycles := (ns*uint64(clockHz) + 999_999_999) / 1_000_000_000
	if cycles <= DoneOverheadCycles {
		return 0
	}
	return uint32(cycles - DoneOverheadCycles)
}
