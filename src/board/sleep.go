//go:build rp2040

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

package board

import (
	"device/arm"
	"device/rp"
	"runtime/interrupt"
	"time"

	"loranode/src/support"
)

/*
Sleeper stops the core until the next interrupt. Interrupts are masked while
idle is checked, and a wfi executed with interrupts masked still returns as
soon as one is pending, so a wake pulse that lands after the main loop's own
check is never slept through. The handler runs once the mask is restored.

The GPIO and PIO blocks stay clocked so the wake line and the DONE pulse keep
working.
*/
type Sleeper struct{}

func (Sleeper) Sleep(idle func() bool) bool {
	mask := interrupt.Disable()
	if !idle() {
		interrupt.Restore(mask)
		return false
	}
	arm.Asm("wfi")
	interrupt.Restore(mask)
	return true
}

// Uptime reads the free running microsecond timer.
func Uptime() time.Duration {
	t := rp.TIMER
	us := support.CombineTimer(t.TIMERAWH.Get(), t.TIMERAWL.Get(), t.TIMERAWH.Get(), t.TIMERAWL.Get())
	return time.Duration(us) * time.Microsecond
}
