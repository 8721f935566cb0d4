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

// Package board is the RP2040 wiring of the node: a TPL5010 wake timer, an
// RFM95 radio on SPI0 and a battery divider on ADC0.
package board

import "machine"

const (
	// WakePin is the TPL5010 WAKE output.
	WakePin = machine.GP10
	// DonePin is the TPL5010 DONE input, driven by PIO.
	DonePin = machine.GP11

	RadioSCK  = machine.GP18
	RadioSDO  = machine.GP19
	RadioSDI  = machine.GP16
	RadioCS   = machine.GP17
	RadioRST  = machine.GP20
	RadioDIO0 = machine.GP21
	RadioDIO1 = machine.GP22

	BatteryPin = machine.ADC0
)

// serialPins carry the debug console.
var serialPins = []machine.Pin{machine.GP0, machine.GP1}

var unusedPins = []machine.Pin{
	machine.GP2, machine.GP3, machine.GP4, machine.GP5,
	machine.GP6, machine.GP7, machine.GP8, machine.GP9,
	machine.GP12, machine.GP13, machine.GP14, machine.GP15,
}

// ParkUnusedPins pulls every unconnected pin up so none of them float and
// draw current while asleep. The serial pins are parked too unless they are
// in use.
func ParkUnusedPins(keepSerial bool) {
	park := func(p machine.Pin) {
		p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}
	for _, p := range unusedPins {
		park(p)
	}
	if !keepSerial {
		for _, p := range serialPins {
			park(p)
		}
	}
}
