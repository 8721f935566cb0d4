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

package sensor

import "loranode/src/support"

// ADC is a 16 bit left-justified converter such as machine.ADC.
type ADC interface {
	Get() uint16
}

const fullScale = 0xffff

// maxScaleDen keeps raw*num inside 32 bits worth of headroom in a uint64 even
// after summing many samples.
const maxScaleDen = 1 << 12

// Battery reads the cell through a resistive divider. The conversion from
// counts to millivolts is a fixed fraction so no floating point is needed.
type Battery struct {
	adc      ADC
	num, den uint64
	samples  uint64
}

// NewBattery builds a battery reader for a converter referenced to vrefMV
// behind a divider that scales the cell by divNum/divDen (2/1 for two equal
// resistors). Each reading averages samples conversions.
func NewBattery(adc ADC, vrefMV, divNum, divDen uint32, samples int) *Battery {
	if samples < 1 {
		samples = 1
	}
	if divDen == 0 {
		divDen = 1
	}
	num, den, _ := support.NearestFraction(
		uint64(vrefMV)*uint64(divNum), fullScale*uint64(divDen), maxScaleDen)
	return &Battery{adc: adc, num: num, den: den, samples: uint64(samples)}
}

// Millivolts returns the averaged cell voltage.
func (b *Battery) Millivolts() uint32 {
	var sum uint64
	for i := uint64(0); i < b.samples; i++ {
		sum += uint64(b.adc.Get())
	}
	// round to nearest
	d := b.samples * b.den
	return uint32((sum*b.num + d/2) / d)
}

// Scale exposes the conversion fraction.
func (b *Battery) Scale() (num, den uint64) {
	return b.num, b.den
}
