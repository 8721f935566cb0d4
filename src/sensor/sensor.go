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

// Package sensor turns raw hardware readings into the values the node reports.
package sensor

// Fixed is a secondary sensor that always reads the same value. The board has
// no temperature probe fitted, so channel 1 carries a constant.
type Fixed float64

func (f Fixed) Value() float64 {
	return float64(f)
}

// Func adapts a function, such as the RP2040 die temperature, to a secondary
// sensor.
type Func func() float64

func (f Func) Value() float64 {
	return f()
}

// MilliCelsius adapts a millidegree reading such as machine.ReadTemperature.
func MilliCelsius(read func() int32) Func {
	return func() float64 {
		return float64(read()) / 1000
	}
}
