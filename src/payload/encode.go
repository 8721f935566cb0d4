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

// Package payload builds the uplink. The format is Cayenne LPP: a sequence of
// (channel, type, value) fields. This node only sends analog inputs, which
// are a signed 16 bit big-endian value in hundredths.
package payload

import (
	"math"

	cayennelpp "github.com/TheThingsNetwork/go-cayenne-lib"
)

const (
	ChannelSecondary = 1
	ChannelBattery   = 2

	// AnalogInput is the LPP type code for an analog input.
	AnalogInput = 0x02
	// MaxSize is the size of the two analog fields.
	MaxSize = 2 * 4
)

// Reading is one sample of both sensors.
type Reading struct {
	BatteryMillivolts uint32
	Secondary         float64
}

// Encoder reuses one LPP buffer for every uplink.
type Encoder struct {
	lpp cayennelpp.Encoder
}

func NewEncoder() *Encoder {
	return &Encoder{lpp: cayennelpp.NewEncoder()}
}

// Encode rebuilds the payload from scratch. The battery goes first. The
// returned slice is a copy and stays valid across calls.
func (e *Encoder) Encode(r Reading) []byte {
	e.lpp.Reset()
	e.lpp.AddAnalogInput(ChannelBattery, analog(float64(r.BatteryMillivolts)/1000))
	e.lpp.AddAnalogInput(ChannelSecondary, analog(r.Secondary))
	b := e.lpp.Bytes()
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// analog returns a value the library turns into v rounded to int16
// hundredths. The library converts through uint16 and truncates, so the field
// is chosen here and handed over half a step above its bit pattern.
func analog(v float64) float64 {
	raw := uint16(int16(math.Round(v * 100)))
	return (float64(raw) + 0.5) / 100
}
