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

package payload

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	cayennelpp "github.com/TheThingsNetwork/go-cayenne-lib"
)

var (
	ErrTruncated   = errors.New("payload: truncated field")
	ErrUnknownType = errors.New("payload: unsupported field type")
)

// Field is one decoded analog input.
type Field struct {
	Channel uint8
	Type    uint8
	Value   float64
}

// Decode is the inverse of Encode for analog inputs. It is what a network
// side decoder sees and is used to check uplinks on the host. Fields decoded
// before an error are returned with it.
func Decode(b []byte) ([]Field, error) {
	var c collector
	err := cayennelpp.NewDecoder(bytes.NewReader(b)).DecodeUplink(&c)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return c.fields, ErrTruncated
	case errors.Is(err, cayennelpp.ErrInvalidChannelType):
		return c.fields, fmt.Errorf("%v: %w", err, ErrUnknownType)
	case err != nil:
		return c.fields, err
	}
	if c.other != nil {
		return c.fields, c.other
	}
	return c.fields, nil
}

// Lookup returns the value on channel ch.
func Lookup(fields []Field, ch uint8) (float64, bool) {
	for _, f := range fields {
		if f.Channel == ch {
			return f.Value, true
		}
	}
	return 0, false
}

// collector keeps analog inputs. Any other LPP type is valid on the wire but
// never sent by this node, so the first one is remembered as an error and the
// fields after it are dropped.
type collector struct {
	fields []Field
	other  error
}

func (c *collector) AnalogInput(channel uint8, value float64) {
	if c.other == nil {
		c.fields = append(c.fields, Field{Channel: channel, Type: AnalogInput, Value: value})
	}
}

func (c *collector) reject(channel, typ uint8) {
	if c.other == nil {
		c.other = fmt.Errorf("channel %d type %#02x: %w", channel, typ, ErrUnknownType)
	}
}

func (c *collector) DigitalInput(channel, _ uint8) { c.reject(channel, cayennelpp.DigitalInput) }
func (c *collector) DigitalOutput(channel, _ uint8) { c.reject(channel, cayennelpp.DigitalOutput) }
func (c *collector) AnalogOutput(channel uint8, _ float64) { c.reject(channel, cayennelpp.AnalogOutput) }
func (c *collector) Luminosity(channel uint8, _ uint16) { c.reject(channel, cayennelpp.Luminosity) }
func (c *collector) Presence(channel, _ uint8) { c.reject(channel, cayennelpp.Presence) }
func (c *collector) Temperature(channel uint8, _ float64) { c.reject(channel, cayennelpp.Temperature) }
func (c *collector) RelativeHumidity(channel uint8, _ float64) {
	c.reject(channel, cayennelpp.RelativeHumidity)
}
func (c *collector) Accelerometer(channel uint8, _, _, _ float64) {
	c.reject(channel, cayennelpp.Accelerometer)
}
func (c *collector) BarometricPressure(channel uint8, _ float64) {
	c.reject(channel, cayennelpp.BarometricPressure)
}
func (c *collector) Gyrometer(channel uint8, _, _, _ float64) { c.reject(channel, cayennelpp.Gyrometer) }
func (c *collector) GPS(channel uint8, _, _, _ float64) { c.reject(channel, cayennelpp.GPS) }
