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

// Package config holds the node settings. Firmware uses Default() as is;
// the host simulator binds the fields to flags.
package config

import (
	"errors"
	"fmt"

	"loranode/src/lmac"
)

// WakeEdge selects which transitions of the timer's WAKE line count as a
// pulse. Revision 1 boards wired the line so that only a toggle is seen.
type WakeEdge int

const (
	WakeRising WakeEdge = iota
	WakeToggle
)

func (w WakeEdge) String() string {
	switch w {
	case WakeRising:
		return "rising"
	case WakeToggle:
		return "toggle"
	default:
		return fmt.Sprintf("WakeEdge(%d)", int(w))
	}
}

// ParseWakeEdge is the inverse of WakeEdge.String.
func ParseWakeEdge(s string) (WakeEdge, error) {
	switch s {
	case "rising":
		return WakeRising, nil
	case "toggle":
		return WakeToggle, nil
	}
	return 0, fmt.Errorf("config: unknown wake edge %q", s)
}

type Node struct {
	// TransmitInterval is the number of wake pulses per transmission.
	TransmitInterval uint32
	Port             uint8
	Confirmed        bool
	SpreadingFactor  uint8
	TxPowerDBm       int8
	// ClockErrorPercent widens the receive windows for a sloppy clock.
	ClockErrorPercent uint32
	LinkCheck         bool
	// SendOnBoot runs the first transmission during boot, which also starts
	// the join.
	SendOnBoot bool
	WakeEdge   WakeEdge
	// Secondary is the value reported on channel 1.
	Secondary float64
}

var (
	ErrInterval = errors.New("config: transmit interval must be at least 1")
	ErrPort     = errors.New("config: port must be in 1..223")
	ErrSF       = errors.New("config: spreading factor must be in 7..12")
	ErrPower    = errors.New("config: tx power must be in 2..20 dBm")
	ErrClock    = errors.New("config: clock error must be at most 100%")
)

// Default gives the values the node ships with: one transmission per wake
// pulse (one a minute with the usual 20k timer resistor), unconfirmed on port 1
// at SF7 and 14 dBm with 10% clock error.
func Default() Node {
	return Node{
		TransmitInterval:  1,
		Port:              1,
		SpreadingFactor:   7,
		TxPowerDBm:        14,
		ClockErrorPercent: 10,
		SendOnBoot:        true,
		WakeEdge:          WakeRising,
		Secondary:         19.1,
	}
}

func (n Node) Validate() error {
	var errs []error
	if n.TransmitInterval < 1 {
		errs = append(errs, ErrInterval)
	}
	if n.Port < 1 || n.Port > 223 {
		errs = append(errs, ErrPort)
	}
	if n.SpreadingFactor < 7 || n.SpreadingFactor > 12 {
		errs = append(errs, ErrSF)
	}
	if n.TxPowerDBm < 2 || n.TxPowerDBm > 20 {
		errs = append(errs, ErrPower)
	}
	if n.ClockErrorPercent > 100 {
		errs = append(errs, ErrClock)
	}
	if _, err := ParseWakeEdge(n.WakeEdge.String()); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ClockError converts ClockErrorPercent to the engine's scale.
func (n Node) ClockError() uint32 {
	return lmac.MaxClockError * n.ClockErrorPercent / 100
}
