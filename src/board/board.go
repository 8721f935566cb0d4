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
	"errors"
	"fmt"
	"machine"
	"time"

	pio "github.com/tinygo-org/pio/rp2-pio"
	"tinygo.org/x/drivers/sx127x"

	"loranode/src/config"
	"loranode/src/sensor"
)

var ErrNoRadio = errors.New("board: sx127x not detected")

type Board struct {
	Done    *DonePulse
	Sleeper Sleeper
	Battery *sensor.Battery
	Radio   *sx127x.Device
}

// Setup brings up everything but the wake interrupt.
func Setup(debug bool) (*Board, error) {
	ParkUnusedPins(debug)
	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	WakePin.Configure(machine.PinConfig{Mode: machine.PinInput})

	sm, err := pio.PIO0.ClaimStateMachine()
	if err != nil {
		return nil, fmt.Errorf("claim state machine: %w", err)
	}
	done, err := NewDonePulse(sm, DonePin, TPL5010MinDone)
	if err != nil {
		return nil, fmt.Errorf("done pulse: %w", err)
	}

	battery := setupBattery()
	// let the ADC reference settle
	time.Sleep(time.Second)

	radio, err := setupRadio()
	if err != nil {
		return nil, err
	}
	return &Board{Done: done, Battery: battery, Radio: radio}, nil
}

func setupBattery() *sensor.Battery {
	machine.InitADC()
	adc := machine.ADC{Pin: BatteryPin}
	adc.Configure(machine.ADCConfig{})
	// 3.3V reference behind two equal resistors
	return sensor.NewBattery(adc, 3300, 2, 1, 8)
}

func setupRadio() (*sx127x.Device, error) {
	RadioRST.Configure(machine.PinConfig{Mode: machine.PinOutput})
	err := machine.SPI0.Configure(machine.SPIConfig{
		Frequency: 500_000,
		Mode:      0,
		SCK:       RadioSCK,
		SDO:       RadioSDO,
		SDI:       RadioSDI,
	})
	if err != nil {
		return nil, fmt.Errorf("spi: %w", err)
	}
	dev := sx127x.New(machine.SPI0, RadioRST)
	if err := dev.SetRadioController(sx127x.NewRadioControl(RadioCS, RadioDIO0, RadioDIO1)); err != nil {
		return nil, fmt.Errorf("radio control: %w", err)
	}
	dev.Reset()
	if !dev.DetectDevice() {
		return nil, ErrNoRadio
	}
	return dev, nil
}

// OnWake attaches handler to the wake line. Revision 1 boards only see a
// toggle.
func OnWake(edge config.WakeEdge, handler func()) error {
	change := machine.PinRising
	if edge == config.WakeToggle {
		change = machine.PinToggle
	}
	return WakePin.SetInterrupt(change, func(machine.Pin) {
		handler()
	})
}

// Blink flashes the LED once, as a sign of life after reset.
func Blink(d time.Duration) {
	machine.LED.High()
	time.Sleep(d)
	machine.LED.Low()
}
