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

package main

import (
	"context"
	"time"

	"loranode/src/board"
	"loranode/src/config"
	"loranode/src/credentials"
	"loranode/src/dutycycle"
	"loranode/src/lmac/radio"
	"loranode/src/sensor"
)

// Credentials are set per unit at build time, copied from the console in the
// orders credentials.Load expects:
//
//	tinygo flash -target pico -ldflags "-X main.devEUI=... -X main.appEUI=... -X main.appKey=..." ./main
var (
	devEUI = "0000000000000000"
	appEUI = "0000000000000000"
	appKey = "00000000000000000000000000000000"
)

const maxJoinAttempts = 3

func main() {
	cfg := config.Default()
	id, err := credentials.Load(devEUI, appEUI, appKey)
	if err != nil {
		panic("bad credentials: " + err.Error())
	}

	b, err := board.Setup(debug)
	if err != nil {
		panic("failed setup: " + err.Error())
	}

	n, err := dutycycle.New(cfg, dutycycle.Parts{
		Engine:    radio.New(b.Radio, board.Uptime, maxJoinAttempts),
		Ack:       b.Done,
		Sleeper:   b.Sleeper,
		Battery:   b.Battery,
		Secondary: sensor.Fixed(cfg.Secondary),
		Sink:      diagnostics(),
		Uptime:    board.Uptime,
	})
	if err != nil {
		panic("failed setup: " + err.Error())
	}
	if err := board.OnWake(cfg.WakeEdge, n.OnWake); err != nil {
		panic("failed to attach wake interrupt: " + err.Error())
	}
	if err := n.Boot(id); err != nil {
		panic("failed boot: " + err.Error())
	}
	board.Blink(500 * time.Millisecond)

	n.Run(context.Background())
}
