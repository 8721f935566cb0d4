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

package radio

import (
	"errors"

	"tinygo.org/x/drivers/lora"
	"tinygo.org/x/drivers/lora/lorawan/region"

	"loranode/src/lmac"
)

var (
	// ErrSettings rejects radio settings the SX127x cannot use.
	ErrSettings = errors.New("radio: spreading factor must be 7..12 and power 2..20 dBm")
	// ErrUplink rejects what the stack cannot put in a frame. It builds
	// every uplink as unconfirmed on port 1.
	ErrUplink = errors.New("radio: the stack only sends unconfirmed uplinks on port 1")
)

const stackPort = 1

func checkUplink(port uint8, confirmed bool) error {
	if port != stackPort || confirmed {
		return ErrUplink
	}
	return nil
}

// tune writes the spreading factor and power into every channel of rs. The
// stack reapplies a channel's settings to the radio before each join request,
// join accept window and uplink, so setting the radio directly would not
// last. RX1 uses the uplink data rate in EU868, hence the accept channel too.
func tune(rs region.RegionSettings, s lmac.Settings) error {
	if s.SpreadingFactor < lora.SpreadingFactor7 || s.SpreadingFactor > lora.SpreadingFactor12 {
		return ErrSettings
	}
	if s.TxPowerDBm < 2 || s.TxPowerDBm > 20 {
		return ErrSettings
	}
	for _, ch := range []*region.Channel{rs.JoinRequestChannel(), rs.JoinAcceptChannel(), rs.UplinkChannel()} {
		ch.SpreadingFactor = s.SpreadingFactor
		ch.TxPowerDBm = s.TxPowerDBm
	}
	return nil
}
