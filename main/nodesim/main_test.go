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
	"errors"
	"math"
	"testing"

	"loranode/src/config"
)

func Test_narrow(t *testing.T) {
	tests := []struct {
		interval, port uint
		want           error
	}{
		{3, 10, nil},
		{1, 257, config.ErrPort},
		{1, 256 + 223, config.ErrPort},
		{1, 0, config.ErrPort},
		{0, 1, config.ErrInterval},
	}
	for _, tt := range tests {
		cfg := config.Default()
		err := narrow(&cfg, tt.interval, tt.port)
		if tt.want == nil {
			if err != nil || cfg.TransmitInterval != uint32(tt.interval) || cfg.Port != uint8(tt.port) {
				t.Errorf("narrow(%d, %d) = %v, config %+v", tt.interval, tt.port, err, cfg)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("narrow(%d, %d) = %v, want %v", tt.interval, tt.port, err, tt.want)
		}
	}
	if uint64(math.MaxUint) > math.MaxUint32 {
		cfg := config.Default()
		big := uint(math.MaxUint32)
		big += 2
		if err := narrow(&cfg, big, 1); !errors.Is(err, config.ErrInterval) {
			t.Errorf("interval %d accepted: %v", big, err)
		}
	}
}
