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

package support

import (
	"testing"
	"time"
)

func Test_doneLoopCount(t *testing.T) {
	tests := []struct {
		clock   uint32
		minHigh time.Duration
		want    uint32
	}{
		{125_000_000, 100 * time.Nanosecond, 23},
		{133_000_000, 100 * time.Nanosecond, 25},
		{48_000_000, 100 * time.Nanosecond, 8},
		{125_000_000, time.Microsecond, 248},
		{1_000_000, 100 * time.Nanosecond, 0},
		{125_000_000, 0, 0},
		{0, time.Microsecond, 0},
	}
	for _, tt := range tests {
		got := DoneLoopCount(tt.clock, tt.minHigh)
		if got != tt.want {
			t.Errorf("DoneLoopCount(%d, %v) = %d, want %d", tt.clock, tt.minHigh, got, tt.want)
		}
		if tt.minHigh > 0 && tt.clock > 0 {
			high := time.Duration(uint64(got+DoneOverheadCycles) * 1e9 / uint64(tt.clock))
			if high < tt.minHigh {
				t.Errorf("clock %d: pulse of %v is shorter than %v", tt.clock, high, tt.minHigh)
			}
		}
	}
}
