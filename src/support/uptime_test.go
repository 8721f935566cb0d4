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

func Test_combineTimer(t *testing.T) {
	type testCase struct {
		args []uint32
		r    uint64
	}
	var tests = []testCase{
		// no rollover
		{[]uint32{100, 40, 100, 45}, 100<<32 + 40},
		// lo1 read just before the wrap
		{[]uint32{100, 0xffff_fff5, 101, 3}, 100<<32 + 0xffff_fff5},
		// both low reads after the wrap
		{[]uint32{100, 2, 101, 7}, 101<<32 + 2},
		{[]uint32{0, 0, 0, 0}, 0},
	}

	for _, test := range tests {
		v := CombineTimer(test.args[0], test.args[1], test.args[2], test.args[3])
		if v != test.r {
			t.Errorf("CombineTimer(%d, %d, %d, %d) = %d, want %d",
				test.args[0], test.args[1], test.args[2], test.args[3], v, test.r)
		}
	}
}

func Test_formatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00.000"},
		{1500 * time.Millisecond, "00:00:01.500"},
		{61*time.Minute + 2*time.Second + 7*time.Millisecond, "01:01:02.007"},
		{125 * time.Hour, "125:00:00.000"},
		{-time.Second, "00:00:00.000"},
	}
	for _, tt := range tests {
		if got := FormatUptime(tt.d); got != tt.want {
			t.Errorf("FormatUptime(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
