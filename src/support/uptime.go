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
	"strconv"
	"time"
)

/*
CombineTimer turns two back-to-back reads of a free-running 64-bit microsecond
timer exposed as a pair of 32-bit registers (high word, low word, high word,
low word) into a single consistent value.

The low word can roll over between the reads. If the two high words agree, no
rollover was seen and the first pair is coherent. If they differ, the low word
wrapped somewhere in the sequence and we have to decide which side of the wrap
lo1 was read on. If lo1 < lo2 both low reads happened after the wrap, so lo1
belongs with hi2. Otherwise lo1 was read just before the wrap and belongs with
hi1.

This assumes far fewer than 2^31 ticks elapse during the four reads, which is
trivially true for a 1MHz timer read in a few hundred nanoseconds.
*/
func CombineTimer(hi1, lo1, hi2, lo2 uint32) uint64 {
	if hi1 == hi2 {
		return uint64(hi1)<<32 | uint64(lo1)
	}
	if lo1 < lo2 {
		return uint64(hi2)<<32 | uint64(lo1)
	}
	return uint64(hi1)<<32 | uint64(lo1)
}

// FormatUptime renders d as hh:mm:ss.mmm. Hours are not wrapped.
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := int64(d / time.Millisecond)
	millis := ms % 1000
	ms /= 1000
	seconds := ms % 60
	ms /= 60
	minutes := ms % 60
	hours := ms / 60

	buf := make([]byte, 0, 16)
	buf = appendPadded(buf, hours, 2)
	buf = append(buf, ':')
	buf = appendPadded(buf, minutes, 2)
	buf = append(buf, ':')
	buf = appendPadded(buf, seconds, 2)
	buf = append(buf, '.')
	buf = appendPadded(buf, millis, 3)
	return string(buf)
}

func appendPadded(buf []byte, v int64, width int) []byte {
	s := strconv.FormatInt(v, 10)
	for i := len(s); i < width; i++ {
		buf = append(buf, '0')
	}
	return append(buf, s...)
}
