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

package dutycycle

import "sync/atomic"

// Stats count what the node has done. They are for diagnostics and metrics
// and are never used to make decisions.
type Stats struct {
	Pulses    atomic.Uint32
	Armed     atomic.Uint32
	Coalesced atomic.Uint32
	Submitted atomic.Uint32
	Skipped   atomic.Uint32
	Cleared   atomic.Uint32
	Joins     atomic.Uint32
	Sleeps    atomic.Uint32
}

// Snapshot is a plain copy of Stats.
type Snapshot struct {
	Pulses    uint32
	Armed     uint32
	Coalesced uint32
	Submitted uint32
	Skipped   uint32
	Cleared   uint32
	Joins     uint32
	Sleeps    uint32
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Pulses:    s.Pulses.Load(),
		Armed:     s.Armed.Load(),
		Coalesced: s.Coalesced.Load(),
		Submitted: s.Submitted.Load(),
		Skipped:   s.Skipped.Load(),
		Cleared:   s.Cleared.Load(),
		Joins:     s.Joins.Load(),
		Sleeps:    s.Sleeps.Load(),
	}
}
