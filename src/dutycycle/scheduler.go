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

import (
	"context"
	"fmt"

	"loranode/src/diag"
	"loranode/src/support"
)

type State uint8

const (
	RunningProtocol State = iota
	Sleeping
)

func (s State) String() string {
	switch s {
	case RunningProtocol:
		return "running"
	case Sleeping:
		return "sleeping"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

/*
Step is one pass of the main loop: run the armed transmit job if there is
one, advance the engine by one unit of work, react to whatever the engine
reported and, if no transmission is outstanding, sleep until the next
interrupt. It reports whether the node slept.
*/
func (n *Node) Step() bool {
	if n.job.Take() {
		n.transmit()
	}
	n.engine.Step()
	n.drain()
	if n.gate.Busy() {
		return false
	}
	return n.sleep()
}

// Run loops until ctx is done. Firmware never cancels it.
func (n *Node) Run(ctx context.Context) {
	for ctx.Err() == nil {
		n.Step()
	}
}

func (n *Node) drain() {
	events := n.engine.Events()
	for {
		select {
		case ev := <-events:
			n.apply(React(ev))
		default:
			return
		}
	}
}

func (n *Node) idle() bool {
	return !n.gate.Busy() && !n.job.Armed()
}

func (n *Node) sleep() bool {
	n.record("sleeping")
	n.state = Sleeping
	slept := n.sleeper.Sleep(n.idle)
	n.state = RunningProtocol
	if !slept {
		return false
	}
	n.stats.Sleeps.Add(1)
	n.resumes++
	n.record("awake",
		diag.F("count", n.resumes),
		diag.F("uptime", support.FormatUptime(n.uptime())))
	return true
}
