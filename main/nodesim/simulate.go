//go:build !tinygo

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
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"loranode/src/config"
	"loranode/src/credentials"
	"loranode/src/diag"
	"loranode/src/dutycycle"
	"loranode/src/lmac/sim"
	"loranode/src/power"
	"loranode/src/sensor"
)

type options struct {
	node     config.Node
	engine   sim.Config
	identity credentials.Identity
	// period is the wake timer period, pulses how many wakes to simulate
	period time.Duration
	pulses int
	// batteryMV is the cell voltage at the start; it sags by one
	// millivolt per reading
	batteryMV uint32
	seed      int64
}

// tpl5010 counts the DONE pulses it is sent.
type tpl5010 struct {
	done atomic.Uint32
}

func (t *tpl5010) Pulse() {
	t.done.Add(1)
}

// cellADC converts a slowly discharging cell to counts as the RP2040 ADC
// would see it behind a 2:1 divider with a 3.3V reference.
type cellADC struct {
	mu  sync.Mutex
	mv  uint32
	rng *rand.Rand
}

func (c *cellADC) Get() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mv > 3000 {
		c.mv--
	}
	counts := int(uint64(c.mv) * 0xffff / 6600)
	counts += c.rng.Intn(33) - 16
	if counts < 0 {
		counts = 0
	}
	if counts > 0xffff {
		counts = 0xffff
	}
	return uint16(counts)
}

/*
simulate runs a node against the simulated network until the requested number
of wake pulses has been delivered and the last send has completed, or ctx is
done. ready, if not nil, is called with the node before it boots.
*/
func simulate(ctx context.Context, opts options, log *zap.Logger, ready func(*dutycycle.Node)) (*dutycycle.Node, *sim.Engine, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	uptime := func() time.Duration { return time.Since(start) }
	engineCfg := opts.engine
	engineCfg.Clock = uptime
	engine := sim.New(engineCfg)
	waker := power.NewWaker(ctx)
	timer := &tpl5010{}
	adc := &cellADC{mv: opts.batteryMV, rng: rand.New(rand.NewSource(opts.seed))}

	n, err := dutycycle.New(opts.node, dutycycle.Parts{
		Engine:    engine,
		Ack:       timer,
		Sleeper:   waker,
		Battery:   sensor.NewBattery(adc, 3300, 2, 1, 4),
		Secondary: sensor.Fixed(opts.node.Secondary),
		Sink:      diag.NewZap(log),
		Uptime:    uptime,
	})
	if err != nil {
		return nil, nil, err
	}
	if ready != nil {
		ready(n)
	}
	if err := n.Boot(opts.identity); err != nil {
		return nil, nil, err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		runTimer(ctx, opts, waker, n)
	}()
	n.Run(ctx)
	wg.Wait()
	log.Info("done pulses", zap.Uint32("count", timer.done.Load()))
	return n, engine, nil
}

// runTimer is the wake timer. It returns once the last pulse has been
// handled and the node has nothing outstanding.
func runTimer(ctx context.Context, opts options, waker *power.Waker, n *dutycycle.Node) {
	ticker := time.NewTicker(opts.period)
	defer ticker.Stop()
	for i := 0; opts.pulses == 0 || i < opts.pulses; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			waker.Wake(n.OnWake)
		}
	}
	for n.Pending() || n.Gate().Busy() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(opts.period / 10):
		}
	}
}
