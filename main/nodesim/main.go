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

// Command nodesim runs the sensor node's duty cycle on a host against a
// simulated LoRaWAN network, with a goroutine standing in for the wake timer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"loranode/src/config"
	"loranode/src/credentials"
	"loranode/src/dutycycle"
	"loranode/src/lmac/sim"
	"loranode/src/telemetry"
)

func main() {
	cfg := config.Default()
	engineCfg := sim.DefaultConfig()

	interval := flag.Uint("interval", uint(cfg.TransmitInterval), "wake pulses per transmission")
	period := flag.Duration("period", 2*time.Second, "wake timer period")
	pulses := flag.Int("pulses", 10, "wake pulses to simulate, 0 runs until interrupted")
	port := flag.Uint("port", uint(cfg.Port), "application port")
	flag.BoolVar(&cfg.Confirmed, "confirmed", cfg.Confirmed, "send confirmed uplinks")
	flag.BoolVar(&cfg.SendOnBoot, "boot-send", cfg.SendOnBoot, "send the first reading at boot")
	flag.Float64Var(&cfg.Secondary, "secondary", cfg.Secondary, "value reported on channel 1")
	flag.Float64Var(&engineCfg.AckRate, "ack", engineCfg.AckRate, "chance a confirmed uplink is acknowledged")
	flag.IntVar(&engineCfg.JoinFailures, "join-failures", engineCfg.JoinFailures, "join requests the network ignores")
	flag.IntVar(&engineCfg.MaxJoinAttempts, "join-attempts", engineCfg.MaxJoinAttempts, "join requests per uplink before giving up")
	seed := flag.Int64("seed", 1, "random seed")
	battery := flag.Uint("battery", 3300, "starting battery voltage in mV")
	metricsAddr := flag.String("metrics", "", "serve /metrics on this address, e.g. :9100")
	devEUI := flag.String("deveui", "01 6E 1C 2F 39 7D 4A 00", "DevEUI as shown by the console in lsb order")
	appEUI := flag.String("appeui", "12 A9 04 D0 7E D5 B3 70", "AppEUI as shown by the console in lsb order")
	appKey := flag.String("appkey", "6757BB981D0E2671F40F534F6E4CD87F", "AppKey as shown by the console in msb order")
	verbose := flag.Bool("v", false, "development logging")
	flag.Parse()

	var log *zap.Logger
	var err error
	if *verbose {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer log.Sync()

	if err := narrow(&cfg, *interval, *port); err != nil {
		log.Fatal("bad flags", zap.Error(err))
	}
	if *battery > math.MaxUint32 {
		log.Fatal("bad flags", zap.Uint("battery", *battery))
	}
	engineCfg.Seed = *seed

	id, err := credentials.Load(*devEUI, *appEUI, *appKey)
	if err != nil {
		log.Fatal("bad credentials", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := options{
		node:      cfg,
		engine:    engineCfg,
		identity:  id,
		period:    *period,
		pulses:    *pulses,
		batteryMV: uint32(*battery),
		seed:      *seed,
	}
	var srv *http.Server
	ready := func(n *dutycycle.Node) {
		if *metricsAddr == "" {
			return
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", telemetry.New(n).Handler())
		srv = &http.Server{Addr: *metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server", zap.Error(err))
			}
		}()
	}

	n, engine, err := simulate(ctx, opts, log, ready)
	if err != nil {
		log.Fatal("simulation failed", zap.Error(err))
	}
	if srv != nil {
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}

	st := n.Stats()
	log.Info("summary",
		zap.Uint32("pulses", st.Pulses),
		zap.Uint32("armed", st.Armed),
		zap.Uint32("coalesced", st.Coalesced),
		zap.Uint32("submitted", st.Submitted),
		zap.Uint32("skipped", st.Skipped),
		zap.Uint32("cleared", st.Cleared),
		zap.Uint32("sleeps", st.Sleeps),
		zap.Int("frames", len(engine.Frames())),
		zap.Uint32("fcnt", engine.FCnt()))
}

// narrow stores the unsigned flags in their config fields, refusing values
// that the conversion would wrap into something Validate accepts.
func narrow(cfg *config.Node, interval, port uint) error {
	if interval > math.MaxUint32 {
		return fmt.Errorf("interval %d: %w", interval, config.ErrInterval)
	}
	if port > math.MaxUint8 {
		return fmt.Errorf("port %d: %w", port, config.ErrPort)
	}
	cfg.TransmitInterval = uint32(interval)
	cfg.Port = uint8(port)
	return cfg.Validate()
}
