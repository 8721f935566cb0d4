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

package diag

import "go.uber.org/zap"

// Zap sends records to a structured logger on the host.
type Zap struct {
	log *zap.Logger
}

func NewZap(log *zap.Logger) *Zap {
	return &Zap{log: log}
}

func (z *Zap) Record(r Record) {
	if r.Empty() {
		return
	}
	fields := make([]zap.Field, 0, len(r.Fields)+1)
	fields = append(fields, zap.Duration("uptime", r.At))
	for _, f := range r.Fields {
		fields = append(fields, zap.Any(f.Key, f.Value))
	}
	z.log.Info(r.Name, fields...)
}
