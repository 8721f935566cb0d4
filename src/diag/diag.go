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

// Package diag carries the node's diagnostic records. Nothing in the control
// path depends on a record being written; firmware built without the debug
// tag discards them all.
package diag

import (
	"fmt"
	"io"
	"time"

	"loranode/src/support"
)

type Field struct {
	Key   string
	Value any
}

func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Record is one diagnostic line. At is device uptime.
type Record struct {
	At     time.Duration
	Name   string
	Fields []Field
}

// Empty reports whether there is nothing to write.
func (r Record) Empty() bool {
	return r.Name == ""
}

// Sink writes records. Record is only ever called from the main context.
type Sink interface {
	Record(r Record)
}

// Discard drops everything.
type Discard struct{}

func (Discard) Record(Record) {}

// Console writes records as text lines, e.g. to machine.Serial.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Record(r Record) {
	if r.Empty() {
		return
	}
	fmt.Fprintf(c.w, "%s: %s", support.FormatUptime(r.At), r.Name)
	for _, f := range r.Fields {
		fmt.Fprintf(c.w, " %s=%v", f.Key, f.Value)
	}
	fmt.Fprint(c.w, "\n")
}
