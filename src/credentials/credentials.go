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

// Package credentials holds the OTAA identity of the node.
//
// Provisioning consoles show each identifier in one of two orders. LMIC style
// firmware wants DevEUI and AppEUI little-endian ("lsb" in the console) and
// the AppKey big-endian ("msb"). Values here are always kept in display order,
// most significant byte first, and converted by whoever puts them on the air.
package credentials

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Order is the byte order a value was copied from the console in.
type Order int

const (
	MSB Order = iota
	LSB
)

func (o Order) String() string {
	switch o {
	case MSB:
		return "msb"
	case LSB:
		return "lsb"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

var (
	ErrLength = errors.New("credentials: wrong length")
	ErrFormat = errors.New("credentials: not hex")
)

// EUI is a 64-bit extended unique identifier in display order.
type EUI [8]byte

// Key is a 128-bit AES key in display order.
type Key [16]byte

// Identity is everything needed for an over-the-air join.
type Identity struct {
	DevEUI EUI
	AppEUI EUI
	AppKey Key
}

func (e EUI) String() string {
	return strings.ToUpper(hex.EncodeToString(e[:]))
}

// LSB returns the identifier least significant byte first, as it goes into a
// join request.
func (e EUI) LSB() [8]byte {
	var r [8]byte
	for i := range e {
		r[i] = e[len(e)-1-i]
	}
	return r
}

func (k Key) String() string {
	return strings.ToUpper(hex.EncodeToString(k[:]))
}

// ParseEUI reads an EUI written either as plain hex ("70B3D57ED0000001",
// optionally with ':' or '-' separators) or as the C array the console offers
// ("{ 0x01, 0x00, ... }"), in the given order.
func ParseEUI(s string, order Order) (EUI, error) {
	var e EUI
	if err := parseInto(e[:], s, order); err != nil {
		return EUI{}, fmt.Errorf("eui %q: %w", s, err)
	}
	return e, nil
}

// ParseKey reads a key in the same formats as ParseEUI.
func ParseKey(s string, order Order) (Key, error) {
	var k Key
	if err := parseInto(k[:], s, order); err != nil {
		// keys are secret, keep them out of error messages
		return Key{}, fmt.Errorf("key: %w", err)
	}
	return k, nil
}

// Load parses the three identifiers using the console conventions: DevEUI and
// AppEUI in lsb order, AppKey in msb order.
func Load(devEUI, appEUI, appKey string) (Identity, error) {
	var id Identity
	var err error
	if id.DevEUI, err = ParseEUI(devEUI, LSB); err != nil {
		return Identity{}, fmt.Errorf("dev %w", err)
	}
	if id.AppEUI, err = ParseEUI(appEUI, LSB); err != nil {
		return Identity{}, fmt.Errorf("app %w", err)
	}
	if id.AppKey, err = ParseKey(appKey, MSB); err != nil {
		return Identity{}, fmt.Errorf("app %w", err)
	}
	return id, nil
}

func parseInto(dst []byte, s string, order Order) error {
	digits := normalize(s)
	if len(digits) != 2*len(dst) {
		return ErrLength
	}
	if _, err := hex.Decode(dst, []byte(digits)); err != nil {
		return ErrFormat
	}
	if order == LSB {
		for i, j := 0, len(dst)-1; i < j; i, j = i+1, j-1 {
			dst[i], dst[j] = dst[j], dst[i]
		}
	}
	return nil
}

// normalize strips braces, 0x prefixes, separators and whitespace.
func normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	var b strings.Builder
	for _, field := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == ':' || r == '-'
	}) {
		field = strings.TrimPrefix(strings.TrimPrefix(field, "0x"), "0X")
		if len(field) == 1 {
			// C arrays may drop the leading zero of a byte
			b.WriteByte('0')
		}
		b.WriteString(field)
	}
	return b.String()
}
