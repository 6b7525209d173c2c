/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package protocol

import (
	"encoding/binary"
	"fmt"
	"time"
)

// HeaderSize is the fixed size of the common packet header.
const HeaderSize = 15

// FrameOverhead is header plus the one-byte body length prefix.
const FrameOverhead = HeaderSize + 1

// LocationWrap is the onboard position counter modulus. Raw location values
// at or above it are reduced modulo it, so downstream code sees a
// continuous-looking position without knowing the wrap rule.
const LocationWrap = 1_000_000_000

// yearBase is added to the raw YY byte, so 0 means year 2000.
const yearBase = 2000

// Header is the 15-byte prefix shared by every RU and MMI packet:
//
//	byte  0     packet type
//	bytes 1-6   YY MM DD hh mm ss
//	bytes 7-10  location, meters, unsigned 32-bit BE
//	bytes 11-12 reserved
//	bytes 13-14 speed, 0.1 km/h, unsigned 16-bit BE
type Header struct {
	PacketType   PacketType
	PacketNumber uint8 // same wire byte as PacketType, retained for display
	Timestamp    time.Time
	Location     int64 // meters, wrap corrected
	Wrapped      bool  // true when the wrap correction fired
	Reserved     uint16
	Speed        uint16 // 0.1 km/h
}

// RecordHeader returns the header itself, so any record embedding Header
// satisfies the Record interface's header accessor.
func (h *Header) RecordHeader() *Header { return h }

// WrapLocation applies the position counter wrap correction to a raw value.
// The corrected value is always below LocationWrap, so applying the
// correction twice is the same as applying it once.
func WrapLocation(raw uint32) (int64, bool) {
	if raw >= LocationWrap {
		return int64(raw % LocationWrap), true
	}
	return int64(raw), false
}

// ParseHeader consumes exactly HeaderSize bytes and returns the typed header.
// Calendar components are range checked, never normalised: an out-of-range
// byte surfaces as *InvalidCalendarFieldError.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, &TruncatedError{Offset: 0, Need: HeaderSize - len(b)}
	}
	yy, mm, dd := b[1], b[2], b[3]
	hh, mi, ss := b[4], b[5], b[6]
	if mm < 1 || mm > 12 {
		return Header{}, &InvalidCalendarFieldError{Field: FieldMonth, Value: mm}
	}
	if dd < 1 || dd > 31 {
		return Header{}, &InvalidCalendarFieldError{Field: FieldDay, Value: dd}
	}
	if hh > 23 {
		return Header{}, &InvalidCalendarFieldError{Field: FieldHour, Value: hh}
	}
	if mi > 59 {
		return Header{}, &InvalidCalendarFieldError{Field: FieldMinute, Value: mi}
	}
	if ss > 59 {
		return Header{}, &InvalidCalendarFieldError{Field: FieldSecond, Value: ss}
	}
	ts := time.Date(yearBase+int(yy), time.Month(mm), int(dd), int(hh), int(mi), int(ss), 0, time.UTC)
	if ts.Day() != int(dd) {
		// in range but past the end of its month (e.g. Feb 30)
		return Header{}, &InvalidCalendarFieldError{Field: FieldDay, Value: dd}
	}
	loc, wrapped := WrapLocation(binary.BigEndian.Uint32(b[7:]))
	return Header{
		PacketType:   PacketType(b[0]),
		PacketNumber: b[0],
		Timestamp:    ts,
		Location:     loc,
		Wrapped:      wrapped,
		Reserved:     binary.BigEndian.Uint16(b[11:]),
		Speed:        binary.BigEndian.Uint16(b[13:]),
	}, nil
}

// ParseFrame parses the header plus the one-byte body length that follows it
// and returns the body slice and total bytes consumed. On success
// consumed = HeaderSize + 1 + body length; on failure consumed is zero and
// the error carries the originating offset relative to the frame start.
// The body slice aliases b; callers that keep it must copy.
func ParseFrame(b []byte) (Header, []byte, int, error) {
	h, err := ParseHeader(b)
	if err != nil {
		return Header{}, nil, 0, err
	}
	if len(b) < FrameOverhead {
		return Header{}, nil, 0, &TruncatedError{Offset: HeaderSize, Need: FrameOverhead - len(b)}
	}
	bodyLen := int(b[HeaderSize])
	consumed := FrameOverhead + bodyLen
	if len(b) < consumed {
		return Header{}, nil, 0, &TruncatedError{Offset: FrameOverhead, Need: consumed - len(b)}
	}
	return h, b[FrameOverhead:consumed], consumed, nil
}

// MarshalBinaryTo serialises the header back to its wire form. A wrapped
// location gets LocationWrap re-added once, so parse then marshal reproduces
// the original bytes for raw locations below 2*LocationWrap.
func (h *Header) MarshalBinaryTo(b []byte) (int, error) {
	if len(b) < HeaderSize {
		return 0, fmt.Errorf("not enough buffer to write header: %d bytes", len(b))
	}
	loc := h.Location
	if h.Wrapped {
		loc += LocationWrap
	}
	if loc < 0 || loc > 0xFFFFFFFF {
		return 0, fmt.Errorf("location %d does not fit the wire field", loc)
	}
	b[0] = byte(h.PacketType)
	b[1] = byte(h.Timestamp.Year() - yearBase)
	b[2] = byte(h.Timestamp.Month())
	b[3] = byte(h.Timestamp.Day())
	b[4] = byte(h.Timestamp.Hour())
	b[5] = byte(h.Timestamp.Minute())
	b[6] = byte(h.Timestamp.Second())
	binary.BigEndian.PutUint32(b[7:], uint32(loc))
	binary.BigEndian.PutUint16(b[11:], h.Reserved)
	binary.BigEndian.PutUint16(b[13:], h.Speed)
	return HeaderSize, nil
}
