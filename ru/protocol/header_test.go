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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2023-10-15T14:30:45, location 1000m, speed 12.0 km/h
var validHeader = []byte{
	0x01,
	0x17, 0x0a, 0x0f, 0x0e, 0x1e, 0x2d,
	0x00, 0x00, 0x03, 0xe8,
	0x00, 0x00,
	0x00, 0x78,
}

func TestParseHeader(t *testing.T) {
	h, err := ParseHeader(validHeader)
	require.NoError(t, err)
	assert.Equal(t, PacketMMIDynamic, h.PacketType)
	assert.Equal(t, uint8(1), h.PacketNumber)
	assert.Equal(t, time.Date(2023, time.October, 15, 14, 30, 45, 0, time.UTC), h.Timestamp)
	assert.Equal(t, int64(1000), h.Location)
	assert.False(t, h.Wrapped)
	assert.Equal(t, uint16(0), h.Reserved)
	assert.Equal(t, uint16(120), h.Speed)
}

func TestParseHeaderTruncated(t *testing.T) {
	_, err := ParseHeader(validHeader[:10])
	te := &TruncatedError{}
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 5, te.Need)
}

func TestParseHeaderCalendarValidation(t *testing.T) {
	tests := []struct {
		name  string
		byte  int
		value byte
		field CalendarField
	}{
		{"month zero", 2, 0, FieldMonth},
		{"month too big", 2, 13, FieldMonth},
		{"day zero", 3, 0, FieldDay},
		{"day too big", 3, 32, FieldDay},
		{"hour too big", 4, 24, FieldHour},
		{"minute too big", 5, 60, FieldMinute},
		{"second too big", 6, 60, FieldSecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := append([]byte(nil), validHeader...)
			raw[tt.byte] = tt.value
			_, err := ParseHeader(raw)
			ce := &InvalidCalendarFieldError{}
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
			assert.Equal(t, tt.value, ce.Value)
		})
	}
}

func TestLocationWrapCorrection(t *testing.T) {
	raw := append([]byte(nil), validHeader...)
	// 1,000,000,016
	copy(raw[7:], []byte{0x3b, 0x9a, 0xca, 0x10})
	h, err := ParseHeader(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(16), h.Location)
	assert.True(t, h.Wrapped)
}

func TestWrapLocationIdempotence(t *testing.T) {
	for _, raw := range []uint32{0, 1, 999999999, 1000000000, 1000000016, 4294967295} {
		once, _ := WrapLocation(raw)
		require.Less(t, once, int64(LocationWrap))
		twice, wrapped := WrapLocation(uint32(once))
		assert.Equal(t, once, twice)
		assert.False(t, wrapped)
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		h, err := ParseHeader(validHeader)
		require.NoError(t, err)
		buf := make([]byte, HeaderSize)
		n, err := h.MarshalBinaryTo(buf)
		require.NoError(t, err)
		assert.Equal(t, HeaderSize, n)
		assert.Equal(t, validHeader, buf)
	})
	t.Run("wrapped location is re-wrapped", func(t *testing.T) {
		raw := append([]byte(nil), validHeader...)
		copy(raw[7:], []byte{0x3b, 0x9a, 0xca, 0x10})
		h, err := ParseHeader(raw)
		require.NoError(t, err)
		buf := make([]byte, HeaderSize)
		_, err = h.MarshalBinaryTo(buf)
		require.NoError(t, err)
		assert.Equal(t, raw, buf)
	})
	t.Run("buffer too small", func(t *testing.T) {
		h, err := ParseHeader(validHeader)
		require.NoError(t, err)
		_, err = h.MarshalBinaryTo(make([]byte, 10))
		require.Error(t, err)
	})
}

func TestParseFrame(t *testing.T) {
	frame := append([]byte(nil), validHeader...)
	frame = append(frame, 0x03, 0xaa, 0xbb, 0xcc)
	h, body, consumed, err := ParseFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, PacketMMIDynamic, h.PacketType)
	assert.Equal(t, []byte{0xaa, 0xbb, 0xcc}, body)
	assert.Equal(t, HeaderSize+1+3, consumed)
}

func TestParseFrameTruncated(t *testing.T) {
	t.Run("missing length byte", func(t *testing.T) {
		_, _, _, err := ParseFrame(validHeader)
		te := &TruncatedError{}
		require.ErrorAs(t, err, &te)
		assert.Equal(t, HeaderSize, te.Offset)
	})
	t.Run("body shorter than claimed", func(t *testing.T) {
		frame := append(append([]byte(nil), validHeader...), 0x05, 0x01)
		_, _, _, err := ParseFrame(frame)
		te := &TruncatedError{}
		require.ErrorAs(t, err, &te)
		assert.Equal(t, 4, te.Need)
	})
}
