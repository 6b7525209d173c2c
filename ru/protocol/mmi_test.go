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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// v_train=120, a_train=10, o_train=1000, o_brake_target=2000, v_target=100,
// t_interven_war=30, v_permitted=130, v_release=110, v_intervention=140,
// status: m_slip set, o_bcsp=3000
var dynamicBody = []byte{
	0x00, 0x78,
	0x00, 0x0a,
	0x00, 0x00, 0x03, 0xe8,
	0x00, 0x00, 0x07, 0xd0,
	0x00, 0x64,
	0x00, 0x1e,
	0x00, 0x82,
	0x00, 0x6e,
	0x00, 0x8c,
	0x10,
	0x00, 0x00, 0x0b, 0xb8,
}

func TestMMIDynamicUnmarshalBody(t *testing.T) {
	p := &MMIDynamic{Header: Header{PacketType: PacketMMIDynamic}}
	require.NoError(t, p.UnmarshalBody(dynamicBody))
	assert.Equal(t, uint16(120), p.VTrain)
	assert.Equal(t, int16(10), p.ATrain)
	assert.Equal(t, int64(1000), p.OTrain)
	assert.Equal(t, int64(2000), p.OBrakeTarget)
	assert.Equal(t, uint16(100), p.VTarget)
	assert.Equal(t, uint16(30), p.TIntervenWar)
	assert.Equal(t, uint16(130), p.VPermitted)
	assert.Equal(t, uint16(110), p.VRelease)
	assert.Equal(t, uint16(140), p.VIntervention)
	assert.Equal(t, uint8(0), p.MWarning)
	assert.Equal(t, uint8(1), p.MSlip)
	assert.Equal(t, uint8(0), p.MSlide)
	assert.Equal(t, int64(3000), p.OBCSP)
}

func TestMMIDynamicNegativeAcceleration(t *testing.T) {
	body := append([]byte(nil), dynamicBody...)
	// a_train = -10
	body[2], body[3] = 0xff, 0xf6
	p := &MMIDynamic{}
	require.NoError(t, p.UnmarshalBody(body))
	assert.Equal(t, int16(-10), p.ATrain)
}

func TestMMIDynamicPositionWrap(t *testing.T) {
	body := append([]byte(nil), dynamicBody...)
	// o_train = 1,000,000,016
	copy(body[4:], []byte{0x3b, 0x9a, 0xca, 0x10})
	p := &MMIDynamic{}
	require.NoError(t, p.UnmarshalBody(body))
	assert.Equal(t, int64(16), p.OTrain)
	// other positions corrected independently
	assert.Equal(t, int64(2000), p.OBrakeTarget)
	assert.Equal(t, int64(3000), p.OBCSP)
}

// The status byte formulas must hold for every possible byte.
func TestMMIDynamicStatusByteExtraction(t *testing.T) {
	for b := 0; b < 256; b++ {
		body := append([]byte(nil), dynamicBody...)
		body[22] = byte(b)
		p := &MMIDynamic{}
		require.NoError(t, p.UnmarshalBody(body))
		assert.Equal(t, uint8(b)&0x0f, p.MWarning)
		assert.Equal(t, (uint8(b)>>4)&1, p.MSlip)
		assert.Equal(t, (uint8(b)>>5)&1, p.MSlide)
	}
}

func TestMMIDynamicBodyTooShort(t *testing.T) {
	p := &MMIDynamic{Header: Header{PacketType: PacketMMIDynamic}}
	err := p.UnmarshalBody(dynamicBody[:26])
	bts := &BodyTooShortError{}
	require.ErrorAs(t, err, &bts)
	assert.Equal(t, 27, bts.Expected)
	assert.Equal(t, 26, bts.Got)
}

func TestMMIStatusUnmarshalBody(t *testing.T) {
	p := &MMIStatus{Header: Header{PacketType: PacketMMIStatus}}
	require.NoError(t, p.UnmarshalBody([]byte{1, 2, 3, 4, 5, 6, 7, 8}))
	assert.Equal(t, uint8(1), p.MAdhesion)
	assert.Equal(t, uint8(2), p.MMode)
	assert.Equal(t, uint8(3), p.MLevel)
	assert.Equal(t, uint8(4), p.MEmerBrake)
	assert.Equal(t, uint8(5), p.MServiceBrake)
	assert.Equal(t, uint8(6), p.MOverrideEOA)
	assert.Equal(t, uint8(7), p.MTrip)
	assert.Equal(t, uint8(8), p.MActiveCabin)

	// out-of-range enum values pass through untouched
	require.NoError(t, p.UnmarshalBody([]byte{0xff, 0xfe, 0, 0, 0, 0, 0, 0}))
	assert.Equal(t, uint8(0xff), p.MAdhesion)

	err := p.UnmarshalBody([]byte{1, 2, 3})
	bts := &BodyTooShortError{}
	require.ErrorAs(t, err, &bts)
}

func TestMMIDriverMessageUnmarshalBody(t *testing.T) {
	body := []byte{0x01, 0x42, 0xde, 0xad, 0xbe, 0xef}
	p := &MMIDriverMessage{}
	require.NoError(t, p.UnmarshalBody(body))
	assert.Equal(t, uint16(0x0142), p.MessageID)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, p.Payload)

	// the payload is a copy, not a view into the input
	body[2] = 0x00
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, p.Payload)

	t.Run("empty payload", func(t *testing.T) {
		p := &MMIDriverMessage{}
		require.NoError(t, p.UnmarshalBody([]byte{0x00, 0x07}))
		assert.Equal(t, uint16(7), p.MessageID)
		assert.Empty(t, p.Payload)
	})
	t.Run("too short", func(t *testing.T) {
		p := &MMIDriverMessage{}
		err := p.UnmarshalBody([]byte{0x01})
		bts := &BodyTooShortError{}
		require.ErrorAs(t, err, &bts)
	})
}

func TestMMIFailureReportUnmarshalBody(t *testing.T) {
	p := &MMIFailureReport{}
	require.NoError(t, p.UnmarshalBody([]byte{0x00, 0x2a, 0x01, 0x02}))
	assert.Equal(t, uint16(42), p.FailureNumber)
	assert.Equal(t, []byte{0x01, 0x02}, p.Payload)

	err := p.UnmarshalBody(nil)
	bts := &BodyTooShortError{}
	require.ErrorAs(t, err, &bts)
}
