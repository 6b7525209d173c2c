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
)

// MMI packet family decoders. Each consumes the body slice with the header
// already stripped. Enum-valued fields are passed through unvalidated;
// interpreting them belongs to downstream analyzers.

// body sizes
const (
	mmiDynamicBodySize = 27
	mmiStatusBodySize  = 8
)

// MMIDynamic carries the train kinematics shown on the cab display at one
// moment. Speeds are km/h, positions are meters with the location wrap
// correction applied, acceleration is cm/s².
type MMIDynamic struct {
	Header
	VTrain        uint16
	ATrain        int16
	OTrain        int64
	OBrakeTarget  int64
	VTarget       uint16
	TIntervenWar  uint16 // seconds until warning intervention
	VPermitted    uint16
	VRelease      uint16
	VIntervention uint16
	MWarning      uint8 // low nibble of the status byte
	MSlip         uint8 // status byte bit 4
	MSlide        uint8 // status byte bit 5
	OBCSP         int64
}

// Description names the record for display.
func (p *MMIDynamic) Description() string { return p.PacketType.String() }

// UnmarshalBody decodes the 27-byte MMI_DYNAMIC body:
// v_train u16, a_train i16, o_train u32, o_brake_target u32, v_target u16,
// t_interven_war u16, v_permitted u16, v_release u16, v_intervention u16,
// status u8, o_bcsp u32, all big-endian and tightly packed.
func (p *MMIDynamic) UnmarshalBody(b []byte) error {
	if len(b) < mmiDynamicBodySize {
		return &BodyTooShortError{Type: uint8(p.PacketType), Expected: mmiDynamicBodySize, Got: len(b)}
	}
	p.VTrain = binary.BigEndian.Uint16(b)
	p.ATrain = int16(binary.BigEndian.Uint16(b[2:]))
	p.OTrain, _ = WrapLocation(binary.BigEndian.Uint32(b[4:]))
	p.OBrakeTarget, _ = WrapLocation(binary.BigEndian.Uint32(b[8:]))
	p.VTarget = binary.BigEndian.Uint16(b[12:])
	p.TIntervenWar = binary.BigEndian.Uint16(b[14:])
	p.VPermitted = binary.BigEndian.Uint16(b[16:])
	p.VRelease = binary.BigEndian.Uint16(b[18:])
	p.VIntervention = binary.BigEndian.Uint16(b[20:])
	status := b[22]
	p.MWarning = status & 0x0F
	p.MSlip = (status >> 4) & 1
	p.MSlide = (status >> 5) & 1
	p.OBCSP, _ = WrapLocation(binary.BigEndian.Uint32(b[23:]))
	return nil
}

// MMIStatus is the cab display status snapshot: eight consecutive unsigned
// bytes, no bit unpacking. Semantics of the enum values are defined by the
// system's functional spec and opaque here.
type MMIStatus struct {
	Header
	MAdhesion     uint8
	MMode         uint8
	MLevel        uint8
	MEmerBrake    uint8
	MServiceBrake uint8
	MOverrideEOA  uint8
	MTrip         uint8
	MActiveCabin  uint8
}

// Description names the record for display.
func (p *MMIStatus) Description() string { return p.PacketType.String() }

// UnmarshalBody decodes the 8-byte MMI_STATUS body.
func (p *MMIStatus) UnmarshalBody(b []byte) error {
	if len(b) < mmiStatusBodySize {
		return &BodyTooShortError{Type: uint8(p.PacketType), Expected: mmiStatusBodySize, Got: len(b)}
	}
	p.MAdhesion = b[0]
	p.MMode = b[1]
	p.MLevel = b[2]
	p.MEmerBrake = b[3]
	p.MServiceBrake = b[4]
	p.MOverrideEOA = b[5]
	p.MTrip = b[6]
	p.MActiveCabin = b[7]
	return nil
}

// MMIDriverMessage is a text/coded message shown to the driver: a message id
// plus an opaque payload preserved byte for byte.
type MMIDriverMessage struct {
	Header
	MessageID uint16
	Payload   []byte
}

// Description names the record for display.
func (p *MMIDriverMessage) Description() string { return p.PacketType.String() }

// UnmarshalBody decodes the MMI_DRIVER_MESSAGE body and copies the trailing
// payload out of the input.
func (p *MMIDriverMessage) UnmarshalBody(b []byte) error {
	id, err := U16(b, 0)
	if err != nil {
		return &BodyTooShortError{Type: uint8(p.PacketType), Expected: 2, Got: len(b)}
	}
	p.MessageID = id
	p.Payload = append([]byte(nil), b[2:]...)
	return nil
}

// MMIFailureReport is an ATP failure report: a failure number plus an opaque
// payload preserved byte for byte.
type MMIFailureReport struct {
	Header
	FailureNumber uint16
	Payload       []byte
}

// Description names the record for display.
func (p *MMIFailureReport) Description() string { return p.PacketType.String() }

// UnmarshalBody decodes the MMI_FAILURE_REPORT_ATP body and copies the
// trailing payload out of the input.
func (p *MMIFailureReport) UnmarshalBody(b []byte) error {
	num, err := U16(b, 0)
	if err != nil {
		return &BodyTooShortError{Type: uint8(p.PacketType), Expected: 2, Got: len(b)}
	}
	p.FailureNumber = num
	p.Payload = append([]byte(nil), b[2:]...)
	return nil
}
