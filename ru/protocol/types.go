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
	"fmt"
)

// PacketType is the type byte at offset 0 of every RU/MMI packet header.
type PacketType uint8

// Packet types with dedicated decoders.
const (
	PacketMMIDynamic       PacketType = 1
	PacketMMIStatus        PacketType = 2
	PacketMMIDynamicATP    PacketType = 4 // ATP-reported snapshot, same layout as type 1
	PacketMMIDriverMessage PacketType = 8
	PacketMMIFailureReport PacketType = 9
	PacketBTMCommand       PacketType = 41
	PacketBTMStatus        PacketType = 42
	PacketBTMFragment1     PacketType = 43
	PacketBTMFragment2     PacketType = 44
	PacketBTMFragment3     PacketType = 45
	PacketBTMFragment4     PacketType = 46
	PacketBTMFragment5     PacketType = 47
)

// PacketTypeToString is a map from PacketType to string
var PacketTypeToString = map[PacketType]string{
	PacketMMIDynamic:       "MMI_DYNAMIC",
	PacketMMIStatus:        "MMI_STATUS",
	PacketMMIDynamicATP:    "MMI_DYNAMIC_ATP",
	PacketMMIDriverMessage: "MMI_DRIVER_MESSAGE",
	PacketMMIFailureReport: "MMI_FAILURE_REPORT_ATP",
	PacketBTMCommand:       "BTM_COMMAND",
	PacketBTMStatus:        "BTM_STATUS",
	PacketBTMFragment1:     "BTM_FRAGMENT_1",
	PacketBTMFragment2:     "BTM_FRAGMENT_2",
	PacketBTMFragment3:     "BTM_FRAGMENT_3",
	PacketBTMFragment4:     "BTM_FRAGMENT_4",
	PacketBTMFragment5:     "BTM_FRAGMENT_5",
}

func (t PacketType) String() string {
	if s, ok := PacketTypeToString[t]; ok {
		return s
	}
	if f, ok := passthroughFamilies[t]; ok {
		return f
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(t))
}

// IsBTMFragment reports whether t is one of the five telegram fragment types.
func (t PacketType) IsBTMFragment() bool {
	return t >= PacketBTMFragment1 && t <= PacketBTMFragment5
}

// FragmentIndex returns the 1-based fragment index implied by a fragment
// packet type, or 0 if t is not a fragment type.
func (t PacketType) FragmentIndex() int {
	if !t.IsBTMFragment() {
		return 0
	}
	return int(t-PacketBTMFragment1) + 1
}

// passthroughFamilies maps the vehicle-bus and diagnostic packet types that
// the decoder carries through opaquely to their family tags. The recorder
// emits them with the common header; their bodies are interpreted upstream.
var passthroughFamilies = map[PacketType]string{
	21: "DX_SIGNAL", 22: "DX_SIGNAL", 23: "DX_SIGNAL", 24: "DX_SIGNAL",
	31: "VDX_SIGNAL", 32: "VDX_SIGNAL", 33: "VDX_SIGNAL",
	41: "BTM_COMMAND",
	42: "BTM_STATUS",
	51: "BRAKE_SIGNAL", 52: "BRAKE_SIGNAL",
	61: "CAB_SIGNAL", 62: "CAB_SIGNAL", 63: "CAB_SIGNAL", 64: "CAB_SIGNAL",
	71: "DOOR_SIGNAL", 72: "DOOR_SIGNAL",
	91:  "EVENT_MARKER",
	201: "SELF_TEST",
	211: "VERSION_REPORT",
	216: "DIAGNOSTIC",
	221: "MAINTENANCE", 222: "MAINTENANCE", 223: "MAINTENANCE", 224: "MAINTENANCE",
	225: "MAINTENANCE", 226: "MAINTENANCE", 227: "MAINTENANCE", 228: "MAINTENANCE",
}

// PassthroughFamily returns the family tag for a passthrough packet type.
func PassthroughFamily(t PacketType) (string, bool) {
	f, ok := passthroughFamilies[t]
	return f, ok
}

// Record is implemented by every decoded packet kind. Consumers either
// type-switch on the concrete record or work from the shared header.
type Record interface {
	RecordHeader() *Header
	Description() string
}

// Passthrough is a record carried through opaquely: header plus a copy of
// the body bytes, tagged with the packet family.
type Passthrough struct {
	Header
	Family string
	Body   []byte
}

// Description returns the family tag of the packet.
func (p *Passthrough) Description() string { return p.Family }

// Unknown is a frame with an unhandled type byte, kept for diagnostics.
type Unknown struct {
	Header
	Body   []byte
	Offset int // offset of the frame within the input stream
}

// Description names the record for display.
func (u *Unknown) Description() string { return "UNKNOWN" }
