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

// Package format renders decoded records as field-labelled text rows or as
// the stable JSON shape consumed by the UI, analytics and tests. JSON field
// names are part of the external interface and must not change.
package format

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Lawliet0813/ATP-Re/ru/protocol"
)

// timestampLayout is ISO-8601 date-time without timezone.
const timestampLayout = "2006-01-02T15:04:05"

// Output is the machine-readable shape of one decoded record.
type Output struct {
	PacketType  uint8  `json:"packet_type"`
	Description string `json:"description"`
	Header      Header `json:"header"`
	Data        any    `json:"data"`
}

// Header is the JSON shape of the common packet header.
type Header struct {
	PacketNumber uint8  `json:"packet_number"`
	Timestamp    string `json:"timestamp"`
	Location     int64  `json:"location"`
	Speed        uint16 `json:"speed"`
}

// DynamicData is the JSON shape of an MMI_DYNAMIC record.
type DynamicData struct {
	VTrain        uint16 `json:"v_train"`
	ATrain        int16  `json:"a_train"`
	OTrain        int64  `json:"o_train"`
	OBrakeTarget  int64  `json:"o_brake_target"`
	VTarget       uint16 `json:"v_target"`
	TIntervenWar  uint16 `json:"t_interven_war"`
	VPermitted    uint16 `json:"v_permitted"`
	VRelease      uint16 `json:"v_release"`
	VIntervention uint16 `json:"v_intervention"`
	MWarning      uint8  `json:"m_warning"`
	MSlip         uint8  `json:"m_slip"`
	MSlide        uint8  `json:"m_slide"`
	OBCSP         int64  `json:"o_bcsp"`
}

// StatusData is the JSON shape of an MMI_STATUS record.
type StatusData struct {
	MAdhesion     uint8 `json:"m_adhesion"`
	MMode         uint8 `json:"m_mode"`
	MLevel        uint8 `json:"m_level"`
	MEmerBrake    uint8 `json:"m_emer_brake"`
	MServiceBrake uint8 `json:"m_service_brake"`
	MOverrideEOA  uint8 `json:"m_override_eoa"`
	MTrip         uint8 `json:"m_trip"`
	MActiveCabin  uint8 `json:"m_active_cabin"`
}

// DriverMessageData is the JSON shape of an MMI_DRIVER_MESSAGE record.
type DriverMessageData struct {
	MessageID uint16 `json:"message_id"`
	Payload   string `json:"payload"` // hex
}

// FailureReportData is the JSON shape of an MMI_FAILURE_REPORT_ATP record.
type FailureReportData struct {
	FailureNumber uint16 `json:"failure_number"`
	Payload       string `json:"payload"` // hex
}

// TelegramData is the JSON shape of a reassembled balise telegram.
type TelegramData struct {
	Sequence uint8  `json:"sequence"`
	Data     string `json:"data"` // hex, 104 bytes
	Hash     string `json:"hash"` // xxhash64 of the payload
}

// ToOutput converts a decoded record to its stable machine-readable shape.
// Passthrough and unknown records carry no data object.
func ToOutput(r protocol.Record) Output {
	h := r.RecordHeader()
	out := Output{
		PacketType:  uint8(h.PacketType),
		Description: r.Description(),
		Header: Header{
			PacketNumber: h.PacketNumber,
			Timestamp:    h.Timestamp.Format(timestampLayout),
			Location:     h.Location,
			Speed:        h.Speed,
		},
	}
	switch rec := r.(type) {
	case *protocol.MMIDynamic:
		out.Data = DynamicData{
			VTrain:        rec.VTrain,
			ATrain:        rec.ATrain,
			OTrain:        rec.OTrain,
			OBrakeTarget:  rec.OBrakeTarget,
			VTarget:       rec.VTarget,
			TIntervenWar:  rec.TIntervenWar,
			VPermitted:    rec.VPermitted,
			VRelease:      rec.VRelease,
			VIntervention: rec.VIntervention,
			MWarning:      rec.MWarning,
			MSlip:         rec.MSlip,
			MSlide:        rec.MSlide,
			OBCSP:         rec.OBCSP,
		}
	case *protocol.MMIStatus:
		out.Data = StatusData{
			MAdhesion:     rec.MAdhesion,
			MMode:         rec.MMode,
			MLevel:        rec.MLevel,
			MEmerBrake:    rec.MEmerBrake,
			MServiceBrake: rec.MServiceBrake,
			MOverrideEOA:  rec.MOverrideEOA,
			MTrip:         rec.MTrip,
			MActiveCabin:  rec.MActiveCabin,
		}
	case *protocol.MMIDriverMessage:
		out.Data = DriverMessageData{
			MessageID: rec.MessageID,
			Payload:   hex.EncodeToString(rec.Payload),
		}
	case *protocol.MMIFailureReport:
		out.Data = FailureReportData{
			FailureNumber: rec.FailureNumber,
			Payload:       hex.EncodeToString(rec.Payload),
		}
	case *protocol.Telegram:
		out.Data = TelegramData{
			Sequence: rec.Sequence,
			Data:     hex.EncodeToString(rec.Data),
			Hash:     fmt.Sprintf("%016x", rec.Hash),
		}
	}
	return out
}

// JSON renders one record as a single JSON object.
func JSON(r protocol.Record) ([]byte, error) {
	return json.Marshal(ToOutput(r))
}

// Text renders one record as field-labelled rows: a summary line with the
// header fields, then one indented row per body field.
func Text(r protocol.Record) string {
	h := r.RecordHeader()
	var b strings.Builder
	fmt.Fprintf(&b, "%s #%d %s location=%dm speed=%d\n",
		r.Description(), h.PacketNumber, h.Timestamp.Format(timestampLayout), h.Location, h.Speed)
	switch rec := r.(type) {
	case *protocol.MMIDynamic:
		row(&b, "v_train", rec.VTrain)
		row(&b, "a_train", rec.ATrain)
		row(&b, "o_train", rec.OTrain)
		row(&b, "o_brake_target", rec.OBrakeTarget)
		row(&b, "v_target", rec.VTarget)
		row(&b, "t_interven_war", rec.TIntervenWar)
		row(&b, "v_permitted", rec.VPermitted)
		row(&b, "v_release", rec.VRelease)
		row(&b, "v_intervention", rec.VIntervention)
		row(&b, "m_warning", rec.MWarning)
		row(&b, "m_slip", rec.MSlip)
		row(&b, "m_slide", rec.MSlide)
		row(&b, "o_bcsp", rec.OBCSP)
	case *protocol.MMIStatus:
		row(&b, "m_adhesion", rec.MAdhesion)
		row(&b, "m_mode", rec.MMode)
		row(&b, "m_level", rec.MLevel)
		row(&b, "m_emer_brake", rec.MEmerBrake)
		row(&b, "m_service_brake", rec.MServiceBrake)
		row(&b, "m_override_eoa", rec.MOverrideEOA)
		row(&b, "m_trip", rec.MTrip)
		row(&b, "m_active_cabin", rec.MActiveCabin)
	case *protocol.MMIDriverMessage:
		row(&b, "message_id", rec.MessageID)
		row(&b, "payload", hex.EncodeToString(rec.Payload))
	case *protocol.MMIFailureReport:
		row(&b, "failure_number", rec.FailureNumber)
		row(&b, "payload", hex.EncodeToString(rec.Payload))
	case *protocol.Telegram:
		row(&b, "sequence", rec.Sequence)
		row(&b, "data", hex.EncodeToString(rec.Data))
		row(&b, "hash", fmt.Sprintf("%016x", rec.Hash))
	case *protocol.Passthrough:
		row(&b, "body", hex.EncodeToString(rec.Body))
	case *protocol.Unknown:
		row(&b, "body", hex.EncodeToString(rec.Body))
	}
	return b.String()
}

func row(b *strings.Builder, name string, value any) {
	fmt.Fprintf(b, "  %-16s %v\n", name+":", value)
}
