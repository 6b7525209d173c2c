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

// Decode errors are plain values interleaved with records in the output
// stream. Consumers count, log or tolerate them; nothing here panics.

// TruncatedError means fewer bytes remained than a read required.
type TruncatedError struct {
	Offset int // offset the read started at, relative to the frame
	Need   int // how many more bytes were required; codec reads (U8..I32) report the full width of the read
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated input: need %d more bytes at offset %d", e.Need, e.Offset)
}

// CalendarField names a component of the header timestamp.
type CalendarField string

// header timestamp components
const (
	FieldMonth  CalendarField = "month"
	FieldDay    CalendarField = "day"
	FieldHour   CalendarField = "hour"
	FieldMinute CalendarField = "minute"
	FieldSecond CalendarField = "second"
)

// InvalidCalendarFieldError means a header timestamp component was out of range.
type InvalidCalendarFieldError struct {
	Field CalendarField
	Value uint8
}

func (e *InvalidCalendarFieldError) Error() string {
	return fmt.Sprintf("invalid calendar field: %s=%d", e.Field, e.Value)
}

// BodyTooShortError means a packet body was shorter than its type requires.
type BodyTooShortError struct {
	Type     uint8
	Expected int
	Got      int
}

func (e *BodyTooShortError) Error() string {
	return fmt.Sprintf("body too short for %s: expected %d bytes, got %d", PacketType(e.Type), e.Expected, e.Got)
}

// FragmentIndexMismatchError means a BTM fragment's self-reported index
// disagreed with the index implied by its packet type. The fragment is dropped.
type FragmentIndexMismatchError struct {
	Expected uint8
	Actual   uint8
}

func (e *FragmentIndexMismatchError) Error() string {
	return fmt.Sprintf("fragment index mismatch: packet type implies %d, fragment reports %d", e.Expected, e.Actual)
}

// PartialTelegramEvictedError means the reassembler discarded an incomplete
// telegram to make room for a new sequence.
type PartialTelegramEvictedError struct {
	Sequence uint8
	Present  []int // 1-based fragment indices that had arrived
}

func (e *PartialTelegramEvictedError) Error() string {
	return fmt.Sprintf("partial telegram evicted: sequence %d with fragments %v", e.Sequence, e.Present)
}

// UnknownPacketTypeError classifies a frame whose type byte is not handled.
// The frame still yields an Unknown record carrying the raw body.
type UnknownPacketTypeError struct {
	Type   uint8
	Offset int
}

func (e *UnknownPacketTypeError) Error() string {
	return fmt.Sprintf("unknown packet type %d at offset %d", e.Type, e.Offset)
}

// ResyncBudgetExceededError terminates a session that resynchronised too often.
type ResyncBudgetExceededError struct {
	Resyncs int
	Skipped int // total bytes skipped across all resync events
}

func (e *ResyncBudgetExceededError) Error() string {
	return fmt.Sprintf("resync budget exceeded: %d resyncs, %d bytes skipped", e.Resyncs, e.Skipped)
}

// ErrorKind buckets an error for summary counters.
func ErrorKind(err error) string {
	switch err.(type) {
	case *TruncatedError:
		return "truncated"
	case *InvalidCalendarFieldError:
		return "invalid_calendar_field"
	case *BodyTooShortError:
		return "body_too_short"
	case *FragmentIndexMismatchError:
		return "fragment_index_mismatch"
	case *PartialTelegramEvictedError:
		return "partial_telegram_evicted"
	case *UnknownPacketTypeError:
		return "unknown_packet_type"
	case *ResyncBudgetExceededError:
		return "resync_budget_exceeded"
	default:
		return "other"
	}
}
