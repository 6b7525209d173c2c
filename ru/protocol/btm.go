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
	"time"

	"github.com/cespare/xxhash/v2"
)

// The BTM delivers each balise telegram over the vehicle bus in five
// fragments (packet types 43-47). Fragments of one telegram share a sequence
// number and may interleave with fragments of other telegrams, in any order.
// The reassembler tracks up to ten in-progress sequences in fixed slots and
// emits a completed 104-byte telegram as soon as its fifth piece arrives.

// TelegramSize is the reassembled balise telegram length in bytes.
const TelegramSize = 104

// ReassemblerSlots is the number of concurrent in-progress sequences.
const ReassemblerSlots = 10

// telegramFragments is how many pieces make one telegram.
const telegramFragments = 5

// fragmentPayloadSizes is the payload contribution per 1-based fragment
// index: 4 + 25 + 25 + 25 + 25 = 104.
var fragmentPayloadSizes = [telegramFragments]int{4, 25, 25, 25, 25}

// fragment body offsets: sequence number, index self-report, payload
const (
	fragSequenceOffset = 0
	fragIndexOffset    = 1
	fragPayloadOffset  = 2
)

// Telegram is a completed balise telegram. The embedded header is the one of
// the last-arriving fragment, so the timestamp reflects when the telegram
// became whole. Hash is the xxhash64 of the payload, a cheap identity for
// downstream dedup when the same balise is read twice.
type Telegram struct {
	Header
	Sequence uint8
	Data     []byte // TelegramSize bytes, fragments concatenated 1..5
	Hash     uint64
}

// Description names the record for display.
func (t *Telegram) Description() string { return "BTM_TELEGRAM" }

// slot holds one in-progress telegram. earliest is the header timestamp of
// the first fragment that arrived and is the eviction key.
type slot struct {
	inUse    bool
	sequence uint8
	parts    [telegramFragments][]byte
	present  [telegramFragments]bool
	earliest time.Time
}

func (s *slot) presentIndices() []int {
	idx := make([]int, 0, telegramFragments)
	for i, p := range s.present {
		if p {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (s *slot) complete() bool {
	for _, p := range s.present {
		if !p {
			return false
		}
	}
	return true
}

// Reassembler recombines telegram fragments across up to ReassemblerSlots
// concurrent sequences. It is owned by a single decode session and is not
// safe for concurrent use.
type Reassembler struct {
	slots [ReassemblerSlots]slot

	// counters, read by the session summary
	TelegramsReassembled int
	EvictedIncomplete    int
	DuplicateFragments   int
}

// NewReassembler returns a reassembler with all slots empty.
func NewReassembler() *Reassembler {
	return &Reassembler{}
}

// PartialSequences returns how many slots currently hold partial telegrams.
func (r *Reassembler) PartialSequences() int {
	n := 0
	for i := range r.slots {
		if r.slots[i].inUse {
			n++
		}
	}
	return n
}

// Feed accepts one fragment (header and body already split by the dispatcher)
// and returns a completed telegram if this fragment was its last missing
// piece. A non-nil error does not stop the session: an index mismatch drops
// the fragment, an eviction reports the discarded partial while the fragment
// is still installed.
func (r *Reassembler) Feed(h Header, body []byte) (*Telegram, error) {
	idx := h.PacketType.FragmentIndex()
	if idx == 0 {
		return nil, &FragmentIndexMismatchError{Expected: 0, Actual: uint8(h.PacketType)}
	}
	seq, err := U8(body, fragSequenceOffset)
	if err != nil {
		return nil, err
	}
	selfIdx, err := U8(body, fragIndexOffset)
	if err != nil {
		return nil, err
	}
	if int(selfIdx) != idx {
		return nil, &FragmentIndexMismatchError{Expected: uint8(idx), Actual: selfIdx}
	}
	payloadSize := fragmentPayloadSizes[idx-1]
	if len(body) < fragPayloadOffset+payloadSize {
		return nil, &TruncatedError{Offset: fragPayloadOffset, Need: fragPayloadOffset + payloadSize - len(body)}
	}

	s, evictErr := r.slotFor(seq, h.Timestamp)
	if s.present[idx-1] {
		// Last writer wins on duplicates: late duplicates typically reflect
		// recorder retransmission. Counted so consumers can detect the
		// opposite behaviour if it ever shows up in real recordings.
		r.DuplicateFragments++
	}
	s.parts[idx-1] = append([]byte(nil), body[fragPayloadOffset:fragPayloadOffset+payloadSize]...)
	s.present[idx-1] = true

	if !s.complete() {
		return nil, evictErr
	}
	data := make([]byte, 0, TelegramSize)
	for i := range s.parts {
		data = append(data, s.parts[i]...)
	}
	*s = slot{}
	r.TelegramsReassembled++
	return &Telegram{
		Header:   h,
		Sequence: seq,
		Data:     data,
		Hash:     xxhash.Sum64(data),
	}, evictErr
}

// slotFor finds the slot for a sequence: the live slot tracking it, else any
// empty slot, else the slot with the oldest earliest timestamp, whose partial
// state is discarded and reported.
func (r *Reassembler) slotFor(seq uint8, ts time.Time) (*slot, error) {
	var empty *slot
	for i := range r.slots {
		s := &r.slots[i]
		if s.inUse && s.sequence == seq {
			return s, nil
		}
		if !s.inUse && empty == nil {
			empty = s
		}
	}
	if empty != nil {
		*empty = slot{inUse: true, sequence: seq, earliest: ts}
		return empty, nil
	}
	oldest := &r.slots[0]
	for i := 1; i < len(r.slots); i++ {
		if r.slots[i].earliest.Before(oldest.earliest) {
			oldest = &r.slots[i]
		}
	}
	err := &PartialTelegramEvictedError{Sequence: oldest.sequence, Present: oldest.presentIndices()}
	r.EvictedIncomplete++
	*oldest = slot{inUse: true, sequence: seq, earliest: ts}
	return oldest, err
}
