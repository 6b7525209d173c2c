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

// The dispatcher walks an RU byte stream frame by frame: parse the common
// header, read the one-byte body length, route the body to the right
// sub-decoder, advance. Per-record errors are values in the output stream
// and never stop the walk; only mid-frame truncation and an exhausted
// resync budget terminate a session.

// DefaultResyncBudget caps how many times a session may resynchronise
// before aborting, unless overridden with WithResyncBudget.
const DefaultResyncBudget = 100

// Result is one element of the decode output stream. Record and Err are
// usually mutually exclusive; an unhandled packet type sets both, with the
// Unknown record carrying the raw bytes and the error classifying it.
type Result struct {
	Offset int // byte offset of the frame within the input
	Record Record
	Err    error
}

// Stats are the per-session counters shown in the CLI summary.
type Stats struct {
	Frames               int
	Records              int
	Resyncs              int
	BytesSkipped         int
	TelegramsReassembled int
	EvictedIncomplete    int
	DuplicateFragments   int
	Errors               map[string]int
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithResyncBudget overrides the resync budget. Zero or negative keeps
// the default.
func WithResyncBudget(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.budget = n
		}
	}
}

// Decoder is a single decode session over one input stream. Sessions share
// no state: the caller may run many of them in parallel, one per goroutine.
type Decoder struct {
	buf     []byte
	off     int
	budget  int
	resyncs int
	skipped int
	reasm   *Reassembler
	stats   Stats
	queue   []Result
	done    bool
}

// NewDecoder starts a decode session over the given bytes. The session
// owns its reassembler; partial telegram state is discarded with it.
func NewDecoder(b []byte, opts ...Option) *Decoder {
	d := &Decoder{
		buf:    b,
		budget: DefaultResyncBudget,
		reasm:  NewReassembler(),
		stats:  Stats{Errors: map[string]int{}},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Next returns the next record or error in frame order, or nil when the
// stream is exhausted. BTM telegrams appear at the frame whose fragment
// completed them.
func (d *Decoder) Next() *Result {
	for len(d.queue) == 0 && !d.done {
		d.step()
	}
	if len(d.queue) == 0 {
		return nil
	}
	res := d.queue[0]
	d.queue = d.queue[1:]
	return &res
}

// Stats returns the session counters accumulated so far.
func (d *Decoder) Stats() Stats {
	s := d.stats
	s.TelegramsReassembled = d.reasm.TelegramsReassembled
	s.EvictedIncomplete = d.reasm.EvictedIncomplete
	s.DuplicateFragments = d.reasm.DuplicateFragments
	return s
}

// DecodeAll runs a whole session at once and returns the output stream
// plus the final counters.
func DecodeAll(b []byte, opts ...Option) ([]Result, Stats) {
	d := NewDecoder(b, opts...)
	var out []Result
	for res := d.Next(); res != nil; res = d.Next() {
		out = append(out, *res)
	}
	return out, d.Stats()
}

func (d *Decoder) emit(res Result) {
	if res.Err != nil {
		d.stats.Errors[ErrorKind(res.Err)]++
	}
	if res.Record != nil {
		d.stats.Records++
	}
	d.queue = append(d.queue, res)
}

// bodyRecord is any record that decodes itself from a body slice.
type bodyRecord interface {
	Record
	UnmarshalBody([]byte) error
}

// step advances past one frame, appending zero or more results.
func (d *Decoder) step() {
	if d.off >= len(d.buf) {
		d.done = true
		return
	}
	h, body, consumed, err := ParseFrame(d.buf[d.off:])
	if err != nil {
		switch err.(type) {
		case *InvalidCalendarFieldError:
			d.emit(Result{Offset: d.off, Err: err})
			d.resync()
		default:
			// truncated mid-frame: the stream cannot continue
			d.emit(Result{Offset: d.off, Err: err})
			d.done = true
		}
		return
	}
	offset := d.off
	d.off += consumed
	d.stats.Frames++

	switch {
	case h.PacketType == PacketMMIDynamic || h.PacketType == PacketMMIDynamicATP:
		d.decodeBody(offset, &MMIDynamic{Header: h}, body)
	case h.PacketType == PacketMMIStatus:
		d.decodeBody(offset, &MMIStatus{Header: h}, body)
	case h.PacketType == PacketMMIDriverMessage:
		d.decodeBody(offset, &MMIDriverMessage{Header: h}, body)
	case h.PacketType == PacketMMIFailureReport:
		d.decodeBody(offset, &MMIFailureReport{Header: h}, body)
	case h.PacketType.IsBTMFragment():
		tel, err := d.reasm.Feed(h, body)
		if err != nil {
			d.emit(Result{Offset: offset, Err: err})
		}
		if tel != nil {
			d.emit(Result{Offset: offset, Record: tel})
		}
	default:
		if family, ok := PassthroughFamily(h.PacketType); ok {
			d.emit(Result{Offset: offset, Record: &Passthrough{
				Header: h,
				Family: family,
				Body:   append([]byte(nil), body...),
			}})
			return
		}
		d.emit(Result{
			Offset: offset,
			Record: &Unknown{Header: h, Body: append([]byte(nil), body...), Offset: offset},
			Err:    &UnknownPacketTypeError{Type: uint8(h.PacketType), Offset: offset},
		})
	}
}

// decodeBody runs a body decoder and turns its failure into a per-frame
// error result. The frame boundary is already known, so the walk continues
// past the claimed body length either way.
func (d *Decoder) decodeBody(offset int, rec bodyRecord, body []byte) {
	if err := rec.UnmarshalBody(body); err != nil {
		d.emit(Result{Offset: offset, Err: err})
		return
	}
	d.emit(Result{Offset: offset, Record: rec})
}

// resync recovers from a header that failed calendar validation: advance one
// byte at a time until something parses as a header again. Each triggering
// error is one resync event against the budget; the bytes skipped while
// scanning are all attributed to that event.
func (d *Decoder) resync() {
	d.resyncs++
	d.stats.Resyncs++
	if d.resyncs > d.budget {
		d.emit(Result{Offset: d.off, Err: &ResyncBudgetExceededError{
			Resyncs: d.resyncs,
			Skipped: d.skipped,
		}})
		d.done = true
		return
	}
	for d.off < len(d.buf) {
		d.off++
		d.skipped++
		d.stats.BytesSkipped++
		if d.off >= len(d.buf) {
			break
		}
		_, err := ParseHeader(d.buf[d.off:])
		if err == nil {
			break
		}
		if _, ok := err.(*InvalidCalendarFieldError); !ok {
			// ran into the truncated tail, let step report it
			break
		}
	}
}
