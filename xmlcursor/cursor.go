// Package xmlcursor wraps an xmlevent.Source with multi-token lookahead and
// depth tracking, the primitive every higher-level decode operation walks
// over (spec.md §3.5/§4.3).
package xmlcursor

import (
	"io"

	"github.com/corvantis/xmlserde/xmlerr"
	"github.com/corvantis/xmlserde/xmlevent"
)

// Cursor is a buffered, multi-peek view over an xmlevent.Source. It never
// exposes io.EOF to callers: once the underlying source is exhausted, peek
// and next both report a synthetic EndDocument event forever after,
// matching the Rust original's "the reader always has one more event"
// guarantee (spec.md §3.5).
type Cursor struct {
	src xmlevent.Source

	buf       []xmlevent.Event // events read ahead of the consumed position
	peekPos   int              // index into buf the next Peek() will return
	depth     int              // current element nesting depth
	exhausted bool
}

// New builds a Cursor over src.
func New(src xmlevent.Source) *Cursor {
	return &Cursor{src: src}
}

// Depth reports the current element nesting depth: 0 before the document
// element opens, 1 inside the root element's content, and so on.
func (c *Cursor) Depth() int { return c.depth }

func (c *Cursor) fill() xmlevent.Event {
	if c.exhausted {
		return xmlevent.Event{Kind: xmlevent.EndDocument}
	}
	e, err := c.src.Next()
	if err == io.EOF {
		c.exhausted = true
		return xmlevent.Event{Kind: xmlevent.EndDocument}
	}
	if err != nil {
		// The cursor's peek/next API has no error return; a malformed
		// stream instead panics with a ParserError *xmlerr.Error as soon
		// as the offending event is read (by Peek, PeekAt or Next),
		// mirroring how next() in the Rust original panics-to-Result at
		// the call site; xmlserde and xmldyn recover it into an error.
		panic(xmlerr.Wrap(xmlerr.ParserError, err))
	}
	return e
}

// Peek returns the next event without consuming it, advancing the
// non-consuming peek offset. Repeated Peek calls walk further ahead;
// ResetPeek rewinds the offset back to the consumed position.
func (c *Cursor) Peek() xmlevent.Event {
	for c.peekPos >= len(c.buf) {
		c.buf = append(c.buf, c.fill())
	}
	e := c.buf[c.peekPos]
	c.peekPos++
	return e
}

// PeekAt returns the event n steps ahead of the consumed position without
// moving the peek offset (0 is equivalent to the first Peek() call after a
// ResetPeek).
func (c *Cursor) PeekAt(n int) xmlevent.Event {
	for n >= len(c.buf) {
		c.buf = append(c.buf, c.fill())
	}
	return c.buf[n]
}

// ResetPeek rewinds the peek offset back to the consumed position, so the
// next Peek() call re-returns the same event as the first lookahead.
func (c *Cursor) ResetPeek() { c.peekPos = 0 }

// Next consumes and returns the next event, discarding any buffered
// lookahead up to and including it and resetting the peek offset.
func (c *Cursor) Next() xmlevent.Event {
	var e xmlevent.Event
	if len(c.buf) > 0 {
		e = c.buf[0]
		c.buf = c.buf[1:]
	} else {
		e = c.fill()
	}
	c.peekPos = 0
	c.trackDepth(e)
	return e
}

func (c *Cursor) trackDepth(e xmlevent.Event) {
	switch e.Kind {
	case xmlevent.StartElement:
		c.depth++
	case xmlevent.EndElement:
		c.depth--
	}
}

// SkipSubtree consumes the next element whole: its StartElement (not yet
// read), everything nested inside it, and its matching EndElement. It is
// the destructive counterpart to peek-based lookahead, used when an
// ignored or discarded field's value must be fully drained from the stream
// (spec §4.3/§4.4.8's "ignored" decode path).
func (c *Cursor) SkipSubtree() {
	startDepth := c.depth
	for {
		e := c.Next()
		if e.Kind == xmlevent.EndDocument {
			return
		}
		if c.depth == startDepth {
			return
		}
	}
}
