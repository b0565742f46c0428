// Package xmldecode implements the deserializing driver of spec.md §4.4:
// the role-flag-driven dispatch that turns a flat xmlcursor.Cursor event
// stream into typed Go values, without committing to any one destination
// type's shape up front.
package xmldecode

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/corvantis/xmlserde/xmlcursor"
	"github.com/corvantis/xmlserde/xmlerr"
	"github.com/corvantis/xmlserde/xmlevent"
)

// Decodable is implemented by types with custom decode behavior — most
// record types instead go through xmlreflect's struct-tag-driven default,
// but a type that needs control over its own shape (notably Enum) provides
// this directly.
type Decodable interface {
	DecodeXML(d *Decoder) error
}

// Enum lets a Go type participate in variant dispatch (spec §4.4.6), since
// Go has no sum-type equivalent of a serde enum.
type Enum interface {
	// XMLVariant reports the currently-held variant's tag and payload, for
	// encode.
	XMLVariant() (tag string, payload any)
	// XMLSetVariant prepares the receiver to decode variant tag into a
	// fresh payload value, which the caller then decodes into.
	XMLSetVariant(tag string) (payload any, err error)
}

// driverState is the set of call-site hints a callee consumes exactly
// once (spec.md §4.2's role flags). The Decoder holds it as a field that
// is mutated in place: a caller sets a flag through a set* helper and the
// callee clears it through the matching unset* helper; readInnerValue
// saves and restores isGreedy around its body.
type driverState struct {
	isMapValue bool
	isSeqValue bool
	isGreedy   bool
	isValue    bool
}

// Decoder drives one decode operation over a Cursor.
type Decoder struct {
	cur   *xmlcursor.Cursor
	state driverState

	// attrText, when non-nil, puts the Decoder in attribute-value mode
	// (spec §4.4.10): every primitive read resolves directly against this
	// already-extracted string instead of consulting the cursor.
	attrText *string
}

// New builds a Decoder positioned right after the document's StartDocument
// event has already been consumed by the caller (xmlserde's entry points
// own that step, matching spec §4.6).
//
// isMapValue starts true: the very first decode call this Decoder makes is
// expected to consume the document's own root element, exactly as an
// ordinary (non value-sink) record field's value would. This departs from
// the original, where a freshly constructed Deserializer starts with
// is_map_value false and the destination type is expected to declare one
// synthetic field whose renamed tag equals the root element's own name
// (see lib.rs's EPPMessage/"{ns}epp" pattern) — a convention serde_derive
// needs because T::deserialize has no separate "decode the root element's
// content directly" entry point. xmlreflect has no such constraint, so
// here the destination struct's fields bind directly to the root
// element's attributes/children, matching how encoding/xml and
// encoding/json both work; see DESIGN.md.
func New(cur *xmlcursor.Cursor) *Decoder {
	return &Decoder{cur: cur, state: driverState{isGreedy: true, isMapValue: true}}
}

func (d *Decoder) setMapValue() { d.state.isMapValue = true }
func (d *Decoder) unsetMapValue() bool {
	d.state.isValue = false
	v := d.state.isMapValue
	d.state.isMapValue = false
	return v
}
func (d *Decoder) setSeqValue() { d.state.isSeqValue = true }
func (d *Decoder) unsetSeqValue() bool {
	v := d.state.isSeqValue
	d.state.isSeqValue = false
	return v
}
func (d *Decoder) setIsValue() { d.state.isValue = true }
func (d *Decoder) unsetIsValue() bool {
	v := d.state.isValue
	d.state.isValue = false
	return v
}
func (d *Decoder) setNotGreedy() { d.state.isGreedy = false }
func (d *Decoder) unsetNotGreedy() bool {
	v := d.state.isGreedy
	d.state.isGreedy = true
	return v
}

func (d *Decoder) peek() xmlevent.Event { return d.cur.Peek() }
func (d *Decoder) resetPeek()           { d.cur.ResetPeek() }
func (d *Decoder) next() xmlevent.Event { return d.cur.Next() }

func (d *Decoder) expectEndElement(start xmlevent.Event) error {
	e := d.next()
	if e.Kind != xmlevent.EndElement || e.Name != start.Name {
		return xmlerr.New(xmlerr.ExpectedElement, "expected end element matching "+start.Name.Synthetic())
	}
	return nil
}

// readInnerValue is the common "if the caller left us positioned before
// our own wrapping element, consume it" preamble shared by every scalar
// and compound decode (spec §4.4.3's "inner value" unwrapping).
func (d *Decoder) readInnerValue(f func(*Decoder) error) error {
	oldGreedy := d.state.isGreedy
	var err error
	if d.unsetMapValue() {
		start := d.next()
		if start.Kind != xmlevent.StartElement {
			return xmlerr.New(xmlerr.ExpectedElement, "expected start element")
		}
		err = f(d)
		if err == nil {
			err = d.expectEndElement(start)
		}
	} else {
		err = f(d)
	}
	d.state.isGreedy = oldGreedy
	return err
}

func (d *Decoder) readInnerValueAttrs(f func(*Decoder, []xmlevent.Attr) error) error {
	oldGreedy := d.state.isGreedy
	var err error
	if d.unsetMapValue() {
		start := d.next()
		if start.Kind != xmlevent.StartElement {
			return xmlerr.New(xmlerr.ExpectedElement, "expected start element")
		}
		err = f(d, start.Attrs)
		if err == nil {
			err = d.expectEndElement(start)
		}
	} else {
		err = f(d, nil)
	}
	d.state.isGreedy = oldGreedy
	return err
}

// stepOver consumes (greedy) or peeks past (non-greedy) the next whole
// element, matching spec §4.4.8's "ignored" / implicit-sequence-lookahead
// duality. The non-greedy form leaves the cursor's consumable position
// untouched — only its non-destructive peek offset advances.
func (d *Decoder) stepOver() {
	if d.state.isGreedy {
		d.cur.SkipSubtree()
		return
	}
	depth := 0
	for {
		e := d.peek()
		switch e.Kind {
		case xmlevent.StartElement:
			depth++
		case xmlevent.EndElement:
			depth--
		case xmlevent.EndDocument:
			return
		}
		if depth == 0 {
			return
		}
	}
}

func rawReserialize(cur *xmlcursor.Cursor, start xmlevent.Event) (string, error) {
	var buf bytes.Buffer
	w := xmlevent.NewWriter(&buf, xmlevent.WriterOptions{NormalizeEmptyElements: true})
	if err := w.Write(start); err != nil {
		return "", err
	}
	depth := 0
	for {
		e := cur.Next()
		if e.Kind == xmlevent.StartElement {
			depth++
		}
		if e.Kind == xmlevent.EndElement {
			if depth == 0 {
				if err := w.Write(e); err != nil {
					return "", err
				}
				break
			}
			depth--
		}
		if err := w.Write(e); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// parseString implements spec §4.4.1's text extraction: text content, or,
// when the value turns out to be an element, its re-serialized raw XML
// (used for the `$valueRaw` sink and for Decoder.RawXML).
func (d *Decoder) parseString() (string, error) {
	if d.attrText != nil {
		return *d.attrText, nil
	}
	var out string
	err := d.readInnerValue(func(d *Decoder) error {
		if d.peek().Kind == xmlevent.EndElement {
			d.resetPeek()
			out = ""
			return nil
		}
		d.resetPeek()
		e := d.next()
		switch e.Kind {
		case xmlevent.Characters, xmlevent.CData:
			out = e.Text
			return nil
		case xmlevent.StartElement:
			s, err := rawReserialize(d.cur, e)
			if err != nil {
				return err
			}
			out = s
			return nil
		default:
			return xmlerr.New(xmlerr.ExpectedString, "expected text or element content")
		}
	})
	return out, err
}

// String decodes the current position's text content (spec §4.4.1).
func (d *Decoder) String() (string, error) { return d.parseString() }

// Bool decodes a truthy/falsy token set: "true"/"1"/"y" and
// "false"/"0"/"n", case-insensitively (spec §4.4.1, §8's boundary case).
func (d *Decoder) Bool() (bool, error) {
	s, err := d.parseString()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(s) {
	case "true", "1", "y":
		return true, nil
	case "false", "0", "n":
		return false, nil
	default:
		return false, xmlerr.Newf(xmlerr.ExpectedBool, "not a recognized boolean token: %q", s)
	}
}

// Int decodes a signed integer of the given bit width (8/16/32/64).
func (d *Decoder) Int(bitSize int) (int64, error) {
	s, err := d.parseString()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, bitSize)
	if err != nil {
		return 0, xmlerr.Wrap(xmlerr.ExpectedInt, err)
	}
	return n, nil
}

// Uint decodes an unsigned integer of the given bit width.
func (d *Decoder) Uint(bitSize int) (uint64, error) {
	s, err := d.parseString()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(s, 10, bitSize)
	if err != nil {
		return 0, xmlerr.Wrap(xmlerr.ExpectedInt, err)
	}
	return n, nil
}

// Float decodes a floating-point value of the given bit width (32/64),
// its own error kind per spec §7's closed taxonomy.
func (d *Decoder) Float(bitSize int) (float64, error) {
	s, err := d.parseString()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, bitSize)
	if err != nil {
		return 0, xmlerr.Wrap(xmlerr.ExpectedFloat, err)
	}
	return f, nil
}

// Char decodes exactly one rune of text content.
func (d *Decoder) Char() (rune, error) {
	s, err := d.parseString()
	if err != nil {
		return 0, err
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, xmlerr.Newf(xmlerr.ExpectedChar, "expected exactly one character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// RawXML re-serializes the current element (or plain text) exactly as it
// appears on the wire, for the "$valueRaw" sink (spec §4.4.9).
func (d *Decoder) RawXML() (string, error) { return d.parseString() }

// Option decodes spec §4.4.5's optionality test: it reports whether a
// value is present. When present, the caller decodes the wrapped value
// immediately afterward using the same Decoder — Option<T> is transparent
// to T's own decode call, exactly as visit_some(self) is in the original.
func (d *Decoder) Option() (present bool, err error) {
	if d.attrText != nil {
		return true, nil // an attribute's value is always present once matched
	}
	if d.state.isMapValue {
		// Peek at our own not-yet-consumed wrapping element. An attribute
		// settles it immediately; otherwise fall through WITHOUT resetting
		// the peek offset, so the next peek below looks one step further
		// in — at the element's own content — rather than re-inspecting
		// this same start tag.
		e := d.peek()
		if e.Kind == xmlevent.StartElement && len(e.Attrs) > 0 {
			d.resetPeek()
			return true, nil
		}
	}
	e := d.peek()
	if e.Kind == xmlevent.EndElement {
		d.resetPeek()
		if d.unsetMapValue() {
			d.next()
		}
		d.next()
		return false, nil
	}
	d.resetPeek()
	return true, nil
}

// Ignored skips the current field's value without decoding it (spec
// §4.4.8), for fields a destination type chooses not to populate. In
// greedy mode the value is consumed; in non-greedy mode (a value sink in a
// multi-field record) it is only peeked past. An attribute-backed value
// has already been extracted, so there is nothing to skip.
func (d *Decoder) Ignored() error {
	if d.attrText != nil {
		return nil
	}
	d.stepOver()
	return nil
}
