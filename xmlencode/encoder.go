// Package xmlencode implements the serializing driver of spec.md §4.5: the
// symmetric counterpart to xmldecode, turning typed Go values into an
// xmlevent.Event stream.
//
// Unlike the decoder, the encoder never needs role flags to disambiguate
// an unknown wire shape — a Go value's own shape is known completely
// before any bytes are written, so there is no peek/reset dance here. The
// one piece of bookkeeping it does carry is deferred tag-opening: a
// record's wrapping start tag is not written until its first child or
// value forces it open (or the record ends), so every attribute buffered
// before that point lands on the opening tag
// (spec §4.5's "attributes become part of the opening tag" requirement).
package xmlencode

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/corvantis/xmlserde/xmldecode"
	"github.com/corvantis/xmlserde/xmlerr"
	"github.com/corvantis/xmlserde/xmlevent"
	"github.com/corvantis/xmlserde/xmltag"
)

// Encodable is implemented by types with custom encode behavior — most
// record types instead go through xmlreflect's struct-tag-driven default,
// but a type that needs control over its own shape (notably Enum) provides
// this directly.
type Encodable interface {
	EncodeXML(e *Encoder) error
}

// Encoder drives one encode operation onto an xmlevent.Writer.
type Encoder struct {
	w *xmlevent.Writer

	// attrBuf, when non-nil, puts the Encoder in attribute-value mode: a
	// primitive write appends to this buffer instead of emitting events,
	// mirroring xmldecode's attrText short-circuit (spec §4.4.10, mirrored
	// on the encode side).
	attrBuf *strings.Builder
}

// New builds an Encoder over w.
func New(w *xmlevent.Writer) *Encoder {
	return &Encoder{w: w}
}

func newAttrValueEncoder() (*Encoder, *strings.Builder) {
	buf := &strings.Builder{}
	return &Encoder{attrBuf: buf}, buf
}

// String writes s as the current position's text content (spec §4.4.1's
// encode-side mirror). An empty string writes nothing, leaving the
// enclosing element empty (the writer self-closes it unless configured
// otherwise).
func (e *Encoder) String(s string) error {
	if e.attrBuf != nil {
		e.attrBuf.WriteString(s)
		return nil
	}
	if s == "" {
		return nil
	}
	return xmlerr.Wrap(xmlerr.EmitterError, e.w.Write(xmlevent.Event{Kind: xmlevent.Characters, Text: s}))
}

// Bool writes "true"/"false".
func (e *Encoder) Bool(b bool) error {
	if b {
		return e.String("true")
	}
	return e.String("false")
}

// Int writes a signed integer's decimal text.
func (e *Encoder) Int(n int64) error { return e.String(strconv.FormatInt(n, 10)) }

// Uint writes an unsigned integer's decimal text.
func (e *Encoder) Uint(n uint64) error { return e.String(strconv.FormatUint(n, 10)) }

// Float writes a floating-point value's decimal text, using the shortest
// representation that round-trips (bitSize selects float32 vs float64
// rounding).
func (e *Encoder) Float(f float64, bitSize int) error {
	return e.String(strconv.FormatFloat(f, 'g', -1, bitSize))
}

// Char writes a single rune as text.
func (e *Encoder) Char(r rune) error {
	buf := make([]byte, utf8.RuneLen(r))
	utf8.EncodeRune(buf, r)
	return e.String(string(buf))
}

// RawXML re-parses raw (already-serialized XML) and re-streams its events
// verbatim as the current element's content, for the "$valueRaw" sink
// (spec §4.4.9/§4.5). Re-parsing instead of splicing raw text in keeps
// prefix/namespace declarations correct against the enclosing scope.
func (e *Encoder) RawXML(raw string) error {
	if e.attrBuf != nil {
		e.attrBuf.WriteString(raw)
		return nil
	}
	if raw == "" {
		return nil
	}
	events, err := xmlevent.ParseFragment(raw)
	if err != nil {
		return xmlerr.Wrap(xmlerr.EmitterError, err)
	}
	for _, ev := range events {
		if err := e.w.Write(ev); err != nil {
			return xmlerr.Wrap(xmlerr.EmitterError, err)
		}
	}
	return nil
}

// RecordWriter assembles one record's wrapping element: attributes must be
// declared before the first child forces the opening tag to be written,
// mirroring spec §4.5's "attributes become part of the opening tag"
// requirement. Callers (xmlreflect's struct walk, Enum's payload encode)
// declare fields in their natural order; RecordWriter defers the actual
// write until it knows whether the element has any content at all.
type RecordWriter struct {
	e      *Encoder
	qn     xmltag.QName
	attrs  []xmlevent.Attr
	opened bool
}

// Attr buffers one attribute for the record's opening tag. It must be
// called before any Element/Value call that would force the tag open.
func (r *RecordWriter) Attr(q xmltag.QName, value string) {
	r.attrs = append(r.attrs, xmlevent.Attr{Name: q, Value: value})
}

// AttrString runs write against a text-only sub-encoder and buffers the
// result as an attribute — the encode-side counterpart of
// RecordField.Decode's attribute short-circuit in xmldecode.
func (r *RecordWriter) AttrString(q xmltag.QName, write func(*Encoder) error) error {
	sub, buf := newAttrValueEncoder()
	if err := write(sub); err != nil {
		return err
	}
	r.Attr(q, buf.String())
	return nil
}

func (r *RecordWriter) ensureOpen() error {
	if r.opened {
		return nil
	}
	r.opened = true
	return xmlerr.Wrap(xmlerr.EmitterError, r.e.w.Write(xmlevent.Event{Kind: xmlevent.StartElement, Name: r.qn, Attrs: r.attrs}))
}

// Element writes a wrapped child: <q>write's content</q>, for any
// non-value-sink field (spec §4.5's ordinary element fields and repeated
// sequence members alike — a slice field calls Element once per item,
// reusing the same declared name, per §4.5's sequence rule).
func (r *RecordWriter) Element(q xmltag.QName, write func(*Encoder) error) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}
	if err := xmlerr.Wrap(xmlerr.EmitterError, r.e.w.Write(xmlevent.Event{Kind: xmlevent.StartElement, Name: q})); err != nil {
		return err
	}
	if err := write(r.e); err != nil {
		return err
	}
	return xmlerr.Wrap(xmlerr.EmitterError, r.e.w.Write(xmlevent.Event{Kind: xmlevent.EndElement, Name: q}))
}

// NestedRecord writes a fresh, independently-wrapped child record named
// qn: fn gets its own RecordWriter to declare qn's attributes before any
// of its children force its opening tag out, exactly like a top-level
// Record call. Use this (rather than Element, which opens its wrapping
// tag immediately) whenever the child itself carries attributes.
func (r *RecordWriter) NestedRecord(qn xmltag.QName, fn func(*RecordWriter) error) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}
	return r.e.Record(qn, fn)
}

// Value writes directly into the record's own (already-open) element,
// with no separate wrapper — the "$value"/"$valueN"/"$valueRaw" sink
// fields of spec §4.5.
func (r *RecordWriter) Value(write func(*Encoder) error) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}
	return write(r.e)
}

// ExistingRecord wraps an element e has already opened — notably
// EncodeEnum's variant tag, written before its payload callback runs — so
// xmlreflect can write a struct payload's children straight into it.
// Unlike Record, the wrapping tag cannot gain new attributes through this
// RecordWriter: it was already flushed with none. A variant payload
// struct with its own "$attr:" fields needs a NestedRecord of its own one
// level deeper instead.
func (e *Encoder) ExistingRecord() *RecordWriter {
	return &RecordWriter{e: e, opened: true}
}

// Record writes one record wrapped in qn: fn declares the record's
// attributes and children (in any order it likes, though attributes
// should come first so Element/Value don't force the tag open before
// every attribute is known), then Record closes the wrapping element.
// An entirely empty record (no attributes, no children) still emits its
// wrapping element, self-closed when the writer normalizes empty elements.
func (e *Encoder) Record(qn xmltag.QName, fn func(r *RecordWriter) error) error {
	r := &RecordWriter{e: e, qn: qn}
	if err := fn(r); err != nil {
		return err
	}
	if err := r.ensureOpen(); err != nil {
		return err
	}
	return xmlerr.Wrap(xmlerr.EmitterError, e.w.Write(xmlevent.Event{Kind: xmlevent.EndElement, Name: qn}))
}

// EncodeEnum writes value's currently-held variant (spec §4.4.6's encode
// mirror). Unlike the decoder — which must resolve an arbitrary wire
// element name against a variant table — the variant tag XMLVariant
// reports is already the declared rename string itself, so the wrapping
// element's name (or value-sink treatment) falls straight out of parsing
// that one string; no field table lookup is needed on this side.
func (e *Encoder) EncodeEnum(value xmldecode.Enum, encodePayload func(*Encoder, any) error) error {
	tag, payload := value.XMLVariant()
	desc := xmltag.Parse(tag)

	if desc.IsValueSink {
		if payload == nil {
			return nil
		}
		return encodePayload(e, payload)
	}

	qn := desc.QName()
	if err := xmlerr.Wrap(xmlerr.EmitterError, e.w.Write(xmlevent.Event{Kind: xmlevent.StartElement, Name: qn})); err != nil {
		return err
	}
	if payload != nil {
		if err := encodePayload(e, payload); err != nil {
			return err
		}
	}
	return xmlerr.Wrap(xmlerr.EmitterError, e.w.Write(xmlevent.Event{Kind: xmlevent.EndElement, Name: qn}))
}
