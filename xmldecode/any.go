package xmldecode

import (
	"github.com/corvantis/xmlserde/xmlerr"
	"github.com/corvantis/xmlserde/xmlevent"
)

// Any decodes the current position into a generic, untyped value: a
// string for text content, a map[string]any for a record (attribute keys
// are prefixed "$attr:"), or a []any when the position turns out to hold
// an implicit sequence of same-named siblings (spec §4.4.7's lookahead).
//
// Unlike a statically typed record decode, Any has no declared field list
// to consult, so repeated same-named children that Any encounters while
// building a record are grouped into a []any automatically rather than
// overwriting one another — a dynamic-decode-only behavior with no
// equivalent in the static-dispatch original (see DESIGN.md).
func (d *Decoder) Any() (any, error) {
	if d.attrText != nil {
		return *d.attrText, nil
	}

	if d.state.isMapValue && !d.unsetSeqValue() {
		if d.detectImplicitSequence() {
			return d.decodeImplicitSeqAsAny()
		}
	}

	isMap := d.state.isMapValue
	var result any
	err := d.readInnerValueAttrs(func(d *Decoder, attrs []xmlevent.Attr) error {
		e := d.peek()
		if e.Kind == xmlevent.Characters || e.Kind == xmlevent.CData {
			d.resetPeek()
			txt := d.next()
			result = txt.Text
			return nil
		}
		d.resetPeek()

		if !isMap {
			start := d.next()
			if start.Kind != xmlevent.StartElement {
				return xmlerr.New(xmlerr.ExpectedElement, "expected an element")
			}
			rec, err := d.decodeAnyRecord(start.Attrs)
			if err != nil {
				return err
			}
			result = rec
			return d.expectEndElement(start)
		}
		rec, err := d.decodeAnyRecord(attrs)
		if err != nil {
			return err
		}
		result = rec
		return nil
	})
	return result, err
}

// detectImplicitSequence peeks (without consuming) through the element
// starting at the current position, then checks whether the following
// sibling shares its name — the "does this field repeat" test spec
// §4.4.7 describes.
func (d *Decoder) detectImplicitSequence() bool {
	e0 := d.cur.PeekAt(0)
	if e0.Kind != xmlevent.StartElement {
		return false
	}
	name1 := e0.Name

	depth := 0
	idx := 0
	for {
		e := d.cur.PeekAt(idx)
		switch e.Kind {
		case xmlevent.StartElement:
			depth++
		case xmlevent.EndElement:
			depth--
		case xmlevent.EndDocument:
			return false
		}
		idx++
		if depth == 0 {
			break
		}
	}

	next := d.cur.PeekAt(idx)
	return next.Kind == xmlevent.StartElement && next.Name == name1
}

func (d *Decoder) decodeImplicitSeqAsAny() (any, error) {
	s, err := newSeqReader(d)
	if err != nil {
		return nil, err
	}
	var out []any
	for {
		more, err := s.Next(func(d *Decoder) error {
			v, err := d.Any()
			if err != nil {
				return err
			}
			out = append(out, v)
			return nil
		})
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	return out, nil
}

func (d *Decoder) decodeAnyRecord(attrs []xmlevent.Attr) (map[string]any, error) {
	out := map[string]any{}
	for _, a := range attrs {
		out["$attr:"+a.Name.Synthetic()] = a.Value
	}
	for {
		e := d.peek()
		switch e.Kind {
		case xmlevent.StartElement:
			d.resetPeek()
			key := e.Name.Synthetic()
			d.setMapValue()
			val, err := d.Any()
			if err != nil {
				return nil, err
			}
			appendDynamic(out, key, val)
		case xmlevent.Characters, xmlevent.CData:
			d.resetPeek()
			txt := d.next()
			appendDynamic(out, "$value", txt.Text)
		default:
			d.resetPeek()
			return out, nil
		}
	}
}

func appendDynamic(m map[string]any, key string, val any) {
	existing, ok := m[key]
	if !ok {
		m[key] = val
		return
	}
	if list, ok := existing.([]any); ok {
		m[key] = append(list, val)
		return
	}
	m[key] = []any{existing, val}
}
