package xmldecode

import (
	"strings"

	"github.com/corvantis/xmlserde/xmlerr"
	"github.com/corvantis/xmlserde/xmlevent"
	"github.com/corvantis/xmlserde/xmlfield"
)

// Record decodes the current position as a record (struct/map): table
// describes its declared field names, and walk is invoked once per
// attribute/child field, as spec §4.4.3/§4.4.4 describes: attributes
// first, in reverse of their document order, then child elements and text
// in document order. walk receives the resolved declared name (including
// any "$attr:" prefix or "$value"/"$valueN" sink name) and a Field to read
// the value with; Record returns once there is nothing left to read, or as
// soon as walk returns an error.
func (d *Decoder) Record(table *xmlfield.Table, walk func(name string, field *RecordField) error) error {
	return d.readInnerValueAttrs(func(d *Decoder, attrs []xmlevent.Attr) error {
		r := &recordReader{
			d:          d,
			fields:     table,
			state:      xmlfield.NewState(table),
			attrs:      attrs,
			innerValue: true,
		}
		for {
			name, ok, err := r.nextKey()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			if err := walk(name, &RecordField{r: r}); err != nil {
				return err
			}
		}
	})
}

// recordReader walks one record's attributes, then children, mirroring
// Map::next_key_seed/next_value_seed.
type recordReader struct {
	d           *Decoder
	fields      *xmlfield.Table
	state       *xmlfield.State
	attrs       []xmlevent.Attr
	innerValue  bool
	nextIsValue bool
	pendingAttr *xmlevent.Attr
}

func (r *recordReader) nextKey() (string, bool, error) {
	if len(r.attrs) > 0 {
		a := r.attrs[len(r.attrs)-1]
		r.attrs = r.attrs[:len(r.attrs)-1]
		r.pendingAttr = &a
		r.nextIsValue = false
		return r.state.MatchAttribute(a.Name), true, nil
	}
	r.pendingAttr = nil
	e := r.d.peek()
	switch e.Kind {
	case xmlevent.StartElement:
		name := r.state.MatchElement(e.Name)
		r.innerValue = strings.HasPrefix(name, "$value")
		r.nextIsValue = r.innerValue
		r.d.resetPeek()
		return name, true, nil
	case xmlevent.Characters, xmlevent.CData:
		r.nextIsValue = true
		r.d.resetPeek()
		return "$value", true, nil
	default:
		r.d.resetPeek()
		return "", false, nil
	}
}

// RecordField reads exactly one field's value; spec's "value sink"/greedy
// dance (from next_value_seed) happens inside Decode.
type RecordField struct{ r *recordReader }

// Decode invokes fn with a Decoder positioned to read this field's value.
// When the field came from an attribute, fn runs against a lightweight
// text-only decoder (spec §4.4.10's attribute-value sub-deserializer)
// instead of the main cursor-backed Decoder.
func (f *RecordField) Decode(fn func(*Decoder) error) error {
	r := f.r
	if r.pendingAttr != nil {
		val := r.pendingAttr.Value
		r.pendingAttr = nil
		return fn(newAttrValueDecoder(val))
	}

	wasInnerValue := r.innerValue
	r.innerValue = false
	if !wasInnerValue {
		r.d.setMapValue()
	}
	if r.nextIsValue {
		r.d.setIsValue()
	}
	greedy := r.nextIsValue && len(r.fields.Fields) > 1
	if greedy {
		r.d.setNotGreedy()
	}
	err := fn(r.d)
	if greedy {
		r.d.unsetNotGreedy()
		r.d.resetPeek()
	}
	return err
}

// Ignore drains this field's value without decoding it.
func (f *RecordField) Ignore() error {
	return f.Decode(func(d *Decoder) error { return d.Ignored() })
}

// newAttrValueDecoder builds a Decoder standing in for an attribute's
// already-extracted text value (spec §4.4.10's AttrValueDeserializer).
// Every primitive read short-circuits straight to this string; there is no
// cursor, since an attribute value can never contain nested elements.
func newAttrValueDecoder(raw string) *Decoder {
	return &Decoder{state: driverState{isGreedy: true}, attrText: &raw}
}
