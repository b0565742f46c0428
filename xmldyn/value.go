// Package xmldyn decodes XML into a dynamically typed value and queries
// or validates it without a destination struct — the untyped counterpart
// to xmlreflect's static struct-tag binding, for callers that only know
// a document's shape at runtime (a CLI operator poking at an unfamiliar
// feed, a generic validation pass over many document kinds).
package xmldyn

import (
	"bytes"
	"strings"

	"github.com/clbanning/mxj/v2"

	"github.com/corvantis/xmlserde/xmlcursor"
	"github.com/corvantis/xmlserde/xmldecode"
	"github.com/corvantis/xmlserde/xmlerr"
	"github.com/corvantis/xmlserde/xmlevent"
)

// Value is a dynamically decoded XML document: a record is a
// map[string]any keyed by child element name, with attributes carrying
// xmldecode.Any's "$attr:" prefix and a run of character data collapsed
// to a "$value" entry. Value is defined over mxj.Map rather than a bare
// map[string]any so callers can reach mxj's own Xml()/Json()/encoding
// helpers directly, without a second parse of the same document.
type Value mxj.Map

// ParseBytes decodes data into a Value.
func ParseBytes(data []byte) (Value, error) {
	return parse(xmlevent.NewDecoderSource(bytes.NewReader(data), xmlevent.ReaderOptions{}))
}

// ParseString decodes s into a Value.
func ParseString(s string) (Value, error) {
	return parse(xmlevent.NewDecoderSource(strings.NewReader(s), xmlevent.ReaderOptions{}))
}

func parse(src xmlevent.Source) (v Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if xerr, ok := r.(*xmlerr.Error); ok {
				err = xerr
				return
			}
			panic(r)
		}
	}()

	cur := xmlcursor.New(src)
	if cur.Peek().Kind == xmlevent.StartDocument {
		cur.Next()
	} else {
		cur.ResetPeek()
	}

	d := xmldecode.New(cur)
	any, derr := d.Any()
	if derr != nil {
		return nil, derr
	}
	m, ok := any.(map[string]any)
	if !ok {
		return nil, xmlerr.New(xmlerr.Unsupported, "xmldyn: document root did not decode to a record")
	}
	return Value(m), nil
}

// Map returns v as a plain map[string]any, the shape Query/QueryAll and
// Validate actually traverse.
func (v Value) Map() map[string]any { return map[string]any(v) }

// Xml re-serializes v with mxj's own encoder — useful for round-tripping
// through ad hoc edits made via Map() without going back through
// xmlserde's typed encode path.
func (v Value) Xml() ([]byte, error) {
	return mxj.Map(v).Xml()
}

// Json renders v as JSON, attribute keys and all — a quick way to eyeball
// a document's decoded shape.
func (v Value) Json() ([]byte, error) {
	return mxj.Map(v).Json()
}
